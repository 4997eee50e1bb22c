package graphics

import (
	"fmt"
	"sync"

	"github.com/cockroachdb/errors"
	"go.uber.org/atomic"
)

// Handle identifies a resource owned by a Device. The zero handle is never
// issued.
type Handle uint32

const InvalidHandle Handle = 0

type ResourceKind uint8

const (
	ResourceTexture2D ResourceKind = iota + 1
	ResourceTexture3D
	ResourceTextureCube
	ResourceIndexBuffer
	ResourceVertexBuffer
	ResourceEffect
)

func (k ResourceKind) String() string {
	switch k {
	case ResourceTexture2D:
		return "texture2d"
	case ResourceTexture3D:
		return "texture3d"
	case ResourceTextureCube:
		return "texturecube"
	case ResourceIndexBuffer:
		return "indexbuffer"
	case ResourceVertexBuffer:
		return "vertexbuffer"
	case ResourceEffect:
		return "effect"
	default:
		return fmt.Sprintf("resource(%d)", uint8(k))
	}
}

// Device is the rendering backend as seen by content readers: it takes raw
// resource payloads and hands back opaque handles.
type Device interface {
	Upload(kind ResourceKind, data [][]byte) (Handle, error)
	Release(h Handle) error
}

// HeadlessDevice is a Device that keeps payload sizes in memory only. It is
// used by tools and tests that decode content without a renderer.
type HeadlessDevice struct {
	mu   sync.Mutex
	live map[Handle]ResourceKind

	next     atomic.Uint32
	uploads  atomic.Uint64
	releases atomic.Uint64
}

func NewHeadlessDevice() *HeadlessDevice {
	return &HeadlessDevice{
		live: make(map[Handle]ResourceKind),
	}
}

func (d *HeadlessDevice) Upload(kind ResourceKind, data [][]byte) (Handle, error) {
	h := Handle(d.next.Inc())
	d.mu.Lock()
	d.live[h] = kind
	d.mu.Unlock()
	d.uploads.Inc()
	return h, nil
}

func (d *HeadlessDevice) Release(h Handle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.live[h]; !ok {
		return errors.Newf("release of unknown handle %d", h)
	}
	delete(d.live, h)
	d.releases.Inc()
	return nil
}

// Live returns the number of handles uploaded and not yet released.
func (d *HeadlessDevice) Live() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.live)
}

func (d *HeadlessDevice) Uploads() uint64  { return d.uploads.Load() }
func (d *HeadlessDevice) Releases() uint64 { return d.releases.Load() }

// resource is the device binding shared by every GPU backed content type.
type resource struct {
	device Device
	handle Handle
}

// upload replaces the current device copy with data. The previous handle, if
// any, is released first.
func (r *resource) upload(dev Device, kind ResourceKind, data [][]byte) error {
	if dev == nil {
		return errors.Newf("no graphics device available to create %s", kind)
	}
	if r.handle != InvalidHandle && r.device != nil {
		_ = r.device.Release(r.handle)
		r.handle = InvalidHandle
	}
	h, err := dev.Upload(kind, data)
	if err != nil {
		return err
	}
	r.device = dev
	r.handle = h
	return nil
}

// Handle returns the device handle, or InvalidHandle once closed.
func (r *resource) Handle() Handle {
	return r.handle
}

// Close releases the device copy. Calling it again is a no-op.
func (r *resource) Close() error {
	if r.handle == InvalidHandle || r.device == nil {
		return nil
	}
	h := r.handle
	r.handle = InvalidHandle
	return r.device.Release(h)
}
