package xnb

import (
	"io"
	"reflect"

	"github.com/spaghettifunk/anima-content/engine/graphics"
)

type int32Reader struct{}

func (int32Reader) TargetType() reflect.Type { return reflect.TypeFor[int32]() }

func (int32Reader) Read(r *ContentReader, _ Instance) (any, error) {
	return r.ReadInt32()
}

type stringReader struct{}

func (stringReader) TargetType() reflect.Type { return reflect.TypeFor[string]() }

func (stringReader) Read(r *ContentReader, _ Instance) (any, error) {
	return r.ReadString()
}

// node links to another node through a shared resource slot.
type node struct {
	Name string
	Next *node
}

type nodeReader struct{}

func (nodeReader) TargetType() reflect.Type { return reflect.TypeFor[*node]() }

func (nodeReader) Read(r *ContentReader, _ Instance) (any, error) {
	name, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	n := &node{Name: name}
	err = r.ReadSharedResource(reflect.TypeFor[*node](), func(v any) {
		n.Next, _ = v.(*node)
	})
	return n, err
}

type closer struct {
	closed int
}

func (c *closer) Close() error {
	c.closed++
	return nil
}

type closerReader struct{}

func (closerReader) TargetType() reflect.Type { return reflect.TypeFor[*closer]() }

func (closerReader) Read(r *ContentReader, _ Instance) (any, error) {
	return &closer{}, nil
}

func testCatalog() *Catalog {
	c := NewCatalog()
	c.AddBuiltin("Int32Reader", func() TypeReader { return int32Reader{} })
	c.AddBuiltin("StringReader", func() TypeReader { return stringReader{} })
	c.AddBuiltin("CloserReader", func() TypeReader { return closerReader{} })
	if err := c.Register("Game.NodeReader", "Game.Node", func() TypeReader { return nodeReader{} }); err != nil {
		panic(err)
	}
	if err := c.RegisterTarget("System.Int32", reflect.TypeFor[int32]()); err != nil {
		panic(err)
	}
	return c
}

type recordingHost struct {
	recorded []io.Closer
	external []string
}

func (h *recordingHost) LoadExternal(name string, target reflect.Type) (any, error) {
	h.external = append(h.external, name)
	return name, nil
}

func (h *recordingHost) RecordDisposable(c io.Closer) {
	h.recorded = append(h.recorded, c)
}

func (h *recordingHost) GraphicsDevice() (graphics.Device, error) {
	return graphics.NewHeadlessDevice(), nil
}
