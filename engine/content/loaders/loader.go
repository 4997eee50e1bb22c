// Package loaders decodes assets from source formats (images, BMFont
// descriptors) when no compiled container is available.
package loaders

import (
	"io"
	"reflect"

	"github.com/spaghettifunk/anima-content/engine/content/xnb"
	"github.com/spaghettifunk/anima-content/engine/graphics"
)

// Request is everything a raw loader gets from the content manager.
type Request struct {
	// Name is the asset name without extension, e.g. "fonts/arial".
	Name string
	// Open opens a file relative to the content root.
	Open func(file string) (io.ReadCloser, error)
	// LocalPath maps a file to a path on disk, when the content root is a
	// directory.
	LocalPath func(file string) (string, bool)
	Device    graphics.Device
	Existing  xnb.Instance
	// Record takes ownership of resources created by the loader.
	Record func(io.Closer)
}

// Loader is a raw fallback for one target type.
type Loader interface {
	TargetType() reflect.Type
	Load(req Request) (any, error)
}
