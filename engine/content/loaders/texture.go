package loaders

import (
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"reflect"

	"github.com/cockroachdb/errors"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/spaghettifunk/anima-content/engine/content/xnb"
	"github.com/spaghettifunk/anima-content/engine/core"
	"github.com/spaghettifunk/anima-content/engine/graphics"
)

// TextureExtensions are probed in order for a raw texture.
var TextureExtensions = []string{".png", ".jpg", ".jpeg", ".bmp", ".gif", ".tif", ".tiff", ".webp"}

type TextureLoader struct{}

func (tl *TextureLoader) TargetType() reflect.Type {
	return reflect.TypeFor[*graphics.Texture2D]()
}

// Load decodes the first image found for req.Name and uploads it as a single
// level RGBA texture.
func (tl *TextureLoader) Load(req Request) (any, error) {
	for _, ext := range TextureExtensions {
		t, err := tl.LoadFile(req, req.Name+ext)
		if errors.Is(err, core.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return t, nil
	}
	return nil, errors.Mark(errors.Newf("no image file for %q", req.Name), core.ErrNotFound)
}

// LoadFile decodes one image file, whatever its extension.
func (tl *TextureLoader) LoadFile(req Request, file string) (*graphics.Texture2D, error) {
	f, err := req.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, core.AsFormatError(errors.Wrapf(err, "decode %s", file))
	}
	rgba := toRGBA(img)

	t, ok := xnb.Existing[*graphics.Texture2D](req.Existing)
	if !ok {
		t = &graphics.Texture2D{}
	}
	b := rgba.Bounds()
	if err := t.Set(req.Device, graphics.SurfaceFormatColor, int32(b.Dx()), int32(b.Dy()), [][]byte{rgba.Pix}); err != nil {
		return nil, errors.Wrapf(err, "upload %s", file)
	}
	if req.Record != nil {
		req.Record(t)
	}
	core.LogDebug("loaded %s texture %s (%dx%d)", format, file, b.Dx(), b.Dy())
	return t, nil
}

// toRGBA returns img as tightly packed, zero based RGBA pixels.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) && rgba.Stride == 4*rgba.Rect.Dx() {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}
