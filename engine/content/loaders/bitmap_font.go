package loaders

import (
	"path"
	"reflect"

	"github.com/cockroachdb/errors"
	"github.com/fzipp/bmfont"
	"golang.org/x/exp/slices"

	"github.com/spaghettifunk/anima-content/engine/content/xnb"
	"github.com/spaghettifunk/anima-content/engine/core"
	"github.com/spaghettifunk/anima-content/engine/graphics"
	"github.com/spaghettifunk/anima-content/engine/math"
)

const bitmapFontExtension = ".fnt"

// BitmapFontLoader builds a SpriteFont from an AngelCode BMFont descriptor.
// Only the first page is used; its image becomes the font texture.
type BitmapFontLoader struct {
	Textures *TextureLoader
}

func (fl *BitmapFontLoader) TargetType() reflect.Type {
	return reflect.TypeFor[*graphics.SpriteFont]()
}

func (fl *BitmapFontLoader) Load(req Request) (any, error) {
	file := req.Name + bitmapFontExtension
	if req.LocalPath == nil {
		return nil, errors.Mark(errors.Newf("bitmap font %s needs a directory content root", file), core.ErrNotFound)
	}
	local, ok := req.LocalPath(file)
	if !ok {
		return nil, errors.Mark(errors.Newf("no bitmap font file for %q", req.Name), core.ErrNotFound)
	}
	font, err := bmfont.Load(local)
	if err != nil {
		return nil, core.AsFormatError(errors.Wrapf(err, "load bitmap font %s", file))
	}
	desc := font.Descriptor

	pageFile := ""
	for _, p := range desc.Pages {
		if p.ID == 0 {
			pageFile = p.File
		}
	}
	if pageFile == "" {
		return nil, core.FormatErrorf("bitmap font %s has no first page", file)
	}

	f, ok := xnb.Existing[*graphics.SpriteFont](req.Existing)
	if !ok {
		f = &graphics.SpriteFont{}
	}
	texReq := req
	texReq.Existing = xnb.Fresh()
	if f.Texture != nil {
		texReq.Existing = xnb.InPlace(f.Texture)
	}
	textures := fl.Textures
	if textures == nil {
		textures = &TextureLoader{}
	}
	texture, err := textures.LoadFile(texReq, path.Join(path.Dir(req.Name), pageFile))
	if err != nil {
		return nil, errors.Wrapf(err, "bitmap font %s page", file)
	}

	glyphs := make(map[rune]graphics.FontGlyph, len(desc.Chars))
	chars := make([]rune, 0, len(desc.Chars))
	for _, g := range desc.Chars {
		if g.Page != 0 {
			continue
		}
		c := rune(g.ID)
		width := int32(g.Width)
		glyphs[c] = graphics.FontGlyph{
			Character: c,
			Bounds:    math.Rectangle{X: int32(g.X), Y: int32(g.Y), Width: width, Height: int32(g.Height)},
			Cropping:  math.Rectangle{X: int32(g.XOffset), Y: int32(g.YOffset), Width: width, Height: int32(g.Height)},
			Kerning:   math.Vec3{X: 0, Y: float32(width), Z: float32(int32(g.XAdvance) - width)},
		}
		chars = append(chars, c)
	}
	slices.Sort(chars)

	f.Texture = texture
	f.Glyphs = glyphs
	f.Characters = chars
	f.LineSpacing = int32(desc.Common.LineHeight)
	f.Spacing = 0
	f.DefaultCharacter = nil
	if _, ok := glyphs['?']; ok {
		def := '?'
		f.DefaultCharacter = &def
	}
	return f, nil
}
