package readers

import (
	"reflect"

	"github.com/cockroachdb/errors"

	"github.com/spaghettifunk/anima-content/engine/content/xnb"
	"github.com/spaghettifunk/anima-content/engine/core"
	"github.com/spaghettifunk/anima-content/engine/graphics"
	"github.com/spaghettifunk/anima-content/engine/math"
)

type spriteFontReader struct{}

func (spriteFontReader) TargetType() reflect.Type { return reflect.TypeFor[*graphics.SpriteFont]() }
func (spriteFontReader) ReadsIntoExisting() bool  { return true }

// Layout: texture, glyph bounds, cropping, characters (all object
// references), line spacing, spacing, kerning, then an optional default
// character.
func (spriteFontReader) Read(r *xnb.ContentReader, existing xnb.Instance) (any, error) {
	f, ok := xnb.Existing[*graphics.SpriteFont](existing)
	if !ok {
		f = &graphics.SpriteFont{}
	}

	// Reuse the texture object on reload.
	tex := xnb.Fresh()
	if f.Texture != nil {
		tex = xnb.InPlace(f.Texture)
	}
	texture, err := xnb.ReadObjectAs[*graphics.Texture2D](r, tex)
	if err != nil {
		return nil, errors.Wrap(err, "font texture")
	}
	bounds, err := xnb.ReadObjectAs[[]math.Rectangle](r, xnb.Fresh())
	if err != nil {
		return nil, errors.Wrap(err, "glyph bounds")
	}
	cropping, err := xnb.ReadObjectAs[[]math.Rectangle](r, xnb.Fresh())
	if err != nil {
		return nil, errors.Wrap(err, "glyph cropping")
	}
	chars, err := xnb.ReadObjectAs[[]rune](r, xnb.Fresh())
	if err != nil {
		return nil, errors.Wrap(err, "characters")
	}
	lineSpacing, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	spacing, err := r.ReadSingle()
	if err != nil {
		return nil, err
	}
	kerning, err := xnb.ReadObjectAs[[]math.Vec3](r, xnb.Fresh())
	if err != nil {
		return nil, errors.Wrap(err, "kerning")
	}
	var def *rune
	hasDefault, err := r.ReadBoolean()
	if err != nil {
		return nil, err
	}
	if hasDefault {
		c, err := r.ReadChar()
		if err != nil {
			return nil, err
		}
		def = &c
	}

	if len(bounds) != len(chars) || len(cropping) != len(chars) || len(kerning) != len(chars) {
		return nil, core.FormatErrorf("sprite font glyph tables disagree: %d bounds, %d cropping, %d characters, %d kerning",
			len(bounds), len(cropping), len(chars), len(kerning))
	}
	glyphs := make(map[rune]graphics.FontGlyph, len(chars))
	for i, c := range chars {
		glyphs[c] = graphics.FontGlyph{
			Character: c,
			Bounds:    bounds[i],
			Cropping:  cropping[i],
			Kerning:   kerning[i],
		}
	}

	f.Texture = texture
	f.Glyphs = glyphs
	f.Characters = chars
	f.LineSpacing = lineSpacing
	f.Spacing = spacing
	f.DefaultCharacter = def
	return f, nil
}
