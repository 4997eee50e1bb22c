package graphics

import "github.com/spaghettifunk/anima-content/engine/math"

/** @brief One character of a sprite font. */
type FontGlyph struct {
	Character rune
	// Bounds is the glyph rectangle inside the font texture.
	Bounds math.Rectangle
	// Cropping is the offset and size of the glyph cell.
	Cropping math.Rectangle
	// Kerning holds the left bearing, width and right bearing.
	Kerning math.Vec3
}

// SpriteFont is a bitmap font backed by a single texture. The texture is
// owned and released by whoever loaded it, not by the font.
type SpriteFont struct {
	Texture          *Texture2D
	Glyphs           map[rune]FontGlyph
	Characters       []rune
	LineSpacing      int32
	Spacing          float32
	DefaultCharacter *rune
}

// Glyph returns the glyph for c, falling back to the default character.
func (f *SpriteFont) Glyph(c rune) (FontGlyph, bool) {
	if g, ok := f.Glyphs[c]; ok {
		return g, true
	}
	if f.DefaultCharacter != nil {
		g, ok := f.Glyphs[*f.DefaultCharacter]
		return g, ok
	}
	return FontGlyph{}, false
}
