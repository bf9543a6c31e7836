package main

import (
	"fmt"
	"image"

	"github.com/veandco/go-sdl2/sdl"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	/// Glyph cell size of the debug font.
	///
	GlyphWidth  = 7
	GlyphHeight = 13

	firstGlyph = ' '
	lastGlyph  = '~'
)

var (
	/// Texture containing every printable ASCII glyph in one row.
	///
	Font *sdl.Texture
)

/// InitFont rasterizes the debug font into a texture.
///
func InitFont() error {
	face := basicfont.Face7x13
	n := int(lastGlyph - firstGlyph + 1)

	atlas := image.NewRGBA(image.Rect(0, 0, n*GlyphWidth, GlyphHeight))

	d := font.Drawer{
		Dst:  atlas,
		Src:  image.White,
		Face: face,
	}

	for c := firstGlyph; c <= lastGlyph; c++ {
		d.Dot = fixed.P((int(c)-firstGlyph)*GlyphWidth, face.Ascent)
		d.DrawString(string(c))
	}

	var err error

	Font, err = Renderer.CreateTexture(uint32(sdl.PIXELFORMAT_RGBA32), sdl.TEXTUREACCESS_STATIC, int32(atlas.Rect.Dx()), int32(atlas.Rect.Dy()))
	if err != nil {
		return fmt.Errorf("creating font texture: %w", err)
	}
	if err = Font.Update(nil, atlas.Pix, atlas.Stride); err != nil {
		return fmt.Errorf("uploading font: %w", err)
	}

	return Font.SetBlendMode(sdl.BLENDMODE_BLEND)
}

/// DrawText using the loaded font.
///
func DrawText(s string, x, y int) {
	src := sdl.Rect{W: GlyphWidth, H: GlyphHeight}
	dst := sdl.Rect{
		X: int32(x),
		Y: int32(y),
		W: GlyphWidth,
		H: GlyphHeight,
	}

	// loop over all the characters in the string
	for _, c := range s {
		if c > firstGlyph && c <= lastGlyph {
			src.X = (c - firstGlyph) * GlyphWidth

			// draw the character to the renderer
			_ = Renderer.Copy(Font, &src, &dst)
		}

		// advance
		dst.X += GlyphWidth
	}
}
