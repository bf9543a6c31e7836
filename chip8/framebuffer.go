package chip8

import (
	"image"
	"image/color"
)

const (
	Width  = 64
	Height = 32
)

// Framebuffer is the 64x32 display, indexed [y][x]. Every pixel is 0 or 1.
type Framebuffer [Height][Width]byte

// Palette used by Image: index 0 is an unlit pixel, 1 is lit.
var Palette = color.Palette{
	color.RGBA{R: 143, G: 145, B: 133, A: 255},
	color.RGBA{R: 17, G: 29, B: 43, A: 255},
}

// Pixel returns the pixel at x, y, wrapping coordinates onto the screen.
func (fb Framebuffer) Pixel(x, y int) byte {
	return fb[mod(y, Height)][mod(x, Width)]
}

// Pack returns the display as 256 bytes, 8 pixels per byte, MSB first.
// For example, pixel <0,0> is bit 0x80 of byte 0.
func (fb Framebuffer) Pack() []byte {
	out := make([]byte, Width*Height/8)

	for y := range fb {
		for x, p := range fb[y] {
			if p != 0 {
				i := y*Width + x
				out[i>>3] |= 0x80 >> uint(i&7)
			}
		}
	}

	return out
}

// Unpack is the inverse of Pack. Short input leaves the remaining
// pixels unlit.
func Unpack(b []byte) Framebuffer {
	var fb Framebuffer

	for i := 0; i < Width*Height && i>>3 < len(b); i++ {
		if b[i>>3]&(0x80>>uint(i&7)) != 0 {
			fb[i/Width][i%Width] = 1
		}
	}

	return fb
}

// Image renders the display at scale pixels per CHIP-8 pixel.
func (fb Framebuffer) Image(scale int) *image.Paletted {
	if scale < 1 {
		scale = 1
	}

	img := image.NewPaletted(image.Rect(0, 0, Width*scale, Height*scale), Palette)

	for y := 0; y < Height*scale; y++ {
		row := fb[y/scale]
		for x := 0; x < Width*scale; x++ {
			img.SetColorIndex(x, y, row[x/scale])
		}
	}

	return img
}

func mod(n, m int) int {
	n %= m
	if n < 0 {
		n += m
	}
	return n
}
