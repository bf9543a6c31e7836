package chip8

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/retroenv/retrogolib/assert"
)

// lit returns the number of pixels turned on.
func (fb Framebuffer) lit() int {
	n := 0
	for y := range fb {
		for _, p := range fb[y] {
			n += int(p)
		}
	}
	return n
}

func TestFramebufferPack(t *testing.T) {
	var fb Framebuffer
	fb[0][0] = 1
	fb[0][9] = 1
	fb[31][63] = 1

	b := fb.Pack()

	assert.Equal(t, Width*Height/8, len(b))
	assert.Equal(t, byte(0x80), b[0])
	assert.Equal(t, byte(0x40), b[1])
	assert.Equal(t, byte(0x01), b[255])

	if diff := cmp.Diff(fb, Unpack(b)); diff != "" {
		t.Errorf("unpack: (-want, +got)\n%s", diff)
	}
}

func TestUnpackShort(t *testing.T) {
	fb := Unpack([]byte{0xFF})

	assert.Equal(t, 8, fb.lit())
	assert.Equal(t, byte(1), fb[0][7])
	assert.Equal(t, byte(0), fb[0][8])
}

func TestFramebufferPixelWraps(t *testing.T) {
	var fb Framebuffer
	fb[1][2] = 1

	assert.Equal(t, byte(1), fb.Pixel(2, 1))
	assert.Equal(t, byte(1), fb.Pixel(2+Width, 1+Height))
	assert.Equal(t, byte(1), fb.Pixel(2-Width, 1-Height))
	assert.Equal(t, byte(0), fb.Pixel(3, 1))
}

func TestFramebufferImage(t *testing.T) {
	var fb Framebuffer
	fb[0][1] = 1

	img := fb.Image(4)

	assert.Equal(t, Width*4, img.Bounds().Dx())
	assert.Equal(t, Height*4, img.Bounds().Dy())
	assert.Equal(t, uint8(0), img.ColorIndexAt(3, 0))
	assert.Equal(t, uint8(1), img.ColorIndexAt(4, 3))
	assert.Equal(t, uint8(1), img.ColorIndexAt(7, 0))
	assert.Equal(t, uint8(0), img.ColorIndexAt(8, 0))

	// scale is at least 1
	assert.Equal(t, Width, fb.Image(0).Bounds().Dx())
}
