package chip8

import (
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/retroenv/retrogolib/assert"
)

// render turns part of the framebuffer into rows of '#' and '.'.
func render(fb Framebuffer, x, y, w, h int) string {
	var sb strings.Builder

	for r := y; r < y+h; r++ {
		for c := x; c < x+w; c++ {
			if fb.Pixel(c, r) != 0 {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}

	return sb.String()
}

func TestDrawFontGlyph(t *testing.T) {
	vm, _, _ := newTestMachine(t,
		0x6A08, // LD VA, 8
		0xF029, // LD F, V0 (glyph 0)
		0x6B02, // LD VB, 2
		0xDAB5, // DRW VA, VB, 5
	)
	steps(t, vm, 4)

	want := "" +
		"####\n" +
		"#..#\n" +
		"#..#\n" +
		"#..#\n" +
		"####\n"

	if diff := cmp.Diff(want, render(vm.Framebuffer(), 8, 2, 4, 5)); diff != "" {
		t.Errorf("glyph: (-want, +got)\n%s", diff)
	}

	assert.Equal(t, 14, vm.Framebuffer().lit())
	assert.Equal(t, byte(0), vm.V(0xF))
	assert.True(t, vm.TakeRedrawFlag())
	assert.False(t, vm.TakeRedrawFlag())
}

func TestDrawCollisionAndXOR(t *testing.T) {
	vm, _, _ := newTestMachine(t,
		0xA000, // LD I, glyph 0
		0xD005, // DRW V0, V0, 5
		0xD005, // DRW V0, V0, 5
	)
	steps(t, vm, 2)

	first := vm.Framebuffer()
	assert.Equal(t, byte(0), vm.V(0xF))

	steps(t, vm, 1)

	// drawing the same sprite twice erases it
	assert.Equal(t, byte(1), vm.V(0xF))
	if diff := cmp.Diff(Framebuffer{}, vm.Framebuffer()); diff != "" {
		t.Errorf("second draw: (-want, +got)\n%s", diff)
	}
	assert.Equal(t, 14, first.lit())
}

func TestDrawXORIsIdempotent(t *testing.T) {
	r := rand.New(rand.NewSource(7))

	for i := 0; i < 20; i++ {
		vm, _, _ := newTestMachine(t)

		// random background
		for y := range vm.video {
			for x := range vm.video[y] {
				vm.video[y][x] = byte(r.Intn(2))
			}
		}
		for a := 0x300; a < 0x30F; a++ {
			vm.memory[a] = byte(r.Intn(256))
		}
		before := vm.Framebuffer()

		vm.v[1] = byte(r.Intn(256))
		vm.v[2] = byte(r.Intn(256))
		vm.i = 0x300
		n := uint8(r.Intn(16))

		vm.drw(1, 2, n)
		vm.drw(1, 2, n)

		if diff := cmp.Diff(before, vm.Framebuffer()); diff != "" {
			t.Fatalf("round %d: (-want, +got)\n%s", i, diff)
		}
	}
}

func TestDrawCollisionOnlyOnUnset(t *testing.T) {
	vm, _, _ := newTestMachine(t)

	// a lit pixel next to the sprite doesn't count
	vm.video[0][8] = 1
	vm.memory[0x300] = 0xFF
	vm.i = 0x300

	vm.drw(0, 0, 1)
	assert.Equal(t, byte(0), vm.v[0xF])

	// one overlapping pixel does
	vm.video[0][0] = 0
	vm.video[0][1] = 1
	vm.memory[0x300] = 0x40
	vm.drw(0, 0, 1)
	assert.Equal(t, byte(1), vm.v[0xF])
	assert.Equal(t, byte(0), vm.video[0][1])
}

func TestDrawWrap(t *testing.T) {
	vm, _, _ := newTestMachine(t,
		0x603C, // LD V0, 60
		0x611E, // LD V1, 30
		0xA300, // LD I, #300
		0xD014, // DRW V0, V1, 4
	)
	for a := 0x300; a < 0x304; a++ {
		vm.memory[a] = 0xFF
	}

	steps(t, vm, 3)
	err := vm.Step()

	assert.True(t, errors.Is(err, ErrDrawOutOfBounds))
	assert.Equal(t, uint16(0x208), vm.PC())
	assert.Equal(t, 32, vm.Framebuffer().lit())

	fb := vm.Framebuffer()
	assert.Equal(t, byte(1), fb[31][63])
	assert.Equal(t, byte(1), fb[0][0])
	assert.Equal(t, byte(1), fb[1][3])
	assert.Equal(t, byte(0), fb[2][0])
}

func TestDrawClip(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	vm := New(WithClock(clock), WithDrawPolicy(DrawClip))

	vm.v[0] = 60
	vm.v[1] = 30
	vm.i = 0x300
	for a := 0x300; a < 0x304; a++ {
		vm.memory[a] = 0xFF
	}

	assert.True(t, vm.drw(0, 1, 4))
	assert.Equal(t, 8, vm.Framebuffer().lit())
	assert.Equal(t, byte(0), vm.video[0][0])
	assert.Equal(t, byte(1), vm.video[31][63])
}

func TestDrawOriginWraps(t *testing.T) {
	vm, _, _ := newTestMachine(t)

	// 70,35 is 6,3 on screen and not out of bounds
	vm.v[0] = 70
	vm.v[1] = 35
	vm.memory[0x300] = 0x80
	vm.i = 0x300

	assert.False(t, vm.drw(0, 1, 1))
	assert.Equal(t, byte(1), vm.video[3][6])
}

func TestClearScreen(t *testing.T) {
	vm, _, _ := newTestMachine(t, 0xA000, 0xD005, 0x00E0)
	steps(t, vm, 2)
	assert.True(t, vm.TakeRedrawFlag())

	steps(t, vm, 1)
	assert.Equal(t, 0, vm.Framebuffer().lit())
	assert.True(t, vm.TakeRedrawFlag())
	assert.Equal(t, uint16(0x206), vm.PC())
}
