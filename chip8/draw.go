package chip8

// DrawPolicy decides what happens to sprite pixels that land past the
// right or bottom edge of the screen.
type DrawPolicy uint8

const (
	// DrawWrap wraps pixels around to the opposite edge.
	DrawWrap DrawPolicy = iota

	// DrawClip drops them. The sprite origin still wraps.
	DrawClip
)

/// draw a sprite at I to video memory at vx, vy. VF is set when any lit
/// pixel is turned off. Returns true if part of the sprite fell off the
/// screen.
///
func (vm *Machine) drw(x, y, n uint8) (outside bool) {
	c := byte(0)

	// origin always lands on screen
	ox := int(vm.v[x]) % Width
	oy := int(vm.v[y]) % Height

	// draw each row of the sprite
	for row := 0; row < int(n); row++ {
		s := vm.memory[(vm.i+uint16(row))&addressMask]
		line := oy + row

		for col := 0; col < 8; col++ {
			if s&(0x80>>col) == 0 {
				continue
			}

			px, py := ox+col, line

			// pixels that are off screen
			if px >= Width || py >= Height {
				outside = true

				if vm.policy == DrawClip {
					continue
				}

				px %= Width
				py %= Height
			}

			c |= vm.video[py][px]
			vm.video[py][px] ^= 1
		}
	}

	// set carry flag if any collision occurred
	vm.v[0xF] = c
	vm.redraw = true

	return outside
}
