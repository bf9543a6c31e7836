package main

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/massung/chip8-vm/chip8"
)

const (
	/// Lines of disassembly shown around the program counter.
	///
	AsmLines = 12

	/// Lines of the log panel.
	///
	LogLines = 8

	lineHeight = GlyphHeight
)

var (
	/// True if pausing emulation (single stepping).
	///
	Paused bool

	/// Current debug window address.
	///
	Address uint16
)

/// Show the HELP text in the log.
///
func DebugHelp() {
	Log.Logln("Virtual keys:")
	Log.Log("  1-2-3-4  Q-W-E-R  A-S-D-F  Z-X-C-V")
	Log.Log("Emulation keys:")
	Log.Log("  ESC   - Quit          BS  - Reboot")
	Log.Log("  SPACE - Pause         F10 - Step")
	Log.Log("  [ ]   - Speed         F3  - Load")
	Log.Log("  Up/Dn - Scroll log    F12 - Screenshot")
}

/// DebugAssembly renders the disassembled instructions around
/// the CHIP-8 program counter.
///
func DebugAssembly(x, y int) {
	pc := VM.PC()

	// keep the window still while the pc moves inside it
	if pc < Address+2 || pc >= Address+2*(AsmLines-1) || (Address^pc)&1 == 1 {
		Address = pc - 2
	}

	// show the disassembled instructions
	for i := 0; i < AsmLines; i++ {
		address := Address + uint16(i*2)

		if address == pc {
			if Paused {
				_ = Renderer.SetDrawColor(176, 32, 57, 255)
			} else {
				_ = Renderer.SetDrawColor(57, 102, 176, 255)
			}

			// highlight the current instruction
			_ = Renderer.FillRect(&sdl.Rect{
				X: int32(x - 2),
				Y: int32(y + i*lineHeight),
				W: 200,
				H: lineHeight,
			})
		}

		// mark instructions that leave the straight line
		if isBranch(address) {
			_ = Renderer.SetDrawColor(216, 164, 66, 255)
			_ = Renderer.FillRect(&sdl.Rect{
				X: int32(x - 2),
				Y: int32(y + i*lineHeight + 2),
				W: 2,
				H: lineHeight - 4,
			})
		}

		DrawText(VM.Disassemble(address), x, y+i*lineHeight)
	}
}

/// Show the current value of all the CHIP-8 registers.
///
func DebugRegisters(x, y int) {
	for i := 0; i < 8; i++ {
		DrawText(fmt.Sprintf("V%X #%02X", i, VM.V(i)), x, y+i*lineHeight)
		DrawText(fmt.Sprintf("V%X #%02X", i+8, VM.V(i+8)), x+60, y+i*lineHeight)
	}

	// shift over for the other registers
	x += 120

	DrawText(fmt.Sprintf("PC %04X", VM.PC()), x, y)
	DrawText(fmt.Sprintf("I  %04X", VM.I()), x, y+lineHeight)
	DrawText(fmt.Sprintf("SP %02X", VM.SP()), x, y+2*lineHeight)
	DrawText(fmt.Sprintf("DT %02X", VM.DelayTimer()), x, y+3*lineHeight)
	DrawText(fmt.Sprintf("ST %02X", VM.SoundTimer()), x, y+4*lineHeight)
	DrawText(fmt.Sprintf("%d", VM.Speed()), x, y+6*lineHeight)

	if VM.Waiting() {
		DrawText("KEY?", x, y+7*lineHeight)
	}
}

/// Show the current log text.
///
func DebugLog(x, y int) {
	const width = 47

	for _, line := range Log.Window(LogLines) {
		if len(line) > width {
			line = line[:width-3] + "..."
		}

		DrawText(line, x, y)

		// advance to the next line
		y += lineHeight
	}
}

// isBranch is true if the instruction at address jumps or skips.
func isBranch(address uint16) bool {
	inst := chip8.Decode(uint16(VM.Peek(address))<<8 | uint16(VM.Peek(address+1)))

	return inst.IsJump() || inst.IsSkip()
}
