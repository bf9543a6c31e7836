package chip8

import (
	"errors"
	"fmt"
)

var (
	// ErrProgramTooLarge is returned by LoadProgram for programs that
	// don't fit between 0x200 and the end of memory.
	ErrProgramTooLarge = errors.New("program too large to fit in memory")

	// ErrUnknownOpcode matches faults from opcodes that decode to
	// OpUnknown, 0NNN included.
	ErrUnknownOpcode = errors.New("unknown opcode")

	// ErrStackOverflow matches a call made with all 16 stack cells used.
	ErrStackOverflow = errors.New("stack overflow")

	// ErrStackUnderflow matches a return made with an empty stack.
	ErrStackUnderflow = errors.New("stack underflow")

	// ErrDrawOutOfBounds matches a sprite that crossed the screen edge.
	// The sprite was still drawn, wrapped or clipped.
	ErrDrawOutOfBounds = errors.New("sprite drawn out of bounds")
)

// FaultKind classifies a recoverable execution fault.
type FaultKind uint8

// Fault kinds, each matching one of the Err sentinels.
const (
	// UnknownOpcode skips the instruction.
	UnknownOpcode FaultKind = iota + 1

	// StackOverflow drops the call and moves on to the next instruction.
	StackOverflow

	// StackUnderflow drops the return and moves on to the next instruction.
	StackUnderflow

	// DrawOutOfBounds is reported after the sprite is drawn.
	DrawOutOfBounds
)

func (k FaultKind) String() string {
	return k.sentinel().Error()
}

func (k FaultKind) sentinel() error {
	switch k {
	case UnknownOpcode:
		return ErrUnknownOpcode
	case StackOverflow:
		return ErrStackOverflow
	case StackUnderflow:
		return ErrStackUnderflow
	case DrawOutOfBounds:
		return ErrDrawOutOfBounds
	}
	return errors.New("unknown fault")
}

// Fault is returned by Step when an instruction misbehaves. The machine
// has already recovered when it is returned; execution may continue.
type Fault struct {
	Kind   FaultKind
	PC     uint16
	Opcode uint16
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%s: %04X at %04X", f.Kind, f.Opcode, f.PC)
}

// Unwrap lets errors.Is match the Err* sentinels.
func (f *Fault) Unwrap() error {
	return f.Kind.sentinel()
}

func hex16(n uint16) string {
	return fmt.Sprintf("%04X", n)
}
