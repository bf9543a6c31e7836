package chip8

import "fmt"

/// String renders the instruction in assembler syntax. Assemble accepts
/// everything String produces.
///
func (inst Instruction) String() string {
	a := inst.NNN
	b := inst.NN
	n := inst.N
	x := inst.X
	y := inst.Y

	switch inst.Op {
	case OpCls:
		return "CLS"
	case OpRet:
		return "RET"
	case OpJump:
		return fmt.Sprintf("JP     #%03X", a)
	case OpCall:
		return fmt.Sprintf("CALL   #%03X", a)
	case OpSkipEqImm:
		return fmt.Sprintf("SE     V%X, #%02X", x, b)
	case OpSkipNeImm:
		return fmt.Sprintf("SNE    V%X, #%02X", x, b)
	case OpSkipEqReg:
		return fmt.Sprintf("SE     V%X, V%X", x, y)
	case OpLoadImm:
		return fmt.Sprintf("LD     V%X, #%02X", x, b)
	case OpAddImm:
		return fmt.Sprintf("ADD    V%X, #%02X", x, b)
	case OpMove:
		return fmt.Sprintf("LD     V%X, V%X", x, y)
	case OpOr:
		return fmt.Sprintf("OR     V%X, V%X", x, y)
	case OpAnd:
		return fmt.Sprintf("AND    V%X, V%X", x, y)
	case OpXor:
		return fmt.Sprintf("XOR    V%X, V%X", x, y)
	case OpAdd:
		return fmt.Sprintf("ADD    V%X, V%X", x, y)
	case OpSub:
		return fmt.Sprintf("SUB    V%X, V%X", x, y)
	case OpShr:
		return fmt.Sprintf("SHR    V%X", x)
	case OpSubN:
		return fmt.Sprintf("SUBN   V%X, V%X", x, y)
	case OpShl:
		return fmt.Sprintf("SHL    V%X", x)
	case OpSkipNeReg:
		return fmt.Sprintf("SNE    V%X, V%X", x, y)
	case OpLoadI:
		return fmt.Sprintf("LD     I, #%03X", a)
	case OpJumpV0:
		return fmt.Sprintf("JP     V0, #%03X", a)
	case OpRand:
		return fmt.Sprintf("RND    V%X, #%02X", x, b)
	case OpDraw:
		return fmt.Sprintf("DRW    V%X, V%X, %d", x, y, n)
	case OpSkipKey:
		return fmt.Sprintf("SKP    V%X", x)
	case OpSkipNotKey:
		return fmt.Sprintf("SKNP   V%X", x)
	case OpLoadDelay:
		return fmt.Sprintf("LD     V%X, DT", x)
	case OpWaitKey:
		return fmt.Sprintf("LD     V%X, K", x)
	case OpSetDelay:
		return fmt.Sprintf("LD     DT, V%X", x)
	case OpSetSound:
		return fmt.Sprintf("LD     ST, V%X", x)
	case OpAddI:
		return fmt.Sprintf("ADD    I, V%X", x)
	case OpFont:
		return fmt.Sprintf("LD     F, V%X", x)
	case OpBCD:
		return fmt.Sprintf("LD     B, V%X", x)
	case OpStore:
		return fmt.Sprintf("LD     [I], V%X", x)
	case OpLoad:
		return fmt.Sprintf("LD     V%X, [I]", x)
	}

	// unknown instruction, emitted as raw data
	return fmt.Sprintf("WORD   #%04X", inst.Opcode)
}

/// Disassemble the instruction at an address.
///
func (vm *Machine) Disassemble(address uint16) string {
	address &= addressMask

	// fetch the instruction at this location
	inst := uint16(vm.memory[address])<<8 | uint16(vm.memory[(address+1)&addressMask])

	// end of program memory?
	if inst == 0 {
		return fmt.Sprintf("%04X -", address)
	}

	return fmt.Sprintf("%04X - %s", address, Decode(inst))
}
