package chip8

// Op identifies a CHIP-8 instruction.
type Op uint8

const (
	OpUnknown Op = iota
	OpCls           // 00E0
	OpRet           // 00EE
	OpJump          // 1NNN
	OpCall          // 2NNN
	OpSkipEqImm     // 3XNN
	OpSkipNeImm     // 4XNN
	OpSkipEqReg     // 5XY0
	OpLoadImm       // 6XNN
	OpAddImm        // 7XNN
	OpMove          // 8XY0
	OpOr            // 8XY1
	OpAnd           // 8XY2
	OpXor           // 8XY3
	OpAdd           // 8XY4
	OpSub           // 8XY5
	OpShr           // 8XY6
	OpSubN          // 8XY7
	OpShl           // 8XYE
	OpSkipNeReg     // 9XY0
	OpLoadI         // ANNN
	OpJumpV0        // BNNN
	OpRand          // CXNN
	OpDraw          // DXYN
	OpSkipKey       // EX9E
	OpSkipNotKey    // EXA1
	OpLoadDelay     // FX07
	OpWaitKey       // FX0A
	OpSetDelay      // FX15
	OpSetSound      // FX18
	OpAddI          // FX1E
	OpFont          // FX29
	OpBCD           // FX33
	OpStore         // FX55
	OpLoad          // FX65

	opCount
)

// Instruction is a decoded opcode. Operand fields not used by Op are
// still filled in from their nibbles.
type Instruction struct {
	Op     Op
	Opcode uint16

	X, Y uint8  // register indices, nibbles 2 and 3
	N    uint8  // low nibble
	NN   uint8  // low byte
	NNN  uint16 // low 12 bits
}

// Decode maps any 16-bit value to exactly one instruction. Values that
// match no instruction decode to OpUnknown.
func Decode(opcode uint16) Instruction {
	return Instruction{
		Op:     decodeOp(opcode),
		Opcode: opcode,
		X:      uint8(opcode >> 8 & 0xF),
		Y:      uint8(opcode >> 4 & 0xF),
		N:      uint8(opcode & 0xF),
		NN:     uint8(opcode & 0xFF),
		NNN:    opcode & 0xFFF,
	}
}

func decodeOp(opcode uint16) Op {
	switch opcode >> 12 {
	case 0x0:
		switch opcode {
		case 0x00E0:
			return OpCls
		case 0x00EE:
			return OpRet
		}
	case 0x1:
		return OpJump
	case 0x2:
		return OpCall
	case 0x3:
		return OpSkipEqImm
	case 0x4:
		return OpSkipNeImm
	case 0x5:
		if opcode&0xF == 0 {
			return OpSkipEqReg
		}
	case 0x6:
		return OpLoadImm
	case 0x7:
		return OpAddImm
	case 0x8:
		return aluOps[opcode&0xF]
	case 0x9:
		if opcode&0xF == 0 {
			return OpSkipNeReg
		}
	case 0xA:
		return OpLoadI
	case 0xB:
		return OpJumpV0
	case 0xC:
		return OpRand
	case 0xD:
		return OpDraw
	case 0xE:
		switch opcode & 0xFF {
		case 0x9E:
			return OpSkipKey
		case 0xA1:
			return OpSkipNotKey
		}
	case 0xF:
		return miscOps[opcode&0xFF]
	}

	return OpUnknown
}

// 8XYN selects on the low nibble.
var aluOps = [16]Op{
	0x0: OpMove,
	0x1: OpOr,
	0x2: OpAnd,
	0x3: OpXor,
	0x4: OpAdd,
	0x5: OpSub,
	0x6: OpShr,
	0x7: OpSubN,
	0xE: OpShl,
}

// FXNN selects on the low byte.
var miscOps = [256]Op{
	0x07: OpLoadDelay,
	0x0A: OpWaitKey,
	0x15: OpSetDelay,
	0x18: OpSetSound,
	0x1E: OpAddI,
	0x29: OpFont,
	0x33: OpBCD,
	0x55: OpStore,
	0x65: OpLoad,
}

var opPatterns = [opCount]string{
	"????",
	"00E0", "00EE", "1NNN", "2NNN", "3XNN", "4XNN", "5XY0", "6XNN", "7XNN",
	"8XY0", "8XY1", "8XY2", "8XY3", "8XY4", "8XY5", "8XY6", "8XY7", "8XYE",
	"9XY0", "ANNN", "BNNN", "CXNN", "DXYN", "EX9E", "EXA1",
	"FX07", "FX0A", "FX15", "FX18", "FX1E", "FX29", "FX33", "FX55", "FX65",
}

// String returns the opcode pattern, e.g. "8XY4".
func (op Op) String() string {
	if op >= opCount {
		return opPatterns[OpUnknown]
	}
	return opPatterns[op]
}

// IsJump is true for instructions that set the program counter
// directly instead of advancing it.
func (inst Instruction) IsJump() bool {
	switch inst.Op {
	case OpJump, OpCall, OpRet, OpJumpV0:
		return true
	}
	return false
}

// IsSkip is true for the conditional skip instructions.
func (inst Instruction) IsSkip() bool {
	switch inst.Op {
	case OpSkipEqImm, OpSkipNeImm, OpSkipEqReg, OpSkipNeReg, OpSkipKey, OpSkipNotKey:
		return true
	}
	return false
}
