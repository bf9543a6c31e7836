package chip8

/// execute runs one decoded instruction. Every handler leaves the program
/// counter pointing at the next instruction to fetch.
///
func (vm *Machine) execute(inst Instruction) *Fault {
	pc := vm.pc

	// operands
	a := inst.NNN
	b := inst.NN
	n := inst.N
	x := inst.X
	y := inst.Y

	switch inst.Op {
	case OpCls:
		vm.cls()
	case OpRet:
		return vm.ret(pc, inst.Opcode)
	case OpJump:
		vm.jump(a)
		return nil
	case OpCall:
		return vm.call(pc, inst.Opcode, a)
	case OpSkipEqImm:
		vm.skip(vm.v[x] == b)
		return nil
	case OpSkipNeImm:
		vm.skip(vm.v[x] != b)
		return nil
	case OpSkipEqReg:
		vm.skip(vm.v[x] == vm.v[y])
		return nil
	case OpSkipNeReg:
		vm.skip(vm.v[x] != vm.v[y])
		return nil
	case OpSkipKey:
		vm.skip(vm.keys[vm.v[x]&0xF])
		return nil
	case OpSkipNotKey:
		vm.skip(!vm.keys[vm.v[x]&0xF])
		return nil
	case OpLoadImm:
		vm.v[x] = b
	case OpAddImm:
		vm.v[x] += b
	case OpMove:
		vm.v[x] = vm.v[y]
	case OpOr:
		vm.v[x] |= vm.v[y]
	case OpAnd:
		vm.v[x] &= vm.v[y]
	case OpXor:
		vm.v[x] ^= vm.v[y]
	case OpAdd:
		vm.addXY(x, y)
	case OpSub:
		vm.subXY(x, y)
	case OpShr:
		vm.shr(x)
	case OpSubN:
		vm.subYX(x, y)
	case OpShl:
		vm.shl(x)
	case OpLoadI:
		vm.i = a
	case OpJumpV0:
		vm.jump(a + uint16(vm.v[0]))
		return nil
	case OpRand:
		vm.rnd(x, b)
	case OpDraw:
		clipped := vm.drw(x, y, n)

		vm.pc += 2
		if clipped {
			return &Fault{Kind: DrawOutOfBounds, PC: pc, Opcode: inst.Opcode}
		}
		return nil
	case OpLoadDelay:
		vm.v[x] = vm.dt
	case OpWaitKey:
		vm.loadXK(x)
	case OpSetDelay:
		vm.dt = vm.v[x]
	case OpSetSound:
		vm.st = vm.v[x]
	case OpAddI:
		vm.i += uint16(vm.v[x])
	case OpFont:
		vm.i = uint16(vm.v[x]) * FontHeight
	case OpBCD:
		vm.loadB(x)
	case OpStore:
		vm.saveRegs(x)
	case OpLoad:
		vm.loadRegs(x)
	default:
		vm.pc += 2
		return &Fault{Kind: UnknownOpcode, PC: pc, Opcode: inst.Opcode}
	}

	vm.pc += 2

	return nil
}

/// Clear the video display memory.
///
func (vm *Machine) cls() {
	vm.video = Framebuffer{}
	vm.redraw = true
}

/// call a subroutine at address. A full stack drops the call.
///
func (vm *Machine) call(pc, opcode, address uint16) *Fault {
	if vm.sp == StackDepth {
		vm.pc += 2
		return &Fault{Kind: StackOverflow, PC: pc, Opcode: opcode}
	}

	// push the return address
	vm.stack[vm.sp] = vm.pc + 2
	vm.sp++

	// jump to address
	vm.jump(address)

	return nil
}

/// return from subroutine. An empty stack drops the return.
///
func (vm *Machine) ret(pc, opcode uint16) *Fault {
	if vm.sp == 0 {
		vm.pc += 2
		return &Fault{Kind: StackUnderflow, PC: pc, Opcode: opcode}
	}

	vm.sp--
	vm.jump(vm.stack[vm.sp])

	return nil
}

/// jump to address.
///
func (vm *Machine) jump(address uint16) {
	vm.pc = address & addressMask
}

/// skip the next instruction if cond holds.
///
func (vm *Machine) skip(cond bool) {
	if cond {
		vm.pc += 4
	} else {
		vm.pc += 2
	}
}

/// add vy to vx and set carry.
///
func (vm *Machine) addXY(x, y uint8) {
	sum := uint16(vm.v[x]) + uint16(vm.v[y])

	vm.v[x] = byte(sum)
	vm.v[0xF] = byte(sum >> 8)
}

/// subtract vy from vx, set carry if no borrow.
///
func (vm *Machine) subXY(x, y uint8) {
	vx, vy := vm.v[x], vm.v[y]

	vm.v[x] = vx - vy
	vm.v[0xF] = flag(vx >= vy)
}

/// subtract vx from vy and store in vx, set carry if no borrow.
///
func (vm *Machine) subYX(x, y uint8) {
	vx, vy := vm.v[x], vm.v[y]

	vm.v[x] = vy - vx
	vm.v[0xF] = flag(vy >= vx)
}

/// shr vx 1 bit, set carry to LSB of vx before shift.
///
func (vm *Machine) shr(x uint8) {
	vx := vm.v[x]

	vm.v[x] = vx >> 1
	vm.v[0xF] = vx & 1
}

/// shl vx 1 bit, set carry to MSB of vx before shift.
///
func (vm *Machine) shl(x uint8) {
	vx := vm.v[x]

	vm.v[x] = vx << 1
	vm.v[0xF] = vx >> 7
}

/// load a random number & n into vx.
///
func (vm *Machine) rnd(x, b uint8) {
	vm.v[x] = byte(vm.rng.Intn(256)) & b
}

/// load vx with the highest key held down. Step never gets here unless
/// one is.
///
func (vm *Machine) loadXK(x uint8) {
	for k := 15; k >= 0; k-- {
		if vm.keys[k] {
			vm.v[x] = byte(k)
			return
		}
	}
}

func (vm *Machine) anyKey() bool {
	for _, down := range vm.keys {
		if down {
			return true
		}
	}
	return false
}

/// load address with BCD of vx.
///
func (vm *Machine) loadB(x uint8) {
	n := vm.v[x]

	vm.memory[vm.i&addressMask] = n / 100
	vm.memory[(vm.i+1)&addressMask] = n / 10 % 10
	vm.memory[(vm.i+2)&addressMask] = n % 10
}

/// save registers v0..vx to I, leaving I past the last one.
///
func (vm *Machine) saveRegs(x uint8) {
	for r := uint16(0); r <= uint16(x); r++ {
		vm.memory[(vm.i+r)&addressMask] = vm.v[r]
	}

	vm.i += uint16(x) + 1
}

/// load registers v0..vx from I, leaving I past the last one.
///
func (vm *Machine) loadRegs(x uint8) {
	for r := uint16(0); r <= uint16(x); r++ {
		vm.v[r] = vm.memory[(vm.i+r)&addressMask]
	}

	vm.i += uint16(x) + 1
}

func flag(b bool) byte {
	if b {
		return 1
	}
	return 0
}
