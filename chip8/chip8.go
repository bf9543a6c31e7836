package chip8

import (
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	/// MemorySize is the number of addressable bytes.
	///
	MemorySize = 0x1000

	/// ProgramStart is where programs are loaded and execution begins.
	///
	ProgramStart = 0x200

	/// MaxProgramSize is the largest program LoadProgram accepts.
	///
	MaxProgramSize = MemorySize - ProgramStart

	/// StackDepth is how many return addresses the stack holds.
	///
	StackDepth = 16

	/// DefaultSpeed is how many instructions Process executes per
	/// second. The RCA 1802 ran at 4-5 MHz, and each instruction took
	/// 16-24 clock cycles. Best estimations are the 1802 could interpret
	/// 500 CHIP-8 instructions per second.
	///
	DefaultSpeed = 500

	/// Limits of the instruction rate.
	///
	MinSpeed = 100
	MaxSpeed = 2000

	addressMask = MemorySize - 1
)

/// Machine is the CHIP-8 virtual machine. It owns all architectural
/// state. Drivers mutate it only through Step, LoadProgram and SetKey.
///
type Machine struct {
	/// ROM is the last program loaded. Reboot copies it back into
	/// memory after a reset.
	///
	rom []byte

	/// Memory addressable by CHIP-8. The first 80 bytes hold the font
	/// sprites.
	///
	memory [MemorySize]byte

	/// Video memory, one byte per pixel.
	///
	video Framebuffer

	/// Set whenever the framebuffer changes, cleared by TakeRedrawFlag.
	///
	redraw bool

	/// PC is the program counter. All programs begin at 0x200.
	///
	pc uint16

	/// I is the address register.
	///
	i uint16

	/// V are the 16 virtual registers.
	///
	v [16]byte

	/// Return addresses and the stack pointer (number of used cells).
	///
	stack [StackDepth]uint16
	sp    uint8

	/// The delay and sound timer registers.
	///
	dt byte
	st byte

	/// lastTick is when the timers were last decremented.
	///
	lastTick time.Time

	/// Keys hold the current state for the 16-key pad keys.
	///
	keys [16]bool

	/// True while FX0A is waiting for a key.
	///
	waiting bool

	/// start is when emulation began (for Process), cycles is how many
	/// instructions have been stepped since.
	///
	start  time.Time
	cycles int64
	speed  int64

	clock  Clock
	rng    *rand.Rand
	seeded bool
	policy DrawPolicy
	log    logrus.FieldLogger
}

/// New creates a CHIP-8 virtual machine in its reset state.
///
func New(opts ...Option) *Machine {
	vm := &Machine{
		clock:  systemClock{},
		speed:  DefaultSpeed,
		policy: DrawWrap,
	}

	for _, opt := range opts {
		opt(vm)
	}

	if vm.log == nil {
		vm.log = defaultLogger()
	}

	vm.Reset()

	return vm
}

func defaultLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetLevel(logrus.WarnLevel)

	return l.WithField("component", "chip8")
}

/// Reset zeroes all state, copies the font into low memory and points
/// the program counter at 0x200. The loaded program is forgotten from
/// memory but kept for Reboot.
///
func (vm *Machine) Reset() {
	vm.memory = [MemorySize]byte{}
	copy(vm.memory[:], Font[:])

	// reset video memory
	vm.video = Framebuffer{}
	vm.redraw = false

	// reset keys
	vm.keys = [16]bool{}
	vm.waiting = false

	// reset program counter and stack pointer
	vm.pc = ProgramStart
	vm.stack = [StackDepth]uint16{}
	vm.sp = 0

	// reset address and virtual registers
	vm.i = 0
	vm.v = [16]byte{}

	// reset timer registers
	vm.dt = 0
	vm.st = 0

	// reset the clock and cycles executed
	now := vm.clock.Now()

	vm.lastTick = now
	vm.start = now
	vm.cycles = 0

	// an injected generator keeps its own seed
	if !vm.seeded {
		vm.rng = rand.New(rand.NewSource(now.UnixNano()))
	}
}

/// LoadProgram copies a program into memory at 0x200. Nothing changes
/// if the program doesn't fit.
///
func (vm *Machine) LoadProgram(program []byte) error {
	if len(program) > MaxProgramSize {
		return ErrProgramTooLarge
	}

	copy(vm.memory[ProgramStart:], program)

	vm.rom = append(vm.rom[:0], program...)
	vm.log.WithField("size", len(program)).Debug("program loaded")

	return nil
}

/// Reboot resets the machine and reloads the last program.
///
func (vm *Machine) Reboot() {
	vm.Reset()

	copy(vm.memory[ProgramStart:], vm.rom)
}

/// SetKey latches the state of a key. Codes outside 0x0-0xF are ignored.
///
func (vm *Machine) SetKey(code uint, pressed bool) {
	if code < 16 {
		vm.keys[code] = pressed
	}
}

/// PressKey emulates a CHIP-8 key being pressed.
///
func (vm *Machine) PressKey(code uint) {
	vm.SetKey(code, true)
}

/// ReleaseKey emulates a CHIP-8 key being released.
///
func (vm *Machine) ReleaseKey(code uint) {
	vm.SetKey(code, false)
}

/// Framebuffer returns a copy of video memory.
///
func (vm *Machine) Framebuffer() Framebuffer {
	return vm.video
}

/// TakeRedrawFlag returns true if the framebuffer changed since the
/// last call.
///
func (vm *Machine) TakeRedrawFlag() bool {
	r := vm.redraw
	vm.redraw = false

	return r
}

/// ToneActive is true while the sound timer is running.
///
func (vm *Machine) ToneActive() bool {
	return vm.st > 0
}

/// PC returns the program counter.
///
func (vm *Machine) PC() uint16 { return vm.pc }

/// I returns the address register.
///
func (vm *Machine) I() uint16 { return vm.i }

/// SP returns the number of return addresses on the stack.
///
func (vm *Machine) SP() uint8 { return vm.sp }

/// V returns register VX.
///
func (vm *Machine) V(x int) byte { return vm.v[x&0xF] }

/// DelayTimer returns the delay timer register.
///
func (vm *Machine) DelayTimer() byte { return vm.dt }

/// SoundTimer returns the sound timer register.
///
func (vm *Machine) SoundTimer() byte { return vm.st }

/// Peek returns the byte at a memory address.
///
func (vm *Machine) Peek(address uint16) byte { return vm.memory[address&addressMask] }

/// Waiting is true while FX0A is blocked on the key pad.
///
func (vm *Machine) Waiting() bool { return vm.waiting }

/// Speed returns the instruction rate used by Process.
///
func (vm *Machine) Speed() int64 { return vm.speed }

/// IncSpeed raises the instruction rate by 100 Hz.
///
func (vm *Machine) IncSpeed() {
	vm.setSpeed(vm.speed + 100)
}

/// DecSpeed lowers the instruction rate by 100 Hz.
///
func (vm *Machine) DecSpeed() {
	vm.setSpeed(vm.speed - 100)
}

func clampSpeed(hz int64) int64 {
	return min(max(hz, MinSpeed), MaxSpeed)
}

func (vm *Machine) setSpeed(hz int64) {
	hz = clampSpeed(hz)

	// rebase the clock so the budget doesn't jump
	vm.start = vm.clock.Now()
	vm.cycles = 0
	vm.speed = hz

	vm.log.WithField("speed", hz).Info("instruction rate changed")
}

/// Process CHIP-8 emulation. This will execute until the clock is caught
/// up. Faults are logged and execution continues past them.
///
func (vm *Machine) Process(paused bool) {
	elapsed := vm.clock.Now().Sub(vm.start)

	// calculate how many cycles should have been executed, dividing
	// first so months of uptime can't overflow
	count := int64(elapsed / (time.Second / time.Duration(vm.speed)))

	// if paused, count cycles without stepping
	if paused {
		vm.cycles = count
		return
	}

	for vm.cycles < count {
		_ = vm.Step()

		// if waiting for a key, catch up
		if vm.waiting {
			vm.cycles = count
		}
	}
}

/// Step the CHIP-8 virtual machine a single instruction, then decay the
/// timers if a 60 Hz period has passed. FX0A without a key pressed is a
/// complete no-op.
///
func (vm *Machine) Step() error {
	inst := Decode(vm.fetch())

	if inst.Op == OpWaitKey && !vm.anyKey() {
		vm.waiting = true
		return nil
	}
	vm.waiting = false

	err := vm.execute(inst)

	// increment the cycle count
	vm.cycles++

	vm.tick()

	if err != nil {
		entry := vm.log.WithFields(logrus.Fields{
			"pc":     hex16(err.PC),
			"opcode": hex16(err.Opcode),
		})

		// sprites crossing the edge are routine for some programs
		if err.Kind == DrawOutOfBounds {
			entry.Debug(err.Kind.String())
		} else {
			entry.Warn(err.Kind.String())
		}

		return err
	}

	return nil
}

/// Fetch the next 16-bit instruction to execute.
///
func (vm *Machine) fetch() uint16 {
	hi := vm.memory[vm.pc&addressMask]
	lo := vm.memory[(vm.pc+1)&addressMask]

	return uint16(hi)<<8 | uint16(lo)
}
