package chip8

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/retroenv/retrogolib/assert"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// newTestMachine returns a machine on a frozen clock with the opcodes
// loaded at 0x200.
func newTestMachine(t *testing.T, program ...uint16) (*Machine, *fakeClock, *test.Hook) {
	t.Helper()

	clock := &fakeClock{now: time.Unix(1000, 0)}
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	vm := New(
		WithClock(clock),
		WithLogger(logger),
		WithRand(rand.New(rand.NewSource(1))),
	)

	rom := make([]byte, 0, len(program)*2)
	for _, op := range program {
		rom = append(rom, byte(op>>8), byte(op))
	}
	assert.NoError(t, vm.LoadProgram(rom))

	return vm, clock, hook
}

// steps runs n instructions, failing the test on any fault.
func steps(t *testing.T, vm *Machine, n int) {
	t.Helper()

	for i := 0; i < n; i++ {
		if err := vm.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
}

func TestNew(t *testing.T) {
	vm := New()

	assert.Equal(t, uint16(ProgramStart), vm.PC())
	assert.Equal(t, uint16(0), vm.I())
	assert.Equal(t, uint8(0), vm.SP())
	assert.False(t, vm.TakeRedrawFlag())
	assert.False(t, vm.ToneActive())

	font := make([]byte, len(Font))
	for i := range font {
		font[i] = vm.Peek(uint16(i))
	}
	if diff := cmp.Diff(Font[:], font); diff != "" {
		t.Errorf("font: (-want, +got)\n%s", diff)
	}

	assert.Equal(t, byte(0), vm.Peek(uint16(len(Font))))
}

func TestLoadProgram(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{name: "empty", size: 0},
		{name: "full", size: MaxProgramSize},
		{name: "too large", size: MaxProgramSize + 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := New()

			rom := make([]byte, tt.size)
			for i := range rom {
				rom[i] = 0xAA
			}

			err := vm.LoadProgram(rom)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrProgramTooLarge))
				assert.Equal(t, byte(0), vm.Peek(ProgramStart))
				return
			}

			assert.NoError(t, err)
			if tt.size > 0 {
				assert.Equal(t, byte(0xAA), vm.Peek(ProgramStart))
				assert.Equal(t, byte(0xAA), vm.Peek(MemorySize-1))
			}
		})
	}
}

func TestLoadProgramTooLargeKeepsState(t *testing.T) {
	vm, _, _ := newTestMachine(t, 0x6A42)
	steps(t, vm, 1)

	err := vm.LoadProgram(make([]byte, MaxProgramSize+1))
	assert.True(t, errors.Is(err, ErrProgramTooLarge))

	assert.Equal(t, byte(0x6A), vm.Peek(ProgramStart))
	assert.Equal(t, byte(0x42), vm.V(0xA))
	assert.Equal(t, uint16(0x202), vm.PC())
}

func TestResetAndReboot(t *testing.T) {
	vm, clock, _ := newTestMachine(t, 0x6005, 0xF015, 0xA000, 0xD005)
	vm.PressKey(3)
	steps(t, vm, 4)
	clock.Advance(time.Second)

	vm.Reset()

	assert.Equal(t, uint16(ProgramStart), vm.PC())
	assert.Equal(t, byte(0), vm.V(0))
	assert.Equal(t, byte(0), vm.DelayTimer())
	assert.Equal(t, byte(0), vm.Peek(ProgramStart))
	assert.Equal(t, 0, vm.Framebuffer().lit())
	assert.False(t, vm.TakeRedrawFlag())

	// the key latch is cleared too
	vm2, _, _ := newTestMachine(t, 0xE39E)
	vm2.PressKey(0)
	vm2.Reset()
	assert.NoError(t, vm2.LoadProgram([]byte{0xE3, 0x9E}))
	steps(t, vm2, 1)
	assert.Equal(t, uint16(0x202), vm2.PC())

	vm.Reboot()
	assert.Equal(t, byte(0x60), vm.Peek(ProgramStart))
	assert.Equal(t, byte(0xD0), vm.Peek(ProgramStart+6))
	assert.Equal(t, uint16(ProgramStart), vm.PC())
}

func TestSetKeyIgnoresOutOfRange(t *testing.T) {
	vm, _, _ := newTestMachine(t, 0xF10A)

	vm.SetKey(16, true)
	vm.SetKey(100, true)
	steps(t, vm, 1)

	assert.True(t, vm.Waiting())
	assert.Equal(t, uint16(0x200), vm.PC())
}

func TestFaultIsRecoverable(t *testing.T) {
	vm, _, hook := newTestMachine(t, 0x0123, 0x6107)

	err := vm.Step()

	var fault *Fault
	assert.True(t, errors.As(err, &fault))
	assert.Equal(t, UnknownOpcode, fault.Kind)
	assert.Equal(t, uint16(0x200), fault.PC)
	assert.Equal(t, uint16(0x0123), fault.Opcode)
	assert.True(t, errors.Is(err, ErrUnknownOpcode))
	assert.Equal(t, "unknown opcode: 0123 at 0200", err.Error())

	entry := hook.LastEntry()
	assert.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "0123", entry.Data["opcode"].(string))

	// execution carries on with the next instruction
	assert.Equal(t, uint16(0x202), vm.PC())
	steps(t, vm, 1)
	assert.Equal(t, byte(7), vm.V(1))
}

func TestProcess(t *testing.T) {
	// an endless loop of increments
	vm, clock, _ := newTestMachine(t, 0x7001, 0x1200)

	clock.Advance(100 * time.Millisecond)
	vm.Process(false)

	// 500 Hz for 100ms is 50 instructions, half of them increments
	assert.Equal(t, byte(25), vm.V(0))

	// paused time is skipped, not made up later
	clock.Advance(100 * time.Millisecond)
	vm.Process(true)
	vm.Process(false)
	assert.Equal(t, byte(25), vm.V(0))

	clock.Advance(20 * time.Millisecond)
	vm.Process(false)
	assert.Equal(t, byte(30), vm.V(0))
}

func TestProcessAfterLongUptime(t *testing.T) {
	vm, clock, _ := newTestMachine(t, 0x7001, 0x1200)
	vm.setSpeed(2000)

	// two months idle, then 10ms of running is 20 instructions
	clock.Advance(60 * 24 * time.Hour)
	vm.Process(true)

	clock.Advance(10 * time.Millisecond)
	vm.Process(false)

	assert.Equal(t, byte(10), vm.V(0))
}

func TestProcessWaitingForKey(t *testing.T) {
	vm, clock, _ := newTestMachine(t, 0xF30A, 0x7301, 0x1202)

	clock.Advance(time.Second)
	vm.Process(false)

	assert.True(t, vm.Waiting())
	assert.Equal(t, uint16(0x200), vm.PC())

	vm.PressKey(9)
	clock.Advance(10 * time.Millisecond)
	vm.Process(false)

	assert.False(t, vm.Waiting())
	assert.Equal(t, byte(9+2), vm.V(3))
}

func TestSpeed(t *testing.T) {
	vm := New(WithSpeed(1950))
	assert.Equal(t, int64(1950), vm.Speed())

	vm.IncSpeed()
	assert.Equal(t, int64(2000), vm.Speed())

	vm = New()
	for i := 0; i < 10; i++ {
		vm.DecSpeed()
	}
	assert.Equal(t, int64(100), vm.Speed())

	assert.Equal(t, int64(MaxSpeed), New(WithSpeed(1<<40)).Speed())
	assert.Equal(t, int64(MinSpeed), New(WithSpeed(0)).Speed())
}
