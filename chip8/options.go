package chip8

import (
	"math/rand"

	"github.com/sirupsen/logrus"
)

// Option configures a Machine at construction.
type Option func(vm *Machine)

// WithClock replaces the wall clock used for timer decay and Process.
func WithClock(c Clock) Option {
	return func(vm *Machine) {
		vm.clock = c
	}
}

// WithRand sets the generator used by CXNN. Reset won't reseed it.
func WithRand(r *rand.Rand) Option {
	return func(vm *Machine) {
		vm.rng = r
		vm.seeded = true
	}
}

// WithLogger sets where faults and lifecycle events are logged.
func WithLogger(l logrus.FieldLogger) Option {
	return func(vm *Machine) {
		vm.log = l
	}
}

// WithDrawPolicy selects how sprites crossing the screen edge are drawn.
func WithDrawPolicy(p DrawPolicy) Option {
	return func(vm *Machine) {
		vm.policy = p
	}
}

// WithSpeed sets the instruction rate used by Process, in Hz, clamped
// to the same 100-2000 range as IncSpeed and DecSpeed.
func WithSpeed(hz int64) Option {
	return func(vm *Machine) {
		vm.speed = clampSpeed(hz)
	}
}
