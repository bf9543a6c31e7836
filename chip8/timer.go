package chip8

import "time"

// TickPeriod is how often the delay and sound timers count down.
const TickPeriod = time.Second / 60

// Clock is a source of wall-clock time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// maxTickLag is how far the timers may fall behind before the missed
// periods are dropped instead of caught up.
const maxTickLag = 4 * TickPeriod

// tick decrements both timers once if a full period elapsed since the
// previous tick. Ticks land on whole periods, so the steps of a burst
// catch up one tick each. After a stall the backlog is dropped.
func (vm *Machine) tick() {
	now := vm.clock.Now()

	elapsed := now.Sub(vm.lastTick)
	if elapsed < TickPeriod {
		return
	}

	if elapsed > maxTickLag {
		vm.lastTick = now
	} else {
		vm.lastTick = vm.lastTick.Add(TickPeriod)
	}

	if vm.dt > 0 {
		vm.dt--
	}
	if vm.st > 0 {
		vm.st--
	}
}
