package engine

import "time"

// TimerFrequency is the fixed rate of the delay and sound timers in Hz.
const TimerFrequency = 60

// TimerPeriod is the simulated time between two timer ticks.
const TimerPeriod = time.Second / TimerFrequency

// scheduler converts elapsed time into instruction steps and timer ticks.
// Both have their own budget, the time until their next event, so that the
// timers run at 60 Hz regardless of the instruction rate.
type scheduler struct {
	instructionPeriod time.Duration

	pending         time.Duration // elapsed time not yet consumed by events
	nextInstruction time.Duration
	nextTick        time.Duration
}

type event uint8

const (
	noEvent event = iota
	instructionEvent
	tickEvent
)

func newScheduler(instructionsPerSecond int) *scheduler {
	s := &scheduler{}
	s.setRate(instructionsPerSecond)
	s.reset()
	return s
}

func (s *scheduler) setRate(instructionsPerSecond int) {
	s.instructionPeriod = time.Second / time.Duration(max(instructionsPerSecond, 1))
}

func (s *scheduler) reset() {
	s.pending = 0
	s.nextInstruction = s.instructionPeriod
	s.nextTick = TimerPeriod
}

func (s *scheduler) add(elapsed time.Duration) {
	s.pending += elapsed
}

// next consumes the budget up to the earliest due event and returns it.
// A timer tick that is due at the same time as an instruction comes first.
func (s *scheduler) next() event {
	if s.nextTick <= s.nextInstruction {
		if s.nextTick > s.pending {
			return noEvent
		}
		s.consume(s.nextTick)
		s.nextTick = TimerPeriod
		return tickEvent
	}

	if s.nextInstruction > s.pending {
		return noEvent
	}
	s.consume(s.nextInstruction)
	s.nextInstruction = s.instructionPeriod
	return instructionEvent
}

func (s *scheduler) consume(d time.Duration) {
	s.pending -= d
	s.nextInstruction -= d
	s.nextTick -= d
}
