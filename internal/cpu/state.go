package cpu

import (
	"errors"
	"fmt"

	"github.com/retroenv/retrochip8/internal/profile"
)

var (
	// ErrStackOverflow is returned by a call that exceeds the stack depth of the profile.
	ErrStackOverflow = errors.New("stack overflow")
	// ErrStackUnderflow is returned by a return with an empty stack.
	ErrStackUnderflow = errors.New("stack underflow")
)

// RegisterCount is the number of general purpose registers V0-VF.
const RegisterCount = 16

// FlagRegister is the index of VF, which arithmetic and draw instructions write their flag to.
const FlagRegister = 0xF

// Registers contains the general purpose, index and program counter registers.
type Registers struct {
	V  [RegisterCount]uint8
	I  uint16
	PC uint16
}

// Reset sets all registers to their power-on values.
func (r *Registers) Reset() {
	*r = Registers{
		PC: profile.ProgramStart,
	}
}

// Stack is a bounded stack of subroutine return addresses.
type Stack struct {
	entries []uint16
	depth   int
}

// NewStack returns an empty stack that can hold depth entries.
func NewStack(depth int) *Stack {
	return &Stack{
		entries: make([]uint16, 0, depth),
		depth:   depth,
	}
}

// Push adds a return address.
func (s *Stack) Push(address uint16) error {
	if len(s.entries) >= s.depth {
		return fmt.Errorf("%w: depth %d exceeded", ErrStackOverflow, s.depth)
	}
	s.entries = append(s.entries, address)
	return nil
}

// Pop removes and returns the most recently pushed address.
func (s *Stack) Pop() (uint16, error) {
	if len(s.entries) == 0 {
		return 0, ErrStackUnderflow
	}
	address := s.entries[len(s.entries)-1]
	s.entries = s.entries[:len(s.entries)-1]
	return address, nil
}

// Len returns the number of entries.
func (s *Stack) Len() int {
	return len(s.entries)
}

// Depth returns the maximum number of entries.
func (s *Stack) Depth() int {
	return s.depth
}

// Entries returns a copy of the entries, the oldest first.
func (s *Stack) Entries() []uint16 {
	entries := make([]uint16, len(s.entries))
	copy(entries, s.entries)
	return entries
}

// Reset removes all entries.
func (s *Stack) Reset() {
	s.entries = s.entries[:0]
}

// Timers contains the 60 Hz delay and sound timers.
type Timers struct {
	Delay uint8
	Sound uint8
}

// Tick decrements both timers by one, stopping at zero.
func (t *Timers) Tick() {
	if t.Delay > 0 {
		t.Delay--
	}
	if t.Sound > 0 {
		t.Sound--
	}
}

// SoundActive returns whether a tone should be playing.
func (t Timers) SoundActive() bool {
	return t.Sound > 0
}
