// Package engine implements the execution engine that drives a CPU session:
// the Idle, Running and Halted state machine, the instruction and timer
// scheduling and the thread safe access for renderer and input layers.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/retroenv/retrochip8/internal/cpu"
	"github.com/retroenv/retrochip8/internal/display"
	"github.com/retroenv/retrochip8/internal/opcode"
	"github.com/retroenv/retrochip8/internal/profile"
	"github.com/retroenv/retrogolib/log"
)

// ErrNotRunning is returned when stepping an engine that is not running.
var ErrNotRunning = errors.New("engine is not running")

// maxElapsed limits the time that a single pass of Run catches up on,
// a host that was suspended does not cause a burst of instructions.
const maxElapsed = 250 * time.Millisecond

// State of the engine.
type State uint8

// Engine states.
const (
	Idle State = iota
	Running
	Halted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Halted:
		return "halted"
	default:
		return fmt.Sprintf("state(%d)", s)
	}
}

// Options of the engine.
type Options struct {
	InstructionsPerSecond int        // 0 uses the default rate of the mode
	Random                *rand.Rand // random source for CXNN, nil for a randomly seeded one
	Trace                 bool       // log every executed instruction at debug level
}

// Engine runs a ROM on a CPU of the selected compatibility mode.
type Engine struct {
	logger  *log.Logger
	options Options

	mu        sync.Mutex
	cpu       *cpu.CPU
	state     State
	haltErr   error
	scheduler *scheduler
	drawWait  bool // display wait quirk blocks instructions until the next tick
	steps     uint64
	ticks     uint64

	keypad cpu.Keypad
}

// New returns an idle engine for the given mode.
func New(logger *log.Logger, mode profile.Mode, options Options) (*Engine, error) {
	p, err := profile.Resolve(mode)
	if err != nil {
		return nil, fmt.Errorf("resolving profile: %w", err)
	}

	e := &Engine{
		logger:  logger,
		options: options,
		cpu:     cpu.New(p, options.Random),
	}
	e.scheduler = newScheduler(e.instructionRate())
	return e, nil
}

// LoadROM selects the mode, resets all session state and loads the ROM.
// The engine is running afterwards, regardless of its previous state.
// On error the previous state is left untouched.
func (e *Engine) LoadROM(mode profile.Mode, rom []byte) error {
	p, err := profile.Resolve(mode)
	if err != nil {
		return fmt.Errorf("resolving profile: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	c := e.cpu
	if p.Mode != c.Profile().Mode {
		c = cpu.New(p, e.options.Random)
		c.Flags = e.cpu.Flags
	}
	if err := c.LoadROM(rom); err != nil {
		return err
	}

	e.cpu = c
	e.start()
	e.logger.Info("ROM loaded",
		log.Stringer("mode", p.Mode),
		log.Int("size", len(rom)),
		log.Int("ips", e.instructionRate()))
	return nil
}

// LoadROMBytes loads the ROM in the current mode.
func (e *Engine) LoadROMBytes(rom []byte) error {
	return e.LoadROM(e.Mode(), rom)
}

// SetMode switches the compatibility mode. The memory content that fits into
// the new memory size is kept, all other state is reinitialized and the
// program restarts at the program start address.
func (e *Engine) SetMode(mode profile.Mode) error {
	p, err := profile.Resolve(mode)
	if err != nil {
		return fmt.Errorf("resolving profile: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	previous := e.cpu.Profile().Mode
	e.cpu.SetProfile(p)
	e.scheduler.setRate(e.instructionRate())
	e.scheduler.reset()
	e.drawWait = false

	e.logger.Debug("Mode switched",
		log.Stringer("from", previous),
		log.Stringer("to", mode))
	return nil
}

// start moves the engine into the running state, the lock has to be held.
func (e *Engine) start() {
	e.state = Running
	e.haltErr = nil
	e.drawWait = false
	e.steps = 0
	e.ticks = 0
	e.scheduler.setRate(e.instructionRate())
	e.scheduler.reset()
}

func (e *Engine) instructionRate() int {
	if e.options.InstructionsPerSecond > 0 {
		return e.options.InstructionsPerSecond
	}
	return e.cpu.Profile().DefaultInstructionsPerSecond
}

// Step executes a single instruction. Any error halts the engine.
func (e *Engine) Step() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.step()
}

func (e *Engine) step() error {
	if e.state != Running {
		return ErrNotRunning
	}

	pc := e.cpu.Registers.PC
	ins, err := e.cpu.Step(e.keypad.Snapshot())
	if err != nil {
		e.halt(err)
		return err
	}
	e.steps++

	if e.options.Trace {
		e.logger.Debug("Executed",
			log.Hex("pc", pc),
			log.Hex("opcode", ins.Word),
			log.Stringer("instruction", ins))
	}

	if ins.Kind == opcode.Draw && e.cpu.Profile().Has(profile.DisplayWait) {
		e.drawWait = true
	}
	return nil
}

func (e *Engine) halt(err error) {
	e.state = Halted
	e.haltErr = err

	if errors.Is(err, cpu.ErrExit) {
		e.logger.Info("Program exited", log.Hex("pc", e.cpu.Registers.PC))
		return
	}
	e.logger.Error("Program halted", log.Err(err))
}

// Tick decrements the delay and sound timers, as the 60 Hz timer does.
func (e *Engine) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tick()
}

func (e *Engine) tick() {
	e.cpu.Timers.Tick()
	e.drawWait = false
	e.ticks++
}

// Advance simulates the given elapsed time, executing the instruction steps
// and timer ticks that fall into it. It returns the error that halted the
// engine, if any.
func (e *Engine) Advance(elapsed time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != Running {
		return ErrNotRunning
	}

	e.scheduler.add(elapsed)
	for {
		switch e.scheduler.next() {
		case noEvent:
			return nil

		case tickEvent:
			e.tick()

		case instructionEvent:
			if e.drawWait {
				continue
			}
			if err := e.step(); err != nil {
				return err
			}
		}
	}
}

// RunFrames simulates the given number of 60 Hz frames.
func (e *Engine) RunFrames(frames int) error {
	return e.Advance(time.Duration(frames) * TimerPeriod)
}

// Run executes the program on the wall clock until the context is cancelled
// or the engine halts. A program exit is not reported as error.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(TimerPeriod)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case now := <-ticker.C:
			elapsed := min(now.Sub(last), maxElapsed)
			last = now

			if err := e.Advance(elapsed); err != nil {
				if errors.Is(err, cpu.ErrExit) {
					return nil
				}
				return err
			}
		}
	}
}

// SetKey sets the state of a key of the hexadecimal keypad.
// It can be called concurrently to a running engine.
func (e *Engine) SetKey(key int, pressed bool) {
	e.keypad.Set(key, pressed)
}

// SetKeys replaces the state of all keys.
func (e *Engine) SetKeys(pressed [cpu.KeyCount]bool) {
	e.keypad.SetAll(pressed)
}

// Keys returns the current keypad state.
func (e *Engine) Keys() cpu.Keys {
	return e.keypad.Snapshot()
}

// State returns the engine state and the reason of a halt.
func (e *Engine) State() (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state, e.haltErr
}

// Mode returns the active compatibility mode.
func (e *Engine) Mode() profile.Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cpu.Profile().Mode
}

// Profile returns the active compatibility profile.
func (e *Engine) Profile() profile.Profile {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cpu.Profile()
}

// Frame returns a copy of the display planes.
func (e *Engine) Frame() display.Frame {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cpu.Display.Frame()
}

// HighRes returns whether the display is in high resolution mode.
func (e *Engine) HighRes() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cpu.Display.HighRes()
}

// Timers returns the current delay and sound timer values.
func (e *Engine) Timers() cpu.Timers {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cpu.Timers
}

// SoundActive returns whether a tone should be playing.
func (e *Engine) SoundActive() bool {
	return e.Timers().SoundActive()
}

// Registers returns a copy of the registers.
func (e *Engine) Registers() cpu.Registers {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cpu.Registers
}

// Stack returns the return addresses on the stack, the oldest first.
func (e *Engine) Stack() []uint16 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cpu.Stack.Entries()
}

// WaitingForKey returns whether the program waits for a key press.
func (e *Engine) WaitingForKey() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cpu.WaitingForKey()
}

// Statistics returns the number of executed instructions and timer ticks
// since the ROM was loaded.
func (e *Engine) Statistics() (steps, ticks uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.steps, e.ticks
}

// ReadMemory returns a copy of a memory range.
func (e *Engine) ReadMemory(address uint16, length int) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	data, err := e.cpu.Memory.ReadRange(address, length)
	if err != nil {
		return nil, fmt.Errorf("reading memory: %w", err)
	}
	return data, nil
}
