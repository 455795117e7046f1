// Package cpu implements the register, stack and timer state of the
// interpreter and the execution of decoded instructions against it.
package cpu

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/retroenv/retrochip8/internal/display"
	"github.com/retroenv/retrochip8/internal/memory"
	"github.com/retroenv/retrochip8/internal/opcode"
	"github.com/retroenv/retrochip8/internal/profile"
)

// ErrExit is returned when the program executes an exit instruction.
var ErrExit = errors.New("program exited")

// AudioPatternSize is the size of the XO-Chip audio pattern buffer.
const AudioPatternSize = 16

// maxAddress is the highest address that the 16 bit PC and I registers can hold.
const maxAddress = 0xFFFF

// DefaultPitch is the XO-Chip pitch register value that plays the pattern at 4000 Hz.
const DefaultPitch = 64

// CPU holds the complete interpreter state of a session.
type CPU struct {
	profile profile.Profile
	random  *rand.Rand

	Memory    *memory.Memory
	Display   *display.Display
	Stack     *Stack
	Registers Registers
	Timers    Timers

	// Flags are the persistent user flags of FX75/FX85, they survive a reset.
	Flags [RegisterCount]uint8

	// AudioPattern and Pitch are the XO-Chip audio state, for an audio layer to read.
	AudioPattern [AudioPatternSize]byte
	Pitch        uint8

	waitKey     int // key captured by a pending FX0A, -1 if none
	waitingKeys bool
}

// New returns a CPU in power-on state for the profile.
// A nil random source creates a randomly seeded one.
func New(p profile.Profile, random *rand.Rand) *CPU {
	if random == nil {
		random = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	c := &CPU{
		profile: p,
		random:  random,
		Memory:  memory.New(p.MemorySize),
	}
	c.initialize()
	return c
}

// Profile returns the active profile.
func (c *CPU) Profile() profile.Profile {
	return c.profile
}

// SetProfile switches to a new profile. The memory is resized preserving the
// bytes that fit into both sizes, all other state is recreated.
func (c *CPU) SetProfile(p profile.Profile) {
	c.profile = p
	c.Memory.Resize(p.MemorySize)
	c.initialize()
}

func (c *CPU) initialize() {
	c.Display = display.New(c.profile)
	c.Stack = NewStack(c.profile.StackDepth)
	c.Reset()
	// the font area is below the program start and always fits
	_ = c.Memory.LoadFont(c.profile)
}

// Reset sets registers, stack, timers and display to their power-on values.
// Memory and user flags are kept.
func (c *CPU) Reset() {
	c.Registers.Reset()
	c.Stack.Reset()
	c.Timers = Timers{}
	c.Display.Reset()
	c.AudioPattern = [AudioPatternSize]byte{}
	c.Pitch = DefaultPitch
	c.waitKey = -1
	c.waitingKeys = false
}

// LoadROM copies the ROM into memory and resets the CPU state.
// If the ROM does not fit, an error is returned and the state is left untouched.
func (c *CPU) LoadROM(rom []byte) error {
	if err := c.Memory.LoadROM(rom, c.profile); err != nil {
		return fmt.Errorf("loading rom: %w", err)
	}
	c.Reset()
	return nil
}

// WaitingForKey returns whether a FX0A instruction is waiting for a key press.
func (c *CPU) WaitingForKey() bool {
	return c.waitingKeys
}

// Fetch reads and decodes the instruction at PC and advances PC past it.
// PC is left on an instruction that can not be decoded, and on an
// instruction at the end of the 16 bit address range that PC can not move past.
func (c *CPU) Fetch() (opcode.Instruction, error) {
	pc := c.Registers.PC
	word, err := c.Memory.Read16(pc)
	if err != nil {
		return opcode.Instruction{}, fmt.Errorf("fetching instruction at $%04X: %w", pc, err)
	}

	ins, err := opcode.Decode(word, c.profile)
	if err != nil {
		return opcode.Instruction{}, fmt.Errorf("decoding instruction at $%04X: %w", pc, err)
	}
	next := int(pc) + int(ins.Size())
	if next > maxAddress {
		return opcode.Instruction{}, fmt.Errorf("advancing past instruction at $%04X: %w",
			pc, c.Memory.Fault(next, 2, false))
	}

	if ins.Kind == opcode.LoadLong {
		ins.Long, err = c.Memory.Read16(pc + 2)
		if err != nil {
			return opcode.Instruction{}, fmt.Errorf("fetching operand at $%04X: %w", pc+2, err)
		}
	}
	c.Registers.PC = uint16(next)
	return ins, nil
}

// movePC moves PC by delta bytes. PC does not wrap around the 16 bit
// address range, leaving it is a memory fault.
func (c *CPU) movePC(delta int) error {
	target := int(c.Registers.PC) + delta
	if target < 0 || target > maxAddress {
		return c.Memory.Fault(target, 2, false)
	}
	c.Registers.PC = uint16(target)
	return nil
}

// Step fetches, decodes and executes one instruction with the given keypad snapshot.
// The executed instruction is returned also in case of an execution error.
func (c *CPU) Step(keys Keys) (opcode.Instruction, error) {
	pc := c.Registers.PC
	ins, err := c.Fetch()
	if err != nil {
		return ins, err
	}

	if err := c.Execute(ins, keys); err != nil {
		return ins, fmt.Errorf("executing '%s' at $%04X: %w", ins, pc, err)
	}
	return ins, nil
}
