// Package profile resolves compatibility modes of the CHIP-8 family into
// the memory, display and quirk constants that parameterize the interpreter.
package profile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/retroenv/retrogolib/set"
)

// ErrInvalidMode is returned when a compatibility mode value is not defined.
var ErrInvalidMode = errors.New("invalid compatibility mode")

// Mode selects a member of the CHIP-8 family.
type Mode uint8

// Supported compatibility modes.
const (
	Chip8 Mode = iota
	Chip8E
	Chip16
	Chip48
	SuperChip
	XOChip10
	XOChip11

	numModes
)

// Quirk names a behavioral divergence between interpreters for the same opcode.
type Quirk string

// Quirks consulted by the opcode handlers.
const (
	// ShiftUsesVY makes 8XY6/8XYE shift VY into VX instead of shifting VX in place.
	ShiftUsesVY Quirk = "shift-uses-vy"
	// JumpUsesVX makes BNNN add VX (X being the high nibble of NNN) instead of V0.
	JumpUsesVX Quirk = "jump-uses-vx"
	// ClipSprites clips sprite pixels at the screen edge instead of wrapping them.
	ClipSprites Quirk = "clip-sprites"
	// LogicResetsVF clears VF after 8XY1, 8XY2 and 8XY3.
	LogicResetsVF Quirk = "logic-resets-vf"
	// DisplayWait limits drawing to one sprite per 60 Hz frame.
	DisplayWait Quirk = "display-wait"
	// ExtendedOpcodes enables the SuperChip scroll, resolution, big font and flag opcodes.
	ExtendedOpcodes Quirk = "extended-opcodes"
	// XOOpcodes enables the XO-Chip plane, audio, range and long index opcodes.
	XOOpcodes Quirk = "xo-opcodes"
	// Chip8EOpcodes enables the CHIP-8E extension opcodes.
	Chip8EOpcodes Quirk = "chip8e-opcodes"
	// LowResScrollFull scrolls by low resolution pixels while in low resolution mode.
	LowResScrollFull Quirk = "lores-scroll-full"
)

// IndexIncrement describes how FX55/FX65 and 5XY2/5XY3 leave the index register.
type IndexIncrement uint8

// Index register behaviors after register store and load.
const (
	IndexIncrementX1 IndexIncrement = iota // I += X + 1
	IndexIncrementX                        // I += X
	IndexUnchanged                         // I is left untouched
)

// BorrowConvention describes when 8XY5 and 8XY7 set VF to 1.
type BorrowConvention uint8

// Subtraction flag conventions.
const (
	// BorrowGreaterEqual sets VF to 1 when the minuend is greater than or equal to the subtrahend.
	BorrowGreaterEqual BorrowConvention = iota
	// BorrowGreater sets VF to 1 only when the minuend is strictly greater.
	BorrowGreater
)

const (
	// ProgramStart is the address that ROMs are loaded to and execution starts at.
	ProgramStart = 0x200

	// FontBase is the address of the 16 glyph hexadecimal font.
	FontBase = 0x050

	// BigFontBase is the address of the 16 glyph 8x10 font of SuperChip and XO-Chip.
	BigFontBase = 0x0A0
)

// Profile contains the resolved constants of a compatibility mode.
type Profile struct {
	Mode Mode

	MemorySize    int
	DisplayWidth  int
	DisplayHeight int
	LowResWidth   int // equal to DisplayWidth for modes without a resolution switch
	LowResHeight  int
	Planes        int

	FontBase    uint16
	BigFontBase uint16 // 0 if the mode has no big font
	StackDepth  int

	FlagRegisters int // number of persistent RPL user flags for FX75/FX85

	DefaultInstructionsPerSecond int

	Borrow         BorrowConvention
	IndexIncrement IndexIncrement
	Quirks         set.Set[Quirk]
}

// Has returns whether the profile has the given quirk enabled.
func (p Profile) Has(q Quirk) bool {
	return p.Quirks.Contains(q)
}

// HasResolutionSwitch returns whether the mode supports 00FE/00FF.
func (p Profile) HasResolutionSwitch() bool {
	return p.LowResWidth != p.DisplayWidth || p.LowResHeight != p.DisplayHeight
}

// Resolve returns the profile of the given mode.
func Resolve(mode Mode) (Profile, error) {
	p := Profile{
		Mode:                         mode,
		MemorySize:                   4096,
		DisplayWidth:                 64,
		DisplayHeight:                32,
		Planes:                       1,
		FontBase:                     FontBase,
		StackDepth:                   16,
		DefaultInstructionsPerSecond: 700,
		Borrow:                       BorrowGreaterEqual,
		IndexIncrement:               IndexIncrementX1,
	}
	var quirks []Quirk

	switch mode {
	case Chip8:
		p.StackDepth = 12
		quirks = []Quirk{ShiftUsesVY, ClipSprites, LogicResetsVF, DisplayWait}

	case Chip8E:
		p.StackDepth = 12
		quirks = []Quirk{ShiftUsesVY, ClipSprites, LogicResetsVF, DisplayWait, Chip8EOpcodes}

	case Chip16:
		p.MemorySize = 65536
		p.DisplayWidth = 320
		p.DisplayHeight = 240
		p.DefaultInstructionsPerSecond = 1000
		quirks = []Quirk{ShiftUsesVY, ClipSprites}

	case Chip48:
		p.IndexIncrement = IndexIncrementX
		quirks = []Quirk{JumpUsesVX, ClipSprites}

	case SuperChip:
		p.MemorySize = 65536
		p.DisplayWidth = 128
		p.DisplayHeight = 64
		p.BigFontBase = BigFontBase
		p.FlagRegisters = 8
		p.DefaultInstructionsPerSecond = 1000
		p.IndexIncrement = IndexUnchanged
		quirks = []Quirk{JumpUsesVX, ClipSprites, ExtendedOpcodes}

	case XOChip10, XOChip11:
		p.MemorySize = 65536
		p.DisplayWidth = 128
		p.DisplayHeight = 64
		p.Planes = 2
		p.BigFontBase = BigFontBase
		p.FlagRegisters = 16
		p.DefaultInstructionsPerSecond = 1000
		quirks = []Quirk{ShiftUsesVY, ExtendedOpcodes, XOOpcodes}
		if mode == XOChip11 {
			quirks = append(quirks, LowResScrollFull)
		}

	default:
		return Profile{}, fmt.Errorf("%w: %d", ErrInvalidMode, mode)
	}

	p.LowResWidth, p.LowResHeight = p.DisplayWidth, p.DisplayHeight
	if p.DisplayWidth == 128 {
		p.LowResWidth, p.LowResHeight = 64, 32
	}

	p.Quirks = set.New[Quirk]()
	for _, q := range quirks {
		p.Quirks.Add(q)
	}
	return p, nil
}

// Modes returns all defined compatibility modes.
func Modes() []Mode {
	modes := make([]Mode, 0, numModes)
	for m := Chip8; m < numModes; m++ {
		modes = append(modes, m)
	}
	return modes
}

var modeNames = map[Mode]string{
	Chip8:     "chip8",
	Chip8E:    "chip8e",
	Chip16:    "chip16",
	Chip48:    "chip48",
	SuperChip: "schip",
	XOChip10:  "xochip10",
	XOChip11:  "xochip11",
}

var modeAliases = map[string]Mode{
	"chip-8":    Chip8,
	"superchip": SuperChip,
	"xochip":    XOChip11,
	"xo-chip":   XOChip11,
}

// String returns the command line name of the mode.
func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("mode(%d)", uint8(m))
}

// ModeFromString parses a mode name, matching case insensitive.
func ModeFromString(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for m, name := range modeNames {
		if name == s {
			return m, nil
		}
	}
	if m, ok := modeAliases[s]; ok {
		return m, nil
	}
	return 0, fmt.Errorf("%w: '%s'", ErrInvalidMode, s)
}
