// Package opcode decodes 16 bit instruction words of the CHIP-8 family into
// instructions, honoring the opcode extensions of the active profile.
package opcode

import (
	"errors"
	"fmt"

	"github.com/retroenv/retrochip8/internal/profile"
	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// ErrUnknownOpcode is returned for words that are not defined in the active mode.
var ErrUnknownOpcode = errors.New("unknown opcode")

// UnknownOpcodeError describes a word that could not be decoded.
type UnknownOpcodeError struct {
	Word uint16
	Mode profile.Mode
}

func (e *UnknownOpcodeError) Error() string {
	return fmt.Sprintf("%s $%04X in mode %s", ErrUnknownOpcode, e.Word, e.Mode)
}

// Is makes UnknownOpcodeError match ErrUnknownOpcode with errors.Is.
func (e *UnknownOpcodeError) Is(target error) bool {
	return target == ErrUnknownOpcode
}

// Kind identifies the operation of a decoded instruction.
type Kind uint8

// Instruction kinds.
const (
	Invalid Kind = iota

	Cls         // 00E0
	Ret         // 00EE
	ScrollDown  // 00CN
	ScrollUp    // 00DN
	ScrollRight // 00FB
	ScrollLeft  // 00FC
	Exit        // 00FD
	LowRes      // 00FE
	HighRes     // 00FF
	Stop        // 00ED
	Jump        // 1NNN
	Call        // 2NNN
	SkipEqImm   // 3XNN
	SkipNeImm   // 4XNN
	SkipEqReg   // 5XY0
	SkipGtReg   // 5XY1
	StoreRange  // 5XY2
	LoadRange   // 5XY3
	LoadImm     // 6XNN
	AddImm      // 7XNN
	Move        // 8XY0
	Or          // 8XY1
	And         // 8XY2
	Xor         // 8XY3
	AddReg      // 8XY4
	Sub         // 8XY5
	ShiftRight  // 8XY6
	SubN        // 8XY7
	ShiftLeft   // 8XYE
	SkipNeReg   // 9XY0
	LoadIndex   // ANNN
	JumpOffset  // BNNN
	JumpBack    // BBNN
	JumpForward // BFNN
	Random      // CXNN
	Draw        // DXYN
	SkipKey     // EX9E
	SkipNotKey  // EXA1
	LoadLong    // F000 NNNN
	SelectPlane // FN01
	LoadAudio   // F002
	GetDelay    // FX07
	WaitKey     // FX0A
	SetDelay    // FX15
	SetSound    // FX18
	AddIndex    // FX1E
	FontChar    // FX29
	BigFontChar // FX30
	BCD         // FX33
	SetPitch    // FX3A
	StoreRegs   // FX55
	LoadRegs    // FX65
	StoreFlags  // FX75
	LoadFlags   // FX85
)

// Instruction is a decoded instruction word with its operand fields extracted.
type Instruction struct {
	Kind Kind
	Word uint16

	X   uint8  // second nibble
	Y   uint8  // third nibble
	N   uint8  // fourth nibble
	NN  uint8  // low byte
	NNN uint16 // low 12 bits

	Long uint16 // operand word following F000, set by the fetch of the 4 byte instruction

	base *chip8.Instruction // catalog entry of base CHIP-8 instructions
}

// Size returns the size in bytes that the instruction occupies in memory.
func (i Instruction) Size() uint16 {
	if i.Kind == LoadLong {
		return 4
	}
	return 2
}

// Decode decodes a word for the given profile. Extension opcodes of the
// profile are resolved first, all other words are looked up in the CHIP-8
// instruction catalog. Words that are not part of the opcode set of the
// profile return an UnknownOpcodeError.
func Decode(word uint16, p profile.Profile) (Instruction, error) {
	ins := Instruction{
		Word: word,
		X:    uint8(word>>8) & 0x0F,
		Y:    uint8(word>>4) & 0x0F,
		N:    uint8(word) & 0x0F,
		NN:   uint8(word),
		NNN:  word & 0x0FFF,
	}

	if decoder, ok := extensionDecoders[word>>12]; ok {
		ins.Kind = decoder(ins, p)
	}
	if ins.Kind == Invalid {
		ins.Kind, ins.base = decodeBase(word)
	}
	if ins.Kind == Invalid {
		return Instruction{}, &UnknownOpcodeError{Word: word, Mode: p.Mode}
	}
	return ins, nil
}

// baseKinds maps the opcode pattern values of the CHIP-8 catalog to kinds.
var baseKinds = map[uint16]Kind{
	0x00E0: Cls,
	0x00EE: Ret,
	0x1000: Jump,
	0x2000: Call,
	0x3000: SkipEqImm,
	0x4000: SkipNeImm,
	0x5000: SkipEqReg,
	0x6000: LoadImm,
	0x7000: AddImm,
	0x8000: Move,
	0x8001: Or,
	0x8002: And,
	0x8003: Xor,
	0x8004: AddReg,
	0x8005: Sub,
	0x8006: ShiftRight,
	0x8007: SubN,
	0x800E: ShiftLeft,
	0x9000: SkipNeReg,
	0xA000: LoadIndex,
	0xB000: JumpOffset,
	0xC000: Random,
	0xD000: Draw,
	0xE09E: SkipKey,
	0xE0A1: SkipNotKey,
	0xF007: GetDelay,
	0xF00A: WaitKey,
	0xF015: SetDelay,
	0xF018: SetSound,
	0xF01E: AddIndex,
	0xF029: FontChar,
	0xF033: BCD,
	0xF055: StoreRegs,
	0xF065: LoadRegs,
}

// decodeBase matches the word against the catalog opcodes of its top nibble.
// Catalog entries that the interpreter does not execute, like the 0NNN
// machine code call, are skipped.
func decodeBase(word uint16) (Kind, *chip8.Instruction) {
	for _, op := range chip8.Opcodes[int(word>>12)] {
		if op.Info.Mask&word != op.Info.Value {
			continue
		}
		if kind, ok := baseKinds[op.Info.Value]; ok {
			return kind, op.Instruction
		}
	}
	return Invalid, nil
}

type decoderFunc func(ins Instruction, p profile.Profile) Kind

// extensionDecoders decode the opcodes that SuperChip, XO-Chip and CHIP-8E
// add to the opcode families of a top nibble.
var extensionDecoders = map[uint16]decoderFunc{
	0x0: decodeSystem,
	0x5: decodeRegisterRange,
	0xB: decodeRelativeJump,
	0xF: decodeMisc,
}

func decodeSystem(ins Instruction, p profile.Profile) Kind {
	if ins.Word == 0x00ED && p.Has(profile.Chip8EOpcodes) {
		return Stop
	}
	if !p.Has(profile.ExtendedOpcodes) {
		return Invalid
	}

	switch ins.Word & 0xFFF0 {
	case 0x00C0:
		return ScrollDown
	case 0x00D0:
		if p.Has(profile.XOOpcodes) {
			return ScrollUp
		}
		return Invalid
	}

	switch ins.Word {
	case 0x00FB:
		return ScrollRight
	case 0x00FC:
		return ScrollLeft
	case 0x00FD:
		return Exit
	case 0x00FE:
		return LowRes
	case 0x00FF:
		return HighRes
	}
	return Invalid
}

func decodeRegisterRange(ins Instruction, p profile.Profile) Kind {
	switch ins.N {
	case 0x1:
		if p.Has(profile.Chip8EOpcodes) {
			return SkipGtReg
		}
	case 0x2:
		if p.Has(profile.Chip8EOpcodes) || p.Has(profile.XOOpcodes) {
			return StoreRange
		}
	case 0x3:
		if p.Has(profile.Chip8EOpcodes) || p.Has(profile.XOOpcodes) {
			return LoadRange
		}
	}
	return Invalid
}

func decodeRelativeJump(ins Instruction, p profile.Profile) Kind {
	if !p.Has(profile.Chip8EOpcodes) {
		return Invalid
	}
	switch ins.X {
	case 0xB:
		return JumpBack
	case 0xF:
		return JumpForward
	}
	return Invalid
}

var extendedMiscKinds = map[uint8]Kind{
	0x30: BigFontChar,
	0x75: StoreFlags,
	0x85: LoadFlags,
}

func decodeMisc(ins Instruction, p profile.Profile) Kind {
	if p.Has(profile.ExtendedOpcodes) {
		if kind, ok := extendedMiscKinds[ins.NN]; ok {
			return kind
		}
	}

	if !p.Has(profile.XOOpcodes) {
		return Invalid
	}
	switch {
	case ins.Word == 0xF000:
		return LoadLong
	case ins.Word == 0xF002:
		return LoadAudio
	case ins.NN == 0x01:
		return SelectPlane
	case ins.NN == 0x3A:
		return SetPitch
	}
	return Invalid
}
