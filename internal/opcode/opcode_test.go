package opcode

import (
	"errors"
	"fmt"
	"testing"

	"github.com/retroenv/retrochip8/internal/profile"
	"github.com/retroenv/retrogolib/arch/cpu/chip8"
	"github.com/retroenv/retrogolib/assert"
)

func resolve(t *testing.T, mode profile.Mode) profile.Profile {
	t.Helper()
	p, err := profile.Resolve(mode)
	assert.NoError(t, err)
	return p
}

func TestDecodeFields(t *testing.T) {
	ins, err := Decode(0xD123, resolve(t, profile.Chip8))
	assert.NoError(t, err)
	assert.Equal(t, Draw, ins.Kind)
	assert.Equal(t, uint16(0xD123), ins.Word)
	assert.Equal(t, uint8(0x1), ins.X)
	assert.Equal(t, uint8(0x2), ins.Y)
	assert.Equal(t, uint8(0x3), ins.N)
	assert.Equal(t, uint8(0x23), ins.NN)
	assert.Equal(t, uint16(0x123), ins.NNN)
	assert.Equal(t, uint16(2), ins.Size())
}

func TestDecodeBase(t *testing.T) {
	tests := []struct {
		word uint16
		kind Kind
	}{
		{0x00E0, Cls},
		{0x00EE, Ret},
		{0x1234, Jump},
		{0x2345, Call},
		{0x3A12, SkipEqImm},
		{0x4A12, SkipNeImm},
		{0x5AB0, SkipEqReg},
		{0x6A12, LoadImm},
		{0x7A12, AddImm},
		{0x8AB0, Move},
		{0x8AB1, Or},
		{0x8AB2, And},
		{0x8AB3, Xor},
		{0x8AB4, AddReg},
		{0x8AB5, Sub},
		{0x8AB6, ShiftRight},
		{0x8AB7, SubN},
		{0x8ABE, ShiftLeft},
		{0x9AB0, SkipNeReg},
		{0xA123, LoadIndex},
		{0xB123, JumpOffset},
		{0xCA12, Random},
		{0xDAB5, Draw},
		{0xEA9E, SkipKey},
		{0xEAA1, SkipNotKey},
		{0xFA07, GetDelay},
		{0xFA0A, WaitKey},
		{0xFA15, SetDelay},
		{0xFA18, SetSound},
		{0xFA1E, AddIndex},
		{0xFA29, FontChar},
		{0xFA33, BCD},
		{0xFA55, StoreRegs},
		{0xFA65, LoadRegs},
	}

	for _, mode := range profile.Modes() {
		p := resolve(t, mode)
		for _, tt := range tests {
			ins, err := Decode(tt.word, p)
			assert.NoError(t, err, fmt.Sprintf("mode %s word %04X", mode, tt.word))
			assert.Equal(t, tt.kind, ins.Kind, fmt.Sprintf("mode %s word %04X", mode, tt.word))
		}
	}
}

func TestDecodeBaseUsesCatalog(t *testing.T) {
	p := resolve(t, profile.XOChip11)

	for value, kind := range baseKinds {
		ins, err := Decode(value, p)
		assert.NoError(t, err, fmt.Sprintf("word %04X", value))
		assert.Equal(t, kind, ins.Kind, fmt.Sprintf("word %04X", value))
		assert.True(t, ins.base != nil, fmt.Sprintf("word %04X", value))

		var expected *chip8.Instruction
		for _, op := range chip8.Opcodes[int(value>>12)] {
			if op.Info.Value == value {
				expected = op.Instruction
				break
			}
		}
		if expected == nil {
			t.Fatalf("catalog has no entry for %04X", value)
		}
		assert.Equal(t, expected.Name, ins.Mnemonic())
	}

	// extension opcodes are not part of the catalog
	ins, err := Decode(0x00FF, p)
	assert.NoError(t, err)
	assert.True(t, ins.base == nil)
	assert.Equal(t, "???", Instruction{Kind: Cls}.Mnemonic())
}

func TestDecodeUnknown(t *testing.T) {
	words := []uint16{0xFFFF, 0x0000, 0x0123, 0x5AB4, 0x8AB8, 0x8ABF, 0x9AB1, 0xEA00, 0xFA99}

	for _, mode := range profile.Modes() {
		p := resolve(t, mode)
		for _, word := range words {
			_, err := Decode(word, p)
			assert.True(t, errors.Is(err, ErrUnknownOpcode), fmt.Sprintf("mode %s word %04X", mode, word))

			var unknown *UnknownOpcodeError
			assert.True(t, errors.As(err, &unknown))
			assert.Equal(t, word, unknown.Word)
			assert.Equal(t, mode, unknown.Mode)
		}
	}
}

func TestDecodeExtensions(t *testing.T) {
	tests := []struct {
		word  uint16
		kind  Kind
		modes []profile.Mode // modes that support the opcode
	}{
		{0x00C4, ScrollDown, []profile.Mode{profile.SuperChip, profile.XOChip10, profile.XOChip11}},
		{0x00D4, ScrollUp, []profile.Mode{profile.XOChip10, profile.XOChip11}},
		{0x00FB, ScrollRight, []profile.Mode{profile.SuperChip, profile.XOChip10, profile.XOChip11}},
		{0x00FC, ScrollLeft, []profile.Mode{profile.SuperChip, profile.XOChip10, profile.XOChip11}},
		{0x00FD, Exit, []profile.Mode{profile.SuperChip, profile.XOChip10, profile.XOChip11}},
		{0x00FE, LowRes, []profile.Mode{profile.SuperChip, profile.XOChip10, profile.XOChip11}},
		{0x00FF, HighRes, []profile.Mode{profile.SuperChip, profile.XOChip10, profile.XOChip11}},
		{0x00ED, Stop, []profile.Mode{profile.Chip8E}},
		{0x5121, SkipGtReg, []profile.Mode{profile.Chip8E}},
		{0x5122, StoreRange, []profile.Mode{profile.Chip8E, profile.XOChip10, profile.XOChip11}},
		{0x5123, LoadRange, []profile.Mode{profile.Chip8E, profile.XOChip10, profile.XOChip11}},
		{0xF130, BigFontChar, []profile.Mode{profile.SuperChip, profile.XOChip10, profile.XOChip11}},
		{0xF175, StoreFlags, []profile.Mode{profile.SuperChip, profile.XOChip10, profile.XOChip11}},
		{0xF185, LoadFlags, []profile.Mode{profile.SuperChip, profile.XOChip10, profile.XOChip11}},
		{0xF000, LoadLong, []profile.Mode{profile.XOChip10, profile.XOChip11}},
		{0xF201, SelectPlane, []profile.Mode{profile.XOChip10, profile.XOChip11}},
		{0xF002, LoadAudio, []profile.Mode{profile.XOChip10, profile.XOChip11}},
		{0xF13A, SetPitch, []profile.Mode{profile.XOChip10, profile.XOChip11}},
	}

	for _, tt := range tests {
		supported := map[profile.Mode]bool{}
		for _, mode := range tt.modes {
			supported[mode] = true
		}

		for _, mode := range profile.Modes() {
			ins, err := Decode(tt.word, resolve(t, mode))
			if !supported[mode] {
				assert.True(t, errors.Is(err, ErrUnknownOpcode), fmt.Sprintf("mode %s word %04X", mode, tt.word))
				continue
			}
			assert.NoError(t, err, fmt.Sprintf("mode %s word %04X", mode, tt.word))
			assert.Equal(t, tt.kind, ins.Kind, fmt.Sprintf("mode %s word %04X", mode, tt.word))
		}
	}
}

func TestDecodeChip8EJumps(t *testing.T) {
	p := resolve(t, profile.Chip8E)

	ins, err := Decode(0xBB04, p)
	assert.NoError(t, err)
	assert.Equal(t, JumpBack, ins.Kind)

	ins, err = Decode(0xBF04, p)
	assert.NoError(t, err)
	assert.Equal(t, JumpForward, ins.Kind)

	ins, err = Decode(0xB204, p)
	assert.NoError(t, err)
	assert.Equal(t, JumpOffset, ins.Kind)

	ins, err = Decode(0xBB04, resolve(t, profile.Chip8))
	assert.NoError(t, err)
	assert.Equal(t, JumpOffset, ins.Kind)
}

func TestLongInstructionSize(t *testing.T) {
	ins, err := Decode(0xF000, resolve(t, profile.XOChip11))
	assert.NoError(t, err)
	assert.Equal(t, uint16(4), ins.Size())
}

func TestString(t *testing.T) {
	chip8 := resolve(t, profile.Chip8)
	xo := resolve(t, profile.XOChip11)

	tests := []struct {
		word     uint16
		p        profile.Profile
		expected string
	}{
		{0x00E0, chip8, "cls"},
		{0x1234, chip8, "jp $234"},
		{0x2300, chip8, "call $300"},
		{0x3234, chip8, "se V2, $34"},
		{0xA234, chip8, "ld I, $234"},
		{0x00C3, xo, "scd $3"},
		{0x00FF, xo, "high"},
		{0xF201, xo, "plane $2"},
		{0x5122, xo, "save V1, V2"},
		{0xF13A, xo, "pitch V1"},
	}

	for _, tt := range tests {
		ins, err := Decode(tt.word, tt.p)
		assert.NoError(t, err)
		assert.Equal(t, tt.expected, ins.String())
	}
}

func TestStringLong(t *testing.T) {
	ins, err := Decode(0xF000, resolve(t, profile.XOChip11))
	assert.NoError(t, err)
	ins.Long = 0x1234
	assert.Equal(t, "ld I, $1234", ins.String())
}
