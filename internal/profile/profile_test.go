package profile

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		mode       Mode
		memorySize int
		width      int
		height     int
		stackDepth int
		planes     int
	}{
		{Chip8, 4096, 64, 32, 12, 1},
		{Chip8E, 4096, 64, 32, 12, 1},
		{Chip16, 65536, 320, 240, 16, 1},
		{Chip48, 4096, 64, 32, 16, 1},
		{SuperChip, 65536, 128, 64, 16, 1},
		{XOChip10, 65536, 128, 64, 16, 2},
		{XOChip11, 65536, 128, 64, 16, 2},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			p, err := Resolve(tt.mode)
			assert.NoError(t, err)
			assert.Equal(t, tt.mode, p.Mode)
			assert.Equal(t, tt.memorySize, p.MemorySize)
			assert.Equal(t, tt.width, p.DisplayWidth)
			assert.Equal(t, tt.height, p.DisplayHeight)
			assert.Equal(t, tt.stackDepth, p.StackDepth)
			assert.Equal(t, tt.planes, p.Planes)
			assert.Equal(t, uint16(FontBase), p.FontBase)
		})
	}
}

func TestResolveInvalidMode(t *testing.T) {
	_, err := Resolve(numModes)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidMode))

	_, err = Resolve(Mode(255))
	assert.True(t, errors.Is(err, ErrInvalidMode))
}

func TestResolveQuirks(t *testing.T) {
	tests := []struct {
		mode    Mode
		quirk   Quirk
		enabled bool
	}{
		{Chip8, ShiftUsesVY, true},
		{Chip48, ShiftUsesVY, false},
		{SuperChip, ShiftUsesVY, false},
		{XOChip11, ShiftUsesVY, true},
		{Chip8, JumpUsesVX, false},
		{Chip48, JumpUsesVX, true},
		{SuperChip, JumpUsesVX, true},
		{Chip8, ClipSprites, true},
		{XOChip10, ClipSprites, false},
		{Chip8, LogicResetsVF, true},
		{SuperChip, LogicResetsVF, false},
		{Chip8, DisplayWait, true},
		{Chip48, DisplayWait, false},
		{Chip8, ExtendedOpcodes, false},
		{SuperChip, ExtendedOpcodes, true},
		{SuperChip, XOOpcodes, false},
		{XOChip10, XOOpcodes, true},
		{Chip8E, Chip8EOpcodes, true},
		{Chip8, Chip8EOpcodes, false},
		{XOChip10, LowResScrollFull, false},
		{XOChip11, LowResScrollFull, true},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String()+"/"+string(tt.quirk), func(t *testing.T) {
			p, err := Resolve(tt.mode)
			assert.NoError(t, err)
			assert.Equal(t, tt.enabled, p.Has(tt.quirk))
		})
	}
}

func TestResolveIndexIncrement(t *testing.T) {
	p, err := Resolve(Chip8)
	assert.NoError(t, err)
	assert.Equal(t, IndexIncrementX1, p.IndexIncrement)

	p, err = Resolve(Chip48)
	assert.NoError(t, err)
	assert.Equal(t, IndexIncrementX, p.IndexIncrement)

	p, err = Resolve(SuperChip)
	assert.NoError(t, err)
	assert.Equal(t, IndexUnchanged, p.IndexIncrement)
}

func TestResolutionSwitch(t *testing.T) {
	for _, mode := range Modes() {
		p, err := Resolve(mode)
		assert.NoError(t, err)

		switch mode {
		case SuperChip, XOChip10, XOChip11:
			assert.True(t, p.HasResolutionSwitch())
			assert.Equal(t, 64, p.LowResWidth)
			assert.Equal(t, 32, p.LowResHeight)
			assert.Equal(t, uint16(BigFontBase), p.BigFontBase)
		default:
			assert.False(t, p.HasResolutionSwitch())
			assert.Equal(t, uint16(0), p.BigFontBase)
		}
	}
}

func TestModeFromString(t *testing.T) {
	tests := []struct {
		input   string
		want    Mode
		wantErr bool
	}{
		{"chip8", Chip8, false},
		{"CHIP8", Chip8, false},
		{"chip8e", Chip8E, false},
		{"chip16", Chip16, false},
		{"chip48", Chip48, false},
		{"schip", SuperChip, false},
		{"superchip", SuperChip, false},
		{"xochip10", XOChip10, false},
		{"xochip", XOChip11, false},
		{" xochip11 ", XOChip11, false},
		{"gameboy", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ModeFromString(tt.input)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidMode))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "chip8", Chip8.String())
	assert.Equal(t, "schip", SuperChip.String())
	assert.Equal(t, "mode(200)", Mode(200).String())
	assert.Equal(t, int(numModes), len(Modes()))
}
