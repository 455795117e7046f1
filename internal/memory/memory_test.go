package memory

import (
	"bytes"
	"errors"
	"testing"

	"github.com/retroenv/retrochip8/internal/profile"
	"github.com/retroenv/retrogolib/assert"
)

func resolve(t *testing.T, mode profile.Mode) profile.Profile {
	t.Helper()
	p, err := profile.Resolve(mode)
	assert.NoError(t, err)
	return p
}

func TestNew(t *testing.T) {
	m := New(4096)
	assert.Equal(t, 4096, m.Size())

	for _, address := range []uint16{0, 0x200, 0xFFF} {
		b, err := m.Read8(address)
		assert.NoError(t, err)
		assert.Equal(t, byte(0), b)
	}
}

func TestReadWrite(t *testing.T) {
	m := New(4096)

	assert.NoError(t, m.Write8(0x300, 0x12))
	assert.NoError(t, m.Write8(0x301, 0x34))

	b, err := m.Read8(0x300)
	assert.NoError(t, err)
	assert.Equal(t, byte(0x12), b)

	w, err := m.Read16(0x300)
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x1234), w)
}

func TestOutOfBounds(t *testing.T) {
	m := New(4096)

	_, err := m.Read8(0x1000)
	assert.True(t, errors.Is(err, ErrMemoryFault))

	_, err = m.Read16(0x0FFF)
	assert.True(t, errors.Is(err, ErrMemoryFault))

	err = m.Write8(0x1000, 1)
	assert.True(t, errors.Is(err, ErrMemoryFault))

	var fault *FaultError
	assert.True(t, errors.As(err, &fault))
	assert.Equal(t, 0x1000, fault.Address)
	assert.True(t, fault.Write)
	assert.ErrorContains(t, err, "write of 1 byte(s) at $1000")

	_, err = m.ReadRange(0x0FFE, 3)
	assert.True(t, errors.Is(err, ErrMemoryFault))

	err = m.WriteRange(0x0FFF, []byte{1, 2})
	assert.True(t, errors.Is(err, ErrMemoryFault))

	// nothing may wrap around to low memory
	b, err := m.Read8(0)
	assert.NoError(t, err)
	assert.Equal(t, byte(0), b)
}

func TestRanges(t *testing.T) {
	m := New(4096)
	assert.NoError(t, m.WriteRange(0x400, []byte{1, 2, 3}))

	data, err := m.ReadRange(0x400, 3)
	assert.NoError(t, err)
	assert.True(t, bytes.Equal([]byte{1, 2, 3}, data))

	// returned data must not alias memory
	data[0] = 0xFF
	b, err := m.Read8(0x400)
	assert.NoError(t, err)
	assert.Equal(t, byte(1), b)
}

func TestResizePreservesOverlap(t *testing.T) {
	m := New(65536)
	assert.NoError(t, m.Write8(0x0200, 0xAA))
	assert.NoError(t, m.Write8(0x2000, 0xBB))

	m.Resize(4096)
	assert.Equal(t, 4096, m.Size())
	b, err := m.Read8(0x0200)
	assert.NoError(t, err)
	assert.Equal(t, byte(0xAA), b)

	m.Resize(65536)
	b, err = m.Read8(0x2000)
	assert.NoError(t, err)
	assert.Equal(t, byte(0), b)
	b, err = m.Read8(0x0200)
	assert.NoError(t, err)
	assert.Equal(t, byte(0xAA), b)
}

func TestLoadFont(t *testing.T) {
	p := resolve(t, profile.Chip8)
	m := New(p.MemorySize)
	assert.NoError(t, m.LoadFont(p))

	data, err := m.ReadRange(p.FontBase, len(font))
	assert.NoError(t, err)
	assert.True(t, bytes.Equal(font[:], data))

	// no big font in CHIP-8 mode
	b, err := m.Read8(profile.BigFontBase)
	assert.NoError(t, err)
	assert.Equal(t, byte(0), b)

	p = resolve(t, profile.SuperChip)
	m = New(p.MemorySize)
	assert.NoError(t, m.LoadFont(p))
	data, err = m.ReadRange(p.BigFontBase, len(bigFont))
	assert.NoError(t, err)
	assert.True(t, bytes.Equal(bigFont[:], data))
}

func TestLoadROM(t *testing.T) {
	p := resolve(t, profile.Chip8)
	m := New(p.MemorySize)
	assert.NoError(t, m.Write8(0x0F00, 0x55))

	rom := []byte{0x60, 0x01, 0x61, 0x02}
	assert.NoError(t, m.LoadROM(rom, p))

	data, err := m.ReadRange(profile.ProgramStart, len(rom))
	assert.NoError(t, err)
	assert.True(t, bytes.Equal(rom, data))

	b, err := m.Read8(0x0F00)
	assert.NoError(t, err)
	assert.Equal(t, byte(0), b)

	b, err = m.Read8(p.FontBase)
	assert.NoError(t, err)
	assert.Equal(t, font[0], b)

	// the ROM is copied, not aliased
	rom[0] = 0x00
	b, err = m.Read8(profile.ProgramStart)
	assert.NoError(t, err)
	assert.Equal(t, byte(0x60), b)
}

func TestLoadROMTooLarge(t *testing.T) {
	p := resolve(t, profile.Chip8)
	m := New(p.MemorySize)
	assert.NoError(t, m.Write8(0x0300, 0x77))

	err := m.LoadROM(make([]byte, p.MemorySize-profile.ProgramStart+1), p)
	assert.True(t, errors.Is(err, ErrRomTooLarge))

	b, err := m.Read8(0x0300)
	assert.NoError(t, err)
	assert.Equal(t, byte(0x77), b)

	// exactly fitting ROM is accepted
	assert.NoError(t, m.LoadROM(make([]byte, p.MemorySize-profile.ProgramStart), p))
}

func TestGlyphAddress(t *testing.T) {
	assert.Equal(t, uint16(0x050), GlyphAddress(0x050, 0))
	assert.Equal(t, uint16(0x050+5*0xA), GlyphAddress(0x050, 0xA))
	assert.Equal(t, uint16(0x050+5*0xF), GlyphAddress(0x050, 0xFF))
	assert.Equal(t, uint16(0x0A0+10*3), BigGlyphAddress(0x0A0, 3))
}
