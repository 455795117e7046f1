// Package memory implements the bounds checked address space of the interpreter.
package memory

import (
	"errors"
	"fmt"

	"github.com/retroenv/retrochip8/internal/profile"
)

var (
	// ErrMemoryFault is returned for any read or write outside of the address space.
	ErrMemoryFault = errors.New("memory fault")
	// ErrRomTooLarge is returned when a ROM does not fit between the program start and the end of memory.
	ErrRomTooLarge = errors.New("rom too large")
)

// FaultError describes an out of bounds memory access.
type FaultError struct {
	Address int  // first address of the access
	Length  int  // number of bytes accessed
	Size    int  // size of the address space
	Write   bool // access was a write
}

func (e *FaultError) Error() string {
	access := "read"
	if e.Write {
		access = "write"
	}
	return fmt.Sprintf("%s: %s of %d byte(s) at $%04X exceeds memory size $%04X",
		ErrMemoryFault, access, e.Length, e.Address, e.Size)
}

// Is makes FaultError match ErrMemoryFault with errors.Is.
func (e *FaultError) Is(target error) bool {
	return target == ErrMemoryFault
}

// Memory is a zero initialized byte addressable memory.
type Memory struct {
	data []byte
}

// New returns a zeroed memory of the given size.
func New(size int) *Memory {
	return &Memory{
		data: make([]byte, size),
	}
}

// Size returns the number of addressable bytes.
func (m *Memory) Size() int {
	return len(m.data)
}

// Resize replaces the memory with a zeroed buffer of the new size,
// preserving the bytes that fit into both the old and the new size.
func (m *Memory) Resize(size int) {
	data := make([]byte, size)
	copy(data, m.data)
	m.data = data
}

// Clear zeroes the whole memory.
func (m *Memory) Clear() {
	clear(m.data)
}

// LoadFont writes the hexadecimal font and, if the profile has one, the big font.
func (m *Memory) LoadFont(p profile.Profile) error {
	if err := m.WriteRange(p.FontBase, font[:]); err != nil {
		return fmt.Errorf("writing font: %w", err)
	}
	if p.BigFontBase == 0 {
		return nil
	}
	if err := m.WriteRange(p.BigFontBase, bigFont[:]); err != nil {
		return fmt.Errorf("writing big font: %w", err)
	}
	return nil
}

// LoadROM clears the memory, writes the fonts of the profile and copies the ROM
// to the program start address. The memory is left untouched if the ROM does not fit.
func (m *Memory) LoadROM(rom []byte, p profile.Profile) error {
	if len(rom)+profile.ProgramStart > len(m.data) {
		return fmt.Errorf("%w: %d bytes exceed the %d bytes available",
			ErrRomTooLarge, len(rom), len(m.data)-profile.ProgramStart)
	}

	m.Clear()
	if err := m.LoadFont(p); err != nil {
		return err
	}
	copy(m.data[profile.ProgramStart:], rom)
	return nil
}

// Read8 reads a byte.
func (m *Memory) Read8(address uint16) (byte, error) {
	if int(address) >= len(m.data) {
		return 0, m.fault(int(address), 1, false)
	}
	return m.data[address], nil
}

// Read16 reads a big endian word, the high byte is stored at the lower address.
func (m *Memory) Read16(address uint16) (uint16, error) {
	if int(address)+2 > len(m.data) {
		return 0, m.fault(int(address), 2, false)
	}
	return uint16(m.data[address])<<8 | uint16(m.data[int(address)+1]), nil
}

// Write8 writes a byte.
func (m *Memory) Write8(address uint16, value byte) error {
	if int(address) >= len(m.data) {
		return m.fault(int(address), 1, true)
	}
	m.data[address] = value
	return nil
}

// ReadRange returns a copy of length bytes starting at address.
func (m *Memory) ReadRange(address uint16, length int) ([]byte, error) {
	end := int(address) + length
	if length < 0 || end > len(m.data) {
		return nil, m.fault(int(address), length, false)
	}
	buf := make([]byte, length)
	copy(buf, m.data[address:end])
	return buf, nil
}

// WriteRange writes all bytes of data starting at address.
func (m *Memory) WriteRange(address uint16, data []byte) error {
	end := int(address) + len(data)
	if end > len(m.data) {
		return m.fault(int(address), len(data), true)
	}
	copy(m.data[address:end], data)
	return nil
}

// Fault returns the error of an access of length bytes at address, for
// addresses that are computed outside of the 16 bit address range.
func (m *Memory) Fault(address, length int, write bool) error {
	return m.fault(address, length, write)
}

func (m *Memory) fault(address, length int, write bool) error {
	return &FaultError{
		Address: address,
		Length:  length,
		Size:    len(m.data),
		Write:   write,
	}
}
