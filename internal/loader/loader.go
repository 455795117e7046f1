// Package loader handles ROM file loading operations.
package loader

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/arch/system/nes/cartridge"
)

// maxFileSize limits how much of a file is read, it is one byte more than
// the largest memory of all modes so that an oversized ROM is still reported
// as too large by the engine.
const maxFileSize = 65536 + 1

// Loader handles loading ROM files from disk.
type Loader struct{}

// New creates a new ROM loader.
func New() *Loader {
	return &Loader{}
}

// Load reads the ROM file given in the options. ROMs have no header, the
// returned data is the raw program image.
func (l *Loader) Load(opts options.Program) ([]byte, error) {
	file, err := os.Open(opts.Input)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", opts.Input, err)
	}
	defer func() { _ = file.Close() }()

	rom, err := l.LoadFromReader(file)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", opts.Input, err)
	}
	return rom, nil
}

// LoadFromReader reads a ROM from the reader. The data is loaded as a
// headerless cartridge buffer, the ROM is the PRG data without the padding
// to the PRG bank size.
func (l *Loader) LoadFromReader(reader io.Reader) ([]byte, error) {
	counter := &countingReader{reader: io.LimitReader(reader, maxFileSize)}
	cart, err := cartridge.LoadBuffer(counter)
	if err != nil {
		return nil, fmt.Errorf("loading rom: %w", err)
	}
	return cart.PRG[:counter.read], nil
}

// LoadFromBytes returns a copy of the ROM data, so that later changes
// of the buffer do not affect the loaded ROM.
func (l *Loader) LoadFromBytes(data []byte) ([]byte, error) {
	return l.LoadFromReader(bytes.NewReader(data))
}

// countingReader counts the bytes read from the wrapped reader.
type countingReader struct {
	reader io.Reader
	read   int
}

func (r *countingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.read += n
	return n, err
}
