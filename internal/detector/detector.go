// Package detector handles compatibility mode detection.
package detector

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/profile"
	"github.com/retroenv/retrogolib/log"
)

// extensionModes maps ROM file extensions to the mode that they are usually written for.
var extensionModes = map[string]profile.Mode{
	".ch8": profile.Chip8,
	".c8e": profile.Chip8E,
	".c16": profile.Chip16,
	".c48": profile.Chip48,
	".sc8": profile.SuperChip,
	".xo8": profile.XOChip11,
}

// Detector handles compatibility mode detection from file extensions and options.
type Detector struct {
	logger *log.Logger
}

// New creates a new mode detector.
func New(logger *log.Logger) *Detector {
	return &Detector{
		logger: logger,
	}
}

// Detect determines the compatibility mode from options or file auto-detection.
// It first checks if a mode is explicitly specified in options, otherwise
// attempts to detect the mode from the input filename extension.
func (d *Detector) Detect(opts options.Program) (profile.Mode, error) {
	if opts.Mode != "" {
		mode, err := profile.ModeFromString(opts.Mode)
		if err != nil {
			return 0, fmt.Errorf("parsing mode: %w", err)
		}
		return mode, nil
	}

	mode := d.detectFromFile(opts.Input)
	d.logger.Debug("Auto-detected mode",
		log.Stringer("mode", mode),
		log.String("file", opts.Input))
	return mode, nil
}

// detectFromFile determines the mode based on file extension.
func (d *Detector) detectFromFile(filename string) profile.Mode {
	ext := strings.ToLower(filepath.Ext(filename))
	if mode, ok := extensionModes[ext]; ok {
		return mode
	}
	// plain CHIP-8 is the most common format of unknown files like .rom or .bin
	return profile.Chip8
}
