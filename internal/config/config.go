// Package config handles application configuration and setup
package config

import (
	"github.com/retroenv/retrochip8/internal/engine"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/profile"
	"github.com/retroenv/retrogolib/log"
)

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// CreateEngineOptions creates the engine options for an emulation run.
func CreateEngineOptions(emulatorOptions options.Emulator) engine.Options {
	return engine.Options{
		InstructionsPerSecond: emulatorOptions.InstructionsPerSecond,
		Trace:                 emulatorOptions.Trace,
	}
}

// InstructionRate returns the instruction rate that a run uses, the
// configured rate or the default rate of the mode.
func InstructionRate(emulatorOptions options.Emulator) (int, error) {
	if emulatorOptions.InstructionsPerSecond > 0 {
		return emulatorOptions.InstructionsPerSecond, nil
	}
	p, err := profile.Resolve(emulatorOptions.Mode)
	if err != nil {
		return 0, err
	}
	return p.DefaultInstructionsPerSecond, nil
}
