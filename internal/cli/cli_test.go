package cli

import (
	"errors"
	"os"
	"testing"

	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/assert"
)

func TestParseFlags_EmulatorOptions(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want options.Emulator
	}{
		{
			name: "default flags",
			args: []string{"prog", "pong.ch8"},
			want: options.Emulator{Frames: options.DefaultFrames, FrameDump: true},
		},
		{
			name: "noframe flag",
			args: []string{"prog", "-noframe", "pong.ch8"},
			want: options.Emulator{Frames: options.DefaultFrames},
		},
		{
			name: "frames and ips",
			args: []string{"prog", "-frames", "10", "-ips", "2000", "pong.ch8"},
			want: options.Emulator{Frames: 10, InstructionsPerSecond: 2000, FrameDump: true},
		},
		{
			name: "keyboard requires realtime",
			args: []string{"prog", "-keyboard", "pong.ch8"},
			want: options.Emulator{Frames: options.DefaultFrames, FrameDump: true},
		},
		{
			name: "realtime keyboard",
			args: []string{"prog", "-realtime", "-keyboard", "pong.ch8"},
			want: options.Emulator{Frames: options.DefaultFrames, Realtime: true, Keyboard: true, FrameDump: true},
		},
		{
			name: "realtime and debug",
			args: []string{"prog", "-realtime", "-debug", "pong.ch8"},
			want: options.Emulator{Frames: options.DefaultFrames, Realtime: true, Trace: true, FrameDump: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldArgs := os.Args
			t.Cleanup(func() { os.Args = oldArgs })

			os.Args = tt.args

			opts, got, err := ParseFlags()
			assert.NoError(t, err)
			assert.Equal(t, "pong.ch8", opts.Input)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFlags_Errors(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		usageError bool
	}{
		{
			name:       "missing rom file",
			args:       []string{"prog"},
			usageError: true,
		},
		{
			name:       "flag after rom file",
			args:       []string{"prog", "pong.ch8", "-q"},
			usageError: true,
		},
		{
			name: "unknown mode",
			args: []string{"prog", "-m", "gameboy", "pong.ch8"},
		},
		{
			name: "negative frames",
			args: []string{"prog", "-frames", "-1", "pong.ch8"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldArgs := os.Args
			t.Cleanup(func() { os.Args = oldArgs })

			os.Args = tt.args

			_, _, err := ParseFlags()
			assert.Error(t, err)

			var usageErr *UsageError
			assert.Equal(t, tt.usageError, errors.As(err, &usageErr))
		})
	}
}

func TestNormalizeOptions(t *testing.T) {
	opts := options.Program{Flags: options.Flags{Mode: " SCHIP "}}
	assert.NoError(t, normalizeOptions(&opts))
	assert.Equal(t, "schip", opts.Mode)

	opts = options.Program{Flags: options.Flags{Mode: "nes"}}
	assert.ErrorContains(t, normalizeOptions(&opts), "unsupported mode: nes")

	opts = options.Program{Flags: options.Flags{InstructionsPerSecond: -5}}
	assert.Error(t, normalizeOptions(&opts))
}

func TestValidateArgs(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		valid bool
	}{
		{"rom only", []string{"pong.ch8"}, true},
		{"empty argument after rom", []string{"pong.ch8", ""}, true},
		{"empty rom argument", []string{""}, true},
		{"flag after rom", []string{"pong.ch8", "-q"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateArgs(tt.args)
			assert.Equal(t, tt.valid, err == nil)
		})
	}
}
