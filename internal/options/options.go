// Package options contains the program options.
package options

import (
	"github.com/retroenv/retrochip8/internal/profile"
)

// DefaultFrames is the number of 60 Hz frames that are simulated when not
// running in real time, which is 10 seconds of simulated time.
const DefaultFrames = 600

// Positional contains positional arguments.
type Positional struct {
	File string `arg:"positional" usage:"ROM file to run"`
}

// Parameters contains file path options.
type Parameters struct {
	Input  string `flag:"i" usage:"input ROM file"`
	Output string `flag:"o" usage:"output report file (default: stdout)"`
}

// Flags contains behavior options.
type Flags struct {
	Mode                  string `flag:"m" usage:"compatibility mode (default: detect from file extension)"`
	InstructionsPerSecond int    `flag:"ips" usage:"instructions per second (default: per mode)"`
	Frames                int    `flag:"frames" usage:"number of 60 Hz frames to simulate" default:"600"`
	Realtime              bool   `flag:"realtime" usage:"run on the wall clock until interrupted"`
	Keyboard              bool   `flag:"keyboard" usage:"read keypad input from the terminal in real time mode"`
	Debug                 bool   `flag:"debug" usage:"enable debug logging and instruction tracing"`
	Quiet                 bool   `flag:"q" usage:"quiet mode"`
}

// OutputFlags contains report formatting options.
type OutputFlags struct {
	NoFrame bool `flag:"noframe" usage:"omit the frame buffer dump from the report"`
}

// Program options of the interpreter.
type Program struct {
	Parameters
	Flags
	OutputFlags
}

// Emulator defines options to control a single emulation run.
type Emulator struct {
	Mode                  profile.Mode // compatibility mode, set after detection
	InstructionsPerSecond int          // 0 uses the default rate of the mode
	Frames                int          // frames to simulate when not running in real time
	Realtime              bool
	Keyboard              bool // feed terminal input into the keypad, only in real time mode
	Trace                 bool // log every executed instruction

	FrameDump bool // include the frame buffer in the report
}

// NewEmulator returns a new options instance with default options.
func NewEmulator() Emulator {
	return Emulator{
		Frames:    DefaultFrames,
		FrameDump: true,
	}
}
