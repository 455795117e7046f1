// Package cli handles command line interface logic
package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/profile"
)

// ParseFlags parses command line flags and returns program and emulator options
func ParseFlags() (options.Program, options.Emulator, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	var opts options.Program
	readOptionFlags(flags, &opts)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil || (len(args) == 0 && opts.Input == "") {
		return opts, options.Emulator{}, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, options.Emulator{}, err
	}

	if err := normalizeOptions(&opts); err != nil {
		return opts, options.Emulator{}, err
	}

	if len(args) > 0 {
		opts.Input = args[0]
	}

	return opts, createEmulatorOptions(opts), nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

// ShowUsage prints the usage information and the flag defaults.
func (e *UsageError) ShowUsage() {
	if e.msg != "" {
		fmt.Printf("%s\n\n", e.msg)
	}
	fmt.Printf("usage: retrochip8 [options] <rom file>\n\n")
	if e.flags != nil {
		e.flags.PrintDefaults()
	}
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && strings.HasPrefix(arg, "-") {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after ROM file, please pass the ROM file as last argument", arg),
			}
		}
	}
	return nil
}

// normalizeOptions normalizes and validates option values
func normalizeOptions(opts *options.Program) error {
	opts.Mode = strings.ToLower(strings.TrimSpace(opts.Mode))
	if opts.Mode != "" {
		if _, err := profile.ModeFromString(opts.Mode); err != nil {
			names := make([]string, 0, len(profile.Modes()))
			for _, mode := range profile.Modes() {
				names = append(names, mode.String())
			}
			return fmt.Errorf("unsupported mode: %s. Valid options: %s",
				opts.Mode, strings.Join(names, ", "))
		}
	}

	if opts.InstructionsPerSecond < 0 {
		return errors.New("instructions per second can not be negative")
	}
	if opts.Frames < 0 {
		return errors.New("frame count can not be negative")
	}
	return nil
}

// createEmulatorOptions creates emulator options based on program options
func createEmulatorOptions(opts options.Program) options.Emulator {
	emulatorOptions := options.NewEmulator()
	emulatorOptions.InstructionsPerSecond = opts.InstructionsPerSecond
	emulatorOptions.Frames = opts.Frames
	emulatorOptions.Realtime = opts.Realtime
	emulatorOptions.Keyboard = opts.Keyboard && opts.Realtime
	emulatorOptions.Trace = opts.Debug
	emulatorOptions.FrameDump = !opts.NoFrame
	return emulatorOptions
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Input, "i", "", "name of the input ROM file")
	flags.StringVar(&opts.Output, "o", "", "name of the output report file, printed on console if no name given")
	flags.StringVar(&opts.Mode, "m", "", "compatibility mode (chip8/chip8e/chip16/chip48/schip/xochip10/xochip11) - if not auto-detected from file extension")
	flags.IntVar(&opts.InstructionsPerSecond, "ips", 0, "instructions per second, the default depends on the mode")
	flags.IntVar(&opts.Frames, "frames", options.DefaultFrames, "number of 60 Hz frames to simulate before writing the report")
	flags.BoolVar(&opts.Realtime, "realtime", false, "run on the wall clock until interrupted by Ctrl+C")
	flags.BoolVar(&opts.Keyboard, "keyboard", false, "read keypad input from the terminal in real time mode (keys 1-4, q-r, a-f, z-v)")
	flags.BoolVar(&opts.NoFrame, "noframe", false, "do not output the frame buffer in the report")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging and instruction tracing")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
}
