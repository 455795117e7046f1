// Package pipeline orchestrates the emulation workflow stages.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrochip8/internal/detector"
	"github.com/retroenv/retrochip8/internal/engine"
	"github.com/retroenv/retrochip8/internal/loader"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/profile"
	"github.com/retroenv/retrochip8/internal/terminal"
	"github.com/retroenv/retrochip8/internal/writer"
	"github.com/retroenv/retrogolib/log"
)

// Pipeline orchestrates the complete emulation workflow.
type Pipeline struct {
	logger   *log.Logger
	detector *detector.Detector
	loader   *loader.Loader
	input    *os.File // terminal that keypad input is read from
}

// New creates a new emulation pipeline.
func New(logger *log.Logger) *Pipeline {
	return &Pipeline{
		logger:   logger,
		detector: detector.New(logger),
		loader:   loader.New(),
		input:    os.Stdin,
	}
}

// Execute runs the complete emulation pipeline: it detects the mode, loads
// the ROM, runs it and writes the report.
func (p *Pipeline) Execute(ctx context.Context, opts options.Program, emulatorOptions options.Emulator,
	w io.Writer) (writer.Report, error) {

	mode, err := p.detector.Detect(opts)
	if err != nil {
		return writer.Report{}, fmt.Errorf("detecting mode: %w", err)
	}

	rom, err := p.loader.Load(opts)
	if err != nil {
		return writer.Report{}, fmt.Errorf("loading ROM: %w", err)
	}

	return p.ExecuteWithROM(ctx, rom, opts, emulatorOptions, w, mode)
}

// ExecuteWithROM runs the emulation pipeline with a pre-loaded ROM.
// A halted program is not an error, the halt reason is part of the report.
func (p *Pipeline) ExecuteWithROM(ctx context.Context, rom []byte, opts options.Program,
	emulatorOptions options.Emulator, w io.Writer, mode profile.Mode) (writer.Report, error) {

	emulatorOptions.Mode = mode
	rate, err := config.InstructionRate(emulatorOptions)
	if err != nil {
		return writer.Report{}, fmt.Errorf("resolving instruction rate: %w", err)
	}

	e, err := engine.New(p.logger, mode, config.CreateEngineOptions(emulatorOptions))
	if err != nil {
		return writer.Report{}, fmt.Errorf("creating engine: %w", err)
	}
	if err := e.LoadROM(mode, rom); err != nil {
		return writer.Report{}, fmt.Errorf("loading ROM into memory: %w", err)
	}

	p.printInfo(opts, mode, rate, len(rom))

	if emulatorOptions.Realtime {
		err = p.runRealtime(ctx, e, emulatorOptions.Keyboard)
	} else {
		err = p.runFrames(ctx, e, emulatorOptions.Frames)
	}
	if err != nil {
		return writer.Report{}, err
	}

	report := writer.NewReport(opts.Input, e, rate)
	reportWriter := writer.New(w, writer.Options{
		FrameDump: emulatorOptions.FrameDump,
		Glyphs:    writer.GlyphsFor(w),
	})
	if err := reportWriter.Write(report); err != nil {
		return writer.Report{}, fmt.Errorf("writing report: %w", err)
	}
	return report, nil
}

// runFrames simulates the given number of frames or until the engine halts.
func (p *Pipeline) runFrames(ctx context.Context, e *engine.Engine, frames int) error {
	for frame := range frames {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("running frame %d: %w", frame, err)
		}
		if err := e.RunFrames(1); err != nil {
			p.logger.Debug("Emulation stopped", log.Int("frame", frame), log.Err(err))
			return nil
		}
	}
	return nil
}

// runRealtime runs the engine on the wall clock until the program exits or
// halts, or the context is cancelled.
func (p *Pipeline) runRealtime(ctx context.Context, e *engine.Engine, keyboard bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if keyboard {
		stopKeyboard := p.startKeyboard(ctx, e, cancel)
		defer stopKeyboard()
	}

	err := e.Run(ctx)
	if err == nil || errors.Is(err, context.Canceled) {
		return nil
	}
	p.logger.Debug("Emulation stopped", log.Err(err))
	return nil
}

// startKeyboard feeds terminal input into the keypad of the engine and
// returns a function that stops reading and restores the terminal.
func (p *Pipeline) startKeyboard(ctx context.Context, e *engine.Engine, stop func()) func() {
	restore, err := terminal.MakeRaw(int(p.input.Fd()))
	if err != nil {
		p.logger.Warn("Keyboard input is not available", log.Err(err))
		return func() {}
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	keyboard := terminal.NewKeyboard(p.logger, e, terminal.DefaultHoldTime)
	go func() {
		defer close(done)
		if err := keyboard.Run(ctx, p.input, stop); err != nil {
			p.logger.Error("Reading keyboard input failed", log.Err(err))
		}
	}()

	return func() {
		cancel()
		<-done
		restore()
	}
}

// printInfo prints information about the ROM being processed.
func (p *Pipeline) printInfo(opts options.Program, mode profile.Mode, rate, size int) {
	if opts.Quiet {
		return
	}

	p.logger.Info("Running ROM",
		log.String("file", opts.Input),
		log.Stringer("mode", mode),
		log.Int("size", size),
		log.Int("ips", rate),
	)
}
