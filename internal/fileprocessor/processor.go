// Package fileprocessor handles ROM file processing operations
package fileprocessor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/retrochip8/internal/cpu"
	"github.com/retroenv/retrochip8/internal/engine"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/pipeline"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

// ProcessFile runs the ROM of the options and writes the report to the
// output file, or to stdout if no output file is set.
func ProcessFile(ctx context.Context, logger *log.Logger, opts options.Program, emulatorOptions options.Emulator) error {
	writer, err := createWriter(opts)
	if err != nil {
		return fmt.Errorf("creating writer: %w", err)
	}
	defer func() {
		if closer, ok := writer.(io.Closer); ok && writer != os.Stdout {
			_ = closer.Close()
		}
	}()

	p := pipeline.New(logger)
	report, err := p.Execute(ctx, opts, emulatorOptions, writer)
	if err != nil {
		return fmt.Errorf("running ROM: %w", err)
	}

	if report.State == engine.Halted && !errors.Is(report.Reason, cpu.ErrExit) {
		logger.Warn("Program halted before the end of the run",
			log.Int("steps", int(report.Steps)),
			log.Err(report.Reason))
	}
	return nil
}

func createWriter(opts options.Program) (io.Writer, error) {
	if opts.Output == "" {
		return os.Stdout, nil
	}

	file, err := os.Create(opts.Output)
	if err != nil {
		return nil, fmt.Errorf("creating output file %s: %w", opts.Output, err)
	}
	return file, nil
}

// PrintBanner prints application version information
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}

	logger.Info("retrochip8", log.String("version", buildinfo.Version(version, commit, date)))
}
