// Package writer implements the text report of an emulation run.
package writer

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/retroenv/retrochip8/internal/cpu"
	"github.com/retroenv/retrochip8/internal/display"
	"github.com/retroenv/retrochip8/internal/engine"
	"github.com/retroenv/retrochip8/internal/profile"
	"golang.org/x/term"
)

const registersPerLine = 8

// Glyphs are the characters used for the pixel colors 0-3 of a frame dump,
// bit n of a color is set if the pixel is set in plane n.
type Glyphs [1 << display.MaxPlanes]rune

var (
	// ASCIIGlyphs are used for files and pipes.
	ASCIIGlyphs = Glyphs{'.', '#', '+', '*'}
	// BlockGlyphs are used when writing to a terminal.
	BlockGlyphs = Glyphs{' ', '█', '░', '▓'}
)

// GlyphsFor returns the glyphs that suit the output, block characters for
// a terminal and ASCII characters otherwise.
func GlyphsFor(writer io.Writer) Glyphs {
	file, ok := writer.(*os.File)
	if ok && term.IsTerminal(int(file.Fd())) {
		return BlockGlyphs
	}
	return ASCIIGlyphs
}

// Report contains the state of an engine after a run.
type Report struct {
	File                  string
	Profile               profile.Profile
	InstructionsPerSecond int

	State  engine.State
	Reason error // reason of a halt

	Steps uint64
	Ticks uint64

	Registers     cpu.Registers
	Stack         []uint16
	Timers        cpu.Timers
	Keys          cpu.Keys
	WaitingForKey bool

	HighRes bool
	Frame   display.Frame
}

// NewReport creates a report of the current state of the engine.
func NewReport(file string, e *engine.Engine, instructionsPerSecond int) Report {
	state, reason := e.State()
	steps, ticks := e.Statistics()
	return Report{
		File:                  file,
		Profile:               e.Profile(),
		InstructionsPerSecond: instructionsPerSecond,
		State:                 state,
		Reason:                reason,
		Steps:                 steps,
		Ticks:                 ticks,
		Registers:             e.Registers(),
		Stack:                 e.Stack(),
		Timers:                e.Timers(),
		Keys:                  e.Keys(),
		WaitingForKey:         e.WaitingForKey(),
		HighRes:               e.HighRes(),
		Frame:                 e.Frame(),
	}
}

// Options of the writer.
type Options struct {
	FrameDump bool
	Glyphs    Glyphs
}

// Writer writes reports as text.
type Writer struct {
	options Options
	writer  io.Writer
}

// New creates a new writer.
func New(writer io.Writer, options Options) *Writer {
	if options.Glyphs == (Glyphs{}) {
		options.Glyphs = ASCIIGlyphs
	}
	return &Writer{
		options: options,
		writer:  writer,
	}
}

// Write writes the report.
func (w Writer) Write(report Report) error {
	buf := &strings.Builder{}
	w.writeSummary(buf, report)
	w.writeRegisters(buf, report)
	if w.options.FrameDump {
		w.writeFrame(buf, report)
	}

	if _, err := io.WriteString(w.writer, buf.String()); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

func (w Writer) writeSummary(buf *strings.Builder, report Report) {
	fmt.Fprintf(buf, "file:    %s\n", report.File)
	fmt.Fprintf(buf, "mode:    %s (%d instructions per second)\n", report.Profile.Mode, report.InstructionsPerSecond)

	state := report.State.String()
	if report.Reason != nil {
		state = fmt.Sprintf("%s: %s", state, report.Reason)
	}
	fmt.Fprintf(buf, "state:   %s\n", state)
	fmt.Fprintf(buf, "steps:   %d\n", report.Steps)
	fmt.Fprintf(buf, "frames:  %d\n", report.Ticks)
	if report.WaitingForKey {
		fmt.Fprintln(buf, "waiting: key press")
	}
	fmt.Fprintln(buf)
}

func (w Writer) writeRegisters(buf *strings.Builder, report Report) {
	regs := report.Registers
	fmt.Fprintf(buf, "PC=$%04X I=$%04X\n", regs.PC, regs.I)

	for i, value := range regs.V {
		fmt.Fprintf(buf, "V%X=$%02X", i, value)
		if (i+1)%registersPerLine == 0 {
			fmt.Fprintln(buf)
		} else {
			buf.WriteByte(' ')
		}
	}

	keys := report.Keys.String()
	if keys == "" {
		keys = "none"
	}
	fmt.Fprintf(buf, "delay=$%02X sound=$%02X keys=%s\n", report.Timers.Delay, report.Timers.Sound, keys)

	buf.WriteString("stack:")
	for _, address := range report.Stack {
		fmt.Fprintf(buf, " $%04X", address)
	}
	fmt.Fprintf(buf, "\n\n")
}

// writeFrame dumps the frame at its logical resolution, a low resolution
// frame of a mode with resolution switch is written at half size.
func (w Writer) writeFrame(buf *strings.Builder, report Report) {
	frame := report.Frame
	scale := 1
	if !report.HighRes && report.Profile.HasResolutionSwitch() {
		scale = 2
	}
	width, height := frame.Width/scale, frame.Height/scale

	fmt.Fprintf(buf, "frame %dx%d:\n", width, height)
	border := "+" + strings.Repeat("-", width) + "+\n"
	buf.WriteString(border)
	for y := range height {
		buf.WriteByte('|')
		for x := range width {
			color := frame.Color(x*scale, y*scale)
			buf.WriteRune(w.options.Glyphs[color])
		}
		buf.WriteString("|\n")
	}
	buf.WriteString(border)
}
