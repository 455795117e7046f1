package writer

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/retroenv/retrochip8/internal/cpu"
	"github.com/retroenv/retrochip8/internal/display"
	"github.com/retroenv/retrochip8/internal/engine"
	"github.com/retroenv/retrochip8/internal/profile"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func testFrame(width, height, planes int) display.Frame {
	frame := display.Frame{
		Width:  width,
		Height: height,
		Planes: make([][]bool, planes),
	}
	for i := range frame.Planes {
		frame.Planes[i] = make([]bool, width*height)
	}
	return frame
}

func TestWriteReport(t *testing.T) {
	p, err := profile.Resolve(profile.Chip8)
	assert.NoError(t, err)

	frame := testFrame(p.DisplayWidth, p.DisplayHeight, 1)
	frame.Planes[0][0] = true

	report := Report{
		File:                  "pong.ch8",
		Profile:               p,
		InstructionsPerSecond: 700,
		State:                 engine.Halted,
		Reason:                errors.New("unknown opcode $0000 in mode chip8"),
		Steps:                 4,
		Ticks:                 1,
		Registers:             cpu.Registers{PC: 0x208, I: 0x50},
		Stack:                 []uint16{0x202},
		Timers:                cpu.Timers{Delay: 3},
		Frame:                 frame,
	}
	report.Registers.V[0] = 3

	buf := &bytes.Buffer{}
	w := New(buf, Options{FrameDump: true})
	assert.NoError(t, w.Write(report))

	output := buf.String()
	assert.Contains(t, output, "file:    pong.ch8")
	assert.Contains(t, output, "mode:    chip8 (700 instructions per second)")
	assert.Contains(t, output, "state:   halted: unknown opcode $0000 in mode chip8")
	assert.Contains(t, output, "PC=$0208 I=$0050")
	assert.Contains(t, output, "V0=$03 V1=$00")
	assert.Contains(t, output, "delay=$03 sound=$00 keys=none")
	assert.Contains(t, output, "stack: $0202")
	assert.Contains(t, output, "frame 64x32:")
	assert.Contains(t, output, "|#...")
	assert.Contains(t, output, "+"+strings.Repeat("-", 64)+"+")
}

func TestWriteWithoutFrame(t *testing.T) {
	p, err := profile.Resolve(profile.Chip8)
	assert.NoError(t, err)

	buf := &bytes.Buffer{}
	w := New(buf, Options{})
	assert.NoError(t, w.Write(Report{Profile: p, State: engine.Running}))
	assert.False(t, strings.Contains(buf.String(), "frame"))
	assert.Contains(t, buf.String(), "state:   running")
}

func TestWriteLowResolutionFrame(t *testing.T) {
	p, err := profile.Resolve(profile.XOChip11)
	assert.NoError(t, err)

	frame := testFrame(p.DisplayWidth, p.DisplayHeight, 2)
	frame.Planes[0][0] = true
	frame.Planes[1][0] = true
	frame.Planes[1][2] = true

	buf := &bytes.Buffer{}
	w := New(buf, Options{FrameDump: true, Glyphs: ASCIIGlyphs})
	assert.NoError(t, w.Write(Report{Profile: p, Frame: frame}))
	assert.Contains(t, buf.String(), "frame 64x32:")
	assert.Contains(t, buf.String(), "|*+..")

	buf.Reset()
	assert.NoError(t, w.Write(Report{Profile: p, Frame: frame, HighRes: true}))
	assert.Contains(t, buf.String(), "frame 128x64:")
}

func TestNewReport(t *testing.T) {
	e, err := engine.New(log.NewTestLogger(t), profile.Chip8, engine.Options{})
	assert.NoError(t, err)
	assert.NoError(t, e.LoadROM(profile.SuperChip, []byte{0x60, 0x07}))
	assert.NoError(t, e.Step())
	e.SetKey(2, true)

	report := NewReport("game.sc8", e, 1000)
	assert.Equal(t, "game.sc8", report.File)
	assert.Equal(t, profile.SuperChip, report.Profile.Mode)
	assert.Equal(t, engine.Running, report.State)
	assert.Equal(t, uint64(1), report.Steps)
	assert.Equal(t, uint8(7), report.Registers.V[0])
	assert.True(t, report.Keys.Pressed(2))
	assert.Equal(t, 128, report.Frame.Width)
}

func TestGlyphsFor(t *testing.T) {
	assert.Equal(t, ASCIIGlyphs, GlyphsFor(&bytes.Buffer{}))
}
