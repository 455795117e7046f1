// Package terminal feeds keyboard input of a raw mode terminal into the
// hexadecimal keypad.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/retroenv/retrogolib/log"
	"golang.org/x/term"
)

// ErrNotTerminal is returned when raw mode is requested for a file that is not a terminal.
var ErrNotTerminal = errors.New("not a terminal")

// DefaultHoldTime is how long a key counts as pressed after its last byte
// was received. Terminals do not report key releases, auto repeat keeps a
// held key pressed.
const DefaultHoldTime = 150 * time.Millisecond

const (
	ctrlC  = 0x03
	escape = 0x1B
)

// escape sequence states, cursor and function keys send ESC [ ... or ESC O ...
const (
	escapeNone = iota
	escapeStart
	escapeSequence
)

// keyMap maps the left side of a QWERTY keyboard to the keypad layout:
//
//	1 2 3 4    1 2 3 C
//	q w e r    4 5 6 D
//	a s d f    7 8 9 E
//	z x c v    A 0 B F
var keyMap = map[byte]int{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}

// KeySetter is the keypad that keys are written to.
type KeySetter interface {
	SetKey(key int, pressed bool)
}

// Keyboard translates terminal input bytes into key presses and releases.
type Keyboard struct {
	logger   *log.Logger
	keys     KeySetter
	holdTime time.Duration

	escapeState int

	mu       sync.Mutex
	releases map[int]time.Time // release deadline of pressed keys
}

// NewKeyboard returns a keyboard that writes to the given keypad.
func NewKeyboard(logger *log.Logger, keys KeySetter, holdTime time.Duration) *Keyboard {
	if holdTime <= 0 {
		holdTime = DefaultHoldTime
	}
	return &Keyboard{
		logger:   logger,
		keys:     keys,
		holdTime: holdTime,
		releases: map[int]time.Time{},
	}
}

// KeyForByte returns the keypad key of an input byte.
func KeyForByte(b byte) (int, bool) {
	if b >= 'A' && b <= 'Z' {
		b += 'a' - 'A'
	}
	key, ok := keyMap[b]
	return key, ok
}

type inputEvent struct {
	b   byte
	err error
}

// Run reads input until the context is cancelled or the reader fails.
// Ctrl+C calls stop, raw mode terminals do not send signals.
func (k *Keyboard) Run(ctx context.Context, reader io.Reader, stop func()) error {
	input := make(chan inputEvent, 16)
	done := make(chan struct{})
	defer close(done)
	defer interruptRead(reader)
	go readInput(reader, input, done)

	ticker := time.NewTicker(k.holdTime / 4)
	defer ticker.Stop()
	defer k.releaseAll()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event := <-input:
			if event.err != nil {
				if errors.Is(event.err, io.EOF) {
					return nil
				}
				return fmt.Errorf("reading input: %w", event.err)
			}
			if k.handle(event.b, time.Now()) {
				stop()
			}

		case now := <-ticker.C:
			k.Release(now)
		}
	}
}

// handle processes an input byte and returns whether the run should stop.
// Bytes of escape sequences are dropped so that cursor keys do not press
// the keys of their final letters.
func (k *Keyboard) handle(b byte, now time.Time) bool {
	switch k.escapeState {
	case escapeStart:
		if b == '[' || b == 'O' {
			k.escapeState = escapeSequence
			return false
		}
		k.escapeState = escapeNone

	case escapeSequence:
		if b >= 0x40 && b <= 0x7E {
			k.escapeState = escapeNone
		}
		return false
	}

	switch b {
	case ctrlC:
		return true
	case escape:
		k.escapeState = escapeStart
	default:
		k.Press(b, now)
	}
	return false
}

// interruptRead unblocks a pending read of readers that support deadlines.
// Other readers, like a terminal on stdin, keep the reading goroutine blocked
// until the next byte arrives or the process exits.
func interruptRead(reader io.Reader) {
	if r, ok := reader.(interface{ SetReadDeadline(time.Time) error }); ok {
		_ = r.SetReadDeadline(time.Now())
	}
}

func readInput(reader io.Reader, input chan<- inputEvent, done <-chan struct{}) {
	buf := make([]byte, 1)
	for {
		n, err := reader.Read(buf)
		if n > 0 {
			select {
			case input <- inputEvent{b: buf[0]}:
			case <-done:
				return
			}
		}
		if err != nil {
			select {
			case input <- inputEvent{err: err}:
			case <-done:
			}
			return
		}
	}
}

// Press presses the key of an input byte, unknown bytes are ignored.
func (k *Keyboard) Press(b byte, now time.Time) {
	key, ok := KeyForByte(b)
	if !ok {
		return
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	if _, pressed := k.releases[key]; !pressed {
		k.logger.Debug("Key pressed", log.Hex("key", key))
	}
	k.releases[key] = now.Add(k.holdTime)
	k.keys.SetKey(key, true)
}

// Release releases all keys whose hold time has passed.
func (k *Keyboard) Release(now time.Time) {
	k.mu.Lock()
	defer k.mu.Unlock()
	for key, deadline := range k.releases {
		if now.Before(deadline) {
			continue
		}
		delete(k.releases, key)
		k.keys.SetKey(key, false)
	}
}

func (k *Keyboard) releaseAll() {
	k.mu.Lock()
	defer k.mu.Unlock()
	for key := range k.releases {
		delete(k.releases, key)
		k.keys.SetKey(key, false)
	}
}

// MakeRaw puts the terminal of the file descriptor into raw mode and returns
// a function that restores the previous state.
func MakeRaw(fd int) (func(), error) {
	if !term.IsTerminal(fd) {
		return nil, ErrNotTerminal
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("setting raw mode: %w", err)
	}
	return func() {
		_ = term.Restore(fd, oldState)
	}, nil
}
