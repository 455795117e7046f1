package cpu

import (
	"fmt"
	"sync/atomic"
)

// KeyCount is the number of keys of the hexadecimal keypad.
const KeyCount = 16

// Keys is a snapshot of the keypad, bit n is set while key n is pressed.
type Keys uint16

// Pressed returns whether the key with the low nibble of key is pressed.
func (k Keys) Pressed(key uint8) bool {
	return k&(1<<(key&0x0F)) != 0
}

// First returns the lowest pressed key.
func (k Keys) First() (uint8, bool) {
	for key := range uint8(KeyCount) {
		if k.Pressed(key) {
			return key, true
		}
	}
	return 0, false
}

// String returns the pressed keys as hexadecimal digits.
func (k Keys) String() string {
	s := ""
	for key := range uint8(KeyCount) {
		if k.Pressed(key) {
			s += fmt.Sprintf("%X", key)
		}
	}
	return s
}

// Keypad is the keypad state vector written by an input layer.
// It can be written concurrently to a running interpreter.
type Keypad struct {
	state atomic.Uint32
}

// Set changes the state of a key. Keys outside of 0-F are ignored.
func (k *Keypad) Set(key int, pressed bool) {
	if key < 0 || key >= KeyCount {
		return
	}
	bit := uint32(1) << key

	for {
		old := k.state.Load()
		updated := old &^ bit
		if pressed {
			updated |= bit
		}
		if k.state.CompareAndSwap(old, updated) {
			return
		}
	}
}

// SetAll replaces the state of all keys.
func (k *Keypad) SetAll(pressed [KeyCount]bool) {
	var state uint32
	for key, down := range pressed {
		if down {
			state |= 1 << key
		}
	}
	k.state.Store(state)
}

// Snapshot returns the current state of all keys.
func (k *Keypad) Snapshot() Keys {
	return Keys(k.state.Load())
}
