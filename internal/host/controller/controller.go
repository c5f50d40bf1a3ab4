// Package controller implements the CONTROLLER device (ports 0x80-0x8F):
// an 8-bit button mask plus the ASCII of the most recently pressed key.
package controller

import "github.com/bradford-hamilton/uxngo/internal/uxn"

// Button bit positions within the button register (device byte 0x82).
const (
	ButtonA = 1 << iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
)

// Device is the CONTROLLER device handler.
type Device struct{}

// New returns a CONTROLLER device.
func New() *Device { return &Device{} }

// DEI reads back whatever was last latched; CONTROLLER has no synthesized
// registers.
func (d *Device) DEI(m *uxn.Machine, addr uint8) uint8 {
	return m.Dev[addr]
}

// DEO is a no-op: every CONTROLLER port is host-to-program only.
func (d *Device) DEO(m *uxn.Machine, addr uint8) {}

// SetButton latches or clears one bit of the button register and fires the
// CONTROLLER vector.
func SetButton(m *uxn.Machine, mask uint8, pressed bool) {
	if pressed {
		m.Dev[0x82] |= mask
	} else {
		m.Dev[0x82] &^= mask
	}
	fire(m)
}

// PressKey latches the ASCII of a key press, fires the vector, and then
// zeroes the key register again (key-up has no byte value of its own in
// the reference device).
func PressKey(m *uxn.Machine, key byte) {
	m.Dev[0x83] = key
	fire(m)
	m.Dev[0x83] = 0
}

func fire(m *uxn.Machine) {
	vector := uint16(m.Dev[0x80])<<8 | uint16(m.Dev[0x81])
	m.Eval(vector)
}
