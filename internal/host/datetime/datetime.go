// Package datetime implements the DATETIME device (ports 0xC0-0xCF): a
// snapshot of the host clock, read on demand rather than pushed. Grounded
// on stdlib time: no third-party package in the pack touches wall-clock
// time, and time.Now/time.Time cover the whole device.
package datetime

import (
	"time"

	"github.com/bradford-hamilton/uxngo/internal/uxn"
)

// Device is the DATETIME device handler.
type Device struct {
	// Now is called to obtain the current time; overridable for tests.
	Now func() time.Time
}

// New returns a DATETIME device backed by the real system clock.
func New() *Device {
	return &Device{Now: time.Now}
}

// DEI fills in the addressed field of a live snapshot of Now() taken at
// the start of the read.
func (d *Device) DEI(m *uxn.Machine, addr uint8) uint8 {
	t := d.Now()
	switch addr & 0x0f {
	case 0x00:
		return uint8(t.Year() >> 8)
	case 0x01:
		return uint8(t.Year())
	case 0x02:
		return uint8(t.Month() - 1)
	case 0x03:
		return uint8(t.Day())
	case 0x04:
		return uint8(t.Hour())
	case 0x05:
		return uint8(t.Minute())
	case 0x06:
		return uint8(t.Second())
	case 0x07:
		return uint8(t.Weekday())
	case 0x08:
		return uint8(t.YearDay() >> 8)
	case 0x09:
		return uint8(t.YearDay())
	case 0x0a:
		return 0 // host DST flag: not exposed by time.Time, always reports standard time
	default:
		return m.Dev[addr]
	}
}

// DEO is a no-op: every DATETIME port is read-only.
func (d *Device) DEO(m *uxn.Machine, addr uint8) {}
