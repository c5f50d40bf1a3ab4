// Package file implements the FILE device (ports 0xA0-0xAF): a single
// current file, addressed by a name string in guest RAM, read and written
// in length-prefixed chunks. Grounded on stdlib os/io rather than any
// third-party package: there is no ecosystem library for "open the file
// named by a pointer into a guest's own address space" that would do
// anything os.OpenFile/io don't already do directly.
package file

import (
	"io"
	"os"

	"github.com/bradford-hamilton/uxngo/internal/uxn"
)

// Device is the FILE device handler. Two independent FILE devices exist
// in the reference system (ports 0xa0 and 0xb0); one Device instance
// handles either, registered at the appropriate nibble.
type Device struct {
	f    *os.File
	name string
}

// New returns an unopened FILE device.
func New() *Device { return &Device{} }

// DEI returns the 16-bit result of the last read/write/stat at 0x02 (the
// success/length register); everything else reads back the stored byte.
func (d *Device) DEI(m *uxn.Machine, addr uint8) uint8 {
	return m.Dev[addr]
}

// DEO dispatches stat (0x04), delete (0x06), name (0x09), read (0x0d) and
// write (0x0f) against the relative offsets within whichever 16-byte block
// this device is mounted at. Length (0x0a-0x0b) and append-mode (0x07) are
// plain registers read by the read/write handlers.
func (d *Device) DEO(m *uxn.Machine, addr uint8) {
	base := addr &^ 0x0f
	switch addr & 0x0f {
	case 0x09:
		d.setName(m, base)
	case 0x06:
		d.delete()
	case 0x0d:
		d.readChunk(m, base)
	case 0x0f:
		d.writeChunk(m, base)
	case 0x04:
		d.stat(m, base)
	}
}

func peek2(m *uxn.Machine, addr uint8) uint16 {
	return uint16(m.Dev[addr])<<8 | uint16(m.Dev[addr+1])
}

func poke2(m *uxn.Machine, addr uint8, v uint16) {
	m.Dev[addr] = uint8(v >> 8)
	m.Dev[addr+1] = uint8(v)
}

func readCString(m *uxn.Machine, addr uint16) string {
	var buf []byte
	for {
		b := m.RAM.Pages[0][addr]
		if b == 0 {
			break
		}
		buf = append(buf, b)
		addr++
	}
	return string(buf)
}

func (d *Device) setName(m *uxn.Machine, base uint8) {
	d.close()
	d.name = readCString(m, peek2(m, base+0x08))
}

func (d *Device) delete() {
	if d.name != "" {
		os.Remove(d.name)
	}
}

func (d *Device) stat(m *uxn.Machine, base uint8) {
	info, err := os.Stat(d.name)
	dst := peek2(m, base+0x04)
	n := 0
	if err == nil {
		n = copy(m.RAM.Pages[0][dst:], []byte(info.Name()))
	}
	poke2(m, base+0x02, uint16(n))
}

func (d *Device) ensureOpen(append bool) error {
	if d.f != nil {
		return nil
	}
	flag := os.O_RDWR | os.O_CREATE
	if append {
		flag |= os.O_APPEND
	} else {
		flag |= os.O_TRUNC
	}
	f, err := os.OpenFile(d.name, flag, 0o644)
	if err != nil {
		return err
	}
	d.f = f
	return nil
}

func (d *Device) close() {
	if d.f != nil {
		d.f.Close()
		d.f = nil
	}
}

func (d *Device) readChunk(m *uxn.Machine, base uint8) {
	length := peek2(m, base+0x0a)
	dst := peek2(m, base+0x0c)
	n := 0
	if err := d.ensureOpen(true); err == nil {
		buf := make([]byte, length)
		rn, _ := io.ReadFull(d.f, buf)
		n = copy(m.RAM.Pages[0][dst:], buf[:rn])
	}
	poke2(m, base+0x02, uint16(n))
}

func (d *Device) writeChunk(m *uxn.Machine, base uint8) {
	length := peek2(m, base+0x0a)
	src := peek2(m, base+0x0e)
	appendFlag := m.Dev[base+0x07] != 0
	n := 0
	if err := d.ensureOpen(appendFlag); err == nil {
		wn, _ := d.f.Write(m.RAM.Pages[0][src : src+length])
		n = wn
	}
	poke2(m, base+0x02, uint16(n))
}
