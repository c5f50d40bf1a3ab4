package system

import (
	"bytes"
	"testing"

	"github.com/bradford-hamilton/uxngo/internal/uxn"
)

func assert(t *testing.T, cond bool, format string, args ...any) {
	t.Helper()
	if !cond {
		t.Fatalf(format, args...)
	}
}

func newWired() (*uxn.Machine, *Device) {
	m := uxn.New()
	d := New()
	var buf bytes.Buffer
	d.Diag = &buf
	m.Devices[0x0] = d
	return m, d
}

func TestStackPointerPeekPoke(t *testing.T) {
	m, _ := newWired()
	m.WST.Ptr = 5
	assert(t, m.DEI(0x04) == 5, "expected WST.Ptr readback of 5")

	m.DEO(0x04, 9)
	assert(t, m.WST.Ptr == 9, "expected WST.Ptr poked to 9, got %d", m.WST.Ptr)
}

func TestHaltFlagExitCode(t *testing.T) {
	m, _ := newWired()
	m.DEO(0x0f, 0x85) // halt bit + exit code 5
	assert(t, m.Halted(), "expected machine halted")
	assert(t, m.ExitCode() == 5, "expected exit code 5, got %d", m.ExitCode())
}

func TestExpansionFill(t *testing.T) {
	m, _ := newWired()
	cmdAddr := uint16(0x200)
	m.RAM.Pages[0][cmdAddr+0] = cmdFill
	m.RAM.Pages[0][cmdAddr+1] = 0x00
	m.RAM.Pages[0][cmdAddr+2] = 0x04 // length 4
	m.RAM.Pages[0][cmdAddr+3] = 0x00
	m.RAM.Pages[0][cmdAddr+4] = 0x00 // src bank 0
	m.RAM.Pages[0][cmdAddr+5] = 0x03
	m.RAM.Pages[0][cmdAddr+6] = 0x00 // src addr 0x300
	m.RAM.Pages[0][cmdAddr+7] = 0xaa // fill value

	m.Dev[0x02] = uint8(cmdAddr >> 8)
	m.Dev[0x03] = uint8(cmdAddr)
	m.DEO(0x03, 0)

	for i := uint16(0); i < 4; i++ {
		assert(t, m.RAM.Pages[0][0x300+i] == 0xaa, "expected fill byte at offset %d", i)
	}
}

func TestExpansionRejectsOutOfRangeBank(t *testing.T) {
	m, _ := newWired()
	cmdAddr := uint16(0x200)
	m.RAM.Pages[0][cmdAddr+0] = cmdFill
	m.RAM.Pages[0][cmdAddr+1] = 0x00
	m.RAM.Pages[0][cmdAddr+2] = 0x01
	m.RAM.Pages[0][cmdAddr+3] = 0xff // src bank 0xffff: out of range
	m.RAM.Pages[0][cmdAddr+4] = 0xff
	m.RAM.Pages[0][cmdAddr+5] = 0x00
	m.RAM.Pages[0][cmdAddr+6] = 0x00
	m.RAM.Pages[0][cmdAddr+7] = 0xaa

	m.Dev[0x02] = uint8(cmdAddr >> 8)
	m.Dev[0x03] = uint8(cmdAddr)

	// Should not panic despite the out-of-range bank.
	m.DEO(0x03, 0)
}

func TestExpansionCopyForward(t *testing.T) {
	m, _ := newWired()
	m.RAM.Pages[0][0x500] = 1
	m.RAM.Pages[0][0x501] = 2
	m.RAM.Pages[0][0x502] = 3

	cmdAddr := uint16(0x200)
	m.RAM.Pages[0][cmdAddr+0] = cmdCopyFwd
	m.RAM.Pages[0][cmdAddr+1] = 0x00
	m.RAM.Pages[0][cmdAddr+2] = 0x03 // length 3
	m.RAM.Pages[0][cmdAddr+3] = 0x00
	m.RAM.Pages[0][cmdAddr+4] = 0x00 // src bank 0
	m.RAM.Pages[0][cmdAddr+5] = 0x05
	m.RAM.Pages[0][cmdAddr+6] = 0x00 // src addr 0x500
	m.RAM.Pages[0][cmdAddr+7] = 0x00 // dst bank hi
	m.RAM.Pages[0][cmdAddr+8] = 0x00 // dst bank lo (bank 0)
	m.RAM.Pages[0][cmdAddr+9] = 0x06 // dst addr hi
	m.RAM.Pages[0][cmdAddr+10] = 0x00 // dst addr lo (0x600)

	m.Dev[0x02] = uint8(cmdAddr >> 8)
	m.Dev[0x03] = uint8(cmdAddr)
	m.DEO(0x03, 0)

	assert(t, m.RAM.Pages[0][0x600] == 1 && m.RAM.Pages[0][0x601] == 2 && m.RAM.Pages[0][0x602] == 3,
		"expected copied bytes at destination")
}
