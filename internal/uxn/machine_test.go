package uxn

import "testing"

func assert(t *testing.T, cond bool, format string, args ...any) {
	t.Helper()
	if !cond {
		t.Fatalf(format, args...)
	}
}

// rom assembles a minimal bootable image: the program bytes land right at
// PageProgram, as Load does for any ROM.
func rom(bytes ...byte) []byte { return bytes }

func TestLitAdd(t *testing.T) {
	m := New()
	m.Boot(rom(
		0x80, 0x02, // LIT 02
		0x80, 0x03, // LIT 03
		0x18,       // ADD
		0x00,       // BRK
	))
	m.Eval(PageProgram)
	assert(t, m.WST.Ptr == 1, "expected 1 byte on stack, got %d", m.WST.Ptr)
	assert(t, m.WST.Dat[0] == 5, "expected 5, got %d", m.WST.Dat[0])
}

func TestLit2Add2(t *testing.T) {
	m := New()
	m.Boot(rom(
		0xa0, 0x01, 0x00, // LIT2 0100
		0xa0, 0x00, 0x02, // LIT2 0002
		0x38,             // ADD2
		0x00,
	))
	m.Eval(PageProgram)
	assert(t, m.WST.Ptr == 2, "expected 2 bytes on stack, got %d", m.WST.Ptr)
	got := uint16(m.WST.Dat[0])<<8 | uint16(m.WST.Dat[1])
	assert(t, got == 0x0102, "expected 0x0102, got 0x%04x", got)
}

func TestDivByZeroIsZero(t *testing.T) {
	m := New()
	m.Boot(rom(
		0x80, 0x05, // LIT 05
		0x80, 0x00, // LIT 00
		0x1b,       // DIV
		0x00,
	))
	m.Eval(PageProgram)
	assert(t, m.WST.Ptr == 1, "expected 1 byte on stack, got %d", m.WST.Ptr)
	assert(t, m.WST.Dat[0] == 0, "expected 0 on div-by-zero, got %d", m.WST.Dat[0])
}

func TestKeepModeLeavesOperandsInPlace(t *testing.T) {
	m := New()
	m.Boot(rom(
		0x80, 0x07, // LIT 07
		0x80, 0x09, // LIT 09
		0x98,       // ADDk (keep, byte)
		0x00,
	))
	m.Eval(PageProgram)
	assert(t, m.WST.Ptr == 3, "expected 3 bytes on stack, got %d", m.WST.Ptr)
	assert(t, m.WST.Dat[0] == 7 && m.WST.Dat[1] == 9 && m.WST.Dat[2] == 16,
		"expected [7 9 16], got %v", m.WST.Dat[:3])
}

func TestLoopWithNeqAndJCI(t *testing.T) {
	// Counts from 0 to 3, pushing each value, then halts via BRK.
	// @loop ( i -- i i+1 ) DUP INC DUP #03 NEQ ?loop, written as raw
	// opcodes; the JCI offset is relative to the byte after its operand.
	m := New()
	rel := uint16(0xfff7) // -9: back from the BRK at 0x010b to @loop at 0x0102
	m.Boot(rom(
		0x80, 0x00, // LIT 00            ( i )
		0x06,       // DUP   @loop       ( i i )
		0x01,       // INC               ( i i+1 )
		0x06,       // DUP               ( i i+1 i+1 )
		0x80, 0x03, // LIT 03            ( i i+1 i+1 3 )
		0x09,       // NEQ               ( i i+1 cond )
		0x20, uint8(rel >> 8), uint8(rel), // JCI back to @loop while i+1 != 3
		0x00, // BRK
	))
	m.Eval(PageProgram)
	assert(t, m.WST.Ptr == 4, "expected 4 bytes on stack, got %d", m.WST.Ptr)
	assert(t, m.WST.Dat[0] == 0 && m.WST.Dat[1] == 1 && m.WST.Dat[2] == 2 && m.WST.Dat[3] == 3,
		"expected [0 1 2 3], got %v", m.WST.Dat[:4])
}

func TestStackPointerWraps(t *testing.T) {
	s := &Stack{Ptr: 0}
	s.popByte(&s.Ptr)
	assert(t, s.Ptr == 0xff, "expected pointer to wrap to 0xff, got %d", s.Ptr)
}

func TestSoftRebootPreservesZeroPage(t *testing.T) {
	m := New()
	m.Boot(rom(0x00))
	m.RAM.Pages[0][0x0010] = 0x42
	m.Reboot(true)
	assert(t, m.RAM.Pages[0][0x0010] == 0x42, "soft reboot should preserve zero page")
}

func TestHardRebootClearsZeroPage(t *testing.T) {
	m := New()
	m.Boot(rom(0x00))
	m.RAM.Pages[0][0x0010] = 0x42
	m.Reboot(false)
	assert(t, m.RAM.Pages[0][0x0010] == 0, "hard reboot should clear zero page")
}
