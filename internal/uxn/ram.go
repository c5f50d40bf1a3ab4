package uxn

// RAMPages is the number of 64KiB banks the expansion device can address.
const RAMPages = 16

// PageProgram is the address a ROM is loaded to, and where uxn_eval starts.
const PageProgram = 0x0100

// RAM is the banked byte-addressable memory: 16 logical pages of 64KiB
// each, forming a flat 1MiB address space. Ordinary opcodes (LDZ/STZ,
// LDR/STR, LDA/STA) only ever reach Pages[0] because their addresses are
// 16-bit; only the system device's expansion commands pick an explicit
// bank.
type RAM struct {
	Pages [RAMPages][0x10000]byte
}

// Load writes a ROM image starting at PageProgram in page 0, spilling into
// pages 1..RAMPages-1 when it doesn't fit in one page.
func (r *RAM) Load(rom []byte) {
	n := copy(r.Pages[0][PageProgram:], rom)
	rom = rom[n:]
	for page := 1; page < RAMPages && len(rom) > 0; page++ {
		n := copy(r.Pages[page][:], rom)
		rom = rom[n:]
	}
}

// Zero clears page 0. When soft is true, page 0's zero page and program
// area below 0x0100 are left alone (system_reboot's soft-reset behavior).
// Expansion banks 1..RAMPages-1 are never touched by a reboot, soft or
// hard, matching system_zero in the original.
func (r *RAM) Zero(soft bool) {
	start := 0
	if soft {
		start = PageProgram
	}
	for i := start; i < 0x10000; i++ {
		r.Pages[0][i] = 0
	}
}

// Peek reads one byte or short (big-endian) from page 0 at addr.
func (r *RAM) Peek(addr uint16, short bool) uint16 {
	if !short {
		return uint16(r.Pages[0][addr])
	}
	hi := r.Pages[0][addr]
	lo := r.Pages[0][addr+1]
	return uint16(hi)<<8 | uint16(lo)
}

// Poke writes one byte or short (big-endian) to page 0 at addr.
func (r *RAM) Poke(addr uint16, v uint16, short bool) {
	if !short {
		r.Pages[0][addr] = uint8(v)
		return
	}
	r.Pages[0][addr] = uint8(v >> 8)
	r.Pages[0][addr+1] = uint8(v)
}

// Peek16 reads a big-endian short from the given bank, wrapping within it.
func (r *RAM) Peek16(bank int, addr uint16) uint16 {
	hi := r.Pages[bank][addr]
	lo := r.Pages[bank][addr+1]
	return uint16(hi)<<8 | uint16(lo)
}
