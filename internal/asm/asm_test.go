package asm

import (
	"os"
	"path/filepath"
	"testing"
)

func assert(t *testing.T, cond bool, format string, args ...any) {
	t.Helper()
	if !cond {
		t.Fatalf(format, args...)
	}
}

func assembleSource(t *testing.T, src string) []byte {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "in.tal")
	assert(t, os.WriteFile(path, []byte(src), 0o644) == nil, "could not write fixture")
	rom, _, err := Assemble(path)
	assert(t, err == nil, "unexpected assembly error: %v", err)
	return rom
}

func TestAssembleLiteralsAndOpcode(t *testing.T) {
	rom := assembleSource(t, "#01 #02 ADD")
	assert(t, len(rom) == 5, "expected 5 bytes, got %d: % x", len(rom), rom)
	assert(t, rom[0] == 0x80 && rom[1] == 0x01, "expected LIT 01")
	assert(t, rom[2] == 0x80 && rom[3] == 0x02, "expected LIT 02")
	assert(t, rom[4] == 0x18, "expected ADD opcode byte")
}

func TestAssembleShortHexLiteral(t *testing.T) {
	rom := assembleSource(t, "#1234")
	assert(t, len(rom) == 3, "expected 3 bytes, got %d", len(rom))
	assert(t, rom[0] == 0xa0 && rom[1] == 0x12 && rom[2] == 0x34, "expected LIT2 1234, got % x", rom)
}

func TestAssembleLabelAndAbsoluteReference(t *testing.T) {
	rom := assembleSource(t, "@start ;start")
	// @start defines a label at 0x100 (the first write position); ";start"
	// then writes LIT2 + the label's absolute address.
	assert(t, len(rom) == 3, "expected 3 bytes, got %d: % x", len(rom), rom)
	assert(t, rom[0] == opLIT2, "expected LIT2 opcode")
	addr := uint16(rom[1])<<8 | uint16(rom[2])
	assert(t, addr == 0x100, "expected absolute address 0x100, got 0x%04x", addr)
}

func TestAssembleSublabelScoping(t *testing.T) {
	rom := assembleSource(t, "@outer &inner ,&inner")
	assert(t, len(rom) == 2, "expected 2 bytes (LIT + rel byte), got %d: % x", len(rom), rom)
	assert(t, rom[0] == opLIT, "expected LIT opcode")
}

func TestAssembleMacroExpansion(t *testing.T) {
	rom := assembleSource(t, "%TWO { #02 } TWO")
	assert(t, len(rom) == 2, "expected 2 bytes from macro expansion, got %d: % x", len(rom), rom)
	assert(t, rom[0] == opLIT && rom[1] == 0x02, "expected LIT 02 from macro body")
}

func TestAssembleBareLambda(t *testing.T) {
	rom := assembleSource(t, "{ #02 }")
	assert(t, len(rom) == 5, "expected 5 bytes, got %d: % x", len(rom), rom)
	assert(t, rom[0] == opJSI, "expected JSI opcode, got 0x%02x", rom[0])
	off := uint16(rom[1])<<8 | uint16(rom[2])
	assert(t, off == 2, "expected JSI offset of 2 bytes past the lambda's LIT, got %d", off)
	assert(t, rom[3] == opLIT && rom[4] == 0x02, "expected LIT 02 inside the lambda body")
}

func TestAssembleRuneLambda(t *testing.T) {
	rom := assembleSource(t, ",{ BRK }")
	assert(t, len(rom) == 3, "expected 3 bytes, got %d: % x", len(rom), rom)
	assert(t, rom[0] == opLIT, "expected LIT opcode, got 0x%02x", rom[0])
	assert(t, rom[1] == 0, "expected relative offset of 0, got %d", rom[1])
	assert(t, rom[2] == 0x00, "expected BRK byte inside the lambda body")
}

func TestAssembleRelativeReferenceTooFar(t *testing.T) {
	src := "@start "
	for i := 0; i < 200; i++ {
		src += "BRK "
	}
	src += ",start"
	_, _, err := Assemble(writeFixture(t, src))
	assert(t, err != nil, "expected a Reference too far error for a 200-byte backward jump")
}

func writeFixture(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "in.tal")
	assert(t, os.WriteFile(path, []byte(src), 0o644) == nil, "could not write fixture")
	return path
}

func TestUnknownReferenceErrors(t *testing.T) {
	_, _, err := Assemble(writeFixture(t, ",nowhere"))
	assert(t, err != nil, "expected an unknown reference error")
}

func TestDuplicateLabelErrors(t *testing.T) {
	_, _, err := Assemble(writeFixture(t, "@dup @dup"))
	assert(t, err != nil, "expected a duplicate label error")
}
