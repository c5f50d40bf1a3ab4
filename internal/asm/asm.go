// Package asm implements the two-pass uxntal assembler: tokenize and emit
// placeholders in one left-to-right sweep over the source (and its
// includes), then resolve every pending reference once all labels are
// known.
package asm

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// immediate opcode bytes, used directly by the reference-rune handlers;
// these occupy the eight values of selector 0 the base opcode table never
// sees.
const (
	opLIT  = 0x80
	opJCI  = 0x20
	opJMI  = 0x40
	opJSI  = 0x60
	opLIT2 = 0xa0
)

// Assembler holds all mutable state for one assembly run: the output
// image, the symbol tables, and the position bookkeeping used for error
// messages. A single Assembler is not safe for concurrent use and is
// meant to be discarded after one Assemble call.
type Assembler struct {
	ptr    int
	length int
	data   [0x10000]byte

	scope  string
	source string
	line   int

	lambdaStack []string
	lambdaNext  int

	labels     []*Label
	labelIndex map[string]int
	macros     map[string]*Macro
	refs       []Reference

	// Warn receives non-fatal diagnostics (deprecated syntax, unused
	// labels), mirroring uxnasm's warnings to stdout. Defaults to
	// os.Stdout when nil.
	Warn *os.File
}

// New returns an empty Assembler ready to assemble a single file.
func New() *Assembler {
	return &Assembler{
		ptr:        0x100,
		length:     0x100,
		scope:      "on-reset",
		labelIndex: map[string]int{},
		macros:     map[string]*Macro{},
	}
}

func (a *Assembler) warn(format string, args ...any) {
	w := a.Warn
	if w == nil {
		w = os.Stdout
	}
	fmt.Fprintf(w, format, args...)
}

// Assemble reads path (and any files it includes), produces a ROM image,
// and returns it. The returned byte slice starts at address 0x0100, the
// conventional load address uxn programs begin execution from.
func Assemble(path string) ([]byte, *Assembler, error) {
	a := New()
	if err := a.assembleFile(path); err != nil {
		return nil, a, err
	}
	if err := a.resolve(); err != nil {
		return nil, a, err
	}
	return a.rom(), a, nil
}

func (a *Assembler) rom() []byte {
	if a.length <= 0x100 {
		return nil
	}
	return a.data[0x100:a.length]
}

func (a *Assembler) assembleFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return pkgerrors.Wrapf(err, "could not open %s", path)
	}
	defer f.Close()

	a.source = filepath.Base(path)
	a.line = 0
	lx := newLexer(f, &a.line)

	for {
		tok, ok, err := lx.next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := a.parseToken(tok, lx, filepath.Dir(path)); err != nil {
			return err
		}
	}
}

// writeByte appends b at the current pointer, enforcing the same
// boundaries uxnasm's writebyte does: no writes into the zero page, no
// writes past the end of memory, and no rewinding past the previous
// high-water mark (padding may move ptr backward deliberately; writing
// there afterward is the error).
func (a *Assembler) writeByte(token string, b byte) error {
	if a.ptr < 0x100 {
		return a.errf(token, "Writing in zero-page")
	}
	if a.ptr >= 0x10000 {
		return a.errf(token, "Writing outside memory")
	}
	if a.ptr < a.length {
		return a.errf(token, "Writing rewind")
	}
	a.data[a.ptr] = b
	a.ptr++
	a.length = a.ptr
	return nil
}

func (a *Assembler) writeShort(token string, v uint16, lit bool) error {
	if lit {
		if err := a.writeByte(token, opLIT2); err != nil {
			return err
		}
	}
	if err := a.writeByte(token, uint8(v>>8)); err != nil {
		return err
	}
	return a.writeByte(token, uint8(v))
}

// makePad moves the write pointer per a '$'/'|' token: '$' advances
// relative to ptr, '|' sets it absolute. The operand may be a hex literal
// or a previously-defined label's address.
func (a *Assembler) makePad(tok string) error {
	rel := tok[0] == '$'
	operand := tok[1:]

	var v int
	switch {
	case isHex(operand):
		v = int(parseHex(operand))
	default:
		lbl := a.findLabel(operand)
		if lbl == nil {
			return a.errf(tok, "Invalid padding")
		}
		v = int(lbl.Addr)
	}
	if rel {
		a.ptr += v
	} else {
		a.ptr = v
	}
	return nil
}

// parseToken dispatches a single token. dir is the directory the active
// source file lives in, used to resolve relative includes.
func (a *Assembler) parseToken(tok string, lx *lexer, dir string) error {
	if tok == "" {
		return nil
	}
	switch tok[0] {
	case '(': // comment: skip to matching close paren, honoring nesting
		return a.skipComment(lx)
	case '~': // include
		return a.assembleFile(filepath.Join(dir, tok[1:]))
	case '%': // macro definition
		return a.makeMacro(tok, tok[1:], lx)
	case '|', '$':
		return a.makePad(tok)
	case '@': // top-level label
		if err := a.makeLabel(tok, tok[1:]); err != nil {
			return err
		}
		name := tok[1:]
		if idx := strings.IndexByte(name, '/'); idx >= 0 {
			a.scope = name[:idx]
		} else {
			a.scope = name
		}
		return nil
	case '&': // sublabel
		return a.makeLabel(tok, tok)
	case ',': // relative-byte reference, literal
		if err := a.addRef(tok, tok[0], tok[1:], uint16(a.ptr+1)); err != nil {
			return err
		}
		if err := a.writeByte(tok, opLIT); err != nil {
			return err
		}
		return a.writeByte(tok, 0xff)
	case '_': // relative-byte reference, raw
		if err := a.addRef(tok, tok[0], tok[1:], uint16(a.ptr)); err != nil {
			return err
		}
		return a.writeByte(tok, 0xff)
	case '.': // zero-page reference, literal
		if err := a.addRef(tok, tok[0], tok[1:], uint16(a.ptr+1)); err != nil {
			return err
		}
		if err := a.writeByte(tok, opLIT); err != nil {
			return err
		}
		return a.writeByte(tok, 0xff)
	case '-': // zero-page reference, raw
		if err := a.addRef(tok, tok[0], tok[1:], uint16(a.ptr)); err != nil {
			return err
		}
		return a.writeByte(tok, 0xff)
	case ';': // absolute reference, literal short
		if err := a.addRef(tok, tok[0], tok[1:], uint16(a.ptr+1)); err != nil {
			return err
		}
		return a.writeShort(tok, 0xffff, true)
	case ':': // deprecated alias of '='
		a.warn("Deprecated syntax %q, use =%s\n", tok, tok[1:])
		if err := a.addRef(tok, tok[0], tok[1:], uint16(a.ptr)); err != nil {
			return err
		}
		return a.writeShort(tok, 0xffff, false)
	case '=': // absolute reference, raw short
		if err := a.addRef(tok, tok[0], tok[1:], uint16(a.ptr)); err != nil {
			return err
		}
		return a.writeShort(tok, 0xffff, false)
	case '?': // JCI
		if err := a.addRef(tok, tok[0], tok[1:], uint16(a.ptr+1)); err != nil {
			return err
		}
		if err := a.writeByte(tok, opJCI); err != nil {
			return err
		}
		return a.writeShort(tok, 0xffff, false)
	case '!': // JMI
		if err := a.addRef(tok, tok[0], tok[1:], uint16(a.ptr+1)); err != nil {
			return err
		}
		if err := a.writeByte(tok, opJMI); err != nil {
			return err
		}
		return a.writeShort(tok, 0xffff, false)
	case '#': // hex literal
		return a.hexLiteral(tok)
	case '"': // raw string, byte for byte
		for i := 1; i < len(tok); i++ {
			if err := a.writeByte(tok, tok[i]); err != nil {
				return err
			}
		}
		return nil
	case '}': // lambda close
		if len(a.lambdaStack) == 0 {
			return a.errf(tok, "Unmatched lambda close")
		}
		name := a.lambdaStack[len(a.lambdaStack)-1]
		a.lambdaStack = a.lambdaStack[:len(a.lambdaStack)-1]
		return a.makeLabel(tok, "&"+name)
	case '[', ']':
		if len(tok) == 1 {
			return nil
		}
		return a.parseDefault(tok, lx)
	default:
		return a.parseDefault(tok, lx)
	}
}

func (a *Assembler) hexLiteral(tok string) error {
	body := tok[1:]
	switch {
	case isHex(body) && len(body) == 2:
		if err := a.writeByte(tok, opLIT); err != nil {
			return err
		}
		return a.writeByte(tok, uint8(parseHex(body)))
	case isHex(body) && len(body) == 4:
		return a.writeShort(tok, uint16(parseHex(body)), true)
	default:
		return a.errf(tok, "Invalid hex literal")
	}
}

func (a *Assembler) parseDefault(tok string, lx *lexer) error {
	if tok == "BRK" {
		return a.writeByte(tok, 0x00)
	}
	if op, ok := findOpcode(tok); ok {
		return a.writeByte(tok, op)
	}
	if isHex(tok) && len(tok) == 2 {
		return a.writeByte(tok, uint8(parseHex(tok)))
	}
	if isHex(tok) && len(tok) == 4 {
		return a.writeShort(tok, uint16(parseHex(tok)), false)
	}
	if m := a.findMacro(tok); m != nil {
		for _, item := range m.Items {
			if err := a.parseToken(item, lx, ""); err != nil {
				return err
			}
		}
		return nil
	}
	// bare symbol: compiles to a subroutine call (JSI) to that label.
	if err := a.addRef(tok, ' ', tok, uint16(a.ptr+1)); err != nil {
		return err
	}
	if err := a.writeByte(tok, opJSI); err != nil {
		return err
	}
	return a.writeShort(tok, 0xffff, false)
}

// skipComment consumes tokens until the matching ')', honoring nested
// parens the way the original scans for balanced comment delimiters.
func (a *Assembler) skipComment(lx *lexer) error {
	depth := 1
	for depth > 0 {
		tok, ok, err := lx.next()
		if err != nil {
			return err
		}
		if !ok {
			return a.errf("(", "Unterminated comment")
		}
		switch tok[0] {
		case '(':
			depth++
		case ')':
			depth--
		}
	}
	return nil
}
