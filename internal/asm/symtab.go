package asm

import "strings"

// runes is the set of leading characters that mark a token as one of the
// assembler's special forms rather than a bare opcode/symbol name.
const runes = "|$@&,_.-;=!?#\"%~"

// Label is a resolved name: either a top-level label or a scope/name
// sublabel, with the address it names.
type Label struct {
	Name string
	Addr uint16
	Refs int
}

// Macro is a named, expandable run of tokens.
type Macro struct {
	Name  string
	Items []string
}

// Reference is a pending use of a label, patched once every label in the
// program has a known address.
type Reference struct {
	Name string
	Rune byte
	Addr uint16
}

func (a *Assembler) findLabel(name string) *Label {
	if strings.HasPrefix(name, "&") {
		name = a.scope + "/" + name[1:]
	}
	if i, ok := a.labelIndex[name]; ok {
		return a.labels[i]
	}
	return nil
}

func (a *Assembler) findMacro(name string) *Macro {
	return a.macros[name]
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range []byte(s) {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}

func parseHex(s string) uint64 {
	var v uint64
	for _, c := range []byte(s) {
		v <<= 4
		switch {
		case c >= '0' && c <= '9':
			v |= uint64(c - '0')
		case c >= 'a' && c <= 'f':
			v |= uint64(c-'a') + 10
		case c >= 'A' && c <= 'F':
			v |= uint64(c-'A') + 10
		}
	}
	return v
}

// opcodeNames is indexed the same way the VM decodes the low 5 bits of an
// opcode byte, with index 0 standing in for LIT (whose own encoding always
// forces the keep bit, since plain 0x00 is BRK).
var opcodeNames = [32]string{
	"LIT", "INC", "POP", "NIP", "SWP", "ROT", "DUP", "OVR",
	"EQU", "NEQ", "GTH", "LTH", "JMP", "JCN", "JSR", "STH",
	"LDZ", "STZ", "LDR", "STR", "LDA", "STA", "DEI", "DEO",
	"ADD", "SUB", "MUL", "DIV", "AND", "ORA", "EOR", "SFT",
}

// findOpcode matches a token's first three letters against the base name
// table and folds in the 2/r/k mode-letter suffixes. LIT's index (0) always
// carries the keep bit, since the bit pattern it would otherwise occupy is
// BRK.
func findOpcode(tok string) (uint8, bool) {
	if len(tok) < 3 {
		return 0, false
	}
	base := tok[:3]
	idx := -1
	for i, name := range opcodeNames {
		if name == base {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0, false
	}
	op := uint8(idx)
	for _, c := range tok[3:] {
		switch c {
		case '2':
			op |= 0x20
		case 'r':
			op |= 0x40
		case 'k':
			op |= 0x80
		default:
			return 0, false
		}
	}
	if idx == 0 {
		op |= 0x80
	}
	return op, true
}

func isOpcode(tok string) bool {
	if tok == "BRK" {
		return true
	}
	_, ok := findOpcode(tok)
	return ok
}

const maxName = 0x3e

func isRunic(name string) bool {
	return name != "" && strings.IndexByte(runes, name[0]) >= 0
}

// makeSublabel joins the active scope to a bare sublabel name.
func (a *Assembler) makeSublabel(token, name string) (string, error) {
	full := a.scope + "/" + name
	if len(full) > maxName {
		return "", a.errf(token, "Sublabel name too long")
	}
	return full, nil
}

// makeLabel records a new label (top-level or, given a leading '&', a
// sublabel scoped to the current label) at the current write pointer.
func (a *Assembler) makeLabel(token, name string) error {
	if strings.HasPrefix(name, "&") {
		sub, err := a.makeSublabel(token, name[1:])
		if err != nil {
			return err
		}
		name = sub
	}
	if name == "" {
		return a.errf(token, "Label is empty")
	}
	if len(name) > maxName {
		return a.errf(token, "Label name too long")
	}
	if isHex(name) {
		return a.errf(token, "Label is hex number")
	}
	if isOpcode(name) {
		return a.errf(token, "Label is opcode")
	}
	if isRunic(name) {
		return a.errf(token, "Label name is runic")
	}
	if a.findLabel(name) != nil {
		return a.errf(token, "Label already defined")
	}
	lbl := &Label{Name: name, Addr: uint16(a.ptr)}
	a.labelIndex[name] = len(a.labels)
	a.labels = append(a.labels, lbl)
	return nil
}

// makeMacro defines name as the run of tokens up to the closing '}', read
// directly from the currently active lexer.
func (a *Assembler) makeMacro(token, name string, lx *lexer) error {
	if len(name) > maxName {
		return a.errf(token, "Macro name too long")
	}
	if isHex(name) {
		return a.errf(token, "Macro is hex number")
	}
	if isOpcode(name) {
		return a.errf(token, "Macro is opcode")
	}
	if isRunic(name) {
		return a.errf(token, "Macro name is runic")
	}
	if a.findMacro(name) != nil {
		return a.errf(token, "Macro already defined")
	}
	m := &Macro{Name: name}
	for {
		tok, ok, err := lx.next()
		if err != nil {
			return err
		}
		if !ok {
			return a.errf(token, "Unterminated macro")
		}
		if tok[0] == '%' {
			return a.errf(tok, "Macro error")
		}
		if tok[0] == '{' {
			continue
		}
		if tok[0] == '}' {
			break
		}
		m.Items = append(m.Items, tok)
	}
	a.macros[name] = m
	return nil
}

// makeLambda returns a fresh, scope-unique lambda leaf name: the literal
// "λ" (lambda) rune followed by a 2-hex-digit counter, e.g. "λ01".
func (a *Assembler) makeLambda() string {
	n := a.lambdaNext
	a.lambdaNext++
	return "λ" + hexByte(uint8(n))
}

func hexByte(b uint8) string {
	const digits = "0123456789abcdef"
	return string([]byte{digits[b>>4], digits[b&0xf]})
}

// addRef records a pending reference to name, to be patched by rune once
// every label is known. A name of "{" marks a lambda opened at this
// reference (",{", "?{", "!{", ";{", or a bare "{" dispatched through the
// default path with rune ' '); it is universal across every reference
// rune, not just the literal-byte form, so the lambda name is minted and
// pushed here rather than at any one call site.
func (a *Assembler) addRef(token string, rn byte, name string, addr uint16) error {
	if name == "{" {
		lam := a.makeLambda()
		a.lambdaStack = append(a.lambdaStack, lam)
		name = "&" + lam
	}
	switch {
	case strings.HasPrefix(name, "&"):
		sub, err := a.makeSublabel(token, name[1:])
		if err != nil {
			return err
		}
		name = sub
	case strings.HasPrefix(name, "/"):
		name = a.scope + name
	}
	if len(name) > maxName {
		return a.errf(token, "Reference name too long")
	}
	a.refs = append(a.refs, Reference{Name: name, Rune: rn, Addr: addr})
	return nil
}
