package asm

import "fmt"

// AsmError carries the same context uxnasm's error() printed: the
// offending token, the active scope, and the source position.
type AsmError struct {
	Msg, Token, Scope, Source string
	Line                      int
}

func (e *AsmError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("%s, %s:%d.", e.Msg, e.Source, e.Line)
	}
	return fmt.Sprintf("%s: %s in @%s, %s:%d.", e.Msg, e.Token, e.Scope, e.Source, e.Line)
}

func (a *Assembler) errf(token, msg string) error {
	return &AsmError{Msg: msg, Token: token, Scope: a.scope, Source: a.source, Line: a.line}
}
