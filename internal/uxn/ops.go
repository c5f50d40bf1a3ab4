package uxn

// opFunc implements one base opcode, generic over its three mode bits. The
// teacher's instructions.go expanded per-opcode Go functions by hand; we
// keep that one-function-per-opcode shape but parameterize each over
// keep/return/short instead of generating 8 literal variants, per the
// spec's preference for a single generic function over macro expansion.
type opFunc func(m *Machine, keep, ret, short bool)

// baseOps is indexed by the low 5 bits of the opcode byte. Index 0 is
// never reached: all eight mode variants of selector 0 are claimed by the
// immediate opcodes (BRK/JCI/JMI/JSI/LIT/LIT2/LITr/LIT2r) before this table
// is consulted.
var baseOps = [32]opFunc{
	nil,
	opINC, opPOP, opNIP, opSWP, opROT, opDUP, opOVR,
	opEQU, opNEQ, opGTH, opLTH, opJMP, opJCN, opJSR, opSTH,
	opLDZ, opSTZ, opLDR, opSTR, opLDA, opSTA, opDEI, opDEO,
	opADD, opSUB, opMUL, opDIV, opAND, opORA, opEOR, opSFT,
}

// stacks returns (operating stack, other stack) for the return mode bit.
func (m *Machine) stacks(ret bool) (s, other *Stack) {
	if ret {
		return &m.RST, &m.WST
	}
	return &m.WST, &m.RST
}

func opINC(m *Machine, keep, ret, short bool) {
	s, _ := m.stacks(ret)
	sp := s.sp(keep)
	a := s.pop(sp, short)
	s.push(a+1, short)
}

func opPOP(m *Machine, keep, ret, short bool) {
	s, _ := m.stacks(ret)
	sp := s.sp(keep)
	s.pop(sp, short)
}

func opNIP(m *Machine, keep, ret, short bool) {
	s, _ := m.stacks(ret)
	sp := s.sp(keep)
	a := s.pop(sp, short)
	s.pop(sp, short)
	s.push(a, short)
}

func opSWP(m *Machine, keep, ret, short bool) {
	s, _ := m.stacks(ret)
	sp := s.sp(keep)
	a := s.pop(sp, short)
	b := s.pop(sp, short)
	s.push(a, short)
	s.push(b, short)
}

func opROT(m *Machine, keep, ret, short bool) {
	s, _ := m.stacks(ret)
	sp := s.sp(keep)
	a := s.pop(sp, short)
	b := s.pop(sp, short)
	c := s.pop(sp, short)
	s.push(b, short)
	s.push(a, short)
	s.push(c, short)
}

func opDUP(m *Machine, keep, ret, short bool) {
	s, _ := m.stacks(ret)
	sp := s.sp(keep)
	a := s.pop(sp, short)
	s.push(a, short)
	s.push(a, short)
}

func opOVR(m *Machine, keep, ret, short bool) {
	s, _ := m.stacks(ret)
	sp := s.sp(keep)
	a := s.pop(sp, short)
	b := s.pop(sp, short)
	s.push(b, short)
	s.push(a, short)
	s.push(b, short)
}

// Comparisons always push a single byte, regardless of mode.

func opEQU(m *Machine, keep, ret, short bool) {
	s, _ := m.stacks(ret)
	sp := s.sp(keep)
	a := s.pop(sp, short)
	b := s.pop(sp, short)
	s.pushByte(b2u(b == a))
}

func opNEQ(m *Machine, keep, ret, short bool) {
	s, _ := m.stacks(ret)
	sp := s.sp(keep)
	a := s.pop(sp, short)
	b := s.pop(sp, short)
	s.pushByte(b2u(b != a))
}

func opGTH(m *Machine, keep, ret, short bool) {
	s, _ := m.stacks(ret)
	sp := s.sp(keep)
	a := s.pop(sp, short)
	b := s.pop(sp, short)
	s.pushByte(b2u(b > a))
}

func opLTH(m *Machine, keep, ret, short bool) {
	s, _ := m.stacks(ret)
	sp := s.sp(keep)
	a := s.pop(sp, short)
	b := s.pop(sp, short)
	s.pushByte(b2u(b < a))
}

func opJMP(m *Machine, keep, ret, short bool) {
	s, _ := m.stacks(ret)
	sp := s.sp(keep)
	a := s.pop(sp, short)
	m.jump(a, short)
}

func opJCN(m *Machine, keep, ret, short bool) {
	s, _ := m.stacks(ret)
	sp := s.sp(keep)
	a := s.pop(sp, short)
	cond := s.popByte(sp)
	if cond != 0 {
		m.jump(a, short)
	}
}

// JSR pushes the return address onto the other stack, as a short,
// regardless of mode, before jumping.
func opJSR(m *Machine, keep, ret, short bool) {
	s, other := m.stacks(ret)
	sp := s.sp(keep)
	a := s.pop(sp, short)
	other.pushShort(m.PC)
	m.jump(a, short)
}

// STH moves one value from the operating stack to the other stack.
func opSTH(m *Machine, keep, ret, short bool) {
	s, other := m.stacks(ret)
	sp := s.sp(keep)
	a := s.pop(sp, short)
	other.push(a, short)
}

func opLDZ(m *Machine, keep, ret, short bool) {
	s, _ := m.stacks(ret)
	sp := s.sp(keep)
	a := s.popByte(sp)
	b := m.RAM.Peek(uint16(a), short)
	s.push(b, short)
}

func opSTZ(m *Machine, keep, ret, short bool) {
	s, _ := m.stacks(ret)
	sp := s.sp(keep)
	a := s.popByte(sp)
	b := s.pop(sp, short)
	m.RAM.Poke(uint16(a), b, short)
}

func opLDR(m *Machine, keep, ret, short bool) {
	s, _ := m.stacks(ret)
	sp := s.sp(keep)
	a := s.popByte(sp)
	addr := m.PC + uint16(int8(a))
	b := m.RAM.Peek(addr, short)
	s.push(b, short)
}

func opSTR(m *Machine, keep, ret, short bool) {
	s, _ := m.stacks(ret)
	sp := s.sp(keep)
	a := s.popByte(sp)
	b := s.pop(sp, short)
	addr := m.PC + uint16(int8(a))
	m.RAM.Poke(addr, b, short)
}

func opLDA(m *Machine, keep, ret, short bool) {
	s, _ := m.stacks(ret)
	sp := s.sp(keep)
	a := s.popShort(sp)
	b := m.RAM.Peek(a, short)
	s.push(b, short)
}

func opSTA(m *Machine, keep, ret, short bool) {
	s, _ := m.stacks(ret)
	sp := s.sp(keep)
	a := s.popShort(sp)
	b := s.pop(sp, short)
	m.RAM.Poke(a, b, short)
}

func opDEI(m *Machine, keep, ret, short bool) {
	s, _ := m.stacks(ret)
	sp := s.sp(keep)
	a := s.popByte(sp)
	var b uint16
	if short {
		b = m.dei16(a)
	} else {
		b = uint16(m.DEI(a))
	}
	s.push(b, short)
}

func opDEO(m *Machine, keep, ret, short bool) {
	s, _ := m.stacks(ret)
	sp := s.sp(keep)
	a := s.popByte(sp)
	b := s.pop(sp, short)
	if short {
		m.deo16(a, b)
	} else {
		m.DEO(a, uint8(b))
	}
}

func opADD(m *Machine, keep, ret, short bool) {
	s, _ := m.stacks(ret)
	sp := s.sp(keep)
	a := s.pop(sp, short)
	b := s.pop(sp, short)
	s.push(b+a, short)
}

func opSUB(m *Machine, keep, ret, short bool) {
	s, _ := m.stacks(ret)
	sp := s.sp(keep)
	a := s.pop(sp, short)
	b := s.pop(sp, short)
	s.push(b-a, short)
}

func opMUL(m *Machine, keep, ret, short bool) {
	s, _ := m.stacks(ret)
	sp := s.sp(keep)
	a := s.pop(sp, short)
	b := s.pop(sp, short)
	s.push(b*a, short)
}

// DIV returns 0 when the divisor is 0, by design, not as an error.
func opDIV(m *Machine, keep, ret, short bool) {
	s, _ := m.stacks(ret)
	sp := s.sp(keep)
	a := s.pop(sp, short)
	b := s.pop(sp, short)
	if a == 0 {
		s.push(0, short)
		return
	}
	s.push(b/a, short)
}

func opAND(m *Machine, keep, ret, short bool) {
	s, _ := m.stacks(ret)
	sp := s.sp(keep)
	a := s.pop(sp, short)
	b := s.pop(sp, short)
	s.push(b&a, short)
}

func opORA(m *Machine, keep, ret, short bool) {
	s, _ := m.stacks(ret)
	sp := s.sp(keep)
	a := s.pop(sp, short)
	b := s.pop(sp, short)
	s.push(b|a, short)
}

func opEOR(m *Machine, keep, ret, short bool) {
	s, _ := m.stacks(ret)
	sp := s.sp(keep)
	a := s.pop(sp, short)
	b := s.pop(sp, short)
	s.push(b^a, short)
}

// SFT takes the shift specifier as a byte regardless of mode: low nibble
// shifts right, high nibble then shifts left.
func opSFT(m *Machine, keep, ret, short bool) {
	s, _ := m.stacks(ret)
	sp := s.sp(keep)
	a := s.popByte(sp)
	b := s.pop(sp, short)
	result := (b >> (a & 0x0f)) << ((a >> 4) & 0x0f)
	s.push(result, short)
}

// jump applies a popped JMP/JCN/JSR target: absolute in short mode,
// signed-relative-to-PC in byte mode.
func (m *Machine) jump(target uint16, short bool) {
	if short {
		m.PC = target
	} else {
		m.PC += uint16(int8(uint8(target)))
	}
}

func b2u(v bool) uint8 {
	if v {
		return 1
	}
	return 0
}
