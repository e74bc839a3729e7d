package asm

import (
	"errors"
	"strconv"
	"strings"

	"github.com/sarchlab/a64codec/bitfield"
	"github.com/sarchlab/a64codec/insts"
)

// maxAliasHops bounds alias rewriting. The alias table never maps to another
// alias, so one hop always reaches a canonical mnemonic.
const maxAliasHops = 1

// Arithmetic mnemonics indexed by opc.
var arithmeticOpc = map[string]uint32{
	"add":  0b00,
	"adds": 0b01,
	"sub":  0b10,
	"subs": 0b11,
}

// Logical mnemonics mapped to opc<<1 | N.
var logicalOpcN = map[string]uint32{
	"and":  0b000,
	"bic":  0b001,
	"orr":  0b010,
	"orn":  0b011,
	"eor":  0b100,
	"eon":  0b101,
	"ands": 0b110,
	"bics": 0b111,
}

var wideMoveOpc = map[string]uint32{
	"movn": 0b00,
	"movz": 0b10,
	"movk": 0b11,
}

// Condition suffixes accepted after "b.".
var condSuffixes = map[string]insts.Cond{
	"eq": insts.CondEQ,
	"ne": insts.CondNE,
	"ge": insts.CondGE,
	"lt": insts.CondLT,
	"gt": insts.CondGT,
	"le": insts.CondLE,
	"al": insts.CondAL,
}

// Encoder encodes instructions into machine words. It holds no state and may
// be shared between goroutines.
type Encoder struct{}

// NewEncoder creates a new instruction encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Encode encodes one instruction. position is the index of the instruction
// in the output stream and is only used by PC-relative forms (b, b.cond and
// ldr literal), whose targets are absolute byte addresses.
//
// On error the returned word is 0 and the error is an *EncodeError.
func (e *Encoder) Encode(mnemonic string, operands []string, position uint32) (uint32, error) {
	mnemonic = strings.ToLower(strings.TrimSpace(mnemonic))
	ops := normalizeOperands(operands)

	word, err := e.dispatch(mnemonic, ops, position, 0)
	if err != nil {
		return 0, &EncodeError{Mnemonic: mnemonic, Operands: ops, Position: position, Err: err}
	}

	return word, nil
}

func (e *Encoder) dispatch(mnemonic string, ops []string, position uint32, hops int) (uint32, error) {
	switch {
	case isDirective(mnemonic, ops):
		return e.encodeDirective(mnemonic, ops)
	case isMultiplyAccumulate(mnemonic, ops):
		return e.encodeMultiply(mnemonic, ops)
	}

	if alias, ok := aliases[mnemonic]; ok {
		if hops >= maxAliasHops {
			return 0, operandError(ErrUnknownMnemonic, "alias %v is not canonical", mnemonic)
		}
		expanded, err := alias.Expand(ops)
		if err != nil {
			return 0, err
		}
		return e.dispatch(alias.Canonical, expanded, position, hops+1)
	}

	switch {
	case isWideMove(mnemonic):
		return e.encodeWideMove(mnemonic, ops)
	case isDataProcessing(mnemonic):
		return e.encodeDataProcessing(mnemonic, ops)
	case mnemonic == "ldr" || mnemonic == "str":
		return e.encodeTransfer(mnemonic, ops, position)
	case isBranch(mnemonic):
		return e.encodeBranch(mnemonic, ops, position)
	}

	return 0, operandError(ErrUnknownMnemonic, "%q", mnemonic)
}

func isDirective(mnemonic string, ops []string) bool {
	if mnemonic == ".int" || mnemonic == "" {
		return true
	}
	if len(ops) != 0 {
		return false
	}
	return isNumber(mnemonic)
}

// isNumber reports whether tok is an integer literal, whether or not it
// fits in 64 bits.
func isNumber(tok string) bool {
	_, err := strconv.ParseInt(tok, 0, 64)
	return err == nil || errors.Is(err, strconv.ErrRange)
}

func isMultiplyAccumulate(mnemonic string, ops []string) bool {
	if mnemonic == "madd" || mnemonic == "msub" {
		return true
	}
	return len(ops) == 4 && isRegister(ops[3])
}

func isWideMove(mnemonic string) bool {
	_, ok := wideMoveOpc[mnemonic]
	return ok
}

func isDataProcessing(mnemonic string) bool {
	_, arith := arithmeticOpc[mnemonic]
	_, logic := logicalOpcN[mnemonic]
	return arith || logic
}

func isBranch(mnemonic string) bool {
	return mnemonic == "b" || mnemonic == "br" || strings.HasPrefix(mnemonic, "b.")
}

func isKnown(mnemonic string) bool {
	_, alias := aliases[mnemonic]
	return alias || isWideMove(mnemonic) || isDataProcessing(mnemonic) ||
		mnemonic == "ldr" || mnemonic == "str" || isBranch(mnemonic)
}

// encodeDirective emits a raw data word: ".int <n>", or a bare number.
func (e *Encoder) encodeDirective(mnemonic string, ops []string) (uint32, error) {
	tok := mnemonic
	if mnemonic == ".int" || mnemonic == "" {
		if len(ops) != 1 {
			return 0, operandError(ErrMalformedOperand, "directive takes one value")
		}
		tok = strings.TrimPrefix(ops[0], "#")
	}

	v, err := strconv.ParseInt(tok, 0, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, operandError(ErrMalformedOperand, "%q is not a number", tok)
	}
	if err != nil || v < -(1<<31) || v > 1<<32-1 {
		return 0, operandError(ErrOperandOutOfRange, "%q does not fit in a word", tok)
	}

	return uint32(v), nil
}

// registers parses every token as a register of the same width.
func registers(ops []string) ([]register, error) {
	regs := make([]register, len(ops))
	for i, op := range ops {
		r, err := parseRegister(op)
		if err != nil {
			return nil, err
		}
		if i > 0 && r.is64 != regs[0].is64 {
			return nil, operandError(ErrMalformedOperand, "%q does not match the width of %q", op, ops[0])
		}
		regs[i] = r
	}
	return regs, nil
}

// encodeMultiply encodes madd/msub rd, rn, rm, ra.
// Format: sf | 00 | 1 | 101 | 1000 | Rm | x | Ra | Rn | Rd
func (e *Encoder) encodeMultiply(mnemonic string, ops []string) (uint32, error) {
	if mnemonic != "madd" && mnemonic != "msub" {
		if isKnown(mnemonic) {
			return 0, operandError(ErrMalformedOperand, "%v does not take an accumulator", mnemonic)
		}
		return 0, operandError(ErrUnknownMnemonic, "%q", mnemonic)
	}
	if len(ops) != 4 {
		return 0, operandError(ErrMalformedOperand, "%v takes four registers", mnemonic)
	}

	regs, err := registers(ops)
	if err != nil {
		return 0, err
	}
	rd, rn, rm, ra := regs[0], regs[1], regs[2], regs[3]

	word := insts.FieldSF.PutBool(rd.is64) |
		insts.DPRM.PutBool(true) |
		insts.DPRFixed.Put(0b101) |
		insts.DPROpr.Put(insts.DPRMultiplyOpr) |
		insts.FieldRm.Put(uint32(rm.index)) |
		insts.DPRX.PutBool(mnemonic == "msub") |
		insts.DPRRa.Put(uint32(ra.index)) |
		insts.FieldRn.Put(uint32(rn.index)) |
		insts.FieldRd.Put(uint32(rd.index))

	return word, nil
}

// encodeWideMove encodes movn/movz/movk rd, #imm16{, lsl #shift}.
// Format: sf | opc | 100 | 101 | hw | imm16 | Rd
func (e *Encoder) encodeWideMove(mnemonic string, ops []string) (uint32, error) {
	if len(ops) != 2 && len(ops) != 4 {
		return 0, operandError(ErrMalformedOperand, "%v takes a register, an immediate and an optional shift", mnemonic)
	}

	rd, err := parseRegister(ops[0])
	if err != nil {
		return 0, err
	}

	imm, err := parseImmediate(ops[1])
	if err != nil {
		return 0, err
	}
	if !insts.DPIImm16.Fits(imm) {
		return 0, operandError(ErrOperandOutOfRange, "%v does not fit in 16 bits", ops[1])
	}

	var hw int64
	if len(ops) == 4 {
		if ops[2] != "lsl" {
			return 0, operandError(ErrMalformedOperand, "%v only shifts with lsl", mnemonic)
		}
		shift, err := parseImmediate(ops[3])
		if err != nil {
			return 0, err
		}
		if shift%16 != 0 {
			return 0, operandError(ErrMalformedOperand, "shift %v is not a multiple of 16", ops[3])
		}
		hw = shift / 16
		maxHW := int64(1)
		if rd.is64 {
			maxHW = 3
		}
		if hw < 0 || hw > maxHW {
			return 0, operandError(ErrOperandOutOfRange, "shift %v", ops[3])
		}
	}

	word := insts.FieldSF.PutBool(rd.is64) |
		insts.DPIOpc.Put(wideMoveOpc[mnemonic]) |
		insts.DPIFixed.Put(0b100) |
		insts.DPIOpi.Put(insts.OpiWideMove) |
		insts.DPIHw.Put(uint32(hw)) |
		insts.DPIImm16.Put(uint32(imm)) |
		insts.FieldRd.Put(uint32(rd.index))

	return word, nil
}

// encodeDataProcessing encodes the two/three operand arithmetic and logical
// forms: <op> rd, rn, #imm{, lsl #12} or <op> rd, rn, rm{, <shift> #amount}.
func (e *Encoder) encodeDataProcessing(mnemonic string, ops []string) (uint32, error) {
	if len(ops) != 3 && len(ops) != 5 {
		return 0, operandError(ErrMalformedOperand, "%v takes three operands and an optional shift", mnemonic)
	}

	regs, err := registers(ops[:2])
	if err != nil {
		return 0, err
	}

	if isImmediate(ops[2]) {
		return e.encodeArithmeticImm(mnemonic, ops, regs[0], regs[1])
	}

	rm, err := parseRegister(ops[2])
	if err != nil {
		return 0, err
	}
	if rm.is64 != regs[0].is64 {
		return 0, operandError(ErrMalformedOperand, "%q does not match the width of %q", ops[2], ops[0])
	}

	return e.encodeRegister(mnemonic, ops, regs[0], regs[1], rm)
}

// encodeArithmeticImm encodes add/adds/sub/subs with an immediate.
// Format: sf | opc | 100 | 010 | sh | imm12 | Rn | Rd
func (e *Encoder) encodeArithmeticImm(mnemonic string, ops []string, rd, rn register) (uint32, error) {
	opc, ok := arithmeticOpc[mnemonic]
	if !ok {
		return 0, operandError(ErrMalformedOperand, "%v has no immediate form", mnemonic)
	}

	imm, err := parseImmediate(ops[2])
	if err != nil {
		return 0, err
	}
	if !insts.DPIImm12.Fits(imm) {
		return 0, operandError(ErrOperandOutOfRange, "%v does not fit in 12 bits", ops[2])
	}

	shifted := false
	if len(ops) == 5 {
		amount, err := parseImmediate(ops[4])
		if err != nil {
			return 0, err
		}
		if ops[3] != "lsl" || amount != 12 {
			return 0, operandError(ErrMalformedOperand, "immediate shift must be lsl #12")
		}
		shifted = true
	}

	word := insts.FieldSF.PutBool(rd.is64) |
		insts.DPIOpc.Put(opc) |
		insts.DPIFixed.Put(0b100) |
		insts.DPIOpi.Put(insts.OpiArithmetic) |
		insts.DPISh.PutBool(shifted) |
		insts.DPIImm12.Put(uint32(imm)) |
		insts.FieldRn.Put(uint32(rn.index)) |
		insts.FieldRd.Put(uint32(rd.index))

	return word, nil
}

// encodeRegister encodes the shifted-register arithmetic and logical forms.
// Format: sf | opc | 0 | 101 | arith | shift | N | Rm | imm6 | Rn | Rd
func (e *Encoder) encodeRegister(mnemonic string, ops []string, rd, rn, rm register) (uint32, error) {
	shift := insts.ShiftLSL
	var amount int64
	if len(ops) == 5 {
		var err error
		if shift, err = parseShift(ops[3]); err != nil {
			return 0, err
		}
		if amount, err = parseImmediate(ops[4]); err != nil {
			return 0, err
		}
		limit := int64(31)
		if rd.is64 {
			limit = 63
		}
		if amount < 0 || amount > limit {
			return 0, operandError(ErrOperandOutOfRange, "shift amount %v", ops[4])
		}
	}

	var opc uint32
	var arith, negate bool
	if v, ok := arithmeticOpc[mnemonic]; ok {
		if shift == insts.ShiftROR {
			return 0, operandError(ErrMalformedOperand, "%v cannot rotate its operand", mnemonic)
		}
		opc, arith = v, true
	} else {
		v := logicalOpcN[mnemonic]
		opc, negate = v>>1, v&1 == 1
	}

	word := insts.FieldSF.PutBool(rd.is64) |
		insts.DPROpc.Put(opc) |
		insts.DPRFixed.Put(0b101) |
		insts.DPRArith.PutBool(arith) |
		insts.DPRShift.Put(uint32(shift)) |
		insts.DPRN.PutBool(negate) |
		insts.FieldRm.Put(uint32(rm.index)) |
		insts.DPROperand.Put(uint32(amount)) |
		insts.FieldRn.Put(uint32(rn.index)) |
		insts.FieldRd.Put(uint32(rd.index))

	return word, nil
}

// encodeTransfer encodes ldr/str in all addressing modes.
// Register-addressed: 1 | sf | 111 | 00 | U | 0 | L | offset | Xn | Rt
// Literal:            0 | sf | 011 | 000 | simm19 | Rt
func (e *Encoder) encodeTransfer(mnemonic string, ops []string, position uint32) (uint32, error) {
	if len(ops) < 2 {
		return 0, operandError(ErrMalformedOperand, "%v takes a register and an address", mnemonic)
	}

	rt, err := parseRegister(ops[0])
	if err != nil {
		return 0, err
	}
	load := mnemonic == "ldr"

	if !strings.HasPrefix(ops[1], "[") {
		if !load || len(ops) != 2 {
			return 0, operandError(ErrMalformedOperand, "%v has no literal form", mnemonic)
		}
		target, err := parseTarget(ops[1])
		if err != nil {
			return 0, err
		}
		offset, err := pcRelative(target, position, insts.SDTSimm19)
		if err != nil {
			return 0, err
		}
		word := insts.SDTSF.PutBool(rt.is64) |
			insts.SDTFixed.Put(0b011) |
			offset |
			insts.SDTRt.Put(uint32(rt.index))
		return word, nil
	}

	addr, err := parseAddress(ops[1:])
	if err != nil {
		return 0, err
	}
	xn, err := parseBaseRegister(addr.base)
	if err != nil {
		return 0, err
	}

	word := insts.SDTMode.PutBool(true) |
		insts.SDTSF.PutBool(rt.is64) |
		insts.SDTFixed.Put(0b111) |
		insts.SDTL.PutBool(load) |
		insts.SDTXn.Put(uint32(xn.index)) |
		insts.SDTRt.Put(uint32(rt.index))

	switch {
	case addr.post != "":
		if addr.offset != "" || addr.pre {
			return 0, operandError(ErrMalformedOperand, "post-index takes a bare base register")
		}
		return e.indexed(word, addr.post, false)
	case addr.pre:
		return e.indexed(word, addr.offset, true)
	case addr.offset == "":
		return word | insts.SDTU.PutBool(true), nil
	case isImmediate(addr.offset):
		return e.unsignedOffset(word, addr.offset, rt.is64)
	}

	xm, err := parseBaseRegister(addr.offset)
	if err != nil {
		return 0, err
	}
	return word |
		insts.SDTOffMode.PutBool(true) |
		insts.SDTXm.Put(uint32(xm.index)) |
		insts.SDTRegOpt.Put(insts.SDTRegisterOffsetOpt), nil
}

// unsignedOffset scales a byte offset by the access size into imm12.
func (e *Encoder) unsignedOffset(word uint32, tok string, is64 bool) (uint32, error) {
	imm, err := parseImmediate(tok)
	if err != nil {
		return 0, err
	}

	scale := int64(4)
	if is64 {
		scale = 8
	}
	if imm%scale != 0 {
		return 0, operandError(ErrMalformedOperand, "offset %v is not a multiple of %v", tok, scale)
	}
	if !insts.SDTImm12.Fits(imm / scale) {
		return 0, operandError(ErrOperandOutOfRange, "offset %v", tok)
	}

	return word | insts.SDTU.PutBool(true) | insts.SDTImm12.Put(uint32(imm/scale)), nil
}

// indexed encodes the pre/post-index forms with a signed 9-bit offset.
func (e *Encoder) indexed(word uint32, tok string, pre bool) (uint32, error) {
	imm, err := parseImmediate(tok)
	if err != nil {
		return 0, err
	}
	if !insts.SDTSimm9.FitsSigned(imm) {
		return 0, operandError(ErrOperandOutOfRange, "offset %v does not fit in 9 signed bits", tok)
	}

	return word |
		insts.SDTSimm9.PutSigned(imm) |
		insts.SDTI.PutBool(pre) |
		insts.SDTIndexed.PutBool(true), nil
}

// encodeBranch encodes b, br and b.<cond>.
// B:      00 | 0101 | imm26
// B.cond: 01 | 0101 | 00 | imm19 | 0 | cond
// BR:     11 | 0101 | 1 | 0000 | 11111 | 000000 | Xn | 00000
func (e *Encoder) encodeBranch(mnemonic string, ops []string, position uint32) (uint32, error) {
	if len(ops) != 1 {
		return 0, operandError(ErrMalformedOperand, "%v takes one operand", mnemonic)
	}

	if mnemonic == "br" {
		xn, err := parseBaseRegister(ops[0])
		if err != nil {
			return 0, err
		}
		word := insts.BType.Put(insts.BranchRegisterType) |
			insts.BFixed.Put(0b0101) |
			insts.BRegFixed.PutBool(true) |
			insts.BRegOnes.Put(0b11111) |
			insts.BXn.Put(uint32(xn.index))
		return word, nil
	}

	target, err := parseTarget(ops[0])
	if err != nil {
		return 0, err
	}

	if mnemonic == "b" {
		offset, err := pcRelative(target, position, insts.BSimm26)
		if err != nil {
			return 0, err
		}
		return insts.BType.Put(insts.BranchUnconditional) | insts.BFixed.Put(0b0101) | offset, nil
	}

	cond, ok := condSuffixes[strings.TrimPrefix(mnemonic, "b.")]
	if !ok {
		return 0, operandError(ErrUnknownMnemonic, "%q", mnemonic)
	}
	offset, err := pcRelative(target, position, insts.BSimm19)
	if err != nil {
		return 0, err
	}

	word := insts.BType.Put(insts.BranchConditional) |
		insts.BFixed.Put(0b0101) |
		offset |
		insts.BCond.Put(uint32(cond))
	return word, nil
}

// pcRelative converts an absolute target into a word offset from the
// instruction at position and places it in field. The byte distance must be
// a multiple of 4.
func pcRelative(target int64, position uint32, field bitfield.Field) (uint32, error) {
	distance := target - int64(position)*4
	if distance%4 != 0 {
		return 0, operandError(ErrMisalignedBranchTarget, "target %#x is %v bytes from %#x", target, distance, int64(position)*4)
	}

	words := distance / 4
	if !field.FitsSigned(words) {
		return 0, operandError(ErrOperandOutOfRange, "target %#x is out of reach", target)
	}

	return field.PutSigned(words), nil
}
