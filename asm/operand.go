package asm

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sarchlab/a64codec/insts"
)

const zeroRegister = 31

// register is a parsed w<N>/x<N>/wzr/xzr/sp token.
type register struct {
	index uint8
	is64  bool
}

func (r register) zero() string {
	if r.is64 {
		return "xzr"
	}
	return "wzr"
}

func operandError(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %v", kind, f(format, args...))
}

// normalizeOperands lower-cases the tokens, drops separators and splits a
// combined shift token such as "lsl #12" in two.
func normalizeOperands(operands []string) []string {
	ops := make([]string, 0, len(operands)+1)
	for _, op := range operands {
		op = strings.ToLower(strings.TrimSpace(op))
		op = strings.TrimSpace(strings.TrimSuffix(op, ","))
		if op == "" {
			continue
		}
		if fields := strings.Fields(op); len(fields) == 2 && isShift(fields[0]) {
			ops = append(ops, fields[0], fields[1])
			continue
		}
		ops = append(ops, op)
	}
	return ops
}

func parseRegister(tok string) (register, error) {
	switch tok {
	case "wzr":
		return register{index: zeroRegister}, nil
	case "xzr":
		return register{index: zeroRegister, is64: true}, nil
	}

	if len(tok) < 2 || (tok[0] != 'w' && tok[0] != 'x') {
		return register{}, operandError(ErrMalformedOperand, "%q is not a register", tok)
	}

	n, err := strconv.ParseUint(tok[1:], 10, 8)
	if err != nil {
		return register{}, operandError(ErrMalformedOperand, "%q is not a register", tok)
	}
	if n > zeroRegister {
		return register{}, operandError(ErrOperandOutOfRange, "register %q", tok)
	}

	return register{index: uint8(n), is64: tok[0] == 'x'}, nil
}

// parseBaseRegister accepts a 64-bit register or sp.
func parseBaseRegister(tok string) (register, error) {
	if tok == "sp" {
		return register{index: zeroRegister, is64: true}, nil
	}
	r, err := parseRegister(tok)
	if err != nil {
		return r, err
	}
	if !r.is64 {
		return r, operandError(ErrMalformedOperand, "address register %q must be 64-bit", tok)
	}
	return r, nil
}

func isRegister(tok string) bool {
	_, err := parseRegister(tok)
	return err == nil
}

func isImmediate(tok string) bool {
	return strings.HasPrefix(tok, "#")
}

func parseImmediate(tok string) (int64, error) {
	if !isImmediate(tok) {
		return 0, operandError(ErrMalformedOperand, "%q is not an immediate", tok)
	}
	v, err := strconv.ParseInt(tok[1:], 0, 64)
	if err != nil {
		return 0, operandError(ErrMalformedOperand, "%q is not an immediate", tok)
	}
	return v, nil
}

// parseTarget reads a resolved absolute byte address; the # is optional.
func parseTarget(tok string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimPrefix(tok, "#"), 0, 64)
	if err != nil {
		return 0, operandError(ErrMalformedOperand, "%q is not a resolved address", tok)
	}
	return v, nil
}

var shiftTypes = map[string]insts.ShiftType{
	"lsl": insts.ShiftLSL,
	"lsr": insts.ShiftLSR,
	"asr": insts.ShiftASR,
	"ror": insts.ShiftROR,
}

func isShift(tok string) bool {
	_, ok := shiftTypes[tok]
	return ok
}

func parseShift(tok string) (insts.ShiftType, error) {
	s, ok := shiftTypes[tok]
	if !ok {
		return 0, operandError(ErrMalformedOperand, "%q is not a shift", tok)
	}
	return s, nil
}

// address is a parsed memory operand.
type address struct {
	base   string // register inside the brackets
	offset string // second component inside the brackets, if any
	pre    bool   // trailing !
	post   string // immediate after the brackets, if any
}

var addressPattern = regexp.MustCompile(
	`^\[\s*([a-z0-9]+)\s*(?:,\s*([^\]]*?)\s*)?\](!?)\s*(?:,\s*(\S+))?$`)

// parseAddress parses "[xN]", "[xN, #imm]", "[xN, xM]", "[xN, #imm]!" and
// "[xN], #imm" from tokens that may have been split at commas.
func parseAddress(tokens []string) (address, error) {
	text := strings.Join(tokens, ", ")
	m := addressPattern.FindStringSubmatch(text)
	if m == nil {
		return address{}, operandError(ErrMalformedOperand, "%q is not an address", text)
	}
	return address{base: m[1], offset: m[2], pre: m[3] == "!", post: m[4]}, nil
}
