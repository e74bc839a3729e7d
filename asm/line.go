package asm

import "strings"

// ParseLine splits one line of assembly source into a mnemonic and operand
// tokens. Text after "//" is a comment. Bracketed addresses stay in one
// token. ok is false for blank lines. Labels are not resolved and are
// reported as ErrMalformedOperand.
func ParseLine(line string) (mnemonic string, operands []string, ok bool, err error) {
	if i := strings.Index(line, "//"); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(strings.ReplaceAll(line, "\t", " "))
	if line == "" {
		return "", nil, false, nil
	}

	mnemonic, rest, _ := strings.Cut(line, " ")
	if strings.HasSuffix(mnemonic, ":") {
		return "", nil, false, operandError(ErrMalformedOperand, "label %q cannot be resolved", mnemonic)
	}

	return mnemonic, splitOperands(rest), true, nil
}

// splitOperands splits at commas outside brackets.
func splitOperands(s string) []string {
	var (
		ops   []string
		depth int
		start int
	)
	for i, r := range s {
		switch r {
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if depth == 0 {
				ops = appendOperand(ops, s[start:i])
				start = i + 1
			}
		}
	}
	return appendOperand(ops, s[start:])
}

func appendOperand(ops []string, op string) []string {
	if op = strings.TrimSpace(op); op != "" {
		ops = append(ops, op)
	}
	return ops
}
