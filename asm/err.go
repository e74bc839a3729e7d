package asm

import (
	"errors"
	"strings"

	"github.com/sarchlab/a64codec/translate"
)

var f = translate.From

var (
	ErrUnknownMnemonic        = errors.New(f("unknown mnemonic"))
	ErrMalformedOperand       = errors.New(f("malformed operand"))
	ErrMisalignedBranchTarget = errors.New(f("misaligned branch target"))
	ErrOperandOutOfRange      = errors.New(f("operand out of range"))
)

// EncodeError reports the instruction that failed to encode.
type EncodeError struct {
	Mnemonic string
	Operands []string
	Position uint32
	Err      error
}

func (err *EncodeError) Error() string {
	return f("encode '%v %v' at %v: %v",
		err.Mnemonic, strings.Join(err.Operands, ", "), err.Position, err.Err)
}

func (err *EncodeError) Unwrap() error {
	return err.Err
}
