package insts

import (
	"errors"
	"fmt"

	"github.com/sarchlab/a64codec/translate"
)

var f = translate.From

var (
	// ErrUnsupportedFamily means bits [28:25] match none of the families.
	ErrUnsupportedFamily = errors.New(f("unsupported family"))
	// ErrUnsupportedSubVariant means a per-family discriminant has a value
	// outside the subset.
	ErrUnsupportedSubVariant = errors.New(f("unsupported sub-variant"))

	ErrUnsupportedOpi        = fmt.Errorf("%w: %v", ErrUnsupportedSubVariant, f("opi"))
	ErrUnsupportedBranchType = fmt.Errorf("%w: %v", ErrUnsupportedSubVariant, f("branch type"))
)

// DecodeError reports the field whose observed value stopped decoding.
type DecodeError struct {
	Word  uint32
	Field string
	Value uint32
	Err   error
}

func (err *DecodeError) Error() string {
	return f("decode 0x%08x: %v (%v=%#b)", err.Word, err.Err, err.Field, err.Value)
}

func (err *DecodeError) Unwrap() error {
	return err.Err
}
