package bitfield

// Field is a fixed bit range inside an instruction word.
type Field struct {
	Offset uint // lowest bit
	Width  uint // number of bits
}

// Bits returns the field covering [hi:lo].
func Bits(hi, lo uint) Field {
	return Field{Offset: lo, Width: hi - lo + 1}
}

// Bit returns the single-bit field at position n.
func Bit(n uint) Field {
	return Field{Offset: n, Width: 1}
}

// Hi returns the highest bit covered by the field.
func (f Field) Hi() uint {
	return f.Offset + f.Width - 1
}

// Mask returns the in-word mask of the field.
func (f Field) Mask() uint32 {
	return FieldMask(f.Hi(), f.Offset)
}

// Get reads the field as an unsigned value.
func (f Field) Get(word uint32) uint32 {
	return Extract(word, f.Offset, f.Width)
}

// GetSigned reads the field and sign-extends it.
func (f Field) GetSigned(word uint32) int64 {
	return SignExtend(Extract(word, f.Offset, f.Width), f.Width)
}

// Set reads a single-bit field as a bool.
func (f Field) Set(word uint32) bool {
	return f.Get(word) != 0
}

// Put returns value positioned in the field, ready to be ORed into a word.
func (f Field) Put(value uint32) uint32 {
	return Place(value, f.Offset, f.Width)
}

// PutBool positions a flag in the field.
func (f Field) PutBool(flag bool) uint32 {
	if flag {
		return f.Put(1)
	}
	return 0
}

// PutSigned positions the two's-complement encoding of value in the field.
func (f Field) PutSigned(value int64) uint32 {
	return f.Put(uint32(value))
}

// Fits reports whether value is representable in the field unsigned.
func (f Field) Fits(value int64) bool {
	return value >= 0 && value <= int64(lowMask(f.Width))
}

// FitsSigned reports whether value is representable in the field as a
// two's-complement number.
func (f Field) FitsSigned(value int64) bool {
	limit := int64(1) << (f.Width - 1)
	return value >= -limit && value < limit
}
