// Package bitfield reads and writes bit ranges inside 32-bit instruction
// words.
//
// Both directions of the codec go through this package: the decoder reads
// fields with Extract and SignExtend, the encoder ORs fields produced by Place
// into an accumulator that starts at zero.
package bitfield

import "fmt"

// Extract returns the width bits of word starting at bit offset.
func Extract(word uint32, offset, width uint) uint32 {
	checkRange(offset, width)
	return (word >> offset) & lowMask(width)
}

// SignExtend interprets the low width bits of value as a two's-complement
// number and returns it at native width.
func SignExtend(value uint32, width uint) int64 {
	checkRange(0, width)
	v := int64(value & lowMask(width))
	if v&(1<<(width-1)) != 0 {
		v -= 1 << width
	}
	return v
}

// FieldMask returns a mask with bits [hi:lo] set.
func FieldMask(hi, lo uint) uint32 {
	if hi < lo {
		panic(fmt.Sprintf("bitfield: inverted range [%d:%d]", hi, lo))
	}
	checkRange(lo, hi-lo+1)
	return lowMask(hi-lo+1) << lo
}

// Place shifts value into the field at offset, discarding any bits of value
// that do not fit in width.
func Place(value uint32, offset, width uint) uint32 {
	checkRange(offset, width)
	return (value & lowMask(width)) << offset
}

func lowMask(width uint) uint32 {
	return uint32((uint64(1) << width) - 1)
}

func checkRange(offset, width uint) {
	if width == 0 || offset+width > 32 {
		panic(fmt.Sprintf("bitfield: invalid range offset=%d width=%d", offset, width))
	}
}
