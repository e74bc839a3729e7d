package loader

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Image is a contiguous run of instruction words starting at Base.
type Image struct {
	Base  uint64
	Words []uint32
}

// Len returns the number of words in the image.
func (img *Image) Len() int {
	return len(img.Words)
}

// Word returns the word at byte address addr. It reports false when addr is
// outside the image or not word aligned.
func (img *Image) Word(addr uint64) (uint32, bool) {
	if addr < img.Base || (addr-img.Base)%4 != 0 {
		return 0, false
	}

	i := (addr - img.Base) / 4
	if i >= uint64(len(img.Words)) {
		return 0, false
	}

	return img.Words[i], true
}

// Addr returns the byte address of the word at index i.
func (img *Image) Addr(i int) uint64 {
	return img.Base + uint64(i)*4
}

// LoadRaw reads a raw stream of words, as written by the assembler, and
// places it at base.
func LoadRaw(r io.Reader, base uint64, order binary.ByteOrder) (*Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	if len(data)%4 != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrPartialWord, len(data)%4)
	}

	return &Image{Base: base, Words: bytesToWords(data, order)}, nil
}

func bytesToWords(data []byte, order binary.ByteOrder) []uint32 {
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = order.Uint32(data[i*4:])
	}
	return words
}
