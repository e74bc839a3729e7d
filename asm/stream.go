package asm

import (
	"encoding/binary"
	"io"
)

// Stream assembles instructions in order. Each instruction is encoded at the
// position equal to the number of words emitted before it.
type Stream struct {
	encoder *Encoder
	words   []uint32
}

// NewStream creates an empty stream that encodes with encoder.
func NewStream(encoder *Encoder) *Stream {
	return &Stream{encoder: encoder}
}

// Emit encodes one instruction at the current position and appends it. A
// failed instruction is not appended, so the position does not advance.
func (s *Stream) Emit(mnemonic string, operands ...string) (uint32, error) {
	word, err := s.encoder.Encode(mnemonic, operands, s.Position())
	if err != nil {
		return 0, err
	}

	s.words = append(s.words, word)

	return word, nil
}

// Position returns the position the next instruction will be encoded at.
func (s *Stream) Position() uint32 {
	return uint32(len(s.words))
}

// Len returns the number of emitted words.
func (s *Stream) Len() int {
	return len(s.words)
}

// Words returns a copy of the emitted words.
func (s *Stream) Words() []uint32 {
	return append([]uint32(nil), s.words...)
}

// WriteWords writes the emitted words to w in the given byte order.
func (s *Stream) WriteWords(w io.Writer, order binary.ByteOrder) error {
	return binary.Write(w, order, s.words)
}
