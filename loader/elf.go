// Package loader reads AArch64 machine code for decoding, either from the
// executable segments of an ELF binary or from a raw stream of words.
package loader

import (
	"debug/elf"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/sarchlab/a64codec/translate"
)

var f = translate.From

var (
	ErrNotELF64     = errors.New(f("not a 64-bit ELF file"))
	ErrNotAArch64   = errors.New(f("not an AArch64 ELF file"))
	ErrNoText       = errors.New(f("no executable segment"))
	ErrPartialWord  = errors.New(f("image ends with a partial word"))
	ErrUnalignedELF = errors.New(f("executable segment is not word aligned"))
)

// SegmentFlags represents memory protection flags for a segment.
type SegmentFlags uint32

const (
	SegmentFlagExecute SegmentFlags = 1 << iota
	SegmentFlagWrite
	SegmentFlagRead
)

// Segment is a PT_LOAD segment of an ELF binary.
type Segment struct {
	VirtAddr uint64
	Data     []byte
	MemSize  uint64 // may exceed len(Data) for BSS
	Flags    SegmentFlags
}

// Program is a parsed AArch64 ELF binary.
type Program struct {
	EntryPoint uint64
	ByteOrder  binary.ByteOrder
	Segments   []Segment
}

// Load parses an AArch64 ELF64 binary and collects its loadable segments.
func Load(path string) (*Program, error) {
	file, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ELF file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if file.Class != elf.ELFCLASS64 {
		return nil, ErrNotELF64
	}

	if file.Machine != elf.EM_AARCH64 {
		return nil, fmt.Errorf("%w (machine type: %v)", ErrNotAArch64, file.Machine)
	}

	prog := &Program{
		EntryPoint: file.Entry,
		ByteOrder:  file.ByteOrder,
	}

	for _, phdr := range file.Progs {
		if phdr.Type != elf.PT_LOAD {
			continue
		}

		seg, err := readSegment(phdr)
		if err != nil {
			return nil, err
		}

		prog.Segments = append(prog.Segments, seg)
	}

	return prog, nil
}

func readSegment(phdr *elf.Prog) (Segment, error) {
	data := make([]byte, phdr.Filesz)
	if phdr.Filesz > 0 {
		n, err := phdr.ReadAt(data, 0)
		if err != nil && err != io.EOF {
			return Segment{}, fmt.Errorf("failed to read segment at 0x%x: %w", phdr.Vaddr, err)
		}
		if uint64(n) != phdr.Filesz {
			return Segment{}, fmt.Errorf("short read for segment at 0x%x: got %d bytes, expected %d",
				phdr.Vaddr, n, phdr.Filesz)
		}
	}

	var flags SegmentFlags
	if phdr.Flags&elf.PF_X != 0 {
		flags |= SegmentFlagExecute
	}
	if phdr.Flags&elf.PF_W != 0 {
		flags |= SegmentFlagWrite
	}
	if phdr.Flags&elf.PF_R != 0 {
		flags |= SegmentFlagRead
	}

	return Segment{
		VirtAddr: phdr.Vaddr,
		Data:     data,
		MemSize:  phdr.Memsz,
		Flags:    flags,
	}, nil
}

// TextImage returns the first executable segment as a word image in the
// binary's byte order. A trailing partial word is dropped.
func (p *Program) TextImage() (*Image, error) {
	for _, seg := range p.Segments {
		if seg.Flags&SegmentFlagExecute == 0 {
			continue
		}
		if seg.VirtAddr%4 != 0 {
			return nil, fmt.Errorf("%w: 0x%x", ErrUnalignedELF, seg.VirtAddr)
		}

		return &Image{
			Base:  seg.VirtAddr,
			Words: bytesToWords(seg.Data[:len(seg.Data)&^3], p.ByteOrder),
		}, nil
	}

	return nil, ErrNoText
}
