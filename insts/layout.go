package insts

import "github.com/sarchlab/a64codec/bitfield"

// Bit layout of the supported encodings. The encoder in package asm writes
// the same fields, so every entry here is part of the binary contract.
var (
	// FieldOp0 classifies the family: 100x DPI, x101 DPR, x1x0 SDT, 101x B.
	FieldOp0 = bitfield.Bits(28, 25)

	FieldSF = bitfield.Bit(31)
	FieldRd = bitfield.Bits(4, 0)
	FieldRn = bitfield.Bits(9, 5)
	FieldRm = bitfield.Bits(20, 16)

	// Data Processing (Immediate)
	// sf | opc | 100 | opi | ...payload... | rd
	DPIOpc   = bitfield.Bits(30, 29)
	DPIFixed = bitfield.Bits(28, 26) // 0b100
	DPIOpi   = bitfield.Bits(25, 23)
	DPISh    = bitfield.Bit(22)
	DPIImm12 = bitfield.Bits(21, 10)
	DPIHw    = bitfield.Bits(22, 21)
	DPIImm16 = bitfield.Bits(20, 5)

	// Data Processing (Register)
	// sf | opc | M | 101 | opr | rm | operand | rn | rd
	DPROpc     = bitfield.Bits(30, 29)
	DPRM       = bitfield.Bit(28)
	DPRFixed   = bitfield.Bits(27, 25) // 0b101
	DPROpr     = bitfield.Bits(24, 21)
	DPRArith   = bitfield.Bit(24)
	DPRShift   = bitfield.Bits(23, 22)
	DPRN       = bitfield.Bit(21)
	DPROperand = bitfield.Bits(15, 10)
	DPRX       = bitfield.Bit(15)
	DPRRa      = bitfield.Bits(14, 10)

	// Single Data Transfer
	// mode | sf | 1 | 1100 | U | 0 | L | offmode/offset | xn | rt
	SDTMode    = bitfield.Bit(31)
	SDTSF      = bitfield.Bit(30)
	SDTFixed   = bitfield.Bits(29, 27) // 0b111 register-addressed, 0b011 literal
	SDTU       = bitfield.Bit(24)
	SDTL       = bitfield.Bit(22)
	SDTOffMode = bitfield.Bit(21)
	SDTImm12   = bitfield.Bits(21, 10)
	SDTXm      = bitfield.Bits(20, 16)
	SDTRegOpt  = bitfield.Bits(15, 10) // 0b011010 for register offset
	SDTSimm9   = bitfield.Bits(20, 12)
	SDTI       = bitfield.Bit(11)
	SDTIndexed = bitfield.Bit(10) // always 1 for pre/post-index
	SDTXn      = bitfield.Bits(9, 5)
	SDTRt      = bitfield.Bits(4, 0)
	SDTSimm19  = bitfield.Bits(23, 5)

	// Branch
	// type | 0101 | ...
	BType     = bitfield.Bits(31, 30)
	BFixed    = bitfield.Bits(29, 26) // 0b0101
	BSimm26   = bitfield.Bits(25, 0)
	BSimm19   = bitfield.Bits(23, 5)
	BCond     = bitfield.Bits(3, 0)
	BRegFixed = bitfield.Bit(25)
	BRegOnes  = bitfield.Bits(20, 16) // 0b11111
	BXn       = bitfield.Bits(9, 5)
)

// Discriminant values.
const (
	OpiArithmetic = 0b010
	OpiWideMove   = 0b101

	DPRMultiplyOpr = 0b1000

	SDTRegisterOffsetOpt = 0b011010

	BranchUnconditional = 0b00
	BranchConditional   = 0b01
	BranchRegisterType  = 0b11
)
