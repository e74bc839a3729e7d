package insts

// Decoder decodes machine words into instructions. It holds no state and may
// be shared between goroutines.
type Decoder struct{}

// NewDecoder creates a new instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a 32-bit instruction word. On error the returned
// Instruction is nil.
func (d *Decoder) Decode(word uint32) (Instruction, error) {
	op0 := FieldOp0.Get(word) // bits [28:25]

	switch {
	case d.isDataProcessingImm(op0):
		return d.decodeDataProcessingImm(word)
	case d.isDataProcessingReg(op0):
		return d.decodeDataProcessingReg(word), nil
	case d.isLoadStore(op0):
		return d.decodeLoadStore(word), nil
	case d.isBranch(op0):
		return d.decodeBranch(word)
	}

	return nil, &DecodeError{Word: word, Field: "op0", Value: op0, Err: ErrUnsupportedFamily}
}

// isDataProcessingImm matches op0 == 100x.
func (d *Decoder) isDataProcessingImm(op0 uint32) bool {
	return op0&0b1110 == 0b1000
}

// isDataProcessingReg matches op0 == x101.
func (d *Decoder) isDataProcessingReg(op0 uint32) bool {
	return op0&0b0111 == 0b0101
}

// isLoadStore matches op0 == x1x0.
func (d *Decoder) isLoadStore(op0 uint32) bool {
	return op0&0b0101 == 0b0100
}

// isBranch matches op0 == 101x.
func (d *Decoder) isBranch(op0 uint32) bool {
	return op0&0b1110 == 0b1010
}

// decodeDataProcessingImm decodes arithmetic immediate and wide moves.
// Format: sf | opc | 100 | opi | payload | Rd
func (d *Decoder) decodeDataProcessingImm(word uint32) (Instruction, error) {
	inst := DPI{
		Is64Bit: FieldSF.Set(word),
		Opc:     uint8(DPIOpc.Get(word)),
		Rd:      uint8(FieldRd.Get(word)),
	}

	switch opi := DPIOpi.Get(word); opi {
	case OpiArithmetic:
		// sh | imm12 | Rn
		inst.Form = DPIArithmetic{
			Shift12: DPISh.Set(word),
			Imm12:   uint16(DPIImm12.Get(word)),
			Rn:      uint8(FieldRn.Get(word)),
		}
	case OpiWideMove:
		// hw | imm16
		inst.Form = WideMove{
			HW:    uint8(DPIHw.Get(word)),
			Imm16: uint16(DPIImm16.Get(word)),
		}
	default:
		return nil, &DecodeError{Word: word, Field: "opi", Value: opi, Err: ErrUnsupportedOpi}
	}

	return inst, nil
}

// decodeDataProcessingReg decodes shifted-register arithmetic/logic and
// multiply-accumulate.
// Format: sf | opc | M | 101 | opr | Rm | operand | Rn | Rd
func (d *Decoder) decodeDataProcessingReg(word uint32) Instruction {
	inst := DPR{
		Is64Bit: FieldSF.Set(word),
		Opc:     uint8(DPROpc.Get(word)),
		Rm:      uint8(FieldRm.Get(word)),
		Rn:      uint8(FieldRn.Get(word)),
		Rd:      uint8(FieldRd.Get(word)),
	}

	if !DPRM.Set(word) {
		// opr = arith | shift | N, operand = imm6
		inst.Form = DPRArithLogic{
			Arithmetic: DPRArith.Set(word),
			Shift:      ShiftType(DPRShift.Get(word)),
			Amount:     uint8(DPROperand.Get(word)),
			Negate:     DPRN.Set(word),
		}
	} else {
		// operand = x | Ra
		inst.Form = DPRMultiply{
			Subtract: DPRX.Set(word),
			Ra:       uint8(DPRRa.Get(word)),
		}
	}

	return inst
}

// decodeLoadStore decodes single data transfers and load literal.
// Register-addressed: 1 | sf | 111 | 00 | U | 0 | L | offset | Xn | Rt
// Literal:            0 | sf | 011 | 000 | simm19 | Rt
func (d *Decoder) decodeLoadStore(word uint32) Instruction {
	inst := SDT{
		Is64Bit: SDTSF.Set(word),
		Rt:      uint8(SDTRt.Get(word)),
	}

	if !SDTMode.Set(word) {
		inst.Form = LoadLiteral{Simm19: SDTSimm19.GetSigned(word)}
		return inst
	}

	addressed := Addressed{
		Load: SDTL.Set(word),
		Xn:   uint8(SDTXn.Get(word)),
	}

	switch {
	case SDTU.Set(word):
		inst.Form = UnsignedOffset{
			Addressed: addressed,
			Imm12:     uint16(SDTImm12.Get(word)),
		}
	case SDTOffMode.Set(word):
		inst.Form = RegisterOffset{
			Addressed: addressed,
			Xm:        uint8(SDTXm.Get(word)),
		}
	default:
		inst.Form = IndexedOffset{
			Addressed: addressed,
			Simm9:     SDTSimm9.GetSigned(word),
			PreIndex:  SDTI.Set(word),
		}
	}

	return inst
}

// decodeBranch decodes B, B.cond and BR.
// B:      00 | 0101 | imm26
// B.cond: 01 | 0101 | 00 | imm19 | 0 | cond
// BR:     11 | 0101 | 1 | 0000 | 11111 | 000000 | Xn | 00000
func (d *Decoder) decodeBranch(word uint32) (Instruction, error) {
	var inst Branch

	switch typ := BType.Get(word); typ {
	case BranchUnconditional:
		inst.Form = Unconditional{Simm26: BSimm26.GetSigned(word)}
	case BranchConditional:
		inst.Form = Conditional{
			Simm19: BSimm19.GetSigned(word),
			Cond:   Cond(BCond.Get(word)),
		}
	case BranchRegisterType:
		inst.Form = BranchRegister{Xn: uint8(BXn.Get(word))}
	default:
		return nil, &DecodeError{Word: word, Field: "type", Value: typ, Err: ErrUnsupportedBranchType}
	}

	return inst, nil
}
