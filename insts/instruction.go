package insts

// Family identifies one of the four supported instruction families.
type Family uint8

// Instruction families.
const (
	FamilyDPI    Family = iota // Data Processing (Immediate)
	FamilyDPR                  // Data Processing (Register)
	FamilySDT                  // Single Data Transfer
	FamilyBranch               // Branch
)

func (f Family) String() string {
	switch f {
	case FamilyDPI:
		return "DPI"
	case FamilyDPR:
		return "DPR"
	case FamilySDT:
		return "SDT"
	case FamilyBranch:
		return "B"
	}
	return "unknown"
}

// Op represents an instruction mnemonic.
type Op uint16

// Opcodes.
const (
	OpUnknown Op = iota
	OpADD
	OpADDS
	OpSUB
	OpSUBS
	OpMOVN
	OpMOVZ
	OpMOVK
	OpAND
	OpBIC
	OpORR
	OpORN
	OpEOR
	OpEON
	OpANDS
	OpBICS
	OpMADD
	OpMSUB
	OpLDR
	OpSTR
	OpB
	OpBCond
	OpBR
)

var opNames = [...]string{
	OpUnknown: "unknown",
	OpADD:     "add",
	OpADDS:    "adds",
	OpSUB:     "sub",
	OpSUBS:    "subs",
	OpMOVN:    "movn",
	OpMOVZ:    "movz",
	OpMOVK:    "movk",
	OpAND:     "and",
	OpBIC:     "bic",
	OpORR:     "orr",
	OpORN:     "orn",
	OpEOR:     "eor",
	OpEON:     "eon",
	OpANDS:    "ands",
	OpBICS:    "bics",
	OpMADD:    "madd",
	OpMSUB:    "msub",
	OpLDR:     "ldr",
	OpSTR:     "str",
	OpB:       "b",
	OpBCond:   "b.cond",
	OpBR:      "br",
}

// String returns the lower-case mnemonic.
func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return opNames[OpUnknown]
}

// Arithmetic opcodes indexed by the 2-bit opc field.
var arithmeticOps = [4]Op{OpADD, OpADDS, OpSUB, OpSUBS}

// Logical opcodes indexed by opc<<1 | N.
var logicalOps = [8]Op{OpAND, OpBIC, OpORR, OpORN, OpEOR, OpEON, OpANDS, OpBICS}

// Wide move opcodes indexed by opc. opc=01 is unallocated.
var wideMoveOps = [4]Op{OpMOVN, OpUnknown, OpMOVZ, OpMOVK}

// Cond represents a branch condition code.
type Cond uint8

// Condition codes.
const (
	CondEQ Cond = 0b0000 // Equal (Z == 1)
	CondNE Cond = 0b0001 // Not Equal (Z == 0)
	CondCS Cond = 0b0010 // Carry Set
	CondCC Cond = 0b0011 // Carry Clear
	CondMI Cond = 0b0100 // Minus / Negative
	CondPL Cond = 0b0101 // Plus / Positive or zero
	CondVS Cond = 0b0110 // Overflow
	CondVC Cond = 0b0111 // No overflow
	CondHI Cond = 0b1000 // Unsigned higher
	CondLS Cond = 0b1001 // Unsigned lower or same
	CondGE Cond = 0b1010 // Signed greater than or equal (N == V)
	CondLT Cond = 0b1011 // Signed less than (N != V)
	CondGT Cond = 0b1100 // Signed greater than (Z == 0 && N == V)
	CondLE Cond = 0b1101 // Signed less than or equal (Z == 1 || N != V)
	CondAL Cond = 0b1110 // Always
	CondNV Cond = 0b1111 // Always (reserved)
)

var condNames = [16]string{
	"eq", "ne", "cs", "cc", "mi", "pl", "vs", "vc",
	"hi", "ls", "ge", "lt", "gt", "le", "al", "nv",
}

func (c Cond) String() string {
	return condNames[c&0xF]
}

// Base returns the condition with the negate bit cleared, so that eq/ne,
// ge/lt and gt/le each share a base.
func (c Cond) Base() Cond {
	return c &^ 1
}

// Negated reports whether bit 0 inverts the base condition. AL and NV carry
// no negation.
func (c Cond) Negated() bool {
	return c&1 == 1 && c.Base() != CondAL
}

// ShiftType represents a shift type for register operands.
type ShiftType uint8

// Shift types.
const (
	ShiftLSL ShiftType = 0b00 // Logical shift left
	ShiftLSR ShiftType = 0b01 // Logical shift right
	ShiftASR ShiftType = 0b10 // Arithmetic shift right
	ShiftROR ShiftType = 0b11 // Rotate right
)

var shiftNames = [4]string{"lsl", "lsr", "asr", "ror"}

func (s ShiftType) String() string {
	return shiftNames[s&0x3]
}

// Instruction is a decoded instruction of one of the four families. The
// dynamic type is one of DPI, DPR, SDT or Branch.
type Instruction interface {
	Family() Family
	Op() Op
}

// DPI is a Data Processing (Immediate) instruction.
type DPI struct {
	Is64Bit bool  // true for X registers
	Opc     uint8 // bits [30:29]
	Rd      uint8 // destination register
	Form    DPIForm
}

// DPIForm is DPIArithmetic or WideMove.
type DPIForm interface {
	isDPIForm()
}

// DPIArithmetic is ADD/ADDS/SUB/SUBS with a 12-bit immediate (opi=010).
type DPIArithmetic struct {
	Shift12 bool   // imm12 is shifted left by 12
	Imm12   uint16 // unsigned immediate
	Rn      uint8  // source register
}

// WideMove is MOVN/MOVZ/MOVK (opi=101).
type WideMove struct {
	HW    uint8  // imm16 is shifted left by HW*16
	Imm16 uint16 // 16-bit immediate
}

func (DPIArithmetic) isDPIForm() {}
func (WideMove) isDPIForm()      {}

// Family implements Instruction.
func (DPI) Family() Family { return FamilyDPI }

// Op implements Instruction.
func (i DPI) Op() Op {
	switch i.Form.(type) {
	case DPIArithmetic:
		return arithmeticOps[i.Opc&0x3]
	case WideMove:
		return wideMoveOps[i.Opc&0x3]
	}
	return OpUnknown
}

// DPR is a Data Processing (Register) instruction.
type DPR struct {
	Is64Bit bool
	Opc     uint8 // bits [30:29]
	Rm      uint8
	Rn      uint8
	Rd      uint8
	Form    DPRForm
}

// DPRForm is DPRArithLogic or DPRMultiply.
type DPRForm interface {
	isDPRForm()
}

// DPRArithLogic is an arithmetic or logical shifted-register operation (M=0).
type DPRArithLogic struct {
	Arithmetic bool      // true for ADD/SUB family, false for logical
	Shift      ShiftType // shift applied to Rm
	Amount     uint8     // 6-bit shift amount
	Negate     bool      // N bit: invert Rm (logical only)
}

// DPRMultiply is MADD/MSUB (M=1).
type DPRMultiply struct {
	Subtract bool  // x bit: MSUB when set
	Ra       uint8 // accumulator register
}

func (DPRArithLogic) isDPRForm() {}
func (DPRMultiply) isDPRForm()   {}

// Family implements Instruction.
func (DPR) Family() Family { return FamilyDPR }

// Op implements Instruction.
func (i DPR) Op() Op {
	switch f := i.Form.(type) {
	case DPRArithLogic:
		if f.Arithmetic {
			return arithmeticOps[i.Opc&0x3]
		}
		n := uint8(0)
		if f.Negate {
			n = 1
		}
		return logicalOps[(i.Opc&0x3)<<1|n]
	case DPRMultiply:
		if f.Subtract {
			return OpMSUB
		}
		return OpMADD
	}
	return OpUnknown
}

// SDT is a Single Data Transfer instruction.
type SDT struct {
	Is64Bit bool  // 64-bit access when set
	Rt      uint8 // target register
	Form    SDTForm
}

// SDTForm is UnsignedOffset, RegisterOffset, IndexedOffset or LoadLiteral.
type SDTForm interface {
	isSDTForm()
}

// Addressed holds the fields shared by the register-addressed forms.
type Addressed struct {
	Load bool  // L bit: load when set, store otherwise
	Xn   uint8 // base register
}

// UnsignedOffset addresses [Xn, #Imm12*size].
type UnsignedOffset struct {
	Addressed
	Imm12 uint16 // offset in units of the access size
}

// RegisterOffset addresses [Xn, Xm].
type RegisterOffset struct {
	Addressed
	Xm uint8
}

// IndexedOffset is the pre-index ([Xn, #simm9]!) or post-index
// ([Xn], #simm9) form.
type IndexedOffset struct {
	Addressed
	Simm9    int64 // byte offset
	PreIndex bool  // I bit
}

// LoadLiteral loads from a PC-relative address.
type LoadLiteral struct {
	Simm19 int64 // offset in words
}

func (UnsignedOffset) isSDTForm() {}
func (RegisterOffset) isSDTForm() {}
func (IndexedOffset) isSDTForm()  {}
func (LoadLiteral) isSDTForm()    {}

// Family implements Instruction.
func (SDT) Family() Family { return FamilySDT }

// Op implements Instruction.
func (i SDT) Op() Op {
	var a Addressed
	switch f := i.Form.(type) {
	case LoadLiteral:
		return OpLDR
	case UnsignedOffset:
		a = f.Addressed
	case RegisterOffset:
		a = f.Addressed
	case IndexedOffset:
		a = f.Addressed
	default:
		return OpUnknown
	}
	if a.Load {
		return OpLDR
	}
	return OpSTR
}

// Size returns the access size in bytes.
func (i SDT) Size() int {
	if i.Is64Bit {
		return 8
	}
	return 4
}

// ByteOffset returns the literal offset in bytes.
func (l LoadLiteral) ByteOffset() int64 {
	return l.Simm19 * 4
}

// Target returns the absolute byte address referenced by the literal when
// the instruction sits at position (in instructions).
func (l LoadLiteral) Target(position uint32) int64 {
	return int64(position)*4 + l.ByteOffset()
}

// Branch is a branch instruction.
type Branch struct {
	Form BranchForm
}

// BranchForm is Unconditional, Conditional or BranchRegister.
type BranchForm interface {
	isBranchForm()
}

// Unconditional is B with a 26-bit word offset.
type Unconditional struct {
	Simm26 int64
}

// Conditional is B.cond with a 19-bit word offset.
type Conditional struct {
	Simm19 int64
	Cond   Cond
}

// BranchRegister is BR Xn.
type BranchRegister struct {
	Xn uint8
}

func (Unconditional) isBranchForm()  {}
func (Conditional) isBranchForm()    {}
func (BranchRegister) isBranchForm() {}

// Family implements Instruction.
func (Branch) Family() Family { return FamilyBranch }

// Op implements Instruction.
func (i Branch) Op() Op {
	switch i.Form.(type) {
	case Unconditional:
		return OpB
	case Conditional:
		return OpBCond
	case BranchRegister:
		return OpBR
	}
	return OpUnknown
}

// ByteOffset returns the branch offset in bytes.
func (u Unconditional) ByteOffset() int64 {
	return u.Simm26 * 4
}

// Target returns the absolute destination for a branch at position.
func (u Unconditional) Target(position uint32) int64 {
	return int64(position)*4 + u.ByteOffset()
}

// ByteOffset returns the branch offset in bytes.
func (c Conditional) ByteOffset() int64 {
	return c.Simm19 * 4
}

// Target returns the absolute destination for a branch at position.
func (c Conditional) Target(position uint32) int64 {
	return int64(position)*4 + c.ByteOffset()
}
