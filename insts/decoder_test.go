package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/a64codec/insts"
)

var _ = Describe("Decoder", func() {
	var decoder *insts.Decoder

	BeforeEach(func() {
		decoder = insts.NewDecoder()
	})

	decode := func(word uint32) insts.Instruction {
		inst, err := decoder.Decode(word)
		ExpectWithOffset(1, err).NotTo(HaveOccurred())
		return inst
	}

	Describe("Data Processing (Immediate) - Wide Move", func() {
		// MOVZ W0, #5        -> 0x528000A0
		// Encoding: sf=0, opc=10, 100, opi=101, hw=00, imm16=5, Rd=0
		It("should decode MOVZ W0, #5", func() {
			inst := decode(0x528000A0)

			Expect(inst.Family()).To(Equal(insts.FamilyDPI))
			Expect(inst.Op()).To(Equal(insts.OpMOVZ))
			dpi := inst.(insts.DPI)
			Expect(dpi.Is64Bit).To(BeFalse())
			Expect(dpi.Rd).To(Equal(uint8(0)))
			Expect(dpi.Form).To(Equal(insts.WideMove{HW: 0, Imm16: 5}))
		})

		// MOVZ X0, #42       -> 0xD2800540
		It("should decode MOVZ X0, #42", func() {
			inst := decode(0xD2800540)

			dpi := inst.(insts.DPI)
			Expect(dpi.Is64Bit).To(BeTrue())
			Expect(dpi.Form).To(Equal(insts.WideMove{Imm16: 42}))
		})

		// MOVK X1, #0x1234, LSL #16 -> 0xF2A24681
		// Encoding: sf=1, opc=11, 100, opi=101, hw=01, imm16=0x1234, Rd=1
		It("should decode MOVK X1, #0x1234, LSL #16", func() {
			inst := decode(0xF2A24681)

			Expect(inst.Op()).To(Equal(insts.OpMOVK))
			dpi := inst.(insts.DPI)
			Expect(dpi.Rd).To(Equal(uint8(1)))
			Expect(dpi.Form).To(Equal(insts.WideMove{HW: 1, Imm16: 0x1234}))
		})

		// MOVN W3, #0        -> 0x12800003
		It("should decode MOVN W3, #0", func() {
			inst := decode(0x12800003)

			Expect(inst.Op()).To(Equal(insts.OpMOVN))
			Expect(inst.(insts.DPI).Rd).To(Equal(uint8(3)))
		})
	})

	Describe("Data Processing (Immediate) - Arithmetic", func() {
		// ADD X0, X1, #42    -> 0x9100A820
		// Encoding: sf=1, opc=00, 100, opi=010, sh=0, imm12=42, Rn=1, Rd=0
		It("should decode ADD X0, X1, #42", func() {
			inst := decode(0x9100A820)

			Expect(inst.Op()).To(Equal(insts.OpADD))
			dpi := inst.(insts.DPI)
			Expect(dpi.Is64Bit).To(BeTrue())
			Expect(dpi.Rd).To(Equal(uint8(0)))
			Expect(dpi.Form).To(Equal(insts.DPIArithmetic{Imm12: 42, Rn: 1}))
		})

		// ADD X0, X1, #1, LSL #12 -> 0x91400420
		It("should decode ADD X0, X1, #1, LSL #12", func() {
			inst := decode(0x91400420)

			Expect(inst.(insts.DPI).Form).To(Equal(insts.DPIArithmetic{Shift12: true, Imm12: 1, Rn: 1}))
		})

		// SUBS X9, X10, #5   -> 0xF1001549
		It("should decode SUBS X9, X10, #5", func() {
			inst := decode(0xF1001549)

			Expect(inst.Op()).To(Equal(insts.OpSUBS))
			dpi := inst.(insts.DPI)
			Expect(dpi.Opc).To(Equal(uint8(0b11)))
			Expect(dpi.Rd).To(Equal(uint8(9)))
			Expect(dpi.Form).To(Equal(insts.DPIArithmetic{Imm12: 5, Rn: 10}))
		})

		// ADR X0, #0         -> 0x10000000 (op0=1000, opi=000)
		It("should reject an unsupported opi", func() {
			inst, err := decoder.Decode(0x10000000)

			Expect(inst).To(BeNil())
			Expect(err).To(MatchError(insts.ErrUnsupportedOpi))
			Expect(err).To(MatchError(insts.ErrUnsupportedSubVariant))

			var decodeErr *insts.DecodeError
			Expect(err).To(BeAssignableToTypeOf(decodeErr))
			decodeErr = err.(*insts.DecodeError)
			Expect(decodeErr.Field).To(Equal("opi"))
			Expect(decodeErr.Value).To(Equal(uint32(0)))
		})
	})

	Describe("Data Processing (Register) - Arithmetic and Logical", func() {
		// ADD X0, X1, X2     -> 0x8B020020
		// Encoding: sf=1, opc=00, M=0, 101, opr=1000, Rm=2, imm6=0, Rn=1, Rd=0
		It("should decode ADD X0, X1, X2", func() {
			inst := decode(0x8B020020)

			Expect(inst.Family()).To(Equal(insts.FamilyDPR))
			Expect(inst.Op()).To(Equal(insts.OpADD))
			dpr := inst.(insts.DPR)
			Expect(dpr.Is64Bit).To(BeTrue())
			Expect(dpr.Rd).To(Equal(uint8(0)))
			Expect(dpr.Rn).To(Equal(uint8(1)))
			Expect(dpr.Rm).To(Equal(uint8(2)))
			Expect(dpr.Form).To(Equal(insts.DPRArithLogic{Arithmetic: true}))
		})

		// ADD W0, W1, W2, LSL #3 -> 0x0B020C20
		It("should decode a shift amount", func() {
			inst := decode(0x0B020C20)

			dpr := inst.(insts.DPR)
			Expect(dpr.Is64Bit).To(BeFalse())
			Expect(dpr.Form).To(Equal(insts.DPRArithLogic{
				Arithmetic: true,
				Shift:      insts.ShiftLSL,
				Amount:     3,
			}))
		})

		// EOR X15, X16, X17  -> 0xCA11020F
		It("should decode EOR X15, X16, X17", func() {
			inst := decode(0xCA11020F)

			Expect(inst.Op()).To(Equal(insts.OpEOR))
			dpr := inst.(insts.DPR)
			Expect(dpr.Rd).To(Equal(uint8(15)))
			Expect(dpr.Rn).To(Equal(uint8(16)))
			Expect(dpr.Rm).To(Equal(uint8(17)))
		})

		// BIC X0, X1, X2     -> 0x8A220020 (N=1)
		It("should decode BIC through the negate flag", func() {
			inst := decode(0x8A220020)

			Expect(inst.Op()).To(Equal(insts.OpBIC))
			Expect(inst.(insts.DPR).Form).To(Equal(insts.DPRArithLogic{Negate: true}))
		})

		// ORN W0, WZR, W1    -> 0x2A2103E0
		It("should decode ORN W0, WZR, W1", func() {
			inst := decode(0x2A2103E0)

			Expect(inst.Op()).To(Equal(insts.OpORN))
			Expect(inst.(insts.DPR).Rn).To(Equal(uint8(31)))
		})

		// ANDS X0, X1, X2, ASR #4 -> 0xEA821020
		It("should decode ANDS with an arithmetic shift", func() {
			inst := decode(0xEA821020)

			Expect(inst.Op()).To(Equal(insts.OpANDS))
			Expect(inst.(insts.DPR).Form).To(Equal(insts.DPRArithLogic{
				Shift:  insts.ShiftASR,
				Amount: 4,
			}))
		})
	})

	Describe("Data Processing (Register) - Multiply", func() {
		// MADD X0, X1, X2, X3 -> 0x9B020C20
		// Encoding: sf=1, 00, M=1, 101, opr=1000, Rm=2, x=0, Ra=3, Rn=1, Rd=0
		It("should decode MADD X0, X1, X2, X3", func() {
			inst := decode(0x9B020C20)

			Expect(inst.Op()).To(Equal(insts.OpMADD))
			dpr := inst.(insts.DPR)
			Expect(dpr.Rm).To(Equal(uint8(2)))
			Expect(dpr.Rn).To(Equal(uint8(1)))
			Expect(dpr.Form).To(Equal(insts.DPRMultiply{Ra: 3}))
		})

		// MSUB W0, W1, W2, WZR -> 0x1B02FC20
		It("should decode MSUB W0, W1, W2, WZR", func() {
			inst := decode(0x1B02FC20)

			Expect(inst.Op()).To(Equal(insts.OpMSUB))
			Expect(inst.(insts.DPR).Form).To(Equal(insts.DPRMultiply{Subtract: true, Ra: 31}))
		})
	})

	Describe("Single Data Transfer", func() {
		// LDR X0, [X1, #8]   -> 0xF9400420
		// Encoding: 1, sf=1, 111, 00, U=1, 0, L=1, imm12=1, Xn=1, Rt=0
		It("should decode LDR X0, [X1, #8]", func() {
			inst := decode(0xF9400420)

			Expect(inst.Family()).To(Equal(insts.FamilySDT))
			Expect(inst.Op()).To(Equal(insts.OpLDR))
			sdt := inst.(insts.SDT)
			Expect(sdt.Is64Bit).To(BeTrue())
			Expect(sdt.Size()).To(Equal(8))
			Expect(sdt.Form).To(Equal(insts.UnsignedOffset{
				Addressed: insts.Addressed{Load: true, Xn: 1},
				Imm12:     1,
			}))
		})

		// STR W2, [X3]       -> 0xB9000062
		It("should decode STR W2, [X3]", func() {
			inst := decode(0xB9000062)

			Expect(inst.Op()).To(Equal(insts.OpSTR))
			sdt := inst.(insts.SDT)
			Expect(sdt.Rt).To(Equal(uint8(2)))
			Expect(sdt.Size()).To(Equal(4))
			Expect(sdt.Form).To(Equal(insts.UnsignedOffset{Addressed: insts.Addressed{Xn: 3}}))
		})

		// LDR X0, [X1, X2]   -> 0xF8626820
		It("should decode a register offset", func() {
			inst := decode(0xF8626820)

			Expect(inst.(insts.SDT).Form).To(Equal(insts.RegisterOffset{
				Addressed: insts.Addressed{Load: true, Xn: 1},
				Xm:        2,
			}))
		})

		// LDR X0, [X1, #-8]! -> 0xF85F8C20
		It("should decode a pre-index with a negative offset", func() {
			inst := decode(0xF85F8C20)

			Expect(inst.(insts.SDT).Form).To(Equal(insts.IndexedOffset{
				Addressed: insts.Addressed{Load: true, Xn: 1},
				Simm9:     -8,
				PreIndex:  true,
			}))
		})

		// STR X0, [X1], #16  -> 0xF8010420
		It("should decode a post-index", func() {
			inst := decode(0xF8010420)

			Expect(inst.Op()).To(Equal(insts.OpSTR))
			Expect(inst.(insts.SDT).Form).To(Equal(insts.IndexedOffset{
				Addressed: insts.Addressed{Xn: 1},
				Simm9:     16,
			}))
		})

		DescribeTable("simm9 sign extension at the boundaries",
			func(word uint32, expected int64) {
				inst := decode(word)
				Expect(inst.(insts.SDT).Form.(insts.IndexedOffset).Simm9).To(Equal(expected))
			},
			// LDR X0, [X0], #-256
			Entry("minimum", uint32(0xF8500400), int64(-256)),
			// LDR X0, [X0], #255
			Entry("maximum", uint32(0xF84FF400), int64(255)),
		)

		// LDR W1, #8 (relative) -> 0x18000041
		It("should decode a load literal", func() {
			inst := decode(0x18000041)

			sdt := inst.(insts.SDT)
			Expect(inst.Op()).To(Equal(insts.OpLDR))
			Expect(sdt.Is64Bit).To(BeFalse())
			Expect(sdt.Rt).To(Equal(uint8(1)))
			Expect(sdt.Form).To(Equal(insts.LoadLiteral{Simm19: 2}))
		})

		DescribeTable("simm19 sign extension at the boundaries",
			func(word uint32, expected int64) {
				inst := decode(word)
				Expect(inst.(insts.SDT).Form.(insts.LoadLiteral).Simm19).To(Equal(expected))
			},
			Entry("minus one", uint32(0x58FFFFE0), int64(-1)),
			Entry("minimum", uint32(0x58800000), int64(-262144)),
			Entry("maximum", uint32(0x587FFFE0), int64(262143)),
		)
	})

	Describe("Branch Instructions", func() {
		// B #0x100           -> 0x14000040
		It("should decode B #0x100", func() {
			inst := decode(0x14000040)

			Expect(inst.Family()).To(Equal(insts.FamilyBranch))
			Expect(inst.Op()).To(Equal(insts.OpB))
			b := inst.(insts.Branch).Form.(insts.Unconditional)
			Expect(b.Simm26).To(Equal(int64(0x40)))
			Expect(b.ByteOffset()).To(Equal(int64(0x100)))
		})

		DescribeTable("simm26 sign extension at the boundaries",
			func(word uint32, expected int64) {
				inst := decode(word)
				Expect(inst.(insts.Branch).Form.(insts.Unconditional).Simm26).To(Equal(expected))
			},
			Entry("backward by two", uint32(0x17FFFFFE), int64(-2)),
			Entry("minimum", uint32(0x16000000), int64(-33554432)),
			Entry("maximum", uint32(0x15FFFFFF), int64(33554431)),
		)

		// B.EQ #0x10         -> 0x54000080
		It("should decode B.EQ #0x10", func() {
			inst := decode(0x54000080)

			Expect(inst.Op()).To(Equal(insts.OpBCond))
			Expect(inst.(insts.Branch).Form).To(Equal(insts.Conditional{Simm19: 4, Cond: insts.CondEQ}))
		})

		// B.NE #0x20         -> 0x54000101
		It("should decode B.NE #0x20", func() {
			inst := decode(0x54000101)

			c := inst.(insts.Branch).Form.(insts.Conditional)
			Expect(c.Cond).To(Equal(insts.CondNE))
			Expect(c.Cond.Negated()).To(BeTrue())
			Expect(c.ByteOffset()).To(Equal(int64(0x20)))
		})

		// B.LE #-4           -> 0x54FFFFED
		It("should decode a backward conditional branch", func() {
			inst := decode(0x54FFFFED)

			Expect(inst.(insts.Branch).Form).To(Equal(insts.Conditional{Simm19: -1, Cond: insts.CondLE}))
		})

		// BR X30             -> 0xD61F03C0
		It("should decode BR X30", func() {
			inst := decode(0xD61F03C0)

			Expect(inst.Op()).To(Equal(insts.OpBR))
			Expect(inst.(insts.Branch).Form).To(Equal(insts.BranchRegister{Xn: 30}))
		})

		// BL #0x200          -> 0x94000080 (type=10)
		It("should reject an unsupported branch type", func() {
			inst, err := decoder.Decode(0x94000080)

			Expect(inst).To(BeNil())
			Expect(err).To(MatchError(insts.ErrUnsupportedBranchType))
			Expect(err).To(MatchError(insts.ErrUnsupportedSubVariant))
			Expect(err.(*insts.DecodeError).Field).To(Equal("type"))
			Expect(err.(*insts.DecodeError).Value).To(Equal(uint32(0b10)))
		})
	})

	Describe("Unsupported Families", func() {
		It("should reject the all-zero word", func() {
			inst, err := decoder.Decode(0x00000000)

			Expect(inst).To(BeNil())
			Expect(err).To(MatchError(insts.ErrUnsupportedFamily))
			Expect(err.(*insts.DecodeError).Field).To(Equal("op0"))
			Expect(err.(*insts.DecodeError).Value).To(Equal(uint32(0)))
		})

		// op0 = 0011
		It("should reject op0 = 0011", func() {
			_, err := decoder.Decode(0x06000000)
			Expect(err).To(MatchError(insts.ErrUnsupportedFamily))
		})
	})
})
