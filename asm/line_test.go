package asm_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/a64codec/asm"
)

var _ = Describe("ParseLine", func() {
	It("should split mnemonic and operands", func() {
		mnemonic, ops, ok, err := asm.ParseLine("\tadd x0, x1, #1, lsl #12 // bump")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(mnemonic).To(Equal("add"))
		Expect(ops).To(Equal([]string{"x0", "x1", "#1", "lsl #12"}))
	})

	It("should keep addresses in one token", func() {
		_, ops, _, err := asm.ParseLine("ldr x0, [x1, #-8]!")
		Expect(err).NotTo(HaveOccurred())
		Expect(ops).To(Equal([]string{"x0", "[x1, #-8]!"}))

		_, ops, _, err = asm.ParseLine("str x0, [x1], #16")
		Expect(err).NotTo(HaveOccurred())
		Expect(ops).To(Equal([]string{"x0", "[x1]", "#16"}))
	})

	It("should skip blank and comment lines", func() {
		_, _, ok, err := asm.ParseLine("   // nothing")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	It("should accept instructions without operands", func() {
		mnemonic, ops, ok, err := asm.ParseLine("0xd503201f")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(mnemonic).To(Equal("0xd503201f"))
		Expect(ops).To(BeEmpty())
	})

	It("should reject labels", func() {
		_, _, _, err := asm.ParseLine("loop: b #0")
		Expect(err).To(MatchError(asm.ErrMalformedOperand))
	})

	It("should feed the encoder", func() {
		mnemonic, ops, _, err := asm.ParseLine("ldr x0, [x1, #-8]!")
		Expect(err).NotTo(HaveOccurred())

		word, err := asm.NewEncoder().Encode(mnemonic, ops, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(word).To(Equal(uint32(0xF85F8C20)))
	})
})
