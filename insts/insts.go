// Package insts provides the AArch64-subset instruction model and decoding.
//
// This package decodes 32-bit machine words into structured instruction
// values. It supports four instruction families:
//   - Data Processing (Immediate): ADD/SUB immediate, MOVN/MOVZ/MOVK
//   - Data Processing (Register): ADD/SUB, logical shifted register, MADD/MSUB
//   - Single Data Transfer: LDR/STR with unsigned, register, pre/post-index
//     offsets, and LDR literal
//   - Branch: B, B.cond, BR
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst, err := decoder.Decode(0x528000A0) // MOVZ W0, #5
//	if err != nil {
//		return err
//	}
//	dpi := inst.(insts.DPI)
//	move := dpi.Form.(insts.WideMove)
//	fmt.Printf("Op: %v, Rd: %d, Imm16: %d\n", inst.Op(), dpi.Rd, move.Imm16)
package insts
