// Package asm encodes AArch64-subset instructions from pre-tokenized
// assembly.
//
// The encoder takes a mnemonic, its operand tokens and the position of the
// instruction (in instructions, not bytes) and produces one 32-bit word.
// Pseudo-instructions such as cmp, mov and mul are rewritten through the
// alias table before encoding. Branch and literal targets must already be
// resolved to absolute byte addresses.
//
// Usage:
//
//	encoder := asm.NewEncoder()
//	word, err := encoder.Encode("movz", []string{"w0", "#5"}, 0)
//	// word == 0x528000A0
package asm
