// Package main documents the a64codec module. The command line tool lives
// in cmd/a64codec:
//
//	go run ./cmd/a64codec encode movz w0, #5
//	go run ./cmd/a64codec decode 0x528000a0
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("a64codec - AArch64 subset encoder and decoder")
	fmt.Println("")
	fmt.Println("Usage: a64codec <command> [arguments]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  encode     Encode one instruction into a word")
	fmt.Println("  decode     Decode words and print their fields")
	fmt.Println("  asm        Assemble a source file into a raw word stream")
	fmt.Println("  disasm     Disassemble a raw word stream or ELF text")
	fmt.Println("  repl       Encode and decode interactively")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/a64codec' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/a64codec' instead.")
	}
}
