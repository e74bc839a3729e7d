// Package main provides a64codec, a command line encoder and decoder for a
// subset of AArch64.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
