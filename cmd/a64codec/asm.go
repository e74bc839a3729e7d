package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/a64codec/asm"
)

func newAsmCmd(opts *options) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "asm <source|->",
		Short: "Assemble a source file into a raw word stream",
		Long: `Assemble one instruction per line. Branch and literal targets are absolute
byte addresses, with the first instruction at address 0. Labels are not
supported. Without -o the words are printed in hex.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, closeIn, err := openInput(cmd, args[0])
			if err != nil {
				return err
			}
			defer closeIn()

			stream, err := assemble(in)
			if err != nil {
				return err
			}
			slog.Info("assembled", "source", args[0], "words", stream.Len())

			if output == "" {
				for _, word := range stream.Words() {
					fmt.Fprintf(cmd.OutOrStdout(), "%08x\n", word)
				}
				return nil
			}

			return writeStream(stream, output, opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the raw words to this file")

	return cmd
}

// assemble encodes every line of r into a stream.
func assemble(r io.Reader) (*asm.Stream, error) {
	stream := asm.NewStream(asm.NewEncoder())

	scanner := bufio.NewScanner(r)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		mnemonic, operands, ok, err := asm.ParseLine(scanner.Text())
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if !ok {
			continue
		}

		word, err := stream.Emit(mnemonic, operands...)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		slog.Log(context.Background(), LevelTrace, "emit", "line", lineNo, "word", fmt.Sprintf("%#08x", word))
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read source: %w", err)
	}

	return stream, nil
}

func writeStream(stream *asm.Stream, path string, opts *options) error {
	order, err := opts.cfg.Order()
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}

	if err := stream.WriteWords(file, order); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to write output: %w", err)
	}

	return file.Close()
}

// openInput opens path, or standard input for "-".
func openInput(cmd *cobra.Command, path string) (io.Reader, func(), error) {
	if path == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input: %w", err)
	}
	return file, func() { _ = file.Close() }, nil
}
