package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sarchlab/a64codec/asm"
)

func newEncodeCmd(opts *options) *cobra.Command {
	var (
		position uint32
		showRef  bool
	)

	cmd := &cobra.Command{
		Use:   "encode <mnemonic> [operands...]",
		Short: "Encode one instruction into a word",
		Example: `  a64codec encode movz w0, #5
  a64codec encode "b.ne #0x40" --pos 4`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mnemonic, operands, err := instructionArgs(args)
			if err != nil {
				return err
			}

			word, err := asm.NewEncoder().Encode(mnemonic, operands, position)
			if err != nil {
				return err
			}
			slog.Log(cmd.Context(), LevelTrace, "encoded", "mnemonic", mnemonic, "word", fmt.Sprintf("%#08x", word))

			if showRef {
				fmt.Fprintf(cmd.OutOrStdout(), "%#08x\t%s\n", word, reference(word))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%#08x\n", word)
			return nil
		},
	}

	cmd.Flags().Uint32Var(&position, "pos", 0, "Position of the instruction in the stream, in words")
	cmd.Flags().BoolVar(&showRef, "ref", false, "Also print the reference disassembly")

	return cmd
}

// instructionArgs accepts either the instruction as one quoted argument or
// the mnemonic and operands as separate arguments.
func instructionArgs(args []string) (string, []string, error) {
	line := strings.Join(args, " ")

	mnemonic, operands, ok, err := asm.ParseLine(line)
	if err != nil {
		return "", nil, err
	}
	if !ok {
		return "", nil, fmt.Errorf("no instruction given")
	}
	return mnemonic, operands, nil
}
