package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sarchlab/a64codec/insts"
)

func newDecodeCmd(opts *options) *cobra.Command {
	var position uint32

	cmd := &cobra.Command{
		Use:     "decode <word>...",
		Short:   "Decode words and print their fields",
		Example: `  a64codec decode 0x528000A0 8b020020`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			decoder := insts.NewDecoder()
			out := cmd.OutOrStdout()

			var errs []error
			for _, arg := range args {
				word, err := parseWord(arg)
				if err != nil {
					errs = append(errs, err)
					continue
				}

				inst, err := decoder.Decode(word)
				if err != nil {
					slog.Warn("decode failed", "word", fmt.Sprintf("%#08x", word), "err", err)
					errs = append(errs, err)
					continue
				}

				fmt.Fprint(out, instTree(word, inst, position).String())
				fmt.Fprintf(out, "reference: %s\n", reference(word))
			}

			return errors.Join(errs...)
		},
	}

	cmd.Flags().Uint32Var(&position, "pos", 0, "Position of the word in the stream, for branch targets")

	return cmd
}
