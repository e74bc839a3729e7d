package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/a64codec/cache"
	"github.com/sarchlab/a64codec/insts"
	"github.com/sarchlab/a64codec/loader"
)

func newDisasmCmd(opts *options) *cobra.Command {
	var (
		isELF    bool
		showTree bool
	)

	cmd := &cobra.Command{
		Use:   "disasm <file>",
		Short: "Disassemble a raw word stream or the text of an AArch64 ELF",
		Long: `Disassemble every word of an image. Raw streams are read in the configured
byte order and placed at the configured base address. Branch targets inside
the image are marked with a label line.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := loadImage(args[0], isELF, opts)
			if err != nil {
				return err
			}

			c := cache.New(opts.cfg.DecodeCache, img)
			listing(cmd.OutOrStdout(), img, c, showTree)

			stats := c.Stats()
			slog.Debug("decode cache",
				"fetches", stats.Fetches,
				"hits", stats.Hits,
				"misses", stats.Misses,
				"evictions", stats.Evictions,
				"hit_rate", stats.HitRate())

			return nil
		},
	}

	cmd.Flags().BoolVar(&isELF, "elf", false, "Read the first executable segment of an ELF file")
	cmd.Flags().BoolVar(&showTree, "tree", false, "Print the decoded fields of every word")

	return cmd
}

func loadImage(path string, isELF bool, opts *options) (*loader.Image, error) {
	if isELF {
		prog, err := loader.Load(path)
		if err != nil {
			return nil, err
		}
		slog.Info("loaded ELF", "path", path, "entry", fmt.Sprintf("%#x", prog.EntryPoint))
		return prog.TextImage()
	}

	order, err := opts.cfg.Order()
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer func() { _ = file.Close() }()

	return loader.LoadRaw(file, opts.cfg.BaseAddress, order)
}

// listing prints img in two passes through the cache. The first pass
// collects branch targets, the second prints the words with a label before
// each target.
func listing(w io.Writer, img *loader.Image, c *cache.Cache, showTree bool) {
	targets := make(map[uint64]bool)
	for i := 0; i < img.Len(); i++ {
		addr := img.Addr(i)
		inst, err := c.Fetch(addr)
		if err != nil {
			continue
		}
		if target, ok := branchTarget(inst, addr); ok {
			targets[target] = true
		}
	}

	for i := 0; i < img.Len(); i++ {
		addr := img.Addr(i)
		word := img.Words[i]

		if targets[addr] {
			fmt.Fprintf(w, "L_%x:\n", addr)
		}

		inst, err := c.Fetch(addr)
		if err != nil {
			fmt.Fprintf(w, "  %8x:\t%08x\t.inst\t// %v\n", addr, word, err)
			continue
		}

		fmt.Fprintf(w, "  %8x:\t%08x\t%-7v\t%s\n", addr, word, inst.Op(), reference(word))
		if showTree {
			fmt.Fprint(w, instTree(word, inst, uint32(addr/4)).String())
		}
	}
}

// branchTarget returns the absolute destination of a PC-relative branch or
// literal load at addr.
func branchTarget(inst insts.Instruction, addr uint64) (uint64, bool) {
	position := uint32(addr / 4)

	switch i := inst.(type) {
	case insts.Branch:
		switch f := i.Form.(type) {
		case insts.Unconditional:
			return uint64(f.Target(position)), true
		case insts.Conditional:
			return uint64(f.Target(position)), true
		}
	case insts.SDT:
		if lit, ok := i.Form.(insts.LoadLiteral); ok {
			return uint64(lit.Target(position)), true
		}
	}
	return 0, false
}
