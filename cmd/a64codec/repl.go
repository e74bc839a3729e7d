package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/sarchlab/a64codec/asm"
	"github.com/sarchlab/a64codec/cache"
	"github.com/sarchlab/a64codec/insts"
)

const replHelp = `commands:
  enc <instruction>   encode at the current position and advance
  dec <word>...       decode words at the current position
  at <n>              set the current position, in words
  words               print the words encoded so far
  list                disassemble the encoded words by position
  reset               forget the encoded words and the decode cache
  stats               print the session counters
  help                show this text
  quit                leave
`

var errQuit = errors.New("quit")

func newReplCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Encode and decode interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rl, err := readline.NewEx(&readline.Config{
				Prompt:      "a64> ",
				HistoryFile: opts.cfg.HistoryFile,
				Stdin:       io.NopCloser(cmd.InOrStdin()),
				Stdout:      cmd.OutOrStdout(),
				Stderr:      cmd.ErrOrStderr(),
			})
			if err != nil {
				return fmt.Errorf("failed to start readline: %w", err)
			}
			defer func() { _ = rl.Close() }()

			s := newSession(opts.cfg.DecodeCache)
			for {
				line, err := rl.Readline()
				if errors.Is(err, readline.ErrInterrupt) {
					continue
				}
				if errors.Is(err, io.EOF) {
					return nil
				}
				if err != nil {
					return err
				}

				err = s.exec(line, rl.Stdout())
				if errors.Is(err, errQuit) {
					return nil
				}
				if err != nil {
					fmt.Fprintf(rl.Stderr(), "error: %v\n", err)
				}
			}
		},
	}
}

// session is the state of one REPL run.
type session struct {
	encoder  *asm.Encoder
	decoder  *insts.Decoder
	position uint32
	words    []uint32

	// placed maps a position to the last word encoded there.
	placed map[uint32]uint32
	cache  *cache.Cache

	encoded, decoded, failed int
}

func newSession(cfg cache.Config) *session {
	s := &session{
		encoder: asm.NewEncoder(),
		decoder: insts.NewDecoder(),
		placed:  make(map[uint32]uint32),
	}
	s.cache = cache.New(cfg, s)
	return s
}

// Word implements cache.WordSource over the placed words.
func (s *session) Word(addr uint64) (uint32, bool) {
	if addr%4 != 0 || addr/4 > uint64(^uint32(0)) {
		return 0, false
	}
	word, ok := s.placed[uint32(addr/4)]
	return word, ok
}

// exec runs one command line and writes its output to w.
func (s *session) exec(line string, w io.Writer) error {
	cmd, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)

	var err error
	switch strings.ToLower(cmd) {
	case "":
		return nil
	case "enc", "e":
		err = s.encode(rest, w)
	case "dec", "d":
		err = s.decode(strings.Fields(rest), w)
	case "at":
		err = s.seek(rest)
	case "words":
		for i, word := range s.words {
			fmt.Fprintf(w, "%4d: %08x\n", i, word)
		}
	case "list", "l":
		s.list(w)
	case "reset":
		s.reset()
	case "stats":
		stats := s.cache.Stats()
		fmt.Fprintf(w, "position %d, encoded %d, decoded %d, failed %d\n",
			s.position, s.encoded, s.decoded, s.failed)
		fmt.Fprintf(w, "cache hits %d, misses %d, evictions %d\n",
			stats.Hits, stats.Misses, stats.Evictions)
	case "help", "?":
		fmt.Fprint(w, replHelp)
	case "quit", "exit", "q":
		return errQuit
	default:
		return fmt.Errorf("unknown command %q, try help", cmd)
	}

	if err != nil {
		s.failed++
	}
	return err
}

func (s *session) encode(line string, w io.Writer) error {
	mnemonic, operands, ok, err := asm.ParseLine(line)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("enc needs an instruction")
	}

	word, err := s.encoder.Encode(mnemonic, operands, s.position)
	if err != nil {
		return err
	}
	slog.Debug("encoded", "position", s.position, "word", fmt.Sprintf("%#08x", word))

	fmt.Fprintf(w, "%4d: %08x\t%s\n", s.position, word, reference(word))
	if _, ok := s.placed[s.position]; ok {
		s.cache.Invalidate(uint64(s.position) * 4)
	}
	s.placed[s.position] = word
	s.words = append(s.words, word)
	s.position++
	s.encoded++
	return nil
}

func (s *session) decode(args []string, w io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("dec needs a word")
	}

	for _, arg := range args {
		word, err := parseWord(arg)
		if err != nil {
			return err
		}

		inst, err := s.decoder.Decode(word)
		if err != nil {
			return err
		}

		fmt.Fprint(w, instTree(word, inst, s.position).String())
		s.decoded++
	}
	return nil
}

func (s *session) seek(arg string) error {
	n, err := strconv.ParseUint(arg, 0, 32)
	if err != nil {
		return fmt.Errorf("at needs a position, got %q", arg)
	}
	s.position = uint32(n)
	return nil
}

// list prints the placed words in position order, decoding through the
// cache.
func (s *session) list(w io.Writer) {
	positions := make([]uint32, 0, len(s.placed))
	for pos := range s.placed {
		positions = append(positions, pos)
	}
	slices.Sort(positions)

	for _, pos := range positions {
		word := s.placed[pos]
		inst, err := s.cache.Fetch(uint64(pos) * 4)
		if err != nil {
			fmt.Fprintf(w, "%4d: %08x\t.inst\t// %v\n", pos, word, err)
			continue
		}
		fmt.Fprintf(w, "%4d: %08x\t%-7v\t%s\n", pos, word, inst.Op(), reference(word))
	}
}

func (s *session) reset() {
	s.position = 0
	s.words = nil
	clear(s.placed)
	s.cache.Reset()
	s.encoded, s.decoded, s.failed = 0, 0, 0
}
