// Package cache provides a set-associative cache of decoded instructions
// built on Akita cache components.
package cache

import (
	"errors"
	"fmt"

	akitacache "github.com/sarchlab/akita/v4/mem/cache"

	"github.com/sarchlab/a64codec/insts"
	"github.com/sarchlab/a64codec/translate"
)

var f = translate.From

// wordSize is the block size of the directory. Each block holds the decoding
// of exactly one instruction word.
const wordSize = 4

var (
	ErrInvalidConfig = errors.New(f("invalid cache configuration"))
	ErrNoWord        = errors.New(f("no instruction word at address"))
)

// Config holds cache configuration parameters.
type Config struct {
	// Size is the number of cached instructions.
	Size int `json:"size"`
	// Associativity is the number of ways per set.
	Associativity int `json:"associativity"`
}

// DefaultConfig returns a 1024-entry, 4-way cache.
func DefaultConfig() Config {
	return Config{
		Size:          1024,
		Associativity: 4,
	}
}

// Validate checks that the configuration describes a whole number of sets.
func (c Config) Validate() error {
	if c.Size <= 0 || c.Associativity <= 0 {
		return fmt.Errorf("%w: size and associativity must be positive", ErrInvalidConfig)
	}
	if c.Size%c.Associativity != 0 {
		return fmt.Errorf("%w: size %d is not a multiple of associativity %d",
			ErrInvalidConfig, c.Size, c.Associativity)
	}
	return nil
}

// WordSource supplies instruction words by byte address. *loader.Image
// implements it.
type WordSource interface {
	Word(addr uint64) (uint32, bool)
}

// Statistics holds cache performance statistics.
type Statistics struct {
	Fetches   uint64
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// HitRate returns Hits/Fetches, or 0 before the first fetch.
func (s Statistics) HitRate() float64 {
	if s.Fetches == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Fetches)
}

// entry is the decoding of one word. Decode failures are kept too, so a
// bad word is only decoded once.
type entry struct {
	inst insts.Instruction
	err  error
}

// Cache decodes instruction words through an Akita directory. It is not safe
// for concurrent use.
type Cache struct {
	config Config

	// Akita cache directory for tag/state management
	directory *akitacache.DirectoryImpl

	// Decoded entries, indexed by (setID * associativity + wayID)
	entries []entry

	stats   Statistics
	source  WordSource
	decoder *insts.Decoder
}

// New creates a new cache over source. It panics if the configuration is
// invalid.
func New(config Config, source WordSource) *Cache {
	if err := config.Validate(); err != nil {
		panic(err)
	}

	numSets := config.Size / config.Associativity

	return &Cache{
		config: config,
		directory: akitacache.NewDirectory(
			numSets,
			config.Associativity,
			wordSize,
			akitacache.NewLRUVictimFinder(),
		),
		entries: make([]entry, numSets*config.Associativity),
		source:  source,
		decoder: insts.NewDecoder(),
	}
}

// Config returns the cache configuration.
func (c *Cache) Config() Config {
	return c.config
}

// Stats returns cache statistics.
func (c *Cache) Stats() Statistics {
	return c.stats
}

// ResetStats clears cache statistics.
func (c *Cache) ResetStats() {
	c.stats = Statistics{}
}

func (c *Cache) entryIndex(block *akitacache.Block) int {
	return block.SetID*c.config.Associativity + block.WayID
}

// Fetch returns the decoded instruction at addr, decoding it on a miss.
// The address is truncated to a word boundary.
func (c *Cache) Fetch(addr uint64) (insts.Instruction, error) {
	c.stats.Fetches++

	blockAddr := addr &^ (wordSize - 1)

	block := c.directory.Lookup(0, blockAddr)
	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block) // Update LRU

		e := c.entries[c.entryIndex(block)]
		return e.inst, e.err
	}

	c.stats.Misses++
	return c.fill(blockAddr)
}

func (c *Cache) fill(blockAddr uint64) (insts.Instruction, error) {
	word, ok := c.source.Word(blockAddr)
	if !ok {
		return nil, fmt.Errorf("%w: %#x", ErrNoWord, blockAddr)
	}

	victim := c.directory.FindVictim(blockAddr)
	if victim.IsValid {
		c.stats.Evictions++
	}

	inst, err := c.decoder.Decode(word)
	c.entries[c.entryIndex(victim)] = entry{inst: inst, err: err}

	victim.Tag = blockAddr
	victim.IsValid = true
	c.directory.Visit(victim)

	return inst, err
}

// Invalidate drops the entry for addr, if cached.
func (c *Cache) Invalidate(addr uint64) {
	block := c.directory.Lookup(0, addr&^(wordSize-1))
	if block != nil && block.IsValid {
		block.IsValid = false
		c.entries[c.entryIndex(block)] = entry{}
	}
}

// Reset invalidates every entry and clears the statistics.
func (c *Cache) Reset() {
	c.directory.Reset()
	clear(c.entries)
	c.stats = Statistics{}
}
