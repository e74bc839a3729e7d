package cache_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/a64codec/cache"
	"github.com/sarchlab/a64codec/insts"
	"github.com/sarchlab/a64codec/loader"
)

// countingSource records how often each address is read.
type countingSource struct {
	image *loader.Image
	reads map[uint64]int
}

func (s *countingSource) Word(addr uint64) (uint32, bool) {
	s.reads[addr]++
	return s.image.Word(addr)
}

var _ = Describe("Cache", func() {
	var (
		c      *cache.Cache
		source *countingSource
	)

	BeforeEach(func() {
		words := make([]uint32, 16)
		for i := range words {
			words[i] = 0xD2800000 | uint32(i)<<5 // movz x0, #i
		}
		words[1] = 0x00000000 // unsupported family

		source = &countingSource{
			image: &loader.Image{Base: 0x1000, Words: words},
			reads: map[uint64]int{},
		}

		// 8 entries, 2-way: 4 sets, so 0x1000, 0x1010 and 0x1020 share a set.
		c = cache.New(cache.Config{Size: 8, Associativity: 2}, source)
	})

	Describe("Fetch", func() {
		It("should miss on a cold cache", func() {
			inst, err := c.Fetch(0x1008)
			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Op()).To(Equal(insts.OpMOVZ))
			Expect(inst.(insts.DPI).Form).To(Equal(insts.WideMove{Imm16: 2}))

			stats := c.Stats()
			Expect(stats.Fetches).To(Equal(uint64(1)))
			Expect(stats.Misses).To(Equal(uint64(1)))
			Expect(stats.Hits).To(BeZero())
		})

		It("should hit without reading the source again", func() {
			first, err := c.Fetch(0x1008)
			Expect(err).NotTo(HaveOccurred())
			second, err := c.Fetch(0x100A)
			Expect(err).NotTo(HaveOccurred())

			Expect(second).To(Equal(first))
			Expect(source.reads[0x1008]).To(Equal(1))
			Expect(c.Stats().Hits).To(Equal(uint64(1)))
			Expect(c.Stats().HitRate()).To(BeNumerically("~", 0.5))
		})

		It("should cache decode errors", func() {
			_, err := c.Fetch(0x1004)
			Expect(err).To(MatchError(insts.ErrUnsupportedFamily))

			_, err = c.Fetch(0x1004)
			Expect(err).To(MatchError(insts.ErrUnsupportedFamily))
			Expect(source.reads[0x1004]).To(Equal(1))
			Expect(c.Stats().Hits).To(Equal(uint64(1)))
		})

		It("should report addresses outside the source", func() {
			_, err := c.Fetch(0x2000)
			Expect(err).To(MatchError(cache.ErrNoWord))
		})

		It("should evict the least recently used way", func() {
			for _, addr := range []uint64{0x1000, 0x1010, 0x1000, 0x1020} {
				_, err := c.Fetch(addr)
				Expect(err).NotTo(HaveOccurred())
			}
			Expect(c.Stats().Evictions).To(Equal(uint64(1)))

			_, err := c.Fetch(0x1000)
			Expect(err).NotTo(HaveOccurred())
			Expect(source.reads[0x1000]).To(Equal(1))

			_, err = c.Fetch(0x1010)
			Expect(err).NotTo(HaveOccurred())
			Expect(source.reads[0x1010]).To(Equal(2))
		})
	})

	Describe("Invalidate and Reset", func() {
		It("should refetch an invalidated entry", func() {
			_, _ = c.Fetch(0x1008)
			c.Invalidate(0x1008)
			_, _ = c.Fetch(0x1008)
			Expect(source.reads[0x1008]).To(Equal(2))
		})

		It("should clear entries and statistics on reset", func() {
			_, _ = c.Fetch(0x1008)
			c.Reset()
			Expect(c.Stats()).To(Equal(cache.Statistics{}))

			_, _ = c.Fetch(0x1008)
			Expect(c.Stats().Misses).To(Equal(uint64(1)))
		})

		It("should keep entries when only statistics are reset", func() {
			_, _ = c.Fetch(0x1008)
			c.ResetStats()
			_, _ = c.Fetch(0x1008)
			Expect(c.Stats()).To(Equal(cache.Statistics{Fetches: 1, Hits: 1}))
		})
	})

	Describe("Config", func() {
		It("should validate the geometry", func() {
			Expect(cache.DefaultConfig().Validate()).To(Succeed())
			Expect(cache.Config{Size: 6, Associativity: 4}.Validate()).To(MatchError(cache.ErrInvalidConfig))
			Expect(cache.Config{}.Validate()).To(MatchError(cache.ErrInvalidConfig))
		})

		It("should refuse to build an invalid cache", func() {
			Expect(func() { cache.New(cache.Config{Size: 3, Associativity: 2}, source) }).To(Panic())
		})

		It("should report its configuration", func() {
			Expect(c.Config()).To(Equal(cache.Config{Size: 8, Associativity: 2}))
		})
	})
})
