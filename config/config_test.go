package config_test

import (
	"encoding/binary"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/a64codec/cache"
	"github.com/sarchlab/a64codec/config"
)

var _ = Describe("Config", func() {
	Describe("DefaultConfig", func() {
		It("should be valid", func() {
			c := config.DefaultConfig()
			Expect(c.Validate()).To(Succeed())
			Expect(c.DecodeCache).To(Equal(cache.DefaultConfig()))
		})

		It("should use the native byte order", func() {
			order, err := config.DefaultConfig().Order()
			Expect(err).NotTo(HaveOccurred())
			Expect(order).To(Equal(binary.NativeEndian))
		})
	})

	Describe("LoadConfig and SaveConfig", func() {
		var path string

		BeforeEach(func() {
			path = filepath.Join(GinkgoT().TempDir(), "a64codec.json")
		})

		It("should round trip through a file", func() {
			c := config.DefaultConfig()
			c.ByteOrder = config.OrderBig
			c.BaseAddress = 0x400000
			c.DecodeCache = cache.Config{Size: 64, Associativity: 8}

			Expect(c.SaveConfig(path)).To(Succeed())

			loaded, err := config.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(c))
		})

		It("should keep defaults for missing fields", func() {
			Expect(os.WriteFile(path, []byte(`{"byte_order": "little"}`), 0644)).To(Succeed())

			loaded, err := config.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.ByteOrder).To(Equal(config.OrderLittle))
			Expect(loaded.LogLevel).To(Equal("warn"))
			Expect(loaded.DecodeCache).To(Equal(cache.DefaultConfig()))
		})

		It("should fail on a missing file", func() {
			_, err := config.LoadConfig(path)
			Expect(err).To(MatchError(ContainSubstring("failed to read")))
		})

		It("should fail on bad JSON", func() {
			Expect(os.WriteFile(path, []byte("{"), 0644)).To(Succeed())

			_, err := config.LoadConfig(path)
			Expect(err).To(MatchError(ContainSubstring("failed to parse")))
		})
	})

	Describe("Validate", func() {
		var c *config.Config

		BeforeEach(func() {
			c = config.DefaultConfig()
		})

		It("should reject unknown byte orders", func() {
			c.ByteOrder = "middle"
			Expect(c.Validate()).To(MatchError(ContainSubstring("byte_order")))
		})

		It("should reject unknown log levels", func() {
			c.LogLevel = "loud"
			Expect(c.Validate()).To(MatchError(ContainSubstring("log_level")))
		})

		It("should reject unaligned base addresses", func() {
			c.BaseAddress = 2
			Expect(c.Validate()).To(MatchError(ContainSubstring("base_address")))
		})

		It("should reject bad cache geometry", func() {
			c.DecodeCache.Associativity = 3
			Expect(c.Validate()).To(MatchError(cache.ErrInvalidConfig))
		})
	})

	Describe("ApplyEnv", func() {
		It("should override from the environment", func() {
			GinkgoT().Setenv(config.EnvByteOrder, "big")
			GinkgoT().Setenv(config.EnvLogLevel, "debug")
			GinkgoT().Setenv(config.EnvHistory, "/tmp/history")
			GinkgoT().Setenv(config.EnvCacheSize, "256")

			c := config.DefaultConfig()
			c.ApplyEnv()

			Expect(c.ByteOrder).To(Equal("big"))
			Expect(c.LogLevel).To(Equal("debug"))
			Expect(c.HistoryFile).To(Equal("/tmp/history"))
			Expect(c.DecodeCache.Size).To(Equal(256))
		})

		It("should keep values that are not set", func() {
			GinkgoT().Setenv(config.EnvCacheSize, "lots")

			c := config.DefaultConfig()
			c.ByteOrder = config.OrderLittle
			c.ApplyEnv()

			Expect(c.ByteOrder).To(Equal(config.OrderLittle))
			Expect(c.DecodeCache.Size).To(Equal(cache.DefaultConfig().Size))
		})

		It("should see environment changes between calls", func() {
			GinkgoT().Setenv(config.EnvByteOrder, "big")
			first := config.DefaultConfig()
			first.ApplyEnv()
			Expect(first.ByteOrder).To(Equal("big"))

			GinkgoT().Setenv(config.EnvByteOrder, "little")
			second := config.DefaultConfig()
			second.ApplyEnv()
			Expect(second.ByteOrder).To(Equal("little"))
		})
	})

	Describe("Clone", func() {
		It("should copy independently", func() {
			c := config.DefaultConfig()
			clone := c.Clone()
			clone.DecodeCache.Size = 1

			Expect(c.DecodeCache.Size).To(Equal(cache.DefaultConfig().Size))
		})
	})
})
