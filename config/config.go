// Package config holds the settings of the a64codec tools.
package config

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/xyproto/env/v2"

	"github.com/sarchlab/a64codec/cache"
)

// Environment variables that override the file configuration.
const (
	EnvByteOrder = "A64CODEC_BYTE_ORDER"
	EnvLogLevel  = "A64CODEC_LOG_LEVEL"
	EnvHistory   = "A64CODEC_HISTORY"
	EnvCacheSize = "A64CODEC_CACHE_SIZE"
)

// Byte orders accepted by ByteOrder.
const (
	OrderNative = "native"
	OrderLittle = "little"
	OrderBig    = "big"
)

var logLevels = []string{"trace", "debug", "info", "warn", "error"}

// Config holds the tool settings.
type Config struct {
	// ByteOrder of word streams read and written: native, little or big.
	// Default: native.
	ByteOrder string `json:"byte_order"`

	// BaseAddress is the address of the first word of a raw image.
	// Default: 0.
	BaseAddress uint64 `json:"base_address"`

	// DecodeCache sizes the cache used when disassembling images.
	DecodeCache cache.Config `json:"decode_cache"`

	// LogLevel is one of trace, debug, info, warn or error. Default: warn.
	LogLevel string `json:"log_level"`

	// HistoryFile keeps the REPL history. Empty disables history.
	HistoryFile string `json:"history_file"`
}

// DefaultConfig returns the default settings.
func DefaultConfig() *Config {
	return &Config{
		ByteOrder:   OrderNative,
		DecodeCache: cache.DefaultConfig(),
		LogLevel:    "warn",
	}
}

// LoadConfig loads a Config from a JSON file. Missing fields keep their
// defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a Config to a JSON file.
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides fields from the environment as it is at the time of
// the call. A cache size that is not a number is ignored.
func (c *Config) ApplyEnv() {
	env.Load()

	c.ByteOrder = env.Str(EnvByteOrder, c.ByteOrder)
	c.LogLevel = env.Str(EnvLogLevel, c.LogLevel)
	c.HistoryFile = env.Str(EnvHistory, c.HistoryFile)
	c.DecodeCache.Size = env.Int(EnvCacheSize, c.DecodeCache.Size)
}

// Validate checks the settings.
func (c *Config) Validate() error {
	if _, err := c.Order(); err != nil {
		return err
	}

	if !isLogLevel(c.LogLevel) {
		return fmt.Errorf("log_level must be one of %s", strings.Join(logLevels, ", "))
	}

	if c.BaseAddress%4 != 0 {
		return errors.New("base_address must be word aligned")
	}

	if err := c.DecodeCache.Validate(); err != nil {
		return fmt.Errorf("decode_cache: %w", err)
	}

	return nil
}

func isLogLevel(level string) bool {
	for _, l := range logLevels {
		if strings.EqualFold(level, l) {
			return true
		}
	}
	return false
}

// Order returns the byte order named by ByteOrder.
func (c *Config) Order() (binary.ByteOrder, error) {
	switch strings.ToLower(c.ByteOrder) {
	case OrderNative, "":
		return binary.NativeEndian, nil
	case OrderLittle:
		return binary.LittleEndian, nil
	case OrderBig:
		return binary.BigEndian, nil
	}
	return nil, fmt.Errorf("byte_order must be native, little or big, got %q", c.ByteOrder)
}

// Clone returns a copy of the Config.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
