package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sarchlab/a64codec/config"
)

// options holds the global flags and the resolved configuration.
type options struct {
	configPath string
	logLevel   string

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "a64codec",
		Short: "Encode and decode AArch64 instructions",
		Long: `a64codec encodes assembly into AArch64 machine words and decodes words
back into structured instructions. It covers immediate and register data
processing, loads and stores, and branches.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to configuration JSON file")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")

	rootCmd.AddCommand(
		newEncodeCmd(opts),
		newDecodeCmd(opts),
		newAsmCmd(opts),
		newDisasmCmd(opts),
		newReplCmd(opts),
	)

	return rootCmd
}

// resolve loads the configuration, applies environment and flag overrides
// and installs the logger.
func (o *options) resolve(cmd *cobra.Command) error {
	cfg := config.DefaultConfig()
	if o.configPath != "" {
		var err error
		if cfg, err = config.LoadConfig(o.configPath); err != nil {
			return err
		}
	}

	cfg.ApplyEnv()
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(newLogger(cmd.ErrOrStderr(), level))

	slog.Debug("configuration resolved",
		"config", o.configPath,
		"byte_order", cfg.ByteOrder,
		"cache_size", cfg.DecodeCache.Size)

	o.cfg = cfg
	return nil
}
