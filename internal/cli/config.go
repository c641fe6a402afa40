package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Config mirrors the optional config file. File values act as defaults and
// never override flags given on the command line.
type Config struct {
	Format  string `yaml:"format"`
	BaseURL string `yaml:"base-url"`
	Schema  string `yaml:"schema"`
}

// applyConfigFile loads the config file named by --config, if any, and fills
// in options whose flags were left at their defaults.
func applyConfigFile(cmd *cobra.Command, opts *RootOptions) error {
	if opts.ConfigPath == "" {
		return nil
	}

	data, err := os.ReadFile(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parsing config file %s: %w", opts.ConfigPath, err)
	}

	flags := cmd.Flags()
	if cfg.Format != "" && !flags.Changed("format") {
		opts.Format = cfg.Format
	}
	if cfg.BaseURL != "" && !flags.Changed("base-url") {
		opts.BaseURL = cfg.BaseURL
	}
	if cfg.Schema != "" && !flags.Changed("schema") {
		opts.SchemaPath = cfg.Schema
	}
	return nil
}
