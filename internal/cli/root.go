package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Format     string // "http" | "curl" | "supabase" | "json"
	BaseURL    string
	SchemaPath string
	ConfigPath string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"http", "curl", "supabase", "json"}

// NewRootCommand creates the root command for the restql CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "restql",
		Short: "restql - SQL to PostgREST translator",
		Long:  "Translate SQL statements into PostgREST HTTP requests or client code.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := applyConfigFile(cmd, opts); err != nil {
				return err
			}
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "http", "output format (http|curl|supabase|json)")
	cmd.PersistentFlags().StringVar(&opts.BaseURL, "base-url", "http://localhost:3000", "PostgREST base URL")
	cmd.PersistentFlags().StringVar(&opts.SchemaPath, "schema", "", "schema file used to validate table and column names")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file providing flag defaults")

	cmd.AddCommand(NewTranslateCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
