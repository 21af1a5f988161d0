// Package cli implements storeopsctl, the operator command line for storeops.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Format   string // "json" | "text"
	LogLevel string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for storeopsctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "storeopsctl",
		Short: "Operate the storeops attendance engine",
		Long: `storeopsctl runs one-shot auto clock-out sweeps, evaluates store-hours
access decisions offline, loads directory seed files and mints development
tokens. Backend settings come from the same environment as the server.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "warn", "log level written to stderr")

	cmd.AddCommand(NewPolicyCommand(opts))
	cmd.AddCommand(NewSweepCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))

	return cmd
}

// writeOutput prints v as indented JSON, or calls text for the text format.
func writeOutput(w io.Writer, opts *RootOptions, v any, text func(io.Writer) error) error {
	if opts.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return text(w)
}
