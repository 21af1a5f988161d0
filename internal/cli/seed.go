package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"storeops/internal/app"
	dirstore "storeops/internal/directory/store"
	"storeops/internal/platform/config"
	"storeops/internal/platform/logger"
	"storeops/internal/platform/postgres"
)

// SeedSummary counts what a seed file holds.
type SeedSummary struct {
	Tenants   int  `json:"tenants"`
	Stores    int  `json:"stores"`
	Employees int  `json:"employees"`
	Applied   bool `json:"applied"`
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "seed <file>",
		Short: "Load a YAML directory seed into the configured database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), rootOpts, args[0], dryRun, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and validate the file without writing")
	return cmd
}

func runSeed(ctx context.Context, rootOpts *RootOptions, path string, dryRun bool, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	seed, err := dirstore.LoadSeedFile(path)
	if err != nil {
		return err
	}
	summary := SeedSummary{Tenants: len(seed.Tenants)}
	for _, t := range seed.Tenants {
		summary.Stores += len(t.Stores)
		summary.Employees += len(t.Employees)
	}

	if !dryRun {
		cfg, err := config.FromEnv()
		if err != nil {
			return err
		}
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required to apply a seed")
		}
		a, err := app.Build(ctx, cfg, logger.NewWithWriter(os.Stderr, rootOpts.LogLevel, "text"))
		if err != nil {
			return err
		}
		defer a.Close()
		// All-or-nothing: a bad row leaves the database untouched.
		err = postgres.RunInTx(ctx, a.DB, func(txCtx context.Context) error {
			return seed.Apply(txCtx, a.Directory)
		})
		if err != nil {
			return err
		}
		summary.Applied = true
	}

	return writeOutput(w, rootOpts, summary, func(w io.Writer) error {
		verb := "validated"
		if summary.Applied {
			verb = "applied"
		}
		fmt.Fprintf(w, "%s %d tenant(s), %d store(s), %d employee(s)\n", verb, summary.Tenants, summary.Stores, summary.Employees)
		return nil
	})
}
