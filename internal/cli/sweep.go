package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"storeops/internal/app"
	"storeops/internal/platform/config"
	"storeops/internal/platform/logger"
	"storeops/internal/reconciler"
	id "storeops/pkg/domain"
	"storeops/pkg/requestcontext"
)

type sweepOptions struct {
	tenant  string
	mode    string
	at      string
	backlog int
}

// NewSweepCommand creates the sweep command.
func NewSweepCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &sweepOptions{}
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run one auto clock-out sweep against the configured backends",
		Long: `Run one auto clock-out sweep. With --tenant only that tenant is swept and
every session past its store's deadline is closed. Otherwise every active
tenant is swept in the given mode; all-tenants mode only acts within the
grace period after each deadline.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(cmd.Context(), rootOpts, opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&opts.tenant, "tenant", "", "sweep only this tenant id")
	cmd.Flags().StringVar(&opts.mode, "mode", string(reconciler.ModeTenant), "sweep mode when no tenant is given (tenant|all-tenants)")
	cmd.Flags().StringVar(&opts.at, "at", "", "evaluate deadlines at this RFC 3339 instant instead of now")
	cmd.Flags().IntVar(&opts.backlog, "backlog-days", 0, "also close sessions of up to this many earlier business days")
	return cmd
}

func runSweep(ctx context.Context, rootOpts *RootOptions, opts *sweepOptions, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	mode := reconciler.Mode(opts.mode)
	if mode != reconciler.ModeTenant && mode != reconciler.ModeAllTenants {
		return fmt.Errorf("invalid --mode %q", opts.mode)
	}
	var tenantID id.TenantID
	if opts.tenant != "" {
		parsed, err := id.ParseTenantID(opts.tenant)
		if err != nil {
			return fmt.Errorf("invalid --tenant: %w", err)
		}
		tenantID = parsed
	}
	if opts.at != "" {
		at, err := time.Parse(time.RFC3339, opts.at)
		if err != nil {
			return fmt.Errorf("invalid --at: %w", err)
		}
		ctx = requestcontext.WithTime(ctx, at)
	}

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	if opts.backlog > 0 {
		cfg.Reconciler.Backlog = true
		cfg.Reconciler.BacklogDays = opts.backlog
	}
	a, err := app.Build(ctx, cfg, logger.NewWithWriter(os.Stderr, rootOpts.LogLevel, "text"))
	if err != nil {
		return err
	}
	defer a.Close()

	var res *reconciler.Result
	if tenantID.IsNil() {
		res, err = a.Reconciler.SweepActive(ctx, mode)
	} else {
		res, err = a.Reconciler.SweepTenant(ctx, tenantID)
	}
	if err != nil {
		return err
	}
	return writeOutput(w, rootOpts, res, func(w io.Writer) error {
		return printSweep(w, res)
	})
}

func printSweep(w io.Writer, res *reconciler.Result) error {
	if res.Count() == 0 {
		fmt.Fprintln(w, "No employees needed auto clock-out")
	}
	for _, e := range res.Closed {
		fmt.Fprintf(w, "%s\t%s\t%s\tclocked out %s\t%.2fh\n",
			e.TenantID, e.StoreID, e.EmployeeName, e.Deadline.Format("2006-01-02 15:04 MST"), e.HoursWorked)
	}
	if res.FailedStores > 0 {
		fmt.Fprintf(w, "%d store(s) failed, see logs\n", res.FailedStores)
	}
	return nil
}
