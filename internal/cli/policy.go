package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"storeops/internal/storehours"
)

type policyOptions struct {
	opening     string
	closing     string
	timezone    string
	defaultZone string
	at          string
	window      string
}

// PolicyReport is the offline evaluation of one instant against store hours.
type PolicyReport struct {
	At           time.Time            `json:"at"`
	BusinessDate storehours.Date      `json:"business_date"`
	Login        *storehours.Decision `json:"login,omitempty"`
	Clock        *storehours.Decision `json:"clock,omitempty"`
	AutoClockout *time.Time           `json:"auto_clockout_at,omitempty"`
}

// NewPolicyCommand creates the policy command.
func NewPolicyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &policyOptions{}
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Evaluate login and clock windows for store hours at an instant",
		Example: `  storeopsctl policy --opening 09:00 --closing 17:00 --timezone UTC --at 2024-06-03T17:45:00Z
  storeopsctl policy --opening 20:00 --closing 02:00 --window clock --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPolicy(rootOpts, opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&opts.opening, "opening", "", "store opening time, HH:MM")
	cmd.Flags().StringVar(&opts.closing, "closing", "", "store closing time, HH:MM")
	cmd.Flags().StringVar(&opts.timezone, "timezone", "", "store IANA timezone")
	cmd.Flags().StringVar(&opts.defaultZone, "default-timezone", "America/New_York", "zone used when the store zone is missing or unknown")
	cmd.Flags().StringVar(&opts.at, "at", "", "instant to evaluate, RFC 3339 (default now)")
	cmd.Flags().StringVar(&opts.window, "window", "both", "window to evaluate (login|clock|both)")
	return cmd
}

func runPolicy(rootOpts *RootOptions, opts *policyOptions, w io.Writer) error {
	policy, err := storehours.New(opts.defaultZone)
	if err != nil {
		return err
	}
	at := time.Now()
	if opts.at != "" {
		at, err = time.Parse(time.RFC3339, opts.at)
		if err != nil {
			return fmt.Errorf("invalid --at: %w", err)
		}
	}
	hours := storehours.Hours{Opening: opts.opening, Closing: opts.closing, Timezone: opts.timezone}

	report := PolicyReport{At: at, BusinessDate: policy.BusinessDate(hours, at)}
	switch opts.window {
	case "login":
		d := policy.CanLogin(hours, at)
		report.Login = &d
	case "clock":
		d := policy.CanClockAction(hours, at)
		report.Clock = &d
	case "both":
		login, clock := policy.CanLogin(hours, at), policy.CanClockAction(hours, at)
		report.Login, report.Clock = &login, &clock
	default:
		return fmt.Errorf("invalid --window %q: must be login, clock or both", opts.window)
	}
	if deadline, ok := policy.AutoClockoutAt(hours, report.BusinessDate); ok {
		report.AutoClockout = &deadline
	}

	return writeOutput(w, rootOpts, report, func(w io.Writer) error {
		fmt.Fprintf(w, "business date: %s\n", report.BusinessDate)
		printDecision(w, "login", report.Login)
		printDecision(w, "clock", report.Clock)
		if report.AutoClockout != nil {
			fmt.Fprintf(w, "auto clock-out: %s\n", report.AutoClockout.Format(time.RFC3339))
		}
		return nil
	})
}

func printDecision(w io.Writer, name string, d *storehours.Decision) {
	if d == nil {
		return
	}
	if d.Allowed {
		fmt.Fprintf(w, "%s: allowed\n", name)
	} else {
		fmt.Fprintf(w, "%s: denied (%s) %s\n", name, d.ErrorCode, d.Reason)
	}
	if md := d.Metadata; md != nil {
		fmt.Fprintf(w, "  window: %s to %s\n", md.WindowStart.Format(time.RFC3339), md.WindowEnd.Format(time.RFC3339))
	}
}
