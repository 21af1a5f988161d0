package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	jwttoken "storeops/internal/jwt_token"
	id "storeops/pkg/domain"
)

type tokenOptions struct {
	tenant     string
	username   string
	role       string
	ttl        time.Duration
	signingKey string
	issuer     string
}

// NewTokenCommand creates the token command.
func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &tokenOptions{}
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for local testing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToken(rootOpts, opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&opts.tenant, "tenant", "", "tenant id (required)")
	cmd.Flags().StringVar(&opts.username, "username", "dev", "username claim")
	cmd.Flags().StringVar(&opts.role, "role", jwttoken.RoleManager, "role claim")
	cmd.Flags().DurationVar(&opts.ttl, "ttl", time.Hour, "token lifetime")
	cmd.Flags().StringVar(&opts.signingKey, "signing-key", os.Getenv("JWT_SIGNING_KEY"), "HS256 signing key (default $JWT_SIGNING_KEY)")
	cmd.Flags().StringVar(&opts.issuer, "issuer", "storeops", "issuer claim")
	_ = cmd.MarkFlagRequired("tenant")
	return cmd
}

func runToken(rootOpts *RootOptions, opts *tokenOptions, w io.Writer) error {
	tenantID, err := id.ParseTenantID(opts.tenant)
	if err != nil {
		return fmt.Errorf("invalid --tenant: %w", err)
	}
	if opts.signingKey == "" {
		return fmt.Errorf("a signing key is required")
	}
	token, err := jwttoken.NewJWTService(opts.signingKey, opts.issuer).
		GenerateAccessToken(tenantID, opts.username, opts.role, opts.ttl)
	if err != nil {
		return err
	}
	return writeOutput(w, rootOpts, map[string]string{"access_token": token}, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, token)
		return err
	})
}
