package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sagarc03/folio/config"
	"github.com/sagarc03/folio/session"
)

var tokenTTL time.Duration

var tokenCmd = &cobra.Command{
	Use:   "token <identity>",
	Short: "Issue a session token",
	Long: `Sign a bearer token for identity with the configured session secret and
print it. The token proves identity only; admin access still depends on
role grants.

Examples:
  folio token owner@example.com
  folio token --ttl 15m owner@example.com`,
	Args: cobra.ExactArgs(1),
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime (default: session.ttl)")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	if cfg.Session.Secret == "" {
		return fmt.Errorf("session.secret is required (env: FOLIO_SESSION_SECRET)")
	}

	ttl := cfg.Session.TTL
	if tokenTTL > 0 {
		ttl = tokenTTL
	}

	manager, err := session.NewManager(session.Config{
		Secret: cfg.Session.Secret,
		Issuer: cfg.Session.Issuer,
		TTL:    ttl,
	})
	if err != nil {
		return err
	}

	token, exp, err := manager.Issue(args[0])
	if err != nil {
		return err
	}

	fmt.Println(token)
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", exp.Local().Format(time.RFC3339))
	return nil
}
