package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sagarc03/folio"
	"github.com/sagarc03/folio/config"
)

var grantRole string

var grantCmd = &cobra.Command{
	Use:   "grant <identity> [identity...]",
	Short: "Grant a role to identities",
	Long: `Record that each identity holds a role (admin by default).

Examples:
  folio grant owner@example.com
  folio grant --role admin editor@example.com owner@example.com`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGrant,
}

var revokeCmd = &cobra.Command{
	Use:   "revoke <identity> [identity...]",
	Short: "Revoke a role from identities",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRevoke,
}

var grantsCmd = &cobra.Command{
	Use:   "grants",
	Short: "List role grants",
	Args:  cobra.NoArgs,
	RunE:  runGrants,
}

func init() {
	grantCmd.Flags().StringVar(&grantRole, "role", folio.RoleAdmin, "role to grant")
	revokeCmd.Flags().StringVar(&grantRole, "role", folio.RoleAdmin, "role to revoke")

	rootCmd.AddCommand(grantCmd)
	rootCmd.AddCommand(revokeCmd)
	rootCmd.AddCommand(grantsCmd)
}

func runGrant(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	d, err := openDeps(ctx, cfg, openOptions{})
	if err != nil {
		return err
	}
	defer d.Close()
	warnConfigRoles(cfg)

	for _, identity := range args {
		if err := d.grants.Grant(ctx, identity, grantRole); err != nil {
			return fmt.Errorf("grant %s to %s: %w", grantRole, identity, err)
		}
		d.invalidate(ctx, identity, grantRole)
		slog.Info("granted", "identity", identity, "role", grantRole)
	}

	return nil
}

func runRevoke(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	d, err := openDeps(ctx, cfg, openOptions{})
	if err != nil {
		return err
	}
	defer d.Close()
	warnConfigRoles(cfg)

	notFound := 0
	for _, identity := range args {
		err := d.grants.Revoke(ctx, identity, grantRole)
		if errors.Is(err, folio.ErrNotFound) {
			notFound++
			slog.Warn("no such grant", "identity", identity, "role", grantRole)
			continue
		}
		if err != nil {
			return fmt.Errorf("revoke %s from %s: %w", grantRole, identity, err)
		}
		d.invalidate(ctx, identity, grantRole)
		slog.Info("revoked", "identity", identity, "role", grantRole)
	}

	slog.Info("revoke complete", "revoked", len(args)-notFound, "not_found", notFound)
	return nil
}

func runGrants(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	d, err := openDeps(ctx, cfg, openOptions{})
	if err != nil {
		return err
	}
	defer d.Close()
	warnConfigRoles(cfg)

	grants, err := d.grants.ListGrants(ctx)
	if err != nil {
		return fmt.Errorf("list grants: %w", err)
	}

	if len(grants) == 0 {
		fmt.Println("No role grants.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "IDENTITY\tROLE\tGRANTED")
	for _, g := range grants {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", g.Identity, g.Role, g.CreatedAt.Local().Format(time.DateTime))
	}
	return w.Flush()
}

func warnConfigRoles(cfg *config.Config) {
	if cfg.Roles.Source == "config" {
		slog.Warn("roles.source is config; grant table changes do not affect access")
	}
}
