package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sagarc03/folio/config"
	"github.com/sagarc03/folio/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or verify the database tables",
	Long: `Create the photo and role grant tables if they are missing, then
validate that the existing schema matches what folio expects.

Run this before 'folio serve' when database.auto_migrate is false.`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	db, err := database.Open(cmd.Context(), cfg.Database)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	defer func() { _ = db.Close() }()

	slog.Info("database ready",
		"type", cfg.Database.Type,
		"photos_table", cfg.Database.Tables.Photos,
		"role_grants_table", cfg.Database.Tables.RoleGrants,
	)
	return nil
}
