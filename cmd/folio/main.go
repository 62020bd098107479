package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/folio/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "folio",
	Short:   "Photo gallery content service",
	Long: `Folio stores gallery photos: image blobs on the local filesystem or an
S3-compatible bucket, and photo metadata in SQLite or PostgreSQL.

Anyone may browse the gallery. Uploading, deleting, featuring and reordering
photos require an identity holding the admin role.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFiles, _ := cmd.Flags().GetStringSlice("config")

		cfg, err := config.Load(configFiles, cmd.Flags())
		if err != nil {
			return err
		}

		setupLogging(cfg)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringSlice("config", nil, "config file path, repeatable (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("db-type", "", "database type: sqlite, postgres (default: sqlite, env: FOLIO_DATABASE_TYPE)")
	rootCmd.PersistentFlags().String("db-dsn", "", "database connection string (default: folio.db, env: FOLIO_DATABASE_DSN)")
	rootCmd.PersistentFlags().String("storage-type", "", "blob store: filesystem, s3 (default: filesystem, env: FOLIO_STORAGE_TYPE)")
	rootCmd.PersistentFlags().String("storage-path", "", "filesystem blob directory (default: ./media, env: FOLIO_STORAGE_PATH)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (env: FOLIO_LOG_LEVEL)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
