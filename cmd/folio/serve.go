package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sagarc03/folio"
	"github.com/sagarc03/folio/config"
	"github.com/sagarc03/folio/grantfile"
	foliohttp "github.com/sagarc03/folio/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the folio HTTP server.

On start the server migrates the database (unless database.auto_migrate is
false), validates the schema and writes any role grants listed under
roles.grants. A session secret is required.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 5708, "HTTP server port (env: FOLIO_SERVER_PORT)")
	serveCmd.Flags().String("public-url", "", "externally visible base URL (env: FOLIO_SERVER_PUBLIC_URL)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sessions, err := newSessionManager(cfg)
	if err != nil {
		return err
	}

	d, err := openDeps(ctx, cfg, openOptions{migrate: cfg.Database.AutoMigrate, blobs: true})
	if err != nil {
		return err
	}
	defer d.Close()

	seeded, err := grantfile.Seed(ctx, d.grants, cfg.Roles.Grants)
	if err != nil {
		return err
	}
	for _, g := range seeded {
		d.invalidate(ctx, g.Identity, g.Role)
	}
	if len(seeded) > 0 {
		slog.Info("role grants seeded", "count", len(seeded))
	}

	service, err := d.service()
	if err != nil {
		return err
	}

	handlerConfig := foliohttp.HandlerConfig{
		Sessions:       sessions,
		Callers:        folio.NewGate(d.roles),
		MaxUploadBytes: cfg.Service.MaxUploadSize,
		CORS:           cfg.CORS,
	}
	if d.local != nil {
		handlerConfig.Media = d.local
	}

	handler := foliohttp.NewHandler(&handlerConfig, service)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)

	server := &http.Server{
		Addr:              addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		slog.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "err", err)
		}
		cancel()
	}()

	slog.Info("starting server",
		"addr", addr,
		"database", cfg.Database.Type,
		"storage", cfg.Storage.Type,
		"public_url", cfg.Server.PublicURL,
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
