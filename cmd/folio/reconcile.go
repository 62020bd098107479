package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sagarc03/folio/config"
)

var reconcilePrune bool

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Report drift between photo records and stored blobs",
	Long: `Compare every photo record with the blob store and report:
  - records whose image blob is missing
  - blobs that no record references (orphans)
  - records whose image URL does not belong to the blob store

Orphans are left behind when an upload is interrupted between the blob
write and the record insert, or when compensation fails. Pass --prune to
delete them. Records are never modified.`,
	Args: cobra.NoArgs,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().BoolVar(&reconcilePrune, "prune", false, "delete orphan blobs")
	rootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	d, err := openDeps(ctx, cfg, openOptions{blobs: true})
	if err != nil {
		return err
	}
	defer d.Close()

	service, err := d.service()
	if err != nil {
		return err
	}

	report, err := service.Reconcile(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, p := range report.MissingBlobs {
		_, _ = fmt.Fprintf(w, "missing-blob\t%s\t%s\n", p.ID, p.ImageURL)
	}
	for _, p := range report.Foreign {
		_, _ = fmt.Fprintf(w, "foreign-url\t%s\t%s\n", p.ID, p.ImageURL)
	}
	for _, e := range report.Orphans {
		_, _ = fmt.Fprintf(w, "orphan-blob\t%s\t%d bytes\n", e.Path, e.Size)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	slog.Info("reconcile complete",
		"records", report.Records,
		"blobs", report.Blobs,
		"missing_blobs", len(report.MissingBlobs),
		"orphans", len(report.Orphans),
		"foreign", len(report.Foreign),
	)

	if !reconcilePrune || len(report.Orphans) == 0 {
		return nil
	}

	pruned, err := service.PruneOrphans(ctx, report)
	slog.Info("prune complete", "pruned", pruned, "orphans", len(report.Orphans))
	return err
}
