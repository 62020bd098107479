package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/sagarc03/folio"
	"github.com/sagarc03/folio/config"
)

var removeCmd = &cobra.Command{
	Use:   "remove [flags] <photo-id> [photo-id...]",
	Short: "Delete photos and their images",
	Long: `Delete photos through the same pipeline as the HTTP API: the image blob
first, then the record. A photo whose blob is already gone is still removed,
so re-running after a partial failure converges.

Examples:
  folio remove --as owner@example.com 6f1c7a52-8a43-4a4c-9d0b-3c1f7e2d9a10
  folio remove --as owner@example.com --yes <id1> <id2>`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRemove,
}

var (
	removeAs  string
	removeYes bool
)

func init() {
	removeCmd.Flags().StringVar(&removeAs, "as", "", "admin identity performing the delete (required)")
	removeCmd.Flags().BoolVarP(&removeYes, "yes", "y", false, "skip the confirmation prompt")
	_ = removeCmd.MarkFlagRequired("as")
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	ids := make([]uuid.UUID, 0, len(args))
	for _, arg := range args {
		id, parseErr := uuid.Parse(arg)
		if parseErr != nil {
			return fmt.Errorf("invalid photo id %q: %w", arg, parseErr)
		}
		ids = append(ids, id)
	}

	if !removeYes {
		prompt := promptui.Prompt{
			Label:     fmt.Sprintf("Permanently delete %d photo(s)", len(ids)),
			IsConfirm: true,
		}
		if _, promptErr := prompt.Run(); promptErr != nil {
			fmt.Println("Cancelled.")
			return nil //nolint:nilerr // User cancelled, not an error
		}
	}

	d, err := openDeps(ctx, cfg, openOptions{blobs: true})
	if err != nil {
		return err
	}
	defer d.Close()

	service, err := d.service()
	if err != nil {
		return err
	}

	removed := 0
	notFound := 0

	for _, id := range ids {
		err := service.Delete(ctx, removeAs, folio.DeleteRequest{ID: id, Confirmed: true})
		if errors.Is(err, folio.ErrNotFound) {
			notFound++
			slog.Warn("not found", "id", id)
			continue
		}
		if err != nil {
			return fmt.Errorf("remove %s: %w", id, err)
		}
		removed++
		slog.Info("removed", "id", id)
	}

	slog.Info("remove complete", "removed", removed, "not_found", notFound)
	return nil
}
