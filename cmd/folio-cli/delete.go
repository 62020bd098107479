package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/sagarc03/folio/clientcli"
)

var deleteYes bool

var deleteCmd = &cobra.Command{
	Use:   "delete <photo-id> [photo-id...]",
	Short: "Delete photos and their images",
	Long: `Delete one or more photos. The server removes the image first, then the
record, and refuses deletes that are not confirmed; you will be prompted
unless --yes is given.

Examples:
  folio-cli delete 6f1c7a52-8a43-4a4c-9d0b-3c1f7e2d9a10
  folio-cli delete --yes <id1> <id2>`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "skip the confirmation prompt")
}

func runDelete(cmd *cobra.Command, args []string) error {
	ids := make([]uuid.UUID, 0, len(args))
	for _, arg := range args {
		id, err := uuid.Parse(arg)
		if err != nil {
			return reportError(fmt.Errorf("invalid photo id %q: %w", arg, err))
		}
		ids = append(ids, id)
	}

	client, err := getClient(true)
	if err != nil {
		return reportError(err)
	}

	if !deleteYes {
		prompt := promptui.Prompt{
			Label:     fmt.Sprintf("Permanently delete %d photo(s)", len(ids)),
			IsConfirm: true,
		}
		if _, promptErr := prompt.Run(); promptErr != nil {
			fmt.Println("Cancelled.")
			return nil //nolint:nilerr // User cancelled, not an error
		}
	}

	results, err := client.Delete(cmd.Context(), clientcli.DeleteOptions{IDs: ids, Confirmed: true})
	if err != nil {
		return reportError(err)
	}

	if err := getFormatter().FormatDelete(os.Stdout, results); err != nil {
		return err
	}

	if clientcli.HasDeleteErrors(results) {
		return &exitError{code: 1}
	}
	return nil
}
