package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sagarc03/folio/clientcli"
)

var (
	featureOff   bool
	featureOrder int
)

var featureCmd = &cobra.Command{
	Use:   "feature <photo-id>",
	Short: "Feature a photo or change its display order",
	Long: `Mark a photo as featured, or clear the flag with --off. --order sets the
display order; featured photos always sort ahead of the rest.

Examples:
  folio-cli feature 6f1c7a52-8a43-4a4c-9d0b-3c1f7e2d9a10
  folio-cli feature --off <id>
  folio-cli feature --order 3 <id>`,
	Args: cobra.ExactArgs(1),
	RunE: runFeature,
}

func init() {
	featureCmd.Flags().BoolVar(&featureOff, "off", false, "clear the featured flag")
	featureCmd.Flags().IntVar(&featureOrder, "order", 0, "set the display order")
}

func runFeature(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return reportError(fmt.Errorf("invalid photo id %q: %w", args[0], err))
	}

	opts := clientcli.FeatureOptions{ID: id}

	// --order alone only reorders; otherwise the featured flag is set or cleared.
	orderSet := cmd.Flags().Changed("order")
	if orderSet {
		opts.DisplayOrder = &featureOrder
	}
	if !orderSet || cmd.Flags().Changed("off") {
		featured := !featureOff
		opts.Featured = &featured
	}

	client, err := getClient(true)
	if err != nil {
		return reportError(err)
	}

	photo, err := client.Feature(cmd.Context(), opts)
	if err != nil {
		return reportError(err)
	}

	return getFormatter().FormatPhoto(os.Stdout, photo)
}
