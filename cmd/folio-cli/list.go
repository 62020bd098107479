package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/folio/clientcli"
)

var listCmd = &cobra.Command{
	Use:   "list [category]",
	Short: "List photos in display order",
	Long: `List photos featured first, then by display order and newest first.

Listing is public and works without a token.

Examples:
  folio-cli list
  folio-cli list wildlife
  folio-cli list --json cinematography`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	client, err := getClient(false)
	if err != nil {
		return reportError(err)
	}

	opts := clientcli.ListOptions{}
	if len(args) > 0 {
		opts.Category = args[0]
	}

	result, err := client.List(cmd.Context(), opts)
	if err != nil {
		return reportError(err)
	}

	return getFormatter().FormatList(os.Stdout, result)
}
