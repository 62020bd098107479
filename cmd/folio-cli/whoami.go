package main

import (
	"os"

	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the identity and access level of the current token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := getClient(false)
		if err != nil {
			return reportError(err)
		}

		info, err := client.Session(cmd.Context())
		if err != nil {
			return reportError(err)
		}

		return getFormatter().FormatSession(os.Stdout, info)
	},
}
