package main

import (
	"os"

	"github.com/sagarc03/livestow/clientcli"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <name> [name...]",
	Short: "Delete objects from the server",
	Long: `Delete one or more objects.

Downloads already in progress keep reading the data they had access to.

Examples:
  livestow-cli delete live/cam1.ts
  livestow-cli delete old/a.ts old/b.ts old/c.ts
  livestow-cli delete -q temp/file.bin`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	results, err := client.Delete(cmd.Context(), clientcli.DeleteOptions{Names: args})
	if err != nil {
		return handleError(os.Stderr, err)
	}

	if err := getFormatter().FormatDelete(os.Stdout, results); err != nil {
		return err
	}

	if clientcli.HasDeleteErrors(results) {
		return &exitError{code: 1}
	}

	return nil
}
