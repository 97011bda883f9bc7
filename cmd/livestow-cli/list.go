package main

import (
	"os"

	"github.com/sagarc03/livestow/clientcli"
	"github.com/spf13/cobra"
)

var listPrefix string

var listCmd = &cobra.Command{
	Use:     "list [prefix]",
	Aliases: []string{"ls"},
	Short:   "List objects on the server",
	Long: `List objects held by the server, including uploads still in progress.

Examples:
  livestow-cli list
  livestow-cli list live/
  livestow-cli list --prefix logs/ --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listPrefix, "prefix", "", "filter by name prefix")
}

func runList(cmd *cobra.Command, args []string) error {
	prefix := listPrefix
	if len(args) > 0 {
		prefix = args[0]
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	result, err := client.List(cmd.Context(), clientcli.ListOptions{Prefix: prefix})
	if err != nil {
		return handleError(os.Stderr, err)
	}

	return getFormatter().FormatList(os.Stdout, result)
}
