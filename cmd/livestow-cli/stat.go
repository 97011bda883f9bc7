package main

import (
	"os"

	"github.com/spf13/cobra"
)

var statCmd = &cobra.Command{
	Use:   "stat <name>",
	Short: "Show object metadata",
	Long: `Show the size, chunk count and state of an object without downloading it.

Examples:
  livestow-cli stat live/cam1.ts
  livestow-cli stat --json live/cam1.ts`,
	Args: cobra.ExactArgs(1),
	RunE: runStat,
}

func runStat(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	info, err := client.Stat(cmd.Context(), args[0])
	if err != nil {
		return handleError(os.Stderr, err)
	}

	return getFormatter().FormatStat(os.Stdout, info)
}
