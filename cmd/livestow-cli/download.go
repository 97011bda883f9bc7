package main

import (
	"os"

	"github.com/sagarc03/livestow/clientcli"
	"github.com/spf13/cobra"
)

var (
	downloadOutput string
	downloadStdout bool
)

var downloadCmd = &cobra.Command{
	Use:     "download <name> [local-path|-]",
	Aliases: []string{"tail"},
	Short:   "Download an object, following it while it is uploaded",
	Long: `Download an object.

If the object is still being uploaded the download keeps receiving data as it
arrives and ends when the upload finishes or goes quiet. The outcome reported
by the server ("complete" or "stale") is printed afterwards.

Examples:
  livestow-cli download live/cam1.ts
  livestow-cli download live/cam1.ts ./cam1.ts
  livestow-cli download --stdout live/cam1.ts | ffplay -
  livestow-cli tail logs/app.log -`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().StringVarP(&downloadOutput, "output", "o", "", "output file path")
	downloadCmd.Flags().BoolVar(&downloadStdout, "stdout", false, "write to stdout")
}

func runDownload(cmd *cobra.Command, args []string) error {
	localPath := ""
	if len(args) > 1 {
		localPath = args[1]
	}
	if downloadOutput != "" {
		localPath = downloadOutput
	}
	if downloadStdout {
		localPath = "-"
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	result, err := client.Download(cmd.Context(), clientcli.DownloadOptions{
		Name:      args[0],
		LocalPath: localPath,
		Stdout:    cmd.OutOrStdout(),
	})
	if err != nil {
		return handleError(os.Stderr, err)
	}

	// Keep stdout clean when it carries the object itself.
	out := os.Stdout
	if result.LocalPath == "-" {
		if !jsonOutput {
			return nil
		}
		out = os.Stderr
	}
	return getFormatter().FormatDownload(out, result)
}
