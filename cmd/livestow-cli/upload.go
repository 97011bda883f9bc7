package main

import (
	"os"

	"github.com/sagarc03/livestow/clientcli"
	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <local-path|-> [name]",
	Short: "Upload a file or stdin",
	Long: `Upload a file, or stdin when the path is "-".

Stdin is streamed as it is read, so readers can follow a producer that is
still writing. The name defaults to the local path and is required for stdin.

Examples:
  livestow-cli upload ./clip.ts media/clip.ts
  livestow-cli upload ./clip.ts
  tail -f app.log | livestow-cli upload - logs/app.log`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runUpload,
}

func runUpload(cmd *cobra.Command, args []string) error {
	opts := clientcli.UploadOptions{
		LocalPath: args[0],
		Stdin:     cmd.InOrStdin(),
	}
	if len(args) > 1 {
		opts.Name = args[1]
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	result, err := client.Upload(cmd.Context(), opts)
	if err != nil {
		return handleError(os.Stderr, err)
	}

	return getFormatter().FormatUpload(os.Stdout, result)
}
