// Package clientcli provides a client library for livestow servers.
//
// It supports upload, download (tail), stat, delete, and list operations,
// and profile-based configuration for managing several servers.
//
// # Basic Usage
//
// Create a client and pipe a live recording into it:
//
//	client, err := clientcli.New(&clientcli.Config{Endpoint: "http://127.0.0.1:8080"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := client.Upload(ctx, clientcli.UploadOptions{
//		LocalPath: "-",
//		Name:      "live/cam1.ts",
//	})
//
// Downloads follow the object while it is still being uploaded and return
// when the server ends the stream:
//
//	result, err := client.Download(ctx, clientcli.DownloadOptions{
//		Name:      "live/cam1.ts",
//		LocalPath: "cam1.ts",
//	})
//	fmt.Println(result.Outcome) // "complete" or "stale"
//
// # Profile Configuration
//
// Use profiles to manage multiple server configurations:
//
//	configFile, err := clientcli.LoadConfigFile(clientcli.DefaultConfigPath())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	profile, err := configFile.GetProfile("edge")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client, err := clientcli.New(clientcli.ConfigFromProfile(profile))
//
// # Output Formatting
//
// Use formatters for human-readable or JSON output:
//
//	formatter := clientcli.NewFormatter(jsonOutput, quiet)
//	formatter.FormatUpload(os.Stdout, result)
package clientcli
