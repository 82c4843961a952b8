// Package clientcli provides a client library for requesting signed URLs from
// a Signet server.
//
// It supports signing, downloading through a freshly signed URL, and paging
// through the server's issuance ledger. The package includes profile-based
// configuration for managing connections to multiple servers.
//
// # Basic Usage
//
// Create a client and sign a URL:
//
//	cfg := &clientcli.Config{
//		Endpoint: "http://localhost:8080",
//		Bucket:   "reports",
//	}
//
//	client, err := clientcli.New(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	results, err := client.Sign(ctx, clientcli.SignOptions{
//		Objects: []string{"q1.pdf"},
//		Expires: 600,
//	})
//
// Server errors are returned as *APIError and can be matched with errors.Is
// against ErrInvalidRequest, ErrCredential, ErrBackend, and ErrNotFound.
//
// # Profile Configuration
//
// Use profiles to manage multiple server configurations:
//
//	configFile, err := clientcli.LoadConfigFile("~/.signet/config.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	profile, err := configFile.GetProfile("production")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	cfg := clientcli.ConfigFromProfile(profile)
//	client, err := clientcli.New(cfg)
//
// # Output Formatting
//
// Use formatters for human-readable or JSON output:
//
//	formatter := clientcli.NewFormatter(jsonOutput, quiet)
//	formatter.FormatSign(os.Stdout, results)
package clientcli
