// Package clientcli is the client library behind folio-cli, the admin
// command line for a folio gallery server.
//
// It uploads images as multipart forms, lists and deletes photos, and toggles
// featured state, authenticating with a bearer session token issued by
// `folio token`. Profiles let one client manage several servers.
//
// # Basic Usage
//
//	client, err := clientcli.New(&clientcli.Config{
//		Server: "http://localhost:5708",
//		Token:  os.Getenv("FOLIO_TOKEN"),
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	results, err := client.Upload(ctx, clientcli.UploadOptions{
//		LocalPath: "./heron.jpg",
//		Category:  "wildlife",
//	})
//
// # Profile Configuration
//
//	configFile, err := clientcli.LoadConfigFile(clientcli.DefaultConfigPath())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	profile, err := configFile.GetProfile("production")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client, err := clientcli.New(clientcli.ConfigFromProfile(profile))
package clientcli
