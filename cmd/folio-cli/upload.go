package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/folio/clientcli"
)

var uploadOpts clientcli.UploadOptions

var uploadCmd = &cobra.Command{
	Use:   "upload <local-path>",
	Short: "Upload images as gallery photos",
	Long: `Upload an image, or a directory of images with -r.

The title defaults to the file name. Directory uploads always title each
photo after its own file.

Examples:
  folio-cli upload --category wildlife heron.jpg
  folio-cli upload --category wildlife --title "Heron at dawn" --featured heron.jpg
  folio-cli upload --category cinematography --tags "film, 35mm" -r ./stills`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	f := uploadCmd.Flags()
	f.StringVar(&uploadOpts.Category, "category", "", "category: cinematography, wildlife (required)")
	f.StringVar(&uploadOpts.Title, "title", "", "photo title (default: file name)")
	f.StringVar(&uploadOpts.Description, "description", "", "description")
	f.StringVar(&uploadOpts.Caption, "caption", "", "caption shown on the tile")
	f.StringVar(&uploadOpts.Story, "story", "", "long-form story")
	f.StringVar(&uploadOpts.Tags, "tags", "", "comma-separated tags")
	f.BoolVar(&uploadOpts.Featured, "featured", false, "mark as featured")
	f.BoolVarP(&uploadOpts.Recursive, "recursive", "r", false, "upload a directory recursively")
	_ = uploadCmd.MarkFlagRequired("category")
}

func runUpload(cmd *cobra.Command, args []string) error {
	client, err := getClient(true)
	if err != nil {
		return reportError(err)
	}

	opts := uploadOpts
	opts.LocalPath = args[0]

	results, err := client.Upload(cmd.Context(), opts)
	if len(results) > 0 {
		if fmtErr := getFormatter().FormatUpload(os.Stdout, results); fmtErr != nil {
			return fmtErr
		}
	}
	if err != nil {
		if len(results) == 1 {
			return &exitError{code: 1}
		}
		return reportError(err)
	}

	for i := range results {
		if results[i].Err != nil {
			return &exitError{code: 1}
		}
	}

	return nil
}
