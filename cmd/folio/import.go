package main

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sagarc03/folio"
	"github.com/sagarc03/folio/config"
)

var importCmd = &cobra.Command{
	Use:   "import [flags] <file1> [file2] ...",
	Short: "Import image files as gallery photos",
	Long: `Upload image files from disk through the same pipeline as the HTTP API.

Each file becomes one photo titled after its file name. The --as identity
must hold the admin role.

Examples:
  # Import a single photo
  folio import --as owner@example.com --category wildlife heron.jpg

  # Import a directory of stills, featured, with tags
  folio import --as owner@example.com --category cinematography -r --tags "film, 35mm" ./stills`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

var (
	importAs        string
	importCategory  string
	importTags      string
	importFeatured  bool
	importRecursive bool
	importQuiet     bool
)

func init() {
	importCmd.Flags().StringVar(&importAs, "as", "", "admin identity performing the import (required)")
	importCmd.Flags().StringVar(&importCategory, "category", "", "category: cinematography, wildlife (required)")
	importCmd.Flags().StringVar(&importTags, "tags", "", "comma-separated tags applied to every photo")
	importCmd.Flags().BoolVar(&importFeatured, "featured", false, "mark imported photos as featured")
	importCmd.Flags().BoolVarP(&importRecursive, "recursive", "r", false, "recursively import directories")
	importCmd.Flags().BoolVarP(&importQuiet, "quiet", "q", false, "suppress per-file output")
	_ = importCmd.MarkFlagRequired("as")
	_ = importCmd.MarkFlagRequired("category")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if _, err := folio.ParseCategory(importCategory); err != nil {
		return err
	}

	var files []string
	for _, arg := range args {
		found, collectErr := collectFiles(arg, importRecursive)
		if collectErr != nil {
			return fmt.Errorf("collect files from %s: %w", arg, collectErr)
		}
		files = append(files, found...)
	}

	if len(files) == 0 {
		slog.Info("no files to import")
		return nil
	}

	d, err := openDeps(ctx, cfg, openOptions{blobs: true})
	if err != nil {
		return err
	}
	defer d.Close()

	service, err := d.service()
	if err != nil {
		return err
	}

	imported := 0
	for _, path := range files {
		photo, err := importFile(cmd, service, path)
		if err != nil {
			return fmt.Errorf("import %s: %w", path, err)
		}

		imported++
		if !importQuiet {
			slog.Info("imported", "file", path, "id", photo.ID, "url", photo.ImageURL)
		}
	}

	slog.Info("import complete", "imported", imported)
	return nil
}

func importFile(cmd *cobra.Command, service *folio.GalleryService, path string) (folio.Photo, error) {
	f, err := os.Open(path) //nolint:gosec // Path is from the operator's command line
	if err != nil {
		return folio.Photo{}, err
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return folio.Photo{}, err
	}

	draft := folio.Draft{
		Title:      folio.TitleFromFilename(path),
		Category:   importCategory,
		Tags:       importTags,
		IsFeatured: importFeatured,
	}
	payload := folio.Payload{
		Filename: filepath.Base(path),
		Size:     info.Size(),
		Content:  f,
	}

	return service.Upload(cmd.Context(), importAs, draft, payload)
}

// collectFiles gathers regular files from a path, optionally recursively.
// Hidden files are skipped when walking a directory.
func collectFiles(path string, recursive bool) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		return []string{path}, nil
	}

	if !recursive {
		return nil, fmt.Errorf("%s is a directory (use -r to import recursively)", path)
	}

	var files []string
	walkErr := filepath.WalkDir(path, func(walkPath string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if strings.HasPrefix(d.Name(), ".") && walkPath != path {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type().IsRegular() {
			files = append(files, walkPath)
		}
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	return files, nil
}
