package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"docchat/internal/config"
	"docchat/internal/models"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <path>...",
	Short: "Upload documents for ingestion",
	Long: `Upload files to the backend for chunking and indexing.

Paths may be files or directories. Directories are scanned recursively and
filtered to the allowed extensions from the config (.pdf, .txt, .docx and
.doc by default). All files travel in one request; the batch succeeds or
fails as a whole.

Examples:
  docchat upload report.pdf
  docchat upload ./contracts ./meeting-notes.txt`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	files, err := collectFiles(args, cfg)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("No files with allowed extensions found.")
		return nil
	}

	var total int64
	for _, f := range files {
		total += f.SizeBytes
	}
	fmt.Printf("Uploading %d file(s) (%s) to %s\n", len(files), models.FormatSize(total), apiClient.BaseURL())

	bar := uploadBar(total)
	res, err := apiClient.Upload(ctx, files, bar)
	_ = bar.Finish()
	fmt.Println()

	if err != nil {
		return fmt.Errorf("upload to %s: %w", apiClient.BaseURL(), err)
	}

	color.New(color.FgGreen, color.Bold).Printf("✓ %d document(s) uploaded\n", res.Uploaded())
	if verbose && res.Message != "" {
		fmt.Println(res.Message)
	}

	return nil
}

func uploadBar(total int64) *progressbar.ProgressBar {
	return progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(color.BlueString("staging")),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// collectFiles expands paths into upload descriptors. Directories are walked
// recursively and filtered to allowed extensions; an explicitly named file
// must carry an allowed extension itself.
func collectFiles(paths []string, cfg config.Config) ([]models.FileInfo, error) {
	var files []models.FileInfo

	add := func(path string, size int64) {
		files = append(files, models.FileInfo{
			Name:      filepath.Base(path),
			Path:      path,
			SizeBytes: size,
			Extension: models.FileExtension(path),
		})
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}

		if !info.IsDir() {
			if !cfg.AllowsExtension(models.FileExtension(path)) {
				return nil, fmt.Errorf("file type not allowed: %s (allowed: %s)",
					filepath.Base(path), strings.Join(cfg.AllowedExtensions, " "))
			}
			add(path, info.Size())
			continue
		}

		walkFn := func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !cfg.AllowsExtension(models.FileExtension(p)) {
				return nil
			}
			fi, err := d.Info()
			if err != nil {
				return err
			}
			add(p, fi.Size())
			return nil
		}
		if err := filepath.WalkDir(path, walkFn); err != nil {
			return nil, fmt.Errorf("scan directory: %w", err)
		}
	}

	return files, nil
}
