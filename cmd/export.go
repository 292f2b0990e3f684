package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tunedinout/esfiddle/internal/core/domain"
	"github.com/tunedinout/esfiddle/pkg/ui"
)

var (
	exportOutDir string
	exportAll    bool
	exportForce  bool
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write stored files to disk",
	Long: `Write one file, or every file with --all, to a directory.

File names are made filesystem-safe. Existing files are not overwritten
unless --force is given.

Examples:
  esfiddle export main.js
  esfiddle export --all --out ./backup`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutDir, "out", "o", ".", "Output directory")
	exportCmd.Flags().BoolVarP(&exportAll, "all", "a", false, "Export every stored file")
	exportCmd.Flags().BoolVarP(&exportForce, "force", "f", false, "Overwrite existing files")
}

func runExport(cmd *cobra.Command, args []string) error {
	if err := requireStorage(); err != nil {
		return err
	}

	ctx := getContext()

	var files []domain.FileRecord
	if exportAll {
		files = fileRepo.GetAllFiles(ctx)
		if len(files) == 0 {
			fmt.Println(ui.FormatWarning("No files to export"))
			return nil
		}
	} else {
		rec, err := selectFile(ctx, args)
		if err != nil {
			return reportSelectError(err)
		}
		files = []domain.FileRecord{*rec}
	}

	if err := os.MkdirAll(exportOutDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	written := 0
	for _, f := range files {
		path, err := exportFile(exportOutDir, f, exportForce)
		if err != nil {
			fmt.Println(ui.FormatWarning(err.Error()))
			continue
		}
		written++
		fmt.Println(ui.FormatSuccess(path))
	}

	fmt.Println()
	fmt.Println(ui.FormatInfo(fmt.Sprintf("Exported %d of %d file(s)", written, len(files))))
	return nil
}

// exportFile writes f into dir and returns the path. Name clashes get the
// short id appended unless force is set.
func exportFile(dir string, f domain.FileRecord, force bool) (string, error) {
	name := domain.SafeFilename(f.Name)
	path := filepath.Join(dir, name)

	if _, err := os.Stat(path); err == nil && !force {
		ext := filepath.Ext(name)
		path = filepath.Join(dir, name[:len(name)-len(ext)]+"-"+f.ShortID()+ext)
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("%s exists, use --force to overwrite", path)
		}
	}

	if err := os.WriteFile(path, []byte(f.Data), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
