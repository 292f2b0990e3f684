package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tunedinout/esfiddle/internal/core/domain"
	"github.com/tunedinout/esfiddle/pkg/ui"
)

// openCmd represents the open command
var openCmd = &cobra.Command{
	Use:   "open [file]",
	Short: "Open a file with the system viewer",
	Long: `Write a file into the workspace and open it with the default application.

HTML files open in your browser. Without an argument an interactive
fuzzy finder lets you pick the file.

Examples:
  esfiddle open
  esfiddle open index.html`,
	Args: cobra.MaximumNArgs(1),
	RunE: runOpen,
}

func runOpen(cmd *cobra.Command, args []string) error {
	if err := requireStorage(); err != nil {
		return err
	}

	ctx := getContext()
	rec, err := selectFile(ctx, args)
	if err != nil {
		return reportSelectError(err)
	}

	path, err := materialize(rec)
	if err != nil {
		fmt.Println(ui.FormatError("Failed to write workspace file"))
		return err
	}

	if err := OpenFile(path); err != nil {
		fmt.Println(ui.FormatError(err.Error()))
		return err
	}

	fmt.Println(ui.FormatSuccess("Opened " + rec.Name))
	fmt.Println(ui.FormatMuted(path))
	return nil
}

// workspacePath is where rec is materialized for viewers and editors
func workspacePath(rec *domain.FileRecord) string {
	return appVault.GetWorkspacePath(domain.SafeFilename(rec.Name))
}

// materialize writes rec's content to its workspace path
func materialize(rec *domain.FileRecord) (string, error) {
	if err := os.MkdirAll(appVault.WorkspacePath, 0755); err != nil {
		return "", fmt.Errorf("failed to create workspace: %w", err)
	}
	path := workspacePath(rec)
	if err := os.WriteFile(path, []byte(rec.Data), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
