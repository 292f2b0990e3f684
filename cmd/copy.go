package cmd

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/tunedinout/esfiddle/internal/core/domain"
	"github.com/tunedinout/esfiddle/pkg/ui"
)

var copyCmd = &cobra.Command{
	Use:     "copy [file]",
	Short:   "Copy a file's content to the clipboard",
	Aliases: []string{"cp"},
	Long: `Copy the content of a stored file to the system clipboard.
Without an argument the last used file is copied.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCopy,
}

func runCopy(cmd *cobra.Command, args []string) error {
	if err := requireStorage(); err != nil {
		return err
	}

	ctx := getContext()

	var rec *domain.FileRecord
	if len(args) == 0 {
		rec = fileRepo.LoadLastUsedFile(ctx)
		if rec == nil {
			fmt.Println(ui.FormatWarning("No files found"))
			return nil
		}
	} else {
		selected, err := selectFile(ctx, args)
		if err != nil {
			return reportSelectError(err)
		}
		rec = selected
	}

	if clipboard.Unsupported {
		fmt.Println(ui.FormatError("No clipboard utility available"))
		return fmt.Errorf("clipboard unsupported")
	}
	if err := clipboard.WriteAll(rec.Data); err != nil {
		fmt.Println(ui.FormatError("Failed to copy to clipboard"))
		return err
	}

	fmt.Println(ui.FormatSuccess(fmt.Sprintf("Copied %s (%s) to the clipboard", rec.Name, humanSize(len(rec.Data)))))
	return nil
}
