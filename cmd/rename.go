package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tunedinout/esfiddle/internal/core/domain"
	"github.com/tunedinout/esfiddle/pkg/ui"
)

var renameCmd = &cobra.Command{
	Use:     "rename <file> <new-name>",
	Short:   "Rename a stored file",
	Aliases: []string{"mv"},
	Long: `Rename a stored file. The id and content are kept.

Examples:
  esfiddle rename main.js app.js
  esfiddle rename 3f2a index.html`,
	Args: cobra.ExactArgs(2),
	RunE: runRename,
}

func runRename(cmd *cobra.Command, args []string) error {
	if err := requireStorage(); err != nil {
		return err
	}

	newName := args[1]
	if err := domain.ValidateName(newName); err != nil {
		fmt.Println(ui.FormatError(err.Error()))
		return err
	}

	ctx := getContext()
	rec, err := selectFile(ctx, args[:1])
	if err != nil {
		return reportSelectError(err)
	}

	oldName := rec.Name
	rec.Name = newName
	updated, err := fileRepo.StoreFile(ctx, *rec)
	if err != nil {
		fmt.Println(ui.FormatError("Failed to rename file"))
		return err
	}

	fmt.Println(ui.FormatSuccess(fmt.Sprintf("Renamed %s → %s", oldName, updated.Name)))
	return nil
}
