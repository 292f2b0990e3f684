package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tunedinout/esfiddle/pkg/ui"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:     "delete [file]",
	Short:   "Delete a stored file",
	Aliases: []string{"rm"},
	Long: `Delete a file from the local store.

Examples:
  esfiddle delete main.js
  esfiddle delete 3f2a --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Delete without confirmation")
}

func runDelete(cmd *cobra.Command, args []string) error {
	if err := requireStorage(); err != nil {
		return err
	}

	ctx := getContext()
	rec, err := selectFile(ctx, args)
	if err != nil {
		return reportSelectError(err)
	}

	if !deleteForce {
		fmt.Println(ui.RenderKeyValue("Name", rec.Name))
		fmt.Println(ui.RenderKeyValue("ID", rec.ID))
		fmt.Println(ui.RenderKeyValue("Last written", rec.GetDisplayDate(displayDateFormat())))
		fmt.Println()
		if !confirm("Delete this file?", os.Stdin) {
			fmt.Println(ui.FormatInfo("Deletion cancelled."))
			return nil
		}
	}

	if _, ok := fileRepo.RemoveFile(ctx, rec.ID); !ok {
		fmt.Println(ui.FormatError("Failed to delete " + rec.Name))
		return fmt.Errorf("failed to delete %s", rec.ID)
	}

	// The workspace copy is stale once the record is gone
	_ = os.Remove(workspacePath(rec))

	fmt.Println(ui.FormatSuccess("Deleted " + rec.Name))
	return nil
}
