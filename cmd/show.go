package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/tunedinout/esfiddle/internal/core/domain"
	"github.com/tunedinout/esfiddle/pkg/ui"
)

var (
	showHighlight bool
	showRaw       bool
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:     "show [file]",
	Short:   "Print a file (the last used one by default)",
	Aliases: []string{"cat"},
	Long: `Print the content of a stored file.

Without an argument the most recently written file is shown, the same file
the playground reopens on start. The argument may be an id, an id prefix,
or a name.

Examples:
  esfiddle show
  esfiddle show main.js
  esfiddle show 3f2a --raw`,
	Args: cobra.MaximumNArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showHighlight, "highlight", true, "Syntax-highlight the output")
	showCmd.Flags().BoolVar(&showRaw, "raw", false, "Print only the content, without header or colors")
}

func runShow(cmd *cobra.Command, args []string) error {
	if err := requireStorage(); err != nil {
		return err
	}

	ctx := getContext()

	var rec *domain.FileRecord
	if len(args) == 0 {
		rec = fileRepo.LoadLastUsedFile(ctx)
		if rec == nil {
			fmt.Println(ui.FormatWarning("No files found"))
			fmt.Println(ui.FormatInfo("Create your first file with: esfiddle new main.js"))
			return nil
		}
	} else {
		selected, err := selectFile(ctx, args)
		if err != nil {
			return reportSelectError(err)
		}
		rec = selected
	}

	if showRaw {
		fmt.Print(rec.Data)
		return nil
	}

	highlight := appConfig.SyntaxHighlighting
	if cmd.Flags().Changed("highlight") {
		highlight = showHighlight
	}
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		highlight = false
	}

	fmt.Println(ui.StyleHeader.Render(rec.Name) + " " +
		ui.FormatMuted(fmt.Sprintf("(%s, %s)", rec.ShortID(), rec.GetDisplayDate(displayDateFormat()))))
	fmt.Println()

	body := rec.Data
	if highlight {
		body = ui.Highlight(body, string(rec.Kind()), appConfig.HighlightStyle)
	}
	fmt.Print(body)
	if !strings.HasSuffix(body, "\n") {
		fmt.Println()
	}

	return nil
}
