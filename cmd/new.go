package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tunedinout/esfiddle/internal/core/domain"
	"github.com/tunedinout/esfiddle/pkg/ui"
)

var (
	newFromFile string
	newEdit     bool
	newEmpty    bool
)

// newCmd represents the new command
var newCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Create a new playground file",
	Long: `Create a new playground file in the local store.

The file starts with a small starter for its kind (.js, .html, .css),
or with the contents of --from (use "-" for stdin).

Examples:
  esfiddle new main.js
  esfiddle new index.html --edit
  esfiddle new snippet.js --from ./snippet.js
  cat notes.txt | esfiddle new notes.txt --from -`,
	Args: cobra.ExactArgs(1),
	RunE: runNew,
}

func init() {
	newCmd.Flags().StringVar(&newFromFile, "from", "", "Initial content from a file ('-' for stdin)")
	newCmd.Flags().BoolVarP(&newEdit, "edit", "e", false, "Open the new file in your editor")
	newCmd.Flags().BoolVar(&newEmpty, "empty", false, "Start with an empty file")
}

func runNew(cmd *cobra.Command, args []string) error {
	if err := requireStorage(); err != nil {
		return err
	}

	name := args[0]
	if err := domain.ValidateName(name); err != nil {
		fmt.Println(ui.FormatError(err.Error()))
		return err
	}

	content := starterContent(domain.KindFromName(name))
	if newEmpty {
		content = ""
	}
	if newFromFile != "" {
		data, err := readSource(newFromFile)
		if err != nil {
			fmt.Println(ui.FormatError("Failed to read " + newFromFile))
			return err
		}
		content = data
	}

	ctx := getContext()
	rec, err := fileRepo.StoreFile(ctx, domain.FileRecord{Name: name, Data: content})
	if err != nil {
		fmt.Println(ui.FormatError("Failed to save file"))
		return err
	}

	fmt.Println(ui.FormatSuccess("Created " + rec.Name))
	fmt.Println(ui.RenderKeyValue("ID", rec.ID))

	if newEdit {
		return editRecord(ctx, rec)
	}
	return nil
}

// readSource reads a path, or stdin for "-"
func readSource(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}

// starterContent returns the initial text for a new file of kind
func starterContent(kind domain.Kind) string {
	switch kind {
	case domain.KindJavaScript:
		return "console.log('Hello, esfiddle!');\n"
	case domain.KindHTML:
		return `<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    <title>esfiddle</title>
  </head>
  <body>
  </body>
</html>
`
	case domain.KindCSS:
		return "body {\n  margin: 0;\n}\n"
	default:
		return ""
	}
}
