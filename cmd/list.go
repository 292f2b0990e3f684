package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tunedinout/esfiddle/internal/core/domain"
	"github.com/tunedinout/esfiddle/internal/core/services"
	"github.com/tunedinout/esfiddle/pkg/ui"
)

var (
	listKind    string
	listSortBy  string
	listReverse bool
	listSearch  string
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List all stored files",
	Aliases: []string{"ls"},
	Long: `List all stored files in a table format.

Examples:
  esfiddle list
  esfiddle list --kind js
  esfiddle list --sort name --reverse
  esfiddle list --search util`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listKind, "kind", "", "Filter by kind (js, html, css, text)")
	// Sort defaults to "date", but we handle config override in runList
	listCmd.Flags().StringVar(&listSortBy, "sort", "date", "Sort by field (date, name)")
	listCmd.Flags().BoolVar(&listReverse, "reverse", false, "Reverse sort order")
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "Fuzzy search by name or id")
}

func runList(cmd *cobra.Command, args []string) error {
	if err := requireStorage(); err != nil {
		return err
	}

	// If the flag was NOT changed by the user, use the config default
	if !cmd.Flags().Changed("sort") {
		listSortBy = appConfig.DefaultSort
	}
	if !cmd.Flags().Changed("reverse") {
		listReverse = appConfig.ReverseSort
	}

	ctx := getContext()

	var files []domain.FileRecord
	if strings.TrimSpace(listSearch) != "" {
		files = listService.Search(ctx, listSearch)
	} else {
		resp := listService.Execute(ctx, services.ListRequest{
			Kind:    domain.Kind(strings.ToLower(listKind)),
			SortBy:  listSortBy,
			Reverse: listReverse,
		})
		files = resp.Files
	}

	if len(files) == 0 {
		switch {
		case listSearch != "":
			fmt.Println(ui.FormatWarning("No files found matching: " + listSearch))
		case listKind != "":
			fmt.Println(ui.FormatWarning("No files found of kind: " + listKind))
		default:
			fmt.Println(ui.FormatWarning("No files found"))
			fmt.Println(ui.FormatInfo("Create your first file with: esfiddle new main.js"))
		}
		return nil
	}

	fmt.Println(ui.FormatTitle("Files"))
	fmt.Println()
	fmt.Print(renderFileTable(files))
	fmt.Println()
	fmt.Println(ui.FormatMuted(fmt.Sprintf("Total: %d file(s)", len(files))))

	return nil
}

// renderFileTable renders files as the standard listing table
func renderFileTable(files []domain.FileRecord) string {
	table := ui.NewTable([]ui.TableColumn{
		{Header: "ID", Width: 8, Align: "left"},
		{Header: "Name", Width: 20, MaxWidth: 40, Align: "left"},
		{Header: "Kind", Width: 4, Align: "left"},
		{Header: "Last Written", Width: 16, Align: "left"},
		{Header: "Size", Width: 8, Align: "right"},
	})

	for _, f := range files {
		table.AddRow([]string{
			f.ShortID(),
			f.Name,
			string(f.Kind()),
			f.GetDisplayDate(displayDateFormat()),
			humanSize(len(f.Data)),
		})
	}

	return table.Render()
}
