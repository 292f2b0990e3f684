package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tunedinout/esfiddle/internal/core/domain"
	"github.com/tunedinout/esfiddle/internal/core/ports"
	"github.com/tunedinout/esfiddle/pkg/ui"
)

var importUpdate bool

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <path>...",
	Short: "Import files from disk into the store",
	Long: `Import one or more files from disk. Files are stored concurrently.

With --update, a file whose name matches a stored file replaces its
content instead of creating a new file.

Examples:
  esfiddle import main.js style.css index.html
  esfiddle import ./playground/*.js --update`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVarP(&importUpdate, "update", "u", false, "Update files with a matching name")
}

// importResult is the outcome for one path
type importResult struct {
	Path   string
	Record *domain.FileRecord
	Err    error
}

func runImport(cmd *cobra.Command, args []string) error {
	if err := requireStorage(); err != nil {
		return err
	}

	ctx := getContext()

	var existing map[string]string
	if importUpdate {
		existing = knownIDsByName(fileRepo.GetAllFiles(ctx))
	}

	results, err := importFiles(ctx, fileRepo, args, existing, appConfig.ImportWorkers)
	if err != nil {
		return err
	}

	failed := 0
	table := ui.NewTable([]ui.TableColumn{
		{Header: "Path", Width: 20, MaxWidth: 50},
		{Header: "ID", Width: 8},
		{Header: "Result", Width: 10},
	})
	for _, r := range results {
		if r.Err != nil {
			failed++
			table.AddRow([]string{r.Path, "-", ui.StyleError.Render(r.Err.Error())})
			continue
		}
		table.AddRow([]string{r.Path, r.Record.ShortID(), ui.StyleSuccess.Render("stored")})
	}
	fmt.Print(table.Render())
	fmt.Println()

	if failed > 0 {
		fmt.Println(ui.FormatWarning(fmt.Sprintf("%d of %d file(s) failed to import", failed, len(results))))
		return fmt.Errorf("%d import(s) failed", failed)
	}
	fmt.Println(ui.FormatSuccess(fmt.Sprintf("Imported %d file(s)", len(results))))
	return nil
}

// importFiles stores every path with at most workers writes in flight. A failure
// on one path does not stop the others; only context cancellation does.
func importFiles(ctx context.Context, files ports.FileStore, paths []string, existing map[string]string, workers int) ([]importResult, error) {
	if workers <= 0 {
		workers = 4
	}

	var mu sync.Mutex
	results := make([]importResult, 0, len(paths))
	record := func(r importResult) {
		mu.Lock()
		defer mu.Unlock()
		results = append(results, r)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, path := range paths {
		path := path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			name := filepath.Base(path)
			if err := domain.ValidateName(name); err != nil {
				record(importResult{Path: path, Err: err})
				return nil
			}
			data, err := os.ReadFile(path)
			if err != nil {
				record(importResult{Path: path, Err: fmt.Errorf("read failed: %w", err)})
				return nil
			}

			rec, err := files.StoreFile(gctx, domain.FileRecord{ID: existing[name], Name: name, Data: string(data)})
			record(importResult{Path: path, Record: rec, Err: err})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	return results, nil
}
