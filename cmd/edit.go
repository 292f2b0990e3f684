package cmd

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tunedinout/esfiddle/internal/core/domain"
	"github.com/tunedinout/esfiddle/internal/core/services"
	"github.com/tunedinout/esfiddle/pkg/ui"
)

// editCmd represents the edit command
var editCmd = &cobra.Command{
	Use:   "edit [file]",
	Short: "Edit a file with autosave",
	Long: `Open a file in your editor and save it back to the store as you type.

Every write the editor makes is picked up and stored once you pause
(debounce_ms in the config, 300ms by default). The last edit is always
saved when the editor exits.

Examples:
  esfiddle edit
  esfiddle edit main.js`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEdit,
}

func runEdit(cmd *cobra.Command, args []string) error {
	if err := requireStorage(); err != nil {
		return err
	}

	ctx := getContext()

	var rec *domain.FileRecord
	if len(args) == 0 {
		rec = fileRepo.LoadLastUsedFile(ctx)
	}
	if rec == nil {
		selected, err := selectFile(ctx, args)
		if err != nil {
			return reportSelectError(err)
		}
		rec = selected
	}

	return editRecord(ctx, rec)
}

// editRecord runs the editor on rec with the autosave pipeline attached
func editRecord(ctx context.Context, rec *domain.FileRecord) error {
	path, err := materialize(rec)
	if err != nil {
		fmt.Println(ui.FormatError("Failed to write workspace file"))
		return err
	}

	var saves, failures atomic.Int32
	autosave := services.NewAutosaveService(fileRepo, services.AutosaveOptions{
		Wait:    appConfig.DebounceWait(),
		Logger:  logger,
		Metrics: metrics,
		OnSaved: func(r services.SaveResult) {
			if r.Err != nil {
				failures.Add(1)
				return
			}
			saves.Add(1)
		},
	})

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	// Watch the directory: editors that save by rename replace the file
	if err := watcher.Add(appVault.WorkspacePath); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch workspace: %w", err)
	}

	onChange := func(changed string) {
		if changed != path {
			return
		}
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Debug("workspace file not readable yet", zap.String("path", path), zap.Error(err))
			return
		}
		if err := autosave.Change(ctx, rec.ID, rec.Name, string(data)); err != nil {
			logger.Warn("autosave rejected change", zap.Error(err))
		}
	}

	watchCtx, stopWatching := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		watchDir(watchCtx, watcher, onChange)
	}()

	fmt.Println(ui.FormatInfo("Editing " + rec.Name + " (autosave on)"))
	editorErr := runEditor(ctx, path)

	stopWatching()
	watcher.Close()
	wg.Wait()

	// The final content is saved even if no write event was observed
	onChange(path)
	autosave.Close()

	if editorErr != nil {
		fmt.Println(ui.FormatWarning("Editor exited with an error: " + editorErr.Error()))
	}
	if n := failures.Load(); n > 0 {
		fmt.Println(ui.FormatError(fmt.Sprintf("%d save(s) failed; see %s", n, appVault.LogFilePath())))
		return domain.ErrStorageWriteFailed
	}
	fmt.Println(ui.FormatSaved(fmt.Sprintf("Saved %s (%d write(s))", rec.Name, saves.Load())))
	return nil
}
