package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tunedinout/esfiddle/internal/core/domain"
	"github.com/tunedinout/esfiddle/internal/core/services"
	"github.com/tunedinout/esfiddle/pkg/ui"
)

var (
	watchQuiet       bool
	watchMetricsAddr string
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Autosave a directory of files into the store",
	Long: `Watch a directory and store every file written in it.

Each file is matched to a stored file by name; unknown names become new
files. Writes are debounced per file, so a burst of saves is stored once.
Deleting a file on disk does not delete it from the store.

Use --metrics-addr to expose Prometheus metrics on /metrics and a
liveness check on /health.

Examples:
  esfiddle watch
  esfiddle watch ./playground --metrics-addr :9090`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVarP(&watchQuiet, "quiet", "q", false, "Suppress save notifications")
	watchCmd.Flags().StringVar(&watchMetricsAddr, "metrics-addr", "", "Serve metrics on this address (e.g. :9090)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := requireStorage(); err != nil {
		return err
	}

	ctx := getContext()

	dir := appVault.WorkspacePath
	if len(args) > 0 {
		dir = args[0]
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	ids := knownIDsByName(fileRepo.GetAllFiles(ctx))

	autosave := services.NewAutosaveService(fileRepo, services.AutosaveOptions{
		Wait:    appConfig.DebounceWait(),
		Logger:  logger,
		Metrics: metrics,
		OnSaved: func(r services.SaveResult) {
			if watchQuiet {
				return
			}
			if r.Err != nil {
				fmt.Println(ui.FormatError("Save failed: " + r.Err.Error()))
				return
			}
			fmt.Println(ui.FormatSaved(fmt.Sprintf("%s saved (%s)", r.Record.Name, humanSize(len(r.Record.Data)))))
		},
	})
	defer autosave.Close()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	if watchMetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, watchMetricsAddr, logger); err != nil {
				fmt.Println(ui.FormatError("Metrics server failed: " + err.Error()))
			}
		}()
	}

	if !watchQuiet {
		fmt.Println(ui.FormatInfo("Watching for changes..."))
		fmt.Println(ui.FormatMuted("Directory: " + dir))
		if watchMetricsAddr != "" {
			fmt.Println(ui.FormatMuted("Metrics: http://" + metricsHost(watchMetricsAddr) + "/metrics"))
		}
		fmt.Println(ui.FormatMuted("Press Ctrl+C to stop"))
		fmt.Println()
	}

	watchDir(ctx, watcher, func(path string) {
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			return
		}
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("failed to read changed file", zap.String("path", path), zap.Error(err))
			return
		}

		name := filepath.Base(path)
		if err := autosave.Change(ctx, ids[name], name, string(data)); err != nil {
			logger.Warn("autosave rejected change", zap.String("path", path), zap.Error(err))
		}
	})

	if !watchQuiet {
		fmt.Println()
		fmt.Println(ui.FormatMuted("Watch stopped, flushing pending saves..."))
	}
	return nil
}

// knownIDsByName maps on-disk file names to stored ids. When several records
// share a name the newest wins.
func knownIDsByName(files []domain.FileRecord) map[string]string {
	newest := make(map[string]domain.FileRecord, len(files))
	for _, f := range files {
		for _, key := range []string{f.Name, domain.SafeFilename(f.Name)} {
			if cur, ok := newest[key]; !ok || f.Timestamp >= cur.Timestamp {
				newest[key] = f
			}
		}
	}

	ids := make(map[string]string, len(newest))
	for key, f := range newest {
		ids[key] = f.ID
	}
	return ids
}

// metricsHost turns ":9090" into "localhost:9090"
func metricsHost(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "localhost" + addr
	}
	return addr
}
