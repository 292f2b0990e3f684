package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	fuzzyfinder "github.com/ktr0731/go-fuzzyfinder"

	"github.com/tunedinout/esfiddle/internal/core/domain"
	"github.com/tunedinout/esfiddle/internal/core/services"
	"github.com/tunedinout/esfiddle/pkg/ui"
)

// errCancelled is returned when the user backs out of a prompt
var errCancelled = errors.New("cancelled")

// GetPreferredEditor returns the editor command from config, env, or default
func GetPreferredEditor() string {
	// 1. Check Config
	if appConfig != nil && appConfig.Editor != "" {
		return appConfig.Editor
	}
	// 2. Check Environment
	if env := os.Getenv("EDITOR"); env != "" {
		return env
	}
	// 3. Fallback
	return "vi"
}

// OpenFile opens a file with the OS default application (a browser for .html)
func OpenFile(path string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}

	// Start() detaches so esfiddle can exit while the viewer stays open
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open '%s': %w", path, err)
	}
	go func() { _ = cmd.Wait() }()

	return nil
}

// runEditor runs the preferred editor on path and waits for it to exit
func runEditor(ctx context.Context, path string) error {
	editor := GetPreferredEditor()
	fields := strings.Fields(editor)
	if len(fields) == 0 {
		return fmt.Errorf("no editor configured")
	}

	args := append(fields[1:], path)
	// GUI editors from the VS Code family return immediately unless told to wait
	lower := strings.ToLower(fields[0])
	if strings.Contains(lower, "code") || strings.Contains(lower, "cursor") || strings.Contains(lower, "windsurf") {
		args = append([]string{"--wait"}, args...)
	}

	c := exec.CommandContext(ctx, fields[0], args...)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	return c.Run()
}

// selectFile picks a file from args[0] or, without args, interactively
func selectFile(ctx context.Context, args []string) (*domain.FileRecord, error) {
	if len(args) > 0 {
		rec, err := listService.Resolve(ctx, args[0])
		if err == nil {
			return rec, nil
		}
		if !errors.Is(err, services.ErrAmbiguousRef) && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}

		// Fall back to a fuzzy search over names
		matches := listService.Search(ctx, args[0])
		switch len(matches) {
		case 0:
			return nil, fmt.Errorf("%w: '%s'", domain.ErrNotFound, args[0])
		case 1:
			return &matches[0], nil
		default:
			return promptSelection(matches, os.Stdin)
		}
	}

	files := listService.Execute(ctx, services.ListRequest{SortBy: "date"}).Files
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: the store is empty", domain.ErrNotFound)
	}
	if len(files) == 1 {
		return &files[0], nil
	}
	return pickFile(files)
}

// pickFile shows the fuzzy finder over files
func pickFile(files []domain.FileRecord) (*domain.FileRecord, error) {
	idx, err := fuzzyfinder.Find(
		files,
		func(i int) string {
			return files[i].Name
		},
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return ""
			}
			f := files[i]
			preview := fmt.Sprintf("Name: %s\nID: %s\nLast written: %s\n\n",
				f.Name,
				f.ID,
				f.GetDisplayDate(displayDateFormat()))
			return preview + previewLines(f.Data, h)
		}),
	)
	if err != nil {
		// User cancelled (Ctrl+C or ESC)
		return nil, errCancelled
	}
	return &files[idx], nil
}

// promptSelection prints a numbered list and reads the choice from in
func promptSelection(files []domain.FileRecord, in io.Reader) (*domain.FileRecord, error) {
	fmt.Println(ui.FormatInfo(fmt.Sprintf("Found %d matches:", len(files))))
	fmt.Println()
	for i, f := range files {
		fmt.Printf("  %d. %s %s\n", i+1, ui.StyleBold.Render(f.Name), ui.StyleMuted.Render("("+f.ShortID()+")"))
	}
	fmt.Println()

	reader := bufio.NewReader(in)
	for {
		fmt.Print(ui.StyleInfo.Render(fmt.Sprintf("Select a file (1-%d): ", len(files))))

		input, err := reader.ReadString('\n')
		if err != nil {
			return nil, errCancelled
		}

		selection, err := strconv.Atoi(strings.TrimSpace(input))
		if err != nil || selection < 1 || selection > len(files) {
			fmt.Println(ui.FormatWarning(fmt.Sprintf("Please enter a number between 1 and %d.", len(files))))
			continue
		}
		return &files[selection-1], nil
	}
}

// confirm asks a yes/no question; anything but y/yes is no
func confirm(prompt string, in io.Reader) bool {
	fmt.Print(ui.StyleWarning.Render(prompt + " (y/n): "))
	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && response == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(response))
	return answer == "y" || answer == "yes"
}

// previewLines returns at most n lines of content
func previewLines(content string, n int) string {
	if n <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.Join(lines, "\n")
}

// humanSize renders a byte count like "1.2 KB"
func humanSize(n int) string {
	switch {
	case n < 1024:
		return fmt.Sprintf("%d B", n)
	case n < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(n)/(1024*1024))
	}
}

func displayDateFormat() string {
	if appConfig != nil && appConfig.DisplayDateFormat != "" {
		return appConfig.DisplayDateFormat
	}
	return "2006-01-02 15:04"
}

// reportSelectError prints a message for selectFile failures; cancellation is not an error
func reportSelectError(err error) error {
	switch {
	case errors.Is(err, errCancelled):
		fmt.Println(ui.FormatInfo("Operation cancelled."))
		return nil
	case errors.Is(err, domain.ErrNotFound):
		fmt.Println(ui.FormatWarning(err.Error()))
		return nil
	default:
		fmt.Println(ui.FormatError(err.Error()))
		return err
	}
}
