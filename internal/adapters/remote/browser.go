package remote

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
)

// Browser opens URLs with the operating system's default handler
type Browser struct {
	// Command overrides the platform opener (for example "firefox")
	Command string
}

// Open starts the opener detached and returns without waiting for it
func (b *Browser) Open(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var cmd *exec.Cmd
	switch {
	case b.Command != "":
		cmd = exec.Command(b.Command, url)
	case runtime.GOOS == "darwin":
		cmd = exec.Command("open", url)
	case runtime.GOOS == "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open '%s': %w", url, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
