package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tunedinout/esfiddle/internal/core/domain"
	"github.com/tunedinout/esfiddle/pkg/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show storage and session status",
	Long: `Show where esfiddle keeps its data, how many files are stored,
and whether a remote session is online, offline, or expired.

This command does not start re-authentication; use 'esfiddle login'.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := getContext()

	fmt.Println(ui.FormatTitle("Storage"))
	fmt.Println(ui.RenderKeyValue("Vault", appVault.RootPath))
	fmt.Println(ui.RenderKeyValue("Database", appVault.DatabasePath))
	if fileRepo == nil {
		fmt.Println(ui.RenderKeyValue("State", ui.StyleError.Render("unavailable")))
	} else {
		files := fileRepo.GetAllFiles(ctx)
		fmt.Println(ui.RenderKeyValue("Files", fmt.Sprintf("%d", len(files))))
		if last := fileRepo.LoadLastUsedFile(ctx); last != nil {
			fmt.Println(ui.RenderKeyValue("Last used", fmt.Sprintf("%s (%s)", last.Name, last.GetDisplayDate(displayDateFormat()))))
		}
	}
	fmt.Println()

	mode, cred := sessionGate.Mode(ctx)
	fmt.Println(ui.FormatTitle("Session"))
	fmt.Println(ui.RenderKeyValue("Mode", ui.FormatMode(string(mode))))
	if cred != nil {
		if cred.Email != "" {
			fmt.Println(ui.RenderKeyValue("Account", cred.Email))
		}
		fmt.Println(ui.RenderKeyValue("Expires", describeExpiry(cred, time.Now())))
	}
	if appConfig.RemoteConfigured() {
		fmt.Println(ui.RenderKeyValue("Remote", appConfig.SessionsEndpoint))
	} else {
		fmt.Println(ui.RenderKeyValue("Remote", ui.FormatMuted("not configured")))
	}

	if mode == domain.ModeExpired {
		fmt.Println()
		fmt.Println(ui.FormatInfo("Run 'esfiddle login' to sign in again"))
	}
	return nil
}

// describeExpiry renders the credential expiry relative to now
func describeExpiry(cred *domain.Credential, now time.Time) string {
	exp := cred.Expiry()
	if exp.IsZero() {
		return "unknown"
	}
	d := exp.Sub(now).Round(time.Minute)
	if d <= 0 {
		return fmt.Sprintf("expired %s ago", (-d).String())
	}
	return fmt.Sprintf("in %s", d.String())
}
