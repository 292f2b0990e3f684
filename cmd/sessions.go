package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tunedinout/esfiddle/internal/core/domain"
	"github.com/tunedinout/esfiddle/pkg/retry"
	"github.com/tunedinout/esfiddle/pkg/ui"
)

var sessionsFolder string

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List playground sessions saved on the remote drive",
	Long: `List sessions saved on the remote drive. Requires a valid login.

An expired login opens the sign-in page once. When offline, local files
remain available through 'esfiddle list'.`,
	Args: cobra.NoArgs,
	RunE: runSessions,
}

func init() {
	sessionsCmd.Flags().StringVar(&sessionsFolder, "folder", "", "Remote folder id (defaults to the configured folder)")
}

func runSessions(cmd *cobra.Command, args []string) error {
	ctx := getContext()

	mode, _ := sessionGate.Resolve(ctx)
	switch mode {
	case domain.ModeOffline:
		fmt.Println(ui.FormatMode(string(mode)))
		fmt.Println(ui.FormatInfo("Not signed in. Run 'esfiddle login' to list remote sessions"))
		return nil
	case domain.ModeExpired:
		fmt.Println(ui.FormatMode(string(mode)))
		fmt.Println(ui.FormatInfo("Your login expired. Finish signing in, then run 'esfiddle auth import'"))
		return nil
	}

	folder := sessionsFolder
	if folder == "" {
		folder = appConfig.DriveFolderID
	}

	res := sessionGate.ListRemoteSessions(ctx, folder)
	if f := res.Failure(); f != nil {
		fmt.Println(ui.FormatError(describeFailure(f)))
		if f.Kind == retry.KindInvalid {
			fmt.Println(ui.FormatInfo("Pass --folder or set drive_folder_id with 'esfiddle config'"))
		}
		return f
	}

	sessions := res.Value()
	if len(sessions) == 0 {
		fmt.Println(ui.FormatInfo("No remote sessions found"))
		return nil
	}

	table := ui.NewTable([]ui.TableColumn{
		{Header: "ID", Width: 12, MaxWidth: 24},
		{Header: "Name", Width: 20, MaxWidth: 40},
		{Header: "Modified", Width: 20},
	})
	for _, s := range sessions {
		table.AddRow([]string{s.ID, s.Name, s.ModifiedTime})
	}
	fmt.Print(table.Render())
	fmt.Println()
	fmt.Println(ui.FormatMuted(fmt.Sprintf("%d session(s)", len(sessions))))
	return nil
}

// describeFailure turns a remote failure into a one-line message
func describeFailure(f *retry.Failure) string {
	switch f.Kind {
	case retry.KindStatus:
		return fmt.Sprintf("Remote returned %d: %s", f.StatusCode, f.Detail)
	case retry.KindTransport:
		return fmt.Sprintf("Could not reach the remote after %d attempt(s)", f.Attempts)
	case retry.KindDecode:
		return "Remote returned an unreadable response"
	case retry.KindCanceled:
		return "Cancelled"
	default:
		return f.Detail
	}
}
