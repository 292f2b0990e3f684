package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tunedinout/esfiddle/pkg/ui"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Open the sign-in page in your browser",
	Long: `Fetch the sign-in URL from the auth endpoint and open it in the browser.

When the flow completes, save the credentials it returns and import them:
  esfiddle auth import credentials.json`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

func runLogin(cmd *cobra.Command, args []string) error {
	if appConfig.AuthURLEndpoint == "" {
		fmt.Println(ui.FormatError("No auth endpoint configured"))
		fmt.Println(ui.FormatInfo("Set auth_url_endpoint with 'esfiddle config'"))
		return fmt.Errorf("auth endpoint not configured")
	}

	if err := sessionGate.RedirectToAuth(getContext()); err != nil {
		fmt.Println(ui.FormatError("Could not start sign-in"))
		fmt.Println(ui.FormatMuted(err.Error()))
		return err
	}

	fmt.Println(ui.FormatSuccess("Sign-in page opened in your browser"))
	fmt.Println(ui.FormatInfo("Then run: esfiddle auth import <credentials.json>"))
	return nil
}
