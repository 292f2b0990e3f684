package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tunedinout/esfiddle/pkg/ui"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage cached credentials",
}

var authImportCmd = &cobra.Command{
	Use:   "import <file|->",
	Short: "Import credentials returned by the sign-in flow",
	Long: `Import a JSON credential document into the local cache.

The document needs accessToken and refreshToken. expiryDate, email and
name are read from the access token when it is a JWT and they are missing.

Examples:
  esfiddle auth import credentials.json
  pbpaste | esfiddle auth import -`,
	Args: cobra.ExactArgs(1),
	RunE: runAuthImport,
}

func init() {
	authCmd.AddCommand(authImportCmd)
}

func runAuthImport(cmd *cobra.Command, args []string) error {
	var in io.Reader = os.Stdin
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open credentials: %w", err)
		}
		defer f.Close()
		in = f
	}

	cred, err := credStore.Import(getContext(), in)
	if err != nil {
		fmt.Println(ui.FormatError("Failed to import credentials"))
		fmt.Println(ui.FormatMuted(err.Error()))
		return err
	}

	who := cred.Email
	if who == "" {
		who = "account"
	}
	fmt.Println(ui.FormatSuccess("Credentials saved for " + who))

	mode, _ := sessionGate.Mode(getContext())
	fmt.Println(ui.RenderKeyValue("Mode", ui.FormatMode(string(mode))))
	return nil
}
