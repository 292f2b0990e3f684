package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tunedinout/esfiddle/pkg/config"
	"github.com/tunedinout/esfiddle/pkg/ui"
)

var configPathOnly bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Edit the esfiddle configuration file",
	Long: `Open the configuration file in your editor. A default file is written
first when none exists.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&configPathOnly, "path", false, "Print the config path and exit")
}

func runConfig(cmd *cobra.Command, args []string) error {
	path := appVault.ConfigPath
	if configPathOnly {
		fmt.Println(path)
		return nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := config.DefaultConfig().Save(path); err != nil {
			return fmt.Errorf("failed to write default config: %w", err)
		}
		fmt.Println(ui.FormatInfo("Created default config"))
	}

	fmt.Println(ui.FormatInfo("Opening config: " + path))
	if err := runEditor(getContext(), path); err != nil {
		return err
	}

	if _, err := config.Load(path); err != nil {
		fmt.Println(ui.FormatWarning("Config has errors: " + err.Error()))
		return nil
	}
	fmt.Println(ui.FormatSuccess("Config saved"))
	return nil
}
