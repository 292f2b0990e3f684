package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tunedinout/esfiddle/internal/adapters/datastore"
	"github.com/tunedinout/esfiddle/pkg/config"
	"github.com/tunedinout/esfiddle/pkg/ui"
	"github.com/tunedinout/esfiddle/pkg/vault"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the esfiddle vault",
	Long: `Initialize the esfiddle data directory.

This creates the managed vault at ~/.local/share/esfiddle/ with the following structure:
  - esfiddle.db       : The local file store
  - workspace/        : Files materialized for editing
  - cache/            : Exports and scratch files
  - logs/             : Structured logs
  - credentials.yaml  : Cached login snapshots (created on login)`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	v, err := vault.New()
	if err != nil {
		fmt.Println(ui.FormatError("Failed to determine vault location"))
		return err
	}

	if v.Exists() {
		fmt.Println(ui.FormatWarning("Vault already initialized"))
		fmt.Println(ui.FormatMuted("Location: " + v.RootPath))
		return nil
	}

	return initializeVault(v)
}

func initializeVault(v *vault.Vault) error {
	fmt.Println(ui.FormatInfo("Initializing esfiddle vault..."))
	fmt.Println()

	if err := v.Initialize(); err != nil {
		fmt.Println(ui.FormatError("Failed to initialize vault"))
		return err
	}

	// Create default config unless the user already has one
	if _, err := os.Stat(v.ConfigPath); errors.Is(err, os.ErrNotExist) {
		if err := config.DefaultConfig().Save(v.ConfigPath); err != nil {
			fmt.Println(ui.FormatWarning("Failed to create default config: " + err.Error()))
		} else {
			fmt.Println(ui.FormatSuccess("Default config created"))
		}
	}

	// Create the database and its schema now so later commands start fast
	s, err := datastore.OpenSQLiteStore(getContext(), v.DatabasePath, nil)
	if err != nil {
		fmt.Println(ui.FormatError("Failed to create the local store"))
		return err
	}
	if err := s.Close(); err != nil {
		return err
	}
	fmt.Println(ui.FormatSuccess("Local store created"))

	fmt.Println(ui.FormatSuccess("Vault initialized successfully!"))
	fmt.Println()
	fmt.Println(ui.RenderKeyValue("Location", v.RootPath))
	fmt.Println(ui.RenderKeyValue("Config", v.ConfigPath))
	fmt.Println()
	fmt.Println(ui.FormatInfo("Next steps:"))
	fmt.Print(ui.RenderSimpleList([]string{
		"Create your first file: esfiddle new main.js",
		"Edit it with autosave:  esfiddle edit main.js",
		"List all files:         esfiddle list",
	}))

	return nil
}
