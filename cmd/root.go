package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tunedinout/esfiddle/internal/adapters/credentials"
	"github.com/tunedinout/esfiddle/internal/adapters/datastore"
	"github.com/tunedinout/esfiddle/internal/adapters/remote"
	"github.com/tunedinout/esfiddle/internal/core/domain"
	"github.com/tunedinout/esfiddle/internal/core/services"
	"github.com/tunedinout/esfiddle/internal/observability"
	"github.com/tunedinout/esfiddle/pkg/config"
	"github.com/tunedinout/esfiddle/pkg/ui"
	"github.com/tunedinout/esfiddle/pkg/vault"
)

var (
	// Global vault instance and configuration
	appVault  *vault.Vault
	appConfig *config.Config

	// Observability
	logger  = zap.NewNop()
	metrics *observability.Metrics

	// Storage; nil when the database could not be opened
	store *datastore.SQLiteStore

	// Services
	fileRepo     *services.FileRepository
	listService  *services.ListService
	sessionGate  *services.SessionGate
	credStore    *credentials.FileStore
	remoteClient *remote.HTTPClient

	// appCtx is canceled on SIGINT/SIGTERM
	appCtx = context.Background()
)

// commands that work before the vault exists or without the database
var (
	skipInit        = map[string]bool{"init": true, "version": true, "help": true, "completion": true}
	storageOptional = map[string]bool{"status": true, "login": true, "auth": true, "sessions": true, "config": true}
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "esfiddle",
	Short: "esfiddle - a local-first JavaScript playground store",
	Long: ui.StyleTitle.Render("esfiddle") + " - JavaScript Playground Store\n\n" +
		"Keeps playground files in a local database, autosaves them while you edit,\n" +
		"and lists sessions saved on your remote drive when you are signed in.",
	Args:               cobra.NoArgs,
	PersistentPreRunE:  initializeApp,
	PersistentPostRunE: shutdownApp,
	RunE:               runSmartEntry,
	SilenceUsage:       true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	appCtx = ctx

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(copyCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// initializeApp initializes the application components
func initializeApp(cmd *cobra.Command, args []string) error {
	if skipInit[cmd.Name()] {
		return nil
	}

	v, err := vault.New()
	if err != nil {
		return fmt.Errorf("failed to initialize vault: %w", err)
	}

	if !v.Exists() {
		fmt.Println(ui.FormatError("Vault not initialized"))
		fmt.Println(ui.FormatInfo("Run 'esfiddle init' to initialize the vault"))
		return errors.New("vault not initialized")
	}

	cfg, err := config.Load(v.ConfigPath)
	if err != nil {
		fmt.Println(ui.FormatWarning("Failed to load config, using defaults: " + err.Error()))
		cfg = config.DefaultConfig()
	}

	return wireServices(getContext(), v, cfg, !storageOptional[rootName(cmd)])
}

// wireServices builds every package-level service from v and cfg
func wireServices(ctx context.Context, v *vault.Vault, cfg *config.Config, requireStorage bool) error {
	appVault = v
	appConfig = cfg
	ui.SetTheme(cfg.ColorTheme)

	l, err := observability.InitLogger(observability.LoggerOptions{
		Development: cfg.LogDevelopment,
		Level:       cfg.LogLevel,
		Path:        v.LogFilePath(),
	})
	if err != nil {
		fmt.Println(ui.FormatWarning("Logging disabled: " + err.Error()))
		l = zap.NewNop()
	}
	logger = l
	metrics = observability.NewMetrics()

	s, err := datastore.OpenSQLiteStore(ctx, v.DatabasePath, logger)
	if err != nil {
		logger.Error("datastore unavailable", zap.String("path", v.DatabasePath), zap.Error(err))
		if requireStorage {
			fmt.Println(ui.FormatError("Local storage is unavailable"))
			fmt.Println(ui.FormatMuted(err.Error()))
			return err
		}
	} else {
		store = s
		fileRepo = services.NewFileRepository(store, logger, nil)
		listService = services.NewListService(fileRepo)
	}

	credStore = credentials.NewFileStore(v.CredentialsPath, logger)
	remoteClient = remote.NewHTTPClient(remote.Options{
		AuthURLEndpoint:  cfg.AuthURLEndpoint,
		SessionsEndpoint: cfg.SessionsEndpoint,
		MaxAttempts:      cfg.RetryAttempts,
		Timeout:          cfg.RequestTimeout(),
		Logger:           logger,
		OnAttemptFailed: func(attempt int, err error) {
			metrics.RetryAttemptFailed("list_sessions")
			if attempt >= cfg.RetryAttempts {
				metrics.RetryExhausted("list_sessions")
			}
		},
	})
	sessionGate = services.NewSessionGate(services.SessionGateOptions{
		Credentials: credStore,
		Auth:        remoteClient,
		Navigator:   &remote.Browser{Command: cfg.Browser},
		Sessions:    remoteClient,
		Logger:      logger,
	})

	return nil
}

// shutdownApp releases the database and flushes logs
func shutdownApp(cmd *cobra.Command, args []string) error {
	if store != nil {
		if err := store.Close(); err != nil {
			logger.Warn("failed to close datastore", zap.Error(err))
		}
		store = nil
	}
	_ = logger.Sync()
	return nil
}

// runSmartEntry runs the configured default action when no subcommand is given
func runSmartEntry(cmd *cobra.Command, args []string) error {
	switch appConfig.DefaultAction {
	case "list":
		return runList(listCmd, nil)
	case "open":
		return runOpen(openCmd, nil)
	case "edit":
		return runEdit(editCmd, nil)
	default:
		return runShow(showCmd, nil)
	}
}

// requireStorage reports a friendly error when the database is not available
func requireStorage() error {
	if fileRepo == nil {
		fmt.Println(ui.FormatError("Local storage is unavailable"))
		return domain.ErrStorageUnavailable
	}
	return nil
}

// rootName returns the top-level subcommand name ("auth" for "auth import")
func rootName(cmd *cobra.Command) string {
	for cmd.HasParent() && cmd.Parent().HasParent() {
		cmd = cmd.Parent()
	}
	return cmd.Name()
}

// getContext returns a context for operations
func getContext() context.Context {
	return appCtx
}
