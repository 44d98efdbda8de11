package cmd

import (
	"fmt"
	"os"

	"github.com/iksnae/lawchat/internal"
	"github.com/iksnae/lawchat/internal/api"
	"github.com/spf13/cobra"
)

var (
	verbose     bool
	configPath  string
	storagePath string
	backendName string
	userFlag    string
	roleFlag    string
	apiURL      string
	version     string = "dev"
	commit      string = "unknown"
	date        string = "unknown"
)

// cfg is loaded once per invocation in PersistentPreRunE
var cfg = internal.DefaultConfig()

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lawchat",
	Short: "Chat with the Moroccan law assistant from your terminal",
	Long: `A terminal client for the AI Law Assistant.

lawchat keeps your conversations locally, one history per identity, and sends
questions to the legal question-answering API. Regular users keep a single active
conversation; administrators keep their full history and manage the document
knowledge base.

Quick Start:
  lawchat ask "What is the minimum wage in Morocco?"   # Ask a question
  lawchat list                                        # List your conversations
  lawchat show                                        # Show the active conversation
  lawchat new                                         # Start a new conversation

Identity:
  --user and --role (or LAWCHAT_USER / LAWCHAT_ROLE) select whose history is used.
  Without a user, the shared guest history is used.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := internal.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		applyFlagOverrides(cmd, loaded)
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = loaded

		internal.SetLogLevel(internal.ParseLogLevel(cfg.Logging.Level))
		if verbose {
			internal.SetVerbose(true)
		}
		return nil
	},
}

// applyFlagOverrides lets explicitly set flags win over file and environment values
func applyFlagOverrides(cmd *cobra.Command, c *internal.Config) {
	flags := cmd.Flags()
	if flags.Changed("storage") {
		c.Storage.Path = storagePath
	}
	if flags.Changed("backend") {
		c.Storage.Backend = backendName
	}
	if flags.Changed("user") {
		c.Identity.User = userFlag
	}
	if flags.Changed("role") {
		c.Identity.Role = roleFlag
	}
	if flags.Changed("api-url") {
		c.API.BaseURL = apiURL
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		internal.PrintError(fmt.Sprintf("Error: %v", err))
		os.Exit(1)
	}
}

// openMedium opens the configured persistence medium. The returned func closes it.
func openMedium() (internal.Medium, func(), error) {
	paths, err := internal.GetStoragePaths(cfg.Storage.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get storage paths: %w", err)
	}

	medium, closeFn, err := internal.OpenMedium(cfg.Storage.Backend, paths)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	return medium, func() {
		if err := closeFn(); err != nil {
			internal.LogWarn("Failed to close storage: %v", err)
		}
	}, nil
}

// openStore opens the medium and binds a session store to the configured identity
func openStore() (*internal.SessionStore, func(), error) {
	medium, closeFn, err := openMedium()
	if err != nil {
		return nil, nil, err
	}

	identity := cfg.BoundIdentity()
	internal.LogDebug("Bound identity %s", identity)
	store := internal.NewSessionStore(internal.NewKVPersistence(medium), identity, cfg.StoreOptions())
	return store, closeFn, nil
}

func newAPIClient() *api.Client {
	return api.NewClient(api.ClientConfig{
		BaseURL: cfg.API.BaseURL,
		Token:   cfg.API.Token,
		Timeout: cfg.APITimeout(),
	})
}

// requireAdmin fails unless the configured identity has the admin role
func requireAdmin() error {
	if !cfg.BoundIdentity().IsAdmin() {
		return internal.ErrAdminRequired
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (YAML or TOML)")
	rootCmd.PersistentFlags().StringVar(&storagePath, "storage", "", "Custom storage location (data directory or path to a .db file)")
	rootCmd.PersistentFlags().StringVar(&backendName, "backend", "", "Storage backend (sqlite, file, memory)")
	rootCmd.PersistentFlags().StringVar(&userFlag, "user", "", "User identifier whose history is used (empty for guest)")
	rootCmd.PersistentFlags().StringVar(&roleFlag, "role", "", "Account role (user, admin)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Base URL of the law assistant API")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
