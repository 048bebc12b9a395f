package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/systmms/commonspack/cmd/commonspack/commands"
	"github.com/systmms/commonspack/internal/config"
	dserrors "github.com/systmms/commonspack/internal/errors"
	"github.com/systmms/commonspack/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", dserrors.SimplifyError(err))
		os.Exit(1)
	}
}

func run() error {
	// Global flags
	var (
		configFile string
		scheme     string
		service    string
		noColor    bool
		debug      bool
	)

	cfg := &config.Config{}

	rootCmd := &cobra.Command{
		Use:   "commonspack",
		Short: "Operate the shared app configuration, secure storage and API layer",
		Long: `commonspack reads the app configuration document, manages the session
token kept in the OS keyring and sends authenticated requests to the backend
exactly the way the app does.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg.Path = configFile
			cfg.Scheme = scheme
			cfg.Service = service
			cfg.Logger = logging.New(debug, noColor)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "Configurations.plist", "Configuration document (plist or YAML)")
	rootCmd.PersistentFlags().StringVar(&scheme, "scheme", "", "Build scheme override, e.g. main-qa")
	rootCmd.PersistentFlags().StringVar(&service, "service", config.DefaultService, "Keyring service name")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(
		commands.NewConfigCommand(cfg),
		commands.NewTokenCommand(cfg),
		commands.NewLogoutCommand(cfg),
		commands.NewFlagsCommand(cfg),
		commands.NewRequestCommand(cfg),
		commands.NewDoctorCommand(cfg),
		commands.NewCompletionCommand(cfg),
	)

	return rootCmd.Execute()
}
