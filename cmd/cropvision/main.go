// Package main provides the cropvision CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cropvision/internal/config"
	"cropvision/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Loaded per invocation
	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "cropvision",
	Short: "Crop Vision - crop yield prediction client",
	Long: `cropvision is a terminal client for the Crop Vision yield-prediction
service. It collects district, crop, season, and sowing date, submits
them for prediction, and renders the structured results with an optional
PDF report download.

Run without arguments to start the interactive prediction workflow.
An account is required; see "cropvision signup" and "cropvision login".`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		logger, err = logging.New(level, cfg.Logging.Format)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: launch the interactive workflow.
		return runInteractive()
	},
}

// versionCmd prints the client version.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the cropvision version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("cropvision %s\n", cfg.Version)
	},
}

// configShowCmd dumps the effective configuration.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration commands",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE:  runConfigShow,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.cropvision/config.yaml)")

	configCmd.AddCommand(configShowCmd)

	rootCmd.AddCommand(
		signupCmd,
		loginCmd,
		logoutCmd,
		whoamiCmd,
		predictCmd,
		configCmd,
		versionCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	fmt.Printf("Service base URL:  %s\n", cfg.Service.BaseURL)
	fmt.Printf("Service timeout:   %s\n", cfg.Service.Timeout)
	fmt.Printf("Database path:     %s\n", cfg.Storage.DatabasePath)
	fmt.Printf("Reports directory: %s\n", cfg.Storage.ReportsDir)
	fmt.Printf("Districts:         %d configured\n", len(cfg.Catalog.Districts))
	fmt.Printf("Crops:             %d configured\n", len(cfg.Catalog.Crops))
	fmt.Printf("Seasons:           %v\n", cfg.Catalog.Seasons)
	return nil
}
