package main

import (
	"fmt"
	"os"

	"github.com/cuemby/reportwatch/pkg/config"
	"github.com/cuemby/reportwatch/pkg/log"
	"github.com/cuemby/reportwatch/pkg/metrics"
	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// cfg is loaded before any subcommand runs
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "reportwatch",
	Short: "reportwatch - live viewer for a running game's event log",
	Long: `reportwatch connects to a game automation server over gRPC and
follows the game's announcement or report log, printing new events as
they appear and keeping per-category display filters between runs.

Use 'reportwatch serve' to run a simulated server for development.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = loaded

		if cmd.Flags().Changed("log-level") {
			cfg.Log.Level, _ = cmd.Flags().GetString("log-level")
		}
		if cmd.Flags().Changed("log-json") {
			cfg.Log.JSON, _ = cmd.Flags().GetBool("log-json")
		}
		if cmd.Flags().Changed("data-dir") {
			cfg.DataDir, _ = cmd.Flags().GetString("data-dir")
		}

		log.Init(log.Config{
			Level:      log.ParseLevel(cfg.Log.Level),
			JSONOutput: cfg.Log.JSON,
		})
		metrics.SetVersion(Version)
		return nil
	},
}

func init() {
	// Set version template
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"reportwatch version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("config", "reportwatch.yaml", "Configuration file")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Log in JSON format")
	rootCmd.PersistentFlags().String("data-dir", config.DefaultDataDir, "Directory holding the category database")

	// Add subcommands
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(configCmd)
}
