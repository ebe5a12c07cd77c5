package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/guidepost/internal/cli"
	"github.com/aretw0/guidepost/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "guidepost",
	Short: "Guidepost serves guided product tours",
	Long: `Guidepost keeps a catalog of step-by-step tours and tracks, per session,
which tour is running and which step is highlighted. It exposes the catalog over
HTTP and MCP, and can walk a tour in the terminal.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("dir", ".", "Project directory (holds guidepost.yaml, .env and tour documents)")
	rootCmd.PersistentFlags().String("config", "", "Path to a configuration file (default <dir>/guidepost.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}

// loadConfig reads .env and the configuration file for the --dir project.
// Without a configured tours directory, --dir itself is scanned for tour documents
// when it was given explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	dir, _ := cmd.Flags().GetString("dir")
	path, _ := cmd.Flags().GetString("config")

	if err := config.LoadDotEnv(dir); err != nil {
		return nil, err
	}
	cfg, err := config.Load(dir, path)
	if err != nil {
		return nil, err
	}
	if cfg.ToursDir == "" && cmd.Flags().Changed("dir") {
		cfg.ToursDir = dir
	}
	return cfg, nil
}

// setup loads configuration and builds the runtime. Callers must Close it.
func setup(ctx context.Context, cmd *cobra.Command, logger *slog.Logger) (*cli.Runtime, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return newRuntime(ctx, cmd, cfg, logger)
}

// setupDurable is setup for commands whose sessions must outlive the process.
// A memory store is swapped for the file store under the sessions directory.
func setupDurable(ctx context.Context, cmd *cobra.Command, logger *slog.Logger) (*cli.Runtime, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if cfg.Store == config.StoreMemory {
		cfg.Store = config.StoreFile
	}
	return newRuntime(ctx, cmd, cfg, logger)
}

func newRuntime(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) (*cli.Runtime, error) {
	if logger == nil {
		debug, _ := cmd.Flags().GetBool("debug")
		logger = cli.CreateLogger(debug, "text")
	}
	return cli.Setup(ctx, cfg, logger)
}
