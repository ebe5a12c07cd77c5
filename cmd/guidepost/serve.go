package main

import (
	"fmt"

	"github.com/aretw0/guidepost/internal/cli"
	"github.com/aretw0/guidepost/internal/logging"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serves the tour catalog and session coordinators over a JSON API.
Tour documents are reloaded when they change on disk.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Port, _ = cmd.Flags().GetString("port")
		}

		level, err := logging.ParseLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		if debug, _ := cmd.Flags().GetBool("debug"); debug {
			level, _ = logging.ParseLevel("debug")
		}
		logger := logging.NewWithFormat(cmd.ErrOrStderr(), level, logging.Format(cfg.LogFormat))

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		rt, err := cli.Setup(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer rt.Close()

		srv, err := cli.NewHTTPServer(rt, ":"+cfg.Port)
		if err != nil {
			return fmt.Errorf("invalid API document: %w", err)
		}
		if err := cli.Serve(ctx, rt, srv); err != nil {
			return err
		}
		if sig := ctx.Signal(); sig != nil {
			logger.Info("Stopped by signal", "signal", sig.String())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
}
