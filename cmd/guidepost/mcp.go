package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aretw0/guidepost"
	"github.com/aretw0/guidepost/internal/cli"
	"github.com/aretw0/guidepost/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the tour catalog and session coordinators as MCP tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")
		if sse, _ := cmd.Flags().GetBool("sse"); sse {
			transport = "sse"
		}
		debug, _ := cmd.Flags().GetBool("debug")

		// Logs go to stderr so they never corrupt JSON-RPC on stdout.
		logger := cli.CreateLogger(debug, "text")
		slog.SetDefault(logger)

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		rt, err := setup(ctx, cmd, logger)
		if err != nil {
			return err
		}
		defer rt.Close()
		stop := cli.StartWatchers(ctx, rt)
		defer stop()

		srv := mcp.NewServer(rt.Guide.Registry(), rt.Guide.Sessions(), guidepost.Version, mcp.WithLogger(logger))

		switch transport {
		case "stdio":
			logger.Info("Starting Guidepost MCP Server (Stdio)")
			return srv.ServeStdio()
		case "sse":
			logger.Info("Starting Guidepost MCP Server (SSE)", "port", port)
			if err := srv.ServeSSE(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			logger.Info("MCP Server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Bool("sse", false, "Shorthand for --transport sse")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}
