package main

import (
	"os"

	"github.com/aretw0/guidepost/internal/cli"
	"github.com/spf13/cobra"
)

var walkCmd = &cobra.Command{
	Use:   "walk <tour-id>",
	Short: "Walk a tour in the terminal",
	Long: `Starts the tour for a session and presents its steps one at a time.
Steps whose target is listed in --missing are skipped, the way a page without
that element would skip them. Closing the walker stops the tour; ending input
leaves it paused at the current step.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		debug, _ := cmd.Flags().GetBool("debug")
		jsonMode, _ := cmd.Flags().GetBool("json")

		format := "text"
		if jsonMode {
			format = "json"
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		rt, err := setupDurable(ctx, cmd, cli.CreateLogger(debug, format))
		if err != nil {
			return err
		}
		defer rt.Close()

		opts := cli.WalkOptions{
			TourID:       args[0],
			JSON:         jsonMode,
			MaxInputSize: rt.Config.MaxInputSize,
		}
		opts.SessionID, _ = cmd.Flags().GetString("session")
		opts.Missing, _ = cmd.Flags().GetStringSlice("missing")
		opts.Fresh, _ = cmd.Flags().GetBool("fresh")

		return cli.RunWalk(ctx, rt, opts, os.Stdin, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(walkCmd)

	walkCmd.Flags().StringP("session", "s", "cli", "Session ID to walk under")
	walkCmd.Flags().Bool("json", false, "Use JSON-Lines IO")
	walkCmd.Flags().StringSlice("missing", nil, "Target selectors to treat as absent")
	walkCmd.Flags().Bool("fresh", false, "Delete the stored session before starting")
}
