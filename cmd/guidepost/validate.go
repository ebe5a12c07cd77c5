package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check tour documents for consistency",
	Long: `Loads the builtin catalog together with the tour documents of the project
and reports empty targets, unknown placements, duplicate ids and role table
entries that point at missing tours.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(cmd.Context(), cmd, nil)
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		defer rt.Close()

		fmt.Fprintf(cmd.OutOrStdout(), "%d tours are valid! ✅\n", len(rt.Guide.Registry().List()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
