package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/aretw0/guidepost/internal/presentation/graph"
	"github.com/aretw0/guidepost/internal/presentation/tui"
	"github.com/aretw0/guidepost/pkg/domain"
	"github.com/spf13/cobra"
)

var toursCmd = &cobra.Command{
	Use:   "tours",
	Short: "Inspect the tour catalog",
}

var toursLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List tours, optionally only those offered to a role",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(cmd.Context(), cmd, nil)
		if err != nil {
			return err
		}
		defer rt.Close()

		tours := rt.Guide.Registry().List()
		if role, _ := cmd.Flags().GetString("role"); role != "" {
			tours = rt.Guide.Registry().ToursForRole(domain.Role(role))
		}

		out := cmd.OutOrStdout()
		if len(tours) == 0 {
			fmt.Fprintln(out, "No tours found.")
			return nil
		}

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tSTEPS\tROLES\tTITLE")
		for _, t := range tours {
			fmt.Fprintf(tw, "%s\t%d\t%v\t%s\n", t.ID, len(t.Steps), t.Roles, t.Title)
		}
		return tw.Flush()
	},
}

var toursShowCmd = &cobra.Command{
	Use:   "show <tour-id>",
	Short: "Print the steps of a tour",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(cmd.Context(), cmd, nil)
		if err != nil {
			return err
		}
		defer rt.Close()

		tour, err := rt.Guide.Registry().Tour(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		title := tour.Title
		if title == "" {
			title = tour.ID
		}
		fmt.Fprintf(out, "%s (%d steps)\n", title, len(tour.Steps))
		for i, s := range tour.Steps {
			fmt.Fprintf(out, "\n%d. %s [%s]\n", i+1, s.Content.Title, tui.PlacementStyle(out, string(s.Placement)))
			fmt.Fprintf(out, "   target: %s\n", s.Target)
			if s.Content.Body != "" {
				fmt.Fprintf(out, "   %s\n", s.Content.Body)
			}
		}
		return nil
	},
}

var toursGraphCmd = &cobra.Command{
	Use:   "graph <tour-id>",
	Short: "Export a tour as a Mermaid diagram",
	Long:  `Prints a Mermaid flowchart of the tour's steps. With --session, the session's progress is highlighted.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setupDurable(cmd.Context(), cmd, nil)
		if err != nil {
			return err
		}
		defer rt.Close()

		tour, err := rt.Guide.Registry().Tour(args[0])
		if err != nil {
			return err
		}

		var overlay *graph.Overlay
		if sessionID, _ := cmd.Flags().GetString("session"); sessionID != "" {
			s, err := rt.Guide.Session(cmd.Context(), sessionID)
			if err != nil {
				return err
			}
			overlay = graph.OverlayFor(tour, s)
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(tour, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(toursCmd)
	toursCmd.AddCommand(toursLsCmd, toursShowCmd, toursGraphCmd)

	toursLsCmd.Flags().String("role", "", "Only list tours offered to this role")
	toursGraphCmd.Flags().String("session", "", "Highlight the progress of this session")
}
