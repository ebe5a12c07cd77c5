package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/guidepost/pkg/domain"
)

// Overlay marks session progress on the chart.
type Overlay struct {
	CurrentIndex int
	Active       bool
}

// OverlayFor derives an overlay from a session snapshot. It returns nil when
// the session is not showing tour.
func OverlayFor(tour domain.Tour, s *domain.TourSession) *Overlay {
	if s == nil || s.Tag != tour.ID || len(s.Steps) == 0 {
		return nil
	}
	return &Overlay{CurrentIndex: s.CurrentIndex, Active: s.Active}
}

// GenerateMermaid produces a Mermaid flowchart of a tour's steps.
// Shapes:
// - tour entry and exit: ((Circle))
// - step flagged first_step (no beacon): ([Stadium])
// - other steps: [Rectangle]
// An overlay styles steps before the current one as visited.
func GenerateMermaid(tour domain.Tour, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	entry := sanitizeMermaidID(tour.ID)
	if entry == "" {
		entry = "tour"
	}
	fmt.Fprintf(&sb, "    %s((\"%s\"))\n", entry, escapeLabel(tour.ID))

	prev := entry
	for i, step := range tour.Steps {
		id := stepID(i)
		opener, closer := "[", "]"
		if step.FirstStep {
			opener, closer = "([", "])"
		}

		title := step.Content.Title
		if title == "" {
			title = step.Target
		}
		fmt.Fprintf(&sb, "    %s%s\"%d. %s<br/>%s (%s)\"%s\n",
			id, opener, i+1, escapeLabel(title), escapeLabel(step.Target), step.Placement, closer)
		fmt.Fprintf(&sb, "    %s --> %s\n", prev, id)
		prev = id
	}

	fmt.Fprintf(&sb, "    %s_done((\"done\"))\n", entry)
	fmt.Fprintf(&sb, "    %s --> %s_done\n", prev, entry)

	if overlay != nil && len(tour.Steps) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		current := min(max(overlay.CurrentIndex, 0), len(tour.Steps)-1)
		for i := 0; i < current; i++ {
			fmt.Fprintf(&sb, "    class %s visited;\n", stepID(i))
		}
		if overlay.Active {
			fmt.Fprintf(&sb, "    class %s current;\n", stepID(current))
		} else {
			fmt.Fprintf(&sb, "    class %s visited;\n", stepID(current))
		}
	}

	return sb.String()
}

func stepID(i int) string {
	return fmt.Sprintf("step%d", i)
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "#quot;")
}

func sanitizeMermaidID(id string) string {
	r := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_")
	return r.Replace(id)
}
