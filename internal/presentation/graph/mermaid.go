package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/rapidhire/internal/runtime"
	"github.com/aretw0/rapidhire/pkg/domain"
)

// Overlay contains session data to visualize on the graph.
type Overlay struct {
	Visited []domain.Stage
	Current domain.Stage
}

// GenerateMermaid produces a Mermaid flowchart of the dialogue.
// It applies semantic styling:
// - Entry stage: ((Circle))
// - Free-text input: [/Parallelogram/]
// - Button choice: {{Hexagon}}
// - Terminal: (((Double circle)))
// Cancel edges are dotted. Overlay styles (visited/current) are applied if provided.
func GenerateMermaid(stages []domain.Stage, transitions []runtime.Transition, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, s := range stages {
		opener, closer := "[/", "/]"
		switch {
		case s == domain.StageAwaitingName:
			opener, closer = "((", "))"
		case s.Terminal():
			opener, closer = "(((", ")))"
		case s.ExpectsChoice():
			opener, closer = "{{", "}}"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", s, opener, s, closer))
	}

	for _, t := range transitions {
		arrow := fmt.Sprintf("-- \"%s\" -->", t.Event)
		if t.Event == runtime.FlowCancel {
			arrow = fmt.Sprintf("-. \"%s\" .->", t.Event)
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", t.From, arrow, t.To))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[domain.Stage]bool)
		for _, s := range overlay.Visited {
			if !seen[s] && s.Valid() {
				seen[s] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", s))
			}
		}
		if overlay.Current.Valid() {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", overlay.Current))
		}
	}

	return sb.String()
}
