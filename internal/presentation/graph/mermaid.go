package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/ladon/pkg/modeler"
)

// GraphOverlay contains run data to visualize on the graph.
type GraphOverlay struct {
	VisitedStates []string
	CurrentState  string
}

// OverlayFor builds an overlay that highlights the current state of m.
func OverlayFor(m *modeler.FiniteStateMachine, visited ...string) *GraphOverlay {
	o := &GraphOverlay{VisitedStates: visited}
	if t := m.CurrentStateType(); t != nil {
		o.CurrentState = t.Name()
	}
	return o
}

// GenerateMermaid produces a Mermaid flowchart of the states loaded in m.
// It applies semantic styling:
// - Terminal (transitions loaded, none registered): ((Circle))
// - Transitions not loaded yet: [/Parallelogram/]
// - Default: [Rectangle]
// Edges are labelled with the transition's "name" metadata. Transitions whose
// target is not loaded point at a "?" placeholder with a dotted arrow.
func GenerateMermaid(m modeler.Model, overlay *GraphOverlay) string {
	g := m.Base()
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	pending := 0
	for _, st := range g.States() {
		name := st.Name()
		safeID := sanitizeMermaidID(name)

		opener, closer := "[", "]"
		switch {
		case !g.TransitionsLoaded(st):
			opener, closer = "[/", "/]"
		case g.TransitionCountFor(st) == 0:
			opener, closer = "((", "))"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, escapeLabel(name), closer)

		for _, t := range g.TransitionsFor(st) {
			label := ""
			if v, ok := t.MetaValue("name"); ok {
				label = escapeLabel(fmt.Sprint(v))
			}

			target, err := identified(t)
			if err != nil {
				pending++
				stub := fmt.Sprintf("%s_pending%d", safeID, pending)
				arrow := "-.->"
				if label != "" {
					arrow = fmt.Sprintf("-. \"%s\" .->", label)
				}
				fmt.Fprintf(&sb, "    %s %s %s((\"?\"))\n", safeID, arrow, stub)
				continue
			}

			arrow := "-->"
			if label != "" {
				arrow = fmt.Sprintf("-- \"%s\" -->", label)
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", safeID, arrow, sanitizeMermaidID(target.Name()))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, name := range overlay.VisitedStates {
			safeID := sanitizeMermaidID(name)
			if !visitedSet[safeID] && safeID != "" {
				visitedSet[safeID] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
			}
		}

		if overlay.CurrentState != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.CurrentState))
		}
	}

	return sb.String()
}

// identified returns the target only when it is already known; drawing a
// graph never runs loaders.
func identified(t *modeler.Transition) (modeler.StateType, error) {
	if !t.TargetLoaded() {
		return nil, modeler.ErrTargetNotLoaded
	}
	return t.IdentifyTarget()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	return strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_").Replace(id)
}
