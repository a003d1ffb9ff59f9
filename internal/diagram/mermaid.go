package diagram

import (
	"fmt"
	"strings"
)

// RenderMermaid renders a DiagramModel as a Mermaid flowchart string.
func RenderMermaid(model *DiagramModel) string {
	var b strings.Builder

	b.WriteString("graph TD\n")

	// Title as comment.
	if model.Title != "" {
		b.WriteString(fmt.Sprintf("    %%%% %s\n", model.Title))
	}

	for _, node := range model.Nodes {
		b.WriteString(fmt.Sprintf("    %s\n", mermaidNodeDef(node.ID, node.Label)))
	}

	// Edge targets that are not nodes of their own still need a definition
	// so they pick up the status class.
	declared := make(map[string]bool)
	var implicit []string
	for _, edge := range model.Edges {
		if findNode(model.Nodes, edge.To) != nil || declared[edge.To] {
			continue
		}
		declared[edge.To] = true
		implicit = append(implicit, edge.To)
		b.WriteString(fmt.Sprintf("    %s\n", mermaidNodeDef(edge.To, edge.To)))
	}

	for _, edge := range model.Edges {
		label := ""
		if edge.Label != "" {
			label = fmt.Sprintf("|%s|", mermaidEscapeLabel(edge.Label))
		}
		b.WriteString(fmt.Sprintf("    %s -->%s %s\n",
			mermaidSafeID(edge.From), label, mermaidSafeID(edge.To)))
	}

	if len(model.Nodes) == 0 && len(model.Edges) == 0 {
		return b.String()
	}

	b.WriteString("\n")
	b.WriteString("    classDef status fill:green,stroke:green\n")
	ids := make([]string, 0, len(model.Nodes)+len(implicit))
	for _, node := range model.Nodes {
		ids = append(ids, mermaidSafeID(node.ID))
	}
	for _, id := range implicit {
		ids = append(ids, mermaidSafeID(id))
	}
	b.WriteString(fmt.Sprintf("    class %s status\n", strings.Join(ids, ",")))

	return b.String()
}

// mermaidNodeDef returns a Mermaid node definition using the rectangle shape.
func mermaidNodeDef(id, label string) string {
	return fmt.Sprintf("%s[%q]", mermaidSafeID(id), mermaidEscapeLabel(label))
}

// mermaidSafeID converts a node ID to a Mermaid-safe identifier.
// Replaces dots, dashes and spaces with underscores.
func mermaidSafeID(id string) string {
	r := strings.NewReplacer(".", "_", "-", "_", " ", "_")
	return r.Replace(id)
}

// mermaidEscapeLabel escapes characters Mermaid treats as syntax in labels.
func mermaidEscapeLabel(s string) string {
	r := strings.NewReplacer(`"`, "#quot;", "|", "#124;")
	return r.Replace(s)
}
