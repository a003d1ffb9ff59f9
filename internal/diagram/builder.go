package diagram

import (
	"github.com/rendis/wfgraph/pkg/schema"
)

// Build constructs a DiagramModel from extracted statuses.
// Only statuses with at least one resolved transition become nodes; every
// resolved action becomes an edge. Identifiers and labels are CamelCase
// normalized, so distinct names that normalize identically share a node.
func Build(title string, statuses []*schema.Status) *DiagramModel {
	model := &DiagramModel{Title: title}
	seen := make(map[string]bool, len(statuses))

	for _, status := range statuses {
		transitions := status.Transitions()
		if len(transitions) == 0 {
			continue
		}

		id := CamelCase(status.Name)
		if !seen[id] {
			seen[id] = true
			model.Nodes = append(model.Nodes, &Node{ID: id, Label: id, Status: status.Name})
		}

		for _, tr := range transitions {
			model.Edges = append(model.Edges, Edge{
				From:  id,
				To:    CamelCase(tr.Target),
				Label: CamelCase(tr.Action),
			})
		}
	}

	return model
}

// findNode returns the node with the given ID, or nil.
func findNode(nodes []*Node, id string) *Node {
	for _, n := range nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}
