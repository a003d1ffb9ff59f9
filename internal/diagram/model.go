package diagram

import "github.com/goccy/go-graphviz/cgraph"

// DiagramModel is the intermediate representation used by all renderers.
type DiagramModel struct {
	Title string
	Nodes []*Node
	Edges []Edge
}

// Node is a status that has at least one resolved transition.
type Node struct {
	ID    string
	Label string
	// Status is the declared status name before normalization.
	Status string
}

// Edge is one action leading from one status to another.
type Edge struct {
	From  string
	To    string
	Label string
}

// Style is the fixed presentation applied to every rendered graph.
type Style struct {
	NodeStyle cgraph.NodeStyle
	Shape     cgraph.Shape
	Color     string
	ArrowHead cgraph.ArrowType
	Overlap   bool
}

// DefaultStyle returns the standard diagram presentation: filled green
// record nodes, "onormal" arrowheads and no node overlap.
func DefaultStyle() Style {
	return Style{
		NodeStyle: cgraph.FilledNodeStyle,
		Shape:     cgraph.Shape("record"),
		Color:     "green",
		ArrowHead: cgraph.ArrowType("onormal"),
		Overlap:   false,
	}
}
