package diagram

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"github.com/rendis/wfgraph/pkg/schema"
)

// RenderImage renders a DiagramModel as a PNG image using graphviz.
// Returns the PNG bytes.
func RenderImage(ctx context.Context, model *DiagramModel, style Style) ([]byte, error) {
	out, err := Render(ctx, model, style, graphviz.PNG)
	if err != nil {
		return nil, err
	}
	return out[graphviz.PNG], nil
}

// RenderDOT renders the graph description (laid out DOT) of a DiagramModel.
func RenderDOT(ctx context.Context, model *DiagramModel, style Style) ([]byte, error) {
	out, err := Render(ctx, model, style, graphviz.XDOT)
	if err != nil {
		return nil, err
	}
	return out[graphviz.XDOT], nil
}

// Render lays out the model once and renders it in every requested format.
func Render(ctx context.Context, model *DiagramModel, style Style, formats ...graphviz.Format) (map[graphviz.Format][]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, schema.NewError(schema.ErrCodeRender, "create graphviz").WithCause(err)
	}
	defer gv.Close()

	gv.SetLayout(graphviz.DOT)

	graph, err := gv.Graph()
	if err != nil {
		return nil, schema.NewError(schema.ErrCodeRender, "create graph").WithCause(err)
	}
	defer graph.Close()

	if err := populate(graph, model, style); err != nil {
		return nil, err
	}

	out := make(map[graphviz.Format][]byte, len(formats))
	for _, format := range formats {
		var buf bytes.Buffer
		if err := gv.Render(ctx, graph, format, &buf); err != nil {
			return nil, schema.NewErrorf(schema.ErrCodeRender, "render %s", format).WithCause(err)
		}
		out[format] = buf.Bytes()
	}
	return out, nil
}

// populate creates the nodes and edges of model on graph.
func populate(graph *cgraph.Graph, model *DiagramModel, style Style) error {
	graph.SetOverlap(style.Overlap)
	if model.Title != "" {
		graph.SetLabel(model.Title)
	}

	gvNodes := make(map[string]*cgraph.Node, len(model.Nodes))
	nodeFor := func(id, label string) (*cgraph.Node, error) {
		if n, ok := gvNodes[id]; ok {
			return n, nil
		}
		n, err := graph.CreateNodeByName(id)
		if err != nil {
			return nil, schema.NewErrorf(schema.ErrCodeRender, "create node %s", id).WithCause(err)
		}
		n.SetLabel(recordLabel(label))
		applyNodeStyle(n, style)
		gvNodes[id] = n
		return n, nil
	}

	for _, node := range model.Nodes {
		if _, err := nodeFor(node.ID, node.Label); err != nil {
			return err
		}
	}

	// Targets without transitions of their own are not model nodes; graphviz
	// still needs an endpoint, which gets the same node style.
	for i, edge := range model.Edges {
		from, err := nodeFor(edge.From, edge.From)
		if err != nil {
			return err
		}
		to, err := nodeFor(edge.To, edge.To)
		if err != nil {
			return err
		}
		e, err := graph.CreateEdgeByName(fmt.Sprintf("%s_%s_%d", edge.From, edge.To, i), from, to)
		if err != nil {
			return schema.NewErrorf(schema.ErrCodeRender, "create edge %s -> %s", edge.From, edge.To).WithCause(err)
		}
		e.SetArrowHead(style.ArrowHead)
		if edge.Label != "" {
			e.SetLabel(edge.Label)
		}
	}
	return nil
}

// recordEscaper escapes the characters record-shaped nodes read as field syntax.
var recordEscaper = strings.NewReplacer(
	`\`, `\\`,
	"{", `\{`,
	"}", `\}`,
	"|", `\|`,
	"<", `\<`,
	">", `\>`,
)

// recordLabel returns label as literal text inside a record node.
func recordLabel(label string) string {
	return recordEscaper.Replace(label)
}

// applyNodeStyle sets the graphviz node attributes of style.
func applyNodeStyle(gvNode *cgraph.Node, style Style) {
	gvNode.SetStyle(style.NodeStyle)
	gvNode.SetShape(style.Shape)
	gvNode.SetColor(style.Color)
	gvNode.SetFillColor(style.Color)
}
