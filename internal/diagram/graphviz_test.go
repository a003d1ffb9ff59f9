package diagram

import (
	"context"
	"regexp"
	"testing"

	"github.com/goccy/go-graphviz"
	"github.com/rendis/wfgraph/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertPNG(t *testing.T, png []byte) {
	t.Helper()
	require.True(t, len(png) > 8, "PNG should be larger than header")
	// PNG magic bytes: 0x89 P N G.
	assert.Equal(t, byte(0x89), png[0])
	assert.Equal(t, byte('P'), png[1])
	assert.Equal(t, byte('N'), png[2])
	assert.Equal(t, byte('G'), png[3])
}

// labelledEdge matches the DOT statement of an edge from -> to carrying label.
func labelledEdge(from, to, label string) *regexp.Regexp {
	return regexp.MustCompile(`(?s)\b` + regexp.QuoteMeta(from) + ` -> ` + regexp.QuoteMeta(to) +
		`\s*\[[^\]]*\blabel="?` + regexp.QuoteMeta(label) + `"?[,\]\s]`)
}

func TestRenderImageRoundTrip(t *testing.T) {
	png, err := RenderImage(context.Background(), Build("Ticket", openClosed()), DefaultStyle())
	require.NoError(t, err)
	assertPNG(t, png)
}

func TestRenderImageLifecycle(t *testing.T) {
	png, err := RenderImage(context.Background(), Build("", ticketLifecycle()), DefaultStyle())
	require.NoError(t, err)
	assertPNG(t, png)
}

func TestRenderImageEmptyModel(t *testing.T) {
	png, err := RenderImage(context.Background(), Build("", nil), DefaultStyle())
	require.NoError(t, err)
	assertPNG(t, png)
}

func TestRenderDOTCarriesStyle(t *testing.T) {
	dot, err := RenderDOT(context.Background(), Build("Ticket", openClosed()), DefaultStyle())
	require.NoError(t, err)

	out := string(dot)
	assert.Contains(t, out, "digraph")
	assert.Contains(t, out, "Open")
	assert.Contains(t, out, "Closed")
	assert.Regexp(t, labelledEdge("Open", "Closed", "Close"), out)
	assert.Contains(t, out, "record")
	assert.Contains(t, out, "filled")
	assert.Contains(t, out, "green")
	assert.Contains(t, out, "onormal")
	assert.NotContains(t, out, "Escalate")
}

func TestRenderMultipleFormatsOnce(t *testing.T) {
	out, err := Render(context.Background(), Build("", ticketLifecycle()), DefaultStyle(), graphviz.PNG, graphviz.XDOT)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assertPNG(t, out[graphviz.PNG])
	assert.Contains(t, string(out[graphviz.XDOT]), "InReview")
}

func TestDefaultStyle(t *testing.T) {
	s := DefaultStyle()
	assert.Equal(t, "filled", string(s.NodeStyle))
	assert.Equal(t, "record", string(s.Shape))
	assert.Equal(t, "green", s.Color)
	assert.Equal(t, "onormal", string(s.ArrowHead))
	assert.False(t, s.Overlap)
}

func TestRenderDOTKeepsParallelEdges(t *testing.T) {
	statuses := []*schema.Status{
		status("Open", "Close", "Closed", "Archive", "Closed"),
	}
	dot, err := RenderDOT(context.Background(), Build("", statuses), DefaultStyle())
	require.NoError(t, err)

	out := string(dot)
	edges := regexp.MustCompile(`\bOpen -> Closed\s*\[`).FindAllString(out, -1)
	assert.Len(t, edges, 2)
	assert.Regexp(t, labelledEdge("Open", "Closed", "Close"), out)
	assert.Regexp(t, labelledEdge("Open", "Closed", "Archive"), out)
}

func TestRecordLabel(t *testing.T) {
	tests := map[string]string{
		"Open":         "Open",
		"Pending{x}|y": `Pending\{x\}\|y`,
		"<Draft>":      `\<Draft\>`,
		`A\B`:          `A\\B`,
	}
	for in, want := range tests {
		assert.Equal(t, want, recordLabel(in), in)
	}
}

func TestRenderDOTEscapesRecordSyntax(t *testing.T) {
	statuses := []*schema.Status{
		status("pending {x}|y", "finish", "<done>"),
	}
	dot, err := RenderDOT(context.Background(), Build("", statuses), DefaultStyle())
	require.NoError(t, err)

	out := string(dot)
	assert.Contains(t, out, `Pending\{x\}\|y`)
	assert.Contains(t, out, `\<done\>`)
}
