package diagram

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMermaidRoundTrip(t *testing.T) {
	output := RenderMermaid(Build("Ticket", openClosed()))

	assert.Contains(t, output, "graph TD")
	assert.Contains(t, output, "%% Ticket")
	assert.Contains(t, output, `Open["Open"]`)
	// Closed is only an edge target but still gets a definition.
	assert.Contains(t, output, `Closed["Closed"]`)
	assert.Contains(t, output, "Open -->|Close| Closed")
	assert.Contains(t, output, "classDef status")
	assert.Contains(t, output, "class Open,Closed status")
	assert.NotContains(t, output, "Escalate")
}

func TestRenderMermaidLifecycle(t *testing.T) {
	output := RenderMermaid(Build("", ticketLifecycle()))

	assert.Contains(t, output, "New -->|StartWork| InProgress")
	assert.Contains(t, output, "InReview -->|RequestChanges| InProgress")
	assert.Contains(t, output, "class New,InProgress,InReview,Closed status")
}

func TestRenderMermaidEmpty(t *testing.T) {
	assert.Equal(t, "graph TD\n", RenderMermaid(Build("", nil)))
}

func TestMermaidEscapeLabel(t *testing.T) {
	assert.Equal(t, "a#124;b#quot;", mermaidEscapeLabel(`a|b"`))
	assert.Equal(t, "a_b_c_d", mermaidSafeID("a.b-c d"))
}
