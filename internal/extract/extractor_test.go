package extract

import (
	"strings"
	"testing"

	"github.com/antchfx/xmlquery"
	"github.com/rendis/wfgraph/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Fixtures ---

const singleDoc = `<?xml version="1.0" encoding="UTF-8"?>
<workflow:workflowConfiguration xmlns:workflow="http://example.com/schema/workflow" actionableType="Ticket">
  <workflow:workflowStatuses>
    <workflow:workflowStatus name="Open"/>
    <workflow:workflowStatus name="Closed"/>
  </workflow:workflowStatuses>
  <workflow:workflowActions>
    <workflow:workflowAction fromStatus="Open" actionName="Close"/>
    <workflow:workflowAction fromStatus="Open" actionName="Escalate"/>
  </workflow:workflowActions>
  <workflow:actionComponentSequences>
    <workflow:actionComponentSequence actionName="Close">
      <workflow:components>
        <workflow:component executorName="AUDIT"/>
        <workflow:component executorName="WORKFLOWCHANGESTATUS" newStatusName="Closed"/>
        <workflow:component executorName="WORKFLOWCHANGESTATUS" newStatusName="Archived"/>
      </workflow:components>
    </workflow:actionComponentSequence>
    <workflow:actionComponentSequence actionName="Escalate">
      <workflow:components>
        <workflow:component executorName="NOTIFY"/>
      </workflow:components>
    </workflow:actionComponentSequence>
  </workflow:actionComponentSequences>
</workflow:workflowConfiguration>`

const multiDoc = `<?xml version="1.0" encoding="UTF-8"?>
<workflow:workflowConfigurationGroups xmlns:workflow="http://example.com/schema/workflow" client="Acme">
  <workflow:workflowConfiguration actionableType="Ticket">
    <workflow:workflowStatuses>
      <workflow:workflowStatus name="Open"/>
      <workflow:workflowStatus name="Closed"/>
    </workflow:workflowStatuses>
    <workflow:workflowActions>
      <workflow:workflowAction fromStatus="Open" actionName="Close"/>
    </workflow:workflowActions>
    <workflow:actionComponentSequences>
      <workflow:actionComponentSequence actionName="Close">
        <workflow:components>
          <workflow:component executorName="WORKFLOWCHANGESTATUS" newStatusName="Closed"/>
        </workflow:components>
      </workflow:actionComponentSequence>
    </workflow:actionComponentSequences>
  </workflow:workflowConfiguration>
  <workflow:workflowConfiguration actionableType="Order">
    <workflow:workflowStatuses>
      <workflow:workflowStatus name="New"/>
      <workflow:workflowStatus name="Shipped"/>
    </workflow:workflowStatuses>
    <workflow:workflowActions>
      <workflow:workflowAction fromStatus="New" actionName="Ship"/>
      <workflow:workflowAction fromStatus="New" actionName="Close"/>
    </workflow:workflowActions>
    <workflow:actionComponentSequences>
      <workflow:actionComponentSequence actionName="Ship">
        <workflow:components>
          <workflow:component executorName="WORKFLOWCHANGESTATUS" newStatusName="Shipped"/>
        </workflow:components>
      </workflow:actionComponentSequence>
    </workflow:actionComponentSequences>
  </workflow:workflowConfiguration>
</workflow:workflowConfigurationGroups>`

func mustParse(t *testing.T, doc string) *xmlquery.Node {
	t.Helper()
	root, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	return root
}

func newExtractor(t *testing.T) *Extractor {
	t.Helper()
	e, err := New(Options{Prefix: DefaultPrefix})
	require.NoError(t, err)
	return e
}

func targetOf(t *testing.T, s *schema.Status, action string) *string {
	t.Helper()
	target, ok := s.Target(action)
	require.True(t, ok, "action %q missing from %s", action, s.Name)
	return target
}

// --- Tests ---

func TestStatuses_RoundTrip(t *testing.T) {
	statuses := newExtractor(t).Statuses(mustParse(t, singleDoc))

	require.Len(t, statuses, 2)
	assert.Equal(t, "Open", statuses[0].Name)
	assert.Equal(t, "Closed", statuses[1].Name)

	open := statuses[0]
	assert.Equal(t, 2, open.AvailableActions.Len())
	closeTarget := targetOf(t, open, "Close")
	require.NotNil(t, closeTarget)
	assert.Equal(t, "Closed", *closeTarget, "first status-change component wins")
	assert.Nil(t, targetOf(t, open, "Escalate"))

	assert.Equal(t, 0, statuses[1].AvailableActions.Len())
}

func TestStatuses_DanglingSequence(t *testing.T) {
	doc := `<workflow:root xmlns:workflow="urn:wf">
  <workflow:workflowStatus name="Open"/>
  <workflow:workflowAction fromStatus="Open" actionName="Ghost"/>
</workflow:root>`

	statuses := newExtractor(t).Statuses(mustParse(t, doc))
	require.Len(t, statuses, 1)
	assert.Nil(t, targetOf(t, statuses[0], "Ghost"))
	assert.False(t, statuses[0].HasTransitions())
}

func TestStatuses_MissingAttributesDoNotFail(t *testing.T) {
	doc := `<workflow:root xmlns:workflow="urn:wf">
  <workflow:workflowStatus/>
  <workflow:workflowStatus name="Open"/>
  <workflow:workflowAction actionName="Orphan"/>
  <workflow:workflowAction fromStatus="Open"/>
  <workflow:workflowAction fromStatus="Open" actionName="Go"/>
  <workflow:workflowAction fromStatus="Open" actionName="NoTarget"/>
  <workflow:actionComponentSequence actionName="Go">
    <workflow:steps>
      <workflow:component/>
      <workflow:component executorName="WORKFLOWCHANGESTATUS" newStatusName="Done"/>
    </workflow:steps>
  </workflow:actionComponentSequence>
  <workflow:actionComponentSequence actionName="NoTarget">
    <workflow:steps>
      <workflow:component executorName="WORKFLOWCHANGESTATUS"/>
      <workflow:component executorName="WORKFLOWCHANGESTATUS" newStatusName="Later"/>
    </workflow:steps>
  </workflow:actionComponentSequence>
</workflow:root>`

	statuses := newExtractor(t).Statuses(mustParse(t, doc))
	require.Len(t, statuses, 1, "status without name is skipped")

	open := statuses[0]
	assert.Equal(t, 2, open.AvailableActions.Len())
	goTarget := targetOf(t, open, "Go")
	require.NotNil(t, goTarget)
	assert.Equal(t, "Done", *goTarget)
	assert.Nil(t, targetOf(t, open, "NoTarget"), "first change-status component has no newStatusName")
}

func TestStatuses_DuplicateActionLastWriteWins(t *testing.T) {
	doc := `<workflow:root xmlns:workflow="urn:wf">
  <workflow:workflowStatus name="Open"/>
  <workflow:workflowAction fromStatus="Open" actionName="Move"/>
  <workflow:workflowAction fromStatus="Open" actionName="Move"/>
  <workflow:actionComponentSequence actionName="Move">
    <workflow:c><workflow:component executorName="WORKFLOWCHANGESTATUS" newStatusName="Next"/></workflow:c>
  </workflow:actionComponentSequence>
</workflow:root>`

	statuses := newExtractor(t).Statuses(mustParse(t, doc))
	require.Len(t, statuses, 1)
	assert.Equal(t, 1, statuses[0].AvailableActions.Len())
}

func TestStatuses_CustomExecutorAndPrefix(t *testing.T) {
	doc := `<wf:root xmlns:wf="urn:wf">
  <wf:workflowStatus name="A"/>
  <wf:workflowAction fromStatus="A" actionName="Go"/>
  <wf:actionComponentSequence actionName="Go">
    <wf:c><wf:component executorName="MOVE" newStatusName="B"/></wf:c>
  </wf:actionComponentSequence>
</wf:root>`

	e, err := New(Options{Prefix: "wf", StatusChangeExecutor: "MOVE"})
	require.NoError(t, err)

	statuses := e.Statuses(mustParse(t, doc))
	require.Len(t, statuses, 1)
	target := targetOf(t, statuses[0], "Go")
	require.NotNil(t, target)
	assert.Equal(t, "B", *target)

	// The default prefix does not see wf: elements.
	assert.Empty(t, newExtractor(t).Statuses(mustParse(t, doc)))
}

func TestDocument_ScopesEachActionable(t *testing.T) {
	doc := newExtractor(t).Document(mustParse(t, multiDoc))

	assert.Equal(t, "Acme", doc.Client)
	require.Len(t, doc.Actionables, 2)

	ticket, order := doc.Actionables[0], doc.Actionables[1]
	assert.Equal(t, "Ticket", ticket.Type)
	assert.Equal(t, "Acme", ticket.Client)
	assert.Equal(t, "Acme_Ticket_workflow", ticket.DiagramName())
	assert.Equal(t, "Order", order.Type)

	require.Len(t, ticket.Statuses, 2)
	assert.Equal(t, "Open", ticket.Statuses[0].Name)
	require.Len(t, order.Statuses, 2)
	assert.Equal(t, "New", order.Statuses[0].Name)

	// Order's Close action must not resolve through Ticket's sequence.
	assert.Nil(t, targetOf(t, order.Statuses[0], "Close"))
	ship := targetOf(t, order.Statuses[0], "Ship")
	require.NotNil(t, ship)
	assert.Equal(t, "Shipped", *ship)
}

func TestDocument_NoGroup(t *testing.T) {
	doc := newExtractor(t).Document(mustParse(t, singleDoc))
	assert.Equal(t, "", doc.Client)
	require.Len(t, doc.Actionables, 1)
	assert.Equal(t, "Ticket", doc.Actionables[0].Type)
}

func TestNew_InvalidPrefix(t *testing.T) {
	for _, prefix := range []string{"bad prefix", "a b c", "wf:x", "a[", "1wf", "-wf"} {
		_, err := New(Options{Prefix: prefix})
		require.Error(t, err, prefix)
		assert.True(t, schema.HasCode(err, schema.ErrCodeConfig), prefix)
	}
}

func TestNew_ValidPrefixes(t *testing.T) {
	for _, prefix := range []string{"", "workflow", "wf", "_x", "wf_2"} {
		_, err := New(Options{Prefix: prefix})
		assert.NoError(t, err, prefix)
	}
}
