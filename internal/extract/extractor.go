// Package extract reads workflow-definition XML and produces the statuses and
// resolved transitions that the diagram package renders.
package extract

import (
	"fmt"
	"log/slog"
	"regexp"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
	"github.com/rendis/wfgraph/pkg/schema"
)

const (
	// DefaultPrefix is the namespace prefix used by workflow exports.
	DefaultPrefix = "workflow"
	// DefaultStatusChangeExecutor identifies the component that moves a
	// workflow to a new status.
	DefaultStatusChangeExecutor = "WORKFLOWCHANGESTATUS"
)

// Attribute names read from the source document.
const (
	attrClient         = "client"
	attrActionableType = "actionableType"
	attrName           = "name"
	attrFromStatus     = "fromStatus"
	attrActionName     = "actionName"
	attrExecutorName   = "executorName"
	attrNewStatusName  = "newStatusName"
)

// prefixPattern is the NCName subset accepted as an element prefix.
var prefixPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.-]*$`)

// Options configures an Extractor.
type Options struct {
	// Prefix is the namespace prefix of workflow elements. Empty matches
	// unprefixed elements.
	Prefix string
	// StatusChangeExecutor is the executorName of status-change components.
	StatusChangeExecutor string
	Logger               *slog.Logger
}

// Extractor resolves statuses and transitions from a parsed document.
// It holds only compiled queries and is safe for concurrent use.
type Extractor struct {
	executor string
	logger   *slog.Logger

	groups     *xpath.Expr
	configs    *xpath.Expr
	statuses   *xpath.Expr
	actions    *xpath.Expr
	sequences  *xpath.Expr
	components *xpath.Expr
}

// New compiles the element queries for the configured prefix.
func New(opts Options) (*Extractor, error) {
	if opts.StatusChangeExecutor == "" {
		opts.StatusChangeExecutor = DefaultStatusChangeExecutor
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Prefix != "" && !prefixPattern.MatchString(opts.Prefix) {
		return nil, schema.NewErrorf(schema.ErrCodeConfig, "invalid element prefix %q", opts.Prefix).
			WithDetails(map[string]any{"pattern": prefixPattern.String()})
	}

	e := &Extractor{executor: opts.StatusChangeExecutor, logger: opts.Logger}
	queries := []struct {
		dst     **xpath.Expr
		element string
	}{
		{&e.groups, "workflowConfigurationGroups"},
		{&e.configs, "workflowConfiguration"},
		{&e.statuses, "workflowStatus"},
		{&e.actions, "workflowAction"},
		{&e.sequences, "actionComponentSequence"},
		{&e.components, "component"},
	}
	for _, q := range queries {
		expr, err := xpath.Compile(descendantPath(opts.Prefix, q.element))
		if err != nil {
			return nil, schema.NewErrorf(schema.ErrCodeConfig,
				"invalid element prefix %q", opts.Prefix).WithCause(err)
		}
		*q.dst = expr
	}
	return e, nil
}

func descendantPath(prefix, element string) string {
	if prefix == "" {
		return ".//" + element
	}
	return fmt.Sprintf(".//%s:%s", prefix, element)
}

// Statuses extracts every status declared below scope, in document order,
// with its actions resolved against the component sequences below scope.
func (e *Extractor) Statuses(scope *xmlquery.Node) []*schema.Status {
	idx := e.index(scope)

	statuses := make([]*schema.Status, 0, len(idx.statuses))
	for _, node := range idx.statuses {
		name, ok := attr(node, attrName)
		if !ok {
			e.logger.Debug("skipping status without name", slog.Int("line", node.LineNumber))
			continue
		}
		status := schema.NewStatus(name)

		for _, action := range idx.actionsFrom[name] {
			actionName, ok := attr(action, attrActionName)
			if !ok {
				e.logger.Debug("skipping action without actionName",
					slog.String("from_status", name), slog.Int("line", action.LineNumber))
				continue
			}
			status.SetAction(actionName, e.resolveTarget(idx, actionName))
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// Document extracts the client identifier and one Actionable per
// workflowConfiguration element below root.
func (e *Extractor) Document(root *xmlquery.Node) *schema.Document {
	doc := &schema.Document{}
	if group := xmlquery.QuerySelector(root, e.groups); group != nil {
		doc.Client, _ = attr(group, attrClient)
	}

	for _, cfg := range xmlquery.QuerySelectorAll(root, e.configs) {
		actionableType, ok := attr(cfg, attrActionableType)
		if !ok {
			e.logger.Debug("workflow configuration without actionableType",
				slog.Int("line", cfg.LineNumber))
		}
		doc.Actionables = append(doc.Actionables, &schema.Actionable{
			Type:     actionableType,
			Client:   doc.Client,
			Statuses: e.Statuses(cfg),
		})
	}
	return doc
}

// scopeIndex holds the elements of one scope, queried once.
type scopeIndex struct {
	statuses    []*xmlquery.Node
	actionsFrom map[string][]*xmlquery.Node
	sequences   []*xmlquery.Node
}

func (e *Extractor) index(scope *xmlquery.Node) *scopeIndex {
	idx := &scopeIndex{
		statuses:    xmlquery.QuerySelectorAll(scope, e.statuses),
		actionsFrom: make(map[string][]*xmlquery.Node),
		sequences:   xmlquery.QuerySelectorAll(scope, e.sequences),
	}
	for _, action := range xmlquery.QuerySelectorAll(scope, e.actions) {
		from, ok := attr(action, attrFromStatus)
		if !ok {
			continue
		}
		idx.actionsFrom[from] = append(idx.actionsFrom[from], action)
	}
	return idx
}

// resolveTarget follows action -> component sequence -> status-change
// component -> newStatusName. The first matching component in document order
// wins; nil means the action changes no status.
func (e *Extractor) resolveTarget(idx *scopeIndex, actionName string) *string {
	for _, seq := range idx.sequences {
		if name, ok := attr(seq, attrActionName); !ok || name != actionName {
			continue
		}
		for _, comp := range xmlquery.QuerySelectorAll(seq, e.components) {
			if executor, ok := attr(comp, attrExecutorName); !ok || executor != e.executor {
				continue
			}
			if target, ok := attr(comp, attrNewStatusName); ok {
				return &target
			}
			return nil
		}
	}
	return nil
}

// attr returns the value of the unqualified attribute name on n.
func attr(n *xmlquery.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Name.Space == "" && a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}
