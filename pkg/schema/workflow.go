package schema

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Status is one node of a workflow state machine together with the actions
// available from it.
type Status struct {
	Name string

	// AvailableActions maps action name to target status name in document
	// order. A nil target means the action exists but no status-change
	// component was found for it.
	AvailableActions *orderedmap.OrderedMap[string, *string]
}

// NewStatus creates a Status with an empty action map.
func NewStatus(name string) *Status {
	return &Status{
		Name:             name,
		AvailableActions: orderedmap.New[string, *string](),
	}
}

// SetAction records an action and its target. A repeated action name
// overwrites the earlier target but keeps its position.
func (s *Status) SetAction(action string, target *string) {
	s.AvailableActions.Set(action, target)
}

// Target returns the target recorded for action and whether the action exists.
func (s *Status) Target(action string) (*string, bool) {
	return s.AvailableActions.Get(action)
}

// Transitions returns the actions whose target is resolved, in document order.
func (s *Status) Transitions() []Transition {
	var out []Transition
	for pair := s.AvailableActions.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value == nil {
			continue
		}
		out = append(out, Transition{Action: pair.Key, Target: *pair.Value})
	}
	return out
}

// HasTransitions reports whether at least one action resolves to a status.
func (s *Status) HasTransitions() bool {
	for pair := s.AvailableActions.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value != nil {
			return true
		}
	}
	return false
}

// Transition is a resolved action leading from a status to Target.
type Transition struct {
	Action string
	Target string
}

// Actionable is one independent workflow configuration inside a
// multi-workflow document.
type Actionable struct {
	Type     string
	Client   string
	Statuses []*Status
}

// DiagramName returns the artifact base name for this actionable.
func (a *Actionable) DiagramName() string {
	return a.Client + "_" + a.Type + "_workflow"
}

// Document is the result of extracting a multi-workflow document.
type Document struct {
	Client      string
	Actionables []*Actionable
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
