package api

import (
	"slices"
	"strings"
)

// ProcessStep is one pending transition out of a currently active node.
// Condition is the immutable original from the model edge; RestCondition is
// the residual obligation after partial evaluation against past events.
type ProcessStep struct {
	Condition     Condition
	RestCondition Condition
	Target        NodeID
	NodeID        NodeID
	NodeData      NodeData
}

// StepsFor expands the node with the given id into its pending transitions.
//
// The End node expands into a single terminal step with a never-firing
// condition and no target, so a finished instance keeps exactly one step
// whose data is EndData. Every other node produces one step per outgoing
// edge.
func StepsFor(m *ProcessModel, id NodeID) []ProcessStep {
	data := m.Data(id)
	if _, isEnd := data.(EndData); isEnd {
		return []ProcessStep{{
			Condition:     False(),
			RestCondition: False(),
			NodeID:        id,
			NodeData:      data,
		}}
	}
	cts := m.ConditionsWithTargets(id)
	steps := make([]ProcessStep, len(cts))
	for i, ct := range cts {
		steps[i] = ProcessStep{
			Condition:     ct.Condition,
			RestCondition: ct.Condition,
			Target:        ct.Target,
			NodeID:        id,
			NodeData:      data,
		}
	}
	return steps
}

// StepResult is the outcome of offering an event to one step: either the
// step fired (Transitioned, with the target to expand) or it did not, and
// Step carries the possibly-reduced residual.
type StepResult struct {
	Transitioned bool
	Target       NodeID
	Step         ProcessStep
}

// Advance evaluates the step's residual condition against the last event of
// the log. Only the newest event is consulted; earlier events have already
// been folded into the residual.
func (s ProcessStep) Advance(events []Event) StepResult {
	var last Event
	if len(events) > 0 {
		last = events[len(events)-1]
	}
	out := Eval(s.RestCondition, last)
	if out.Done {
		return StepResult{Transitioned: true, Target: s.Target}
	}
	next := s
	next.RestCondition = out.Rest
	return StepResult{Step: next}
}

// Equal reports structural equality of two steps.
func (s ProcessStep) Equal(o ProcessStep) bool {
	return s.NodeID == o.NodeID &&
		s.Target == o.Target &&
		s.Condition.Equal(o.Condition) &&
		s.RestCondition.Equal(o.RestCondition) &&
		s.NodeData.Equal(o.NodeData)
}

func (s ProcessStep) sortKey() string {
	return string(s.NodeID) + "\x00" + string(s.Target) + "\x00" +
		s.RestCondition.String() + "\x00" + s.Condition.String()
}

// CanonicalSteps returns the step set deduplicated and in canonical order,
// making structural comparison of step sets well-defined.
func CanonicalSteps(steps []ProcessStep) []ProcessStep {
	out := slices.Clone(steps)
	slices.SortStableFunc(out, func(a, b ProcessStep) int {
		return strings.Compare(a.sortKey(), b.sortKey())
	})
	return slices.CompactFunc(out, ProcessStep.Equal)
}

// StepSetsEqual reports whether two canonical step sets are structurally
// identical.
func StepSetsEqual(a, b []ProcessStep) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
