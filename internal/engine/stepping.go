// Package engine advances process instances: the fixed-point stepping
// algorithm over step sets, plus the Engine implementation that wraps it
// with a model registry, persistence and observers.
package engine

import (
	"slices"

	"github.com/petrijr/flume/pkg/api"
)

// NewInstance creates an instance of m positioned at Start and runs the
// initial stepping pass, so trivially-true transitions fire before the
// first event arrives.
func NewInstance(gen api.IDGenerator, m *api.ProcessModel) *api.ProcessInstance {
	return NewInstanceWithID(gen.NewID(), m)
}

// NewInstanceWithID is NewInstance with a caller-chosen id.
func NewInstanceWithID(id string, m *api.ProcessModel) *api.ProcessInstance {
	steps := api.CanonicalSteps(api.StepsFor(m, api.StartNodeID))
	return &api.ProcessInstance{
		ID:           id,
		Model:        m,
		CurrentSteps: RunToFixpoint(m, steps, nil),
	}
}

// StepInstance appends ev to the log and advances the step set to a fixed
// point. The input instance is left untouched.
func StepInstance(in *api.ProcessInstance, ev api.Event) *api.ProcessInstance {
	events := append(slices.Clone(in.Events), ev)
	return &api.ProcessInstance{
		ID:           in.ID,
		ModelName:    in.ModelName,
		Model:        in.Model,
		CurrentSteps: RunToFixpoint(in.Model, in.CurrentSteps, events),
		Events:       events,
	}
}

// RunToFixpoint repeatedly applies advanceOnce until the step set stops
// changing structurally. Termination: every iteration either reduces a
// residual condition, advances a step toward End, or drops a step, and
// loops in the model are bounded by the path cutoff.
func RunToFixpoint(m *api.ProcessModel, steps []api.ProcessStep, events []api.Event) []api.ProcessStep {
	prev := api.CanonicalSteps(steps)
	for {
		next := advanceOnce(m, prev, events)
		if api.StepSetsEqual(next, prev) {
			return prev
		}
		prev = next
	}
}

// advanceOnce folds over the previous step set once. For each step it
// decides: drop (a lost OR branch), hold (a Join waiting on parallel
// branches), or the generic advance against the newest event. Transitioned
// steps are replaced by the expansion of their target node; those new steps
// are reconsidered on the next iteration.
func advanceOnce(m *api.ProcessModel, prev []api.ProcessStep, events []api.Event) []api.ProcessStep {
	var curr []api.ProcessStep

	for i, s := range prev {
		switch data := s.NodeData.(type) {
		case api.OrSplit:
			if orDecided(i, s, curr, prev) {
				continue
			}
		case api.Join:
			if mate, ok := m.Lookup(data.ForID); ok {
				if _, isAnd := mate.(api.AndSplit); isAnd && !andDone(m, prev, data) {
					curr = append(curr, s)
					continue
				}
			}
		}

		res := s.Advance(events)
		if res.Transitioned {
			curr = append(curr, api.StepsFor(m, res.Target)...)
		} else {
			curr = append(curr, res.Step)
		}
	}

	return api.CanonicalSteps(curr)
}

// orDecided enforces exclusive-choice semantics: once one branch of an OR
// has fired, its unfired siblings are dropped. The step at prev[idx] is
// decided-against when it is the sole step left for its OR in prev (the
// sibling transitioned on an earlier iteration), or when it is the second
// of the OR's two branches in prev and no step for the OR remains in the
// accumulating current set (the sibling transitioned earlier in this fold).
// OR splits are binary; a step set never holds more than two branches of
// one OR.
func orDecided(idx int, s api.ProcessStep, curr, prev []api.ProcessStep) bool {
	var siblings []int
	for j, p := range prev {
		if p.NodeID == s.NodeID {
			siblings = append(siblings, j)
		}
	}

	if len(siblings) == 1 {
		return true
	}
	if len(siblings) == 2 && siblings[1] == idx {
		for _, c := range curr {
			if c.NodeID == s.NodeID {
				return false
			}
		}
		return true
	}
	return false
}

// andDone reports whether every branch of the AndSplit mated to join has
// reached it: no node lying on a path from the split to the join may still
// appear in the step set.
func andDone(m *api.ProcessModel, steps []api.ProcessStep, join api.Join) bool {
	between := m.NodesBetween(join.ForID, join.ID)
	for _, s := range steps {
		if between[s.NodeID] {
			return false
		}
	}
	return true
}
