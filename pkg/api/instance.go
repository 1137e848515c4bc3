package api

// ProcessInstance is one running execution of a model: the ordered event
// log plus the current step set. Instances are immutable snapshots; stepping
// returns a new instance and never mutates the old one, so a caller may keep
// references to earlier states.
type ProcessInstance struct {
	ID string

	// ModelName is set when the instance is managed by an Engine; it is
	// empty for instances created through the pure entrypoints.
	ModelName string

	Model *ProcessModel

	// CurrentSteps is deduplicated and canonically ordered.
	CurrentSteps []ProcessStep

	// Events is the append-only log, in exact caller order.
	Events []Event
}

// Done reports whether the instance has run to completion: its only
// remaining step is the End node's terminal step.
func (in *ProcessInstance) Done() bool {
	if len(in.CurrentSteps) != 1 {
		return false
	}
	_, ok := in.CurrentSteps[0].NodeData.(EndData)
	return ok
}

// CurrentlyActive returns the node data of every current step. A node with
// several pending transitions appears once per step.
func (in *ProcessInstance) CurrentlyActive() []NodeData {
	active := make([]NodeData, len(in.CurrentSteps))
	for i, s := range in.CurrentSteps {
		active[i] = s.NodeData
	}
	return active
}

// CurrentlyActiveActivities returns the subset of active nodes that are
// user activities, which the caller is expected to execute and whose output
// events it feeds back via Step.
func (in *ProcessInstance) CurrentlyActiveActivities() []Activity {
	var acts []Activity
	for _, s := range in.CurrentSteps {
		if a, ok := s.NodeData.(Activity); ok {
			acts = append(acts, a)
		}
	}
	return acts
}

// Status derives the engine-level status from the step set.
func (in *ProcessInstance) Status() Status {
	if in.Done() {
		return StatusCompleted
	}
	return StatusRunning
}
