package api

import "context"

// Status represents the lifecycle state of a process instance. With a pure
// core there are only two: an instance is either still advancing or its
// step set has collapsed to the End node.
type Status string

const (
	StatusRunning   Status = "RUNNING"
	StatusCompleted Status = "COMPLETED"
)

// InstanceListOptions controls how instances are listed.
// Zero values mean "no filter" for that field.
type InstanceListOptions struct {
	// ModelName, if non-empty, limits results to instances of the given model.
	ModelName string

	// Status, if non-empty, limits results to instances with the given status.
	Status Status
}

// Engine is the high-level API around the pure core: a model registry,
// instance lifecycle and pluggable persistence. Because stepping is a
// deterministic function of (model, event log), engines persist only the
// log and rebuild instances by replay.
type Engine interface {
	// RegisterModel registers a model under a name.
	RegisterModel(name string, m *ProcessModel) error

	// Start creates a new instance of a registered model, runs the initial
	// stepping pass and persists it.
	Start(ctx context.Context, name string) (*ProcessInstance, error)

	// StartWithID is Start with a caller-chosen instance id.
	StartWithID(ctx context.Context, name, id string) (*ProcessInstance, error)

	// Step appends an event to the instance's log, advances it to a fixed
	// point and persists the result.
	Step(ctx context.Context, id string, ev Event) (*ProcessInstance, error)

	// GetInstance rebuilds an instance from its persisted event log.
	GetInstance(ctx context.Context, id string) (*ProcessInstance, error)

	// ListInstances returns instances matching the given options.
	ListInstances(ctx context.Context, opts InstanceListOptions) ([]*ProcessInstance, error)
}
