// Package persistence stores process instances. Because stepping is a
// deterministic function of (model, event log), a store only keeps the
// instance id, its model name, the event log and the done flag; instances
// are rebuilt by replaying the log through the pure core.
package persistence

import (
	"errors"

	"github.com/petrijr/flume/pkg/api"
)

var (
	// ErrInstanceNotFound is returned when an instance is not found.
	ErrInstanceNotFound = errors.New("instance not found")

	// ErrInstanceExists is returned when saving an instance whose id is taken.
	ErrInstanceExists = errors.New("instance already exists")
)

// InstanceRecord is the persisted shape of a process instance.
type InstanceRecord struct {
	ID        string
	ModelName string
	Events    []api.Event
	Done      bool
}

// InstanceFilter is used to select instances from the store.
// Empty fields mean "no filter".
type InstanceFilter struct {
	ModelName string
	Status    api.Status
}

func (f InstanceFilter) matches(rec *InstanceRecord) bool {
	if f.ModelName != "" && rec.ModelName != f.ModelName {
		return false
	}
	switch f.Status {
	case api.StatusCompleted:
		return rec.Done
	case api.StatusRunning:
		return !rec.Done
	}
	return true
}

// InstanceStore handles storage of instance records.
type InstanceStore interface {
	SaveInstance(rec *InstanceRecord) error
	UpdateInstance(rec *InstanceRecord) error
	GetInstance(id string) (*InstanceRecord, error)
	ListInstances(filter InstanceFilter) ([]*InstanceRecord, error)
}
