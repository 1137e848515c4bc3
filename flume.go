package flume

import (
	"context"
	"database/sql"

	bolt "go.etcd.io/bbolt"

	"github.com/petrijr/flume/internal/engine"
	"github.com/petrijr/flume/pkg/api"
)

// Re-export key types so users don't need to dig into pkg/api.

type (
	Engine               = api.Engine
	ProcessModel         = api.ProcessModel
	ProcessInstance      = api.ProcessInstance
	ProcessStep          = api.ProcessStep
	InstanceListOptions  = api.InstanceListOptions
	Status               = api.Status
	Condition            = api.Condition
	Outcome              = api.Outcome
	Event                = api.Event
	MapEvent             = api.MapEvent
	NodeID               = api.NodeID
	NodeData             = api.NodeData
	ActivityData         = api.Activity
	IDGenerator          = api.IDGenerator
	UUIDGenerator        = api.UUIDGenerator
	SequenceGenerator    = api.SequenceGenerator
	Observer             = api.Observer
	LoggingObserver      = api.LoggingObserver
	BasicMetrics         = api.BasicMetrics
	BasicMetricsSnapshot = api.BasicMetricsSnapshot
	CompositeObserver    = api.CompositeObserver
	NoopObserver         = api.NoopObserver
	NodeExistsError      = api.NodeExistsError
)

// Re-export common helpers.

var (
	NewEvent             = api.NewEvent
	NewLoggingObserver   = api.NewLoggingObserver
	NewCompositeObserver = api.NewCompositeObserver
	NewSequenceGenerator = api.NewSequenceGenerator
	EvalCondition        = api.Eval
	StepsFor             = api.StepsFor
	WithStartCondition   = api.WithStartCondition
	WithEndCondition     = api.WithEndCondition
)

// Condition constructors.

var (
	True             = api.True
	False            = api.False
	Value            = api.NewValue
	FieldOf          = api.NewField
	IsType           = api.NewIsType
	Eq               = api.NewEquals
	CondAnd          = api.NewAnd
	CondOr           = api.NewOr
	AndThen          = api.NewAndThen
	EventFieldEquals = api.EventFieldEquals
)

// Re-export status values for convenience.

const (
	StatusRunning   = api.StatusRunning
	StatusCompleted = api.StatusCompleted
)

// Reserved node ids.

const (
	StartNodeID = api.StartNodeID
	EndNodeID   = api.EndNodeID
)

// Model combinators. The variadic-free forms taking an explicit IDGenerator
// live in pkg/api; these wrappers default to UUID ids for fresh split/join
// nodes.

// Neutral returns the identity model: Start wired straight to End.
func Neutral() *ProcessModel { return api.Neutral() }

// MakeNode wraps a single node between Start and End.
func MakeNode(data NodeData) (*ProcessModel, error) { return api.MakeNode(data) }

// Append composes two models sequentially. It forms a monoid with Neutral
// as identity.
func Append(m1, m2 *ProcessModel) (*ProcessModel, error) { return api.Append(m1, m2) }

// MustAppend is Append for callers who know the node sets are disjoint.
func MustAppend(m1, m2 *ProcessModel) *ProcessModel { return api.MustAppend(m1, m2) }

// OneOf composes two models as an exclusive choice.
func OneOf(m1, m2 *ProcessModel) (*ProcessModel, error) {
	return api.OneOf(api.UUIDGenerator{}, m1, m2)
}

// Both composes two models in parallel.
func Both(m1, m2 *ProcessModel) (*ProcessModel, error) {
	return api.Both(api.UUIDGenerator{}, m1, m2)
}

// Loop repeats body while cond keeps firing.
func Loop(body *ProcessModel, cond Condition) (*ProcessModel, error) {
	return api.Loop(api.UUIDGenerator{}, body, cond)
}

// Instance entrypoints over the pure core. Stepping is deterministic and
// purely functional: the returned instance is a new value and the input is
// never mutated.

// NewInstance creates an instance of m with a fresh UUID id and runs the
// initial stepping pass.
func NewInstance(m *ProcessModel) *ProcessInstance {
	return engine.NewInstance(api.UUIDGenerator{}, m)
}

// NewInstanceWithID is NewInstance with a caller-chosen id.
func NewInstanceWithID(m *ProcessModel, id string) *ProcessInstance {
	return engine.NewInstanceWithID(id, m)
}

// Step appends ev to the instance's event log and advances the step set to
// a fixed point.
func Step(inst *ProcessInstance, ev Event) *ProcessInstance {
	return engine.StepInstance(inst, ev)
}

// Engine constructors. These wrap the internal/engine package so external
// callers never need to import internal packages.

// NewInMemoryEngine returns an Engine backed entirely by in-memory stores.
func NewInMemoryEngine() Engine {
	return engine.NewInMemoryEngine()
}

// NewInMemoryEngineWithObserver returns an in-memory Engine with the given Observer.
func NewInMemoryEngineWithObserver(obs Observer) Engine {
	return engine.NewInMemoryEngineWithObserver(obs)
}

// NewSQLiteEngine returns an Engine that persists instance event logs in a
// SQLite database. Models are kept in-memory.
func NewSQLiteEngine(db *sql.DB) (Engine, error) {
	return engine.NewSQLiteEngine(db)
}

// NewSQLiteEngineWithObserver returns a SQLite-backed Engine with the given Observer.
func NewSQLiteEngineWithObserver(db *sql.DB, obs Observer) (Engine, error) {
	return engine.NewSQLiteEngineWithObserver(db, obs)
}

// NewBoltEngine returns an Engine that persists instance event logs in a
// bbolt file.
func NewBoltEngine(db *bolt.DB) (Engine, error) {
	return engine.NewBoltEngine(db)
}

// NewBoltEngineWithObserver returns a bbolt-backed Engine with the given Observer.
func NewBoltEngineWithObserver(db *bolt.DB, obs Observer) (Engine, error) {
	return engine.NewBoltEngineWithObserver(db, obs)
}

// Convenience helpers that just forward to the underlying Engine.

// StartInstance starts a new instance of a registered model.
func StartInstance(ctx context.Context, eng Engine, name string) (*ProcessInstance, error) {
	return eng.Start(ctx, name)
}

// StepInstance delivers an event to a managed instance.
func StepInstance(ctx context.Context, eng Engine, id string, ev Event) (*ProcessInstance, error) {
	return eng.Step(ctx, id, ev)
}

// GetInstance fetches a managed instance by ID.
func GetInstance(ctx context.Context, eng Engine, id string) (*ProcessInstance, error) {
	return eng.GetInstance(ctx, id)
}

// ListInstances lists managed instances according to the given options.
func ListInstances(ctx context.Context, eng Engine, opts InstanceListOptions) ([]*ProcessInstance, error) {
	return eng.ListInstances(ctx, opts)
}
