package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/petrijr/flume/internal/persistence"
	"github.com/petrijr/flume/pkg/api"
)

// engineImpl is a synchronous, in-process engine implementation. Models are
// registered in memory; instances are persisted as event logs and rebuilt
// by replay.
type engineImpl struct {
	mu     sync.RWMutex
	models map[string]*api.ProcessModel

	instances persistence.InstanceStore
	observer  api.Observer
	gen       api.IDGenerator
}

// Config describes how to construct an engineImpl.
// Only used inside this package; external callers use the helper functions.
type Config struct {
	Instances persistence.InstanceStore
	Observer  api.Observer
	IDGen     api.IDGenerator
}

// NewEngineWithConfig creates a new Engine using the given configuration.
func NewEngineWithConfig(cfg Config) api.Engine {
	obs := cfg.Observer
	if obs == nil {
		obs = api.NoopObserver{}
	}
	gen := cfg.IDGen
	if gen == nil {
		gen = api.UUIDGenerator{}
	}
	store := cfg.Instances
	if store == nil {
		store = persistence.NewInMemoryStore()
	}
	return &engineImpl{
		models:    make(map[string]*api.ProcessModel),
		instances: store,
		observer:  obs,
		gen:       gen,
	}
}

// NewInMemoryEngine returns an Engine backed entirely by an in-memory store.
func NewInMemoryEngine() api.Engine {
	return NewEngineWithConfig(Config{})
}

// NewInMemoryEngineWithObserver returns an in-memory Engine with the given Observer.
func NewInMemoryEngineWithObserver(obs api.Observer) api.Engine {
	return NewEngineWithConfig(Config{Observer: obs})
}

// NewSQLiteEngine returns an Engine that persists instance event logs in a
// SQLite database. Models are kept in-memory.
func NewSQLiteEngine(db *sql.DB) (api.Engine, error) {
	return NewSQLiteEngineWithObserver(db, nil)
}

// NewSQLiteEngineWithObserver returns a SQLite-backed Engine with the given Observer.
func NewSQLiteEngineWithObserver(db *sql.DB, obs api.Observer) (api.Engine, error) {
	inst, err := persistence.NewSQLiteInstanceStore(db)
	if err != nil {
		return nil, err
	}
	return NewEngineWithConfig(Config{Instances: inst, Observer: obs}), nil
}

// NewBoltEngine returns an Engine that persists instance event logs in a
// bbolt file. Models are kept in-memory.
func NewBoltEngine(db *bolt.DB) (api.Engine, error) {
	return NewBoltEngineWithObserver(db, nil)
}

// NewBoltEngineWithObserver returns a bbolt-backed Engine with the given Observer.
func NewBoltEngineWithObserver(db *bolt.DB, obs api.Observer) (api.Engine, error) {
	inst, err := persistence.NewBoltInstanceStore(db)
	if err != nil {
		return nil, err
	}
	return NewEngineWithConfig(Config{Instances: inst, Observer: obs}), nil
}

func (e *engineImpl) RegisterModel(name string, m *api.ProcessModel) error {
	if name == "" {
		return errors.New("model name is required")
	}
	if m == nil {
		return errors.New("model is required")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.models[name]; ok {
		return fmt.Errorf("model already registered: %s", name)
	}
	e.models[name] = m
	return nil
}

func (e *engineImpl) model(name string) (*api.ProcessModel, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	m, ok := e.models[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	return m, nil
}

func (e *engineImpl) Start(ctx context.Context, name string) (*api.ProcessInstance, error) {
	return e.StartWithID(ctx, name, e.gen.NewID())
}

func (e *engineImpl) StartWithID(ctx context.Context, name, id string) (*api.ProcessInstance, error) {
	m, err := e.model(name)
	if err != nil {
		return nil, err
	}

	inst := NewInstanceWithID(id, m)
	inst.ModelName = name

	if err := e.instances.SaveInstance(record(inst)); err != nil {
		return nil, err
	}

	e.observer.OnInstanceStart(ctx, inst)
	if inst.Done() {
		e.observer.OnInstanceCompleted(ctx, inst)
	}
	return inst, nil
}

func (e *engineImpl) Step(ctx context.Context, id string, ev api.Event) (*api.ProcessInstance, error) {
	inst, err := e.GetInstance(ctx, id)
	if err != nil {
		return nil, err
	}
	wasDone := inst.Done()

	started := time.Now()
	next := StepInstance(inst, ev)
	elapsed := time.Since(started)

	if err := e.instances.UpdateInstance(record(next)); err != nil {
		return nil, err
	}

	e.observer.OnEventProcessed(ctx, next, ev, elapsed)
	if !wasDone && next.Done() {
		e.observer.OnInstanceCompleted(ctx, next)
	}
	return next, nil
}

func (e *engineImpl) GetInstance(ctx context.Context, id string) (*api.ProcessInstance, error) {
	rec, err := e.instances.GetInstance(id)
	if err != nil {
		if errors.Is(err, persistence.ErrInstanceNotFound) {
			return nil, fmt.Errorf("instance not found: %s", id)
		}
		return nil, err
	}
	return e.replay(rec)
}

func (e *engineImpl) ListInstances(ctx context.Context, opts api.InstanceListOptions) ([]*api.ProcessInstance, error) {
	recs, err := e.instances.ListInstances(persistence.InstanceFilter{
		ModelName: opts.ModelName,
		Status:    opts.Status,
	})
	if err != nil {
		return nil, err
	}
	out := make([]*api.ProcessInstance, 0, len(recs))
	for _, rec := range recs {
		inst, err := e.replay(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, nil
}

// replay rebuilds an instance by feeding its persisted event log through
// the pure core, one event at a time, exactly as it was originally stepped.
func (e *engineImpl) replay(rec *persistence.InstanceRecord) (*api.ProcessInstance, error) {
	m, err := e.model(rec.ModelName)
	if err != nil {
		return nil, fmt.Errorf("instance %s: %w", rec.ID, err)
	}
	inst := NewInstanceWithID(rec.ID, m)
	inst.ModelName = rec.ModelName
	for _, ev := range rec.Events {
		inst = StepInstance(inst, ev)
	}
	return inst, nil
}

func record(inst *api.ProcessInstance) *persistence.InstanceRecord {
	return &persistence.InstanceRecord{
		ID:        inst.ID,
		ModelName: inst.ModelName,
		Events:    inst.Events,
		Done:      inst.Done(),
	}
}
