package api

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Observer receives callbacks from the engine for logging and metrics.
//
// Implementations should be fast and non-blocking; heavy work should be done
// asynchronously so as not to delay stepping.
type Observer interface {
	// OnInstanceStart is called once when an instance is created, after the
	// initial stepping pass.
	OnInstanceStart(ctx context.Context, inst *ProcessInstance)

	// OnEventProcessed is called after each Step call, for the instance
	// state that resulted from appending ev. duration covers the stepping
	// fixed point, not persistence.
	OnEventProcessed(ctx context.Context, inst *ProcessInstance, ev Event, duration time.Duration)

	// OnInstanceCompleted is called when an instance's step set collapses
	// to the End node.
	OnInstanceCompleted(ctx context.Context, inst *ProcessInstance)
}

// NoopObserver is an Observer that does nothing.
// It is used as the default when no observer is configured.
type NoopObserver struct{}

func (NoopObserver) OnInstanceStart(ctx context.Context, inst *ProcessInstance) {}
func (NoopObserver) OnEventProcessed(ctx context.Context, inst *ProcessInstance, ev Event, d time.Duration) {
}
func (NoopObserver) OnInstanceCompleted(ctx context.Context, inst *ProcessInstance) {}

// CompositeObserver fans out events to multiple observers.
type CompositeObserver struct {
	observers []Observer
}

// NewCompositeObserver creates an Observer that forwards events to each
// non-nil observer in obs.
func NewCompositeObserver(obs ...Observer) Observer {
	filtered := make([]Observer, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	if len(filtered) == 0 {
		return NoopObserver{}
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &CompositeObserver{observers: filtered}
}

func (c *CompositeObserver) OnInstanceStart(ctx context.Context, inst *ProcessInstance) {
	for _, o := range c.observers {
		o.OnInstanceStart(ctx, inst)
	}
}

func (c *CompositeObserver) OnEventProcessed(ctx context.Context, inst *ProcessInstance, ev Event, d time.Duration) {
	for _, o := range c.observers {
		o.OnEventProcessed(ctx, inst, ev, d)
	}
}

func (c *CompositeObserver) OnInstanceCompleted(ctx context.Context, inst *ProcessInstance) {
	for _, o := range c.observers {
		o.OnInstanceCompleted(ctx, inst)
	}
}

// LoggingObserver writes structured logs using log/slog.
type LoggingObserver struct {
	Logger *slog.Logger
}

// NewLoggingObserver creates an Observer that logs instance lifecycle events
// using the provided slog.Logger. If logger is nil, slog.Default() is used.
func NewLoggingObserver(logger *slog.Logger) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{Logger: logger}
}

func (o *LoggingObserver) OnInstanceStart(ctx context.Context, inst *ProcessInstance) {
	o.Logger.InfoContext(ctx, "instance_start",
		slog.String("model", inst.ModelName),
		slog.String("instance_id", inst.ID),
		slog.Int("steps", len(inst.CurrentSteps)),
	)
}

func (o *LoggingObserver) OnEventProcessed(ctx context.Context, inst *ProcessInstance, ev Event, d time.Duration) {
	eventType := ""
	if ev != nil {
		eventType = ev.EventType()
	}
	o.Logger.DebugContext(ctx, "event_processed",
		slog.String("model", inst.ModelName),
		slog.String("instance_id", inst.ID),
		slog.String("event_type", eventType),
		slog.Int("steps", len(inst.CurrentSteps)),
		slog.Bool("done", inst.Done()),
		slog.Duration("duration", d),
	)
}

func (o *LoggingObserver) OnInstanceCompleted(ctx context.Context, inst *ProcessInstance) {
	o.Logger.InfoContext(ctx, "instance_completed",
		slog.String("model", inst.ModelName),
		slog.String("instance_id", inst.ID),
		slog.Int("events", len(inst.Events)),
	)
}

// BasicMetrics collects simple counters and aggregate stepping durations.
// It implements Observer, and can be combined with LoggingObserver via
// NewCompositeObserver.
type BasicMetrics struct {
	NoopObserver

	instancesStarted   atomic.Int64
	instancesCompleted atomic.Int64
	eventsProcessed    atomic.Int64
	totalStepDuration  atomic.Int64 // nanoseconds
}

// BasicMetricsSnapshot is an immutable snapshot of BasicMetrics.
type BasicMetricsSnapshot struct {
	InstancesStarted   int64
	InstancesCompleted int64
	RunningInstances   int64

	EventsProcessed  int64
	AvgEventDuration time.Duration
}

func (m *BasicMetrics) OnInstanceStart(ctx context.Context, inst *ProcessInstance) {
	m.instancesStarted.Add(1)
}

func (m *BasicMetrics) OnEventProcessed(ctx context.Context, inst *ProcessInstance, ev Event, d time.Duration) {
	m.eventsProcessed.Add(1)
	m.totalStepDuration.Add(d.Nanoseconds())
}

func (m *BasicMetrics) OnInstanceCompleted(ctx context.Context, inst *ProcessInstance) {
	m.instancesCompleted.Add(1)
}

// Snapshot returns a snapshot of the current metrics.
func (m *BasicMetrics) Snapshot() BasicMetricsSnapshot {
	started := m.instancesStarted.Load()
	completed := m.instancesCompleted.Load()
	events := m.eventsProcessed.Load()
	totalNs := m.totalStepDuration.Load()

	var avg time.Duration
	if events > 0 {
		avg = time.Duration(totalNs / events)
	}

	return BasicMetricsSnapshot{
		InstancesStarted:   started,
		InstancesCompleted: completed,
		RunningInstances:   started - completed,
		EventsProcessed:    events,
		AvgEventDuration:   avg,
	}
}
