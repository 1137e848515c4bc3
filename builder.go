package flume

import (
	"fmt"

	"github.com/petrijr/flume/pkg/api"
)

// FlowBuilder provides a fluent API for composing process models:
//
//	model, err := flume.NewFlow().
//	    Activity("reserveStock", flume.WithOutputEvents("stock.reserved")).
//	    EndWhen(flume.IsType("stock.reserved")).
//	    OneOf(approve, reject).
//	    Build()
//
// Each call appends to the model built so far; the first construction error
// is remembered and returned by Build. Programmer errors (empty ids, nil
// models) panic immediately.
type FlowBuilder struct {
	gen api.IDGenerator
	m   *api.ProcessModel
	err error
}

// FlowOption configures a FlowBuilder.
type FlowOption func(*FlowBuilder)

// WithIDGenerator makes the builder draw split/join ids from g instead of
// random UUIDs, which keeps models reproducible in tests.
func WithIDGenerator(g IDGenerator) FlowOption {
	return func(b *FlowBuilder) {
		b.gen = g
	}
}

// NewFlow creates a builder starting from the neutral model.
func NewFlow(opts ...FlowOption) *FlowBuilder {
	b := &FlowBuilder{
		gen: api.UUIDGenerator{},
		m:   api.Neutral(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ActivityOption configures an activity node.
type ActivityOption func(*api.Activity)

// WithVersion sets the activity version.
func WithVersion(v int) ActivityOption {
	return func(a *api.Activity) { a.Version = v }
}

// WithRequiredEvents declares the event types the activity needs before it
// can run.
func WithRequiredEvents(events ...string) ActivityOption {
	return func(a *api.Activity) { a.RequiredEvents = events }
}

// WithOutputEvents declares the event types the activity emits.
func WithOutputEvents(events ...string) ActivityOption {
	return func(a *api.Activity) { a.OutputEvents = events }
}

// WithModule names the module implementing the activity.
func WithModule(module string) ActivityOption {
	return func(a *api.Activity) { a.Module = module }
}

// Activity builds a standalone single-activity model, for use as a branch
// in OneOf/Both/Loop. It panics on an empty id.
func Activity(id string, opts ...ActivityOption) *ProcessModel {
	if id == "" {
		panic("flume: activity id must not be empty")
	}
	a := api.Activity{ID: api.NodeID(id)}
	for _, opt := range opts {
		opt(&a)
	}
	return api.MustMakeNode(a)
}

func (b *FlowBuilder) append(m *api.ProcessModel, err error) *FlowBuilder {
	if b.err != nil {
		return b
	}
	if err != nil {
		b.err = err
		return b
	}
	b.m, b.err = api.Append(b.m, m)
	return b
}

// Activity appends a single activity to the flow.
func (b *FlowBuilder) Activity(id string, opts ...ActivityOption) *FlowBuilder {
	return b.append(Activity(id, opts...), nil)
}

// Then appends an arbitrary model to the flow.
func (b *FlowBuilder) Then(m *ProcessModel) *FlowBuilder {
	if m == nil {
		panic("flume: Then requires a non-nil model")
	}
	return b.append(m, nil)
}

// OneOf appends an exclusive choice between two models.
func (b *FlowBuilder) OneOf(m1, m2 *ProcessModel) *FlowBuilder {
	if m1 == nil || m2 == nil {
		panic("flume: OneOf requires non-nil models")
	}
	return b.append(api.OneOf(b.gen, m1, m2))
}

// Both appends a parallel composition of two models.
func (b *FlowBuilder) Both(m1, m2 *ProcessModel) *FlowBuilder {
	if m1 == nil || m2 == nil {
		panic("flume: Both requires non-nil models")
	}
	return b.append(api.Both(b.gen, m1, m2))
}

// Loop appends a loop that repeats body while cond keeps firing.
func (b *FlowBuilder) Loop(body *ProcessModel, cond Condition) *FlowBuilder {
	if body == nil {
		panic("flume: Loop requires a non-nil body")
	}
	if cond == nil {
		panic("flume: Loop requires a condition")
	}
	return b.append(api.Loop(b.gen, body, cond))
}

// StartWhen replaces the conditions of the flow's outgoing-from-Start edges.
func (b *FlowBuilder) StartWhen(c Condition) *FlowBuilder {
	if c == nil {
		panic("flume: StartWhen requires a condition")
	}
	if b.err == nil {
		b.m = api.WithStartCondition(b.m, c)
	}
	return b
}

// EndWhen replaces the conditions of the flow's incoming-to-End edges.
func (b *FlowBuilder) EndWhen(c Condition) *FlowBuilder {
	if c == nil {
		panic("flume: EndWhen requires a condition")
	}
	if b.err == nil {
		b.m = api.WithEndCondition(b.m, c)
	}
	return b
}

// Build returns the composed model, or the first construction error.
func (b *FlowBuilder) Build() (*ProcessModel, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.m, nil
}

// MustBuild is like Build but panics on error.
// Useful for initialization in main().
func (b *FlowBuilder) MustBuild() *ProcessModel {
	m, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("flume: %v", err))
	}
	return m
}

// Register registers the built model with the given engine under name.
func (b *FlowBuilder) Register(eng Engine, name string) error {
	m, err := b.Build()
	if err != nil {
		return err
	}
	return eng.RegisterModel(name, m)
}
