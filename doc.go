// Package flume provides a lightweight, embeddable process engine for Go.
//
// Flume advances process instances through a declarative process model — a
// directed graph of activities, exclusive choices, parallel branches and
// loops — driven by a stream of domain events. The core is purely
// functional: stepping an instance is a deterministic function of the model
// and the event log, with no I/O, no shared state and no scheduling.
//
// # Core Concepts
//
// The Flume programming model is intentionally small:
//
//  1. ProcessModel
//  2. Condition
//  3. ProcessInstance
//  4. FlowBuilder
//  5. Engine
//
// # ProcessModel
//
// A ProcessModel is an immutable graph with a unique Start and End node,
// built only through combinators: Append for sequencing (a monoid with
// Neutral as identity), OneOf for exclusive choice, Both for parallel
// execution and Loop for repetition. The combinators guarantee the graph is
// well-formed: matched split/join pairs, unique ids, canonical edge order.
//
// # Condition
//
// Edges carry conditions: small predicate trees over events (type tests,
// field comparisons, and/or, and the staged AndThen). Evaluating a
// condition against an event either satisfies it or returns a residual
// condition — the remaining obligation — which the instance carries
// forward. Conditions never fail: absent fields read as nil.
//
// # ProcessInstance
//
// A ProcessInstance holds a model, an append-only event log and the current
// set of pending transitions. Each Step appends one event and advances the
// step set to a fixed point, applying exclusive-choice and parallel-join
// rules. Instances are immutable snapshots; Step returns a new value.
//
// Callers drive the loop: read CurrentlyActiveActivities, execute the
// activities, feed their emitted events back via Step, repeat until Done.
//
// # FlowBuilder
//
// FlowBuilder provides the ergonomic, declarative API used to define
// models:
//
//	model := flume.NewFlow().
//	    Activity("reserveStock").
//	    EndWhen(flume.IsType("stock.reserved")).
//	    OneOf(
//	        flume.Activity("approve"),
//	        flume.Activity("reject"),
//	    ).
//	    MustBuild()
//
// Declarative YAML definitions are available in the pkg/definition package.
//
// # Engine
//
// The pure entrypoints (NewInstance, Step) need no engine at all. For
// applications that want managed instances, Engine adds a model registry,
// observers (logging via log/slog, metrics, OpenTelemetry tracing in the
// tracing package) and persistence. Since stepping is deterministic,
// engines persist only the event log and rebuild instances by replay:
//
//   - In-memory (non-durable, best for tests)
//   - SQLite (embedded durability)
//   - bbolt (embedded durability without SQL)
//
// For a runnable example, see Example in example_test.go.
package flume
