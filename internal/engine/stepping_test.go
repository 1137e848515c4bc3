package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/petrijr/flume/pkg/api"
)

func mustActivity(t *testing.T, id string) *api.ProcessModel {
	t.Helper()
	m, err := api.MakeNode(api.Activity{ID: api.NodeID(id), Version: 1})
	require.NoError(t, err)
	return m
}

func eventA() api.Event { return api.NewEvent("EventA", map[string]any{"a": 3}) }
func eventB() api.Event { return api.NewEvent("EventB", nil) }
func eventC() api.Event { return api.NewEvent("EventC", nil) }

func activeIDs(in *api.ProcessInstance) []api.NodeID {
	var ids []api.NodeID
	for _, data := range in.CurrentlyActive() {
		ids = append(ids, data.NodeID())
	}
	return ids
}

func newTestInstance(m *api.ProcessModel) *api.ProcessInstance {
	return NewInstance(api.NewSequenceGenerator("inst"), m)
}

func TestSingleActivityRunsToEnd(t *testing.T) {
	t.Parallel()

	m, err := api.MakeNode(api.Activity{ID: "1", Version: 1, OutputEvents: []string{"EventA"}})
	require.NoError(t, err)

	in := newTestInstance(m)
	in = StepInstance(in, eventA())

	require.True(t, in.Done())
	require.Len(t, in.Events, 1)
}

func TestSequenceAdvancesPerEvent(t *testing.T) {
	t.Parallel()

	p1 := api.WithEndCondition(mustActivity(t, "1"), api.NewIsType("EventA"))
	p2 := api.WithEndCondition(mustActivity(t, "2"), api.NewIsType("EventB"))
	m, err := api.Append(p1, p2)
	require.NoError(t, err)

	in := newTestInstance(m)
	require.Equal(t, []api.NodeID{"1"}, activeIDs(in))

	// EventB first: activity 1 is still waiting for EventA.
	in = StepInstance(in, eventB())
	require.False(t, in.Done())
	require.Equal(t, []api.NodeID{"1"}, activeIDs(in))

	in = StepInstance(in, eventA())
	require.False(t, in.Done())
	require.Equal(t, []api.NodeID{"2"}, activeIDs(in))

	in = StepInstance(in, eventB())
	require.True(t, in.Done())
}

func TestOneOfCommitsToFirstFiringBranch(t *testing.T) {
	t.Parallel()

	p1 := api.WithStartCondition(mustActivity(t, "1"), api.NewIsType("EventA"))
	p2 := api.WithStartCondition(mustActivity(t, "2"), api.NewIsType("EventB"))
	m, err := api.OneOf(api.NewSequenceGenerator("n"), p1, p2)
	require.NoError(t, err)

	in := newTestInstance(m)

	// An unrelated event leaves both OR branches pending.
	in = StepInstance(in, eventC())
	require.False(t, in.Done())
	require.Len(t, in.CurrentSteps, 2)
	for _, data := range in.CurrentlyActive() {
		require.IsType(t, api.OrSplit{}, data)
	}

	// EventA fires branch 1; branch 2 is dropped, activity 1 and the join
	// pass through on their always-true edges.
	in = StepInstance(in, eventA())
	require.True(t, in.Done())
}

func TestBothWaitsForAllBranches(t *testing.T) {
	t.Parallel()

	p1 := api.WithStartCondition(mustActivity(t, "1"), api.NewIsType("EventA"))
	p2 := api.WithStartCondition(mustActivity(t, "2"), api.NewIsType("EventB"))
	m, err := api.Both(api.NewSequenceGenerator("n"), p1, p2)
	require.NoError(t, err)

	in := newTestInstance(m)
	require.Len(t, in.CurrentSteps, 2)
	for _, data := range in.CurrentlyActive() {
		require.IsType(t, api.AndSplit{}, data)
	}

	in = StepInstance(in, eventC())
	require.False(t, in.Done())

	// First branch completes; the join must keep waiting for the second.
	in = StepInstance(in, eventA())
	require.False(t, in.Done())

	in = StepInstance(in, eventB())
	require.True(t, in.Done())
}

func TestLoopRepeatsWhileConditionFires(t *testing.T) {
	t.Parallel()

	body := api.WithStartCondition(mustActivity(t, "1"), api.NewIsType("EventA"))
	m, err := api.Loop(api.NewSequenceGenerator("n"), body, api.NewIsType("EventB"))
	require.NoError(t, err)
	m = api.WithEndCondition(m, api.NewIsType("EventC"))

	in := newTestInstance(m)
	require.False(t, in.Done())

	// First pass through the body.
	in = StepInstance(in, eventA())
	require.False(t, in.Done())

	// EventB takes the back edge: the body is active again.
	in = StepInstance(in, eventB())
	require.False(t, in.Done())

	in = StepInstance(in, eventA())
	require.False(t, in.Done())

	// EventC exits the loop.
	in = StepInstance(in, eventC())
	require.True(t, in.Done())
}

func TestNeutralIsDoneImmediately(t *testing.T) {
	t.Parallel()

	in := newTestInstance(api.Neutral())
	require.True(t, in.Done())
	require.Empty(t, in.Events)
	require.Equal(t, []api.NodeID{api.EndNodeID}, activeIDs(in))
}

func TestStepAppendsToEventLog(t *testing.T) {
	t.Parallel()

	m := api.WithEndCondition(mustActivity(t, "1"), api.NewIsType("EventA"))
	in := newTestInstance(m)

	events := []api.Event{eventB(), eventC(), eventA()}
	for i, ev := range events {
		in = StepInstance(in, ev)
		require.Len(t, in.Events, i+1)
		require.Equal(t, ev, in.Events[i])
	}
}

func TestStepLeavesInputInstanceUntouched(t *testing.T) {
	t.Parallel()

	m := api.WithEndCondition(mustActivity(t, "1"), api.NewIsType("EventA"))
	before := newTestInstance(m)
	beforeSteps := len(before.CurrentSteps)

	after := StepInstance(before, eventA())

	require.Empty(t, before.Events)
	require.Len(t, before.CurrentSteps, beforeSteps)
	require.False(t, before.Done())
	require.True(t, after.Done())
}

func TestOrLoserDroppedAfterSiblingAdvances(t *testing.T) {
	t.Parallel()

	// Branch 2 needs two events, so after EventA fires branch 1 the OR
	// still has a residual step for branch 2 that must be dropped.
	p1 := api.WithStartCondition(mustActivity(t, "1"), api.NewIsType("EventA"))
	p2 := api.WithStartCondition(mustActivity(t, "2"),
		api.NewAndThen(api.NewIsType("EventB"), api.NewIsType("EventC")))
	m, err := api.OneOf(api.NewSequenceGenerator("n"), p1, p2)
	require.NoError(t, err)
	m = api.WithEndCondition(m, api.NewIsType("EventC"))

	in := newTestInstance(m)
	in = StepInstance(in, eventA())

	// Only the winning path remains: no OrSplit step survives.
	for _, data := range in.CurrentlyActive() {
		require.NotEqual(t, "OrSplit", nodeKind(data))
	}

	in = StepInstance(in, eventC())
	require.True(t, in.Done())
}

func nodeKind(data api.NodeData) string {
	switch data.(type) {
	case api.OrSplit:
		return "OrSplit"
	case api.AndSplit:
		return "AndSplit"
	case api.Join:
		return "Join"
	case api.Activity:
		return "Activity"
	case api.StartData:
		return "Start"
	case api.EndData:
		return "End"
	}
	return "?"
}

func TestJoinWaitsOnlyForAndMates(t *testing.T) {
	t.Parallel()

	// In a OneOf, the join passes as soon as one branch reaches it even
	// though the sibling's step was only just dropped.
	p1 := api.WithEndCondition(mustActivity(t, "1"), api.NewIsType("EventA"))
	p2 := api.WithEndCondition(mustActivity(t, "2"), api.NewIsType("EventB"))
	m, err := api.OneOf(api.NewSequenceGenerator("n"), p1, p2)
	require.NoError(t, err)

	in := newTestInstance(m)
	// The branch entry edges are trivially true, so the OR commits to its
	// first branch during the initial stepping pass.
	require.False(t, in.Done())
	require.Equal(t, []api.NodeID{"1"}, activeIDs(in))

	in = StepInstance(in, eventA())
	require.True(t, in.Done())
}

func TestOnlyLastEventIsConsulted(t *testing.T) {
	t.Parallel()

	// A condition satisfied by an event that is no longer the newest one
	// does not fire retroactively.
	m := api.WithEndCondition(mustActivity(t, "1"), api.NewIsType("EventA"))
	in := newTestInstance(m)

	in = StepInstance(in, eventA())
	require.True(t, in.Done())

	in2 := newTestInstance(m)
	in2 = StepInstance(in2, eventB())
	in2 = StepInstance(in2, eventC())
	require.False(t, in2.Done())

	// EventA earlier in the log is not offered to the pending step; only
	// the newest event (EventB) is.
	in3 := newTestInstance(m)
	in3.Events = []api.Event{eventA()}
	in3 = StepInstance(in3, eventB())
	require.False(t, in3.Done())
}

func TestFixpointIsDeterministic(t *testing.T) {
	t.Parallel()

	p1 := api.WithStartCondition(mustActivity(t, "1"), api.NewIsType("EventA"))
	p2 := api.WithStartCondition(mustActivity(t, "2"), api.NewIsType("EventB"))
	m, err := api.Both(api.NewSequenceGenerator("n"), p1, p2)
	require.NoError(t, err)

	run := func() *api.ProcessInstance {
		in := NewInstanceWithID("fixed", m)
		for _, ev := range []api.Event{eventC(), eventA(), eventB()} {
			in = StepInstance(in, ev)
		}
		return in
	}

	first, second := run(), run()
	require.True(t, api.StepSetsEqual(first.CurrentSteps, second.CurrentSteps))
	require.True(t, first.Done() && second.Done())
}

// TestComposedModelRunsToCompletion drives one fixed composition (an
// activity, a OneOf and a Both) to Done by satisfying each edge condition
// along one end-to-end path. Compositions are not generated randomly.
func TestComposedModelRunsToCompletion(t *testing.T) {
	t.Parallel()

	gen := api.NewSequenceGenerator("n")

	reserve := api.WithEndCondition(mustActivity(t, "reserve"), api.NewIsType("stock.reserved"))
	approve := api.WithStartCondition(mustActivity(t, "approve"), api.NewIsType("order.approved"))
	reject := api.WithStartCondition(mustActivity(t, "reject"), api.NewIsType("order.rejected"))
	pick := api.WithEndCondition(mustActivity(t, "pick"), api.NewIsType("picked"))
	pack := api.WithEndCondition(mustActivity(t, "pack"), api.NewIsType("packed"))

	decision, err := api.OneOf(gen, approve, reject)
	require.NoError(t, err)
	fulfil, err := api.Both(gen, pick, pack)
	require.NoError(t, err)

	m, err := api.Append(reserve, decision)
	require.NoError(t, err)
	m, err = api.Append(m, fulfil)
	require.NoError(t, err)

	in := newTestInstance(m)
	for _, ev := range []api.Event{
		api.NewEvent("stock.reserved", nil),
		api.NewEvent("order.approved", nil),
		api.NewEvent("picked", nil),
		api.NewEvent("packed", nil),
	} {
		require.False(t, in.Done())
		in = StepInstance(in, ev)
	}
	require.True(t, in.Done())
}
