package api

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStepsForActivityNode(t *testing.T) {
	t.Parallel()

	m, err := Append(activityModel(t, "1"), activityModel(t, "2"))
	require.NoError(t, err)

	steps := StepsFor(m, NodeID("1"))
	require.Len(t, steps, 1)

	s := steps[0]
	require.Equal(t, NodeID("1"), s.NodeID)
	require.Equal(t, NodeID("2"), s.Target)
	require.True(t, s.Condition.Equal(s.RestCondition))

	act, ok := s.NodeData.(Activity)
	require.True(t, ok)
	require.Equal(t, NodeID("1"), act.ID)
}

func TestStepsForEndIsTerminal(t *testing.T) {
	t.Parallel()

	m := Neutral()
	steps := StepsFor(m, EndNodeID)
	require.Len(t, steps, 1)

	s := steps[0]
	require.True(t, s.Condition.Equal(False()))
	require.Equal(t, NodeID(""), s.Target)
	require.IsType(t, EndData{}, s.NodeData)

	// A terminal step never fires, whatever arrives.
	res := s.Advance([]Event{NewEvent("EventA", nil)})
	require.False(t, res.Transitioned)
	require.True(t, res.Step.Equal(s))
}

func TestAdvanceUsesLastEventOnly(t *testing.T) {
	t.Parallel()

	m := WithEndCondition(activityModel(t, "1"), NewIsType("EventB"))
	steps := StepsFor(m, NodeID("1"))
	require.Len(t, steps, 1)

	// EventB earlier in the log but not last: no transition.
	res := steps[0].Advance([]Event{NewEvent("EventB", nil), NewEvent("EventA", nil)})
	require.False(t, res.Transitioned)

	res = steps[0].Advance([]Event{NewEvent("EventA", nil), NewEvent("EventB", nil)})
	require.True(t, res.Transitioned)
	require.Equal(t, EndNodeID, res.Target)
}

func TestAdvanceKeepsOriginalConditionOnResidual(t *testing.T) {
	t.Parallel()

	cond := NewAndThen(NewIsType("EventA"), NewIsType("EventB"))
	m := WithEndCondition(activityModel(t, "1"), cond)
	steps := StepsFor(m, NodeID("1"))

	res := steps[0].Advance([]Event{NewEvent("EventA", nil)})
	require.False(t, res.Transitioned)
	// The residual shrank but the original condition is untouched.
	require.True(t, res.Step.RestCondition.Equal(NewIsType("EventB")))
	require.True(t, res.Step.Condition.Equal(cond))
}

func TestCanonicalStepsDedupAndOrder(t *testing.T) {
	t.Parallel()

	m, err := Append(activityModel(t, "1"), activityModel(t, "2"))
	require.NoError(t, err)

	s1 := StepsFor(m, NodeID("1"))[0]
	s2 := StepsFor(m, NodeID("2"))[0]

	out := CanonicalSteps([]ProcessStep{s2, s1, s2, s1})
	require.Len(t, out, 2)
	require.True(t, out[0].Equal(s1))
	require.True(t, out[1].Equal(s2))

	require.True(t, StepSetsEqual(out, CanonicalSteps([]ProcessStep{s1, s2})))
	require.False(t, StepSetsEqual(out, CanonicalSteps([]ProcessStep{s1})))
}
