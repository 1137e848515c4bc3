package api

import "reflect"

// NodeID identifies a node within one process model. Ids are opaque to the
// engine; activity ids are chosen by the caller, split/join ids come from an
// IDGenerator.
type NodeID string

// Reserved sentinel ids. Every model has exactly one node with each.
const (
	StartNodeID NodeID = "__start__"
	EndNodeID   NodeID = "__end__"
)

// NodeData is the tagged payload of a model node: Start and End sentinels,
// user activities, exclusive-choice and parallel splits, and their joins.
type NodeData interface {
	isNodeData()

	// NodeID returns the id under which this data is keyed in the model.
	NodeID() NodeID

	// Equal reports structural equality with another node payload.
	Equal(NodeData) bool
}

// StartData marks the unique entry node of a model.
type StartData struct{}

// EndData marks the unique exit node of a model.
type EndData struct{}

// Activity is a user-defined workflow step. The engine only reads this
// metadata; executing the activity and feeding its emitted events back is
// the caller's responsibility.
type Activity struct {
	ID             NodeID
	Version        int
	RequiredEvents []string
	OutputEvents   []string
	Module         string
}

// OrSplit is an exclusive-choice split. Exactly one of its branches commits;
// the engine drops the others once a branch has fired. Splits are binary.
type OrSplit struct {
	ID     NodeID
	JoinID NodeID
}

// AndSplit is a parallel split: all branches must reach the matching Join
// before it passes.
type AndSplit struct {
	ID     NodeID
	JoinID NodeID
}

// Join merges the branches of the OrSplit or AndSplit named by ForID.
type Join struct {
	ID    NodeID
	ForID NodeID
}

func (StartData) isNodeData() {}
func (EndData) isNodeData()   {}
func (Activity) isNodeData()  {}
func (OrSplit) isNodeData()   {}
func (AndSplit) isNodeData()  {}
func (Join) isNodeData()      {}

func (StartData) NodeID() NodeID  { return StartNodeID }
func (EndData) NodeID() NodeID    { return EndNodeID }
func (a Activity) NodeID() NodeID { return a.ID }
func (o OrSplit) NodeID() NodeID  { return o.ID }
func (a AndSplit) NodeID() NodeID { return a.ID }
func (j Join) NodeID() NodeID     { return j.ID }

func (StartData) Equal(o NodeData) bool {
	_, ok := o.(StartData)
	return ok
}

func (EndData) Equal(o NodeData) bool {
	_, ok := o.(EndData)
	return ok
}

func (a Activity) Equal(o NodeData) bool {
	oa, ok := o.(Activity)
	return ok && reflect.DeepEqual(a, oa)
}

func (s OrSplit) Equal(o NodeData) bool {
	os, ok := o.(OrSplit)
	return ok && s == os
}

func (s AndSplit) Equal(o NodeData) bool {
	os, ok := o.(AndSplit)
	return ok && s == os
}

func (j Join) Equal(o NodeData) bool {
	oj, ok := o.(Join)
	return ok && j == oj
}
