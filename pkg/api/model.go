package api

import (
	"fmt"

	"github.com/petrijr/flume/internal/graph"
)

// ProcessModel is an immutable directed graph of process nodes with exactly
// one Start and one End node. Models are built only through the combinators
// in this package; once built they are safely shareable across goroutines
// and across any number of instances.
type ProcessModel struct {
	g *graph.Graph[NodeData, Condition]
}

// ModelEdge is one transition of a model: origin, target and the condition
// that must be satisfied for the transition to fire.
type ModelEdge struct {
	From      NodeID
	To        NodeID
	Condition Condition
}

// ConditionTarget pairs an outgoing condition with its target node.
type ConditionTarget struct {
	Condition Condition
	Target    NodeID
}

// NodeIDs returns all node ids in sorted order.
func (m *ProcessModel) NodeIDs() []NodeID {
	raw := m.g.NodeIDs()
	ids := make([]NodeID, len(raw))
	for i, id := range raw {
		ids[i] = NodeID(id)
	}
	return ids
}

// HasNode reports whether the model contains a node with the given id.
func (m *ProcessModel) HasNode(id NodeID) bool {
	return m.g.HasNode(string(id))
}

// Lookup returns the data of the node with the given id.
func (m *ProcessModel) Lookup(id NodeID) (NodeData, bool) {
	return m.g.Node(string(id))
}

// Data returns the data of the node with the given id. It panics when the
// id is unknown; asking for an absent node is a programmer error.
func (m *ProcessModel) Data(id NodeID) NodeData {
	data, ok := m.g.Node(string(id))
	if !ok {
		panic(fmt.Sprintf("flume: unknown node %q", id))
	}
	return data
}

// Edges returns every transition of the model in canonical order.
func (m *ProcessModel) Edges() []ModelEdge {
	raw := m.g.Edges()
	edges := make([]ModelEdge, len(raw))
	for i, e := range raw {
		edges[i] = ModelEdge{From: NodeID(e.From), To: NodeID(e.To), Condition: e.Label}
	}
	return edges
}

// ConditionsWithTargets returns (condition, target) for every outgoing edge
// of the given node, in canonical order.
func (m *ProcessModel) ConditionsWithTargets(id NodeID) []ConditionTarget {
	out := m.g.Outgoing(string(id))
	cts := make([]ConditionTarget, len(out))
	for i, e := range out {
		cts[i] = ConditionTarget{Condition: e.Label, Target: NodeID(e.To)}
	}
	return cts
}

// NodesBetween returns the set of node ids lying on any path from -> to,
// excluding to itself. Path enumeration is bounded, which is sound here: the
// result is only ever used to ask whether some intermediate node is still
// active, and a superset never turns a positive into a negative.
func (m *ProcessModel) NodesBetween(from, to NodeID) map[NodeID]bool {
	paths, err := m.g.Paths(string(from), string(to))
	if err != nil {
		return nil
	}
	between := make(map[NodeID]bool)
	for path := range paths {
		for _, id := range path {
			between[NodeID(id)] = true
		}
	}
	delete(between, to)
	return between
}

// Equal reports structural equality of two models: same nodes, same edges,
// same conditions.
func (m *ProcessModel) Equal(o *ProcessModel) bool {
	return m.g.Equal(o.g, NodeData.Equal, Condition.Equal)
}
