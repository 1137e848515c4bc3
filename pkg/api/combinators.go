package api

import (
	"github.com/petrijr/flume/internal/graph"
)

// The model combinators. Append forms a monoid with Neutral as identity;
// OneOf, Both and Loop wrap a model in split/join pairs whose fresh node ids
// come from the supplied IDGenerator. All combinators leave their inputs
// untouched and return new models.

// Neutral is the identity model: Start wired straight to End with an
// always-true condition.
func Neutral() *ProcessModel {
	g := graph.New[NodeData, Condition]()
	// These operations cannot fail on an empty graph.
	_ = g.AddNode(string(StartNodeID), StartData{})
	_ = g.AddNode(string(EndNodeID), EndData{})
	_ = g.AddEdge(string(StartNodeID), string(EndNodeID), True())
	return &ProcessModel{g: g}
}

// MakeNode wraps a single node between Start and End with two always-true
// edges. It fails when the node id collides with a sentinel.
func MakeNode(data NodeData) (*ProcessModel, error) {
	g := graph.New[NodeData, Condition]()
	_ = g.AddNode(string(StartNodeID), StartData{})
	_ = g.AddNode(string(EndNodeID), EndData{})
	id := string(data.NodeID())
	if err := g.AddNode(id, data); err != nil {
		return nil, err
	}
	if err := g.AddEdge(string(StartNodeID), id, True()); err != nil {
		return nil, err
	}
	if err := g.AddEdge(id, string(EndNodeID), True()); err != nil {
		return nil, err
	}
	return &ProcessModel{g: g}, nil
}

// MustMakeNode is MakeNode for callers who know the node id is safe.
func MustMakeNode(data NodeData) *ProcessModel {
	m, err := MakeNode(data)
	if err != nil {
		panic("flume: " + err.Error())
	}
	return m
}

// Append composes m1 and m2 sequentially. The incoming-to-End edges of m1
// and the outgoing-from-Start edges of m2 are bridged pairwise, each bridge
// carrying the staged condition and_then(end condition, start condition).
// A node id shared by both models is a construction failure.
func Append(m1, m2 *ProcessModel) (*ProcessModel, error) {
	g := m1.g.Clone()
	endEdges := g.Incoming(string(EndNodeID))
	g.RemoveNode(string(EndNodeID))

	g2 := m2.g.Clone()
	startEdges := g2.Outgoing(string(StartNodeID))
	g2.RemoveNode(string(StartNodeID))

	for _, id := range g2.NodeIDs() {
		data, _ := g2.Node(id)
		if err := g.AddNode(id, data); err != nil {
			return nil, err
		}
	}
	for _, e := range g2.Edges() {
		if err := g.AddEdge(e.From, e.To, e.Label); err != nil {
			return nil, err
		}
	}
	for _, e1 := range endEdges {
		for _, e2 := range startEdges {
			if err := g.AddEdge(e1.From, e2.To, NewAndThen(e1.Label, e2.Label)); err != nil {
				return nil, err
			}
		}
	}
	return &ProcessModel{g: g}, nil
}

// MustAppend is Append for callers who know the node sets are disjoint.
func MustAppend(m1, m2 *ProcessModel) *ProcessModel {
	m, err := Append(m1, m2)
	if err != nil {
		panic("flume: " + err.Error())
	}
	return m
}

// parallelMerge keeps both models' start-outgoings and end-incomings
// attached to a single shared Start and End.
func parallelMerge(m1, m2 *ProcessModel) (*ProcessModel, error) {
	g := m2.g.Clone()
	for _, id := range m1.g.NodeIDs() {
		if id == string(StartNodeID) || id == string(EndNodeID) {
			continue
		}
		data, _ := m1.g.Node(id)
		if err := g.AddNode(id, data); err != nil {
			return nil, err
		}
	}
	for _, e := range m1.g.Edges() {
		if err := g.AddEdge(e.From, e.To, e.Label); err != nil {
			return nil, err
		}
	}
	return &ProcessModel{g: g}, nil
}

// OneOf composes m1 and m2 as an exclusive choice: a fresh OrSplit fans out
// to both, and its matching Join merges them. Once one branch fires, the
// stepping engine drops the other.
func OneOf(gen IDGenerator, m1, m2 *ProcessModel) (*ProcessModel, error) {
	return wrapParallel(gen, m1, m2, false)
}

// Both composes m1 and m2 in parallel: a fresh AndSplit fans out to both,
// and its matching Join waits until every branch has reached it.
func Both(gen IDGenerator, m1, m2 *ProcessModel) (*ProcessModel, error) {
	return wrapParallel(gen, m1, m2, true)
}

func wrapParallel(gen IDGenerator, m1, m2 *ProcessModel, all bool) (*ProcessModel, error) {
	merged, err := parallelMerge(m1, m2)
	if err != nil {
		return nil, err
	}

	splitID := NodeID(gen.NewID())
	joinID := NodeID(gen.NewID())

	var splitData NodeData
	if all {
		splitData = AndSplit{ID: splitID, JoinID: joinID}
	} else {
		splitData = OrSplit{ID: splitID, JoinID: joinID}
	}

	split, err := MakeNode(splitData)
	if err != nil {
		return nil, err
	}
	join, err := MakeNode(Join{ID: joinID, ForID: splitID})
	if err != nil {
		return nil, err
	}

	m, err := Append(split, merged)
	if err != nil {
		return nil, err
	}
	return Append(m, join)
}

// Loop wraps body with a Join in front and an OrSplit behind, plus a
// back-edge from the OrSplit to the Join carrying cond. The body repeats
// while cond keeps firing; the forward path out of the OrSplit runs when it
// does not. Callers usually pair Loop with WithEndCondition so the forward
// path has a real exit condition.
func Loop(gen IDGenerator, body *ProcessModel, cond Condition) (*ProcessModel, error) {
	orID := NodeID(gen.NewID())
	joinID := NodeID(gen.NewID())

	join, err := MakeNode(Join{ID: joinID, ForID: orID})
	if err != nil {
		return nil, err
	}
	split, err := MakeNode(OrSplit{ID: orID, JoinID: joinID})
	if err != nil {
		return nil, err
	}

	m, err := Append(join, body)
	if err != nil {
		return nil, err
	}
	m, err = Append(m, split)
	if err != nil {
		return nil, err
	}

	g := m.g.Clone()
	if err := g.AddEdge(string(orID), string(joinID), cond); err != nil {
		return nil, err
	}
	return &ProcessModel{g: g}, nil
}

// WithStartCondition replaces the condition of every outgoing-from-Start
// edge with c.
func WithStartCondition(m *ProcessModel, c Condition) *ProcessModel {
	g := m.g.MapEdges(func(e graph.Edge[Condition]) Condition {
		if e.From == string(StartNodeID) {
			return c
		}
		return e.Label
	})
	return &ProcessModel{g: g}
}

// WithEndCondition replaces the condition of every incoming-to-End edge
// with c.
func WithEndCondition(m *ProcessModel, c Condition) *ProcessModel {
	g := m.g.MapEdges(func(e graph.Edge[Condition]) Condition {
		if e.To == string(EndNodeID) {
			return c
		}
		return e.Label
	})
	return &ProcessModel{g: g}
}
