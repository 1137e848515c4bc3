// Package definition compiles declarative YAML process descriptions into
// process models, so flows can live next to configuration instead of code.
// The compiled models go through the public combinators and carry the same
// guarantees as hand-built ones.
package definition

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/petrijr/flume/pkg/api"
)

// Document is the top-level YAML shape:
//
//	name: order-fulfilment
//	process:
//	  sequence:
//	    - activity: {id: reserve, produces: [stock.reserved]}
//	      end: {event: stock.reserved}
//	    - any:
//	        - activity: {id: approve}
//	          start: {event: order.approved}
//	        - activity: {id: reject}
//	          start: {event: order.rejected}
type Document struct {
	Name    string `yaml:"name"`
	Process *Node  `yaml:"process"`
}

// Node describes one process fragment. Exactly one of Activity, Sequence,
// Any, All or Loop must be set; Start and End optionally override the
// fragment's entry and exit conditions.
type Node struct {
	Activity *ActivityDef  `yaml:"activity,omitempty"`
	Sequence []*Node       `yaml:"sequence,omitempty"`
	Any      []*Node       `yaml:"any,omitempty"`
	All      []*Node       `yaml:"all,omitempty"`
	Loop     *LoopDef      `yaml:"loop,omitempty"`
	Start    *ConditionDef `yaml:"start,omitempty"`
	End      *ConditionDef `yaml:"end,omitempty"`
}

// ActivityDef mirrors api.Activity.
type ActivityDef struct {
	ID       string   `yaml:"id"`
	Version  int      `yaml:"version,omitempty"`
	Requires []string `yaml:"requires,omitempty"`
	Produces []string `yaml:"produces,omitempty"`
	Module   string   `yaml:"module,omitempty"`
}

// LoopDef repeats Body while While keeps firing.
type LoopDef struct {
	Body  *Node         `yaml:"body"`
	While *ConditionDef `yaml:"while"`
}

// ConditionDef is the YAML condition syntax. Leaves name an event type, a
// field comparison, or both; All/Any/Then fold their children with
// conjunction, disjunction and staged conjunction respectively.
type ConditionDef struct {
	Event  string `yaml:"event,omitempty"`
	Field  string `yaml:"field,omitempty"`
	Equals any    `yaml:"equals,omitempty"`

	All  []*ConditionDef `yaml:"all,omitempty"`
	Any  []*ConditionDef `yaml:"any,omitempty"`
	Then []*ConditionDef `yaml:"then,omitempty"`
}

// Parse decodes a YAML document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("definition: %w", err)
	}
	if doc.Process == nil {
		return nil, fmt.Errorf("definition: missing process")
	}
	return &doc, nil
}

// Compile builds the process model described by the document. Fresh
// split/join ids come from gen.
func (d *Document) Compile(gen api.IDGenerator) (*api.ProcessModel, error) {
	return compileNode(gen, d.Process)
}

func compileNode(gen api.IDGenerator, n *Node) (*api.ProcessModel, error) {
	m, err := compileBody(gen, n)
	if err != nil {
		return nil, err
	}
	if n.Start != nil {
		c, err := compileCondition(n.Start)
		if err != nil {
			return nil, err
		}
		m = api.WithStartCondition(m, c)
	}
	if n.End != nil {
		c, err := compileCondition(n.End)
		if err != nil {
			return nil, err
		}
		m = api.WithEndCondition(m, c)
	}
	return m, nil
}

func compileBody(gen api.IDGenerator, n *Node) (*api.ProcessModel, error) {
	variants := 0
	for _, set := range []bool{n.Activity != nil, n.Sequence != nil, n.Any != nil, n.All != nil, n.Loop != nil} {
		if set {
			variants++
		}
	}
	if variants != 1 {
		return nil, fmt.Errorf("definition: node must have exactly one of activity, sequence, any, all, loop")
	}

	switch {
	case n.Activity != nil:
		if n.Activity.ID == "" {
			return nil, fmt.Errorf("definition: activity id is required")
		}
		return api.MakeNode(api.Activity{
			ID:             api.NodeID(n.Activity.ID),
			Version:        n.Activity.Version,
			RequiredEvents: n.Activity.Requires,
			OutputEvents:   n.Activity.Produces,
			Module:         n.Activity.Module,
		})

	case n.Sequence != nil:
		m := api.Neutral()
		for _, child := range n.Sequence {
			cm, err := compileNode(gen, child)
			if err != nil {
				return nil, err
			}
			m, err = api.Append(m, cm)
			if err != nil {
				return nil, err
			}
		}
		return m, nil

	case n.Any != nil:
		return compilePair(gen, n.Any, "any", api.OneOf)

	case n.All != nil:
		return compilePair(gen, n.All, "all", api.Both)

	default:
		if n.Loop.Body == nil || n.Loop.While == nil {
			return nil, fmt.Errorf("definition: loop needs body and while")
		}
		body, err := compileNode(gen, n.Loop.Body)
		if err != nil {
			return nil, err
		}
		cond, err := compileCondition(n.Loop.While)
		if err != nil {
			return nil, err
		}
		return api.Loop(gen, body, cond)
	}
}

func compilePair(
	gen api.IDGenerator,
	children []*Node,
	kind string,
	combine func(api.IDGenerator, *api.ProcessModel, *api.ProcessModel) (*api.ProcessModel, error),
) (*api.ProcessModel, error) {
	// Splits are binary.
	if len(children) != 2 {
		return nil, fmt.Errorf("definition: %s needs exactly two branches, got %d", kind, len(children))
	}
	m1, err := compileNode(gen, children[0])
	if err != nil {
		return nil, err
	}
	m2, err := compileNode(gen, children[1])
	if err != nil {
		return nil, err
	}
	return combine(gen, m1, m2)
}

func compileCondition(c *ConditionDef) (api.Condition, error) {
	switch {
	case c.All != nil:
		return foldConditions(c.All, api.NewAnd)
	case c.Any != nil:
		return foldConditions(c.Any, api.NewOr)
	case c.Then != nil:
		return foldConditions(c.Then, api.NewAndThen)
	}

	if c.Event != "" && c.Field != "" {
		return api.EventFieldEquals(c.Event, c.Field, c.Equals), nil
	}
	if c.Event != "" {
		return api.NewIsType(c.Event), nil
	}
	if c.Field != "" {
		return api.NewEquals(api.NewField(c.Field), api.NewValue(c.Equals)), nil
	}
	return nil, fmt.Errorf("definition: empty condition")
}

func foldConditions(defs []*ConditionDef, combine func(a, b api.Condition) api.Condition) (api.Condition, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("definition: empty condition list")
	}
	acc, err := compileCondition(defs[0])
	if err != nil {
		return nil, err
	}
	for _, def := range defs[1:] {
		c, err := compileCondition(def)
		if err != nil {
			return nil, err
		}
		acc = combine(acc, c)
	}
	return acc, nil
}
