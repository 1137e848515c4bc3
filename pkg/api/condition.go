package api

import (
	"fmt"
	"reflect"
)

// Condition is a tree-shaped predicate over a single event.
//
// The variants form a closed set: Value, Field, IsType, Equals, And, Or and
// AndThen. Conditions are immutable values; build them with the New*
// constructors, which simplify trivially-true and trivially-false subtrees
// on construction.
type Condition interface {
	isCondition()

	// Equal reports structural equality with another condition.
	Equal(Condition) bool

	// Size returns the number of nodes in the condition tree.
	Size() int

	// String renders a canonical form used for ordering and debugging.
	String() string
}

// Value wraps a literal payload. Value{X: true} is the canonical
// "satisfied" condition; Value{X: false} never fires.
type Value struct {
	X any
}

// Field reads the named field from the event under evaluation.
type Field struct {
	Name string
}

// IsType is true iff the event's nominal type equals Type.
type IsType struct {
	Type string
}

// Equals compares the evaluations of its two subtrees structurally.
type Equals struct {
	A, B Condition
}

// And is logical conjunction over one event.
type And struct {
	A, B Condition
}

// Or is logical disjunction over one event.
type Or struct {
	A, B Condition
}

// AndThen is the staged conjunction: B is only considered once A has been
// satisfied by a prior event. It is the one construct whose residual is
// smaller than itself.
type AndThen struct {
	A, B Condition
}

func (Value) isCondition()   {}
func (Field) isCondition()   {}
func (IsType) isCondition()  {}
func (Equals) isCondition()  {}
func (And) isCondition()     {}
func (Or) isCondition()      {}
func (AndThen) isCondition() {}

func (c Value) Equal(o Condition) bool {
	ov, ok := o.(Value)
	return ok && reflect.DeepEqual(c.X, ov.X)
}

func (c Field) Equal(o Condition) bool {
	of, ok := o.(Field)
	return ok && c.Name == of.Name
}

func (c IsType) Equal(o Condition) bool {
	ot, ok := o.(IsType)
	return ok && c.Type == ot.Type
}

func (c Equals) Equal(o Condition) bool {
	oe, ok := o.(Equals)
	return ok && c.A.Equal(oe.A) && c.B.Equal(oe.B)
}

func (c And) Equal(o Condition) bool {
	oa, ok := o.(And)
	return ok && c.A.Equal(oa.A) && c.B.Equal(oa.B)
}

func (c Or) Equal(o Condition) bool {
	oo, ok := o.(Or)
	return ok && c.A.Equal(oo.A) && c.B.Equal(oo.B)
}

func (c AndThen) Equal(o Condition) bool {
	ot, ok := o.(AndThen)
	return ok && c.A.Equal(ot.A) && c.B.Equal(ot.B)
}

func (c Value) Size() int   { return 1 }
func (c Field) Size() int   { return 1 }
func (c IsType) Size() int  { return 1 }
func (c Equals) Size() int  { return 1 + c.A.Size() + c.B.Size() }
func (c And) Size() int     { return 1 + c.A.Size() + c.B.Size() }
func (c Or) Size() int      { return 1 + c.A.Size() + c.B.Size() }
func (c AndThen) Size() int { return 1 + c.A.Size() + c.B.Size() }

func (c Value) String() string   { return fmt.Sprintf("value(%#v)", c.X) }
func (c Field) String() string   { return fmt.Sprintf("field(%s)", c.Name) }
func (c IsType) String() string  { return fmt.Sprintf("isType(%s)", c.Type) }
func (c Equals) String() string  { return fmt.Sprintf("eq(%s, %s)", c.A, c.B) }
func (c And) String() string     { return fmt.Sprintf("and(%s, %s)", c.A, c.B) }
func (c Or) String() string      { return fmt.Sprintf("or(%s, %s)", c.A, c.B) }
func (c AndThen) String() string { return fmt.Sprintf("andThen(%s, %s)", c.A, c.B) }

// True returns the canonical always-satisfied condition.
func True() Condition { return Value{X: true} }

// False returns the canonical never-satisfied condition.
func False() Condition { return Value{X: false} }

// NewValue wraps a literal payload as a condition.
func NewValue(x any) Condition { return Value{X: x} }

// NewField reads the named field from the event under evaluation.
func NewField(name string) Condition { return Field{Name: name} }

// NewIsType matches the event's nominal type.
func NewIsType(eventType string) Condition { return IsType{Type: eventType} }

// NewEquals compares the evaluations of a and b.
func NewEquals(a, b Condition) Condition { return Equals{A: a, B: b} }

// NewAnd builds a conjunction. True operands vanish; a False operand
// collapses the whole conjunction to False.
func NewAnd(a, b Condition) Condition {
	switch {
	case a.Equal(True()):
		return b
	case b.Equal(True()):
		return a
	case a.Equal(False()) || b.Equal(False()):
		return False()
	}
	return And{A: a, B: b}
}

// NewOr builds a disjunction. A True operand collapses the whole
// disjunction to True; False operands vanish.
func NewOr(a, b Condition) Condition {
	switch {
	case a.Equal(True()) || b.Equal(True()):
		return True()
	case a.Equal(False()):
		return b
	case b.Equal(False()):
		return a
	}
	return Or{A: a, B: b}
}

// NewAndThen builds the staged conjunction a-then-b. A True stage vanishes
// on either side.
func NewAndThen(a, b Condition) Condition {
	switch {
	case a.Equal(True()):
		return b
	case b.Equal(True()):
		return a
	}
	return AndThen{A: a, B: b}
}

// EventFieldEquals matches an event of the given type whose named field
// equals x.
func EventFieldEquals(eventType, field string, x any) Condition {
	return NewAnd(NewIsType(eventType), NewEquals(NewField(field), NewValue(x)))
}

// Outcome is the result of evaluating a condition against one event:
// either the condition is satisfied (Done) or a residual obligation
// remains (Rest).
type Outcome struct {
	Done bool
	Rest Condition
}

// Eval evaluates cond against a single event.
//
// Every variant except AndThen is all-or-nothing: a truthy result yields
// Done, anything else yields Rest with the condition unchanged, to be
// retried on the next event. AndThen stages: once its left side is truthy
// on the current event, the left obligation is dropped and the residual is
// the right side alone.
//
// Evaluation never fails. Absent fields read as nil and a nil event makes
// IsType false.
func Eval(cond Condition, ev Event) Outcome {
	if at, ok := cond.(AndThen); ok {
		if !truthy(evalValue(at.A, ev)) {
			return Outcome{Rest: cond}
		}
		if truthy(evalValue(at.B, ev)) {
			return Outcome{Done: true}
		}
		return Outcome{Rest: at.B}
	}
	if truthy(evalValue(cond, ev)) {
		return Outcome{Done: true}
	}
	return Outcome{Rest: cond}
}

// evalValue interprets the tree as a plain expression over one event.
// A nested AndThen degenerates to conjunction here; staging only applies
// at the top of Eval.
func evalValue(cond Condition, ev Event) any {
	switch c := cond.(type) {
	case Value:
		return c.X
	case Field:
		if ev == nil {
			return nil
		}
		return ev.Field(c.Name)
	case IsType:
		return ev != nil && ev.EventType() == c.Type
	case Equals:
		return reflect.DeepEqual(evalValue(c.A, ev), evalValue(c.B, ev))
	case And:
		return truthy(evalValue(c.A, ev)) && truthy(evalValue(c.B, ev))
	case Or:
		return truthy(evalValue(c.A, ev)) || truthy(evalValue(c.B, ev))
	case AndThen:
		return truthy(evalValue(c.A, ev)) && truthy(evalValue(c.B, ev))
	}
	return nil
}

func truthy(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	}
	return true
}
