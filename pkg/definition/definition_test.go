package definition

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/petrijr/flume/pkg/api"
)

const orderDoc = `
name: order-fulfilment
process:
  sequence:
    - activity:
        id: reserve
        version: 1
        produces: [stock.reserved]
      end: {event: stock.reserved}
    - any:
        - activity: {id: approve}
          start: {event: order.approved}
        - activity: {id: reject}
          start: {event: order.rejected}
`

func TestParseAndCompile(t *testing.T) {
	t.Parallel()

	doc, err := Parse([]byte(orderDoc))
	require.NoError(t, err)
	require.Equal(t, "order-fulfilment", doc.Name)

	m, err := doc.Compile(api.NewSequenceGenerator("n"))
	require.NoError(t, err)

	require.True(t, m.HasNode("reserve"))
	require.True(t, m.HasNode("approve"))
	require.True(t, m.HasNode("reject"))

	act, ok := m.Data("reserve").(api.Activity)
	require.True(t, ok)
	require.Equal(t, 1, act.Version)
	require.Equal(t, []string{"stock.reserved"}, act.OutputEvents)

	// One OrSplit with its mate Join.
	splits, joins := 0, 0
	for _, id := range m.NodeIDs() {
		switch m.Data(id).(type) {
		case api.OrSplit:
			splits++
		case api.Join:
			joins++
		}
	}
	require.Equal(t, 1, splits)
	require.Equal(t, 1, joins)
}

func TestCompileLoop(t *testing.T) {
	t.Parallel()

	doc, err := Parse([]byte(`
name: retry
process:
  loop:
    body:
      activity: {id: call}
      start: {event: attempt}
    while: {event: retry}
  end: {event: success}
`))
	require.NoError(t, err)

	m, err := doc.Compile(api.NewSequenceGenerator("n"))
	require.NoError(t, err)
	require.True(t, m.HasNode("call"))
}

func TestCompileConditionForms(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		def  *ConditionDef
		want api.Condition
	}{
		{
			name: "event only",
			def:  &ConditionDef{Event: "EventA"},
			want: api.NewIsType("EventA"),
		},
		{
			name: "event with field",
			def:  &ConditionDef{Event: "EventA", Field: "a", Equals: 3},
			want: api.EventFieldEquals("EventA", "a", 3),
		},
		{
			name: "field only",
			def:  &ConditionDef{Field: "a", Equals: "x"},
			want: api.NewEquals(api.NewField("a"), api.NewValue("x")),
		},
		{
			name: "all",
			def:  &ConditionDef{All: []*ConditionDef{{Event: "A"}, {Event: "B"}}},
			want: api.NewAnd(api.NewIsType("A"), api.NewIsType("B")),
		},
		{
			name: "any",
			def:  &ConditionDef{Any: []*ConditionDef{{Event: "A"}, {Event: "B"}}},
			want: api.NewOr(api.NewIsType("A"), api.NewIsType("B")),
		},
		{
			name: "then",
			def:  &ConditionDef{Then: []*ConditionDef{{Event: "A"}, {Event: "B"}}},
			want: api.NewAndThen(api.NewIsType("A"), api.NewIsType("B")),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := compileCondition(tc.def)
			require.NoError(t, err)
			require.True(t, got.Equal(tc.want), "got %s, want %s", got, tc.want)
		})
	}
}

func TestCompileErrors(t *testing.T) {
	t.Parallel()

	gen := api.NewSequenceGenerator("n")

	// Missing process.
	_, err := Parse([]byte(`name: x`))
	require.ErrorContains(t, err, "missing process")

	// Node with no variant.
	doc := &Document{Process: &Node{}}
	_, err = doc.Compile(gen)
	require.ErrorContains(t, err, "exactly one")

	// Activity without id.
	doc = &Document{Process: &Node{Activity: &ActivityDef{}}}
	_, err = doc.Compile(gen)
	require.ErrorContains(t, err, "activity id")

	// Splits are binary.
	doc = &Document{Process: &Node{Any: []*Node{{Activity: &ActivityDef{ID: "a"}}}}}
	_, err = doc.Compile(gen)
	require.ErrorContains(t, err, "exactly two branches")

	// Empty condition.
	doc = &Document{Process: &Node{
		Activity: &ActivityDef{ID: "a"},
		End:      &ConditionDef{},
	}}
	_, err = doc.Compile(gen)
	require.ErrorContains(t, err, "empty condition")
}

func TestCompiledModelRuns(t *testing.T) {
	t.Parallel()

	doc, err := Parse([]byte(orderDoc))
	require.NoError(t, err)
	m, err := doc.Compile(api.NewSequenceGenerator("n"))
	require.NoError(t, err)

	// The compiled model carries the usual guarantees: Start expands and
	// conditions gate progress.
	steps := api.StepsFor(m, api.StartNodeID)
	require.NotEmpty(t, steps)

	// Leaving "reserve" waits for stock.reserved.
	gate := api.StepsFor(m, "reserve")
	require.Len(t, gate, 1)
	require.False(t, gate[0].Advance([]api.Event{api.NewEvent("order.approved", nil)}).Transitioned)
	require.True(t, gate[0].Advance([]api.Event{api.NewEvent("stock.reserved", nil)}).Transitioned)
}
