package flume_test

import (
	"fmt"

	flume "github.com/petrijr/flume"
)

// Example shows the core loop: build a model, create an instance, feed
// events, and watch the active activities until the instance is done.
func Example() {
	model := flume.NewFlow(flume.WithIDGenerator(flume.NewSequenceGenerator("n"))).
		Activity("reserveStock", flume.WithOutputEvents("stock.reserved")).
		EndWhen(flume.IsType("stock.reserved")).
		OneOf(
			flume.WithStartCondition(flume.Activity("approve"), flume.IsType("order.approved")),
			flume.WithStartCondition(flume.Activity("reject"), flume.IsType("order.rejected")),
		).
		MustBuild()

	in := flume.NewInstanceWithID(model, "order-1")
	for _, a := range in.CurrentlyActiveActivities() {
		fmt.Println("active:", a.ID)
	}

	in = flume.Step(in, flume.NewEvent("stock.reserved", nil))
	in = flume.Step(in, flume.NewEvent("order.approved", nil))

	fmt.Println("done:", in.Done())
	// Output:
	// active: reserveStock
	// done: true
}
