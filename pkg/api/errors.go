package api

import "github.com/petrijr/flume/internal/graph"

// Construction-time graph errors, surfaced unchanged from the underlying
// graph. Match them with errors.As:
//
//	var dup *api.NodeExistsError
//	if errors.As(err, &dup) { ... }
//
// Stepping itself never fails; these can only occur while building models.
type (
	// NodeExistsError reports a duplicate node id, typically two combined
	// models sharing an activity id.
	NodeExistsError = graph.NodeExistsError

	// NodeMissingError reports a query against an unknown node.
	NodeMissingError = graph.NodeMissingError

	// FromNodeMissingError reports an edge whose origin node is unknown.
	FromNodeMissingError = graph.FromNodeMissingError

	// ToNodeMissingError reports an edge whose target node is unknown.
	ToNodeMissingError = graph.ToNodeMissingError

	// EdgeExistsError reports a duplicate (from, to) edge.
	EdgeExistsError = graph.EdgeExistsError
)
