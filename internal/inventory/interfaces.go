package inventory

import (
	"context"
)

// Node is a managed machine whose configuration attributes can be changed.
// Implementations are supplied by the inventory backend; fleetgear only
// uses the capabilities below.
type Node interface {
	// Name identifies the node in status messages.
	Name() string

	// Reload refreshes the node's attributes from the backing store.
	Reload(ctx context.Context) error

	// SetAttribute sets a dotted attribute path (e.g. "nginx.service.state")
	// on the in-memory copy of the node.
	SetAttribute(key string, value interface{}) error

	// Save persists the in-memory attributes back to the store.
	Save(ctx context.Context) error
}

// Inventory resolves a group selector to the nodes of one environment.
// Resolution is never cached by callers: membership varies per environment
// and over time.
type Inventory interface {
	Resolve(ctx context.Context, selector, environment string) ([]Node, error)
}

// NodeNames returns the names of nodes, preserving order.
func NodeNames(nodes []Node) []string {
	names := make([]string, 0, len(nodes))
	for _, n := range nodes {
		names = append(names, n.Name())
	}
	return names
}
