package mock

import (
	"context"
	"sync"

	"fleetgear/internal/api"
	"fleetgear/internal/inventory"
)

// BulkCall records one BulkTrigger call.
type BulkCall struct {
	Nodes  []string
	Recipe string
}

// RemoteExecutor records BulkTrigger calls and returns Err.
type RemoteExecutor struct {
	Err error

	// Hook, when set, runs inside BulkTrigger before it returns.
	Hook func(ctx context.Context, nodes []inventory.Node, recipe string)

	mu    sync.Mutex
	calls []BulkCall
}

func (r *RemoteExecutor) BulkTrigger(ctx context.Context, reporter api.StatusReporter, nodes []inventory.Node, recipe string) error {
	r.mu.Lock()
	r.calls = append(r.calls, BulkCall{Nodes: inventory.NodeNames(nodes), Recipe: recipe})
	hook := r.Hook
	r.mu.Unlock()

	reporter.SetStatus("running " + recipe)
	if hook != nil {
		hook(ctx, nodes, recipe)
	}
	return r.Err
}

// Calls returns the recorded calls in order.
func (r *RemoteExecutor) Calls() []BulkCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]BulkCall(nil), r.calls...)
}
