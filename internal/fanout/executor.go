package fanout

import (
	"context"
	"fmt"

	"github.com/juju/errors"
	"golang.org/x/sync/errgroup"

	"fleetgear/internal/api"
	"fleetgear/internal/inventory"
	"fleetgear/pkg/logging"
)

// NodeOp is an operation applied to one node.
type NodeOp func(ctx context.Context, node inventory.Node) error

// Executor runs a NodeOp across a node set concurrently.
type Executor struct {
	// Concurrency bounds the number of nodes processed at once; 0 means unbounded.
	Concurrency int
}

// New creates an Executor with the given concurrency limit (0 = unbounded).
func New(concurrency int) *Executor {
	return &Executor{Concurrency: concurrency}
}

// Run applies op to every node. Operations are independent of each other:
// a failure does not cancel the others, every dispatched operation runs to
// completion. The first error observed is returned, annotated with the
// node it came from. A panicking operation fails its node only.
func (e *Executor) Run(ctx context.Context, nodes []inventory.Node, op NodeOp) error {
	// A plain Group (not WithContext) so siblings keep running after an error.
	var g errgroup.Group
	if e.Concurrency > 0 {
		g.SetLimit(e.Concurrency)
	}

	for _, node := range nodes {
		node := node
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = errors.Errorf("panic on node %s: %v", node.Name(), r)
					logging.Error("FanOut", err, "Operation panicked")
				}
			}()
			if err := op(ctx, node); err != nil {
				logging.Debug("FanOut", "Operation failed on %s: %v", node.Name(), err)
				return errors.Annotatef(err, "node %s", node.Name())
			}
			return nil
		})
	}

	return g.Wait()
}

// SetAttribute returns the NodeOp that reloads a node, reports progress,
// sets key to value and saves the node.
func SetAttribute(reporter api.StatusReporter, key string, value interface{}) NodeOp {
	return func(ctx context.Context, node inventory.Node) error {
		if err := node.Reload(ctx); err != nil {
			return errors.Annotate(err, "reload")
		}

		reporter.SetStatus(fmt.Sprintf("Setting node attribute '%s' to %v on %s", key, value, node.Name()))

		if err := node.SetAttribute(key, value); err != nil {
			return errors.Annotate(err, "set attribute")
		}
		if err := node.Save(ctx); err != nil {
			return errors.Annotate(err, "save")
		}
		return nil
	}
}
