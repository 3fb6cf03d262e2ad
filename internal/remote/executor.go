package remote

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"github.com/juju/errors"
	"golang.org/x/sync/errgroup"

	"fleetgear/internal/api"
	"fleetgear/internal/inventory"
	"fleetgear/internal/template"
	"fleetgear/pkg/logging"
	fgstrings "fleetgear/pkg/strings"
)

// Executor runs a recipe on a set of nodes. How the recipe reaches the
// nodes is up to the implementation.
type Executor interface {
	BulkTrigger(ctx context.Context, reporter api.StatusReporter, nodes []inventory.Node, recipe string) error
}

// CommandExecutor runs a local command per node, typically an ssh or
// configuration-management client invocation such as
//
//	["ssh", "{{ node }}", "sudo", "chef-client", "-o", "{{ recipe }}"]
//
// Each argument is rendered with the variables node, recipe and any entry
// of Vars. Nodes are processed concurrently; the first failure is returned
// after every started command has finished.
type CommandExecutor struct {
	Command     []string
	Vars        map[string]interface{}
	Concurrency int

	engine *template.Engine
	run    func(ctx context.Context, argv []string) ([]byte, error)
}

// NewCommandExecutor validates the command template and returns an executor.
func NewCommandExecutor(command []string, vars map[string]interface{}, concurrency int) (*CommandExecutor, error) {
	if len(command) == 0 {
		return nil, errors.NotValidf("empty remote command")
	}

	e := &CommandExecutor{
		Command:     command,
		Vars:        vars,
		Concurrency: concurrency,
		engine:      template.New(),
		run:         runCommand,
	}

	// Fail early on placeholders nothing will ever provide.
	known := template.Merge(vars, map[string]interface{}{"node": "", "recipe": ""})
	if _, err := e.engine.RenderArgs(command, known); err != nil {
		return nil, errors.Annotate(err, "remote command")
	}
	return e, nil
}

// BulkTrigger runs the command once per node.
func (e *CommandExecutor) BulkTrigger(ctx context.Context, reporter api.StatusReporter, nodes []inventory.Node, recipe string) error {
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
					logging.Error("Remote", err, "Recipe %s panicked", recipe)
				}
			}()

			argv, err := e.engine.RenderArgs(e.Command, template.Merge(e.Vars, map[string]interface{}{
				"node":   node.Name(),
				"recipe": recipe,
			}))
			if err != nil {
				return errors.Annotatef(err, "node %s", node.Name())
			}

			reporter.SetStatus(fmt.Sprintf("Running %s on %s", recipe, node.Name()))
			logging.Debug("Remote", "Running %v", argv)

			out, err := e.run(ctx, argv)
			if err != nil {
				logging.Error("Remote", err, "Recipe %s failed on %s", recipe, node.Name())
				return errors.Annotatef(err, "running %s on %s: %s", recipe, node.Name(),
					fgstrings.Tail(string(out), fgstrings.DefaultOutputMaxLen))
			}

			reporter.SetStatus(fmt.Sprintf("Finished %s on %s", recipe, node.Name()))
			return nil
		})
	}

	return g.Wait()
}

func runCommand(ctx context.Context, argv []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	return out.Bytes(), err
}

// NoopExecutor only reports what would run. It is used when no remote
// command is configured.
type NoopExecutor struct{}

func (NoopExecutor) BulkTrigger(ctx context.Context, reporter api.StatusReporter, nodes []inventory.Node, recipe string) error {
	names := inventory.NodeNames(nodes)
	reporter.SetStatus(fmt.Sprintf("No remote command configured, skipping %s on %v", recipe, names))
	logging.Warn("Remote", "No remote command configured; recipe %s not run on %d nodes", recipe, len(names))
	return nil
}
