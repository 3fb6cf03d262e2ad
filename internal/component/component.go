package component

import (
	"context"
	"sync"

	"github.com/juju/errors"

	"fleetgear/internal/api"
	"fleetgear/internal/inventory"
)

// ID is the stable identifier of a component, derived from its name.
type ID string

// Component is a logical part of a system (e.g. "web", "database") made of
// node groups, the services running on them and named commands.
//
// Components are created with Build and are immutable afterwards, apart
// from AddGroup.
type Component struct {
	name        string
	description string

	mu       sync.RWMutex
	groups   []*Group
	services []*Service
	commands []*Command
}

// ID returns the identifier form of the component name.
func (c *Component) ID() ID {
	return ID(c.name)
}

// Name returns the component name.
func (c *Component) Name() string {
	return c.name
}

// Description returns the human readable description.
func (c *Component) Description() string {
	return c.description
}

// Groups returns the component's groups in declaration order.
func (c *Component) Groups() []*Group {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*Group(nil), c.groups...)
}

// Services returns the component's services in declaration order.
func (c *Component) Services() []*Service {
	return append([]*Service(nil), c.services...)
}

// Commands returns the component's commands in declaration order.
func (c *Component) Commands() []*Command {
	return append([]*Command(nil), c.commands...)
}

// Group looks up a group by exact name.
func (c *Component) Group(name string) (*Group, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, g := range c.groups {
		if g.name == name {
			return g, true
		}
	}
	return nil, false
}

// Service looks up a service by exact name.
func (c *Component) Service(name string) (*Service, bool) {
	for _, s := range c.services {
		if s.name == name {
			return s, true
		}
	}
	return nil, false
}

// Command looks up a command by exact name.
func (c *Component) Command(name string) (*Command, bool) {
	for _, cmd := range c.commands {
		if cmd.name == name {
			return cmd, true
		}
	}
	return nil, false
}

// AddGroup adds a group to the component. A group with the same name must
// not already exist.
func (c *Component) AddGroup(g *Group) error {
	if g == nil {
		return errors.New("cannot add nil group")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, existing := range c.groups {
		if existing.name == g.name {
			return api.NewValidationError("component "+c.name, "group", "\""+g.name+"\" is declared more than once")
		}
	}
	c.groups = append(c.groups, g)
	return nil
}

// Nodes resolves every group for environment and returns them keyed by
// group name. Every group has an entry, including groups without nodes.
func (c *Component) Nodes(ctx context.Context, environment string) (map[string][]inventory.Node, error) {
	groups := c.Groups()
	nodes := make(map[string][]inventory.Node, len(groups))
	for _, g := range groups {
		resolved, err := g.Nodes(ctx, environment)
		if err != nil {
			return nil, errors.Annotatef(err, "resolving group %s of %s", g.name, c.name)
		}
		if resolved == nil {
			resolved = []inventory.Node{}
		}
		nodes[g.name] = resolved
	}
	return nodes, nil
}

// StepRunner executes a single command step against a component.
type StepRunner func(ctx context.Context, c *Component, step CommandStep) error

// Invoke runs the named command, one step at a time, stopping at the first
// failing step.
func (c *Component) Invoke(ctx context.Context, name string, run StepRunner) error {
	cmd, ok := c.Command(name)
	if !ok {
		return api.NewCommandNotFoundError(c.name, name)
	}
	for i, step := range cmd.steps {
		if err := run(ctx, c, step); err != nil {
			return errors.Annotatef(err, "command %s step %d (%s -> %s)", name, i+1, step.Service, step.State)
		}
	}
	return nil
}
