package component

import (
	"context"

	"fleetgear/internal/inventory"
)

// Group is a named set of nodes of a component, selected from the inventory.
type Group struct {
	name     string
	selector string
	inv      inventory.Inventory
}

// NewGroup creates a group outside of a Build call, for use with AddGroup.
func NewGroup(inv inventory.Inventory, declare func(g *GroupBuilder)) (*Group, error) {
	gb := &GroupBuilder{}
	declare(gb)
	return gb.build(inv)
}

func (g *Group) Name() string {
	return g.name
}

// Selector is the node selection predicate handed to the inventory.
func (g *Group) Selector() string {
	return g.selector
}

// Nodes resolves the group's members in environment. The result is never
// cached.
func (g *Group) Nodes(ctx context.Context, environment string) ([]inventory.Node, error) {
	return g.inv.Resolve(ctx, g.selector, environment)
}

// Service is a service running on the nodes of one group. Its state is
// driven by setting Attribute on each node and running Recipe.
type Service struct {
	name      string
	group     string
	attribute string
	recipe    string
}

func (s *Service) Name() string {
	return s.name
}

// Group is the name of the group the service runs on.
func (s *Service) Group() string {
	return s.group
}

// Attribute is the dotted node attribute path holding the desired state.
func (s *Service) Attribute() string {
	return s.attribute
}

// Recipe is passed as-is to the remote executor.
func (s *Service) Recipe() string {
	return s.recipe
}

// CommandStep changes one service of the component to State.
type CommandStep struct {
	Service string
	State   string
}

// Command is a named sequence of service state changes.
type Command struct {
	name        string
	description string
	steps       []CommandStep
}

func (c *Command) Name() string {
	return c.name
}

func (c *Command) Description() string {
	return c.description
}

func (c *Command) Steps() []CommandStep {
	return append([]CommandStep(nil), c.steps...)
}
