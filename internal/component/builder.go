package component

import (
	"fmt"

	"github.com/juju/collections/set"
	"github.com/juju/errors"

	"fleetgear/internal/api"
	"fleetgear/internal/inventory"
)

// Builder is the declaration vocabulary available while a component is
// being built. It only exists for the duration of the Build call; the
// component it produces cannot be modified through it afterwards.
type Builder struct {
	name        *string
	description *string
	groups      []*GroupBuilder
	services    []*ServiceBuilder
	commands    []*CommandBuilder
}

// Name sets the component name (required).
func (b *Builder) Name(value string) *Builder {
	b.name = &value
	return b
}

// Description sets the component description (required).
func (b *Builder) Description(value string) *Builder {
	b.description = &value
	return b
}

// Group declares a node group.
func (b *Builder) Group(declare func(g *GroupBuilder)) *Builder {
	gb := &GroupBuilder{}
	declare(gb)
	b.groups = append(b.groups, gb)
	return b
}

// Service declares a service.
func (b *Builder) Service(declare func(s *ServiceBuilder)) *Builder {
	sb := &ServiceBuilder{}
	declare(sb)
	b.services = append(b.services, sb)
	return b
}

// Command declares a command.
func (b *Builder) Command(declare func(c *CommandBuilder)) *Builder {
	cb := &CommandBuilder{}
	declare(cb)
	b.commands = append(b.commands, cb)
	return b
}

// GroupBuilder declares a group.
type GroupBuilder struct {
	name     *string
	selector string
}

func (g *GroupBuilder) Name(value string) *GroupBuilder {
	g.name = &value
	return g
}

// Selector sets the inventory selector; empty selects every node of the environment.
func (g *GroupBuilder) Selector(value string) *GroupBuilder {
	g.selector = value
	return g
}

func (g *GroupBuilder) build(inv inventory.Inventory) (*Group, error) {
	var errs api.ValidationErrors
	requireString(&errs, "group", "name", g.name)
	if inv == nil {
		errs = append(errs, api.NewValidationError("group", "inventory", "is required"))
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return &Group{name: *g.name, selector: g.selector, inv: inv}, nil
}

// ServiceBuilder declares a service.
type ServiceBuilder struct {
	name      *string
	group     *string
	attribute *string
	recipe    *string
}

func (s *ServiceBuilder) Name(value string) *ServiceBuilder {
	s.name = &value
	return s
}

// Group names the group the service runs on.
func (s *ServiceBuilder) Group(value string) *ServiceBuilder {
	s.group = &value
	return s
}

// Attribute sets the dotted node attribute holding the service state.
func (s *ServiceBuilder) Attribute(value string) *ServiceBuilder {
	s.attribute = &value
	return s
}

// Recipe sets the recipe run after the attribute changed.
func (s *ServiceBuilder) Recipe(value string) *ServiceBuilder {
	s.recipe = &value
	return s
}

func (s *ServiceBuilder) build() (*Service, error) {
	var errs api.ValidationErrors
	requireString(&errs, "service", "name", s.name)
	requireString(&errs, "service", "group", s.group)
	requireString(&errs, "service", "attribute", s.attribute)
	requireString(&errs, "service", "recipe", s.recipe)
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return &Service{name: *s.name, group: *s.group, attribute: *s.attribute, recipe: *s.recipe}, nil
}

// CommandBuilder declares a command.
type CommandBuilder struct {
	name        *string
	description string
	steps       []CommandStep
}

func (c *CommandBuilder) Name(value string) *CommandBuilder {
	c.name = &value
	return c
}

func (c *CommandBuilder) Description(value string) *CommandBuilder {
	c.description = value
	return c
}

// Step appends a state change of service to the command.
func (c *CommandBuilder) Step(service, state string) *CommandBuilder {
	c.steps = append(c.steps, CommandStep{Service: service, State: state})
	return c
}

func (c *CommandBuilder) build(services set.Strings) (*Command, error) {
	var errs api.ValidationErrors
	requireString(&errs, "command", "name", c.name)
	if len(c.steps) == 0 {
		errs = append(errs, api.NewValidationError("command", "steps", "must not be empty"))
	}
	for i, step := range c.steps {
		if !services.Contains(step.Service) {
			errs = append(errs, api.NewValidationError("command", fmt.Sprintf("steps[%d].service", i),
				fmt.Sprintf("references unknown service %q", step.Service)))
		}
		if step.State == "" {
			errs = append(errs, api.NewValidationError("command", fmt.Sprintf("steps[%d].state", i), "is required"))
		}
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return &Command{name: *c.name, description: c.description, steps: append([]CommandStep(nil), c.steps...)}, nil
}

// Build creates a component from the declarations made by declare. Groups
// resolve their nodes through inv.
//
// Build fails with an *api.ValidationError (wrapped in api.ValidationErrors
// when several problems are found) if name or description is missing, if a
// nested declaration is incomplete or if a name is declared twice.
func Build(inv inventory.Inventory, declare func(b *Builder)) (*Component, error) {
	b := &Builder{}
	declare(b)
	return b.build(inv)
}

func (b *Builder) build(inv inventory.Inventory) (*Component, error) {
	var errs api.ValidationErrors
	requireString(&errs, "component", "name", b.name)
	requireString(&errs, "component", "description", b.description)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	c := &Component{name: *b.name, description: *b.description}
	resource := "component " + c.name

	for _, gb := range b.groups {
		g, err := gb.build(inv)
		if err != nil {
			errs = appendValidation(errs, err)
			continue
		}
		if err := c.AddGroup(g); err != nil {
			errs = appendValidation(errs, err)
		}
	}

	serviceNames := set.NewStrings()
	for _, sb := range b.services {
		s, err := sb.build()
		if err != nil {
			errs = appendValidation(errs, err)
			continue
		}
		if serviceNames.Contains(s.name) {
			errs = append(errs, api.NewValidationError(resource, "service", fmt.Sprintf("%q is declared more than once", s.name)))
			continue
		}
		serviceNames.Add(s.name)
		c.services = append(c.services, s)
	}

	commandNames := set.NewStrings()
	for _, cb := range b.commands {
		cmd, err := cb.build(serviceNames)
		if err != nil {
			errs = appendValidation(errs, err)
			continue
		}
		if commandNames.Contains(cmd.name) {
			errs = append(errs, api.NewValidationError(resource, "command", fmt.Sprintf("%q is declared more than once", cmd.name)))
			continue
		}
		commandNames.Add(cmd.name)
		c.commands = append(c.commands, cmd)
	}

	if err := errs.Err(); err != nil {
		return nil, err
	}
	return c, nil
}

func requireString(errs *api.ValidationErrors, resource, field string, value *string) {
	if value == nil || *value == "" {
		*errs = append(*errs, api.NewValidationError(resource, field, "is required"))
	}
}

func appendValidation(errs api.ValidationErrors, err error) api.ValidationErrors {
	var many api.ValidationErrors
	if errors.As(err, &many) {
		return append(errs, many...)
	}
	var one *api.ValidationError
	if errors.As(err, &one) {
		return append(errs, one)
	}
	return append(errs, api.NewValidationError("component", "declaration", err.Error()))
}
