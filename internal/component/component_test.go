package component

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetgear/internal/api"
	"fleetgear/internal/testing/mock"
)

func buildWeb(t *testing.T, inv *mock.Inventory) *Component {
	t.Helper()
	c, err := Build(inv, func(b *Builder) {
		b.Name("web").Description("storefront")
		b.Group(func(g *GroupBuilder) { g.Name("app").Selector("role=web") })
		b.Group(func(g *GroupBuilder) { g.Name("cache").Selector("role=cache") })
		b.Service(func(s *ServiceBuilder) {
			s.Name("app").Group("app").Attribute("web.app.state").Recipe("web::app")
		})
		b.Command(func(c *CommandBuilder) {
			c.Name("bounce").Description("restart everything").Step("app", "stop").Step("app", "start")
		})
	})
	require.NoError(t, err)
	return c
}

func TestBuildID(t *testing.T) {
	for _, name := range []string{"web", "database", "load_balancer"} {
		c, err := Build(mock.NewInventory(), func(b *Builder) {
			b.Name(name).Description("d")
		})
		require.NoError(t, err)
		assert.Equal(t, ID(name), c.ID())
		assert.Equal(t, name, c.Name())
		assert.Equal(t, "d", c.Description())
	}
}

func TestBuildRequiresNameAndDescription(t *testing.T) {
	tests := []struct {
		name    string
		declare func(b *Builder)
		fields  []string
	}{
		{name: "missing name", declare: func(b *Builder) { b.Description("d") }, fields: []string{"name"}},
		{name: "missing description", declare: func(b *Builder) { b.Name("web") }, fields: []string{"description"}},
		{name: "empty", declare: func(b *Builder) {}, fields: []string{"name", "description"}},
		{name: "blank name", declare: func(b *Builder) { b.Name("").Description("d") }, fields: []string{"name"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Build(mock.NewInventory(), tt.declare)
			require.Error(t, err)
			assert.Nil(t, c)
			assert.True(t, api.IsValidation(err))

			var errs api.ValidationErrors
			require.True(t, errors.As(err, &errs))
			require.Len(t, errs, len(tt.fields))
			for i, field := range tt.fields {
				assert.Equal(t, "component", errs[i].Resource)
				assert.Equal(t, field, errs[i].Field)
			}
		})
	}
}

func TestBuildRejectsIncompleteDeclarations(t *testing.T) {
	_, err := Build(mock.NewInventory(), func(b *Builder) {
		b.Name("web").Description("d")
		b.Group(func(g *GroupBuilder) { g.Selector("role=web") })
		b.Service(func(s *ServiceBuilder) { s.Name("app").Group("app") })
		b.Command(func(c *CommandBuilder) { c.Name("go").Step("ghost", "start") })
	})
	require.Error(t, err)

	var errs api.ValidationErrors
	require.True(t, errors.As(err, &errs))

	var fields []string
	for _, e := range errs {
		fields = append(fields, e.Resource+"."+e.Field)
	}
	assert.Equal(t, []string{
		"group.name",
		"service.attribute",
		"service.recipe",
		"command.steps[0].service",
	}, fields)
}

func TestBuildRejectsDuplicates(t *testing.T) {
	_, err := Build(mock.NewInventory(), func(b *Builder) {
		b.Name("web").Description("d")
		b.Group(func(g *GroupBuilder) { g.Name("app") })
		b.Group(func(g *GroupBuilder) { g.Name("app") })
		b.Service(func(s *ServiceBuilder) { s.Name("app").Group("app").Attribute("a").Recipe("r") })
		b.Service(func(s *ServiceBuilder) { s.Name("app").Group("app").Attribute("a").Recipe("r") })
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "group \"app\" is declared more than once")
	assert.Contains(t, err.Error(), "service \"app\" is declared more than once")
}

func TestLookups(t *testing.T) {
	c := buildWeb(t, mock.NewInventory())

	g, ok := c.Group("app")
	require.True(t, ok)
	assert.Equal(t, "role=web", g.Selector())

	_, ok = c.Group("App")
	assert.False(t, ok)

	s, ok := c.Service("app")
	require.True(t, ok)
	assert.Equal(t, "app", s.Group())
	assert.Equal(t, "web.app.state", s.Attribute())
	assert.Equal(t, "web::app", s.Recipe())

	cmd, ok := c.Command("bounce")
	require.True(t, ok)
	assert.Equal(t, "restart everything", cmd.Description())
	assert.Equal(t, []CommandStep{{Service: "app", State: "stop"}, {Service: "app", State: "start"}}, cmd.Steps())

	_, ok = c.Command("missing")
	assert.False(t, ok)
}

func TestNodesHasOneEntryPerGroup(t *testing.T) {
	inv := mock.NewInventory()
	inv.Set("role=web", "staging", mock.NewNode("n1"), mock.NewNode("n2"))
	c := buildWeb(t, inv)

	nodes, err := c.Nodes(context.Background(), "staging")
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Len(t, nodes["app"], 2)
	assert.NotNil(t, nodes["cache"])
	assert.Empty(t, nodes["cache"])

	nodes, err = c.Nodes(context.Background(), "production")
	require.NoError(t, err)
	assert.Len(t, nodes, 2)
}

func TestGroupNodesAreNotCached(t *testing.T) {
	inv := mock.NewInventory()
	c := buildWeb(t, inv)
	g, _ := c.Group("app")

	nodes, err := g.Nodes(context.Background(), "staging")
	require.NoError(t, err)
	assert.Empty(t, nodes)

	inv.Set("role=web", "staging", mock.NewNode("n1"))
	nodes, err = g.Nodes(context.Background(), "staging")
	require.NoError(t, err)
	assert.Len(t, nodes, 1)
	assert.Equal(t, 2, inv.ResolveCalls())
}

func TestNodesPropagatesInventoryErrors(t *testing.T) {
	inv := mock.NewInventory()
	inv.Err = errors.New("search unavailable")
	c := buildWeb(t, inv)

	_, err := c.Nodes(context.Background(), "staging")
	assert.ErrorContains(t, err, "search unavailable")
}

func TestAddGroup(t *testing.T) {
	inv := mock.NewInventory()
	c := buildWeb(t, inv)

	g, err := NewGroup(inv, func(g *GroupBuilder) { g.Name("workers").Selector("role=worker") })
	require.NoError(t, err)
	require.NoError(t, c.AddGroup(g))
	assert.Len(t, c.Groups(), 3)

	dup, err := NewGroup(inv, func(g *GroupBuilder) { g.Name("app") })
	require.NoError(t, err)
	assert.True(t, api.IsValidation(c.AddGroup(dup)))
	assert.Len(t, c.Groups(), 3)

	_, err = NewGroup(nil, func(g *GroupBuilder) { g.Name("x") })
	assert.True(t, api.IsValidation(err))
}

func TestInvoke(t *testing.T) {
	c := buildWeb(t, mock.NewInventory())

	var ran []CommandStep
	err := c.Invoke(context.Background(), "bounce", func(ctx context.Context, comp *Component, step CommandStep) error {
		assert.Same(t, c, comp)
		ran = append(ran, step)
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, ran, 2)

	ran = nil
	err = c.Invoke(context.Background(), "bounce", func(ctx context.Context, comp *Component, step CommandStep) error {
		ran = append(ran, step)
		return errors.New("boom")
	})
	assert.ErrorContains(t, err, "step 1")
	assert.ErrorContains(t, err, "boom")
	assert.Len(t, ran, 1)

	err = c.Invoke(context.Background(), "missing", nil)
	assert.True(t, api.IsNotFound(err))
}

func TestPlugin(t *testing.T) {
	p := NewPlugin("shop", "1.2.0")
	assert.Equal(t, "shop", p.Name())
	assert.Equal(t, "1.2.0", p.Version())

	web := buildWeb(t, mock.NewInventory())
	db, err := Build(mock.NewInventory(), func(b *Builder) { b.Name("database").Description("d") })
	require.NoError(t, err)

	require.NoError(t, p.AddComponent(web))
	require.NoError(t, p.AddComponent(db))
	assert.True(t, api.IsValidation(p.AddComponent(web)))

	got, ok := p.Component("web")
	require.True(t, ok)
	assert.Same(t, web, got)

	_, ok = p.Component("cache")
	assert.False(t, ok)

	components := p.Components()
	require.Len(t, components, 2)
	assert.Equal(t, "database", components[0].Name())
	assert.Equal(t, "web", components[1].Name())
}

func TestCatalog(t *testing.T) {
	shop := NewPlugin("shop", "1.0.0")
	ops := NewPlugin("ops", "0.3.0")

	web := buildWeb(t, mock.NewInventory())
	db, err := Build(mock.NewInventory(), func(b *Builder) { b.Name("database").Description("d") })
	require.NoError(t, err)
	require.NoError(t, shop.AddComponent(web))
	require.NoError(t, ops.AddComponent(db))

	catalog := Catalog{shop, ops}

	got, ok := catalog.Component("database")
	require.True(t, ok)
	assert.Same(t, db, got)

	p, ok := catalog.PluginOf("web")
	require.True(t, ok)
	assert.Equal(t, "shop", p.Name())

	_, ok = catalog.Component("cache")
	assert.False(t, ok)

	components := catalog.Components()
	require.Len(t, components, 2)
	assert.Equal(t, "database", components[0].Name())
}
