package config

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetgear/internal/api"
	"fleetgear/internal/testing/mock"
)

const shopPlugin = `
name: shop
version: 1.0.0
components:
  - name: web
    description: storefront
    groups:
      - name: app
        selector: role=web
    services:
      - name: app
        group: app
        attribute: web.app.state
        recipe: web::app
    commands:
      - name: bounce
        description: restart the app
        steps:
          - service: app
            state: restart
  - name: database
    description: primary store
    groups:
      - name: primary
        selector: role=db
`

func TestParsePlugin(t *testing.T) {
	inv := mock.NewInventory()
	inv.Set("role=web", "staging", mock.NewNode("n1"))

	p, err := ParsePlugin([]byte(shopPlugin), inv)
	require.NoError(t, err)
	assert.Equal(t, "shop", p.Name())
	assert.Equal(t, "1.0.0", p.Version())
	require.Len(t, p.Components(), 2)

	web, ok := p.Component("web")
	require.True(t, ok)
	assert.Equal(t, "storefront", web.Description())

	svc, ok := web.Service("app")
	require.True(t, ok)
	assert.Equal(t, "web.app.state", svc.Attribute())
	assert.Equal(t, "web::app", svc.Recipe())

	cmd, ok := web.Command("bounce")
	require.True(t, ok)
	assert.Len(t, cmd.Steps(), 1)

	nodes, err := web.Nodes(context.Background(), "staging")
	require.NoError(t, err)
	assert.Len(t, nodes["app"], 1)
}

func TestParsePluginValidation(t *testing.T) {
	tests := []struct {
		name   string
		yaml   string
		fields []string
	}{
		{
			name:   "missing plugin name",
			yaml:   "version: 1.0.0\n",
			fields: []string{"plugin.name"},
		},
		{
			name:   "missing description",
			yaml:   "name: p\ncomponents:\n  - name: web\n",
			fields: []string{"components[0].component.description"},
		},
		{
			name:   "wrong type name",
			yaml:   "name: p\ncomponents:\n  - name: [web]\n    description: d\n",
			fields: []string{"components[0].component.name", "components[0].component.name"},
		},
		{
			name:   "numeric description",
			yaml:   "name: p\ncomponents:\n  - name: web\n    description: 42\n",
			fields: []string{"components[0].component.description", "components[0].component.description"},
		},
		{
			name: "incomplete service",
			yaml: "name: p\ncomponents:\n  - name: web\n    description: d\n    services:\n      - name: app\n        group: app\n        attribute: a\n",
			fields: []string{"components[0].service.recipe"},
		},
		{
			name:   "duplicate component",
			yaml:   "name: p\ncomponents:\n  - name: web\n    description: d\n  - name: web\n    description: d\n",
			fields: []string{"components[1].plugin p.component"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePlugin([]byte(tt.yaml), mock.NewInventory())
			require.Error(t, err)
			assert.True(t, api.IsValidation(err))

			var errs api.ValidationErrors
			require.True(t, errors.As(err, &errs))
			var fields []string
			for _, e := range errs {
				fields = append(fields, e.Resource+"."+e.Field)
			}
			assert.Equal(t, tt.fields, fields)
		})
	}
}

func TestParsePluginTypeErrorMessage(t *testing.T) {
	_, err := ParsePlugin([]byte("name: p\ncomponents:\n  - name: {a: b}\n    description: d\n"), mock.NewInventory())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a string, got mapping")
}

func TestParsePluginSyntaxError(t *testing.T) {
	_, err := ParsePlugin([]byte("name: [\n"), mock.NewInventory())
	require.Error(t, err)
	assert.False(t, api.IsValidation(err))

	_, err = ParsePlugin([]byte("name: p\nunknown: true\n"), mock.NewInventory())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown")
}

func TestLoadPlugins(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "plugins/shop.yaml", shopPlugin)
	writeFile(t, dir, "plugins/ops.yml", `
name: ops
version: 0.1.0
components:
  - name: monitoring
    description: metrics and alerts
`)
	writeFile(t, dir, "plugins/notes.txt", "ignored")

	catalog, err := LoadPlugins(dir, mock.NewInventory())
	require.NoError(t, err)
	require.Len(t, catalog, 2)
	assert.Equal(t, "ops", catalog[0].Name())
	assert.Equal(t, "shop", catalog[1].Name())

	_, ok := catalog.Component("monitoring")
	assert.True(t, ok)
	assert.Len(t, catalog.Components(), 3)
}

func TestLoadPluginsNoDirectory(t *testing.T) {
	catalog, err := LoadPlugins(t.TempDir(), mock.NewInventory())
	require.NoError(t, err)
	assert.Empty(t, catalog)
}

func TestLoadPluginsCollectsErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "plugins/a-shop.yaml", shopPlugin)
	writeFile(t, dir, "plugins/b-broken.yaml", "name: [\n")
	writeFile(t, dir, "plugins/c-invalid.yaml", "name: c\ncomponents:\n  - name: x\n")
	writeFile(t, dir, "plugins/d-clash.yaml", "name: d\ncomponents:\n  - name: web\n    description: again\n")

	catalog, err := LoadPlugins(dir, mock.NewInventory())
	require.Error(t, err)
	require.Len(t, catalog, 1)
	assert.Equal(t, "shop", catalog[0].Name())

	var collection *ConfigurationErrorCollection
	require.True(t, errors.As(err, &collection))
	require.Equal(t, 3, collection.Count())
	assert.Equal(t, ErrorTypeParse, collection.Errors[0].ErrorType)
	assert.Equal(t, "b-broken.yaml", collection.Errors[0].FileName)
	assert.Equal(t, ErrorTypeValidation, collection.Errors[1].ErrorType)
	assert.Equal(t, ErrorTypeValidation, collection.Errors[2].ErrorType)
	assert.Contains(t, collection.Errors[2].Details, "already provided by shop")
}

func TestStorage(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "plugins/b.yaml", "b")
	writeFile(t, dir, "plugins/a.yml", "a")
	writeFile(t, dir, "plugins/a.yaml", "a2")

	s := NewStorageWithPath(dir)
	names, err := s.List("plugins")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)

	data, err := s.Load("plugins", "a")
	require.NoError(t, err)
	assert.Equal(t, "a2", string(data))

	_, err = s.Load("plugins", "missing")
	assert.ErrorContains(t, err, "not found")

	_, err = s.List("")
	assert.Error(t, err)
}
