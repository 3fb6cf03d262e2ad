package component

import (
	"sort"
	"sync"

	"fleetgear/internal/api"
)

// Plugin is a named collection of components, typically loaded from one
// definition file.
type Plugin struct {
	name    string
	version string

	mu         sync.RWMutex
	components map[string]*Component
}

// NewPlugin creates an empty plugin.
func NewPlugin(name, version string) *Plugin {
	return &Plugin{
		name:       name,
		version:    version,
		components: make(map[string]*Component),
	}
}

func (p *Plugin) Name() string {
	return p.name
}

func (p *Plugin) Version() string {
	return p.version
}

// AddComponent registers c. Component names are unique within a plugin.
func (p *Plugin) AddComponent(c *Component) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.components[c.name]; exists {
		return api.NewValidationError("plugin "+p.name, "component", "\""+c.name+"\" is declared more than once")
	}
	p.components[c.name] = c
	return nil
}

// Component returns the component called name.
func (p *Plugin) Component(name string) (*Component, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	c, ok := p.components[name]
	return c, ok
}

// Components returns all components sorted by name.
func (p *Plugin) Components() []*Component {
	p.mu.RLock()
	defer p.mu.RUnlock()

	result := make([]*Component, 0, len(p.components))
	for _, c := range p.components {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].name < result[j].name })
	return result
}

// Catalog looks components up across several plugins. Component names
// are expected to be unique across the catalog; the first match wins.
type Catalog []*Plugin

// Component returns the component called name from the first plugin
// providing it.
func (c Catalog) Component(name string) (*Component, bool) {
	for _, p := range c {
		if comp, ok := p.Component(name); ok {
			return comp, true
		}
	}
	return nil, false
}

// PluginOf returns the plugin providing the component called name.
func (c Catalog) PluginOf(name string) (*Plugin, bool) {
	for _, p := range c {
		if _, ok := p.Component(name); ok {
			return p, true
		}
	}
	return nil, false
}

// Components returns the components of every plugin sorted by name.
func (c Catalog) Components() []*Component {
	var result []*Component
	for _, p := range c {
		result = append(result, p.Components()...)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].name < result[j].name })
	return result
}
