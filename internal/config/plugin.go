package config

import (
	"bytes"
	"fmt"

	"github.com/juju/collections/set"
	"github.com/juju/errors"
	"gopkg.in/yaml.v3"

	"fleetgear/internal/api"
	"fleetgear/internal/component"
	"fleetgear/internal/inventory"
	"fleetgear/pkg/logging"
)

const pluginsDir = "plugins"

// stringField is a YAML scalar that must be a string. A value of another
// type is kept as a type error and reported during validation instead of
// aborting the whole decode.
type stringField struct {
	value   string
	set     bool
	badType string
}

func (s *stringField) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode || node.ShortTag() != "!!str" {
		s.badType = describeNode(node)
		return nil
	}
	s.value = node.Value
	s.set = true
	return nil
}

func describeNode(node *yaml.Node) string {
	switch node.Kind {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "sequence"
	default:
		return node.ShortTag()
	}
}

// apply passes the value to setter when it is a well-typed string.
func (s stringField) apply(errs *api.ValidationErrors, resource, field string, setter func(string)) {
	if s.badType != "" {
		*errs = append(*errs, api.NewValidationError(resource, field, "must be a string, got "+s.badType))
		return
	}
	if s.set {
		setter(s.value)
	}
}

// PluginDefinition is the file form of a plugin.
type PluginDefinition struct {
	Name       stringField           `yaml:"name"`
	Version    stringField           `yaml:"version"`
	Components []ComponentDefinition `yaml:"components"`
}

type ComponentDefinition struct {
	Name        stringField         `yaml:"name"`
	Description stringField         `yaml:"description"`
	Groups      []GroupDefinition   `yaml:"groups"`
	Services    []ServiceDefinition `yaml:"services"`
	Commands    []CommandDefinition `yaml:"commands"`
}

type GroupDefinition struct {
	Name     stringField `yaml:"name"`
	Selector stringField `yaml:"selector"`
}

type ServiceDefinition struct {
	Name      stringField `yaml:"name"`
	Group     stringField `yaml:"group"`
	Attribute stringField `yaml:"attribute"`
	Recipe    stringField `yaml:"recipe"`
}

type CommandDefinition struct {
	Name        stringField `yaml:"name"`
	Description stringField `yaml:"description"`
	Steps       []struct {
		Service stringField `yaml:"service"`
		State   stringField `yaml:"state"`
	} `yaml:"steps"`
}

// ParsePlugin decodes a plugin definition and builds its components.
// Groups resolve their nodes through inv.
//
// Type errors and missing required fields are returned as
// api.ValidationErrors; YAML syntax errors are returned as is.
func ParsePlugin(data []byte, inv inventory.Inventory) (*component.Plugin, error) {
	var def PluginDefinition
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		return nil, errors.Annotate(err, "decoding plugin")
	}

	var errs api.ValidationErrors
	var name, version string
	def.Name.apply(&errs, "plugin", "name", func(v string) { name = v })
	def.Version.apply(&errs, "plugin", "version", func(v string) { version = v })
	if name == "" && def.Name.badType == "" {
		errs = append(errs, api.NewValidationError("plugin", "name", "is required"))
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	plugin := component.NewPlugin(name, version)
	for i, cd := range def.Components {
		comp, err := cd.build(inv)
		if err != nil {
			errs = appendValidation(errs, fmt.Sprintf("components[%d]", i), err)
			continue
		}
		if err := plugin.AddComponent(comp); err != nil {
			errs = appendValidation(errs, fmt.Sprintf("components[%d]", i), err)
		}
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return plugin, nil
}

func (cd ComponentDefinition) build(inv inventory.Inventory) (*component.Component, error) {
	// Type errors are collected while declaring; Build reports the rest.
	var typeErrs api.ValidationErrors
	comp, err := component.Build(inv, func(b *component.Builder) {
		cd.Name.apply(&typeErrs, "component", "name", func(v string) { b.Name(v) })
		cd.Description.apply(&typeErrs, "component", "description", func(v string) { b.Description(v) })

		for _, gd := range cd.Groups {
			b.Group(func(g *component.GroupBuilder) {
				gd.Name.apply(&typeErrs, "group", "name", func(v string) { g.Name(v) })
				gd.Selector.apply(&typeErrs, "group", "selector", func(v string) { g.Selector(v) })
			})
		}
		for _, sd := range cd.Services {
			b.Service(func(s *component.ServiceBuilder) {
				sd.Name.apply(&typeErrs, "service", "name", func(v string) { s.Name(v) })
				sd.Group.apply(&typeErrs, "service", "group", func(v string) { s.Group(v) })
				sd.Attribute.apply(&typeErrs, "service", "attribute", func(v string) { s.Attribute(v) })
				sd.Recipe.apply(&typeErrs, "service", "recipe", func(v string) { s.Recipe(v) })
			})
		}
		for _, cmd := range cd.Commands {
			b.Command(func(c *component.CommandBuilder) {
				cmd.Name.apply(&typeErrs, "command", "name", func(v string) { c.Name(v) })
				cmd.Description.apply(&typeErrs, "command", "description", func(v string) { c.Description(v) })
				for i, step := range cmd.Steps {
					var service, state string
					step.Service.apply(&typeErrs, "command", fmt.Sprintf("steps[%d].service", i), func(v string) { service = v })
					step.State.apply(&typeErrs, "command", fmt.Sprintf("steps[%d].state", i), func(v string) { state = v })
					c.Step(service, state)
				}
			})
		}
	})

	if len(typeErrs) > 0 {
		// Type errors come first: they explain most of the missing fields.
		if err != nil {
			return nil, appendValidation(typeErrs, "", err)
		}
		return nil, typeErrs
	}
	return comp, err
}

func appendValidation(errs api.ValidationErrors, prefix string, err error) api.ValidationErrors {
	var found api.ValidationErrors
	var many api.ValidationErrors
	var one *api.ValidationError
	switch {
	case errors.As(err, &many):
		found = many
	case errors.As(err, &one):
		found = api.ValidationErrors{one}
	default:
		found = api.ValidationErrors{api.NewValidationError("plugin", prefix, err.Error())}
	}

	for _, e := range found {
		if prefix != "" {
			e = api.NewValidationError(prefix+"."+e.Resource, e.Field, e.Reason)
		}
		errs = append(errs, e)
	}
	return errs
}

// LoadPlugins parses every file of the plugins directory under configPath.
// Valid plugins are returned even when other files fail; the failures are
// reported in a *ConfigurationErrorCollection. Component names must be
// unique across plugins.
func LoadPlugins(configPath string, inv inventory.Inventory) (component.Catalog, error) {
	storage := NewStorageWithPath(configPath)
	collection := NewConfigurationErrorCollection()

	names, err := storage.List(pluginsDir)
	if err != nil {
		return nil, errors.Annotate(err, "listing plugins")
	}

	var catalog component.Catalog
	owners := map[string]string{}
	seenPlugins := set.NewStrings()

	for _, name := range names {
		path, err := storage.Path(pluginsDir, name)
		if err != nil {
			collection.Add(NewConfigurationError(name, pluginsDir, ErrorTypeIO, err.Error()))
			continue
		}
		data, err := storage.Load(pluginsDir, name)
		if err != nil {
			collection.Add(NewConfigurationError(path, pluginsDir, ErrorTypeIO, err.Error()))
			continue
		}

		plugin, err := ParsePlugin(data, inv)
		if err != nil {
			collection.Add(pluginError(path, err))
			logging.Warn("ConfigLoader", "Skipping plugin file %s: %v", path, err)
			continue
		}

		if seenPlugins.Contains(plugin.Name()) {
			collection.Add(NewConfigurationError(path, pluginsDir, ErrorTypeValidation,
				fmt.Sprintf("plugin %q is declared more than once", plugin.Name())))
			continue
		}

		var clash []string
		for _, comp := range plugin.Components() {
			if owner, ok := owners[comp.Name()]; ok {
				clash = append(clash, fmt.Sprintf("%s (already provided by %s)", comp.Name(), owner))
			}
		}
		if len(clash) > 0 {
			collection.Add(NewConfigurationErrorWithDetails(path, pluginsDir, ErrorTypeValidation,
				"duplicate component names", fmt.Sprint(clash),
				[]string{"Rename the component or remove one of the plugin files"}))
			continue
		}

		for _, comp := range plugin.Components() {
			owners[comp.Name()] = plugin.Name()
		}
		seenPlugins.Add(plugin.Name())
		catalog = append(catalog, plugin)
		logging.Info("ConfigLoader", "Loaded plugin %s %s with %d components from %s",
			plugin.Name(), plugin.Version(), len(plugin.Components()), path)
	}

	return catalog, collection.Err()
}

func pluginError(path string, err error) ConfigurationError {
	if api.IsValidation(err) {
		return NewConfigurationErrorWithDetails(path, pluginsDir, ErrorTypeValidation,
			"invalid plugin definition", err.Error(),
			[]string{"Every component needs a name and a description", "Services need name, group, attribute and recipe"})
	}
	return NewConfigurationErrorWithDetails(path, pluginsDir, ErrorTypeParse,
		"malformed plugin definition", err.Error(),
		[]string{"Check the YAML syntax and field names"})
}
