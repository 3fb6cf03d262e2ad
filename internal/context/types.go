package context

import (
	"regexp"

	"github.com/juju/errors"
)

// ContextEnvVar is the environment variable name for overriding the current context.
const ContextEnvVar = "FLEETGEAR_CONTEXT"

// maxContextNameLength follows Kubernetes label constraints.
const maxContextNameLength = 63

var contextNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*[a-z0-9]$|^[a-z0-9]$`)

// ContextSettings contains optional per-context settings.
type ContextSettings struct {
	// Output is the default output format for this context (table, json, yaml)
	Output string `yaml:"output,omitempty"`
}

// Context names a target environment.
type Context struct {
	Name        string           `yaml:"name"`
	Environment string           `yaml:"environment"`
	Settings    *ContextSettings `yaml:"settings,omitempty"`
}

// ContextConfig is the root structure of contexts.yaml.
type ContextConfig struct {
	CurrentContext string    `yaml:"current-context,omitempty"`
	Contexts       []Context `yaml:"contexts,omitempty"`
}

// ValidateContextName validates a context name. Context names must:
//   - Be between 1 and 63 characters
//   - Contain only lowercase letters, numbers, and hyphens
//   - Start and end with an alphanumeric character
func ValidateContextName(name string) error {
	if name == "" {
		return errors.NotValidf("empty context name")
	}
	if len(name) > maxContextNameLength {
		return errors.NotValidf("context name longer than %d characters", maxContextNameLength)
	}
	if !contextNamePattern.MatchString(name) {
		return errors.NotValidf("context name %q (use lowercase letters, numbers and hyphens)", name)
	}
	return nil
}

// GetContext returns the context with the given name, or nil if not found.
func (c *ContextConfig) GetContext(name string) *Context {
	for i := range c.Contexts {
		if c.Contexts[i].Name == name {
			return &c.Contexts[i]
		}
	}
	return nil
}

// HasContext returns true if a context with the given name exists.
func (c *ContextConfig) HasContext(name string) bool {
	return c.GetContext(name) != nil
}

// AddOrUpdateContext adds a new context or replaces the one with the same name.
func (c *ContextConfig) AddOrUpdateContext(ctx Context) {
	for i := range c.Contexts {
		if c.Contexts[i].Name == ctx.Name {
			c.Contexts[i] = ctx
			return
		}
	}
	c.Contexts = append(c.Contexts, ctx)
}

// RemoveContext removes the context with the given name and reports
// whether it existed. Removing the current context clears CurrentContext.
func (c *ContextConfig) RemoveContext(name string) bool {
	for i := range c.Contexts {
		if c.Contexts[i].Name == name {
			c.Contexts = append(c.Contexts[:i], c.Contexts[i+1:]...)
			if c.CurrentContext == name {
				c.CurrentContext = ""
			}
			return true
		}
	}
	return false
}
