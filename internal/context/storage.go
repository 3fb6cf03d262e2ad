package context

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/juju/errors"
	"gopkg.in/yaml.v3"

	"fleetgear/internal/api"
	"fleetgear/pkg/logging"
)

const contextsFileName = "contexts.yaml"

// Storage provides access to the contexts.yaml file of a configuration
// directory.
type Storage struct {
	mu         sync.RWMutex
	configPath string
}

// NewStorageWithPath creates a Storage for the configuration directory configPath.
func NewStorageWithPath(configPath string) *Storage {
	return &Storage{configPath: configPath}
}

func (s *Storage) filePath() string {
	return filepath.Join(s.configPath, contextsFileName)
}

// Load reads the contexts file. A missing file yields an empty configuration.
func (s *Storage) Load() (*ContextConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadLocked()
}

func (s *Storage) loadLocked() (*ContextConfig, error) {
	data, err := os.ReadFile(s.filePath())
	if err != nil {
		if os.IsNotExist(err) {
			return &ContextConfig{}, nil
		}
		return nil, errors.Annotate(err, "reading contexts file")
	}

	var config ContextConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Annotatef(err, "parsing %s", s.filePath())
	}
	return &config, nil
}

func (s *Storage) saveLocked(config *ContextConfig) error {
	if err := os.MkdirAll(s.configPath, 0755); err != nil {
		return errors.Annotate(err, "creating config directory")
	}
	data, err := yaml.Marshal(config)
	if err != nil {
		return errors.Annotate(err, "encoding contexts")
	}
	if err := os.WriteFile(s.filePath(), data, 0644); err != nil {
		return errors.Annotate(err, "writing contexts file")
	}
	logging.Debug("Context", "Saved %d contexts to %s", len(config.Contexts), s.filePath())
	return nil
}

// update applies fn to the stored configuration and saves the result.
func (s *Storage) update(fn func(config *ContextConfig) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	config, err := s.loadLocked()
	if err != nil {
		return err
	}
	if err := fn(config); err != nil {
		return err
	}
	return s.saveLocked(config)
}

// GetCurrentContext returns the selected context, or nil when none is selected.
func (s *Storage) GetCurrentContext() (*Context, error) {
	config, err := s.Load()
	if err != nil {
		return nil, err
	}
	if config.CurrentContext == "" {
		return nil, nil
	}
	ctx := config.GetContext(config.CurrentContext)
	if ctx == nil {
		return nil, api.NewContextNotFoundError(config.CurrentContext)
	}
	return ctx, nil
}

// SetCurrentContext selects an existing context.
func (s *Storage) SetCurrentContext(name string) error {
	return s.update(func(config *ContextConfig) error {
		if !config.HasContext(name) {
			return api.NewContextNotFoundError(name)
		}
		config.CurrentContext = name
		return nil
	})
}

// AddContext adds a new context for environment.
func (s *Storage) AddContext(name, environment string, settings *ContextSettings) error {
	if err := ValidateContextName(name); err != nil {
		return err
	}
	if environment == "" {
		return errors.NotValidf("empty environment for context %q", name)
	}

	return s.update(func(config *ContextConfig) error {
		if config.HasContext(name) {
			return errors.AlreadyExistsf("context %q", name)
		}
		config.AddOrUpdateContext(Context{Name: name, Environment: environment, Settings: settings})
		return nil
	})
}

// DeleteContext removes a context by name.
func (s *Storage) DeleteContext(name string) error {
	return s.update(func(config *ContextConfig) error {
		if !config.RemoveContext(name) {
			return api.NewContextNotFoundError(name)
		}
		return nil
	})
}

// ListContexts returns all defined contexts.
func (s *Storage) ListContexts() ([]Context, error) {
	config, err := s.Load()
	if err != nil {
		return nil, err
	}
	return config.Contexts, nil
}

// Resolve returns the target environment and the context it came from.
// An explicit environment wins and yields a nil context. Otherwise the
// context named by FLEETGEAR_CONTEXT or the current context is used.
func (s *Storage) Resolve(environment string) (string, *Context, error) {
	if environment != "" {
		return environment, nil, nil
	}

	if name := os.Getenv(ContextEnvVar); name != "" {
		config, err := s.Load()
		if err != nil {
			return "", nil, err
		}
		ctx := config.GetContext(name)
		if ctx == nil {
			return "", nil, errors.Annotatef(api.NewContextNotFoundError(name), "%s", ContextEnvVar)
		}
		return ctx.Environment, ctx, nil
	}

	ctx, err := s.GetCurrentContext()
	if err != nil {
		return "", nil, err
	}
	if ctx == nil {
		return "", nil, errors.New(`no target environment: pass --environment or select one with "fleetgear context use"`)
	}
	return ctx.Environment, ctx, nil
}
