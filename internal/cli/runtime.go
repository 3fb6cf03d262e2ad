package cli

import (
	"io"
	"os"

	"github.com/juju/errors"

	"fleetgear/internal/component"
	"fleetgear/internal/config"
	"fleetgear/internal/fanout"
	"fleetgear/internal/inventory"
	"fleetgear/internal/job"
	"fleetgear/internal/orchestrator"
	"fleetgear/internal/remote"
	"fleetgear/pkg/logging"
)

// Runtime is everything a command needs, loaded from one configuration
// directory.
type Runtime struct {
	ConfigPath string
	Config     config.FleetgearConfig
	Inventory  *inventory.FileInventory
	Catalog    component.Catalog

	// PluginErrors lists the plugin files that were skipped, if any.
	PluginErrors *config.ConfigurationErrorCollection

	registry *job.Registry
}

// NewRuntime initializes logging and loads the configuration directory
// named by flags. Log output goes to logOut.
func NewRuntime(flags *CommandFlags, logOut io.Writer) (*Runtime, error) {
	if logOut == nil {
		logOut = os.Stderr
	}

	cfg, err := config.LoadConfig(flags.ConfigPath)
	if err != nil {
		return nil, err
	}

	level, _ := logging.ParseLevel(cfg.LogLevel)
	if flags.Debug {
		level = logging.LevelDebug
	}
	logging.Init(level, logging.Format(cfg.LogFormat), logOut)

	inventoryPath := config.InventoryPath(flags.ConfigPath, cfg)
	inv, err := inventory.Load(inventoryPath)
	if err != nil {
		return nil, config.NewConfigurationErrorWithDetails(inventoryPath, "inventory", config.ErrorTypeIO,
			"cannot load node inventory", err.Error(),
			[]string{"Create the inventory file or point inventory.file in config.yaml at it"})
	}

	// Invalid plugin files are skipped; the valid ones stay usable.
	catalog, err := config.LoadPlugins(flags.ConfigPath, inv)
	var skipped *config.ConfigurationErrorCollection
	if err != nil {
		if !errors.As(err, &skipped) {
			return nil, err
		}
		logging.Warn("Runtime", "Skipped %d plugin file(s), %d plugin(s) loaded\n%s",
			skipped.Count(), len(catalog), skipped.GetDetailedReport())
	}

	return &Runtime{
		ConfigPath:   flags.ConfigPath,
		Config:       cfg,
		Inventory:    inv,
		Catalog:      catalog,
		PluginErrors: skipped,
		registry:     job.NewRegistry(0),
	}, nil
}

// Orchestrator builds an orchestrator whose remote executor runs recipes
// in environment. The environment is available to the remote command
// template as {{ environment }}.
func (r *Runtime) Orchestrator(environment string) (*orchestrator.Orchestrator, error) {
	executor, err := r.remoteExecutor(environment)
	if err != nil {
		return nil, err
	}
	return orchestrator.New(orchestrator.Config{
		FanOut:   fanout.New(r.Config.FanOut.Concurrency),
		Remote:   executor,
		Registry: r.registry,
	}), nil
}

func (r *Runtime) remoteExecutor(environment string) (remote.Executor, error) {
	if len(r.Config.Remote.Command) == 0 {
		logging.Debug("CLI", "No remote command configured, recipes will not run")
		return remote.NoopExecutor{}, nil
	}

	vars := map[string]interface{}{"environment": environment}
	for k, v := range r.Config.Remote.Vars {
		vars[k] = v
	}

	executor, err := remote.NewCommandExecutor(r.Config.Remote.Command, vars, r.Config.Remote.Concurrency)
	if err != nil {
		return nil, errors.Annotate(err, "remote.command in config.yaml")
	}
	return executor, nil
}

// Component looks a component up across all loaded plugins.
func (r *Runtime) Component(name string) (*component.Component, error) {
	comp, ok := r.Catalog.Component(name)
	if !ok {
		return nil, errors.Errorf("component %s not found in %d loaded plugin(s)", name, len(r.Catalog))
	}
	return comp, nil
}
