// Package cli wires fleetgear's building blocks together for the commands
// in cmd/.
//
// CommandFlags and RegisterCommonFlags give every command the same
// --output, --quiet, --no-color, --debug and --config flags.
// RegisterEnvironmentFlags adds --environment to commands that target
// nodes, and RegisterForceFlag adds --force to those that take the
// environment lock.
//
// NewRuntime loads the configuration directory (config.yaml, the node
// inventory and the plugin files) and builds an orchestrator whose remote
// executor is bound to the target environment. ShowProgress renders a
// spinner fed by the job's status stream while a state change runs.
//
// Failed tickets are reported as *TicketFailedError so that the process
// exits non-zero; configuration problems map to their own exit code.
package cli
