// Package logging provides the structured logging used throughout fleetgear.
//
// It is a thin layer over log/slog: every record carries a "subsystem"
// attribute so output can be filtered per component (Orchestrator, Job,
// EnvLock, FanOut, Inventory, Remote, ConfigLoader, CLI).
//
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//
//	logging.Info("Orchestrator", "changing %s to %s", service, state)
//	logging.Warn("Orchestrator", "state %q is not one of %v", state, known)
//	logging.Error("Remote", err, "recipe %s failed on %s", recipe, node)
//
// Init may be called again at any time (the CLI does so after reading the
// configuration file, tests do so to capture output into a buffer).
package logging
