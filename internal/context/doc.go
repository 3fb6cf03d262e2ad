// Package context provides kubectl-style environment contexts for the
// fleetgear CLI.
//
// A context is a short local name for a target environment, optionally
// carrying per-context CLI settings. Selecting a context makes it the
// default target so node-changing commands can be run without
// --environment.
//
// # Configuration File
//
// Contexts are stored in contexts.yaml inside the configuration directory:
//
//	current-context: stage
//	contexts:
//	  - name: stage
//	    environment: staging
//	  - name: prod-eu
//	    environment: production_eu
//	    settings:
//	      output: json
//
// # Precedence
//
// Resolve picks the target environment in this order:
//  1. --environment flag (highest priority)
//  2. FLEETGEAR_CONTEXT environment variable
//  3. current-context from contexts.yaml
//
// # Concurrency
//
// Storage operations are safe within one process. Concurrent context
// changes from several fleetgear processes are not coordinated.
package context
