// Package orchestrator changes the state of component services across the
// nodes of an environment.
//
// A state change takes a "<component>.<service>" identifier, an environment
// and a desired state. The orchestrator creates a job, takes the
// environment lock, resolves the service's group to nodes, sets the
// service's attribute on every node concurrently and finally asks the
// remote executor to run the service recipe on those nodes.
//
// # Tickets
//
// ChangeServiceState returns the job's ticket once the job is terminal.
// Errors after the job exists never escape as Go errors; they are captured
// in the ticket's Failure state. Only a malformed identifier is returned as
// an error, since no job exists at that point.
//
// # Locking
//
// Runs targeting the same environment are serialized. Options.Force skips
// the lock entirely; concurrent forced runs may interleave.
//
// # Events
//
// SubscribeToStateChanges delivers a ServiceStateChangedEvent for every
// finished state change. Slow subscribers miss events.
package orchestrator
