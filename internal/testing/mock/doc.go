// Package mock provides in-memory stand-ins for fleetgear's external
// collaborators (inventory, nodes, remote execution) so the orchestration
// packages can be tested without real infrastructure.
package mock
