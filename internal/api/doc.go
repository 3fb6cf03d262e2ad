// Package api holds the types shared by fleetgear's packages: job and
// ticket states, status log entries and the typed errors callers match
// with IsNotFound, IsValidation and IsInvalidDynamicService.
//
// It imports no other fleetgear package.
package api
