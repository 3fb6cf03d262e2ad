package cli

import (
	"errors"
	"fmt"
	"strings"

	"fleetgear/internal/config"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error, including failed tickets.
	ExitCodeError = 1
	// ExitCodeConfig indicates an unusable configuration directory.
	ExitCodeConfig = 2
)

// TicketFailedError is returned when one or more tickets ended in Failure.
// The tickets themselves have already been printed.
type TicketFailedError struct {
	TicketIDs []string
}

func (e *TicketFailedError) Error() string {
	return fmt.Sprintf("%d ticket(s) failed: %s", len(e.TicketIDs), strings.Join(e.TicketIDs, ", "))
}

// ExitCode determines the process exit code for err.
func ExitCode(err error) int {
	if err == nil {
		return ExitCodeSuccess
	}

	var ce config.ConfigurationError
	if errors.As(err, &ce) {
		return ExitCodeConfig
	}
	var collection *config.ConfigurationErrorCollection
	if errors.As(err, &collection) {
		return ExitCodeConfig
	}

	return ExitCodeError
}

// DescribeError returns the message printed for err. Configuration
// problems get the detailed report including suggestions.
func DescribeError(err error) string {
	var collection *config.ConfigurationErrorCollection
	if errors.As(err, &collection) {
		return collection.GetDetailedReport()
	}
	var ce config.ConfigurationError
	if errors.As(err, &ce) {
		return ce.DetailedError()
	}
	return "Error: " + err.Error()
}
