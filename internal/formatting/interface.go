// Package formatting renders tickets, components and node sets for the
// CLI in table, JSON or YAML form.
package formatting

import (
	"fmt"
	"io"
	"os"
	"strings"

	"fleetgear/internal/api"
)

// OutputFormat represents the desired output format
type OutputFormat string

const (
	FormatTable OutputFormat = "table" // Rich table output
	FormatJSON  OutputFormat = "json"  // JSON output
	FormatYAML  OutputFormat = "yaml"  // YAML output
)

// ParseOutputFormat maps a flag value to an OutputFormat.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (use table, json or yaml)", s)
	}
}

// Options configures the formatter behavior
type Options struct {
	Format OutputFormat
	Quiet  bool      // Suppress the status log in table output
	Color  bool      // Enable colored output
	Output io.Writer // Defaults to os.Stdout
}

func (o Options) writer() io.Writer {
	if o.Output == nil {
		return os.Stdout
	}
	return o.Output
}

// ComponentRow describes one component for listings.
type ComponentRow struct {
	Plugin      string   `json:"plugin"`
	Version     string   `json:"version,omitempty"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Groups      []string `json:"groups"`
	Services    []string `json:"services"`
	Commands    []string `json:"commands"`
}

// NodeGroup lists the nodes a group resolved to.
type NodeGroup struct {
	Group string   `json:"group"`
	Nodes []string `json:"nodes"`
}

// ContextRow describes one environment context.
type ContextRow struct {
	Current     bool   `json:"current"`
	Name        string `json:"name"`
	Environment string `json:"environment"`
	Output      string `json:"output,omitempty"`
}

// Formatter renders CLI results.
type Formatter interface {
	FormatTicket(info api.TicketInfo) error
	FormatTickets(infos []api.TicketInfo) error
	FormatComponents(rows []ComponentRow) error
	FormatNodes(component, environment string, groups []NodeGroup) error
	FormatContexts(rows []ContextRow) error

	// Generic data formatting
	FormatData(data interface{}) error

	SetOptions(options Options)
	GetOptions() Options
}

// Factory creates formatters for different output formats
type Factory interface {
	CreateFormatter(options Options) Formatter
}

// NewFactory creates a new formatter factory
func NewFactory() Factory {
	return &factory{}
}

type factory struct{}

// CreateFormatter creates the appropriate formatter based on options
func (f *factory) CreateFormatter(options Options) Formatter {
	switch options.Format {
	case FormatJSON:
		return NewJSONFormatter(options)
	case FormatYAML:
		return NewYAMLFormatter(options)
	case FormatTable:
		fallthrough
	default:
		return NewTableFormatter(options)
	}
}
