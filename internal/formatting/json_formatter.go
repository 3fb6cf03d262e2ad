package formatting

import (
	"fmt"

	"fleetgear/internal/api"
)

// JSONFormatter provides structured JSON output formatting
type JSONFormatter struct {
	options Options
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(options Options) Formatter {
	return &JSONFormatter{
		options: options,
	}
}

func (f *JSONFormatter) FormatTicket(info api.TicketInfo) error {
	return f.FormatData(info)
}

func (f *JSONFormatter) FormatTickets(infos []api.TicketInfo) error {
	if infos == nil {
		infos = []api.TicketInfo{}
	}
	return f.FormatData(infos)
}

func (f *JSONFormatter) FormatComponents(rows []ComponentRow) error {
	if rows == nil {
		rows = []ComponentRow{}
	}
	return f.FormatData(rows)
}

func (f *JSONFormatter) FormatContexts(rows []ContextRow) error {
	if rows == nil {
		rows = []ContextRow{}
	}
	return f.FormatData(rows)
}

func (f *JSONFormatter) FormatNodes(component, environment string, groups []NodeGroup) error {
	return f.FormatData(nodesDocument(component, environment, groups))
}

// FormatData formats generic data as JSON
func (f *JSONFormatter) FormatData(data interface{}) error {
	_, err := fmt.Fprintln(f.options.writer(), PrettyJSON(data))
	return err
}

// SetOptions updates the formatter options
func (f *JSONFormatter) SetOptions(options Options) {
	f.options = options
}

// GetOptions returns the current formatter options
func (f *JSONFormatter) GetOptions() Options {
	return f.options
}

type nodesDoc struct {
	Component   string      `json:"component"`
	Environment string      `json:"environment"`
	Groups      []NodeGroup `json:"groups"`
}

func nodesDocument(component, environment string, groups []NodeGroup) nodesDoc {
	doc := nodesDoc{Component: component, Environment: environment, Groups: make([]NodeGroup, 0, len(groups))}
	for _, g := range groups {
		if g.Nodes == nil {
			g.Nodes = []string{}
		}
		doc.Groups = append(doc.Groups, g)
	}
	return doc
}
