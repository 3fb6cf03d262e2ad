package formatting

import (
	"fmt"

	"sigs.k8s.io/yaml"

	"fleetgear/internal/api"
)

// YAMLFormatter renders YAML through the JSON field names, so JSON and YAML
// output share one schema.
type YAMLFormatter struct {
	options Options
}

// NewYAMLFormatter creates a new YAML formatter
func NewYAMLFormatter(options Options) Formatter {
	return &YAMLFormatter{
		options: options,
	}
}

func (f *YAMLFormatter) FormatTicket(info api.TicketInfo) error {
	return f.FormatData(info)
}

func (f *YAMLFormatter) FormatTickets(infos []api.TicketInfo) error {
	if infos == nil {
		infos = []api.TicketInfo{}
	}
	return f.FormatData(infos)
}

func (f *YAMLFormatter) FormatComponents(rows []ComponentRow) error {
	if rows == nil {
		rows = []ComponentRow{}
	}
	return f.FormatData(rows)
}

func (f *YAMLFormatter) FormatContexts(rows []ContextRow) error {
	if rows == nil {
		rows = []ContextRow{}
	}
	return f.FormatData(rows)
}

func (f *YAMLFormatter) FormatNodes(component, environment string, groups []NodeGroup) error {
	return f.FormatData(nodesDocument(component, environment, groups))
}

// FormatData formats generic data as YAML
func (f *YAMLFormatter) FormatData(data interface{}) error {
	_, err := fmt.Fprint(f.options.writer(), f.marshal(data))
	return err
}

// SetOptions updates the formatter options
func (f *YAMLFormatter) SetOptions(options Options) {
	f.options = options
}

// GetOptions returns the current formatter options
func (f *YAMLFormatter) GetOptions() Options {
	return f.options
}

// marshal converts data to YAML string
func (f *YAMLFormatter) marshal(data interface{}) string {
	yamlBytes, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Sprintf("error: \"Failed to format YAML: %v\"\n", err)
	}

	return string(yamlBytes)
}
