package formatting

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"fleetgear/internal/api"
	fgstrings "fleetgear/pkg/strings"
)

const maxCellLen = 100

// TableFormatter provides rich table output formatting
type TableFormatter struct {
	options Options
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(options Options) Formatter {
	return &TableFormatter{
		options: options,
	}
}

// FormatTicket prints the ticket summary followed by its status log.
func (f *TableFormatter) FormatTicket(info api.TicketInfo) error {
	t := f.createTable()
	t.AppendHeader(f.header("FIELD", "VALUE"))
	t.AppendRow(table.Row{f.key("Ticket"), info.ID})
	t.AppendRow(table.Row{f.key("Type"), info.Type})
	t.AppendRow(table.Row{f.key("State"), f.state(info.State)})
	t.AppendRow(table.Row{f.key("Created"), formatTime(info.CreatedAt)})
	if info.CompletedAt != nil {
		t.AppendRow(table.Row{f.key("Completed"), formatTime(*info.CompletedAt)})
		t.AppendRow(table.Row{f.key("Duration"), info.CompletedAt.Sub(info.CreatedAt).Round(time.Millisecond)})
	}
	if info.Error != "" {
		t.AppendRow(table.Row{f.key("Error"), f.colorize(text.FgRed, fgstrings.Head(info.Error, maxCellLen))})
	}
	t.Render()

	if f.options.Quiet || len(info.StatusLog) == 0 {
		return nil
	}

	log := f.createTable()
	log.AppendHeader(f.header("TIME", "LEVEL", "STATE", "MESSAGE"))
	for _, entry := range info.StatusLog {
		log.AppendRow(table.Row{
			formatTime(entry.Timestamp),
			f.level(entry.Level),
			entry.State,
			fgstrings.Head(entry.Message, maxCellLen),
		})
	}
	log.Render()
	return nil
}

// FormatTickets prints one row per ticket.
func (f *TableFormatter) FormatTickets(infos []api.TicketInfo) error {
	if len(infos) == 0 {
		return f.formatEmptyMessage("No tickets found")
	}

	t := f.createTable()
	t.AppendHeader(f.header("TICKET", "STATE", "CREATED", "LAST STATUS"))
	for _, info := range infos {
		last := ""
		if n := len(info.StatusLog); n > 0 {
			last = info.StatusLog[n-1].Message
		}
		t.AppendRow(table.Row{info.ID, f.state(info.State), formatTime(info.CreatedAt), fgstrings.Head(last, maxCellLen)})
	}
	t.AppendFooter(table.Row{"", "", "Total", len(infos)})
	t.Render()
	return nil
}

// FormatComponents prints one row per component.
func (f *TableFormatter) FormatComponents(rows []ComponentRow) error {
	if len(rows) == 0 {
		return f.formatEmptyMessage("No components found")
	}

	t := f.createTable()
	t.AppendHeader(f.header("COMPONENT", "PLUGIN", "DESCRIPTION", "GROUPS", "SERVICES", "COMMANDS"))
	for _, r := range rows {
		plugin := r.Plugin
		if r.Version != "" {
			plugin += " " + r.Version
		}
		t.AppendRow(table.Row{
			f.key(r.Name),
			plugin,
			fgstrings.Head(r.Description, maxCellLen),
			strings.Join(r.Groups, ", "),
			strings.Join(r.Services, ", "),
			strings.Join(r.Commands, ", "),
		})
	}
	t.Render()
	return nil
}

// FormatNodes prints the nodes of every group of a component.
func (f *TableFormatter) FormatNodes(component, environment string, groups []NodeGroup) error {
	if len(groups) == 0 {
		return f.formatEmptyMessage(fmt.Sprintf("Component %s has no groups", component))
	}

	t := f.createTable()
	t.SetTitle("%s in %s", component, environment)
	t.AppendHeader(f.header("GROUP", "COUNT", "NODES"))
	total := 0
	for _, g := range groups {
		names := strings.Join(g.Nodes, ", ")
		if len(g.Nodes) == 0 {
			names = f.colorize(text.FgYellow, "(none)")
		}
		t.AppendRow(table.Row{f.key(g.Group), len(g.Nodes), names})
		total += len(g.Nodes)
	}
	t.AppendFooter(table.Row{"Total", total, ""})
	t.Render()
	return nil
}

// FormatContexts prints one row per context, marking the current one.
func (f *TableFormatter) FormatContexts(rows []ContextRow) error {
	if len(rows) == 0 {
		return f.formatEmptyMessage("No contexts defined")
	}

	t := f.createTable()
	t.AppendHeader(f.header("CURRENT", "NAME", "ENVIRONMENT", "OUTPUT"))
	for _, r := range rows {
		marker := ""
		if r.Current {
			marker = f.colorize(text.FgGreen, "*")
		}
		t.AppendRow(table.Row{marker, f.key(r.Name), r.Environment, r.Output})
	}
	t.Render()
	return nil
}

// FormatData formats generic data using table logic
func (f *TableFormatter) FormatData(data interface{}) error {
	switch d := data.(type) {
	case map[string]interface{}:
		return f.formatObjectData(d)
	case []interface{}:
		return f.formatArrayData(d)
	case string:
		_, err := fmt.Fprintln(f.options.writer(), d)
		return err
	default:
		_, err := fmt.Fprintf(f.options.writer(), "%v\n", d)
		return err
	}
}

// SetOptions updates the formatter options
func (f *TableFormatter) SetOptions(options Options) {
	f.options = options
}

// GetOptions returns the current formatter options
func (f *TableFormatter) GetOptions() Options {
	return f.options
}

// Helper methods

// createTable creates a new table with standard styling
func (f *TableFormatter) createTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(f.options.writer())
	t.SetStyle(table.StyleRounded)
	return t
}

func (f *TableFormatter) header(names ...string) table.Row {
	row := make(table.Row, 0, len(names))
	for _, n := range names {
		row = append(row, f.colorize(text.FgHiCyan, n))
	}
	return row
}

func (f *TableFormatter) key(s string) string {
	return f.colorize(text.FgHiCyan, s)
}

func (f *TableFormatter) state(s api.JobState) string {
	switch s {
	case api.JobSuccess:
		return f.colorize(text.FgGreen, string(s))
	case api.JobFailure:
		return f.colorize(text.FgRed, string(s))
	case api.JobRunning:
		return f.colorize(text.FgYellow, string(s))
	default:
		return string(s)
	}
}

func (f *TableFormatter) level(l api.StatusLevel) string {
	switch l {
	case api.StatusWarning:
		return f.colorize(text.FgYellow, string(l))
	case api.StatusError:
		return f.colorize(text.FgRed, string(l))
	default:
		return string(l)
	}
}

func (f *TableFormatter) colorize(c text.Color, s string) string {
	if !f.options.Color {
		return s
	}
	return c.Sprint(s)
}

// formatEmptyMessage formats empty result messages
func (f *TableFormatter) formatEmptyMessage(message string) error {
	_, err := fmt.Fprintln(f.options.writer(), f.colorize(text.FgYellow, message))
	return err
}

// formatObjectData formats object data as key-value pairs
func (f *TableFormatter) formatObjectData(data map[string]interface{}) error {
	t := f.createTable()
	t.AppendHeader(f.header("KEY", "VALUE"))

	for key, value := range data {
		t.AppendRow(table.Row{
			f.key(key),
			fgstrings.Head(fmt.Sprintf("%v", value), maxCellLen),
		})
	}
	t.SortBy([]table.SortBy{{Number: 1, Mode: table.Asc}})

	t.Render()
	return nil
}

// formatArrayData formats array data as a simple numbered list
func (f *TableFormatter) formatArrayData(data []interface{}) error {
	if len(data) == 0 {
		return f.formatEmptyMessage("No items found")
	}

	w := f.options.writer()
	for i, item := range data {
		fmt.Fprintf(w, "  %d. %v\n", i+1, item)
	}
	fmt.Fprintf(w, "\nTotal: %d items\n", len(data))
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
