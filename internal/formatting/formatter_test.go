package formatting

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/yaml"

	"fleetgear/internal/api"
)

func sampleTicket() api.TicketInfo {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	completed := created.Add(1500 * time.Millisecond)
	return api.TicketInfo{
		ID:          "4b1c",
		Type:        api.JobTypeDynamicServiceStateChange,
		State:       api.JobFailure,
		CreatedAt:   created,
		CompletedAt: &completed,
		Error:       "node n2: save: disk full",
		StatusLog: []api.StatusEntry{
			{Timestamp: created, Level: api.StatusInfo, State: api.JobRunning, Message: "preparing to change the app service to restart"},
			{Timestamp: completed, Level: api.StatusError, State: api.JobFailure, Message: "failed: node n2: save: disk full"},
		},
	}
}

func render(t *testing.T, format OutputFormat, fn func(Formatter) error) string {
	t.Helper()
	var buf bytes.Buffer
	f := NewFactory().CreateFormatter(Options{Format: format, Output: &buf})
	require.NoError(t, fn(f))
	return buf.String()
}

func TestParseOutputFormat(t *testing.T) {
	for in, want := range map[string]OutputFormat{"": FormatTable, "table": FormatTable, "JSON": FormatJSON, "yaml": FormatYAML} {
		got, err := ParseOutputFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseOutputFormat("xml")
	assert.Error(t, err)
}

func TestFactory(t *testing.T) {
	factory := NewFactory()
	assert.IsType(t, &TableFormatter{}, factory.CreateFormatter(Options{}))
	assert.IsType(t, &JSONFormatter{}, factory.CreateFormatter(Options{Format: FormatJSON}))
	assert.IsType(t, &YAMLFormatter{}, factory.CreateFormatter(Options{Format: FormatYAML}))

	f := factory.CreateFormatter(Options{Format: FormatTable})
	f.SetOptions(Options{Format: FormatTable, Quiet: true})
	assert.True(t, f.GetOptions().Quiet)
}

func TestTicketTable(t *testing.T) {
	out := render(t, FormatTable, func(f Formatter) error { return f.FormatTicket(sampleTicket()) })
	assert.Contains(t, out, "4b1c")
	assert.Contains(t, out, "Failure")
	assert.Contains(t, out, "disk full")
	assert.Contains(t, out, "1.5s")
	assert.Contains(t, out, "preparing to change the app service to restart")
	assert.NotContains(t, out, "\x1b[")

	var buf bytes.Buffer
	quiet := NewTableFormatter(Options{Format: FormatTable, Quiet: true, Output: &buf})
	require.NoError(t, quiet.FormatTicket(sampleTicket()))
	assert.NotContains(t, buf.String(), "preparing to change")
}

func TestTicketJSONAndYAML(t *testing.T) {
	out := render(t, FormatJSON, func(f Formatter) error { return f.FormatTicket(sampleTicket()) })
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "Failure", decoded["state"])
	assert.Equal(t, "dynamic_service_state_change", decoded["type"])
	assert.Len(t, decoded["statusLog"], 2)

	out = render(t, FormatYAML, func(f Formatter) error { return f.FormatTicket(sampleTicket()) })
	decoded = nil
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "4b1c", decoded["id"])
	assert.Equal(t, "node n2: save: disk full", decoded["error"])
	assert.Contains(t, out, "statusLog:")
}

func TestTicketsEmpty(t *testing.T) {
	assert.Contains(t, render(t, FormatTable, func(f Formatter) error { return f.FormatTickets(nil) }), "No tickets found")
	assert.Equal(t, "[]\n", render(t, FormatJSON, func(f Formatter) error { return f.FormatTickets(nil) }))
}

func TestComponents(t *testing.T) {
	rows := []ComponentRow{{
		Plugin:      "shop",
		Version:     "1.0.0",
		Name:        "web",
		Description: "storefront",
		Groups:      []string{"app", "cache"},
		Services:    []string{"app"},
		Commands:    []string{"bounce"},
	}}

	out := render(t, FormatTable, func(f Formatter) error { return f.FormatComponents(rows) })
	assert.Contains(t, out, "shop 1.0.0")
	assert.Contains(t, out, "app, cache")

	out = render(t, FormatYAML, func(f Formatter) error { return f.FormatComponents(rows) })
	assert.Contains(t, out, "name: web")
	assert.Contains(t, out, "- bounce")

	assert.Contains(t, render(t, FormatTable, func(f Formatter) error { return f.FormatComponents(nil) }), "No components found")
}

func TestContexts(t *testing.T) {
	rows := []ContextRow{
		{Current: true, Name: "stage", Environment: "staging"},
		{Name: "prod", Environment: "production", Output: "json"},
	}

	out := render(t, FormatTable, func(f Formatter) error { return f.FormatContexts(rows) })
	assert.Contains(t, out, "stage")
	assert.Contains(t, out, "production")
	assert.Contains(t, out, "*")

	out = render(t, FormatJSON, func(f Formatter) error { return f.FormatContexts(rows) })
	assert.Contains(t, out, `"current": true`)
	assert.Contains(t, out, `"output": "json"`)

	assert.Contains(t, render(t, FormatTable, func(f Formatter) error { return f.FormatContexts(nil) }), "No contexts defined")
	assert.Equal(t, "[]\n", render(t, FormatJSON, func(f Formatter) error { return f.FormatContexts(nil) }))
}

func TestNodes(t *testing.T) {
	groups := []NodeGroup{
		{Group: "app", Nodes: []string{"n1", "n2"}},
		{Group: "cache"},
	}

	out := render(t, FormatTable, func(f Formatter) error { return f.FormatNodes("web", "staging", groups) })
	assert.Contains(t, out, "web in staging")
	assert.Contains(t, out, "n1, n2")
	assert.Contains(t, out, "(none)")

	out = render(t, FormatJSON, func(f Formatter) error { return f.FormatNodes("web", "staging", groups) })
	var decoded struct {
		Component string      `json:"component"`
		Groups    []NodeGroup `json:"groups"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "web", decoded.Component)
	require.Len(t, decoded.Groups, 2)
	assert.NotNil(t, decoded.Groups[1].Nodes)
	assert.Contains(t, out, `"nodes": []`)
}

func TestTableFormatData(t *testing.T) {
	out := render(t, FormatTable, func(f Formatter) error {
		return f.FormatData(map[string]interface{}{"b": 2, "a": "one"})
	})
	assert.Less(t, bytes.Index([]byte(out), []byte(" a ")), bytes.Index([]byte(out), []byte(" b ")))

	out = render(t, FormatTable, func(f Formatter) error { return f.FormatData([]interface{}{"x", "y"}) })
	assert.Contains(t, out, "2. y")
	assert.Contains(t, out, "Total: 2 items")
}
