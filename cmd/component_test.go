package cmd

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetgear/internal/api"
	"fleetgear/internal/cli"
	"fleetgear/internal/formatting"
)

func TestComponentList(t *testing.T) {
	dir := newConfigDir(t)

	out, err := runCLI(t, "component", "list", "-o", "json", "--config", dir)
	require.NoError(t, err)

	var rows []formatting.ComponentRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, formatting.ComponentRow{
		Plugin:      "shop",
		Version:     "1.2.0",
		Name:        "web",
		Description: "storefront",
		Groups:      []string{"app", "cache", "edge"},
		Services:    []string{"app", "cache", "broken"},
		Commands:    []string{"bounce", "wreck"},
	}, rows[0])
}

func TestComponentNodes(t *testing.T) {
	dir := newConfigDir(t)

	out, err := runCLI(t, "component", "nodes", "web", "-e", "staging", "-o", "json", "--config", dir)
	require.NoError(t, err)

	var doc struct {
		Component   string                 `json:"component"`
		Environment string                 `json:"environment"`
		Groups      []formatting.NodeGroup `json:"groups"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "web", doc.Component)
	assert.Equal(t, "staging", doc.Environment)
	assert.Equal(t, []formatting.NodeGroup{
		{Group: "app", Nodes: []string{"web-1", "web-2"}},
		{Group: "cache", Nodes: []string{"cache-1"}},
		{Group: "edge", Nodes: []string{}},
	}, doc.Groups)

	_, err = runCLI(t, "component", "nodes", "db", "-e", "staging", "--config", dir)
	assert.ErrorContains(t, err, "component db not found")
}

func TestComponentInvoke(t *testing.T) {
	dir := newConfigDir(t)

	out, err := runCLI(t, "component", "invoke", "web", "bounce", "-e", "staging", "-q", "-o", "json", "--config", dir)
	require.NoError(t, err)

	var infos []api.TicketInfo
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	require.Len(t, infos, 2)
	for _, info := range infos {
		assert.Equal(t, api.JobSuccess, info.State)
	}
}

func TestComponentInvokeStopsAtFailure(t *testing.T) {
	dir := newConfigDir(t)

	out, err := runCLI(t, "component", "invoke", "web", "wreck", "-e", "staging", "-q", "-o", "json", "--config", dir)
	require.Error(t, err)

	var failed *cli.TicketFailedError
	require.True(t, errors.As(err, &failed))

	var infos []api.TicketInfo
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	require.Len(t, infos, 1)
	assert.Equal(t, api.JobFailure, infos[0].State)
	assert.Equal(t, []string{infos[0].ID}, failed.TicketIDs)
}

func TestComponentInvokeUnknownCommand(t *testing.T) {
	dir := newConfigDir(t)

	out, err := runCLI(t, "component", "invoke", "web", "explode", "-e", "staging", "-q", "--config", dir)
	require.Error(t, err)
	assert.True(t, api.IsNotFound(err))
	assert.Empty(t, out)
}
