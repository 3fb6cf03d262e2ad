package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetgear/internal/api"
	fgcontext "fleetgear/internal/context"
	"fleetgear/internal/formatting"
)

func TestRegisterFlags(t *testing.T) {
	var flags CommandFlags
	root := &cobra.Command{Use: "root"}
	RegisterCommonFlags(root, &flags)

	var ran bool
	child := &cobra.Command{Use: "child", RunE: func(*cobra.Command, []string) error { ran = true; return nil }}
	RegisterEnvironmentFlags(child, &flags)
	RegisterForceFlag(child, &flags)
	root.AddCommand(child)

	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"child", "-o", "json", "-q", "--no-color", "--config", "/etc/fleetgear", "-e", "staging", "--force"})
	require.NoError(t, root.Execute())

	assert.True(t, ran)
	assert.Equal(t, CommandFlags{
		OutputFormat: "json",
		Quiet:        true,
		NoColor:      true,
		ConfigPath:   "/etc/fleetgear",
		Environment:  "staging",
		Force:        true,
	}, flags)
}

func TestResolveEnvironment(t *testing.T) {
	t.Setenv(fgcontext.ContextEnvVar, "")
	dir := t.TempDir()
	storage := fgcontext.NewStorageWithPath(dir)

	run := func(args ...string) (CommandFlags, error) {
		flags := CommandFlags{ConfigPath: dir}
		root := &cobra.Command{Use: "root"}
		root.PersistentFlags().StringVarP(&flags.OutputFormat, "output", "o", "table", "")
		cmd := &cobra.Command{Use: "change", RunE: func(cmd *cobra.Command, _ []string) error {
			return flags.ResolveEnvironment(cmd)
		}}
		RegisterEnvironmentFlags(cmd, &flags)
		root.AddCommand(cmd)
		root.SetOut(&bytes.Buffer{})
		root.SetErr(&bytes.Buffer{})
		root.SetArgs(append([]string{"change"}, args...))
		err := root.Execute()
		return flags, err
	}

	_, err := run()
	assert.ErrorContains(t, err, "environment")

	flags, err := run("-e", "qa")
	require.NoError(t, err)
	assert.Equal(t, "qa", flags.Environment)

	require.NoError(t, storage.AddContext("prod", "production", &fgcontext.ContextSettings{Output: "json"}))
	require.NoError(t, storage.SetCurrentContext("prod"))

	flags, err = run()
	require.NoError(t, err)
	assert.Equal(t, "production", flags.Environment)
	assert.Equal(t, "json", flags.OutputFormat)

	flags, err = run("-o", "yaml")
	require.NoError(t, err)
	assert.Equal(t, "production", flags.Environment)
	assert.Equal(t, "yaml", flags.OutputFormat)
}

func TestFormatter(t *testing.T) {
	var out bytes.Buffer
	cmd := &cobra.Command{Use: "x"}
	cmd.SetOut(&out)

	f, err := (&CommandFlags{OutputFormat: "yaml", NoColor: true}).Formatter(cmd)
	require.NoError(t, err)
	assert.Equal(t, formatting.FormatYAML, f.GetOptions().Format)
	assert.False(t, f.GetOptions().Color)

	require.NoError(t, f.FormatTicket(api.TicketInfo{ID: "t1", State: api.JobSuccess}))
	assert.Contains(t, out.String(), "id: t1")

	_, err = (&CommandFlags{OutputFormat: "xml"}).Formatter(cmd)
	assert.Error(t, err)
}
