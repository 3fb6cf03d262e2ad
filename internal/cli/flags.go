package cli

import (
	"github.com/spf13/cobra"

	"fleetgear/internal/config"
	fgcontext "fleetgear/internal/context"
	"fleetgear/internal/formatting"
	"fleetgear/pkg/logging"
)

// CommandFlags holds the flag values shared by fleetgear commands.
type CommandFlags struct {
	// OutputFormat specifies the desired output format (table, json, yaml)
	OutputFormat string
	// Quiet suppresses the spinner and the status log in table output
	Quiet bool
	// NoColor disables colored table output
	NoColor bool
	// Debug enables debug logging
	Debug bool
	// ConfigPath specifies a custom configuration directory path
	ConfigPath string
	// Environment is the target environment of node-changing commands
	Environment string
	// Force skips waiting for the environment lock
	Force bool
}

// RegisterCommonFlags registers the flags used by every command.
//
// The registered flags are:
//   - --output/-o: Output format (table, json, yaml), default: "table"
//   - --quiet/-q: Suppress non-essential output
//   - --no-color: Disable colored output
//   - --debug: Enable debug logging
//   - --config: Configuration directory
func RegisterCommonFlags(cmd *cobra.Command, flags *CommandFlags) {
	cmd.PersistentFlags().StringVarP(&flags.OutputFormat, "output", "o", string(formatting.FormatTable), "Output format (table, json, yaml)")
	cmd.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "Suppress non-essential output")
	cmd.PersistentFlags().BoolVar(&flags.NoColor, "no-color", false, "Disable colored output")
	cmd.PersistentFlags().BoolVar(&flags.Debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&flags.ConfigPath, "config", config.GetDefaultConfigPathOrPanic(), "Configuration directory")
}

// RegisterEnvironmentFlags registers the --environment/-e flag. Without it
// the target comes from the selected context, see ResolveEnvironment.
func RegisterEnvironmentFlags(cmd *cobra.Command, flags *CommandFlags) {
	cmd.Flags().StringVarP(&flags.Environment, "environment", "e", "", "Target environment (default: from the current context)")
}

// RegisterForceFlag registers --force for commands that take the
// environment lock.
func RegisterForceFlag(cmd *cobra.Command, flags *CommandFlags) {
	cmd.Flags().BoolVar(&flags.Force, "force", false, "Do not wait for other runs in the environment (runs may overlap)")
}

// Formatter creates the formatter selected by the flags.
func (f *CommandFlags) Formatter(cmd *cobra.Command) (formatting.Formatter, error) {
	format, err := formatting.ParseOutputFormat(f.OutputFormat)
	if err != nil {
		return nil, err
	}
	return formatting.NewFactory().CreateFormatter(formatting.Options{
		Format: format,
		Quiet:  f.Quiet,
		Color:  !f.NoColor,
		Output: cmd.OutOrStdout(),
	}), nil
}

// ResolveEnvironment fills Environment from the selected context when the
// flag was not given. The context's output setting applies unless --output
// was given too.
func (f *CommandFlags) ResolveEnvironment(cmd *cobra.Command) error {
	env, ctx, err := fgcontext.NewStorageWithPath(f.ConfigPath).Resolve(f.Environment)
	if err != nil {
		return err
	}
	f.Environment = env
	if ctx == nil {
		return nil
	}

	logging.Debug("CLI", "Using context %s (environment %s)", ctx.Name, env)
	if ctx.Settings != nil && ctx.Settings.Output != "" && !cmd.Flags().Changed("output") {
		f.OutputFormat = ctx.Settings.Output
	}
	return nil
}
