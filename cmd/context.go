package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"fleetgear/internal/cli"
	fgcontext "fleetgear/internal/context"
	"fleetgear/internal/formatting"
)

func newContextCmd(flags *cli.CommandFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "context",
		Short: "Manage named target environments",
		Long: `Manage named target environments.

The current context supplies the environment of commands run without
--environment. FLEETGEAR_CONTEXT overrides the current context.`,
	}
	cmd.AddCommand(newContextListCmd(flags))
	cmd.AddCommand(newContextCurrentCmd(flags))
	cmd.AddCommand(newContextUseCmd(flags))
	cmd.AddCommand(newContextAddCmd(flags))
	cmd.AddCommand(newContextDeleteCmd(flags))
	return cmd
}

func newContextListCmd(flags *cli.CommandFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List contexts",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter, err := flags.Formatter(cmd)
			if err != nil {
				return err
			}
			config, err := fgcontext.NewStorageWithPath(flags.ConfigPath).Load()
			if err != nil {
				return err
			}

			rows := make([]formatting.ContextRow, 0, len(config.Contexts))
			for _, ctx := range config.Contexts {
				row := formatting.ContextRow{
					Current:     ctx.Name == config.CurrentContext,
					Name:        ctx.Name,
					Environment: ctx.Environment,
				}
				if ctx.Settings != nil {
					row.Output = ctx.Settings.Output
				}
				rows = append(rows, row)
			}
			return formatter.FormatContexts(rows)
		},
	}
}

func newContextCurrentCmd(flags *cli.CommandFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Print the current context",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := fgcontext.NewStorageWithPath(flags.ConfigPath).GetCurrentContext()
			if err != nil {
				return err
			}
			if ctx == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No current context")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (environment %s)\n", ctx.Name, ctx.Environment)
			return nil
		},
	}
}

func newContextUseCmd(flags *cli.CommandFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "use <name>",
		Short: "Select the current context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := fgcontext.NewStorageWithPath(flags.ConfigPath).SetCurrentContext(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Switched to context %q\n", args[0])
			return nil
		},
	}
}

func newContextAddCmd(flags *cli.CommandFlags) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "add <name> <environment>",
		Short: "Add a context for an environment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var settings *fgcontext.ContextSettings
			if output != "" {
				settings = &fgcontext.ContextSettings{Output: output}
			}
			if err := fgcontext.NewStorageWithPath(flags.ConfigPath).AddContext(args[0], args[1], settings); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Context %q added for environment %s\n", args[0], args[1])
			return nil
		},
	}
	cmd.Flags().StringVar(&output, "default-output", "", "Output format used with this context unless --output is given")
	return cmd
}

func newContextDeleteCmd(flags *cli.CommandFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <name>",
		Aliases: []string{"rm"},
		Short:   "Delete a context",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := fgcontext.NewStorageWithPath(flags.ConfigPath).DeleteContext(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Context %q deleted\n", args[0])
			return nil
		},
	}
}
