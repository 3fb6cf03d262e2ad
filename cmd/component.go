package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"fleetgear/internal/api"
	"fleetgear/internal/cli"
	"fleetgear/internal/formatting"
	"fleetgear/internal/inventory"
	"fleetgear/internal/job"
	"fleetgear/internal/orchestrator"
)

func newComponentCmd(flags *cli.CommandFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "component",
		Aliases: []string{"components"},
		Short:   "Inspect components and run their commands",
	}
	cmd.AddCommand(newComponentListCmd(flags))
	cmd.AddCommand(newComponentNodesCmd(flags))
	cmd.AddCommand(newComponentInvokeCmd(flags))
	return cmd
}

func newComponentListCmd(flags *cli.CommandFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the components of all loaded plugins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter, err := flags.Formatter(cmd)
			if err != nil {
				return err
			}
			rt, err := cli.NewRuntime(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			var rows []formatting.ComponentRow
			for _, comp := range rt.Catalog.Components() {
				row := formatting.ComponentRow{Name: comp.Name(), Description: comp.Description()}
				if p, ok := rt.Catalog.PluginOf(comp.Name()); ok {
					row.Plugin = p.Name()
					row.Version = p.Version()
				}
				for _, g := range comp.Groups() {
					row.Groups = append(row.Groups, g.Name())
				}
				for _, s := range comp.Services() {
					row.Services = append(row.Services, s.Name())
				}
				for _, c := range comp.Commands() {
					row.Commands = append(row.Commands, c.Name())
				}
				rows = append(rows, row)
			}
			return formatter.FormatComponents(rows)
		},
	}
}

func newComponentNodesCmd(flags *cli.CommandFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nodes <component>",
		Short: "Show the nodes each group of a component resolves to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.ResolveEnvironment(cmd); err != nil {
				return err
			}
			formatter, err := flags.Formatter(cmd)
			if err != nil {
				return err
			}
			rt, err := cli.NewRuntime(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			comp, err := rt.Component(args[0])
			if err != nil {
				return err
			}

			nodes, err := comp.Nodes(cmd.Context(), flags.Environment)
			if err != nil {
				return err
			}
			groups := make([]formatting.NodeGroup, 0, len(nodes))
			for _, g := range comp.Groups() {
				groups = append(groups, formatting.NodeGroup{Group: g.Name(), Nodes: inventory.NodeNames(nodes[g.Name()])})
			}
			return formatter.FormatNodes(comp.Name(), flags.Environment, groups)
		},
	}
	cli.RegisterEnvironmentFlags(cmd, flags)
	return cmd
}

func newComponentInvokeCmd(flags *cli.CommandFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoke <component> <command>",
		Short: "Run a named command of a component",
		Long: `Run a named command of a component.

Each step of the command changes the state of one service and produces its
own ticket. The command stops at the first step that fails.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runComponentInvoke(cmd, flags, args[0], args[1])
		},
	}
	cli.RegisterEnvironmentFlags(cmd, flags)
	cli.RegisterForceFlag(cmd, flags)
	return cmd
}

func runComponentInvoke(cmd *cobra.Command, flags *cli.CommandFlags, componentName, commandName string) error {
	if err := flags.ResolveEnvironment(cmd); err != nil {
		return err
	}
	formatter, err := flags.Formatter(cmd)
	if err != nil {
		return err
	}
	rt, err := cli.NewRuntime(flags, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	orch, err := rt.Orchestrator(flags.Environment)
	if err != nil {
		return err
	}

	var tickets []*job.Ticket
	message := fmt.Sprintf("Running %s %s in %s", componentName, commandName, flags.Environment)
	invokeErr := cli.ShowProgress(cmd.ErrOrStderr(), flags.Quiet, message, func(progress func(api.StatusEntry)) error {
		var err error
		tickets, err = orch.InvokeCommand(cmd.Context(), rt.Catalog, componentName, commandName, flags.Environment,
			orchestrator.Options{Force: flags.Force, Progress: progress})
		return err
	})

	if len(tickets) > 0 {
		infos := make([]api.TicketInfo, 0, len(tickets))
		var failed []string
		for _, t := range tickets {
			infos = append(infos, t.Info())
			if t.State() == api.JobFailure {
				failed = append(failed, t.ID())
			}
		}
		if err := formatter.FormatTickets(infos); err != nil {
			return err
		}
		if len(failed) > 0 {
			return &cli.TicketFailedError{TicketIDs: failed}
		}
	}
	return invokeErr
}
