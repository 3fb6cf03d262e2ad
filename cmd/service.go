package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"fleetgear/internal/api"
	"fleetgear/internal/cli"
	"fleetgear/internal/job"
	"fleetgear/internal/orchestrator"
)

func newServiceCmd(flags *cli.CommandFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Manage the services of components",
	}
	cmd.AddCommand(newServiceStateCmd(flags))
	return cmd
}

func newServiceStateCmd(flags *cli.CommandFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state <component.service> <state>",
		Short: "Change the state of a service on all nodes of its group",
		Long: `Change the state of a service on all nodes of its group.

The desired state is written to the service's attribute on every node of
the group, then the service's recipe runs on those nodes. Only one change
runs per environment at a time; --force skips waiting for it.

Examples:
  fleetgear service state web.app restart -e staging
  fleetgear service state web.app stop -e production --force -o json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServiceState(cmd, flags, args[0], args[1])
		},
	}
	cli.RegisterEnvironmentFlags(cmd, flags)
	cli.RegisterForceFlag(cmd, flags)
	return cmd
}

func runServiceState(cmd *cobra.Command, flags *cli.CommandFlags, serviceID, state string) error {
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

	var ticket *job.Ticket
	message := fmt.Sprintf("Changing %s to %s in %s", serviceID, state, flags.Environment)
	err = cli.ShowProgress(cmd.ErrOrStderr(), flags.Quiet, message, func(progress func(api.StatusEntry)) error {
		var err error
		ticket, err = orch.ChangeServiceState(cmd.Context(), serviceID, rt.Catalog, flags.Environment, state,
			orchestrator.Options{Force: flags.Force, Progress: progress})
		return err
	})
	if err != nil {
		return err
	}

	if err := formatter.FormatTicket(ticket.Info()); err != nil {
		return err
	}
	if ticket.State() == api.JobFailure {
		return &cli.TicketFailedError{TicketIDs: []string{ticket.ID()}}
	}
	return nil
}
