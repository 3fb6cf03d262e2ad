package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"fleetgear/internal/cli"
)

// rootFlags holds the flag values shared by all subcommands.
var rootFlags cli.CommandFlags

// rootCmd represents the base command for the fleetgear application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "fleetgear",
	Short: "Change service states across fleets of managed nodes",
	Long: `fleetgear drives configuration-managed nodes from declared components.

A component groups nodes by label selector and names the services running
on them. Changing a service's state records the desired state on every
node of its group and then runs the service's recipe there, one change per
environment at a time.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
	// Errors are printed by Execute so that configuration reports keep their layout.
	SilenceErrors: true,
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "fleetgear version %s\n" .Version}}`)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), cli.DescribeError(err))
		os.Exit(cli.ExitCode(err))
	}
}

// addCommands attaches every subcommand to root, binding them to flags.
func addCommands(root *cobra.Command, flags *cli.CommandFlags) {
	cli.RegisterCommonFlags(root, flags)
	root.AddCommand(newVersionCmd())
	root.AddCommand(newServiceCmd(flags))
	root.AddCommand(newComponentCmd(flags))
	root.AddCommand(newContextCmd(flags))
}

func init() {
	addCommands(rootCmd, &rootFlags)
}
