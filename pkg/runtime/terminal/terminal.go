package terminal

import (
	"context"
	"io"
	"os"

	"github.com/arclabs561/runctl/pkg/runtime/terminal/commands"
	"github.com/arclabs561/runctl/pkg/runtime/terminal/export"

	"github.com/arclabs561/runctl/pkg/services/provider"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	registry provider.Registry
	reporter *export.Reporter
	rootCmd  *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Registry provider.Registry
	Output   io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	cli := &CLI{
		registry: opts.Registry,
		reporter: export.NewReporter(opts.Output),
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

// ExecuteContext runs the CLI with the given base context, so commands
// inherit the logger and cancellation carried by ctx.
func (cli *CLI) ExecuteContext(ctx context.Context) error {
	return cli.rootCmd.ExecuteContext(ctx)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runctl",
		Short: "Rent, track and safely tear down cloud compute for training jobs",
	}

	cmd.AddCommand(commands.NewStatusCmd(cli.registry, cli.reporter))
	cmd.AddCommand(commands.NewCostCmd(cli.registry, cli.reporter))
	cmd.AddCommand(commands.NewCleanupCmd(cli.registry, cli.reporter))
	cmd.AddCommand(commands.NewCreateCmd(cli.registry))
	cmd.AddCommand(commands.NewLifecycleCmds(cli.registry)...)
	cmd.AddCommand(commands.NewSyncCmd(cli.registry))
	cmd.AddCommand(commands.NewProvidersCmd(cli.registry))

	return cmd
}
