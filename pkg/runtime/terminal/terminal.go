package terminal

import (
	"io"
	"os"

	"github.com/de-tools/report-forge/pkg/runtime/terminal/commands"
	"github.com/de-tools/report-forge/pkg/runtime/terminal/export"

	"github.com/de-tools/report-forge/pkg/services/source"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	registry *source.Registry
	reporter *export.Reporter
	logger   zerolog.Logger
	rootCmd  *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Registry *source.Registry
	Logger   zerolog.Logger
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
		logger:   opts.Logger,
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report-forge",
		Short: "Sales report generation tool",
	}

	cmd.AddCommand(commands.NewGenerateCmd(cli.registry, cli.reporter, cli.logger))
	cmd.AddCommand(commands.NewSweepCmd(cli.logger))
	cmd.AddCommand(commands.NewSourcesCmd(cli.registry))

	return cmd
}
