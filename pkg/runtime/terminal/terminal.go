package terminal

import (
	"io"
	"os"

	"github.com/qtherapy/report-engine/pkg/runtime/terminal/commands"
	"github.com/qtherapy/report-engine/pkg/runtime/terminal/export"

	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	generator commands.Generator
	reporter  *export.Reporter
	rootCmd   *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Generator commands.Generator
	Output    io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	cli := &CLI{
		generator: opts.Generator,
		reporter:  export.NewReporter(opts.Output),
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relatorio",
		Short: "Quantum therapy report rendering tool",
	}

	cmd.AddCommand(commands.NewRenderCmd(cli.generator, cli.reporter))

	return cmd
}
