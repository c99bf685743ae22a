// Package commands implements the CLI commands for pwa.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/pwa/internal/adapters/telemetry"
	"go.trai.ch/pwa/internal/app"
	"go.trai.ch/pwa/internal/build"
	"go.trai.ch/pwa/internal/core/domain"
	"go.trai.ch/pwa/internal/engine/scancache"
)

// CLI represents the command line interface for pwa.
type CLI struct {
	app      Application
	rootCmd  *cobra.Command
	json     JSONSwitch
	summary  *telemetry.SummaryProcessor
	shutdown func(context.Context) error
}

// Application represents the application logic interface.
type Application interface {
	Generate(ctx context.Context, opts app.GenerateOptions) (app.GenerateResult, error)
	Watch(ctx context.Context, opts app.GenerateOptions) error
	Routes(ctx context.Context, dir string) ([]domain.CompiledRoute, error)
	PruneCache(ctx context.Context, dir string) (int, error)
	ClearCache(ctx context.Context, opts app.ClearOptions) error
	ListCache(ctx context.Context, dir string) ([]scancache.EntryInfo, error)
}

// JSONSwitch is implemented by loggers that can emit JSON.
type JSONSwitch interface {
	SetJSON(enable bool)
}

// Option configures a CLI.
type Option func(*CLI)

// WithJSONSwitch lets the --json flag reconfigure the logger.
func WithJSONSwitch(s JSONSwitch) Option {
	return func(c *CLI) {
		c.json = s
	}
}

// New creates a new CLI instance with the given app.
func New(a Application, opts ...Option) *CLI {
	rootCmd := &cobra.Command{
		Use:           "pwa",
		Short:         "Generate a web app manifest and service worker for any project",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().Bool("json", false, "Emit log lines as JSON")
	rootCmd.PersistentFlags().Bool("trace", false, "Print span timings when the command finishes")

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}
	for _, opt := range opts {
		opt(c)
	}

	rootCmd.PersistentPreRun = c.before
	rootCmd.PersistentPostRun = c.after

	rootCmd.AddCommand(c.newGenerateCmd())
	rootCmd.AddCommand(c.newRoutesCmd())
	rootCmd.AddCommand(c.newCacheCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

func (c *CLI) before(cmd *cobra.Command, _ []string) {
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON && c.json != nil {
		c.json.SetJSON(true)
	}
	if trace, _ := cmd.Flags().GetBool("trace"); trace {
		c.summary = telemetry.NewSummaryProcessor()
		c.shutdown = telemetry.Install(c.summary)
	}
}

func (c *CLI) after(cmd *cobra.Command, _ []string) {
	if c.summary == nil {
		return
	}
	_ = c.shutdown(cmd.Context())
	printSpans(cmd.ErrOrStderr(), c.summary.Spans())
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
