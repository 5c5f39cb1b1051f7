// Package commands implements the CLI commands for facades.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.trai.ch/facades/internal/app"
	"go.trai.ch/facades/internal/build"
)

// CLI represents the command line interface for facades.
type CLI struct {
	app        Application
	rootCmd    *cobra.Command
	setVerbose func(bool)
	getwd      func() (string, error)
}

// Application represents the application logic interface.
type Application interface {
	Resolve(ctx context.Context, cwd string, paths []string, opts app.ResolveOptions) error
	Watch(ctx context.Context, cwd string, paths []string, opts app.ResolveOptions) error
}

// Option configures a CLI.
type Option func(*CLI)

// WithVerboseHook is called with the value of --verbose before any command runs.
func WithVerboseHook(f func(bool)) Option {
	return func(c *CLI) {
		c.setVerbose = f
	}
}

// WithWorkingDir makes commands resolve paths relative to dir instead of the process working directory.
func WithWorkingDir(dir string) Option {
	return func(c *CLI) {
		c.getwd = func() (string, error) { return dir, nil }
	}
}

// New creates a new CLI instance with the given app.
func New(a Application, opts ...Option) *CLI {
	rootCmd := &cobra.Command{
		Use:           "facades",
		Short:         "Inspect how source files map onto cached resolution facades",
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

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log cache activity at debug level")

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
		getwd:   os.Getwd,
	}
	for _, opt := range opts {
		opt(c)
	}

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		if c.setVerbose != nil {
			c.setVerbose(verbose)
		}
	}

	rootCmd.AddCommand(c.newResolveCmd())
	rootCmd.AddCommand(c.newWatchCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
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

func addResolveFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("platform", "p", "", "Resolve every file for this platform (jvm, js, native, common)")
	cmd.Flags().Bool("json", false, "Write the report as JSON")
}

func resolveOptions(cmd *cobra.Command) app.ResolveOptions {
	platform, _ := cmd.Flags().GetString("platform")
	asJSON, _ := cmd.Flags().GetBool("json")
	return app.ResolveOptions{
		Platform: platform,
		JSON:     asJSON,
	}
}
