package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve [files...]",
		Short: "Report the resolution facade serving each file",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				// Display command usage help without returning an error
				_ = cmd.Help()
				return nil
			}
			cwd, err := c.getwd()
			if err != nil {
				return err
			}
			return c.app.Resolve(cmd.Context(), cwd, args, resolveOptions(cmd))
		},
	}
	addResolveFlags(cmd)
	return cmd
}
