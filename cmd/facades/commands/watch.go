package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [files...]",
		Short: "Resolve files again whenever the project changes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := c.getwd()
			if err != nil {
				return err
			}
			return c.app.Watch(cmd.Context(), cwd, args, resolveOptions(cmd))
		},
	}
	addResolveFlags(cmd)
	return cmd
}
