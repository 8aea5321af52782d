package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds the command tree over a. Configuration flags are
// consumed by package config, so every command tolerates unknown flags.
func NewRootCmd(a *App) *cobra.Command {
	root := &cobra.Command{
		Use:          "mirror",
		Short:        "Mirror remote drive indexes into a local database",
		SilenceUsage: true,
	}

	cursorCmd := &cobra.Command{
		Use:   "cursor",
		Short: "Inspect or reset sync cursors",
	}
	cursorCmd.AddCommand(a.cursorResetCmd())

	root.AddCommand(
		a.syncCmd(),
		a.statusCmd(),
		cursorCmd,
		a.loginCmd(),
		a.watchCmd(),
	)

	tolerateUnknownFlags(root)
	return root
}

func tolerateUnknownFlags(c *cobra.Command) {
	c.FParseErrWhitelist = cobra.FParseErrWhitelist{UnknownFlags: true}
	for _, sub := range c.Commands() {
		tolerateUnknownFlags(sub)
	}
}
