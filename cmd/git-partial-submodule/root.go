package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "git-partial-submodule",
		Short:   "Add or clone partial git submodules; save and restore sparse-checkout patterns",
		Version: version,
		// Unknown subcommands fall through to the help text instead of
		// failing, so `git partial-submodule` with a typo stays exit 0.
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("dry-run", "n", false, "Dry run (display git commands without executing them)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose (display git commands being run, and other info)")

	cmd.AddCommand(
		newAddCmd(),
		newCloneCmd(),
		newSaveSparseCmd(),
		newRestoreSparseCmd(),
		newStatusCmd(),
	)

	return cmd
}
