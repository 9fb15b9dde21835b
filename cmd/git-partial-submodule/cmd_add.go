package main

import (
	"fmt"
	"os"

	"github.com/Reedbeta/git-partial-submodule/internal/submodule"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [repository path]",
		Short: "Add a new partial submodule",
		Args:  cobra.MaximumNArgs(2),
		RunE:  runAdd,
	}
	cmd.Flags().StringP("branch", "b", "", "Branch in the submodule repository to check out")
	cmd.Flags().String("name", "", "Logical name for the submodule")
	cmd.Flags().Bool("sparse", false, "Enable sparse checkout in the submodule")
	return cmd
}

func runAdd(cmd *cobra.Command, args []string) error {
	branch, _ := cmd.Flags().GetString("branch")
	name, _ := cmd.Flags().GetString("name")
	sparse, _ := cmd.Flags().GetBool("sparse")

	if len(args) == 1 {
		return fmt.Errorf("add needs both a repository and a path, or no arguments for a prompt")
	}
	if len(args) == 0 && !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("no repository provided and stdin is not a TTY; pass a repository and path as arguments")
	}

	e, err := setup(cmd)
	if err != nil {
		return err
	}

	opts := submodule.AddOptions{Branch: branch, Name: name, Sparse: sparse}
	if len(args) == 2 {
		opts.Repository, opts.Path = args[0], args[1]
	} else if err := promptAddOptions(&opts); err != nil {
		return fmt.Errorf("interactive add: %w", err)
	}

	return submodule.Add(e.git, e.ws, opts)
}
