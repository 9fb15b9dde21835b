package main

import (
	"github.com/Reedbeta/git-partial-submodule/internal/submodule"
	"github.com/spf13/cobra"
)

func newCloneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clone [paths...]",
		Short: "Clone partial submodules from .gitmodules",
		RunE:  runClone,
	}
}

// TODO: recursive clone option.
func runClone(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	man, err := loadManifest(e)
	if err != nil {
		return err
	}
	relPaths, err := targetPaths(e, man, args)
	if err != nil {
		return err
	}

	c := &submodule.Cloner{
		Git:       e.git,
		Workspace: e.ws,
		Manifest:  man,
		Out:       cmd.OutOrStdout(),
		ErrOut:    cmd.ErrOrStderr(),
		Log:       e.log,
	}
	return c.CloneAll(args, relPaths)
}
