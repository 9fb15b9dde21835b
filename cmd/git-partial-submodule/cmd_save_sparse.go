package main

import (
	"github.com/Reedbeta/git-partial-submodule/internal/submodule"
	"github.com/spf13/cobra"
)

func newSaveSparseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save-sparse [paths...]",
		Short: "Save sparse-checkout patterns to .gitmodules",
		RunE:  runSaveSparse,
	}
}

func runSaveSparse(cmd *cobra.Command, args []string) error {
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

	s := &submodule.Syncer{
		Git:       e.git,
		Workspace: e.ws,
		Manifest:  man,
		Out:       cmd.OutOrStdout(),
		ErrOut:    cmd.ErrOrStderr(),
	}
	return s.SaveAll(relPaths)
}
