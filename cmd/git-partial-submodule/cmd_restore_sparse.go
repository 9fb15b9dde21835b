package main

import (
	"github.com/Reedbeta/git-partial-submodule/internal/submodule"
	"github.com/spf13/cobra"
)

func newRestoreSparseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore-sparse [paths...]",
		Short: "Restore sparse-checkout patterns from .gitmodules",
		RunE:  runRestoreSparse,
	}
}

func runRestoreSparse(cmd *cobra.Command, args []string) error {
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
	return s.RestoreAll(relPaths)
}
