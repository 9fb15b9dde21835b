package main

import (
	"fmt"
	"os"

	"github.com/Reedbeta/git-partial-submodule/internal/gitcmd"
	"github.com/Reedbeta/git-partial-submodule/internal/gitmodules"
	"github.com/Reedbeta/git-partial-submodule/internal/workspace"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Version 2.27.0 is needed for --filter and --sparse options on git clone.
var minGitVersion = gitcmd.Version{Major: 2, Minor: 27}

// env is the shared state every subcommand needs after global setup.
type env struct {
	git *gitcmd.Runner
	ws  *workspace.Context
	log zerolog.Logger
}

// setup reads the global flags, verifies the installed git, and locates the
// enclosing superproject. Every subcommand calls it before doing real work.
func setup(cmd *cobra.Command) (*env, error) {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	verbose, _ := cmd.Flags().GetBool("verbose")

	log := newLogger(verbose)
	git := gitcmd.New(gitcmd.Options{DryRun: dryRun, Verbose: verbose}, cmd.OutOrStdout(), log)

	if err := git.CheckVersion(minGitVersion); err != nil {
		return nil, err
	}

	ws, err := workspace.Load(git)
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("worktree", ws.WorktreeRoot).
		Str("gitdir", ws.GitDir).
		Str("origin", ws.RemoteURL).
		Str("branch", ws.Branch).
		Msg("repository roots")

	if dryRun {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "DRY RUN:")
	}

	return &env{git: git, ws: ws, log: log}, nil
}

// newLogger builds the diagnostic logger. Verbose raises the level to Info;
// diagnostics always go to stderr so command output stays clean.
func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.InfoLevel
	}
	w := zerolog.ConsoleWriter{
		Out:     os.Stderr,
		NoColor: !term.IsTerminal(int(os.Stderr.Fd())),
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// loadManifest reads .gitmodules from the worktree root and warns about
// paths declared more than once.
func loadManifest(e *env) (*gitmodules.Manifest, error) {
	man, err := gitmodules.Read(e.ws.WorktreeRoot)
	if err != nil {
		return nil, err
	}
	for _, p := range man.DuplicatePaths {
		e.log.Warn().Str("path", p).Msg("multiple submodules declare the same path; the last one wins")
	}
	e.log.Info().Int("submodules", len(man.ByName)).Msg("parsed .gitmodules")
	return man, nil
}

// targetPaths normalizes positional path arguments to worktree-relative
// form, defaulting to every path-bearing manifest entry when none are given.
func targetPaths(e *env, man *gitmodules.Manifest, args []string) ([]string, error) {
	if len(args) == 0 {
		return man.Paths(), nil
	}
	rels := make([]string, 0, len(args))
	for _, a := range args {
		rel, err := e.ws.RelPath(a)
		if err != nil {
			return nil, err
		}
		rels = append(rels, rel)
	}
	return rels, nil
}
