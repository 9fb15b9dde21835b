package submodule

import (
	"fmt"
	"io"

	"github.com/Reedbeta/git-partial-submodule/internal/gitcmd"
	"github.com/Reedbeta/git-partial-submodule/internal/gitmodules"
	"github.com/Reedbeta/git-partial-submodule/internal/workspace"
)

// Syncer moves sparse-checkout patterns between .gitmodules and the live
// sparse-checkout state of cloned submodules.
type Syncer struct {
	Git       *gitcmd.Runner
	Workspace *workspace.Context
	Manifest  *gitmodules.Manifest
	Out       io.Writer
	ErrOut    io.Writer
}

// SaveAll copies each submodule's live sparse-checkout state into
// .gitmodules. Submodules with sparse checkout disabled get their stored
// patterns removed so a later clone will not apply stale ones; repeating
// that is a no-op, not an error.
func (s *Syncer) SaveAll(relPaths []string) error {
	for _, relPath := range relPaths {
		e, ok := s.lookup(relPath)
		if !ok {
			continue
		}
		if err := s.saveOne(e, relPath); err != nil {
			return err
		}
	}
	return nil
}

// RestoreAll applies each entry's stored patterns to its sub-repository,
// or disables sparse checkout where the manifest holds none.
func (s *Syncer) RestoreAll(relPaths []string) error {
	for _, relPath := range relPaths {
		e, ok := s.lookup(relPath)
		if !ok {
			continue
		}
		if err := s.restoreOne(e, relPath); err != nil {
			return err
		}
	}
	return nil
}

// lookup resolves relPath to its manifest entry and requires a non-empty
// submodule worktree (a prior clone), writing the skip reason otherwise.
func (s *Syncer) lookup(relPath string) (*gitmodules.Entry, bool) {
	e, ok := s.Manifest.ByPath[relPath]
	if !ok {
		_, _ = fmt.Fprintf(s.ErrOut, "Couldn't find %s in .gitmodules! Skipping.\n", relPath)
		return nil, false
	}
	if !workspace.DirNonEmpty(s.Workspace.SubWorktree(relPath)) {
		_, _ = fmt.Fprintf(s.ErrOut, "%s submodule worktree is empty! Skipping.\n", relPath)
		return nil, false
	}
	return e, true
}

func (s *Syncer) saveOne(e *gitmodules.Entry, relPath string) error {
	worktree := s.Workspace.SubWorktree(relPath)

	// Exit code 1 means the key is missing, which counts as disabled.
	enabled, err := s.Git.Capture([]string{"-C", worktree, "config", "core.sparseCheckout"}, 0, 1)
	if err != nil {
		return err
	}
	if enabled != "true" {
		// Exit code 5 means unsetting a key that was never set.
		err := s.Git.Run([]string{"-C", s.Workspace.WorktreeRoot, "config", "-f", gitmodules.FileName,
			"--unset", gitmodules.SparseKey(e.Name)}, 0, 5)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(s.Out, "Sparse checkout not enabled for %s.\n", e.Name)
		return nil
	}

	list, err := s.Git.Capture([]string{"-C", worktree, "sparse-checkout", "list"})
	if err != nil {
		return err
	}
	joined := gitmodules.JoinPatterns(gitmodules.SplitPatterns(list))
	err = s.Git.Run([]string{"-C", s.Workspace.WorktreeRoot, "config", "-f", gitmodules.FileName,
		gitmodules.SparseKey(e.Name), joined})
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(s.Out, "Saved sparse-checkout patterns for %s.\n", e.Name)
	return nil
}

func (s *Syncer) restoreOne(e *gitmodules.Entry, relPath string) error {
	worktree := s.Workspace.SubWorktree(relPath)
	if len(e.SparsePatterns) == 0 {
		if err := s.Git.Run([]string{"-C", worktree, "sparse-checkout", "disable"}); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(s.Out, "Sparse checkout disabled for %s.\n", e.Name)
		return nil
	}

	if err := s.Git.Run([]string{"-C", worktree, "sparse-checkout", "init"}); err != nil {
		return err
	}
	if err := s.Git.Run(append([]string{"-C", worktree, "sparse-checkout", "set"}, e.SparsePatterns...)); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(s.Out, "Applied sparse-checkout patterns for %s.\n", e.Name)
	return nil
}
