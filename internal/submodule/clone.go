package submodule

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Reedbeta/git-partial-submodule/internal/gitcmd"
	"github.com/Reedbeta/git-partial-submodule/internal/gitmodules"
	"github.com/Reedbeta/git-partial-submodule/internal/workspace"
	"github.com/rs/zerolog"
)

// Cloner materializes manifest entries as partial clones. Results go to
// Out, per-entry skip warnings to ErrOut, verbose diagnostics to Log.
type Cloner struct {
	Git       *gitcmd.Runner
	Workspace *workspace.Context
	Manifest  *gitmodules.Manifest
	Out       io.Writer
	ErrOut    io.Writer
	Log       zerolog.Logger
}

// CloneAll materializes the given submodule paths. rawPaths are the path
// arguments exactly as the user gave them, forwarded to git submodule
// init; relPaths are the same paths relative to the worktree root. When
// the user gave no paths, rawPaths is empty and relPaths covers every
// manifest entry that has a path.
//
// Entries that cannot be cloned are skipped with a one-line reason, never
// left half-materialized. Hard failures abort the whole run.
func (c *Cloner) CloneAll(rawPaths, relPaths []string) error {
	// Init first so the submodule.<name> config entries exist.
	if err := c.Git.Run(append([]string{"submodule", "init"}, rawPaths...)); err != nil {
		return err
	}

	skipped := 0
	for _, relPath := range relPaths {
		entry, ok := c.Manifest.ByPath[relPath]
		if !ok {
			_, _ = fmt.Fprintf(c.ErrOut, "Couldn't find %s in .gitmodules! Skipping.\n", relPath)
			skipped++
			continue
		}
		cloned, err := c.cloneOne(entry, relPath)
		if err != nil {
			return err
		}
		if !cloned {
			skipped++
		}
	}

	_, _ = fmt.Fprintf(c.Out, "Cloned %d submodules and skipped %d.\n", len(relPaths)-skipped, skipped)
	return nil
}

// cloneOne materializes a single entry. It reports cloned=false with a nil
// error for the skip cases, and a non-nil error for conditions that must
// abort the run.
func (c *Cloner) cloneOne(e *gitmodules.Entry, relPath string) (cloned bool, err error) {
	gitDir := c.Workspace.ModulesDir(e.Name)
	worktree := c.Workspace.SubWorktree(relPath)

	switch Classify(c.Workspace, e.Name, relPath) {
	case StateCloned:
		c.Log.Info().Msgf("submodule %s repo already exists; skipping", e.Name)
		return false, nil
	case StateWorktreeOnly:
		_, _ = fmt.Fprintf(c.ErrOut, "%s submodule worktree is nonempty! Skipping.\n", relPath)
		return false, nil
	}

	if e.URL == "" {
		return false, fmt.Errorf("submodule %s has no url in %s", e.Name, gitmodules.FileName)
	}

	if !c.Git.DryRun() {
		if err := os.MkdirAll(filepath.Dir(gitDir), 0o755); err != nil {
			return false, err
		}
		if err := os.MkdirAll(worktree, 0o755); err != nil {
			return false, err
		}
	}

	args := []string{
		"clone",
		"--filter=blob:none",
		"--no-checkout",
		"--separate-git-dir", gitDir,
	}
	branch := c.Workspace.ResolveBranch(e.Branch)
	if branch != "" {
		args = append(args, "--branch", branch)
	}
	args = append(args, c.Workspace.ResolveURL(e.URL), worktree)
	if err := c.Git.Run(args); err != nil {
		return false, err
	}

	if len(e.SparsePatterns) > 0 {
		if err := c.Git.Run([]string{"-C", worktree, "sparse-checkout", "init"}); err != nil {
			return false, err
		}
		if err := c.Git.Run(append([]string{"-C", worktree, "sparse-checkout", "set"}, e.SparsePatterns...)); err != nil {
			return false, err
		}
		_, _ = fmt.Fprintf(c.Out, "Applied sparse-checkout patterns: %s\n", gitmodules.JoinPatterns(e.SparsePatterns))
	}

	pinned, err := c.pinnedCommit(relPath)
	if err != nil {
		return false, err
	}
	c.Log.Info().Msgf("%s submodule sha1 is %s", e.Name, pinned)

	// Check out the branch directly when its head matches the pinned
	// commit, rather than leaving the submodule in a detached-head state.
	// Under dry-run the submodule worktree does not exist, so the branch
	// head cannot be read and the detached form is echoed.
	checkout := []string{"checkout", "--detach", pinned}
	if branch != "" && !c.Git.DryRun() {
		head, err := c.Git.Capture([]string{"-C", worktree, "rev-parse", branch})
		if err != nil {
			return false, err
		}
		c.Log.Info().Msgf("%s branch %s is at sha1 %s", relPath, branch, head)
		if head == pinned {
			checkout = []string{"checkout", branch}
		}
	}
	if err := c.Git.Run(append([]string{"-C", worktree}, checkout...)); err != nil {
		return false, err
	}

	// Neither the clone nor the checkout sets core.worktree on a
	// separate-git-dir clone, so set it here. Git always wants forward
	// slashes in it.
	// TODO: git itself records core.worktree as a relative path for normal
	// submodule checkouts; check whether the absolute form matters.
	if err := c.Git.Run([]string{"-C", worktree, "config", "core.worktree", filepath.ToSlash(worktree)}); err != nil {
		return false, err
	}
	return true, nil
}

// pinnedCommit reads the commit recorded for relPath in the superproject's
// HEAD tree. ls-tree prints "<mode> commit <sha>\t<path>" for a gitlink;
// anything that does not split into exactly four fields means the path is
// not a submodule there.
func (c *Cloner) pinnedCommit(relPath string) (string, error) {
	out, err := c.Git.Capture([]string{"-C", c.Workspace.WorktreeRoot, "ls-tree", "HEAD", relPath})
	if err != nil {
		return "", err
	}
	fields := strings.Fields(out)
	if len(fields) != 4 {
		return "", fmt.Errorf("git ls-tree produced unexpected output:\n%s", strings.Join(fields, " "))
	}
	return fields[2], nil
}
