package submodule

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Reedbeta/git-partial-submodule/internal/gitcmd"
	"github.com/Reedbeta/git-partial-submodule/internal/workspace"
)

// AddOptions collects the arguments for adding one new submodule.
type AddOptions struct {
	Repository string // URL of the repository to add
	Path       string // directory to check the submodule out in, as given by the user
	Branch     string // branch to track; empty for the remote default
	Name       string // logical name; defaults to the path relative to the worktree root
	Sparse     bool   // start the submodule in sparse-checkout mode
}

// Add partial-clones a new submodule and registers it through git
// submodule add, which records the .gitmodules entry and the gitlink.
// Unlike bulk cloning, conflicts abort instead of skipping: the caller
// asked for this one path specifically.
func Add(git *gitcmd.Runner, ws *workspace.Context, opts AddOptions) error {
	relPath, err := ws.RelPath(opts.Path)
	if err != nil {
		return err
	}
	name := opts.Name
	if name == "" {
		name = relPath
	}

	gitDir := ws.ModulesDir(name)
	// A merely existing metadata directory is fatal here, where bulk clone
	// tolerates an empty one: add must start from a clean slate.
	if workspace.DirExists(gitDir) {
		return fmt.Errorf("submodule %s repo already exists", name)
	}
	worktree := ws.SubWorktree(relPath)
	if workspace.DirNonEmpty(worktree) {
		return fmt.Errorf("%s submodule worktree is nonempty", opts.Path)
	}
	// The final git submodule add fails on index-tracked paths; catch that
	// up front before any cloning happens.
	tracked, err := IndexTracked(git, ws, relPath)
	if err != nil {
		return err
	}
	if tracked {
		return fmt.Errorf("%s submodule worktree is nonempty in the index; you might need to `git rm` that directory first", opts.Path)
	}

	if !git.DryRun() {
		if err := os.MkdirAll(filepath.Dir(gitDir), 0o755); err != nil {
			return err
		}
		if err := os.MkdirAll(worktree, 0o755); err != nil {
			return err
		}
	}

	args := []string{
		"clone",
		"--filter=blob:none",
		"--no-checkout",
		"--separate-git-dir", gitDir,
	}
	if opts.Branch != "" {
		args = append(args, "--branch", opts.Branch)
	}
	if opts.Sparse {
		args = append(args, "--sparse")
	}
	args = append(args, opts.Repository, worktree)
	if err := git.Run(args); err != nil {
		return err
	}

	checkout := []string{"-C", worktree, "checkout"}
	if opts.Branch != "" {
		checkout = append(checkout, opts.Branch)
	}
	if err := git.Run(checkout); err != nil {
		return err
	}

	// See the matching step in cloneOne.
	if err := git.Run([]string{"-C", worktree, "config", "core.worktree", filepath.ToSlash(worktree)}); err != nil {
		return err
	}

	// git submodule add picks up the now-existing repository instead of
	// cloning again, and writes the .gitmodules entry.
	subArgs := []string{"-C", ws.WorktreeRoot, "submodule", "add"}
	if opts.Branch != "" {
		subArgs = append(subArgs, "-b", opts.Branch)
	}
	if opts.Name != "" {
		subArgs = append(subArgs, "--name", opts.Name)
	}
	subArgs = append(subArgs, opts.Repository, relPath)
	if err := git.Run(subArgs); err != nil {
		return err
	}

	// TODO: when Sparse is set, save the initial pattern set to .gitmodules
	// so a later clone reproduces it; until then save-sparse covers it.
	return nil
}
