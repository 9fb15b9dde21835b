package submodule

import (
	"github.com/Reedbeta/git-partial-submodule/internal/gitcmd"
	"github.com/Reedbeta/git-partial-submodule/internal/workspace"
)

// State classifies what already exists on disk for one submodule entry.
type State int

const (
	// StateAbsent means neither the metadata directory nor the worktree
	// holds anything; the entry is ready to clone.
	StateAbsent State = iota
	// StateCloned means the metadata directory under .git/modules is
	// non-empty; a repository for this entry already exists.
	StateCloned
	// StateWorktreeOnly means the worktree directory has content but no
	// metadata directory does; cloning would clobber unmanaged files.
	StateWorktreeOnly
)

func (s State) String() string {
	switch s {
	case StateCloned:
		return "cloned"
	case StateWorktreeOnly:
		return "worktree only"
	default:
		return "missing"
	}
}

// Classify inspects the filesystem for the given entry. It only reads, so
// it is safe to call repeatedly and under dry-run. Empty directories count
// as absent; git submodule init may have created them already.
func Classify(ws *workspace.Context, name, relPath string) State {
	if workspace.DirNonEmpty(ws.ModulesDir(name)) {
		return StateCloned
	}
	if workspace.DirNonEmpty(ws.SubWorktree(relPath)) {
		return StateWorktreeOnly
	}
	return StateAbsent
}

// IndexTracked reports whether anything under relPath is tracked in the
// superproject's index. git submodule add refuses such paths, so add has
// to catch them up front.
func IndexTracked(git *gitcmd.Runner, ws *workspace.Context, relPath string) (bool, error) {
	out, err := git.Capture([]string{"-C", ws.WorktreeRoot, "ls-files", "--cached", relPath})
	if err != nil {
		return false, err
	}
	return out != "", nil
}
