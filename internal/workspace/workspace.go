package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Reedbeta/git-partial-submodule/internal/gitcmd"
)

// Context holds the resolved roots for one invocation. It is discovered
// once and treated as read-only afterwards.
type Context struct {
	// WorktreeRoot is the top of the superproject's checked-out tree.
	WorktreeRoot string
	// GitDir is the absolute repository metadata directory. Submodule
	// metadata lives under GitDir/modules/<name>.
	GitDir string
	// RemoteURL is remote.origin.url, or empty when no origin is set.
	RemoteURL string
	// Branch is the currently checked-out branch of the superproject.
	Branch string
}

// Load discovers the enclosing superproject via git queries. It fails when
// the working directory is not inside a git worktree.
func Load(r *gitcmd.Runner) (*Context, error) {
	worktree, err := r.Capture([]string{"rev-parse", "--show-toplevel"})
	if err != nil {
		return nil, fmt.Errorf("locating worktree root: %w", err)
	}
	gitDir, err := r.Capture([]string{"rev-parse", "--git-dir"})
	if err != nil {
		return nil, fmt.Errorf("locating repository: %w", err)
	}
	gitDir, err = filepath.Abs(gitDir)
	if err != nil {
		return nil, err
	}
	// Exit code 1 means the key is unset; a superproject without an origin
	// remote just cannot resolve relative submodule URLs.
	url, err := r.Capture([]string{"config", "--get", "remote.origin.url"}, 0, 1)
	if err != nil {
		return nil, err
	}
	branch, err := r.Capture([]string{"rev-parse", "--abbrev-ref", "HEAD"})
	if err != nil {
		return nil, err
	}
	return &Context{
		WorktreeRoot: worktree,
		GitDir:       gitDir,
		RemoteURL:    url,
		Branch:       branch,
	}, nil
}

// RelPath normalizes p to the worktree-relative, forward-slash form used
// by .gitmodules. Relative inputs resolve against the process working
// directory. The result is idempotent under repeated application when the
// working directory is the worktree root.
func (c *Context) RelPath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(c.WorktreeRoot, abs)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// ModulesDir returns the metadata directory for a submodule name, nested
// under the superproject's git dir.
func (c *Context) ModulesDir(name string) string {
	return filepath.Join(c.GitDir, "modules", filepath.FromSlash(name))
}

// SubWorktree returns the absolute worktree directory for a submodule path.
func (c *Context) SubWorktree(relPath string) string {
	return filepath.Join(c.WorktreeRoot, filepath.FromSlash(relPath))
}

// ResolveBranch maps the special branch value "." to the superproject's
// current branch, the way git submodule does.
func (c *Context) ResolveBranch(branch string) string {
	if branch == "." {
		return c.Branch
	}
	return branch
}

// ResolveURL resolves ./ and ../ prefixed submodule URLs against the
// origin URL: each ../ strips one path component off the base. URLs with
// no such prefix pass through untouched.
func (c *Context) ResolveURL(url string) string {
	base := c.RemoteURL
	join := false
	for {
		if rest, ok := strings.CutPrefix(url, "./"); ok {
			url = rest
			join = true
		} else if rest, ok := strings.CutPrefix(url, "../"); ok {
			url = rest
			join = true
			if i := strings.LastIndex(base, "/"); i >= 0 {
				base = base[:i]
			} else {
				base = ""
			}
		} else {
			break
		}
	}
	if join {
		return base + "/" + url
	}
	return url
}

// DirExists reports whether p exists and is a directory.
func DirExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

// DirNonEmpty reports whether p is a directory containing at least one
// entry.
func DirNonEmpty(p string) bool {
	entries, err := os.ReadDir(p)
	return err == nil && len(entries) > 0
}
