package testutil

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// CreateBareRepo creates a bare git repository with two commits on main in
// a temp directory. The tip carries README.md plus src/ and docs/ trees so
// sparse-checkout patterns have something to select; the root commit holds
// only README.md so tests can pin a commit behind the branch head. Returns
// the path to the bare repo.
func CreateBareRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	bare := filepath.Join(dir, "repo.git")

	// Create a working repo first, then clone it bare.
	work := filepath.Join(dir, "work")
	run(t, dir, "git", "init", "-b", "main", work)
	configureUser(t, work)

	writeFile(t, filepath.Join(work, "README.md"), "# test\n")
	run(t, work, "git", "add", ".")
	run(t, work, "git", "commit", "-m", "initial commit")

	writeFile(t, filepath.Join(work, "src", "lib.c"), "int lib;\n")
	writeFile(t, filepath.Join(work, "docs", "index.md"), "docs\n")
	run(t, work, "git", "add", ".")
	run(t, work, "git", "commit", "-m", "add src and docs")

	run(t, dir, "git", "clone", "--bare", work, bare)
	return bare
}

// CreateBareRepoWithBranch creates a bare repo that also carries the given
// branch, one commit ahead of main. HEAD stays on main.
func CreateBareRepoWithBranch(t *testing.T, branch string) string {
	t.Helper()
	dir := t.TempDir()
	bare := filepath.Join(dir, "repo.git")

	work := filepath.Join(dir, "work")
	run(t, dir, "git", "init", "-b", "main", work)
	configureUser(t, work)

	writeFile(t, filepath.Join(work, "README.md"), "# test\n")
	run(t, work, "git", "add", ".")
	run(t, work, "git", "commit", "-m", "initial commit")
	run(t, work, "git", "checkout", "-b", branch)

	writeFile(t, filepath.Join(work, "feature.txt"), "feature\n")
	run(t, work, "git", "add", ".")
	run(t, work, "git", "commit", "-m", "feature commit")

	// Switch back to main so the bare repo's HEAD points to main.
	run(t, work, "git", "checkout", "main")

	run(t, dir, "git", "clone", "--bare", work, bare)
	return bare
}

// Submodule declares one .gitmodules entry for CreateSuperproject.
type Submodule struct {
	Name   string
	Path   string
	URL    string
	Branch string
	Sparse string // raw sparse-checkout value; empty omits the key
	Commit string // pinned gitlink commit; empty pins the source repo's HEAD
}

// CreateSuperproject builds a repository whose committed .gitmodules
// declares the given submodules and whose tree pins each path as a gitlink,
// without materializing any of them. This is the state a fresh clone of a
// superproject is in.
func CreateSuperproject(t *testing.T, subs ...Submodule) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "super")
	run(t, filepath.Dir(dir), "git", "init", "-b", "main", dir)
	configureUser(t, dir)
	// Recent git refuses file-protocol submodule transports by default.
	run(t, dir, "git", "config", "protocol.file.allow", "always")

	writeFile(t, filepath.Join(dir, "README.md"), "# super\n")
	run(t, dir, "git", "add", "README.md")

	for _, s := range subs {
		key := "submodule." + s.Name + "."
		run(t, dir, "git", "config", "-f", ".gitmodules", key+"path", s.Path)
		run(t, dir, "git", "config", "-f", ".gitmodules", key+"url", s.URL)
		if s.Branch != "" {
			run(t, dir, "git", "config", "-f", ".gitmodules", key+"branch", s.Branch)
		}
		if s.Sparse != "" {
			run(t, dir, "git", "config", "-f", ".gitmodules", key+"sparse-checkout", s.Sparse)
		}
		commit := s.Commit
		if commit == "" {
			commit = RevParse(t, s.URL, "HEAD")
		}
		run(t, dir, "git", "update-index", "--add", "--cacheinfo", "160000,"+commit+","+s.Path)
	}
	if len(subs) > 0 {
		run(t, dir, "git", "add", ".gitmodules")
	}
	run(t, dir, "git", "commit", "-m", "initial commit")
	return dir
}

// Git runs a git command in dir, failing the test on error, and returns
// its trimmed stdout.
func Git(t *testing.T, dir string, args ...string) string {
	t.Helper()
	return output(t, dir, "git", args...)
}

// RevParse returns the commit a revision resolves to in the given repo.
func RevParse(t *testing.T, repoDir, rev string) string {
	t.Helper()
	return output(t, repoDir, "git", "rev-parse", rev)
}

// FirstCommit returns the root commit of the given branch.
func FirstCommit(t *testing.T, repoDir, branch string) string {
	t.Helper()
	return output(t, repoDir, "git", "rev-list", "--max-parents=0", branch)
}

func configureUser(t *testing.T, dir string) {
	t.Helper()
	run(t, dir, "git", "config", "user.email", "test@example.com")
	run(t, dir, "git", "config", "user.name", "Test")
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil { //nolint:gosec // test file
		t.Fatal(err)
	}
}

func run(t *testing.T, dir string, name string, args ...string) {
	t.Helper()
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("command %s %v failed: %v", name, args, err)
	}
}

func output(t *testing.T, dir string, name string, args ...string) string {
	t.Helper()
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("command %s %v failed: %v", name, args, err)
	}
	return strings.TrimSpace(stdout.String())
}
