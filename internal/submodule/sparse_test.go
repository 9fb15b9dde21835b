package submodule

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Reedbeta/git-partial-submodule/internal/gitcmd"
	"github.com/Reedbeta/git-partial-submodule/internal/gitmodules"
	"github.com/Reedbeta/git-partial-submodule/internal/testutil"
	"github.com/Reedbeta/git-partial-submodule/internal/workspace"
	"github.com/rs/zerolog"
)

func newSyncer(git *gitcmd.Runner, ws *workspace.Context, man *gitmodules.Manifest) (*Syncer, *bytes.Buffer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	s := &Syncer{Git: git, Workspace: ws, Manifest: man, Out: out, ErrOut: errOut}
	return s, out, errOut
}

// cloneFixture builds a superproject with one cloned submodule and returns
// the loaded environment. sparse is the committed sparse-checkout value.
func cloneFixture(t *testing.T, sparse string) (*gitcmd.Runner, *workspace.Context, *gitmodules.Manifest) {
	t.Helper()
	bare := testutil.CreateBareRepo(t)
	super := testutil.CreateSuperproject(t, testutil.Submodule{
		Name:   "lib",
		Path:   "vendor/lib",
		URL:    bare,
		Branch: "main",
		Sparse: sparse,
	})
	git := testGit(gitcmd.Options{})
	ws, man := loadEnv(t, git, super)
	c, _, errOut := newCloner(git, ws, man)
	if err := c.CloneAll(nil, man.Paths()); err != nil {
		t.Fatalf("CloneAll: %v", err)
	}
	if errOut.Len() != 0 {
		t.Fatalf("clone warnings: %q", errOut.String())
	}
	return git, ws, man
}

func TestSaveAll_savesLivePatterns(t *testing.T) {
	git, ws, man := cloneFixture(t, "src")
	wt := ws.SubWorktree("vendor/lib")

	// Narrow the live patterns, then save them back to the manifest.
	testutil.Git(t, wt, "sparse-checkout", "set", "docs")

	s, out, errOut := newSyncer(git, ws, man)
	if err := s.SaveAll(man.Paths()); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}
	if errOut.Len() != 0 {
		t.Errorf("unexpected warnings: %q", errOut.String())
	}
	if out.String() != "Saved sparse-checkout patterns for lib.\n" {
		t.Errorf("output = %q", out.String())
	}
	got := testutil.Git(t, ws.WorktreeRoot, "config", "-f", ".gitmodules", "submodule.lib.sparse-checkout")
	if got != "docs" {
		t.Errorf("stored patterns = %q, want %q", got, "docs")
	}
}

func TestSaveAll_disabledUnsetsAndRepeats(t *testing.T) {
	git, ws, man := cloneFixture(t, "")

	// Leave a stale pattern in the manifest; save must remove it since the
	// submodule has sparse checkout disabled.
	testutil.Git(t, ws.WorktreeRoot, "config", "-f", ".gitmodules", "submodule.lib.sparse-checkout", "stale")

	s, out, _ := newSyncer(git, ws, man)
	if err := s.SaveAll(man.Paths()); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}
	if out.String() != "Sparse checkout not enabled for lib.\n" {
		t.Errorf("output = %q", out.String())
	}
	raw, err := os.ReadFile(filepath.Join(ws.WorktreeRoot, ".gitmodules"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "sparse-checkout") {
		t.Errorf("stale pattern not removed:\n%s", raw)
	}

	// Saving again unsets a key that no longer exists; that is a no-op
	// with the same message, not an error.
	s2, out2, _ := newSyncer(git, ws, man)
	if err := s2.SaveAll(man.Paths()); err != nil {
		t.Fatalf("second SaveAll: %v", err)
	}
	if out2.String() != "Sparse checkout not enabled for lib.\n" {
		t.Errorf("second output = %q", out2.String())
	}
}

func TestSaveAll_dryRunLeavesManifest(t *testing.T) {
	_, ws, man := cloneFixture(t, "src")
	wt := ws.SubWorktree("vendor/lib")
	testutil.Git(t, wt, "sparse-checkout", "set", "docs")

	dry := testGit(gitcmd.Options{DryRun: true})
	s, out, _ := newSyncer(dry, ws, man)
	if err := s.SaveAll(man.Paths()); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}
	if out.String() != "Saved sparse-checkout patterns for lib.\n" {
		t.Errorf("output = %q", out.String())
	}
	got := testutil.Git(t, ws.WorktreeRoot, "config", "-f", ".gitmodules", "submodule.lib.sparse-checkout")
	if got != "src" {
		t.Errorf("dry run changed stored patterns to %q", got)
	}
}

func TestRestoreAll_appliesStoredPatterns(t *testing.T) {
	git, ws, man := cloneFixture(t, "src")
	wt := ws.SubWorktree("vendor/lib")

	// Widen the checkout by hand; restore should narrow it back.
	testutil.Git(t, wt, "sparse-checkout", "disable")
	if _, err := os.Stat(filepath.Join(wt, "docs", "index.md")); err != nil {
		t.Fatalf("disable should materialize docs/: %v", err)
	}

	s, out, _ := newSyncer(git, ws, man)
	if err := s.RestoreAll(man.Paths()); err != nil {
		t.Fatalf("RestoreAll: %v", err)
	}
	if out.String() != "Applied sparse-checkout patterns for lib.\n" {
		t.Errorf("output = %q", out.String())
	}
	if _, err := os.Stat(filepath.Join(wt, "docs")); !os.IsNotExist(err) {
		t.Error("restore should hide docs/ again")
	}
	if _, err := os.Stat(filepath.Join(wt, "src", "lib.c")); err != nil {
		t.Errorf("restore should keep src/lib.c: %v", err)
	}
}

func TestRestoreAll_disablesWithoutPatterns(t *testing.T) {
	git, ws, man := cloneFixture(t, "")
	wt := ws.SubWorktree("vendor/lib")

	// Enable sparse checkout by hand; the manifest has no patterns, so
	// restore should turn it off.
	testutil.Git(t, wt, "sparse-checkout", "set", "src")
	if _, err := os.Stat(filepath.Join(wt, "docs")); !os.IsNotExist(err) {
		t.Fatal("manual sparse set should hide docs/")
	}

	s, out, _ := newSyncer(git, ws, man)
	if err := s.RestoreAll(man.Paths()); err != nil {
		t.Fatalf("RestoreAll: %v", err)
	}
	if out.String() != "Sparse checkout disabled for lib.\n" {
		t.Errorf("output = %q", out.String())
	}
	if _, err := os.Stat(filepath.Join(wt, "docs", "index.md")); err != nil {
		t.Errorf("disable should materialize docs/: %v", err)
	}
}

func TestRestoreAll_dryRunLeavesWorktree(t *testing.T) {
	_, ws, man := cloneFixture(t, "src")
	wt := ws.SubWorktree("vendor/lib")

	// Widen the checkout by hand; a dry-run restore must echo the commands
	// that would narrow it back, without touching the worktree.
	testutil.Git(t, wt, "sparse-checkout", "disable")

	echo := &bytes.Buffer{}
	dry := gitcmd.New(gitcmd.Options{DryRun: true}, echo, zerolog.Nop())
	s, out, _ := newSyncer(dry, ws, man)
	if err := s.RestoreAll(man.Paths()); err != nil {
		t.Fatalf("RestoreAll: %v", err)
	}
	if out.String() != "Applied sparse-checkout patterns for lib.\n" {
		t.Errorf("output = %q", out.String())
	}
	for _, wantLine := range []string{"sparse-checkout init", "sparse-checkout set src"} {
		if !strings.Contains(echo.String(), wantLine) {
			t.Errorf("echo missing %q in:\n%s", wantLine, echo.String())
		}
	}
	if _, err := os.Stat(filepath.Join(wt, "docs", "index.md")); err != nil {
		t.Errorf("dry run should leave docs/ materialized: %v", err)
	}
}

func TestSyncer_skipsMissingAndUncloned(t *testing.T) {
	bare := testutil.CreateBareRepo(t)
	super := testutil.CreateSuperproject(t, testutil.Submodule{
		Name: "lib",
		Path: "vendor/lib",
		URL:  bare,
	})
	git := testGit(gitcmd.Options{})
	ws, man := loadEnv(t, git, super)

	s, out, errOut := newSyncer(git, ws, man)
	if err := s.SaveAll([]string{"nosuch", "vendor/lib"}); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}
	want := "Couldn't find nosuch in .gitmodules! Skipping.\n" +
		"vendor/lib submodule worktree is empty! Skipping.\n"
	if errOut.String() != want {
		t.Errorf("warnings = %q, want %q", errOut.String(), want)
	}
	if out.Len() != 0 {
		t.Errorf("unexpected output: %q", out.String())
	}

	s2, _, errOut2 := newSyncer(git, ws, man)
	if err := s2.RestoreAll([]string{"vendor/lib"}); err != nil {
		t.Fatalf("RestoreAll: %v", err)
	}
	if errOut2.String() != "vendor/lib submodule worktree is empty! Skipping.\n" {
		t.Errorf("warnings = %q", errOut2.String())
	}
}
