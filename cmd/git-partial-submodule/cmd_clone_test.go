package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Reedbeta/git-partial-submodule/internal/testutil"
)

// execRoot runs the CLI from dir with the given arguments, capturing stdout
// and stderr. Logger diagnostics go to the real stderr and are not captured.
func execRoot(t *testing.T, dir string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	t.Chdir(dir)
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err = root.Execute()
	return out.String(), errOut.String(), err
}

func TestRunClone_clonesAll(t *testing.T) {
	bare := testutil.CreateBareRepo(t)
	super := testutil.CreateSuperproject(t, testutil.Submodule{
		Name: "vendor/lib", Path: "vendor/lib", URL: bare, Branch: "main", Sparse: "src",
	})

	out, _, err := execRoot(t, super, "clone")
	if err != nil {
		t.Fatalf("clone failed: %v", err)
	}
	want := "Applied sparse-checkout patterns: src\nCloned 1 submodules and skipped 0.\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}

	wt := filepath.Join(super, "vendor", "lib")
	if got := testutil.Git(t, wt, "rev-parse", "--abbrev-ref", "HEAD"); got != "main" {
		t.Errorf("submodule on %q, want main", got)
	}
	if _, err := os.Stat(filepath.Join(wt, "src", "lib.c")); err != nil {
		t.Errorf("sparse checkout should include src: %v", err)
	}
}

func TestRunClone_selectsByPath(t *testing.T) {
	bare := testutil.CreateBareRepo(t)
	super := testutil.CreateSuperproject(t,
		testutil.Submodule{Name: "vendor/lib", Path: "vendor/lib", URL: bare},
		testutil.Submodule{Name: "tools", Path: "tools", URL: bare},
	)

	out, _, err := execRoot(t, super, "clone", "vendor/lib")
	if err != nil {
		t.Fatalf("clone failed: %v", err)
	}
	if !strings.HasSuffix(out, "Cloned 1 submodules and skipped 0.\n") {
		t.Errorf("unexpected summary:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(super, ".git", "modules", "tools")); !os.IsNotExist(err) {
		t.Error("tools should not have been cloned")
	}
}

func TestRunClone_dryRunPlansOnly(t *testing.T) {
	bare := testutil.CreateBareRepo(t)
	super := testutil.CreateSuperproject(t, testutil.Submodule{
		Name: "vendor/lib", Path: "vendor/lib", URL: bare, Sparse: "src",
	})
	pinned := testutil.RevParse(t, bare, "HEAD")

	out, _, err := execRoot(t, super, "-n", "clone")
	if err != nil {
		t.Fatalf("dry-run clone failed: %v", err)
	}
	for _, want := range []string{
		"DRY RUN:\n",
		"git submodule init\n",
		"git clone --filter=blob:none --no-checkout --separate-git-dir",
		"sparse-checkout set src\n",
		"checkout --detach " + pinned + "\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dry-run output missing %q:\n%s", want, out)
		}
	}
	if !strings.HasSuffix(out, "Cloned 1 submodules and skipped 0.\n") {
		t.Errorf("summary missing:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(super, "vendor")); !os.IsNotExist(err) {
		t.Error("dry run should not create the worktree")
	}
}

func TestRunClone_verboseEchoesCommands(t *testing.T) {
	bare := testutil.CreateBareRepo(t)
	super := testutil.CreateSuperproject(t, testutil.Submodule{Name: "lib", Path: "lib", URL: bare})

	out, _, err := execRoot(t, super, "--verbose", "clone")
	if err != nil {
		t.Fatalf("clone failed: %v", err)
	}
	if !strings.Contains(out, "git submodule init\n") {
		t.Errorf("verbose run should echo commands:\n%s", out)
	}
	if got := testutil.Git(t, filepath.Join(super, "lib"), "rev-parse", "HEAD"); got != testutil.RevParse(t, bare, "HEAD") {
		t.Errorf("submodule HEAD = %s, want the bare repo HEAD", got)
	}
}

func TestRunClone_missingManifest(t *testing.T) {
	super := testutil.CreateSuperproject(t)

	_, _, err := execRoot(t, super, "clone")
	if err == nil {
		t.Fatal("expected an error without .gitmodules")
	}
	if !strings.Contains(err.Error(), ".gitmodules") {
		t.Errorf("error should mention .gitmodules: %v", err)
	}
}
