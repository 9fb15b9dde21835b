package gitcmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Options are the run-wide flags shared by every command.
type Options struct {
	DryRun  bool
	Verbose bool
}

// Runner invokes git with a fixed exit-code policy. Commands that may
// mutate state go through Run; queries go through Capture.
type Runner struct {
	opts Options
	echo io.Writer
	log  zerolog.Logger
}

// New returns a Runner. Command echoes (verbose and dry-run) are written
// to echo; diagnostics go to log.
func New(opts Options, echo io.Writer, log zerolog.Logger) *Runner {
	return &Runner{opts: opts, echo: echo, log: log}
}

// DryRun reports whether the runner skips mutating commands.
func (r *Runner) DryRun() bool { return r.opts.DryRun }

// Run executes a mutating git command, inheriting stdout and stderr so
// progress output reaches the terminal. The command is echoed when verbose
// or dry-run is set, and skipped entirely under dry-run. Exit codes outside
// okCodes (default {0}) are a CommandError.
func (r *Runner) Run(args []string, okCodes ...int) error {
	if r.opts.Verbose || r.opts.DryRun {
		_, _ = fmt.Fprintf(r.echo, "git %s\n", strings.Join(args, " "))
	}
	if r.opts.DryRun {
		return nil
	}
	cmd := exec.Command("git", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return r.wait(cmd, args, okCodes)
}

// Capture executes a read-only git command and returns its trimmed stdout.
// It always executes, even under dry-run, since callers branch on the
// result. Stderr is inherited.
func (r *Runner) Capture(args []string, okCodes ...int) (string, error) {
	r.log.Info().Msgf("git %s", strings.Join(args, " "))
	cmd := exec.Command("git", args...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = os.Stderr
	if err := r.wait(cmd, args, okCodes); err != nil {
		return "", err
	}
	return strings.TrimSpace(stdout.String()), nil
}

func (r *Runner) wait(cmd *exec.Cmd, args []string, okCodes []int) error {
	err := cmd.Run()
	code := 0
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return fmt.Errorf("running git %s: %w", strings.Join(args, " "), err)
		}
		code = exitErr.ExitCode()
	}
	if len(okCodes) == 0 {
		okCodes = []int{0}
	}
	if !slices.Contains(okCodes, code) {
		return &CommandError{Args: args, Code: code}
	}
	return nil
}

// CommandError reports a git invocation that exited with a code outside
// the caller's allowance.
type CommandError struct {
	Args []string
	Code int
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("git command failed: git %s", strings.Join(e.Args, " "))
}

// Version is a git release triple.
type Version struct {
	Major, Minor, Patch int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Less reports whether v sorts before o.
func (v Version) Less(o Version) bool {
	if v.Major != o.Major {
		return v.Major < o.Major
	}
	if v.Minor != o.Minor {
		return v.Minor < o.Minor
	}
	return v.Patch < o.Patch
}

// VersionError reports an installed git older than the tool supports.
type VersionError struct {
	Need, Have Version
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("git version is too old: need at least %s, have %s", e.Need, e.Have)
}

var versionRE = regexp.MustCompile(`git version (\d+)\.(\d+)\.(\d+)`)

// CheckVersion fails with a VersionError when the installed git is older
// than min.
func (r *Runner) CheckVersion(min Version) error {
	out, err := r.Capture([]string{"--version"})
	if err != nil {
		return err
	}
	m := versionRE.FindStringSubmatch(out)
	if m == nil {
		return fmt.Errorf("unexpected git version output: %q", out)
	}
	have := Version{Major: atoi(m[1]), Minor: atoi(m[2]), Patch: atoi(m[3])}
	if have.Less(min) {
		return &VersionError{Need: min, Have: have}
	}
	return nil
}

// atoi is safe here: the inputs come from a \d+ capture group.
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
