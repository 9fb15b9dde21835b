// Package gitcmd runs the git binary on behalf of the tool. It owns the
// dry-run and verbose semantics: mutating commands are echoed and skipped
// under dry-run, while read-only captures always execute because later
// decisions depend on their output.
package gitcmd
