// Package workspace resolves the superproject the tool runs inside. It
// provides the Context type holding the worktree root, the repository
// metadata directory, and the origin remote, plus the path, URL, and
// branch resolution rules shared by every command.
package workspace
