package main

import (
	"encoding/json"

	"github.com/Reedbeta/git-partial-submodule/internal/gitmodules"
	"github.com/Reedbeta/git-partial-submodule/internal/submodule"
	"github.com/Reedbeta/git-partial-submodule/internal/ui"
	"github.com/Reedbeta/git-partial-submodule/internal/workspace"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the state of every submodule declared in .gitmodules",
		RunE:  runStatus,
	}
	cmd.Flags().Bool("json", false, "Output as JSON")
	return cmd
}

type entryStatus struct {
	Name           string   `json:"name"`
	Path           string   `json:"path,omitempty"`
	Branch         string   `json:"branch,omitempty"`
	SparsePatterns []string `json:"sparse_patterns,omitempty"`
	State          string   `json:"state"`
	Head           string   `json:"head,omitempty"`
}

func runStatus(cmd *cobra.Command, _ []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	e, err := setup(cmd)
	if err != nil {
		return err
	}
	man, err := loadManifest(e)
	if err != nil {
		return err
	}

	statuses := make([]entryStatus, 0, len(man.ByName))
	for _, name := range man.Names() {
		statuses = append(statuses, collectStatus(e, man.ByName[name]))
	}

	out := cmd.OutOrStdout()

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(statuses)
	}

	tbl := ui.NewTable(out, "NAME", "PATH", "BRANCH", "SPARSE", "STATE", "HEAD")
	for _, s := range statuses {
		tbl.Row(s.Name, s.Path, s.Branch, len(s.SparsePatterns), s.State, s.Head)
	}
	return tbl.Flush()
}

func collectStatus(e *env, entry *gitmodules.Entry) entryStatus {
	s := entryStatus{
		Name:           entry.Name,
		Path:           entry.Path,
		Branch:         entry.Branch,
		SparsePatterns: entry.SparsePatterns,
	}
	if entry.Path == "" {
		s.State = "no path"
		return s
	}

	state := submodule.Classify(e.ws, entry.Name, entry.Path)
	s.State = state.String()

	// Reading HEAD needs a checked-out worktree; a cloned repo whose
	// worktree was wiped has none.
	if state == submodule.StateCloned && workspace.DirNonEmpty(e.ws.SubWorktree(entry.Path)) {
		if head, err := e.git.Capture([]string{"-C", e.ws.SubWorktree(entry.Path), "rev-parse", "--short", "HEAD"}); err == nil {
			s.Head = head
		}
	}
	return s
}
