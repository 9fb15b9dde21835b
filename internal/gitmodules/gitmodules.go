// Package gitmodules reads the .gitmodules manifest into lookup tables.
// Writes never happen here: the manifest is only ever edited by git itself
// (git config -f .gitmodules, git submodule add), which keeps the on-disk
// format exactly as git expects it.
package gitmodules

import (
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode"

	format "github.com/go-git/go-git/v5/plumbing/format/config"
)

// FileName is the manifest file at the root of the superproject worktree.
const FileName = ".gitmodules"

// Entry is one declared submodule binding.
type Entry struct {
	Name           string
	Path           string
	URL            string
	Branch         string
	SparsePatterns []string
}

// Manifest indexes the declared submodules by logical name and by worktree
// path. Both maps reference the same Entry values; entries without a path
// key appear only in ByName.
type Manifest struct {
	ByName map[string]*Entry
	ByPath map[string]*Entry

	// DuplicatePaths lists paths claimed by more than one entry. The entry
	// appearing last in the file wins the ByPath slot.
	DuplicatePaths []string
}

// ParseError reports an absent, unreadable, or undecodable manifest.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("couldn't parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Read loads the .gitmodules file at the root of the given worktree.
func Read(worktreeRoot string) (*Manifest, error) {
	path := filepath.Join(worktreeRoot, FileName)
	f, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{Path: FileName, Err: err}
	}
	defer f.Close()

	m, err := Parse(f)
	if err != nil {
		return nil, &ParseError{Path: FileName, Err: err}
	}
	return m, nil
}

// Parse decodes gitconfig-format manifest content. Sections other than
// submodule subsections are ignored.
func Parse(r io.Reader) (*Manifest, error) {
	cfg := format.New()
	if err := format.NewDecoder(r).Decode(cfg); err != nil {
		return nil, err
	}

	m := &Manifest{
		ByName: make(map[string]*Entry),
		ByPath: make(map[string]*Entry),
	}
	for _, sub := range cfg.Section("submodule").Subsections {
		e := &Entry{
			Name:           sub.Name,
			Path:           sub.Option("path"),
			URL:            sub.Option("url"),
			Branch:         sub.Option("branch"),
			SparsePatterns: SplitPatterns(sub.Option("sparse-checkout")),
		}
		m.ByName[e.Name] = e
		if e.Path != "" {
			if _, taken := m.ByPath[e.Path]; taken {
				m.DuplicatePaths = append(m.DuplicatePaths, e.Path)
			}
			m.ByPath[e.Path] = e
		}
	}
	return m, nil
}

// Paths returns every path-addressable entry's path. Sorted: manifest
// iteration order is unspecified, and sorting keeps runs deterministic.
func (m *Manifest) Paths() []string {
	return slices.Sorted(maps.Keys(m.ByPath))
}

// Names returns every entry name, sorted.
func (m *Manifest) Names() []string {
	return slices.Sorted(maps.Keys(m.ByName))
}

// SparseKey is the .gitmodules config key holding an entry's saved
// sparse-checkout patterns.
func SparseKey(name string) string {
	return fmt.Sprintf("submodule.%s.sparse-checkout", name)
}

// SplitPatterns tokenizes a stored sparse-checkout value on whitespace and
// commas. Empty input yields nil, meaning sparse checkout is disabled.
// Quoting is not interpreted; patterns with embedded spaces cannot be
// represented.
func SplitPatterns(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == ','
	})
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// JoinPatterns renders a pattern list back to its stored form. Values are
// space-joined: a comma-delimited hand edit round-trips to spaces.
func JoinPatterns(patterns []string) string {
	return strings.Join(patterns, " ")
}
