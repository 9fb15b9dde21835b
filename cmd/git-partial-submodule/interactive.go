package main

import (
	"fmt"
	"path"
	"strings"

	"github.com/Reedbeta/git-partial-submodule/internal/submodule"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Underline(true)
)

// --- inputModel: bubbletea model for text input with validation ---

type inputModel struct {
	textInput textinput.Model
	title     string
	validate  func(string) error
	errMsg    string
	done      bool
	aborted   bool
}

func (m inputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.aborted = true
			return m, tea.Quit
		case "enter":
			val := m.textInput.Value()
			if m.validate != nil {
				if err := m.validate(val); err != nil {
					m.errMsg = err.Error()
					return m, nil
				}
			}
			m.done = true
			return m, tea.Quit
		}
	}
	m.errMsg = ""
	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m inputModel) View() string {
	if m.done {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title) + "\n")
	b.WriteString(m.textInput.View() + "\n")
	if m.errMsg != "" {
		b.WriteString(errStyle.Render(m.errMsg) + "\n")
	}
	return b.String()
}

// --- confirmModel: bubbletea model for yes/no confirmation ---

type confirmModel struct {
	title   string
	value   bool
	done    bool
	aborted bool
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.aborted = true
			return m, tea.Quit
		case "enter":
			m.done = true
			return m, tea.Quit
		case "y", "Y":
			m.value = true
			m.done = true
			return m, tea.Quit
		case "n", "N":
			m.value = false
			m.done = true
			return m, tea.Quit
		case "left", "right", "tab", "h", "l":
			m.value = !m.value
		}
	}
	return m, nil
}

func (m confirmModel) View() string {
	if m.done {
		return ""
	}
	yes := " Yes "
	no := " No "
	if m.value {
		yes = selectedStyle.Render(" Yes ")
	} else {
		no = selectedStyle.Render(" No ")
	}
	return fmt.Sprintf("%s %s / %s\n", titleStyle.Render(m.title), yes, no)
}

// --- prompt helpers ---

func promptInput(title, placeholder string, validate func(string) error) (string, error) {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()

	m := inputModel{
		textInput: ti,
		title:     title,
		validate:  validate,
	}

	result, err := tea.NewProgram(m).Run()
	if err != nil {
		return "", err
	}
	rm := result.(inputModel)
	if rm.aborted {
		return "", fmt.Errorf("user aborted")
	}
	return rm.textInput.Value(), nil
}

func promptConfirm(title string) (bool, error) {
	m := confirmModel{
		title: title,
	}

	result, err := tea.NewProgram(m).Run()
	if err != nil {
		return false, err
	}
	rm := result.(confirmModel)
	if rm.aborted {
		return false, fmt.Errorf("user aborted")
	}
	return rm.value, nil
}

// repoNameFromURL extracts a repository name from a Git URL.
// Handles both SSH (git@host:org/repo.git) and HTTPS (https://host/org/repo.git).
func repoNameFromURL(url string) string {
	url = strings.TrimRight(url, "/")

	// SSH format: git@github.com:org/repo.git
	if idx := strings.LastIndex(url, ":"); idx != -1 && !strings.Contains(url, "://") {
		url = url[idx+1:]
	}

	// Take the last path component.
	name := path.Base(url)

	// Strip .git suffix.
	name = strings.TrimSuffix(name, ".git")

	return name
}

// promptAddOptions collects the add form field by field. Flag values act as
// defaults: a prompt left empty keeps them, and the sparse question is
// skipped entirely when --sparse was already given.
func promptAddOptions(opts *submodule.AddOptions) error {
	repo, err := promptInput(
		"Repository URL",
		"https://github.com/org/repo.git",
		func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("repository URL is required")
			}
			return nil
		},
	)
	if err != nil {
		return err
	}
	opts.Repository = strings.TrimSpace(repo)

	suggested := repoNameFromURL(opts.Repository)
	subPath, err := promptInput(
		"Submodule path",
		suggested,
		func(s string) error {
			if strings.TrimSpace(s) == "" && suggested == "" {
				return fmt.Errorf("submodule path is required")
			}
			return nil
		},
	)
	if err != nil {
		return err
	}
	opts.Path = strings.TrimSpace(subPath)
	if opts.Path == "" {
		opts.Path = suggested
	}

	branch, err := promptInput("Branch to check out (empty for the remote default, \".\" to follow the superproject)", opts.Branch, nil)
	if err != nil {
		return err
	}
	if branch = strings.TrimSpace(branch); branch != "" {
		opts.Branch = branch
	}

	name, err := promptInput("Submodule name (empty to name it after the path)", opts.Name, nil)
	if err != nil {
		return err
	}
	if name = strings.TrimSpace(name); name != "" {
		opts.Name = name
	}

	if !opts.Sparse {
		sparse, err := promptConfirm("Enable sparse checkout?")
		if err != nil {
			return err
		}
		opts.Sparse = sparse
	}

	fmt.Printf("  → adding %s at %s\n", opts.Repository, opts.Path)
	return nil
}
