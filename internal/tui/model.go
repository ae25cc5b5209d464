// Package tui is the terminal popup for managing shortcuts.
package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/undeadops/goshort/internal/manager"
)

const (
	fieldKeyword = iota
	fieldURL
)

// Model implements tea.Model on top of a manager session.
type Model struct {
	ctx       context.Context
	session   *manager.Session
	theme     *Theme
	exportDir string

	inputs   []textinput.Model
	focus    int
	selected int

	// importing is set while the import path prompt is open.
	importing   bool
	importInput textinput.Model

	state  manager.State
	status string
	err    error
}

// loadedMsg carries the state read when the popup opens.
type loadedMsg struct {
	state manager.State
}

// dispatchedMsg is sent when a manager event has been applied.
type dispatchedMsg struct {
	event    manager.Event
	state    manager.State
	download *manager.Download
	err      error
}

// New returns a popup bound to session. Exports are written to exportDir.
func New(ctx context.Context, session *manager.Session, exportDir string) Model {
	keyword := textinput.New()
	keyword.Placeholder = "Enter keyword"
	keyword.Prompt = ""
	keyword.Focus()

	target := textinput.New()
	target.Placeholder = "https://example.com"
	target.Prompt = ""

	importPath := textinput.New()
	importPath.Placeholder = "go-shortcut-export-2006-01-02.json"
	importPath.Prompt = ""

	return Model{
		ctx:         ctx,
		session:     session,
		theme:       DefaultTheme(),
		exportDir:   exportDir,
		inputs:      []textinput.Model{keyword, target},
		importInput: importPath,
		state:       session.State(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.load(), textinput.Blink)
}

func (m Model) load() tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{state: m.session.Load(m.ctx)}
	}
}

func (m Model) dispatch(ev manager.Event) tea.Cmd {
	return func() tea.Msg {
		state, download, err := m.session.Dispatch(m.ctx, ev)
		return dispatchedMsg{event: ev, state: state, download: download, err: err}
	}
}

// importFile reads path, relative to the export directory, and merges it.
func (m Model) importFile(path string) tea.Cmd {
	if !filepath.IsAbs(path) {
		path = filepath.Join(m.exportDir, path)
	}
	return func() tea.Msg {
		contents, err := os.ReadFile(path)
		if err != nil {
			return dispatchedMsg{
				event: manager.Import{},
				state: m.session.State(),
				err:   fmt.Errorf("failed to read %s: %w", path, err),
			}
		}
		return m.dispatch(manager.Import{Contents: contents})()
	}
}

func (m Model) updateImport(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		return m.closeImport(), nil
	case "enter":
		path := strings.TrimSpace(m.importInput.Value())
		m = m.closeImport()
		if path == "" {
			return m, nil
		}
		return m, m.importFile(path)
	}

	var cmd tea.Cmd
	m.importInput, cmd = m.importInput.Update(msg)
	return m, cmd
}

func (m Model) openImport() Model {
	m.importing = true
	m.inputs[m.focus].Blur()
	m.importInput.SetValue("")
	m.importInput.Focus()
	return m
}

func (m Model) closeImport() Model {
	m.importing = false
	m.importInput.Blur()
	m.inputs[m.focus].Focus()
	return m
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && m.importing {
		return m.updateImport(key)
	}

	switch msg := msg.(type) {
	case loadedMsg:
		m.state = msg.state
		m.clampSelection()
		return m, nil

	case dispatchedMsg:
		return m.applyDispatch(msg), nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "tab", "shift+tab":
			return m.toggleFocus(), nil
		case "up":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case "down":
			if m.selected < m.state.Entries.Len()-1 {
				m.selected++
			}
			return m, nil
		case "enter":
			return m, m.dispatch(manager.Submit{
				Keyword: m.inputs[fieldKeyword].Value(),
				URL:     m.inputs[fieldURL].Value(),
			})
		case "ctrl+e":
			if kw, ok := m.selectedKeyword(); ok {
				return m, m.dispatch(manager.Edit{Keyword: kw})
			}
			return m, nil
		case "ctrl+d":
			if kw, ok := m.selectedKeyword(); ok {
				return m, m.dispatch(manager.Delete{Keyword: kw})
			}
			return m, nil
		case "esc":
			return m, m.dispatch(manager.Cancel{})
		case "ctrl+s":
			return m, m.dispatch(manager.Export{At: timeNow()})
		case "ctrl+o":
			return m.openImport(), nil
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m Model) applyDispatch(msg dispatchedMsg) Model {
	wasEditing := m.state.EditMode
	m.state = msg.state
	m.clampSelection()
	if msg.err != nil {
		m.err = msg.err
		m.status = ""
		return m
	}
	m.err = nil

	syncInputs := false
	switch ev := msg.event.(type) {
	case manager.Submit:
		m.status = fmt.Sprintf("Saved %q", ev.Keyword)
		syncInputs = true
	case manager.Edit:
		m.status = fmt.Sprintf("Editing %q", ev.Keyword)
		syncInputs = true
	case manager.Delete:
		m.status = fmt.Sprintf("Deleted %q", ev.Keyword)
		syncInputs = wasEditing && !m.state.EditMode
	case manager.Cancel:
		m.status = ""
		syncInputs = true
	case manager.Export:
		path, err := m.writeExport(msg.download)
		if err != nil {
			m.err = err
			return m
		}
		m.status = "Exported to " + path
	case manager.Import:
		m.status = fmt.Sprintf("Imported shortcuts, %d saved", m.state.Entries.Len())
	}

	if syncInputs {
		m.inputs[fieldKeyword].SetValue(m.state.Keyword)
		m.inputs[fieldURL].SetValue(m.state.URL)
	}
	return m
}

func (m Model) writeExport(d *manager.Download) (string, error) {
	if d == nil {
		return "", fmt.Errorf("export produced no file")
	}
	path := filepath.Join(m.exportDir, d.Filename)
	if err := os.WriteFile(path, d.Data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	return path, nil
}

func (m Model) toggleFocus() Model {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + 1) % len(m.inputs)
	m.inputs[m.focus].Focus()
	return m
}

func (m *Model) clampSelection() {
	n := m.state.Entries.Len()
	if m.selected >= n {
		m.selected = n - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m Model) selectedKeyword() (string, bool) {
	all := m.state.Entries.All()
	if m.selected < 0 || m.selected >= len(all) {
		return "", false
	}
	return all[m.selected].Keyword, true
}

// View implements tea.Model.
func (m Model) View() string {
	t := m.theme
	var b strings.Builder

	b.WriteString(t.Heading.Render("Go Shortcut Configuration"))
	b.WriteString("\n\n")
	b.WriteString(t.Label.Render("Keyword") + "\n" + m.inputs[fieldKeyword].View() + "\n\n")
	b.WriteString(t.Label.Render("URL") + "\n" + m.inputs[fieldURL].View() + "\n\n")

	if m.state.EditMode {
		b.WriteString(t.Button.Render("Update Shortcut") + "  " + t.Subtle.Render("esc cancel"))
	} else {
		b.WriteString(t.Button.Render("Save Shortcut"))
	}
	b.WriteString("\n\n")

	b.WriteString(t.Heading.Render("Saved Shortcuts"))
	b.WriteString("\n")
	entries := m.state.Entries.All()
	if len(entries) == 0 {
		b.WriteString(t.Subtle.Render("No shortcuts saved yet."))
		b.WriteString("\n")
	}
	for i, e := range entries {
		line := lipgloss.JoinHorizontal(lipgloss.Top, t.Keyword.Render(e.Keyword), "  ", t.URL.Render(e.URL))
		if i == m.selected {
			b.WriteString(t.Selected.Render("> ") + line + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}

	b.WriteString("\n")
	if m.importing {
		b.WriteString(t.Label.Render("Import file") + "\n" + m.importInput.View() + "\n")
		b.WriteString(t.Subtle.Render("enter import • esc cancel") + "\n\n")
	}
	if m.err != nil {
		b.WriteString(t.Error.Render("Error: "+m.err.Error()) + "\n")
	} else if m.status != "" {
		b.WriteString(t.Success.Render(m.status) + "\n")
	}
	b.WriteString(t.Subtle.Render("enter save • tab switch • ↑/↓ select • ctrl+e edit • ctrl+d delete • ctrl+s export • ctrl+o import • ctrl+c quit"))

	return t.Box.Render(b.String())
}

// Run opens the popup and blocks until the user quits.
func Run(ctx context.Context, session *manager.Session, exportDir string) error {
	_, err := tea.NewProgram(New(ctx, session, exportDir), tea.WithContext(ctx)).Run()
	return err
}
