package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wippyai/wasm-inspect/errors"
	"github.com/wippyai/wasm-inspect/wasm"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444"))
)

const listWidth = 28

func newBrowseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "browse FILE",
		Short: "Browse sections interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return errors.InvalidInput(errors.PhaseLoad, "browse needs a terminal, use dump instead")
			}
			p := tea.NewProgram(newBrowseModel(args[0], a.openModule), tea.WithAltScreen())
			_, err := p.Run()
			return err
		},
	}
}

type browseModel struct {
	err      error
	module   *wasm.Module
	load     func(string) (*wasm.Module, error)
	filename string
	view     viewport.Model
	selected int
	code     bool
	ready    bool
}

type loadedMsg struct {
	err    error
	module *wasm.Module
}

func newBrowseModel(filename string, load func(string) (*wasm.Module, error)) *browseModel {
	return &browseModel{
		filename: filename,
		load:     load,
		view:     viewport.New(80, 20),
	}
}

func (m *browseModel) Init() tea.Cmd {
	return m.loadModule
}

func (m *browseModel) loadModule() tea.Msg {
	mod, err := m.load(m.filename)
	return loadedMsg{module: mod, err: err}
}

func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.selected > 0 {
				m.selected--
				m.refresh()
			}
			return m, nil

		case "down", "j":
			if m.module != nil && m.selected < len(m.module.Sections)-1 {
				m.selected++
				m.refresh()
			}
			return m, nil

		case "c":
			m.code = !m.code
			m.refresh()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.view.Width = max(msg.Width-listWidth-4, 10)
		m.view.Height = max(msg.Height-5, 3)

	case loadedMsg:
		m.err = msg.err
		m.module = msg.module
		m.ready = true
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.view, cmd = m.view.Update(msg)
	return m, cmd
}

// refresh loads the selected section into the viewport.
func (m *browseModel) refresh() {
	if m.module == nil || len(m.module.Sections) == 0 {
		m.view.SetContent("")
		return
	}
	h := m.module.Sections[m.selected]
	header := fmt.Sprintf("offset 0x%x, %d byte(s)", h.Offset, h.Size)
	lines := append([]string{helpStyle.Render(header), ""}, sectionLines(m.module, m.selected, m.code)...)
	m.view.SetContent(strings.Join(lines, "\n"))
	m.view.GotoTop()
}

func (m *browseModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if !m.ready {
		return "Loading module..."
	}

	var list strings.Builder
	for i, h := range m.module.Sections {
		label := sectionLabel(h)
		if i == m.selected {
			list.WriteString(selectedStyle.Render("> " + label))
		} else {
			list.WriteString("  " + label)
		}
		list.WriteString("\n")
	}
	if len(m.module.Sections) == 0 {
		list.WriteString(helpStyle.Render("no sections"))
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("wasm-inspect"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		paneStyle.Width(listWidth).Render(list.String()),
		paneStyle.Render(m.view.View()),
	))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ section • pgup/pgdn scroll • c code • q quit"))
	return b.String()
}
