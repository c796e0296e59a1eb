package prompt

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	title    lipgloss.Style
	message  lipgloss.Style
	selected lipgloss.Style
	option   lipgloss.Style
	hint     lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		message:  lipgloss.NewStyle().MarginBottom(1),
		selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		option:   lipgloss.NewStyle().Foreground(lipgloss.Color("248")),
		hint:     lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("241")).MarginTop(1),
	}
}

// chooseModel lets the user pick one of a fixed list of options.
type chooseModel struct {
	title    string
	message  string
	options  []string
	cursor   int
	chosen   int
	canceled bool
	styles   styles
}

func newChooseModel(message, title string, options []string, st styles) chooseModel {
	return chooseModel{
		title:   title,
		message: message,
		options: options,
		chosen:  -1,
		styles:  st,
	}
}

func (m chooseModel) Init() tea.Cmd { return nil }

func (m chooseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "esc", "ctrl+c", "q":
		m.canceled = true
		return m, tea.Quit
	case "up", "k", "shift+tab":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j", "tab":
		if m.cursor < len(m.options)-1 {
			m.cursor++
		}
	case "enter":
		if len(m.options) > 0 {
			m.chosen = m.cursor
		} else {
			m.canceled = true
		}
		return m, tea.Quit
	default:
		// 1-9 pick an option directly
		if s := key.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
			if i := int(s[0] - '1'); i < len(m.options) {
				m.cursor = i
				m.chosen = i
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m chooseModel) View() string {
	var b strings.Builder
	if m.title != "" {
		b.WriteString(m.styles.title.Render(m.title))
		b.WriteString("\n")
	}
	b.WriteString(m.styles.message.Render(m.message))
	b.WriteString("\n")
	for i, opt := range m.options {
		if i == m.cursor {
			b.WriteString(m.styles.selected.Render("> " + opt))
		} else {
			b.WriteString(m.styles.option.Render("  " + opt))
		}
		b.WriteString("\n")
	}
	b.WriteString(m.styles.hint.Render("enter select · esc cancel"))
	b.WriteString("\n")
	return b.String()
}

// textModel asks for a single line of text.
type textModel struct {
	title     string
	message   string
	input     textinput.Model
	submitted bool
	canceled  bool
	styles    styles
}

func newTextModel(message, title, defaultValue string, st styles) textModel {
	in := textinput.New()
	in.Prompt = "> "
	in.SetValue(defaultValue)
	in.CursorEnd()
	in.Focus()
	return textModel{title: title, message: message, input: in, styles: st}
}

func (m textModel) Init() tea.Cmd { return textinput.Blink }

func (m textModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc", "ctrl+c":
			m.canceled = true
			return m, tea.Quit
		case "enter":
			m.submitted = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m textModel) View() string {
	var b strings.Builder
	if m.title != "" {
		b.WriteString(m.styles.title.Render(m.title))
		b.WriteString("\n")
	}
	b.WriteString(m.styles.message.Render(m.message))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.styles.hint.Render("enter confirm · esc cancel"))
	b.WriteString("\n")
	return b.String()
}
