package cli

import (
	"context"
	"fmt"
	"strings"

	textinput "github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ebetancourt/luna/internal/core"
	"github.com/ebetancourt/luna/pkg/models"
)

const chatGreeting = "Hi, I'm Luna. What's on your mind today? (Press enter on an empty line, or say \"I'm done\", to save.)"

// Style definitions.
var (
	agentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("141")).
			Bold(true)

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	savedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46"))

	chatErrStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	chatHelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// chatLine is one rendered line of the transcript.
type chatLine struct {
	fromUser bool
	text     string
}

// turnResultMsg carries the orchestrator's reaction to one input.
type turnResultMsg struct {
	result models.TurnResult
}

type chatModel struct {
	orch    *core.Orchestrator
	session *core.Session

	input textinput.Model
	lines []chatLine
	done  bool
	width int
}

func newChatModel(orch *core.Orchestrator) chatModel {
	ti := textinput.New()
	ti.Placeholder = "Write here..."
	ti.Focus()
	ti.CharLimit = 0

	return chatModel{
		orch:    orch,
		session: core.NewSession(),
		input:   ti,
		lines:   []chatLine{{text: chatGreeting}},
	}
}

func (m chatModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			if m.done {
				return m, tea.Quit
			}
			text := m.input.Value()
			m.input.SetValue("")
			if strings.TrimSpace(text) != "" {
				m.lines = append(m.lines, chatLine{fromUser: true, text: strings.TrimSpace(text)})
			}
			return m, m.takeTurn(text)
		}

	case turnResultMsg:
		m.lines = append(m.lines, chatLine{text: msg.result.Reply})
		if msg.result.Kind == models.TurnCompleted {
			m.done = true
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// takeTurn feeds the input to the orchestrator off the UI goroutine; the
// summarizer may take several seconds on long entries.
func (m chatModel) takeTurn(input string) tea.Cmd {
	orch, session := m.orch, m.session
	return func() tea.Msg {
		return turnResultMsg{result: orch.HandleTurn(context.Background(), session, input)}
	}
}

func (m chatModel) View() string {
	var b strings.Builder

	for _, line := range m.lines {
		if line.fromUser {
			b.WriteString(userStyle.Render("you: "+line.text) + "\n")
			continue
		}
		style := agentStyle
		if line.text == core.ConfirmationMessage {
			style = savedStyle
		} else if line.text == core.FailedSaveMessage {
			style = chatErrStyle
		}
		b.WriteString(style.Render("luna: ") + line.text + "\n")
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(chatHelpStyle.Render("Press enter to leave.") + "\n")
	} else {
		b.WriteString(m.input.View() + "\n")
		b.WriteString(chatHelpStyle.Render("enter: send | empty line or \"I'm done\": save | esc: quit without saving") + "\n")
	}
	return b.String()
}

// runChat starts the interactive journaling session in the terminal.
func runChat(orch *core.Orchestrator) error {
	p := tea.NewProgram(newChatModel(orch))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running chat: %w", err)
	}
	return nil
}
