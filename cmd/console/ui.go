package main

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"zonewatch/pkg/chat"
)

// ConsoleUI is the BubbleTea model that tails the zonewatch chat stream.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	viewport viewport.Model
	messages []chat.Message
	ready    bool
	width    int
	height   int
	status   string
}

type chatReceivedMsg struct {
	message chat.Message
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	oocStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	icStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("86")) // green

	emoteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")). // yellow
			Italic(true)

	whisperStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

func NewConsoleUI() ConsoleUI {
	vp := viewport.New(60, 20)
	vp.MouseWheelEnabled = true
	return ConsoleUI{
		viewport: vp,
		status:   "Waiting for messages...",
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return nil
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var vpCmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = m.width - 4
		m.viewport.Height = m.height - 4
		m.ready = true
		m.writeChatContent()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "y":
			if len(m.messages) > 0 {
				last := m.messages[len(m.messages)-1]
				if err := clipboard.WriteAll(last.Content); err != nil {
					m.status = "Copy failed: " + err.Error()
				} else {
					m.status = "Copied latest message"
				}
			}
		}

	case chatReceivedMsg:
		m.messages = append(m.messages, msg.message)
		m.status = fmt.Sprintf("%d messages", len(m.messages))
		m.writeChatContent()
	}

	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, vpCmd
}

func (m ConsoleUI) View() string {
	if !m.ready {
		return "Starting..."
	}
	return fmt.Sprintf("  %s\n%s\n  %s",
		titleStyle.Render("ZONE WATCH"),
		m.viewport.View(),
		statusStyle.Render(m.status+"  •  y: copy last  •  q: quit"))
}

// writeChatContent reformats all messages for the current viewport width.
func (m *ConsoleUI) writeChatContent() {
	chatWidth := m.viewport.Width - 4
	if chatWidth < 20 {
		chatWidth = 20
	}

	var content strings.Builder
	content.WriteString(separatorStyle.Render(strings.Repeat("─", chatWidth)) + "\n\n")

	for _, msg := range m.messages {
		content.WriteString(formatMessage(msg, chatWidth) + "\n\n")
	}

	m.viewport.SetContent(content.String())
	m.viewport.GotoBottom()
}

func formatMessage(msg chat.Message, width int) string {
	style := oocStyle
	switch msg.Category {
	case chat.CategoryIC:
		style = icStyle
	case chat.CategoryEmote:
		style = emoteStyle
	case chat.CategoryWhisper:
		style = whisperStyle
	}

	prefix := msg.Speaker
	if prefix == "" {
		prefix = string(msg.Category)
	}

	wrapped := wordwrap.String(msg.Content, width-len(prefix)-2)
	return speakerStyle.Render(prefix+": ") + style.Render(wrapped)
}
