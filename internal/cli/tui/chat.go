package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/RamaShankarRay/XGpt/internal/domain/entity"
	"github.com/RamaShankarRay/XGpt/internal/usecase"
)

// UI configuration constants
const (
	defaultInputWidth     = 100
	defaultViewportWidth  = 100
	defaultViewportHeight = 30
	defaultWindowWidth    = 100
	defaultWindowHeight   = 40
	inputCharLimit        = 4000
	inputHeightReserved   = 2
	statusHeightReserved  = 3
	minContentHeight      = 10
	refreshInterval       = 2 * time.Second
)

// Style definitions
var (
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	boldStyle   = lipgloss.NewStyle().Bold(true)
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
)

// sessionState represents whether a reply is in flight
type sessionState int

const (
	stateIdle sessionState = iota
	stateWaiting
)

// ChatProgram encapsulates the chat TUI program
type ChatProgram struct {
	model chatModel
}

// NewChatProgram creates a new chat program instance
func NewChatProgram(coordinator *usecase.Coordinator, email string) *ChatProgram {
	return &ChatProgram{model: initialModel(coordinator, email)}
}

// Run starts the chat TUI program
func (p *ChatProgram) Run() error {
	program := tea.NewProgram(p.model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}

// chatModel is the Bubble Tea model containing all chat interface state
type chatModel struct {
	// Dependencies
	coordinator *usecase.Coordinator
	email       string

	// UI components
	input       textinput.Model
	contentView viewport.Model

	// Session state
	state    sessionState
	pending  string // user message shown while the reply is in flight
	chats    []*entity.Chat
	current  *entity.Chat
	messages []*entity.Message

	// Error state
	err error

	// Window dimensions
	width  int
	height int
}

// initialModel creates the initial chat model
func initialModel(coordinator *usecase.Coordinator, email string) chatModel {
	input := textinput.New()
	input.Placeholder = ""
	input.Focus()
	input.CharLimit = inputCharLimit
	input.Width = defaultInputWidth
	input.Prompt = ""
	input.TextStyle = lipgloss.NewStyle()
	input.PromptStyle = lipgloss.NewStyle()

	contentViewport := viewport.New(defaultViewportWidth, defaultViewportHeight)
	contentViewport.SetContent("")

	m := chatModel{
		coordinator: coordinator,
		email:       email,
		input:       input,
		contentView: contentViewport,
		state:       stateIdle,
		width:       defaultWindowWidth,
		height:      defaultWindowHeight,
	}
	m.pullState()

	return m
}

// Init initializes the model (Bubble Tea interface)
func (m chatModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, scheduleRefresh())
}

// Message type definitions
type (
	sendDoneMsg    struct{ err error }
	chatCreatedMsg struct{ err error }
	chatSwitchMsg  struct{ err error }
	refreshTickMsg struct{}
)

// Update processes messages and updates the model (Bubble Tea interface)
func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmds = append(cmds, m.handleKeyPress(msg)...)

	case tea.WindowSizeMsg:
		m.handleWindowResize(msg)

	case sendDoneMsg:
		m.state = stateIdle
		m.pending = ""
		m.err = msg.err
		m.pullState()

	case chatCreatedMsg:
		m.err = msg.err
		m.pullState()

	case chatSwitchMsg:
		m.err = msg.err
		m.pullState()

	case refreshTickMsg:
		// Pick up snapshots pushed by the store subscriptions.
		if m.state == stateIdle {
			m.pullState()
		}
		cmds = append(cmds, scheduleRefresh())
	}

	// Keep the input live unless a reply is in flight
	if m.state != stateWaiting {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// handleKeyPress handles keyboard input
func (m *chatModel) handleKeyPress(msg tea.KeyMsg) []tea.Cmd {
	var cmds []tea.Cmd

	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		cmds = append(cmds, tea.Quit)

	case tea.KeyEnter:
		if m.state != stateWaiting {
			text := strings.TrimSpace(m.input.Value())
			if text != "" {
				m.input.Reset()
				m.pending = text
				m.err = nil
				m.state = stateWaiting
				m.refreshContent()
				cmds = append(cmds, m.sendMessage(text))
			}
		}

	case tea.KeyCtrlN:
		if m.state != stateWaiting {
			cmds = append(cmds, m.createChat())
		}

	case tea.KeyLeft:
		if m.state != stateWaiting {
			if cmd := m.switchChat(-1); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}

	case tea.KeyRight:
		if m.state != stateWaiting {
			if cmd := m.switchChat(1); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}

	case tea.KeyUp:
		m.contentView.LineUp(1)

	case tea.KeyDown:
		m.contentView.LineDown(1)

	case tea.KeyPgUp:
		m.contentView.ViewUp()

	case tea.KeyPgDown:
		m.contentView.ViewDown()
	}

	return cmds
}

// handleWindowResize handles window size changes
func (m *chatModel) handleWindowResize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height

	contentHeight := msg.Height - inputHeightReserved - statusHeightReserved
	if contentHeight < minContentHeight {
		contentHeight = minContentHeight
	}

	m.contentView.Width = msg.Width
	m.contentView.Height = contentHeight
	m.input.Width = msg.Width - 3

	m.refreshContent()
}

// sendMessage sends the text through the coordinator. A chat is created
// first when none is selected.
func (m *chatModel) sendMessage(text string) tea.Cmd {
	coordinator := m.coordinator
	needChat := m.current == nil

	return func() tea.Msg {
		ctx := context.Background()
		if needChat {
			if _, err := coordinator.CreateChat(ctx); err != nil {
				return sendDoneMsg{err: err}
			}
		}
		return sendDoneMsg{err: coordinator.SendMessage(ctx, text)}
	}
}

// createChat starts a fresh chat
func (m *chatModel) createChat() tea.Cmd {
	coordinator := m.coordinator
	return func() tea.Msg {
		_, err := coordinator.CreateChat(context.Background())
		return chatCreatedMsg{err: err}
	}
}

// switchChat selects the previous or next chat in the list
func (m *chatModel) switchChat(offset int) tea.Cmd {
	if m.current == nil || len(m.chats) < 2 {
		return nil
	}

	index := -1
	for i, chat := range m.chats {
		if chat.ID == m.current.ID {
			index = i
			break
		}
	}
	if index < 0 {
		return nil
	}

	next := index + offset
	if next < 0 || next >= len(m.chats) {
		return nil
	}

	coordinator := m.coordinator
	chatID := m.chats[next].ID
	return func() tea.Msg {
		return chatSwitchMsg{err: coordinator.SelectChat(context.Background(), chatID)}
	}
}

// scheduleRefresh re-renders periodically so pushed store updates show up
func scheduleRefresh() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg {
		return refreshTickMsg{}
	})
}

// pullState copies the coordinator's snapshots into the model
func (m *chatModel) pullState() {
	m.chats = m.coordinator.Chats()
	m.current = m.coordinator.CurrentChat()
	m.messages = m.coordinator.Messages()
	m.refreshContent()
}

// refreshContent rebuilds the transcript view
func (m *chatModel) refreshContent() {
	var b strings.Builder

	if m.current == nil && len(m.messages) == 0 && m.pending == "" {
		b.WriteString(dimStyle.Render("Type a message to start a new chat."))
		b.WriteString("\n")
	}

	for _, message := range m.messages {
		writeTranscriptEntry(&b, message.Role, message.Content)
	}

	if m.pending != "" {
		writeTranscriptEntry(&b, entity.RoleUser, m.pending)
		b.WriteString(accentStyle.Render("Assistant"))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("..."))
		b.WriteString("\n")
	}

	display := b.String()
	if m.err != nil {
		display += "\n" + errorStyle.Render(fmt.Sprintf("error: %v", m.err))
	}

	if m.width > 0 {
		display = wrapText(display, m.width)
	}

	m.contentView.SetContent(display)
	m.contentView.GotoBottom()
}

func writeTranscriptEntry(b *strings.Builder, role entity.Role, content string) {
	b.WriteString("\n")
	switch role {
	case entity.RoleAssistant:
		b.WriteString(accentStyle.Render("Assistant"))
	case entity.RoleSystem:
		b.WriteString(dimStyle.Render("System"))
	default:
		b.WriteString(boldStyle.Render("You"))
	}
	b.WriteString("\n")
	b.WriteString(content)
	b.WriteString("\n")
}

// wrapText applies auto-wrapping to text, handling wide character widths
func wrapText(text string, maxWidth int) string {
	if maxWidth <= 10 {
		return text
	}

	lines := strings.Split(text, "\n")
	var result strings.Builder

	for i, line := range lines {
		if i > 0 {
			result.WriteString("\n")
		}

		if strings.TrimSpace(line) == "" {
			continue
		}

		result.WriteString(wrapLine(line, maxWidth))
	}

	return result.String()
}

// wrapLine wraps a single line of text by display width
func wrapLine(line string, maxWidth int) string {
	if runewidth.StringWidth(line) <= maxWidth {
		return line
	}

	var result strings.Builder
	var currentLine strings.Builder
	currentWidth := 0

	for _, r := range line {
		runeW := runewidth.RuneWidth(r)

		if currentWidth+runeW > maxWidth && currentWidth > 0 {
			result.WriteString(currentLine.String())
			result.WriteString("\n")
			currentLine.Reset()
			currentWidth = 0
		}

		currentLine.WriteRune(r)
		currentWidth += runeW
	}

	if currentLine.Len() > 0 {
		result.WriteString(currentLine.String())
	}

	return result.String()
}

// View renders the UI (Bubble Tea interface)
func (m chatModel) View() string {
	// Top status bar
	title := "no chat selected"
	if m.current != nil {
		title = m.current.Title
	}
	storeMode := "local"
	if m.coordinator.UsingRemote() {
		storeMode = "remote"
	}
	status := dimStyle.Render(fmt.Sprintf("%s • %s • %s store", m.email, title, storeMode))
	if m.state == stateWaiting {
		status += dimStyle.Render(" • waiting for reply...")
	}

	// Content area
	content := m.contentView.View()

	// Input area
	var inputView string
	if m.state == stateWaiting {
		inputView = dimStyle.Render("> ") + dimStyle.Render("waiting for reply...")
	} else {
		inputView = promptStyle.Render("> ") + m.input.View()
	}

	// Bottom help text
	help := ""
	if m.state != stateWaiting {
		help = dimStyle.Render("Enter send • Ctrl+N new chat • ←/→ switch chat • ↑↓ scroll • Esc quit")
	}

	parts := []string{status, "", content, "", inputView}
	if help != "" {
		parts = append(parts, help)
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
