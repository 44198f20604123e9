package preview

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/apodervinskas/Veteran-TestBot/pkg/feedtypes"
	"github.com/apodervinskas/Veteran-TestBot/pkg/providers"
)

// ViewMode represents the current view mode
type ViewMode int

// View modes for the preview TUI
const (
	ListViewMode ViewMode = iota
	DetailViewMode
	MessageViewMode
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("12")).
			Bold(true)

	sentinelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// Model represents the Bubble Tea model for the preview TUI
type Model struct {
	source        providers.SourceMetadata
	result        feedtypes.FetchResult
	message       string // rendered chat message
	cursor        int
	viewMode      ViewMode
	width         int
	height        int
	selectedIndex int // Index of the item currently being viewed in detail
}

// NewModel creates a new preview model
func NewModel(source providers.SourceMetadata, result feedtypes.FetchResult, message string) Model {
	return Model{
		source:        source,
		result:        result,
		message:       message,
		viewMode:      ListViewMode,
		selectedIndex: -1,
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch m.viewMode {
		case ListViewMode:
			return m.updateListView(msg)
		case DetailViewMode, MessageViewMode:
			return m.updateDetailView(msg)
		}
	}

	return m, nil
}

// updateListView handles key presses in list view mode
func (m Model) updateListView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.result.Items)-1 {
			m.cursor++
		}

	case "enter":
		if len(m.result.Items) > 0 {
			m.selectedIndex = m.cursor
			m.viewMode = DetailViewMode
		}

	case "m":
		m.viewMode = MessageViewMode
	}

	return m, nil
}

// updateDetailView handles key presses in detail and message view modes
func (m Model) updateDetailView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "esc":
		m.viewMode = ListViewMode

	case "m":
		if m.viewMode == MessageViewMode {
			m.viewMode = ListViewMode
		} else {
			m.viewMode = MessageViewMode
		}
	}

	return m, nil
}

// View implements tea.Model
func (m Model) View() string {
	switch m.viewMode {
	case ListViewMode:
		return m.renderListView()
	case DetailViewMode:
		return m.renderDetailView()
	case MessageViewMode:
		return m.renderMessageView()
	}
	return ""
}

// visibleRange keeps the cursor in view when the list is taller than the screen
func (m Model) visibleRange() (int, int) {
	total := len(m.result.Items)
	if m.height <= 0 {
		return 0, total
	}

	maxVisible := m.height - 6 // header, footer and padding
	if maxVisible <= 0 || maxVisible >= total {
		return 0, total
	}

	start := max(m.cursor-maxVisible/2, 0)
	end := start + maxVisible
	if end > total {
		end = total
		start = max(end-maxVisible, 0)
	}
	return start, end
}

// renderListView renders the list view
func (m Model) renderListView() string {
	var b strings.Builder

	header := fmt.Sprintf("Source Preview - %s (%d items)", m.source.Title, len(m.result.Items))
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n\n")

	if m.result.IsSentinel() {
		b.WriteString(sentinelStyle.Render(m.result.Sentinel))
		b.WriteString("\n")
	}

	start, end := m.visibleRange()
	for i := start; i < end; i++ {
		line := FormatCompactListItem(i, m.result.Items[i])
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("→ " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(footerStyle.Render("↑/↓ or j/k: navigate • enter: view details • m: chat message • q: quit"))

	return b.String()
}

// renderDetailView renders the detail view
func (m Model) renderDetailView() string {
	if m.selectedIndex < 0 || m.selectedIndex >= len(m.result.Items) {
		return "No item selected"
	}

	var b strings.Builder
	b.WriteString(FormatDetailedItem(m.result.Items[m.selectedIndex]))
	b.WriteString("\n")
	b.WriteString(footerStyle.Render("esc: back to list • m: chat message • q: quit"))

	return b.String()
}

// renderMessageView renders the chat message exactly as it is sent
func (m Model) renderMessageView() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Chat Message Preview"))
	b.WriteString("\n\n")
	b.WriteString(FormatMessage(m.message))
	b.WriteString("\n")
	b.WriteString(footerStyle.Render("esc: back to list • m: toggle message view • q: quit"))

	return b.String()
}

// Run starts the Bubble Tea program
func Run(source providers.SourceMetadata, result feedtypes.FetchResult, message string) error {
	p := tea.NewProgram(NewModel(source, result, message), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
