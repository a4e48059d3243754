package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cctakt/cctakt/internal/agent"
	"github.com/cctakt/cctakt/internal/core"
)

// tickInterval matches the supervisor loop's ~60Hz poll cadence.
const tickInterval = 16 * time.Millisecond

// Supervisor is the narrow slice of internal/supervisor.Supervisor the
// model drives every tick and defers to when a review overlay resolves.
// Kept as an interface here (rather than importing internal/supervisor
// directly) since that package itself imports internal/tui for
// TUIOutput — cmd/cctakt wires the concrete type in.
type Supervisor interface {
	Tick(ctx context.Context)
	ActiveReview() *core.ReviewState
	ConfirmReview(ctx context.Context)
	CancelReview()
	ShouldQuit() bool
}

// Supervisor additionally satisfies IssueSource in normal operation; the
// model only reaches for it (via a type assertion in handleGlobalChord and
// handleIssuePickerKey) once the user opens the issue picker, so a
// Supervisor built without a GitHub collaborator still satisfies the
// narrower interface above for every other code path.

type tickMsg time.Time

func scheduleTick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Model is the top-level bubbletea model: one workspace, its agent
// registry, and whichever overlay (if any) is currently active.
type Model struct {
	Workspace  string
	Registry   *agent.Registry
	Output     *TUIOutput
	Supervisor Supervisor

	Width, Height int

	Mode        core.AppMode
	InputMode   core.InputMode
	Focus       core.FocusedPane
	PlanStatus  string

	Review      *core.ReviewState
	IssuePicker *IssuePickerState

	quitting bool
}

// NewModel returns a Model ready to run, wired to the given registry and
// notification sink. Supervisor may be set afterward via the exported
// field once cmd/cctakt constructs it; a nil Supervisor just means the
// tick loop polls nothing (useful for rendering tests).
func NewModel(workspace string, registry *agent.Registry, output *TUIOutput) Model {
	return Model{
		Workspace: workspace,
		Registry:  registry,
		Output:    output,
		Mode:      core.ModeNormal,
		InputMode: core.InputNavigation,
		Focus:     core.PaneRight,
	}
}

func (m Model) Init() tea.Cmd {
	return scheduleTick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tickMsg:
		return m.handleTick()
	case issuesFetchedMsg:
		return m.handleIssuesFetched(msg)
	}
	return m, nil
}

// handleTick runs one supervisor cycle (C14 steps 3-8) and syncs the
// model's overlay state to whatever review the supervisor just opened
// (auto-entered on a worker completing) or left.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.Supervisor == nil {
		return m, scheduleTick()
	}
	m.Supervisor.Tick(context.Background())
	if m.Supervisor.ShouldQuit() {
		m.quitting = true
		return m, tea.Quit
	}
	m.Review = m.Supervisor.ActiveReview()
	if m.Review != nil && m.Mode == core.ModeNormal {
		m.Mode = core.ModeReviewMerge
	}
	return m, scheduleTick()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Overlays consume keys themselves before any global or navigation
	// routing applies.
	if m.Mode != core.ModeNormal {
		return m.handleOverlayKey(msg)
	}

	if next, cmd, handled := m.handleGlobalChord(msg); handled {
		return next, cmd
	}

	if m.InputMode == core.InputNavigation {
		return m.handleNavigationKey(msg)
	}
	return m.handleInputModeKey(msg)
}

func (m Model) handleGlobalChord(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+q":
		m.quitting = true
		return m, tea.Quit, true
	case "ctrl+w":
		if a := m.Registry.Active(); a != nil {
			_ = m.Registry.Remove(a.ID)
		}
		return m, nil, true
	case "ctrl+n":
		m.Registry.Next()
		return m, nil, true
	case "ctrl+p":
		m.Registry.Prev()
		return m, nil, true
	case "ctrl+i":
		source, ok := m.Supervisor.(IssueSource)
		if !ok {
			return m, nil, true
		}
		m.Mode = core.ModeIssuePicker
		m.IssuePicker = newIssuePicker()
		return m, fetchIssuesCmd(source), true
	}
	if n, ok := directSwitchDigit(msg.String()); ok {
		workers := m.Registry.Workers()
		if n-1 < len(workers) {
			m.Registry.SwitchTo(workers[n-1].ID)
		}
		return m, nil, true
	}
	return m, nil, false
}

func directSwitchDigit(key string) (int, bool) {
	for _, prefix := range []string{"ctrl+", "alt+"} {
		if strings.HasPrefix(key, prefix) {
			rest := strings.TrimPrefix(key, prefix)
			if len(rest) == 1 && rest[0] >= '1' && rest[0] <= '9' {
				return int(rest[0] - '0'), true
			}
		}
	}
	return 0, false
}

func (m Model) handleNavigationKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "h":
		m.Focus = core.PaneLeft
	case "l":
		m.Focus = core.PaneRight
	case "j":
		if m.Focus == core.PaneRight {
			m.Registry.Next()
		}
	case "k":
		if m.Focus == core.PaneRight {
			m.Registry.Prev()
		}
	case "i", "enter":
		m.InputMode = core.InputEditing
	}
	return m, nil
}

// byteSender is satisfied by *agent.Interactive; the model depends only on
// this narrow capability so it never needs to know about PTY internals.
type byteSender interface {
	SendBytes([]byte)
}

func (m Model) handleInputModeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.InputMode = core.InputNavigation
		return m, nil
	}
	ia := m.Registry.Interactive()
	if ia == nil {
		return m, nil
	}
	if sender, ok := m.Registry.Handle(ia.ID).(byteSender); ok {
		sender.SendBytes(keyToBytes(msg))
	}
	return m, nil
}

// keyToBytes turns a bubbletea key event into the byte sequence a terminal
// child process expects on its stdin.
func keyToBytes(msg tea.KeyMsg) []byte {
	switch msg.Type {
	case tea.KeyEnter:
		return []byte("\r")
	case tea.KeyBackspace:
		return []byte{0x7f}
	case tea.KeyTab:
		return []byte("\t")
	case tea.KeyCtrlC:
		return []byte{0x03}
	case tea.KeySpace:
		return []byte(" ")
	default:
		return []byte(msg.String())
	}
}

func (m Model) handleOverlayKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.Mode {
	case core.ModeIssuePicker:
		return m.handleIssuePickerKey(msg)
	case core.ModeReviewMerge:
		switch msg.String() {
		case "enter", "m", "M":
			if m.Supervisor != nil {
				m.Supervisor.ConfirmReview(context.Background())
			}
			m.Mode = core.ModeNormal
			m.Review = nil
		case "esc", "q", "c":
			if m.Supervisor != nil {
				m.Supervisor.CancelReview()
			}
			m.Mode = core.ModeNormal
			m.Review = nil
		}
	default:
		if msg.String() == "esc" {
			m.Mode = core.ModeNormal
		}
	}
	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	header := m.renderHeader()
	footer := m.renderFooter()
	body := m.renderBody()
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m Model) renderHeader() string {
	title := HeaderStyle.Render(fmt.Sprintf(" %s ", m.Workspace))
	var tabs []string
	for _, a := range m.Registry.All() {
		style := lipgloss.NewStyle()
		if a.ID == m.Registry.ActiveID() {
			style = style.Bold(true).Foreground(ColorPrimary)
		}
		tabs = append(tabs, style.Render(fmt.Sprintf("[%s]", a.Name)))
	}
	notifs := m.renderNotifications()
	return lipgloss.JoinHorizontal(lipgloss.Top, title, strings.Join(tabs, " "), notifs)
}

func (m Model) renderNotifications() string {
	if m.Output == nil {
		return ""
	}
	var parts []string
	for _, n := range m.Output.Visible() {
		parts = append(parts, fmt.Sprintf(" %s ", n.Message))
	}
	return strings.Join(parts, "")
}

func (m Model) renderFooter() string {
	return FooterStyle.Render(fmt.Sprintf("mode=%s focus=%s plan=%s", m.InputMode, m.Focus, m.PlanStatus))
}

func (m Model) renderBody() string {
	if m.Review != nil {
		return m.renderReview()
	}
	if m.Mode == core.ModeIssuePicker {
		return m.renderIssuePicker()
	}

	interactive := m.Registry.Interactive()
	workers := m.Registry.Workers()

	switch {
	case interactive != nil && len(workers) > 0:
		half := m.Width / 2
		left := m.renderConductorPane(half)
		right := m.renderWorkerPane(m.Width-half-1, workers)
		return lipgloss.JoinHorizontal(lipgloss.Top, left, "│", right)
	case interactive != nil:
		return m.renderConductorPane(m.Width)
	case len(workers) > 0:
		return m.renderWorkerPane(m.Width, workers)
	default:
		return "no agents running"
	}
}

func (m Model) renderConductorPane(width int) string {
	a := m.Registry.Interactive()
	if a == nil {
		return ""
	}
	style := lipgloss.NewStyle().Width(width)

	ia, ok := m.Registry.Handle(a.ID).(*agent.Interactive)
	if !ok {
		return style.Render(fmt.Sprintf("conductor: %s (%s)", a.Name, a.WorkState))
	}

	rows := m.Height - 2 // header + footer
	if rows < 1 {
		rows = 1
	}
	cols := width
	if cols < 1 {
		cols = 1
	}
	return style.Render(renderCells(ia.Cells(rows, cols)))
}

func (m Model) renderWorkerPane(width int, workers []*core.Agent) string {
	active := m.Registry.Active()
	var lines []string
	for _, w := range workers {
		marker := "  "
		if active != nil && w.ID == active.ID {
			marker = "> "
		}
		lines = append(lines, fmt.Sprintf("%s%s [%s]", marker, w.Name, w.WorkState))
	}
	return lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
}

func (m Model) renderReview() string {
	r := m.Review
	var b strings.Builder
	fmt.Fprintf(&b, "Review: %s\n", r.Branch)
	fmt.Fprintf(&b, "%d files changed, %d insertions(+), %d deletions(-)\n", r.FilesChanged, r.Insertions, r.Deletions)
	if len(r.Conflicts) > 0 {
		fmt.Fprintf(&b, "possible conflicts: %s\n", strings.Join(r.Conflicts, ", "))
	}
	b.WriteString(strings.Join(r.CommitLog, "\n"))
	b.WriteString("\n\n")
	b.WriteString(r.DiffView)
	return b.String()
}
