package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/cctakt/cctakt/internal/core"
)

// IssueSource is the slice of internal/supervisor.Supervisor the issue
// picker overlay needs: fetch the candidate list once on open, and turn
// whatever got picked into a pending task.
type IssueSource interface {
	FetchIssues(ctx context.Context, labels []string, state string) ([]core.Issue, error)
	AddTaskFromIssue(issue core.Issue) error
}

// IssuePickerState holds the overlay's in-progress selection: the full
// fetched list, the user's query, and fuzzy's ranking of that query
// against issue titles.
type IssuePickerState struct {
	All      []core.Issue
	Query    string
	Matches  []fuzzy.Match
	Selected int
	Err      error
	Loading  bool
}

func newIssuePicker() *IssuePickerState {
	return &IssuePickerState{Loading: true}
}

// issueTitles adapts core.Issue to fuzzy.Source so fuzzy.FindFrom can rank
// without an intermediate []string copy on every keystroke.
type issueTitles []core.Issue

func (t issueTitles) String(i int) string {
	return fmt.Sprintf("#%d %s", t[i].Number, t[i].Title)
}

func (t issueTitles) Len() int { return len(t) }

func (p *IssuePickerState) refilter() {
	if p.Query == "" {
		p.Matches = p.Matches[:0]
		for i := range p.All {
			p.Matches = append(p.Matches, fuzzy.Match{Index: i})
		}
		return
	}
	p.Matches = fuzzy.FindFrom(p.Query, issueTitles(p.All))
	if p.Selected >= len(p.Matches) {
		p.Selected = 0
	}
}

type issuesFetchedMsg struct {
	issues []core.Issue
	err    error
}

func fetchIssuesCmd(source IssueSource) tea.Cmd {
	return func() tea.Msg {
		issues, err := source.FetchIssues(context.Background(), nil, "open")
		return issuesFetchedMsg{issues: issues, err: err}
	}
}

func (m Model) handleIssuesFetched(msg issuesFetchedMsg) (tea.Model, tea.Cmd) {
	if m.IssuePicker == nil {
		return m, nil
	}
	m.IssuePicker.Loading = false
	m.IssuePicker.Err = msg.err
	m.IssuePicker.All = msg.issues
	m.IssuePicker.refilter()
	return m, nil
}

func (m Model) handleIssuePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.IssuePicker
	if p == nil {
		m.Mode = core.ModeNormal
		return m, nil
	}

	switch msg.Type {
	case tea.KeyEsc:
		m.Mode = core.ModeNormal
		m.IssuePicker = nil
		return m, nil
	case tea.KeyEnter:
		if len(p.Matches) == 0 {
			return m, nil
		}
		issue := p.All[p.Matches[p.Selected].Index]
		m.Mode = core.ModeNormal
		m.IssuePicker = nil
		if source, ok := m.Supervisor.(IssueSource); ok {
			if err := source.AddTaskFromIssue(issue); err != nil && m.Output != nil {
				m.Output.Push("Failed to add task from issue: "+err.Error(), core.NotifyError)
			} else if m.Output != nil {
				m.Output.Push(fmt.Sprintf("Task added from issue #%d", issue.Number), core.NotifyInfo)
			}
		}
		return m, nil
	case tea.KeyUp:
		if p.Selected > 0 {
			p.Selected--
		}
		return m, nil
	case tea.KeyDown:
		if p.Selected < len(p.Matches)-1 {
			p.Selected++
		}
		return m, nil
	case tea.KeyBackspace:
		if len(p.Query) > 0 {
			p.Query = p.Query[:len(p.Query)-1]
			p.refilter()
		}
		return m, nil
	}

	if msg.Type == tea.KeyRunes {
		p.Query += string(msg.Runes)
		p.refilter()
	}
	return m, nil
}

func (m Model) renderIssuePicker() string {
	p := m.IssuePicker
	if p == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Pick an issue (type to filter, enter to add, esc to cancel)\n")
	fmt.Fprintf(&b, "> %s\n\n", p.Query)

	switch {
	case p.Loading:
		b.WriteString("Loading issues...\n")
	case p.Err != nil:
		fmt.Fprintf(&b, "Error: %s\n", p.Err)
	case len(p.Matches) == 0:
		b.WriteString("No matching issues.\n")
	default:
		for i, match := range p.Matches {
			issue := p.All[match.Index]
			marker := "  "
			style := lipgloss.NewStyle()
			if i == p.Selected {
				marker = "> "
				style = style.Bold(true).Foreground(ColorPrimary)
			}
			line := fmt.Sprintf("%s#%-5d %s", marker, issue.Number, issue.Title)
			if len(issue.Labels) > 0 {
				line += " [" + strings.Join(issue.Labels, ",") + "]"
			}
			b.WriteString(style.Render(line))
			b.WriteString("\n")
		}
	}
	return b.String()
}
