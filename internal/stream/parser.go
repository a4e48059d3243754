package stream

import "strings"

// Parser is the stream-JSON state machine driven by a worker's stdout
// reader thread: it buffers partial lines, classifies each complete line,
// and tracks session completion.
type Parser struct {
	SessionID string
	Events    []Event
	Completed bool
	Error     string
	Result    string

	buffer strings.Builder
}

// NewParser returns an empty parser.
func NewParser() *Parser {
	return &Parser{}
}

// Feed appends data to the internal buffer, parses every complete line it
// now contains, and returns the events parsed from this call (not the
// cumulative history — see Events for that).
func (p *Parser) Feed(data string) []Event {
	p.buffer.WriteString(data)
	pending := p.buffer.String()
	p.buffer.Reset()

	var newEvents []Event
	for {
		idx := strings.IndexByte(pending, '\n')
		if idx < 0 {
			break
		}
		line := pending[:idx]
		pending = pending[idx+1:]

		ev, ok := ParseLine(line)
		if !ok {
			continue
		}
		p.apply(ev)
		p.Events = append(p.Events, ev)
		newEvents = append(newEvents, ev)
	}

	p.buffer.WriteString(pending)
	return newEvents
}

func (p *Parser) apply(ev Event) {
	switch {
	case ev.Type == EventSystem && ev.SessionID != "":
		if p.SessionID == "" {
			p.SessionID = ev.SessionID
		}
	case ev.Type == EventResult && ev.IsError != nil && *ev.IsError:
		p.Completed = true
		p.Error = ev.Result
	case ev.Type == EventResult && ev.Subtype == "success":
		p.Completed = true
		p.Result = ev.Result
	case ev.Type == EventResult && ev.Subtype == "error":
		p.Completed = true
		p.Error = ev.Result
	}
}

// LastAssistantText returns the most recent assistant message's extracted
// text, if any.
func (p *Parser) LastAssistantText() (string, bool) {
	for i := len(p.Events) - 1; i >= 0; i-- {
		if p.Events[i].Type == EventAssistant {
			return ExtractText(p.Events[i].Message), true
		}
	}
	return "", false
}

// ToolUse is one (id, name) pair extracted from ToolUses.
type ToolUse struct {
	ID   string
	Name string
}

// ToolUses returns every tool_use block across all assistant events, in
// emission order.
func (p *Parser) ToolUses() []ToolUse {
	var uses []ToolUse
	for _, ev := range p.Events {
		if ev.Type != EventAssistant || ev.Message == nil {
			continue
		}
		for _, b := range ev.Message.Content {
			if b.Type == BlockToolUse {
				uses = append(uses, ToolUse{ID: b.ToolUseID, Name: b.ToolName})
			}
		}
	}
	return uses
}
