// Package stream implements the streaming JSONL parser (C2) that turns a
// worker CLI's `--output-format stream-json` stdout into typed events.
package stream

import (
	"encoding/json"
	"strings"
)

// EventType is the "type" discriminator of a stream event line.
type EventType string

const (
	EventSystem    EventType = "system"
	EventAssistant EventType = "assistant"
	EventUser      EventType = "user"
	EventResult    EventType = "result"
)

// Event is one parsed line of worker stdout.
type Event struct {
	Type      EventType
	Subtype   string
	SessionID string
	Model     string
	Message   *Message // set for assistant/user events

	Result        string
	CostUSD       *float64
	DurationMS    *int64
	DurationAPIMS *int64
	IsError       *bool
	NumTurns      *int
}

// Message is the content of an assistant/user event.
type Message struct {
	ID         string
	Role       string
	Content    []ContentBlock
	StopReason string
}

// BlockType is a content block's "type" discriminator.
type BlockType string

const (
	BlockText       BlockType = "text"
	BlockToolUse    BlockType = "tool_use"
	BlockToolResult BlockType = "tool_result"
)

// ContentBlock is one entry of a message's content array.
type ContentBlock struct {
	Type BlockType

	// Text
	Text string

	// ToolUse
	ToolUseID   string
	ToolName    string
	ToolInput   json.RawMessage

	// ToolResult
	ToolResultForID string
	ToolResultText  string
	ToolResultError *bool
}

// wire shapes mirror the JSON layout exactly; Event/ContentBlock above are
// the decoded, discriminated-union-as-struct representation callers use.
type eventWire struct {
	Type          EventType       `json:"type"`
	Subtype       string          `json:"subtype,omitempty"`
	SessionID     string          `json:"session_id,omitempty"`
	Model         string          `json:"model,omitempty"`
	Message       *messageWire    `json:"message,omitempty"`
	Result        *string         `json:"result,omitempty"`
	CostUSD       *float64        `json:"cost_usd,omitempty"`
	DurationMS    *int64          `json:"duration_ms,omitempty"`
	DurationAPIMS *int64          `json:"duration_api_ms,omitempty"`
	IsError       *bool           `json:"is_error,omitempty"`
	NumTurns      *int            `json:"num_turns,omitempty"`
}

type messageWire struct {
	ID         string             `json:"id,omitempty"`
	Role       string             `json:"role,omitempty"`
	Content    []contentBlockWire `json:"content,omitempty"`
	StopReason string             `json:"stop_reason,omitempty"`
}

type contentBlockWire struct {
	Type      BlockType       `json:"type"`
	Text      string          `json:"text,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   string          `json:"content,omitempty"`
	IsError   *bool           `json:"is_error,omitempty"`
}

// ParseLine parses one JSONL line. Blank lines and invalid JSON both
// return ok=false, matching the upstream parser's "skip invalid lines"
// contract — callers should not treat either as fatal.
func ParseLine(line string) (Event, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return Event{}, false
	}

	var wire eventWire
	if err := json.Unmarshal([]byte(trimmed), &wire); err != nil {
		return Event{}, false
	}

	ev := Event{
		Type:          wire.Type,
		Subtype:       wire.Subtype,
		SessionID:     wire.SessionID,
		Model:         wire.Model,
		CostUSD:       wire.CostUSD,
		DurationMS:    wire.DurationMS,
		DurationAPIMS: wire.DurationAPIMS,
		IsError:       wire.IsError,
		NumTurns:      wire.NumTurns,
	}
	if wire.Result != nil {
		ev.Result = *wire.Result
	}
	if wire.Message != nil {
		msg := &Message{ID: wire.Message.ID, Role: wire.Message.Role, StopReason: wire.Message.StopReason}
		for _, b := range wire.Message.Content {
			block := ContentBlock{Type: b.Type}
			switch b.Type {
			case BlockText:
				block.Text = b.Text
			case BlockToolUse:
				block.ToolUseID = b.ID
				block.ToolName = b.Name
				block.ToolInput = b.Input
			case BlockToolResult:
				block.ToolResultForID = b.ToolUseID
				block.ToolResultText = b.Content
				block.ToolResultError = b.IsError
			}
			msg.Content = append(msg.Content, block)
		}
		ev.Message = msg
	}
	return ev, true
}

// IsCompleted reports whether ev is a terminal result event.
func IsCompleted(ev Event) bool {
	return ev.Type == EventResult && (ev.Subtype == "success" || ev.Subtype == "error")
}

// IsError reports whether ev is a result event signalling failure.
func IsError(ev Event) bool {
	if ev.Type != EventResult {
		return false
	}
	if ev.IsError != nil && *ev.IsError {
		return true
	}
	return ev.Subtype == "error"
}

// ExtractText joins every text block in a message's content, in order.
func ExtractText(msg *Message) string {
	if msg == nil {
		return ""
	}
	var parts []string
	for _, b := range msg.Content {
		if b.Type == BlockText {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, "\n")
}
