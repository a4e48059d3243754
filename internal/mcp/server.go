// Package mcp implements a Model Context Protocol server over stdio: the
// conductor's tool-calling interface to the plan file, so the agent driving
// cctakt mutates tasks through a handful of named tools instead of writing
// plan.json directly and racing the supervisor's own reads of it.
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/cctakt/cctakt/internal/plan"
)

const protocolVersion = "2024-11-05"

// Server dispatches JSON-RPC 2.0 requests read one per line from stdin,
// writing one JSON-RPC response per line to stdout.
type Server struct {
	store  *plan.Store
	logger *slog.Logger
}

// New returns a server backed by store, serving the given agent name and
// version in its "initialize" response.
func New(store *plan.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{store: store, logger: logger}
}

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

var null = json.RawMessage("null")

// Run reads requests from r until EOF or ctx is done, writing one response
// line per request to w. A line that fails to parse gets a parse-error
// response rather than aborting the loop, matching a long-lived stdio
// session that should survive one malformed message from its client.
func (s *Server) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		resp := s.handleLine(line)
		data, err := json.Marshal(resp)
		if err != nil {
			return fmt.Errorf("marshaling response: %w", err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("writing response: %w", err)
		}
	}
	return scanner.Err()
}

func (s *Server) handleLine(line string) rpcResponse {
	var req rpcRequest
	if err := json.Unmarshal([]byte(line), &req); err != nil {
		return rpcResponse{JSONRPC: "2.0", ID: null, Error: &rpcError{
			Code: -32700, Message: "parse error: " + err.Error(),
		}}
	}

	id := req.ID
	if len(id) == 0 {
		id = null
	}

	switch req.Method {
	case "initialize":
		return s.handleInitialize(id)
	case "tools/list":
		return s.handleToolsList(id)
	case "tools/call":
		return s.handleToolsCall(id, req.Params)
	case "notifications/initialized":
		return rpcResponse{JSONRPC: "2.0", ID: id, Result: nil}
	default:
		return rpcResponse{JSONRPC: "2.0", ID: id, Error: &rpcError{
			Code: -32601, Message: "method not found: " + req.Method,
		}}
	}
}

func (s *Server) handleInitialize(id json.RawMessage) rpcResponse {
	return rpcResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result: map[string]interface{}{
			"protocolVersion": protocolVersion,
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "cctakt",
				"version": "dev",
			},
		},
	}
}

func (s *Server) handleToolsList(id json.RawMessage) rpcResponse {
	return rpcResponse{JSONRPC: "2.0", ID: id, Result: map[string]interface{}{"tools": toolDefs}}
}

type toolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

func (s *Server) handleToolsCall(id json.RawMessage, raw json.RawMessage) rpcResponse {
	var params toolCallParams
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &params); err != nil {
			return rpcResponse{JSONRPC: "2.0", ID: id, Error: &rpcError{
				Code: -32602, Message: "invalid params: " + err.Error(),
			}}
		}
	}

	var args map[string]interface{}
	if len(params.Arguments) > 0 {
		if err := json.Unmarshal(params.Arguments, &args); err != nil {
			return rpcResponse{JSONRPC: "2.0", ID: id, Error: &rpcError{
				Code: -32602, Message: "invalid arguments: " + err.Error(),
			}}
		}
	}

	handler, ok := toolHandlers[params.Name]
	if !ok {
		return rpcResponse{JSONRPC: "2.0", ID: id, Error: &rpcError{
			Code: -32601, Message: "unknown tool: " + params.Name,
		}}
	}

	text, err := handler(s.store, args)
	if err != nil {
		s.logger.Warn("mcp tool call failed", "tool", params.Name, "error", err)
		return rpcResponse{JSONRPC: "2.0", ID: id, Result: map[string]interface{}{
			"content": []map[string]string{{"type": "text", "text": "Error: " + err.Error()}},
			"isError": true,
		}}
	}

	return rpcResponse{JSONRPC: "2.0", ID: id, Result: map[string]interface{}{
		"content": []map[string]string{{"type": "text", "text": text}},
	}}
}
