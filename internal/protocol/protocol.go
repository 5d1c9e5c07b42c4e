// Package protocol defines the JSON-RPC 2.0 envelopes exchanged with the robot.
package protocol

import (
	"encoding/json"
	"sync/atomic"
)

const Version = "2.0"

// Methods
const (
	MethodToolsCall = "tools/call"
)

// Tool names exposed by the robot firmware.
const (
	ToolAction    = "self.zeri.action"
	ToolStatus    = "self.zeri.get_status"
	ToolIPAddress = "self.zeri.get_ip_address"
)

// JSON-RPC error codes
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeRateLimited    = -32000
	CodeBusy           = -32001
)

// Request is a JSON-RPC request. ID is an int64 when built locally and a
// float64 or string after decoding foreign input.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  *ToolCallParams `json:"params,omitempty"`
}

// ToolCallParams is the params object of tools/call.
type ToolCallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      any         `json:"id"`
	Result  *ToolResult `json:"result,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ToolResult follows the content list shape the firmware replies with.
type ToolResult struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError"`
}

type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// NewToolCall builds a tools/call request for the named tool.
func NewToolCall(id int64, name string, args map[string]any) *Request {
	if args == nil {
		args = map[string]any{}
	}
	return &Request{
		JSONRPC: Version,
		ID:      id,
		Method:  MethodToolsCall,
		Params: &ToolCallParams{
			Name:      name,
			Arguments: args,
		},
	}
}

// NewResult creates a successful response carrying a single text item.
func NewResult(id any, text string) *Response {
	return &Response{
		JSONRPC: Version,
		ID:      id,
		Result: &ToolResult{
			Content: []Content{{Type: "text", Text: text}},
		},
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(id any, code int, msg string) *Response {
	return &Response{
		JSONRPC: Version,
		ID:      id,
		Error:   &Error{Code: code, Message: msg},
	}
}

// Encode serializes an envelope as a single text frame.
func Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

// IDGenerator hands out request identifiers starting at 1.
// The zero value is ready to use.
type IDGenerator struct {
	last atomic.Int64
}

func (g *IDGenerator) Next() int64 {
	return g.last.Add(1)
}
