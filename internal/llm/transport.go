// Package llm drives the bounded conversation loop with an injectable
// transport, forcing the model into one of a small set of structured tool
// calls per turn and never accepting free-form prose as a decision.
package llm

import (
	"context"
	"encoding/json"
	"time"
)

// Message is one turn in the conversation buffer.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content,omitempty"`
	Name       string     `json:"name,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
}

// ToolCall is a single function invocation returned by the model.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Tool declares a callable function the model may be constrained to invoke.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// ChatRequest is what every transport implementation receives.
type ChatRequest struct {
	Model       string
	Messages    []Message
	Tools       []Tool
	ToolChoice  string
	Temperature float64
	Timeout     time.Duration
}

// ChatResponse carries the model's reply: plain content, or zero/one tool call.
type ChatResponse struct {
	Content   string
	ToolCalls []ToolCall
}

// Transport is the injectable boundary to a concrete chat-completions-like
// service. Production code wires BedrockTransport; tests inject a fake.
type Transport interface {
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)
}
