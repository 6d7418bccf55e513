package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/boshu2/review/internal/patch"
)

// Slack is the original implementation's constant added on top of
// 2*turn_pairs when pruning the conversation tail.
const Slack = 2

// Driver owns the bounded conversation buffer and forces every turn
// through one of a small set of structured tool calls.
type Driver struct {
	Transport Transport
	Model     string
	Timeout   time.Duration
	TurnPairs int

	messages []Message
	log      *zap.SugaredLogger
}

// NewDriver seeds the conversation with the system and initial user
// messages, which are always retained by Prune regardless of tail size.
func NewDriver(transport Transport, model string, timeout time.Duration, turnPairs int, systemPrompt, userPrompt string, log *zap.SugaredLogger) *Driver {
	return &Driver{
		Transport: transport,
		Model:     model,
		Timeout:   timeout,
		TurnPairs: turnPairs,
		messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		log: log,
	}
}

// Messages returns a copy of the current conversation buffer.
func (d *Driver) Messages() []Message {
	out := make([]Message, len(d.messages))
	copy(out, d.messages)
	return out
}

// Append adds a message to the buffer without pruning.
func (d *Driver) Append(m Message) { d.messages = append(d.messages, m) }

// Prune retains the first two messages (system + initial user) and the
// most recent 2*TurnPairs+Slack messages of the tail, bounding the
// conversation length to 2 + 2*TurnPairs + Slack per testable property 8.
func (d *Driver) Prune() {
	if len(d.messages) <= 2 {
		return
	}
	head := d.messages[:2]
	tail := d.messages[2:]
	maxTail := 2*d.TurnPairs + Slack
	if len(tail) > maxTail {
		tail = tail[len(tail)-maxTail:]
	}
	d.messages = append(append([]Message{}, head...), tail...)
}

// forceToolCall invokes the transport with prompt appended as a user
// message, constrained to toolName. On a missing tool call it nudges and
// retries up to NudgeBudget times; on a tool call for the wrong function it
// records a tool-error reply and retries. Returns the raw JSON arguments
// string on success.
func (d *Driver) forceToolCall(ctx context.Context, prompt, toolName string, tools []Tool) (string, error) {
	d.Append(Message{Role: "user", Content: prompt})

	for attempt := 0; attempt < NudgeBudget; attempt++ {
		d.Prune()
		resp, err := d.Transport.Chat(ctx, ChatRequest{
			Model:      d.Model,
			Messages:   d.Messages(),
			Tools:      tools,
			ToolChoice: toolName,
			Timeout:    d.Timeout,
		})
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrTransport, err)
		}

		if len(resp.ToolCalls) == 0 {
			if d.log != nil {
				d.log.Debugw("no tool call, nudging", "attempt", attempt, "want", toolName)
			}
			d.Append(Message{Role: "assistant", Content: resp.Content})
			d.Append(Message{Role: "user", Content: fmt.Sprintf("Please call the function `%s` only, with no prose.", toolName)})
			continue
		}

		call := resp.ToolCalls[0]
		d.Append(Message{Role: "assistant", ToolCalls: resp.ToolCalls})
		if call.Name != toolName {
			d.Append(Message{
				Role:       "tool",
				Name:       call.Name,
				ToolCallID: call.ID,
				Content:    fmt.Sprintf(`{"ok":false,"error":"expected %s, got %s"}`, toolName, call.Name),
			})
			continue
		}
		return call.Arguments, nil
	}
	return "", ErrNoToolCall
}

// ToolResult records the outcome of applying a tool call's effect back
// into the conversation, the way api_driver.run() threads apply/command
// results back to the model as a tool message.
func (d *Driver) ToolResult(callID, name string, payload any) {
	data, _ := json.Marshal(payload)
	d.Append(Message{Role: "tool", Name: name, ToolCallID: callID, Content: string(data)})
}

// SubmitPatch forces a single submit_patch call and validates the result,
// feeding schema/safety failures back to the model as a tool error and
// retrying within the same nudge budget.
func (d *Driver) SubmitPatch(ctx context.Context, prompt string) (*patch.Patch, error) {
	for attempt := 0; attempt < NudgeBudget; attempt++ {
		args, err := d.forceToolCall(ctx, prompt, "submit_patch", []Tool{SubmitPatchTool})
		if err != nil {
			return nil, err
		}
		p, perr := patch.Parse([]byte(args))
		if perr != nil {
			d.Append(Message{
				Role:    "tool",
				Name:    "submit_patch",
				Content: fmt.Sprintf(`{"ok":false,"stage":"validate_patch","error":%q}`, perr.Error()),
			})
			prompt = "The previous patch failed validation. Please call `submit_patch` again with a corrected patch."
			continue
		}
		return p, nil
	}
	return nil, ErrNoToolCall
}

// ReviewPlan is the structured output of the plan step.
type ReviewPlan struct {
	Description  string   `json:"description"`
	RunCommands  []string `json:"run_commands"`
	TestCommands []string `json:"test_commands"`
	Hints        []string `json:"hints"`
}

// ProposeReviewPlan forces the plan-step tool call.
func (d *Driver) ProposeReviewPlan(ctx context.Context, prompt string) (*ReviewPlan, error) {
	args, err := d.forceToolCall(ctx, prompt, "propose_review_plan", []Tool{ProposeReviewPlanTool})
	if err != nil {
		return nil, err
	}
	var plan ReviewPlan
	if err := json.Unmarshal([]byte(args), &plan); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return &plan, nil
}

// ErrorFixEdit is one file edit returned by propose_error_fixes.
type ErrorFixEdit struct {
	Path    string `json:"path"`
	Action  string `json:"action"`
	Content string `json:"content,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

// ErrorFixes is the full structured output of an error-fix round.
type ErrorFixes struct {
	Edits     []ErrorFixEdit `json:"edits"`
	Rationale string         `json:"rationale,omitempty"`
}

// ProposeErrorFixes forces the error-fix-round tool call.
func (d *Driver) ProposeErrorFixes(ctx context.Context, prompt string) (*ErrorFixes, error) {
	args, err := d.forceToolCall(ctx, prompt, "propose_error_fixes", []Tool{ProposeErrorFixesTool})
	if err != nil {
		return nil, err
	}
	var fixes ErrorFixes
	if err := json.Unmarshal([]byte(args), &fixes); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return &fixes, nil
}

// AskJSONArray is the untyped discovery-prompt operation: it appends
// prompt as a plain user turn (no forced tool call), then best-effort
// extracts a JSON array from the reply text via ExtractJSONArray.
func (d *Driver) AskJSONArray(ctx context.Context, prompt string) ([]map[string]any, error) {
	d.Append(Message{Role: "user", Content: prompt})
	d.Prune()
	resp, err := d.Transport.Chat(ctx, ChatRequest{
		Model:    d.Model,
		Messages: d.Messages(),
		Timeout:  d.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	d.Append(Message{Role: "assistant", Content: resp.Content})

	var items []map[string]any
	if json.Unmarshal([]byte(resp.Content), &items) == nil {
		return items, nil
	}
	arr, ok := ExtractJSONArray(resp.Content)
	if !ok {
		return nil, ErrExtraction
	}
	if err := json.Unmarshal([]byte(arr), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	return items, nil
}
