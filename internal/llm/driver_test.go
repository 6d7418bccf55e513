package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedTransport replays a fixed sequence of responses, one per Chat
// call, so driver tests can exercise nudge-and-retry without a real model.
type scriptedTransport struct {
	responses []ChatResponse
	errs      []error
	calls     int
}

func (s *scriptedTransport) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return ChatResponse{}, s.errs[i]
	}
	if i >= len(s.responses) {
		return ChatResponse{}, errors.New("scriptedTransport: out of responses")
	}
	return s.responses[i], nil
}

func newDriver(t *testing.T, transport Transport) *Driver {
	t.Helper()
	return NewDriver(transport, "test-model", time.Second, 6, "system prompt", "user prompt", nil)
}

func TestPrune_RetainsHeadAndBoundedTail(t *testing.T) {
	d := newDriver(t, &scriptedTransport{})
	d.TurnPairs = 2 // maxTail = 2*2+Slack(2) = 6

	for i := 0; i < 20; i++ {
		d.Append(Message{Role: "user", Content: fmt.Sprintf("msg-%d", i)})
	}
	d.Prune()

	assert.LessOrEqual(t, len(d.Messages()), 2+6)
	msgs := d.Messages()
	assert.Equal(t, "system prompt", msgs[0].Content)
	assert.Equal(t, "user prompt", msgs[1].Content)
	assert.Equal(t, "msg-19", msgs[len(msgs)-1].Content)
}

func TestPrune_NoOpUnderThreshold(t *testing.T) {
	d := newDriver(t, &scriptedTransport{})
	d.Append(Message{Role: "user", Content: "one more"})
	before := len(d.Messages())
	d.Prune()
	assert.Equal(t, before, len(d.Messages()))
}

func TestSubmitPatch_SucceedsOnFirstValidResponse(t *testing.T) {
	transport := &scriptedTransport{responses: []ChatResponse{
		{ToolCalls: []ToolCall{{ID: "1", Name: "submit_patch", Arguments: `{"op":"create","file":"a.go","body":"package a\n","status":"completed"}`}}},
	}}
	d := newDriver(t, transport)

	p, err := d.SubmitPatch(context.Background(), "review a.go")
	require.NoError(t, err)
	assert.Equal(t, "a.go", p.File)
}

func TestSubmitPatch_RetriesAfterSchemaFailure(t *testing.T) {
	transport := &scriptedTransport{responses: []ChatResponse{
		{ToolCalls: []ToolCall{{ID: "1", Name: "submit_patch", Arguments: `{"op":"create","file":"../escape.go","body":"x","status":"completed"}`}}},
		{ToolCalls: []ToolCall{{ID: "2", Name: "submit_patch", Arguments: `{"op":"create","file":"a.go","body":"package a\n","status":"completed"}`}}},
	}}
	d := newDriver(t, transport)

	p, err := d.SubmitPatch(context.Background(), "review a.go")
	require.NoError(t, err)
	assert.Equal(t, "a.go", p.File)
	assert.Equal(t, 2, transport.calls)
}

func TestForceToolCall_NudgesOnMissingToolCall(t *testing.T) {
	transport := &scriptedTransport{responses: []ChatResponse{
		{Content: "sure, let me think about that"},
		{ToolCalls: []ToolCall{{ID: "1", Name: "propose_review_plan", Arguments: `{"description":"d","run_commands":[],"test_commands":[],"hints":[]}`}}},
	}}
	d := newDriver(t, transport)

	plan, err := d.ProposeReviewPlan(context.Background(), "plan this repo")
	require.NoError(t, err)
	assert.Equal(t, "d", plan.Description)
	assert.Equal(t, 2, transport.calls)
}

func TestForceToolCall_GivesUpAfterNudgeBudget(t *testing.T) {
	responses := make([]ChatResponse, NudgeBudget)
	for i := range responses {
		responses[i] = ChatResponse{Content: "still no tool call"}
	}
	transport := &scriptedTransport{responses: responses}
	d := newDriver(t, transport)

	_, err := d.ProposeReviewPlan(context.Background(), "plan this repo")
	assert.ErrorIs(t, err, ErrNoToolCall)
}

func TestAskJSONArray_ExtractsFromProseReply(t *testing.T) {
	transport := &scriptedTransport{responses: []ChatResponse{
		{Content: `I found these: [{"path":"new.go","rationale":"missing entry point"}]`},
	}}
	d := newDriver(t, transport)

	items, err := d.AskJSONArray(context.Background(), "any new files needed?")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "new.go", items[0]["path"])
}

func TestAskJSONArray_NoArrayReturnsExtractionError(t *testing.T) {
	transport := &scriptedTransport{responses: []ChatResponse{{Content: "nothing new here"}}}
	d := newDriver(t, transport)

	_, err := d.AskJSONArray(context.Background(), "any new files needed?")
	assert.ErrorIs(t, err, ErrExtraction)
}
