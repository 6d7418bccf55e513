package llm

import "errors"

// Sentinel errors for the llm package.
var (
	// ErrNoToolCall is returned when the model responds with prose instead
	// of the forced tool call, after the nudge budget is exhausted.
	ErrNoToolCall = errors.New("llm: model did not return the required tool call")

	// ErrTransport wraps a transport-level timeout or malformed response.
	ErrTransport = errors.New("llm: transport error")

	// ErrExtraction is returned when no balanced JSON object/array could be
	// found in the model's raw text.
	ErrExtraction = errors.New("llm: could not extract JSON from response")
)

// NudgeBudget bounds how many times the driver re-asks for the forced tool
// call before giving up with ErrNoToolCall.
const NudgeBudget = 3
