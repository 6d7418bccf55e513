package orchestrator

import "errors"

// Sentinel errors for the orchestrator package.
var (
	// ErrDirtyPreflight is returned when the working tree has uncommitted
	// changes at the start of a run.
	ErrDirtyPreflight = errors.New("orchestrator: working tree is not clean")

	// ErrErrorBudgetExhausted is returned when the error-fix loop runs out
	// of rounds without the commands passing.
	ErrErrorBudgetExhausted = errors.New("orchestrator: error-fix round budget exhausted")
)
