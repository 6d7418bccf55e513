package gitops

import "errors"

// Sentinel errors for the gitops package.
var (
	// ErrNotGitRepo is returned when the target directory has no .git entry.
	ErrNotGitRepo = errors.New("gitops: not a git repository")

	// ErrDirtyWorkingTree names uncommitted changes anywhere in the working
	// tree. No function in this package returns it; the orchestrator's
	// preflight reports its own ErrDirtyPreflight for that condition.
	ErrDirtyWorkingTree = errors.New("gitops: working tree has uncommitted changes")

	// ErrLocalChanges is returned when a single path has uncommitted changes
	// that block a destructive operation on it.
	ErrLocalChanges = errors.New("gitops: path has local modifications")

	// ErrNoRemote names a missing remote. Push does not return it: a push
	// to an unconfigured remote is a no-op.
	ErrNoRemote = errors.New("gitops: no remote configured")
)

// NoCommitsSentinel is the value current_commit returns for an unborn HEAD,
// ported from the original implementation so state-file comparisons agree
// with it verbatim.
const NoCommitsSentinel = "<no-commits-yet>"
