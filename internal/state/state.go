// Package state persists a small JSON checkpoint so a run can detect
// whether it is safe to resume after a process restart.
package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// FileName is the checkpoint's fixed location inside the repository.
const FileName = ".gpt-review-state.json"

// Checkpoint is the persisted resume record.
type Checkpoint struct {
	ConversationID string    `json:"conversation_id"`
	LastCommitSHA  string    `json:"last_commit_sha"`
	Timestamp      time.Time `json:"timestamp"`
}

// path returns the fixed checkpoint path under repo.
func path(repo string) string {
	return filepath.Join(repo, FileName)
}

// Save writes cp to the checkpoint file, overwriting any prior content.
func Save(repo string, cp Checkpoint) error {
	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path(repo), data, 0o644)
}

// Load reads the checkpoint file. A missing file is not an error; it
// returns the zero Checkpoint and ok=false.
func Load(repo string) (cp Checkpoint, ok bool, err error) {
	data, readErr := os.ReadFile(path(repo))
	if readErr != nil {
		if os.IsNotExist(readErr) {
			return Checkpoint{}, false, nil
		}
		return Checkpoint{}, false, readErr
	}
	if err := json.Unmarshal(data, &cp); err != nil {
		return Checkpoint{}, false, err
	}
	return cp, true, nil
}

// Clear removes the checkpoint file, if present.
func Clear(repo string) error {
	err := os.Remove(path(repo))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// IsResumable reports whether cp's recorded commit matches currentHEAD.
// Resume semantics when the commit exists but on a different branch are
// not specified further than "treat as stale" — this only compares SHAs,
// so a checkpoint from a different branch whose HEAD happens to differ is
// correctly rejected, and one whose HEAD happens to coincide is accepted
// per the stated design decision.
func IsResumable(cp Checkpoint, currentHEAD string) bool {
	return cp.LastCommitSHA != "" && cp.LastCommitSHA == currentHEAD
}
