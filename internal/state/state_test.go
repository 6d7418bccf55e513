package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	cp, ok, err := Load(dir)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, Checkpoint{}, cp)
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	want := Checkpoint{ConversationID: "iteration-2", LastCommitSHA: "abc123", Timestamp: time.Now().UTC().Truncate(time.Second)}

	require.NoError(t, Save(dir, want))
	got, ok, err := Load(dir)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want.ConversationID, got.ConversationID)
	assert.Equal(t, want.LastCommitSHA, got.LastCommitSHA)
}

func TestClear_RemovesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Save(dir, Checkpoint{LastCommitSHA: "x"}))
	require.NoError(t, Clear(dir))

	_, ok, err := Load(dir)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClear_MissingFileIsNotAnError(t *testing.T) {
	require.NoError(t, Clear(t.TempDir()))
}

func TestIsResumable(t *testing.T) {
	assert.True(t, IsResumable(Checkpoint{LastCommitSHA: "abc"}, "abc"))
	assert.False(t, IsResumable(Checkpoint{LastCommitSHA: "abc"}, "def"))
	assert.False(t, IsResumable(Checkpoint{LastCommitSHA: ""}, ""))
}
