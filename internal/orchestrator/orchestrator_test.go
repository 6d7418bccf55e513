package orchestrator

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boshu2/review/internal/config"
	"github.com/boshu2/review/internal/llm"
	"github.com/boshu2/review/internal/patch"
	"github.com/boshu2/review/internal/state"
)

func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
	}
	run("init", "-q")
	run("config", "user.email", "test@example.com")
	run("config", "user.name", "Test")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n"), 0o644))
	run("add", "main.go")
	run("commit", "-q", "-m", "seed")
	return dir
}

// fakeTransport drives canned tool-call responses keyed by which tool the
// driver forced, so orchestrator-level tests don't depend on a real model.
type fakeTransport struct {
	planJSON      string
	patchJSON     string
	discoveryJSON string
	errorFixJSON  string
}

func (f *fakeTransport) Chat(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
	switch req.ToolChoice {
	case "propose_review_plan":
		return llm.ChatResponse{ToolCalls: []llm.ToolCall{{ID: "1", Name: "propose_review_plan", Arguments: f.planJSON}}}, nil
	case "submit_patch":
		return llm.ChatResponse{ToolCalls: []llm.ToolCall{{ID: "2", Name: "submit_patch", Arguments: f.patchJSON}}}, nil
	case "propose_error_fixes":
		return llm.ChatResponse{ToolCalls: []llm.ToolCall{{ID: "3", Name: "propose_error_fixes", Arguments: f.errorFixJSON}}}, nil
	default:
		return llm.ChatResponse{Content: f.discoveryJSON}, nil
	}
}

func newTestOrchestrator(t *testing.T, repo string, transport llm.Transport) *Orchestrator {
	t.Helper()
	cfg := config.Default()
	o, err := New(repo, cfg, transport, "tighten error handling", true, nil)
	require.NoError(t, err)
	return o
}

func TestNew_RejectsNonGitRepo(t *testing.T) {
	_, err := New(t.TempDir(), config.Default(), &fakeTransport{}, "review", true, nil)
	require.Error(t, err)
}

func TestPreflight_RejectsDirtyWorkingTree(t *testing.T) {
	repo := initRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(repo, "main.go"), []byte("package main // dirty\n"), 0o644))

	o := newTestOrchestrator(t, repo, &fakeTransport{})
	assert.ErrorIs(t, o.Preflight(), ErrDirtyPreflight)
}

func TestPreflight_PassesOnCleanRepo(t *testing.T) {
	repo := initRepo(t)
	o := newTestOrchestrator(t, repo, &fakeTransport{})
	assert.NoError(t, o.Preflight())
}

func TestRunPlan_CommitsArtifactsOnPlanBranch(t *testing.T) {
	repo := initRepo(t)
	planJSON, err := json.Marshal(llm.ReviewPlan{
		Description:  "tighten error handling across the service layer",
		RunCommands:  []string{"go build ./..."},
		TestCommands: []string{"go test ./..."},
		Hints:        []string{"prefer wrapped errors"},
	})
	require.NoError(t, err)

	o := newTestOrchestrator(t, repo, &fakeTransport{planJSON: string(planJSON)})
	plan, err := o.RunPlan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tighten error handling across the service layer", plan.Description)

	assert.Equal(t, "iteration-plan", o.Git.CurrentBranch())
	_, err = os.Stat(filepath.Join(repo, PlanDir, "review_plan.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(repo, PlanDir, "REVIEW_GUIDE.md"))
	assert.NoError(t, err)
}

func TestResumeOrPlan_ReusesArtifactsWhenCheckpointMatchesHEAD(t *testing.T) {
	repo := initRepo(t)
	planJSON, err := json.Marshal(llm.ReviewPlan{Description: "first plan"})
	require.NoError(t, err)

	o := newTestOrchestrator(t, repo, &fakeTransport{planJSON: string(planJSON)})
	_, err = o.RunPlan(context.Background())
	require.NoError(t, err)
	o.checkpoint("after-plan")

	o2 := newTestOrchestrator(t, repo, &fakeTransport{planJSON: `{"description":"should not be asked for"}`})
	plan, err := o2.resumeOrPlan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "first plan", plan.Description)
}

func TestResumeOrPlan_FallsBackWhenCheckpointStale(t *testing.T) {
	repo := initRepo(t)
	require.NoError(t, state.Save(repo, state.Checkpoint{LastCommitSHA: "not-the-real-sha"}))

	planJSON, err := json.Marshal(llm.ReviewPlan{Description: "freshly planned"})
	require.NoError(t, err)
	o := newTestOrchestrator(t, repo, &fakeTransport{planJSON: string(planJSON)})

	plan, err := o.resumeOrPlan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "freshly planned", plan.Description)
}

func TestRunIteration_AppliesSubmittedPatch(t *testing.T) {
	repo := initRepo(t)
	patchJSON, err := json.Marshal(patch.Patch{
		Op: patch.OpUpdate, File: "main.go",
		Body: "package main // reviewed\n", Status: patch.StatusCompleted,
	})
	require.NoError(t, err)

	o := newTestOrchestrator(t, repo, &fakeTransport{patchJSON: string(patchJSON), discoveryJSON: "[]"})
	plan := &llm.ReviewPlan{Description: "tighten error handling"}

	require.NoError(t, o.RunIteration(context.Background(), 1, plan))

	data, err := os.ReadFile(filepath.Join(repo, "main.go"))
	require.NoError(t, err)
	assert.Equal(t, "package main // reviewed\n", string(data))
}

func TestReconcile(t *testing.T) {
	createOnExisting := &patch.Patch{Op: patch.OpCreate, File: "a.go"}
	assert.Equal(t, patch.OpUpdate, reconcile(createOnExisting, true).Op)

	updateOnMissing := &patch.Patch{Op: patch.OpUpdate, File: "a.go"}
	assert.Equal(t, patch.OpCreate, reconcile(updateOnMissing, false).Op)

	deleteOnMissing := &patch.Patch{Op: patch.OpDelete, File: "a.go"}
	assert.Nil(t, reconcile(deleteOnMissing, false))

	deleteOnExisting := &patch.Patch{Op: patch.OpDelete, File: "a.go"}
	assert.NotNil(t, reconcile(deleteOnExisting, true))
}

func TestIsDeferredBucket(t *testing.T) {
	assert.True(t, isDeferredBucket("README.md"))
	assert.True(t, isDeferredBucket("go.mod"))
	assert.True(t, isDeferredBucket("examples/demo.go"))
	assert.False(t, isDeferredBucket("internal/foo.go"))
}

func TestLogHelpers_NilLoggerDoesNotPanic(t *testing.T) {
	repo := initRepo(t)
	o := newTestOrchestrator(t, repo, &fakeTransport{})
	assert.NotPanics(t, func() {
		o.infow("msg", "k", "v")
		o.warnw("msg", "k", "v")
	})

	gh := NewGitHubClient(nil)
	assert.NotPanics(t, func() { gh.infow("msg") })
}
