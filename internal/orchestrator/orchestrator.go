// Package orchestrator drives the full multi-iteration review workflow:
// preflight, plan, three review iterations, an error-fix loop, and a final
// push. It is strictly sequential; see the concurrency model in the
// project's design notes for why no step here ever runs in parallel.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/boshu2/review/internal/applier"
	"github.com/boshu2/review/internal/config"
	"github.com/boshu2/review/internal/gitops"
	"github.com/boshu2/review/internal/llm"
	"github.com/boshu2/review/internal/scanner"
	"github.com/boshu2/review/internal/state"
)

// Orchestrator wires every component for a single run against one repository.
type Orchestrator struct {
	Repo    string
	Cfg     *config.Config
	Git     *gitops.Port
	Apply   *applier.Applier
	Scan    *scanner.Scanner
	Driver  *llm.Driver
	NoPush  bool
	// Iterations bounds how many of the three review passes Run executes.
	// Defaults to 3; callers that want a partial run (e.g. --iterations 1)
	// lower it after New.
	Iterations int
	Now        func() time.Time
	log        *zap.SugaredLogger
	github     *GitHubClient // nil unless Cfg.CreatePR
}

// New constructs an Orchestrator with every component built from cfg,
// bound to repo and backed by transport.
func New(repo string, cfg *config.Config, transport llm.Transport, instructions string, noPush bool, log *zap.SugaredLogger) (*Orchestrator, error) {
	git := gitops.New(repo, log)
	if !git.HasGitDir() {
		return nil, fmt.Errorf("orchestrator: %w: %s", gitops.ErrNotGitRepo, repo)
	}
	scan, err := scanner.New(repo)
	if err != nil {
		return nil, err
	}
	apply := applier.New(repo, git, log)

	timeout := time.Duration(cfg.APITimeout) * time.Second
	systemPrompt := llm.SystemPromptPerFile(1)
	userPrompt := llm.InstructionsBlock(instructions)
	driver := llm.NewDriver(transport, cfg.Model, timeout, cfg.CtxTurns, systemPrompt, userPrompt, log)

	o := &Orchestrator{
		Repo: repo, Cfg: cfg, Git: git, Apply: apply, Scan: scan, Driver: driver,
		NoPush: noPush, Iterations: 3, Now: time.Now, log: log,
	}
	if cfg.CreatePR {
		o.github = NewGitHubClient(log)
	}
	return o, nil
}

// Preflight verifies the repository is ready: .git present and the working
// tree clean, matching §4.G's Preflight step.
func (o *Orchestrator) Preflight() error {
	if !o.Git.HasGitDir() {
		return gitops.ErrNotGitRepo
	}
	if !o.Git.WorkingTreeClean() {
		return ErrDirtyPreflight
	}
	return nil
}

// Run executes Preflight → Plan (or a resume from a live checkpoint) →
// Iter1 → Iter2 → Iter3 → ErrorFixLoop → Push in order, aborting on the
// first fatal error. On a full success it clears the checkpoint, since a
// completed run has nothing left to resume.
func (o *Orchestrator) Run(ctx context.Context) error {
	if err := o.Preflight(); err != nil {
		return err
	}

	plan, err := o.resumeOrPlan(ctx)
	if err != nil {
		return err
	}

	for i := 1; i <= o.Iterations; i++ {
		if err := o.RunIteration(ctx, i, plan); err != nil {
			return err
		}
		o.checkpoint(fmt.Sprintf("iteration-%d", i))
	}

	if err := o.RunErrorFixLoop(ctx, plan); err != nil {
		return err
	}

	if !o.NoPush {
		if err := o.Git.Push(o.Cfg.Remote, true); err != nil {
			o.warnw("push failed", "error", err)
		}
		if o.github != nil {
			if err := o.github.OpenPR(ctx, o.Repo, o.Git, plan); err != nil {
				o.warnw("pull request creation failed", "error", err)
			}
		}
	}

	if err := state.Clear(o.Repo); err != nil {
		o.warnw("clearing checkpoint failed", "error", err)
	}
	return nil
}

// infow and warnw no-op when o.log is nil, the way every other component
// in this tree treats an absent logger as "don't log" rather than a panic.
func (o *Orchestrator) infow(msg string, kv ...any) {
	if o.log != nil {
		o.log.Infow(msg, kv...)
	}
}

func (o *Orchestrator) warnw(msg string, kv ...any) {
	if o.log != nil {
		o.log.Warnw(msg, kv...)
	}
}

// checkpoint persists the resume record after a waypoint.
func (o *Orchestrator) checkpoint(conversationID string) {
	_ = state.Save(o.Repo, state.Checkpoint{
		ConversationID: conversationID,
		LastCommitSHA:  o.Git.CurrentCommit(),
		Timestamp:      o.Now().UTC(),
	})
}
