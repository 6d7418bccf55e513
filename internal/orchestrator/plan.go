package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/boshu2/review/internal/llm"
	"github.com/boshu2/review/internal/state"
)

// PlanDir is where plan artifacts are committed, matching §6's persisted
// iteration-artifacts path.
const PlanDir = ".gpt-review"

// RunPlan checks out the plan branch, asks the model for a ReviewPlan
// seeded with a repository manifest summary, and commits the plan
// artifacts (review_plan.json, REVIEW_GUIDE.md) on that branch.
func (o *Orchestrator) RunPlan(ctx context.Context) (*llm.ReviewPlan, error) {
	branch, err := o.Git.CheckoutBranch(o.Cfg.BranchPrefix+"-plan", o.Cfg.Remote, o.Now())
	if err != nil {
		return nil, err
	}
	o.infow("checked out plan branch", "branch", branch)

	idx, err := o.Scan.Scan()
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(
		"Repository manifest:\n%s\n\nPropose a review plan: a short description, the shell "+
			"commands needed to build/run the project (run_commands), the commands needed to "+
			"test it (test_commands), and any hints future review turns should keep in mind.",
		idx.Summary(),
	)

	plan, err := o.Driver.ProposeReviewPlan(ctx, prompt)
	if err != nil {
		return nil, err
	}

	if err := o.writePlanArtifacts(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// resumeOrPlan checks the on-disk checkpoint against current HEAD and, if
// it's still live, reloads the already-committed plan artifacts instead of
// asking the model to propose the plan again. A stale or missing checkpoint
// falls back to RunPlan.
func (o *Orchestrator) resumeOrPlan(ctx context.Context) (*llm.ReviewPlan, error) {
	cp, ok, err := state.Load(o.Repo)
	if err == nil && ok && state.IsResumable(cp, o.Git.CurrentCommit()) {
		if plan, loaded := o.loadPlanArtifact(); loaded {
			o.infow("resuming from checkpoint", "conversation_id", cp.ConversationID)
			return plan, nil
		}
	}
	return o.RunPlan(ctx)
}

// loadPlanArtifact reads back the review_plan.json committed by a prior
// RunPlan, returning ok=false if it's missing or unreadable.
func (o *Orchestrator) loadPlanArtifact() (*llm.ReviewPlan, bool) {
	data, err := os.ReadFile(filepath.Join(o.Repo, PlanDir, "review_plan.json"))
	if err != nil {
		return nil, false
	}
	var plan llm.ReviewPlan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, false
	}
	return &plan, true
}

func (o *Orchestrator) writePlanArtifacts(plan *llm.ReviewPlan) error {
	dir := filepath.Join(o.Repo, PlanDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	planJSON, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return err
	}
	planPath := filepath.Join(dir, "review_plan.json")
	if err := os.WriteFile(planPath, planJSON, 0o644); err != nil {
		return err
	}

	guide := renderReviewGuide(plan)
	guidePath := filepath.Join(dir, "REVIEW_GUIDE.md")
	if err := os.WriteFile(guidePath, []byte(guide), 0o644); err != nil {
		return err
	}

	return o.Git.CommitScoped(
		"add review plan artifacts",
		filepath.Join(PlanDir, "review_plan.json"),
		filepath.Join(PlanDir, "REVIEW_GUIDE.md"),
	)
}

func renderReviewGuide(plan *llm.ReviewPlan) string {
	var b strings.Builder
	b.WriteString("# Review Guide\n\n")
	b.WriteString(plan.Description)
	b.WriteString("\n\n## Run commands\n\n")
	for i, c := range plan.RunCommands {
		fmt.Fprintf(&b, "%d. `%s`\n", i+1, c)
	}
	b.WriteString("\n## Test commands\n\n")
	for i, c := range plan.TestCommands {
		fmt.Fprintf(&b, "%d. `%s`\n", i+1, c)
	}
	b.WriteString("\n## Hints\n\n")
	for _, h := range plan.Hints {
		fmt.Fprintf(&b, "- %s\n", h)
	}
	return b.String()
}
