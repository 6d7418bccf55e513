package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/boshu2/review/internal/llm"
	"github.com/boshu2/review/internal/patch"
	"github.com/boshu2/review/internal/runner"
)

// RunErrorFixLoop runs the plan's run_commands then test_commands; on any
// failure it feeds the command, exit code, and output tail back to the
// model via propose_error_fixes, applies the returned edits, and retries
// up to Cfg.MaxErrorRounds times.
func (o *Orchestrator) RunErrorFixLoop(ctx context.Context, plan *llm.ReviewPlan) error {
	commands := append(append([]string{}, plan.RunCommands...), plan.TestCommands...)
	if len(commands) == 0 {
		return nil
	}

	for round := 0; round < o.Cfg.MaxErrorRounds; round++ {
		failed, cmd, res := o.runAll(ctx, commands)
		if !failed {
			return nil
		}

		idx, err := o.Scan.Scan()
		if err != nil {
			return err
		}
		files := idx.FilesForIteration(3)

		tail := runner.Tail(res.Output, o.Cfg.LogTailChars)
		prompt := llm.SystemPromptErrorFix() + "\n\n" + llm.ErrorFixPrompt(cmd, res.ExitCode, tail, files)

		fixes, err := o.Driver.ProposeErrorFixes(ctx, prompt)
		if err != nil {
			return err
		}
		for _, edit := range fixes.Edits {
			if err := o.applyErrorFixEdit(edit); err != nil {
				o.warnw("error-fix edit failed", "file", edit.Path, "error", err)
			}
		}
		o.checkpoint(fmt.Sprintf("error-fix-round-%d", round+1))
	}
	return ErrErrorBudgetExhausted
}

// runAll runs commands in order, stopping at (and reporting) the first
// failure. Returns failed=false only if every command succeeded.
func (o *Orchestrator) runAll(ctx context.Context, commands []string) (failed bool, cmd string, res runner.Result) {
	for _, c := range commands {
		r := runner.Run(ctx, o.Repo, c, runner.DefaultTimeout)
		if !r.OK {
			return true, c, r
		}
	}
	return false, "", runner.Result{}
}

// applyErrorFixEdit converts one propose_error_fixes edit into a patch and
// applies it through the applier, the same choke point every model-authored
// mutation goes through.
func (o *Orchestrator) applyErrorFixEdit(edit llm.ErrorFixEdit) error {
	abs := filepath.Join(o.Repo, filepath.FromSlash(edit.Path))
	exists := fileExists(abs)

	var op patch.Op
	switch edit.Action {
	case "create":
		op = patch.OpCreate
	case "update":
		op = patch.OpUpdate
	case "delete":
		op = patch.OpDelete
	default:
		return fmt.Errorf("orchestrator: unknown error-fix action %q", edit.Action)
	}

	p := &patch.Patch{Op: op, File: edit.Path, Body: edit.Content, Status: patch.StatusCompleted}
	p = reconcile(p, exists)
	if p == nil {
		return nil
	}
	if err := p.Validate(); err != nil {
		return err
	}
	_, err := o.Apply.Apply(p)
	return err
}
