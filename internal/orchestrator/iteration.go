package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/boshu2/review/internal/applier"
	"github.com/boshu2/review/internal/content"
	"github.com/boshu2/review/internal/llm"
	"github.com/boshu2/review/internal/patch"
	"github.com/boshu2/review/internal/scanner"
)

// RunIteration executes one of the three review passes: checkout a fresh
// branch, walk the iteration's target files in order proposing one
// submit_patch per file, then run new-file discovery. Iteration 3
// additionally covers the deferred docs/setup/example buckets because
// scanner.FilesForIteration already widens its result set for i>=3.
func (o *Orchestrator) RunIteration(ctx context.Context, i int, plan *llm.ReviewPlan) error {
	branch, err := o.Git.CheckoutBranch(fmt.Sprintf("%s%d", o.Cfg.BranchPrefix, i), o.Cfg.Remote, o.Now())
	if err != nil {
		return err
	}
	o.infow("checked out iteration branch", "iteration", i, "branch", branch)

	idx, err := o.Scan.Scan()
	if err != nil {
		return err
	}
	files := idx.FilesForIteration(i)

	for _, rel := range files {
		if err := o.reviewFile(ctx, i, rel); err != nil {
			o.warnw("file review failed, continuing iteration", "file", rel, "error", err)
		}
	}

	if err := o.discoverNewFiles(ctx, i, plan); err != nil {
		o.warnw("new-file discovery failed", "error", err)
	}
	return nil
}

// reviewFile builds the per-file prompt, forces a submit_patch, reconciles
// its op against on-disk reality, and applies it.
func (o *Orchestrator) reviewFile(ctx context.Context, iteration int, rel string) error {
	abs := filepath.Join(o.Repo, filepath.FromSlash(rel))
	data, err := os.ReadFile(abs)
	if err != nil {
		return err
	}
	isBinary := content.IsBinaryPath(abs)
	excerpt := ""
	if !isBinary {
		excerpt = content.Excerpt(data, o.Cfg.MaxPromptBytes, o.Cfg.HeadTailBytes)
	}

	prompt := llm.FileReviewPrompt(
		"Review this file against the plan's objective; if no change is needed, "+
			"resubmit it with identical content.",
		iteration, rel, llm.LanguageHint(rel), excerpt, isBinary,
	)

	p, err := o.Driver.SubmitPatch(ctx, prompt)
	if err != nil {
		return err
	}

	p = reconcile(p, fileExists(abs))
	if p == nil {
		return nil // reconciled to a no-op keep
	}
	if iteration < 3 && isDeferredBucket(p.File) {
		o.infow("deferred until iteration 3", "file", p.File)
		return nil
	}

	_, err = o.Apply.Apply(p)
	return err
}

// discoverNewFiles asks the model for new files to create and applies each
// one, skipping anything in a deferred bucket before iteration 3.
func (o *Orchestrator) discoverNewFiles(ctx context.Context, iteration int, plan *llm.ReviewPlan) error {
	prompt := fmt.Sprintf(
		"Given the plan (%s), list any brand-new files this repository is missing as a JSON "+
			"array of {\"path\":..., \"rationale\":...} objects. Reply with an empty array if none.",
		plan.Description,
	)
	items, err := o.Driver.AskJSONArray(ctx, prompt)
	if err != nil {
		if errors.Is(err, llm.ErrExtraction) {
			return nil // no usable array; nothing to create this round
		}
		return err
	}

	for _, item := range items {
		rawPath, _ := item["path"].(string)
		if rawPath == "" {
			continue
		}
		if iteration < 3 && isDeferredBucket(rawPath) {
			o.infow("deferred new file until iteration 3", "file", rawPath)
			continue
		}
		createPrompt := fmt.Sprintf(
			"Create the new file %q. Submit it with op=create and its complete content.", rawPath,
		)
		p, err := o.Driver.SubmitPatch(ctx, createPrompt)
		if err != nil {
			o.warnw("new file creation failed", "file", rawPath, "error", err)
			continue
		}
		p = reconcile(p, fileExists(filepath.Join(o.Repo, filepath.FromSlash(p.File))))
		if p == nil {
			continue
		}
		if _, err := o.Apply.Apply(p); err != nil {
			o.warnw("applying new file failed", "file", p.File, "error", err)
		}
	}
	return nil
}

func fileExists(abs string) bool {
	_, err := os.Stat(abs)
	return err == nil
}

// reconcile maps the model's proposed op onto what's actually on disk:
// create against an existing file becomes update, update against a missing
// file becomes create, and delete against a missing file is a no-op keep.
func reconcile(p *patch.Patch, exists bool) *patch.Patch {
	switch {
	case p.Op == patch.OpCreate && exists:
		p.Op = patch.OpUpdate
	case p.Op == patch.OpUpdate && !exists:
		p.Op = patch.OpCreate
	case p.Op == patch.OpDelete && !exists:
		return nil
	}
	return p
}

// isDeferredBucket reports whether rel falls in a bucket iterations 1-2
// must not touch: documentation, setup/CI, or examples.
func isDeferredBucket(rel string) bool {
	switch scanner.Classify(rel) {
	case scanner.CategoryDoc, scanner.CategorySetup, scanner.CategoryExample:
		return true
	default:
		return false
	}
}
