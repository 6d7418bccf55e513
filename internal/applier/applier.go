// Package applier executes one validated patch against the working tree
// and Git, producing a precisely-scoped commit. See apply_patch's
// docstring in the original implementation for the full op/precondition
// table this ports.
package applier

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/boshu2/review/internal/content"
	"github.com/boshu2/review/internal/gitops"
	"github.com/boshu2/review/internal/patch"
)

// Applier mutates a single repository's working tree and Git index. Every
// model-proposed patch is written through it; the orchestrator's plan
// artifacts and the state checkpoint are written under the repo root
// directly, without the applier.
type Applier struct {
	Repo string
	Git  *gitops.Port
	log  *zap.SugaredLogger
}

// New returns an Applier bound to repo, reusing git for staging and commits.
func New(repo string, git *gitops.Port, log *zap.SugaredLogger) *Applier {
	return &Applier{Repo: repo, Git: git, log: log}
}

// Result reports what the applier actually did, so callers can tell a
// genuine commit apart from a detected no-op.
type Result struct {
	Committed bool
	Message   string
}

// Apply validates p is structurally sound (callers are expected to have
// already run patch.Validate, but Apply never trusts that alone) and
// dispatches to the op-specific handler.
func (a *Applier) Apply(p *patch.Patch) (Result, error) {
	if err := p.Validate(); err != nil {
		return Result{}, err
	}
	if isUnderDotGit(p.File) || (p.Target != "" && isUnderDotGit(p.Target)) {
		return Result{}, ErrDotGit
	}

	src, err := a.resolve(p.File)
	if err != nil {
		return Result{}, err
	}

	switch p.Op {
	case patch.OpCreate, patch.OpUpdate:
		return a.applyWrite(p, src)
	case patch.OpDelete:
		return a.applyDelete(p, src)
	case patch.OpRename:
		return a.applyRename(p, src)
	case patch.OpChmod:
		return a.applyChmod(p, src)
	default:
		return Result{}, fmt.Errorf("applier: unknown op %q", p.Op)
	}
}

// resolve turns a repo-relative path into an absolute one, rejecting
// anything that would escape the repository root.
func (a *Applier) resolve(rel string) (string, error) {
	abs := filepath.Join(a.Repo, filepath.FromSlash(rel))
	repoAbs, err := filepath.Abs(a.Repo)
	if err != nil {
		return "", err
	}
	absClean, err := filepath.Abs(abs)
	if err != nil {
		return "", err
	}
	rp, err := filepath.Rel(repoAbs, absClean)
	if err != nil || rp == ".." || strings.HasPrefix(rp, "../") {
		return "", ErrOutsideRepo
	}
	return absClean, nil
}

func isUnderDotGit(rel string) bool {
	return rel == ".git" ||
		strings.HasPrefix(rel, ".git/") ||
		strings.Contains(rel, "/.git/") ||
		strings.HasSuffix(rel, "/.git")
}

func (a *Applier) guardLocalChanges(rel string) error {
	return a.Git.EnsureClean(rel)
}

func (a *Applier) applyWrite(p *patch.Patch, src string) (Result, error) {
	_, statErr := os.Stat(src)
	exists := statErr == nil

	if p.Op == patch.OpCreate {
		if exists {
			return Result{}, fmt.Errorf("%w: %s", ErrFileExists, p.File)
		}
	} else {
		if !exists {
			return Result{}, fmt.Errorf("%w: %s", ErrFileNotFound, p.File)
		}
		if err := a.guardLocalChanges(p.File); err != nil {
			return Result{}, err
		}
		if same, err := a.sameContents(p, src); err != nil {
			return Result{}, err
		} else if same {
			if a.log != nil {
				a.log.Infow("no content change, skipping update", "file", p.File)
			}
			return Result{Committed: false}, nil
		}
	}

	if err := a.writeFile(p, src); err != nil {
		return Result{}, err
	}

	msg := fmt.Sprintf("%s: %s", p.Op, p.File)
	if err := a.Git.CommitScoped(msg, p.File); err != nil {
		return Result{}, err
	}
	return Result{Committed: true, Message: msg}, nil
}

func (a *Applier) sameContents(p *patch.Patch, src string) (bool, error) {
	current, err := os.ReadFile(src)
	if err != nil {
		return false, nil
	}
	if p.IsBinary() {
		want, err := p.DecodedBody()
		if err != nil {
			return false, err
		}
		return string(current) == string(want), nil
	}
	return string(current) == content.NormalizeText(p.Body), nil
}

func (a *Applier) writeFile(p *patch.Patch, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	if p.IsBinary() {
		data, err := p.DecodedBody()
		if err != nil {
			return err
		}
		return os.WriteFile(dst, data, 0o644)
	}
	return os.WriteFile(dst, []byte(content.NormalizeText(p.Body)), 0o644)
}

func (a *Applier) applyDelete(p *patch.Patch, src string) (Result, error) {
	info, err := os.Stat(src)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s", ErrFileNotFound, p.File)
	}
	if info.IsDir() {
		return Result{}, fmt.Errorf("%w: %s", ErrIsDirectory, p.File)
	}
	if a.Git.IsTracked(p.File) {
		if err := a.guardLocalChanges(p.File); err != nil {
			return Result{}, err
		}
		if err := a.Git.RmPath(p.File); err != nil {
			return Result{}, err
		}
		msg := fmt.Sprintf("delete: %s", p.File)
		if err := a.Git.CommitScoped(msg, p.File); err != nil {
			return Result{}, err
		}
		return Result{Committed: true, Message: msg}, nil
	}
	if err := os.Remove(src); err != nil {
		return Result{}, err
	}
	if a.log != nil {
		a.log.Infow("deleted untracked file, no commit", "file", p.File)
	}
	return Result{Committed: false}, nil
}

func (a *Applier) applyRename(p *patch.Patch, src string) (Result, error) {
	dst, err := a.resolve(p.Target)
	if err != nil {
		return Result{}, err
	}
	if _, err := os.Stat(src); err != nil {
		return Result{}, fmt.Errorf("%w: %s", ErrFileNotFound, p.File)
	}
	if _, err := os.Stat(dst); err == nil {
		return Result{}, fmt.Errorf("%w: %s", ErrFileExists, p.Target)
	}

	tracked := a.Git.IsTracked(p.File)
	if tracked {
		if err := a.guardLocalChanges(p.File); err != nil {
			return Result{}, err
		}
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return Result{}, err
	}

	if tracked {
		if err := a.Git.MvPath(p.File, p.Target); err != nil {
			return Result{}, err
		}
		msg := fmt.Sprintf("rename: %s -> %s", p.File, p.Target)
		if err := a.Git.CommitScoped(msg, p.File, p.Target); err != nil {
			return Result{}, err
		}
		return Result{Committed: true, Message: msg}, nil
	}

	if err := os.Rename(src, dst); err != nil {
		return Result{}, err
	}
	msg := fmt.Sprintf("add (rename of untracked): %s", p.Target)
	if err := a.Git.CommitScoped(msg, p.Target); err != nil {
		return Result{}, err
	}
	return Result{Committed: true, Message: msg}, nil
}

func (a *Applier) applyChmod(p *patch.Patch, src string) (Result, error) {
	mode, err := patch.NormalizeMode(p.Mode)
	if err != nil {
		return Result{}, err
	}
	info, err := os.Stat(src)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s", ErrFileNotFound, p.File)
	}
	if err := a.guardLocalChanges(p.File); err != nil {
		return Result{}, err
	}

	var desired os.FileMode
	fmt.Sscanf(mode, "%o", &desired)
	current := info.Mode().Perm()
	if current == desired {
		if a.log != nil {
			a.log.Infow("mode already set, skipping chmod", "file", p.File, "mode", mode)
		}
		return Result{Committed: false}, nil
	}

	if err := os.Chmod(src, desired); err != nil {
		return Result{}, err
	}
	msg := fmt.Sprintf("chmod %s: %s", mode, p.File)
	if err := a.Git.CommitScoped(msg, p.File); err != nil {
		return Result{}, err
	}
	return Result{Committed: true, Message: msg}, nil
}
