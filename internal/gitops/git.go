// Package gitops is a thin subprocess facade over git. Every staging and
// commit call carries explicit pathspecs; nothing here ever runs
// `git add -A` or commits a bare directory. Commit granularity and scoped
// staging are a behavioral contract the rest of the system depends on, so
// this stays a subprocess wrapper rather than an in-process git library.
package gitops

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout bounds every git subprocess invocation.
const DefaultTimeout = 30 * time.Second

// Port wraps a single repository root and issues git as a subprocess with
// -C <repo> for every invocation.
type Port struct {
	Repo    string
	Timeout time.Duration
	log     *zap.SugaredLogger
}

// New returns a Port bound to repo, using log for INFO/DEBUG banners.
func New(repo string, log *zap.SugaredLogger) *Port {
	return &Port{Repo: repo, Timeout: DefaultTimeout, log: log}
}

// Result is the outcome of a single git invocation.
type Result struct {
	OK     bool
	Code   int
	Stdout string
	Stderr string
}

// run executes `git -C repo <args...>` and never returns an error for a
// nonzero exit; callers that need check-on-failure semantics use runOK.
func (p *Port) run(args ...string) Result {
	ctx, cancel := context.WithTimeout(context.Background(), p.Timeout)
	defer cancel()

	full := append([]string{"-C", p.Repo}, args...)
	cmd := exec.CommandContext(ctx, "git", full...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	code := 0
	if exitErr, ok := err.(*exec.ExitError); ok {
		code = exitErr.ExitCode()
	} else if err != nil {
		code = -1
	}
	if p.log != nil {
		p.log.Debugw("git", "args", args, "code", code)
	}
	return Result{OK: err == nil, Code: code, Stdout: stdout.String(), Stderr: stderr.String()}
}

// runOK runs args and returns an error wrapping stderr when the command fails.
func (p *Port) runOK(args ...string) (string, error) {
	res := p.run(args...)
	if !res.OK {
		return res.Stdout, fmt.Errorf("git %s: %s", strings.Join(args, " "), strings.TrimSpace(res.Stderr))
	}
	return res.Stdout, nil
}

// HasGitDir reports whether the repository root has a .git entry.
func (p *Port) HasGitDir() bool {
	res := p.run("rev-parse", "--git-dir")
	return res.OK
}

// HasCommits reports whether HEAD resolves to a commit.
func (p *Port) HasCommits() bool {
	res := p.run("rev-parse", "--verify", "-q", "HEAD")
	return res.OK
}

// CurrentCommit returns the HEAD SHA, or NoCommitsSentinel for an unborn HEAD.
func (p *Port) CurrentCommit() string {
	res := p.run("rev-parse", "--verify", "-q", "HEAD")
	if !res.OK {
		return NoCommitsSentinel
	}
	return strings.TrimSpace(res.Stdout)
}

// CurrentBranch returns the checked-out branch name, or "" for detached HEAD.
func (p *Port) CurrentBranch() string {
	res := p.run("rev-parse", "--abbrev-ref", "HEAD")
	branch := strings.TrimSpace(res.Stdout)
	if !res.OK || branch == "HEAD" {
		return ""
	}
	return branch
}

// IsTracked reports whether path is present in the index.
func (p *Port) IsTracked(path string) bool {
	res := p.run("ls-files", "--error-unmatch", "--", path)
	return res.OK
}

// HasLocalChanges reports whether path is modified (staged or unstaged)
// relative to HEAD.
func (p *Port) HasLocalChanges(path string) bool {
	res := p.run("status", "--porcelain", "--", path)
	return strings.TrimSpace(res.Stdout) != ""
}

// EnsureClean returns ErrLocalChanges if path has uncommitted changes,
// the guard applier runs on a patch's own file before changing it.
func (p *Port) EnsureClean(path string) error {
	if p.HasLocalChanges(path) {
		return fmt.Errorf("%w: %s", ErrLocalChanges, path)
	}
	return nil
}

// HasRemote reports whether the named remote is configured.
func (p *Port) HasRemote(name string) bool {
	res := p.run("remote")
	for _, line := range strings.Split(res.Stdout, "\n") {
		if strings.TrimSpace(line) == name {
			return true
		}
	}
	return false
}

// WorkingTreeClean reports whether the whole repository has no uncommitted changes.
func (p *Port) WorkingTreeClean() bool {
	res := p.run("status", "--porcelain")
	return strings.TrimSpace(res.Stdout) == ""
}

// RemoteURL returns the configured push URL for name, or an error if the
// remote is not configured.
func (p *Port) RemoteURL(name string) (string, error) {
	out, err := p.runOK("remote", "get-url", name)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// DefaultBranch exposes guessDefaultBase for callers outside the package
// that need the same remote-HEAD-then-main-then-master heuristic, such as
// picking a pull request base branch.
func (p *Port) DefaultBranch(remote string) string {
	return p.guessDefaultBase(remote)
}
