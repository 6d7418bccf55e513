package gitops

import (
	"fmt"
	"strings"
	"time"
)

// guessDefaultBase mirrors the original's base-branch heuristic: prefer the
// remote's symbolic HEAD, then a local main, then a local master, then
// whatever is currently checked out.
func (p *Port) guessDefaultBase(remote string) string {
	if res := p.run("symbolic-ref", "--short", fmt.Sprintf("refs/remotes/%s/HEAD", remote)); res.OK {
		ref := strings.TrimSpace(res.Stdout)
		if ref != "" {
			return strings.TrimPrefix(ref, remote+"/")
		}
	}
	if res := p.run("rev-parse", "--verify", "-q", "refs/heads/main"); res.OK {
		return "main"
	}
	if res := p.run("rev-parse", "--verify", "-q", "refs/heads/master"); res.OK {
		_ = res
		return "master"
	}
	return p.CurrentBranch()
}

// uniqueBranchName appends a timestamp suffix to desired if it already
// exists, so repeated runs against the same repo never collide.
func (p *Port) uniqueBranchName(desired string, now time.Time) string {
	res := p.run("rev-parse", "--verify", "-q", "refs/heads/"+desired)
	if !res.OK {
		return desired
	}
	return fmt.Sprintf("%s-%s", desired, now.UTC().Format("20060102-150405"))
}

// CheckoutBranch switches to name if it exists, otherwise creates it from a
// guessed base (or as an orphan branch, if the repository has no commits
// yet). now is passed in explicitly (rather than taken from time.Now)
// so callers control the uniqueness-suffix clock.
func (p *Port) CheckoutBranch(name, remote string, now time.Time) (string, error) {
	if res := p.run("rev-parse", "--verify", "-q", "refs/heads/"+name); res.OK {
		if _, err := p.runOK("checkout", name); err != nil {
			return "", err
		}
		return name, nil
	}

	unique := p.uniqueBranchName(name, now)

	if !p.HasCommits() {
		if _, err := p.runOK("checkout", "--orphan", unique); err != nil {
			return "", err
		}
		return unique, nil
	}

	base := p.guessDefaultBase(remote)
	args := []string{"checkout", "-b", unique}
	if base != "" {
		args = append(args, base)
	}
	if _, err := p.runOK(args...); err != nil {
		return "", err
	}
	return unique, nil
}

// Push pushes the current branch to remote, creating the upstream link on
// first push. A missing remote or a detached HEAD is a no-op, not an error:
// the commits already exist locally regardless of whether they're pushed.
func (p *Port) Push(remote string, setUpstream bool) error {
	if !p.HasRemote(remote) {
		return nil
	}
	branch := p.CurrentBranch()
	if branch == "" {
		return nil
	}
	args := []string{"push"}
	if setUpstream {
		args = append(args, "--set-upstream")
	}
	args = append(args, remote, fmt.Sprintf("HEAD:%s", branch))
	_, err := p.runOK(args...)
	return err
}
