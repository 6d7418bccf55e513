package orchestrator

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/go-github/v53/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/boshu2/review/internal/gitops"
	"github.com/boshu2/review/internal/llm"
)

// GitHubClient opens a pull request for the finished review branch. It is
// the Go-shaped descendant of the original's GPT_REVIEW_CREATE_PR toggle:
// a convenience on top of commits and a branch that already exist
// regardless of whether the PR creation succeeds.
type GitHubClient struct {
	log *zap.SugaredLogger
}

// NewGitHubClient returns a client that reads GITHUB_TOKEN from the
// environment each time OpenPR is called, so a missing token only disables
// PR creation rather than failing the whole run.
func NewGitHubClient(log *zap.SugaredLogger) *GitHubClient {
	return &GitHubClient{log: log}
}

// OpenPR opens a pull request on the repository's remote from the current
// branch onto the default branch, titled and bodied from plan.
func (g *GitHubClient) OpenPR(ctx context.Context, repoPath string, git *gitops.Port, plan *llm.ReviewPlan) error {
	token := strings.TrimSpace(os.Getenv("GITHUB_TOKEN"))
	if token == "" {
		g.infow("GITHUB_TOKEN not set, skipping pull request creation")
		return nil
	}

	owner, name, err := remoteOwnerRepo(git)
	if err != nil {
		return err
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	client := github.NewClient(oauth2.NewClient(ctx, ts))

	branch := git.CurrentBranch()
	if branch == "" {
		return fmt.Errorf("orchestrator: detached HEAD, cannot open a pull request")
	}

	body := renderReviewGuide(plan)
	pr, _, err := client.PullRequests.Create(ctx, owner, name, &github.NewPullRequest{
		Title: github.String(plan.Description),
		Head:  github.String(branch),
		Base:  github.String(defaultBranchGuess(git)),
		Body:  github.String(body),
	})
	if err != nil {
		return err
	}
	g.infow("opened pull request", "url", pr.GetHTMLURL())
	return nil
}

// infow no-ops when g.log is nil.
func (g *GitHubClient) infow(msg string, kv ...any) {
	if g.log != nil {
		g.log.Infow(msg, kv...)
	}
}

// remoteOwnerRepo parses owner/repo out of the origin remote URL, handling
// both SSH (git@github.com:owner/repo.git) and HTTPS forms.
func remoteOwnerRepo(git *gitops.Port) (owner, repo string, err error) {
	url, gitErr := git.RemoteURL("origin")
	if gitErr != nil {
		return "", "", gitErr
	}
	url = strings.TrimSuffix(strings.TrimSpace(url), ".git")
	url = strings.TrimPrefix(url, "git@github.com:")
	url = strings.TrimPrefix(url, "https://github.com/")
	url = strings.TrimPrefix(url, "http://github.com/")
	parts := strings.SplitN(url, "/", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("orchestrator: could not parse owner/repo from remote %q", url)
	}
	return parts[0], parts[1], nil
}

func defaultBranchGuess(git *gitops.Port) string {
	if b := git.DefaultBranch("origin"); b != "" {
		return b
	}
	return "main"
}
