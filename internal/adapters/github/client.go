// Package github implements core.GitHub against the real GitHub REST API.
package github

import (
	"context"
	"os/exec"
	"strings"

	gogithub "github.com/google/go-github/v68/github"

	"github.com/cctakt/cctakt/internal/core"
)

// Client implements core.GitHub for a single "owner/repo".
type Client struct {
	owner, repo string
	api         *gogithub.Client
}

// New builds a Client for repository (in "owner/repo" form), authenticated
// with token if non-empty, falling back to `gh auth token`. Resolving
// GITHUB_TOKEN from the environment is the config loader's job, not this
// constructor's: see internal/config.Loader.Load.
func New(repository, token string) (*Client, error) {
	owner, repo, ok := strings.Cut(repository, "/")
	if !ok {
		return nil, core.ErrValidation("INVALID_REPOSITORY", "repository must be in owner/repo form: "+repository)
	}

	if token == "" {
		token = tokenFromGHCLI()
	}

	api := gogithub.NewClient(nil)
	if token != "" {
		api = api.WithAuthToken(token)
	}

	return &Client{owner: owner, repo: repo, api: api}, nil
}

// NewFromRemote builds a Client by resolving "owner/repo" from the given
// git remote's URL (both "git@github.com:owner/repo.git" and
// "https://github.com/owner/repo.git" forms), read via `git remote get-url`.
func NewFromRemote(repoPath, remoteName, token string) (*Client, error) {
	cmd := exec.Command("git", "remote", "get-url", remoteName)
	cmd.Dir = repoPath
	out, err := cmd.Output()
	if err != nil {
		return nil, core.ErrExecution("GIT_REMOTE_FAILED", "resolving remote "+remoteName+": "+err.Error())
	}
	repository, err := parseOwnerRepo(strings.TrimSpace(string(out)))
	if err != nil {
		return nil, err
	}
	return New(repository, token)
}

// parseOwnerRepo extracts "owner/repo" from a git remote URL.
func parseOwnerRepo(url string) (string, error) {
	url = strings.TrimSuffix(url, ".git")
	switch {
	case strings.HasPrefix(url, "git@"):
		_, path, ok := strings.Cut(url, ":")
		if !ok {
			return "", core.ErrValidation("INVALID_REMOTE_URL", "unrecognized remote URL: "+url)
		}
		return path, nil
	case strings.Contains(url, "github.com/"):
		_, path, _ := strings.Cut(url, "github.com/")
		return path, nil
	default:
		return "", core.ErrValidation("INVALID_REMOTE_URL", "unrecognized remote URL: "+url)
	}
}

func tokenFromGHCLI() string {
	out, err := exec.Command("gh", "auth", "token").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

func (c *Client) FetchIssues(ctx context.Context, labels []string, state string) ([]core.Issue, error) {
	if state == "" {
		state = "open"
	}
	opts := &gogithub.IssueListByRepoOptions{State: state, Labels: labels}

	var out []core.Issue
	for {
		issues, resp, err := c.api.Issues.ListByRepo(ctx, c.owner, c.repo, opts)
		if err != nil {
			return nil, wrapErr("FETCH_ISSUES_FAILED", "fetch issues", err)
		}
		for _, iss := range issues {
			if iss.IsPullRequest() {
				continue
			}
			out = append(out, toIssue(iss))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

func (c *Client) GetIssue(ctx context.Context, number int) (core.Issue, error) {
	iss, _, err := c.api.Issues.Get(ctx, c.owner, c.repo, number)
	if err != nil {
		return core.Issue{}, wrapErr("GET_ISSUE_FAILED", "get issue", err)
	}
	return toIssue(iss), nil
}

func (c *Client) AddComment(ctx context.Context, number int, body string) error {
	_, _, err := c.api.Issues.CreateComment(ctx, c.owner, c.repo, number, &gogithub.IssueComment{Body: &body})
	if err != nil {
		return wrapErr("ADD_COMMENT_FAILED", "add comment", err)
	}
	return nil
}

func (c *Client) CloseIssue(ctx context.Context, number int) error {
	closed := "closed"
	_, _, err := c.api.Issues.Edit(ctx, c.owner, c.repo, number, &gogithub.IssueRequest{State: &closed})
	if err != nil {
		return wrapErr("CLOSE_ISSUE_FAILED", "close issue", err)
	}
	return nil
}

func (c *Client) CreatePullRequest(ctx context.Context, in core.PullRequestInput) (core.PullRequest, error) {
	base := in.Base
	if base == "" {
		base = "main"
	}
	pr, _, err := c.api.PullRequests.Create(ctx, c.owner, c.repo, &gogithub.NewPullRequest{
		Title: &in.Title,
		Body:  &in.Body,
		Head:  &in.Head,
		Base:  &base,
		Draft: &in.Draft,
	})
	if err != nil {
		return core.PullRequest{}, wrapErr("CREATE_PR_FAILED", "create pull request", err)
	}
	return core.PullRequest{Number: pr.GetNumber(), HTMLURL: pr.GetHTMLURL(), Title: pr.GetTitle()}, nil
}

func toIssue(iss *gogithub.Issue) core.Issue {
	labels := make([]string, 0, len(iss.Labels))
	for _, l := range iss.Labels {
		labels = append(labels, l.GetName())
	}
	return core.Issue{
		Number: iss.GetNumber(),
		Title:  iss.GetTitle(),
		Labels: labels,
		State:  iss.GetState(),
		Body:   iss.GetBody(),
	}
}

func wrapErr(code, action string, err error) error {
	return core.ErrExecution(code, "failed to "+action).WithCause(err)
}

var _ core.GitHub = (*Client)(nil)
