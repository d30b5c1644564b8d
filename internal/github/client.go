// Package github implements the issue tracker over the GitHub REST API.
package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/xbfighting/google-sheet-to-github-issues/internal/transport"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/constants"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/errors"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/issues"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/logging"
)

// searchPageSize is how many search hits are scanned for an exact title.
const searchPageSize = 20

// Config configures a Client.
type Config struct {
	Owner      string
	Repo       string
	Token      string
	BaseURL    string
	MaxRetries int
	HTTPClient *http.Client
	Logger     *zerolog.Logger
}

// Client talks to one GitHub repository.
type Client struct {
	owner  string
	repo   string
	http   *transport.Client
	logger *zerolog.Logger
}

// NewClient creates a client for cfg.Owner/cfg.Repo.
func NewClient(cfg Config) (*Client, error) {
	var missing []string
	if cfg.Owner == "" {
		missing = append(missing, "GitHub owner is required")
	}
	if cfg.Repo == "" {
		missing = append(missing, "GitHub repository is required")
	}
	if len(missing) > 0 {
		return nil, &errors.ConfigError{Component: "github", Missing: missing}
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = constants.DefaultGitHubAPIURL
	}
	logger := logging.OrDefault(cfg.Logger)

	return &Client{
		owner:  cfg.Owner,
		repo:   cfg.Repo,
		logger: logger,
		http: transport.New(baseURL, &transport.BearerAuth{Token: cfg.Token},
			transport.WithService("github"),
			transport.WithHTTPClient(cfg.HTTPClient),
			transport.WithHeader("Accept", "application/vnd.github+json"),
			transport.WithHeader("X-GitHub-Api-Version", constants.GitHubAPIVersion),
			transport.WithMaxRetries(cfg.MaxRetries),
			transport.WithLogger(logger),
		),
	}, nil
}

// Repo returns "owner/repo".
func (c *Client) Repo() string {
	return c.owner + "/" + c.repo
}

func (c *Client) repoPath(parts ...string) string {
	p := "/repos/" + url.PathEscape(c.owner) + "/" + url.PathEscape(c.repo)
	for _, part := range parts {
		p += "/" + part
	}
	return p
}

// CreateIssue opens a new issue and returns its number. GitHub always
// creates issues open, so a closed target is closed with a follow-up edit.
func (c *Client) CreateIssue(ctx context.Context, target issues.TargetIssue) (int, error) {
	req := newIssueRequest(target)
	req.State = nil

	var created Issue
	if _, err := c.http.Do(ctx, http.MethodPost, c.repoPath("issues"), nil, req, &created); err != nil {
		return 0, errors.WrapResource("create", "issue", target.Title, err)
	}

	if target.State != nil && *target.State == issues.StateClosed {
		state := string(issues.StateClosed)
		patch := issueRequest{State: &state}
		if _, err := c.http.Do(ctx, http.MethodPatch, c.repoPath("issues", strconv.Itoa(created.Number)), nil, patch, nil); err != nil {
			return created.Number, errors.WrapResource("close", "issue", strconv.Itoa(created.Number), err)
		}
	}

	c.logger.Debug().Int("issue", created.Number).Str("title", target.Title).Msg("Created GitHub issue")
	return created.Number, nil
}

// UpdateIssue overwrites the managed fields of issue number.
func (c *Client) UpdateIssue(ctx context.Context, number int, target issues.TargetIssue) error {
	if _, err := c.http.Do(ctx, http.MethodPatch, c.repoPath("issues", strconv.Itoa(number)), nil, newIssueRequest(target), nil); err != nil {
		return errors.WrapResource("update", "issue", strconv.Itoa(number), err)
	}
	c.logger.Debug().Int("issue", number).Msg("Updated GitHub issue")
	return nil
}

// GetIssue fetches issue number. A missing or deleted issue returns
// (nil, nil); so does a number that refers to a pull request.
func (c *Client) GetIssue(ctx context.Context, number int) (*issues.RemoteIssue, error) {
	var issue Issue
	_, err := c.http.Do(ctx, http.MethodGet, c.repoPath("issues", strconv.Itoa(number)), nil, nil, &issue)
	if err != nil {
		var apiErr *errors.APIError
		if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusNotFound || apiErr.StatusCode == http.StatusGone) {
			return nil, nil
		}
		return nil, errors.WrapResource("fetch", "issue", strconv.Itoa(number), err)
	}
	if issue.IsPullRequest() {
		return nil, nil
	}
	remote := issue.Remote()
	return &remote, nil
}

// FindIssueByTitle searches the repository for an issue whose title is
// exactly title. Search is fuzzy, so hits are filtered locally.
func (c *Client) FindIssueByTitle(ctx context.Context, title string) (int, bool, error) {
	q := fmt.Sprintf(`repo:%s is:issue in:title "%s"`, c.Repo(), strings.ReplaceAll(title, `"`, ""))
	query := url.Values{
		"q":        {q},
		"per_page": {strconv.Itoa(searchPageSize)},
	}

	var result searchResult
	if _, err := c.http.Do(ctx, http.MethodGet, "/search/issues", query, nil, &result); err != nil {
		return 0, false, errors.WrapResource("search", "issue", title, err)
	}
	for _, item := range result.Items {
		if item.IsPullRequest() {
			continue
		}
		if item.Title == title {
			return item.Number, true, nil
		}
	}
	return 0, false, nil
}

// ListIssues returns every issue in the repository with the given state
// ("open", "closed" or "all"), following Link pagination. Pull requests are
// skipped.
func (c *Client) ListIssues(ctx context.Context, state string) ([]issues.RemoteIssue, error) {
	if state == "" {
		state = "all"
	}
	query := url.Values{
		"state":    {state},
		"per_page": {strconv.Itoa(constants.DefaultPageSize)},
	}

	var all []issues.RemoteIssue
	next := c.repoPath("issues")
	for page := 0; next != "" && page < constants.MaxPages; page++ {
		var batch []Issue
		headers, err := c.http.Do(ctx, http.MethodGet, next, query, nil, &batch)
		if err != nil {
			return nil, errors.WrapResource("list", "issues", c.Repo(), err)
		}
		for _, issue := range batch {
			if !issue.IsPullRequest() {
				all = append(all, issue.Remote())
			}
		}
		next = nextPage(headers)
		query = nil
	}
	return all, nil
}

// CheckAccess verifies the token can read the repository and that issues
// are enabled.
func (c *Client) CheckAccess(ctx context.Context) (*Repository, error) {
	var repo Repository
	if _, err := c.http.Do(ctx, http.MethodGet, c.repoPath(), nil, nil, &repo); err != nil {
		return nil, errors.WrapResource("fetch", "repository", c.Repo(), err)
	}
	if !repo.HasIssues {
		return &repo, &errors.ResourceError{
			Operation: "access",
			Resource:  "repository",
			ID:        c.Repo(),
			Message:   "issues are disabled for this repository",
		}
	}
	return &repo, nil
}

var linkNextPattern = regexp.MustCompile(`<([^>]+)>;\s*rel="next"`)

// nextPage extracts the rel="next" URL from a Link header.
func nextPage(headers http.Header) string {
	if headers == nil {
		return ""
	}
	m := linkNextPattern.FindStringSubmatch(headers.Get("Link"))
	if len(m) < 2 {
		return ""
	}
	return m[1]
}
