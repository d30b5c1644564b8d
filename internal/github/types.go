package github

import (
	"github.com/xbfighting/google-sheet-to-github-issues/internal/utils/ptr"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/issues"
)

// Label is a GitHub issue label.
type Label struct {
	Name string `json:"name"`
}

// User is a GitHub account reference.
type User struct {
	Login string `json:"login"`
}

// PullRef is non-nil when an "issue" is actually a pull request.
type PullRef struct {
	URL string `json:"url,omitempty"`
}

// Issue is the subset of the GitHub issue payload used here.
type Issue struct {
	Number      int      `json:"number"`
	Title       string   `json:"title"`
	Body        *string  `json:"body"`
	State       string   `json:"state"`
	Labels      []Label  `json:"labels"`
	Assignees   []User   `json:"assignees"`
	HTMLURL     string   `json:"html_url"`
	PullRequest *PullRef `json:"pull_request,omitempty"`
}

// IsPullRequest reports whether the issue is a pull request.
func (i Issue) IsPullRequest() bool {
	return i.PullRequest != nil
}

// Remote converts the payload to the tracker-neutral form.
func (i Issue) Remote() issues.RemoteIssue {
	labels := make([]string, 0, len(i.Labels))
	for _, l := range i.Labels {
		labels = append(labels, l.Name)
	}
	assignees := make([]string, 0, len(i.Assignees))
	for _, u := range i.Assignees {
		assignees = append(assignees, u.Login)
	}
	return issues.RemoteIssue{
		Number:    i.Number,
		Title:     i.Title,
		Body:      ptr.Deref(i.Body),
		State:     issues.State(i.State),
		Labels:    labels,
		Assignees: assignees,
		URL:       i.HTMLURL,
	}
}

// Repository is the subset of the repository payload used by CheckAccess.
type Repository struct {
	FullName  string `json:"full_name"`
	Private   bool   `json:"private"`
	HasIssues bool   `json:"has_issues"`
	HTMLURL   string `json:"html_url"`
}

// searchResult is the /search/issues envelope.
type searchResult struct {
	TotalCount int     `json:"total_count"`
	Items      []Issue `json:"items"`
}

// issueRequest is the create/update payload. Nil fields are omitted so an
// update leaves unmanaged fields alone.
type issueRequest struct {
	Title     string    `json:"title,omitempty"`
	Body      *string   `json:"body,omitempty"`
	Labels    *[]string `json:"labels,omitempty"`
	Assignees *[]string `json:"assignees,omitempty"`
	State     *string   `json:"state,omitempty"`
}

func newIssueRequest(t issues.TargetIssue) issueRequest {
	req := issueRequest{
		Title:  t.Title,
		Body:   ptr.String(t.BodyText()),
		Labels: ptr.NonNil(t.Labels),
	}
	if t.Assignees != nil {
		req.Assignees = ptr.NonNil(t.Assignees)
	}
	if t.State != nil {
		req.State = ptr.To(string(*t.State))
	}
	return req
}
