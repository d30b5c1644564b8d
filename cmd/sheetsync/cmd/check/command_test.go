package check

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xbfighting/google-sheet-to-github-issues/internal/appcontext"
	"github.com/xbfighting/google-sheet-to-github-issues/internal/github"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/errors"
)

func runTest(t *testing.T, app appcontext.Interface) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	root := &cobra.Command{Use: "sheetsync"}
	root.AddGroup(&cobra.Group{ID: "management", Title: "Management"})
	root.AddCommand(NewCommand(app))
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs([]string{"test"})
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestCommandSuccess(t *testing.T) {
	out, err := runTest(t, &appcontext.Mock{
		HeadersFunc: func(context.Context) ([]string, error) {
			return []string{"Feature / Issue", "Notes"}, nil
		},
		CheckRepositoryFunc: func(context.Context) (*github.Repository, error) {
			return &github.Repository{FullName: "acme/roadmap", HasIssues: true}, nil
		},
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Found 2 columns: Feature / Issue, Notes")
	assert.Contains(t, out, "acme/roadmap")
}

func TestCommandReportsBothFailures(t *testing.T) {
	out, err := runTest(t, &appcontext.Mock{
		HeadersFunc: func(context.Context) ([]string, error) {
			return nil, errors.NewAPIError("sheets", 403, "permission denied")
		},
		CheckRepositoryFunc: func(context.Context) (*github.Repository, error) {
			return nil, errors.ErrUnauthorized
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 connection check(s) failed")
	assert.Contains(t, out, "permission denied")
	assert.Contains(t, out, "GITHUB_TOKEN was rejected")
}

func TestCommandHints(t *testing.T) {
	out, err := runTest(t, &appcontext.Mock{
		HeadersFunc: func(context.Context) ([]string, error) {
			return nil, errors.WrapResource("fetch", "headers", "sheet-123", errors.NewAPIError("sheets", 404, "Requested entity was not found."))
		},
		CheckRepositoryFunc: func(context.Context) (*github.Repository, error) {
			return nil, errors.WrapResource("fetch", "repository", "acme/roadmap", errors.NewAPIError("github", 404, "Not Found"))
		},
	})
	require.Error(t, err)
	assert.Contains(t, out, "check SPREADSHEET_ID and SHEET_NAME")
	assert.Contains(t, out, "check GITHUB_OWNER and GITHUB_REPO")

	out, err = runTest(t, &appcontext.Mock{
		HeadersFunc: func(context.Context) ([]string, error) { return []string{"Title"}, nil },
		CheckRepositoryFunc: func(context.Context) (*github.Repository, error) {
			return nil, errors.NewAPIError("github", 502, "Bad Gateway")
		},
	})
	require.Error(t, err)
	assert.Contains(t, out, "GitHub is unavailable")
	assert.NotContains(t, out, "SPREADSHEET_ID")
}
