package store

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xbfighting/google-sheet-to-github-issues/internal/appcontext"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/errors"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/identity"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/issues"
)

func newStore(t *testing.T) *identity.FileStore {
	t.Helper()
	s, err := identity.Open(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)
	require.NoError(t, s.Set("row-2", 41, "Login bug"))
	require.NoError(t, s.Set("row-3", 42, "Dark mode"))
	return s
}

func run(t *testing.T, app appcontext.Interface, stdin string, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	root := &cobra.Command{Use: "sheetsync"}
	root.AddGroup(&cobra.Group{ID: "management", Title: "Management"})
	root.AddCommand(NewStatusCommand(app), NewResetCommand(app))
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestStatusVerify(t *testing.T) {
	s := newStore(t)
	app := &appcontext.Mock{
		Format:    "json",
		StoreFunc: func() (identity.Store, error) { return s, nil },
		IssuesFunc: func(context.Context) ([]issues.RemoteIssue, error) {
			return []issues.RemoteIssue{{Number: 41, State: issues.StateClosed}}, nil
		},
	}

	out, err := run(t, app, "", "status", "--verify")
	require.NoError(t, err)

	var got []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "row-2", got[0]["rowId"])
	assert.Equal(t, "closed", got[0]["remote"])
	assert.Equal(t, "missing", got[1]["remote"])
}

func TestStatusVerifyError(t *testing.T) {
	s := newStore(t)
	app := &appcontext.Mock{
		StoreFunc: func() (identity.Store, error) { return s, nil },
		IssuesFunc: func(context.Context) ([]issues.RemoteIssue, error) {
			return nil, errors.ErrUnauthorized
		},
	}

	_, err := run(t, app, "", "status", "--verify")
	require.Error(t, err)
	assert.True(t, errors.IsUnauthorized(err))
}

func TestStatusWithoutVerifySkipsGitHub(t *testing.T) {
	s := newStore(t)
	app := &appcontext.Mock{
		Format:    "table",
		StoreFunc: func() (identity.Store, error) { return s, nil },
		IssuesFunc: func(context.Context) ([]issues.RemoteIssue, error) {
			t.Fatal("issues must not be listed without --verify")
			return nil, nil
		},
	}

	out, err := run(t, app, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "#41")
	assert.Contains(t, out, "Dark mode")
}

func TestResetPrompt(t *testing.T) {
	s := newStore(t)
	app := &appcontext.Mock{StoreFunc: func() (identity.Store, error) { return s, nil }}

	out, err := run(t, app, "n\n", "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "Aborted.")
	assert.Equal(t, 2, s.Len())

	out, err = run(t, app, "yes\n", "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "reset")
	assert.Zero(t, s.Len())
}
