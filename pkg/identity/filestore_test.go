package identity

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/agentstation/utc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xbfighting/google-sheet-to-github-issues/pkg/errors"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/logging"
)

// fakeClock returns a clock that advances one minute per call.
func fakeClock() func() utc.Time {
	t := time.Date(2025, 8, 20, 10, 0, 0, 0, time.UTC)
	return func() utc.Time {
		t = t.Add(time.Minute)
		return utc.New(t)
	}
}

func openTemp(t *testing.T, opts ...Option) (*FileStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".issue-mappings.json")
	opts = append([]Option{WithLogger(logging.NewNopLogger()), WithClock(fakeClock())}, opts...)
	s, err := Open(path, opts...)
	require.NoError(t, err)
	return s, path
}

func TestOpenMissingFile(t *testing.T) {
	s, path := openTemp(t)
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, path, s.Path())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "opening must not create the file")
}

func TestSetAndGet(t *testing.T) {
	s, path := openTemp(t)

	require.NoError(t, s.Set("row-2", 41, "Login bug"))

	rec, ok := s.Get("row-2")
	require.True(t, ok)
	assert.Equal(t, 41, rec.IssueNumber)
	assert.Equal(t, "Login bug", rec.Title)
	assert.Equal(t, rec.CreatedAt, rec.UpdatedAt)

	_, ok = s.Get("row-3")
	assert.False(t, ok)

	// flushed before Set returned
	reopened, err := Open(path, WithLogger(logging.NewNopLogger()))
	require.NoError(t, err)
	got, ok := reopened.Get("row-2")
	require.True(t, ok)
	assert.Equal(t, 41, got.IssueNumber)
	assert.True(t, got.CreatedAt.Equal(rec.CreatedAt))
}

func TestSetPreservesCreatedAt(t *testing.T) {
	s, _ := openTemp(t)

	require.NoError(t, s.Set("row-2", 41, "Login bug"))
	first, _ := s.Get("row-2")

	require.NoError(t, s.Set("row-2", 57, "Login bug (recreated)"))
	second, _ := s.Get("row-2")

	assert.Equal(t, 1, s.Len(), "at most one record per row")
	assert.Equal(t, 57, second.IssueNumber)
	assert.True(t, second.CreatedAt.Equal(first.CreatedAt))
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
}

func TestSetRequiresRowID(t *testing.T) {
	s, _ := openTemp(t)
	err := s.Set("", 1, "x")
	assert.True(t, errors.IsValidationError(err))
}

func TestFileFormat(t *testing.T) {
	s, path := openTemp(t)
	require.NoError(t, s.Set("row-3", 2, "B"))
	require.NoError(t, s.Set("row-2", 1, "A"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 2)
	assert.Equal(t, "row-2", raw[0]["rowId"])
	assert.EqualValues(t, 1, raw[0]["issueNumber"])
	assert.Equal(t, "A", raw[0]["title"])
	assert.Equal(t, "2025-08-20T10:02:00Z", raw[0]["createdAt"])
	assert.Contains(t, string(data), "\n  {", "file is pretty-printed")

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestDeleteAndClear(t *testing.T) {
	s, path := openTemp(t)
	require.NoError(t, s.Set("row-2", 1, "A"))
	require.NoError(t, s.Set("row-3", 2, "B"))

	require.NoError(t, s.Delete("row-2"))
	require.NoError(t, s.Delete("row-99"))
	assert.Equal(t, 1, s.Len())

	require.NoError(t, s.Clear())
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.List())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))
}

func TestList(t *testing.T) {
	s, _ := openTemp(t)
	require.NoError(t, s.Set("row-4", 3, "C"))
	require.NoError(t, s.Set("row-2", 1, "A"))

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, "row-2", list[0].RowID)
	assert.Equal(t, "row-4", list[1].RowID)

	list[0].IssueNumber = 999
	rec, _ := s.Get("row-2")
	assert.Equal(t, 1, rec.IssueNumber, "List returns copies")
}

func TestOpenCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	tl := logging.NewTestLogger(t)
	s, err := Open(path, WithLogger(tl.Logger))
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
	tl.AssertContains(t, "corrupt")

	require.NoError(t, s.Set("row-2", 5, "fresh"))
	reopened, err := Open(path, WithLogger(logging.NewNopLogger()))
	require.NoError(t, err)
	assert.Equal(t, 1, reopened.Len())
}

func TestOpenExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	content := `[
  {"rowId": "row-2", "issueNumber": 41, "title": "Login bug", "createdAt": "2025-08-01T00:00:00Z", "updatedAt": "2025-08-02T00:00:00Z"},
  {"rowId": "", "issueNumber": 1, "title": "ignored"}
]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s, err := Open(path, WithLogger(logging.NewNopLogger()))
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())

	rec, ok := s.Get("row-2")
	require.True(t, ok)
	assert.Equal(t, 41, rec.IssueNumber)
	assert.Equal(t, 2025, rec.CreatedAt.Year())
}

func TestSetRollsBackOnWriteFailure(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "store.json")
	s, err := Open(path, WithLogger(logging.NewNopLogger()))
	require.NoError(t, err)

	require.NoError(t, os.Chmod(dir, 0o500))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	err = s.Set("row-2", 1, "x")
	require.Error(t, err)
	var ioErr *errors.IOError
	assert.ErrorAs(t, err, &ioErr)
	_, ok := s.Get("row-2")
	assert.False(t, ok)
}
