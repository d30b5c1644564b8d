package mapping

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xbfighting/google-sheet-to-github-issues/internal/utils/ptr"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/errors"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/issues"
)

func row(fields map[string]string) issues.Row {
	return issues.Row{ID: "row-2", Fields: fields}
}

func TestApplyDefaults(t *testing.T) {
	closed := issues.StateClosed
	open := issues.StateOpen

	tests := []struct {
		name   string
		fields map[string]string
		want   issues.TargetIssue
	}{
		{
			name: "full row",
			fields: map[string]string{
				"Feature / Issue": "Login bug",
				"Notes":           "Fails on Safari",
				"Category":        "bug",
				"Launch Phase":    "1",
				"Status":          "Done",
			},
			want: issues.TargetIssue{
				Title:  "Login bug",
				Body:   ptr.String("Fails on Safari"),
				Labels: []string{"bug", "phase-1"},
				State:  &closed,
			},
		},
		{
			name:   "status not done stays open",
			fields: map[string]string{"Feature / Issue": "X", "Status": "In Progress"},
			want:   issues.TargetIssue{Title: "X", Labels: []string{}, State: &open},
		},
		{
			name:   "empty cells skipped",
			fields: map[string]string{"Feature / Issue": "X", "Notes": "", "Category": ""},
			want:   issues.TargetIssue{Title: "X", Labels: []string{}},
		},
		{
			name:   "fallback title column",
			fields: map[string]string{"Name": "From name", "Category": "feat"},
			want:   issues.TargetIssue{Title: "From name", Labels: []string{"feat"}},
		},
		{
			name:   "fallback order prefers Title over name",
			fields: map[string]string{"Title": "T", "name": "n"},
			want:   issues.TargetIssue{Title: "T", Labels: []string{}},
		},
		{
			name:   "no title anywhere keeps sentinel",
			fields: map[string]string{"Notes": "orphan"},
			want:   issues.TargetIssue{Title: issues.SentinelTitle, Body: ptr.String("orphan"), Labels: []string{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(row(tt.fields), Defaults())
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApplyLabelAccumulation(t *testing.T) {
	mappings := []FieldMapping{
		{Source: "Tags", Target: TargetLabels, Transform: KindList},
		{Source: "Category", Target: TargetLabels, Transform: KindLabel},
		{Source: "Phase", Target: TargetLabels, Transform: KindPhase},
		{Source: "Extra", Target: TargetLabels},
	}
	got := Apply(row(map[string]string{
		"Tags":     "ui, , bug",
		"Category": "bug",
		"Phase":    "2",
		"Extra":    "raw",
	}), mappings)

	assert.Equal(t, []string{"ui", "bug", "bug", "phase-2", "raw"}, got.Labels)
}

func TestApplyScalarLastWins(t *testing.T) {
	mappings := []FieldMapping{
		{Source: "A", Target: TargetTitle},
		{Source: "B", Target: TargetTitle},
	}
	got := Apply(row(map[string]string{"A": "first", "B": "second"}), mappings)
	assert.Equal(t, "second", got.Title)

	got = Apply(row(map[string]string{"A": "first", "B": ""}), mappings)
	assert.Equal(t, "first", got.Title)
}

func TestApplyAssignees(t *testing.T) {
	mappings := []FieldMapping{
		{Source: "Title", Target: TargetTitle},
		{Source: "Owner", Target: TargetAssignees, Transform: KindList},
	}

	got := Apply(row(map[string]string{"Title": "t", "Owner": "alice, bob"}), mappings)
	assert.Equal(t, []string{"alice", "bob"}, got.Assignees)

	got = Apply(row(map[string]string{"Title": "t"}), mappings)
	assert.Nil(t, got.Assignees, "unmapped assignees must stay unmanaged")
}

func TestApplyIdentityState(t *testing.T) {
	mappings := []FieldMapping{{Source: "State", Target: TargetState}}

	got := Apply(row(map[string]string{"State": "Closed"}), mappings)
	require.NotNil(t, got.State)
	assert.Equal(t, issues.StateClosed, *got.State)

	got = Apply(row(map[string]string{"State": "whatever"}), mappings)
	require.NotNil(t, got.State)
	assert.Equal(t, issues.StateOpen, *got.State)
}

func TestApplyIsPure(t *testing.T) {
	r := row(map[string]string{"Feature / Issue": "X", "Category": "a"})
	first := Apply(r, Defaults())
	second := Apply(r, Defaults())
	assert.Equal(t, first, second)
	assert.Equal(t, map[string]string{"Feature / Issue": "X", "Category": "a"}, r.Fields)
}

func TestStatus(t *testing.T) {
	for _, s := range []string{"done", "DONE", " Fixed ", "Completed"} {
		assert.Equal(t, issues.StateClosed, Status(s), s)
	}
	for _, s := range []string{"", "open", "in progress", "doing"} {
		assert.Equal(t, issues.StateOpen, Status(s), s)
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SplitList(" a ,b,, "))
	assert.Equal(t, []string{}, SplitList(""))
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(Defaults()))

	tests := []struct {
		name    string
		mapping FieldMapping
	}{
		{"missing source", FieldMapping{Target: TargetTitle}},
		{"unknown target", FieldMapping{Source: "A", Target: "milestone"}},
		{"unknown transform", FieldMapping{Source: "A", Target: TargetTitle, Transform: "upper"}},
		{"phase on title", FieldMapping{Source: "A", Target: TargetTitle, Transform: KindPhase}},
		{"status on labels", FieldMapping{Source: "A", Target: TargetLabels, Transform: KindStatus}},
		{"list on body", FieldMapping{Source: "A", Target: TargetBody, Transform: KindList}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate([]FieldMapping{tt.mapping})
			require.Error(t, err)
			assert.True(t, errors.IsValidationError(err))
		})
	}
}

func TestLoadSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "mappings.yaml")

	want := append(Defaults(), FieldMapping{Source: "Owner", Target: TargetAssignees, Transform: KindList})
	require.NoError(t, Save(path, want))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, len(want), len(got))
	for i := range want {
		assert.Equal(t, want[i].Source, got[i].Source)
		assert.Equal(t, want[i].Target, got[i].Target)
		assert.Equal(t, want[i].Kind(), got[i].Kind())
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "nope.yaml"))
		var ioErr *errors.IOError
		assert.ErrorAs(t, err, &ioErr)
	})

	t.Run("bad yaml", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("mappings: [\n"), 0o644))
		_, err := Load(path)
		var parseErr *errors.ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Equal(t, path, parseErr.File)
	})

	t.Run("empty mappings", func(t *testing.T) {
		_, err := Parse([]byte("mappings: []\n"))
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("invalid mapping", func(t *testing.T) {
		_, err := Parse([]byte("mappings:\n  - source: A\n    target: milestone\n"))
		assert.True(t, errors.IsValidationError(err))
	})
}
