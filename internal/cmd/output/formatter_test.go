package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sheetsync "github.com/xbfighting/google-sheet-to-github-issues"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/identity"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/issues"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/mapping"
)

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"table", "JSON", "yaml", "wide", ""} {
		_, err := ParseFormat(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestDetectFormatExplicit(t *testing.T) {
	assert.Equal(t, FormatYAML, DetectFormat("YAML"))
}

func TestTableFormatter(t *testing.T) {
	var buf bytes.Buffer
	err := NewFormatter(FormatTable).Format(&buf, MappingsTable(mapping.Defaults()))
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Feature / Issue")
	assert.Contains(t, out, "phase")
	assert.Contains(t, strings.ToUpper(out), "TRANSFORM")
}

func TestTableFormatterReflectsStructs(t *testing.T) {
	type item struct {
		RowID  string `json:"row_id"`
		Hidden string `json:"-"`
	}
	var buf bytes.Buffer
	require.NoError(t, (&TableFormatter{}).Format(&buf, []item{{RowID: "row-2", Hidden: "secret"}}))
	assert.Contains(t, buf.String(), "row-2")
	assert.NotContains(t, buf.String(), "secret")
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	result := &sheetsync.Result{Created: 1, Outcomes: []sheetsync.RowOutcome{
		{RowID: "row-2", Title: "Login bug", Action: sheetsync.ActionCreated, Reason: sheetsync.ReasonNew, IssueNumber: 3},
	}}
	require.NoError(t, NewFormatter(FormatJSON).Format(&buf, result))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.EqualValues(t, 1, decoded["created"])
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatYAML).Format(&buf, mapping.Defaults()[:1]))
	assert.Contains(t, buf.String(), "source:")
	assert.Contains(t, buf.String(), "Feature / Issue")
}

func TestResultTable(t *testing.T) {
	r := &sheetsync.Result{Outcomes: []sheetsync.RowOutcome{
		{RowID: "row-2", Title: "Login bug", Action: sheetsync.ActionUpdated, Reason: sheetsync.ReasonChanged, IssueNumber: 41, Changed: []string{"body"}},
		{RowID: "row-3", Action: sheetsync.ActionErrored, Operation: "create", Error: "boom"},
	}}

	d := ResultTable(r, false)
	require.Len(t, d.Rows, 2)
	assert.Equal(t, []string{"~", "row-2", "#41", "updated", "changed", "Login bug"}, d.Rows[0])
	assert.Equal(t, "create", d.Rows[1][4])

	wide := ResultTable(r, true)
	assert.Equal(t, "body", wide.Rows[0][6])
	assert.Equal(t, "boom", wide.Rows[1][7])
}

func TestRecordsTable(t *testing.T) {
	records := []identity.Record{{RowID: "row-2", IssueNumber: 41}, {RowID: "row-3", IssueNumber: 42}}

	plain := RecordsTable(records, nil)
	assert.Len(t, plain.Headers, 5)
	assert.Equal(t, "#41", plain.Rows[0][1])

	verified := RecordsTable(records, map[int]issues.RemoteIssue{41: {Number: 41, State: issues.StateOpen}})
	assert.Equal(t, "Remote", verified.Headers[5])
	assert.Equal(t, "open", verified.Rows[0][5])
	assert.Equal(t, "missing", verified.Rows[1][5])
}

func TestHeadersTable(t *testing.T) {
	d := HeadersTable([]string{"Feature / Issue", "Owner"}, mapping.Defaults())
	require.Len(t, d.Rows, 2)
	assert.Contains(t, d.Rows[0][2], "title")
	assert.Equal(t, "-", d.Rows[1][2])
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
