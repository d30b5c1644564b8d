package errors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	pkgerrors "github.com/xbfighting/google-sheet-to-github-issues/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestIsNotFound(t *testing.T) {
	err := fmt.Errorf("lookup: %w", &pkgerrors.APIError{Service: "github", StatusCode: 404})
	assert.True(t, pkgerrors.IsNotFound(err))
	assert.False(t, pkgerrors.IsNotFound(errors.New("other")))
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := pkgerrors.NewValidationError("target", "milestone", "unknown target field")
		assert.Equal(t, "validation failed for field target: unknown target field", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Message: "no mappings"}
		assert.Equal(t, "validation failed: no mappings", err.Error())
	})
}

func TestAPIError(t *testing.T) {
	tests := []struct {
		name   string
		err    *pkgerrors.APIError
		target error
		want   bool
	}{
		{"429 is rate limited", &pkgerrors.APIError{Service: "github", StatusCode: http.StatusTooManyRequests}, pkgerrors.ErrRateLimited, true},
		{"403 with exhausted quota is rate limited", &pkgerrors.APIError{Service: "github", StatusCode: http.StatusForbidden, RateLimited: true}, pkgerrors.ErrRateLimited, true},
		{"plain 403 is not rate limited", &pkgerrors.APIError{Service: "github", StatusCode: http.StatusForbidden}, pkgerrors.ErrRateLimited, false},
		{"401 is unauthorized", &pkgerrors.APIError{Service: "github", StatusCode: http.StatusUnauthorized}, pkgerrors.ErrUnauthorized, true},
		{"404 is not found", &pkgerrors.APIError{Service: "github", StatusCode: http.StatusNotFound}, pkgerrors.ErrNotFound, true},
		{"502 is unavailable", &pkgerrors.APIError{Service: "github", StatusCode: http.StatusBadGateway}, pkgerrors.ErrTrackerUnavailable, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}

	t.Run("message", func(t *testing.T) {
		err := pkgerrors.NewAPIError("github", 422, "Validation Failed")
		assert.Equal(t, "API error from github (status 422): Validation Failed", err.Error())
	})

	t.Run("unwrap", func(t *testing.T) {
		base := errors.New("connection reset")
		err := pkgerrors.WrapAPI("sheets", 0, base)
		assert.ErrorIs(t, err, base)
		assert.Equal(t, "API error from sheets: connection reset", err.Error())
	})
}

func TestConfigError(t *testing.T) {
	t.Run("missing list", func(t *testing.T) {
		err := &pkgerrors.ConfigError{
			Message: "missing required configuration",
			Missing: []string{"GITHUB_TOKEN is required", "SPREADSHEET_ID is required"},
		}
		assert.Equal(t,
			"configuration error: missing required configuration: GITHUB_TOKEN is required; SPREADSHEET_ID is required",
			err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})

	t.Run("component", func(t *testing.T) {
		err := pkgerrors.NewConfigError("reconciler", "tracker is required", nil)
		assert.Equal(t, "configuration error in reconciler: tracker is required", err.Error())
	})
}

func TestRowError(t *testing.T) {
	base := pkgerrors.NewAPIError("github", 500, "boom")
	var err error = pkgerrors.NewRowError("row-3", "create", base)

	var rowErr *pkgerrors.RowError
	require.True(t, errors.As(err, &rowErr))
	assert.Equal(t, "row-3", rowErr.RowID)
	assert.Equal(t, "create", rowErr.Operation)
	assert.True(t, pkgerrors.IsTrackerUnavailable(err))
	assert.Contains(t, err.Error(), "row row-3: create failed")
}

func TestPassInProgress(t *testing.T) {
	err := fmt.Errorf("tick: %w", pkgerrors.ErrPassInProgress)
	assert.True(t, pkgerrors.IsPassInProgress(err))
	assert.False(t, pkgerrors.IsPassInProgress(errors.New("other")))
}

func TestWrapHelpers(t *testing.T) {
	assert.NoError(t, pkgerrors.WrapIO("write", "x", nil))
	assert.NoError(t, pkgerrors.WrapParse("json", "x", nil))
	assert.NoError(t, pkgerrors.WrapResource("fetch", "rows", "", nil))

	base := errors.New("disk full")
	ioErr := pkgerrors.WrapIO("write", ".issue-mappings.json", base)
	assert.Equal(t, "IO error during write of .issue-mappings.json: disk full", ioErr.Error())
	assert.ErrorIs(t, ioErr, base)

	resErr := pkgerrors.WrapResource("fetch", "rows", "", base)
	assert.Equal(t, "failed to fetch rows: disk full", resErr.Error())

	parseErr := pkgerrors.WrapParse("yaml", "mappings.yaml", base)
	assert.Equal(t, "parse error in yaml file mappings.yaml: disk full", parseErr.Error())
}
