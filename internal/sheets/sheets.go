// Package sheets reads rows from a Google Sheet.
package sheets

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/xbfighting/google-sheet-to-github-issues/pkg/constants"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/errors"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/issues"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/logging"
)

// Config configures a Service.
type Config struct {
	// CredentialsPath is a service-account JSON key file.
	CredentialsPath string
	// ClientOptions are appended after the credential options; tests use
	// them to point at a fake endpoint.
	ClientOptions []option.ClientOption
	Logger        *zerolog.Logger
}

// Service reads sheet values through the Sheets v4 API.
type Service struct {
	api    *gsheets.Service
	logger *zerolog.Logger
}

// New creates a read-only Sheets client.
func New(ctx context.Context, cfg Config) (*Service, error) {
	var opts []option.ClientOption
	if cfg.CredentialsPath != "" {
		opts = append(opts,
			option.WithCredentialsFile(cfg.CredentialsPath),
			option.WithScopes(gsheets.SpreadsheetsReadonlyScope),
		)
	}
	opts = append(opts, cfg.ClientOptions...)

	api, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.NewConfigError("sheets", "failed to create Google Sheets client", err)
	}
	return &Service{api: api, logger: logging.OrDefault(cfg.Logger)}, nil
}

// FetchRows reads every data row of sheetName. The first row is the header.
func (s *Service) FetchRows(ctx context.Context, spreadsheetID, sheetName string) ([]issues.Row, error) {
	values, err := s.get(ctx, spreadsheetID, sheetRange(sheetName, ""))
	if err != nil {
		return nil, errors.WrapResource("fetch", "rows", spreadsheetID, err)
	}
	rows := RowsFromValues(values)
	s.logger.Debug().
		Str("spreadsheet", spreadsheetID).
		Str("sheet", sheetName).
		Int("rows", len(rows)).
		Msg("Fetched sheet rows")
	return rows, nil
}

// Headers returns the header row of sheetName.
func (s *Service) Headers(ctx context.Context, spreadsheetID, sheetName string) ([]string, error) {
	values, err := s.get(ctx, spreadsheetID, sheetRange(sheetName, "1:1"))
	if err != nil {
		return nil, errors.WrapResource("fetch", "headers", spreadsheetID, err)
	}
	if len(values) == 0 {
		return []string{}, nil
	}
	return headerNames(values[0]), nil
}

func (s *Service) get(ctx context.Context, spreadsheetID, rng string) ([][]interface{}, error) {
	resp, err := s.api.Spreadsheets.Values.Get(spreadsheetID, rng).
		MajorDimension("ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return nil, convertError(err)
	}
	return resp.Values, nil
}

// RowsFromValues converts a header-first value grid into rows. Row ids are
// "row-<n>" where n is the sheet's 1-based row number, so the first data row
// is row-2. Short rows are padded with "", cells beyond the header are
// dropped, and blank header cells are ignored.
func RowsFromValues(values [][]interface{}) []issues.Row {
	if len(values) == 0 {
		return []issues.Row{}
	}
	header := headerNames(values[0])

	columns := make([]string, 0, len(header))
	seen := make(map[string]bool, len(header))
	for _, h := range header {
		if h != "" && !seen[h] {
			seen[h] = true
			columns = append(columns, h)
		}
	}

	rows := make([]issues.Row, 0, len(values)-1)
	for i, raw := range values[1:] {
		cells := cellStrings(raw)
		fields := make(map[string]string, len(columns))
		for col, name := range header {
			if name == "" {
				continue
			}
			if _, dup := fields[name]; dup {
				continue
			}
			v := ""
			if col < len(cells) {
				v = cells[col]
			}
			fields[name] = v
		}
		rows = append(rows, issues.Row{
			ID:      fmt.Sprintf("row-%d", i+2),
			Columns: columns,
			Fields:  fields,
		})
	}
	return rows
}

func cellStrings(raw []interface{}) []string {
	out := make([]string, len(raw))
	for i, v := range raw {
		if v == nil {
			continue
		}
		out[i] = fmt.Sprint(v)
	}
	return out
}

// headerNames returns the header cells with surrounding space removed.
func headerNames(raw []interface{}) []string {
	names := cellStrings(raw)
	for i := range names {
		names[i] = strings.TrimSpace(names[i])
	}
	return names
}

// sheetRange builds an A1 range, quoting the sheet name.
func sheetRange(sheetName, cells string) string {
	if sheetName == "" {
		sheetName = constants.DefaultSheetName
	}
	r := "'" + strings.ReplaceAll(sheetName, "'", "''") + "'"
	if cells != "" {
		r += "!" + cells
	}
	return r
}

func convertError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		msg := gerr.Message
		if msg == "" {
			msg = http.StatusText(gerr.Code)
		}
		return &errors.APIError{Service: "sheets", StatusCode: gerr.Code, Message: msg, Err: err}
	}
	return errors.WrapAPI("sheets", 0, err)
}
