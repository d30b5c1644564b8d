// Package output renders command results as tables, JSON or YAML.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Format is an output format name.
type Format string

// Output formats.
const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	// FormatWide is a table with every column.
	FormatWide Format = "wide"
)

// Formatter writes data in one format.
type Formatter interface {
	Format(w io.Writer, data any) error
}

// NewFormatter returns the formatter for format. Unknown formats render as
// a table.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: "  "}
	case FormatYAML:
		return &YAMLFormatter{}
	default:
		return &TableFormatter{}
	}
}

// IsTable reports whether format renders as a table.
func (f Format) IsTable() bool {
	return f == FormatTable || f == FormatWide || f == ""
}

// JSONFormatter writes indented JSON.
type JSONFormatter struct {
	Indent string
}

// Format implements Formatter.
func (f *JSONFormatter) Format(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	if f.Indent != "" {
		enc.SetIndent("", f.Indent)
	}
	return enc.Encode(data)
}

// YAMLFormatter writes YAML.
type YAMLFormatter struct{}

// Format implements Formatter.
func (f *YAMLFormatter) Format(w io.Writer, data any) error {
	out, err := yaml.MarshalWithOptions(data, yaml.Indent(2), yaml.IndentSequence(false))
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// Align is a column alignment.
type Align int

// Column alignments.
const (
	AlignDefault Align = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// Data is a prepared table.
type Data struct {
	Headers   []string
	Rows      [][]string
	Alignment []Align
}

// TableFormatter renders Data with tablewriter. Structs and slices of
// structs are converted through their json tags; anything else falls back
// to JSON.
type TableFormatter struct{}

// Format implements Formatter.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	switch v := data.(type) {
	case Data:
		return renderTable(w, v)
	case *Data:
		return renderTable(w, *v)
	}
	if d := reflectTable(data); d != nil {
		return renderTable(w, *d)
	}
	return (&JSONFormatter{Indent: "  "}).Format(w, data)
}

func renderTable(w io.Writer, data Data) error {
	config := tablewriter.Config{}
	if len(data.Alignment) > 0 {
		per := make([]tw.Align, len(data.Alignment))
		for i, a := range data.Alignment {
			switch a {
			case AlignLeft:
				per[i] = tw.AlignLeft
			case AlignCenter:
				per[i] = tw.AlignCenter
			case AlignRight:
				per[i] = tw.AlignRight
			default:
				per[i] = tw.Skip
			}
		}
		config.Header.Alignment = tw.CellAlignment{PerColumn: per}
		config.Row.Alignment = tw.CellAlignment{PerColumn: per}
	}

	table := tablewriter.NewTable(w, tablewriter.WithConfig(config))
	if len(data.Headers) > 0 {
		headers := make([]any, len(data.Headers))
		for i, h := range data.Headers {
			headers[i] = h
		}
		table.Header(headers...)
	}
	for _, row := range data.Rows {
		cells := make([]any, len(row))
		for i, c := range row {
			cells[i] = c
		}
		if err := table.Append(cells...); err != nil {
			return err
		}
	}
	return table.Render()
}

// DetectFormat returns the explicit format, or table on a terminal and JSON
// when stdout is piped.
func DetectFormat(explicit string) Format {
	if explicit != "" {
		return Format(strings.ToLower(explicit))
	}
	fd := os.Stdout.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return FormatTable
	}
	return FormatJSON
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	format := Format(strings.ToLower(s))
	switch format {
	case FormatTable, FormatJSON, FormatYAML, FormatWide, "":
		return format, nil
	default:
		return "", fmt.Errorf("invalid format %q: must be one of: table, json, yaml, wide", s)
	}
}

func reflectTable(data any) *Data {
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Pointer && !v.IsNil() {
		v = v.Elem()
	}
	switch {
	case v.Kind() == reflect.Slice && v.Len() > 0 && v.Index(0).Kind() == reflect.Struct:
		t := v.Index(0).Type()
		d := &Data{}
		for i := 0; i < t.NumField(); i++ {
			if name, ok := columnName(t.Field(i)); ok {
				d.Headers = append(d.Headers, name)
			}
		}
		for i := 0; i < v.Len(); i++ {
			d.Rows = append(d.Rows, cellsOf(v.Index(i)))
		}
		return d
	case v.Kind() == reflect.Struct:
		d := &Data{Headers: []string{"Property", "Value"}}
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			name, ok := columnName(t.Field(i))
			if !ok {
				continue
			}
			d.Rows = append(d.Rows, []string{name, fmt.Sprintf("%v", v.Field(i).Interface())})
		}
		return d
	}
	return nil
}

func cellsOf(v reflect.Value) []string {
	var cells []string
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if _, ok := columnName(t.Field(i)); ok {
			cells = append(cells, fmt.Sprintf("%v", v.Field(i).Interface()))
		}
	}
	return cells
}

// columnName title-cases the json tag of f. Unexported and json:"-" fields
// are skipped.
func columnName(f reflect.StructField) (string, bool) {
	if !f.IsExported() {
		return "", false
	}
	tag := f.Tag.Get("json")
	if tag == "-" {
		return "", false
	}
	if i := strings.Index(tag, ","); i >= 0 {
		tag = tag[:i]
	}
	if tag == "" {
		return f.Name, true
	}
	return cases.Title(language.English).String(strings.ReplaceAll(tag, "_", " ")), true
}
