// Package output renders command results as a table, JSON or YAML.
package output

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// FormatType selects the rendering of command output.
type FormatType string

const (
	FormatTable FormatType = "table"
	FormatJSON  FormatType = "json"
	FormatYAML  FormatType = "yaml"
)

// TableData is the tabular shape list commands hand to the formatter. The
// JSON and YAML formatters ignore it and render the raw records instead.
type TableData struct {
	Headers []string
	Rows    [][]string
}

// Formatter renders a command result. For the table format data should be a
// *TableData; the structured formats marshal whatever they are given.
type Formatter interface {
	Format(data any) (string, error)
}

// New returns the formatter for the given format name.
func New(format FormatType) (Formatter, error) {
	switch format {
	case FormatTable, "":
		return &TableFormatter{}, nil
	case FormatJSON:
		return &JSONFormatter{Pretty: true}, nil
	case FormatYAML:
		return &YAMLFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// TableFormatter renders aligned plain-text tables.
type TableFormatter struct{}

func (f *TableFormatter) Format(data any) (string, error) {
	td, ok := data.(*TableData)
	if !ok {
		return fmt.Sprintf("%v", data), nil
	}
	if len(td.Rows) == 0 {
		return "No data found", nil
	}

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, strings.Join(td.Headers, "\t"))

	seps := make([]string, len(td.Headers))
	for i, h := range td.Headers {
		seps[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(w, strings.Join(seps, "\t"))

	for _, row := range td.Rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}

	if err := w.Flush(); err != nil {
		return "", err
	}
	return b.String(), nil
}

// JSONFormatter marshals the result as JSON.
type JSONFormatter struct {
	Pretty bool
}

func (f *JSONFormatter) Format(data any) (string, error) {
	var out []byte
	var err error
	if f.Pretty {
		out, err = json.MarshalIndent(data, "", "  ")
	} else {
		out, err = json.Marshal(data)
	}
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(out), nil
}

// YAMLFormatter marshals the result as YAML.
type YAMLFormatter struct{}

func (f *YAMLFormatter) Format(data any) (string, error) {
	out, err := yaml.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return strings.TrimRight(string(out), "\n"), nil
}
