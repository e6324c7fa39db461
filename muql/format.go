package muql

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
)

// Format is an output rendering for QueryResult, per the `mu query` command
// of spec §6.1.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
)

// Render writes r in the requested format.
func (r *QueryResult) Render(format Format) (string, error) {
	switch format {
	case FormatJSON:
		return r.renderJSON()
	case FormatCSV:
		return r.renderCSV()
	default:
		return r.renderTable(), nil
	}
}

func (r *QueryResult) renderJSON() (string, error) {
	out := make([]map[string]string, len(r.Rows))
	for i, row := range r.Rows {
		rec := make(map[string]string, len(r.Columns))
		for j, col := range r.Columns {
			if j < len(row) {
				rec[col] = row[j]
			}
		}
		out[i] = rec
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *QueryResult) renderCSV() (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write(r.Columns); err != nil {
		return "", err
	}
	for _, row := range r.Rows {
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (r *QueryResult) renderTable() string {
	widths := make([]int, len(r.Columns))
	for i, c := range r.Columns {
		widths[i] = len(c)
	}
	for _, row := range r.Rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		for i, w := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			fmt.Fprintf(&sb, "%-*s  ", w, cell)
		}
		sb.WriteString("\n")
	}
	writeRow(r.Columns)
	for _, w := range widths {
		sb.WriteString(strings.Repeat("-", w))
		sb.WriteString("  ")
	}
	sb.WriteString("\n")
	for _, row := range r.Rows {
		writeRow(row)
	}
	return sb.String()
}
