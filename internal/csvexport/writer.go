package csvexport

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"fireenrich/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// Table is an enriched spreadsheet ready to be written out: the uploaded
// columns followed by one column per selected field.
type Table struct {
	Header []string
	Rows   [][]string
}

// BuildTable lays out input rows with their enrichment results. Rows without
// a result keep empty field cells.
func BuildTable(input *domain.TabularInput, fields []domain.EnrichmentField, results []domain.RowResult) *Table {
	header := make([]string, 0, len(input.Columns)+len(fields))
	header = append(header, input.Columns...)
	for _, f := range fields {
		header = append(header, f.Label())
	}

	byIndex := make(map[int]*domain.RowResult, len(results))
	for i := range results {
		byIndex[results[i].Index] = &results[i]
	}

	rows := make([][]string, 0, len(input.Rows))
	for i, r := range input.Rows {
		row := make([]string, len(header))
		for c, col := range input.Columns {
			row[c] = r[col]
		}
		if res, ok := byIndex[i]; ok {
			for j, f := range fields {
				if v, ok := res.Fields[f.Name]; ok {
					row[len(input.Columns)+j] = FormatValue(v.Value)
				}
			}
		}
		rows = append(rows, row)
	}
	return &Table{Header: header, Rows: rows}
}

// Writer wraps csv.Writer for exporting an enriched table as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteTable writes the header row followed by every data row.
func (w *Writer) WriteTable(t *Table) error {
	if err := w.csv.Write(t.Header); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := w.csv.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// WriteCSV writes the BOM and the whole table to out.
func WriteCSV(out io.Writer, t *Table) error {
	if _, err := out.Write(BOM); err != nil {
		return err
	}
	w := NewWriter(out)
	if err := w.WriteTable(t); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// FormatValue renders an extracted value as a single cell.
func FormatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return formatBool(val)
	case []interface{}:
		parts := make([]string, 0, len(val))
		for _, p := range val {
			parts = append(parts, FormatValue(p))
		}
		return strings.Join(parts, "; ")
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}

func formatBool(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for Content-Disposition header.
// Format: {sanitized_name}_{YYYY-MM-DD}.{ext}
func BuildFilename(name, ext string) string {
	sanitized := SanitizeFilename(name)
	if sanitized == "" {
		sanitized = "enriched"
	}
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_%s.%s", sanitized, date, ext)
}
