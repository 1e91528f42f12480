package spreadsheet

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"fireenrich/internal/domain"
)

// ReadFunc reads every record of a spreadsheet format, header row first.
type ReadFunc func(r io.Reader) ([][]string, error)

// registry of readers keyed by file type, populated by init() in each format file.
var readers = map[domain.FileType]ReadFunc{}

// RegisterFormat registers a reader for a file type.
func RegisterFormat(ft domain.FileType, fn ReadFunc) {
	readers[ft] = fn
}

// Parser implements port.SpreadsheetParser over the registered formats.
type Parser struct {
	maxRows int
}

// NewParser creates a Parser. maxRows <= 0 disables the row cap.
func NewParser(maxRows int) *Parser {
	return &Parser{maxRows: maxRows}
}

// Parse reads an uploaded spreadsheet into ordered rows and columns.
func (p *Parser) Parse(filename string, r io.Reader) (*domain.TabularInput, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	ft, ok := domain.AllowedExtensions[ext]
	if !ok {
		return nil, domain.ErrUnsupportedFileType
	}
	read, ok := readers[ft]
	if !ok {
		return nil, domain.ErrUnsupportedFileType
	}

	records, err := read(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrParseFailed, err)
	}
	return p.build(records)
}

func (p *Parser) build(records [][]string) (*domain.TabularInput, error) {
	if len(records) == 0 {
		return nil, domain.ErrEmptyInput
	}

	columns := normalizeHeader(records[0])
	rows := make([]domain.Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		if p.maxRows > 0 && len(rows) >= p.maxRows {
			return nil, domain.ErrTooManyRows
		}
		row := make(domain.Row, len(columns))
		for i, col := range columns {
			if i < len(rec) {
				row[col] = strings.TrimSpace(rec[i])
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}

	input := &domain.TabularInput{Rows: rows, Columns: columns}
	if input.IsEmpty() {
		return nil, domain.ErrEmptyInput
	}
	return input, nil
}

// normalizeHeader trims header cells, names blank ones column_N and
// suffixes duplicates with _2, _3, ... until every name is unique.
func normalizeHeader(header []string) []string {
	// Trailing blank header cells are spreadsheet padding, not columns.
	end := len(header)
	for end > 0 && strings.TrimSpace(header[end-1]) == "" {
		end--
	}

	used := make(map[string]bool, end)
	columns := make([]string, 0, end)
	for i := 0; i < end; i++ {
		base := strings.TrimSpace(header[i])
		if base == "" {
			base = "column_" + strconv.Itoa(i+1)
		}
		name := base
		for n := 2; used[name]; n++ {
			name = base + "_" + strconv.Itoa(n)
		}
		used[name] = true
		columns = append(columns, name)
	}
	return columns
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
