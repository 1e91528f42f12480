package spreadsheet

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"io"

	"fireenrich/internal/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func init() {
	RegisterFormat(domain.FileTypeCSV, readCSV)
}

func readCSV(r io.Reader) ([][]string, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	return cr.ReadAll()
}
