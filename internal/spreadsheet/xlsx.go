package spreadsheet

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"fireenrich/internal/domain"
)

func init() {
	RegisterFormat(domain.FileTypeXLSX, readXLSX)
}

// readXLSX reads the first sheet of a workbook.
func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}
