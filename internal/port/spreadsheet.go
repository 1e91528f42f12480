package port

import (
	"io"

	"fireenrich/internal/domain"
)

// SpreadsheetParser turns an uploaded file into rows and columns.
type SpreadsheetParser interface {
	Parse(filename string, r io.Reader) (*domain.TabularInput, error)
}
