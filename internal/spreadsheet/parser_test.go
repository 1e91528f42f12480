package spreadsheet_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"fireenrich/internal/domain"
	"fireenrich/internal/spreadsheet"
)

func TestParser_Parse_CSV_Success(t *testing.T) {
	p := spreadsheet.NewParser(0)
	data := "name,email,company\nAda,ada@acme.io,Acme\nBob,bob@globex.com,Globex\n"

	input, err := p.Parse("contacts.csv", strings.NewReader(data))

	require.NoError(t, err)
	assert.Equal(t, []string{"name", "email", "company"}, input.Columns)
	require.Len(t, input.Rows, 2)
	assert.Equal(t, "ada@acme.io", input.Rows[0]["email"])
	assert.Equal(t, "Globex", input.Rows[1]["company"])
}

func TestParser_Parse_CSV_StripsBOMAndPadsShortRows(t *testing.T) {
	p := spreadsheet.NewParser(0)
	data := "\xEF\xBB\xBFname,email\nAda\n"

	input, err := p.Parse("contacts.CSV", strings.NewReader(data))

	require.NoError(t, err)
	assert.Equal(t, []string{"name", "email"}, input.Columns)
	require.Len(t, input.Rows, 1)
	assert.Equal(t, "", input.Rows[0]["email"])
}

func TestParser_Parse_CSV_NormalizesHeader(t *testing.T) {
	p := spreadsheet.NewParser(0)
	data := " email ,,email,name,,\na@x.io,1,b@x.io,Ann,,\n"

	input, err := p.Parse("c.csv", strings.NewReader(data))

	require.NoError(t, err)
	assert.Equal(t, []string{"email", "column_2", "email_2", "name"}, input.Columns)
	assert.Equal(t, "b@x.io", input.Rows[0]["email_2"])
}

func TestParser_Parse_CSV_SkipsBlankRows(t *testing.T) {
	p := spreadsheet.NewParser(0)
	data := "email\n\n , \na@x.io\n"

	input, err := p.Parse("c.csv", strings.NewReader(data))

	require.NoError(t, err)
	assert.Len(t, input.Rows, 1)
}

func TestParser_Parse_HeaderOnly(t *testing.T) {
	p := spreadsheet.NewParser(0)

	_, err := p.Parse("c.csv", strings.NewReader("email,name\n"))

	assert.ErrorIs(t, err, domain.ErrEmptyInput)
}

func TestParser_Parse_EmptyFile(t *testing.T) {
	p := spreadsheet.NewParser(0)

	_, err := p.Parse("c.csv", strings.NewReader(""))

	assert.ErrorIs(t, err, domain.ErrEmptyInput)
}

func TestParser_Parse_TooManyRows(t *testing.T) {
	p := spreadsheet.NewParser(1)

	_, err := p.Parse("c.csv", strings.NewReader("email\na@x.io\nb@x.io\n"))

	assert.ErrorIs(t, err, domain.ErrTooManyRows)
}

func TestParser_Parse_UnsupportedExtension(t *testing.T) {
	p := spreadsheet.NewParser(0)

	_, err := p.Parse("contacts.pdf", strings.NewReader("%PDF-1.4"))

	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}

func TestParser_Parse_XLSX_Success(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Name", "Email"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"Ada", "ada@acme.io"}))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	p := spreadsheet.NewParser(0)
	input, err := p.Parse("contacts.xlsx", &buf)

	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Email"}, input.Columns)
	require.Len(t, input.Rows, 1)
	assert.Equal(t, "ada@acme.io", input.Rows[0]["Email"])
}

func TestParser_Parse_XLSX_Corrupt(t *testing.T) {
	p := spreadsheet.NewParser(0)

	_, err := p.Parse("contacts.xlsx", strings.NewReader("not a zip"))

	assert.ErrorIs(t, err, domain.ErrParseFailed)
}

func TestParser_Parse_CSV_SuffixDoesNotCollideWithLaterHeader(t *testing.T) {
	p := spreadsheet.NewParser(0)
	data := "email,email,email_2\nx@a.com,y@b.com,z@c.com\n"

	input, err := p.Parse("c.csv", strings.NewReader(data))

	require.NoError(t, err)
	assert.Equal(t, []string{"email", "email_2", "email_2_2"}, input.Columns)
	assert.Equal(t, "x@a.com", input.Rows[0]["email"])
	assert.Equal(t, "y@b.com", input.Rows[0]["email_2"])
	assert.Equal(t, "z@c.com", input.Rows[0]["email_2_2"])
}

func TestParser_Parse_CSV_BlankHeaderCollidesWithLiteral(t *testing.T) {
	p := spreadsheet.NewParser(0)

	input, err := p.Parse("c.csv", strings.NewReader(",column_1\n1,2\n"))

	require.NoError(t, err)
	assert.Equal(t, []string{"column_1", "column_1_2"}, input.Columns)
	assert.Equal(t, "1", input.Rows[0]["column_1"])
	assert.Equal(t, "2", input.Rows[0]["column_1_2"])
}

func TestParser_Parse_CSV_LiteralBeforeBlankHeader(t *testing.T) {
	p := spreadsheet.NewParser(0)

	input, err := p.Parse("c.csv", strings.NewReader("column_2,,x\na,b,c\n"))

	require.NoError(t, err)
	assert.Equal(t, []string{"column_2", "column_2_2", "x"}, input.Columns)
	assert.Len(t, input.Rows[0], 3)
}
