package csvexport

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"fireenrich/internal/domain"
)

func sampleTable() *Table {
	input := &domain.TabularInput{
		Columns: []string{"name", "email"},
		Rows: []domain.Row{
			{"name": "Ada", "email": "ada@acme.io"},
			{"name": "Bob", "email": "bob@gmail.com"},
		},
	}
	fields := []domain.EnrichmentField{
		{Name: "industry", DisplayName: "Industry"},
		{Name: "employees"},
		{Name: "public"},
		{Name: "products"},
	}
	results := []domain.RowResult{
		{
			Index:  0,
			Status: domain.RowStatusCompleted,
			Fields: map[string]domain.FieldValue{
				"industry":  {Value: "Aerospace"},
				"employees": {Value: float64(250)},
				"public":    {Value: true},
				"products":  {Value: []interface{}{"Rockets", "Boosters"}},
			},
		},
		{Index: 1, Status: domain.RowStatusSkipped},
	}
	return BuildTable(input, fields, results)
}

func TestBuildTable(t *testing.T) {
	table := sampleTable()

	assert.Equal(t, []string{"name", "email", "Industry", "employees", "public", "products"}, table.Header)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"Ada", "ada@acme.io", "Aerospace", "250", "Yes", "Rockets; Boosters"}, table.Rows[0])
	assert.Equal(t, []string{"Bob", "bob@gmail.com", "", "", "", ""}, table.Rows[1])
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleTable()))

	data := buf.Bytes()
	require.True(t, bytes.HasPrefix(data, BOM))

	records, err := csv.NewReader(bytes.NewReader(data[len(BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Industry", records[0][2])
	assert.Equal(t, "Rockets; Boosters", records[1][5])
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleTable()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Industry", rows[0][2])
	assert.Equal(t, "Aerospace", rows[1][2])
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "", FormatValue(nil))
	assert.Equal(t, "3.5", FormatValue(3.5))
	assert.Equal(t, "No", FormatValue(false))
	assert.Equal(t, `{"city":"Paris"}`, FormatValue(map[string]interface{}{"city": "Paris"}))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "Q3_leads_list", SanitizeFilename("Q3 leads / list"))
	assert.Equal(t, "a_b", SanitizeFilename("__a!!!b__"))
}

func TestBuildFilename(t *testing.T) {
	date := time.Now().Format("2006-01-02")

	assert.Equal(t, "leads_"+date+".csv", BuildFilename("leads", "csv"))
	assert.Equal(t, "enriched_"+date+".xlsx", BuildFilename("***", "xlsx"))
}
