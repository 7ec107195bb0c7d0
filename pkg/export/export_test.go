package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sample() Dataset {
	return Dataset{
		Title:   "Services 2024-2025",
		Headers: []string{"Enseignant", "Statut", "Heures"},
		Rows: [][]string{
			{"Dupont Marie", "MCF", "191"},
			{"Martin Paul", "", "12.5"},
		},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" XLSX ")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	_, err = ParseFormat("docx")
	assert.Error(t, err)
}

func TestCSVRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sample())
	require.NoError(t, err)
	assert.Equal(t, "Enseignant;Statut;Heures\nDupont Marie;MCF;191\nMartin Paul;;12.5\n", string(out))
}

func TestRenderRejectsRaggedRows(t *testing.T) {
	data := sample()
	data.Rows = append(data.Rows, []string{"only one"})
	for _, f := range []Format{FormatCSV, FormatPDF, FormatXLSX} {
		r, err := ForFormat(f)
		require.NoError(t, err)
		_, err = r.Render(data)
		assert.Error(t, err, f)
	}
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sample())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestXLSXRender(t *testing.T) {
	out, err := NewXLSXExporter().Render(sample())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue("Services", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Services 2024-2025", title)

	header, err := f.GetCellValue("Services", "A3")
	require.NoError(t, err)
	assert.Equal(t, "Enseignant", header)

	hours, err := f.GetCellValue("Services", "C4")
	require.NoError(t, err)
	assert.Equal(t, "191", hours)
}
