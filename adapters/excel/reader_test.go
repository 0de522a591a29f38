package excel

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadCSV(t *testing.T) {
	src := "\ufeffId, Neighborhood ,SalePrice\n1,CollgCr,208500\n\n2,Veenker,181500\n"
	data, err := NewDataReader("train.csv").ReadCSV(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, []string{"Id", "Neighborhood", "SalePrice"}, data.Headers)
	require.Len(t, data.Rows, 2)
	assert.Equal(t, "Veenker", data.Rows[1]["Neighborhood"])
	assert.Equal(t, []string{"208500", "181500"}, data.Column("SalePrice"))
	assert.True(t, data.HasColumn("Id"))
	assert.False(t, data.HasColumn("GrLivArea"))
}

func TestReadCSVRequiresDataRow(t *testing.T) {
	_, err := NewDataReader("x.csv").ReadCSV(strings.NewReader("Id,SalePrice\n"))
	assert.Error(t, err)
}

func TestReadDataXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"GrLivArea", "Neighborhood"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{1500, "CollgCr"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	data, err := NewDataReader(path).ReadData()
	require.NoError(t, err)
	require.Len(t, data.Rows, 1)
	assert.Equal(t, "1500", data.Rows[0]["GrLivArea"])
}

func TestReadDataMissingFile(t *testing.T) {
	_, err := NewDataReader(filepath.Join(os.TempDir(), "does-not-exist.csv")).ReadData()
	assert.Error(t, err)
}
