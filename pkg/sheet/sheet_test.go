package sheet

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
	data := "\ufeffEmployee_Number, Work_City \n1, Redlands\n\n2\n"
	tbl, err := ReadCSV(strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, []string{"Employee_Number", "Work_City"}, tbl.Headers)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "Redlands", tbl.Rows[0]["Work_City"])
	assert.Equal(t, "", tbl.Rows[1]["Work_City"])
	assert.Equal(t, []int{2, 3}, tbl.Lines)
}

func TestReadCSVEmpty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.Error(t, err)
}

func TestRequire(t *testing.T) {
	tbl := &Table{Headers: []string{"a", "b"}}
	assert.NoError(t, tbl.Require("a", "b"))
	err := tbl.Require("a", "c", "d")
	require.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), "c, d")
}

func TestReadWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.xlsx")
	f := excelize.NewFile()
	_, err := f.NewSheet("Roster")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Roster", "A1", &[]any{"Employee_Number", "Home_Zip"}))
	require.NoError(t, f.SetSheetRow("Roster", "A2", &[]any{1001, "92373"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	tbl, err := Read(path, "Roster")
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "1001", tbl.Rows[0]["Employee_Number"])
	assert.Equal(t, "92373", tbl.Rows[0]["Home_Zip"])

	// Sheet1 is first and empty.
	_, err = Read(path, "")
	assert.Error(t, err)

	_, err = Read(path, "Missing")
	assert.Error(t, err)
}

func TestReadUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.pdf")
	require.NoError(t, writeFile(path, "x"))
	_, err := Read(path, "")
	assert.Error(t, err)

	_, err = Read(filepath.Join(t.TempDir(), "none.csv"), "")
	assert.Error(t, err)
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o600)
}
