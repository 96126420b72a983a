package excel

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"gocit/internal/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReadCSV(t *testing.T) {
	path := writeFile(t, "series.csv", "a, b\n1,2\n3,4\n5,6\n")
	df, headers, err := NewDataReader(path, nil).ReadFrame(ReadOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, headers)
	T, N := df.Dims()
	assert.Equal(t, 3, T)
	assert.Equal(t, 2, N)
	assert.Equal(t, 6.0, df.Values.At(2, 1))
	assert.Nil(t, df.Mask)
}

func TestReadCSVMissingCells(t *testing.T) {
	path := writeFile(t, "gaps.csv", "a,b\n1,\nx,4\n5\n")

	df, _, err := NewDataReader(path, nil).ReadFrame(ReadOptions{})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(df.Values.At(0, 1)))
	assert.True(t, math.IsNaN(df.Values.At(1, 0)))
	assert.True(t, math.IsNaN(df.Values.At(2, 1)))

	df, _, err = NewDataReader(path, nil).ReadFrame(ReadOptions{MaskMissing: true})
	require.NoError(t, err)
	require.NotNil(t, df.Mask)
	assert.True(t, df.Mask.At(0, 1))
	assert.True(t, df.Mask.At(1, 0))
	assert.False(t, df.Mask.At(1, 1))
	assert.Equal(t, 0.0, df.Values.At(0, 1))
}

func TestReadCSVRejectsBadFiles(t *testing.T) {
	_, _, err := NewDataReader(filepath.Join(t.TempDir(), "none.csv"), nil).ReadFrame(ReadOptions{})
	assert.True(t, errors.IsInvalidConfig(err))

	_, _, err = NewDataReader(writeFile(t, "header.csv", "a,b\n"), nil).ReadFrame(ReadOptions{})
	assert.True(t, errors.IsInvalidConfig(err))

	_, _, err = NewDataReader(writeFile(t, "wide.csv", "a\n1,2\n"), nil).ReadFrame(ReadOptions{})
	assert.True(t, errors.IsInvalidConfig(err))
}

func TestReadExcel(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"x", "y"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{1.5, 2}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{-1, 0.25}))
	path := filepath.Join(t.TempDir(), "series.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	df, headers, err := NewDataReader(path, nil).ReadFrame(ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, headers)
	assert.Equal(t, 1.5, df.Values.At(0, 0))
	assert.Equal(t, 0.25, df.Values.At(1, 1))
}
