package excel

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"gonum.org/v1/gonum/mat"

	"gocit/domain/dataset"
	"gocit/internal"
	"gocit/internal/errors"
)

// DataReader reads (T, N) time series from Excel or CSV files. The first row
// holds variable names, every further row one time step.
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	logger   *internal.Logger
}

// NewDataReader creates a reader; the file type follows the extension
func NewDataReader(filePath string, logger *internal.Logger) *DataReader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	fileType := "xlsx"
	if strings.ToLower(filepath.Ext(filePath)) == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType, logger: logger}
}

// ReadFrame reads the file into a data frame and returns the column headers
func (r *DataReader) ReadFrame(opts ReadOptions) (*dataset.DataFrame, []string, error) {
	table, err := r.readTable(opts)
	if err != nil {
		return nil, nil, err
	}
	return table.Frame(opts.MaskMissing)
}

func (r *DataReader) readTable(opts ReadOptions) (*Table, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, errors.InvalidConfig("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	start := time.Now()
	var rows [][]string
	var err error
	switch r.fileType {
	case "csv":
		rows, err = r.readCSV()
	default:
		rows, err = r.readExcel(opts.Sheet)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, errors.InvalidConfig("%s file must have a header row and at least one data row", strings.ToUpper(r.fileType))
	}
	r.logger.Debug("%s file %s read in %.2fms (%d rows)", r.fileType, r.filePath, float64(time.Since(start).Nanoseconds())/1e6, len(rows)-1)

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}
	return &Table{Headers: headers, Rows: rows[1:]}, nil
}

func (r *DataReader) readExcel(sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, errors.Wrapf(errors.InvalidConfig("cannot open %q", r.filePath), "failed to open Excel file: %v", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(errors.InvalidConfig("cannot read sheet %q", sheet), "failed to read sheet: %v", err)
	}
	return rows, nil
}

func (r *DataReader) readCSV() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, errors.Wrapf(errors.InvalidConfig("cannot open %q", r.filePath), "failed to open CSV file: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(errors.InvalidConfig("cannot parse %q", r.filePath), "failed to read CSV file: %v", err)
	}
	return rows, nil
}

// Frame converts the string cells to a (T, N) frame. Short rows are padded
// with missing cells. Missing cells become NaN, or masked zeros when maskMissing is set.
func (t *Table) Frame(maskMissing bool) (*dataset.DataFrame, []string, error) {
	T, N := len(t.Rows), len(t.Headers)
	if N == 0 {
		return nil, nil, errors.InvalidConfig("no columns")
	}

	values := mat.NewDense(T, N, nil)
	var mask *dataset.Mask
	if maskMissing {
		mask = dataset.NewMask(T, N)
	}

	for i, row := range t.Rows {
		if len(row) > N {
			return nil, nil, errors.InvalidConfig("row %d has %d cells for %d columns", i+2, len(row), N)
		}
		for j := 0; j < N; j++ {
			v := math.NaN()
			if j < len(row) {
				v = parseCell(row[j])
			}
			if math.IsNaN(v) && maskMissing {
				mask.Set(i, j, true)
				v = 0
			}
			values.Set(i, j, v)
		}
	}

	df, err := dataset.NewDataFrame(values, mask)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build data frame: %w", err)
	}
	return df, t.Headers, nil
}

// parseCell returns NaN for empty or non-numeric cells
func parseCell(cell string) float64 {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
