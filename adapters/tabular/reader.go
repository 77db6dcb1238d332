package tabular

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"mlpipe/domain/core"
	"mlpipe/domain/dataset"
	"mlpipe/internal"

	"github.com/xuri/excelize/v2"
)

// missingTokens are cell values read as missing, matching common CSV exports
var missingTokens = map[string]bool{
	"": true, "#N/A": true, "#N/A N/A": true, "#NA": true, "-NaN": true, "-nan": true,
	"<NA>": true, "N/A": true, "NA": true, "NULL": true, "NaN": true, "None": true,
	"n/a": true, "nan": true, "null": true,
}

// DataReader reads CSV and XLSX files into tables
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	logger   *internal.Logger
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "csv"
	if ext == ".xlsx" {
		fileType = "xlsx"
	}
	return &DataReader{
		filePath: filePath,
		fileType: fileType,
		logger:   internal.DefaultLogger.With("tabular"),
	}
}

// ReadTable reads the file and infers a kind per column
func (r *DataReader) ReadTable() (*dataset.Table, error) {
	r.logger.Debug("Starting to read %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s file %s", core.ErrNotFound, strings.ToUpper(r.fileType), r.filePath)
	}

	var rows [][]string
	var err error
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	case "xlsx":
		rows, err = r.readExcelRows()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("%w: %s has no header row", core.ErrEmptyDataset, r.filePath)
	}

	return r.processRows(rows)
}

// readExcelRows reads the first sheet
func (r *DataReader) readExcelRows() ([][]string, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	r.logger.Debug("Sheet %s read in %.2fms (%d rows)", sheet, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))
	return rows, nil
}

func (r *DataReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	startTime := time.Now()
	reader := csv.NewReader(file)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	r.logger.Debug("CSV file read in %.2fms (%d rows)", float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))
	return rows, nil
}

// processRows converts raw string rows into typed columns. A column is numeric
// when every present cell parses as a number, boolean when every present cell
// is True/False, categorical otherwise. An all-missing column is numeric.
func (r *DataReader) processRows(rows [][]string) (*dataset.Table, error) {
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.TrimSpace(header)
	}

	cells := make([][]string, len(headers))
	for j := range headers {
		cells[j] = make([]string, len(rows)-1)
	}
	for i := 1; i < len(rows); i++ {
		for j := range headers {
			// excelize trims trailing empty cells
			if j < len(rows[i]) {
				cells[j][i-1] = strings.TrimSpace(rows[i][j])
			}
		}
	}

	table := dataset.NewTable()
	for j, name := range headers {
		if err := table.Add(inferColumn(name, cells[j])); err != nil {
			return nil, err
		}
	}

	r.logger.Debug("%s file processed (%d columns, %d rows)",
		strings.ToUpper(r.fileType), table.Width(), table.Len())
	return table, nil
}

func inferColumn(name string, raw []string) *dataset.Column {
	numeric, boolean := true, true
	for _, v := range raw {
		if missingTokens[v] {
			continue
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			numeric = false
		}
		if _, ok := parseBool(v); !ok {
			boolean = false
		}
	}

	switch {
	case numeric:
		vals := make([]float64, len(raw))
		for i, v := range raw {
			if missingTokens[v] {
				vals[i] = math.NaN()
				continue
			}
			vals[i], _ = strconv.ParseFloat(v, 64)
		}
		return dataset.NewNumericColumn(name, vals)
	case boolean:
		vals := make([]float64, len(raw))
		for i, v := range raw {
			b, ok := parseBool(v)
			switch {
			case !ok:
				vals[i] = math.NaN()
			case b:
				vals[i] = 1
			}
		}
		return &dataset.Column{Name: name, Kind: dataset.KindBoolean, Num: vals}
	default:
		vals := make([]string, len(raw))
		for i, v := range raw {
			if !missingTokens[v] {
				vals[i] = v
			}
		}
		return dataset.NewCategoricalColumn(name, vals)
	}
}

func parseBool(v string) (bool, bool) {
	switch v {
	case "True", "true", "TRUE":
		return true, true
	case "False", "false", "FALSE":
		return false, true
	}
	return false, false
}

// ReadCSV is shorthand for NewDataReader(path).ReadTable()
func ReadCSV(path string) (*dataset.Table, error) {
	return NewDataReader(path).ReadTable()
}
