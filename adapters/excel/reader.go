package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"perifuse/domain/core"
	"perifuse/domain/perifusion"
	"perifuse/internal/traits"
)

// DataReader loads secretion input tables from Excel or CSV files.
type DataReader struct {
	cfg      ReaderConfig
	fileType string // "xlsx" or "csv"
}

// NewDataReader creates a reader for the file named in the config; the
// format is chosen by extension, defaulting to xlsx.
func NewDataReader(cfg ReaderConfig) *DataReader {
	fileType := "xlsx"
	if strings.ToLower(filepath.Ext(cfg.FilePath)) == ".csv" {
		fileType = "csv"
	}
	return &DataReader{cfg: cfg, fileType: fileType}
}

// ReadColumns reads a single-header table: one header row naming the time
// column and the donors, then numeric rows. Non-numeric and empty cells
// become missing values.
func (r *DataReader) ReadColumns() ([]traits.Column, error) {
	rows, err := r.readRows()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, core.NewSchemaError("input", "need a header row and at least one data row")
	}

	header := rows[0]
	columns := make([]traits.Column, len(header))
	for i, name := range header {
		columns[i] = traits.Column{Name: strings.TrimSpace(name)}
	}
	for _, row := range rows[1:] {
		for i := range columns {
			columns[i].Values = append(columns[i].Values, cellValue(row, i))
		}
	}
	return columns, nil
}

// ReadUnitTables reads a report sheet with a two-row header: donor names on
// the first row, unit labels on the second. It returns one table per unit
// label, each carrying its own copy of the time column, so traits can be
// extracted per unit (e.g. secretion per IEQ vs. percent of content).
func (r *DataReader) ReadUnitTables() (map[string][]traits.Column, error) {
	rows, err := r.readRows()
	if err != nil {
		return nil, err
	}
	if len(rows) < 3 {
		return nil, core.NewSchemaError("input", "unit-header report needs two header rows and data")
	}

	names, units := rows[0], rows[1]
	timeIdx := -1
	for i, name := range names {
		if strings.Contains(strings.ToLower(name), "time") {
			if timeIdx >= 0 {
				return nil, fmt.Errorf("%w: %q and %q", core.ErrAmbiguousTime, names[timeIdx], name)
			}
			timeIdx = i
		}
	}
	if timeIdx < 0 {
		return nil, core.ErrNoTimeColumn
	}

	timeCol := traits.Column{Name: strings.TrimSpace(names[timeIdx])}
	for _, row := range rows[2:] {
		timeCol.Values = append(timeCol.Values, cellValue(row, timeIdx))
	}

	tables := make(map[string][]traits.Column)
	for i, name := range names {
		if i == timeIdx || strings.TrimSpace(name) == "" {
			continue
		}
		unit := ""
		if i < len(units) {
			unit = strings.TrimSpace(units[i])
		}
		if unit == "" {
			continue
		}
		if _, ok := tables[unit]; !ok {
			tables[unit] = []traits.Column{timeCol}
		}
		col := traits.Column{Name: strings.TrimSpace(name)}
		for _, row := range rows[2:] {
			col.Values = append(col.Values, cellValue(row, i))
		}
		tables[unit] = append(tables[unit], col)
	}
	if len(tables) == 0 {
		return nil, core.NewSchemaError("input", "no donor columns with unit labels found")
	}
	return tables, nil
}

func (r *DataReader) readRows() ([][]string, error) {
	if _, err := os.Stat(r.cfg.FilePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.cfg.FilePath)
	}

	var rows [][]string
	switch r.fileType {
	case "csv":
		file, err := os.Open(r.cfg.FilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open CSV file: %w", err)
		}
		defer file.Close()
		reader := csv.NewReader(file)
		reader.FieldsPerRecord = -1
		rows, err = reader.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV file: %w", err)
		}
	case "xlsx":
		f, err := excelize.OpenFile(r.cfg.FilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open Excel file: %w", err)
		}
		defer f.Close()
		rows, err = f.GetRows(r.cfg.sheet())
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", r.cfg.sheet(), err)
		}
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}

	if r.cfg.SkipRows >= len(rows) {
		return nil, core.NewSchemaError("input", fmt.Sprintf("skip of %d rows leaves no data", r.cfg.SkipRows))
	}
	return rows[r.cfg.SkipRows:], nil
}

// cellValue coerces one raw cell to an optional float. Short rows, blanks,
// and non-numeric text all read as missing.
func cellValue(row []string, i int) perifusion.Value {
	if i >= len(row) {
		return perifusion.Missing
	}
	text := strings.TrimSpace(row[i])
	if text == "" {
		return perifusion.Missing
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(text, ",", ""), 64)
	if err != nil {
		return perifusion.Missing
	}
	return perifusion.Some(f)
}
