package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"perifuse/domain/core"
	"perifuse/domain/perifusion"
)

// requiredParamColumns is the full header contract of a parameter table.
var requiredParamColumns = []string{
	"PeakName", "PeakRange", "BaselineTime", "MinHeightRatio", "MinPeakLength",
	"BaselineOrPeak", "NegativePeak", "CalculateSIorII",
}

// LoadPhaseDefinitions reads a parameter CSV file into phase definitions,
// one per row, in file order. Header and cell defects are fatal: a parameter
// table is an experiment design artifact and a malformed one aborts the run.
func LoadPhaseDefinitions(path string) ([]perifusion.PhaseDefinition, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parameter file: %w", err)
	}
	defer file.Close()
	return ParsePhaseDefinitions(file)
}

// ParsePhaseDefinitions parses parameter rows from delimited text.
func ParsePhaseDefinitions(r io.Reader) ([]perifusion.PhaseDefinition, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read parameter table: %w", err)
	}
	if len(records) == 0 {
		return nil, core.NewSchemaError("parameter", "empty table")
	}

	colIdx, err := paramHeaderIndex(records[0])
	if err != nil {
		return nil, err
	}

	defs := make([]perifusion.PhaseDefinition, 0, len(records)-1)
	for n, row := range records[1:] {
		def, err := parsePhaseRow(row, colIdx)
		if err != nil {
			return nil, fmt.Errorf("parameter row %d: %w", n+1, err)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func paramHeaderIndex(header []string) (map[string]int, error) {
	colIdx := make(map[string]int, len(header))
	for i, name := range header {
		colIdx[strings.TrimSpace(name)] = i
	}
	var missing []string
	for _, name := range requiredParamColumns {
		if _, ok := colIdx[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, core.NewSchemaError("parameter", "missing required columns: "+strings.Join(missing, ", "))
	}
	return colIdx, nil
}

func parsePhaseRow(row []string, colIdx map[string]int) (perifusion.PhaseDefinition, error) {
	cell := func(name string) string {
		i := colIdx[name]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var def perifusion.PhaseDefinition
	var err error

	def.Name = cell("PeakName")
	if def.Name == "" {
		return def, core.NewSchemaError("parameter", "PeakName is empty")
	}

	def.Kind, err = perifusion.ParsePhaseKind(cell("BaselineOrPeak"))
	if err != nil {
		return def, err
	}

	def.BaselineTime, err = perifusion.ParseTimeSpec(cell("BaselineTime"))
	if err != nil {
		return def, err
	}
	def.PeakRange, err = perifusion.ParseTimeSpec(cell("PeakRange"))
	if err != nil {
		return def, err
	}

	def.MinHeightRatio, err = strconv.ParseFloat(cell("MinHeightRatio"), 64)
	if err != nil {
		return def, core.NewSchemaError("parameter", fmt.Sprintf("MinHeightRatio %q is not a number", cell("MinHeightRatio")))
	}
	if def.MinHeightRatio < 0 || def.MinHeightRatio > 1 {
		return def, core.NewSchemaError("parameter", fmt.Sprintf("MinHeightRatio %v outside [0,1]", def.MinHeightRatio))
	}

	def.MinPeakLength, err = strconv.Atoi(cell("MinPeakLength"))
	if err != nil || def.MinPeakLength < 0 {
		return def, core.NewSchemaError("parameter", fmt.Sprintf("MinPeakLength %q is not a non-negative integer", cell("MinPeakLength")))
	}

	def.Negative, err = parseBool(cell("NegativePeak"))
	if err != nil {
		return def, core.NewSchemaError("parameter", fmt.Sprintf("NegativePeak %q is not a boolean", cell("NegativePeak")))
	}
	def.ComputeIndex, err = parseBool(cell("CalculateSIorII"))
	if err != nil {
		return def, core.NewSchemaError("parameter", fmt.Sprintf("CalculateSIorII %q is not a boolean", cell("CalculateSIorII")))
	}

	return def, nil
}

// parseBool accepts the spellings that appear in parameter files exported
// from spreadsheets: True/False in any case, plus 1/0.
func parseBool(s string) (bool, error) {
	return strconv.ParseBool(strings.ToLower(s))
}
