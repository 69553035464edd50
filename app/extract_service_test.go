package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perifuse/adapters/excel"
	"perifuse/internal"
)

const paramsCSV = "PeakName,PeakRange,BaselineTime,MinHeightRatio,MinPeakLength,BaselineOrPeak,NegativePeak,CalculateSIorII\n" +
	"Basal Secretion,3-9,3-9,0,0,Baseline,False,False\n"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExtractService_Run(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "input.csv",
		"Time,HPAP-077\n3,0.5\n6,0.6\n9,0.7\n")
	params := writeFile(t, dir, "params.csv", paramsCSV)

	service := NewExtractService(nil, internal.NewLogger(internal.LogLevelError))
	result, err := service.Run(context.Background(), ExtractRequest{
		Input:         excel.ReaderConfig{FilePath: input},
		ParameterFile: params,
		Prefix:        "INS-IEQ",
	})
	require.NoError(t, err)

	assert.False(t, result.RunID.String() == "")
	assert.Equal(t, []string{"INS-IEQ Basal Secretion"}, result.Columns)
	basal, ok := result.Table.Get("HPAP-077", "INS-IEQ Basal Secretion").Float()
	require.True(t, ok)
	assert.InDelta(t, 0.6, basal, 1e-9)
}

func TestExtractService_UnitReportMergesPerUnit(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "report.csv",
		"Time,Donor A,Donor A\n"+
			",ng/100 IEQ/min,% content/min\n"+
			"3,0.5,1.0\n6,0.6,1.1\n9,0.7,1.2\n")
	params := writeFile(t, dir, "params.csv", paramsCSV)

	service := NewExtractService(nil, internal.NewLogger(internal.LogLevelError))
	result, err := service.Run(context.Background(), ExtractRequest{
		Input:         excel.ReaderConfig{FilePath: input, UnitRow: true},
		ParameterFile: params,
		Prefix:        "INS",
	})
	require.NoError(t, err)

	// Units merge in sorted label order.
	assert.Equal(t, []string{
		"INS % content/min Basal Secretion",
		"INS ng/100 IEQ/min Basal Secretion",
	}, result.Columns)

	content, ok := result.Table.Get("Donor A", "INS % content/min Basal Secretion").Float()
	require.True(t, ok)
	assert.InDelta(t, 1.1, content, 1e-9)
}

func TestExtractService_RelabelsDonors(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "input.csv", "Time,RRID-1\n3,0.5\n6,0.6\n9,0.7\n")
	params := writeFile(t, dir, "params.csv", paramsCSV)

	service := NewExtractService(nil, internal.NewLogger(internal.LogLevelError))
	result, err := service.Run(context.Background(), ExtractRequest{
		Input:         excel.ReaderConfig{FilePath: input},
		ParameterFile: params,
		AliasColumn:   "HPAP ID",
		Aliases:       map[string]string{"RRID-1": "HPAP-001"},
	})
	require.NoError(t, err)
	assert.Equal(t, "HPAP-001", result.Table.Aliases["RRID-1"])
}
