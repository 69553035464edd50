package api

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"perifuse/adapters/excel"
	"perifuse/app"
	"perifuse/domain/core"
	"perifuse/domain/perifusion"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleExtract accepts a multipart form with an "input" file (xlsx or csv)
// and a "params" CSV file, runs extraction, and returns the trait table.
// Format is chosen by the "format" query parameter: csv (default) or json.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid multipart form: %w", err))
		return
	}

	tmpDir, err := os.MkdirTemp("", "perifuse-extract-")
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	defer os.RemoveAll(tmpDir)

	inputPath, err := saveUpload(r, "input", tmpDir)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	paramPath, err := saveUpload(r, "params", tmpDir)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	skipRows := 0
	if v := r.FormValue("skip_rows"); v != "" {
		if skipRows, err = strconv.Atoi(v); err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("skip_rows is not an integer: %q", v))
			return
		}
	}

	req := app.ExtractRequest{
		Input: excel.ReaderConfig{
			FilePath: inputPath,
			Sheet:    r.FormValue("sheet"),
			SkipRows: skipRows,
			UnitRow:  r.FormValue("unit_row") == "true",
		},
		ParameterFile: paramPath,
		Prefix:        r.FormValue("prefix"),
	}

	result, err := s.service.Run(r.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		if core.IsFatal(err) {
			status = http.StatusUnprocessableEntity
		}
		s.writeError(w, status, err)
		return
	}

	if r.URL.Query().Get("format") == "json" {
		s.writeJSONTable(w, result)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("X-Run-ID", result.RunID.String())
	if err := excel.WriteTraitTable(w, result.Table); err != nil {
		s.log.Error("writing CSV response: %v", err)
	}
}

func (s *Server) writeJSONTable(w http.ResponseWriter, result *app.ExtractResult) {
	rows := make([]map[string]perifusion.Value, 0, len(result.Table.Donors))
	donorIDs := make([]string, 0, len(result.Table.Donors))
	for _, donor := range result.Table.Donors {
		donorIDs = append(donorIDs, donor)
		row := make(map[string]perifusion.Value, len(result.Table.Columns))
		for _, col := range result.Table.Columns {
			row[col] = result.Table.Get(donor, col)
		}
		rows = append(rows, row)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"run_id":     result.RunID,
		"runtime_ms": result.RuntimeMs,
		"columns":    result.Columns,
		"donors":     donorIDs,
		"rows":       rows,
	})
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.log.Warn("request failed: %v", err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

// saveUpload copies one multipart file into dir, preserving its extension so
// the reader can pick a format.
func saveUpload(r *http.Request, field, dir string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", fmt.Errorf("missing %q file: %w", field, err)
	}
	defer file.Close()
	return copyUpload(file, header, dir, field)
}

func copyUpload(file multipart.File, header *multipart.FileHeader, dir, field string) (string, error) {
	ext := filepath.Ext(header.Filename)
	if ext == "" {
		ext = ".csv"
	}
	path := filepath.Join(dir, field+ext)
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer out.Close()
	if _, err := io.Copy(out, file); err != nil {
		return "", fmt.Errorf("saving %q upload: %w", field, err)
	}
	return path, nil
}
