package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perifuse/app"
	"perifuse/internal"
)

const testInputCSV = "Time,HPAP-077\n" +
	"3,0.5\n6,0.6\n9,0.7\n12,0.4\n15,0.3\n18,0.2\n21,0.2\n24,0.3\n27,0.4\n" +
	"30,0.6\n33,0.6\n36,0.6\n39,0.6\n42,0.6\n45,0.6\n48,0.6\n51,0.6\n54,0.6\n57,0.6\n60,0.6\n63,0.6\n"

const testParamsCSV = "PeakName,PeakRange,BaselineTime,MinHeightRatio,MinPeakLength,BaselineOrPeak,NegativePeak,CalculateSIorII\n" +
	"Basal Secretion,3-9,3-9,0,0,Baseline,False,False\n" +
	"G 16.7,9-63,3-9,0.03,6,Peak,True,True\n"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := internal.NewLogger(internal.LogLevelError)
	return NewServer(app.NewExtractService(nil, logger), logger)
}

func multipartBody(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for field, content := range files {
		part, err := mw.CreateFormFile(field, field+".csv")
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	for field, value := range fields {
		require.NoError(t, mw.WriteField(field, value))
	}
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func TestHandleExtract_JSON(t *testing.T) {
	server := newTestServer(t)
	body, contentType := multipartBody(t,
		map[string]string{"prefix": "GCG-IEQ"},
		map[string]string{"input": testInputCSV, "params": testParamsCSV},
	)

	req := httptest.NewRequest(http.MethodPost, "/extract?format=json", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		RunID   string                `json:"run_id"`
		Columns []string              `json:"columns"`
		Donors  []string              `json:"donors"`
		Rows    []map[string]*float64 `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, []string{"GCG-IEQ Basal Secretion", "GCG-IEQ G 16.7 AUC", "GCG-IEQ G 16.7 II"}, resp.Columns)
	require.Equal(t, []string{"HPAP-077"}, resp.Donors)
	require.Len(t, resp.Rows, 1)

	row := resp.Rows[0]
	require.NotNil(t, row["GCG-IEQ Basal Secretion"])
	assert.InDelta(t, 0.6, *row["GCG-IEQ Basal Secretion"], 1e-9)
	require.NotNil(t, row["GCG-IEQ G 16.7 II"])
	assert.InDelta(t, 3.0, *row["GCG-IEQ G 16.7 II"], 1e-9)
}

func TestHandleExtract_CSVDefault(t *testing.T) {
	server := newTestServer(t)
	body, contentType := multipartBody(t,
		map[string]string{"prefix": "GCG-IEQ"},
		map[string]string{"input": testInputCSV, "params": testParamsCSV},
	)

	req := httptest.NewRequest(http.MethodPost, "/extract", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Run-ID"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Donor ID,GCG-IEQ Basal Secretion"))
}

func TestHandleExtract_BadParameterTable(t *testing.T) {
	server := newTestServer(t)
	badParams := "PeakName,PeakRange\nBasal,3-9\n"
	body, contentType := multipartBody(t, nil,
		map[string]string{"input": testInputCSV, "params": badParams},
	)

	req := httptest.NewRequest(http.MethodPost, "/extract", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandleExtract_MissingUpload(t *testing.T) {
	server := newTestServer(t)
	body, contentType := multipartBody(t, nil, map[string]string{"input": testInputCSV})

	req := httptest.NewRequest(http.MethodPost, "/extract", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	server := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
