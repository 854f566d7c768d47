package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rmspulse/internal/services"
	"rmspulse/internal/store"
	"rmspulse/pkg/contracts/domain"
)

func newActivityHandler(t *testing.T) *ActivityHandler {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "activity.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo, err := store.NewActivityStore(db)
	require.NoError(t, err)

	svc := services.NewActivityService(repo, testLogger())
	return NewActivityHandler(svc, testPaths(t), 8<<20, testLogger(), testErrorHandler())
}

func postRecord(t *testing.T, h *ActivityHandler, rec domain.StoredRecord) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(rec)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.Routes().ServeHTTP(w, req)
	return w
}

func TestActivityHandler_Upload(t *testing.T) {
	h := newActivityHandler(t)

	filePath := writeWorkbook(t, etlHeader(), [][]interface{}{
		{
			"PC01", "MC02", "Saline 500ml", "Acme", "10", "EA", "B1", "PAL-1",
			"2024/01/01", "2026/01/01",
			"Pallet GR Position Tube 01", "RMS A 03",
			"2024/01/09 08.00.00", "2024/01/09 08.05.00", "2024/01/09 08.20.00",
		},
		{
			"PC01", "MC02", "Saline 500ml", "Acme", "10", "EA", "B1", "PAL-2",
			"2024/01/01", "2026/01/01",
			"Pallet GR Position Tube 01", "RMS A 03",
			"2024/01/09 09.00.00", "", "",
		},
	})
	body, contentType := multipartUpload(t, filePath, "")

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Status string            `json:"status"`
		Result store.BatchResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, 2, resp.Result.Inserted)
}

func TestActivityHandler_CreateAndGet(t *testing.T) {
	h := newActivityHandler(t)
	start := time.Date(2024, 1, 9, 8, 0, 0, 0, time.UTC)

	w := postRecord(t, h, domain.StoredRecord{
		PC:           "PC01",
		Quantity:     5,
		FetchStation: "Pallet GR Position Tube 01",
		StartTime:    &start,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Data domain.StoredRecord `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotZero(t, created.Data.ID)

	req := httptest.NewRequest(http.MethodGet, "/"+jsonID(created.Data.ID), nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var fetched struct {
		Data domain.StoredRecord `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	assert.Equal(t, "PC01", fetched.Data.PC)
}

func TestActivityHandler_CreateDuplicate(t *testing.T) {
	h := newActivityHandler(t)
	start := time.Date(2024, 1, 9, 8, 0, 0, 0, time.UTC)
	rec := domain.StoredRecord{Quantity: 1, FetchStation: "RMS A 03", StartTime: &start}

	require.Equal(t, http.StatusCreated, postRecord(t, h, rec).Code)
	assert.Equal(t, http.StatusConflict, postRecord(t, h, rec).Code)
}

func TestActivityHandler_CreateMissingStartTime(t *testing.T) {
	h := newActivityHandler(t)

	w := postRecord(t, h, domain.StoredRecord{Quantity: 1, FetchStation: "RMS A 03"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestActivityHandler_ListValidation(t *testing.T) {
	h := newActivityHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/?days=0", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/?days=3", nil)
	rec = httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestActivityHandler_GetNotFound(t *testing.T) {
	h := newActivityHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/9999", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var problem struct {
		Type   string `json:"type"`
		Status int    `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, http.StatusNotFound, problem.Status)
}

func TestActivityHandler_InvalidID(t *testing.T) {
	h := newActivityHandler(t)

	req := httptest.NewRequest(http.MethodDelete, "/abc", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestActivityHandler_Delete(t *testing.T) {
	h := newActivityHandler(t)
	start := time.Date(2024, 1, 9, 8, 0, 0, 0, time.UTC)

	w := postRecord(t, h, domain.StoredRecord{Quantity: 1, FetchStation: "RMS A 03", StartTime: &start})
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Data domain.StoredRecord `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	req := httptest.NewRequest(http.MethodDelete, "/"+jsonID(created.Data.ID), nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/"+jsonID(created.Data.ID), nil)
	rec = httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestActivityHandler_Count(t *testing.T) {
	h := newActivityHandler(t)
	start := time.Date(2024, 1, 9, 8, 0, 0, 0, time.UTC)
	require.Equal(t, http.StatusCreated, postRecord(t, h, domain.StoredRecord{Quantity: 1, FetchStation: "RMS A 03", StartTime: &start}).Code)

	req := httptest.NewRequest(http.MethodGet, "/count", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
}

func TestActivityHandler_CreateInvalidStation(t *testing.T) {
	h := newActivityHandler(t)
	start := time.Date(2024, 1, 9, 8, 0, 0, 0, time.UTC)

	w := postRecord(t, h, domain.StoredRecord{
		Quantity:     1,
		FetchStation: "RMS|A",
		StartTime:    &start,
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_FAILED")
	assert.Contains(t, w.Body.String(), "fetch_station")
}

func TestActivityHandler_CreateWrongContentType(t *testing.T) {
	h := newActivityHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte(`{"quantity":1}`)))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	h.Routes().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestActivityHandler_CreateMalformedJSON(t *testing.T) {
	h := newActivityHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte(`{"quantity":`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.Routes().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestActivityHandler_UploadUnknownSheet(t *testing.T) {
	h := newActivityHandler(t)

	filePath := writeWorkbook(t, etlHeader(), [][]interface{}{
		{
			"PC01", "MC02", "Saline 500ml", "Acme", "10", "EA", "B1", "PAL-1",
			"2024/01/01", "2026/01/01",
			"Pallet GR Position Tube 01", "RMS A 03",
			"2024/01/09 08.00.00", "2024/01/09 08.05.00", "2024/01/09 08.20.00",
		},
	})
	body, contentType := multipartUpload(t, filePath, "NoSuchSheet")

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "SHEET_NOT_FOUND")
}
