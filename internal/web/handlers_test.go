package web

import (
	"bytes"
	"encoding/json"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nconklindev/sweeper/internal/config"
	"github.com/nconklindev/sweeper/internal/converter"
	"github.com/nconklindev/sweeper/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type upload struct {
	field, name, data string
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.Upload.MaxFileSize = 1024
	cfg.Upload.MaxFiles = 3
	cfg.Upload.Workers = 2
	return NewServer(cfg)
}

func multipartRequest(t *testing.T, path string, files []upload, fields map[string][]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.data))
		require.NoError(t, err)
	}
	for key, values := range fields {
		for _, v := range values {
			require.NoError(t, mw.WriteField(key, v))
		}
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("Content-Type"))
}

func TestPreview(t *testing.T) {
	s := newTestServer(t)
	req := multipartRequest(t, "/api/preview", []upload{
		{"files", "people.csv", "name,age\nAlice,30\nBob,\n"},
		{"files", "notes.txt", "hello"},
		{"files", "big.csv", strings.Repeat("x", 2048)},
	}, nil)
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp PreviewResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Files, 3)

	people := resp.Files[0]
	assert.Equal(t, "people.csv", people.Name)
	assert.Nil(t, people.Error)
	assert.Equal(t, 2, people.Rows)
	assert.Equal(t, []ColumnInfo{{"name", "text"}, {"age", "number"}}, people.Columns)
	assert.Equal(t, [][]string{{"name", "age"}, {"Alice", "30"}, {"Bob", ""}}, people.Preview)
	assert.Equal(t, []string{"age"}, people.NumericColumns)
	assert.NotEmpty(t, people.SizeHuman)

	notes := resp.Files[1]
	require.NotNil(t, notes.Error)
	assert.Equal(t, "FILE001", notes.Error.Code)

	big := resp.Files[2]
	require.NotNil(t, big.Error)
	assert.Equal(t, "FILE003", big.Error.Code)
}

func TestPreview_Errors(t *testing.T) {
	s := newTestServer(t)

	t.Run("No files", func(t *testing.T) {
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, multipartRequest(t, "/api/preview", nil, map[string][]string{"x": {"1"}}))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Too many files", func(t *testing.T) {
		files := make([]upload, 4)
		for i := range files {
			files[i] = upload{"files", "a.csv", "a\n1\n"}
		}
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, multipartRequest(t, "/api/preview", files, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeError(t, rec).Message, "too many files")
	})

	t.Run("Not multipart", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/preview", strings.NewReader("{}"))
		req.Header.Set("Content-Type", "application/json")
		s.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestConvert(t *testing.T) {
	s := newTestServer(t)
	req := multipartRequest(t, "/api/convert",
		[]upload{{"file", "people.csv", "name,age,city\nAlice,30,Oslo\nBob,,Rome\nAlice,30,Oslo\n"}},
		map[string][]string{
			"format":  {"csv"},
			"clean":   {"remove_duplicates", "fill_missing"},
			"columns": {"age", "name"},
		})
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, types.MimeCSV, rec.Header().Get("Content-Type"))
	disposition, params, err := mime.ParseMediaType(rec.Header().Get("Content-Disposition"))
	require.NoError(t, err)
	assert.Equal(t, "attachment", disposition)
	assert.Equal(t, "people.csv", params["filename"])
	assert.NotEmpty(t, rec.Header().Get("X-Run-ID"))
	assert.Empty(t, rec.Header().Get("X-Sweeper-Warnings"))

	assert.Equal(t, "age,name\n30,Alice\n30,Bob\n", rec.Body.String())
}

func TestConvert_ToXLSX(t *testing.T) {
	s := newTestServer(t)
	req := multipartRequest(t, "/api/convert",
		[]upload{{"file", "report.csv", "a,b\n1,\n2,\n"}},
		map[string][]string{"format": {"Excel"}, "clean": {"fill_missing"}})
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, types.MimeXLSX, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "report.xlsx")
	assert.Equal(t, "1", rec.Header().Get("X-Sweeper-Warnings"))

	table, err := converter.Load(rec.Body.Bytes(), ".xlsx")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, table.Names())
	assert.Equal(t, 2, table.NumRows())
}

func TestConvert_ColumnsNone(t *testing.T) {
	s := newTestServer(t)
	req := multipartRequest(t, "/api/convert",
		[]upload{{"file", "a.csv", "a,b\n1,2\n3,4\n"}},
		map[string][]string{"format": {"csv"}, "columns_none": {"1"}})
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "\n\n\n", rec.Body.String())
}

func TestConvert_Errors(t *testing.T) {
	tests := []struct {
		name   string
		files  []upload
		fields map[string][]string
		status int
		code   string
	}{
		{
			name:   "Unsupported file",
			files:  []upload{{"file", "data.txt", "a,b\n1,2\n"}},
			fields: map[string][]string{"format": {"csv"}},
			status: http.StatusUnsupportedMediaType,
			code:   "FILE001",
		},
		{
			name:   "Malformed CSV",
			files:  []upload{{"file", "bad.csv", "a,b\n1,2,3\n"}},
			fields: map[string][]string{"format": {"csv"}},
			status: http.StatusUnprocessableEntity,
			code:   "FILE002",
		},
		{
			name:   "Unknown column",
			files:  []upload{{"file", "a.csv", "a\n1\n"}},
			fields: map[string][]string{"format": {"csv"}, "columns": {"zip"}},
			status: http.StatusBadRequest,
			code:   "COL001",
		},
		{
			name:   "Duplicate column",
			files:  []upload{{"file", "a.csv", "a\n1\n"}},
			fields: map[string][]string{"format": {"csv"}, "columns": {"a", "a"}},
			status: http.StatusBadRequest,
			code:   "COL002",
		},
		{
			name:   "Unknown cleaning operation",
			files:  []upload{{"file", "a.csv", "a\n1\n"}},
			fields: map[string][]string{"format": {"csv"}, "clean": {"shuffle"}},
			status: http.StatusBadRequest,
			code:   "CLN002",
		},
		{
			name:   "Unknown format",
			files:  []upload{{"file", "a.csv", "a\n1\n"}},
			fields: map[string][]string{"format": {"pdf"}},
			status: http.StatusBadRequest,
			code:   "GEN001",
		},
		{
			name:   "File too large",
			files:  []upload{{"file", "big.csv", strings.Repeat("y", 2048)}},
			fields: map[string][]string{"format": {"csv"}},
			status: http.StatusRequestEntityTooLarge,
			code:   "FILE003",
		},
		{
			name:   "Missing file",
			fields: map[string][]string{"format": {"csv"}},
			status: http.StatusBadRequest,
			code:   "GEN001",
		},
	}

	s := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, multipartRequest(t, "/api/convert", tt.files, tt.fields))

			assert.Equal(t, tt.status, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, tt.code, resp.Code)
			assert.NotEmpty(t, resp.Message)
		})
	}
}
