package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ncrp-tools/complaints-tracker/constants"
	"github.com/ncrp-tools/complaints-tracker/internal/common"
	"github.com/ncrp-tools/complaints-tracker/internal/docread"
	"github.com/ncrp-tools/complaints-tracker/internal/entity"
	"github.com/ncrp-tools/complaints-tracker/internal/export"
	"github.com/ncrp-tools/complaints-tracker/internal/letters"
	"github.com/ncrp-tools/complaints-tracker/internal/staging"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memRepo struct {
	mu      sync.Mutex
	records []*entity.ComplaintRecord
	ids     map[string]bool
}

func newMemRepo() *memRepo {
	return &memRepo{ids: make(map[string]bool)}
}

func (m *memRepo) InsertIfAbsent(_ context.Context, rec *entity.ComplaintRecord) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.ComplaintID != constants.NotFound && m.ids[rec.ComplaintID] {
		return false, nil
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	clone := *rec
	m.records = append(m.records, &clone)
	m.ids[rec.ComplaintID] = true
	return true, nil
}

func (m *memRepo) ListRecent(_ context.Context, limit int) ([]*entity.ComplaintRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.ComplaintRecord
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.records[i])
	}
	return out, nil
}

func (m *memRepo) Ping(context.Context) error { return nil }
func (m *memRepo) Close()                     {}

type stubDocReader struct{ text string }

func (s stubDocReader) Read(context.Context, string) (docread.Result, error) {
	return docread.Result{Text: s.text, Source: constants.PDF}, nil
}

// deadlineReader records the deadline of the context it was read with.
type deadlineReader struct {
	deadline    time.Time
	hasDeadline bool
}

func (d *deadlineReader) Read(ctx context.Context, _ string) (docread.Result, error) {
	d.deadline, d.hasDeadline = ctx.Deadline()
	return docread.Result{Text: "x", Source: constants.PDF}, nil
}

type stubGenerator struct{ result letters.Result }

func (s stubGenerator) Generate(context.Context, letters.Request) (letters.Result, error) {
	return s.result, nil
}

type testEnv struct {
	server *Server
	repo   *memRepo
	router *gin.Engine
}

func newTestEnv(t *testing.T, reader DocumentReader, gen LetterGenerator) *testEnv {
	t.Helper()
	dir := t.TempDir()
	cfg := &common.Config{
		Server: common.ServerConfig{
			HTTPAddr:    ":0",
			UploadDir:   filepath.Join(dir, "uploads"),
			UploadsBase: "/uploads",
			APIBaseURL:  "http://localhost:5000",
		},
		Letters: common.LettersConfig{
			TemplatePath: filepath.Join(dir, "template.docx"),
			IFSCPath:     filepath.Join(dir, "ifsc.csv"),
			OutputDir:    filepath.Join(dir, "letters"),
		},
		OCR:    common.OCRConfig{Timeout: 90 * time.Second},
		Export: common.ExportConfig{WorkbookPath: filepath.Join(dir, "ledger.xlsx")},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	stg, err := staging.New(cfg.Server.UploadDir, logger)
	require.NoError(t, err)
	repo := newMemRepo()
	srv := NewServer(cfg, repo, stg, export.NewLedger(cfg.Export.WorkbookPath, logger), reader, gen, logger)
	return &testEnv{server: srv, repo: repo, router: srv.Router()}
}

func (e *testEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func multipartBody(t *testing.T, field string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for name, content := range files {
		fw, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestUploadExtractsRows(t *testing.T) {
	env := newTestEnv(t,
		stubDocReader{text: "Acknowledgement Number : 3140825001234567 Mobile Number : 9876543210"},
		stubGenerator{})

	body, contentType := multipartBody(t, "files", map[string]string{"scan.pdf": "%PDF-fake"})
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)

	w := env.do(t, req)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeJSON(t, w)
	rows := resp["rows"].([]any)
	require.Len(t, rows, 1)
	row := rows[0].(map[string]any)
	assert.Equal(t, "3140825001234567", row["Complaint ID"])
	assert.Equal(t, "PDF", row["Source"])
	assert.NotEmpty(t, row["saved_filename"])
	assert.Len(t, resp["files"].([]any), 1)
}

func TestUploadUnsupportedExtensionYieldsErrorRow(t *testing.T) {
	env := newTestEnv(t, stubDocReader{text: "whatever"}, stubGenerator{})

	body, contentType := multipartBody(t, "files", map[string]string{
		"notes.txt": "plain text",
		"scan.pdf":  "%PDF-fake",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)

	w := env.do(t, req)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeJSON(t, w)
	rows := resp["rows"].([]any)
	require.Len(t, rows, 2)

	var errorRows, okRows int
	for _, r := range rows {
		if r.(map[string]any)["Source"] == "ERROR" {
			errorRows++
		} else {
			okRows++
		}
	}
	assert.Equal(t, 1, errorRows)
	assert.Equal(t, 1, okRows)
	assert.Len(t, resp["files"].([]any), 1)
}

func TestUploadBoundsReadByOCRTimeout(t *testing.T) {
	reader := &deadlineReader{}
	env := newTestEnv(t, reader, stubGenerator{})

	body, contentType := multipartBody(t, "files", map[string]string{"scan.png": "img"})
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)

	w := env.do(t, req)
	require.Equal(t, http.StatusOK, w.Code)

	require.True(t, reader.hasDeadline, "document read must carry the OCR timeout")
	assert.WithinDuration(t, time.Now().Add(env.server.cfg.OCR.Timeout), reader.deadline, 5*time.Second)
}

func TestUploadWithoutFiles(t *testing.T) {
	env := newTestEnv(t, stubDocReader{}, stubGenerator{})

	body, contentType := multipartBody(t, "unrelated", map[string]string{"x.pdf": "x"})
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)

	w := env.do(t, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func postJSON(t *testing.T, env *testEnv, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return env.do(t, req)
}

func TestVerifySaveAndDuplicateSkip(t *testing.T) {
	env := newTestEnv(t, stubDocReader{}, stubGenerator{})

	pending, err := env.server.staging.Stage("scan.pdf", strings.NewReader("%PDF-fake"))
	require.NoError(t, err)

	row := map[string]any{
		"Source":         "PDF",
		"Complaint ID":   "3140825001234567",
		"Mobile":         "9876543210",
		"saved_filename": pending,
	}
	w := postJSON(t, env, "/api/verify", map[string]any{"action": "save", "rows": []any{row}})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeJSON(t, w)
	assert.EqualValues(t, 1, resp["saved_count"])
	assert.EqualValues(t, 0, resp["skipped_count"])
	excel := resp["excel"].(map[string]any)
	assert.NotEmpty(t, excel["path"])

	// the staged file was promoted under the complaint id
	name, ok := env.server.staging.Lookup("3140825001234567")
	require.True(t, ok)
	assert.Equal(t, "3140825001234567.pdf", name)

	// resubmitting the same complaint id is skipped
	w = postJSON(t, env, "/api/verify", map[string]any{"action": "save", "rows": []any{
		map[string]any{"Complaint ID": "3140825001234567"},
	}})
	require.Equal(t, http.StatusOK, w.Code)
	resp = decodeJSON(t, w)
	assert.EqualValues(t, 0, resp["saved_count"])
	assert.EqualValues(t, 1, resp["skipped_count"])
}

func TestVerifyRejectDiscardsStagedFiles(t *testing.T) {
	env := newTestEnv(t, stubDocReader{}, stubGenerator{})

	pending, err := env.server.staging.Stage("scan.pdf", strings.NewReader("%PDF-fake"))
	require.NoError(t, err)

	w := postJSON(t, env, "/api/verify", map[string]any{"action": "reject", "rows": []any{
		map[string]any{"saved_filename": pending},
	}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "rejected", decodeJSON(t, w)["status"])
	assert.NoFileExists(t, env.server.staging.PendingPath(pending))
	assert.Empty(t, env.repo.records)
}

func TestVerifyRejectsBadPayload(t *testing.T) {
	env := newTestEnv(t, stubDocReader{}, stubGenerator{})

	w := postJSON(t, env, "/api/verify", map[string]any{"action": "maybe"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(t, env, "/api/verify", map[string]any{"rows": []any{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(t, env, "/api/verify", map[string]any{"action": "save", "rows": []any{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestComplaintsListing(t *testing.T) {
	env := newTestEnv(t, stubDocReader{}, stubGenerator{})

	rec := entity.NewComplaintRecord(constants.PDF)
	rec.ComplaintID = "3140825001234567"
	rec.District = "Chennai"
	rec.State = "Tamil Nadu"
	rec.SavedFilename = "3140825001234567.pdf"
	_, err := env.repo.InsertIfAbsent(context.Background(), &rec)
	require.NoError(t, err)

	w := env.do(t, httptest.NewRequest(http.MethodGet, "/api/complaints", nil))
	require.Equal(t, http.StatusOK, w.Code)

	rows := decodeJSON(t, w)["rows"].([]any)
	require.Len(t, rows, 1)
	row := rows[0].(map[string]any)
	assert.Equal(t, "3140825001234567", row["id"])
	assert.Equal(t, "Chennai, Tamil Nadu", row["districtState"])
	assert.Equal(t, "Other", row["platformInvolved"])
	assert.Equal(t, "3140825001234567.pdf", row["savedFilename"])
	assert.NotEmpty(t, row["processedDateTime"])
}

func TestLettersEndpoint(t *testing.T) {
	env := newTestEnv(t, stubDocReader{}, stubGenerator{result: letters.Result{
		Generated: []string{"/tmp/out/Hdfc_Bank__CSR_CR-2024-009.docx"},
		Groups:    2,
		Skipped:   []string{"ICIC"},
	}})

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for _, f := range []struct{ field, name, content string }{
		{"form", "complaint.pdf", "%PDF-fake"},
		{"table", "ledger.csv", "a,b\n1,2\n"},
	} {
		fw, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/letters", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := env.do(t, req)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeJSON(t, w)
	assert.Equal(t, []any{"Hdfc_Bank__CSR_CR-2024-009.docx"}, resp["files"])
	assert.EqualValues(t, 2, resp["groups"])
	assert.NotEmpty(t, resp["run_id"])
}

func TestLettersEndpointRequiresFiles(t *testing.T) {
	env := newTestEnv(t, stubDocReader{}, stubGenerator{})

	body, contentType := multipartBody(t, "form", map[string]string{"complaint.pdf": "x"})
	req := httptest.NewRequest(http.MethodPost, "/api/letters", body)
	req.Header.Set("Content-Type", contentType)

	w := env.do(t, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConfigEndpoint(t *testing.T) {
	env := newTestEnv(t, stubDocReader{}, stubGenerator{})

	w := env.do(t, httptest.NewRequest(http.MethodGet, "/api/config", nil))
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeJSON(t, w)
	assert.Equal(t, "http://localhost:5000", resp["API_BASE"])
	assert.Equal(t, "/uploads", resp["UPLOADS_ROUTE"])
}
