package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/veradocs/vera/constants"
	"github.com/veradocs/vera/internal/async"
	"github.com/veradocs/vera/internal/common"
	"github.com/veradocs/vera/internal/entity"
	"github.com/veradocs/vera/internal/export"
	"github.com/veradocs/vera/internal/extract"
	"github.com/veradocs/vera/internal/repository"
	"github.com/veradocs/vera/internal/storage"
	"github.com/veradocs/vera/internal/validation"
)

type stubQueue struct {
	jobs []async.Job
}

func (q *stubQueue) Enqueue(_ context.Context, job async.Job) error {
	q.jobs = append(q.jobs, job)
	return nil
}
func (q *stubQueue) Shutdown(context.Context) {}

func newTestServer(t *testing.T) (*Server, *repository.Store, *stubQueue) {
	t.Helper()
	store, err := repository.Open(repository.Options{InMemory: true}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	dataDir := t.TempDir()
	uploads := storage.NewService(
		common.StorageConfig{DataDir: dataDir},
		common.OCRConfig{},
		nil, nil,
	)
	queue := &stubQueue{}
	rules := extract.DefaultRules()

	srv := NewServer(
		store,
		uploads,
		queue,
		validation.NewService(store, nil),
		extract.NewEngine(rules, store, nil, nil),
		export.NewService(store, nil),
		nil, // model listing is not exercised here
		&common.ServerConfig{HTTPAddr: ":0"},
		dataDir,
		zap.NewNop(),
	)
	return srv, store, queue
}

func seedValidated(t *testing.T, store *repository.Store, text string) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, store.CreateDocument(context.Background(), &entity.Document{
		ID:            "d1",
		Status:        constants.StatusValidated,
		ValidatedText: text,
		CreatedAt:     now,
		UpdatedAt:     now,
	}))
}

func pngUpload(t *testing.T) (*bytes.Buffer, string) {
	t.Helper()
	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 4, 4))))

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile("file", "scan.png")
	require.NoError(t, err)
	_, err = fw.Write(img.Bytes())
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &body, w.FormDataContentType()
}

func TestHandleUpload(t *testing.T) {
	srv, store, queue := newTestServer(t)
	router := srv.routes()

	body, contentType := pngUpload(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "uploaded", resp["status"])
	require.NotEmpty(t, resp["document_id"])

	// document persisted and queued for OCR
	doc, err := store.GetDocument(context.Background(), resp["document_id"])
	require.NoError(t, err)
	assert.Equal(t, constants.StatusUploaded, doc.Status)
	assert.Equal(t, 4, doc.ImageWidth)
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, resp["document_id"], queue.jobs[0].DocumentID)
}

func TestHandleUploadRejectsExtension(t *testing.T) {
	srv, _, queue := newTestServer(t)
	router := srv.routes()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, queue.jobs)

	var resp errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(common.CodeUnsupported), resp.Code)
	assert.Equal(t, common.ReasonUnsupportedFileType, resp.Reason)
}

func TestHandleGetDocumentNotFound(t *testing.T) {
	srv, _, _ := newTestServer(t)
	router := srv.routes()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/ghost", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(common.CodeNotFound), resp.Code)
	assert.Equal(t, common.ReasonDocumentNotFound, resp.Reason)
}

func TestHandleSummaryFlow(t *testing.T) {
	srv, store, _ := newTestServer(t)
	router := srv.routes()
	seedValidated(t, store, "Acme Corp\n2026-02-01\nTotal $12.00")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/d1/summary", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		BulletSummary    []string          `json:"bullet_summary"`
		StructuredFields map[string]string `json:"structured_fields"`
		Status           string            `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "summarized", resp.Status)
	assert.Len(t, resp.BulletSummary, 7)
	assert.Equal(t, "$12.00", resp.StructuredFields["amounts"])
}

func TestHandleSummaryConflict(t *testing.T) {
	srv, store, _ := newTestServer(t)
	router := srv.routes()

	now := time.Now().UTC()
	require.NoError(t, store.CreateDocument(context.Background(), &entity.Document{
		ID: "d1", Status: constants.StatusUploaded, CreatedAt: now, UpdatedAt: now,
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/d1/summary", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleExportFlow(t *testing.T) {
	srv, store, _ := newTestServer(t)
	router := srv.routes()
	seedValidated(t, store, "Acme Corp")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/d1/export?format=csv", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "d1.csv")
}

func TestHandleExportBadFormat(t *testing.T) {
	srv, store, _ := newTestServer(t)
	router := srv.routes()
	seedValidated(t, store, "Acme Corp")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/d1/export?format=docx", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleValidateFlow(t *testing.T) {
	srv, store, _ := newTestServer(t)
	router := srv.routes()

	now := time.Now().UTC()
	require.NoError(t, store.CreateDocument(context.Background(), &entity.Document{
		ID: "d1", Status: constants.StatusOCRDone, CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, store.Update(func(tx *repository.Tx) error {
		return tx.ReplaceTokens("d1", []entity.Token{
			{ID: "t1", DocumentID: "d1", LineIndex: 0, TokenIndex: 0, Text: "Tota1", ForcedReview: true},
		})
	}))

	payload := `{"corrections":[{"token_id":"t1","corrected_text":"Total"}],"review_complete":true}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/d1/validate", bytes.NewBufferString(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		ValidatedText string `json:"validated_text"`
		Status        string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Total", resp.ValidatedText)
	assert.Equal(t, "validated", resp.Status)
}

func TestHandleHealth(t *testing.T) {
	srv, _, _ := newTestServer(t)
	router := srv.routes()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
