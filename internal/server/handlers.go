package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/veradocs/vera/constants"
	"github.com/veradocs/vera/internal/async"
	"github.com/veradocs/vera/internal/entity"
	"github.com/veradocs/vera/internal/extract"
	"github.com/veradocs/vera/internal/validation"
)

const maxUploadBytes = 32 << 20

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	upload, err := s.uploads.SaveUpload(r.Context(), header.Filename, file)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	now := time.Now().UTC()
	doc := &entity.Document{
		ID:          upload.DocumentID,
		ImagePath:   upload.ImagePath,
		ImageURL:    upload.ImageURL,
		ImageWidth:  upload.ImageWidth,
		ImageHeight: upload.ImageHeight,
		Status:      constants.StatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateDocument(r.Context(), doc); err != nil {
		s.respondDomainError(w, err)
		return
	}
	if err := s.queue.Enqueue(r.Context(), async.Job{DocumentID: doc.ID, SubmittedAt: now}); err != nil {
		s.respondDomainError(w, err)
		return
	}

	s.logger.Info("document accepted", zap.String("document_id", doc.ID), zap.String("filename", header.Filename))
	s.respondJSON(w, http.StatusAccepted, map[string]string{
		"document_id": doc.ID,
		"status":      doc.Status.String(),
	})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := s.store.GetDocument(r.Context(), id)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	tokens, err := s.store.TokensInOrder(r.Context(), id)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"document": doc,
		"tokens":   tokens,
	})
}

func (s *Server) handleAuditTrail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.store.GetDocument(r.Context(), id); err != nil {
		s.respondDomainError(w, err)
		return
	}
	entries, err := s.store.AuditTrail(r.Context(), id)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"audit": entries})
}

type validateRequest struct {
	Corrections      []validation.Correction `json:"corrections"`
	ReviewedTokenIDs []string                `json:"reviewed_token_ids"`
	ReviewComplete   bool                    `json:"review_complete"`
	StructuredFields map[string]string       `json:"structured_fields"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := s.validator.ApplyCorrections(r.Context(), validation.Request{
		DocumentID:       id,
		Corrections:      req.Corrections,
		ReviewedTokenIDs: req.ReviewedTokenIDs,
		ReviewComplete:   req.ReviewComplete,
		StructuredFields: req.StructuredFields,
	})
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"validated_text": result.ValidatedText,
		"status":         result.Status,
		"validated_at":   result.ValidatedAt,
	})
}

type summaryRequest struct {
	Model        string `json:"model"`
	Locale       string `json:"locale"`
	DocumentType string `json:"document_type"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req summaryRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	locale, ok := parseLocale(req.Locale)
	if !ok {
		s.respondError(w, http.StatusBadRequest, "locale must be \"\", \"us\", or \"eu\"")
		return
	}
	summary, err := s.engine.BuildSummary(r.Context(), id, extract.SummaryOptions{
		Model:   req.Model,
		Locale:  locale,
		DocType: req.DocumentType,
	})
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"bullet_summary":    summary.BulletSummary,
		"structured_fields": summary.StructuredFields,
		"status":            summary.Status,
	})
}

func parseLocale(s string) (extract.Locale, bool) {
	switch extract.Locale(s) {
	case extract.LocaleAuto, extract.LocaleUS, extract.LocaleEU:
		return extract.Locale(s), true
	}
	return extract.LocaleAuto, false
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	format := r.URL.Query().Get("format")
	if format == "" {
		format = constants.ExportJSON
	}
	artifact, err := s.exporter.Export(r.Context(), id, format)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+artifact.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(artifact.Data); err != nil {
		s.logger.Error("write export failed", zap.Error(err))
	}
}

func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	names, err := s.models.ListModels(r.Context())
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"models": names})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
