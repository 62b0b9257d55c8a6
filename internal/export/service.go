package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/veradocs/vera/constants"
	"github.com/veradocs/vera/internal/common"
	"github.com/veradocs/vera/internal/entity"
	"github.com/veradocs/vera/internal/repository"
)

// Artifact is a rendered export ready to stream to the client.
type Artifact struct {
	ContentType string
	Filename    string
	Data        []byte
}

// Service renders a validated document in the supported export formats
// and records the export on the document.
type Service struct {
	store  *repository.Store
	logger *slog.Logger
}

func NewService(store *repository.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// Export renders the document's validated text and structured fields.
// The document must be validated or later; the status advance and audit
// entry commit atomically.
func (s *Service) Export(ctx context.Context, documentID, format string) (*Artifact, error) {
	start := time.Now()
	format = strings.ToLower(format)
	if !constants.IsExportFormat(format) {
		return nil, common.Unsupported(common.ReasonUnsupportedFormat,
			fmt.Sprintf("format %q is not supported", format))
	}

	var artifact *Artifact
	now := time.Now().UTC()
	err := s.store.Update(func(tx *repository.Tx) error {
		doc, err := tx.GetDocument(documentID)
		if err != nil {
			return err
		}
		if !constants.CanExport(doc.Status) {
			return common.Precondition(common.ReasonStatusConflict,
				fmt.Sprintf("document %s has status %s, expected validated or later", documentID, doc.Status))
		}

		artifact, err = render(doc, format)
		if err != nil {
			return err
		}

		doc.Status = constants.StatusExported
		doc.UpdatedAt = now
		if err := tx.PutDocument(doc); err != nil {
			return err
		}
		return tx.AppendAudit(&entity.AuditLog{
			ID:         uuid.New().String(),
			DocumentID: documentID,
			EventType:  entity.AuditExported,
			Detail:     map[string]any{"format": format},
			CreatedAt:  now,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("export.ok",
		"document_id", documentID,
		"format", format,
		"bytes", len(artifact.Data),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return artifact, nil
}

func render(doc *entity.Document, format string) (*Artifact, error) {
	switch format {
	case constants.ExportJSON:
		return renderJSON(doc)
	case constants.ExportCSV:
		return renderCSV(doc)
	case constants.ExportXLSX:
		return renderXLSX(doc)
	}
	return nil, common.Unsupported(common.ReasonUnsupportedFormat, format)
}

func renderJSON(doc *entity.Document) (*Artifact, error) {
	payload := map[string]any{
		"document_id":       doc.ID,
		"validated_text":    doc.ValidatedText,
		"structured_fields": doc.StructuredFields,
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, common.Internal("encode json export", err)
	}
	return &Artifact{
		ContentType: "application/json",
		Filename:    doc.ID + ".json",
		Data:        data,
	}, nil
}

func renderCSV(doc *entity.Document) (*Artifact, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"key", "value"}); err != nil {
		return nil, common.Internal("write csv export", err)
	}
	rows := [][]string{
		{"document_id", doc.ID},
		{"validated_text", doc.ValidatedText},
	}
	for _, k := range sortedKeys(doc.StructuredFields) {
		rows = append(rows, []string{k, doc.StructuredFields[k]})
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return nil, common.Internal("write csv export", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, common.Internal("write csv export", err)
	}
	return &Artifact{
		ContentType: "text/csv",
		Filename:    doc.ID + ".csv",
		Data:        buf.Bytes(),
	}, nil
}

func renderXLSX(doc *entity.Document) (*Artifact, error) {
	f := excelize.NewFile()
	const sheet = "Document"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	write := func(col, row int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}

	write(1, 1, "Key")
	write(2, 1, "Value")

	row := 2
	write(1, row, "document_id")
	write(2, row, doc.ID)
	row++
	write(1, row, "validated_text")
	write(2, row, doc.ValidatedText)
	row++
	for _, k := range sortedKeys(doc.StructuredFields) {
		write(1, row, k)
		write(2, row, doc.StructuredFields[k])
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 26)
	_ = f.SetColWidth(sheet, "B", "B", 80)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, common.Internal("xlsx write", err)
	}
	return &Artifact{
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Filename:    doc.ID + ".xlsx",
		Data:        buf.Bytes(),
	}, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
