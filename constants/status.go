package constants

// DocumentStatus is the canonical lifecycle state for rows in documents.
type DocumentStatus string

// Stable values (store these exact strings in the DB).
const (
	StatusUploaded         DocumentStatus = "uploaded"           // file stored, OCR not started
	StatusProcessing       DocumentStatus = "processing"         // OCR running in a worker
	StatusOCRDone          DocumentStatus = "ocr_done"           // tokens persisted, awaiting review
	StatusReviewInProgress DocumentStatus = "review_in_progress" // partial review saves
	StatusValidated        DocumentStatus = "validated"          // review complete, validated_text set
	StatusSummarized       DocumentStatus = "summarized"         // structured fields extracted
	StatusExported         DocumentStatus = "exported"           // terminal happy-path state
	StatusFailed           DocumentStatus = "failed"             // terminal error state
)

func (s DocumentStatus) String() string { return string(s) }

// CanSummarize reports whether the extraction engine may run for a document
// in status s. Summarization is idempotent, so summarized documents may be
// re-summarized.
func CanSummarize(s DocumentStatus) bool {
	return s == StatusValidated || s == StatusSummarized
}

// CanExport reports whether export is permitted from status s. Export does
// not require a prior summary, and an exported document may be exported
// again in another format.
func CanExport(s DocumentStatus) bool {
	return s == StatusValidated || s == StatusSummarized || s == StatusExported
}

// HasValidatedText reports whether validated_text must exist for status s.
func HasValidatedText(s DocumentStatus) bool {
	return s == StatusValidated || s == StatusSummarized || s == StatusExported
}
