package common

import (
	"errors"
	"fmt"
)

// Code classifies a DomainError into the closed taxonomy the boundary
// layer switches on. Every error crossing a service boundary carries
// exactly one of these.
type Code string

const (
	CodeNotFound     Code = "not_found"
	CodePrecondition Code = "precondition_failed"
	CodeUnsupported  Code = "unsupported_input"
	CodeUpstream     Code = "upstream_unavailable"
	CodeInternal     Code = "internal"
)

// Machine-readable reason tags. Callers match on these rather than on
// message text.
const (
	ReasonDocumentNotFound     = "document_not_found"
	ReasonTokenNotFound        = "token_not_found"
	ReasonReviewIncomplete     = "review_incomplete"
	ReasonDocumentNotValidated = "document_not_validated"
	ReasonStatusConflict       = "status_conflict"
	ReasonUnsupportedFileType  = "unsupported_file_type"
	ReasonUnsupportedFormat    = "unsupported_export_format"
	ReasonPDFNoPages           = "pdf_no_pages"
	ReasonPDFConvertFailed     = "pdf_convert_failed"
	ReasonOCRUnavailable       = "ocr_unavailable"
	ReasonLLMUnavailable       = "llm_unavailable"
)

// DomainError is the application error type. Code is the taxonomy bucket,
// Reason the stable tag within it.
type DomainError struct {
	Code    Code
	Reason  string
	Message string
	Cause   error
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Reason, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

func NotFound(reason, message string) *DomainError {
	return &DomainError{Code: CodeNotFound, Reason: reason, Message: message}
}

func Precondition(reason, message string) *DomainError {
	return &DomainError{Code: CodePrecondition, Reason: reason, Message: message}
}

func Unsupported(reason, message string) *DomainError {
	return &DomainError{Code: CodeUnsupported, Reason: reason, Message: message}
}

func Upstream(reason, message string, cause error) *DomainError {
	return &DomainError{Code: CodeUpstream, Reason: reason, Message: message, Cause: cause}
}

func Internal(message string, cause error) *DomainError {
	return &DomainError{Code: CodeInternal, Reason: "internal", Message: message, Cause: cause}
}

// CodeOf extracts the taxonomy code from err, or CodeInternal when err is
// not a DomainError.
func CodeOf(err error) Code {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ReasonOf extracts the reason tag from err, or "" for non-domain errors.
func ReasonOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Reason
	}
	return ""
}

func IsNotFound(err error) bool     { return CodeOf(err) == CodeNotFound }
func IsPrecondition(err error) bool { return CodeOf(err) == CodePrecondition }
func IsUnsupported(err error) bool  { return CodeOf(err) == CodeUnsupported }
func IsUpstream(err error) bool     { return CodeOf(err) == CodeUpstream }

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
