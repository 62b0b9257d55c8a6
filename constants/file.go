package constants

import "strings"

// AllowedExtensions holds the upload extensions the storage layer accepts.
// PDFs are converted to a single PNG page before OCR.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

func IsAllowedExt(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}

func IsPDFExt(ext string) bool {
	return NormalizeExt(ext) == "pdf"
}

// Export formats accepted by the export service.
const (
	ExportJSON = "json"
	ExportCSV  = "csv"
	ExportXLSX = "xlsx"
)

func IsExportFormat(f string) bool {
	switch strings.ToLower(f) {
	case ExportJSON, ExportCSV, ExportXLSX:
		return true
	}
	return false
}
