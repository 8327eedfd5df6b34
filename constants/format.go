package constants

import "strings"

// FileFormat is the canonical document format for a parse job.
type FileFormat string

// Stable values (store these exact strings in DB).
const (
	PDF  FileFormat = "PDF"
	DOCX FileFormat = "DOCX"
	TXT  FileFormat = "TXT"
)

// FileFormats holds the allowed document formats.
var FileFormats = []FileFormat{PDF, DOCX, TXT}

// AllowedExtensions holds the default allowed file extensions for ingestion.
// Kept in lockstep with MapExtToFormat so discovery and reading agree.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"docx": {},
	"txt":  {},
	"text": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a file extension to its FileFormat.
// Returns "" for unsupported extensions.
func MapExtToFormat(ext string) FileFormat {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "docx":
		return DOCX
	case "txt", "text":
		return TXT
	default:
		return ""
	}
}
