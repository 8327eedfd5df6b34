package textextract

import (
	"context"

	"github.com/yogeshhk/MiningResume/internal/document"
)

// NormalizedText is the plain-text rendition of a document.
// Immutable; produced once per document.
type NormalizedText struct {
	Text string
	Doc  *document.Document
}

// Extractor converts one document format to raw text.
type Extractor interface {
	Extract(ctx context.Context, doc *document.Document) (string, error)
}
