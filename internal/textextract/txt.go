package textextract

import (
	"context"
	"strings"

	"github.com/yogeshhk/MiningResume/internal/document"
)

// txtExtractor passes plain text through, replacing invalid UTF-8.
type txtExtractor struct{}

func (t *txtExtractor) Extract(_ context.Context, doc *document.Document) (string, error) {
	return strings.ToValidUTF8(string(doc.Content), "�"), nil
}
