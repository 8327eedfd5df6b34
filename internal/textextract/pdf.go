package textextract

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"

	"github.com/yogeshhk/MiningResume/internal/document"
)

// pdfExtractor extracts plain text from PDF bytes using a pure Go parser.
type pdfExtractor struct{}

func (p *pdfExtractor) Extract(_ context.Context, doc *document.Document) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(doc.Content), int64(len(doc.Content)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("pdf plain text: %w", err)
	}
	out, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return string(out), nil
}
