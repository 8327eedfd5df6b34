package textextract

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/yogeshhk/MiningResume/constants"
	"github.com/yogeshhk/MiningResume/internal/common"
	"github.com/yogeshhk/MiningResume/internal/document"
)

// Normalizer dispatches to a format-specific extractor and applies generic
// post-processing (whitespace collapsing, control-character stripping).
type Normalizer struct {
	extractors map[constants.FileFormat]Extractor
	logger     *slog.Logger
}

func NewNormalizer(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	n := &Normalizer{
		extractors: make(map[constants.FileFormat]Extractor),
		logger:     logger,
	}
	n.Register(constants.PDF, &pdfExtractor{})
	n.Register(constants.DOCX, &docxExtractor{})
	n.Register(constants.TXT, &txtExtractor{})
	return n
}

// Register installs an extractor for a format, replacing any existing one.
func (n *Normalizer) Register(format constants.FileFormat, e Extractor) {
	n.extractors[format] = e
}

// Extract produces the normalized text for a document. Failure here is fatal
// to the whole document since text is a prerequisite for every attribute.
func (n *Normalizer) Extract(ctx context.Context, doc *document.Document) (*NormalizedText, error) {
	e, ok := n.extractors[doc.Format]
	if !ok {
		return nil, common.NewAppError("TEXT_EXTRACTION",
			fmt.Sprintf("no extractor registered for format %s", doc.Format),
			common.ErrTextExtraction)
	}

	raw, err := e.Extract(ctx, doc)
	if err != nil {
		return nil, common.NewAppError("TEXT_EXTRACTION",
			fmt.Sprintf("extract text from %s", doc.Filename),
			fmt.Errorf("%w: %w", common.ErrTextExtraction, err))
	}

	text := postProcess(raw)
	if text == "" {
		return nil, common.NewAppError("TEXT_EXTRACTION",
			fmt.Sprintf("document %s produced no text", doc.Filename),
			common.ErrTextExtraction)
	}

	n.logger.Info("textextract.ok",
		"file", doc.Filename,
		"format", string(doc.Format),
		"text_bytes", len(text),
	)
	return &NormalizedText{Text: text, Doc: doc}, nil
}

var (
	spaceRuns   = regexp.MustCompile(`[ \t]+`)
	newlineRuns = regexp.MustCompile(`\n{3,}`)
)

// postProcess strips control characters (newlines excepted), collapses
// horizontal whitespace runs and squeezes blank-line runs.
func postProcess(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\t':
			b.WriteRune(r)
		case r == '\r':
			b.WriteByte('\n')
		case r < 0x20 || r == 0x7f:
			// drop control characters
		default:
			b.WriteRune(r)
		}
	}
	out := spaceRuns.ReplaceAllString(b.String(), " ")
	lines := strings.Split(out, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	out = strings.Join(lines, "\n")
	out = newlineRuns.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}
