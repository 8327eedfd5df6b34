package document

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/yogeshhk/MiningResume/constants"
	"github.com/yogeshhk/MiningResume/internal/common"
)

// Reader validates and loads resume documents.
type Reader struct {
	maxBytes int64
	logger   *slog.Logger
}

func NewReader(maxFileSizeMB int64, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	if maxFileSizeMB <= 0 {
		maxFileSizeMB = 10
	}
	return &Reader{maxBytes: maxFileSizeMB << 20, logger: logger}
}

// Read validates path and loads the document bytes plus metadata.
// Fails with common.ErrUnsupportedFormat when the extension is not in the
// allow-list and common.ErrDocumentRead for I/O or size-bound violations.
func (r *Reader) Read(path string) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, common.NewAppError("DOCUMENT_READ",
			fmt.Sprintf("stat %s", path),
			fmt.Errorf("%w: %w", common.ErrDocumentRead, err))
	}
	if info.IsDir() {
		return nil, common.NewAppError("DOCUMENT_READ",
			fmt.Sprintf("%s is a directory", path), common.ErrDocumentRead)
	}

	format := constants.MapExtToFormat(filepath.Ext(path))
	if format == "" {
		return nil, common.NewAppError("UNSUPPORTED_FORMAT",
			fmt.Sprintf("extension %q is not supported (formats: %v)",
				filepath.Ext(path), constants.FileFormats),
			common.ErrUnsupportedFormat)
	}

	if info.Size() > r.maxBytes {
		return nil, common.NewAppError("DOCUMENT_READ",
			fmt.Sprintf("file size %d exceeds limit %d", info.Size(), r.maxBytes),
			common.ErrDocumentRead)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, common.NewAppError("DOCUMENT_READ",
			fmt.Sprintf("read %s", path),
			fmt.Errorf("%w: %w", common.ErrDocumentRead, err))
	}

	doc := &Document{
		SourcePath: path,
		Filename:   filepath.Base(path),
		Format:     format,
		SizeBytes:  info.Size(),
		Content:    content,
		ReadAt:     time.Now(),
	}

	r.logger.Info("document.read.ok",
		"file", doc.Filename,
		"format", string(doc.Format),
		"size_bytes", doc.SizeBytes,
	)
	return doc, nil
}
