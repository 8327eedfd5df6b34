package document

import (
	"time"

	"github.com/yogeshhk/MiningResume/constants"
)

// Document is a validated resume file with its raw bytes and metadata.
// Immutable once read.
type Document struct {
	SourcePath string
	Filename   string
	Format     constants.FileFormat
	SizeBytes  int64
	Content    []byte
	ReadAt     time.Time
}
