package textextract

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yogeshhk/MiningResume/constants"
	"github.com/yogeshhk/MiningResume/internal/common"
	"github.com/yogeshhk/MiningResume/internal/document"
)

func txtDoc(content string) *document.Document {
	return &document.Document{
		Filename: "resume.txt",
		Format:   constants.TXT,
		Content:  []byte(content),
	}
}

func TestExtractTXT(t *testing.T) {
	n := NewNormalizer(nil)
	norm, err := n.Extract(context.Background(), txtDoc("John Smith\njohn@example.com\n"))
	require.NoError(t, err)
	assert.Equal(t, "John Smith\njohn@example.com", norm.Text)
	assert.Equal(t, "resume.txt", norm.Doc.Filename)
}

func TestExtractNormalizesWhitespace(t *testing.T) {
	n := NewNormalizer(nil)
	norm, err := n.Extract(context.Background(), txtDoc("John   Smith\t\tEngineer\r\n\n\n\n\nSkills\n  Go  \n"))
	require.NoError(t, err)
	assert.Equal(t, "John Smith Engineer\n\nSkills\nGo", norm.Text)
}

func TestExtractStripsControlCharacters(t *testing.T) {
	n := NewNormalizer(nil)
	norm, err := n.Extract(context.Background(), txtDoc("John\x00\x08 Smith\x7f"))
	require.NoError(t, err)
	assert.Equal(t, "John Smith", norm.Text)
}

func TestExtractEmptyDocumentFails(t *testing.T) {
	n := NewNormalizer(nil)
	_, err := n.Extract(context.Background(), txtDoc("   \n\t\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrTextExtraction)
}

func TestExtractUnknownFormatFails(t *testing.T) {
	n := NewNormalizer(nil)
	_, err := n.Extract(context.Background(), &document.Document{
		Filename: "resume.odt",
		Format:   constants.FileFormat("ODT"),
		Content:  []byte("x"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrTextExtraction)
}

const docxBody = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>John Smith</w:t></w:r></w:p>
    <w:p><w:r><w:t>Senior</w:t></w:r><w:r><w:tab/></w:r><w:r><w:t>Engineer</w:t></w:r></w:p>
    <w:p><w:r><w:t>first line</w:t><w:br/><w:t>second line</w:t></w:r></w:p>
  </w:body>
</w:document>`

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtractDOCX(t *testing.T) {
	n := NewNormalizer(nil)
	norm, err := n.Extract(context.Background(), &document.Document{
		Filename: "resume.docx",
		Format:   constants.DOCX,
		Content:  buildDocx(t, docxBody),
	})
	require.NoError(t, err)
	// The run tab survives extraction but post-processing collapses it to a space.
	assert.Equal(t, "John Smith\nSenior Engineer\nfirst line\nsecond line", norm.Text)
}

func TestExtractDOCXNotAnArchive(t *testing.T) {
	n := NewNormalizer(nil)
	_, err := n.Extract(context.Background(), &document.Document{
		Filename: "resume.docx",
		Format:   constants.DOCX,
		Content:  []byte("definitely not a zip file"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrTextExtraction)
}

func TestExtractDOCXMissingDocumentXML(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/styles.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte("<styles/>"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	n := NewNormalizer(nil)
	_, err = n.Extract(context.Background(), &document.Document{
		Filename: "resume.docx",
		Format:   constants.DOCX,
		Content:  buf.Bytes(),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrTextExtraction)
}

func TestDefaultExtractorsCoverAllFormats(t *testing.T) {
	n := NewNormalizer(nil)
	for _, f := range constants.FileFormats {
		assert.Contains(t, n.extractors, f, "no extractor for format %s", f)
	}
}

func TestRegisterReplacesExtractor(t *testing.T) {
	n := NewNormalizer(nil)
	n.Register(constants.TXT, extractorFunc(func(context.Context, *document.Document) (string, error) {
		return "replaced", nil
	}))
	norm, err := n.Extract(context.Background(), txtDoc("original"))
	require.NoError(t, err)
	assert.Equal(t, "replaced", norm.Text)
}

type extractorFunc func(ctx context.Context, doc *document.Document) (string, error)

func (f extractorFunc) Extract(ctx context.Context, doc *document.Document) (string, error) {
	return f(ctx, doc)
}
