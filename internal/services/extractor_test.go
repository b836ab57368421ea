package services

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func buildDocx(t *testing.T, paragraphs ...string) []byte {
	t.Helper()

	var body strings.Builder
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t>` + p + `</w:t></w:r></w:p>`)
	}
	documentXML := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body.String() + `</w:body></w:document>`

	files := map[string]string{
		"[Content_Types].xml":          `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"></Types>`,
		"word/document.xml":            documentXML,
		"word/_rels/document.xml.rels": `<?xml version="1.0" encoding="UTF-8"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// buildPDF writes a one-page PDF that shows line with the Helvetica base font.
func buildPDF(t *testing.T, line string) []byte {
	t.Helper()

	content := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", line)
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestDetectFormat(t *testing.T) {
	cases := []struct {
		name     string
		filename string
		data     []byte
		want     DocumentFormat
	}{
		{"pdf magic", "resume.bin", []byte("%PDF-1.7 ..."), FormatPDF},
		{"zip magic", "resume", []byte("PK\x03\x04rest"), FormatDOCX},
		{"pdf extension", "Resume.PDF", []byte("garbage"), FormatPDF},
		{"text extension", "notes.txt", []byte("hello"), FormatText},
		{"markdown", "cv.md", []byte("# CV"), FormatText},
		{"unknown", "photo.png", []byte{0x89, 'P', 'N', 'G'}, FormatUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, DetectFormat(tc.filename, tc.data))
		})
	}
}

func TestExtractText(t *testing.T) {
	extractor := NewDocumentExtractor(0)

	t.Run("plain text is cleaned", func(t *testing.T) {
		text, err := extractor.ExtractText("jane.txt", []byte("  Jane Doe  \n\n\n Go developer\n"))
		require.NoError(t, err)
		require.Equal(t, "Jane Doe\nGo developer", text)
	})

	t.Run("valid pdf", func(t *testing.T) {
		text, err := extractor.ExtractText("jane.pdf", buildPDF(t, "Jane Doe Go Engineer"))
		require.NoError(t, err)
		require.Contains(t, text, "Jane Doe Go Engineer")
	})

	t.Run("docx paragraphs", func(t *testing.T) {
		data := buildDocx(t, "John Smith", "Senior Backend Engineer", "Go, PostgreSQL")
		text, err := extractor.ExtractText("john.docx", data)
		require.NoError(t, err)
		require.Equal(t, "John Smith\nSenior Backend Engineer\nGo, PostgreSQL", text)
	})

	t.Run("corrupted pdf", func(t *testing.T) {
		_, err := extractor.ExtractText("broken.pdf", []byte("%PDF-1.4\nthis is not really a pdf"))
		require.Error(t, err)
		require.True(t, errors.Is(err, ErrUnreadableDocument))
		require.Contains(t, err.Error(), "broken.pdf")
	})

	t.Run("corrupted docx", func(t *testing.T) {
		_, err := extractor.ExtractText("broken.docx", []byte("PK\x03\x04 truncated"))
		require.True(t, errors.Is(err, ErrUnreadableDocument))
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := extractor.ExtractText("empty.txt", nil)
		require.True(t, errors.Is(err, ErrUnreadableDocument))
	})

	t.Run("whitespace only", func(t *testing.T) {
		_, err := extractor.ExtractText("blank.txt", []byte(" \n\t\n "))
		require.True(t, errors.Is(err, ErrUnreadableDocument))
	})

	t.Run("latin1 text keeps readable characters", func(t *testing.T) {
		text, err := extractor.ExtractText("latin1.txt", []byte("Jos\xe9 Garc\xeda\nGo developer"))
		require.NoError(t, err)
		require.Equal(t, "Jos\uFFFD Garc\uFFFDa\nGo developer", text)
	})

	t.Run("unsupported type", func(t *testing.T) {
		_, err := extractor.ExtractText("photo.png", []byte{0x89, 'P', 'N', 'G'})
		require.True(t, errors.Is(err, ErrUnreadableDocument))
		require.Contains(t, err.Error(), ".png")
	})
}

func TestExtractTextTruncates(t *testing.T) {
	extractor := NewDocumentExtractor(5)
	text, err := extractor.ExtractText("long.txt", []byte("héllo world"))
	require.NoError(t, err)
	require.Equal(t, "héllo", text)
}

func TestCleanText(t *testing.T) {
	require.Equal(t, "a\nb", CleanText("\n  a \n\n   \n b  \n"))
	require.Equal(t, "", CleanText("   "))
}
