package services

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/pkg/errors"
)

type DocumentFormat string

const (
	FormatPDF     DocumentFormat = "pdf"
	FormatDOCX    DocumentFormat = "docx"
	FormatText    DocumentFormat = "text"
	FormatUnknown DocumentFormat = "unknown"
)

type DocumentExtractor interface {
	ExtractText(filename string, data []byte) (string, error)
}

type documentExtractor struct {
	maxChars int
}

// NewDocumentExtractor returns an extractor that truncates the text it
// returns to maxChars runes. maxChars <= 0 disables truncation.
func NewDocumentExtractor(maxChars int) DocumentExtractor {
	return &documentExtractor{maxChars: maxChars}
}

func (d *documentExtractor) ExtractText(filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.Wrapf(ErrUnreadableDocument, "%s: empty file", filename)
	}

	var (
		text string
		err  error
	)
	switch DetectFormat(filename, data) {
	case FormatPDF:
		text, err = extractPDFText(data)
	case FormatDOCX:
		text, err = extractDocxText(data)
	case FormatText:
		// legacy encodings such as Latin-1 keep their ASCII text
		text = strings.ToValidUTF8(string(data), string(utf8.RuneError))
	default:
		err = errors.Errorf("unsupported file type %q", filepath.Ext(filename))
	}
	if err != nil {
		return "", errors.Wrapf(ErrUnreadableDocument, "%s: %v", filename, err)
	}

	text = CleanText(text)
	if text == "" {
		return "", errors.Wrapf(ErrUnreadableDocument, "%s: no text content found", filename)
	}

	return truncateRunes(text, d.maxChars), nil
}

// DetectFormat sniffs the magic bytes first and falls back to the extension.
func DetectFormat(filename string, data []byte) DocumentFormat {
	switch {
	case bytes.HasPrefix(data, []byte("%PDF-")):
		return FormatPDF
	case bytes.HasPrefix(data, []byte("PK\x03\x04")):
		return FormatDOCX
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return FormatPDF
	case ".docx":
		return FormatDOCX
	case ".txt", ".md", ".text":
		return FormatText
	}
	return FormatUnknown
}

func extractPDFText(data []byte) (text string, err error) {
	// The pdf package panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to read PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", errors.Wrap(err, "failed to open PDF")
	}

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// keep whatever the other pages yield
			continue
		}

		textBuilder.WriteString(pageText)
		textBuilder.WriteString("\n\n")
	}

	return textBuilder.String(), nil
}

func extractDocxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", errors.Wrap(err, "failed to parse docx")
	}
	defer doc.Close()

	return documentXMLText(doc.Editable().GetContent())
}

// documentXMLText flattens WordprocessingML into plain text, one line per paragraph.
func documentXMLText(content string) (string, error) {
	decoder := xml.NewDecoder(strings.NewReader(content))

	var (
		textBuilder strings.Builder
		inText      bool
	)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", errors.Wrap(err, "failed to decode document.xml")
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				textBuilder.WriteString("\t")
			case "br":
				textBuilder.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				textBuilder.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				textBuilder.Write(t)
			}
		}
	}

	return textBuilder.String(), nil
}

// CleanText trims every line and drops blank ones.
func CleanText(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	var cleanedLines []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}

	return strings.Join(cleanedLines, "\n")
}

func truncateRunes(text string, max int) string {
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return string(runes[:max])
}
