package document

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

var pdfMagic = []byte("%PDF-")

var errNoTextLayer = errors.New("PDF has no extractable text layer")

// sanitizePDF drops data appended after the last %%EOF marker. Files saved
// from web pages often carry trailing HTML that confuses the xref lookup.
func sanitizePDF(content []byte) []byte {
	if !bytes.HasPrefix(content, pdfMagic) {
		return content
	}
	eofMarker := []byte("%%EOF")
	lastEOF := bytes.LastIndex(content, eofMarker)
	if lastEOF == -1 {
		return content
	}
	end := lastEOF + len(eofMarker)
	for end < len(content) && (content[end] == '\n' || content[end] == '\r') {
		end++
	}
	return content[:end]
}

// extractPDF returns the text of every page, in page order, joined by newlines.
// The parser works on the in-memory buffer only.
func extractPDF(content []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("failed to parse PDF: %v", r)
		}
	}()

	content = sanitizePDF(content)
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("failed to parse PDF: %w", err)
	}

	numPages := reader.NumPage()
	if numPages == 0 {
		return "", errors.New("PDF has no pages")
	}

	parts := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		parts = append(parts, pageText)
	}

	text = strings.TrimSpace(strings.Join(parts, "\n"))
	if text == "" {
		return "", errNoTextLayer
	}
	return text, nil
}
