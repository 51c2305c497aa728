// Package document turns uploaded bytes into bounded plain text.
package document

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"studyquiz/internal/apierr"
	"studyquiz/internal/models"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ErrEmptyUpload is returned for a zero-length buffer.
var ErrEmptyUpload = errors.New("uploaded file is empty")

// DetectKind picks the decoding path from the declared name and the leading
// bytes. A PDF magic header wins over any other extension.
func DetectKind(data []byte, filename string) models.SourceKind {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(filename)))
	if ext == ".pdf" || bytes.HasPrefix(data, pdfMagic) {
		return models.SourceKindPDF
	}
	if ext == ".txt" {
		return models.SourceKindText
	}
	return models.SourceKindUnknown
}

// Extract decodes data into plain text. Unknown kinds are decoded as UTF-8 on a
// best-effort basis, so binary input yields garbled text instead of an error.
func Extract(data []byte, filename string) (string, models.SourceKind, error) {
	kind := DetectKind(data, filename)
	if len(data) == 0 {
		return "", kind, apierr.InputValidation("extract", ErrEmptyUpload)
	}

	switch kind {
	case models.SourceKindPDF:
		text, err := extractPDF(data)
		if err != nil {
			return "", kind, apierr.Extraction("extract pdf", err)
		}
		return text, kind, nil
	default:
		return decodeText(data), kind, nil
	}
}

// decodeText decodes data as UTF-8, dropping invalid sequences and NUL bytes.
func decodeText(data []byte) string {
	data = bytes.TrimPrefix(data, utf8BOM)
	s := string(data)
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	return strings.ReplaceAll(s, "\x00", "")
}
