package document

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"studyquiz/internal/apierr"
	"studyquiz/internal/models"
)

const (
	DefaultCharLimit = 12000
	DefaultMinChars  = 50
)

// ErrInsufficientInput means the document does not carry enough text to
// justify a generation call.
var ErrInsufficientInput = errors.New("file has insufficient text")

// Normalize trims text and caps it at limit characters. Text shorter than
// minChars after trimming is rejected; the check runs before the cap so that
// long documents are never rejected because of it. Non-positive arguments
// select the defaults.
func Normalize(text string, limit, minChars int) (string, error) {
	out, _, _, err := normalize(text, limit, minChars)
	return out, err
}

func normalize(text string, limit, minChars int) (string, int, bool, error) {
	if limit <= 0 {
		limit = DefaultCharLimit
	}
	if minChars <= 0 {
		minChars = DefaultMinChars
	}

	text = strings.TrimSpace(text)
	n := utf8.RuneCountInString(text)
	if n < minChars {
		return "", n, false, apierr.InputValidation("normalize",
			fmt.Errorf("%w (%d of %d characters)", ErrInsufficientInput, n, minChars))
	}
	if n <= limit {
		return text, n, false, nil
	}
	return truncateRunes(text, limit), n, true, nil
}

func truncateRunes(s string, limit int) string {
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}

// Prepare runs extraction and normalization for one upload.
func Prepare(data []byte, filename string, limit, minChars int) (models.ExtractedText, error) {
	raw, kind, err := Extract(data, filename)
	if err != nil {
		return models.ExtractedText{Kind: kind}, err
	}
	content, original, truncated, err := normalize(raw, limit, minChars)
	if err != nil {
		return models.ExtractedText{Kind: kind, OriginalChars: original}, err
	}
	return models.ExtractedText{
		Content:       content,
		Kind:          kind,
		OriginalChars: original,
		Truncated:     truncated,
	}, nil
}
