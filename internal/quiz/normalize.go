package quiz

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"studyquiz/internal/models"
)

const (
	// OptionCount is the number of options every question carries.
	OptionCount = 4
	// PlaceholderOption pads questions that came back with too few options.
	PlaceholderOption = "N/A"

	DefaultDifficulty = DifficultyMixed
	DefaultTopic      = "General"
)

const answerLetters = "ABCD"

// LetterFor returns the answer letter for a valid index.
func LetterFor(index int) string {
	return answerLetters[index : index+1]
}

// Normalize converts loosely-typed model output into canonical quiz items. It
// never fails and never drops or reorders items: malformed fields fall back to
// fixed defaults.
func Normalize(items []models.RawQuestion) []models.QuizItem {
	out := make([]models.QuizItem, 0, len(items))
	for _, item := range items {
		out = append(out, NormalizeItem(item))
	}
	return out
}

// NormalizeItem normalizes a single question.
func NormalizeItem(item models.RawQuestion) models.QuizItem {
	idx, _ := resolveAnswerIndex(item)
	return models.QuizItem{
		Question:     stringField(item, "question", ""),
		Options:      normalizeOptions(item["options"]),
		AnswerIndex:  idx,
		AnswerLetter: LetterFor(idx),
		Explanation:  stringField(item, "explanation", ""),
		Difficulty:   stringField(item, "difficulty", DefaultDifficulty),
		Topic:        stringField(item, "topic", DefaultTopic),
	}
}

// AnswerResolved reports whether the item carries an answer that maps onto an
// option. Items for which it returns false are normalized to index 0.
func AnswerResolved(item models.RawQuestion) bool {
	_, ok := resolveAnswerIndex(item)
	return ok
}

// resolveAnswerIndex locates the correct option. The model's "answer" letter is
// the primary source; canonical items carry "answerLetter"/"answerIndex"
// instead. Anything unmapped resolves to 0.
func resolveAnswerIndex(item models.RawQuestion) (int, bool) {
	if v, ok := item["answer"]; ok && v != nil {
		return letterIndex(toString(v))
	}
	if v, ok := item["answerLetter"]; ok && v != nil {
		return letterIndex(toString(v))
	}
	if v, ok := item["answerIndex"]; ok && v != nil {
		if i, ok := toInt(v); ok && i >= 0 && i < OptionCount {
			return i, true
		}
	}
	return 0, false
}

func letterIndex(s string) (int, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 1 {
		return 0, false
	}
	i := strings.Index(answerLetters, s)
	if i < 0 {
		return 0, false
	}
	return i, true
}

func normalizeOptions(v any) []string {
	options := make([]string, 0, OptionCount)
	if list, ok := v.([]any); ok {
		for _, o := range list {
			if len(options) == OptionCount {
				break
			}
			options = append(options, strings.TrimSpace(toString(o)))
		}
	} else if list, ok := v.([]string); ok {
		for _, o := range list {
			if len(options) == OptionCount {
				break
			}
			options = append(options, strings.TrimSpace(o))
		}
	}
	for len(options) < OptionCount {
		options = append(options, PlaceholderOption)
	}
	return options
}

func stringField(item models.RawQuestion, key, def string) string {
	v, ok := item[key]
	if !ok || v == nil {
		return def
	}
	s := strings.TrimSpace(toString(v))
	if s == "" {
		return def
	}
	return s
}

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// toInt coerces JSON numbers and numeric strings to an int. Non-integral
// values are rejected.
func toInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int32:
		return int(t), true
	case int64:
		return int(t), true
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) || t != math.Trunc(t) {
			return 0, false
		}
		return int(t), true
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return int(i), true
		}
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return toInt(f)
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return toInt(f)
	default:
		return 0, false
	}
}
