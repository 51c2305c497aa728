package quiz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"studyquiz/internal/apierr"
	"studyquiz/internal/document"
	"studyquiz/internal/logger"
	"studyquiz/internal/models"
)

// Generator is the narrow boundary to a structured-output model provider.
type Generator interface {
	Generate(ctx context.Context, prompt string, schema *models.Schema) (*models.Generation, error)
}

// ErrGeneratorNotConfigured is returned when no provider credentials were supplied.
var ErrGeneratorNotConfigured = errors.New("GEMINI_API_KEY not set")

// ErrNoQuestions is returned when the provider answered with an empty array.
var ErrNoQuestions = errors.New("model returned no questions")

// Limits bounds the work done for a single upload.
type Limits struct {
	TextCharLimit     int
	MinTextChars      int
	GenerationTimeout time.Duration
}

// Result is everything the pipeline learned while serving one upload.
type Result struct {
	Quiz       []models.QuizItem
	Text       models.ExtractedText
	Generation *models.Generation
	Defaulted  int // items whose answer could not be mapped and fell back to A
}

// Service runs the upload to quiz pipeline. It holds no per-request state and
// is safe for concurrent use.
type Service struct {
	gen    Generator
	limits Limits
	log    *logger.Logger
}

func NewService(gen Generator, limits Limits, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{gen: gen, limits: limits, log: log.With("component", "QuizService")}
}

// Configured reports whether a generator is available.
func (s *Service) Configured() bool {
	return s.gen != nil
}

// Generate extracts and bounds the upload text, asks the generator for
// questions and normalizes them. Insufficient text is rejected before any
// generation call is made. ctx cancellation is passed through to the
// generator.
func (s *Service) Generate(ctx context.Context, upload models.RawUpload) (*Result, error) {
	if s.gen == nil {
		return nil, apierr.Configuration("generate", ErrGeneratorNotConfigured)
	}

	text, err := document.Prepare(upload.Data, upload.Filename, s.limits.TextCharLimit, s.limits.MinTextChars)
	if err != nil {
		return &Result{Text: text}, err
	}

	prompt := BuildPrompt(text.Content, upload.NumQuestions, upload.Difficulty)

	genCtx := ctx
	if s.limits.GenerationTimeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, s.limits.GenerationTimeout)
		defer cancel()
	}

	generation, err := s.gen.Generate(genCtx, prompt, models.QuestionSchema())
	if err != nil {
		res := &Result{Text: text, Generation: generation}
		var apiErr *apierr.Error
		if errors.As(err, &apiErr) {
			return res, err
		}
		return res, apierr.Generation("generate", fmt.Errorf("generation failed: %w", err))
	}
	if generation == nil || len(generation.Items) == 0 {
		return &Result{Text: text, Generation: generation}, apierr.Generation("generate", ErrNoQuestions)
	}

	res := &Result{Text: text, Generation: generation}
	for i, item := range generation.Items {
		if !AnswerResolved(item) {
			res.Defaulted++
			s.log.Warn("Answer could not be mapped, defaulting to A", "item", i, "answer", fmt.Sprint(item["answer"]))
		}
	}
	res.Quiz = Normalize(generation.Items)
	return res, nil
}
