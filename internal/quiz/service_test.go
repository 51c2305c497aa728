package quiz

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"studyquiz/internal/apierr"
	"studyquiz/internal/document"
	"studyquiz/internal/models"
)

type fakeGenerator struct {
	calls   int
	prompt  string
	schema  *models.Schema
	items   []models.RawQuestion
	err     error
	waitCtx bool
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string, schema *models.Schema) (*models.Generation, error) {
	f.calls++
	f.prompt = prompt
	f.schema = schema
	if f.waitCtx {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return &models.Generation{Items: f.items, Model: "fake", PromptTokens: 10, OutputTokens: 20, TotalTokens: 30}, nil
}

func notes(n int) []byte {
	return []byte(strings.Repeat("a", n))
}

func testLimits() Limits {
	return Limits{TextCharLimit: 12000, MinTextChars: 50, GenerationTimeout: time.Minute}
}

func TestService_Generate(t *testing.T) {
	gen := &fakeGenerator{items: []models.RawQuestion{
		{"question": "Q1", "options": []any{"a", "b", "c", "d"}, "answer": "B"},
		{"question": "Q2", "options": []any{"a", "b"}, "answer": "maybe"},
		{"question": "Q3"},
	}}
	svc := NewService(gen, testLimits(), nil)

	res, err := svc.Generate(context.Background(), models.RawUpload{
		Data: notes(200), Filename: "notes.txt", NumQuestions: 3, Difficulty: "easy",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gen.calls != 1 {
		t.Fatalf("got calls=%d want=1", gen.calls)
	}
	if !strings.Contains(gen.prompt, "exactly 3 multiple-choice questions") {
		t.Fatalf("prompt does not carry the count:\n%s", gen.prompt)
	}
	if gen.schema == nil || gen.schema.Type != models.TypeArray {
		t.Fatalf("expected array schema, got %+v", gen.schema)
	}
	if len(res.Quiz) != 3 {
		t.Fatalf("got items=%d want=3", len(res.Quiz))
	}
	if res.Quiz[0].AnswerIndex != 1 || res.Quiz[0].AnswerLetter != "B" {
		t.Fatalf("unexpected first item %+v", res.Quiz[0])
	}
	if res.Defaulted != 2 {
		t.Fatalf("got defaulted=%d want=2", res.Defaulted)
	}
	if res.Text.Kind != models.SourceKindText || res.Text.OriginalChars != 200 {
		t.Fatalf("unexpected text metadata %+v", res.Text)
	}
}

func TestService_InsufficientTextSkipsGenerator(t *testing.T) {
	gen := &fakeGenerator{}
	svc := NewService(gen, testLimits(), nil)

	_, err := svc.Generate(context.Background(), models.RawUpload{Data: notes(10), Filename: "short.txt", NumQuestions: 5})
	if !errors.Is(err, document.ErrInsufficientInput) {
		t.Fatalf("expected ErrInsufficientInput, got %v", err)
	}
	if apierr.KindOf(err) != apierr.KindInputValidation {
		t.Fatalf("got kind=%s want=%s", apierr.KindOf(err), apierr.KindInputValidation)
	}
	if gen.calls != 0 {
		t.Fatalf("generator must not be called, got calls=%d", gen.calls)
	}
}

func TestService_TruncatesBeforeGenerating(t *testing.T) {
	gen := &fakeGenerator{items: []models.RawQuestion{{"question": "Q"}}}
	svc := NewService(gen, Limits{TextCharLimit: 100, MinTextChars: 50}, nil)

	res, err := svc.Generate(context.Background(), models.RawUpload{Data: notes(150), Filename: "n.txt", NumQuestions: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Text.Truncated || len(res.Text.Content) != 100 {
		t.Fatalf("expected text capped at 100, got truncated=%v len=%d", res.Text.Truncated, len(res.Text.Content))
	}
	if strings.Contains(gen.prompt, strings.Repeat("a", 101)) {
		t.Fatalf("prompt carries more than the capped text")
	}
}

func TestService_NotConfigured(t *testing.T) {
	svc := NewService(nil, testLimits(), nil)
	if svc.Configured() {
		t.Fatalf("service without generator reports configured")
	}
	_, err := svc.Generate(context.Background(), models.RawUpload{Data: notes(200), Filename: "n.txt", NumQuestions: 1})
	if apierr.KindOf(err) != apierr.KindConfiguration {
		t.Fatalf("got kind=%s want=%s", apierr.KindOf(err), apierr.KindConfiguration)
	}
	if apierr.Status(err) != 500 {
		t.Fatalf("got status=%d want=500", apierr.Status(err))
	}
}

func TestService_GenerationFailures(t *testing.T) {
	upload := models.RawUpload{Data: notes(200), Filename: "n.txt", NumQuestions: 2}

	empty := NewService(&fakeGenerator{items: nil}, testLimits(), nil)
	if _, err := empty.Generate(context.Background(), upload); !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}

	boom := errors.New("upstream unavailable")
	failing := NewService(&fakeGenerator{err: boom}, testLimits(), nil)
	res, err := failing.Generate(context.Background(), upload)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped upstream error, got %v", err)
	}
	if apierr.KindOf(err) != apierr.KindGeneration {
		t.Fatalf("got kind=%s want=%s", apierr.KindOf(err), apierr.KindGeneration)
	}
	if res == nil || res.Text.Content == "" {
		t.Fatalf("expected partial result with extracted text")
	}
}

func TestService_CancellationReachesGenerator(t *testing.T) {
	gen := &fakeGenerator{waitCtx: true}
	svc := NewService(gen, testLimits(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := svc.Generate(ctx, models.RawUpload{Data: notes(200), Filename: "n.txt", NumQuestions: 1})
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("generation did not observe cancellation")
	}
}

func TestService_GenerationTimeout(t *testing.T) {
	gen := &fakeGenerator{waitCtx: true}
	svc := NewService(gen, Limits{GenerationTimeout: 20 * time.Millisecond}, nil)

	_, err := svc.Generate(context.Background(), models.RawUpload{Data: notes(200), Filename: "n.txt", NumQuestions: 1})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
