package quiz

import (
	"encoding/json"
	"errors"
	"testing"

	"studyquiz/internal/apierr"
	"studyquiz/internal/models"
)

func sampleQuiz() []models.QuizItem {
	return []models.QuizItem{{
		Question:     "Which organelle produces ATP?",
		Options:      []string{"Nucleus", "Ribosome", "Mitochondrion", "Golgi body"},
		AnswerIndex:  2,
		AnswerLetter: "C",
		Explanation:  "e",
		Difficulty:   "easy",
		Topic:        "Cells",
	}}
}

func TestCheck_CorrectAndIncorrect(t *testing.T) {
	items := sampleQuiz()

	got, err := Check(items, 0, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := models.AnswerCheckResponse{Correct: true, CorrectIndex: 2, CorrectLetter: "C", Explanation: "e"}
	if got != want {
		t.Fatalf("got=%+v want=%+v", got, want)
	}

	got, err = Check(items, 0, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want.Correct = false
	if got != want {
		t.Fatalf("got=%+v want=%+v", got, want)
	}
}

func TestCheck_InvalidIndex(t *testing.T) {
	items := sampleQuiz()
	for _, idx := range []int{-1, 1, 5} {
		_, err := Check(items, idx, 0)
		if !errors.Is(err, ErrInvalidIndex) {
			t.Fatalf("index %d: expected ErrInvalidIndex, got %v", idx, err)
		}
		if apierr.Status(err) != 400 {
			t.Fatalf("index %d: got status=%d want=400", idx, apierr.Status(err))
		}
	}
	if _, err := Check(nil, 0, 0); !errors.Is(err, ErrInvalidIndex) {
		t.Fatalf("empty quiz: expected ErrInvalidIndex, got %v", err)
	}
}

func TestCheck_EchoesStoredValues(t *testing.T) {
	// Stored values are trusted as-is, even when they disagree with each other.
	items := []models.QuizItem{{AnswerIndex: 1, AnswerLetter: "D", Explanation: "x"}}
	got, err := Check(items, 0, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Correct || got.CorrectIndex != 1 || got.CorrectLetter != "D" {
		t.Fatalf("unexpected response %+v", got)
	}

	got, err = Check([]models.QuizItem{{AnswerIndex: 0}}, 0, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.CorrectLetter != "A" || got.Correct {
		t.Fatalf("unexpected response %+v", got)
	}
}

func TestCheckRequest_Coercion(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		correct bool
		wantErr bool
	}{
		{"ints", `{"questionIndex":0,"selectedIndex":2}`, true, false},
		{"float", `{"questionIndex":0.0,"selectedIndex":2.0}`, true, false},
		{"strings", `{"questionIndex":"0","selectedIndex":"2"}`, true, false},
		{"wrong", `{"questionIndex":0,"selectedIndex":3}`, false, false},
		{"missing selection", `{"questionIndex":0}`, false, false},
		{"garbage selection", `{"questionIndex":0,"selectedIndex":"two"}`, false, false},
		{"fractional selection", `{"questionIndex":0,"selectedIndex":2.5}`, false, false},
		{"missing question", `{"selectedIndex":2}`, false, true},
		{"garbage question", `{"questionIndex":"first","selectedIndex":2}`, false, true},
		{"out of range", `{"questionIndex":5,"selectedIndex":2}`, false, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var req models.AnswerCheckRequest
			if err := json.Unmarshal([]byte(tc.body), &req); err != nil {
				t.Fatalf("bad fixture: %v", err)
			}
			req.Quiz = sampleQuiz()

			got, err := CheckRequest(req)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidIndex) {
					t.Fatalf("expected ErrInvalidIndex, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Correct != tc.correct {
				t.Fatalf("got correct=%v want=%v", got.Correct, tc.correct)
			}
			if got.CorrectIndex != 2 || got.CorrectLetter != "C" {
				t.Fatalf("unexpected response %+v", got)
			}
		})
	}
}
