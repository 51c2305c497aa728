package quiz

import (
	"fmt"
	"strings"
)

// Difficulty labels accepted from clients.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
	DifficultyMixed  = "mixed"
)

// Difficulties lists the accepted labels in display order.
var Difficulties = []string{DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyMixed}

type calculationMix struct {
	share      string
	complexity string
}

var calculationGuidance = map[string]calculationMix{
	DifficultyEasy:   {"15-20%", "simple calculations and direct formula applications"},
	DifficultyMedium: {"25-30%", "moderate calculations, multi-step problems and formula derivations"},
	DifficultyHard:   {"30-40%", "complex calculations, multi-concept problems and advanced formula manipulation"},
	DifficultyMixed:  {"20-30%", "calculation complexity varied across difficulty levels"},
}

// BuildPrompt renders the generation instruction for the given notes. The
// output schema itself is attached to the request by the generator.
func BuildPrompt(text string, numQuestions int, difficulty string) string {
	difficulty = strings.ToLower(strings.TrimSpace(difficulty))
	mix, ok := calculationGuidance[difficulty]
	if !ok {
		difficulty = DifficultyMixed
		mix = calculationGuidance[DifficultyMixed]
	}

	var b strings.Builder
	b.WriteString("You are an expert educational content creator.\n\n")
	fmt.Fprintf(&b, "Create exactly %d multiple-choice questions from the notes below.\n\n", numQuestions)
	b.WriteString("Rules:\n")
	b.WriteString("- Base every question strictly on the supplied notes; do not use outside facts.\n")
	b.WriteString(`- Each question must have exactly 4 options in an "options" array, in the order A, B, C, D.` + "\n")
	b.WriteString("- Every option must be a plausible answer informed by the notes; never use generic placeholders.\n")
	b.WriteString(`- "answer" must be exactly one of "A", "B", "C", "D".` + "\n")
	b.WriteString(`- Provide a one-sentence "explanation" of why the answer is correct.` + "\n")
	b.WriteString(`- Include a "topic" and a "difficulty" (easy, medium or hard) for each question.` + "\n")
	fmt.Fprintf(&b, "- If the notes contain formulas or numerical examples, make %s of the questions calculation based, using %s.\n", mix.share, mix.complexity)
	b.WriteString("- Avoid ambiguity: exactly one option is correct.\n\n")
	fmt.Fprintf(&b, "Difficulty preference: %s\n\n", difficulty)
	b.WriteString("Return ONLY a JSON array that conforms to the response schema included with this request.\n\n")
	b.WriteString("Notes:\n\"\"\"\n")
	b.WriteString(text)
	b.WriteString("\n\"\"\"\n")
	return b.String()
}
