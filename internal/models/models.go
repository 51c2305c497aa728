package models

// SourceKind is the decoding path chosen for an upload.
type SourceKind string

const (
	SourceKindPDF     SourceKind = "pdf"
	SourceKindText    SourceKind = "text"
	SourceKindUnknown SourceKind = "unknown"
)

// RawUpload is one generate request as received from the client. It lives only
// for the duration of the request.
type RawUpload struct {
	Data         []byte
	Filename     string // untrusted, may be empty
	NumQuestions int
	Difficulty   string
}

// ExtractedText is the plain text pulled out of an upload.
type ExtractedText struct {
	Content       string
	Kind          SourceKind
	OriginalChars int  // rune count after trimming, before the cap
	Truncated     bool // true when the cap cut the text
}

// RawQuestion is a single question object as returned by the model. Nothing
// about its shape is trusted.
type RawQuestion map[string]any

// QuizItem is the canonical question shape handed to the client.
type QuizItem struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	AnswerIndex  int      `json:"answerIndex"`
	AnswerLetter string   `json:"answerLetter"`
	Explanation  string   `json:"explanation"`
	Difficulty   string   `json:"difficulty"`
	Topic        string   `json:"topic"`
}

// Raw converts the item back into the loose model shape.
func (q QuizItem) Raw() RawQuestion {
	options := make([]any, len(q.Options))
	for i, o := range q.Options {
		options[i] = o
	}
	return RawQuestion{
		"question":    q.Question,
		"options":     options,
		"answer":      q.AnswerLetter,
		"explanation": q.Explanation,
		"difficulty":  q.Difficulty,
		"topic":       q.Topic,
	}
}

// Generation is the result of one call to the generation service.
type Generation struct {
	Items        []RawQuestion
	Model        string
	PromptTokens int32
	OutputTokens int32
	TotalTokens  int32
}

// AnswerCheckRequest is the body of the check endpoint. The indexes are left
// untyped so that numeric strings and floats from loose clients can be coerced.
type AnswerCheckRequest struct {
	Quiz          []QuizItem `json:"quiz"`
	QuestionIndex any        `json:"questionIndex"`
	SelectedIndex any        `json:"selectedIndex"`
}

// AnswerCheckResponse echoes the stored answer for one question.
type AnswerCheckResponse struct {
	Correct       bool   `json:"correct"`
	CorrectIndex  int    `json:"correctIndex"`
	CorrectLetter string `json:"correctLetter"`
	Explanation   string `json:"explanation"`
}

// GenerateQuizResponse is the body of the upload endpoint.
type GenerateQuizResponse struct {
	Success bool       `json:"success"`
	Quiz    []QuizItem `json:"quiz,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}
