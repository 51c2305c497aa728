package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"studyquiz/internal/apierr"
	"studyquiz/internal/db"
	"studyquiz/internal/models"
	"studyquiz/internal/quiz"

	"github.com/gin-gonic/gin"
)

const (
	defaultNumQuestions = 5
	maxFieldBytes       = 256
	// formOverheadBytes is the body allowance on top of the file for
	// boundaries, part headers and the small text fields.
	formOverheadBytes = 64 << 10
)

var (
	errFileMissing     = errors.New("file part missing")
	errUploadTooLarge  = errors.New("upload too large")
	errInvalidQuestion = errors.New("num_q must be an integer")
)

// generateParams are the validated form fields of an upload.
type generateParams struct {
	NumQuestions int    `form:"num_q" validate:"gte=1"`
	Difficulty   string `form:"difficulty" validate:"oneof=easy medium hard mixed"`
}

type uploadForm struct {
	data       []byte
	filename   string
	hasFile    bool
	numQ       string
	difficulty string
}

// HandleGenerateQuiz turns one uploaded document into a quiz.
// The upload is read into memory and never written to disk.
func (h *Handler) HandleGenerateQuiz(c *gin.Context) {
	start := time.Now()

	if h.quiz == nil || !h.quiz.Configured() {
		h.failGenerate(c, apierr.Configuration("generate", quiz.ErrGeneratorNotConfigured))
		return
	}

	form, err := h.readUpload(c)
	if err != nil {
		h.failGenerate(c, err)
		return
	}

	params, err := h.parseParams(form)
	if err != nil {
		h.failGenerate(c, err)
		return
	}

	upload := models.RawUpload{
		Data:         form.data,
		Filename:     form.filename,
		NumQuestions: params.NumQuestions,
		Difficulty:   params.Difficulty,
	}
	log := h.requestLog(c)
	log.Info("Generating quiz",
		"upload_bytes", len(upload.Data),
		"num_questions", upload.NumQuestions,
		"difficulty", upload.Difficulty,
	)

	res, err := h.quiz.Generate(c.Request.Context(), upload)
	h.record(c, start, upload, res, err)
	if err != nil {
		h.failGenerate(c, err)
		return
	}

	log.Info("Quiz generated",
		"source_kind", res.Text.Kind,
		"text_chars", res.Text.OriginalChars,
		"truncated", res.Text.Truncated,
		"items", len(res.Quiz),
		"defaulted_answers", res.Defaulted,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	c.JSON(http.StatusOK, models.GenerateQuizResponse{Success: true, Quiz: res.Quiz})
}

func (h *Handler) failGenerate(c *gin.Context, err error) {
	status := h.statusFor(c, "Quiz generation", err)
	c.JSON(status, models.GenerateQuizResponse{Success: false, Error: err.Error()})
}

// readUpload streams the multipart body part by part. Only the file part is
// buffered, bounded by MaxUploadBytes.
func (h *Handler) readUpload(c *gin.Context) (*uploadForm, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.opts.MaxUploadBytes+formOverheadBytes)

	mr, err := c.Request.MultipartReader()
	if err != nil {
		return nil, apierr.InputValidation("upload", fmt.Errorf("expected a multipart form: %w", err))
	}

	form := &uploadForm{}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, h.uploadError(err)
		}

		switch part.FormName() {
		case "file":
			if form.hasFile {
				_, err = io.Copy(io.Discard, part)
			} else {
				form.hasFile = true
				form.filename = part.FileName()
				form.data, err = h.readFile(part)
			}
		case "num_q":
			form.numQ, err = readField(part)
		case "difficulty":
			form.difficulty, err = readField(part)
		default:
			_, err = io.Copy(io.Discard, part)
		}
		part.Close()
		if err != nil {
			return nil, h.uploadError(err)
		}
	}

	if !form.hasFile {
		return nil, apierr.InputValidation("upload", errFileMissing)
	}
	return form, nil
}

func (h *Handler) readFile(part *multipart.Part) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(part, h.opts.MaxUploadBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > h.opts.MaxUploadBytes {
		return nil, errUploadTooLarge
	}
	return data, nil
}

func readField(part *multipart.Part) (string, error) {
	b, err := io.ReadAll(io.LimitReader(part, maxFieldBytes))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

func (h *Handler) uploadError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.Is(err, errUploadTooLarge) || errors.As(err, &maxErr) {
		return apierr.New(apierr.KindPayloadTooLarge, "upload",
			fmt.Errorf("%w: limit is %d bytes", errUploadTooLarge, h.opts.MaxUploadBytes))
	}
	return apierr.InputValidation("upload", fmt.Errorf("malformed multipart body: %w", err))
}

// parseParams applies the defaults and validates num_q and difficulty.
func (h *Handler) parseParams(form *uploadForm) (generateParams, error) {
	p := generateParams{NumQuestions: defaultNumQuestions, Difficulty: quiz.DefaultDifficulty}
	if form.numQ != "" {
		n, err := strconv.Atoi(form.numQ)
		if err != nil {
			return p, apierr.InputValidation("upload", fmt.Errorf("%w, got %q", errInvalidQuestion, form.numQ))
		}
		p.NumQuestions = n
	}
	if form.difficulty != "" {
		p.Difficulty = strings.ToLower(form.difficulty)
	}

	if err := h.validate.Struct(p); err != nil {
		return p, apierr.InputValidation("upload", errors.New(validationMessage(err)))
	}
	if err := h.validate.Var(p.NumQuestions, "lte="+strconv.Itoa(h.opts.MaxQuestions)); err != nil {
		return p, apierr.InputValidation("upload", fmt.Errorf("num_q must be at most %d", h.opts.MaxQuestions))
	}
	return p, nil
}

// record writes the generation metadata to the ledger.
func (h *Handler) record(c *gin.Context, start time.Time, upload models.RawUpload, res *quiz.Result, err error) {
	rec := db.GenerationRecord{
		RequestID:    c.GetString("request_id"),
		UploadBytes:  len(upload.Data),
		NumQuestions: upload.NumQuestions,
		Difficulty:   upload.Difficulty,
		Status:       db.StatusSucceeded,
		Duration:     time.Since(start),
	}
	if res != nil {
		rec.SourceKind = string(res.Text.Kind)
		rec.TextChars = res.Text.OriginalChars
		rec.Truncated = res.Text.Truncated
		rec.ItemCount = len(res.Quiz)
		if g := res.Generation; g != nil {
			rec.Model = g.Model
			rec.PromptTokens = g.PromptTokens
			rec.OutputTokens = g.OutputTokens
			rec.TotalTokens = g.TotalTokens
		}
	}
	if err != nil {
		rec.Status = db.StatusFailed
		rec.ErrorKind = string(apierr.KindOf(err))
	}
	h.ledger.Record(c.Request.Context(), rec)
}
