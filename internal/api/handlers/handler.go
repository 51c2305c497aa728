package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"studyquiz/internal/apierr"
	"studyquiz/internal/db"
	"studyquiz/internal/logger"
	"studyquiz/internal/quiz"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Options bounds what a single request may ask for.
type Options struct {
	MaxUploadBytes int64
	MaxQuestions   int
}

// Handler holds the dependencies of the HTTP handlers.
type Handler struct {
	quiz     *quiz.Service
	ledger   db.Recorder
	validate *validator.Validate
	log      *logger.Logger
	opts     Options
}

// NewHandler creates a new Handler. A nil ledger disables generation records.
func NewHandler(svc *quiz.Service, ledger db.Recorder, opts Options, log *logger.Logger) *Handler {
	if ledger == nil {
		ledger = db.NopRecorder{}
	}
	if log == nil {
		log = logger.Nop()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	if opts.MaxQuestions <= 0 {
		opts.MaxQuestions = 50
	}
	validate := validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("form"); name != "" {
			return name
		}
		return f.Name
	})
	return &Handler{
		quiz:     svc,
		ledger:   ledger,
		validate: validate,
		log:      log,
		opts:     opts,
	}
}

// HandleHealth reports liveness.
func (h *Handler) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// requestLog returns the handler logger tagged with the request id.
func (h *Handler) requestLog(c *gin.Context) *logger.Logger {
	if id := c.GetString("request_id"); id != "" {
		return h.log.With("request_id", id)
	}
	return h.log
}

// validationMessage turns validator errors into one client-facing sentence.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		field := e.Field()
		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "gte", "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", field, e.Param()))
		case "lte", "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", field, e.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(e.Param(), " ", ", ")))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return strings.Join(msgs, "; ")
}

// statusFor maps an error to its HTTP status, logging server-side failures.
func (h *Handler) statusFor(c *gin.Context, op string, err error) int {
	status := apierr.Status(err)
	log := h.requestLog(c)
	if status >= http.StatusInternalServerError {
		log.Error(op+" failed", "kind", apierr.KindOf(err), "error", err)
	} else {
		log.Info(op+" rejected", "kind", apierr.KindOf(err), "error", err)
	}
	return status
}
