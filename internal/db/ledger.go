package db

import (
	"context"
	"fmt"
	"time"

	"studyquiz/internal/logger"

	"github.com/google/uuid"
)

// Generation statuses.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// GenerationRecord is the metadata kept for one generate request. It never
// carries document text or quiz content.
type GenerationRecord struct {
	ID           uuid.UUID
	RequestID    string
	SourceKind   string
	UploadBytes  int
	TextChars    int
	Truncated    bool
	NumQuestions int
	Difficulty   string
	Model        string
	PromptTokens int32
	OutputTokens int32
	TotalTokens  int32
	ItemCount    int
	Status       string
	ErrorKind    string
	Duration     time.Duration
	CreatedAt    time.Time
}

// Recorder stores generation records.
type Recorder interface {
	Record(ctx context.Context, rec GenerationRecord)
}

// NopRecorder discards every record. Used when no database is configured.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, GenerationRecord) {}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS generation_log (
	id            UUID PRIMARY KEY,
	request_id    TEXT NOT NULL DEFAULT '',
	source_kind   TEXT NOT NULL DEFAULT '',
	upload_bytes  INTEGER NOT NULL DEFAULT 0,
	text_chars    INTEGER NOT NULL DEFAULT 0,
	truncated     BOOLEAN NOT NULL DEFAULT FALSE,
	num_questions INTEGER NOT NULL DEFAULT 0,
	difficulty    TEXT NOT NULL DEFAULT '',
	model         TEXT NOT NULL DEFAULT '',
	prompt_tokens INTEGER NOT NULL DEFAULT 0,
	output_tokens INTEGER NOT NULL DEFAULT 0,
	total_tokens  INTEGER NOT NULL DEFAULT 0,
	item_count    INTEGER NOT NULL DEFAULT 0,
	status        TEXT NOT NULL,
	error_kind    TEXT NOT NULL DEFAULT '',
	duration_ms   BIGINT NOT NULL DEFAULT 0,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS generation_log_created_at_idx ON generation_log (created_at);
`

const insertGenerationSQL = `
INSERT INTO generation_log (
	id, request_id, source_kind, upload_bytes, text_chars, truncated,
	num_questions, difficulty, model, prompt_tokens, output_tokens, total_tokens,
	item_count, status, error_kind, duration_ms, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
`

// Ledger writes generation records to Postgres.
type Ledger struct {
	db      *DB
	log     *logger.Logger
	timeout time.Duration
}

func NewLedger(db *DB, log *logger.Logger) *Ledger {
	if log == nil {
		log = logger.Nop()
	}
	return &Ledger{db: db, log: log.With("component", "GenerationLedger"), timeout: 3 * time.Second}
}

// EnsureSchema creates the generation_log table if it does not exist.
func (l *Ledger) EnsureSchema(ctx context.Context) error {
	if _, err := l.db.Pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create generation_log: %w", err)
	}
	return nil
}

// Insert writes one record and reports the error.
func (l *Ledger) Insert(ctx context.Context, rec GenerationRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := l.db.Pool.Exec(ctx, insertGenerationSQL,
		rec.ID, rec.RequestID, rec.SourceKind, rec.UploadBytes, rec.TextChars, rec.Truncated,
		rec.NumQuestions, rec.Difficulty, rec.Model, rec.PromptTokens, rec.OutputTokens, rec.TotalTokens,
		rec.ItemCount, rec.Status, rec.ErrorKind, rec.Duration.Milliseconds(), rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert generation record: %w", err)
	}
	return nil
}

// Record writes one record on a best-effort basis. It detaches from ctx's
// cancellation so a client disconnect does not lose the row, and only logs
// failures.
func (l *Ledger) Record(ctx context.Context, rec GenerationRecord) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.timeout)
	defer cancel()
	if err := l.Insert(ctx, rec); err != nil {
		l.log.Warn("Generation record dropped", "request_id", rec.RequestID, "error", err)
	}
}

// CountSince returns the number of records created at or after since.
func (l *Ledger) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := l.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM generation_log WHERE created_at >= $1`, since).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count generation records: %w", err)
	}
	return n, nil
}
