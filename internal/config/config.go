package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultPort              = "8080"
	DefaultModel             = "gemini-2.5-flash"
	DefaultMaxUploadBytes    = 10 << 20
	DefaultTextCharLimit     = 12000
	DefaultMinTextChars      = 50
	DefaultMaxQuestions      = 50
	DefaultGenerationTimeout = 90 * time.Second
	DefaultRateLimitPerMin   = 10
	DefaultFrontendURL       = "http://localhost:5173"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Env  string
	Port string

	GeminiAPIKey string
	GeminiModel  string

	MaxUploadBytes    int64
	TextCharLimit     int
	MinTextChars      int
	MaxQuestions      int
	GenerationTimeout time.Duration

	FrontendOrigins []string

	DatabaseURL string

	RedisURL           string
	RateLimitPerMinute int
}

// LoadEnv loads a .env file if one exists. A missing file is not an error;
// it reports whether a file was loaded.
func LoadEnv() (bool, error) {
	if err := godotenv.Load(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// FromEnv reads the configuration from the process environment.
func FromEnv() Config {
	return Config{
		Env:  String("APP_ENV", "development"),
		Port: String("PORT", DefaultPort),

		GeminiAPIKey: String("GEMINI_API_KEY", ""),
		GeminiModel:  String("GEMINI_MODEL", DefaultModel),

		MaxUploadBytes:    int64(Int("MAX_UPLOAD_BYTES", DefaultMaxUploadBytes)),
		TextCharLimit:     Int("TEXT_CHAR_LIMIT", DefaultTextCharLimit),
		MinTextChars:      Int("MIN_TEXT_CHARS", DefaultMinTextChars),
		MaxQuestions:      Int("MAX_QUESTIONS", DefaultMaxQuestions),
		GenerationTimeout: time.Duration(Int("GENERATION_TIMEOUT_SECONDS", int(DefaultGenerationTimeout/time.Second))) * time.Second,

		FrontendOrigins: List("FRONTEND_URL", []string{DefaultFrontendURL}),

		DatabaseURL: String("DATABASE_URL", ""),

		RedisURL:           String("REDIS_URL", ""),
		RateLimitPerMinute: Int("RATE_LIMIT_PER_MINUTE", DefaultRateLimitPerMin),
	}
}

func (c Config) Production() bool {
	switch strings.ToLower(c.Env) {
	case "prod", "production":
		return true
	}
	return false
}

func String(name, def string) string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	return v
}

// Int returns the named integer variable, or def when it is unset, malformed
// or not positive.
func Int(name string, def int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil || i <= 0 {
		return def
	}
	return i
}

// List splits a comma separated variable, dropping blanks and trailing slashes.
func List(name string, def []string) []string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSuffix(strings.TrimSpace(part), "/")
		if part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
