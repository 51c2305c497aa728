package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type memoryCounter struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func (m *memoryCounter) Hit(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if m.err != nil {
		return 0, 0, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counts == nil {
		m.counts = map[string]int64{}
	}
	m.counts[key]++
	return m.counts[key], 42 * time.Second, nil
}

func newRouter(counter Counter, perWindow int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/generate", Limit(counter, perWindow, nil), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return r
}

func post(r http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/generate", nil)
	req.RemoteAddr = ip + ":12345"
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestLimit_BlocksAfterBudget(t *testing.T) {
	r := newRouter(&memoryCounter{}, 2)

	for i := 0; i < 2; i++ {
		if rec := post(r, "10.0.0.1"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: got status=%d want=200", i, rec.Code)
		}
	}

	rec := post(r, "10.0.0.1")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("got status=%d want=429", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "42" {
		t.Fatalf("got Retry-After=%q want=42", got)
	}
	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Success || body.Error == "" {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}

	// Other clients have their own budget.
	if rec := post(r, "10.0.0.2"); rec.Code != http.StatusOK {
		t.Fatalf("other client: got status=%d want=200", rec.Code)
	}
}

func TestLimit_FailsOpen(t *testing.T) {
	r := newRouter(&memoryCounter{err: errors.New("connection refused")}, 1)
	for i := 0; i < 3; i++ {
		if rec := post(r, "10.0.0.1"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: got status=%d want=200", i, rec.Code)
		}
	}
}

func TestLimit_Disabled(t *testing.T) {
	r := newRouter(nil, 1)
	for i := 0; i < 3; i++ {
		if rec := post(r, "10.0.0.1"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: got status=%d want=200", i, rec.Code)
		}
	}
}

// TestRedisCounter runs against a real server when TEST_REDIS_URL is set.
func TestRedisCounter(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	counter, err := NewRedisCounter(ctx, url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer counter.Close()

	key := "test:" + uuid.NewString()
	for want := int64(1); want <= 3; want++ {
		got, ttl, err := counter.Hit(ctx, key, 10*time.Second)
		if err != nil {
			t.Fatalf("hit: %v", err)
		}
		if got != want {
			t.Fatalf("got count=%d want=%d", got, want)
		}
		if ttl <= 0 || ttl > 10*time.Second {
			t.Fatalf("unexpected ttl %v", ttl)
		}
	}
}

func TestNewRedisCounter_BadURL(t *testing.T) {
	if _, err := NewRedisCounter(context.Background(), "not a url"); err == nil {
		t.Fatalf("expected an error for a malformed URL")
	}
}
