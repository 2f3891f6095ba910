package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func newTestLimiter(max int, per time.Duration) (*RateLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 11, 15, 8, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(max, per, nil)
	rl.now = clock.now
	return rl, clock
}

func TestRateLimiterBurstThenBlock(t *testing.T) {
	rl, _ := newTestLimiter(3, time.Minute)
	for i := 0; i < 3; i++ {
		if ok, _ := rl.take("1.2.3.4"); !ok {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	ok, wait := rl.take("1.2.3.4")
	if ok {
		t.Fatal("fourth request should be limited")
	}
	if wait <= 0 || wait > 21*time.Second {
		t.Errorf("expected wait of about 20s, got %s", wait)
	}
}

func TestRateLimiterRefill(t *testing.T) {
	rl, clock := newTestLimiter(1, time.Minute)
	rl.take("1.2.3.4")
	if ok, _ := rl.take("1.2.3.4"); ok {
		t.Fatal("should be limited immediately")
	}
	clock.t = clock.t.Add(61 * time.Second)
	if ok, _ := rl.take("1.2.3.4"); !ok {
		t.Fatal("token should have refilled")
	}
}

func TestRateLimiterSeparateClients(t *testing.T) {
	rl, _ := newTestLimiter(1, time.Minute)
	rl.take("1.1.1.1")
	if ok, _ := rl.take("2.2.2.2"); !ok {
		t.Fatal("different client should have its own bucket")
	}
}

func TestRateLimiterEvictsIdleClients(t *testing.T) {
	rl, clock := newTestLimiter(1, time.Minute)
	rl.take("1.1.1.1")
	clock.t = clock.t.Add(11 * time.Minute)
	rl.evict(10 * time.Minute)
	if len(rl.clients) != 0 {
		t.Errorf("expected idle client to be evicted, %d left", len(rl.clients))
	}
}

func TestRateLimiterMiddleware429(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl, _ := newTestLimiter(1, time.Minute)

	r := gin.New()
	r.Use(rl.Middleware())
	r.POST("/login", func(c *gin.Context) { c.Status(http.StatusOK) })

	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, httptest.NewRequest("POST", "/login", nil))
	if w1.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w1.Code)
	}

	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest("POST", "/login", nil))
	if w2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w2.Code)
	}
	if w2.Header().Get("Retry-After") != "60" {
		t.Errorf("expected Retry-After 60, got %q", w2.Header().Get("Retry-After"))
	}
}
