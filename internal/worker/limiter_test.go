package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_New(t *testing.T) {
	if l := NewLimiter(10, 5); l.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", l.defaultBurst)
	}
	if l := NewLimiter(10, -1); l.defaultBurst != 5 {
		t.Errorf("expected default burst 5 for negative input, got %d", l.defaultBurst)
	}
}

// waitBriefly reports whether a request for source is admitted within 20ms
func waitBriefly(l *Limiter, source string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	return l.Wait(ctx, source) == nil
}

func TestLimiter_LocalSourcesBypass(t *testing.T) {
	limiter := NewLimiter(0.001, 1)

	for i := 0; i < 5; i++ {
		if !waitBriefly(limiter, "/tmp/book.txt") {
			t.Fatal("local paths should never be throttled")
		}
	}
	if len(limiter.hosts) != 0 {
		t.Errorf("local paths should not create host limiters, got %d", len(limiter.hosts))
	}
}

func TestLimiter_PerHost(t *testing.T) {
	limiter := NewLimiter(0.001, 1)

	if !waitBriefly(limiter, "https://example.com/a.txt") {
		t.Error("first request should be allowed")
	}
	if waitBriefly(limiter, "https://EXAMPLE.com/b.txt") {
		t.Error("second request to same host should be throttled")
	}
	if !waitBriefly(limiter, "https://other.org/a.txt") {
		t.Error("other host should have its own budget")
	}
}

func TestLimiter_ZeroRateUnlimited(t *testing.T) {
	limiter := NewLimiter(0, 1)

	for i := 0; i < 10; i++ {
		if !waitBriefly(limiter, "https://example.com/") {
			t.Fatal("zero rate should disable limiting")
		}
	}
}

func TestLimiter_WaitHonoursContext(t *testing.T) {
	limiter := NewLimiter(0.001, 1)
	_ = limiter.Wait(context.Background(), "https://example.com/a")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := limiter.Wait(ctx, "https://example.com/b"); err == nil {
		t.Error("expected wait to fail when the context expires first")
	}
}

func TestLimiter_SetHostDelay(t *testing.T) {
	limiter := NewLimiter(0, 5)
	limiter.SetHostDelay("https://slow.example/robots.txt", 10*time.Second)

	if !waitBriefly(limiter, "https://slow.example/a") {
		t.Fatal("first request should be allowed")
	}
	if waitBriefly(limiter, "https://slow.example/b") {
		t.Error("crawl delay should throttle the second request")
	}
	if !waitBriefly(limiter, "https://fast.example/a") || !waitBriefly(limiter, "https://fast.example/b") {
		t.Error("other hosts should stay unlimited")
	}
}

func TestLimiter_SetHostDelayKeepsSlowerRate(t *testing.T) {
	limiter := NewLimiter(0.01, 1)
	limiter.SetHostDelay("https://example.com/", time.Second)

	if got := limiter.hosts["example.com"].Limit(); got != 0.01 {
		t.Errorf("expected the slower configured rate to stay, got %v", got)
	}

	limiter.SetHostDelay("/tmp/book.txt", time.Second)
	limiter.SetHostDelay("https://other.org/", 0)
	if len(limiter.hosts) != 1 {
		t.Errorf("local paths and zero delays should be ignored, got %d hosts", len(limiter.hosts))
	}
}
