package worker

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter throttles remote sources per host. Local paths are never throttled.
type Limiter struct {
	mu           sync.Mutex
	hosts        map[string]*rate.Limiter
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a per-host limiter. A non-positive rate disables limiting.
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 5
	}

	limit := rate.Limit(requestsPerSecond)
	if requestsPerSecond <= 0 {
		limit = rate.Inf
	}

	return &Limiter{
		hosts:        make(map[string]*rate.Limiter),
		defaultRate:  limit,
		defaultBurst: burst,
	}
}

// Wait blocks until source may be fetched. Non-URL sources return immediately.
func (l *Limiter) Wait(ctx context.Context, source string) error {
	host, ok := remoteHost(source)
	if !ok {
		return nil
	}
	return l.forHost(host).Wait(ctx)
}

// SetHostDelay slows the host of source to at most one request per delay,
// as asked by a robots.txt Crawl-delay. Hosts already slower are unchanged.
func (l *Limiter) SetHostDelay(source string, delay time.Duration) {
	host, ok := remoteHost(source)
	if !ok || delay <= 0 {
		return
	}

	limit := rate.Every(delay)
	lim := l.forHost(host)
	if lim.Limit() > limit {
		lim.SetLimit(limit)
		lim.SetBurst(1)
	}
}

func (l *Limiter) forHost(host string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.hosts[host]
	if !ok {
		lim = rate.NewLimiter(l.defaultRate, l.defaultBurst)
		l.hosts[host] = lim
	}
	return lim
}

// remoteHost returns the lowercased host of an http(s) source
func remoteHost(source string) (string, bool) {
	parsed, err := url.Parse(source)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return "", false
	}
	return strings.ToLower(parsed.Host), true
}
