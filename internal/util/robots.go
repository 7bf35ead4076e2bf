package util

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// RobotsChecker answers whether a document URL may be fetched under the
// host's robots.txt. Parsed files are kept per scheme+host for the process lifetime.
type RobotsChecker struct {
	mu         sync.RWMutex
	byHost     map[string]*robotstxt.RobotsData
	httpClient *http.Client
	agent      string
}

// NewRobotsChecker creates a checker that identifies itself with userAgent
func NewRobotsChecker(userAgent string, client *http.Client) *RobotsChecker {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &RobotsChecker{
		byHost:     make(map[string]*robotstxt.RobotsData),
		httpClient: client,
		agent:      ProductToken(userAgent),
	}
}

// Allowed reports whether rawURL may be fetched and the crawl delay to honour.
// If robots.txt cannot be retrieved the URL is allowed.
func (r *RobotsChecker) Allowed(ctx context.Context, rawURL string) (bool, time.Duration, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false, 0, fmt.Errorf("parse URL: %w", err)
	}

	data, err := r.robotsFor(ctx, parsed)
	if err != nil {
		return true, 0, nil
	}

	path := parsed.EscapedPath()
	if path == "" {
		path = "/"
	}

	var delay time.Duration
	if group := data.FindGroup(r.agent); group != nil {
		delay = group.CrawlDelay
	}

	return data.TestAgent(path, r.agent), delay, nil
}

func (r *RobotsChecker) robotsFor(ctx context.Context, u *url.URL) (*robotstxt.RobotsData, error) {
	origin := u.Scheme + "://" + u.Host

	r.mu.RLock()
	data, ok := r.byHost[origin]
	r.mu.RUnlock()
	if ok {
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin+"/robots.txt", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", r.agent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err = robotstxt.FromResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}

	r.mu.Lock()
	r.byHost[origin] = data
	r.mu.Unlock()

	return data, nil
}

// ProductToken reduces a User-Agent header to the product name robots.txt groups match on,
// e.g. "Concordance/0.1 (+https://...)" becomes "Concordance".
func ProductToken(ua string) string {
	fields := strings.Fields(ua)
	if len(fields) == 0 {
		return ua
	}
	return strings.SplitN(fields[0], "/", 2)[0]
}
