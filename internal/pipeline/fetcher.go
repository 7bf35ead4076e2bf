package pipeline

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ppiankov/concordance/internal/cache"
	"github.com/ppiankov/concordance/internal/util"
	"github.com/ppiankov/concordance/internal/worker"
)

// ErrRobotsDisallowed is returned when robots.txt forbids fetching a source
var ErrRobotsDisallowed = errors.New("disallowed by robots.txt")

const maxFetchAttempts = 3

// fetchSleepFunc is swapped out in tests to skip backoff delays
var fetchSleepFunc = time.Sleep

// StatusError is a non-2xx HTTP response
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d %s", e.Code, e.Status)
}

// Retryable reports whether the status is worth another attempt
func (e *StatusError) Retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// Fetcher downloads remote documents
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	robots     *util.RobotsChecker
	limiter    *worker.Limiter
	cache      cache.Cache
	cacheTTL   time.Duration
}

// NewFetcher creates a Fetcher with the given HTTP settings
func NewFetcher(timeout time.Duration, userAgent string, maxBytes int64, insecureTLS bool, httpProxy, httpsProxy, noProxy string) *Fetcher {
	transport := &http.Transport{
		Proxy:               util.NewProxyFunc(httpProxy, httpsProxy, noProxy),
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     30 * time.Second,
	}
	if insecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via --insecure
	}

	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}

	return &Fetcher{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: userAgent,
		maxBytes:  maxBytes,
	}
}

// WithCache stores fetched documents in c for ttl
func (f *Fetcher) WithCache(c cache.Cache, ttl time.Duration) *Fetcher {
	f.cache = c
	f.cacheTTL = ttl
	return f
}

// WithRobots makes the fetcher consult robots.txt before each download
func (f *Fetcher) WithRobots(r *util.RobotsChecker) *Fetcher {
	f.robots = r
	return f
}

// WithLimiter passes robots.txt crawl delays on to l
func (f *Fetcher) WithLimiter(l *worker.Limiter) *Fetcher {
	f.limiter = l
	return f
}

// Client returns the underlying HTTP client
func (f *Fetcher) Client() *http.Client {
	return f.httpClient
}

// FetchResult is a downloaded document
type FetchResult struct {
	Body        []byte
	ContentType string
	FinalURL    string
	Subject     string
	FromCache   bool
}

// Fetch downloads rawURL once
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	if f.cache != nil {
		if doc, ok := cache.GetDocument(f.cache, rawURL); ok {
			return &FetchResult{
				Body:        doc.Body,
				ContentType: doc.ContentType,
				FinalURL:    doc.FinalURL,
				Subject:     extractSubject(doc.FinalURL),
				FromCache:   true,
			}, nil
		}
	}

	if f.robots != nil {
		allowed, delay, err := f.robots.Allowed(ctx, rawURL)
		if err != nil {
			return nil, fmt.Errorf("check robots: %w", err)
		}
		if !allowed {
			return nil, fmt.Errorf("%s: %w", rawURL, ErrRobotsDisallowed)
		}
		if f.limiter != nil {
			f.limiter.SetHostDelay(rawURL, delay)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/plain,text/html;q=0.9,*/*;q=0.5")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	body, err := readLimited(resp.Body, f.maxBytes)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	result := &FetchResult{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		FinalURL:    resp.Request.URL.String(),
	}
	result.Subject = extractSubject(result.FinalURL)

	if f.cache != nil {
		_ = cache.PutDocument(f.cache, &cache.Document{
			Source:      rawURL,
			FinalURL:    result.FinalURL,
			ContentType: result.ContentType,
			Body:        body,
			FetchedAt:   time.Now().UTC(),
		}, f.cacheTTL)
	}

	return result, nil
}

// FetchWithRetry retries transient failures (network errors, 429, 5xx) with
// exponential backoff starting at 500ms.
func (f *Fetcher) FetchWithRetry(ctx context.Context, rawURL string) (*FetchResult, error) {
	backoff := 500 * time.Millisecond

	var lastErr error
	for attempt := 1; attempt <= maxFetchAttempts; attempt++ {
		result, err := f.Fetch(ctx, rawURL)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !isTransient(err) || ctx.Err() != nil {
			return nil, err
		}
		if attempt < maxFetchAttempts {
			fetchSleepFunc(backoff)
			backoff *= 2
		}
	}

	return nil, fmt.Errorf("after %d attempts: %w", maxFetchAttempts, lastErr)
}

func isTransient(err error) bool {
	if errors.Is(err, ErrRobotsDisallowed) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Retryable()
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// extractSubject turns the last URL path segment into a readable name
func extractSubject(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	path := strings.Trim(parsed.Path, "/")
	if path == "" {
		return parsed.Host
	}

	segments := strings.Split(path, "/")
	last := segments[len(segments)-1]
	if unescaped, err := url.PathUnescape(last); err == nil {
		last = unescaped
	}

	last = strings.ReplaceAll(last, "_", " ")
	last = strings.ReplaceAll(last, "-", " ")

	if idx := strings.LastIndex(last, "."); idx > 0 {
		last = last[:idx]
	}

	return last
}

// isRemote reports whether source should be fetched over HTTP
func isRemote(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
