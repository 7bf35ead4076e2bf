package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/singleflight"

	"github.com/ppiankov/concordance/internal/logger"
	"github.com/ppiankov/concordance/internal/model"
)

var (
	// ErrEmptySource is returned when no path or URL was given
	ErrEmptySource = errors.New("no source given")
	// ErrNotText is returned for documents that are not valid UTF-8 text
	ErrNotText = errors.New("source is not UTF-8 text")
	// ErrTooLarge is returned when a document exceeds the configured byte limit
	ErrTooLarge = errors.New("source exceeds size limit")
)

const defaultMaxBytes = 10_000_000

// StdinSource reads the document from standard input
const StdinSource = "-"

// Document is source text ready for the concordance builder
type Document struct {
	Source    string
	Subject   string
	Text      string
	FromCache bool
}

// Loader reads documents from local files, stdin or HTTP(S) URLs
type Loader struct {
	fetcher  *Fetcher
	maxBytes int64
	stdin    io.Reader
	group    singleflight.Group
	log      *slog.Logger
}

// NewLoader creates a loader. fetcher may be nil, in which case URLs are rejected.
func NewLoader(fetcher *Fetcher, maxBytes int64) *Loader {
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	return &Loader{
		fetcher:  fetcher,
		maxBytes: maxBytes,
		stdin:    os.Stdin,
		log:      logger.WithComponent("loader"),
	}
}

// WithStdin replaces the reader used for the "-" source
func (l *Loader) WithStdin(r io.Reader) *Loader {
	l.stdin = r
	return l
}

// Load returns the text of source. Concurrent loads of the same file or URL
// share one read.
func (l *Loader) Load(ctx context.Context, source string) (*Document, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, ErrEmptySource
	}
	if source == StdinSource {
		return l.loadReader(l.stdin, source, "stdin")
	}

	key := source
	if !isRemote(source) {
		if abs, err := filepath.Abs(source); err == nil {
			key = abs
		}
	}

	// The shared load outlives any one caller; each caller gives up on its own ctx.
	loadCtx := context.WithoutCancel(ctx)
	ch := l.group.DoChan(key, func() (interface{}, error) {
		if isRemote(source) {
			return l.loadURL(loadCtx, source)
		}
		return l.loadFile(source)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("wait for %s: %w", source, ctx.Err())
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	if res.Shared {
		l.log.Debug("shared load", "source", source)
	}

	doc := *res.Val.(*Document)
	doc.Source = source
	return &doc, nil
}

func (l *Loader) loadFile(path string) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	return l.loadReader(f, path, model.SubjectFromSource(path))
}

func (l *Loader) loadReader(r io.Reader, source, subject string) (*Document, error) {
	body, err := readLimited(r, l.maxBytes)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}

	text, err := decode(body, "", source)
	if err != nil {
		return nil, err
	}

	l.log.Debug("loaded", "source", source, "bytes", len(body))
	return &Document{Source: source, Subject: subject, Text: text}, nil
}

func (l *Loader) loadURL(ctx context.Context, rawURL string) (*Document, error) {
	if l.fetcher == nil {
		return nil, fmt.Errorf("remote sources are disabled: %s", rawURL)
	}

	result, err := l.fetcher.FetchWithRetry(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}

	text, err := decode(result.Body, result.ContentType, result.FinalURL)
	if err != nil {
		return nil, err
	}

	l.log.Debug("fetched", "source", rawURL, "bytes", len(result.Body), "cached", result.FromCache)
	return &Document{
		Source:    rawURL,
		Subject:   result.Subject,
		Text:      text,
		FromCache: result.FromCache,
	}, nil
}

// decode validates body as text and strips markup from HTML documents
func decode(body []byte, contentType, name string) (string, error) {
	body = bytes.TrimPrefix(body, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(body) {
		return "", fmt.Errorf("%s: %w", name, ErrNotText)
	}

	if isHTML(contentType, name) {
		text, err := ExtractText(bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("parse HTML %s: %w", name, err)
		}
		return text, nil
	}

	return string(body), nil
}

// readLimited reads all of r, failing with ErrTooLarge past maxBytes
func readLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > maxBytes {
		return nil, fmt.Errorf("%w of %d bytes", ErrTooLarge, maxBytes)
	}
	return body, nil
}
