package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/concordance/internal/model"
)

// Runner builds a concordance report for one source
type Runner interface {
	Run(ctx context.Context, source string) (*model.Report, error)
}

// BuildJob builds the concordance for one source
type BuildJob struct {
	Source  string
	Runner  Runner
	Limiter *Limiter
}

// Execute waits for the source's rate limit, then runs the pipeline
func (j *BuildJob) Execute(ctx context.Context) Result {
	start := time.Now()

	if j.Limiter != nil {
		if err := j.Limiter.Wait(ctx, j.Source); err != nil {
			return &BuildResult{Source: j.Source, Error: fmt.Errorf("rate limit: %w", err)}
		}
	}

	report, err := j.Runner.Run(ctx, j.Source)
	return &BuildResult{
		Source:   j.Source,
		Report:   report,
		Error:    err,
		Duration: time.Since(start),
	}
}

// BuildResult is the outcome of a BuildJob
type BuildResult struct {
	Source   string
	Report   *model.Report
	Error    error
	Duration time.Duration
}

// GetError returns the build error, if any
func (r *BuildResult) GetError() error {
	return r.Error
}

// BatchProcessor builds concordances for many sources concurrently. Each
// concordance is still built on a single goroutine.
type BatchProcessor struct {
	runner      Runner
	concurrency int
	limiter     *Limiter
}

// NewBatchProcessor creates a batch processor. Remote sources wait on limiter
// before each build; a nil limiter disables throttling.
func NewBatchProcessor(runner Runner, concurrency int, limiter *Limiter) *BatchProcessor {
	return &BatchProcessor{
		runner:      runner,
		concurrency: concurrency,
		limiter:     limiter,
	}
}

// ProcessSources builds every source and returns results in input order
func (b *BatchProcessor) ProcessSources(ctx context.Context, sources []string) []*BuildResult {
	if len(sources) == 0 {
		return []*BuildResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for _, source := range sources {
		pool.Submit(&BuildJob{
			Source:  source,
			Runner:  b.runner,
			Limiter: b.limiter,
		})
	}

	results := pool.Wait()

	out := make([]*BuildResult, len(sources))
	for i := range out {
		if i < len(results) && results[i] != nil {
			out[i] = results[i].(*BuildResult)
			continue
		}
		err := ctx.Err()
		if err == nil {
			err = fmt.Errorf("not processed")
		}
		out[i] = &BuildResult{Source: sources[i], Error: err}
	}

	return out
}

// ProcessFile reads sources from a file and builds them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*BuildResult, error) {
	sources, err := ReadSourcesFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read sources: %w", err)
	}

	return b.ProcessSources(ctx, sources), nil
}

// ReadSourcesFromFile reads one path or URL per line, skipping blanks,
// "#" comments and duplicates.
func ReadSourcesFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var sources []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			sources = append(sources, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return sources, nil
}
