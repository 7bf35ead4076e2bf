package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ppiankov/concordance/internal/cache"
	"github.com/ppiankov/concordance/internal/concordance"
	"github.com/ppiankov/concordance/internal/logger"
	"github.com/ppiankov/concordance/internal/model"
	"github.com/ppiankov/concordance/internal/util"
	"github.com/ppiankov/concordance/internal/worker"
)

// Pipeline loads a source, builds its concordance and renders the report
type Pipeline struct {
	loader   *Loader
	builder  *concordance.Builder
	renderer *Renderer
	limiter  *worker.Limiter
	config   *model.Config
	log      *slog.Logger
	now      func() time.Time
}

// NewPipeline creates a pipeline with the given configuration
func NewPipeline(cfg *model.Config) *Pipeline {
	fetcher := NewFetcher(
		cfg.HTTP.Timeout,
		cfg.HTTP.UserAgent,
		cfg.HTTP.MaxBodyBytes,
		cfg.HTTP.InsecureTLS,
		cfg.HTTP.HTTPProxy,
		cfg.HTTP.HTTPSProxy,
		cfg.HTTP.NoProxy,
	)
	limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
	fetcher.WithLimiter(limiter)
	if cfg.HTTP.RespectRobots {
		fetcher.WithRobots(util.NewRobotsChecker(cfg.HTTP.UserAgent, fetcher.Client()))
	}
	if cfg.Cache.Enabled {
		fetcher.WithCache(cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL), cfg.Cache.DiskTTL)
	}

	return &Pipeline{
		loader:   NewLoader(fetcher, cfg.HTTP.MaxBodyBytes),
		builder:  concordance.NewBuilder(cfg.Tokenizer.Abbreviations...),
		renderer: NewRenderer(cfg.Output.IncludeFooter),
		limiter:  limiter,
		config:   cfg,
		log:      logger.WithComponent("pipeline"),
		now:      time.Now,
	}
}

// Loader returns the document loader
func (p *Pipeline) Loader() *Loader {
	return p.loader
}

// Renderer returns the report renderer
func (p *Pipeline) Renderer() *Renderer {
	return p.renderer
}

// Limiter returns the per-host limiter that batch runs wait on. The fetcher
// tightens it when robots.txt asks for a crawl delay.
func (p *Pipeline) Limiter() *worker.Limiter {
	return p.limiter
}

// Run builds the concordance report for a path, URL or "-" for stdin
func (p *Pipeline) Run(ctx context.Context, source string) (*model.Report, error) {
	doc, err := p.loader.Load(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}

	return p.BuildReport(doc), nil
}

// BuildReport runs the concordance builder over an already loaded document
func (p *Pipeline) BuildReport(doc *Document) *model.Report {
	start := p.now()
	c, stats := p.builder.Analyze(doc.Text)
	records := concordance.Sorted(c)

	p.log.Debug("built concordance",
		"source", doc.Source,
		"tokens", stats.Tokens,
		"sentences", stats.Sentences,
		"distinct", len(records),
		"elapsed", p.now().Sub(start),
	)

	return &model.Report{
		Source:      doc.Source,
		Subject:     doc.Subject,
		GeneratedAt: p.now().UTC(),
		Tokens:      stats.Tokens,
		Sentences:   stats.Sentences,
		Words:       stats.Words,
		Records:     records,
	}
}
