// Package news aggregates headlines about an instrument from several
// sources around an anomaly date. Lookup never fails: every source error
// degrades into a placeholder item so the caller always gets a list.
package news

import (
	"context"
	"fmt"
	"sync"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/domain/repository"
	"StockPulse/pkg/cache"
	xhttp "StockPulse/pkg/http"
	applogger "StockPulse/pkg/logger"
	"StockPulse/pkg/util"
)

// Source searches one upstream platform.
type Source interface {
	Name() string
	Search(ctx context.Context, query string) ([]models.NewsItem, error)
}

// DefaultRSSSites are the publishers searched through Google News.
var DefaultRSSSites = map[string]string{
	"Bloomberg":       "bloomberg.com",
	"WSJ":             "wsj.com",
	"Financial Times": "ft.com",
	"Investing.com":   "investing.com",
}

// ProviderOption configures Provider.
type ProviderOption func(*Provider)

// Provider fans a query out to all sources concurrently and merges the
// results. It implements domain/service.NewsProvider.
type Provider struct {
	sources  []Source
	timeout  time.Duration
	cache    cache.Service
	cacheTTL time.Duration
	metrics  repository.Metrics
	log      *applogger.Logger
}

func NewProvider(sources []Source, opts ...ProviderOption) *Provider {
	p := &Provider{
		sources:  sources,
		timeout:  12 * time.Second,
		cacheTTL: 30 * time.Minute,
		log:      applogger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WithSourceTimeout bounds each source search.
func WithSourceTimeout(d time.Duration) ProviderOption {
	return func(p *Provider) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithCache enables response caching per (instrument, date).
func WithCache(c cache.Service, ttl time.Duration) ProviderOption {
	return func(p *Provider) {
		p.cache = c
		if ttl > 0 {
			p.cacheTTL = ttl
		}
	}
}

// WithMetrics records per-source failures.
func WithMetrics(m repository.Metrics) ProviderOption {
	return func(p *Provider) {
		p.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(l *applogger.Logger) ProviderOption {
	return func(p *Provider) {
		if l != nil {
			p.log = l
		}
	}
}

// DefaultSources builds the standard five-source set.
func DefaultSources(twitterBearer string, sites map[string]string, maxItems int) []Source {
	hc := xhttp.NewClient(xhttp.WithTimeout(15 * time.Second))
	if sites == nil {
		sites = DefaultRSSSites
	}
	sources := make([]Source, 0, len(sites)+1)
	sources = append(sources, NewTwitterSource(twitterBearer, hc, maxItems))
	for label, site := range sites {
		sources = append(sources, NewGoogleNewsSource(label, site, hc, maxItems))
	}
	return sources
}

// Lookup searches all sources for the instrument and merges the results,
// deduplicated by title prefix. Source order is stable regardless of
// which source answers first.
func (p *Provider) Lookup(ctx context.Context, inst models.Instrument, date time.Time) []models.NewsItem {
	cacheKey := cache.GenerateKeyWithParams("news", inst.Key(), util.FormatDate(date))
	if p.cache != nil {
		var cached []models.NewsItem
		if err := p.cache.Get(ctx, cacheKey, &cached); err == nil {
			return cached
		}
	}

	query := buildQuery(inst.Symbol, inst.Name)
	perSource := make([][]models.NewsItem, len(p.sources))

	var wg sync.WaitGroup
	for i, src := range p.sources {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()

			sctx, cancel := context.WithTimeout(ctx, p.timeout)
			defer cancel()

			items, err := src.Search(sctx, query)
			if err != nil {
				p.log.Warn("news source failed",
					applogger.String("source", src.Name()),
					applogger.Error(err),
				)
				if p.metrics != nil {
					p.metrics.RecordNewsError(src.Name())
				}
				items = []models.NewsItem{{
					Title:  fmt.Sprintf("[%s search failed: %v]", src.Name(), err),
					Source: src.Name(),
				}}
			}
			perSource[i] = items
		}(i, src)
	}
	wg.Wait()

	merged := dedupeByTitle(perSource)
	if p.cache != nil {
		_ = p.cache.Set(ctx, cacheKey, merged, p.cacheTTL)
	}
	return merged
}

// buildQuery quotes symbol and name, joined with OR.
func buildQuery(symbol, name string) string {
	if name != "" && name != symbol {
		return fmt.Sprintf("%q OR %q", symbol, name)
	}
	if symbol != "" {
		return fmt.Sprintf("%q", symbol)
	}
	return name
}

// dedupeByTitle keeps the first item per 60-character title prefix.
func dedupeByTitle(groups [][]models.NewsItem) []models.NewsItem {
	seen := make(map[string]struct{})
	out := make([]models.NewsItem, 0)
	for _, items := range groups {
		for _, item := range items {
			key := truncateRunes(item.Title, 60)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, item)
		}
	}
	return out
}
