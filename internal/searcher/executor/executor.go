// Package executor runs a sequence of queries against one corpus. A single
// selector is built for the first query and rehashed for every query after
// it; each query then emits documents until its limit, the end of the
// ranking, or (optionally) the first zero-scored document.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/pkg/tracing"
)

// Hit is one emitted document.
type Hit struct {
	Document string `json:"document"`
	Score    int    `json:"score"`
}

// SearchResult is the outcome of one query.
type SearchResult struct {
	Query     string   `json:"query"`
	Terms     []string `json:"terms"`
	Results   []Hit    `json:"results"`
	Cached    bool     `json:"cached"`
	LatencyMs int64    `json:"latency_ms"`
}

// Cache stores computed results under an opaque key.
type Cache interface {
	GetOrCompute(ctx context.Context, key string, compute func() (*SearchResult, error)) (*SearchResult, bool, error)
}

// QueryObserver is notified after every answered query.
type QueryObserver func(ctx context.Context, result *SearchResult, took time.Duration)

// Executor is the query runner. It is not safe for concurrent use: queries
// share one selector and must run one after another.
type Executor struct {
	corpus     *indexer.Corpus
	limit      int
	stopAtZero bool
	strategy   ranker.Strategy
	selector   *ranker.Selector[*index.DocumentIndex]
	cache      Cache
	metrics    *metrics.Metrics
	observers  []QueryObserver
	logger     *slog.Logger
}

// New creates an Executor over corpus. A limit of 0 emits every qualifying
// document.
func New(corpus *indexer.Corpus, cfg config.SearchConfig) *Executor {
	return &Executor{
		corpus:     corpus,
		limit:      cfg.Limit,
		stopAtZero: cfg.StopAtZeroScore,
		strategy:   ranker.ParseStrategy(cfg.Strategy),
		logger:     slog.Default().With("component", "query-executor"),
	}
}

// WithCache enables result caching.
func (e *Executor) WithCache(c Cache) *Executor {
	e.cache = c
	return e
}

// WithMetrics records query metrics on m.
func (e *Executor) WithMetrics(m *metrics.Metrics) *Executor {
	e.metrics = m
	return e
}

// OnQuery registers an observer.
func (e *Executor) OnQuery(fn QueryObserver) {
	e.observers = append(e.observers, fn)
}

// Run answers queries in order. It stops at the first error, returning the
// results produced so far.
func (e *Executor) Run(ctx context.Context, queries []string) ([]*SearchResult, error) {
	ctx, span := tracing.StartChildSpan(ctx, "run-queries")
	defer span.End()
	span.SetAttr("queries", len(queries))

	results := make([]*SearchResult, 0, len(queries))
	for i, q := range queries {
		if err := ctx.Err(); err != nil {
			return results, fmt.Errorf("query %d: %w", i, err)
		}
		res, err := e.Execute(ctx, q)
		if err != nil {
			return results, fmt.Errorf("query %d %q: %w", i, q, err)
		}
		results = append(results, res)
	}
	return results, nil
}

// Execute answers a single query.
func (e *Executor) Execute(ctx context.Context, query string) (*SearchResult, error) {
	ctx, span := tracing.StartChildSpan(ctx, "query")
	defer span.End()
	start := time.Now()
	plan := parser.Parse(query)

	compute := func() (*SearchResult, error) {
		return e.rank(plan)
	}
	var (
		res    *SearchResult
		cached bool
		err    error
	)
	if e.cache != nil {
		res, cached, err = e.cache.GetOrCompute(ctx, e.cacheKey(plan), compute)
	} else {
		res, err = compute()
	}
	if err != nil {
		return nil, err
	}

	took := time.Since(start)
	out := *res
	out.Query = plan.RawQuery
	out.Cached = cached
	out.LatencyMs = took.Milliseconds()

	span.SetAttr("query", plan.Normalized)
	span.SetAttr("returned", len(out.Results))
	span.SetAttr("cached", cached)
	e.metrics.ObserveQuery(len(out.Results), cached, took)
	for _, fn := range e.observers {
		fn(ctx, &out, took)
	}
	logger.FromContext(ctx).Info("query executed",
		"component", "query-executor",
		"query", plan.RawQuery,
		"terms", plan.Terms,
		"returned", len(out.Results),
		"cached", cached,
		"latency_ms", out.LatencyMs,
	)
	return &out, nil
}

func (e *Executor) rank(plan *parser.QueryPlan) (*SearchResult, error) {
	if plan.Empty() && e.stopAtZero {
		// Every document scores 0, so nothing would be emitted.
		return &SearchResult{Query: plan.RawQuery, Terms: plan.Terms, Results: make([]Hit, 0)}, nil
	}
	if e.selector == nil {
		e.selector = ranker.NewSelector(plan.RawQuery, e.corpus.Documents(), e.strategy)
	} else if !e.selector.Rehash(plan.RawQuery) {
		// Same query again: replay the existing ranking from the top.
		e.selector.Reset()
	}

	hits := make([]Hit, 0)
	for e.limit == 0 || len(hits) < e.limit {
		top, err := e.selector.Poll()
		if errors.Is(err, apperrors.ErrSelectorExhausted) {
			break
		}
		if err != nil {
			return nil, err
		}
		if top.Score == 0 && e.stopAtZero {
			break
		}
		hits = append(hits, Hit{Document: top.Doc.Name(), Score: top.Score})
	}
	e.logger.Debug("ranking drained",
		"query", plan.Normalized,
		"emitted", len(hits),
		"remaining", e.selector.Len(),
	)
	return &SearchResult{
		Query:   plan.RawQuery,
		Terms:   plan.Terms,
		Results: hits,
	}, nil
}

func (e *Executor) cacheKey(plan *parser.QueryPlan) string {
	return fmt.Sprintf("%s|%s|limit=%d|zero=%t",
		e.corpus.Fingerprint(), strings.Join(plan.Terms, " "), e.limit, e.stopAtZero)
}
