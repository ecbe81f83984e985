package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/internal/analytics/aggregator"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/internal/report"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/pkg/resilience"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/pkg/tracing"
)

func runCommand(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	var cf commonFlags
	cf.bind(fs)
	flushCache := fs.Bool("flush-cache", false, "drop every cached ranking before running")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	cfg, err := cf.load(fs)
	if err != nil {
		return err
	}
	if cfg.Corpus.Folder == "" || cfg.Corpus.QueryFile == "" {
		return apperrors.New(apperrors.ErrInvalidConfig, "both a corpus folder and a query file are required")
	}

	runID := uuid.NewString()
	ctx = logger.WithRunID(ctx, runID)
	log := logger.FromContext(ctx)
	ctx, root := tracing.StartSpan(ctx, "ranker-run", runID)
	defer func() {
		root.End()
		if cfg.Tracing.Enabled {
			root.Log(log)
		}
	}()

	m := metrics.New()
	if cfg.Metrics.Enabled {
		addr, shutdown, err := m.StartServer(cfg.Metrics.Port)
		if err != nil {
			log.Warn("metrics server unavailable, scrape endpoint disabled", "error", err)
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(shutdownCtx); err != nil {
					log.Warn("metrics server shutdown failed", "addr", addr, "error", err)
				}
			}()
		}
	}
	defer exportMetrics(cfg.Metrics, m, log)

	agg := analytics.NewAggregator(runID)
	var collector *analytics.Collector
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka)
		defer producer.Close()
		collector = analytics.NewCollector(producer, runID, cfg.Kafka.BufferSize,
			analytics.WithBatchSize(cfg.Kafka.BatchSize),
			analytics.WithFlushInterval(cfg.Kafka.FlushInterval),
			analytics.WithRetry(resilience.RetryConfig{MaxAttempts: cfg.Kafka.PublishAttempts}),
		)
		collector.Start(ctx)
		defer collector.Close()
	}

	loader := indexer.NewLoader(cfg.Corpus, cfg.Search.Balancing, m)
	loader.OnDocument(func(doc *index.DocumentIndex, took time.Duration) {
		event := analytics.NewIndexEvent(doc, took)
		agg.RecordIndex(event)
		if collector != nil {
			collector.TrackIndex(event)
		}
	})
	corpus, err := loadCorpus(ctx, loader, cfg.Corpus.Folder)
	if err != nil {
		return err
	}

	queries, err := parser.ReadQueries(cfg.Corpus.QueryFile)
	if err != nil {
		return err
	}

	exec := executor.New(corpus, cfg.Search).WithMetrics(m)
	if *flushCache && !cfg.Redis.Enabled {
		log.Warn("-flush-cache ignored, ranking cache is disabled")
	}
	if cfg.Redis.Enabled {
		client, err := pkgredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn("redis unavailable, ranking cache disabled", "error", err)
		} else {
			defer client.Close()
			rankingCache := cache.New(client, cfg.Redis, m)
			if *flushCache {
				if err := rankingCache.Invalidate(ctx); err != nil {
					log.Warn("ranking cache flush failed", "error", err)
				}
			}
			exec.WithCache(rankingCache)
			log.Info("ranking cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}
	exec.OnQuery(func(_ context.Context, res *executor.SearchResult, _ time.Duration) {
		event := analytics.NewQueryEvent(res)
		agg.RecordQuery(event)
		if collector != nil {
			collector.TrackQuery(event)
		}
	})

	results, runErr := exec.Run(ctx, queries)

	w, err := report.New(stdout, cfg.Output.Format)
	if err != nil {
		return err
	}
	if err := report.WriteAll(w, results); err != nil {
		return err
	}

	summary := agg.Summary()
	if cfg.Postgres.Enabled {
		saveHistory(ctx, cfg.Postgres, runID, results, summary, log)
	}
	log.Info("run finished",
		"documents", summary.TotalDocIndexed,
		"queries", summary.TotalQueries,
		"zero_result_queries", summary.ZeroResultCount,
		"cache_hits", summary.CacheHits,
		"p95_latency_ms", summary.P95LatencyMs,
		"duration_ms", summary.DurationMs,
	)
	return runErr
}

// loadCorpus loads folder under a "load-corpus" span. The span's attributes
// are set before it ends.
func loadCorpus(ctx context.Context, loader *indexer.Loader, folder string) (*indexer.Corpus, error) {
	ctx, span := tracing.StartChildSpan(ctx, "load-corpus")
	defer span.End()
	corpus, err := loader.Load(ctx, folder)
	if err != nil {
		span.SetAttr("error", err.Error())
		return nil, err
	}
	span.SetAttr("folder", corpus.Folder())
	span.SetAttr("documents", corpus.Len())
	return corpus, nil
}

// saveHistory stores the run in PostgreSQL. History is best effort: a failure
// is logged and the run still succeeds.
func saveHistory(ctx context.Context, cfg config.PostgresConfig, runID string, results []*executor.SearchResult, summary analytics.RunSummary, log *slog.Logger) {
	db, err := postgres.New(ctx, cfg)
	if err != nil {
		log.Warn("postgres unavailable, run history not saved", "error", err)
		return
	}
	defer db.Close()
	store := aggregator.NewStore(db)
	steps := []struct {
		name string
		fn   func() error
	}{
		{"ensure-schema", func() error { return store.EnsureSchema(ctx) }},
		{"save-results", func() error { return store.SaveResults(ctx, runID, results) }},
		{"save-summary", func() error { return store.SaveSummary(ctx, summary) }},
	}
	for _, step := range steps {
		if err := resilience.Retry(ctx, step.name, resilience.RetryConfig{}, step.fn); err != nil {
			log.Warn("saving run history failed", "step", step.name, "error", err)
			return
		}
	}
}

func exportMetrics(cfg config.MetricsConfig, m *metrics.Metrics, log *slog.Logger) {
	if cfg.Textfile != "" {
		if err := m.WriteTextfile(cfg.Textfile); err != nil {
			log.Warn("metrics textfile export failed", "error", err)
		}
	}
	if cfg.Pushgateway != "" {
		err := resilience.WithTimeout(context.Background(), 10*time.Second, "push-metrics", func(ctx context.Context) error {
			return resilience.Retry(ctx, "push-metrics", resilience.RetryConfig{}, func() error {
				return m.Push(ctx, cfg.Pushgateway, cfg.Job)
			})
		})
		if err != nil {
			log.Warn("metrics push failed", "url", cfg.Pushgateway, "error", err)
		}
	}
}
