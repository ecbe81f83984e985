package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/pkg/resilience"
)

const checkTimeout = 3 * time.Second

// checkCommand verifies the inputs and every enabled backend before a run.
// Only the inputs are mandatory; a down backend is reported but a run would
// fall back to running without it.
func checkCommand(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	var cf commonFlags
	cf.bind(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	cfg, err := cf.load(fs)
	if err != nil {
		return err
	}

	checker := preflight(cfg)
	report := checker.Run(ctx)

	if cfg.Output.Format == "json" {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("encoding check report: %w", err)
		}
	} else {
		for _, name := range report.Names() {
			comp := report.Components[name]
			fmt.Fprintf(stdout, "%-10s %-9s %-6s %s\n", name, comp.Status, comp.Latency, comp.Message)
		}
		fmt.Fprintf(stdout, "overall: %s\n", report.Status)
	}

	for _, name := range []string{"corpus", "queries"} {
		if comp, ok := report.Components[name]; ok && comp.Status == health.StatusDown {
			return apperrors.Newf(apperrors.ErrMalformedInput, "%s: %s", name, comp.Message)
		}
	}
	if report.Status == health.StatusDown {
		return apperrors.New(apperrors.ErrUnavailable, "one or more enabled backends are down")
	}
	return nil
}

func preflight(cfg *config.Config) *health.Checker {
	checker := health.NewChecker()
	if cfg.Corpus.Folder != "" {
		checker.Register("corpus", health.DirCheck(cfg.Corpus.Folder))
	}
	if cfg.Corpus.QueryFile != "" {
		checker.Register("queries", health.FileCheck(cfg.Corpus.QueryFile))
	}
	if cfg.Redis.Enabled {
		checker.Register("redis", health.PingCheck(func(ctx context.Context) error {
			return resilience.WithTimeout(ctx, checkTimeout, "redis", func(ctx context.Context) error {
				client, err := pkgredis.NewClient(ctx, cfg.Redis)
				if err != nil {
					return err
				}
				return client.Close()
			})
		}))
	}
	if cfg.Kafka.Enabled {
		checker.Register("kafka", health.PingCheck(func(ctx context.Context) error {
			producer := kafka.NewProducer(cfg.Kafka)
			defer producer.Close()
			return resilience.WithTimeout(ctx, checkTimeout, "kafka", producer.Ping)
		}))
	}
	if cfg.Postgres.Enabled {
		checker.Register("postgres", health.PingCheck(func(ctx context.Context) error {
			db, err := resilience.Call(ctx, checkTimeout, "postgres", func(ctx context.Context) (*postgres.Client, error) {
				return postgres.New(ctx, cfg.Postgres)
			})
			if err != nil {
				return err
			}
			return db.Close()
		}))
	}
	return checker
}
