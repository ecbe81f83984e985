package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/internal/analytics/aggregator"
	apperrors "github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/pkg/postgres"
)

// historyCommand lists recently stored query results, or the summary of one
// run when -run is given.
func historyCommand(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	var cf commonFlags
	cf.bind(fs)
	runID := fs.String("run", "", "show the summary of this run")
	recent := fs.Int("n", 20, "number of recent queries to list")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	cfg, err := cf.load(fs)
	if err != nil {
		return err
	}
	if *recent <= 0 {
		return apperrors.Newf(apperrors.ErrInvalidConfig, "history: -n must be positive, got %d", *recent)
	}

	db, err := postgres.New(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	defer db.Close()
	store := aggregator.NewStore(db)
	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}

	if *runID != "" {
		summary, err := store.Summary(ctx, *runID)
		if err != nil {
			return err
		}
		if summary == nil {
			return apperrors.Newf(apperrors.ErrKeyNotFound, "no run %s", *runID)
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	runs, err := store.Recent(ctx, *recent)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tRUN\tQUERY\tRETURNED\tTOP\tCACHED\tLATENCY")
	for _, run := range runs {
		top := "-"
		if len(run.Results) > 0 {
			top = run.Results[0].Document
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%t\t%dms\n",
			run.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			shortID(run.RunID), run.Query, run.Returned, top, run.Cached, run.LatencyMs)
	}
	return tw.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
