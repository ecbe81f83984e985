// Package parser reads query files and normalises individual queries.
package parser

import (
	"bufio"
	"os"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/pkg/errors"
)

// QueryPlan is one query line prepared for ranking.
type QueryPlan struct {
	RawQuery   string
	Normalized string
	Terms      []string
}

// Parse folds query and splits it into terms. Terms keep their punctuation
// and repeats, so "tree tree" scores every occurrence of tree twice.
func Parse(query string) *QueryPlan {
	return &QueryPlan{
		RawQuery:   query,
		Normalized: tokenizer.Fold(query),
		Terms:      tokenizer.Terms(query),
	}
}

// Empty reports whether the query has no terms. An empty query scores every
// document 0.
func (p *QueryPlan) Empty() bool {
	return len(p.Terms) == 0
}

// ReadQueries returns one query per line of the file at path with the line
// terminator removed. Blank lines are kept as empty queries.
func ReadQueries(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrMalformedInput, "opening query file %s: %v", path, err)
	}
	defer f.Close()

	var queries []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		queries = append(queries, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, apperrors.Newf(apperrors.ErrMalformedInput, "reading query file %s: %v", path, err)
	}
	return queries, nil
}
