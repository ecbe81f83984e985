package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/pkg/tracing"
)

func TestLoadCorpus_SpanCarriesAttributes(t *testing.T) {
	f := writeFixture(t, "")
	loader := indexer.NewLoader(config.CorpusConfig{Workers: 2}, config.BalancingAVL, nil)
	ctx, root := tracing.StartSpan(context.Background(), "run", "run-1")

	corpus, err := loadCorpus(ctx, loader, f.folder)
	require.NoError(t, err)
	assert.Equal(t, 3, corpus.Len())

	require.Len(t, root.Children, 1)
	span := root.Children[0]
	assert.Equal(t, "load-corpus", span.Name)
	assert.Equal(t, "run-1", span.TraceID)
	assert.Equal(t, f.folder, span.Attrs["folder"])
	assert.Equal(t, 3, span.Attrs["documents"])
	assert.Positive(t, span.Duration)
}

func TestLoadCorpus_FailureEndsSpan(t *testing.T) {
	f := writeFixture(t, "")
	loader := indexer.NewLoader(config.CorpusConfig{}, config.BalancingAVL, nil)
	ctx, root := tracing.StartSpan(context.Background(), "run", "run-2")

	_, err := loadCorpus(ctx, loader, filepath.Join(f.folder, "missing"))
	require.Error(t, err)
	require.Len(t, root.Children, 1)
	assert.Contains(t, root.Children[0].Attrs, "error")
	assert.NotContains(t, root.Children[0].Attrs, "documents")
}
