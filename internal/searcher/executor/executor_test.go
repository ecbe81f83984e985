package executor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/pkg/tracing"
)

func testCorpus() *indexer.Corpus {
	return indexer.NewCorpus("pages", []*index.DocumentIndex{
		index.New("pages/arraylist.txt", "an array list grows its array when full"),
		index.New("pages/binarytree.txt", "a binary tree is a tree. binary search uses a binary tree"),
		index.New("pages/bst.txt", "a binary search tree keeps keys ordered"),
		index.New("pages/stack.txt", "a stack pushes and pops. a stack is lifo"),
	})
}

func searchCfg(limit int) config.SearchConfig {
	return config.SearchConfig{Limit: limit, Strategy: config.StrategySort, StopAtZeroScore: true}
}

func documents(res *SearchResult) []string {
	out := make([]string, len(res.Results))
	for i, h := range res.Results {
		out[i] = h.Document
	}
	return out
}

func TestRun_StopsAtZeroScore(t *testing.T) {
	e := New(testCorpus(), searchCfg(0))
	results, err := e.Run(context.Background(), []string{"Binary Tree", "stack", "heap"})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "Binary Tree", results[0].Query)
	assert.Equal(t, []string{"binary", "tree"}, results[0].Terms)
	assert.Equal(t, []string{"pages/binarytree.txt", "pages/bst.txt"}, documents(results[0]))
	assert.Equal(t, []Hit{{"pages/binarytree.txt", 6}, {"pages/bst.txt", 2}}, results[0].Results)

	assert.Equal(t, []string{"pages/stack.txt"}, documents(results[1]))
	assert.Empty(t, results[2].Results)
	assert.NotNil(t, results[2].Results)
}

func TestRun_Limit(t *testing.T) {
	e := New(testCorpus(), searchCfg(1))
	results, err := e.Run(context.Background(), []string{"binary tree", "a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"pages/binarytree.txt"}, documents(results[0]))
	// binarytree.txt has the most occurrences of "a".
	assert.Equal(t, []string{"pages/binarytree.txt"}, documents(results[1]))
}

func TestRun_KeepsZeroScoresWhenConfigured(t *testing.T) {
	cfg := searchCfg(0)
	cfg.StopAtZeroScore = false
	e := New(testCorpus(), cfg)
	res, err := e.Execute(context.Background(), "stack")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"pages/stack.txt",
		"pages/arraylist.txt",
		"pages/binarytree.txt",
		"pages/bst.txt",
	}, documents(res))
}

func TestExecute_BlankQuerySkipsScoring(t *testing.T) {
	e := New(testCorpus(), searchCfg(0))
	res, err := e.Execute(context.Background(), "   ")
	require.NoError(t, err)
	assert.NotNil(t, res.Results)
	assert.Empty(t, res.Results)
	assert.Nil(t, e.selector)

	// A later real query still ranks from scratch.
	res, err = e.Execute(context.Background(), "stack")
	require.NoError(t, err)
	assert.Equal(t, []string{"pages/stack.txt"}, documents(res))
}

func TestExecute_BlankQueryKeepsZeroScoresWhenConfigured(t *testing.T) {
	cfg := searchCfg(0)
	cfg.StopAtZeroScore = false
	e := New(testCorpus(), cfg)
	res, err := e.Execute(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, res.Results, 4)
	for _, hit := range res.Results {
		assert.Zero(t, hit.Score)
	}
}

func TestRun_AllDocumentsScoreWithoutCrashing(t *testing.T) {
	corpus := indexer.NewCorpus("c", []*index.DocumentIndex{
		index.New("one", "tree"),
		index.New("two", "tree tree"),
	})
	e := New(corpus, searchCfg(0))
	res, err := e.Execute(context.Background(), "tree")
	require.NoError(t, err)
	assert.Equal(t, []string{"two", "one"}, documents(res))
}

func TestRun_RepeatedQueryGetsFullRanking(t *testing.T) {
	e := New(testCorpus(), searchCfg(0))
	results, err := e.Run(context.Background(), []string{"binary tree", "BINARY TREE", "binary tree"})
	require.NoError(t, err)
	for _, res := range results {
		assert.Equal(t, []string{"pages/binarytree.txt", "pages/bst.txt"}, documents(res))
	}
	assert.Equal(t, "BINARY TREE", results[1].Query)
}

func TestRun_EmptyCorpus(t *testing.T) {
	e := New(indexer.NewCorpus("empty", nil), searchCfg(0))
	res, err := e.Execute(context.Background(), "tree")
	require.NoError(t, err)
	assert.Empty(t, res.Results)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err := New(testCorpus(), searchCfg(0)).Run(ctx, []string{"tree"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
}

type mapCache struct {
	entries map[string]*SearchResult
	keys    []string
}

func (c *mapCache) GetOrCompute(_ context.Context, key string, compute func() (*SearchResult, error)) (*SearchResult, bool, error) {
	c.keys = append(c.keys, key)
	if res, ok := c.entries[key]; ok {
		return res, true, nil
	}
	res, err := compute()
	if err != nil {
		return nil, false, err
	}
	c.entries[key] = res
	return res, false, nil
}

func TestExecute_Cache(t *testing.T) {
	c := &mapCache{entries: make(map[string]*SearchResult)}
	m := metrics.New()
	var observed []bool
	e := New(testCorpus(), searchCfg(0)).WithCache(c).WithMetrics(m)
	e.OnQuery(func(_ context.Context, res *SearchResult, _ time.Duration) {
		observed = append(observed, res.Cached)
	})

	results, err := e.Run(context.Background(), []string{"binary tree", "stack", "Binary  Tree"})
	require.NoError(t, err)

	assert.False(t, results[0].Cached)
	assert.True(t, results[2].Cached)
	assert.Equal(t, "Binary  Tree", results[2].Query)
	assert.Equal(t, documents(results[0]), documents(results[2]))
	assert.Equal(t, []bool{false, false, true}, observed)
	assert.Equal(t, c.keys[0], c.keys[2])
	assert.NotEqual(t, c.keys[0], c.keys[1])

	assert.Equal(t, 1.0, testutil.ToFloat64(m.QueriesTotal.WithLabelValues("cached")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.QueriesTotal.WithLabelValues("hit")))
}

type failingCache struct{}

var errBackend = errors.New("backend down")

func (failingCache) GetOrCompute(context.Context, string, func() (*SearchResult, error)) (*SearchResult, bool, error) {
	return nil, false, errBackend
}

func TestExecute_CacheError(t *testing.T) {
	e := New(testCorpus(), searchCfg(0)).WithCache(failingCache{})
	results, err := e.Run(context.Background(), []string{"tree"})
	assert.ErrorIs(t, err, errBackend)
	assert.Empty(t, results)
}

func TestRun_RecordsSpans(t *testing.T) {
	ctx, root := tracing.StartSpan(context.Background(), "test", "trace-1")
	_, err := New(testCorpus(), searchCfg(0)).Run(ctx, []string{"tree", "stack"})
	require.NoError(t, err)
	root.End()

	require.Len(t, root.Children, 1)
	run := root.Children[0]
	assert.Equal(t, "run-queries", run.Name)
	assert.Equal(t, "trace-1", run.TraceID)
	assert.Len(t, run.Children, 2)
}
