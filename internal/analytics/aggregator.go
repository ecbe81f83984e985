package analytics

import (
	"sort"
	"sync"
	"time"
)

// RunSummary describes one ranking run.
type RunSummary struct {
	RunID             string          `json:"run_id"`
	TotalQueries      int64           `json:"total_queries"`
	TotalDocIndexed   int64           `json:"total_docs_indexed"`
	TotalWordsIndexed int64           `json:"total_words_indexed"`
	MaxTreeHeight     int             `json:"max_tree_height"`
	CacheHits         int64           `json:"cache_hits"`
	ZeroResultCount   int64           `json:"zero_result_count"`
	AvgLatencyMs      float64         `json:"avg_latency_ms"`
	P50LatencyMs      int64           `json:"p50_latency_ms"`
	P95LatencyMs      int64           `json:"p95_latency_ms"`
	P99LatencyMs      int64           `json:"p99_latency_ms"`
	TopDocuments      []DocumentCount `json:"top_documents"`
	ZeroResultQueries []string        `json:"zero_result_queries"`
	StartedAt         time.Time       `json:"started_at"`
	DurationMs        int64           `json:"duration_ms"`
}

// DocumentCount is how often a document was emitted as the top result.
type DocumentCount struct {
	Document string `json:"document"`
	Count    int64  `json:"count"`
}

// Aggregator folds the events of a run into a RunSummary. It is safe for
// concurrent use; index events arrive from the parallel corpus loader.
type Aggregator struct {
	mu         sync.Mutex
	summary    RunSummary
	latencies  []int64
	topCounts  map[string]int64
	zeroResult []string
}

func NewAggregator(runID string) *Aggregator {
	return &Aggregator{
		summary: RunSummary{
			RunID:     runID,
			StartedAt: time.Now().UTC(),
		},
		topCounts: make(map[string]int64),
	}
}

func (a *Aggregator) RecordQuery(event QueryEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.summary.TotalQueries++
	if event.CacheHit {
		a.summary.CacheHits++
	}
	if event.Returned == 0 {
		a.summary.ZeroResultCount++
		a.zeroResult = append(a.zeroResult, event.Query)
	}
	if event.TopDocument != "" {
		a.topCounts[event.TopDocument]++
	}
	a.latencies = append(a.latencies, event.LatencyMs)
}

func (a *Aggregator) RecordIndex(event IndexEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.summary.TotalDocIndexed++
	a.summary.TotalWordsIndexed += int64(event.Words)
	a.summary.MaxTreeHeight = max(a.summary.MaxTreeHeight, event.TreeHeight)
}

// Summary returns a snapshot of the run so far.
func (a *Aggregator) Summary() RunSummary {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := a.summary
	s.DurationMs = time.Since(s.StartedAt).Milliseconds()
	if len(a.latencies) > 0 {
		sorted := make([]int64, len(a.latencies))
		copy(sorted, a.latencies)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		var sum int64
		for _, l := range sorted {
			sum += l
		}
		s.AvgLatencyMs = float64(sum) / float64(len(sorted))
		s.P50LatencyMs = percentile(sorted, 50)
		s.P95LatencyMs = percentile(sorted, 95)
		s.P99LatencyMs = percentile(sorted, 99)
	}
	s.TopDocuments = topN(a.topCounts, 10)
	s.ZeroResultQueries = append([]string(nil), a.zeroResult...)
	return s
}

func percentile(sorted []int64, pct int) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (pct * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// topN orders by count, then by name so equal counts are deterministic.
func topN(counts map[string]int64, n int) []DocumentCount {
	result := make([]DocumentCount, 0, len(counts))
	for doc, count := range counts {
		result = append(result, DocumentCount{Document: doc, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Document < result[j].Document
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}
