package analytics

import (
	"time"

	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/internal/searcher/executor"
)

type EventType string

const (
	EventQuery      EventType = "query"
	EventZeroResult EventType = "zero_result"
	EventIndexDoc   EventType = "index_document"
)

type QueryEvent struct {
	Type        EventType `json:"type"`
	RunID       string    `json:"run_id"`
	Query       string    `json:"query"`
	Terms       []string  `json:"terms"`
	Returned    int       `json:"returned"`
	TopDocument string    `json:"top_document,omitempty"`
	TopScore    int       `json:"top_score"`
	LatencyMs   int64     `json:"latency_ms"`
	CacheHit    bool      `json:"cache_hit"`
	Timestamp   time.Time `json:"timestamp"`
}

type IndexEvent struct {
	Type          EventType `json:"type"`
	RunID         string    `json:"run_id"`
	Document      string    `json:"document"`
	Words         int       `json:"words"`
	DistinctWords int       `json:"distinct_words"`
	TreeHeight    int       `json:"tree_height"`
	LatencyMs     int64     `json:"latency_ms"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewQueryEvent describes an answered query.
func NewQueryEvent(res *executor.SearchResult) QueryEvent {
	event := QueryEvent{
		Type:      EventQuery,
		Query:     res.Query,
		Terms:     res.Terms,
		Returned:  len(res.Results),
		LatencyMs: res.LatencyMs,
		CacheHit:  res.Cached,
		Timestamp: time.Now().UTC(),
	}
	if len(res.Results) == 0 {
		event.Type = EventZeroResult
	} else {
		event.TopDocument = res.Results[0].Document
		event.TopScore = res.Results[0].Score
	}
	return event
}

// NewIndexEvent describes a freshly indexed document.
func NewIndexEvent(doc *index.DocumentIndex, took time.Duration) IndexEvent {
	return IndexEvent{
		Type:          EventIndexDoc,
		Document:      doc.Name(),
		Words:         doc.Len(),
		DistinctWords: doc.DistinctWords(),
		TreeHeight:    doc.Height(),
		LatencyMs:     took.Milliseconds(),
		Timestamp:     time.Now().UTC(),
	}
}
