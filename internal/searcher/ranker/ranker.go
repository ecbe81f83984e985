// Package ranker orders documents by how often they contain the terms of a
// query. A Selector materialises the full descending ranking eagerly and
// then hands documents out one at a time.
package ranker

import (
	"slices"

	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/pkg/errors"
)

// Document is anything that can report per-word occurrence counts.
type Document interface {
	Name() string
	Count(word string) (int, bool)
}

// Scored pairs a document with its score for the selector's current query.
type Scored[D Document] struct {
	Doc   D
	Score int
}

// Strategy selects how the descending ranking is produced. Both strategies
// yield the same order: ties keep the documents' original collection order.
type Strategy int

const (
	// StrategySort uses a single stable sort.
	StrategySort Strategy = iota
	// StrategyScan repeatedly scans the remaining documents for the first
	// maximum and moves it to the output. Quadratic in the corpus size.
	StrategyScan
)

// ParseStrategy maps a config strategy name to a Strategy.
func ParseStrategy(name string) Strategy {
	if name == "scan" {
		return StrategyScan
	}
	return StrategySort
}

// Selector ranks a fixed document collection against one query at a time.
// The collection is owned by the caller and never modified. A Selector is
// not safe for concurrent use.
type Selector[D Document] struct {
	query    string
	terms    []string
	docs     []D
	strategy Strategy
	ranking  []Scored[D]
	next     int
}

// NewSelector scores every document against query and builds the ranking.
func NewSelector[D Document](query string, docs []D, strategy Strategy) *Selector[D] {
	s := &Selector[D]{
		docs:     docs,
		strategy: strategy,
	}
	s.rank(query)
	return s
}

// Score returns the sum over terms of doc's occurrence count, absent terms
// counting as zero. Repeated terms count again.
func Score(doc Document, terms []string) int {
	total := 0
	for _, term := range terms {
		if n, ok := doc.Count(term); ok {
			total += n
		}
	}
	return total
}

func (s *Selector[D]) rank(query string) {
	s.query = tokenizer.Fold(query)
	s.terms = tokenizer.Terms(query)
	scored := make([]Scored[D], len(s.docs))
	for i, d := range s.docs {
		scored[i] = Scored[D]{Doc: d, Score: Score(d, s.terms)}
	}
	switch s.strategy {
	case StrategyScan:
		s.ranking = selectionOrder(scored)
	default:
		slices.SortStableFunc(scored, func(a, b Scored[D]) int {
			return b.Score - a.Score
		})
		s.ranking = scored
	}
	s.next = 0
}

// selectionOrder drains work by repeatedly removing its first maximum.
func selectionOrder[D Document](work []Scored[D]) []Scored[D] {
	out := make([]Scored[D], 0, len(work))
	for len(work) > 0 {
		best := 0
		for i := 1; i < len(work); i++ {
			if work[i].Score > work[best].Score {
				best = i
			}
		}
		out = append(out, work[best])
		work = slices.Delete(work, best, best+1)
	}
	return out
}

// Peek returns the highest-scored remaining document without removing it.
func (s *Selector[D]) Peek() (Scored[D], error) {
	if s.next >= len(s.ranking) {
		var zero Scored[D]
		return zero, apperrors.ErrSelectorExhausted
	}
	return s.ranking[s.next], nil
}

// Poll removes and returns the highest-scored remaining document.
func (s *Selector[D]) Poll() (Scored[D], error) {
	top, err := s.Peek()
	if err != nil {
		return top, err
	}
	s.next++
	return top, nil
}

// Rehash re-ranks the full collection against newQuery, discarding whatever
// is left of the current ranking. It is a no-op, returning false, when
// newQuery case-folds to the current query.
func (s *Selector[D]) Rehash(newQuery string) bool {
	if tokenizer.Fold(newQuery) == s.query {
		return false
	}
	s.rank(newQuery)
	return true
}

// Reset rewinds the current ranking so it can be drained again.
func (s *Selector[D]) Reset() {
	s.next = 0
}

// Len returns the number of documents not yet polled.
func (s *Selector[D]) Len() int {
	return len(s.ranking) - s.next
}

// Query returns the case-folded current query.
func (s *Selector[D]) Query() string {
	return s.query
}

// Terms returns the current query terms.
func (s *Selector[D]) Terms() []string {
	return slices.Clone(s.terms)
}
