// Package indexer loads a folder of text documents into DocumentIndex
// instances. Documents are built in parallel but the resulting corpus keeps
// the folder's file-name order, which is also the ranking tie-break order.
package indexer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/internal/avltree"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/pkg/metrics"
)

// Corpus is an ordered, immutable collection of indexed documents.
type Corpus struct {
	folder      string
	docs        []*index.DocumentIndex
	fingerprint string
}

// NewCorpus wraps already built documents. The order of docs is kept.
func NewCorpus(folder string, docs []*index.DocumentIndex) *Corpus {
	h := sha256.New()
	for _, d := range docs {
		fmt.Fprintf(h, "%s\x00%s\n", d.Name(), d.Checksum())
	}
	return &Corpus{
		folder:      folder,
		docs:        docs,
		fingerprint: hex.EncodeToString(h.Sum(nil)),
	}
}

// Documents returns the documents in corpus order. The slice is a copy; the
// documents themselves are shared and read-only.
func (c *Corpus) Documents() []*index.DocumentIndex {
	out := make([]*index.DocumentIndex, len(c.docs))
	copy(out, c.docs)
	return out
}

// Len returns the number of documents.
func (c *Corpus) Len() int {
	return len(c.docs)
}

// Folder returns the folder the corpus was loaded from.
func (c *Corpus) Folder() string {
	return c.folder
}

// Fingerprint identifies the corpus content: names and raw-text checksums in
// order. Two loads of an unchanged folder share a fingerprint.
func (c *Corpus) Fingerprint() string {
	return c.fingerprint
}

// DocumentObserver is notified after each document is indexed.
type DocumentObserver func(doc *index.DocumentIndex, took time.Duration)

// Loader builds corpora from folders.
type Loader struct {
	workers   int
	balancing avltree.Balancing
	metrics   *metrics.Metrics
	observers []DocumentObserver
	logger    *slog.Logger
}

// NewLoader creates a Loader. m may be nil.
func NewLoader(cfg config.CorpusConfig, balancing string, m *metrics.Metrics) *Loader {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	return &Loader{
		workers:   workers,
		balancing: ParseBalancing(balancing),
		metrics:   m,
		logger:    slog.Default().With("component", "corpus-loader"),
	}
}

// ParseBalancing maps a config balancing mode to the tree option.
func ParseBalancing(mode string) avltree.Balancing {
	if mode == config.BalancingSingle {
		return avltree.BalanceSingle
	}
	return avltree.BalanceAVL
}

// OnDocument registers an observer called after each document is built.
// Observers may be called concurrently.
func (l *Loader) OnDocument(fn DocumentObserver) {
	l.observers = append(l.observers, fn)
}

// Load indexes every regular file directly inside folder. Subdirectories are
// skipped. Any unreadable document fails the whole load.
func (l *Loader) Load(ctx context.Context, folder string) (*Corpus, error) {
	start := time.Now()
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrMalformedInput, "reading folder %s: %v", folder, err)
	}
	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			l.logger.Debug("skipping subdirectory", "path", filepath.Join(folder, entry.Name()))
			continue
		}
		paths = append(paths, filepath.Join(folder, entry.Name()))
	}

	docs := make([]*index.DocumentIndex, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			docStart := time.Now()
			doc, err := index.Open(path, avltree.WithBalancing(l.balancing))
			if err != nil {
				return err
			}
			took := time.Since(docStart)
			docs[i] = doc
			l.metrics.ObserveDocument(doc.Len(), doc.Height(), took)
			for _, fn := range l.observers {
				fn(doc, took)
			}
			l.logger.Debug("document indexed",
				"document", doc.Name(),
				"words", doc.Len(),
				"distinct_words", doc.DistinctWords(),
				"tree_height", doc.Height(),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("loading corpus from %s: %w", folder, err)
	}

	corpus := NewCorpus(folder, docs)
	took := time.Since(start)
	l.metrics.ObserveCorpusLoad(took)
	l.logger.Info("corpus loaded",
		"folder", folder,
		"documents", corpus.Len(),
		"workers", l.workers,
		"duration_ms", took.Milliseconds(),
	)
	return corpus, nil
}
