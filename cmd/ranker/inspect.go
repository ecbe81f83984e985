package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/internal/avltree"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/pkg/errors"
)

// inspectCommand prints the index of a single document: its shape, one
// word's occurrences and search path, the word at a position, and optionally
// every word in order.
func inspectCommand(_ context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	var cf commonFlags
	cf.bind(fs)
	docPath := fs.String("doc", "", "document to inspect")
	word := fs.String("word", "", "word to look up")
	dump := fs.Bool("dump", false, "print every distinct word with its positions")
	pos := fs.Int("pos", -1, "print the word at this 0-based position")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	cfg, err := cf.load(fs)
	if err != nil {
		return err
	}
	if *docPath == "" {
		return apperrors.New(apperrors.ErrInvalidConfig, "inspect: -doc is required")
	}

	doc, err := index.Open(*docPath, avltree.WithBalancing(indexer.ParseBalancing(cfg.Search.Balancing)))
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "document: %s\n", doc.Name())
	fmt.Fprintf(stdout, "words: %d\n", doc.Len())
	fmt.Fprintf(stdout, "distinct words: %d\n", doc.DistinctWords())
	fmt.Fprintf(stdout, "tree height: %d (%s)\n", doc.Height(), cfg.Search.Balancing)
	if root, ok := doc.RootWord(); ok {
		fmt.Fprintf(stdout, "tree root: %s\n", root)
	}
	fmt.Fprintf(stdout, "checksum: %s\n", doc.Checksum())

	if *dump {
		fmt.Fprintln(stdout)
		for w, positions := range doc.Words() {
			fmt.Fprintf(stdout, "%s: %v\n", w, positions)
		}
	}

	if *pos >= 0 {
		w, err := doc.Word(*pos)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout)
		fmt.Fprintf(stdout, "word at position %d: %s\n", *pos, w)
	}

	if *word == "" {
		return nil
	}
	key := tokenizer.Fold(*word)
	fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "search path for %q: %s\n", key, strings.Join(doc.SearchPath(key), " -> "))
	positions, ok := doc.Positions(key)
	if !ok {
		fmt.Fprintf(stdout, "count: 0\n")
		return apperrors.Newf(apperrors.ErrKeyNotFound, "%q does not occur in %s", key, doc.Name())
	}
	fmt.Fprintf(stdout, "count: %d\n", len(positions))
	fmt.Fprintf(stdout, "positions: %v\n", positions)
	return nil
}
