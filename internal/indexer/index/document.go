// Package index builds the per-document word index: a balanced tree from
// each word to the positions where it occurs.
package index

import (
	"crypto/sha256"
	"encoding/hex"
	"iter"
	"os"
	"unicode/utf8"

	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/internal/avltree"
	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/pkg/errors"
)

// DocumentIndex is the word index of one document: every normalised word
// maps to the positions it occupies in the document's word sequence. It is
// built once and never mutated.
type DocumentIndex struct {
	name     string
	contents []string
	tree     *avltree.Tree[string, int]
	checksum string
}

// New indexes text under the given name. The tree arena is sized for the
// word count, which bounds the number of distinct words; opts may override it.
func New(name string, text string, opts ...avltree.Option) *DocumentIndex {
	contents := tokenizer.Words(text)
	sum := sha256.Sum256([]byte(text))
	opts = append([]avltree.Option{avltree.WithCapacity(len(contents))}, opts...)
	d := &DocumentIndex{
		name:     name,
		contents: contents,
		tree:     avltree.New[string, int](opts...),
		checksum: hex.EncodeToString(sum[:]),
	}
	for pos, word := range contents {
		d.tree.Put(word, pos)
	}
	return d
}

// Open reads and indexes the file at path. The path becomes the document
// name.
func Open(path string, opts ...avltree.Option) (*DocumentIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrMalformedInput, "reading document %s: %v", path, err)
	}
	if !utf8.Valid(data) {
		return nil, apperrors.Newf(apperrors.ErrMalformedInput, "document %s is not valid UTF-8", path)
	}
	return New(path, string(data), opts...), nil
}

// Name returns the name the document was indexed under, its path for Open.
func (d *DocumentIndex) Name() string {
	return d.name
}

// Count returns how many times word occurs. The boolean is false when the
// word never occurs, which callers scoring documents treat as zero.
func (d *DocumentIndex) Count(word string) (int, bool) {
	return d.tree.Count(word)
}

// Positions returns the 0-based positions of word in insertion order.
func (d *DocumentIndex) Positions(word string) ([]int, bool) {
	return d.tree.Get(word)
}

// SearchPath returns the words visited while looking word up.
func (d *DocumentIndex) SearchPath(word string) []string {
	return d.tree.SearchPath(word)
}

// Words yields each distinct word with its positions in ascending word order.
func (d *DocumentIndex) Words() iter.Seq2[string, []int] {
	return d.tree.All()
}

// Len returns the number of words in the document.
func (d *DocumentIndex) Len() int {
	return len(d.contents)
}

// Word returns the word at position pos.
func (d *DocumentIndex) Word(pos int) (string, error) {
	if pos < 0 || pos >= len(d.contents) {
		return "", apperrors.Newf(apperrors.ErrKeyNotFound, "position %d out of range [0,%d)", pos, len(d.contents))
	}
	return d.contents[pos], nil
}

// DistinctWords returns the number of distinct words.
func (d *DocumentIndex) DistinctWords() int {
	return d.tree.Len()
}

// Height returns the height of the underlying tree.
func (d *DocumentIndex) Height() int {
	return d.tree.Height()
}

// RootWord returns the word at the root of the tree, false for an empty
// document.
func (d *DocumentIndex) RootWord() (string, bool) {
	return d.tree.Root()
}

// Checksum returns the hex SHA-256 of the raw document text.
func (d *DocumentIndex) Checksum() string {
	return d.checksum
}
