// Package report renders query results for humans (text) or machines
// (JSON lines).
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/internal/searcher/executor"
	apperrors "github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/pkg/errors"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// Writer writes one result at a time to an io.Writer.
type Writer interface {
	Write(res *executor.SearchResult) error
}

// New returns the Writer for format.
func New(w io.Writer, format string) (Writer, error) {
	switch format {
	case FormatText, "":
		return &textWriter{w: w}, nil
	case FormatJSON:
		return &jsonWriter{enc: json.NewEncoder(w)}, nil
	default:
		return nil, apperrors.Newf(apperrors.ErrInvalidConfig, "unknown output format %q", format)
	}
}

// WriteAll writes every result in order.
func WriteAll(w Writer, results []*executor.SearchResult) error {
	for _, res := range results {
		if err := w.Write(res); err != nil {
			return err
		}
	}
	return nil
}

type textWriter struct {
	w io.Writer
}

// Write prints a header line framed by blank lines, then one document name
// per line.
func (t *textWriter) Write(res *executor.SearchResult) error {
	if _, err := fmt.Fprintf(t.w, "\n______The top search results for %s______\n\n", res.Query); err != nil {
		return fmt.Errorf("writing report header: %w", err)
	}
	for _, hit := range res.Results {
		if _, err := fmt.Fprintln(t.w, hit.Document); err != nil {
			return fmt.Errorf("writing report line: %w", err)
		}
	}
	return nil
}

type jsonWriter struct {
	enc *json.Encoder
}

func (j *jsonWriter) Write(res *executor.SearchResult) error {
	if err := j.enc.Encode(res); err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	return nil
}
