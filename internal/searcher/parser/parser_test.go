package parser

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/pkg/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		query string
		norm  string
		terms []string
	}{
		{"simple", "Binary Tree", "binary tree", []string{"binary", "tree"}},
		{"extra whitespace", "  stack \t queue ", "  stack \t queue ", []string{"stack", "queue"}},
		{"punctuation kept", "tree.", "tree.", []string{"tree."}},
		{"repeats kept", "tree TREE", "tree tree", []string{"tree", "tree"}},
		{"empty", "", "", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := Parse(tt.query)
			assert.Equal(t, tt.query, plan.RawQuery)
			assert.Equal(t, tt.norm, plan.Normalized)
			assert.Equal(t, tt.terms, plan.Terms)
			assert.Equal(t, len(tt.terms) == 0, plan.Empty())
		})
	}
}

func TestReadQueries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queries.txt")
	require.NoError(t, os.WriteFile(path, []byte("binary tree\r\nstack\n\nqueue"), 0o644))

	queries, err := ReadQueries(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"binary tree", "stack", "", "queue"}, queries)

	assert.True(t, Parse(queries[2]).Empty())
	assert.Equal(t, []string{"binary", "tree"}, Parse(queries[0]).Terms)
}

func TestReadQueries_Missing(t *testing.T) {
	_, err := ReadQueries(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrMalformedInput))
}
