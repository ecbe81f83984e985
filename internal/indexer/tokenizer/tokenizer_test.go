package tokenizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWords(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty string", "", []string{}},
		{"simple sentence", "the cat sat on the mat", []string{"the", "cat", "sat", "on", "the", "mat"}},
		{"mixed case", "The Binary TREE", []string{"the", "binary", "tree"}},
		{"stripped punctuation", "(nodes), edges. roots", []string{"nodes", "edges", "roots"}},
		{"other punctuation kept", "queue! stack? tree-like", []string{"queue!", "stack?", "tree-like"}},
		{"newline joins words", "end\nstart here", []string{"endstart", "here"}},
		{"crlf joins words", "the cat sat\r\non the mat", []string{"the", "cat", "saton", "the", "mat"}},
		{"lone cr joins words", "end\rstart", []string{"endstart"}},
		{"consecutive spaces", "a  b   c", []string{"a", "b", "c"}},
		{"tabs are not separators", "a\tb c", []string{"a\tb", "c"}},
		{"unicode folding", "ÉCOLE Straße", []string{"école", "straße"}},
		{"only stripped characters", "(.,)", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Words(tt.input))
		})
	}
}

func TestTerms(t *testing.T) {
	assert.Equal(t, []string{"binary", "tree"}, Terms("  Binary\tTREE \n"))
	assert.Equal(t, []string{"tree,"}, Terms("Tree,"))
	assert.Empty(t, Terms("   "))
}

func TestFold(t *testing.T) {
	assert.Equal(t, "avl tree", Fold("AVL Tree"))
}

func BenchmarkWords(b *testing.B) {
	text := strings.Repeat("An AVL tree (named after inventors Adelson-Velsky and Landis) is a self-balancing binary search tree. ", 200)
	b.ReportAllocs()
	b.SetBytes(int64(len(text)))
	for i := 0; i < b.N; i++ {
		_ = Words(text)
	}
}
