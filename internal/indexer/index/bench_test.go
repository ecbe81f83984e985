package index

import (
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/internal/avltree"
)

var benchText = strings.Repeat(`Information retrieval systems form the backbone of modern search
infrastructure. The index maps each term to the positions containing it, and a
balanced tree keeps every lookup logarithmic in the number of distinct words. `, 50)

func BenchmarkNew(b *testing.B) {
	for _, mode := range []struct {
		name string
		bal  avltree.Balancing
	}{{"avl", avltree.BalanceAVL}, {"single", avltree.BalanceSingle}} {
		b.Run(mode.name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(benchText)))
			for i := 0; i < b.N; i++ {
				_ = New("bench.txt", benchText, avltree.WithBalancing(mode.bal))
			}
		})
	}
}

func BenchmarkCountParallel(b *testing.B) {
	d := New("bench.txt", benchText)
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = d.Count("logarithmic")
		}
	})
}
