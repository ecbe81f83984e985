// Package avltree provides a height-balanced ordered multimap. Keys are
// unique per tree and every key owns the values inserted under it, in
// insertion order. Nodes live in a single arena slice and reference their
// children by index.
package avltree

import (
	"cmp"
	"iter"
	"slices"
)

const nilNode int32 = -1

// Balancing selects how Put restores balance on the insertion path.
type Balancing int

const (
	// BalanceAVL applies the standard single and double rotations, so every
	// node satisfies |balance| <= 1 after each Put.
	BalanceAVL Balancing = iota
	// BalanceSingle only ever applies single rotations. Left-right and
	// right-left shapes are rotated once and may stay unbalanced until a
	// later insertion passes through them.
	BalanceSingle
)

type node[K cmp.Ordered, V any] struct {
	key    K
	values []V
	left   int32
	right  int32
	height int32
}

// Tree maps ordered keys to the values inserted under them.
// The zero value is not usable; create trees with New.
type Tree[K cmp.Ordered, V any] struct {
	nodes     []node[K, V]
	root      int32
	balancing Balancing
}

// Option configures a Tree.
type Option func(*options)

type options struct {
	balancing Balancing
	capacity  int
}

// WithBalancing selects the rebalancing mode. The default is BalanceAVL.
func WithBalancing(b Balancing) Option {
	return func(o *options) { o.balancing = b }
}

// WithCapacity preallocates room for n distinct keys.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}

// New returns an empty tree.
func New[K cmp.Ordered, V any](opts ...Option) *Tree[K, V] {
	o := options{balancing: BalanceAVL}
	for _, opt := range opts {
		opt(&o)
	}
	return &Tree[K, V]{
		nodes:     make([]node[K, V], 0, o.capacity),
		root:      nilNode,
		balancing: o.balancing,
	}
}

// Put inserts value under key. A key already present keeps its node and
// gets value appended to its values.
func (t *Tree[K, V]) Put(key K, value V) {
	t.root = t.put(t.root, key, value)
}

func (t *Tree[K, V]) put(i int32, key K, value V) int32 {
	if i == nilNode {
		t.nodes = append(t.nodes, node[K, V]{
			key:    key,
			values: []V{value},
			left:   nilNode,
			right:  nilNode,
			height: 1,
		})
		return int32(len(t.nodes) - 1)
	}
	// t.nodes may be reallocated by the recursive call, so index it afresh
	// instead of holding a pointer across it.
	switch c := cmp.Compare(key, t.nodes[i].key); {
	case c < 0:
		left := t.put(t.nodes[i].left, key, value)
		t.nodes[i].left = left
	case c > 0:
		right := t.put(t.nodes[i].right, key, value)
		t.nodes[i].right = right
	default:
		t.nodes[i].values = append(t.nodes[i].values, value)
		return i
	}
	t.updateHeight(i)
	return t.rebalance(i)
}

func (t *Tree[K, V]) rebalance(i int32) int32 {
	b := t.balance(i)
	switch {
	case b > 1:
		if t.balancing == BalanceAVL && t.balance(t.nodes[i].left) < 0 {
			t.nodes[i].left = t.rotateLeft(t.nodes[i].left)
		}
		return t.rotateRight(i)
	case b < -1:
		if t.balancing == BalanceAVL && t.balance(t.nodes[i].right) > 0 {
			t.nodes[i].right = t.rotateRight(t.nodes[i].right)
		}
		return t.rotateLeft(i)
	}
	return i
}

// rotateLeft promotes the right child of i and returns the new subtree root.
func (t *Tree[K, V]) rotateLeft(i int32) int32 {
	r := t.nodes[i].right
	t.nodes[i].right = t.nodes[r].left
	t.nodes[r].left = i
	t.updateHeight(i)
	t.updateHeight(r)
	return r
}

// rotateRight promotes the left child of i and returns the new subtree root.
func (t *Tree[K, V]) rotateRight(i int32) int32 {
	l := t.nodes[i].left
	t.nodes[i].left = t.nodes[l].right
	t.nodes[l].right = i
	t.updateHeight(i)
	t.updateHeight(l)
	return l
}

func (t *Tree[K, V]) height(i int32) int32 {
	if i == nilNode {
		return 0
	}
	return t.nodes[i].height
}

func (t *Tree[K, V]) balance(i int32) int32 {
	if i == nilNode {
		return 0
	}
	return t.height(t.nodes[i].left) - t.height(t.nodes[i].right)
}

func (t *Tree[K, V]) updateHeight(i int32) {
	t.nodes[i].height = 1 + max(t.height(t.nodes[i].left), t.height(t.nodes[i].right))
}

func (t *Tree[K, V]) find(key K) int32 {
	i := t.root
	for i != nilNode {
		switch c := cmp.Compare(key, t.nodes[i].key); {
		case c < 0:
			i = t.nodes[i].left
		case c > 0:
			i = t.nodes[i].right
		default:
			return i
		}
	}
	return nilNode
}

// Get returns the values stored under key in insertion order. The boolean
// is false when the key was never inserted.
func (t *Tree[K, V]) Get(key K) ([]V, bool) {
	i := t.find(key)
	if i == nilNode {
		return nil, false
	}
	return slices.Clip(t.nodes[i].values), true
}

// Count returns how many values are stored under key.
func (t *Tree[K, V]) Count(key K) (int, bool) {
	i := t.find(key)
	if i == nilNode {
		return 0, false
	}
	return len(t.nodes[i].values), true
}

// SearchPath returns the keys visited while descending toward key. When the
// key is present it is the last element.
func (t *Tree[K, V]) SearchPath(key K) []K {
	var path []K
	i := t.root
	for i != nilNode {
		path = append(path, t.nodes[i].key)
		switch c := cmp.Compare(key, t.nodes[i].key); {
		case c < 0:
			i = t.nodes[i].left
		case c > 0:
			i = t.nodes[i].right
		default:
			return path
		}
	}
	return path
}

// Len returns the number of distinct keys.
func (t *Tree[K, V]) Len() int {
	return len(t.nodes)
}

// Height returns the number of nodes on the longest root-to-leaf path.
// An empty tree has height 0.
func (t *Tree[K, V]) Height() int {
	return int(t.height(t.root))
}

// Root returns the key at the root of the tree.
func (t *Tree[K, V]) Root() (K, bool) {
	if t.root == nilNode {
		var zero K
		return zero, false
	}
	return t.nodes[t.root].key, true
}

// All yields every key with its values in ascending key order.
func (t *Tree[K, V]) All() iter.Seq2[K, []V] {
	return func(yield func(K, []V) bool) {
		t.walk(t.root, yield)
	}
}

func (t *Tree[K, V]) walk(i int32, yield func(K, []V) bool) bool {
	if i == nilNode {
		return true
	}
	if !t.walk(t.nodes[i].left, yield) {
		return false
	}
	if !yield(t.nodes[i].key, slices.Clip(t.nodes[i].values)) {
		return false
	}
	return t.walk(t.nodes[i].right, yield)
}
