package rbtree

import "cmp"

type node[K any, I any, P any] struct {
	entry Entry[K, I, P]

	// insertion sequence, orders entries with equal keys
	seq uint64

	parent, left, right uint32
	color               Color

	// bumped on release so that handles to a recycled slot go stale
	gen  uint32
	live bool
}

// alloc returns a slot for a new red node with all links pointing at the
// sentinel. Slots freed by release are reused before the arena grows.
// Pointers into t.nodes must not be held across alloc.
func (t *Tree[K, I, P]) alloc() uint32 {
	var i uint32
	if n := len(t.free); n > 0 {
		i = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		if uint64(len(t.nodes)) > uint64(^uint32(0)) {
			panic("rbtree: arena exhausted")
		}
		t.nodes = append(t.nodes, node[K, I, P]{})
		i = uint32(len(t.nodes) - 1)
	}

	n := &t.nodes[i]
	n.parent = sentinel
	n.left = sentinel
	n.right = sentinel
	n.color = Red
	n.live = true
	return i
}

func (t *Tree[K, I, P]) release(i uint32) {
	if i == sentinel {
		panic("rbtree: sentinel cannot be released")
	}

	n := &t.nodes[i]
	gen := n.gen + 1
	*n = node[K, I, P]{gen: gen}
	t.free = append(t.free, i)
}

func (t *Tree[K, I, P]) lookup(h Handle) (uint32, bool) {
	if h.index == sentinel || uint64(h.index) >= uint64(len(t.nodes)) {
		return sentinel, false
	}
	n := &t.nodes[h.index]
	if !n.live || n.gen != h.gen {
		return sentinel, false
	}
	return h.index, true
}

func (t *Tree[K, I, P]) handle(i uint32) Handle {
	return Handle{index: i, gen: t.nodes[i].gen}
}

func (t *Tree[K, I, P]) color(i uint32) Color {
	return t.nodes[i].color
}

func (t *Tree[K, I, P]) less(a, b uint32) bool {
	x, y := &t.nodes[a], &t.nodes[b]
	// cmp.Compare orders NaN first, keeping float keys totally ordered
	if c := cmp.Compare(x.entry.Key, y.entry.Key); c != 0 {
		return c < 0
	}
	return x.seq < y.seq
}

func (t *Tree[K, I, P]) minimum(i uint32) uint32 {
	for t.nodes[i].left != sentinel {
		i = t.nodes[i].left
	}
	return i
}

func (t *Tree[K, I, P]) maximum(i uint32) uint32 {
	for t.nodes[i].right != sentinel {
		i = t.nodes[i].right
	}
	return i
}
