package rbtree

import (
	"iter"
)

// Iterate yields entries in ascending key order. Each call starts a fresh
// traversal; the tree must not be mutated while a traversal is in progress.
func (t *Tree[K, I, P]) Iterate() iter.Seq[Entry[K, I, P]] {
	return func(yield func(Entry[K, I, P]) bool) {
		for x := range t.inorder() {
			if !yield(t.nodes[x].entry) {
				return
			}
		}
	}
}

// Entries collects Iterate into a slice.
func (t *Tree[K, I, P]) Entries() []Entry[K, I, P] {
	entrySlice := make([]Entry[K, I, P], 0, t.size)
	for entry := range t.Iterate() {
		entrySlice = append(entrySlice, entry)
	}
	return entrySlice
}

// Snapshot returns every node in ascending key order with its color and
// depth (root at depth 0).
func (t *Tree[K, I, P]) Snapshot() []NodeView[K, I] {
	type frame struct {
		index uint32
		depth int
	}

	viewSlice := make([]NodeView[K, I], 0, t.size)
	stack := make([]frame, 0, 64)

	x := t.root
	depth := 0
	for x != sentinel || len(stack) > 0 {
		for x != sentinel {
			stack = append(stack, frame{index: x, depth: depth})
			x = t.nodes[x].left
			depth += 1
		}

		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := &t.nodes[f.index]
		viewSlice = append(
			viewSlice,
			NodeView[K, I]{
				ID:    n.entry.ID,
				Key:   n.entry.Key,
				Color: n.color,
				Depth: f.depth,
			},
		)

		x = n.right
		depth = f.depth + 1
	}

	return viewSlice
}

// Height returns the number of nodes on the longest root to leaf path.
func (t *Tree[K, I, P]) Height() int {
	height := 0
	for _, view := range t.Snapshot() {
		if view.Depth+1 > height {
			height = view.Depth + 1
		}
	}
	return height
}

func (t *Tree[K, I, P]) inorder() iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		stack := make([]uint32, 0, 64)
		x := t.root
		for x != sentinel || len(stack) > 0 {
			for x != sentinel {
				stack = append(stack, x)
				x = t.nodes[x].left
			}

			x = stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if !yield(x) {
				return
			}

			x = t.nodes[x].right
		}
	}
}
