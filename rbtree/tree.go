package rbtree

import (
	"cmp"
)

// Tree is a red-black tree ordered by Key, with equal keys kept in insertion
// order. Nodes live in an arena addressed by index; index 0 is the black
// sentinel. A Tree is not safe for concurrent use.
type Tree[K cmp.Ordered, I comparable, P any] struct {
	options *Options

	nodes []node[K, I, P]
	free  []uint32

	root uint32
	size int

	// last insertion sequence handed out
	seq uint64
}

func New[K cmp.Ordered, I comparable, P any](options *Options) *Tree[K, I, P] {
	if options == nil {
		options = &Options{}
	}

	t := &Tree[K, I, P]{
		options: options,
		nodes:   make([]node[K, I, P], 1, options.Capacity+1),
		free:    make([]uint32, 0),
		root:    sentinel,
		size:    0,
		seq:     0,
	}
	t.nodes[sentinel].color = Black
	return t
}

func (t *Tree[K, I, P]) Size() int {
	return t.size
}

func (t *Tree[K, I, P]) IsEmpty() bool {
	return t.size == 0
}

// Get returns the entry referred to by h.
func (t *Tree[K, I, P]) Get(h Handle) (Entry[K, I, P], bool) {
	i, found := t.lookup(h)
	if !found {
		return Entry[K, I, P]{}, false
	}
	return t.nodes[i].entry, true
}

// Min returns the entry with the smallest key without removing it.
func (t *Tree[K, I, P]) Min() (Entry[K, I, P], bool) {
	if t.root == sentinel {
		return Entry[K, I, P]{}, false
	}
	return t.nodes[t.minimum(t.root)].entry, true
}

// Max returns the entry with the largest key without removing it.
func (t *Tree[K, I, P]) Max() (Entry[K, I, P], bool) {
	if t.root == sentinel {
		return Entry[K, I, P]{}, false
	}
	return t.nodes[t.maximum(t.root)].entry, true
}

// Insert adds a new entry and returns a handle to it. Entries with a key
// equal to existing ones are ordered after them.
func (t *Tree[K, I, P]) Insert(key K, id I, payload P) Handle {
	z := t.alloc()

	t.seq += 1
	t.nodes[z].entry = Entry[K, I, P]{Key: key, ID: id, Payload: payload}
	t.nodes[z].seq = t.seq

	y := sentinel
	x := t.root
	for x != sentinel {
		y = x
		if t.less(z, x) {
			x = t.nodes[x].left
		} else {
			x = t.nodes[x].right
		}
	}

	t.nodes[z].parent = y
	switch {
	case y == sentinel:
		t.root = z
	case t.less(z, y):
		t.nodes[y].left = z
	default:
		t.nodes[y].right = z
	}
	t.size += 1

	t.insertFixup(z)
	t.check()

	return t.handle(z)
}

// Delete removes the entry referred to by h and invalidates h.
func (t *Tree[K, I, P]) Delete(h Handle) error {
	z, found := t.lookup(h)
	if !found {
		return ErrNotFound
	}

	t.remove(z)
	t.release(z)
	t.size -= 1
	t.check()

	return nil
}

// ExtractMin removes and returns the entry with the smallest key.
func (t *Tree[K, I, P]) ExtractMin() (Entry[K, I, P], bool) {
	if t.root == sentinel {
		return Entry[K, I, P]{}, false
	}

	z := t.minimum(t.root)
	entry := t.nodes[z].entry

	t.remove(z)
	t.release(z)
	t.size -= 1
	t.check()

	return entry, true
}

// UpdateKey moves the entry referred to by h to newKey, keeping its ID and
// Payload. h is invalidated; the returned handle replaces it.
func (t *Tree[K, I, P]) UpdateKey(h Handle, newKey K) (Handle, error) {
	z, found := t.lookup(h)
	if !found {
		return Handle{}, ErrNotFound
	}

	entry := t.nodes[z].entry
	if err := t.Delete(h); err != nil {
		return Handle{}, err
	}
	return t.Insert(newKey, entry.ID, entry.Payload), nil
}

// Clear releases every node. Outstanding handles go stale.
func (t *Tree[K, I, P]) Clear() {
	for i := uint32(1); i < uint32(len(t.nodes)); i++ {
		if t.nodes[i].live {
			t.release(i)
		}
	}
	t.root = sentinel
	t.size = 0
}

func (t *Tree[K, I, P]) check() {
	if !t.options.Verify {
		return
	}
	if err := t.Verify(); err != nil {
		panic(err)
	}
}
