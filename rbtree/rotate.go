package rbtree

// rotateLeft lifts x's right child y into x's place; x becomes y's left child
// and y's former left subtree becomes x's right subtree.
func (t *Tree[K, I, P]) rotateLeft(x uint32) {
	y := t.nodes[x].right

	t.nodes[x].right = t.nodes[y].left
	if t.nodes[y].left != sentinel {
		t.nodes[t.nodes[y].left].parent = x
	}

	t.replaceChild(x, y)

	t.nodes[y].left = x
	t.nodes[x].parent = y
}

// rotateRight mirrors rotateLeft.
func (t *Tree[K, I, P]) rotateRight(x uint32) {
	y := t.nodes[x].left

	t.nodes[x].left = t.nodes[y].right
	if t.nodes[y].right != sentinel {
		t.nodes[t.nodes[y].right].parent = x
	}

	t.replaceChild(x, y)

	t.nodes[y].right = x
	t.nodes[x].parent = y
}

// replaceChild hangs v where u was under u's parent, updating the root if u
// was the root. v may be the sentinel, in which case the sentinel's parent
// is set temporarily for delete fixup.
func (t *Tree[K, I, P]) replaceChild(u, v uint32) {
	p := t.nodes[u].parent
	switch {
	case p == sentinel:
		t.root = v
	case u == t.nodes[p].left:
		t.nodes[p].left = v
	default:
		t.nodes[p].right = v
	}
	t.nodes[v].parent = p
}
