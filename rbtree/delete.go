package rbtree

// remove unlinks z from the tree. A node with two children is replaced by
// its in-order successor, which is relinked into z's position rather than
// having its entry copied, so handles to the successor stay valid.
func (t *Tree[K, I, P]) remove(z uint32) {
	var x uint32

	y := z
	removedColor := t.nodes[y].color

	switch {
	case t.nodes[z].left == sentinel:
		x = t.nodes[z].right
		t.replaceChild(z, x)
	case t.nodes[z].right == sentinel:
		x = t.nodes[z].left
		t.replaceChild(z, x)
	default:
		y = t.minimum(t.nodes[z].right)
		removedColor = t.nodes[y].color
		x = t.nodes[y].right

		if t.nodes[y].parent == z {
			// x may be the sentinel, fixup still needs to find its parent
			t.nodes[x].parent = y
		} else {
			t.replaceChild(y, x)
			t.nodes[y].right = t.nodes[z].right
			t.nodes[t.nodes[y].right].parent = y
		}

		t.replaceChild(z, y)
		t.nodes[y].left = t.nodes[z].left
		t.nodes[t.nodes[y].left].parent = y
		t.nodes[y].color = t.nodes[z].color
	}

	if removedColor == Black {
		t.deleteFixup(x)
	}

	// the sentinel may have been given a parent above
	t.nodes[sentinel].parent = sentinel
}

// deleteFixup runs when a black node was removed from above x, leaving the
// paths through x one black short. x carries the extra black upward until it
// can be absorbed by a red node or resolved by rotation.
func (t *Tree[K, I, P]) deleteFixup(x uint32) {
	for x != t.root && t.color(x) == Black {
		p := t.nodes[x].parent

		if x == t.nodes[p].left {
			w := t.nodes[p].right

			if t.color(w) == Red {
				// red sibling, rotate so that the sibling is black
				t.nodes[w].color = Black
				t.nodes[p].color = Red
				t.rotateLeft(p)
				w = t.nodes[p].right
			}

			if t.color(t.nodes[w].left) == Black && t.color(t.nodes[w].right) == Black {
				t.nodes[w].color = Red
				x = p
				continue
			}

			if t.color(t.nodes[w].right) == Black {
				// near nephew red, far nephew black
				t.nodes[t.nodes[w].left].color = Black
				t.nodes[w].color = Red
				t.rotateRight(w)
				w = t.nodes[p].right
			}

			t.nodes[w].color = t.nodes[p].color
			t.nodes[p].color = Black
			t.nodes[t.nodes[w].right].color = Black
			t.rotateLeft(p)
			x = t.root
		} else {
			w := t.nodes[p].left

			if t.color(w) == Red {
				t.nodes[w].color = Black
				t.nodes[p].color = Red
				t.rotateRight(p)
				w = t.nodes[p].left
			}

			if t.color(t.nodes[w].right) == Black && t.color(t.nodes[w].left) == Black {
				t.nodes[w].color = Red
				x = p
				continue
			}

			if t.color(t.nodes[w].left) == Black {
				t.nodes[t.nodes[w].right].color = Black
				t.nodes[w].color = Red
				t.rotateLeft(w)
				w = t.nodes[p].left
			}

			t.nodes[w].color = t.nodes[p].color
			t.nodes[p].color = Black
			t.nodes[t.nodes[w].left].color = Black
			t.rotateRight(p)
			x = t.root
		}
	}

	t.nodes[x].color = Black
}
