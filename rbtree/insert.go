package rbtree

// insertFixup restores "no red node has a red child" after z was attached
// as a red leaf, climbing while z's parent is red. A red parent is never the
// root, so the grandparent always exists.
func (t *Tree[K, I, P]) insertFixup(z uint32) {
	for t.color(t.nodes[z].parent) == Red {
		p := t.nodes[z].parent
		g := t.nodes[p].parent

		if p == t.nodes[g].left {
			u := t.nodes[g].right

			if t.color(u) == Red {
				// red uncle, push blackness down from the grandparent
				t.nodes[p].color = Black
				t.nodes[u].color = Black
				t.nodes[g].color = Red
				z = g
				continue
			}

			if z == t.nodes[p].right {
				// inner child, turn into the outer case
				z = p
				t.rotateLeft(z)
				p = t.nodes[z].parent
			}

			t.nodes[p].color = Black
			t.nodes[g].color = Red
			t.rotateRight(g)
		} else {
			u := t.nodes[g].left

			if t.color(u) == Red {
				t.nodes[p].color = Black
				t.nodes[u].color = Black
				t.nodes[g].color = Red
				z = g
				continue
			}

			if z == t.nodes[p].left {
				z = p
				t.rotateRight(z)
				p = t.nodes[z].parent
			}

			t.nodes[p].color = Black
			t.nodes[g].color = Red
			t.rotateLeft(g)
		}
	}

	t.nodes[t.root].color = Black
}
