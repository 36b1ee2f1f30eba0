package rbtree

import (
	"fmt"
	"math"
)

// InvariantViolation reports a structural defect found by Verify.
type InvariantViolation struct {
	Index  uint32
	Reason string
}

func (v *InvariantViolation) Error() string {
	return fmt.Sprintf("rbtree: invariant violation at node %d: %s", v.Index, v.Reason)
}

func violation(index uint32, format string, args ...interface{}) *InvariantViolation {
	return &InvariantViolation{
		Index:  index,
		Reason: fmt.Sprintf(format, args...),
	}
}

// Verify walks the whole tree and checks the red-black invariants, parent
// links, ordering, the live count and the height bound. It runs in O(n)
// without recursion.
func (t *Tree[K, I, P]) Verify() error {
	s := &t.nodes[sentinel]
	if s.color != Black {
		return violation(sentinel, "sentinel is %s", s.color)
	}
	if s.left != sentinel || s.right != sentinel || s.parent != sentinel {
		return violation(sentinel, "sentinel has links left=%d right=%d parent=%d", s.left, s.right, s.parent)
	}

	if t.root == sentinel {
		if t.size != 0 {
			return violation(sentinel, "empty tree with size=%d", t.size)
		}
		return nil
	}

	if t.nodes[t.root].color != Black {
		return violation(t.root, "root is %s", t.nodes[t.root].color)
	}
	if t.nodes[t.root].parent != sentinel {
		return violation(t.root, "root has parent=%d", t.nodes[t.root].parent)
	}

	// preorder; reversed it visits children before their parent
	order := make([]uint32, 0, t.size)
	depth := make(map[uint32]int, t.size)
	stack := []uint32{t.root}
	depth[t.root] = 1
	height := 0

	for len(stack) > 0 {
		x := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		order = append(order, x)

		if len(order) > t.size {
			return violation(x, "more reachable nodes than size=%d", t.size)
		}

		n := &t.nodes[x]
		if !n.live {
			return violation(x, "reachable node is not live")
		}
		if n.color != Red && n.color != Black {
			return violation(x, "invalid color %s", n.color)
		}
		if depth[x] > height {
			height = depth[x]
		}

		for _, c := range [2]uint32{n.left, n.right} {
			if c == sentinel {
				continue
			}
			if t.nodes[c].parent != x {
				return violation(c, "parent=%d, expected %d", t.nodes[c].parent, x)
			}
			if n.color == Red && t.nodes[c].color == Red {
				return violation(c, "red child of red parent %d", x)
			}
			depth[c] = depth[x] + 1
			stack = append(stack, c)
		}

		if n.left != sentinel && t.less(x, n.left) {
			return violation(n.left, "left child orders after parent %d", x)
		}
		if n.right != sentinel && t.less(n.right, x) {
			return violation(n.right, "right child orders before parent %d", x)
		}
	}

	if len(order) != t.size {
		return violation(t.root, "reachable nodes=%d, size=%d", len(order), t.size)
	}

	blackHeight := make(map[uint32]int, t.size)
	contribution := func(c uint32) int {
		if c == sentinel {
			return 0
		}
		if t.nodes[c].color == Black {
			return blackHeight[c] + 1
		}
		return blackHeight[c]
	}
	for i := len(order) - 1; i >= 0; i-- {
		x := order[i]
		l := contribution(t.nodes[x].left)
		r := contribution(t.nodes[x].right)
		if l != r {
			return violation(x, "black height left=%d right=%d", l, r)
		}
		blackHeight[x] = l
	}

	prev := sentinel
	for x := range t.inorder() {
		if prev != sentinel && t.less(x, prev) {
			return violation(x, "in-order sequence decreases after node %d", prev)
		}
		prev = x
	}

	bound := 2 * math.Log2(float64(t.size+1))
	if float64(height) > bound {
		return violation(t.root, "height=%d exceeds bound %.2f for size=%d", height, bound, t.size)
	}

	return nil
}
