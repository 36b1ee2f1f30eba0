package rbtree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func buildUnchecked(keySlice ...int) (*Tree[int, string, int], []Handle) {
	tr := New[int, string, int](nil)
	handleSlice := make([]Handle, 0, len(keySlice))
	for i, key := range keySlice {
		handleSlice = append(handleSlice, tr.Insert(key, "", i))
	}
	return tr, handleSlice
}

func requireViolation(t *testing.T, tr *Tree[int, string, int], reason string) {
	err := tr.Verify()
	require.Error(t, err)

	var v *InvariantViolation
	require.ErrorAs(t, err, &v)
	require.Contains(t, v.Reason, reason)
}

func TestVerifyDetectsRedRoot(t *testing.T) {
	tr, _ := buildUnchecked(2, 1, 3)
	tr.nodes[tr.root].color = Red
	requireViolation(t, tr, "root is red")
}

func TestVerifyDetectsRedSentinel(t *testing.T) {
	tr, _ := buildUnchecked(2, 1, 3)
	tr.nodes[sentinel].color = Red
	requireViolation(t, tr, "sentinel is red")
}

func TestVerifyDetectsRedRed(t *testing.T) {
	// 5B(3B(1R,4R), 8B(7R,9R))
	tr, handleSlice := buildUnchecked(5, 3, 8, 1, 4, 7, 9)
	tr.nodes[handleSlice[1].index].color = Red
	requireViolation(t, tr, "red child of red parent")
}

func TestVerifyDetectsBlackHeight(t *testing.T) {
	tr, handleSlice := buildUnchecked(5, 3, 8, 1, 4, 7, 9)
	tr.nodes[handleSlice[3].index].color = Black
	requireViolation(t, tr, "black height")
}

func TestVerifyDetectsOrder(t *testing.T) {
	tr, _ := buildUnchecked(5, 3, 8, 1, 4, 7, 9)
	tr.nodes[tr.root].entry.Key = 100
	requireViolation(t, tr, "orders")
}

func TestVerifyDetectsSize(t *testing.T) {
	tr, _ := buildUnchecked(5, 3, 8)
	tr.size = 4
	requireViolation(t, tr, "size=4")
}

func TestVerifyOptionPanics(t *testing.T) {
	tr := New[int, string, int](&Options{Verify: true})
	handleSlice := make([]Handle, 0, 7)
	for i, key := range []int{5, 3, 8, 1, 4, 7, 9} {
		handleSlice = append(handleSlice, tr.Insert(key, "", i))
	}
	require.NoError(t, tr.Verify())

	tr.nodes[tr.root].entry.Key = 100
	require.Panics(t, func() {
		_ = tr.Delete(handleSlice[6])
	})
}
