package rbtree

import (
	"cmp"
	"math"
	"math/rand"
	"testing"

	rbt "github.com/emirpasic/gods/v2/trees/redblacktree"
	"github.com/stretchr/testify/require"
)

// oracleKey mirrors the tree's ordering: key first, then insertion sequence.
type oracleKey struct {
	key int
	seq uint64
}

func compareOracleKey(a, b oracleKey) int {
	if c := cmp.Compare(a.key, b.key); c != 0 {
		return c
	}
	return cmp.Compare(a.seq, b.seq)
}

type harness struct {
	t      *testing.T
	tr     *Tree[int, int, int]
	oracle *rbt.Tree[oracleKey, int]
	seq    uint64

	// id -> handle and oracle key, for live entries only
	handleMap map[int]Handle
	keyMap    map[int]oracleKey
	nextID    int
}

func newHarness(t *testing.T) *harness {
	return &harness{
		t:         t,
		tr:        New[int, int, int](&Options{Verify: true}),
		oracle:    rbt.NewWith[oracleKey, int](compareOracleKey),
		handleMap: make(map[int]Handle),
		keyMap:    make(map[int]oracleKey),
	}
}

func (h *harness) insert(key int) {
	h.seq += 1
	id := h.nextID
	h.nextID += 1

	k := oracleKey{key: key, seq: h.seq}
	h.handleMap[id] = h.tr.Insert(key, id, -id)
	h.keyMap[id] = k
	h.oracle.Put(k, id)
}

func (h *harness) forget(id int) {
	h.oracle.Remove(h.keyMap[id])
	delete(h.handleMap, id)
	delete(h.keyMap, id)
}

func (h *harness) delete(id int) {
	handle, found := h.handleMap[id]
	require.True(h.t, found)

	entry, ok := h.tr.Get(handle)
	require.True(h.t, ok)
	require.Equal(h.t, id, entry.ID)
	require.Equal(h.t, -id, entry.Payload)

	require.NoError(h.t, h.tr.Delete(handle))
	require.ErrorIs(h.t, h.tr.Delete(handle), ErrNotFound)

	h.forget(id)
}

func (h *harness) extractMin() {
	left := h.oracle.Left()
	entry, ok := h.tr.ExtractMin()
	if left == nil {
		require.False(h.t, ok)
		return
	}

	require.True(h.t, ok)
	require.Equal(h.t, left.Value, entry.ID)
	require.Equal(h.t, left.Key.key, entry.Key)

	_, stillLive := h.tr.Get(h.handleMap[entry.ID])
	require.False(h.t, stillLive)

	h.forget(entry.ID)
}

func (h *harness) updateKey(id int, key int) {
	next, err := h.tr.UpdateKey(h.handleMap[id], key)
	require.NoError(h.t, err)

	entry, ok := h.tr.Get(next)
	require.True(h.t, ok)
	require.Equal(h.t, id, entry.ID)
	require.Equal(h.t, -id, entry.Payload)
	require.Equal(h.t, key, entry.Key)

	h.oracle.Remove(h.keyMap[id])
	h.seq += 1
	k := oracleKey{key: key, seq: h.seq}
	h.oracle.Put(k, id)
	h.keyMap[id] = k
	h.handleMap[id] = next
}

func (h *harness) check() {
	require.NoError(h.t, h.tr.Verify())
	require.Equal(h.t, h.oracle.Size(), h.tr.Size())
	require.Equal(h.t, h.oracle.Empty(), h.tr.IsEmpty())
	require.Equal(h.t, len(h.handleMap), h.tr.Size())

	bound := 2 * math.Log2(float64(h.tr.Size()+1))
	require.LessOrEqual(h.t, float64(h.tr.Height()), bound)
}

func (h *harness) checkOrder() {
	idSlice := make([]int, 0, h.tr.Size())
	prev := math.MinInt
	for entry := range h.tr.Iterate() {
		require.GreaterOrEqual(h.t, entry.Key, prev)
		prev = entry.Key
		idSlice = append(idSlice, entry.ID)
	}
	require.Equal(h.t, h.oracle.Values(), idSlice)
}

func (h *harness) liveIDs() []int {
	idSlice := make([]int, 0, len(h.handleMap))
	for _, id := range h.oracle.Values() {
		idSlice = append(idSlice, id)
	}
	return idSlice
}

func TestTreeRandomInsertThenDelete(t *testing.T) {
	r := rand.New(rand.NewSource(20240611))
	h := newHarness(t)

	for i := 0; i < 1000; i++ {
		h.insert(r.Intn(1 << 20))
		h.check()
	}
	h.checkOrder()

	idSlice := h.liveIDs()
	r.Shuffle(len(idSlice), func(i, j int) {
		idSlice[i], idSlice[j] = idSlice[j], idSlice[i]
	})
	for _, id := range idSlice[:500] {
		h.delete(id)
		h.check()
	}
	require.Equal(t, 500, h.tr.Size())
	h.checkOrder()
}

func TestTreeRandomMixedOperations(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	h := newHarness(t)

	for i := 0; i < 5000; i++ {
		switch op := r.Intn(10); {
		case op < 5 || h.tr.IsEmpty():
			// narrow key range to force many duplicates
			h.insert(r.Intn(64))
		case op < 7:
			idSlice := h.liveIDs()
			h.delete(idSlice[r.Intn(len(idSlice))])
		case op < 9:
			h.extractMin()
		default:
			idSlice := h.liveIDs()
			h.updateKey(idSlice[r.Intn(len(idSlice))], r.Intn(64))
		}
		h.check()

		if i%250 == 0 {
			h.checkOrder()
		}
	}
	h.checkOrder()

	for !h.tr.IsEmpty() {
		h.extractMin()
		h.check()
	}
	h.extractMin()
}

func TestTreeAscendingAndDescendingRuns(t *testing.T) {
	for _, step := range []int{1, -1} {
		h := newHarness(t)
		for i := 0; i < 512; i++ {
			h.insert(i * step)
			h.check()
		}
		h.checkOrder()

		for !h.tr.IsEmpty() {
			h.extractMin()
			h.check()
		}
	}
}

func TestTreeInsertDeleteRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(99))
	tr := New[int, int, int](&Options{Verify: true})
	for i := 0; i < 200; i++ {
		tr.Insert(r.Intn(100), i, i)
	}

	for i := 0; i < 100; i++ {
		before := tr.Entries()

		h := tr.Insert(r.Intn(120)-10, 1000+i, 0)
		require.Equal(t, len(before)+1, tr.Size())
		require.NoError(t, tr.Delete(h))

		require.Equal(t, before, tr.Entries())
	}
}
