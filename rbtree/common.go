package rbtree

import (
	"errors"
	"fmt"
)

type Color uint8

const (
	Red   Color = 0
	Black Color = 1
)

func (c Color) String() string {
	switch c {
	case Red:
		return "red"
	case Black:
		return "black"
	default:
		return fmt.Sprintf("Color(%d)", uint8(c))
	}
}

// index 0 of the arena, shared by every tree operation as "no node"
const sentinel uint32 = 0

// ErrNotFound is returned when a handle no longer refers to a live entry.
var ErrNotFound = errors.New("rbtree: handle not found")

type Options struct {
	// initial arena capacity, if zero the arena grows on demand
	Capacity int

	// verify all invariants after every mutation and panic on violation
	Verify bool
}

// Entry is the unit stored in the tree. Key orders entries, ID and Payload
// are opaque to the tree.
type Entry[K any, I any, P any] struct {
	Key     K
	ID      I
	Payload P
}

// Handle refers to one inserted entry until that entry is deleted.
// The zero Handle never refers to a live entry.
type Handle struct {
	index uint32
	gen   uint32
}

func (h Handle) IsZero() bool {
	return h.index == sentinel
}

func (h Handle) String() string {
	return fmt.Sprintf("%d.%d", h.index, h.gen)
}

// NodeView describes one node's placement for presentation layers.
type NodeView[K any, I any] struct {
	ID    I
	Key   K
	Color Color
	Depth int
}
