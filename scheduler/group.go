package scheduler

import (
	rbt "github.com/emirpasic/gods/v2/trees/redblacktree"
)

type GroupContext[G comparable] struct {
	group G

	// entity id -> entity, for live entities that belong to this group
	entityTree *rbt.Tree[string, *Entity[G]]

	// handle tree of outstanding async variants that belong to this group
	asyncHandleTree *rbt.Tree[uint16, *AsyncVariant[G]]
}

func newGroupContext[G comparable](group G) *GroupContext[G] {
	return &GroupContext[G]{
		group:           group,
		entityTree:      rbt.New[string, *Entity[G]](),
		asyncHandleTree: rbt.New[uint16, *AsyncVariant[G]](),
	}
}

func (c *GroupContext[G]) empty() bool {
	return c.entityTree.Empty() && c.asyncHandleTree.Empty()
}

func (s *Scheduler[G]) groupContext(group G) *GroupContext[G] {
	context, found := s.groupContextMap[group]
	if !found {
		context = newGroupContext(group)
		s.groupContextMap[group] = context
	}
	return context
}

// pruneGroupContext drops the context of group once nothing refers to it.
func (s *Scheduler[G]) pruneGroupContext(group G) {
	context, found := s.groupContextMap[group]
	if !found {
		return
	}
	if context.empty() {
		delete(s.groupContextMap, group)
	}
}
