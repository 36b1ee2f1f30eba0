package scheduler

import (
	"time"

	"github.com/Meander-Cloud/go-fairsched/rbtree"
)

// Snapshot is a point in time copy of scheduler state for display.
type Snapshot struct {
	Clock       time.Duration
	MinVRuntime uint64
	TotalWeight uint64
	EntityCount int

	// id of the running entity, empty when idle
	Current string

	// runnable entities in vruntime order, excludes Current
	RunnableSlice []rbtree.NodeView[uint64, string]
}

func (s *Scheduler[G]) snapshot() *Snapshot {
	snapshot := &Snapshot{
		Clock:         s.clock,
		MinVRuntime:   s.minVRuntime,
		TotalWeight:   s.totalWeight,
		EntityCount:   s.entityTree.Size(),
		Current:       "",
		RunnableSlice: s.index.Snapshot(),
	}
	if s.current != nil {
		snapshot.Current = s.current.ID
	}
	return snapshot
}
