package scheduler

import (
	"time"

	"github.com/Meander-Cloud/go-fairsched/rbtree"
)

type Entity[G comparable] struct {
	ID   string
	Name string

	// groups to which this entity belongs
	GroupSlice []G

	Nice   int
	Weight uint64

	// weighted runtime in nanoseconds, the fairness index key
	VRuntime uint64

	// total simulated runtime charged
	SumExecRuntime time.Duration

	// runtime charged since last picked
	SliceRuntime time.Duration

	// number of times picked after another entity ran
	SwitchCount uint32

	State EntityState

	// position in the fairness index, valid only while runnable
	handle rbtree.Handle
}

// calcDelta converts runtime into vruntime for the given weight.
func calcDelta(d time.Duration, weight uint64) uint64 {
	if d <= 0 {
		return 0
	}
	if weight == NiceZeroWeight {
		return uint64(d)
	}
	return uint64(d) * NiceZeroWeight / weight
}
