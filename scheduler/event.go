package scheduler

import (
	"time"
)

type Event interface {
	isEvent()
}

type exitEvent struct {
}

func (*exitEvent) isEvent() {}

type SpawnEvent[G comparable] struct {
	// generated when empty
	ID         string
	Name       string
	Nice       int
	GroupSlice []G

	// optional, invoked on loop goroutine
	ResultFunctor func(*Entity[G], error)
}

func (*SpawnEvent[G]) isEvent() {}

type KillEvent struct {
	ID string
}

func (*KillEvent) isEvent() {}

type SleepEvent struct {
	ID string
}

func (*SleepEvent) isEvent() {}

type WakeEvent struct {
	ID string
}

func (*WakeEvent) isEvent() {}

type ReniceEvent struct {
	ID   string
	Nice int
}

func (*ReniceEvent) isEvent() {}

type TickEvent struct {
	// simulated runtime to charge, if zero TickInterval or MinGranularity is used
	Delta time.Duration
}

func (*TickEvent) isEvent() {}

type SnapshotEvent struct {
	// invoked on loop goroutine
	Functor func(*Snapshot)
}

func (*SnapshotEvent) isEvent() {}

type ReleaseGroupEvent[G comparable] struct {
	Group G
}

func (*ReleaseGroupEvent[G]) isEvent() {}

type ReleaseGroupSliceEvent[G comparable] struct {
	GroupSlice []G
}

func (*ReleaseGroupSliceEvent[G]) isEvent() {}

type ScheduleAsyncEvent[G comparable] struct {
	// whether to release groups of the async variant first
	ReleaseGroup bool

	AsyncVariant *AsyncVariant[G]
}

func (*ScheduleAsyncEvent[G]) isEvent() {}

type ScheduleWorkloadEvent[G comparable] struct {
	Workload *Workload[G]
}

func (*ScheduleWorkloadEvent[G]) isEvent() {}
