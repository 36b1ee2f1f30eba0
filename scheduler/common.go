package scheduler

import (
	"time"
)

const (
	EventChannelLength uint16 = 1024

	// weight of a nice 0 entity, vruntime advances at wall rate for this weight
	NiceZeroWeight uint64 = 1024

	MinNice int = -20
	MaxNice int = 19

	TargetLatency  time.Duration = time.Millisecond * 6
	MinGranularity time.Duration = time.Microsecond * 750
)

// nice -20 .. 19, each step is roughly a 1.25x change in share
var niceToWeight = [40]uint64{
	/* -20 */ 88761, 71755, 56483, 46273, 36291,
	/* -15 */ 29154, 23254, 18705, 14949, 11916,
	/* -10 */ 9548, 7620, 6100, 4904, 3906,
	/*  -5 */ 3121, 2501, 1991, 1586, 1277,
	/*   0 */ 1024, 820, 655, 526, 423,
	/*   5 */ 335, 272, 215, 172, 137,
	/*  10 */ 110, 87, 70, 56, 45,
	/*  15 */ 36, 29, 23, 18, 15,
}

func NiceToWeight(nice int) (uint64, error) {
	if nice < MinNice || nice > MaxNice {
		return 0, ErrInvalidNice
	}
	return niceToWeight[nice-MinNice], nil
}

type EntityState uint8

const (
	EntityStateRunnable EntityState = 0
	EntityStateRunning  EntityState = 1
	EntityStateSleeping EntityState = 2
	EntityStateExited   EntityState = 3
)

func (s EntityState) String() string {
	switch s {
	case EntityStateRunnable:
		return "runnable"
	case EntityStateRunning:
		return "running"
	case EntityStateSleeping:
		return "sleeping"
	case EntityStateExited:
		return "exited"
	default:
		return "unknown"
	}
}

type StepType uint8

const (
	StepTypeEvent StepType = 0
	StepTypeDelay StepType = 1
)

func (t StepType) String() string {
	switch t {
	case StepTypeEvent:
		return "event"
	case StepTypeDelay:
		return "delay"
	default:
		return "unknown"
	}
}

type LogProgressMode uint8

const (
	LogProgressModeNone LogProgressMode = 0
	LogProgressModeStep LogProgressMode = 1
)
