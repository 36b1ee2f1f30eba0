package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stepOutcome struct {
	stepIndex      uint16
	stepResult     bool
	workloadResult bool
}

func recordOutcome(outcomeSlice *[]stepOutcome) func(*Workload[string], bool, bool) {
	return func(w *Workload[string], stepResult bool, workloadResult bool) {
		*outcomeSlice = append(*outcomeSlice, stepOutcome{w.StepIndex, stepResult, workloadResult})
	}
}

func TestWorkloadEventSteps(t *testing.T) {
	s := newTestScheduler()

	var outcomeSlice []stepOutcome
	s.ProcessSync(
		&ScheduleWorkloadEvent[string]{
			Workload: NewWorkload(
				false,
				[]string{"w"},
				[]*Step[string]{
					EventStep[string](&SpawnEvent[string]{ID: "a"}),
					EventStep[string](&SpawnEvent[string]{ID: "b", Nice: 2}),
					EventStep[string](&TickEvent{Delta: time.Millisecond}),
					EventStep[string](&SleepEvent{ID: "a"}),
				},
				recordOutcome(&outcomeSlice),
				LogProgressModeStep,
			),
		},
	)

	require.Equal(
		t,
		[]stepOutcome{
			{0, true, false},
			{1, true, false},
			{2, true, false},
			{3, true, true},
		},
		outcomeSlice,
	)

	a, found := s.LookupEntity("a")
	require.True(t, found)
	require.Equal(t, EntityStateSleeping, a.State)
	require.Equal(t, time.Millisecond, a.SumExecRuntime)
}

func TestWorkloadFailingStepInterrupts(t *testing.T) {
	s := newTestScheduler()

	var outcomeSlice []stepOutcome
	s.ProcessSync(
		&ScheduleWorkloadEvent[string]{
			Workload: NewWorkload(
				false,
				nil,
				[]*Step[string]{
					EventStep[string](&SpawnEvent[string]{ID: "a"}),
					EventStep[string](&KillEvent{ID: "missing"}),
					EventStep[string](&SpawnEvent[string]{ID: "b"}),
				},
				recordOutcome(&outcomeSlice),
				LogProgressModeNone,
			),
		},
	)

	require.Equal(t, []stepOutcome{{0, true, false}, {1, false, false}}, outcomeSlice)
	_, found := s.LookupEntity("b")
	require.False(t, found)
}

func TestWorkloadEmpty(t *testing.T) {
	s := newTestScheduler()

	var outcomeSlice []stepOutcome
	s.ProcessSync(
		&ScheduleWorkloadEvent[string]{
			Workload: NewWorkload[string](false, nil, nil, recordOutcome(&outcomeSlice), LogProgressModeNone),
		},
	)
	require.Equal(t, []stepOutcome{{0, true, true}}, outcomeSlice)
}

func TestWorkloadDelay(t *testing.T) {
	s := newTestScheduler()
	s.RunAsync()
	defer s.Shutdown()

	done := make(chan bool, 1)
	started := time.Now()
	s.ProcessAsync(
		&ScheduleWorkloadEvent[string]{
			Workload: NewWorkload(
				false,
				[]string{"w"},
				[]*Step[string]{
					EventStep[string](&SpawnEvent[string]{ID: "a"}),
					DelayStep[string](time.Millisecond * 20),
					EventStep[string](&SpawnEvent[string]{ID: "b"}),
				},
				func(_ *Workload[string], stepResult bool, workloadResult bool) {
					if !stepResult || workloadResult {
						done <- workloadResult
					}
				},
				LogProgressModeNone,
			),
		},
	)

	select {
	case result := <-done:
		require.True(t, result)
	case <-time.After(time.Second * 5):
		t.Fatal("workload did not complete")
	}
	require.GreaterOrEqual(t, time.Since(started), time.Millisecond*20)

	ch := make(chan int, 1)
	s.ProcessAsync(
		&SnapshotEvent{
			Functor: func(sn *Snapshot) {
				ch <- sn.EntityCount
			},
		},
	)
	require.Equal(t, 2, <-ch)
}

func TestWorkloadInterruptedByGroupRelease(t *testing.T) {
	s := newTestScheduler()
	s.RunAsync()
	defer s.Shutdown()

	done := make(chan stepOutcome, 1)
	s.ProcessAsync(
		&ScheduleWorkloadEvent[string]{
			Workload: NewWorkload(
				false,
				[]string{"w"},
				[]*Step[string]{
					EventStep[string](&SpawnEvent[string]{ID: "a", GroupSlice: []string{"w"}}),
					DelayStep[string](time.Hour),
					EventStep[string](&SpawnEvent[string]{ID: "b"}),
				},
				func(w *Workload[string], stepResult bool, workloadResult bool) {
					if !stepResult {
						done <- stepOutcome{w.StepIndex, stepResult, workloadResult}
					}
				},
				LogProgressModeNone,
			),
		},
	)
	s.ProcessAsync(&ReleaseGroupEvent[string]{Group: "w"})

	select {
	case outcome := <-done:
		require.Equal(t, stepOutcome{1, false, false}, outcome)
	case <-time.After(time.Second * 5):
		t.Fatal("workload was not interrupted")
	}

	ch := make(chan int, 1)
	s.ProcessAsync(
		&SnapshotEvent{
			Functor: func(sn *Snapshot) {
				ch <- sn.EntityCount
			},
		},
	)
	require.Equal(t, 0, <-ch)
}
