package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Meander-Cloud/go-fairsched/scheduler"
)

func describe(snapshot *scheduler.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(
		&b,
		"clock=%s, minVRuntime=%d, totalWeight=%d, entities=%d, current=%q, runnable=[",
		snapshot.Clock,
		snapshot.MinVRuntime,
		snapshot.TotalWeight,
		snapshot.EntityCount,
		snapshot.Current,
	)
	for i, view := range snapshot.RunnableSlice {
		if i > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "%s:%d/%s/%d", view.ID, view.Key, view.Color, view.Depth)
	}
	b.WriteString("]")
	return b.String()
}

func run(options *scheduler.Options, d time.Duration) {
	if options.TickInterval <= 0 {
		options.TickInterval = time.Millisecond
	}

	s := scheduler.NewScheduler[string](options)
	s.RunAsync()

	s.ProcessAsync(
		&scheduler.ScheduleAsyncEvent[string]{
			ReleaseGroup: false,
			AsyncVariant: scheduler.TickerAsync(
				[]string{"monitor"},
				time.Millisecond*100,
				func() {
					s.ProcessSync(
						&scheduler.SnapshotEvent{
							Functor: func(snapshot *scheduler.Snapshot) {
								log.Printf("snapshot: %s", describe(snapshot))
							},
						},
					)
				},
				func(selectCount uint32) {
					log.Printf("monitor: released, selectCount=%d", selectCount)
				},
			),
		},
	)

	s.ProcessAsync(
		&scheduler.ScheduleWorkloadEvent[string]{
			Workload: scheduler.NewWorkload(
				true,
				[]string{"demo"},
				[]*scheduler.Step[string]{
					scheduler.EventStep[string](&scheduler.SpawnEvent[string]{ID: "editor", Name: "editor", Nice: -5, GroupSlice: []string{"interactive"}}),
					scheduler.EventStep[string](&scheduler.SpawnEvent[string]{ID: "compiler", Name: "compiler", Nice: 0, GroupSlice: []string{"batch"}}),
					scheduler.EventStep[string](&scheduler.SpawnEvent[string]{ID: "backup", Name: "backup", Nice: 10, GroupSlice: []string{"batch"}}),
					scheduler.DelayStep[string](time.Millisecond * 300),
					scheduler.EventStep[string](&scheduler.SleepEvent{ID: "editor"}),
					scheduler.DelayStep[string](time.Millisecond * 300),
					scheduler.EventStep[string](&scheduler.WakeEvent{ID: "editor"}),
					scheduler.EventStep[string](&scheduler.ReniceEvent{ID: "backup", Nice: 0}),
					scheduler.DelayStep[string](time.Millisecond * 300),
					scheduler.EventStep[string](&scheduler.ReleaseGroupEvent[string]{Group: "batch"}),
				},
				func(w *scheduler.Workload[string], stepResult bool, workloadResult bool) {
					if !stepResult {
						log.Printf("group=%+v, workload interrupted at step %d", w.GroupSlice, w.StepIndex)
						return
					}

					if workloadResult {
						log.Printf("group=%+v, workload completed", w.GroupSlice)
						return
					}
				},
				scheduler.LogProgressModeStep,
			),
		},
	)

	<-time.After(d)

	s.Shutdown()
}

func main() {
	configPath := flag.String("config", "", "path to YAML options, defaults are used when empty")
	duration := flag.Duration("duration", time.Second*2, "how long to run the demo")
	flag.Parse()

	// enable microsecond and file line logging
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)

	options := scheduler.DefaultOptions()
	if *configPath != "" {
		var err error
		options, err = scheduler.LoadOptions(*configPath)
		if err != nil {
			log.Fatalf("%+v", err)
		}
	}

	run(options, *duration)
}
