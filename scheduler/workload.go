package scheduler

import (
	"log"
	"time"
)

type Step[G comparable] struct {
	// type of step
	stepType StepType

	// event to dispatch, for StepTypeEvent
	event Event

	// time to wait, for StepTypeDelay
	delay time.Duration
}

// Workload is a scripted series of scheduler events separated by delays,
// e.g. spawn a few entities, wait, put one to sleep, wait, wake it.
type Workload[G comparable] struct {
	// associated scheduler processing this workload, set on enter
	s *Scheduler[G]

	// whether to release groups first when entering this workload
	releaseGroup bool

	// groups to which this workload's pending delays belong, releasing any of them interrupts the workload
	GroupSlice []G

	// steps of which this workload is consisted
	stepSlice []*Step[G]

	// current step
	StepIndex uint16

	// functor to invoke after each step to convey step result and workload result
	resultFunctor func(*Workload[G], bool, bool)

	// progress logging mode
	logProgressMode LogProgressMode
}

func EventStep[G comparable](event Event) *Step[G] {
	return &Step[G]{
		stepType: StepTypeEvent,
		event:    event,
	}
}

func DelayStep[G comparable](d time.Duration) *Step[G] {
	return &Step[G]{
		stepType: StepTypeDelay,
		delay:    d,
	}
}

func NewWorkload[G comparable](
	releaseGroup bool,
	groupSlice []G,
	stepSlice []*Step[G],
	resultFunctor func(*Workload[G], bool, bool),
	logProgressMode LogProgressMode,
) *Workload[G] {
	return &Workload[G]{
		s:               nil,
		releaseGroup:    releaseGroup,
		GroupSlice:      groupSlice,
		stepSlice:       stepSlice,
		StepIndex:       0,
		resultFunctor:   resultFunctor,
		logProgressMode: logProgressMode,
	}
}

func (w *Workload[G]) enter(s *Scheduler[G]) {
	w.s = s
	w.StepIndex = 0

	if w.releaseGroup {
		s.releaseGroupSlice(w.GroupSlice)
	}

	if len(w.stepSlice) == 0 {
		w.result(true)
		return
	}

	w.step()
}

// step runs event steps synchronously until the workload ends or a delay
// step hands control back to the loop
func (w *Workload[G]) step() {
	stepLen := uint16(len(w.stepSlice))

	for w.StepIndex < stepLen {
		p := w.stepSlice[w.StepIndex]

		if w.logProgressMode == LogProgressModeStep {
			log.Printf(
				"%s: group=%+v, step<%d/%d>, type=%s",
				w.s.options.LogPrefix,
				w.GroupSlice,
				w.StepIndex+1,
				stepLen,
				p.stepType,
			)
		}

		switch p.stepType {
		case StepTypeEvent:
			if _, err := w.s.dispatch(p.event); err != nil {
				log.Printf(
					"%s: group=%+v, step<%d/%d>, %T failed: %s",
					w.s.options.LogPrefix,
					w.GroupSlice,
					w.StepIndex+1,
					stepLen,
					p.event,
					err.Error(),
				)
				w.result(false)
				return
			}

			w.result(true)
			w.StepIndex += 1
		case StepTypeDelay:
			w.wait(p.delay)
			return
		default:
			log.Printf("%s: unrecognized stepType=%d", w.s.options.LogPrefix, p.stepType)
			w.result(false)
			return
		}
	}
}

func (w *Workload[G]) wait(d time.Duration) {
	w.s.addAsyncVariant(
		TimerAsync(
			w.GroupSlice,
			d,
			func() {
				w.result(true)
				w.StepIndex += 1
				w.step()
			},
			func(selectCount uint32) {
				if selectCount > 0 {
					// timer fired and the workload moved on
					return
				}

				// released before firing, workload interrupted
				w.result(false)
			},
		),
	)
}

func (w *Workload[G]) result(stepResult bool) {
	if w.resultFunctor == nil {
		return
	}

	workloadResult := false
	if stepResult && int(w.StepIndex)+1 >= len(w.stepSlice) {
		workloadResult = true
	}

	if w.s.options.LogDebug {
		log.Printf(
			"%s: invoking result group=%+v, stepIndex=%d, stepResult=%t, workloadResult=%t",
			w.s.options.LogPrefix,
			w.GroupSlice,
			w.StepIndex,
			stepResult,
			workloadResult,
		)
	}

	w.s.guard(nil, "workload result functor", func() { w.resultFunctor(w, stepResult, workloadResult) })
}
