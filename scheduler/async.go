package scheduler

import (
	"log"
	"time"
)

type AsyncVariant[G comparable] struct {
	// handle to which this async variant is referred, generated via asyncHandleTree
	asyncHandle uint16

	// index linking to selectIndexTree, note this may change during runtime
	selectIndex uint16

	// groups to which this async variant belongs
	GroupSlice []G

	// channel to register for dynamic select
	ch interface{}

	// number of times this async variant had been selected
	SelectCount uint32

	// functor to invoke upon select
	selectFunctor func(*Scheduler[G], *AsyncVariant[G], interface{})

	// functor to invoke to release associated resources
	releaseFunctor func(*Scheduler[G], *AsyncVariant[G])

	// whether this async variant is being removed
	inRemove bool
}

func NewAsyncVariant[G comparable](
	groupSlice []G,
	ch interface{},
	selectFunctor func(*Scheduler[G], *AsyncVariant[G], interface{}),
	releaseFunctor func(*Scheduler[G], *AsyncVariant[G]),
) *AsyncVariant[G] {
	return &AsyncVariant[G]{
		// populated in addAsyncVariant
		asyncHandle: 0,
		selectIndex: 0,

		GroupSlice:     groupSlice,
		ch:             ch,
		SelectCount:    0,
		selectFunctor:  selectFunctor,
		releaseFunctor: releaseFunctor,
		inRemove:       false,
	}
}

// guard runs f on the loop goroutine, a panic in f is logged instead of
// tearing down the loop
func (s *Scheduler[G]) guard(v *AsyncVariant[G], what string, f func()) {
	defer func() {
		rec := recover()
		if rec != nil {
			if v == nil {
				log.Printf("%s: %s recovered from panic: %+v", s.options.LogPrefix, what, rec)
				return
			}
			log.Printf(
				"%s: handle=%d, index=%d, count=%d, group=%+v, %s recovered from panic: %+v",
				s.options.LogPrefix,
				v.asyncHandle,
				v.selectIndex,
				v.SelectCount,
				v.GroupSlice,
				what,
				rec,
			)
		}
	}()
	f()
}

// TimerAsync fires selectFunctor once after d, then releases itself.
func TimerAsync[G comparable](
	groupSlice []G,
	d time.Duration,
	selectFunctor func(),
	releaseFunctor func(uint32),
) *AsyncVariant[G] {
	timer := time.NewTimer(d)
	return NewAsyncVariant[G](
		groupSlice,
		timer.C,
		func(s *Scheduler[G], v *AsyncVariant[G], _ interface{}) {
			// first remove triggered timer
			release := s.removeAsyncVariant(v)

			if selectFunctor != nil {
				s.guard(v, "user select functor", selectFunctor)
			}

			release()
		},
		func(s *Scheduler[G], v *AsyncVariant[G]) {
			if v.SelectCount == 0 {
				timer.Stop()
				select {
				case <-timer.C:
				default:
				}
			}

			if releaseFunctor != nil {
				s.guard(v, "user release functor", func() { releaseFunctor(v.SelectCount) })
			}
		},
	)
}

// TickerAsync fires selectFunctor every d until released.
func TickerAsync[G comparable](
	groupSlice []G,
	d time.Duration,
	selectFunctor func(),
	releaseFunctor func(uint32),
) *AsyncVariant[G] {
	ticker := time.NewTicker(d)
	return NewAsyncVariant[G](
		groupSlice,
		ticker.C,
		func(s *Scheduler[G], v *AsyncVariant[G], _ interface{}) {
			if selectFunctor != nil {
				s.guard(v, "user select functor", selectFunctor)
			}
		},
		func(s *Scheduler[G], v *AsyncVariant[G]) {
			ticker.Stop()
			select {
			case <-ticker.C:
			default:
			}

			if releaseFunctor != nil {
				s.guard(v, "user release functor", func() { releaseFunctor(v.SelectCount) })
			}
		},
	)
}
