package scheduler

import (
	"log"
	"reflect"
	"slices"
	"sync"
	"time"

	rbt "github.com/emirpasic/gods/v2/trees/redblacktree"
	"github.com/pkg/errors"

	"github.com/Meander-Cloud/go-fairsched/rbtree"
)

type Scheduler[G comparable] struct {
	options *Options

	exitwg  sync.WaitGroup
	eventch chan Event

	// vruntime -> runnable entity, the running entity is not in the index
	index *rbtree.Tree[uint64, string, *Entity[G]]
	// entity id -> entity, for every entity not yet exited
	entityTree *rbt.Tree[string, *Entity[G]]
	// entity currently charged on tick, nil when idle
	current *Entity[G]

	// simulated time
	clock time.Duration
	// monotonic floor for vruntime of spawned and woken entities
	minVRuntime uint64
	// sum of weights of runnable and running entities
	totalWeight uint64

	// group -> context
	groupContextMap map[G]*GroupContext[G]
	// async handle -> async variant
	asyncHandleTree *rbt.Tree[uint16, *AsyncVariant[G]]
	// select index -> async variant
	selectIndexTree *rbt.Tree[uint16, *AsyncVariant[G]]
	// select index -> select case
	selectCaseSlice []reflect.SelectCase
}

func NewScheduler[G comparable](options *Options) *Scheduler[G] {
	if options == nil {
		options = DefaultOptions()
	}

	// fill zero fields without touching caller's copy
	o := *options
	if o.EventChannelLength == 0 {
		o.EventChannelLength = EventChannelLength
	}
	if o.TargetLatency == 0 {
		o.TargetLatency = TargetLatency
	}
	if o.MinGranularity == 0 {
		o.MinGranularity = MinGranularity
	}

	s := &Scheduler[G]{
		options: &o,

		exitwg:  sync.WaitGroup{},
		eventch: make(chan Event, o.EventChannelLength),

		index: rbtree.New[uint64, string, *Entity[G]](
			&rbtree.Options{
				Verify: o.VerifyIndex,
			},
		),
		entityTree:  rbt.New[string, *Entity[G]](),
		current:     nil,
		clock:       0,
		minVRuntime: 0,
		totalWeight: 0,

		groupContextMap: make(map[G]*GroupContext[G]),
		asyncHandleTree: rbt.New[uint16, *AsyncVariant[G]](),
		selectIndexTree: rbt.New[uint16, *AsyncVariant[G]](),
		selectCaseSlice: make([]reflect.SelectCase, 0, 256),
	}

	// zero index must be case eventch, async variants scheduled before the loop starts are placed after it
	s.selectCaseSlice = append(
		s.selectCaseSlice,
		reflect.SelectCase{
			Dir:  reflect.SelectRecv,
			Chan: reflect.ValueOf(s.eventch),
		},
	)

	return s
}

func (s *Scheduler[G]) Shutdown() {
	log.Printf("%s: synchronized shutdown starting", s.options.LogPrefix)

	select {
	case s.eventch <- &exitEvent{}:
	default:
		log.Printf("%s: exit already signaled", s.options.LogPrefix)
	}

	s.exitwg.Wait()
	log.Printf("%s: synchronized shutdown done", s.options.LogPrefix)
}

func (s *Scheduler[G]) Options() *Options {
	return s.options
}

func (s *Scheduler[G]) RunSync() {
	s.exitwg.Add(1)
	defer s.exitwg.Done()

	log.Printf("%s: synchronous process loop starting", s.options.LogPrefix)
	s.processLoop()
	log.Printf("%s: synchronous process loop exiting", s.options.LogPrefix)
}

func (s *Scheduler[G]) RunAsync() {
	s.exitwg.Add(1)

	go func() {
		log.Printf("%s: asynchronous process loop starting", s.options.LogPrefix)

		defer func() {
			log.Printf("%s: asynchronous process loop exiting", s.options.LogPrefix)
			s.exitwg.Done()
		}()

		s.processLoop()
	}()
}

func (s *Scheduler[G]) processLoop() {
	// main event processing loop, will block
	// caller can choose to run synchronously on caller goroutine, or spawn a separate goroutine to run asynchronously

	if s.options.TickInterval > 0 {
		d := s.options.TickInterval
		s.addAsyncVariant(
			TickerAsync[G](
				nil,
				d,
				func() {
					s.tick(d)
				},
				nil,
			),
		)
	}

labelFor:
	for {
		if s.options.LogDebug {
			log.Printf(
				"%s: entityTree<%d>, index<%d>, groupContextMap<%d>, asyncHandleTree<%d>, selectCaseSlice<%d>",
				s.options.LogPrefix,
				s.entityTree.Size(),
				s.index.Size(),
				len(s.groupContextMap),
				s.asyncHandleTree.Size(),
				len(s.selectCaseSlice),
			)
		}

		index, received, ok := reflect.Select(s.selectCaseSlice)

		switch index {
		case 0: // corresponds to eventch
			if !ok {
				log.Printf("%s: eventch closed", s.options.LogPrefix)
				s.releaseAll()
				break labelFor
			}
			if s.handle(received.Interface()) {
				break labelFor
			}
		default:
			v, found := s.selectIndexTree.Get(uint16(index))
			if !found {
				log.Printf("%s: no async variant found for index=%d", s.options.LogPrefix, index)
				continue
			}

			v.SelectCount += 1
			if v.selectFunctor != nil {
				s.guard(v, "select functor", func() { v.selectFunctor(s, v, received.Interface()) })
			}
		}
	}
}

func (s *Scheduler[G]) handle(recv interface{}) bool {
	exit, err := s.dispatch(recv)
	if err != nil {
		log.Printf("%s: %T failed: %s", s.options.LogPrefix, recv, err.Error())
	}
	return exit
}

func (s *Scheduler[G]) dispatch(recv interface{}) (bool, error) {
	switch event := recv.(type) {
	case *exitEvent:
		s.releaseAll()
		return true, nil
	case *SpawnEvent[G]:
		e, err := s.spawn(event)
		if event.ResultFunctor != nil {
			s.guard(nil, "spawn result functor", func() { event.ResultFunctor(e, err) })
		}
		return false, err
	case *KillEvent:
		return false, s.kill(event.ID)
	case *SleepEvent:
		return false, s.sleep(event.ID)
	case *WakeEvent:
		return false, s.wake(event.ID)
	case *ReniceEvent:
		return false, s.renice(event.ID, event.Nice)
	case *TickEvent:
		s.tick(event.Delta)
	case *SnapshotEvent:
		if event.Functor != nil {
			snapshot := s.snapshot()
			s.guard(nil, "snapshot functor", func() { event.Functor(snapshot) })
		}
	case *ReleaseGroupEvent[G]:
		s.releaseGroupSlice([]G{event.Group})
	case *ReleaseGroupSliceEvent[G]:
		s.releaseGroupSlice(event.GroupSlice)
	case *ScheduleAsyncEvent[G]:
		if event.ReleaseGroup {
			s.releaseGroupSlice(event.AsyncVariant.GroupSlice)
		}
		s.addAsyncVariant(event.AsyncVariant)
	case *ScheduleWorkloadEvent[G]:
		event.Workload.enter(s)
	default:
		return false, errors.Errorf("unrecognized recv=%#v", recv)
	}
	return false, nil
}

func (s *Scheduler[G]) addAsyncVariant(v *AsyncVariant[G]) {
	var handle uint16
	rightNode := s.asyncHandleTree.Right()
	if rightNode == nil {
		handle = 1
	} else {
		handle = rightNode.Key + 1
	}

	s.selectCaseSlice = append(
		s.selectCaseSlice,
		reflect.SelectCase{
			Dir:  reflect.SelectRecv,
			Chan: reflect.ValueOf(v.ch),
		},
	)

	v.asyncHandle = handle
	v.selectIndex = uint16(len(s.selectCaseSlice) - 1)

	s.asyncHandleTree.Put(v.asyncHandle, v)
	s.selectIndexTree.Put(v.selectIndex, v)

	for _, group := range v.GroupSlice {
		s.groupContext(group).asyncHandleTree.Put(handle, v)
	}

	if s.options.LogDebug {
		log.Printf(
			"%s: added async variant handle=%d, index=%d, group=%+v",
			s.options.LogPrefix,
			v.asyncHandle,
			v.selectIndex,
			v.GroupSlice,
		)
	}
}

// removeAsyncVariant unregisters v and returns the deferred release, which
// the caller invokes once it is done with v
func (s *Scheduler[G]) removeAsyncVariant(v *AsyncVariant[G]) func() {
	if v.inRemove {
		log.Printf(
			"%s: handle=%d, index=%d, count=%d, group=%+v, already removed",
			s.options.LogPrefix,
			v.asyncHandle,
			v.selectIndex,
			v.SelectCount,
			v.GroupSlice,
		)
		return func() {}
	}
	v.inRemove = true

	release := func() {
		if v.releaseFunctor == nil {
			return
		}
		s.guard(v, "release functor", func() { v.releaseFunctor(s, v) })
	}

	for _, group := range v.GroupSlice {
		context, found := s.groupContextMap[group]
		if !found {
			log.Printf("%s: group=%+v not found in groupContextMap", s.options.LogPrefix, group)
			continue
		}
		context.asyncHandleTree.Remove(v.asyncHandle)
		s.pruneGroupContext(group)
	}

	index := v.selectIndex
	s.selectIndexTree.Remove(index)
	s.asyncHandleTree.Remove(v.asyncHandle)

	last := uint16(len(s.selectCaseSlice) - 1)
	if index < last {
		// move the last case into the freed slot to keep the slice dense
		swapVariant, found := s.selectIndexTree.Get(last)
		if !found || swapVariant.selectIndex != last {
			log.Printf("%s: select index=%d inconsistent, found=%t", s.options.LogPrefix, last, found)
			return release
		}

		s.selectIndexTree.Remove(last)
		s.selectCaseSlice[index] = s.selectCaseSlice[last]
		swapVariant.selectIndex = index
		s.selectIndexTree.Put(index, swapVariant)
	}

	// this will also properly zero value the deleted element
	s.selectCaseSlice = slices.Delete(s.selectCaseSlice, int(last), int(last)+1)

	if s.options.LogDebug {
		log.Printf(
			"%s: removed async variant handle=%d, index=%d, count=%d, group=%+v",
			s.options.LogPrefix,
			v.asyncHandle,
			index,
			v.SelectCount,
			v.GroupSlice,
		)
	}

	return release
}

func (s *Scheduler[G]) releaseAsyncVariantByTree(scopedIndexTree *rbt.Tree[uint16, *AsyncVariant[G]]) {
	// high -> low index, so that swaps in removeAsyncVariant never touch a pending entry
	it := scopedIndexTree.Iterator()
	it.End()
	for it.Prev() {
		s.removeAsyncVariant(it.Value())()
	}
}

func (s *Scheduler[G]) releaseAll() {
	if s.options.LogDebug {
		log.Printf("%s: release all async variants, size=%d", s.options.LogPrefix, s.selectIndexTree.Size())
	}

	scopedIndexTree := rbt.New[uint16, *AsyncVariant[G]]()
	it := s.selectIndexTree.Iterator()
	for it.Next() {
		scopedIndexTree.Put(it.Key(), it.Value())
	}

	s.releaseAsyncVariantByTree(scopedIndexTree)
}

// releaseGroupSlice kills every entity and releases every async variant
// belonging to any of the groups
func (s *Scheduler[G]) releaseGroupSlice(groupSlice []G) {
	scopedEntityTree := rbt.New[string, *Entity[G]]()
	scopedIndexTree := rbt.New[uint16, *AsyncVariant[G]]()

	for _, group := range groupSlice {
		context, found := s.groupContextMap[group]
		if !found {
			continue
		}

		// one entity or async variant may belong to several groups, collect unique occurrences
		eit := context.entityTree.Iterator()
		for eit.Next() {
			scopedEntityTree.Put(eit.Key(), eit.Value())
		}
		ait := context.asyncHandleTree.Iterator()
		for ait.Next() {
			v := ait.Value()
			scopedIndexTree.Put(v.selectIndex, v)
		}
	}

	if s.options.LogDebug {
		log.Printf(
			"%s: release group=%+v, entities=%d, async variants=%d",
			s.options.LogPrefix,
			groupSlice,
			scopedEntityTree.Size(),
			scopedIndexTree.Size(),
		)
	}

	it := scopedEntityTree.Iterator()
	for it.Next() {
		s.removeEntity(it.Value())
	}

	s.releaseAsyncVariantByTree(scopedIndexTree)
}

// must be invoked on same goroutine as processLoop
func (s *Scheduler[G]) ProcessSync(event Event) {
	s.handle(event)
}

// can be invoked on any goroutine
func (s *Scheduler[G]) ProcessAsync(event Event) {
	select {
	case s.eventch <- event:
	default:
		log.Printf("%s: failed to push to eventch", s.options.LogPrefix)
	}
}

// must be invoked on same goroutine as processLoop
func (s *Scheduler[G]) LookupEntity(id string) (*Entity[G], bool) {
	return s.entityTree.Get(id)
}
