package scheduler

import (
	"log"
	"math"
	"math/bits"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/Meander-Cloud/go-fairsched/rbtree"
)

func (s *Scheduler[G]) spawn(event *SpawnEvent[G]) (*Entity[G], error) {
	weight, err := NiceToWeight(event.Nice)
	if err != nil {
		return nil, errors.Wrapf(err, "spawn nice=%d", event.Nice)
	}

	id := event.ID
	if id == "" {
		id = uuid.New().String()
	}
	if _, found := s.entityTree.Get(id); found {
		return nil, errors.Wrapf(ErrEntityExists, "spawn id=%s", id)
	}

	e := &Entity[G]{
		ID:         id,
		Name:       event.Name,
		GroupSlice: event.GroupSlice,
		Nice:       event.Nice,
		Weight:     weight,

		// start level with the least served entity
		VRuntime: s.minVRuntime,

		State: EntityStateSleeping,
	}

	s.entityTree.Put(id, e)
	for _, group := range e.GroupSlice {
		s.groupContext(group).entityTree.Put(id, e)
	}

	s.activate(e)

	if s.options.LogDebug {
		log.Printf(
			"%s: spawned id=%s, name=%s, nice=%d, weight=%d, vruntime=%d, group=%+v",
			s.options.LogPrefix,
			e.ID,
			e.Name,
			e.Nice,
			e.Weight,
			e.VRuntime,
			e.GroupSlice,
		)
	}

	return e, nil
}

func (s *Scheduler[G]) kill(id string) error {
	e, found := s.entityTree.Get(id)
	if !found {
		return errors.Wrapf(ErrEntityNotFound, "kill id=%s", id)
	}

	s.removeEntity(e)
	return nil
}

func (s *Scheduler[G]) removeEntity(e *Entity[G]) {
	if e.State == EntityStateRunnable || e.State == EntityStateRunning {
		s.deactivate(e)
	}
	e.State = EntityStateExited

	s.entityTree.Remove(e.ID)
	for _, group := range e.GroupSlice {
		context, found := s.groupContextMap[group]
		if !found {
			continue
		}
		context.entityTree.Remove(e.ID)
		s.pruneGroupContext(group)
	}

	if s.options.LogDebug {
		log.Printf(
			"%s: exited id=%s, runtime=%s, vruntime=%d, switches=%d",
			s.options.LogPrefix,
			e.ID,
			e.SumExecRuntime,
			e.VRuntime,
			e.SwitchCount,
		)
	}
}

func (s *Scheduler[G]) sleep(id string) error {
	e, found := s.entityTree.Get(id)
	if !found {
		return errors.Wrapf(ErrEntityNotFound, "sleep id=%s", id)
	}
	if e.State != EntityStateRunnable && e.State != EntityStateRunning {
		return errors.Wrapf(ErrEntityState, "sleep id=%s, state=%s", id, e.State)
	}

	s.deactivate(e)
	e.State = EntityStateSleeping
	return nil
}

func (s *Scheduler[G]) wake(id string) error {
	e, found := s.entityTree.Get(id)
	if !found {
		return errors.Wrapf(ErrEntityNotFound, "wake id=%s", id)
	}
	if e.State != EntityStateSleeping {
		return errors.Wrapf(ErrEntityState, "wake id=%s, state=%s", id, e.State)
	}

	// a sleeper keeps at most half a latency period of credit
	floor := s.minVRuntime
	credit := uint64(s.options.TargetLatency / 2)
	if floor > credit {
		floor -= credit
	} else {
		floor = 0
	}
	if e.VRuntime < floor {
		e.VRuntime = floor
	}

	s.activate(e)
	return nil
}

func (s *Scheduler[G]) renice(id string, nice int) error {
	e, found := s.entityTree.Get(id)
	if !found {
		return errors.Wrapf(ErrEntityNotFound, "renice id=%s", id)
	}
	weight, err := NiceToWeight(nice)
	if err != nil {
		return errors.Wrapf(err, "renice id=%s, nice=%d", id, nice)
	}

	prevWeight := e.Weight
	e.Nice = nice
	e.Weight = weight

	switch e.State {
	case EntityStateRunnable:
		s.totalWeight = s.totalWeight - prevWeight + weight

		// keep the entity's lag behind minVRuntime proportional to its new weight
		e.VRuntime = rescaleVRuntime(e.VRuntime, s.minVRuntime, prevWeight, weight)
		handle, err := s.index.UpdateKey(e.handle, e.VRuntime)
		if err != nil {
			return errors.Wrapf(err, "renice id=%s, handle=%s", id, e.handle)
		}
		e.handle = handle
	case EntityStateRunning:
		s.totalWeight = s.totalWeight - prevWeight + weight
	}

	return nil
}

func rescaleVRuntime(vruntime uint64, floor uint64, prevWeight uint64, weight uint64) uint64 {
	if vruntime >= floor {
		lag := scaleLag(vruntime-floor, prevWeight, weight)
		if lag > math.MaxUint64-floor {
			return math.MaxUint64
		}
		return floor + lag
	}

	lag := scaleLag(floor-vruntime, prevWeight, weight)
	if lag >= floor {
		return 0
	}
	return floor - lag
}

// scaleLag computes lag*prevWeight/weight in 128 bits, saturating on overflow
func scaleLag(lag uint64, prevWeight uint64, weight uint64) uint64 {
	hi, lo := bits.Mul64(lag, prevWeight)
	if hi >= weight {
		return math.MaxUint64
	}
	q, _ := bits.Div64(hi, lo, weight)
	return q
}

// activate makes e compete for the cpu
func (s *Scheduler[G]) activate(e *Entity[G]) {
	s.totalWeight += e.Weight
	s.enqueue(e)
}

// deactivate takes e out of competition, whether queued or running
func (s *Scheduler[G]) deactivate(e *Entity[G]) {
	switch e.State {
	case EntityStateRunnable:
		if err := s.index.Delete(e.handle); err != nil {
			// index and entity state disagree, nothing after this can be trusted
			panic(errors.Wrapf(err, "dequeue id=%s, handle=%s", e.ID, e.handle))
		}
		e.handle = rbtree.Handle{}
	case EntityStateRunning:
		s.current = nil
	}
	s.totalWeight -= e.Weight
}

func (s *Scheduler[G]) enqueue(e *Entity[G]) {
	e.State = EntityStateRunnable
	e.handle = s.index.Insert(e.VRuntime, e.ID, e)
}

// tick charges d to the running entity and switches to the entity with the
// smallest vruntime once the running one has used up its slice
func (s *Scheduler[G]) tick(d time.Duration) {
	if d <= 0 {
		d = s.options.TickInterval
	}
	if d <= 0 {
		d = s.options.MinGranularity
	}

	if s.current == nil {
		s.pickNext()
	}

	e := s.current
	if e != nil {
		e.SumExecRuntime += d
		e.SliceRuntime += d
		e.VRuntime += calcDelta(d, e.Weight)
	}

	s.clock += d
	s.updateMinVRuntime()

	if e != nil && e.SliceRuntime >= s.timeslice(e) {
		s.pickNext()
	}
}

func (s *Scheduler[G]) pickNext() {
	prev := s.current
	if prev != nil {
		if s.index.IsEmpty() {
			// nobody waiting, start a fresh slice
			prev.SliceRuntime = 0
			return
		}

		s.current = nil
		s.enqueue(prev)
	}

	entry, ok := s.index.ExtractMin()
	if !ok {
		return
	}

	next := entry.Payload
	next.handle = rbtree.Handle{}
	next.State = EntityStateRunning
	next.SliceRuntime = 0
	if next != prev {
		next.SwitchCount += 1
	}
	s.current = next

	if s.options.LogDebug {
		log.Printf(
			"%s: clock=%s, picked id=%s, vruntime=%d, runnable=%d",
			s.options.LogPrefix,
			s.clock,
			next.ID,
			next.VRuntime,
			s.index.Size(),
		)
	}
}

func (s *Scheduler[G]) updateMinVRuntime() {
	var vruntime uint64
	found := false

	if s.current != nil {
		vruntime = s.current.VRuntime
		found = true
	}
	if entry, ok := s.index.Min(); ok {
		if !found || entry.Key < vruntime {
			vruntime = entry.Key
		}
		found = true
	}

	if found && vruntime > s.minVRuntime {
		s.minVRuntime = vruntime
	}
}

// timeslice is e's share of TargetLatency by weight, at least MinGranularity
func (s *Scheduler[G]) timeslice(e *Entity[G]) time.Duration {
	if s.totalWeight == 0 {
		return s.options.TargetLatency
	}

	slice := time.Duration(uint64(s.options.TargetLatency) * e.Weight / s.totalWeight)
	if slice < s.options.MinGranularity {
		return s.options.MinGranularity
	}
	return slice
}
