// Package scheduler owns showtime records and keeps the one scheduling
// rule: no two showtimes hold the same (room, time) slot.
//
// Every write to a slot runs its availability check and its write while
// holding a lock on the target slot, and the store's unique slot index
// rejects whatever slips past (another process without the lock, a manual
// insert).  Either signal is reported as KindSlotConflict.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/cinecito/internal/lock"
	"github.com/iliyamo/cinecito/internal/model"
	"github.com/iliyamo/cinecito/internal/pkg/logger"
	"github.com/iliyamo/cinecito/internal/pkg/metrics"
	"github.com/iliyamo/cinecito/internal/queue"
	"github.com/iliyamo/cinecito/internal/repository"
)

// Store is the persistence gateway the scheduler writes through.
// repository.ShowtimeRepo and repository.MemoryShowtimeRepo implement it.
type Store interface {
	List(ctx context.Context, filter string) ([]model.Showtime, error)
	GetByID(ctx context.Context, id uint64) (*model.Showtime, error)
	CountBySlot(ctx context.Context, slot model.Slot) (int, error)
	Create(ctx context.Context, s *model.Showtime) error
	UpdateSlot(ctx context.Context, id uint64, slot model.Slot) error
	Delete(ctx context.Context, id uint64) error
}

// Locker serializes work on a key.  lock.KeyedMutex and lock.RedisLocker
// implement it.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// Publisher receives an event after each successful write.
type Publisher interface {
	Publish(ctx context.Context, ev queue.ShowtimeEvent) error
}

// SameSlotPolicy decides what rescheduling a showtime onto the slot it
// already holds does.
type SameSlotPolicy uint8

const (
	// SameSlotReject fails with KindSlotConflict: the availability check
	// sees the showtime's own booking.
	SameSlotReject SameSlotPolicy = iota
	// SameSlotNoop succeeds without writing.
	SameSlotNoop
)

// ParseSameSlotPolicy maps "reject" and "noop" to a policy.
func ParseSameSlotPolicy(s string) (SameSlotPolicy, error) {
	switch s {
	case "", "reject":
		return SameSlotReject, nil
	case "noop":
		return SameSlotNoop, nil
	}
	return SameSlotReject, fmt.Errorf("unknown same-slot policy %q", s)
}

// Deps are the collaborators of a Scheduler.  Only Store is required; a nil
// Locker leaves check-and-write unserialized.
type Deps struct {
	Store     Store
	Locker    Locker
	Publisher Publisher
	Metrics   *metrics.Metrics
	SameSlot  SameSlotPolicy
}

// Scheduler is safe for concurrent use.
type Scheduler struct {
	store     Store
	locker    Locker
	publisher Publisher
	metrics   *metrics.Metrics
	sameSlot  SameSlotPolicy
}

// New builds a Scheduler and panics if no store is given.
func New(d Deps) *Scheduler {
	if d.Store == nil {
		panic("scheduler: nil store")
	}
	return &Scheduler{
		store:     d.Store,
		locker:    d.Locker,
		publisher: d.Publisher,
		metrics:   d.Metrics,
		sameSlot:  d.SameSlot,
	}
}

// List returns every showtime whose name contains filter (case-sensitive).
// An empty filter returns all showtimes.
func (s *Scheduler) List(ctx context.Context, filter string) ([]model.Showtime, error) {
	out, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, s.fail("list", model.Slot{}, 0, err)
	}
	s.record("list", nil)
	return out, nil
}

// Get returns showtime id.
func (s *Scheduler) Get(ctx context.Context, id uint64) (*model.Showtime, error) {
	st, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail("get", model.Slot{}, id, err)
	}
	return st, nil
}

// IsAvailable reports whether no showtime holds exactly (room, at).
func (s *Scheduler) IsAvailable(ctx context.Context, room, at string) (bool, error) {
	slot := model.Slot{Room: room, Time: at}
	free, err := s.available(ctx, slot)
	if err != nil {
		return false, s.fail("available", slot, 0, err)
	}
	s.record("available", nil)
	return free, nil
}

// Schedule creates a showtime if its slot is free.
func (s *Scheduler) Schedule(ctx context.Context, name, room, at string) (*model.Showtime, error) {
	slot := model.Slot{Room: room, Time: at}
	st, err := s.scheduleLocked(ctx, name, slot)
	if err != nil {
		return nil, s.fail("schedule", slot, 0, err)
	}
	s.record("schedule", nil)
	s.publish(ctx, queue.ShowtimeScheduled, *st)
	return st, nil
}

func (s *Scheduler) scheduleLocked(ctx context.Context, name string, slot model.Slot) (*model.Showtime, error) {
	release, err := s.acquire(ctx, slot)
	if err != nil {
		return nil, err
	}
	defer release()

	free, err := s.available(ctx, slot)
	if err != nil {
		return nil, err
	}
	if !free {
		return nil, ErrSlotTaken
	}
	st := &model.Showtime{Name: name, Room: slot.Room, Time: slot.Time}
	if err := s.store.Create(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// Reschedule moves showtime id to (room, at) if that slot is free.  The
// check does not exclude the showtime itself, so under SameSlotReject a
// move onto its current slot fails with KindSlotConflict.
func (s *Scheduler) Reschedule(ctx context.Context, id uint64, room, at string) (*model.Showtime, error) {
	slot := model.Slot{Room: room, Time: at}
	st, moved, err := s.rescheduleLocked(ctx, id, slot)
	if err != nil {
		return nil, s.fail("reschedule", slot, id, err)
	}
	s.record("reschedule", nil)
	if moved {
		s.publish(ctx, queue.ShowtimeRescheduled, *st)
	}
	return st, nil
}

func (s *Scheduler) rescheduleLocked(ctx context.Context, id uint64, slot model.Slot) (*model.Showtime, bool, error) {
	release, err := s.acquire(ctx, slot)
	if err != nil {
		return nil, false, err
	}
	defer release()

	if s.sameSlot == SameSlotNoop {
		cur, err := s.store.GetByID(ctx, id)
		if err != nil {
			return nil, false, err
		}
		if cur.Slot() == slot {
			return cur, false, nil
		}
	}

	free, err := s.available(ctx, slot)
	if err != nil {
		return nil, false, err
	}
	if !free {
		return nil, false, ErrSlotTaken
	}
	if err := s.store.UpdateSlot(ctx, id, slot); err != nil {
		return nil, false, err
	}
	st, err := s.store.GetByID(ctx, id)
	if err != nil {
		// the move is committed; only the name is unknown
		logger.Warn("reload after reschedule failed", zap.Uint64("id", id), zap.Error(err))
		st = &model.Showtime{ID: id, Room: slot.Room, Time: slot.Time}
	}
	return st, true, nil
}

// Cancel deletes showtime id.  It fails with KindNotFound unless exactly one
// row was removed.
func (s *Scheduler) Cancel(ctx context.Context, id uint64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return s.fail("cancel", model.Slot{}, id, err)
	}
	s.record("cancel", nil)
	s.publish(ctx, queue.ShowtimeCancelled, model.Showtime{ID: id})
	return nil
}

func (s *Scheduler) available(ctx context.Context, slot model.Slot) (bool, error) {
	n, err := s.store.CountBySlot(ctx, slot)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

func (s *Scheduler) acquire(ctx context.Context, slot model.Slot) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}
	start := time.Now()
	release, err := s.locker.Acquire(ctx, slot.Key())
	if s.metrics != nil {
		status := "acquired"
		if err != nil {
			status = "failed"
		}
		s.metrics.SlotLockDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) || ctx.Err() != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: slot lock: %w", repository.ErrUnavailable, err)
	}
	return release, nil
}

func (s *Scheduler) fail(op string, slot model.Slot, id uint64, err error) *Error {
	e := &Error{Op: op, Kind: kindFor(err), Slot: slot, ID: id, Err: err}
	s.record(op, e)
	return e
}

func (s *Scheduler) record(op string, e *Error) {
	if s.metrics == nil {
		return
	}
	result := "ok"
	if e != nil {
		result = e.Kind.String()
	}
	s.metrics.ShowtimeOperationsTotal.WithLabelValues(op, result).Inc()
}

// publish is best effort: a broker failure is logged and never undoes or
// fails the write.
func (s *Scheduler) publish(ctx context.Context, typ queue.EventType, st model.Showtime) {
	if s.publisher == nil {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	ev := queue.ShowtimeEvent{
		Type:       typ,
		ShowtimeID: st.ID,
		Name:       st.Name,
		Room:       st.Room,
		Time:       st.Time,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.publisher.Publish(pctx, ev); err != nil {
		logger.Warn("publish showtime event failed", zap.String("type", string(typ)), zap.Uint64("id", st.ID), zap.Error(err))
	}
}
