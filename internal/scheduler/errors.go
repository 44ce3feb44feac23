package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/cinecito/internal/lock"
	"github.com/iliyamo/cinecito/internal/model"
	"github.com/iliyamo/cinecito/internal/repository"
)

// Kind distinguishes why a scheduler operation failed.
type Kind uint8

const (
	KindUnknown Kind = iota
	// KindStoreUnavailable: the store (or the slot lock backend) could not be reached.
	KindStoreUnavailable
	// KindQueryFailure: the store rejected the operation.
	KindQueryFailure
	// KindSlotConflict: the target (room, time) is held by a showtime.
	KindSlotConflict
	// KindNotFound: no showtime has the given id.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindStoreUnavailable:
		return "store_unavailable"
	case KindQueryFailure:
		return "query_failure"
	case KindSlotConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// ErrSlotTaken is the cause recorded when the availability check finds the
// target slot occupied.
var ErrSlotTaken = errors.New("room and time already taken")

// Error is returned by every Scheduler operation.
type Error struct {
	Op   string     // schedule, reschedule, cancel, available, list, get
	Kind Kind
	Slot model.Slot // target slot, zero for cancel/list/get
	ID   uint64     // showtime id when the operation names one
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Slot != (model.Slot{}):
		return fmt.Sprintf("%s room=%q time=%q: %v", e.Op, e.Slot.Room, e.Slot.Time, e.Err)
	case e.ID != 0:
		return fmt.Sprintf("%s id=%d: %v", e.Op, e.ID, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or KindUnknown when err is not a
// scheduler error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnknown
}

// kindFor classifies a store or lock error.
func kindFor(err error) Kind {
	switch {
	case errors.Is(err, repository.ErrShowtimeNotFound):
		return KindNotFound
	case errors.Is(err, repository.ErrDuplicateSlot),
		errors.Is(err, ErrSlotTaken),
		errors.Is(err, lock.ErrNotAcquired):
		return KindSlotConflict
	case errors.Is(err, repository.ErrUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return KindStoreUnavailable
	default:
		return KindQueryFailure
	}
}
