package scheduler

import (
	"context"

	"go.uber.org/zap"

	"github.com/iliyamo/cinecito/internal/model"
	"github.com/iliyamo/cinecito/internal/pkg/logger"
)

// Legacy is the boolean view of a Scheduler for callers that only need
// success or failure.  Failures are logged and collapsed to false or an
// empty list, so "slot taken", "no such showtime" and "store down" look the
// same to the caller.
type Legacy struct {
	s *Scheduler
}

// Legacy returns the boolean view of s.
func (s *Scheduler) Legacy() Legacy {
	return Legacy{s: s}
}

// List never returns nil.
func (l Legacy) List(ctx context.Context, filter string) []model.Showtime {
	out, err := l.s.List(ctx, filter)
	if err != nil {
		swallow(err)
		return []model.Showtime{}
	}
	return out
}

func (l Legacy) IsAvailable(ctx context.Context, room, at string) bool {
	free, err := l.s.IsAvailable(ctx, room, at)
	if err != nil {
		swallow(err)
		return false
	}
	return free
}

func (l Legacy) Schedule(ctx context.Context, name, room, at string) bool {
	if _, err := l.s.Schedule(ctx, name, room, at); err != nil {
		swallow(err)
		return false
	}
	return true
}

func (l Legacy) Reschedule(ctx context.Context, id uint64, room, at string) bool {
	if _, err := l.s.Reschedule(ctx, id, room, at); err != nil {
		swallow(err)
		return false
	}
	return true
}

func (l Legacy) Cancel(ctx context.Context, id uint64) bool {
	if err := l.s.Cancel(ctx, id); err != nil {
		swallow(err)
		return false
	}
	return true
}

// swallow logs conflicts at info and everything else at error.
func swallow(err error) {
	kind := KindOf(err)
	fields := []zap.Field{zap.String("kind", kind.String()), zap.Error(err)}
	switch kind {
	case KindSlotConflict, KindNotFound:
		logger.Info("showtime operation refused", fields...)
	default:
		logger.Error("showtime operation failed", fields...)
	}
}
