package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/iliyamo/cinecito/internal/model"
	"github.com/iliyamo/cinecito/internal/pkg/logger"
	"github.com/iliyamo/cinecito/internal/repository"
)

func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	prev := logger.Get()
	t.Cleanup(func() { logger.Set(prev) })
	core, logs := observer.New(zapcore.DebugLevel)
	logger.Set(zap.New(core))
	return logs
}

func TestLegacy_Booleans(t *testing.T) {
	ctx := context.Background()
	l := New(Deps{Store: repository.NewMemoryShowtimeRepo()}).Legacy()

	assert.True(t, l.IsAvailable(ctx, "RoomA", "18:00"))
	assert.True(t, l.Schedule(ctx, "Dune", "RoomA", "18:00"))
	assert.False(t, l.IsAvailable(ctx, "RoomA", "18:00"))

	list := l.List(ctx, "")
	require.Len(t, list, 1)
	assert.True(t, l.Reschedule(ctx, list[0].ID, "RoomB", "20:00"))
	assert.True(t, l.IsAvailable(ctx, "RoomA", "18:00"))
	assert.False(t, l.Reschedule(ctx, 77, "RoomC", "20:00"))
	assert.False(t, l.Cancel(ctx, 77))
	assert.True(t, l.Cancel(ctx, list[0].ID))

	empty := l.List(ctx, "Dune")
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestLegacy_LogsByKind(t *testing.T) {
	ctx := context.Background()

	t.Run("refusals log at info", func(t *testing.T) {
		logs := observeLogs(t)
		l := New(Deps{Store: repository.NewMemoryShowtimeRepo()}).Legacy()

		require.True(t, l.Schedule(ctx, "Dune", "RoomA", "18:00"))
		assert.False(t, l.Schedule(ctx, "Nope", "RoomA", "18:00"))
		assert.False(t, l.Cancel(ctx, 9))

		refused := logs.FilterMessage("showtime operation refused").All()
		require.Len(t, refused, 2)
		assert.Equal(t, zapcore.InfoLevel, refused[0].Level)
		assert.Equal(t, "conflict", refused[0].ContextMap()["kind"])
		assert.Equal(t, "not_found", refused[1].ContextMap()["kind"])
	})

	t.Run("store failures log at error", func(t *testing.T) {
		logs := observeLogs(t)
		store := new(MockStore)
		store.On("CountBySlot", mock.Anything, model.Slot{Room: "RoomA", Time: "18:00"}).
			Return(0, repository.ErrUnavailable)
		l := New(Deps{Store: store}).Legacy()

		assert.False(t, l.IsAvailable(ctx, "RoomA", "18:00"))

		failed := logs.FilterLevelExact(zapcore.ErrorLevel).All()
		require.Len(t, failed, 1)
		assert.Equal(t, "showtime operation failed", failed[0].Message)
		assert.Equal(t, "store_unavailable", failed[0].ContextMap()["kind"])
	})
}

func TestError_Format(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"slot", &Error{Op: "schedule", Slot: model.Slot{Room: "RoomA", Time: "18:00"}, Err: cause}, `schedule room="RoomA" time="18:00": boom`},
		{"id", &Error{Op: "cancel", ID: 4, Err: cause}, "cancel id=4: boom"},
		{"bare", &Error{Op: "list", Err: cause}, "list: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.ErrorIs(t, tt.err, cause)
		})
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
	assert.Equal(t, KindNotFound, KindOf(&Error{Kind: KindNotFound}))

	assert.Equal(t, KindNotFound, kindFor(repository.ErrShowtimeNotFound))
	assert.Equal(t, KindSlotConflict, kindFor(repository.ErrDuplicateSlot))
	assert.Equal(t, KindSlotConflict, kindFor(ErrSlotTaken))
	assert.Equal(t, KindStoreUnavailable, kindFor(context.DeadlineExceeded))
	assert.Equal(t, KindQueryFailure, kindFor(errors.New("syntax error")))

	assert.Equal(t, "conflict", KindSlotConflict.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
