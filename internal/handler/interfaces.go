package handler

import (
    "context"

    "github.com/iliyamo/cinecito/internal/model"
)

// ShowtimeService is implemented by *scheduler.Scheduler.
type ShowtimeService interface {
    List(ctx context.Context, filter string) ([]model.Showtime, error)
    Get(ctx context.Context, id uint64) (*model.Showtime, error)
    IsAvailable(ctx context.Context, room, at string) (bool, error)
    Schedule(ctx context.Context, name, room, at string) (*model.Showtime, error)
    Reschedule(ctx context.Context, id uint64, room, at string) (*model.Showtime, error)
    Cancel(ctx context.Context, id uint64) error
}

// MovieService is implemented by *catalog.Catalog.
type MovieService interface {
    Search(ctx context.Context, filter string) ([]model.Movie, error)
    Get(ctx context.Context, id uint64) (*model.Movie, error)
    Create(ctx context.Context, name, synopsis, genre string) (*model.Movie, error)
    Update(ctx context.Context, id uint64, name, synopsis, genre string) (*model.Movie, error)
    Delete(ctx context.Context, id uint64) error
}
