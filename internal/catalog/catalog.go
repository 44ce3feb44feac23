// Package catalog is the movie catalog: plain name/synopsis/genre records
// with no rule beyond a store-assigned id.  The scheduler does not depend on
// it; showtimes carry the movie title as text.
package catalog

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/iliyamo/cinecito/internal/model"
	"github.com/iliyamo/cinecito/internal/pkg/logger"
)

// Store is the movie side of the persistence gateway.
// repository.MovieRepo and repository.MemoryMovieRepo implement it.
type Store interface {
	Search(ctx context.Context, filter string) ([]model.Movie, error)
	GetByID(ctx context.Context, id uint64) (*model.Movie, error)
	Create(ctx context.Context, m *model.Movie) error
	Update(ctx context.Context, m *model.Movie) error
	Delete(ctx context.Context, id uint64) error
}

type Catalog struct {
	store Store
}

func New(store Store) *Catalog {
	return &Catalog{store: store}
}

// Search returns movies whose name contains filter; "" matches all.
func (c *Catalog) Search(ctx context.Context, filter string) ([]model.Movie, error) {
	out, err := c.store.Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search movies: %w", err)
	}
	return out, nil
}

func (c *Catalog) Get(ctx context.Context, id uint64) (*model.Movie, error) {
	m, err := c.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get movie %d: %w", id, err)
	}
	return m, nil
}

func (c *Catalog) Create(ctx context.Context, name, synopsis, genre string) (*model.Movie, error) {
	m := &model.Movie{Name: name, Synopsis: synopsis, Genre: genre}
	if err := c.store.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("create movie: %w", err)
	}
	return m, nil
}

// Update overwrites every field of movie id.  It fails with
// repository.ErrMovieNotFound unless exactly one row matched.
func (c *Catalog) Update(ctx context.Context, id uint64, name, synopsis, genre string) (*model.Movie, error) {
	m := &model.Movie{ID: id, Name: name, Synopsis: synopsis, Genre: genre}
	if err := c.store.Update(ctx, m); err != nil {
		return nil, fmt.Errorf("update movie %d: %w", id, err)
	}
	return m, nil
}

func (c *Catalog) Delete(ctx context.Context, id uint64) error {
	if err := c.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete movie %d: %w", id, err)
	}
	return nil
}

// Legacy is the boolean view of the catalog.  Errors are logged and
// reported as false or an empty list.
type Legacy struct {
	c *Catalog
}

func (c *Catalog) Legacy() Legacy {
	return Legacy{c: c}
}

func (l Legacy) Search(ctx context.Context, filter string) []model.Movie {
	out, err := l.c.Search(ctx, filter)
	if err != nil {
		logger.Error("movie search failed", zap.Error(err))
		return []model.Movie{}
	}
	return out
}

func (l Legacy) Create(ctx context.Context, name, synopsis, genre string) bool {
	if _, err := l.c.Create(ctx, name, synopsis, genre); err != nil {
		logger.Error("movie create failed", zap.Error(err))
		return false
	}
	return true
}

func (l Legacy) Update(ctx context.Context, id uint64, name, synopsis, genre string) bool {
	if _, err := l.c.Update(ctx, id, name, synopsis, genre); err != nil {
		logger.Error("movie update failed", zap.Error(err))
		return false
	}
	return true
}

func (l Legacy) Delete(ctx context.Context, id uint64) bool {
	if err := l.c.Delete(ctx, id); err != nil {
		logger.Error("movie delete failed", zap.Error(err))
		return false
	}
	return true
}
