package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/cinecito/internal/model"
)

// MovieRepo manages persistence for catalog movies on MySQL.
type MovieRepo struct {
	db *sqlx.DB
}

func NewMovieRepo(db *sqlx.DB) *MovieRepo {
	return &MovieRepo{db: db}
}

// Search returns movies whose name contains filter, ordered by id.
func (r *MovieRepo) Search(ctx context.Context, filter string) ([]model.Movie, error) {
	const q = `SELECT id, name, synopsis, genre FROM movies WHERE INSTR(name, ?) > 0 ORDER BY id`
	out := []model.Movie{}
	if err := r.db.SelectContext(ctx, &out, q, filter); err != nil {
		return nil, classify(err)
	}
	return out, nil
}

func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
	const q = `SELECT id, name, synopsis, genre FROM movies WHERE id = ?`
	var m model.Movie
	if err := r.db.GetContext(ctx, &m, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		return nil, classify(err)
	}
	return &m, nil
}

// Create inserts m and assigns the generated id back to it.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
	const q = `INSERT INTO movies (name, synopsis, genre) VALUES (:name, :synopsis, :genre)`
	res, err := r.db.NamedExecContext(ctx, q, m)
	if err != nil {
		return classify(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return classify(err)
	}
	m.ID = uint64(id)
	return nil
}

// Update overwrites name, synopsis and genre of movie m.ID.
func (r *MovieRepo) Update(ctx context.Context, m *model.Movie) error {
	const q = `UPDATE movies SET name = :name, synopsis = :synopsis, genre = :genre WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, q, m)
	if err != nil {
		return classify(err)
	}
	return exactlyOne(res, ErrMovieNotFound)
}

func (r *MovieRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM movies WHERE id = ?`, id)
	if err != nil {
		return classify(err)
	}
	return exactlyOne(res, ErrMovieNotFound)
}
