package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/cinecito/internal/model"
)

// ShowtimeRepo manages persistence for showtimes on MySQL.
type ShowtimeRepo struct {
	db *sqlx.DB
}

// NewShowtimeRepo constructs a ShowtimeRepo with the given DB handle.
func NewShowtimeRepo(db *sqlx.DB) *ShowtimeRepo {
	return &ShowtimeRepo{db: db}
}

// List returns showtimes whose name contains filter, ordered by id.  The
// column uses a NO PAD binary collation so the match is case-sensitive, and
// INSTR treats "%" and "_" literally.  An empty filter matches every row.
func (r *ShowtimeRepo) List(ctx context.Context, filter string) ([]model.Showtime, error) {
	const q = `SELECT id, name, room, slot_time FROM showtimes WHERE INSTR(name, ?) > 0 ORDER BY id`
	out := []model.Showtime{}
	if err := r.db.SelectContext(ctx, &out, q, filter); err != nil {
		return nil, classify(err)
	}
	return out, nil
}

// GetByID retrieves a showtime by id or returns ErrShowtimeNotFound.
func (r *ShowtimeRepo) GetByID(ctx context.Context, id uint64) (*model.Showtime, error) {
	const q = `SELECT id, name, room, slot_time FROM showtimes WHERE id = ?`
	var s model.Showtime
	if err := r.db.GetContext(ctx, &s, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowtimeNotFound
		}
		return nil, classify(err)
	}
	return &s, nil
}

// CountBySlot counts showtimes whose room and time exactly match slot.
// Trailing spaces are significant under the NO PAD collation.
func (r *ShowtimeRepo) CountBySlot(ctx context.Context, slot model.Slot) (int, error) {
	const q = `SELECT COUNT(*) FROM showtimes WHERE room = ? AND slot_time = ?`
	var n int
	if err := r.db.GetContext(ctx, &n, q, slot.Room, slot.Time); err != nil {
		return 0, classify(err)
	}
	return n, nil
}

// Create inserts s and assigns the generated id back to it.
func (r *ShowtimeRepo) Create(ctx context.Context, s *model.Showtime) error {
	const q = `INSERT INTO showtimes (name, room, slot_time) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.Name, s.Room, s.Time)
	if err != nil {
		return classify(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return classify(err)
	}
	s.ID = uint64(id)
	return nil
}

// UpdateSlot moves showtime id to slot.  It returns ErrShowtimeNotFound when
// no row matched.
func (r *ShowtimeRepo) UpdateSlot(ctx context.Context, id uint64, slot model.Slot) error {
	const q = `UPDATE showtimes SET room = ?, slot_time = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, slot.Room, slot.Time, id)
	if err != nil {
		return classify(err)
	}
	return exactlyOne(res, ErrShowtimeNotFound)
}

// Delete removes showtime id.  It returns ErrShowtimeNotFound when no row
// was removed.
func (r *ShowtimeRepo) Delete(ctx context.Context, id uint64) error {
	const q = `DELETE FROM showtimes WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return classify(err)
	}
	return exactlyOne(res, ErrShowtimeNotFound)
}

// exactlyOne turns an affected-row count other than one into notFound.
func exactlyOne(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return classify(err)
	}
	if n != 1 {
		return notFound
	}
	return nil
}
