package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/iliyamo/cinecito/internal/model"
)

// MemoryShowtimeRepo is an in-process showtime store with the same contract
// as ShowtimeRepo, including the unique (room, time) index.  It backs
// STORE_DRIVER=memory and the scheduler tests.
type MemoryShowtimeRepo struct {
	mu     sync.RWMutex
	nextID uint64
	rows   map[uint64]model.Showtime
	slots  map[model.Slot]uint64
}

func NewMemoryShowtimeRepo() *MemoryShowtimeRepo {
	return &MemoryShowtimeRepo{
		rows:  make(map[uint64]model.Showtime),
		slots: make(map[model.Slot]uint64),
	}
}

func (r *MemoryShowtimeRepo) List(ctx context.Context, filter string) ([]model.Showtime, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []model.Showtime{}
	for _, s := range r.rows {
		if strings.Contains(s.Name, filter) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryShowtimeRepo) GetByID(ctx context.Context, id uint64) (*model.Showtime, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.rows[id]
	if !ok {
		return nil, ErrShowtimeNotFound
	}
	return &s, nil
}

func (r *MemoryShowtimeRepo) CountBySlot(ctx context.Context, slot model.Slot) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, taken := r.slots[slot]; taken {
		return 1, nil
	}
	return 0, nil
}

func (r *MemoryShowtimeRepo) Create(ctx context.Context, s *model.Showtime) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	slot := s.Slot()
	if _, taken := r.slots[slot]; taken {
		return ErrDuplicateSlot
	}
	r.nextID++
	s.ID = r.nextID
	r.rows[s.ID] = *s
	r.slots[slot] = s.ID
	return nil
}

func (r *MemoryShowtimeRepo) UpdateSlot(ctx context.Context, id uint64, slot model.Slot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.rows[id]
	if !ok {
		return ErrShowtimeNotFound
	}
	if holder, taken := r.slots[slot]; taken && holder != id {
		return ErrDuplicateSlot
	}
	delete(r.slots, cur.Slot())
	cur.Room, cur.Time = slot.Room, slot.Time
	r.rows[id] = cur
	r.slots[slot] = id
	return nil
}

func (r *MemoryShowtimeRepo) Delete(ctx context.Context, id uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.rows[id]
	if !ok {
		return ErrShowtimeNotFound
	}
	delete(r.rows, id)
	delete(r.slots, cur.Slot())
	return nil
}

// MemoryMovieRepo is the in-process counterpart of MovieRepo.
type MemoryMovieRepo struct {
	mu     sync.RWMutex
	nextID uint64
	rows   map[uint64]model.Movie
}

func NewMemoryMovieRepo() *MemoryMovieRepo {
	return &MemoryMovieRepo{rows: make(map[uint64]model.Movie)}
}

func (r *MemoryMovieRepo) Search(ctx context.Context, filter string) ([]model.Movie, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []model.Movie{}
	for _, m := range r.rows {
		if strings.Contains(m.Name, filter) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryMovieRepo) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.rows[id]
	if !ok {
		return nil, ErrMovieNotFound
	}
	return &m, nil
}

func (r *MemoryMovieRepo) Create(ctx context.Context, m *model.Movie) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	m.ID = r.nextID
	r.rows[m.ID] = *m
	return nil
}

func (r *MemoryMovieRepo) Update(ctx context.Context, m *model.Movie) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[m.ID]; !ok {
		return ErrMovieNotFound
	}
	r.rows[m.ID] = *m
	return nil
}

func (r *MemoryMovieRepo) Delete(ctx context.Context, id uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return ErrMovieNotFound
	}
	delete(r.rows, id)
	return nil
}
