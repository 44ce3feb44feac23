package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinecito/internal/database"
	"github.com/iliyamo/cinecito/internal/model"
)

// mysqlDB connects to MYSQL_TEST_DSN, applies the migrations and empties both
// tables.  The database named in the DSN is owned by the tests.
func mysqlDB(t *testing.T) *sqlx.DB {
	t.Helper()
	raw := os.Getenv("MYSQL_TEST_DSN")
	if raw == "" {
		t.Skip("MYSQL_TEST_DSN not set")
	}
	mc, err := mysql.ParseDSN(raw)
	require.NoError(t, err)
	// the same options database.DSN sets for the server
	mc.ParseTime = true
	mc.ClientFoundRows = true

	db, err := sqlx.Open("mysql", mc.FormatDSN())
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		t.Skipf("MySQL not available: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.Migrate(db.DB))
	for _, table := range []string{"showtimes", "movies"} {
		_, err := db.Exec("DELETE FROM " + table)
		require.NoError(t, err)
	}
	return db
}

func TestShowtimeRepo_MySQL(t *testing.T) {
	db := mysqlDB(t)
	ctx := context.Background()
	repo := NewShowtimeRepo(db)

	dune := &model.Showtime{Name: "Dune", Room: "RoomA", Time: "18:00"}
	require.NoError(t, repo.Create(ctx, dune))
	require.NotZero(t, dune.ID)

	t.Run("slot equality is exact", func(t *testing.T) {
		for _, slot := range []model.Slot{
			{Room: "RoomA", Time: "18:00 "},
			{Room: "RoomA ", Time: "18:00"},
			{Room: "rooma", Time: "18:00"},
			{Room: "RoomA", Time: "18:05"},
		} {
			n, err := repo.CountBySlot(ctx, slot)
			require.NoError(t, err)
			assert.Zero(t, n, "%q/%q", slot.Room, slot.Time)
		}
		n, err := repo.CountBySlot(ctx, dune.Slot())
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("trailing space is a different slot on insert", func(t *testing.T) {
		padded := &model.Showtime{Name: "Padded", Room: "RoomA", Time: "18:00 "}
		require.NoError(t, repo.Create(ctx, padded))
		t.Cleanup(func() { _ = repo.Delete(ctx, padded.ID) })

		got, err := repo.GetByID(ctx, padded.ID)
		require.NoError(t, err)
		assert.Equal(t, "18:00 ", got.Time)
	})

	t.Run("duplicate slot on insert", func(t *testing.T) {
		err := repo.Create(ctx, &model.Showtime{Name: "Nope", Room: "RoomA", Time: "18:00"})
		assert.ErrorIs(t, err, ErrDuplicateSlot)
	})

	t.Run("duplicate slot on update", func(t *testing.T) {
		other := &model.Showtime{Name: "Alien", Room: "RoomB", Time: "20:00"}
		require.NoError(t, repo.Create(ctx, other))
		t.Cleanup(func() { _ = repo.Delete(ctx, other.ID) })

		assert.ErrorIs(t, repo.UpdateSlot(ctx, other.ID, dune.Slot()), ErrDuplicateSlot)
		require.NoError(t, repo.UpdateSlot(ctx, other.ID, model.Slot{Room: "RoomC", Time: "20:00"}))
		// rewriting the slot a row already holds still matches one row
		require.NoError(t, repo.UpdateSlot(ctx, other.ID, model.Slot{Room: "RoomC", Time: "20:00"}))
	})

	t.Run("name filter", func(t *testing.T) {
		pct := &model.Showtime{Name: "100% Dune", Room: "RoomD", Time: "21:00"}
		require.NoError(t, repo.Create(ctx, pct))
		t.Cleanup(func() { _ = repo.Delete(ctx, pct.ID) })

		all, err := repo.List(ctx, "")
		require.NoError(t, err)
		assert.Len(t, all, 2)

		for filter, want := range map[string]int{"Dune": 2, "dune": 0, "%": 1, "_": 0, "une": 2} {
			got, err := repo.List(ctx, filter)
			require.NoError(t, err)
			assert.Len(t, got, want, filter)
		}
	})

	t.Run("missing rows", func(t *testing.T) {
		_, err := repo.GetByID(ctx, 1<<40)
		assert.ErrorIs(t, err, ErrShowtimeNotFound)
		assert.ErrorIs(t, repo.UpdateSlot(ctx, 1<<40, model.Slot{Room: "X", Time: "Y"}), ErrShowtimeNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, 1<<40), ErrShowtimeNotFound)
	})

	t.Run("delete frees the slot", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, dune.ID))
		n, err := repo.CountBySlot(ctx, dune.Slot())
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.ErrorIs(t, repo.Delete(ctx, dune.ID), ErrShowtimeNotFound)
	})
}

func TestMovieRepo_MySQL(t *testing.T) {
	db := mysqlDB(t)
	ctx := context.Background()
	repo := NewMovieRepo(db)

	dune := &model.Movie{Name: "Dune", Synopsis: "Spice.", Genre: "Sci-Fi"}
	require.NoError(t, repo.Create(ctx, dune))
	require.NoError(t, repo.Create(ctx, &model.Movie{Name: "Dune ", Genre: "Sci-Fi"}))
	require.NoError(t, repo.Create(ctx, &model.Movie{Name: "Alien", Genre: "Horror"}))

	got, err := repo.Search(ctx, "Dune")
	require.NoError(t, err)
	assert.Len(t, got, 2, "movie names need not be unique")
	got, err = repo.Search(ctx, "dune")
	require.NoError(t, err)
	assert.Empty(t, got)

	// identical values still count as one matched row
	require.NoError(t, repo.Update(ctx, dune))

	dune.Synopsis = "Spice must flow."
	require.NoError(t, repo.Update(ctx, dune))
	loaded, err := repo.GetByID(ctx, dune.ID)
	require.NoError(t, err)
	assert.Equal(t, *dune, *loaded)

	assert.ErrorIs(t, repo.Update(ctx, &model.Movie{ID: 1 << 40, Name: "X"}), ErrMovieNotFound)
	require.NoError(t, repo.Delete(ctx, dune.ID))
	assert.ErrorIs(t, repo.Delete(ctx, dune.ID), ErrMovieNotFound)
	_, err = repo.GetByID(ctx, dune.ID)
	assert.ErrorIs(t, err, ErrMovieNotFound)
}
