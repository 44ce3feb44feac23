package database

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinecito/internal/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DBConfig{Host: "localhost", Port: "3305", Name: "cinecito", User: "root", Password: "p@ss"})

	parsed, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "root", parsed.User)
	assert.Equal(t, "p@ss", parsed.Passwd)
	assert.Equal(t, "tcp", parsed.Net)
	assert.Equal(t, "localhost:3305", parsed.Addr)
	assert.Equal(t, "cinecito", parsed.DBName)
	assert.True(t, parsed.ParseTime)
	assert.True(t, parsed.ClientFoundRows)
}

func TestDSN_IPv6Host(t *testing.T) {
	parsed, err := mysql.ParseDSN(DSN(config.DBConfig{Host: "::1", Port: "3306", Name: "db", User: "u"}))
	require.NoError(t, err)
	assert.Equal(t, "[::1]:3306", parsed.Addr)
}

func TestMigrationsEmbedded(t *testing.T) {
	ups, err := fs.Glob(migrationsFS, "migrations/*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(migrationsFS, "migrations/*.down.sql")
	require.NoError(t, err)
	assert.Len(t, ups, 4)
	assert.Len(t, downs, len(ups))

	body, err := fs.ReadFile(migrationsFS, "migrations/000002_create_showtimes.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(body), "UNIQUE KEY uq_showtimes_slot (room, slot_time)")
}

// utf8mb4_bin pads with spaces on comparison, so "18:00 " would collide
// with "18:00".  The slot and name columns must end up on a NO PAD collation.
func TestMigrations_SlotColumnsAreNoPad(t *testing.T) {
	for file, columns := range map[string][]string{
		"migrations/000003_showtimes_nopad_collation.up.sql": {"name", "room", "slot_time"},
		"migrations/000004_movies_nopad_collation.up.sql":    {"name", "genre"},
	} {
		body, err := fs.ReadFile(migrationsFS, file)
		require.NoError(t, err, file)
		for _, col := range columns {
			assert.Regexp(t, `MODIFY `+col+` +VARCHAR\(\d+\) +CHARACTER SET utf8mb4 COLLATE utf8mb4_0900_bin NOT NULL`, string(body), file)
		}
		assert.Equal(t, 1, strings.Count(string(body), ";"), "one statement per file: %s", file)
	}
}
