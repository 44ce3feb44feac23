// Package repository is the persistence gateway.  It defines error values
// shared by the MySQL and in-memory stores so higher layers can tell a
// missing record from a taken slot from an unreachable store.
package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/go-sql-driver/mysql"
)

// ErrShowtimeNotFound indicates that no showtime has the requested id.
var ErrShowtimeNotFound = errors.New("showtime not found")

// ErrMovieNotFound indicates that no movie has the requested id.
var ErrMovieNotFound = errors.New("movie not found")

// ErrDuplicateSlot is returned when a write would give a second showtime the
// same (room, time) pair.  It is raised by the unique key on MySQL and by the
// slot index in memory.
var ErrDuplicateSlot = errors.New("duplicate room/time slot")

// ErrUnavailable wraps failures to reach the store at all.
var ErrUnavailable = errors.New("store unavailable")

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// classify maps driver errors onto the sentinels above.  Errors it does not
// recognise are returned unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
		return fmt.Errorf("%w: %s", ErrDuplicateSlot, me.Message)
	}
	var ne net.Error
	switch {
	case errors.Is(err, driver.ErrBadConn),
		errors.Is(err, mysql.ErrInvalidConn),
		errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &ne):
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return err
}
