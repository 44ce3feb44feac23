package model

import "strconv"

// Showtime is a scheduled screening: a movie title shown in a room at a time.
// Name is the title as scheduled, not a reference to a Movie row.  Time is an
// opaque token compared by exact equality; "18:00" and "18:05" never conflict.
//
// Fields:
//  ID   – store-assigned identifier.
//  Name – movie title as scheduled.
//  Room – room label.
//  Time – scheduling token.
type Showtime struct {
    ID   uint64 `db:"id" json:"id"`          // showtimes.id
    Name string `db:"name" json:"name"`      // showtimes.name
    Room string `db:"room" json:"room"`      // showtimes.room
    Time string `db:"slot_time" json:"time"` // showtimes.slot_time
}

// Slot returns the (room, time) pair the showtime occupies.
func (s Showtime) Slot() Slot {
    return Slot{Room: s.Room, Time: s.Time}
}

// Slot is the (room, time) pair held by at most one showtime.
type Slot struct {
    Room string `json:"room"`
    Time string `json:"time"`
}

// Key is the lock key for the slot.  The separator cannot be confused with
// a prefix of another pair because the room length is encoded.
func (s Slot) Key() string {
    return "slot:" + strconv.Itoa(len(s.Room)) + ":" + s.Room + "|" + s.Time
}
