// Package queue defines showtime events exchanged over RabbitMQ, the
// publisher used by the scheduler and the consumer that records them.
package queue

// EventType names what happened to a showtime.
type EventType string

const (
    ShowtimeScheduled   EventType = "showtime.scheduled"
    ShowtimeRescheduled EventType = "showtime.rescheduled"
    ShowtimeCancelled   EventType = "showtime.cancelled"
)

// ShowtimeEvent is published after a successful scheduler write.  Name is
// empty for cancellations because the row is already gone.
type ShowtimeEvent struct {
    Type       EventType `json:"type"`
    ShowtimeID uint64    `json:"showtime_id"`
    Name       string    `json:"name,omitempty"`
    Room       string    `json:"room,omitempty"`
    Time       string    `json:"time,omitempty"`
    OccurredAt string    `json:"occurred_at"`
}
