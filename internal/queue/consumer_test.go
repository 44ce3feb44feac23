package queue

import (
    "encoding/json"
    "os"
    "path/filepath"
    "strings"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestHandleMessage(t *testing.T) {
    dir := filepath.Join(t.TempDir(), "logs")

    scheduled, err := json.Marshal(ShowtimeEvent{
        Type: ShowtimeScheduled, ShowtimeID: 7, Name: "Dune", Room: "RoomA", Time: "18:00",
        OccurredAt: "2026-10-19T18:00:00Z",
    })
    require.NoError(t, err)
    cancelled, err := json.Marshal(ShowtimeEvent{Type: ShowtimeCancelled, ShowtimeID: 7, OccurredAt: "2026-10-19T19:00:00Z"})
    require.NoError(t, err)

    require.NoError(t, handleMessage(scheduled, dir))
    require.NoError(t, handleMessage(cancelled, dir))

    data, err := os.ReadFile(filepath.Join(dir, LogFileName))
    require.NoError(t, err)
    lines := strings.Split(strings.TrimSpace(string(data)), "\n")
    require.Len(t, lines, 2)
    assert.Equal(t, `[2026-10-19T18:00:00Z] showtime.scheduled | showtime_id=7 | movie="Dune" | room="RoomA" | time="18:00"`, lines[0])
    assert.Contains(t, lines[1], "showtime.cancelled | showtime_id=7")
}

func TestHandleMessage_Rejects(t *testing.T) {
    dir := t.TempDir()
    assert.Error(t, handleMessage([]byte("{not json"), dir))
    assert.Error(t, handleMessage([]byte(`{"showtime_id": 1}`), dir))

    _, err := os.Stat(filepath.Join(dir, LogFileName))
    assert.True(t, os.IsNotExist(err), "nothing is written for rejected messages")
}

func TestShowtimeEvent_JSON(t *testing.T) {
    body, err := json.Marshal(ShowtimeEvent{Type: ShowtimeCancelled, ShowtimeID: 3, OccurredAt: "t"})
    require.NoError(t, err)
    assert.JSONEq(t, `{"type":"showtime.cancelled","showtime_id":3,"occurred_at":"t"}`, string(body))
}
