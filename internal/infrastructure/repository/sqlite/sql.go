package sqlite

import (
	"database/sql"
	"errors"
	"time"
)

const timeLayout = "2006-01-02T15:04:05Z"

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// Timestamps are stored as UTC ISO8601 text; the Z suffix makes the driver
// round-trip them as UTC.
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
