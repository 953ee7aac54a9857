package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// ClockTime is a day-local time of day, stored as minutes since midnight.
// The calendar provider normalizes all times to the user's day before they
// reach this package, so no timezone handling happens here.
type ClockTime int

// MinutesPerDay bounds every valid ClockTime: [0, MinutesPerDay).
const MinutesPerDay = 24 * 60

// ParseClockTime parses an "HH:MM" string (24-hour). Trailing text and
// out-of-range fields are rejected.
func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("parsing clock time %q: %w", s, err)
	}
	return ClockTime(t.Hour()*60 + t.Minute()), nil
}

// ClockTimeOf truncates a wall time to its day-local clock time.
func ClockTimeOf(t time.Time) ClockTime {
	return ClockTime(t.Hour()*60 + t.Minute())
}

// Valid reports whether the time falls within a single day.
func (c ClockTime) Valid() bool {
	return c >= 0 && c < MinutesPerDay
}

// Add returns the clock time n minutes later. The result may exceed the day
// boundary; callers that require a same-day slot must check Valid.
func (c ClockTime) Add(n int) ClockTime {
	return c + ClockTime(n)
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// MarshalJSON renders the time as "HH:MM".
func (c ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON accepts an "HH:MM" string.
func (c *ClockTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseClockTime(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// FormatElapsed renders an elapsed-seconds counter as MM:SS, or H:MM:SS once
// it passes the hour mark. Matches the in-progress timer display upstream.
func FormatElapsed(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	hrs := seconds / 3600
	mins := (seconds % 3600) / 60
	secs := seconds % 60
	if hrs > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hrs, mins, secs)
	}
	return fmt.Sprintf("%02d:%02d", mins, secs)
}
