package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// dateOnly is accepted alongside RFC 3339 for calendar dates.
const dateOnly = "2006-01-02"

// Time is a JSON timestamp that also accepts bare YYYY-MM-DD dates,
// interpreted as midnight UTC.
type Time struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Time) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}

	if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
		t.Time = parsed.UTC()
		return nil
	}
	parsed, err := time.ParseInLocation(dateOnly, s, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid date %q: use RFC 3339 or YYYY-MM-DD", s)
	}
	t.Time = parsed
	return nil
}

// Ptr returns the wrapped time, or nil when t is nil.
func (t *Time) Ptr() *time.Time {
	if t == nil {
		return nil
	}
	v := t.Time
	return &v
}
