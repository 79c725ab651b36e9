package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// DateTime is a timestamp encoded as local date-time without zone,
// e.g. "2025-03-01T10:00:00". RFC 3339 input is accepted as well.
type DateTime time.Time

func NewDateTime(t time.Time) DateTime {
	return DateTime(t)
}

func (d DateTime) Time() time.Time {
	return time.Time(d)
}

func (d DateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(d).Local().Format(DateTimeLayout))
}

func (d *DateTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date-time must be a string: %w", err)
	}
	t, err := ParseDateTime(raw)
	if err != nil {
		return err
	}
	*d = DateTime(t)
	return nil
}

func ParseDateTime(raw string) (time.Time, error) {
	if t, err := time.ParseInLocation(DateTimeLayout, raw, time.Local); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date-time %q; expected %s", raw, DateTimeLayout)
	}
	return t, nil
}
