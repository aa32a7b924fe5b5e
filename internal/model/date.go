package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

const (
	dateOnlyLayout  = "2006-01-02"
	timestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

var parseLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	dateOnlyLayout,
}

// ErrInvalidDate is returned when a value cannot be read as a date.
var ErrInvalidDate = errors.New("invalid date")

// Dates lie after the zero time and within four-digit years, so every
// accepted value survives String followed by ParseDate.
var (
	minMillis = time.Time{}.UnixMilli()
	maxMillis = time.Date(9999, 12, 31, 23, 59, 59, 999000000, time.UTC).UnixMilli()
)

func inRange(t time.Time) bool {
	return t.After(time.Time{}) && t.UTC().Year() <= 9999
}

// Date is a product start date. Calendar dates keep their YYYY-MM-DD form on
// the wire; timestamps are written in UTC with millisecond precision.
type Date struct {
	time.Time
	DateOnly bool
}

// NewTimestamp returns a Date for t truncated to milliseconds in UTC.
func NewTimestamp(t time.Time) Date {
	return Date{Time: t.UTC().Truncate(time.Millisecond)}
}

// ParseDate reads s in one of the accepted layouts.
func ParseDate(s string) (Date, error) {
	for _, layout := range parseLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if !inRange(t) {
			break
		}
		if layout == dateOnlyLayout {
			return Date{Time: t, DateOnly: true}, nil
		}
		return NewTimestamp(t), nil
	}
	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// Equal reports whether d and o denote the same instant and form.
func (d Date) Equal(o Date) bool {
	return d.DateOnly == o.DateOnly && d.Time.Equal(o.Time)
}

// String formats d in its wire form; a zero Date yields "".
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	if d.DateOnly {
		return d.Time.Format(dateOnlyLayout)
	}
	return d.Time.UTC().Format(timestampLayout)
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts null, a date string, or Unix milliseconds.
func (d *Date) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*d = Date{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := ParseDate(s)
		if err != nil {
			return err
		}
		*d = v
		return nil
	}
	ms, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil || ms <= minMillis || ms > maxMillis {
		return fmt.Errorf("%w: %s", ErrInvalidDate, b)
	}
	*d = NewTimestamp(time.UnixMilli(ms))
	return nil
}
