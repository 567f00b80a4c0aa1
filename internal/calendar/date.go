// Package calendar holds the gym's notion of a day.
//
// A Date is a plain calendar date (year, month, day) with no time-of-day and no
// timezone. Workouts and scores are keyed by it, so it must never be derived from a
// UTC instant: convert the instant into the gym's location first (see Today and FromTime).
package calendar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	dashedLayout = "2006-01-02"
	monthLayout  = "2006-01"
)

// ErrInvalidDate is returned when a string is not a recognised calendar key.
var ErrInvalidDate = errors.New("invalid calendar date")

// Date is a calendar day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// New builds a Date, normalising overflow the way time.Date does (Feb 30 -> Mar 2).
func New(year int, month time.Month, day int) Date {
	return FromTime(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// FromTime takes the calendar components of t in t's own location.
// Callers are expected to have moved t into the gym timezone already.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the current date in loc. A nil loc means time.Local.
func Today(loc *time.Location) Date {
	if loc == nil {
		loc = time.Local
	}
	return FromTime(time.Now().In(loc))
}

// Compact returns the YYMMDD key used to index workouts client side, e.g. "250519".
func (d Date) Compact() string {
	return fmt.Sprintf("%02d%02d%02d", d.Year%100, int(d.Month), d.Day)
}

// Dashed returns the YYYY-MM-DD key used as the store filter value, e.g. "2025-05-19".
func (d Date) Dashed() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) String() string {
	return d.Dashed()
}

// MonthRange returns the first and last day of d's month.
func (d Date) MonthRange() (first, last Date) {
	first = Date{Year: d.Year, Month: d.Month, Day: 1}
	last = New(d.Year, d.Month+1, 0)
	return first, last
}

// MarshalText implements encoding.TextMarshaler using the dashed key.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.Dashed()), nil
}

// UnmarshalText accepts either key format.
func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDashed parses a YYYY-MM-DD key.
func ParseDashed(s string) (Date, error) {
	t, err := time.Parse(dashedLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return FromTime(t), nil
}

// ParseCompact parses a YYMMDD key. Two-digit years are read as 2000-2099.
func ParseCompact(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if len(s) != 6 {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	year := 2000 + n/10000
	month := time.Month(n / 100 % 100)
	day := n % 100

	d := New(year, month, day)
	// reject values time.Date silently normalised, like 251332
	if d.Month != month || d.Day != day {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return d, nil
}

// Parse accepts a dashed or a compact key.
func Parse(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if len(s) == 6 && !strings.Contains(s, "-") {
		return ParseCompact(s)
	}
	return ParseDashed(s)
}

// ParseMonth parses YYYY-MM and returns the first day of that month.
func ParseMonth(s string) (Date, error) {
	t, err := time.Parse(monthLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: month %q", ErrInvalidDate, s)
	}
	return FromTime(t), nil
}
