package model

import (
	"fmt"
	"strings"
	"time"
)

// NOTE: This file provides the calendar value types. Everything here is a
// plain value with minute precision; the engine (internal/calendar) owns all
// mutable state.

// TimeOfDay is a wall-clock time within a single day, in whole minutes
// since midnight.
type TimeOfDay int

const (
	// Midnight is the first representable time of a day.
	Midnight TimeOfDay = 0

	// EndOfDay is the terminus of a day ("24:00"). It is only valid as the
	// end of an event or segment, never as a start.
	EndOfDay TimeOfDay = 24 * 60
)

// TimeOfDayOf extracts the time-of-day from t, truncated to the minute.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*60 + t.Minute())
}

// ParseTimeOfDay parses "15:04" style input. The parsed value is always
// strictly below EndOfDay.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	return TimeOfDayOf(t), nil
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

// Valid reports whether t lies within a single day, EndOfDay included.
func (t TimeOfDay) Valid() bool { return t >= Midnight && t <= EndOfDay }

// Add returns t shifted forward by the given number of minutes. The result
// may exceed EndOfDay; callers decide what an out-of-day value means.
func (t TimeOfDay) Add(minutes int) TimeOfDay { return t + TimeOfDay(minutes) }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// Date is a civil calendar date. It is comparable and therefore usable as a
// map key.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf extracts the civil date from t.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses "2006-01-02" style input.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// Next returns the following calendar day, rolling over months and years.
func (d Date) Next() Date {
	return DateOf(d.At(Midnight, time.UTC).AddDate(0, 0, 1))
}

func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

func (d Date) After(o Date) bool { return o.Before(d) }

// At returns the instant for this date and time-of-day in loc. EndOfDay
// normalizes to midnight of the following day.
func (d Date) At(t TimeOfDay, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, int(t), 0, 0, loc)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// DateTime combines a civil date with a time-of-day.
type DateTime struct {
	Date Date
	Time TimeOfDay
}

// ParseDateTime parses "2006-01-02 15:04" input; a "T" separator is
// accepted as well, which is the form used by the persistence layer.
func ParseDateTime(s string) (DateTime, error) {
	s = strings.Replace(strings.TrimSpace(s), "T", " ", 1)
	t, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		return DateTime{}, err
	}
	return DateTime{Date: DateOf(t), Time: TimeOfDayOf(t)}, nil
}

func (dt DateTime) After(o DateTime) bool {
	if dt.Date != o.Date {
		return dt.Date.After(o.Date)
	}
	return dt.Time > o.Time
}

func (dt DateTime) String() string {
	return dt.Date.String() + " " + dt.Time.String()
}

// InvalidIntervalError reports an interval whose start is not strictly
// before its end.
type InvalidIntervalError struct {
	Start string
	End   string
}

func (e *InvalidIntervalError) Error() string {
	return fmt.Sprintf("invalid interval: start %s is not before end %s", e.Start, e.End)
}

// Event is a titled half-open interval within a single day. Immutable after
// construction; the start < end invariant is enforced by NewEvent and cannot
// be broken afterwards.
type Event struct {
	title string
	start TimeOfDay
	end   TimeOfDay
}

// NewEvent builds an Event, rejecting intervals where start is not strictly
// before end or where either bound falls outside the day.
func NewEvent(title string, start, end TimeOfDay) (Event, error) {
	if !start.Valid() || !end.Valid() || start >= end {
		return Event{}, &InvalidIntervalError{Start: start.String(), End: end.String()}
	}
	return Event{title: title, start: start, end: end}, nil
}

func (e Event) Title() string    { return e.title }
func (e Event) Start() TimeOfDay { return e.start }
func (e Event) End() TimeOfDay   { return e.end }

// Overlaps reports open-interval overlap; touching endpoints do not count.
func (e Event) Overlaps(o Event) bool {
	return e.start < o.end && e.end > o.start
}

// Less orders events by start time, then end time. This is the total order
// used by the per-day collections.
func (e Event) Less(o Event) bool {
	if e.start != o.start {
		return e.start < o.start
	}
	return e.end < o.end
}

func (e Event) String() string {
	return fmt.Sprintf("%s %s-%s", e.title, e.start, e.end)
}
