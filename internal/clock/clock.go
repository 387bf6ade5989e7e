// Package clock provides the time source shared by the entitlement engine and
// the usage tracker, plus calendar-day helpers.
package clock

import (
	"sync"
	"time"
)

// DateLayout is the wire format of a Date.
const DateLayout = "2006-01-02"

// Date is a calendar day in YYYY-MM-DD form.
type Date string

// DateOf returns the calendar day of t in loc.
func DateOf(t time.Time, loc *time.Location) Date {
	if loc == nil {
		loc = time.Local
	}
	return Date(t.In(loc).Format(DateLayout))
}

// Valid reports whether d parses as a calendar day.
func (d Date) Valid() bool {
	_, err := time.Parse(DateLayout, string(d))
	return err == nil
}

// String returns the YYYY-MM-DD form.
func (d Date) String() string {
	return string(d)
}

// Clock is the current time source.
type Clock interface {
	Now() time.Time
	Today() Date
	Location() *time.Location
}

// System is the wall clock in a fixed location.
type System struct {
	loc *time.Location
}

// NewSystem returns a wall clock. A nil location means time.Local.
func NewSystem(loc *time.Location) *System {
	if loc == nil {
		loc = time.Local
	}
	return &System{loc: loc}
}

// Now returns the current instant.
func (s *System) Now() time.Time {
	return time.Now().In(s.loc)
}

// Today returns the current calendar day.
func (s *System) Today() Date {
	return DateOf(time.Now(), s.loc)
}

// Location returns the clock's location.
func (s *System) Location() *time.Location {
	return s.loc
}

// Manual is a settable clock for tests and simulations.
type Manual struct {
	mu  sync.RWMutex
	now time.Time
	loc *time.Location
}

// NewManual returns a clock frozen at now.
func NewManual(now time.Time) *Manual {
	return &Manual{now: now, loc: now.Location()}
}

// Now returns the frozen instant.
func (m *Manual) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.now
}

// Today returns the frozen calendar day.
func (m *Manual) Today() Date {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return DateOf(m.now, m.loc)
}

// Location returns the clock's location.
func (m *Manual) Location() *time.Location {
	return m.loc
}

// Set moves the clock to t.
func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t.In(m.loc)
}

// Advance moves the clock forward by d.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

// DaysBetween returns the number of calendar-day boundaries crossed going from
// start to now in loc. 23:59 one day to 00:01 the next is one day. Negative
// spans (clock moved backwards) return 0.
func DaysBetween(start, now time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.Local
	}
	s := start.In(loc)
	n := now.In(loc)

	sDay := time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, time.UTC)
	nDay := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)

	days := int(nDay.Sub(sDay).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
