// Package daywindow turns calendar dates into local day intervals and owns the
// weekday convention used by every recurrence template: Monday=0 .. Sunday=6.
//
// time.Weekday (Sunday=0) is converted exactly once, in IndexOf. Nothing else
// in the module should call Weekday() on a time and use the result directly.
package daywindow

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// MaxRangeDays bounds history queries.
const MaxRangeDays = 92

var ErrInvalidDate = errors.New("invalid date")

// Weekday is the canonical 0-indexed weekday, Monday first.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayColumns = [7]string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// IndexOf maps Go's Sunday-first weekday onto the canonical index.
func IndexOf(wd time.Weekday) Weekday {
	return Weekday((int(wd) + 6) % 7)
}

// Valid reports whether w is within 0..6.
func (w Weekday) Valid() bool {
	return w >= Monday && w <= Sunday
}

// Column is the lowercase English day name, which is also the boolean column
// name used by weekday-flag templates.
func (w Weekday) Column() string {
	if !w.Valid() {
		return ""
	}
	return weekdayColumns[w]
}

func (w Weekday) String() string {
	c := w.Column()
	if c == "" {
		return fmt.Sprintf("Weekday(%d)", int(w))
	}
	return strings.ToUpper(c[:1]) + c[1:]
}

// ParseWeekday validates a raw index coming from a request body.
func ParseWeekday(i int) (Weekday, error) {
	w := Weekday(i)
	if !w.Valid() {
		return 0, fmt.Errorf("weekday %d out of range 0..6 (0=Monday)", i)
	}
	return w, nil
}

// Window is one local calendar day as a half-open interval [Start, End).
type Window struct {
	Date    string
	Start   time.Time
	End     time.Time
	Weekday Weekday
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock is the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// Resolver builds day windows in a fixed location.
type Resolver struct {
	loc   *time.Location
	clock Clock
}

// NewResolver returns a resolver for loc. A nil loc means UTC, a nil clock
// means the system clock.
func NewResolver(loc *time.Location, clock Clock) *Resolver {
	if loc == nil {
		loc = time.UTC
	}
	if clock == nil {
		clock = SystemClock
	}
	return &Resolver{loc: loc, clock: clock}
}

// NewResolverForZone loads the named IANA zone.
func NewResolverForZone(name string, clock Clock) (*Resolver, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", name, err)
	}
	return NewResolver(loc, clock), nil
}

// Now is the current time in the resolver's location.
func (r *Resolver) Now() time.Time { return r.clock.Now().In(r.loc) }

// Resolve parses a YYYY-MM-DD date.
func (r *Resolver) Resolve(date string) (Window, error) {
	date = strings.TrimSpace(date)
	t, err := time.ParseInLocation(DateLayout, date, r.loc)
	if err != nil {
		return Window{}, fmt.Errorf("%w: %q (expected YYYY-MM-DD)", ErrInvalidDate, date)
	}
	return r.ForTime(t), nil
}

// ResolveOrToday resolves date, falling back to today when date is empty.
func (r *Resolver) ResolveOrToday(date string) (Window, error) {
	if strings.TrimSpace(date) == "" {
		return r.Today(), nil
	}
	return r.Resolve(date)
}

// Today is the window containing the current instant.
func (r *Resolver) Today() Window {
	return r.ForTime(r.Now())
}

// ForTime returns the window of the local day containing t.
func (r *Resolver) ForTime(t time.Time) Window {
	t = t.In(r.loc)
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, r.loc)
	// AddDate-style construction keeps DST days at 23 or 25 hours.
	end := time.Date(y, m, d+1, 0, 0, 0, 0, r.loc)
	return Window{
		Date:    start.Format(DateLayout),
		Start:   start,
		End:     end,
		Weekday: IndexOf(start.Weekday()),
	}
}

// ResolveRange returns [start of from, end of to). Both bounds are inclusive
// calendar days.
func (r *Resolver) ResolveRange(from, to string) (time.Time, time.Time, error) {
	fw, err := r.Resolve(from)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	tw, err := r.Resolve(to)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if tw.Start.Before(fw.Start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: from %s is after to %s", ErrInvalidDate, from, to)
	}
	if tw.Start.Sub(fw.Start) > MaxRangeDays*24*time.Hour {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: range exceeds %d days", ErrInvalidDate, MaxRangeDays)
	}
	return fw.Start, tw.End, nil
}
