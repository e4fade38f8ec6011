// Package clock holds the calendar arithmetic shared by the schedulers and views.
package clock

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidClockTime = errors.New("clock: invalid HH:MM time")

// Timer is a pending one-shot callback.
type Timer interface {
	Stop() bool
}

// Clock abstracts wall time and one-shot timers so schedulers can be driven by tests.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type System struct{}

func (System) Now() time.Time { return time.Now() }

func (System) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// StartOfDay returns local midnight of t in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DueIn returns the number of calendar days from the day of now to the day of due.
// Negative values mean the due date has passed.
func DueIn(now, due time.Time) int {
	due = due.In(now.Location())
	ny, nm, nd := now.Date()
	dy, dm, dd := due.Date()
	// Noon UTC avoids DST gaps when counting days.
	a := time.Date(ny, nm, nd, 12, 0, 0, 0, time.UTC)
	b := time.Date(dy, dm, dd, 12, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ParseHHMM parses a 24-hour "HH:MM" wall clock time.
func ParseHHMM(raw string) (int, int, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 2 || len(parts[0]) == 0 || len(parts[1]) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidClockTime, raw)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidClockTime, raw)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidClockTime, raw)
	}
	return hour, minute, nil
}

// At returns hour:minute on day's calendar date.
func At(day time.Time, hour, minute int) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, hour, minute, 0, 0, day.Location())
}

// AddDays shifts t by whole calendar days, keeping the wall clock time.
func AddDays(t time.Time, days int) time.Time {
	return t.AddDate(0, 0, days)
}

func FormatDue(now, due time.Time) string {
	n := DueIn(now, due)
	switch {
	case n == 0:
		return "today"
	case n == 1:
		return "tomorrow"
	case n == -1:
		return "yesterday"
	case n > 1:
		return fmt.Sprintf("in %d days", n)
	default:
		return fmt.Sprintf("%d days ago", -n)
	}
}
