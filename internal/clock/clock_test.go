package clock

import (
	"errors"
	"testing"
	"time"
)

func TestDueIn(t *testing.T) {
	loc := time.FixedZone("test", -5*3600)
	now := time.Date(2026, 3, 10, 22, 30, 0, 0, loc)
	cases := []struct {
		name string
		due  time.Time
		want int
	}{
		{"same day early", time.Date(2026, 3, 10, 0, 5, 0, 0, loc), 0},
		{"same day late", time.Date(2026, 3, 10, 23, 59, 0, 0, loc), 0},
		{"tomorrow morning", time.Date(2026, 3, 11, 1, 0, 0, 0, loc), 1},
		{"yesterday", time.Date(2026, 3, 9, 23, 0, 0, 0, loc), -1},
		{"two days ago", time.Date(2026, 3, 8, 12, 0, 0, 0, loc), -2},
		{"next month", time.Date(2026, 4, 10, 9, 0, 0, 0, loc), 31},
	}
	for _, tc := range cases {
		if got := DueIn(now, tc.due); got != tc.want {
			t.Fatalf("%s: DueIn = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestDueInAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	now := time.Date(2026, 3, 7, 12, 0, 0, 0, loc)
	due := time.Date(2026, 3, 9, 0, 30, 0, 0, loc)
	if got := DueIn(now, due); got != 2 {
		t.Fatalf("DueIn across DST = %d, want 2", got)
	}
}

func TestParseHHMM(t *testing.T) {
	h, m, err := ParseHHMM("09:05")
	if err != nil || h != 9 || m != 5 {
		t.Fatalf("ParseHHMM(09:05) = %d, %d, %v", h, m, err)
	}
	for _, bad := range []string{"", "9", "24:00", "12:60", "ab:cd", "12:5", "1:2:3"} {
		if _, _, err := ParseHHMM(bad); !errors.Is(err, ErrInvalidClockTime) {
			t.Fatalf("ParseHHMM(%q) expected ErrInvalidClockTime, got %v", bad, err)
		}
	}
}

func TestFormatDue(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	cases := map[int]string{0: "today", 1: "tomorrow", -1: "yesterday", 4: "in 4 days", -3: "3 days ago"}
	for days, want := range cases {
		if got := FormatDue(now, now.AddDate(0, 0, days)); got != want {
			t.Fatalf("FormatDue(%d) = %q, want %q", days, got, want)
		}
	}
}

func TestManualClockFiresInOrder(t *testing.T) {
	c := NewManual(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	var fired []string
	c.AfterFunc(2*time.Minute, func() { fired = append(fired, "second") })
	c.AfterFunc(time.Minute, func() { fired = append(fired, "first") })
	stopped := c.AfterFunc(90*time.Second, func() { fired = append(fired, "stopped") })
	if !stopped.Stop() {
		t.Fatal("expected Stop to report a pending timer")
	}
	c.Advance(3 * time.Minute)
	if len(fired) != 2 || fired[0] != "first" || fired[1] != "second" {
		t.Fatalf("unexpected firing order: %v", fired)
	}
	if c.Pending() != 0 {
		t.Fatalf("expected no pending timers, got %d", c.Pending())
	}
}
