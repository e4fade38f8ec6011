// Package checkin fires jittered "how is it going" prompts inside a daily time
// window on the enabled weekdays.
package checkin

import (
	"io"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/sandeepkv93/duecast/internal/clock"
	"github.com/sandeepkv93/duecast/internal/notify"
)

const (
	minJitter = 0.75
	maxJitter = 1.25
)

type Message struct {
	Title string
	Body  string
}

var Messages = []Message{
	{Title: "Check-in", Body: "How is it going? Take a second to look at what's next."},
	{Title: "Quick check-in", Body: "Is the task you're on still the most important one?"},
	{Title: "Time for a check-in", Body: "Mark off anything you've finished since the last check-in."},
	{Title: "Still on track?", Body: "If something is stuck, break it into a smaller task."},
}

// Config describes when check-ins may fire. Days is indexed by time.Weekday.
type Config struct {
	Start    string
	End      string
	Interval time.Duration
	Days     [7]bool
	Enabled  bool
}

func DefaultConfig() Config {
	return Config{
		Start:    "09:00",
		End:      "17:00",
		Interval: time.Hour,
		Days:     [7]bool{false, true, true, true, true, true, false},
		Enabled:  true,
	}
}

type Options struct {
	Clock  clock.Clock
	Rand   func() float64
	Logger *log.Logger
}

type Scheduler struct {
	mu       sync.Mutex
	cfg      Config
	clock    clock.Clock
	rand     func() float64
	notifier notify.Notifier
	logger   *log.Logger

	timer clock.Timer
	// gen changes whenever the pending timer is replaced or cancelled.
	gen   uint64
	fired uint64
}

func New(cfg Config, notifier notify.Notifier, opts Options) *Scheduler {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}
	if opts.Rand == nil {
		opts.Rand = rand.Float64
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	return &Scheduler{
		cfg:      cfg,
		clock:    opts.Clock,
		rand:     opts.Rand,
		notifier: notifier,
		logger:   opts.Logger,
	}
}

// Start arms the next check-in. It does nothing when one is already pending,
// and leaves the scheduler idle when the next slot falls outside the window.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		return
	}
	s.armLocked()
}

// OnFocus restarts an idle scheduler when the user comes back to the app.
func (s *Scheduler) OnFocus() {
	s.Start()
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

// Fired reports how many check-ins have gone off.
func (s *Scheduler) Fired() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fired
}

func (s *Scheduler) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

func (s *Scheduler) SetStartTime(hhmm string) {
	s.update(func(c *Config) { c.Start = hhmm })
}

func (s *Scheduler) SetEndTime(hhmm string) {
	s.update(func(c *Config) { c.End = hhmm })
}

func (s *Scheduler) SetInterval(d time.Duration) {
	s.update(func(c *Config) { c.Interval = d })
}

func (s *Scheduler) SetDaysEnabled(days [7]bool) {
	s.update(func(c *Config) { c.Days = days })
}

// SetEnabled gates dispatch only; the timer keeps its schedule.
func (s *Scheduler) SetEnabled(enabled bool) {
	s.update(func(c *Config) { c.Enabled = enabled })
}

func (s *Scheduler) update(fn func(*Config)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.cfg)
	if s.timer != nil {
		s.stopLocked()
		s.armLocked()
	}
}

func (s *Scheduler) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
}

func (s *Scheduler) armLocked() {
	if s.cfg.Interval <= 0 {
		return
	}
	jitter := minJitter + (maxJitter-minJitter)*s.rand()
	wait := time.Duration(float64(s.cfg.Interval) * jitter)
	now := s.clock.Now()
	if !s.inWindowLocked(now, now.Add(wait)) {
		return
	}
	s.gen++
	gen := s.gen
	s.timer = s.clock.AfterFunc(wait, func() { s.fire(gen) })
}

// inWindowLocked reports whether at falls inside [Start, End) on the day of now
// and that weekday is enabled. Unparseable bounds never match.
func (s *Scheduler) inWindowLocked(now, at time.Time) bool {
	if !s.cfg.Days[now.Weekday()] {
		return false
	}
	sh, sm, err := clock.ParseHHMM(s.cfg.Start)
	if err != nil {
		s.logger.Printf("Warning: check-in start time %q: %v", s.cfg.Start, err)
		return false
	}
	eh, em, err := clock.ParseHHMM(s.cfg.End)
	if err != nil {
		s.logger.Printf("Warning: check-in end time %q: %v", s.cfg.End, err)
		return false
	}
	start := clock.At(now, sh, sm)
	end := clock.At(now, eh, em)
	return !at.Before(start) && at.Before(end)
}

func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.timer == nil {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.fired++
	msg := Messages[int(s.rand()*float64(len(Messages)))%len(Messages)]
	enabled := s.cfg.Enabled
	s.mu.Unlock()

	if enabled {
		if err := s.notifier.Dispatch(msg.Title, msg.Body); err != nil {
			s.logger.Printf("Warning: check-in notification failed: %v", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Stopped, restarted or re-armed while dispatching.
	if gen != s.gen || s.timer != nil {
		return
	}
	now := s.clock.Now()
	if s.inWindowLocked(now, now.Add(s.cfg.Interval)) {
		s.armLocked()
	}
}
