// Package notify routes reminder and check-in messages either to the desktop
// or into the running UI, depending on whether the UI has focus.
package notify

import (
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

type Notifier interface {
	Dispatch(title, body string) error
}

// Func adapts a plain function to Notifier.
type Func func(title, body string) error

func (f Func) Dispatch(title, body string) error { return f(title, body) }

type Discard struct{}

func (Discard) Dispatch(string, string) error { return nil }

// Dispatcher sends to InApp while Focused reports true and to Desktop otherwise.
type Dispatcher struct {
	Focused func() bool
	InApp   Notifier
	Desktop Notifier
}

func (d Dispatcher) Dispatch(title, body string) error {
	target := d.Desktop
	if d.Focused != nil && d.Focused() {
		target = d.InApp
	}
	if target == nil {
		return nil
	}
	return target.Dispatch(title, body)
}

type Urgency int

const (
	UrgencyLow Urgency = iota
	UrgencyNormal
	UrgencyCritical
)

func (u Urgency) String() string {
	switch u {
	case UrgencyLow:
		return "low"
	case UrgencyCritical:
		return "critical"
	default:
		return "normal"
	}
}

// Desktop shells out to the host notifier: notify-send on Linux, osascript on macOS.
type Desktop struct {
	Enabled bool
	AppName string
	Urgency Urgency
	Timeout time.Duration

	run func(name string, args ...string) error
}

func NewDesktop(enabled bool) *Desktop {
	return &Desktop{
		Enabled: enabled,
		AppName: "duecast",
		Urgency: UrgencyNormal,
		Timeout: 10 * time.Second,
		run: func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		},
	}
}

func (d *Desktop) Dispatch(title, body string) error {
	if !d.Enabled {
		return nil
	}
	name, args := d.command(runtime.GOOS, title, body)
	if name == "" {
		return nil
	}
	if err := d.run(name, args...); err != nil {
		return fmt.Errorf("notify: %s: %w", name, err)
	}
	return nil
}

func (d *Desktop) command(goos, title, body string) (string, []string) {
	switch goos {
	case "linux":
		args := []string{"-u", d.Urgency.String()}
		if d.Timeout > 0 {
			args = append(args, "-t", strconv.Itoa(int(d.Timeout.Milliseconds())))
		}
		if d.AppName != "" {
			args = append(args, "-a", d.AppName)
		}
		args = append(args, title)
		if body != "" {
			args = append(args, body)
		}
		return "notify-send", args
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(body), escapeAppleScript(title))
		return "osascript", []string{"-e", script}
	default:
		return "", nil
	}
}

func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

type Notification struct {
	Title string
	Body  string
	At    time.Time
}

// Recorder keeps every dispatched message in memory.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
	now   func() time.Time
}

func NewRecorder() *Recorder {
	return &Recorder{now: time.Now}
}

func (r *Recorder) Dispatch(title, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now
	if r.now != nil {
		now = r.now
	}
	r.items = append(r.items, Notification{Title: title, Body: body, At: now()})
	return nil
}

func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.items...)
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.items = nil
	r.mu.Unlock()
}
