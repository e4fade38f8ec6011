package notify

import (
	"errors"
	"reflect"
	"runtime"
	"strings"
	"testing"
)

func TestDispatcherRoutesByFocus(t *testing.T) {
	inApp := NewRecorder()
	desktop := NewRecorder()
	focused := true
	d := Dispatcher{Focused: func() bool { return focused }, InApp: inApp, Desktop: desktop}

	if err := d.Dispatch("a", "focused"); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	focused = false
	if err := d.Dispatch("b", "background"); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	if inApp.Len() != 1 || inApp.All()[0].Body != "focused" {
		t.Fatalf("unexpected in-app messages: %#v", inApp.All())
	}
	if desktop.Len() != 1 || desktop.All()[0].Title != "b" {
		t.Fatalf("unexpected desktop messages: %#v", desktop.All())
	}

	if err := (Dispatcher{}).Dispatch("x", "y"); err != nil {
		t.Fatalf("dispatcher without targets should be a no-op, got %v", err)
	}
}

func TestDesktopCommandPerPlatform(t *testing.T) {
	d := NewDesktop(true)

	name, args := d.command("linux", "Check in", "Still on track?")
	want := []string{"-u", "normal", "-t", "10000", "-a", "duecast", "Check in", "Still on track?"}
	if name != "notify-send" || !reflect.DeepEqual(args, want) {
		t.Fatalf("linux command: %s %v", name, args)
	}

	name, args = d.command("darwin", `Say "hi"`, "body")
	if name != "osascript" || len(args) != 2 || !strings.Contains(args[1], `with title "Say \"hi\""`) {
		t.Fatalf("darwin command: %s %v", name, args)
	}

	if name, _ := d.command("plan9", "t", "b"); name != "" {
		t.Fatalf("unsupported platform should produce no command, got %q", name)
	}
}

func TestDesktopDisabledAndErrors(t *testing.T) {
	calls := 0
	d := NewDesktop(false)
	d.run = func(string, ...string) error {
		calls++
		return errors.New("exit status 1")
	}
	if err := d.Dispatch("t", "b"); err != nil || calls != 0 {
		t.Fatalf("disabled notifier should not run: calls=%d err=%v", calls, err)
	}

	d.Enabled = true
	name, _ := d.command(runtime.GOOS, "t", "b")
	err := d.Dispatch("t", "b")
	switch {
	case name == "":
	case err == nil || !strings.Contains(err.Error(), "exit status 1"):
		t.Fatalf("expected wrapped exec error, got %v", err)
	}
}

func TestFuncAdapter(t *testing.T) {
	var got string
	var n Notifier = Func(func(title, body string) error {
		got = title + "|" + body
		return nil
	})
	if err := n.Dispatch("t", "b"); err != nil || got != "t|b" {
		t.Fatalf("func adapter: got %q err=%v", got, err)
	}
}
