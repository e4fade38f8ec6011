package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sandeepkv93/duecast/internal/clock"
	"github.com/sandeepkv93/duecast/internal/config"
	"github.com/sandeepkv93/duecast/internal/model"
)

type Type string

const (
	TypeAdd     Type = "add"
	TypeSub     Type = "sub"
	TypeDone    Type = "done"
	TypeUndo    Type = "undo"
	TypeDelete  Type = "del"
	TypeSuggest Type = "suggest"
	TypeCheckIn Type = "checkin"
	TypeList    Type = "list"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func invalid(format string, args ...any) error {
	return &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// AddArgs describes a new task. Due is kept raw and resolved with ParseDue
// against the handler's clock.
type AddArgs struct {
	Name       string
	Size       model.Size
	Importance model.Importance
	Due        string
	List       string
}

type SubArgs struct {
	Parent string
	Task   AddArgs
}

type TargetArgs struct {
	Target string
}

type SuggestArgs struct {
	Size       model.Size
	Importance model.Importance
	List       string
}

type CheckInAction string

const (
	CheckInToggle CheckInAction = "toggle"
	CheckInWindow CheckInAction = "window"
	CheckInEvery  CheckInAction = "every"
	CheckInDays   CheckInAction = "days"
)

// CheckInArgs carries one check-in change. Only the fields of Action are set.
type CheckInArgs struct {
	Action   CheckInAction
	Enabled  bool
	Start    string
	End      string
	Interval time.Duration
	Days     [7]bool
}

type ListArgs struct {
	List string
	Name string
}

type Command struct {
	Type    Type
	Raw     string
	Add     *AddArgs
	Sub     *SubArgs
	Target  *TargetArgs
	Suggest *SuggestArgs
	CheckIn *CheckInArgs
	List    *ListArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeAdd:
		return parseAdd(input, args)
	case TypeSub:
		return parseSub(input, args)
	case TypeDone, TypeUndo, TypeDelete:
		return parseTarget(input, Type(head), args)
	case TypeSuggest:
		return parseSuggest(input, args)
	case TypeCheckIn:
		return parseCheckIn(input, args)
	case TypeList:
		return parseList(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseAdd(raw string, args []string) (Command, error) {
	task, err := parseTask(string(TypeAdd), args)
	if err != nil {
		return Command{}, err
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &task}, nil
}

func parseSub(raw string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, invalid("sub requires a parent id and a name")
	}
	task, err := parseTask(string(TypeSub), args[1:])
	if err != nil {
		return Command{}, err
	}
	return Command{Type: TypeSub, Raw: raw, Sub: &SubArgs{Parent: args[0], Task: task}}, nil
}

// parseTask splits key=value options from the words that make up the name.
func parseTask(verb string, args []string) (AddArgs, error) {
	out := AddArgs{Size: model.SizeMedium, Importance: model.ImportanceNormal}
	var words []string
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			words = append(words, arg)
			continue
		}
		switch strings.ToLower(key) {
		case "size":
			s, err := model.ParseSize(value)
			if err != nil {
				return AddArgs{}, invalid("%v", err)
			}
			out.Size = s
		case "importance", "imp":
			i, err := model.ParseImportance(value)
			if err != nil {
				return AddArgs{}, invalid("%v", err)
			}
			out.Importance = i
		case "due":
			out.Due = value
		case "list":
			out.List = value
		default:
			words = append(words, arg)
		}
	}
	out.Name = strings.TrimSpace(strings.Join(words, " "))
	if out.Name == "" {
		return AddArgs{}, invalid("%s requires a name", verb)
	}
	return out, nil
}

func parseTarget(raw string, typ Type, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, invalid("%s requires exactly one task id", typ)
	}
	return Command{Type: typ, Raw: raw, Target: &TargetArgs{Target: args[0]}}, nil
}

func parseSuggest(raw string, args []string) (Command, error) {
	out := SuggestArgs{Size: model.SizeMedium, Importance: model.ImportanceNormal}
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return Command{}, invalid("suggest takes key=value options, got %q", arg)
		}
		switch strings.ToLower(key) {
		case "size":
			s, err := model.ParseSize(value)
			if err != nil {
				return Command{}, invalid("%v", err)
			}
			out.Size = s
		case "importance", "imp":
			i, err := model.ParseImportance(value)
			if err != nil {
				return Command{}, invalid("%v", err)
			}
			out.Importance = i
		case "list":
			out.List = value
		default:
			return Command{}, invalid("unknown suggest option %q", key)
		}
	}
	return Command{Type: TypeSuggest, Raw: raw, Suggest: &out}, nil
}

func parseCheckIn(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, invalid("checkin requires on, off, window, every or days")
	}
	out := CheckInArgs{Action: CheckInToggle}
	switch verb, rest := strings.ToLower(args[0]), args[1:]; verb {
	case "on", "off":
		if len(rest) != 0 {
			return Command{}, invalid("checkin %s takes no arguments", verb)
		}
		out.Enabled = verb == "on"
	case "window":
		if len(rest) != 2 {
			return Command{}, invalid("checkin window requires a start and an end, e.g. 09:00 17:00")
		}
		for _, hhmm := range rest {
			if _, _, err := clock.ParseHHMM(hhmm); err != nil {
				return Command{}, invalid("%v", err)
			}
		}
		out.Action, out.Start, out.End = CheckInWindow, rest[0], rest[1]
	case "every":
		if len(rest) != 1 {
			return Command{}, invalid("checkin every requires a number of minutes")
		}
		minutes, err := strconv.Atoi(strings.TrimSuffix(strings.ToLower(rest[0]), "m"))
		if err != nil || minutes <= 0 {
			return Command{}, invalid("checkin every requires a positive number of minutes, got %q", rest[0])
		}
		out.Action, out.Interval = CheckInEvery, time.Duration(minutes)*time.Minute
	case "days":
		if len(rest) == 0 {
			return Command{}, invalid("checkin days requires weekdays, e.g. mon,wed,fri")
		}
		for _, name := range strings.FieldsFunc(strings.Join(rest, ","), func(r rune) bool { return r == ',' }) {
			d, err := config.ParseWeekday(name)
			if err != nil {
				return Command{}, invalid("checkin days: %v", err)
			}
			out.Days[d] = true
		}
		out.Action = CheckInDays
	default:
		return Command{}, invalid("checkin requires on, off, window, every or days, got %q", args[0])
	}
	return Command{Type: TypeCheckIn, Raw: raw, CheckIn: &out}, nil
}

func parseList(raw string, args []string) (Command, error) {
	if len(args) < 3 || strings.ToLower(args[0]) != "rename" {
		return Command{}, invalid("list requires: rename <list> <new name>")
	}
	return Command{Type: TypeList, Raw: raw, List: &ListArgs{List: args[1], Name: strings.Join(args[2:], " ")}}, nil
}

// ParseDue resolves a due-date expression relative to now. Accepted forms are
// "today", "tomorrow", "+Nd"/"-Nd", a date (YYYY-MM-DD, keeping now's time of
// day) and a date with time (YYYY-MM-DDTHH:MM). Empty means tomorrow.
func ParseDue(raw string, now time.Time) (time.Time, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	switch raw {
	case "", "tomorrow":
		return clock.AddDays(now, 1), nil
	case "today":
		return now, nil
	}
	if strings.HasSuffix(raw, "d") && (strings.HasPrefix(raw, "+") || strings.HasPrefix(raw, "-")) {
		n, err := strconv.Atoi(strings.TrimSuffix(raw, "d"))
		if err != nil {
			return time.Time{}, invalid("bad relative due date %q", raw)
		}
		return clock.AddDays(now, n), nil
	}
	if day, err := time.ParseInLocation("2006-01-02", raw, now.Location()); err == nil {
		return clock.At(day, now.Hour(), now.Minute()), nil
	}
	for _, layout := range []string{"2006-01-02t15:04", "2006-01-02 15:04"} {
		if at, err := time.ParseInLocation(layout, raw, now.Location()); err == nil {
			return at, nil
		}
	}
	return time.Time{}, invalid("unrecognised due date %q", raw)
}
