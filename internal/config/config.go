// Package config loads duecast settings from a TOML file and DUECAST_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	FileName     = "config.toml"
	DBFileName   = "duecast.db"
	LogFileName  = "duecast.log"
	LockFileName = "duecast.lock"
)

var ErrInvalidConfig = errors.New("config: invalid settings")

type Settings struct {
	Reminders       Reminders       `toml:"reminders"`
	CheckIn         CheckIn         `toml:"checkin"`
	Recommendations Recommendations `toml:"recommendations"`
	Suggest         Suggest         `toml:"suggest"`
	Storage         Storage         `toml:"storage"`
	Notifications   Notifications   `toml:"notifications"`
	Planner         Planner         `toml:"planner"`
}

type Reminders struct {
	Enabled bool `toml:"enabled"`
	// BufferDays is how far ahead a task counts as next up.
	BufferDays     int `toml:"buffer-days"`
	NextUpMinDueIn int `toml:"next-up-min-due-in"`
}

type CheckIn struct {
	Enabled         bool     `toml:"enabled"`
	Start           string   `toml:"start"`
	End             string   `toml:"end"`
	IntervalMinutes int      `toml:"interval-minutes"`
	Days            []string `toml:"days"`
}

type Recommendations struct {
	ListLength    int  `toml:"list-length"`
	OverdueFilter bool `toml:"overdue-filter"`
}

type Suggest struct {
	Statistic    string  `toml:"statistic"`
	MaxStdevDays float64 `toml:"max-stdev-days"`
}

type Storage struct {
	DataDir     string `toml:"data-dir"`
	DBPath      string `toml:"db-path"`
	LedgerQueue int    `toml:"ledger-queue"`
}

type Notifications struct {
	Desktop bool `toml:"desktop"`
}

type Planner struct {
	StartDay string `toml:"start-day"`
}

func Default() Settings {
	return Settings{
		Reminders: Reminders{Enabled: true, BufferDays: 3, NextUpMinDueIn: 2},
		CheckIn: CheckIn{
			Enabled:         true,
			Start:           "09:00",
			End:             "17:00",
			IntervalMinutes: 60,
			Days:            []string{"mon", "tue", "wed", "thu", "fri"},
		},
		Recommendations: Recommendations{ListLength: 8},
		Suggest:         Suggest{Statistic: "mean", MaxStdevDays: 3},
		Storage:         Storage{DataDir: DefaultDataDir(), LedgerQueue: 64},
		Notifications:   Notifications{Desktop: true},
		Planner:         Planner{StartDay: "sunday"},
	}
}

func DefaultDataDir() string {
	if dir := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); dir != "" {
		return filepath.Join(dir, "duecast")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".duecast"
	}
	return filepath.Join(home, ".local", "share", "duecast")
}

// Load reads path over the defaults. A missing file yields the defaults; keys
// the file does not set keep their default values. A relative data-dir is taken
// relative to the file.
func Load(path string) (Settings, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("read config file %s: %w", path, err)
	}

	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Settings{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return Settings{}, fmt.Errorf("config file %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	base := filepath.Dir(path)
	if meta.IsDefined("storage", "data-dir") && cfg.Storage.DataDir != "" && !filepath.IsAbs(cfg.Storage.DataDir) {
		cfg.Storage.DataDir = filepath.Join(base, cfg.Storage.DataDir)
	}
	if meta.IsDefined("storage", "db-path") && cfg.Storage.DBPath != "" && !filepath.IsAbs(cfg.Storage.DBPath) {
		cfg.Storage.DBPath = filepath.Join(base, cfg.Storage.DBPath)
	}
	return cfg, nil
}

// FromEnv applies DUECAST_* overrides on top of base. Unparseable values are ignored.
func FromEnv(base Settings) Settings {
	cfg := base
	cfg.CheckIn.Days = append([]string(nil), base.CheckIn.Days...)
	if v, ok := getEnvBool("DUECAST_REMINDERS_ENABLED"); ok {
		cfg.Reminders.Enabled = v
	}
	if v, ok := getEnvInt("DUECAST_NOTIFY_BUFFER_DAYS"); ok && v >= 0 {
		cfg.Reminders.BufferDays = v
	}
	if v, ok := getEnvInt("DUECAST_NEXTUP_MIN_DUE_IN"); ok && v >= 0 {
		cfg.Reminders.NextUpMinDueIn = v
	}
	if v, ok := getEnvBool("DUECAST_CHECKINS_ENABLED"); ok {
		cfg.CheckIn.Enabled = v
	}
	if v, ok := getEnvString("DUECAST_CHECKIN_START"); ok {
		cfg.CheckIn.Start = v
	}
	if v, ok := getEnvString("DUECAST_CHECKIN_END"); ok {
		cfg.CheckIn.End = v
	}
	if v, ok := getEnvInt("DUECAST_CHECKIN_INTERVAL_MINUTES"); ok && v > 0 {
		cfg.CheckIn.IntervalMinutes = v
	}
	if v, ok := getEnvString("DUECAST_CHECKIN_DAYS"); ok {
		cfg.CheckIn.Days = splitList(v)
	}
	if v, ok := getEnvInt("DUECAST_REC_LIST_LENGTH"); ok && v > 0 {
		cfg.Recommendations.ListLength = v
	}
	if v, ok := getEnvBool("DUECAST_OVERDUE_FILTER"); ok {
		cfg.Recommendations.OverdueFilter = v
	}
	if v, ok := getEnvString("DUECAST_SUGGEST_STATISTIC"); ok {
		cfg.Suggest.Statistic = v
	}
	if v, ok := getEnvString("DUECAST_DATA_DIR"); ok {
		cfg.Storage.DataDir = v
	}
	if v, ok := getEnvString("DUECAST_DB_PATH"); ok {
		cfg.Storage.DBPath = v
	}
	if v, ok := getEnvInt("DUECAST_LEDGER_QUEUE"); ok && v > 0 {
		cfg.Storage.LedgerQueue = v
	}
	if v, ok := getEnvBool("DUECAST_DESKTOP_NOTIFICATIONS"); ok {
		cfg.Notifications.Desktop = v
	}
	if v, ok := getEnvString("DUECAST_PLANNER_START_DAY"); ok {
		cfg.Planner.StartDay = v
	}
	return cfg
}

// Validate checks values that would make a component misbehave. Check-in
// times are not checked here; the scheduler treats a bad time as "never".
func (s Settings) Validate() error {
	var problems []string
	if s.Reminders.BufferDays < 0 {
		problems = append(problems, "reminders.buffer-days must not be negative")
	}
	if s.Reminders.NextUpMinDueIn < 0 {
		problems = append(problems, "reminders.next-up-min-due-in must not be negative")
	}
	if s.CheckIn.IntervalMinutes <= 0 {
		problems = append(problems, "checkin.interval-minutes must be positive")
	}
	if _, err := s.CheckIn.Weekdays(); err != nil {
		problems = append(problems, err.Error())
	}
	if s.Recommendations.ListLength <= 0 {
		problems = append(problems, "recommendations.list-length must be positive")
	}
	switch strings.ToLower(strings.TrimSpace(s.Suggest.Statistic)) {
	case "mean", "median":
	default:
		problems = append(problems, fmt.Sprintf("suggest.statistic %q must be mean or median", s.Suggest.Statistic))
	}
	if s.Suggest.MaxStdevDays < 0 {
		problems = append(problems, "suggest.max-stdev-days must not be negative")
	}
	if _, err := s.Planner.Weekday(); err != nil {
		problems = append(problems, err.Error())
	}
	if strings.TrimSpace(s.Storage.DataDir) == "" {
		problems = append(problems, "storage.data-dir is required")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

func (s Settings) DBPath() string {
	if s.Storage.DBPath != "" {
		return s.Storage.DBPath
	}
	return filepath.Join(s.Storage.DataDir, DBFileName)
}

func (s Settings) LogPath() string {
	return filepath.Join(s.Storage.DataDir, LogFileName)
}

func (s Settings) LockPath() string {
	return filepath.Join(s.Storage.DataDir, LockFileName)
}

func (s Settings) MaxStdev() time.Duration {
	return time.Duration(s.Suggest.MaxStdevDays * float64(24*time.Hour))
}

func (c CheckIn) Interval() time.Duration {
	return time.Duration(c.IntervalMinutes) * time.Minute
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// Weekdays converts Days into a Sunday-first enable mask.
func (c CheckIn) Weekdays() ([7]bool, error) {
	var out [7]bool
	for _, raw := range c.Days {
		d, err := ParseWeekday(raw)
		if err != nil {
			return [7]bool{}, fmt.Errorf("checkin.days: %w", err)
		}
		out[d] = true
	}
	return out, nil
}

// Weekday is the first column of the planner week.
func (p Planner) Weekday() (time.Weekday, error) {
	d, err := ParseWeekday(p.StartDay)
	if err != nil {
		return 0, fmt.Errorf("planner.start-day: %w", err)
	}
	return d, nil
}

// ParseWeekday accepts short or long English weekday names in any case.
func ParseWeekday(raw string) (time.Weekday, error) {
	d, ok := weekdayNames[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return 0, fmt.Errorf("unknown weekday %q", raw)
	}
	return d, nil
}

func splitList(raw string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvString(name string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return "", false
	}
	return raw, true
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
