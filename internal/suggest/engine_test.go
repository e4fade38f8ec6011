package suggest

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/sandeepkv93/duecast/internal/model"
	"github.com/sandeepkv93/duecast/internal/storage"
)

type memHistory struct {
	events []storage.DueEvent
	err    error
}

func (m *memHistory) ListDueEvents(_ context.Context, f storage.DueEventFilter) ([]storage.DueEvent, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]storage.DueEvent, 0)
	for _, ev := range m.events {
		if f.List != "" && ev.List != f.List {
			continue
		}
		if f.Size != nil && ev.Size != *f.Size {
			continue
		}
		if f.Importance != nil && ev.Importance != *f.Importance {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

// completion adds a create/complete pair finished late after the due date
// (negative late means early).
func (m *memHistory) completion(id, list string, size, importance int, due time.Time, late time.Duration) {
	m.events = append(m.events,
		storage.DueEvent{Kind: storage.DueEventCreate, TaskID: id, List: list, Size: size, Importance: importance, Due: due, RecordedAt: due.Add(-72 * time.Hour)},
		storage.DueEvent{Kind: storage.DueEventComplete, TaskID: id, List: list, Size: size, Importance: importance, Due: due, RecordedAt: due.Add(late)},
	)
}

func newEngine(t *testing.T, h History, cfg Config) *Engine {
	t.Helper()
	e, err := NewEngine(h, cfg)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e
}

var baseDue = time.Date(2026, 3, 2, 17, 0, 0, 0, time.UTC)

func TestSuggestOffsetNoHistoryIsZero(t *testing.T) {
	e := newEngine(t, &memHistory{}, DefaultConfig())
	for size := model.SizeTiny; size <= model.SizeHuge; size++ {
		for imp := model.ImportanceTrivial; imp <= model.ImportanceVital; imp++ {
			got, err := e.SuggestOffset(context.Background(), size, imp, "work")
			if err != nil {
				t.Fatalf("suggest: %v", err)
			}
			if got != 0 {
				t.Fatalf("expected 0 for size=%d importance=%d, got %d", size, imp, got)
			}
		}
	}
}

func TestSuggestOffsetSignFollowsLateness(t *testing.T) {
	lateHist := &memHistory{}
	earlyHist := &memHistory{}
	for i, late := range []time.Duration{26 * time.Hour, 50 * time.Hour, 3 * time.Hour} {
		id := string(rune('a' + i))
		lateHist.completion(id, "work", 2, 2, baseDue, late)
		earlyHist.completion(id, "work", 2, 2, baseDue, -late)
	}

	late, err := newEngine(t, lateHist, DefaultConfig()).SuggestOffset(context.Background(), model.SizeMedium, model.ImportanceNormal, "work")
	if err != nil {
		t.Fatalf("late suggest: %v", err)
	}
	if late > 0 {
		t.Fatalf("late history should give non-positive offset, got %d", late)
	}
	early, err := newEngine(t, earlyHist, DefaultConfig()).SuggestOffset(context.Background(), model.SizeMedium, model.ImportanceNormal, "work")
	if err != nil {
		t.Fatalf("early suggest: %v", err)
	}
	if early < 0 {
		t.Fatalf("early history should give non-negative offset, got %d", early)
	}
}

func TestSuggestTwoDaysLatePullsTwoDaysEarlier(t *testing.T) {
	h := &memHistory{}
	for _, id := range []string{"t1", "t2", "t3"} {
		h.completion(id, "work", 4, 4, baseDue, 48*time.Hour)
	}
	e := newEngine(t, h, DefaultConfig())

	s, err := e.Suggest(context.Background(), model.SizeHuge, model.ImportanceVital, "work")
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if s.OffsetDays != -2 || s.Samples != 3 || s.Scope != ScopeExact {
		t.Fatalf("unexpected suggestion: %#v", s)
	}

	tomorrow := time.Date(2026, 3, 10, 17, 0, 0, 0, time.UTC)
	if got := Apply(tomorrow, s.OffsetDays); !got.Equal(time.Date(2026, 3, 8, 17, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected applied due date: %s", got)
	}
}

func TestSuggestWidensToListScope(t *testing.T) {
	h := &memHistory{}
	h.completion("t1", "work", 0, 1, baseDue, 24*time.Hour)
	h.completion("t2", "home", 4, 4, baseDue, -96*time.Hour)
	e := newEngine(t, h, DefaultConfig())

	s, err := e.Suggest(context.Background(), model.SizeHuge, model.ImportanceVital, "work")
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if s.Scope != ScopeList || s.Samples != 1 || s.OffsetDays != -1 {
		t.Fatalf("expected list scope fallback, got %#v", s)
	}
}

func TestSuggestIgnoresUnpairedRows(t *testing.T) {
	h := &memHistory{events: []storage.DueEvent{
		{Kind: storage.DueEventCreate, TaskID: "open", List: "work", Due: baseDue},
		{Kind: storage.DueEventComplete, TaskID: "orphan", List: "work", RecordedAt: baseDue.Add(72 * time.Hour)},
	}}
	s, err := newEngine(t, h, DefaultConfig()).Suggest(context.Background(), model.SizeTiny, model.ImportanceTrivial, "work")
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if s.OffsetDays != 0 || s.Samples != 0 || s.Scope != ScopeNone {
		t.Fatalf("expected neutral suggestion, got %#v", s)
	}
}

func TestSuggestScatteredHistoryIsNeutral(t *testing.T) {
	h := &memHistory{}
	h.completion("a", "work", 1, 1, baseDue, -10*24*time.Hour)
	h.completion("b", "work", 1, 1, baseDue, 10*24*time.Hour)
	h.completion("c", "work", 1, 1, baseDue, 12*24*time.Hour)
	s, err := newEngine(t, h, DefaultConfig()).Suggest(context.Background(), model.SizeSmall, model.ImportanceLow, "work")
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if s.Scope != ScopeScattered || s.OffsetDays != 0 {
		t.Fatalf("expected scattered neutral suggestion, got %#v", s)
	}

	cfg := DefaultConfig()
	cfg.MaxStdev = 0
	s, err = newEngine(t, h, cfg).Suggest(context.Background(), model.SizeSmall, model.ImportanceLow, "work")
	if err != nil {
		t.Fatalf("suggest without guard: %v", err)
	}
	if s.OffsetDays != -4 {
		t.Fatalf("expected mean offset -4 without guard, got %#v", s)
	}
}

func TestSuggestMedianAggregator(t *testing.T) {
	h := &memHistory{}
	h.completion("a", "work", 1, 1, baseDue, 24*time.Hour)
	h.completion("b", "work", 1, 1, baseDue, 24*time.Hour)
	h.completion("c", "work", 1, 1, baseDue, 4*24*time.Hour)

	agg, err := AggregatorByName("median")
	if err != nil {
		t.Fatalf("aggregator: %v", err)
	}
	got, err := newEngine(t, h, Config{Aggregator: agg, MaxStdev: DefaultMaxStdev}).SuggestOffset(context.Background(), model.SizeSmall, model.ImportanceLow, "work")
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if got != -1 {
		t.Fatalf("median offset: got %d want -1", got)
	}
	if _, err := AggregatorByName("mode"); !errors.Is(err, ErrUnknownAggregator) {
		t.Fatalf("expected ErrUnknownAggregator, got %v", err)
	}
}

func TestSuggestPropagatesReadErrors(t *testing.T) {
	boom := errors.New("disk gone")
	_, err := newEngine(t, &memHistory{err: boom}, DefaultConfig()).SuggestOffset(context.Background(), model.SizeTiny, model.ImportanceLow, "work")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped read error, got %v", err)
	}
}

func TestSuggestOverSQLiteHistory(t *testing.T) {
	repo, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "suggest.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer repo.Close()

	ctx := t.Context()
	for _, id := range []string{"x", "y"} {
		for _, ev := range []storage.DueEvent{
			{Kind: storage.DueEventCreate, TaskID: id, List: "errands", Size: 1, Importance: 2, Due: baseDue, RecordedAt: baseDue.Add(-48 * time.Hour)},
			{Kind: storage.DueEventComplete, TaskID: id, List: "errands", Size: 1, Importance: 2, Due: baseDue, RecordedAt: baseDue.Add(-36 * time.Hour)},
		} {
			if err := repo.UpsertDueEvent(ctx, ev); err != nil {
				t.Fatalf("upsert: %v", err)
			}
		}
	}

	got, err := newEngine(t, repo, DefaultConfig()).SuggestOffset(ctx, model.SizeSmall, model.ImportanceNormal, "errands")
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if got != 2 {
		t.Fatalf("early completions should push due dates later: got %d want 2", got)
	}
}

func TestMeanAndMedian(t *testing.T) {
	if Mean(nil) != 0 || Median(nil) != 0 {
		t.Fatalf("empty aggregates should be zero")
	}
	in := []time.Duration{4 * time.Hour, time.Hour, 2 * time.Hour, 3 * time.Hour}
	if got := Mean(in); got != 150*time.Minute {
		t.Fatalf("mean: got %s", got)
	}
	if got := Median(in); got != 150*time.Minute {
		t.Fatalf("median: got %s", got)
	}
	if in[0] != 4*time.Hour {
		t.Fatalf("median must not reorder its input")
	}
}
