package checkin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sadopc/clearway/internal/goal"
	"github.com/sadopc/clearway/internal/journal"
	"github.com/sadopc/clearway/internal/store"
)

type fixture struct {
	flow  *Flow
	kv    *store.Store
	goals *goal.Store
	repo  *journal.KVRepository
}

func newFixture(t *testing.T, day time.Time) *fixture {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	fx := &fixture{
		kv:    s,
		goals: goal.NewStore(s),
		repo:  journal.NewKVRepository(s),
	}
	fx.flow = NewFlow(fx.repo, fx.goals, true)
	fx.flow.now = func() time.Time { return day }
	return fx
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 9, 0, 0, 0, time.Local)
}

func (fx *fixture) complete(t *testing.T, drank bool, amount string, mood journal.Mood) Session {
	t.Helper()
	ctx := context.Background()
	if _, err := fx.flow.Dispatch(ctx, AnswerDrank{Drank: drank}); err != nil {
		t.Fatal(err)
	}
	if drank {
		if _, err := fx.flow.Dispatch(ctx, SubmitAmount{Raw: amount}); err != nil {
			t.Fatal(err)
		}
	}
	s, err := fx.flow.Dispatch(ctx, SelectFeeling{Mood: mood})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestFlowPersistsCompletion(t *testing.T) {
	fx := newFixture(t, date(2026, 10, 19))
	ctx := context.Background()
	fx.goals.SetDaysClear(ctx, 6)

	fx.flow.Start(ctx)
	s := fx.complete(t, false, "", journal.MoodFantastic)
	if s.Stage != StageCompleted || s.DaysClear != 7 {
		t.Fatalf("unexpected session %+v", s)
	}

	n, _ := fx.goals.DaysClear(ctx)
	last, _ := fx.goals.LastCheckIn(ctx)
	if n != 7 || last != "2026-10-19" {
		t.Fatalf("expected streak 7 on 2026-10-19, got %d on %q", n, last)
	}
	entries, _ := fx.repo.LoadAll(ctx)
	if len(entries) != 1 || entries[0].Feeling != journal.MoodFantastic {
		t.Fatalf("unexpected entries %+v", entries)
	}
}

func TestFlowStartCompletedWhenAlreadyCheckedIn(t *testing.T) {
	fx := newFixture(t, date(2026, 10, 19))
	ctx := context.Background()
	fx.goals.SetLastCheckIn(ctx, "2026-10-19")

	if s := fx.flow.Start(ctx); s.Stage != StageCompleted {
		t.Fatalf("expected Completed, got %s", s.Stage)
	}
	if _, err := fx.flow.Dispatch(ctx, AnswerDrank{Drank: false}); !errors.Is(err, ErrInactive) {
		t.Fatalf("expected ErrInactive, got %v", err)
	}
}

func TestFlowDoesNotDoubleCount(t *testing.T) {
	day := date(2026, 10, 19)
	first := newFixture(t, day)
	ctx := context.Background()
	first.flow.Start(ctx)

	// A second session opened before the first one finished.
	second := NewFlow(first.repo, first.goals, true)
	second.now = func() time.Time { return day }
	second.Start(ctx)

	first.complete(t, false, "", journal.MoodGood)

	if _, err := second.Dispatch(ctx, AnswerDrank{Drank: false}); err != nil {
		t.Fatal(err)
	}
	s, err := second.Dispatch(ctx, SelectFeeling{Mood: journal.MoodOkay})
	if err != nil {
		t.Fatal(err)
	}

	n, _ := first.goals.DaysClear(ctx)
	if n != 1 || s.DaysClear != 1 {
		t.Fatalf("expected streak 1, store=%d session=%d", n, s.DaysClear)
	}
	entries, _ := first.repo.LoadAll(ctx)
	if len(entries) != 1 || entries[0].Feeling != journal.MoodOkay {
		t.Fatalf("expected single updated entry, got %+v", entries)
	}
}

func TestFlowConsecutiveDays(t *testing.T) {
	fx := newFixture(t, date(2026, 10, 19))
	ctx := context.Background()
	fx.flow.Start(ctx)
	fx.complete(t, false, "", journal.MoodGood)

	fx.flow.now = func() time.Time { return date(2026, 10, 20) }
	if s := fx.flow.Refresh(ctx); s.Stage != StageInitial {
		t.Fatalf("expected Initial after rollover, got %s", s.Stage)
	}
	fx.complete(t, true, "4", journal.MoodAwful)

	fx.flow.now = func() time.Time { return date(2026, 10, 21) }
	fx.flow.Refresh(ctx)
	s := fx.complete(t, false, "", journal.MoodOkay)
	if s.DaysClear != 1 {
		t.Fatalf("expected streak 1 after reset, got %d", s.DaysClear)
	}

	entries, _ := fx.repo.LoadAll(ctx)
	if len(entries) != 3 || entries[1].Amount != 4 {
		t.Fatalf("unexpected entries %+v", entries)
	}
}

func TestFlowDrankThenTwoSoberDays(t *testing.T) {
	fx := newFixture(t, date(2026, 10, 17))
	ctx := context.Background()
	fx.flow.Start(ctx)

	days := []struct {
		day    time.Time
		drank  bool
		amount string
		mood   journal.Mood
		streak int
	}{
		{date(2026, 10, 17), true, "2", journal.MoodUnset, 0},
		{date(2026, 10, 18), false, "", journal.MoodGood, 1},
		{date(2026, 10, 19), false, "", journal.MoodFantastic, 2},
	}
	for _, d := range days {
		fx.flow.now = func() time.Time { return d.day }
		fx.flow.Refresh(ctx)
		s := fx.complete(t, d.drank, d.amount, d.mood)
		if s.DaysClear != d.streak {
			t.Fatalf("%s: days clear = %d, want %d", s.Date, s.DaysClear, d.streak)
		}
		if n, _ := fx.goals.DaysClear(ctx); n != d.streak {
			t.Fatalf("%s: stored days clear = %d, want %d", s.Date, n, d.streak)
		}
	}

	want := []journal.Entry{
		{Date: "2026-10-17", Drank: true, Amount: 2},
		{Date: "2026-10-18", Feeling: journal.MoodGood},
		{Date: "2026-10-19", Feeling: journal.MoodFantastic},
	}
	entries, err := fx.repo.LoadAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %+v", len(want), entries)
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Fatalf("entry %d: got %+v, want %+v", i, entries[i], want[i])
		}
	}
}

type brokenRepo struct{}

func (brokenRepo) Append(context.Context, journal.Entry) error {
	return journal.ErrStorageUnavailable
}
func (brokenRepo) Upsert(context.Context, journal.Entry) error {
	return journal.ErrStorageUnavailable
}
func (brokenRepo) LoadAll(context.Context) ([]journal.Entry, error) {
	return nil, journal.ErrStorageUnavailable
}

func TestFlowPersistFailureKeepsSession(t *testing.T) {
	fx := newFixture(t, date(2026, 10, 19))
	ctx := context.Background()
	fx.flow.repo = brokenRepo{}
	fx.flow.Start(ctx)

	fx.flow.Dispatch(ctx, AnswerDrank{Drank: false})
	s, err := fx.flow.Dispatch(ctx, SelectFeeling{Mood: journal.MoodGood})
	if !errors.Is(err, ErrPersist) || !errors.Is(err, journal.ErrStorageUnavailable) {
		t.Fatalf("expected wrapped persist error, got %v", err)
	}
	if s.Stage != StageCompleted {
		t.Fatalf("session should still complete, got %s", s.Stage)
	}
	// The other effects still ran.
	last, _ := fx.goals.LastCheckIn(ctx)
	if last != "2026-10-19" {
		t.Fatalf("expected check-in marked, got %q", last)
	}
}

func TestFlowRun(t *testing.T) {
	fx := newFixture(t, date(2026, 10, 19))
	ctx := context.Background()

	if _, err := fx.flow.Run(ctx, true, "", journal.MoodOkay); !errors.Is(err, ErrEmptyAmount) {
		t.Fatalf("expected ErrEmptyAmount, got %v", err)
	}
	s, err := fx.flow.Run(ctx, true, "2", journal.MoodOkay)
	if err != nil {
		t.Fatal(err)
	}
	if s.Stage != StageCompleted || s.DaysClear != 0 {
		t.Fatalf("unexpected session %+v", s)
	}
	if _, err := fx.flow.Run(ctx, false, "", journal.MoodGood); !errors.Is(err, ErrInactive) {
		t.Fatalf("expected ErrInactive on second run, got %v", err)
	}
}
