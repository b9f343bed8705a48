package goal

import (
	"context"
	"errors"
	"testing"

	"github.com/sadopc/clearway/internal/store"
)

func newTestStore(t *testing.T) (*Store, *store.Store) {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return NewStore(s), s
}

func TestGoalMetAndProgress(t *testing.T) {
	tests := []struct {
		g        Goal
		met      bool
		progress float64
	}{
		{Goal{GoalDays: 30, DaysClear: 0}, false, 0},
		{Goal{GoalDays: 30, DaysClear: 15}, false, 0.5},
		{Goal{GoalDays: 30, DaysClear: 30}, true, 1},
		{Goal{GoalDays: 30, DaysClear: 45}, true, 1},
		{Goal{GoalDays: 0, DaysClear: 3}, true, 0},
	}
	for _, tt := range tests {
		if tt.g.Met() != tt.met {
			t.Errorf("%+v: Met() = %v, want %v", tt.g, tt.g.Met(), tt.met)
		}
		if tt.g.Progress() != tt.progress {
			t.Errorf("%+v: Progress() = %v, want %v", tt.g, tt.g.Progress(), tt.progress)
		}
	}
}

func TestNextResetsOnDrink(t *testing.T) {
	n := 0
	for _, drank := range []bool{false, false, false, true, false} {
		n = Next(n, drank)
	}
	if n != 1 {
		t.Fatalf("expected streak 1 after reset, got %d", n)
	}
}

func TestLoadDefaults(t *testing.T) {
	gs, _ := newTestStore(t)
	g, err := gs.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if g.GoalDays != DefaultGoalDays || g.DaysClear != 0 {
		t.Fatalf("unexpected defaults %+v", g)
	}
}

func TestSetAndLoad(t *testing.T) {
	gs, _ := newTestStore(t)
	ctx := context.Background()

	if err := gs.SetGoalDays(ctx, 90); err != nil {
		t.Fatal(err)
	}
	if err := gs.SetDaysClear(ctx, 12); err != nil {
		t.Fatal(err)
	}
	g, _ := gs.Load(ctx)
	if g.GoalDays != 90 || g.DaysClear != 12 {
		t.Fatalf("unexpected goal %+v", g)
	}
}

func TestSetGoalDaysRejectsNonPositive(t *testing.T) {
	gs, _ := newTestStore(t)
	for _, d := range []int{0, -3} {
		if err := gs.SetGoalDays(context.Background(), d); !errors.Is(err, ErrInvalidGoal) {
			t.Fatalf("SetGoalDays(%d): expected ErrInvalidGoal, got %v", d, err)
		}
	}
}

func TestUnparseableValuesFallBack(t *testing.T) {
	gs, kv := newTestStore(t)
	ctx := context.Background()
	kv.Set(ctx, GoalDaysKey, "thirty")
	kv.Set(ctx, DaysClearKey, "")

	g, err := gs.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if g.GoalDays != DefaultGoalDays || g.DaysClear != 0 {
		t.Fatalf("expected defaults on parse failure, got %+v", g)
	}
}

func TestLastCheckIn(t *testing.T) {
	gs, _ := newTestStore(t)
	ctx := context.Background()

	d, err := gs.LastCheckIn(ctx)
	if err != nil || d != "" {
		t.Fatalf("expected empty date, got %q err=%v", d, err)
	}
	gs.SetLastCheckIn(ctx, "2026-10-19")
	d, _ = gs.LastCheckIn(ctx)
	if d != "2026-10-19" {
		t.Fatalf("unexpected date %q", d)
	}
}
