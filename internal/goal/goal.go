package goal

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/sadopc/clearway/internal/logger"
)

// Keys in the on-device store.
const (
	GoalDaysKey    = "goalDays"
	DaysClearKey   = "daysClear"
	LastCheckInKey = "lastCheckInDate"

	DefaultGoalDays = 30
)

var ErrInvalidGoal = errors.New("goal must be at least one day")

// Goal is the user's sobriety target and current streak.
type Goal struct {
	GoalDays  int
	DaysClear int
}

func (g Goal) Met() bool {
	return g.DaysClear >= g.GoalDays
}

// Progress is DaysClear/GoalDays clamped to [0, 1].
func (g Goal) Progress() float64 {
	if g.GoalDays <= 0 {
		return 0
	}
	p := float64(g.DaysClear) / float64(g.GoalDays)
	return min(max(p, 0), 1)
}

// Next is the streak after one more check-in.
func Next(daysClear int, drank bool) int {
	if drank {
		return 0
	}
	return daysClear + 1
}

type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Store reads and writes goal state as string-encoded integers.
type Store struct {
	kv KV
}

func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

func (s *Store) Load(ctx context.Context) (Goal, error) {
	days, err := s.intValue(ctx, GoalDaysKey, DefaultGoalDays)
	if err != nil {
		return Goal{}, err
	}
	streak, err := s.DaysClear(ctx)
	if err != nil {
		return Goal{}, err
	}
	if days < 1 {
		days = DefaultGoalDays
	}
	return Goal{GoalDays: days, DaysClear: streak}, nil
}

func (s *Store) SetGoalDays(ctx context.Context, days int) error {
	if days < 1 {
		return ErrInvalidGoal
	}
	return s.kv.Set(ctx, GoalDaysKey, strconv.Itoa(days))
}

func (s *Store) DaysClear(ctx context.Context) (int, error) {
	n, err := s.intValue(ctx, DaysClearKey, 0)
	return max(n, 0), err
}

func (s *Store) SetDaysClear(ctx context.Context, n int) error {
	return s.kv.Set(ctx, DaysClearKey, strconv.Itoa(max(n, 0)))
}

// LastCheckIn returns the date of the last completed check-in, or "".
func (s *Store) LastCheckIn(ctx context.Context) (string, error) {
	v, _, err := s.kv.Get(ctx, LastCheckInKey)
	if err != nil {
		return "", fmt.Errorf("get %s: %w", LastCheckInKey, err)
	}
	return v, nil
}

func (s *Store) SetLastCheckIn(ctx context.Context, date string) error {
	return s.kv.Set(ctx, LastCheckInKey, date)
}

// intValue falls back to def when the key is missing or not a number.
func (s *Store) intValue(ctx context.Context, key string, def int) (int, error) {
	v, found, err := s.kv.Get(ctx, key)
	if err != nil {
		return def, fmt.Errorf("get %s: %w", key, err)
	}
	if !found {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logger.Warn("Stored value is not a number, using default", "key", key, "value", v, "default", def)
		return def, nil
	}
	return n, nil
}
