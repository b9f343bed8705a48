package checkin

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sadopc/clearway/internal/journal"
	"github.com/sadopc/clearway/internal/logger"
	"github.com/sadopc/clearway/internal/metrics"
)

// ErrPersist wraps side-effect failures after a completed transition. The
// in-memory session has already advanced when it is returned.
var ErrPersist = errors.New("check-in not saved")

// Streak is the part of goal state a check-in reads and writes.
type Streak interface {
	DaysClear(ctx context.Context) (int, error)
	SetDaysClear(ctx context.Context, n int) error
	LastCheckIn(ctx context.Context) (string, error)
	SetLastCheckIn(ctx context.Context, date string) error
}

// Flow drives a Session against real storage.
type Flow struct {
	session    Session
	repo       journal.Repository
	streak     Streak
	amountStep bool
	now        func() time.Time
}

func NewFlow(repo journal.Repository, streak Streak, amountStep bool) *Flow {
	return &Flow{
		repo:       repo,
		streak:     streak,
		amountStep: amountStep,
		now:        time.Now,
	}
}

// Start loads persisted streak state and opens today's session. Read
// failures are logged and treated as a fresh start.
func (f *Flow) Start(ctx context.Context) Session {
	days, err := f.streak.DaysClear(ctx)
	if err != nil {
		logger.Warn("Failed to load days clear", "err", err)
		days = 0
	}
	last, err := f.streak.LastCheckIn(ctx)
	if err != nil {
		logger.Warn("Failed to load last check-in", "err", err)
		last = ""
	}
	f.session = NewSession(f.today(), last, days, f.amountStep)
	metrics.DaysClear.Set(float64(days))
	logger.Debug("Check-in started", "date", f.session.Date, "stage", f.session.Stage, "days_clear", days)
	return f.session
}

func (f *Flow) Session() Session {
	return f.session
}

// Refresh rolls the session over when the calendar day has changed.
func (f *Flow) Refresh(ctx context.Context) Session {
	s, _ := f.Dispatch(ctx, NewDay{Date: f.today()})
	return s
}

// Dispatch runs ev through Transition and applies any resulting effects in
// order. Validation errors leave the session unchanged. A persistence error
// is wrapped in ErrPersist and does not roll the session back.
func (f *Flow) Dispatch(ctx context.Context, ev Event) (Session, error) {
	next, effects, err := Transition(f.session, ev)
	if err != nil {
		return f.session, err
	}
	f.session = next
	if len(effects) == 0 {
		return f.session, nil
	}
	if err := f.apply(ctx, effects); err != nil {
		return f.session, err
	}
	metrics.CheckIns.WithLabelValues(strconv.FormatBool(f.session.DrankYesterday)).Inc()
	logger.Info("Check-in completed", "date", f.session.Date, "drank", f.session.DrankYesterday, "days_clear", f.session.DaysClear)
	return f.session, nil
}

// Run completes today's check-in in one call. It returns ErrInactive when
// today is already checked in.
func (f *Flow) Run(ctx context.Context, drank bool, amount string, mood journal.Mood) (Session, error) {
	if s := f.Start(ctx); s.Stage == StageCompleted {
		return s, ErrInactive
	}
	if _, err := f.Dispatch(ctx, AnswerDrank{Drank: drank}); err != nil {
		return f.session, err
	}
	if f.session.Stage == StageAwaitingAmount {
		if _, err := f.Dispatch(ctx, SubmitAmount{Raw: amount}); err != nil {
			return f.session, err
		}
	}
	return f.Dispatch(ctx, SelectFeeling{Mood: mood})
}

func (f *Flow) apply(ctx context.Context, effects []Effect) error {
	// Another process may already have recorded this date.
	recorded := false
	if last, err := f.streak.LastCheckIn(ctx); err == nil {
		recorded = last == f.session.Date
	}

	var errs []error
	for _, eff := range effects {
		var err error
		name := ""
		switch eff := eff.(type) {
		case SetDaysClear:
			name = "days_clear"
			if recorded {
				logger.Debug("Date already recorded, keeping streak", "date", f.session.Date)
				if n, derr := f.streak.DaysClear(ctx); derr == nil {
					f.session.DaysClear = n
				}
				continue
			}
			err = f.streak.SetDaysClear(ctx, eff.Value)
			if err == nil {
				metrics.DaysClear.Set(float64(eff.Value))
			}
		case PersistEntry:
			name = "entry"
			err = f.repo.Upsert(ctx, eff.Entry)
		case MarkCheckedIn:
			name = "last_check_in"
			err = f.streak.SetLastCheckIn(ctx, eff.Date)
		default:
			continue
		}
		if err != nil {
			logger.Error("Failed to persist check-in", "effect", name, "date", f.session.Date, "err", err)
			metrics.PersistFailures.WithLabelValues(name).Inc()
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrPersist, errors.Join(errs...))
	}
	return nil
}

func (f *Flow) today() string {
	return journal.DateOf(f.now())
}
