package checkin

import (
	"errors"
	"strings"

	"github.com/sadopc/clearway/internal/goal"
	"github.com/sadopc/clearway/internal/journal"
)

// Stage is where a session is in the daily check-in.
type Stage int

const (
	StageInitial Stage = iota
	StageAwaitingAmount
	StageAwaitingFeeling
	StageCompleted
)

var stageNames = map[Stage]string{
	StageInitial:         "Initial",
	StageAwaitingAmount:  "AwaitingAmount",
	StageAwaitingFeeling: "AwaitingFeeling",
	StageCompleted:       "Completed",
}

func (s Stage) String() string {
	if n, ok := stageNames[s]; ok {
		return n
	}
	return "Unknown"
}

var (
	ErrEmptyAmount = errors.New("amount is required")
	ErrUnknownMood = errors.New("unknown feeling")
	// ErrInactive is returned for events the current stage does not accept.
	ErrInactive = errors.New("event not accepted in this stage")
)

// Session is the in-memory state of one day's check-in.
type Session struct {
	Stage Stage
	// Date is the calendar day the session belongs to.
	Date            string
	DrankYesterday  bool
	DrinkAmount     string
	Feeling         journal.Mood
	LastCheckInDate string
	// DaysClear is the streak before this session completes.
	DaysClear int
	// AmountStep enables the drink-count question after a yes.
	AmountStep bool
}

// NewSession starts a session for today. A day that already has a completed
// check-in starts out Completed.
func NewSession(today, lastCheckIn string, daysClear int, amountStep bool) Session {
	s := Session{
		Stage:           StageInitial,
		Date:            today,
		LastCheckInDate: lastCheckIn,
		DaysClear:       daysClear,
		AmountStep:      amountStep,
	}
	if lastCheckIn == today {
		s.Stage = StageCompleted
	}
	return s
}

type Event interface{ event() }

type AnswerDrank struct{ Drank bool }
type SubmitAmount struct{ Raw string }
type SelectFeeling struct{ Mood journal.Mood }
type NewDay struct{ Date string }

func (AnswerDrank) event()   {}
func (SubmitAmount) event()  {}
func (SelectFeeling) event() {}
func (NewDay) event()        {}

// Effect is a write the caller must perform after a transition, in order.
type Effect interface{ effect() }

type SetDaysClear struct{ Value int }
type PersistEntry struct{ Entry journal.Entry }
type MarkCheckedIn struct{ Date string }

func (SetDaysClear) effect()  {}
func (PersistEntry) effect()  {}
func (MarkCheckedIn) effect() {}

// Transition applies ev to s. A rejected event returns s unchanged with an
// error. Only the move into Completed produces effects.
func Transition(s Session, ev Event) (Session, []Effect, error) {
	switch ev := ev.(type) {
	case NewDay:
		if ev.Date == s.Date {
			return s, nil, nil
		}
		return NewSession(ev.Date, s.LastCheckInDate, s.DaysClear, s.AmountStep), nil, nil

	case AnswerDrank:
		if s.Stage != StageInitial {
			return s, nil, ErrInactive
		}
		s.DrankYesterday = ev.Drank
		if ev.Drank && s.AmountStep {
			s.Stage = StageAwaitingAmount
		} else {
			s.Stage = StageAwaitingFeeling
		}
		return s, nil, nil

	case SubmitAmount:
		if s.Stage != StageAwaitingAmount {
			return s, nil, ErrInactive
		}
		if strings.TrimSpace(ev.Raw) == "" {
			return s, nil, ErrEmptyAmount
		}
		s.DrinkAmount = strings.TrimSpace(ev.Raw)
		s.Stage = StageAwaitingFeeling
		return s, nil, nil

	case SelectFeeling:
		if s.Stage != StageAwaitingFeeling {
			return s, nil, ErrInactive
		}
		if ev.Mood != journal.MoodUnset && ev.Mood.Score() == 0 {
			return s, nil, ErrUnknownMood
		}
		return complete(s, ev.Mood)
	}
	return s, nil, ErrInactive
}

func complete(s Session, mood journal.Mood) (Session, []Effect, error) {
	s.Feeling = mood
	amount := 0
	if s.DrankYesterday {
		amount = journal.ParseAmount(s.DrinkAmount)
	}
	streak := goal.Next(s.DaysClear, s.DrankYesterday)

	effects := []Effect{
		SetDaysClear{Value: streak},
		PersistEntry{Entry: journal.Entry{
			Date:    s.Date,
			Drank:   s.DrankYesterday,
			Amount:  amount,
			Feeling: mood,
		}},
		MarkCheckedIn{Date: s.Date},
	}

	s.DaysClear = streak
	s.LastCheckInDate = s.Date
	s.Stage = StageCompleted
	return s, effects, nil
}
