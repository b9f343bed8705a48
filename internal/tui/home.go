package tui

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/clearway/internal/checkin"
	"github.com/sadopc/clearway/internal/goal"
	"github.com/sadopc/clearway/internal/journal"
	"github.com/sadopc/clearway/internal/logger"
)

const recentLimit = 5

// skipFeeling is the select value for "Rather not say".
const skipFeeling = "-"

type homeModel struct {
	flow   *checkin.Flow
	goals  *goal.Store
	repo   journal.Repository
	width  int
	height int

	session checkin.Session
	goal    goal.Goal
	recent  []journal.Entry
	bar     progress.Model

	formActive bool
	form       *huh.Form
	formError  string

	// Form values as pointers (survive value copies)
	drank   *bool
	amount  *string
	feeling *string
}

func newHomeModel(flow *checkin.Flow, goals *goal.Store, repo journal.Repository) homeModel {
	drank, amount, feeling := false, "", ""
	return homeModel{
		flow:    flow,
		goals:   goals,
		repo:    repo,
		goal:    goal.Goal{GoalDays: goal.DefaultGoalDays},
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		drank:   &drank,
		amount:  &amount,
		feeling: &feeling,
	}
}

func (h homeModel) Init() tea.Cmd {
	return h.loadData()
}

func (h *homeModel) setSize(w, ht int) {
	h.width = w
	h.height = ht
	h.bar.Width = max(w-16, 10)
}

type homeDataMsg struct {
	goal   goal.Goal
	recent []journal.Entry
}

func (h homeModel) loadData() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		var msg homeDataMsg

		g, err := h.goals.Load(ctx)
		if err != nil {
			logger.Warn("Failed to load goal", "err", err)
			g = goal.Goal{GoalDays: goal.DefaultGoalDays}
		}
		msg.goal = g

		entries, err := h.repo.LoadAll(ctx)
		if err != nil {
			logger.Warn("Failed to load journal", "err", err)
		}
		msg.recent = recentEntries(entries, recentLimit)
		return msg
	}
}

// recentEntries returns up to n entries, newest date first.
func recentEntries(entries []journal.Entry, n int) []journal.Entry {
	out := make([]journal.Entry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func (h homeModel) update(msg tea.Msg) (homeModel, tea.Cmd) {
	if h.formActive && h.form != nil {
		return h.updateForm(msg)
	}

	switch msg := msg.(type) {
	case homeDataMsg:
		h.session = h.flow.Session()
		h.goal = msg.goal
		h.recent = msg.recent
		return h, nil

	case tickMsg:
		before := h.session.Date
		h.session = h.flow.Refresh(context.Background())
		if h.session.Date != before {
			logger.Info("New day", "date", h.session.Date)
			return h, h.loadData()
		}
		return h, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.CheckIn), key.Matches(msg, keys.Enter):
			if h.session.Stage == checkin.StageCompleted {
				return h, statusCmd("Already checked in today", false)
			}
			return h.showForm()
		case key.Matches(msg, keys.Refresh):
			return h, h.loadData()
		}
	}
	return h, nil
}

// showForm opens the question for the current stage.
func (h homeModel) showForm() (homeModel, tea.Cmd) {
	var field huh.Field
	switch h.session.Stage {
	case checkin.StageInitial:
		*h.drank = false
		field = huh.NewConfirm().
			Title("Did you drink yesterday?").
			Affirmative("Yes").
			Negative("No").
			Value(h.drank)
	case checkin.StageAwaitingAmount:
		*h.amount = ""
		field = huh.NewInput().
			Title("How many drinks?").
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return checkin.ErrEmptyAmount
				}
				return nil
			}).
			Value(h.amount)
	case checkin.StageAwaitingFeeling:
		*h.feeling = ""
		opts := make([]huh.Option[string], 0, len(journal.Moods)+1)
		for _, m := range journal.Moods {
			opts = append(opts, huh.NewOption(m.Emoji()+" "+string(m), string(m)))
		}
		opts = append(opts, huh.NewOption("Rather not say", skipFeeling))
		field = huh.NewSelect[string]().
			Title("How are you feeling today?").
			Options(opts...).
			Value(h.feeling)
	default:
		return h, nil
	}

	h.form = huh.NewForm(huh.NewGroup(field).Title("Daily Check-in")).
		WithShowHelp(true).
		WithShowErrors(true)
	h.formActive = true
	h.formError = ""
	return h, h.form.Init()
}

func (h homeModel) updateForm(msg tea.Msg) (homeModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			h.formActive = false
			h.form = nil
			return h, nil
		}
	}

	form, cmd := h.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		h.form = f
	}

	switch h.form.State {
	case huh.StateCompleted:
		h.formActive = false
		h.form = nil
		return h.submit()
	case huh.StateAborted:
		h.formActive = false
		h.form = nil
		return h, nil
	}
	return h, cmd
}

// submit dispatches the answered question and opens the next one.
func (h homeModel) submit() (homeModel, tea.Cmd) {
	var ev checkin.Event
	switch h.session.Stage {
	case checkin.StageInitial:
		ev = checkin.AnswerDrank{Drank: *h.drank}
	case checkin.StageAwaitingAmount:
		ev = checkin.SubmitAmount{Raw: *h.amount}
	case checkin.StageAwaitingFeeling:
		mood := journal.MoodUnset
		if *h.feeling != skipFeeling {
			mood, _ = journal.ParseMood(*h.feeling)
		}
		ev = checkin.SelectFeeling{Mood: mood}
	default:
		return h, nil
	}

	s, err := h.flow.Dispatch(context.Background(), ev)
	h.session = s
	switch {
	case errors.Is(err, checkin.ErrPersist):
		// Already logged by the flow; the check-in itself completed.
	case err != nil:
		h.formError = err.Error()
		return h, nil
	}

	if s.Stage == checkin.StageCompleted {
		h.formActive = false
		h.form = nil
		h.goal.DaysClear = s.DaysClear
		days := s.DaysClear
		return h, tea.Batch(
			h.loadData(),
			func() tea.Msg { return checkInDoneMsg{daysClear: days} },
		)
	}
	return h.showForm()
}

func (h homeModel) view() string {
	if h.width < 20 {
		return "Terminal too small"
	}

	contentWidth := h.width - 4

	return lipgloss.JoinVertical(lipgloss.Left,
		h.renderCheckInPanel(contentWidth),
		h.renderProgressPanel(contentWidth),
		h.renderRecentPanel(contentWidth),
	)
}

func (h homeModel) renderCheckInPanel(w int) string {
	title := accentStyle.Render("↑ ") + titleStyle.Render("Daily Check-in")

	if h.formActive && h.form != nil {
		return activePanelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", h.form.View()),
		)
	}

	var body string
	switch h.session.Stage {
	case checkin.StageCompleted:
		body = lipgloss.JoinVertical(lipgloss.Left,
			successStyle.Bold(true).Render("Congrats!"),
			mutedStyle.Render("You've checked in for "+h.session.Date+"."),
		)
	case checkin.StageInitial:
		body = mutedStyle.Render("Press c to check in for today")
	default:
		body = warningStyle.Render("Press c to continue your check-in")
	}
	if h.formError != "" {
		body = lipgloss.JoinVertical(lipgloss.Left, body, errorStyle.Render(h.formError))
	}
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", body))
}

func (h homeModel) renderProgressPanel(w int) string {
	title := titleStyle.Render("Your Progress")
	days := counterStyle.Width(w - 6).Render(plural(h.goal.DaysClear, "Day Clear", "Days Clear"))

	msg := "You're doing great on your ClearWay journey! Keep it up!"
	if h.goal.Met() {
		msg = fmt.Sprintf("You reached your %d-day goal!", h.goal.GoalDays)
	}

	goalLine := mutedStyle.Render(fmt.Sprintf("Goal: %d days  ", h.goal.GoalDays)) +
		h.bar.ViewAs(h.goal.Progress()) +
		highlightStyle.Render(fmt.Sprintf("  %3.0f%%", h.goal.Progress()*100))

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, mutedStyle.Render(msg), "", days, "", goalLine),
	)
}

func (h homeModel) renderRecentPanel(w int) string {
	title := titleStyle.Render("Recent Entries")
	if len(h.recent) == 0 {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, mutedStyle.Render("No entries yet")),
		)
	}

	rows := []string{title}
	for _, e := range h.recent {
		rows = append(rows, "  "+formatEntry(e))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

// formatEntry renders one journal line: date, drink status and feeling.
func formatEntry(e journal.Entry) string {
	status := successStyle.Render("Didn't drink")
	if e.Amount > 0 {
		status = errorStyle.Render("Drank " + plural(e.Amount, "drink", "drinks"))
	} else if e.Drank {
		status = errorStyle.Render("Drank")
	}
	status = lipgloss.NewStyle().Width(18).Render(status)
	return fmt.Sprintf("%s  %s %s Feeling: %s", e.Date, status, e.Feeling.Emoji(), e.Feeling)
}
