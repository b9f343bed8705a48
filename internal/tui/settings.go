package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/clearway/internal/goal"
	"github.com/sadopc/clearway/internal/journal"
	"github.com/sadopc/clearway/internal/logger"
	"github.com/sadopc/clearway/internal/store"
)

type settingsModel struct {
	store  *store.Store
	goals  *goal.Store
	width  int
	height int

	settings   []store.Setting
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	goalDays *string
}

func newSettingsModel(s *store.Store, goals *goal.Store) settingsModel {
	gd := ""
	return settingsModel{
		store:    s,
		goals:    goals,
		goalDays: &gd,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, err := s.store.All(context.Background())
		if err != nil {
			logger.Warn("Failed to load settings", "err", err)
		}
		return settingsDataMsg{settings: settings}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		return s, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Enter) {
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	g, err := s.goals.Load(context.Background())
	if err != nil {
		g.GoalDays = goal.DefaultGoalDays
	}
	*s.goalDays = strconv.Itoa(g.GoalDays)

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Goal (days clear)").
				Validate(validateGoalDays).
				Value(s.goalDays),
		).Title("Goal"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func validateGoalDays(v string) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		return goal.ErrInvalidGoal
	}
	return nil
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		if err := s.saveSettings(); err != nil {
			logger.Error("Failed to save goal", "err", err)
		}
		return s, s.refresh()
	}

	return s, cmd
}

func (s settingsModel) saveSettings() error {
	n, err := strconv.Atoi(strings.TrimSpace(*s.goalDays))
	if err != nil {
		return err
	}
	return s.goals.SetGoalDays(context.Background(), n)
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	rows := []string{title, ""}
	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(settingLabel(setting.Key))
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}
	rows = append(rows, "", mutedStyle.Render("Press enter to change your goal"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func settingLabel(k string) string {
	switch k {
	case goal.GoalDaysKey:
		return "Goal"
	case goal.DaysClearKey:
		return "Days clear"
	case goal.LastCheckInKey:
		return "Last check-in"
	case journal.EntriesKey:
		return "Journal"
	}
	return k
}

func formatSettingValue(k, v string) string {
	switch k {
	case goal.GoalDaysKey, goal.DaysClearKey:
		if n, err := strconv.Atoi(v); err == nil {
			return plural(n, "day", "days")
		}
	case journal.EntriesKey:
		var raw []json.RawMessage
		if err := json.Unmarshal([]byte(v), &raw); err != nil {
			return "unreadable"
		}
		return plural(len(raw), "entry", "entries")
	}
	if strings.HasSuffix(k, ".corrupt") {
		return "preserved copy"
	}
	if v == "" {
		return "-"
	}
	return v
}
