package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var activities = []string{
	"Play a Game",
	"Listen to Music",
	"Watch Inspiration",
	"Quick Exercise",
	"Mindful Break",
	"Quick Chat",
}

type exercise struct {
	name        string
	duration    string
	description string
}

var exercises = []exercise{
	{
		name:        "Jumping Jacks",
		duration:    "30 seconds",
		description: "Stand with your feet together and arms at your sides. Jump your feet out to the sides while raising your arms above your head. Jump back to the starting position.",
	},
	{
		name:        "High Knees",
		duration:    "30 seconds",
		description: "Run in place, lifting your knees high towards your chest. Pump your arms as you run.",
	},
	{
		name:        "Arm Circles",
		duration:    "30 seconds",
		description: "Stand with your feet shoulder-width apart. Extend your arms out to the sides. Make small circles with your arms, gradually increasing the size of the circles.",
	},
}

var quotes = []string{
	"Believe you can and you're halfway there. - Theodore Roosevelt",
	"It does not matter how slowly you go as long as you do not stop. - Confucius",
	"The secret of getting ahead is getting started. - Mark Twain",
	"Fall seven times, stand up eight. - Japanese proverb",
}

const breathingPrompt = "Close your eyes and take slow, long breaths..."

type urgePane int

const (
	paneMenu urgePane = iota
	paneExercise
	paneInspiration
	paneBreathing
)

type breathPhase int

const (
	breathIdle breathPhase = iota
	breathIn
	breathHold
	breathOut
	breathDone
)

var breathPhaseNames = map[breathPhase]string{
	breathIdle: "READY",
	breathIn:   "BREATHE IN",
	breathHold: "HOLD",
	breathOut:  "BREATHE OUT",
	breathDone: "WELL DONE",
}

var breathDurations = map[breathPhase]time.Duration{
	breathIn:   4 * time.Second,
	breathHold: 4 * time.Second,
	breathOut:  6 * time.Second,
}

const breathCycles = 5

type urgeModel struct {
	width  int
	height int

	pane   urgePane
	cursor int

	exerciseIdx int
	quoteIdx    int

	phase     breathPhase
	cycles    int
	remaining time.Duration
	phaseEnd  time.Time
	now       func() time.Time
}

func newUrgeModel() urgeModel {
	return urgeModel{now: time.Now}
}

func (u *urgeModel) setSize(w, h int) {
	u.width = w
	u.height = h
}

func (u urgeModel) update(msg tea.Msg) (urgeModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if u.pane == paneBreathing && u.phase != breathIdle && u.phase != breathDone {
			u.remaining = u.phaseEnd.Sub(u.now())
			if u.remaining <= 0 {
				return u.advanceBreath()
			}
		}
		return u, nil

	case tea.KeyMsg:
		if u.pane != paneMenu && key.Matches(msg, keys.Back) {
			u.pane = paneMenu
			u.phase = breathIdle
			return u, nil
		}
		switch u.pane {
		case paneMenu:
			return u.updateMenu(msg)
		case paneExercise:
			switch {
			case key.Matches(msg, keys.Left):
				u = u.prevExercise()
			case key.Matches(msg, keys.Right), key.Matches(msg, keys.Next):
				u = u.nextExercise()
			}
		case paneInspiration:
			if key.Matches(msg, keys.Next) || key.Matches(msg, keys.Enter) {
				u.quoteIdx = (u.quoteIdx + 1) % len(quotes)
			}
		case paneBreathing:
			if key.Matches(msg, keys.Enter) && (u.phase == breathIdle || u.phase == breathDone) {
				return u.startBreathing()
			}
		}
	}
	return u, nil
}

func (u urgeModel) updateMenu(msg tea.KeyMsg) (urgeModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if u.cursor > 0 {
			u.cursor--
		}
	case key.Matches(msg, keys.Down):
		if u.cursor < len(activities)-1 {
			u.cursor++
		}
	case key.Matches(msg, keys.Enter):
		return u.open(activities[u.cursor])
	}
	return u, nil
}

func (u urgeModel) open(activity string) (urgeModel, tea.Cmd) {
	switch activity {
	case "Watch Inspiration":
		u.pane = paneInspiration
	case "Quick Exercise":
		u.pane = paneExercise
		u.exerciseIdx = 0
	case "Mindful Break":
		u.pane = paneBreathing
		u.phase = breathIdle
	case "Quick Chat":
		return u, func() tea.Msg { return switchViewMsg{view: viewChat} }
	default:
		return u, statusCmd(activity+" is not available in the terminal", false)
	}
	return u, nil
}

func (u urgeModel) prevExercise() urgeModel {
	if u.exerciseIdx > 0 {
		u.exerciseIdx--
	}
	return u
}

func (u urgeModel) nextExercise() urgeModel {
	if u.exerciseIdx < len(exercises)-1 {
		u.exerciseIdx++
	}
	return u
}

func (u urgeModel) startBreathing() (urgeModel, tea.Cmd) {
	u.cycles = 0
	return u.enterPhase(breathIn), nil
}

func (u urgeModel) enterPhase(p breathPhase) urgeModel {
	u.phase = p
	u.remaining = breathDurations[p]
	u.phaseEnd = u.now().Add(u.remaining)
	return u
}

func (u urgeModel) advanceBreath() (urgeModel, tea.Cmd) {
	switch u.phase {
	case breathIn:
		return u.enterPhase(breathHold), nil
	case breathHold:
		return u.enterPhase(breathOut), nil
	case breathOut:
		u.cycles++
		if u.cycles >= breathCycles {
			u.phase = breathDone
			u.remaining = 0
			return u, statusCmd("Mindful break complete", false)
		}
		return u.enterPhase(breathIn), nil
	}
	return u, nil
}

func (u urgeModel) view() string {
	w := u.width - 4
	var content string
	switch u.pane {
	case paneExercise:
		content = u.renderExercise(w)
	case paneInspiration:
		content = u.renderInspiration(w)
	case paneBreathing:
		content = u.renderBreathing(w)
	default:
		content = u.renderMenu()
	}
	return panelStyle.Width(w).Render(content)
}

func (u urgeModel) renderMenu() string {
	rows := []string{
		titleStyle.Render("Feeling an Urge?"),
		mutedStyle.Render("Try one of these activities to help you through it:"),
		"",
	}
	for i, a := range activities {
		cursor := "  "
		style := normalItemStyle
		if i == u.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+a))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: open  ↑/↓: move"))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (u urgeModel) renderExercise(w int) string {
	ex := exercises[u.exerciseIdx]
	body := lipgloss.NewStyle().Width(max(w-8, 20)).Render(ex.description)

	prev, next := normalItemStyle.Render("◀ Previous"), normalItemStyle.Render("Next ▶")
	if u.exerciseIdx == 0 {
		prev = mutedStyle.Render("◀ Previous")
	}
	if u.exerciseIdx == len(exercises)-1 {
		next = mutedStyle.Render("Next ▶")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Quick Exercise"),
		"",
		highlightStyle.Bold(true).Render(ex.name),
		mutedStyle.Render(ex.duration),
		"",
		body,
		"",
		prev+"   "+mutedStyle.Render(fmt.Sprintf("%d/%d", u.exerciseIdx+1, len(exercises)))+"   "+next,
		"",
		mutedStyle.Render("  ←/→: browse  esc: back"),
	)
}

func (u urgeModel) renderInspiration(w int) string {
	quote := lipgloss.NewStyle().Italic(true).Width(max(w-8, 20)).Render(quotes[u.quoteIdx])
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Inspiration"),
		"",
		quote,
		"",
		mutedStyle.Render("  n: next inspiration  esc: back"),
	)
}

func (u urgeModel) renderBreathing(w int) string {
	var countdown, label string
	switch u.phase {
	case breathIdle:
		countdown = counterStyle.Width(w - 6).Render(formatCountdown(breathDurations[breathIn]))
		label = mutedStyle.Render("Press enter to begin")
	case breathDone:
		countdown = successStyle.Bold(true).Width(w - 6).Align(lipgloss.Center).Render("Done!")
		label = successStyle.Render(breathPhaseNames[breathDone])
	default:
		countdown = counterStyle.Width(w - 6).Render(formatCountdown(u.remaining))
		label = accentStyle.Bold(true).Render(breathPhaseNames[u.phase])
	}

	return lipgloss.JoinVertical(lipgloss.Center,
		titleStyle.Render("Mindful Break"),
		"",
		mutedStyle.Render(breathingPrompt),
		"",
		countdown,
		label,
		"",
		u.renderCycles(),
		"",
		mutedStyle.Render("enter: start  esc: back"),
	)
}

func (u urgeModel) renderCycles() string {
	parts := make([]string, 0, breathCycles)
	for i := 0; i < breathCycles; i++ {
		switch {
		case i < u.cycles:
			parts = append(parts, successStyle.Render("●"))
		case i == u.cycles && u.phase != breathIdle && u.phase != breathDone:
			parts = append(parts, accentStyle.Render("◐"))
		default:
			parts = append(parts, mutedStyle.Render("○"))
		}
	}
	return strings.Join(parts, " ") + mutedStyle.Render(fmt.Sprintf("  %d/%d", u.cycles, breathCycles))
}
