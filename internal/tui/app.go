package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/clearway/internal/checkin"
	"github.com/sadopc/clearway/internal/export"
	"github.com/sadopc/clearway/internal/goal"
	"github.com/sadopc/clearway/internal/journal"
	"github.com/sadopc/clearway/internal/store"
)

var exportFormats = []string{"csv", "json"}

// Deps are the services the TUI runs against.
type Deps struct {
	Store       *store.Store
	Repo        journal.Repository
	Goals       *goal.Store
	Flow        *checkin.Flow
	Counselor   Asker
	ChartWindow int
	ExportDir   string
}

// App is the root Bubble Tea model.
type App struct {
	deps   Deps
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	home     homeModel
	journal  journalModel
	chat     chatModel
	urge     urgeModel
	settings settingsModel

	help        help.Model
	status      string
	statusError bool
}

func NewApp(d Deps) App {
	h := help.New()
	h.ShowAll = false

	d.Flow.Start(context.Background())

	return App{
		deps:       d,
		activeView: viewHome,
		home:       newHomeModel(d.Flow, d.Goals, d.Repo),
		journal:    newJournalModel(d.Repo, d.ChartWindow),
		chat:       newChatModel(d.Counselor),
		urge:       newUrgeModel(),
		settings:   newSettingsModel(d.Store, d.Goals),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.home.Init(),
		a.journal.refresh(),
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.home.setSize(a.width, contentHeight)
		a.journal.setSize(a.width, contentHeight)
		a.chat.setSize(a.width, contentHeight)
		a.urge.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// A form or the chat input owns the keyboard.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			return a.switchTo(viewHome)
		case key.Matches(msg, keys.Tab2):
			return a.switchTo(viewJournal)
		case key.Matches(msg, keys.Tab3):
			return a.switchTo(viewChat)
		case key.Matches(msg, keys.Tab4):
			return a.switchTo(viewUrge)
		case key.Matches(msg, keys.Tab5):
			return a.switchTo(viewSettings)
		case key.Matches(msg, keys.Tab):
			return a.switchTo((a.activeView + 1) % viewState(len(viewNames)))
		}

	case tickMsg:
		cmds = append(cmds, tickCmd())
		// Home watches for the date change, urge runs the breathing timer.
		var cmd tea.Cmd
		a.home, cmd = a.home.update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		a.urge, cmd = a.urge.update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case switchViewMsg:
		return a.switchTo(msg.view)

	case checkInDoneMsg:
		a.status = "Checked in. " + plural(msg.daysClear, "day", "days") + " clear"
		a.statusError = false
		return a, tea.Batch(a.journal.refresh(), a.settings.refresh())

	case statusMsg:
		a.status = msg.text
		a.statusError = msg.isError
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.statusError = false
		a.exportPicking = false
		return a, nil

	// Data messages go to their owner regardless of the active view.
	case homeDataMsg:
		var cmd tea.Cmd
		a.home, cmd = a.home.update(msg)
		return a, cmd
	case journalDataMsg:
		var cmd tea.Cmd
		a.journal, cmd = a.journal.update(msg)
		return a, cmd
	case settingsDataMsg:
		var cmd tea.Cmd
		a.settings, cmd = a.settings.update(msg)
		return a, cmd
	case chatReplyMsg:
		var cmd tea.Cmd
		a.chat, cmd = a.chat.update(msg)
		return a, cmd
	}

	return a.updateActiveView(msg)
}

func (a App) switchTo(v viewState) (tea.Model, tea.Cmd) {
	a.activeView = v
	if v == viewChat {
		var cmd tea.Cmd
		a.chat, cmd = a.chat.focus()
		return a, cmd
	}
	return a, a.refreshCurrentView()
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewHome:
		a.home, cmd = a.home.update(msg)
	case viewJournal:
		a.journal, cmd = a.journal.update(msg)
	case viewChat:
		a.chat, cmd = a.chat.update(msg)
	case viewUrge:
		a.urge, cmd = a.urge.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewHome:
		return a.home.formActive
	case viewChat:
		return a.chat.typing()
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewHome:
		return a.home.loadData()
	case viewJournal:
		return a.journal.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewHome:
		content = a.home.view()
	case viewJournal:
		content = a.journal.view()
	case viewChat:
		content = a.chat.view()
	case viewUrge:
		content = a.urge.view()
	case viewSettings:
		content = a.settings.view()
	}

	contentHeight := max(a.height-lipgloss.Height(header)-lipgloss.Height(footer), 1)

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("clearway")
	gap := max(a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.statusError {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	streak := successStyle.Render(" ● " + plural(a.home.goal.DaysClear, "day", "days") + " clear")

	left := footerStyle.Render(helpView)
	right := streak + status

	gap := max(a.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	rows := []string{titleStyle.Render("Export Journal"), ""}
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(exportFormats[a.exportCursor])
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format string) tea.Cmd {
	repo, dir := a.deps.Repo, a.deps.ExportDir
	return func() tea.Msg {
		entries, err := repo.LoadAll(context.Background())
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}

		path := filepath.Join(dir, exportFileName(format, time.Now()))
		if err := export.Write(entries, format, path); err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}

func exportFileName(format string, t time.Time) string {
	return fmt.Sprintf("clearway-export-%s.%s", journal.DateOf(t), format)
}
