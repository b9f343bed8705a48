package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/clearway/internal/journal"
	"github.com/sadopc/clearway/internal/logger"
)

// chartWindows are the trailing-day windows the journal chart offers.
var chartWindows = []int{7, 14, 30}

type journalModel struct {
	repo   journal.Repository
	width  int
	height int

	entries   []journal.Entry
	series    journal.Series
	windowIdx int
	offset    int // first visible row of the entry list
	loadErr   bool

	chart       barchart.Model
	chartHeight int
}

func newJournalModel(repo journal.Repository, window int) journalModel {
	idx := 0
	for i, w := range chartWindows {
		if w == window {
			idx = i
		}
	}
	return journalModel{
		repo:        repo,
		windowIdx:   idx,
		chart:       barchart.New(60, 12),
		chartHeight: 12,
	}
}

func (j *journalModel) setSize(w, h int) {
	j.width = w
	j.height = h
	j.buildChart()
}

func (j journalModel) window() int {
	return chartWindows[j.windowIdx]
}

type journalDataMsg struct {
	entries []journal.Entry
	err     error
}

func (j journalModel) refresh() tea.Cmd {
	return func() tea.Msg {
		entries, err := j.repo.LoadAll(context.Background())
		if err != nil {
			logger.Warn("Failed to load journal", "err", err)
		}
		return journalDataMsg{entries: entries, err: err}
	}
}

func (j journalModel) update(msg tea.Msg) (journalModel, tea.Cmd) {
	switch msg := msg.(type) {
	case journalDataMsg:
		j.loadErr = msg.err != nil
		j.entries = recentEntries(msg.entries, len(msg.entries))
		j.offset = 0
		j.buildChart()
		return j, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			if j.windowIdx > 0 {
				j.windowIdx--
				j.buildChart()
			}
		case key.Matches(msg, keys.Right):
			if j.windowIdx < len(chartWindows)-1 {
				j.windowIdx++
				j.buildChart()
			}
		case key.Matches(msg, keys.Up):
			if j.offset > 0 {
				j.offset--
			}
		case key.Matches(msg, keys.Down):
			if j.offset < len(j.entries)-1 {
				j.offset++
			}
		case key.Matches(msg, keys.Refresh):
			return j, j.refresh()
		}
	}
	return j, nil
}

// buildChart draws a drinks bar and a feeling bar for each day in the window.
func (j *journalModel) buildChart() {
	chartWidth := max(j.width-8, 20)
	j.chartHeight = 12
	if j.height > 34 {
		j.chartHeight = 16
	}

	j.series = journal.DeriveSeries(j.entries, j.window())
	j.chart = barchart.New(chartWidth, j.chartHeight)

	bars := make([]barchart.BarData, 0, 2*len(j.series.Labels))
	for i, label := range j.series.Labels {
		bars = append(bars,
			barchart.BarData{
				Label:  label,
				Values: []barchart.BarValue{{Name: "Drinks", Value: j.series.Drinks[i], Style: drinksBarStyle}},
			},
			barchart.BarData{
				Values: []barchart.BarValue{{Name: "Feeling", Value: j.series.Feelings[i], Style: feelingBarStyle}},
			},
		)
	}

	j.chart.PushAll(bars)
	j.chart.Draw()
}

func (j journalModel) view() string {
	w := j.width - 4

	var tabs []string
	for i, n := range chartWindows {
		label := fmt.Sprintf("%d days", n)
		if i == j.windowIdx {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(label))
		}
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Journal"), "  ", lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...),
	)

	var chartView string
	if j.series.Empty {
		chartView = mutedStyle.Render("  " + journal.NoDataLabel)
	} else {
		chartView = j.chart.View()
	}

	nav := mutedStyle.Render("  ←/→: window  ↑/↓: scroll  r: refresh")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", chartView, "", j.renderLegend(), "", j.renderEntries(), "", nav,
		),
	)
}

func (j journalModel) renderLegend() string {
	return fmt.Sprintf("  %s %s  %s %s",
		drinksBarStyle.Render("■"), "Drinks",
		feelingBarStyle.Render("■"), "Feeling (scaled)",
	)
}

func (j journalModel) renderEntries() string {
	if j.loadErr {
		return errorStyle.Render("  Journal could not be loaded")
	}
	if len(j.entries) == 0 {
		return mutedStyle.Render("  No journal entries yet")
	}

	// Rows left after the chart and chrome.
	visible := max(j.height-j.chartHeight-14, 3)
	end := min(j.offset+visible, len(j.entries))

	rows := []string{subtitleStyle.Render(fmt.Sprintf("  %s", plural(len(j.entries), "entry", "entries")))}
	for _, e := range j.entries[j.offset:end] {
		rows = append(rows, "  "+formatEntry(e))
	}
	return strings.Join(rows, "\n")
}
