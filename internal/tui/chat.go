package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/clearway/internal/counsel"
	"github.com/sadopc/clearway/internal/logger"
)

// Asker is the counselor backend the chat view talks to.
type Asker interface {
	Ask(ctx context.Context, text string) (string, error)
}

type chatModel struct {
	counselor Asker
	width     int
	height    int

	conv    *counsel.Conversation
	input   textinput.Model
	waiting bool
}

func newChatModel(counselor Asker) chatModel {
	ti := textinput.New()
	ti.Placeholder = "Type your message..."
	ti.CharLimit = 1000
	ti.Prompt = "> "
	return chatModel{
		counselor: counselor,
		conv:      &counsel.Conversation{},
		input:     ti,
	}
}

func (c *chatModel) setSize(w, h int) {
	c.width = w
	c.height = h
	c.input.Width = max(w-12, 10)
}

// typing reports whether key presses belong to the input box.
func (c chatModel) typing() bool {
	return c.input.Focused()
}

func (c chatModel) focus() (chatModel, tea.Cmd) {
	return c, c.input.Focus()
}

type chatReplyMsg struct {
	text string
	err  error
}

func (c chatModel) send() (chatModel, tea.Cmd) {
	text := strings.TrimSpace(c.input.Value())
	if text == "" || c.waiting {
		return c, nil
	}
	c.input.Reset()
	c.conv.Add(counsel.RoleUser, text)

	if c.counselor == nil {
		return c, statusCmd("Counselor is not configured", true)
	}
	c.waiting = true
	counselor := c.counselor
	return c, func() tea.Msg {
		reply, err := counselor.Ask(context.Background(), text)
		return chatReplyMsg{text: reply, err: err}
	}
}

func (c chatModel) update(msg tea.Msg) (chatModel, tea.Cmd) {
	switch msg := msg.(type) {
	case chatReplyMsg:
		c.waiting = false
		if msg.err != nil {
			if errors.Is(msg.err, counsel.ErrNoAPIKey) {
				return c, statusCmd("Counselor is not configured", true)
			}
			logger.Warn("Counselor reply failed", "err", msg.err)
			return c, statusCmd("Counselor unavailable, try again", true)
		}
		c.conv.Add(counsel.RoleCounselor, msg.text)
		return c, nil

	case tea.KeyMsg:
		if !c.input.Focused() {
			if key.Matches(msg, keys.Enter) {
				return c.focus()
			}
			return c, nil
		}
		switch {
		case key.Matches(msg, keys.Back):
			c.input.Blur()
			return c, nil
		case key.Matches(msg, keys.Enter):
			return c.send()
		}
	}

	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd
}

func (c chatModel) view() string {
	w := c.width - 4
	title := titleStyle.Render("Counselor Chat")

	userStyle := lipgloss.NewStyle().Foreground(colorFg).Align(lipgloss.Right).Width(w - 6)
	botStyle := lipgloss.NewStyle().Foreground(colorSecondary).Width(w - 6)

	// Newest messages that fit above the input.
	visible := max(c.height-10, 3)
	msgs := c.conv.Messages
	if len(msgs) > visible {
		msgs = msgs[len(msgs)-visible:]
	}

	var rows []string
	if len(msgs) == 0 {
		rows = append(rows, mutedStyle.Render("Talk to an AI counselor whenever you need support."))
	}
	for _, m := range msgs {
		if m.Role == counsel.RoleUser {
			rows = append(rows, userStyle.Render(m.Text))
		} else {
			rows = append(rows, botStyle.Render(m.Text))
		}
	}
	if c.waiting {
		rows = append(rows, mutedStyle.Render("Counselor is typing..."))
	}

	hint := mutedStyle.Render("enter: send  esc: stop typing")
	if !c.input.Focused() {
		hint = mutedStyle.Render("enter: start typing")
	}

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title, "", strings.Join(rows, "\n"), "", c.input.View(), "", hint,
		),
	)
}
