package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"midi-clock/dump"
	"midi-clock/midi"
	"midi-clock/ring"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("57")).
			Padding(0, 2)

	bpmStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("48")).
			MarginTop(1).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)
)

// Model is the live clock monitor for mclkdump: it mirrors the BPM
// estimator's updates without touching the estimator's state.
type Model struct {
	updates <-chan dump.Update
	ring    *ring.Ring

	bpm       float64
	time      uint64
	ticks     uint64
	transport string
	quitting  bool
}

// UpdateMsg carries one estimator update into the bubbletea loop.
type UpdateMsg dump.Update

// closedMsg signals that the estimator hung up.
type closedMsg struct{}

// NewModel builds a monitor fed by the estimator's update channel. The
// ring is only read for its drop counter.
func NewModel(updates <-chan dump.Update, r *ring.Ring) Model {
	return Model{
		updates:   updates,
		ring:      r,
		transport: "waiting",
	}
}

func listen(updates <-chan dump.Update) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-updates
		if !ok {
			return closedMsg{}
		}
		return UpdateMsg(u)
	}
}

func (m Model) Init() tea.Cmd {
	return listen(m.updates)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}

	case UpdateMsg:
		if msg.BPM > 0 {
			m.bpm = msg.BPM
		}
		m.time = msg.Time
		m.ticks = msg.Ticks
		switch msg.Transport {
		case midi.Start:
			m.transport = "started"
		case midi.Continue:
			m.transport = "continued"
		case midi.Stop:
			m.transport = "stopped"
		}
		return m, listen(m.updates)

	case closedMsg:
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	s := titleStyle.Render("mclk dump") + "\n"

	if m.bpm > 0 {
		s += bpmStyle.Render(fmt.Sprintf("%.2f BPM", m.bpm)) + "\n"
	} else {
		s += bpmStyle.Render("--.-- BPM") + "\n"
	}

	s += labelStyle.Render("transport ") + m.transport + "\n"
	s += labelStyle.Render("ticks     ") + fmt.Sprintf("%d", m.ticks) + "\n"
	s += labelStyle.Render("sample    ") + fmt.Sprintf("%d", m.time) + "\n"

	if dropped := m.ring.Dropped(); dropped > 0 {
		s += warnStyle.Render(fmt.Sprintf("dropped   %d", dropped)) + "\n"
	}

	s += helpStyle.Render("q to quit")
	return s
}
