package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/BYTE-6D65/chrono/pkg/chrono"
	"github.com/BYTE-6D65/chrono/pkg/clock"
	"github.com/BYTE-6D65/chrono/pkg/event"
	"github.com/BYTE-6D65/chrono/pkg/stopwatch"
	"github.com/BYTE-6D65/chrono/pkg/timer"
)

const (
	stopwatchName = "main"
	timerName     = "period"
	maxEventLines = 6
)

// Message types
type messageType int

const (
	msgInfo messageType = iota
	msgWarning
	msgError
	msgSuccess
)

// UserMessage represents a dynamic message to the user
type userMessage struct {
	msgType messageType
	text    string
}

// Model holds the state of the TUI
type model struct {
	ctx    context.Context
	engine *chrono.Engine
	sub    event.Subscription
	width  int
	height int

	// Instruments
	sw     *stopwatch.Stopwatch
	period timer.Millis
	every  int64
	fired  uint64

	// Recent bus events, newest last
	events []string

	// Dynamic user messages
	userMessage *userMessage
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4")).
			PaddingLeft(2)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			Width(14).
			PaddingLeft(4)

	valueStyle = lipgloss.NewStyle().
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			PaddingTop(1).
			PaddingLeft(2)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4")).
			Padding(0, 2).
			MarginLeft(2)

	infoMessageStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#00A9E0")).
				Foreground(lipgloss.Color("#00A9E0")).
				Padding(0, 2).
				MarginTop(1).
				MarginLeft(2)

	warningMessageStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#FFB800")).
				Foreground(lipgloss.Color("#FFB800")).
				Padding(0, 2).
				MarginTop(1).
				MarginLeft(2)

	errorMessageStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#FF5555")).
				Foreground(lipgloss.Color("#FF5555")).
				Padding(0, 2).
				MarginTop(1).
				MarginLeft(2)

	successMessageStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#50FA7B")).
				Foreground(lipgloss.Color("#50FA7B")).
				Padding(0, 2).
				MarginTop(1).
				MarginLeft(2)
)

// Messages
type tickMsg struct{}

type busMsg struct {
	evt event.Event
}

type busClosedMsg struct{}

func initialModel(ctx context.Context, eng *chrono.Engine, sub event.Subscription) model {
	clk := eng.Clock()
	return model{
		ctx:    ctx,
		engine: eng,
		sub:    sub,
		sw:     eng.Stopwatch(stopwatchName),
		period: timer.NewMillis(clk),
		every:  eng.Config().TimerPeriod.Milliseconds(),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.tick(), waitForEvent(m.sub))
}

func (m model) tick() tea.Cmd {
	return tea.Tick(m.engine.Config().RefreshInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func waitForEvent(sub event.Subscription) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-sub.Events()
		if !ok {
			return busClosedMsg{}
		}
		return busMsg{evt: evt}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		m.engine.Now()
		// Due drains at most one period per poll; a slow redraw catches
		// up over the following ticks.
		if m.period.Due(m.every) {
			m.fired++
			if err := m.engine.TimerDue(m.ctx, timerName, m.every, m.fired); err != nil {
				m.userMessage = &userMessage{msgType: msgError, text: err.Error()}
			}
		}
		return m, m.tick()

	case busMsg:
		m.events = append(m.events, describeEvent(msg.evt, m.engine.FormatString))
		if len(m.events) > maxEventLines {
			m.events = m.events[len(m.events)-maxEventLines:]
		}
		if msg.evt.Type == event.TypeSaturated {
			m.userMessage = &userMessage{msgType: msgWarning, text: "A time value saturated"}
		}
		return m, waitForEvent(m.sub)

	case busClosedMsg:
		return m, nil
	}

	return m, nil
}

func (m model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "s":
		m.sw.Start()
		m.userMessage = &userMessage{msgType: msgInfo, text: "Stopwatch started"}

	case "x":
		if !m.sw.Running() {
			m.userMessage = &userMessage{msgType: msgWarning, text: "Stopwatch is not running"}
			break
		}
		if err := m.engine.StopStopwatch(m.ctx, stopwatchName); err != nil {
			m.userMessage = &userMessage{msgType: msgError, text: err.Error()}
			break
		}
		m.userMessage = &userMessage{
			msgType: msgSuccess,
			text:    "Stopwatch stopped at " + m.engine.FormatString(m.sw.ElapsedMicros()),
		}

	case "r":
		m.sw.Resume()
		m.userMessage = nil

	case "z":
		m.sw.Reset()
		m.userMessage = &userMessage{msgType: msgInfo, text: "Stopwatch reset"}

	case "p":
		m.period.Set(0)
		m.fired = 0
		m.userMessage = &userMessage{msgType: msgInfo, text: "Periodic timer restarted"}
	}
	return m, nil
}

func (m model) View() string {
	now := m.engine.Now()

	s := titleStyle.Render("⏱  Chrono Demo") + "\n\n"

	rows := []struct{ label, value string }{
		{"Uptime", m.engine.FormatString(int64(now))},
		{"Raw micros", fmt.Sprintf("%d", now)},
		{"Source", m.sourceLine()},
		{"Stopwatch", fmt.Sprintf("%s  %s", m.engine.FormatString(m.sw.ElapsedMicros()), m.sw.State())},
		{"Timer", fmt.Sprintf("%d ms into a %d ms period, fired %d", m.period.Value(), m.every, m.fired)},
	}
	for _, r := range rows {
		s += labelStyle.Render(r.label) + valueStyle.Render(r.value) + "\n"
	}

	s += "\n"
	if len(m.events) == 0 {
		s += panelStyle.Render("No events yet")
	} else {
		s += panelStyle.Render(strings.Join(m.events, "\n"))
	}
	s += "\n"

	if m.userMessage != nil {
		s += m.renderUserMessage() + "\n"
	}

	s += helpStyle.Render("s start • x stop • r resume • z reset • p restart timer • q quit")
	return s
}

func (m model) sourceLine() string {
	wc, ok := m.engine.Clock().(*clock.WrapClock)
	if !ok {
		return "native 64-bit"
	}
	line := fmt.Sprintf("%d-bit counter, %d wraps", wc.Bits(), wc.Wraps())
	if lost := m.engine.Notifier().Lost(); lost > 0 {
		line += fmt.Sprintf(", %d notices lost", lost)
	}
	return line
}

// describeEvent renders evt as one line, formatting durations with dur.
func describeEvent(evt event.Event, dur func(int64) string) string {
	at := dur(int64(evt.Timestamp))
	switch evt.Type {
	case event.TypeClockWrapped:
		var p event.WrapPayload
		if evt.DecodePayload(&p, event.JSONCodec{}) == nil {
			return fmt.Sprintf("%s  wrap #%d (%d-bit)", at, p.Wraps, p.Bits)
		}
	case event.TypeStopwatchStopped:
		var p event.StopwatchPayload
		if evt.DecodePayload(&p, event.JSONCodec{}) == nil {
			return fmt.Sprintf("%s  stopwatch %s stopped at %s", at, p.Name, p.Formatted)
		}
	case event.TypeTimerDue:
		var p event.TimerPayload
		if evt.DecodePayload(&p, event.JSONCodec{}) == nil {
			return fmt.Sprintf("%s  timer %s fired (%d)", at, p.Name, p.Fired)
		}
	case event.TypeSaturated:
		var p event.SaturationPayload
		if evt.DecodePayload(&p, event.JSONCodec{}) == nil {
			return fmt.Sprintf("%s  saturated in %s", at, p.Op)
		}
	}
	return fmt.Sprintf("%s  %s from %s", at, evt.Type, evt.Source)
}

func (m model) renderUserMessage() string {
	if m.userMessage == nil {
		return ""
	}

	var style lipgloss.Style
	var icon string

	switch m.userMessage.msgType {
	case msgInfo:
		style = infoMessageStyle
		icon = "ℹ️ "
	case msgWarning:
		style = warningMessageStyle
		icon = "⚠️  "
	case msgError:
		style = errorMessageStyle
		icon = "❌ "
	case msgSuccess:
		style = successMessageStyle
		icon = "✅ "
	}

	return style.Render(icon + m.userMessage.text)
}

func startTUI(cfg chrono.Config) error {
	eng, err := chrono.New(cfg)
	if err != nil {
		return err
	}
	defer eng.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub, err := eng.Bus().Subscribe(ctx, event.Filter{Types: []string{"chrono.*"}})
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	defer sub.Close()

	runErr := make(chan error, 1)
	go func() { runErr <- eng.Run(ctx) }()

	p := tea.NewProgram(initialModel(ctx, eng, sub), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}

	cancel()
	return <-runErr
}
