// Package dashboard는 잔고와 현재가를 보여주는 터미널 화면입니다.
package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/assist-by/stopguard/internal/display"
	"github.com/assist-by/stopguard/internal/domain"
)

const staleAfter = 30 * time.Second

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	valueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("1"))

	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)
)

// SnapshotSource는 화면에 그릴 값을 제공합니다
type SnapshotSource interface {
	Snapshot() display.Snapshot
}

type tickMsg time.Time

// Model은 bubbletea 모델입니다
type Model struct {
	source   SnapshotSource
	cancel   context.CancelFunc
	interval time.Duration
	snap     display.Snapshot
	now      time.Time
	quitting bool
}

// New는 새로운 대시보드 모델을 생성합니다. cancel은 종료 키 입력 시 호출됩니다.
func New(source SnapshotSource, interval time.Duration, cancel context.CancelFunc) Model {
	if interval <= 0 {
		interval = time.Second
	}
	return Model{
		source:   source,
		cancel:   cancel,
		interval: interval,
		snap:     source.Snapshot(),
		now:      time.Now(),
	}
}

func (m Model) Init() tea.Cmd {
	return tickCmd(m.interval)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.cancel != nil {
				m.cancel()
			}
			m.quitting = true
			return m, tea.Quit
		}

	case tickMsg:
		m.now = time.Time(msg)
		m.snap = m.source.Snapshot()
		return m, tickCmd(m.interval)
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder

	s.WriteString(headerStyle.Render(fmt.Sprintf("stopguard | %s | %s", m.snap.Quote, m.now.Format("15:04:05"))))
	s.WriteString("\n\n")

	balance := renderBox(
		row("Free "+m.snap.Quote, formatAmount(m.snap.FreeQuote.String(), m.snap.BalanceUpdated)),
		row("Total value", formatAmount(m.snap.TotalValue.StringFixed(2), m.snap.BalanceUpdated)),
		row("Updated", m.age(m.snap.BalanceUpdated)),
	)

	symbol := m.snap.Symbol
	if symbol == "" {
		symbol = "-"
	}
	price := renderBox(
		row("Symbol", symbol),
		row("Price", formatAmount(domain.FormatDecimal(m.snap.LivePrice), m.snap.PriceUpdated)),
		row("Updated", m.age(m.snap.PriceUpdated)),
	)

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, balance, "  ", price))
	s.WriteString("\n")

	if m.snap.LastError != "" {
		s.WriteString(errorStyle.Render("오류: " + m.snap.LastError))
		s.WriteString("\n")
	}

	s.WriteString("\nq 를 누르면 종료합니다")
	return s.String()
}

func (m Model) age(at time.Time) string {
	if at.IsZero() {
		return "대기 중"
	}
	d := m.now.Sub(at)
	if d < 0 {
		d = 0
	}
	if d > staleAfter {
		return errorStyle.Render(fmt.Sprintf("%v 전 (지연)", d.Round(time.Second)))
	}
	return fmt.Sprintf("%v 전", d.Round(time.Second))
}

func formatAmount(value string, updated time.Time) string {
	if updated.IsZero() {
		return "--"
	}
	return valueStyle.Render(value)
}

func row(label, value string) string {
	return fmt.Sprintf("%-12s %s", labelStyle.Render(label), value)
}

func renderBox(rows ...string) string {
	return borderStyle.Render(strings.Join(rows, "\n"))
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
