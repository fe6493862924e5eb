package components

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/rgehrsitz/fireplan/internal/tui/tuistyles"
)

// MetricCard displays a single key metric with a label and an optional description
type MetricCard struct {
	Label       string
	Value       string
	Description string
	Width       int
	valueStyle  *lipgloss.Style
}

// NewMetricCard creates a new metric card
func NewMetricCard(label, value string) *MetricCard {
	return &MetricCard{
		Label: label,
		Value: value,
		Width: 26,
	}
}

// WithDescription adds a subtitle under the value
func (m *MetricCard) WithDescription(desc string) *MetricCard {
	m.Description = desc
	return m
}

// WithWidth sets the card width
func (m *MetricCard) WithWidth(width int) *MetricCard {
	m.Width = width
	return m
}

// WithValueStyle overrides the style of the value line
func (m *MetricCard) WithValueStyle(style lipgloss.Style) *MetricCard {
	m.valueStyle = &style
	return m
}

// Render returns the styled metric card
func (m *MetricCard) Render() string {
	valueStyle := tuistyles.MetricValueStyle
	if m.valueStyle != nil {
		valueStyle = *m.valueStyle
	}

	lines := []string{
		tuistyles.MetricLabelStyle.Render(m.Label),
		valueStyle.Render(m.Value),
	}
	if m.Description != "" {
		lines = append(lines, tuistyles.InfoStyle.Render(m.Description))
	}

	return tuistyles.CardStyle.
		Width(m.Width).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// MetricGrid lays cards out left to right, wrapping after perRow cards
func MetricGrid(cards []*MetricCard, perRow int) string {
	if perRow <= 0 {
		perRow = 3
	}
	var rows []string
	for start := 0; start < len(cards); start += perRow {
		end := min(start+perRow, len(cards))
		rendered := make([]string, 0, end-start)
		for _, c := range cards[start:end] {
			rendered = append(rendered, c.Render())
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
