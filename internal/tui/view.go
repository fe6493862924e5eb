package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/fireplan/internal/output"
	"github.com/rgehrsitz/fireplan/internal/tui/components"
	"github.com/rgehrsitz/fireplan/internal/tui/tuistyles"
)

// View renders the current state of the application
func (m Model) View() string {
	var content string
	switch {
	case m.err != nil:
		content = ErrorStyle.Render("Error: " + m.err.Error())
	case m.plan == nil:
		content = InfoStyle.Render(fmt.Sprintf("Loading plan %s...", m.planPath))
	case m.running || m.result == nil:
		content = m.renderProgress()
	default:
		content = lipgloss.JoinVertical(lipgloss.Left, m.renderTabs(), "", m.renderScene())
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderTitleBar(),
		"",
		content,
		m.renderStatusBar(),
	)
}

func (m Model) renderTitleBar() string {
	title := TitleStyle.Render("FIREPLAN - Monte Carlo")
	if m.plan == nil {
		return title
	}
	name := m.plan.Name
	if name == "" {
		name = m.planPath
	}
	mode := m.plan.Simulation.Mode
	if m.opts.Mode != "" {
		mode = m.opts.Mode
	}
	sub := SubtitleStyle.Render(fmt.Sprintf("%s • %s • base seed %d", name, mode, m.seed))
	return lipgloss.JoinVertical(lipgloss.Left, title, sub)
}

func (m Model) renderStatusBar() string {
	return StatusBarStyle.Width(max(20, m.width)).Render(m.help.ShortHelpView(m.keys.ShortHelp()))
}

func (m Model) renderProgress() string {
	if m.total == 0 {
		return InfoStyle.Render("Starting trials...")
	}
	fraction := float64(m.completed) / float64(m.total)
	return lipgloss.JoinVertical(
		lipgloss.Left,
		fmt.Sprintf("Running trials: %d/%d", m.completed, m.total),
		m.progress.ViewAs(fraction),
	)
}

func (m Model) renderTabs() string {
	tabs := make([]string, 0, int(sceneCount))
	for s := Scene(0); s < sceneCount; s++ {
		style := TabStyle
		if s == m.currentScene {
			style = ActiveTabStyle
		}
		tabs = append(tabs, style.Render(s.String()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderScene() string {
	switch m.currentScene {
	case SceneSummary:
		return m.renderSummary()
	case SceneYearly:
		return m.renderYearly()
	case SceneTrials:
		return m.renderTrials()
	default:
		return "Unknown scene"
	}
}

func (m Model) renderSummary() string {
	r := m.result
	km := r.KeyMetrics

	success := components.NewMetricCard("Success rate", output.FormatFraction(r.SuccessRate)).
		WithDescription(fmt.Sprintf("%d of %d trials completed", r.CompletedTrials, r.TotalTrials)).
		WithValueStyle(tuistyles.SuccessStyle(r.SuccessRate.InexactFloat64()))
	cards := []*components.MetricCard{
		success,
		components.NewMetricCard("Median retirement age", optionalAge(km.RetirementAge)),
		components.NewMetricCard("Median bankruptcy age", optionalAge(km.BankruptcyAge)),
		components.NewMetricCard("Portfolio at retirement", optionalCurrency(km.PortfolioAtRetirement)),
		components.NewMetricCard("Final portfolio p50", output.FormatCurrency(r.FinalPortfolio.P50)).
			WithDescription(fmt.Sprintf("p10 %s / p90 %s", output.FormatCurrency(r.FinalPortfolio.P10), output.FormatCurrency(r.FinalPortfolio.P90))),
		components.NewMetricCard("Lifetime taxes", output.FormatCurrency(km.LifetimeTaxesAndPenalties)),
	}
	if r.FailedTrials > 0 {
		cards = append(cards, components.NewMetricCard("Failed trials", fmt.Sprintf("%d", r.FailedTrials)).
			WithValueStyle(tuistyles.MetricNegativeStyle))
	}

	perRow := max(1, m.width/28)
	chart := components.NewPercentileChart(r.Percentiles).WithSize(max(40, min(m.width, 100)), 10)
	return lipgloss.JoinVertical(lipgloss.Left, components.MetricGrid(cards, perRow), "", chart.Render())
}

func (m Model) renderYearly() string {
	rows := m.result.YearlyRows
	headers := []string{"Year", "Age", "Accum", "Retired", "Bankrupt", "p10", "p50", "p90"}
	var body [][]string
	for _, row := range window(rows, m.offset, m.visibleRows()) {
		body = append(body, []string{
			fmt.Sprintf("%d", row.Year),
			fmt.Sprintf("%.1f", row.Age),
			output.FormatFraction(row.PercentAccumulation),
			output.FormatFraction(row.PercentRetirement),
			output.FormatFraction(row.PercentBankrupt),
			output.FormatCurrency(row.P10Portfolio),
			output.FormatCurrency(row.P50Portfolio),
			output.FormatCurrency(row.P90Portfolio),
		})
	}
	return renderTable(headers, body) + "\n" + m.scrollHint(len(rows))
}

func (m Model) renderTrials() string {
	rows := m.result.TrialRows
	headers := []string{"Seed", "Outcome", "Retired at", "Bankrupt at", "Final portfolio", "Avg stocks", "Avg inflation"}
	var body [][]string
	for _, row := range window(rows, m.offset, m.visibleRows()) {
		outcome := string(row.FinalPhase)
		if row.Success {
			outcome = "success"
		}
		body = append(body, []string{
			fmt.Sprintf("%d", row.Seed),
			outcome,
			optionalAge(row.RetirementAge),
			optionalAge(row.BankruptcyAge),
			output.FormatCurrency(row.FinalPortfolioValue),
			optionalFraction(row.AverageStockReturn),
			optionalFraction(row.AverageInflationRate),
		})
	}
	return renderTable(headers, body) + "\n" + m.scrollHint(len(rows))
}

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(tuistyles.ColorBorder)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return TableCellStyle
		}).
		Headers(headers...).
		Rows(rows...).
		Render()
}

func (m Model) scrollHint(total int) string {
	if total == 0 {
		return InfoStyle.Render("No rows.")
	}
	last := min(total, m.offset+m.visibleRows())
	return InfoStyle.Render(fmt.Sprintf("Rows %d-%d of %d", m.offset+1, last, total))
}

// window returns at most size items starting at offset
func window[T any](items []T, offset, size int) []T {
	if offset >= len(items) {
		return nil
	}
	return items[offset:min(len(items), offset+size)]
}

func optionalAge(age *float64) string {
	if age == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f", *age)
}

func optionalCurrency(d *decimal.Decimal) string {
	if d == nil {
		return "n/a"
	}
	return output.FormatCurrency(*d)
}

func optionalFraction(d *decimal.Decimal) string {
	if d == nil {
		return "n/a"
	}
	return output.FormatFraction(*d)
}
