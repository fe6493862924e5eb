package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rgehrsitz/fireplan/internal/domain"
	"github.com/rgehrsitz/fireplan/internal/tui/tuistyles"
)

const yAxisWidth = 9

// DataSeries is a single line in a chart
type DataSeries struct {
	Name   string
	Points []float64
	Color  lipgloss.Color
	Char   rune
}

// ASCIIChart draws one or more series on a character grid
type ASCIIChart struct {
	Title  string
	Series []*DataSeries
	Labels []string // x-axis labels, one per point
	Width  int
	Height int
}

// NewASCIIChart creates a new ASCII chart
func NewASCIIChart(title string) *ASCIIChart {
	return &ASCIIChart{
		Title:  title,
		Width:  72,
		Height: 12,
	}
}

// NewPercentileChart plots the p10, p50 and p90 portfolio value of each year
func NewPercentileChart(points []domain.PercentilePoint) *ASCIIChart {
	p10 := make([]float64, len(points))
	p50 := make([]float64, len(points))
	p90 := make([]float64, len(points))
	labels := make([]string, len(points))
	for i, p := range points {
		p10[i] = p.PortfolioValue.P10.InexactFloat64()
		p50[i] = p.PortfolioValue.P50.InexactFloat64()
		p90[i] = p.PortfolioValue.P90.InexactFloat64()
		labels[i] = fmt.Sprintf("%.0f", p.Age)
	}
	return NewASCIIChart("Portfolio value by age").
		AddSeries("p90", p90, tuistyles.ColorBandHigh, '▲').
		AddSeries("p50", p50, tuistyles.ColorBandMid, '●').
		AddSeries("p10", p10, tuistyles.ColorBandLow, '▼').
		WithLabels(labels)
}

// AddSeries adds a data series. Series added first win overlapping cells.
func (c *ASCIIChart) AddSeries(name string, points []float64, color lipgloss.Color, char rune) *ASCIIChart {
	c.Series = append(c.Series, &DataSeries{Name: name, Points: points, Color: color, Char: char})
	return c
}

// WithLabels sets the x-axis labels
func (c *ASCIIChart) WithLabels(labels []string) *ASCIIChart {
	c.Labels = labels
	return c
}

// WithSize sets the chart dimensions
func (c *ASCIIChart) WithSize(width, height int) *ASCIIChart {
	c.Width = width
	c.Height = height
	return c
}

// Render returns the styled chart
func (c *ASCIIChart) Render() string {
	if c.pointCount() == 0 {
		return tuistyles.InfoStyle.Render("No data to display")
	}

	var out strings.Builder
	if c.Title != "" {
		out.WriteString(lipgloss.NewStyle().Bold(true).Foreground(tuistyles.ColorPrimary).Render(c.Title))
		out.WriteString("\n\n")
	}
	out.WriteString(c.renderGrid())
	out.WriteString(c.renderXAxisLabels())
	if len(c.Series) > 1 {
		out.WriteString("\n")
		out.WriteString(c.renderLegend())
	}
	return out.String()
}

func (c *ASCIIChart) pointCount() int {
	n := 0
	for _, s := range c.Series {
		n = max(n, len(s.Points))
	}
	return n
}

func (c *ASCIIChart) chartWidth() int {
	return max(2, c.Width-yAxisWidth-3)
}

// bounds returns the value range of every series, padded so flat series still plot
func (c *ASCIIChart) bounds() (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range c.Series {
		for _, p := range s.Points {
			lo = math.Min(lo, p)
			hi = math.Max(hi, p)
		}
	}
	if hi == lo {
		return lo - 1, hi + 1
	}
	pad := (hi - lo) * 0.05
	return lo - pad, hi + pad
}

// renderGrid plots each series, joining consecutive points with Bresenham lines
func (c *ASCIIChart) renderGrid() string {
	width, height := c.chartWidth(), max(2, c.Height)
	owner := make([][]int, height)
	for i := range owner {
		owner[i] = make([]int, width)
		for j := range owner[i] {
			owner[i][j] = -1
		}
	}

	lo, hi := c.bounds()
	n := c.pointCount()
	toX := func(i int) int {
		if n == 1 {
			return 0
		}
		return int(float64(i) / float64(n-1) * float64(width-1))
	}
	toY := func(v float64) int {
		return height - 1 - int(math.Round((v-lo)/(hi-lo)*float64(height-1)))
	}

	for idx, s := range c.Series {
		for i, v := range s.Points {
			x, y := toX(i), toY(v)
			if i == 0 {
				plot(owner, x, y, idx)
				continue
			}
			drawLine(owner, toX(i-1), toY(s.Points[i-1]), x, y, idx)
		}
	}

	axis := lipgloss.NewStyle().Foreground(tuistyles.ColorMuted).Width(yAxisWidth).Align(lipgloss.Right)
	var out strings.Builder
	for row := range owner {
		value := hi - float64(row)/float64(height-1)*(hi-lo)
		out.WriteString(axis.Render(formatChartValue(value)))
		out.WriteString(" │ ")
		for _, o := range owner[row] {
			if o < 0 {
				out.WriteRune(' ')
				continue
			}
			s := c.Series[o]
			out.WriteString(lipgloss.NewStyle().Foreground(s.Color).Render(string(s.Char)))
		}
		out.WriteString("\n")
	}
	out.WriteString(strings.Repeat(" ", yAxisWidth))
	out.WriteString(" └")
	out.WriteString(strings.Repeat("─", width))
	out.WriteString("\n")
	return out.String()
}

// plot claims a cell for a series unless an earlier series owns it
func plot(owner [][]int, x, y, series int) {
	if y < 0 || y >= len(owner) || x < 0 || x >= len(owner[y]) {
		return
	}
	if owner[y][x] < 0 {
		owner[y][x] = series
	}
}

func drawLine(owner [][]int, x0, y0, x1, y1, series int) {
	dx, dy := abs(x1-x0), abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx - dy
	for {
		plot(owner, x0, y0, series)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// renderXAxisLabels prints up to five evenly spaced labels
func (c *ASCIIChart) renderXAxisLabels() string {
	if len(c.Labels) == 0 {
		return ""
	}
	const maxLabels = 5
	width := c.chartWidth()
	line := []rune(strings.Repeat(" ", width))
	step := max(1, (len(c.Labels)-1)/(maxLabels-1))
	for i := 0; i < len(c.Labels); i += step {
		x := 0
		if len(c.Labels) > 1 {
			x = int(float64(i) / float64(len(c.Labels)-1) * float64(width-1))
		}
		label := []rune(c.Labels[i])
		if x+len(label) > width {
			x = width - len(label)
		}
		for j, r := range label {
			if x+j >= 0 {
				line[x+j] = r
			}
		}
	}
	labelStyle := lipgloss.NewStyle().Foreground(tuistyles.ColorMuted)
	return strings.Repeat(" ", yAxisWidth+3) + labelStyle.Render(strings.TrimRight(string(line), " ")) + "\n"
}

func (c *ASCIIChart) renderLegend() string {
	items := make([]string, 0, len(c.Series))
	for _, s := range c.Series {
		symbol := lipgloss.NewStyle().Foreground(s.Color).Render(string(s.Char))
		items = append(items, symbol+" "+s.Name)
	}
	return tuistyles.InfoStyle.Render("Legend: " + strings.Join(items, " • "))
}

// formatChartValue abbreviates a dollar amount for the y-axis
func formatChartValue(value float64) string {
	switch {
	case math.Abs(value) >= 1_000_000:
		return fmt.Sprintf("$%.1fM", value/1_000_000)
	case math.Abs(value) >= 1000:
		return fmt.Sprintf("$%.0fK", value/1000)
	default:
		return fmt.Sprintf("$%.0f", value)
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
