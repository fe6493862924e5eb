package components

import (
	"strings"
	"testing"

	"github.com/rgehrsitz/fireplan/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMetricCard_Render(t *testing.T) {
	out := NewMetricCard("Success rate", "92.50%").WithDescription("of 500 trials").Render()
	assert.Contains(t, out, "Success rate")
	assert.Contains(t, out, "92.50%")
	assert.Contains(t, out, "of 500 trials")
}

func TestMetricGrid_Wraps(t *testing.T) {
	cards := []*MetricCard{
		NewMetricCard("A", "1").WithWidth(10),
		NewMetricCard("B", "2").WithWidth(10),
		NewMetricCard("C", "3").WithWidth(10),
	}
	twoRows := MetricGrid(cards, 2)
	oneRow := MetricGrid(cards, 3)
	assert.Greater(t, strings.Count(twoRows, "\n"), strings.Count(oneRow, "\n"))
	for _, label := range []string{"A", "B", "C"} {
		assert.Contains(t, twoRows, label)
	}
}

func TestASCIIChart_Empty(t *testing.T) {
	assert.Contains(t, NewASCIIChart("x").Render(), "No data to display")
}

func TestPercentileChart_Render(t *testing.T) {
	var points []domain.PercentilePoint
	for i := 0; i < 10; i++ {
		v := decimal.NewFromInt(int64(i * 100000))
		points = append(points, domain.PercentilePoint{
			Year: i,
			Age:  float64(40 + i),
			PortfolioValue: domain.Percentiles{
				P10: v.Div(decimal.NewFromInt(2)),
				P50: v,
				P90: v.Mul(decimal.NewFromInt(2)),
			},
		})
	}
	out := NewPercentileChart(points).WithSize(60, 8).Render()
	assert.Contains(t, out, "Portfolio value by age")
	assert.Contains(t, out, "Legend:")
	assert.Contains(t, out, "p90")
	assert.Contains(t, out, "40")
	assert.Contains(t, out, "$1.9M")
}

func TestASCIIChart_FlatSinglePoint(t *testing.T) {
	out := NewASCIIChart("").AddSeries("only", []float64{5}, "#FFFFFF", '*').WithSize(20, 3).Render()
	assert.Contains(t, out, "*")
	assert.NotContains(t, out, "Legend:")
}

func TestFormatChartValue(t *testing.T) {
	assert.Equal(t, "$2.5M", formatChartValue(2_500_000))
	assert.Equal(t, "$250K", formatChartValue(250_000))
	assert.Equal(t, "$-12", formatChartValue(-12))
}
