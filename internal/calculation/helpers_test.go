package calculation

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rgehrsitz/fireplan/internal/domain"
	"github.com/stretchr/testify/require"
)

// TestLogger records messages for assertions
type TestLogger struct {
	mu       sync.Mutex
	Messages []string
}

func (l *TestLogger) record(level, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Messages = append(l.Messages, level+": "+fmt.Sprintf(format, args...))
}

func (l *TestLogger) Debugf(format string, args ...any) { l.record("DEBUG", format, args...) }
func (l *TestLogger) Infof(format string, args ...any)  { l.record("INFO", format, args...) }
func (l *TestLogger) Warnf(format string, args ...any)  { l.record("WARN", format, args...) }
func (l *TestLogger) Errorf(format string, args ...any) { l.record("ERROR", format, args...) }

// flatMarket has zero real returns and no yields so that balances only move with cash flows
func flatMarket() domain.MarketAssumptions {
	m := domain.DefaultMarketAssumptions()
	m.StockReturn = dec("0.03")
	m.BondReturn = dec("0.03")
	m.CashReturn = dec("0.03")
	m.InflationRate = dec("0.03")
	m.StockYield = dec("0")
	m.BondYield = dec("0")
	return m
}

// testPlan is a 35-year-old (as of 2025-01-01) living to 40 who retires at 60
func testPlan() *domain.PlanInputs {
	asOf := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	return &domain.PlanInputs{
		Name: "test",
		Timeline: domain.Timeline{
			BirthMonth:     1,
			BirthYear:      1990,
			LifeExpectancy: 40,
			RetirementStrategy: domain.RetirementStrategy{
				Type:          domain.RetirementFixedAge,
				RetirementAge: 60,
			},
			AsOf: &asOf,
		},
		BaseRule:          domain.BaseRuleSave,
		TaxSettings:       domain.DefaultTaxSettings(),
		MarketAssumptions: flatMarket(),
		Simulation:        domain.SimulationSettings{Mode: domain.ModeFixed},
	}
}

func account(id string, t domain.AccountType, balance string) domain.Account {
	return domain.Account{
		ID:         id,
		Name:       id,
		Type:       t,
		Balance:    dec(balance),
		Allocation: domain.AssetAllocation{Stocks: dec("1"), Bonds: dec("0"), Cash: dec("0")},
	}
}

func yearly(id, amount string, kind domain.IncomeKind) domain.Income {
	return domain.Income{
		ID:        id,
		Name:      id,
		Amount:    dec(amount),
		Frequency: domain.FrequencyYearly,
		Timeframe: domain.Timeframe{Start: domain.Now()},
		Kind:      kind,
	}
}

func yearlyExpense(id, amount string) domain.Expense {
	return domain.Expense{
		ID:        id,
		Name:      id,
		Amount:    dec(amount),
		Frequency: domain.FrequencyYearly,
		Timeframe: domain.Timeframe{Start: domain.Now()},
	}
}

func newTestSimulation(t *testing.T, plan *domain.PlanInputs) *simulation {
	t.Helper()
	s, err := newSimulation(plan, NopLogger{})
	require.NoError(t, err)
	return s
}
