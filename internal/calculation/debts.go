package calculation

import (
	"fmt"
	"math"

	"github.com/rgehrsitz/fireplan/internal/domain"
	"github.com/shopspring/decimal"
)

// PayoffNever is returned by EstimatePayoffMonths when the payment cannot outpace interest
const PayoffNever = -1

// maxPayoffMonths bounds the payoff search at a century of payments
const maxPayoffMonths = 1200

// MonthlyRate converts an APR into the per-month rate for the debt's interest model
func MonthlyRate(apr decimal.Decimal, interest domain.InterestType, compounding domain.CompoundingPeriod) decimal.Decimal {
	if apr.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	twelve := decimal.NewFromInt(12)
	if interest == domain.InterestCompound && compounding == domain.CompoundDaily {
		daily := apr.InexactFloat64() / 365
		return decimal.NewFromFloat(math.Pow(1+daily, 365.0/12) - 1)
	}
	return apr.Div(twelve)
}

// MonthlyInflation converts an annual inflation rate into the compounding-equivalent monthly rate
func MonthlyInflation(annual decimal.Decimal) float64 {
	if annual.IsZero() {
		return 0
	}
	return math.Pow(1+math.Max(annual.InexactFloat64(), -0.99), 1.0/12) - 1
}

// RealMonthlyRate is MonthlyRate net of monthly inflation. It goes negative when inflation
// outpaces the APR.
func RealMonthlyRate(apr decimal.Decimal, interest domain.InterestType, compounding domain.CompoundingPeriod, monthlyInflation float64) decimal.Decimal {
	if monthlyInflation == 0 {
		return MonthlyRate(apr, interest, compounding)
	}
	nominal := math.Max(0, apr.InexactFloat64())
	if interest == domain.InterestCompound && compounding == domain.CompoundDaily {
		perMonth := 365.0 / 12
		dailyInflation := math.Pow(1+monthlyInflation, 1/perMonth) - 1
		daily := (1+nominal/365)/(1+dailyInflation) - 1
		return decimal.NewFromFloat(math.Pow(1+daily, perMonth) - 1)
	}
	return decimal.NewFromFloat((1+nominal/12)/(1+monthlyInflation) - 1)
}

// LoanPayment is the level monthly payment that retires principal over termMonths
func LoanPayment(principal, apr decimal.Decimal, termMonths int) decimal.Decimal {
	if principal.LessThanOrEqual(decimal.Zero) || termMonths <= 0 {
		return decimal.Zero
	}
	n := decimal.NewFromInt(int64(termMonths))
	if apr.LessThanOrEqual(decimal.Zero) {
		return principal.Div(n).RoundCeil(2)
	}
	r := apr.InexactFloat64() / 12
	factor := r / (1 - math.Pow(1+r, -float64(termMonths)))
	return principal.Mul(decimal.NewFromFloat(factor)).RoundCeil(2)
}

// amortizingLoan is the working state of a debt or a financed asset's loan. Inside a
// simulation the balance and payment are in today's dollars: the payment deflates every month
// and interest accrues at the real rate.
type amortizingLoan struct {
	id          string
	name        string
	balance     decimal.Decimal
	payment     decimal.Decimal
	apr         decimal.Decimal
	interest    domain.InterestType
	compounding domain.CompoundingPeriod
	monthlyRate decimal.Decimal // nominal
	fromAssetID string
}

func newLoan(id, name string, balance, payment, apr decimal.Decimal, interest domain.InterestType, compounding domain.CompoundingPeriod) *amortizingLoan {
	return &amortizingLoan{
		id:          id,
		name:        name,
		balance:     balance,
		payment:     payment,
		apr:         apr,
		interest:    interest,
		compounding: compounding,
		monthlyRate: MonthlyRate(apr, interest, compounding),
	}
}

func newLoanFromDebt(d domain.Debt) *amortizingLoan {
	return newLoan(d.ID, d.Name, d.Balance, d.MonthlyPayment, d.APR, d.InterestType, d.Compounding)
}

func (l *amortizingLoan) paidOff() bool {
	return l.balance.LessThanOrEqual(decimal.Zero)
}

// amortizeMonth accrues one month of interest at rate and applies one payment
func (l *amortizingLoan) amortizeMonth(rate decimal.Decimal) (interest, paid decimal.Decimal) {
	if l.paidOff() {
		return decimal.Zero, decimal.Zero
	}
	interest = l.balance.Mul(rate).Round(2)
	owed := l.balance.Add(interest)
	paid = decimal.Min(l.payment.Round(2), owed)
	l.balance = decimal.Max(decimal.Zero, owed.Sub(paid))
	return interest, paid
}

// amortizeYear runs twelve monthly periods in real terms for a year with the given annual
// inflation. Each month deflates the payment before it is applied.
func (l *amortizingLoan) amortizeYear(inflation decimal.Decimal) (interest, paid decimal.Decimal) {
	monthly := MonthlyInflation(inflation)
	rate := RealMonthlyRate(l.apr, l.interest, l.compounding, monthly)
	deflator := decimal.NewFromFloat(1 + monthly)
	for m := 0; m < 12; m++ {
		if monthly != 0 && !l.paidOff() {
			l.payment = l.payment.Div(deflator)
		}
		i, p := l.amortizeMonth(rate)
		interest = interest.Add(i)
		paid = paid.Add(p)
	}
	return interest, paid
}

func (l *amortizingLoan) snapshot(interest, paid decimal.Decimal) domain.DebtSnapshot {
	return domain.DebtSnapshot{
		ID:          l.id,
		Name:        l.name,
		Balance:     l.balance,
		Interest:    interest,
		Payments:    paid,
		PaidOff:     l.paidOff(),
		FromAssetID: l.fromAssetID,
	}
}

// EstimatePayoffMonths returns the number of monthly payments until the debt is
// retired, or PayoffNever when the payment does not exceed the first month's interest.
func EstimatePayoffMonths(d domain.Debt) int {
	if d.Balance.LessThanOrEqual(decimal.Zero) {
		return 0
	}
	if d.MonthlyPayment.LessThanOrEqual(decimal.Zero) {
		return PayoffNever
	}
	loan := newLoanFromDebt(d)
	if loan.monthlyRate.IsZero() {
		return int(d.Balance.Div(d.MonthlyPayment).Ceil().IntPart())
	}
	if d.MonthlyPayment.LessThanOrEqual(d.Balance.Mul(loan.monthlyRate)) {
		return PayoffNever
	}
	for month := 1; month <= maxPayoffMonths; month++ {
		loan.amortizeMonth(loan.monthlyRate)
		if loan.paidOff() {
			return month
		}
	}
	return PayoffNever
}

// debtState is a plan debt that starts amortizing once its start timepoint is reached
type debtState struct {
	loan    *amortizingLoan
	start   domain.Timepoint
	started bool
}

func newDebtState(d domain.Debt) *debtState {
	return &debtState{loan: newLoanFromDebt(d), start: d.Start}
}

// step amortizes one year at the year's inflation if the debt has started by the step that
// begins at age
func (s *debtState) step(ctx TimeContext, age float64, inflation decimal.Decimal) (domain.DebtSnapshot, error) {
	if !s.started {
		reached, err := TimepointReached(s.start, ctx, age)
		if err != nil {
			return domain.DebtSnapshot{}, fmt.Errorf("debt %s start: %w", s.loan.id, err)
		}
		s.started = reached
	}
	if !s.started {
		return s.loan.snapshot(decimal.Zero, decimal.Zero), nil
	}
	interest, paid := s.loan.amortizeYear(inflation)
	return s.loan.snapshot(interest, paid), nil
}
