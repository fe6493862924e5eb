package calculation

import (
	"github.com/rgehrsitz/fireplan/internal/domain"
	"github.com/shopspring/decimal"
)

// TAX CALCULATION ASSUMPTIONS:
//
// 1. Single filer. Brackets, deduction and thresholds come from domain.TaxSettings and are
//    not indexed; the engine works in today's dollars.
//
// 2. Capital gains and qualified dividends are stacked on top of ordinary taxable income.
//
// 3. Social Security taxation uses the two-tier provisional income formula.
//
// 4. Early-withdrawal penalties are reported apart from income tax.

// TaxInput is everything the calculator needs for one year
type TaxInput struct {
	Wages                   decimal.Decimal
	SocialSecurity          decimal.Decimal
	OtherOrdinaryIncome     decimal.Decimal // pensions, annuities, rental
	Interest                decimal.Decimal // interest and non-qualified dividends
	RetirementDistributions decimal.Decimal // tax-deferred withdrawals, RMDs, taxable Roth earnings
	CapitalGains            decimal.Decimal // realized net gains, may be negative
	QualifiedDividends      decimal.Decimal
	Adjustments             decimal.Decimal // pre-tax contributions
	CapitalLossCarryforward decimal.Decimal

	EarlyWithdrawals    decimal.Decimal // principal subject to the early-withdrawal penalty
	EarlyHSAWithdrawals decimal.Decimal
}

// TaxCalculator is a pure function of its settings and inputs
type TaxCalculator struct {
	Settings domain.TaxSettings
}

// NewTaxCalculator creates a calculator over the given settings
func NewTaxCalculator(settings domain.TaxSettings) *TaxCalculator {
	return &TaxCalculator{Settings: settings}
}

// Calculate computes the full tax breakdown for one year
func (tc *TaxCalculator) Calculate(in TaxInput) domain.TaxBreakdown {
	s := tc.Settings
	var out domain.TaxBreakdown

	nonSSOrdinary := in.Wages.Add(in.OtherOrdinaryIncome).Add(in.Interest).Add(in.RetirementDistributions)

	// Net capital result after applying any carried-forward loss
	netGains := in.CapitalGains.Sub(in.CapitalLossCarryforward)
	lossOffset := decimal.Zero
	if netGains.IsNegative() {
		loss := netGains.Neg()
		lossOffset = decimal.Min(loss, s.CapitalLossLimit)
		out.CapitalLossCarryover = loss.Sub(lossOffset)
		netGains = decimal.Zero
	}
	preferential := netGains.Add(in.QualifiedDividends)

	ordinaryAfterAdjustments := decimal.Max(decimal.Zero, nonSSOrdinary.Sub(in.Adjustments))
	provisional := ordinaryAfterAdjustments.Add(preferential).Add(in.SocialSecurity.Mul(decimal.NewFromFloat(0.5)))
	out.TaxableSocialSecurity = tc.TaxableSocialSecurity(in.SocialSecurity, provisional)

	out.GrossIncome = nonSSOrdinary.Add(out.TaxableSocialSecurity).Add(preferential)
	ordinaryAGI := decimal.Max(decimal.Zero, ordinaryAfterAdjustments.Add(out.TaxableSocialSecurity).Sub(lossOffset))
	out.AGI = ordinaryAGI.Add(preferential)

	// Standard deduction is used against ordinary income first
	deductionLeft := s.StandardDeduction
	out.TaxableOrdinaryIncome = decimal.Max(decimal.Zero, ordinaryAGI.Sub(deductionLeft))
	deductionLeft = decimal.Max(decimal.Zero, deductionLeft.Sub(ordinaryAGI))
	out.TaxableCapitalGains = decimal.Max(decimal.Zero, preferential.Sub(deductionLeft))
	out.TaxableIncome = out.TaxableOrdinaryIncome.Add(out.TaxableCapitalGains)

	out.OrdinaryIncomeTax = ProgressiveTax(s.OrdinaryBrackets, out.TaxableOrdinaryIncome)
	out.CapitalGainsTax = StackedCapitalGainsTax(s.CapitalGainsBrackets, out.TaxableOrdinaryIncome, out.TaxableCapitalGains)
	out.MarginalRate = MarginalRate(s.OrdinaryBrackets, out.TaxableOrdinaryIncome)
	if out.TaxableCapitalGains.GreaterThan(decimal.Zero) {
		// the top dollar is a gains dollar
		out.MarginalRate = decimal.Max(out.MarginalRate, MarginalRate(s.CapitalGainsBrackets, out.TaxableIncome))
	}

	incomeTax := out.OrdinaryIncomeTax.Add(out.CapitalGainsTax)
	if out.TaxableIncome.GreaterThan(decimal.Zero) {
		out.EffectiveRate = incomeTax.Div(out.TaxableIncome)
	}

	out.FICA = tc.FICA(in.Wages)

	investmentIncome := in.Interest.Add(preferential)
	if out.AGI.GreaterThan(s.NIITThreshold) && investmentIncome.GreaterThan(decimal.Zero) {
		out.NIIT = decimal.Min(investmentIncome, out.AGI.Sub(s.NIITThreshold)).Mul(s.NIITRate)
	}

	out.EarlyWithdrawalPenalties = in.EarlyWithdrawals.Mul(s.EarlyWithdrawalPenaltyRate).
		Add(in.EarlyHSAWithdrawals.Mul(s.HSAPenaltyRate))

	out.TotalTax = incomeTax.Add(out.FICA).Add(out.NIIT)
	return out
}

// ProgressiveTax walks the bracket table: each band ends where the next begins
func ProgressiveTax(brackets []domain.TaxBracket, taxable decimal.Decimal) decimal.Decimal {
	if taxable.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	var total decimal.Decimal
	for i, b := range brackets {
		if taxable.LessThanOrEqual(b.Min) {
			break
		}
		top := taxable
		if i+1 < len(brackets) {
			top = decimal.Min(taxable, brackets[i+1].Min)
		}
		incomeInBracket := top.Sub(b.Min)
		if incomeInBracket.GreaterThan(decimal.Zero) {
			total = total.Add(incomeInBracket.Mul(b.Rate))
		}
	}
	return total
}

// StackedCapitalGainsTax taxes gains in the capital-gains brackets as though they sat
// on top of ordinary taxable income
func StackedCapitalGainsTax(brackets []domain.TaxBracket, ordinary, gains decimal.Decimal) decimal.Decimal {
	if gains.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	ordinary = decimal.Max(decimal.Zero, ordinary)
	total := ordinary.Add(gains)
	var tax decimal.Decimal
	for i, b := range brackets {
		if total.LessThanOrEqual(b.Min) {
			break
		}
		upper := total
		if i+1 < len(brackets) {
			upper = decimal.Min(total, brackets[i+1].Min)
		}
		band := upper.Sub(b.Min)
		usedByOrdinary := decimal.Max(decimal.Zero, decimal.Min(ordinary, upper).Sub(b.Min))
		inBand := band.Sub(usedByOrdinary)
		if inBand.GreaterThan(decimal.Zero) {
			tax = tax.Add(inBand.Mul(b.Rate))
		}
	}
	return tax
}

// MarginalRate is the rate of the bracket that holds the top taxable dollar
func MarginalRate(brackets []domain.TaxBracket, taxable decimal.Decimal) decimal.Decimal {
	rate := decimal.Zero
	if len(brackets) > 0 {
		rate = brackets[0].Rate
	}
	for _, b := range brackets {
		if taxable.GreaterThan(b.Min) {
			rate = b.Rate
		}
	}
	return rate
}

// TaxableSocialSecurity determines the federally taxable portion of benefits.
// Provisional income at or below tier 1 leaves benefits untaxed; between the tiers up to
// half is taxable; above tier 2 up to the maximum fraction is taxable.
func (tc *TaxCalculator) TaxableSocialSecurity(benefits, provisional decimal.Decimal) decimal.Decimal {
	if benefits.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	s := tc.Settings
	half := decimal.NewFromFloat(0.5)
	t1, t2 := s.SSProvisionalThreshold1, s.SSProvisionalThreshold2
	maxTaxable := benefits.Mul(s.SSMaxTaxableFraction)

	var taxable decimal.Decimal
	switch {
	case provisional.LessThanOrEqual(t1):
		return decimal.Zero
	case provisional.LessThanOrEqual(t2):
		taxable = decimal.Min(provisional.Sub(t1).Mul(half), benefits.Mul(half))
	default:
		firstTier := decimal.Min(t2.Sub(t1).Mul(half), benefits.Mul(half))
		taxable = provisional.Sub(t2).Mul(s.SSMaxTaxableFraction).Add(firstTier)
	}
	return decimal.Min(taxable, maxTaxable)
}

// FICA is Social Security tax up to the wage base plus uncapped Medicare
func (tc *TaxCalculator) FICA(wages decimal.Decimal) decimal.Decimal {
	if wages.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	s := tc.Settings
	ssWages := decimal.Min(wages, s.SocialSecurityBase)
	return ssWages.Mul(s.SocialSecurityRate).Add(wages.Mul(s.MedicareRate))
}

// BracketHeadroom is the ordinary income that still fits in the bracket holding the top
// taxable dollar. The top bracket has no headroom.
func BracketHeadroom(brackets []domain.TaxBracket, taxable decimal.Decimal) decimal.Decimal {
	for _, b := range brackets {
		if b.Min.GreaterThan(taxable) {
			return b.Min.Sub(decimal.Max(decimal.Zero, taxable))
		}
	}
	return decimal.Zero
}
