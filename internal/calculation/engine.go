package calculation

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rgehrsitz/fireplan/internal/domain"
	"github.com/rgehrsitz/fireplan/internal/sequencing"
	"github.com/shopspring/decimal"
)

// SimulationEngine runs the yearly state machine over a plan
type SimulationEngine struct {
	logger Logger
}

// NewSimulationEngine creates a new simulation engine
func NewSimulationEngine() *SimulationEngine {
	return &SimulationEngine{logger: NopLogger{}}
}

// SetLogger sets the logger used for step traces. Nil restores the no-op logger.
func (e *SimulationEngine) SetLogger(l Logger) {
	e.logger = loggerOrNop(l)
}

// RunPlan builds the returns provider for the plan's mode and seed and runs it
func (e *SimulationEngine) RunPlan(ctx context.Context, plan *domain.PlanInputs) (*domain.SimulationResult, error) {
	if plan == nil {
		return nil, fmt.Errorf("nil plan: %w", domain.ErrInvalidInput)
	}
	provider, err := NewReturnsProvider(plan, plan.Simulation.Seed)
	if err != nil {
		return nil, err
	}
	return e.Run(ctx, plan, provider)
}

// Run simulates the plan from the current age to life expectancy or bankruptcy. The plan is
// read-only; every piece of mutable state belongs to this call. Internal balance invariant
// violations come back as errors wrapping domain.ErrNegativeBalance.
func (e *SimulationEngine) Run(ctx context.Context, plan *domain.PlanInputs, provider ReturnsProvider) (result *domain.SimulationResult, err error) {
	if plan == nil || provider == nil {
		return nil, fmt.Errorf("plan and returns provider are required: %w", domain.ErrInvalidInput)
	}
	defer func() {
		if r := recover(); r != nil {
			perr, ok := r.(error)
			if !ok || !errors.Is(perr, domain.ErrNegativeBalance) {
				panic(r)
			}
			result, err = nil, fmt.Errorf("simulation aborted: %w", perr)
		}
	}()

	sim, err := newSimulation(plan, loggerOrNop(e.logger))
	if err != nil {
		return nil, err
	}

	// whole years only: the last point never passes life expectancy
	years := int(math.Floor(plan.Timeline.LifeExpectancy - sim.startAge))
	if years < 0 {
		years = 0
	}
	result = &domain.SimulationResult{
		Context: domain.SimulationContext{
			StartAge:           sim.startAge,
			EndAge:             plan.Timeline.LifeExpectancy,
			YearsToSimulate:    years,
			RetirementStrategy: plan.Timeline.RetirementStrategy,
			Mode:               plan.Simulation.Mode,
			Seed:               plan.Simulation.Seed,
			WithdrawalStrategy: sim.strategy.Name(),
		},
		Data: make([]domain.SimulationDataPoint, 0, years+1),
	}
	result.Data = append(result.Data, sim.initialPoint())

	for i := 1; i <= years; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		point, err := sim.step(i, provider)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		result.Data = append(result.Data, point)
		if point.Phase == domain.PhaseBankrupt {
			break
		}
	}

	if r, ok := provider.(HistoricalRangeReporter); ok {
		result.HistoricalRanges = r.HistoricalRanges()
	}
	return result, nil
}

// simulation is the mutable state of one trajectory
type simulation struct {
	plan     *domain.PlanInputs
	logger   Logger
	taxes    *TaxCalculator
	rmd      *RMDCalculator
	strategy sequencing.SequencingStrategy
	rules    []domain.ContributionRule

	startAge float64
	time     TimeContext
	phase    domain.Phase

	accounts []*accountState
	byID     map[string]*accountState
	flows    *cashFlows
	debts    []*debtState
	assets   []*assetState

	shortfall        decimal.Decimal
	lossCarryforward decimal.Decimal
	spendingHistory  []decimal.Decimal
}

func newSimulation(plan *domain.PlanInputs, logger Logger) (*simulation, error) {
	tl := plan.Timeline
	s := &simulation{
		plan:     plan,
		logger:   logger,
		taxes:    NewTaxCalculator(plan.TaxSettings),
		rmd:      NewRMDCalculator(plan.TaxSettings.RMDStartAge),
		strategy: sequencing.CreateStrategy(plan.Simulation.WithdrawalStrategy, plan.Simulation.WithdrawalOrder),
		rules:    orderedRules(plan.ContributionRules),
		startAge: tl.CurrentAge(),
		phase:    domain.PhaseAccumulating,
		byID:     make(map[string]*accountState, len(plan.Accounts)),
		flows:    newCashFlows(plan),
	}
	s.time = TimeContext{
		CurrentAge:     s.startAge,
		BirthMonth:     tl.BirthMonth,
		BirthYear:      tl.BirthYear,
		LifeExpectancy: tl.LifeExpectancy,
	}

	switch tl.RetirementStrategy.Type {
	case domain.RetirementFixedAge, "":
		age := tl.RetirementStrategy.RetirementAge
		s.time.RetirementAge = &age
		if s.startAge >= age {
			s.phase = domain.PhaseRetired
		}
	case domain.RetirementSWRTarget:
	default:
		return nil, fmt.Errorf("unknown retirement strategy %q: %w", tl.RetirementStrategy.Type, domain.ErrInvalidInput)
	}

	for _, a := range plan.Accounts {
		if _, dup := s.byID[a.ID]; dup {
			return nil, fmt.Errorf("duplicate account id %q: %w", a.ID, domain.ErrInvalidInput)
		}
		state := newAccountState(a)
		s.accounts = append(s.accounts, state)
		s.byID[a.ID] = state
	}
	for _, d := range plan.Debts {
		if !d.Disabled {
			s.debts = append(s.debts, newDebtState(d))
		}
	}
	for _, a := range plan.PhysicalAssets {
		state, err := newAssetState(a, s.time)
		if err != nil {
			return nil, err
		}
		s.assets = append(s.assets, state)
	}
	return s, nil
}

// initialPoint is index 0: the plan as it stands today
func (s *simulation) initialPoint() domain.SimulationDataPoint {
	point := domain.SimulationDataPoint{
		Year:      0,
		Age:       s.startAge,
		Phase:     s.phase,
		Portfolio: portfolioSnapshot(s.accounts),
		Debts:     []domain.DebtSnapshot{},
	}
	point.PhysicalAssets, point.NetWorth = s.balanceSheet(point.Portfolio.TotalValue)
	for _, a := range s.assets {
		if a.owned && a.loan != nil {
			point.Debts = append(point.Debts, a.loan.snapshot(decimal.Zero, decimal.Zero))
		}
	}
	for _, d := range s.debts {
		if reached, err := TimepointReached(d.start, s.time, s.startAge); err == nil && reached {
			point.Debts = append(point.Debts, d.loan.snapshot(decimal.Zero, decimal.Zero))
			point.NetWorth = point.NetWorth.Sub(d.loan.balance)
		}
	}
	return point
}

// balanceSheet snapshots the visible physical assets and returns net worth before plan
// debts. Asset loans are already netted out of equity.
func (s *simulation) balanceSheet(portfolio decimal.Decimal) ([]domain.AssetSnapshot, decimal.Decimal) {
	assets := []domain.AssetSnapshot{}
	netWorth := portfolio
	for _, a := range s.assets {
		if !a.visible() {
			continue
		}
		assets = append(assets, a.snapshot())
		netWorth = netWorth.Add(a.equity())
	}
	return assets, netWorth
}

// step advances one simulated year. The step covers [startAge+index-1, startAge+index) and
// its data point is stamped with the end age.
func (s *simulation) step(index int, provider ReturnsProvider) (domain.SimulationDataPoint, error) {
	age := s.startAge + float64(index-1)
	endAge := s.startAge + float64(index)
	carriedIn := s.shortfall

	for _, a := range s.accounts {
		a.resetActivity()
	}

	// Returns first: yields and RMDs are based on start-of-year balances
	sample := provider.Next(s.phase)
	if index > 1 {
		s.flows.advance(sample.Inflation)
	}
	due := s.requiredDistributions(age)
	interest, dividends := decimal.Zero, decimal.Zero
	for _, a := range s.accounts {
		i, d := a.investmentIncome(sample)
		interest = interest.Add(i)
		dividends = dividends.Add(d)
		a.applyReturns(sample)
	}
	if err := applyGlidePath(s.plan.GlidePath, s.accounts, s.time, age); err != nil {
		return domain.SimulationDataPoint{}, fmt.Errorf("glide path: %w", err)
	}

	income, expenses, err := s.flows.resolve(s.time, age)
	if err != nil {
		return domain.SimulationDataPoint{}, err
	}

	debtSnaps := []domain.DebtSnapshot{}
	debtPayments := decimal.Zero
	debtBalances := decimal.Zero
	for _, d := range s.debts {
		snap, err := d.step(s.time, age, sample.Inflation)
		if err != nil {
			return domain.SimulationDataPoint{}, err
		}
		if !d.started {
			continue
		}
		debtSnaps = append(debtSnaps, snap)
		debtPayments = debtPayments.Add(snap.Payments)
		debtBalances = debtBalances.Add(snap.Balance)
	}

	var outlay, saleProceeds decimal.Decimal
	for _, a := range s.assets {
		act, err := a.step(s.time, age, sample.Inflation)
		if err != nil {
			return domain.SimulationDataPoint{}, err
		}
		outlay = outlay.Add(act.outlay)
		saleProceeds = saleProceeds.Add(act.saleProceeds)
		debtPayments = debtPayments.Add(act.loanPayments)
		if a.loan != nil && act.loanPayments.IsPositive() {
			debtSnaps = append(debtSnaps, a.loan.snapshot(act.loanInterest, act.loanPayments))
		}
	}

	rmdTotal := takeDistributions(due)

	base := TaxInput{
		Wages:                   income.Wages,
		SocialSecurity:          income.SocialSecurity,
		OtherOrdinaryIncome:     income.Other,
		Interest:                interest,
		QualifiedDividends:      dividends,
		RetirementDistributions: rmdTotal,
		CapitalLossCarryforward: s.lossCarryforward,
	}
	baseTax := s.taxes.Calculate(base)

	cashIn := income.Total().Add(rmdTotal).Add(saleProceeds)
	cashOut := expenses.Add(debtPayments).Add(outlay)
	net := cashIn.Sub(cashOut).Sub(baseTax.TotalTaxAndPenalties()).Round(2)

	flow := domain.CashFlowBreakdown{
		WageIncome:           income.Wages,
		SocialSecurityIncome: income.SocialSecurity,
		TaxFreeIncome:        income.TaxFree,
		OtherIncome:          income.Other,
		TotalIncome:          income.Total(),
		Expenses:             expenses,
		DebtPayments:         debtPayments,
		AssetPurchaseOutlay:  outlay,
		AssetSaleProceeds:    saleProceeds,
	}

	var tax domain.TaxBreakdown
	deficitStep := net.IsNegative()
	if !deficitStep {
		tax = s.allocateSurplus(net, base, baseTax, income, age, &flow)
	} else {
		out := s.coverDeficit(net.Neg(), base, baseTax, age)
		s.applyWithdrawals(out.plan)
		tax = out.tax
		s.shortfall = out.shortfall()
		if excess := out.plan.TotalSourced.Sub(out.required); excess.GreaterThanOrEqual(cent) {
			s.savingsSink().deposit(excess)
		}
		flow.ShortfallRepaid = decimal.Min(carriedIn, out.plan.TotalSourced)
		s.logger.Debugf("step %d: deficit %s covered by %s in %d passes via %s", index,
			net.Neg().StringFixed(2), out.plan.TotalSourced.StringFixed(2), out.passes, out.plan.StrategyUsed)
	}
	s.lossCarryforward = tax.CapitalLossCarryover

	flow.TaxesAndPenalties = tax.TotalTaxAndPenalties()
	flow.SurplusDeficit = cashIn.Sub(cashOut).Sub(flow.TaxesAndPenalties).Round(2)
	flow.OutstandingShortfall = s.shortfall

	s.spendingHistory = append(s.spendingHistory, expenses.Add(debtPayments))

	portfolio := portfolioSnapshot(s.accounts)
	s.advancePhase(endAge, portfolio.TotalValue, isBankrupt(deficitStep, portfolio.TotalValue, carriedIn, s.shortfall))

	point := domain.SimulationDataPoint{
		Year:      index,
		Age:       endAge,
		Phase:     s.phase,
		Portfolio: portfolio,
		Taxes:     &tax,
		CashFlow:  &flow,
		Returns:   &sample,
	}
	assets, netWorth := s.balanceSheet(portfolio.TotalValue)
	point.PhysicalAssets = assets
	point.Debts = debtSnaps
	point.NetWorth = netWorth.Sub(debtBalances)

	s.logger.Debugf("step %d age %.2f phase %s portfolio %s net worth %s", index, endAge, s.phase,
		portfolio.TotalValue.StringFixed(2), point.NetWorth.StringFixed(2))
	return point, nil
}

// allocateSurplus repays any shortfall, parks excess RMD proceeds in savings, runs the
// contribution waterfall and applies the base rule to what is left. Pre-tax contributions
// lower the year's tax; the saving joins the leftover.
func (s *simulation) allocateSurplus(surplus decimal.Decimal, base TaxInput, baseTax domain.TaxBreakdown, income IncomeTotals, age float64, flow *domain.CashFlowBreakdown) domain.TaxBreakdown {
	remaining := surplus

	repaid := decimal.Min(remaining, s.shortfall)
	s.shortfall = s.shortfall.Sub(repaid)
	remaining = remaining.Sub(repaid)
	flow.ShortfallRepaid = repaid

	if rmdExcess := decimal.Min(remaining, base.RetirementDistributions); rmdExcess.IsPositive() {
		s.savingsSink().deposit(rmdExcess)
		remaining = remaining.Sub(rmdExcess)
	}

	contrib := s.runContributions(remaining, income, age)
	remaining = remaining.Sub(contrib.used)

	tax := baseTax
	if contrib.adjustments.IsPositive() {
		base.Adjustments = contrib.adjustments
		tax = s.taxes.Calculate(base)
		remaining = remaining.Add(baseTax.TotalTaxAndPenalties().Sub(tax.TotalTaxAndPenalties()))
	}
	remaining = remaining.Round(2)

	if remaining.IsPositive() {
		switch s.plan.BaseRule {
		case domain.BaseRuleSpend:
			flow.Spent = remaining
		default:
			s.savingsSink().deposit(remaining)
		}
	}
	return tax
}
