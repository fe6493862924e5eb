package sequencing

import "fmt"

// CustomStrategy executes withdrawals in a user-specified order of account IDs.
// Accounts missing from the sequence are drawn afterwards in the standard order.
// An empty sequence, a duplicate or an unknown account falls back to standard.
type CustomStrategy struct {
	Sequence []string
}

func NewCustomStrategy(sequence []string) *CustomStrategy { return &CustomStrategy{Sequence: sequence} }

func (s *CustomStrategy) Name() string { return StrategyCustom }

func (s *CustomStrategy) Plan(sources []WithdrawalSource, ctx StrategyContext) WithdrawalPlan {
	index := make(map[string]int, len(sources))
	for i := range sources {
		index[sources[i].AccountID] = i
	}

	if err := s.validate(index); err != nil {
		plan := NewStandardStrategy().Plan(sources, ctx)
		plan.StrategyUsed = StrategyCustom + "->" + StrategyStandard + "_fallback"
		plan.Notes = append(plan.Notes, err.Error()+" - falling back to standard")
		return plan
	}

	order := make([]int, 0, len(sources))
	listed := make(map[int]bool, len(s.Sequence))
	for _, id := range s.Sequence {
		order = append(order, index[id])
		listed[index[id]] = true
	}
	for _, i := range standardOrder(sources) {
		if !listed[i] {
			order = append(order, i)
		}
	}

	p := newPlanner(s.Name(), sources, ctx)
	p.drawAll(order)
	return p.finish()
}

func (s *CustomStrategy) validate(index map[string]int) error {
	if len(s.Sequence) == 0 {
		return fmt.Errorf("empty custom sequence")
	}
	seen := map[string]bool{}
	for _, id := range s.Sequence {
		if _, ok := index[id]; !ok {
			return fmt.Errorf("unknown account %q in custom sequence", id)
		}
		if seen[id] {
			return fmt.Errorf("duplicate account %q in custom sequence", id)
		}
		seen[id] = true
	}
	return nil
}
