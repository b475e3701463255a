package calc

// BudgetSummary compares a project budget with committed task and work package costs.
type BudgetSummary struct {
	Total       float64 `json:"total"`
	Committed   float64 `json:"committed"`
	Remaining   float64 `json:"remaining"`
	Utilization float64 `json:"utilization_pct"`
}

func (b BudgetSummary) OverBudget() bool {
	return b.Remaining < 0
}

func Budget(total float64, costs ...[]float64) BudgetSummary {
	var committed float64
	for _, group := range costs {
		for _, c := range group {
			committed += c
		}
	}
	b := BudgetSummary{Total: total, Committed: committed, Remaining: total - committed}
	if total > 0 {
		b.Utilization = committed / total * 100
	}
	return b
}
