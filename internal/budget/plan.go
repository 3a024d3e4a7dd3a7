package budget

import (
	"strings"

	"github.com/phobologic/llmexplain/internal/model"
)

// Plan is the budget decision for a method, computed without any completion
// calls.
type Plan struct {
	Function   string
	Tokens     int
	MaxTokens  int
	Mode       model.MaterialKind
	References []PlannedReference
}

// PlannedReference describes one reference of a Plan.
type PlannedReference struct {
	Identifier string
	Tokens     int
	Lines      int
}

// Plan estimates method and reports how its references would be sent.
func (p *Planner) Plan(method *model.PreparedMethod) *Plan {
	estimate := p.Estimate(method)
	plan := &Plan{
		Function:  method.Name,
		Tokens:    estimate,
		MaxTokens: p.cfg.MaxContextTokens,
		Mode:      model.Raw,
	}
	if p.OverBudget(estimate) {
		plan.Mode = model.Summary
	}
	for _, ref := range method.References {
		plan.References = append(plan.References, PlannedReference{
			Identifier: ref.Identifier,
			Tokens:     p.counter.CountTokens(ref.Source),
			Lines:      lineCount(ref.Source),
		})
	}
	return plan
}

func lineCount(s string) int {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}
