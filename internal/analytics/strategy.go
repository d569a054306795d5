package analytics

import "github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/model"

// HoursStrategy yields the hours a task contributes, or false when the
// strategy has no value for it and the next one in the chain should be tried.
type HoursStrategy struct {
	Name  string
	Hours func(t *model.Task) (float64, bool)
}

// EstimateHours uses the planned estimate when one was given.
var EstimateHours = HoursStrategy{
	Name: "estimate",
	Hours: func(t *model.Task) (float64, bool) {
		return t.EstimateHours, t.EstimateHours > 0
	},
}

// ActualHours uses the time actually logged.
var ActualHours = HoursStrategy{
	Name: "actual",
	Hours: func(t *model.Task) (float64, bool) {
		return t.ActualHours, t.ActualHours > 0
	},
}

// StrategyByName looks up a built-in strategy.
func StrategyByName(name string) (HoursStrategy, bool) {
	switch name {
	case EstimateHours.Name:
		return EstimateHours, true
	case ActualHours.Name:
		return ActualHours, true
	}
	return HoursStrategy{}, false
}

// Contribution returns the value of the first strategy in chain that has
// one for t, or 0.
func Contribution(t *model.Task, chain []HoursStrategy) float64 {
	for _, s := range chain {
		if v, ok := s.Hours(t); ok {
			return v
		}
	}
	return 0
}

// nonNegative clamps hours read from a task record to >= 0.
func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
