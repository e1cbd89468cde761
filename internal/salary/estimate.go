// Package salary predicts a single monthly rouble salary from a vacancy's salary fork.
package salary

import "github.com/fr4nk3nst1ner/langsalary/internal/models"

const (
	floorBias   = 1.2
	ceilingBias = 0.8
)

// Predict returns the expected salary for a vacancy, or false when it cannot be estimated.
func Predict(v models.Vacancy) (float64, bool) {
	if v == nil {
		return 0, false
	}
	r, ok := v.SalaryRange()
	if !ok {
		return 0, false
	}
	return FromRange(r)
}

// FromRange applies the midpoint-with-bias policy to a salary fork.
// A zero bound counts as missing.
func FromRange(r models.SalaryRange) (float64, bool) {
	from, hasFrom := bound(r.From)
	to, hasTo := bound(r.To)

	switch {
	case hasFrom && hasTo:
		return float64(from+to) / 2, true
	case hasFrom:
		return float64(from) * floorBias, true
	case hasTo:
		return float64(to) * ceilingBias, true
	}
	return 0, false
}

func bound(v *int) (int, bool) {
	if v == nil || *v == 0 {
		return 0, false
	}
	return *v, true
}

// Average truncates each estimate to whole roubles and returns the floored mean.
// Nil means nothing was estimable.
func Average(estimates []float64) *int {
	if len(estimates) == 0 {
		return nil
	}
	var sum int
	for _, e := range estimates {
		sum += int(e)
	}
	avg := sum / len(estimates)
	return &avg
}
