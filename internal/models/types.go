package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Source identifies the recruiting platform a vacancy came from
type Source string

const (
	SourceHeadHunter Source = "hh"
	SourceSuperJob   Source = "superjob"
)

// Target currency literals. Both mean roubles but each platform spells it its own way.
const (
	HeadHunterCurrency = "RUR"
	SuperJobCurrency   = "rub"
)

// Title returns the display name of the source
func (s Source) Title() string {
	switch s {
	case SourceHeadHunter:
		return "HeadHunter"
	case SourceSuperJob:
		return "SuperJob"
	default:
		return string(s)
	}
}

// SalaryRange is the salary fork advertised by a vacancy
type SalaryRange struct {
	From     *int
	To       *int
	Currency string
}

// Vacancy is a raw listing from one of the sources. Each variant knows its own field layout.
type Vacancy interface {
	Source() Source
	// SalaryRange returns false when the vacancy has no salary or it is not in the target currency.
	SalaryRange() (SalaryRange, bool)
}

// HHSalary is the nested salary object of a HeadHunter vacancy
type HHSalary struct {
	From     *int   `json:"from"`
	To       *int   `json:"to"`
	Currency string `json:"currency"`
	Gross    *bool  `json:"gross,omitempty"`
}

// HHVacancy represents a vacancy item from the HeadHunter API
type HHVacancy struct {
	ID     string    `json:"id"`
	Name   string    `json:"name"`
	URL    string    `json:"alternate_url"`
	Salary *HHSalary `json:"salary"`
}

func (v HHVacancy) Source() Source { return SourceHeadHunter }

func (v HHVacancy) SalaryRange() (SalaryRange, bool) {
	if v.Salary == nil || v.Salary.Currency != HeadHunterCurrency {
		return SalaryRange{}, false
	}
	return SalaryRange{From: v.Salary.From, To: v.Salary.To, Currency: v.Salary.Currency}, true
}

// SuperJobVacancy represents a vacancy object from the SuperJob API
type SuperJobVacancy struct {
	ID          int    `json:"id"`
	Profession  string `json:"profession"`
	FirmName    string `json:"firm_name"`
	Link        string `json:"link"`
	PaymentFrom *int   `json:"payment_from"`
	PaymentTo   *int   `json:"payment_to"`
	Currency    string `json:"currency"`
}

func (v SuperJobVacancy) Source() Source { return SourceSuperJob }

func (v SuperJobVacancy) SalaryRange() (SalaryRange, bool) {
	if v.Currency != SuperJobCurrency {
		return SalaryRange{}, false
	}
	return SalaryRange{From: v.PaymentFrom, To: v.PaymentTo, Currency: v.Currency}, true
}

// TermStats holds the salary statistics for one search term on one source
type TermStats struct {
	Term               string `json:"term"`
	VacanciesFound     int    `json:"vacancies_found"`
	VacanciesProcessed int    `json:"vacancies_processed"`
	AverageSalary      *int   `json:"average_salary"`
	Err                string `json:"error,omitempty"`
}

// StatsReport maps search terms to their statistics for a single source, keeping term order
type StatsReport struct {
	Source Source
	Area   int
	terms  []string
	stats  map[string]TermStats
}

// NewStatsReport creates an empty report for a source
func NewStatsReport(source Source, area int) *StatsReport {
	return &StatsReport{
		Source: source,
		Area:   area,
		stats:  make(map[string]TermStats),
	}
}

// Set stores stats for a term. A new term is appended after the existing ones.
func (r *StatsReport) Set(stats TermStats) {
	if _, ok := r.stats[stats.Term]; !ok {
		r.terms = append(r.terms, stats.Term)
	}
	r.stats[stats.Term] = stats
}

// Get returns the stats for a term
func (r *StatsReport) Get(term string) (TermStats, bool) {
	s, ok := r.stats[term]
	return s, ok
}

// Terms returns the terms in report order
func (r *StatsReport) Terms() []string {
	out := make([]string, len(r.terms))
	copy(out, r.terms)
	return out
}

// Len returns the number of terms in the report
func (r *StatsReport) Len() int {
	return len(r.terms)
}

// Each calls fn for every term in report order
func (r *StatsReport) Each(fn func(TermStats)) {
	for _, term := range r.terms {
		fn(r.stats[term])
	}
}

// MarshalJSON writes the stats as an object whose keys follow report order
func (r *StatsReport) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `{"source":%q,"area":%d,"stats":{`, r.Source, r.Area)
	for i, term := range r.terms {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(term)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(r.stats[term])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteString("}}")
	return buf.Bytes(), nil
}
