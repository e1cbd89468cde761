package salary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fr4nk3nst1ner/langsalary/internal/models"
)

func intPtr(v int) *int { return &v }

func TestPredict(t *testing.T) {
	tests := []struct {
		name    string
		vacancy models.Vacancy
		want    float64
		ok      bool
	}{
		{
			name:    "hh both bounds",
			vacancy: models.HHVacancy{Salary: &models.HHSalary{Currency: "RUR", From: intPtr(100000), To: intPtr(150000)}},
			want:    125000,
			ok:      true,
		},
		{
			name:    "hh only from",
			vacancy: models.HHVacancy{Salary: &models.HHSalary{Currency: "RUR", From: intPtr(100000)}},
			want:    120000,
			ok:      true,
		},
		{
			name:    "hh only to",
			vacancy: models.HHVacancy{Salary: &models.HHSalary{Currency: "RUR", To: intPtr(100000)}},
			want:    80000,
			ok:      true,
		},
		{
			name:    "hh wrong currency",
			vacancy: models.HHVacancy{Salary: &models.HHSalary{Currency: "USD", From: intPtr(100000)}},
		},
		{
			name:    "hh superjob currency literal is not accepted",
			vacancy: models.HHVacancy{Salary: &models.HHSalary{Currency: "rub", From: intPtr(100000)}},
		},
		{
			name:    "hh no salary",
			vacancy: models.HHVacancy{Name: "Go developer"},
		},
		{
			name:    "hh no bounds",
			vacancy: models.HHVacancy{Salary: &models.HHSalary{Currency: "RUR"}},
		},
		{
			name:    "superjob zero from falls back to to",
			vacancy: models.SuperJobVacancy{PaymentFrom: intPtr(0), PaymentTo: intPtr(80000), Currency: "rub"},
			want:    64000,
			ok:      true,
		},
		{
			name:    "superjob both bounds",
			vacancy: models.SuperJobVacancy{PaymentFrom: intPtr(60000), PaymentTo: intPtr(90000), Currency: "rub"},
			want:    75000,
			ok:      true,
		},
		{
			name:    "superjob zero bounds",
			vacancy: models.SuperJobVacancy{PaymentFrom: intPtr(0), PaymentTo: intPtr(0), Currency: "rub"},
		},
		{
			name:    "superjob hh currency literal is not accepted",
			vacancy: models.SuperJobVacancy{PaymentFrom: intPtr(60000), Currency: "RUR"},
		},
		{
			name: "nil vacancy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Predict(tt.vacancy)
			require.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestPredictIsDeterministic(t *testing.T) {
	v := models.HHVacancy{Salary: &models.HHSalary{Currency: "RUR", From: intPtr(95000)}}
	first, ok := Predict(v)
	require.True(t, ok)
	for i := 0; i < 10; i++ {
		again, ok := Predict(v)
		require.True(t, ok)
		assert.Equal(t, first, again)
	}
	assert.Equal(t, 95000, *v.Salary.From, "input must not be mutated")
}

func TestAverage(t *testing.T) {
	assert.Nil(t, Average(nil))
	assert.Nil(t, Average([]float64{}))

	avg := Average([]float64{125000, 64000, 100000.9})
	require.NotNil(t, avg)
	assert.Equal(t, 96333, *avg)

	avg = Average([]float64{0.8, 10})
	require.NotNil(t, avg)
	assert.Equal(t, 5, *avg, "estimates truncated to zero still count")

	avg = Average([]float64{0.8})
	require.NotNil(t, avg)
	assert.Zero(t, *avg)
}
