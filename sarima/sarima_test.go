package sarima

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ohincu/co2-forecasting/timeseries"
)

func monthlySeries(t *testing.T, values []float64) *timeseries.Series {
	t.Helper()
	s, err := timeseries.NewMonthly(time.Date(1958, time.March, 1, 0, 0, 0, 0, time.UTC), values)
	require.NoError(t, err)
	return s
}

// co2Like builds baseline + slope*t + amplitude*sin(2*pi*t/12) + noise.
func co2Like(n int, baseline, slope, amplitude, noiseStd float64, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	values := make([]float64, n)
	for i := range values {
		ti := float64(i)
		values[i] = baseline + slope*ti + amplitude*math.Sin(2*math.Pi*ti/12) + noiseStd*rng.NormFloat64()
	}
	return values
}

func TestOrderValidate(t *testing.T) {
	valid := Order{P: 1, D: 1, Q: 1, SP: 2, SD: 1, SQ: 1, Period: 12}
	require.NoError(t, valid.Validate())
	assert.Equal(t, 5, valid.NumParams())
	assert.Equal(t, "SARIMA(1,1,1)(2,1,1)[12]", valid.String())

	negative := Order{P: -1, Period: 12}
	assert.ErrorIs(t, negative.Validate(), timeseries.ErrInvalidOrder)

	seasonalNoPeriod := Order{SP: 1, Period: 1}
	assert.ErrorIs(t, seasonalNoPeriod.Validate(), timeseries.ErrInvalidOrder)

	nonSeasonal := Order{P: 2, D: 1, Q: 1}
	require.NoError(t, nonSeasonal.Validate())
}

func TestFitRejectsBadInput(t *testing.T) {
	s := monthlySeries(t, co2Like(30, 280, 0.015, 3, 0.3, 1))

	// Differencing consumes the series.
	m := New(Order{D: 2, SD: 3, SQ: 0, Period: 12})
	assert.ErrorIs(t, m.Fit(s), timeseries.ErrInvalidOrder)

	// Too short for the seasonal lags.
	m = New(Order{P: 1, SD: 1, SP: 1, Period: 12})
	assert.ErrorIs(t, m.Fit(s), timeseries.ErrInsufficientData)
	assert.False(t, m.Fitted())
}

func TestFitWhiteNoiseModel(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	values := make([]float64, 100)
	for i := range values {
		values[i] = 5 + rng.NormFloat64()
	}
	s := monthlySeries(t, values)

	m := New(Order{})
	require.NoError(t, m.Fit(s))

	assert.InDelta(t, 5.0, m.Intercept, 0.3)
	assert.InDelta(t, 1.0, m.Variance, 0.35)
	require.Len(t, m.Residuals(), 100)

	// Residuals are exactly the demeaned values.
	mean := 0.0
	for _, r := range m.Residuals() {
		mean += r
	}
	assert.InDelta(t, 0, mean/100, 1e-9)
}

func TestFitRecoversARCoefficient(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	const phi = 0.6
	values := make([]float64, 500)
	for i := 1; i < len(values); i++ {
		values[i] = phi*values[i-1] + rng.NormFloat64()
	}
	s := monthlySeries(t, values)

	m := New(Order{P: 1})
	require.NoError(t, m.Fit(s))

	require.Len(t, m.ARCoeffs, 1)
	assert.InDelta(t, phi, m.ARCoeffs[0], 0.1)
	assert.True(t, m.Fitted())
	assert.Less(t, m.AIC, m.BIC, "BIC penalizes harder at this sample size")
}

func TestFitDeterminism(t *testing.T) {
	s := monthlySeries(t, co2Like(240, 280, 0.015, 3, 0.4, 4))
	order := Order{P: 1, D: 1, Q: 1, SP: 1, SD: 1, SQ: 1, Period: 12}

	first := New(order)
	require.NoError(t, first.Fit(s))
	second := New(order)
	require.NoError(t, second.Fit(s))

	assert.Equal(t, first.ARCoeffs, second.ARCoeffs)
	assert.Equal(t, first.MACoeffs, second.MACoeffs)
	assert.Equal(t, first.SARCoeffs, second.SARCoeffs)
	assert.Equal(t, first.SMACoeffs, second.SMACoeffs)
	assert.Equal(t, first.Intercept, second.Intercept)
	assert.Equal(t, first.Variance, second.Variance)
	assert.Equal(t, first.LogLik, second.LogLik)
}

func TestFitIsAtomic(t *testing.T) {
	s := monthlySeries(t, co2Like(240, 280, 0.015, 3, 0.4, 5))
	good := Order{P: 1, D: 1, Q: 0, Period: 12}

	m := New(good)
	require.NoError(t, m.Fit(s))
	wantAR := m.ARCoeffs

	// A failing refit must not clobber the fitted state.
	m.Order = Order{P: 1, SD: 40, SP: 1, Period: 12}
	require.Error(t, m.Fit(s))

	m.Order = good
	assert.Equal(t, wantAR, m.ARCoeffs)
}

func TestSummary(t *testing.T) {
	s := monthlySeries(t, co2Like(240, 280, 0.015, 3, 0.4, 6))

	m := New(Order{P: 1, D: 1, Q: 1, SD: 1, Period: 12})
	require.NoError(t, m.Fit(s))

	sum := m.Summary()
	require.NotNil(t, sum)
	assert.Equal(t, 240, sum.NObs)
	assert.Equal(t, m.AICc, sum.AICc)
	require.NotNil(t, sum.LjungBox)
	assert.Equal(t, 24, sum.LjungBox.Lags)
	assert.True(t, math.IsNaN(sum.Lambda), "no transform was requested")

	assert.Nil(t, New(Order{}).Summary())
}
