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

func TestForecastRequiresFittedModel(t *testing.T) {
	m := New(Order{P: 1})
	_, err := m.Forecast(12, 0.95)
	assert.ErrorIs(t, err, ErrNotFitted)
}

func TestForecastRejectsBadArguments(t *testing.T) {
	m := New(Order{})
	require.NoError(t, m.Fit(monthlySeries(t, co2Like(60, 280, 0, 0, 0.5, 10))))

	for _, horizon := range []int{0, -3} {
		_, err := m.Forecast(horizon, 0.95)
		assert.ErrorIs(t, err, timeseries.ErrInvalidOrder)
	}
	for _, conf := range []float64{0, 1, -0.5, 1.5} {
		_, err := m.Forecast(12, conf)
		assert.ErrorIs(t, err, timeseries.ErrInvalidOrder)
	}
}

func TestForecastContinuity(t *testing.T) {
	start := time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC)
	s, err := timeseries.NewMonthly(start, co2Like(120, 280, 0.015, 3, 0.3, 11))
	require.NoError(t, err)

	m := New(Order{P: 1, D: 1, Period: 12})
	require.NoError(t, m.Fit(s))

	fc, err := m.Forecast(6, 0.95)
	require.NoError(t, err)
	require.Equal(t, 6, fc.Horizon())

	// First step is the month right after the training series; the rest are
	// consecutive months.
	assert.Equal(t, s.End().AddDate(0, 1, 0), fc.Points[0].Time)
	for i := 1; i < len(fc.Points); i++ {
		assert.Equal(t, fc.Points[i-1].Time.AddDate(0, 1, 0), fc.Points[i].Time)
	}
	assert.Len(t, fc.Values(), 6)
}

func TestForecastIntervalWidthsNeverShrink(t *testing.T) {
	s := monthlySeries(t, co2Like(300, 280, 0.015, 3, 0.5, 12))

	orders := []Order{
		{D: 1},
		{P: 1, D: 1, Q: 1, Period: 12},
		{P: 1, D: 1, Q: 1, SP: 1, SD: 1, SQ: 1, Period: 12},
	}
	for _, o := range orders {
		m := New(o)
		require.NoError(t, m.Fit(s), o.String())

		fc, err := m.Forecast(24, 0.95)
		require.NoError(t, err, o.String())

		prev := 0.0
		for h, p := range fc.Points {
			width := p.Upper - p.Lower
			assert.Positive(t, width, "%s step %d", o, h)
			assert.GreaterOrEqual(t, width+1e-12, prev, "%s step %d", o, h)
			assert.Less(t, p.Lower, p.Value, "%s step %d", o, h)
			assert.Greater(t, p.Upper, p.Value, "%s step %d", o, h)
			prev = width
		}
	}
}

func TestForecastRandomWalkVarianceGrowth(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	values := make([]float64, 200)
	values[0] = 100
	for i := 1; i < len(values); i++ {
		values[i] = values[i-1] + 0.5 + rng.NormFloat64()
	}
	s := monthlySeries(t, values)

	m := New(Order{D: 1})
	require.NoError(t, m.Fit(s))

	fc, err := m.Forecast(9, 0.95)
	require.NoError(t, err)

	// ARIMA(0,1,0) with drift: psi weights are all one, so the interval
	// width grows exactly as sqrt(h).
	w1 := fc.Points[0].Upper - fc.Points[0].Lower
	w4 := fc.Points[3].Upper - fc.Points[3].Lower
	w9 := fc.Points[8].Upper - fc.Points[8].Lower
	assert.InDelta(t, 2.0, w4/w1, 1e-9)
	assert.InDelta(t, 3.0, w9/w1, 1e-9)

	// Point forecasts extend the estimated drift.
	drift := fc.Points[1].Value - fc.Points[0].Value
	assert.InDelta(t, 0.5, drift, 0.2)
	assert.InDelta(t, drift, fc.Points[8].Value-fc.Points[7].Value, 1e-9)
}

func TestForecastTracksTrendAndSeasonality(t *testing.T) {
	const (
		n         = 780
		baseline  = 280.0
		slope     = 0.015
		amplitude = 3.0
	)
	s := monthlySeries(t, co2Like(n, baseline, slope, amplitude, 0.2, 14))

	m := New(Order{P: 1, D: 1, Q: 1, SP: 2, SD: 1, SQ: 1, Period: 12})
	require.NoError(t, m.Fit(s))

	fc, err := m.Forecast(12, 0.95)
	require.NoError(t, err)

	for h, p := range fc.Points {
		ti := float64(n + h)
		want := baseline + slope*ti + amplitude*math.Sin(2*math.Pi*ti/12)
		assert.InDelta(t, want, p.Value, 1.5, "step %d", h)
		assert.Less(t, p.Lower, p.Value, "step %d", h)
		assert.Greater(t, p.Upper, p.Value, "step %d", h)
	}

	// The seasonal swing must survive into the forecast: roughly 2*amplitude
	// between the annual peak and trough.
	lo, hi := fc.Points[0].Value, fc.Points[0].Value
	for _, p := range fc.Points[1:] {
		lo = math.Min(lo, p.Value)
		hi = math.Max(hi, p.Value)
	}
	assert.InDelta(t, 2*amplitude, hi-lo, 1.2)
}

func TestPsiWeightsRandomWalk(t *testing.T) {
	m := New(Order{D: 1})
	psi := m.psiWeights(6)
	for i, w := range psi {
		assert.InDelta(t, 1.0, w, 1e-12, "psi[%d]", i)
	}
}

func TestPsiWeightsAR1(t *testing.T) {
	m := New(Order{P: 1})
	m.ARCoeffs = []float64{0.5}
	psi := m.psiWeights(5)
	want := []float64{1, 0.5, 0.25, 0.125, 0.0625}
	for i := range want {
		assert.InDelta(t, want[i], psi[i], 1e-12, "psi[%d]", i)
	}
}
