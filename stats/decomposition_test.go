package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ohincu/co2-forecasting/timeseries"
)

func TestDecomposeAdditive(t *testing.T) {
	const amplitude = 5.0
	s := monthly(t, syntheticSeasonal(240, 0.1, amplitude, 0.2, 21))

	d, err := Decompose(s, 12, Additive)
	require.NoError(t, err)
	require.Len(t, d.Indices, 12)

	// Seasonal indices should recover the sine pattern.
	for k := 0; k < 12; k++ {
		want := amplitude * math.Sin(2*math.Pi*float64(k)/12)
		assert.InDelta(t, want, d.Indices[k], 0.5, "index %d", k)
	}

	// Indices sum to zero by construction.
	sum := 0.0
	for _, v := range d.Indices {
		sum += v
	}
	assert.InDelta(t, 0, sum, 1e-9)

	// Trend is undefined at the edges, defined in the interior, and close
	// to the generating line there.
	tv := d.Trend.Values()
	assert.True(t, math.IsNaN(tv[0]))
	assert.True(t, math.IsNaN(tv[len(tv)-1]))
	for i := 12; i < len(tv)-12; i++ {
		want := 280 + 0.1*float64(i)
		assert.InDelta(t, want, tv[i], 0.5, "trend at %d", i)
	}

	assert.Greater(t, d.SeasonalStrength(), 0.95)

	// Components share the original's timestamps.
	assert.True(t, d.Seasonal.Start().Equal(s.Start()))
	assert.Equal(t, s.Len(), d.Residual.Len())
}

func TestDecomposeMultiplicative(t *testing.T) {
	values := make([]float64, 120)
	for i := range values {
		ti := float64(i)
		values[i] = (100 + ti) * (1 + 0.1*math.Sin(2*math.Pi*ti/12))
	}
	s := monthly(t, values)

	d, err := Decompose(s, 12, Multiplicative)
	require.NoError(t, err)

	// Multiplicative indices average to one.
	mean := 0.0
	for _, v := range d.Indices {
		mean += v
	}
	mean /= 12
	assert.InDelta(t, 1.0, mean, 1e-9)
	assert.Greater(t, d.SeasonalStrength(), 0.9)
}

func TestDecomposeErrors(t *testing.T) {
	s := monthly(t, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})

	_, err := Decompose(s, 1, Additive)
	assert.ErrorIs(t, err, timeseries.ErrInvalidOrder)

	_, err = Decompose(s, 12, Additive)
	assert.ErrorIs(t, err, timeseries.ErrInsufficientData)

	long := monthly(t, syntheticSeasonal(48, 0, 1, 0.1, 22))
	_, err = Decompose(long, 12, "stl")
	assert.Error(t, err)
}
