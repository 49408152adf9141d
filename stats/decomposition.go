package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/ohincu/co2-forecasting/timeseries"
)

// Mode selects how trend, seasonal, and residual components combine.
type Mode string

const (
	// Additive decomposes as Y = T + S + R.
	Additive Mode = "additive"
	// Multiplicative decomposes as Y = T * S * R.
	Multiplicative Mode = "multiplicative"
)

// Decomposition holds the classical decomposition of a series. The component
// series share the original's timestamps; trend and residual carry NaN where
// the centered moving average is undefined (half a period at each end).
type Decomposition struct {
	Original *timeseries.Series
	Trend    *timeseries.Series
	Seasonal *timeseries.Series
	Residual *timeseries.Series
	Indices  []float64 // one seasonal index per position in the cycle
	Period   int
	Mode     Mode
}

// Decompose performs classical seasonal decomposition using a centered
// moving average for the trend and per-position averages of the detrended
// series for the seasonal component.
func Decompose(series *timeseries.Series, period int, mode Mode) (*Decomposition, error) {
	n := series.Len()
	if period < 2 {
		return nil, fmt.Errorf("decomposition period %d: %w", period, timeseries.ErrInvalidOrder)
	}
	if n < 2*period {
		return nil, fmt.Errorf("decomposition needs at least %d observations, have %d: %w",
			2*period, n, timeseries.ErrInsufficientData)
	}
	if mode != Additive && mode != Multiplicative {
		return nil, fmt.Errorf("decomposition mode %q: must be %q or %q", mode, Additive, Multiplicative)
	}

	values := series.Values()
	trend := centeredMovingAverage(values, period)

	detrended := make([]float64, n)
	for i := range values {
		switch {
		case math.IsNaN(trend[i]):
			detrended[i] = math.NaN()
		case mode == Multiplicative:
			if trend[i] == 0 {
				detrended[i] = math.NaN()
			} else {
				detrended[i] = values[i] / trend[i]
			}
		default:
			detrended[i] = values[i] - trend[i]
		}
	}

	indices := seasonalIndices(detrended, period, mode)

	seasonal := make([]float64, n)
	residual := make([]float64, n)
	for i := range values {
		seasonal[i] = indices[i%period]
		if math.IsNaN(trend[i]) {
			residual[i] = math.NaN()
			continue
		}
		if mode == Multiplicative {
			if trend[i]*seasonal[i] == 0 {
				residual[i] = math.NaN()
			} else {
				residual[i] = values[i] / (trend[i] * seasonal[i])
			}
		} else {
			residual[i] = values[i] - trend[i] - seasonal[i]
		}
	}

	mk := func(vals []float64) *timeseries.Series {
		s, _ := timeseries.NewMonthly(series.Start(), vals)
		return s
	}

	return &Decomposition{
		Original: series,
		Trend:    mk(trend),
		Seasonal: mk(seasonal),
		Residual: mk(residual),
		Indices:  indices,
		Period:   period,
		Mode:     mode,
	}, nil
}

// centeredMovingAverage smooths with a period-length window. For even
// periods a 2xMA is used so the window stays centered.
func centeredMovingAverage(values []float64, period int) []float64 {
	n := len(values)
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}

	half := period / 2
	if period%2 == 0 {
		for i := half; i < n-half; i++ {
			sum := values[i-half]/2 + values[i+half]/2
			for j := i - half + 1; j < i+half; j++ {
				sum += values[j]
			}
			out[i] = sum / float64(period)
		}
	} else {
		for i := half; i < n-half; i++ {
			sum := 0.0
			for j := i - half; j <= i+half; j++ {
				sum += values[j]
			}
			out[i] = sum / float64(period)
		}
	}
	return out
}

// seasonalIndices averages the detrended values per cycle position and
// normalizes so the indices sum to zero (additive) or average to one
// (multiplicative).
func seasonalIndices(detrended []float64, period int, mode Mode) []float64 {
	sums := make([]float64, period)
	counts := make([]int, period)
	for i, v := range detrended {
		if math.IsNaN(v) {
			continue
		}
		sums[i%period] += v
		counts[i%period]++
	}

	indices := make([]float64, period)
	for i := range indices {
		if counts[i] > 0 {
			indices[i] = sums[i] / float64(counts[i])
		}
	}

	mean := stat.Mean(indices, nil)
	for i := range indices {
		if mode == Multiplicative {
			if mean != 0 {
				indices[i] /= mean
			}
		} else {
			indices[i] -= mean
		}
	}
	return indices
}

// SeasonalStrength measures how much of the detrended variation the seasonal
// component explains: max(0, 1 - Var(R)/Var(S+R)). Values near 1 indicate
// strong seasonality.
func (d *Decomposition) SeasonalStrength() float64 {
	var resid, seasResid []float64
	rv := d.Residual.Values()
	sv := d.Seasonal.Values()
	for i := range rv {
		if math.IsNaN(rv[i]) || math.IsNaN(sv[i]) {
			continue
		}
		resid = append(resid, rv[i])
		seasResid = append(seasResid, sv[i]+rv[i])
	}
	if len(resid) < 2 {
		return 0
	}
	varSR := stat.Variance(seasResid, nil)
	if varSR == 0 {
		return 0
	}
	strength := 1 - stat.Variance(resid, nil)/varSR
	if strength < 0 {
		return 0
	}
	return strength
}
