// Package stats provides diagnostic statistics for monthly time series:
// autocorrelation estimates, residual whiteness tests, stationarity tests,
// and classical seasonal decomposition.
package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/ohincu/co2-forecasting/timeseries"
)

// ACF returns the sample autocorrelation at lags 1..maxLag. Lag 0 is
// implicitly 1 and excluded from the output.
//
// For a constant series the autocorrelation is undefined; every returned
// value is NaN in that case.
func ACF(series *timeseries.Series, maxLag int) ([]float64, error) {
	n := series.Len()
	if maxLag < 1 || maxLag >= n {
		return nil, fmt.Errorf("max lag %d for series of length %d: %w",
			maxLag, n, timeseries.ErrInvalidLag)
	}
	return autocorrelations(series.Values(), maxLag)[1:], nil
}

// PACF returns the sample partial autocorrelation at lags 1..maxLag,
// computed with the Durbin-Levinson recursion rather than per-lag
// regressions. For a constant series every value is NaN.
func PACF(series *timeseries.Series, maxLag int) ([]float64, error) {
	acf, err := ACF(series, maxLag)
	if err != nil {
		return nil, err
	}

	pacf := make([]float64, maxLag)
	if math.IsNaN(acf[0]) {
		for i := range pacf {
			pacf[i] = math.NaN()
		}
		return pacf, nil
	}

	// r[k] is the autocorrelation at lag k, with r[0] = 1.
	r := func(k int) float64 {
		if k == 0 {
			return 1
		}
		return acf[k-1]
	}

	phi := make([][]float64, maxLag+1)
	for i := range phi {
		phi[i] = make([]float64, maxLag+1)
	}

	phi[1][1] = r(1)
	pacf[0] = r(1)

	for k := 2; k <= maxLag; k++ {
		num := r(k)
		den := 1.0
		for j := 1; j < k; j++ {
			num -= phi[k-1][j] * r(k-j)
			den -= phi[k-1][j] * r(j)
		}
		if den == 0 {
			pacf[k-1] = 0
			continue
		}
		phi[k][k] = num / den
		pacf[k-1] = phi[k][k]
		for j := 1; j < k; j++ {
			phi[k][j] = phi[k-1][j] - phi[k][k]*phi[k-1][k-j]
		}
	}

	return pacf, nil
}

// autocorrelations returns autocorrelations at lags 0..maxLag for a plain
// value slice. Shared by ACF and the Ljung-Box statistic.
func autocorrelations(values []float64, maxLag int) []float64 {
	n := len(values)
	mean := stat.Mean(values, nil)

	denom := 0.0
	for _, v := range values {
		d := v - mean
		denom += d * d
	}

	out := make([]float64, maxLag+1)
	if denom == 0 {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}

	for k := 0; k <= maxLag; k++ {
		sum := 0.0
		for i := k; i < n; i++ {
			sum += (values[i] - mean) * (values[i-k] - mean)
		}
		out[k] = sum / denom
	}
	return out
}

// Correlogram bundles autocorrelation estimates with the white-noise
// confidence bound used when reading off candidate model orders.
type Correlogram struct {
	Lags      []int
	Values    []float64
	ConfBound float64 // ±1.96/sqrt(n)
}

// ACFCorrelogram computes the ACF together with its confidence bound.
func ACFCorrelogram(series *timeseries.Series, maxLag int) (*Correlogram, error) {
	values, err := ACF(series, maxLag)
	if err != nil {
		return nil, err
	}
	return newCorrelogram(values, series.Len()), nil
}

// PACFCorrelogram computes the PACF together with its confidence bound.
func PACFCorrelogram(series *timeseries.Series, maxLag int) (*Correlogram, error) {
	values, err := PACF(series, maxLag)
	if err != nil {
		return nil, err
	}
	return newCorrelogram(values, series.Len()), nil
}

func newCorrelogram(values []float64, n int) *Correlogram {
	lags := make([]int, len(values))
	for i := range lags {
		lags[i] = i + 1
	}
	return &Correlogram{
		Lags:      lags,
		Values:    values,
		ConfBound: 1.96 / math.Sqrt(float64(n)),
	}
}

// SignificantLags returns the lags whose coefficients exceed the confidence
// bound in absolute value.
func (c *Correlogram) SignificantLags() []int {
	var out []int
	for i, v := range c.Values {
		if math.Abs(v) > c.ConfBound {
			out = append(out, c.Lags[i])
		}
	}
	return out
}
