package stats

import (
	"fmt"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/ohincu/co2-forecasting/timeseries"
)

// LjungBoxResult holds the outcome of a Ljung-Box whiteness test.
type LjungBoxResult struct {
	Statistic float64
	PValue    float64
	Lags      int
	DOF       int
}

// LjungBox tests residuals for autocorrelation up to the given lag count.
// The null hypothesis is that the residuals are white noise; a p-value below
// the caller's significance threshold (conventionally 0.05) rejects it.
// fitdf is the number of parameters estimated by the model that produced the
// residuals and is subtracted from the degrees of freedom.
func LjungBox(residuals []float64, lags, fitdf int) (*LjungBoxResult, error) {
	n := len(residuals)
	if lags < 1 {
		return nil, fmt.Errorf("ljung-box lag count %d: %w", lags, timeseries.ErrInvalidLag)
	}
	if lags >= n {
		return nil, fmt.Errorf("ljung-box needs more than %d residuals, have %d: %w",
			lags, n, timeseries.ErrInsufficientData)
	}

	acf := autocorrelations(residuals, lags)

	q := 0.0
	for k := 1; k <= lags; k++ {
		q += acf[k] * acf[k] / float64(n-k)
	}
	q *= float64(n) * float64(n+2)

	dof := lags - fitdf
	if dof < 1 {
		dof = 1
	}

	chi2 := distuv.ChiSquared{K: float64(dof)}

	return &LjungBoxResult{
		Statistic: q,
		PValue:    chi2.Survival(q),
		Lags:      lags,
		DOF:       dof,
	}, nil
}

// DurbinWatson computes the Durbin-Watson statistic for first-order residual
// autocorrelation. Values near 2 indicate no autocorrelation; below 2,
// positive; above 2, negative.
func DurbinWatson(residuals []float64) (float64, error) {
	n := len(residuals)
	if n < 2 {
		return 0, fmt.Errorf("durbin-watson needs at least 2 residuals, have %d: %w",
			n, timeseries.ErrInsufficientData)
	}

	num := 0.0
	for i := 1; i < n; i++ {
		d := residuals[i] - residuals[i-1]
		num += d * d
	}
	den := 0.0
	for _, r := range residuals {
		den += r * r
	}
	if den == 0 {
		return 0, fmt.Errorf("durbin-watson on all-zero residuals: %w", timeseries.ErrInsufficientData)
	}
	return num / den, nil
}
