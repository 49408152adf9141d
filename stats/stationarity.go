package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/ohincu/co2-forecasting/timeseries"
)

// ADFResult holds the outcome of an Augmented Dickey-Fuller unit-root test.
// The null hypothesis is that the series has a unit root; a p-value below
// 0.05 indicates stationarity.
type ADFResult struct {
	Statistic    float64
	PValue       float64
	Lags         int
	NObs         int
	IsStationary bool
}

// ADF runs the Augmented Dickey-Fuller test with a constant term. When lags
// is zero or negative, the lag count defaults to floor((n-1)^(1/3)).
func ADF(series *timeseries.Series, lags int) (*ADFResult, error) {
	n := series.Len()
	if n < 15 {
		return nil, fmt.Errorf("adf needs at least 15 observations, have %d: %w",
			n, timeseries.ErrInsufficientData)
	}
	if lags <= 0 {
		lags = int(math.Floor(math.Cbrt(float64(n - 1))))
	}
	if lags > n-10 {
		return nil, fmt.Errorf("adf lag count %d for series of length %d: %w",
			lags, n, timeseries.ErrInvalidLag)
	}

	values := series.Values()
	diff := make([]float64, n-1)
	for i := 1; i < n; i++ {
		diff[i-1] = values[i] - values[i-1]
	}

	// Regression: diff_t = alpha + beta*y_{t-1} + sum gamma_j*diff_{t-j}.
	// The test statistic is the t-ratio of beta.
	nObs := len(diff) - lags
	k := lags + 2

	X := mat.NewDense(nObs, k, nil)
	y := mat.NewVecDense(nObs, nil)
	for i := 0; i < nObs; i++ {
		t := i + lags
		y.SetVec(i, diff[t])
		X.Set(i, 0, 1)
		X.Set(i, 1, values[t])
		for j := 1; j <= lags; j++ {
			X.Set(i, 1+j, diff[t-j])
		}
	}

	beta, se, err := ols(X, y)
	if err != nil {
		return nil, fmt.Errorf("adf regression: %w", err)
	}

	tStat := beta[1] / se[1]
	p := interpolatePValue(tStat, adfAnchors)

	return &ADFResult{
		Statistic:    tStat,
		PValue:       p,
		Lags:         lags,
		NObs:         nObs,
		IsStationary: p < 0.05,
	}, nil
}

// KPSSResult holds the outcome of a KPSS stationarity test. The null
// hypothesis is stationarity, so IsStationary is true when the null is not
// rejected at the 5% level.
type KPSSResult struct {
	Statistic    float64
	PValue       float64
	Lags         int
	IsStationary bool
}

// KPSS runs the Kwiatkowski-Phillips-Schmidt-Shin test. regression is "c"
// for level stationarity or "ct" for trend stationarity. When lags is zero
// or negative, the Newey-West bandwidth defaults to ceil(12*(n/100)^0.25).
func KPSS(series *timeseries.Series, regression string, lags int) (*KPSSResult, error) {
	n := series.Len()
	if n < 15 {
		return nil, fmt.Errorf("kpss needs at least 15 observations, have %d: %w",
			n, timeseries.ErrInsufficientData)
	}
	if regression != "c" && regression != "ct" {
		return nil, fmt.Errorf("kpss regression %q: must be \"c\" or \"ct\"", regression)
	}
	if lags <= 0 {
		lags = int(math.Ceil(12 * math.Pow(float64(n)/100, 0.25)))
	}
	if lags >= n {
		return nil, fmt.Errorf("kpss lag count %d for series of length %d: %w",
			lags, n, timeseries.ErrInvalidLag)
	}

	values := series.Values()
	resid := make([]float64, n)
	if regression == "ct" {
		xs := make([]float64, n)
		for i := range xs {
			xs[i] = float64(i)
		}
		alpha, slope := stat.LinearRegression(xs, values, nil, false)
		for i, v := range values {
			resid[i] = v - alpha - slope*float64(i)
		}
	} else {
		mean := stat.Mean(values, nil)
		for i, v := range values {
			resid[i] = v - mean
		}
	}

	// Long-run variance via Newey-West with Bartlett weights.
	s2 := 0.0
	for _, r := range resid {
		s2 += r * r
	}
	s2 /= float64(n)
	for l := 1; l <= lags; l++ {
		cov := 0.0
		for i := l; i < n; i++ {
			cov += resid[i] * resid[i-l]
		}
		cov /= float64(n)
		s2 += 2 * (1 - float64(l)/float64(lags+1)) * cov
	}
	if s2 <= 0 {
		s2 = math.SmallestNonzeroFloat64
	}

	cum := 0.0
	etaSq := 0.0
	for _, r := range resid {
		cum += r
		etaSq += cum * cum
	}
	statistic := etaSq / (float64(n) * float64(n) * s2)

	anchors := kpssLevelAnchors
	if regression == "ct" {
		anchors = kpssTrendAnchors
	}
	p := interpolatePValue(statistic, anchors)

	return &KPSSResult{
		Statistic:    statistic,
		PValue:       p,
		Lags:         lags,
		IsStationary: p >= 0.05,
	}, nil
}

// ols solves y = X*beta by QR and returns the coefficients with their
// standard errors.
func ols(X *mat.Dense, y *mat.VecDense) (beta, se []float64, err error) {
	nObs, k := X.Dims()

	var qr mat.QR
	qr.Factorize(X)

	var sol mat.VecDense
	if err := qr.SolveVecTo(&sol, false, y); err != nil {
		return nil, nil, err
	}

	beta = make([]float64, k)
	for i := range beta {
		beta[i] = sol.AtVec(i)
	}

	sse := 0.0
	for i := 0; i < nObs; i++ {
		pred := 0.0
		for j := 0; j < k; j++ {
			pred += beta[j] * X.At(i, j)
		}
		r := y.AtVec(i) - pred
		sse += r * r
	}
	s2 := sse / float64(nObs-k)

	var xtx, xtxInv mat.Dense
	xtx.Mul(X.T(), X)
	if err := xtxInv.Inverse(&xtx); err != nil {
		return nil, nil, err
	}

	se = make([]float64, k)
	for i := range se {
		se[i] = math.Sqrt(s2 * xtxInv.At(i, i))
	}
	return beta, se, nil
}

// pAnchor pairs a test statistic with its tail probability; tables below are
// interpolated linearly between anchors and clamped at the ends.
type pAnchor struct {
	stat float64
	p    float64
}

// MacKinnon (1994) approximate response surface for the constant-only case.
var adfAnchors = []pAnchor{
	{-3.96, 0.001},
	{-3.43, 0.01},
	{-2.86, 0.05},
	{-2.57, 0.10},
	{-1.94, 0.25},
	{-1.62, 0.50},
	{0.00, 0.95},
}

// KPSS critical values, level ("c") and trend ("ct") cases.
var kpssLevelAnchors = []pAnchor{
	{0.347, 0.10},
	{0.463, 0.05},
	{0.574, 0.025},
	{0.739, 0.01},
}

var kpssTrendAnchors = []pAnchor{
	{0.119, 0.10},
	{0.146, 0.05},
	{0.176, 0.025},
	{0.216, 0.01},
}

func interpolatePValue(statistic float64, anchors []pAnchor) float64 {
	if statistic <= anchors[0].stat {
		return anchors[0].p
	}
	last := anchors[len(anchors)-1]
	if statistic >= last.stat {
		return last.p
	}
	for i := 1; i < len(anchors); i++ {
		lo, hi := anchors[i-1], anchors[i]
		if statistic <= hi.stat {
			frac := (statistic - lo.stat) / (hi.stat - lo.stat)
			return lo.p + frac*(hi.p-lo.p)
		}
	}
	return last.p
}
