// Package sarima implements seasonal ARIMA estimation and forecasting.
package sarima

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/optimize"

	"github.com/ohincu/co2-forecasting/stats"
	"github.com/ohincu/co2-forecasting/timeseries"
)

// ErrNonConvergence indicates the optimizer failed to reach a stable
// solution within the iteration cap.
var ErrNonConvergence = errors.New("optimizer failed to converge")

// ErrNotFitted indicates the model has not been fitted yet.
var ErrNotFitted = errors.New("model must be fitted first")

// Iteration cap for the coefficient search. Fitting either converges within
// this bound or fails with ErrNonConvergence; it never spins indefinitely.
const maxIterations = 5000

// coefBound constrains AR/MA coefficients away from the unit circle. The
// objective adds a steep penalty beyond it, keeping the estimated
// polynomials stationary and invertible.
const coefBound = 0.99

// Order is the SARIMA model order (p,d,q)(P,D,Q)[s].
type Order struct {
	P int // non-seasonal AR order
	D int // non-seasonal differencing order
	Q int // non-seasonal MA order

	SP     int // seasonal AR order
	SD     int // seasonal differencing order
	SQ     int // seasonal MA order
	Period int // seasonal period, 12 for monthly data
}

// Validate checks the order for internal consistency.
func (o Order) Validate() error {
	if o.P < 0 || o.D < 0 || o.Q < 0 || o.SP < 0 || o.SD < 0 || o.SQ < 0 || o.Period < 0 {
		return fmt.Errorf("sarima order %s has a negative component: %w", o, timeseries.ErrInvalidOrder)
	}
	if (o.SP > 0 || o.SD > 0 || o.SQ > 0) && o.Period < 2 {
		return fmt.Errorf("sarima order %s has seasonal terms but period %d < 2: %w",
			o, o.Period, timeseries.ErrInvalidOrder)
	}
	return nil
}

// NumParams returns the number of estimated AR/MA coefficients, excluding
// the intercept. Used as the fitted-parameter count in residual diagnostics.
func (o Order) NumParams() int {
	return o.P + o.Q + o.SP + o.SQ
}

func (o Order) String() string {
	return fmt.Sprintf("SARIMA(%d,%d,%d)(%d,%d,%d)[%d]", o.P, o.D, o.Q, o.SP, o.SD, o.SQ, o.Period)
}

// Model is a seasonal ARIMA model. Create it with New or NewWithTransform,
// then call Fit. A fitted model is immutable apart from re-fitting.
type Model struct {
	Order     Order
	Transform Transform

	ARCoeffs  []float64 // phi
	MACoeffs  []float64 // theta
	SARCoeffs []float64 // seasonal phi
	SMACoeffs []float64 // seasonal theta
	Intercept float64
	Lambda    float64 // Box-Cox lambda applied at fit time; NaN when none
	Variance  float64 // residual variance on the differenced scale

	LogLik float64
	AIC    float64
	AICc   float64
	BIC    float64

	fitted bool
	data   *timeseries.Series
	// diffLevels[i] holds the working-scale values after the first i
	// differencing steps; the last entry is the series the ARMA recursion
	// runs on. diffLags[i] is the lag of step i+1.
	diffLevels [][]float64
	diffLags   []int
	residuals  []float64
	fittedVals []float64
}

// New creates an unfitted model with the given order and no transform.
func New(order Order) *Model {
	return NewWithTransform(order, NoTransform())
}

// NewWithTransform creates an unfitted model with the given order and
// variance-stabilizing transform.
func NewWithTransform(order Order, tr Transform) *Model {
	return &Model{Order: order, Transform: tr, Lambda: math.NaN()}
}

// Fit estimates the model on the training series by conditional sum of
// squares. Fitting is atomic: on error no partial state is retained, and
// refitting the same input reproduces the same coefficients.
func (m *Model) Fit(series *timeseries.Series) error {
	o := m.Order
	if err := o.Validate(); err != nil {
		return err
	}

	totalDiff := o.D + o.SD*o.Period
	if totalDiff >= series.Len() {
		return fmt.Errorf("%s differencing consumes the whole series of length %d: %w",
			o, series.Len(), timeseries.ErrInvalidOrder)
	}
	maxLag := o.P
	for _, l := range []int{o.Q, o.SP * o.Period, o.SQ * o.Period} {
		if l > maxLag {
			maxLag = l
		}
	}
	if series.Len() < totalDiff+maxLag+10 {
		return fmt.Errorf("%s needs at least %d observations, have %d: %w",
			o, totalDiff+maxLag+10, series.Len(), timeseries.ErrInsufficientData)
	}

	working, lambda, err := m.Transform.apply(series.Values())
	if err != nil {
		return err
	}

	// Seasonal differences first, then regular; the operators commute, but
	// a fixed sequence keeps the integration bookkeeping simple.
	levels := [][]float64{working}
	lags := make([]int, 0, o.SD+o.D)
	for i := 0; i < o.SD; i++ {
		lags = append(lags, o.Period)
	}
	for i := 0; i < o.D; i++ {
		lags = append(lags, 1)
	}
	for _, lag := range lags {
		prev := levels[len(levels)-1]
		next := make([]float64, len(prev)-lag)
		for i := lag; i < len(prev); i++ {
			next[i-lag] = prev[i] - prev[i-lag]
		}
		levels = append(levels, next)
	}

	fit := &fitState{order: o, y: levels[len(levels)-1]}
	if err := fit.estimate(); err != nil {
		return err
	}

	m.ARCoeffs = fit.ar
	m.MACoeffs = fit.ma
	m.SARCoeffs = fit.sar
	m.SMACoeffs = fit.sma
	m.Intercept = fit.intercept
	m.Lambda = lambda
	m.Variance = fit.variance
	m.data = series
	m.diffLevels = levels
	m.diffLags = lags
	m.residuals = fit.residuals
	m.fittedVals = fit.fittedVals
	m.calculateIC()
	m.fitted = true
	return nil
}

// fitState carries the working data of a single estimation so a failed fit
// leaves the model untouched.
type fitState struct {
	order Order
	y     []float64

	ar, ma, sar, sma []float64
	intercept        float64
	variance         float64
	residuals        []float64
	fittedVals       []float64
}

func (f *fitState) estimate() error {
	o := f.order
	n := len(f.y)

	mean := 0.0
	for _, v := range f.y {
		mean += v
	}
	f.intercept = mean / float64(n)

	if o.NumParams() == 0 {
		// White noise around the differenced mean.
		f.ar, f.ma, f.sar, f.sma = []float64{}, []float64{}, []float64{}, []float64{}
		f.residuals = make([]float64, n)
		f.fittedVals = make([]float64, n)
		ss := 0.0
		for i, v := range f.y {
			f.fittedVals[i] = f.intercept
			f.residuals[i] = v - f.intercept
			ss += f.residuals[i] * f.residuals[i]
		}
		if n > 1 {
			f.variance = ss / float64(n-1)
		} else {
			f.variance = ss
		}
		return nil
	}

	x0 := f.startingPoint()

	problem := optimize.Problem{Func: f.penalizedCSS}
	settings := &optimize.Settings{
		MajorIterations: maxIterations,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-10,
			Iterations: 100,
		},
	}

	result, err := optimize.Minimize(problem, x0, settings, &optimize.NelderMead{})
	if err != nil {
		return fmt.Errorf("%s: %v: %w", o, err, ErrNonConvergence)
	}
	if result.Status == optimize.IterationLimit || !isFinite(result.F) {
		return fmt.Errorf("%s: stopped after %d iterations without converging: %w",
			o, maxIterations, ErrNonConvergence)
	}

	f.unpack(result.X)
	f.finalize()
	return nil
}

// startingPoint builds a deterministic initial parameter vector: Yule-Walker
// estimates for the AR part, damped seasonal autocorrelations for the
// seasonal AR part, and small constants for the MA parts.
func (f *fitState) startingPoint() []float64 {
	o := f.order
	x0 := make([]float64, 0, o.NumParams())

	var acf []float64
	wantLag := o.P
	if o.SP*o.Period > wantLag {
		wantLag = o.SP * o.Period
	}
	if wantLag > 0 && wantLag < len(f.y) {
		if s, err := timeseries.NewMonthly(time.Unix(0, 0), f.y); err == nil {
			acf, _ = stats.ACF(s, wantLag)
		}
	}
	r := func(k int) float64 {
		if acf == nil || k < 1 || k > len(acf) || math.IsNaN(acf[k-1]) {
			return 0
		}
		return acf[k-1]
	}

	if o.P > 0 {
		phi := levinsonDurbin(r, o.P)
		for _, v := range phi {
			x0 = append(x0, clamp(v, -0.9, 0.9))
		}
	}
	for i := 0; i < o.Q; i++ {
		x0 = append(x0, 0.1)
	}
	for i := 1; i <= o.SP; i++ {
		x0 = append(x0, clamp(r(i*o.Period)*0.5, -0.9, 0.9))
	}
	for i := 0; i < o.SQ; i++ {
		x0 = append(x0, 0.1)
	}
	return x0
}

// levinsonDurbin solves the Yule-Walker equations for AR coefficients from
// autocorrelations r(1)..r(order).
func levinsonDurbin(r func(int) float64, order int) []float64 {
	phi := make([]float64, order)
	phi[0] = r(1)
	if order == 1 {
		return phi
	}

	v := 1 - phi[0]*phi[0]
	for k := 1; k < order; k++ {
		if v <= 0 {
			break
		}
		lambda := r(k + 1)
		for j := 0; j < k; j++ {
			lambda -= phi[j] * r(k-j)
		}
		lambda /= v

		next := make([]float64, k+1)
		for j := 0; j < k; j++ {
			next[j] = phi[j] - lambda*phi[k-1-j]
		}
		next[k] = lambda
		copy(phi, next)
		v *= 1 - lambda*lambda
	}
	return phi
}

func (f *fitState) unpack(x []float64) {
	o := f.order
	f.ar = append([]float64(nil), x[:o.P]...)
	x = x[o.P:]
	f.ma = append([]float64(nil), x[:o.Q]...)
	x = x[o.Q:]
	f.sar = append([]float64(nil), x[:o.SP]...)
	x = x[o.SP:]
	f.sma = append([]float64(nil), x[:o.SQ]...)
}

// penalizedCSS is the optimization objective: conditional sum of squares of
// the ARMA recursion plus a steep penalty pushing coefficients back inside
// the stationarity/invertibility bound.
func (f *fitState) penalizedCSS(x []float64) float64 {
	f.unpack(x)

	penalty := 0.0
	for _, v := range x {
		if excess := math.Abs(v) - coefBound; excess > 0 {
			penalty += 1e6 * excess * excess
		}
	}

	css := f.conditionalSS(nil, nil)
	if !isFinite(css) {
		return math.MaxFloat64
	}
	return css + penalty
}

// conditionalSS runs the ARMA recursion and returns the sum of squared
// residuals past the burn-in index. When outResid/outFitted are non-nil the
// full residual and fitted series are written into them.
func (f *fitState) conditionalSS(outResid, outFitted []float64) float64 {
	o := f.order
	n := len(f.y)
	s := o.Period

	resid := outResid
	if resid == nil {
		resid = make([]float64, n)
	}

	start := 0
	for _, l := range []int{o.P, o.Q, o.SP * s, o.SQ * s} {
		if l > start {
			start = l
		}
	}
	if start >= n-5 {
		start = 0
	}

	ss := 0.0
	for t := 0; t < n; t++ {
		pred := f.intercept
		for i := 0; i < o.P && t-i-1 >= 0; i++ {
			pred += f.ar[i] * (f.y[t-i-1] - f.intercept)
		}
		for i := 0; i < o.SP; i++ {
			if lag := (i + 1) * s; t-lag >= 0 {
				pred += f.sar[i] * (f.y[t-lag] - f.intercept)
			}
		}
		for i := 0; i < o.Q && t-i-1 >= 0; i++ {
			pred += f.ma[i] * resid[t-i-1]
		}
		for i := 0; i < o.SQ; i++ {
			if lag := (i + 1) * s; t-lag >= 0 {
				pred += f.sma[i] * resid[t-lag]
			}
		}
		resid[t] = f.y[t] - pred
		if outFitted != nil {
			outFitted[t] = pred
		}
		if t >= start {
			ss += resid[t] * resid[t]
		}
	}
	return ss
}

// finalize computes the full residual series and the residual variance for
// the accepted coefficients.
func (f *fitState) finalize() {
	o := f.order
	n := len(f.y)
	f.residuals = make([]float64, n)
	f.fittedVals = make([]float64, n)
	ss := f.conditionalSS(f.residuals, f.fittedVals)

	start := 0
	for _, l := range []int{o.P, o.Q, o.SP * o.Period, o.SQ * o.Period} {
		if l > start {
			start = l
		}
	}
	if start >= n-5 {
		start = 0
	}
	count := n - start
	k := o.NumParams() + 1
	if count > k {
		f.variance = ss / float64(count-k)
	} else {
		f.variance = ss / float64(count)
	}
}

func (m *Model) calculateIC() {
	n := len(m.residuals)
	k := m.Order.NumParams() + 1

	ss := 0.0
	for _, r := range m.residuals {
		ss += r * r
	}

	if m.Variance > 0 {
		nf := float64(n)
		m.LogLik = -nf/2*math.Log(2*math.Pi) - nf/2*math.Log(m.Variance) - ss/(2*m.Variance)
	} else {
		m.LogLik = math.Inf(-1)
	}

	kf := float64(k)
	nf := float64(n)
	m.AIC = -2*m.LogLik + 2*kf
	if nf-kf-1 > 0 {
		m.AICc = m.AIC + 2*kf*(kf+1)/(nf-kf-1)
	} else {
		m.AICc = math.Inf(1)
	}
	m.BIC = -2*m.LogLik + kf*math.Log(nf)
}

// Fitted reports whether Fit has completed successfully.
func (m *Model) Fitted() bool {
	return m.fitted
}

// TrainingSeries returns the series the model was fitted on.
func (m *Model) TrainingSeries() *timeseries.Series {
	return m.data
}

// Residuals returns a copy of the one-step in-sample residuals on the
// transformed, differenced scale. Nil before fitting.
func (m *Model) Residuals() []float64 {
	if !m.fitted {
		return nil
	}
	return append([]float64(nil), m.residuals...)
}

// FittedValues returns a copy of the in-sample one-step predictions on the
// transformed, differenced scale. Nil before fitting.
func (m *Model) FittedValues() []float64 {
	if !m.fitted {
		return nil
	}
	return append([]float64(nil), m.fittedVals...)
}

// Summary bundles the fitted model's coefficients, information criteria,
// and a Ljung-Box residual check for reporting.
type Summary struct {
	Order     Order
	ARCoeffs  []float64
	MACoeffs  []float64
	SARCoeffs []float64
	SMACoeffs []float64
	Intercept float64
	Lambda    float64
	Variance  float64
	LogLik    float64
	AIC       float64
	AICc      float64
	BIC       float64
	NObs      int
	LjungBox  *stats.LjungBoxResult
}

// Summary returns a reporting summary, or nil before fitting.
func (m *Model) Summary() *Summary {
	if !m.fitted {
		return nil
	}

	lags := 10
	if m.Order.Period >= 2 {
		lags = 2 * m.Order.Period
	}
	if lags >= len(m.residuals) {
		lags = len(m.residuals) - 1
	}
	lb, _ := stats.LjungBox(m.residuals, lags, m.Order.NumParams())

	return &Summary{
		Order:     m.Order,
		ARCoeffs:  append([]float64(nil), m.ARCoeffs...),
		MACoeffs:  append([]float64(nil), m.MACoeffs...),
		SARCoeffs: append([]float64(nil), m.SARCoeffs...),
		SMACoeffs: append([]float64(nil), m.SMACoeffs...),
		Intercept: m.Intercept,
		Lambda:    m.Lambda,
		Variance:  m.Variance,
		LogLik:    m.LogLik,
		AIC:       m.AIC,
		AICc:      m.AICc,
		BIC:       m.BIC,
		NObs:      m.data.Len(),
		LjungBox:  lb,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
