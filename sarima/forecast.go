package sarima

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/ohincu/co2-forecasting/timeseries"
)

// Point is a single forecast step: a point estimate with its prediction
// interval at the forecast's confidence level.
type Point struct {
	Time  time.Time
	Value float64
	Lower float64
	Upper float64
}

// Forecast is an ordered sequence of forecast points contiguous with and
// immediately following the training series.
type Forecast struct {
	Points     []Point
	Confidence float64
}

// Values returns the point estimates.
func (f *Forecast) Values() []float64 {
	out := make([]float64, len(f.Points))
	for i, p := range f.Points {
		out[i] = p.Value
	}
	return out
}

// Horizon returns the number of forecast steps.
func (f *Forecast) Horizon() int {
	return len(f.Points)
}

// Forecast projects the fitted model horizon months past the training
// series. Prediction intervals propagate the forecast error variance through
// the psi-weight expansion of the full seasonal ARIMA operator (including
// integration), so interval width never shrinks with the step index. When a
// Box-Cox transform was applied at fit time, point estimates and bounds are
// back-transformed, giving asymmetric intervals.
//
// No upper bound is placed on horizon: projecting decades ahead is allowed,
// and judging the reliability of such forecasts is the caller's burden.
func (m *Model) Forecast(horizon int, confidence float64) (*Forecast, error) {
	if !m.fitted {
		return nil, ErrNotFitted
	}
	if horizon < 1 {
		return nil, fmt.Errorf("forecast horizon %d, must be at least 1: %w",
			horizon, timeseries.ErrInvalidOrder)
	}
	if confidence <= 0 || confidence >= 1 {
		return nil, fmt.Errorf("confidence level %v, must be in (0, 1): %w",
			confidence, timeseries.ErrInvalidOrder)
	}

	o := m.Order
	s := o.Period
	deepest := m.diffLevels[len(m.diffLevels)-1]
	n := len(deepest)

	extY := make([]float64, n+horizon)
	copy(extY, deepest)
	extRes := make([]float64, n+horizon)
	copy(extRes, m.residuals)

	// ARMA recursion on the differenced scale; future shocks are zero.
	for h := 0; h < horizon; h++ {
		t := n + h
		pred := m.Intercept
		for i := 0; i < o.P && t-i-1 >= 0; i++ {
			pred += m.ARCoeffs[i] * (extY[t-i-1] - m.Intercept)
		}
		for i := 0; i < o.SP; i++ {
			if lag := (i + 1) * s; t-lag >= 0 {
				pred += m.SARCoeffs[i] * (extY[t-lag] - m.Intercept)
			}
		}
		for i := 0; i < o.Q && t-i-1 >= 0 && t-i-1 < n; i++ {
			pred += m.MACoeffs[i] * extRes[t-i-1]
		}
		for i := 0; i < o.SQ; i++ {
			if lag := (i + 1) * s; t-lag >= 0 && t-lag < n {
				pred += m.SMACoeffs[i] * extRes[t-lag]
			}
		}
		extY[t] = pred
	}

	values := make([]float64, horizon)
	copy(values, extY[n:])

	// Undo each differencing step, innermost last. The first lag values of
	// each level come from the training history, later ones from the
	// already-integrated forecasts.
	for li := len(m.diffLags) - 1; li >= 0; li-- {
		lag := m.diffLags[li]
		hist := m.diffLevels[li]
		for j := range values {
			if j < lag {
				values[j] += hist[len(hist)-lag+j]
			} else {
				values[j] += values[j-lag]
			}
		}
	}

	psi := m.psiWeights(horizon)
	z := distuv.UnitNormal.Quantile((1 + confidence) / 2)

	points := make([]Point, horizon)
	cum := 0.0
	for h := 0; h < horizon; h++ {
		cum += psi[h] * psi[h]
		se := math.Sqrt(m.Variance * cum)

		v, lo, hi := values[h], values[h]-z*se, values[h]+z*se
		if !math.IsNaN(m.Lambda) {
			v = invBoxCox(v, m.Lambda)
			lo = invBoxCox(lo, m.Lambda)
			hi = invBoxCox(hi, m.Lambda)
		}

		points[h] = Point{
			Time:  m.data.End().AddDate(0, h+1, 0),
			Value: v,
			Lower: lo,
			Upper: hi,
		}
	}

	return &Forecast{Points: points, Confidence: confidence}, nil
}

// psiWeights expands the fitted model into its MA-infinity representation
// and returns psi_0..psi_{count-1}. The generalized AR operator includes the
// differencing factors, so the weights describe forecast errors on the
// original (undifferenced) scale and sum-of-squares variance grows with the
// horizon as the ARIMA forecast-variance formulas dictate.
func (m *Model) psiWeights(count int) []float64 {
	o := m.Order
	s := o.Period

	arPoly := []float64{1}
	if o.P > 0 {
		p := make([]float64, o.P+1)
		p[0] = 1
		for i, c := range m.ARCoeffs {
			p[i+1] = -c
		}
		arPoly = polyMul(arPoly, p)
	}
	if o.SP > 0 {
		p := make([]float64, o.SP*s+1)
		p[0] = 1
		for i, c := range m.SARCoeffs {
			p[(i+1)*s] = -c
		}
		arPoly = polyMul(arPoly, p)
	}
	for i := 0; i < o.D; i++ {
		arPoly = polyMul(arPoly, []float64{1, -1})
	}
	for i := 0; i < o.SD; i++ {
		p := make([]float64, s+1)
		p[0], p[s] = 1, -1
		arPoly = polyMul(arPoly, p)
	}

	maPoly := []float64{1}
	if o.Q > 0 {
		p := make([]float64, o.Q+1)
		p[0] = 1
		copy(p[1:], m.MACoeffs)
		maPoly = polyMul(maPoly, p)
	}
	if o.SQ > 0 {
		p := make([]float64, o.SQ*s+1)
		p[0] = 1
		for i, c := range m.SMACoeffs {
			p[(i+1)*s] = c
		}
		maPoly = polyMul(maPoly, p)
	}

	// With A(B) = 1 - sum a_i B^i and M(B) = 1 + sum m_j B^j:
	// psi_j = m_j + sum_{i=1..j} a_i psi_{j-i}.
	psi := make([]float64, count)
	psi[0] = 1
	for j := 1; j < count; j++ {
		if j < len(maPoly) {
			psi[j] = maPoly[j]
		}
		for i := 1; i <= j && i < len(arPoly); i++ {
			psi[j] += -arPoly[i] * psi[j-i]
		}
	}
	return psi
}

func polyMul(a, b []float64) []float64 {
	out := make([]float64, len(a)+len(b)-1)
	for i, av := range a {
		for j, bv := range b {
			out[i+j] += av * bv
		}
	}
	return out
}
