package sarima

import (
	"fmt"
	"math"
)

type transformMode int

const (
	transformNone transformMode = iota
	transformFixed
	transformAuto
)

// Transform selects the variance-stabilizing power transform applied to the
// series before differencing and estimation. The zero value applies no
// transform.
type Transform struct {
	mode   transformMode
	lambda float64
}

// NoTransform fits on the raw series.
func NoTransform() Transform {
	return Transform{mode: transformNone}
}

// BoxCox applies a Box-Cox transform with a fixed lambda. Lambda zero is the
// natural log.
func BoxCox(lambda float64) Transform {
	return Transform{mode: transformFixed, lambda: lambda}
}

// BoxCoxAuto estimates lambda by maximizing the profile Gaussian
// log-likelihood of the transformed series over [-1, 2]. The search is a
// fixed-iteration golden-section scan, so the estimate is deterministic for
// identical input.
func BoxCoxAuto() Transform {
	return Transform{mode: transformAuto}
}

// apply transforms the values and reports the lambda used. NaN lambda means
// no transform was applied.
func (tr Transform) apply(values []float64) (transformed []float64, lambda float64, err error) {
	if tr.mode == transformNone {
		out := make([]float64, len(values))
		copy(out, values)
		return out, math.NaN(), nil
	}

	for i, v := range values {
		if v <= 0 {
			return nil, 0, fmt.Errorf("box-cox transform requires positive values, got %v at index %d", v, i)
		}
	}

	lambda = tr.lambda
	if tr.mode == transformAuto {
		lambda = profileLambda(values)
	}

	transformed = make([]float64, len(values))
	for i, v := range values {
		transformed[i] = boxCox(v, lambda)
	}
	return transformed, lambda, nil
}

func boxCox(v, lambda float64) float64 {
	if lambda == 0 {
		return math.Log(v)
	}
	return (math.Pow(v, lambda) - 1) / lambda
}

// invBoxCox back-transforms a value from the Box-Cox scale. Returns NaN when
// the argument falls outside the transform's range.
func invBoxCox(z, lambda float64) float64 {
	if lambda == 0 {
		return math.Exp(z)
	}
	base := lambda*z + 1
	if base <= 0 {
		return math.NaN()
	}
	return math.Pow(base, 1/lambda)
}

// profileLambda maximizes the Box-Cox profile log-likelihood
//
//	ll(lambda) = -n/2 * log(sigma2(z)) + (lambda-1) * sum(log y)
//
// by golden-section search on [-1, 2].
func profileLambda(values []float64) float64 {
	n := float64(len(values))

	sumLog := 0.0
	for _, v := range values {
		sumLog += math.Log(v)
	}

	ll := func(lambda float64) float64 {
		mean := 0.0
		z := make([]float64, len(values))
		for i, v := range values {
			z[i] = boxCox(v, lambda)
			mean += z[i]
		}
		mean /= n

		ss := 0.0
		for _, zi := range z {
			d := zi - mean
			ss += d * d
		}
		sigma2 := ss / n
		if sigma2 <= 0 {
			return math.Inf(-1)
		}
		return -n/2*math.Log(sigma2) + (lambda-1)*sumLog
	}

	const phi = 1.618033988749895
	lo, hi := -1.0, 2.0
	a := hi - (hi-lo)/phi
	b := lo + (hi-lo)/phi
	fa, fb := ll(a), ll(b)

	for iter := 0; iter < 100 && hi-lo > 1e-6; iter++ {
		if fa > fb {
			hi, b, fb = b, a, fa
			a = hi - (hi-lo)/phi
			fa = ll(a)
		} else {
			lo, a, fa = a, b, fb
			b = lo + (hi-lo)/phi
			fb = ll(b)
		}
	}
	return (lo + hi) / 2
}
