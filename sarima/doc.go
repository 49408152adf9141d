// Package sarima implements seasonal ARIMA(p,d,q)(P,D,Q)[s] models for
// monthly series.
//
// A model is created with an explicit order — this package performs no
// automatic order selection — and estimated by conditional sum of squares:
//
//	model := sarima.New(sarima.Order{P: 1, D: 1, Q: 1, SP: 1, SD: 1, SQ: 1, Period: 12})
//	if err := model.Fit(train); err != nil { ... }
//	fc, err := model.Forecast(24, 0.95)
//
// Fitting applies the optional Box-Cox transform, differences the series per
// the order, and minimizes the conditional sum of squares with a
// Nelder-Mead search from a deterministic Yule-Walker starting point.
// Identical input therefore always reproduces identical coefficients. The
// search is capped; exceeding the cap fails with ErrNonConvergence rather
// than returning a half-converged model.
//
// Forecasts integrate back through the differencing, back-transform through
// the Box-Cox transform when one was applied, and carry prediction intervals
// derived from the psi-weight expansion of the full model operator.
package sarima
