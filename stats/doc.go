// Package stats provides the diagnostic layer of the analysis pipeline.
//
// The functions here are consumed for inspection and reporting; the SARIMA
// fitter never branches on their output. They fall into four groups:
//
//   - ACF and PACF estimate autocorrelation at lags 1..maxLag; PACF uses the
//     Durbin-Levinson recursion for numerical stability.
//   - LjungBox and DurbinWatson test fitted residuals against white noise.
//   - ADF and KPSS test a series for stationarity, informing the choice of
//     differencing orders.
//   - Decompose splits a series into trend, seasonal, and residual
//     components by classical moving-average decomposition.
//
// All functions are pure: they perform no I/O, keep no state, and return the
// same result for the same input.
package stats
