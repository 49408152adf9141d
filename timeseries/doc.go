// Package timeseries provides the core monthly time series type used
// throughout the module.
//
// A Series holds an ordered, gap-free sequence of monthly observations:
// every calendar month between the first and last timestamp has exactly one
// value. The constructors enforce this invariant so that downstream
// components (differencing, autocorrelation estimation, SARIMA fitting) can
// index by month offset without checking for missing periods.
//
// Series values are immutable. Transformations such as Difference return new
// series and never mutate the receiver.
//
// # Differencing
//
// Difference applies first-order differencing a given number of times at a
// given step size:
//
//	diff, err := series.Difference(1, 12) // one seasonal difference
//
// The result is shorter by order*lag observations and its timestamps are
// shifted forward accordingly, so diff.TimeAt(0) is the month at which the
// first differenced value is defined.
package timeseries
