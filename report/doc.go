// Package report renders plain-text analysis reports: dataset summary,
// stationarity diagnostics, correlograms, the fitted model, residual checks,
// forecasts, and holdout accuracy.
package report
