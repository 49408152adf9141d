// Package co2forecasting provides seasonal ARIMA modeling for the monthly
// Mauna Loa atmospheric CO2 concentration series.
//
// The module downloads the NOAA GML monthly mean record, inspects trend and
// seasonality, fits a SARIMA(p,d,q)(P,D,Q)[s] model with an optional Box-Cox
// variance-stabilizing transform, checks residuals against white noise, and
// projects future concentrations with prediction intervals.
//
// # Quick Start
//
// Fit a seasonal model and forecast two years ahead:
//
//	series, _ := timeseries.NewMonthly(start, values)
//	model := sarima.New(sarima.Order{P: 1, D: 1, Q: 1, SP: 1, SD: 1, SQ: 1, Period: 12})
//	if err := model.Fit(series); err != nil {
//		log.Fatal(err)
//	}
//	fc, _ := model.Forecast(24, 0.95)
//
// # Packages
//
// The module is organized into the following packages:
//
//   - timeseries: gap-free monthly series, differencing, train/test splits
//   - stats: ACF/PACF, Ljung-Box, stationarity tests, seasonal decomposition
//   - sarima: seasonal ARIMA estimation and forecasting
//   - co2: NOAA data acquisition and cleaning
//   - report: textual analysis reports
//
// # References
//
//   - Box, G. E. P., & Jenkins, G. M. (1976). Time Series Analysis: Forecasting and Control
//   - Hyndman, R.J., & Athanasopoulos, G. (2021). Forecasting: Principles and Practice
package co2forecasting
