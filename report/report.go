package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	mstats "github.com/montanaflynn/stats"

	"github.com/ohincu/co2-forecasting/sarima"
	"github.com/ohincu/co2-forecasting/stats"
	"github.com/ohincu/co2-forecasting/timeseries"
)

const lineWidth = 72

// Report collects the pieces of an analysis run. Nil fields are skipped when
// rendering, so a partial run still produces a readable report.
type Report struct {
	Title string

	Series *timeseries.Series
	Train  *timeseries.Series
	Test   *timeseries.Series

	ADF  *stats.ADFResult
	KPSS *stats.KPSSResult
	ACF  *stats.Correlogram
	PACF *stats.Correlogram

	Decomposition *stats.Decomposition

	Model    *sarima.Summary
	Forecast *sarima.Forecast
	Accuracy *Accuracy
}

// Render writes the report as plain text.
func (r *Report) Render(w io.Writer) error {
	title := r.Title
	if title == "" {
		title = "Time Series Analysis"
	}

	var b strings.Builder
	banner(&b, title)

	if r.Series != nil {
		r.renderDataset(&b)
	}
	if r.ADF != nil || r.KPSS != nil {
		r.renderStationarity(&b)
	}
	if r.Decomposition != nil {
		r.renderDecomposition(&b)
	}
	if r.ACF != nil || r.PACF != nil {
		r.renderCorrelograms(&b)
	}
	if r.Model != nil {
		r.renderModel(&b)
	}
	if r.Forecast != nil {
		r.renderForecast(&b)
	}
	if r.Accuracy != nil {
		r.renderAccuracy(&b)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func banner(b *strings.Builder, title string) {
	fmt.Fprintln(b, strings.Repeat("=", lineWidth))
	fmt.Fprintln(b, title)
	fmt.Fprintln(b, strings.Repeat("=", lineWidth))
}

func section(b *strings.Builder, title string) {
	fmt.Fprintf(b, "\n%s\n%s\n", title, strings.Repeat("-", lineWidth))
}

func (r *Report) renderDataset(b *strings.Builder) {
	s := r.Series
	section(b, "Dataset")
	fmt.Fprintf(b, "Observations:  %d (%s to %s)\n",
		s.Len(), s.Start().Format("2006-01"), s.End().Format("2006-01"))
	if r.Train != nil && r.Test != nil {
		fmt.Fprintf(b, "Train/test:    %d / %d (test from %s)\n",
			r.Train.Len(), r.Test.Len(), r.Test.Start().Format("2006-01"))
	}

	values := s.Values()
	median, _ := mstats.Median(values)
	q1, _ := mstats.Percentile(values, 25)
	q3, _ := mstats.Percentile(values, 75)
	fmt.Fprintf(b, "Mean:          %.3f   Std: %.3f\n", s.Mean(), s.Std())
	fmt.Fprintf(b, "Min:           %.3f   Q1: %.3f   Median: %.3f   Q3: %.3f   Max: %.3f\n",
		s.Min(), q1, median, q3, s.Max())
}

func (r *Report) renderStationarity(b *strings.Builder) {
	section(b, "Stationarity")
	if r.ADF != nil {
		fmt.Fprintf(b, "ADF:   statistic %8.4f   p-value %.4f   lags %d   %s\n",
			r.ADF.Statistic, r.ADF.PValue, r.ADF.Lags, verdict(r.ADF.IsStationary))
	}
	if r.KPSS != nil {
		fmt.Fprintf(b, "KPSS:  statistic %8.4f   p-value %.4f   lags %d   %s\n",
			r.KPSS.Statistic, r.KPSS.PValue, r.KPSS.Lags, verdict(r.KPSS.IsStationary))
	}
}

func verdict(stationary bool) string {
	if stationary {
		return "stationary"
	}
	return "non-stationary"
}

func (r *Report) renderDecomposition(b *strings.Builder) {
	d := r.Decomposition
	section(b, fmt.Sprintf("Seasonal Decomposition (%s, period %d)", d.Mode, d.Period))
	fmt.Fprintf(b, "Seasonal strength: %.3f\n", d.SeasonalStrength())
	fmt.Fprint(b, "Seasonal indices: ")
	for i, v := range d.Indices {
		if i > 0 {
			fmt.Fprint(b, "  ")
		}
		fmt.Fprintf(b, "%.2f", v)
	}
	fmt.Fprintln(b)
}

func (r *Report) renderCorrelograms(b *strings.Builder) {
	section(b, "Autocorrelation")
	if r.ACF != nil {
		writeCorrelogram(b, "ACF", r.ACF)
	}
	if r.PACF != nil {
		writeCorrelogram(b, "PACF", r.PACF)
	}
}

func writeCorrelogram(b *strings.Builder, name string, c *stats.Correlogram) {
	fmt.Fprintf(b, "%s (bound ±%.3f):\n", name, c.ConfBound)
	for i, lag := range c.Lags {
		mark := " "
		if math.Abs(c.Values[i]) > c.ConfBound {
			mark = "*"
		}
		fmt.Fprintf(b, "  lag %3d  %8.4f %s\n", lag, c.Values[i], mark)
	}
}

func (r *Report) renderModel(b *strings.Builder) {
	m := r.Model
	section(b, fmt.Sprintf("Model %s", m.Order))
	writeCoeffs(b, "AR", m.ARCoeffs)
	writeCoeffs(b, "MA", m.MACoeffs)
	writeCoeffs(b, "Seasonal AR", m.SARCoeffs)
	writeCoeffs(b, "Seasonal MA", m.SMACoeffs)
	fmt.Fprintf(b, "Intercept:     %10.4f\n", m.Intercept)
	if !math.IsNaN(m.Lambda) {
		fmt.Fprintf(b, "Box-Cox:       lambda %.4f\n", m.Lambda)
	}
	fmt.Fprintf(b, "Sigma2:        %10.4f\n", m.Variance)
	fmt.Fprintf(b, "LogLik:        %10.2f\n", m.LogLik)
	fmt.Fprintf(b, "AIC: %.2f   AICc: %.2f   BIC: %.2f\n", m.AIC, m.AICc, m.BIC)

	if lb := m.LjungBox; lb != nil {
		pass := "residuals look like white noise"
		if lb.PValue < 0.05 {
			pass = "residual autocorrelation remains"
		}
		fmt.Fprintf(b, "Ljung-Box:     Q(%d) = %.2f, p-value %.4f: %s\n",
			lb.Lags, lb.Statistic, lb.PValue, pass)
	}
}

func writeCoeffs(b *strings.Builder, name string, coeffs []float64) {
	if len(coeffs) == 0 {
		return
	}
	fmt.Fprintf(b, "%-14s", name+":")
	for i, c := range coeffs {
		if i > 0 {
			fmt.Fprint(b, "  ")
		}
		fmt.Fprintf(b, "%8.4f", c)
	}
	fmt.Fprintln(b)
}

func (r *Report) renderForecast(b *strings.Builder) {
	fc := r.Forecast
	section(b, fmt.Sprintf("Forecast (%.0f%% interval)", fc.Confidence*100))
	fmt.Fprintf(b, "%-9s %10s %10s %10s\n", "Month", "Forecast", "Lower", "Upper")
	for _, p := range fc.Points {
		fmt.Fprintf(b, "%-9s %10.2f %10.2f %10.2f\n",
			p.Time.Format("2006-01"), p.Value, p.Lower, p.Upper)
	}
}

func (r *Report) renderAccuracy(b *strings.Builder) {
	a := r.Accuracy
	section(b, fmt.Sprintf("Holdout Accuracy (%d months)", a.N))
	fmt.Fprintf(b, "RMSE: %.3f   MAE: %.3f   MAPE: %.2f%%\n", a.RMSE, a.MAE, a.MAPE)
}
