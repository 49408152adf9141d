package report

import (
	"fmt"
	"math"

	"github.com/ohincu/co2-forecasting/sarima"
	"github.com/ohincu/co2-forecasting/timeseries"
)

// Accuracy holds holdout forecast accuracy measures.
type Accuracy struct {
	RMSE float64
	MAE  float64
	MAPE float64 // percent
	N    int
}

// Evaluate compares point forecasts against the actual holdout series. The
// forecast must start at the holdout's first month; comparison runs over the
// overlap of the two.
func Evaluate(actual *timeseries.Series, fc *sarima.Forecast) (*Accuracy, error) {
	if fc.Horizon() == 0 {
		return nil, fmt.Errorf("empty forecast: %w", timeseries.ErrInsufficientData)
	}
	if !fc.Points[0].Time.Equal(actual.Start()) {
		return nil, fmt.Errorf("forecast starts %s but holdout starts %s",
			fc.Points[0].Time.Format("2006-01"), actual.Start().Format("2006-01"))
	}

	n := fc.Horizon()
	if actual.Len() < n {
		n = actual.Len()
	}

	var sumSq, sumAbs, sumPct float64
	pctN := 0
	for i := 0; i < n; i++ {
		err := actual.Value(i) - fc.Points[i].Value
		sumSq += err * err
		sumAbs += math.Abs(err)
		if a := actual.Value(i); a != 0 {
			sumPct += math.Abs(err / a)
			pctN++
		}
	}

	acc := &Accuracy{
		RMSE: math.Sqrt(sumSq / float64(n)),
		MAE:  sumAbs / float64(n),
		N:    n,
	}
	if pctN > 0 {
		acc.MAPE = 100 * sumPct / float64(pctN)
	} else {
		acc.MAPE = math.NaN()
	}
	return acc, nil
}
