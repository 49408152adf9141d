// Package timeseries provides the gap-free monthly series underlying all
// modeling in this module.
package timeseries

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Error kinds surfaced by series operations. Callers match them with
// errors.Is; higher-level packages wrap them with context.
var (
	// ErrInsufficientData indicates the series is too short for the
	// requested operation.
	ErrInsufficientData = errors.New("insufficient data for requested operation")

	// ErrInvalidLag indicates a lag parameter inconsistent with the series
	// length or smaller than one.
	ErrInvalidLag = errors.New("invalid lag")

	// ErrInvalidOrder indicates a mathematically invalid order parameter,
	// such as a negative differencing order.
	ErrInvalidOrder = errors.New("invalid order")
)

// Observation is a single (timestamp, value) pair.
type Observation struct {
	Time  time.Time
	Value float64
}

// Series is an equally spaced monthly time series. Every calendar month
// between Start and End holds exactly one observation; constructors reject
// input with gaps. A Series is immutable once built; transformations return
// new series.
type Series struct {
	start  time.Time
	values []float64
}

// NewMonthly builds a series starting at the month containing start. The
// timestamp of observation i is the first day of the i-th month after start,
// in UTC.
func NewMonthly(start time.Time, values []float64) (*Series, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("empty series: %w", ErrInsufficientData)
	}
	vals := make([]float64, len(values))
	copy(vals, values)
	return &Series{start: monthStart(start), values: vals}, nil
}

// FromObservations builds a series from explicit observations, which must be
// strictly increasing and cover consecutive calendar months with no gaps.
func FromObservations(obs []Observation) (*Series, error) {
	if len(obs) == 0 {
		return nil, fmt.Errorf("no observations: %w", ErrInsufficientData)
	}
	start := monthStart(obs[0].Time)
	values := make([]float64, len(obs))
	for i, o := range obs {
		want := start.AddDate(0, i, 0)
		if got := monthStart(o.Time); !got.Equal(want) {
			return nil, fmt.Errorf("observation %d: expected month %s, got %s",
				i, want.Format("2006-01"), got.Format("2006-01"))
		}
		values[i] = o.Value
	}
	return &Series{start: start, values: values}, nil
}

// monthStart normalizes a timestamp to the first day of its month in UTC.
func monthStart(t time.Time) time.Time {
	y, m, _ := t.UTC().Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

// Len returns the number of observations.
func (s *Series) Len() int {
	return len(s.values)
}

// Start returns the timestamp of the first observation.
func (s *Series) Start() time.Time {
	return s.start
}

// End returns the timestamp of the last observation.
func (s *Series) End() time.Time {
	return s.TimeAt(len(s.values) - 1)
}

// TimeAt returns the timestamp of observation i.
func (s *Series) TimeAt(i int) time.Time {
	return s.start.AddDate(0, i, 0)
}

// Value returns the value of observation i.
func (s *Series) Value(i int) float64 {
	return s.values[i]
}

// Values returns a copy of the observation values.
func (s *Series) Values() []float64 {
	out := make([]float64, len(s.values))
	copy(out, s.values)
	return out
}

// Observations returns a copy of the series as (timestamp, value) pairs.
func (s *Series) Observations() []Observation {
	out := make([]Observation, len(s.values))
	for i, v := range s.values {
		out[i] = Observation{Time: s.TimeAt(i), Value: v}
	}
	return out
}

// Mean returns the arithmetic mean of the series.
func (s *Series) Mean() float64 {
	return stat.Mean(s.values, nil)
}

// Variance returns the sample variance of the series.
func (s *Series) Variance() float64 {
	if len(s.values) < 2 {
		return 0
	}
	return stat.Variance(s.values, nil)
}

// Std returns the sample standard deviation of the series.
func (s *Series) Std() float64 {
	return math.Sqrt(s.Variance())
}

// Min returns the minimum value in the series.
func (s *Series) Min() float64 {
	min := s.values[0]
	for _, v := range s.values[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

// Max returns the maximum value in the series.
func (s *Series) Max() float64 {
	max := s.values[0]
	for _, v := range s.values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

// Difference applies first-order differencing order times at step size lag:
// lag 1 is regular differencing, lag 12 seasonal differencing for monthly
// data. The result is shorter by order*lag observations and starts order*lag
// months later. An order of zero returns an unchanged copy.
func (s *Series) Difference(order, lag int) (*Series, error) {
	if order < 0 {
		return nil, fmt.Errorf("differencing order %d: %w", order, ErrInvalidOrder)
	}
	if lag < 1 {
		return nil, fmt.Errorf("differencing lag %d: %w", lag, ErrInvalidLag)
	}
	if len(s.values) <= order*lag {
		return nil, fmt.Errorf("series of length %d cannot be differenced %d times at lag %d: %w",
			len(s.values), order, lag, ErrInsufficientData)
	}

	values := s.Values()
	for k := 0; k < order; k++ {
		next := make([]float64, len(values)-lag)
		for i := lag; i < len(values); i++ {
			next[i-lag] = values[i] - values[i-lag]
		}
		values = next
	}

	return &Series{
		start:  s.start.AddDate(0, order*lag, 0),
		values: values,
	}, nil
}

// SplitYear splits the series at the start of the given calendar year.
// Observations before January of year form the training series, the rest the
// test series. Both sides must be non-empty.
func (s *Series) SplitYear(year int) (train, test *Series, err error) {
	cut := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	n := monthsBetween(s.start, cut)
	if n <= 0 || n >= len(s.values) {
		return nil, nil, fmt.Errorf("split at %d leaves an empty side: %w", year, ErrInsufficientData)
	}
	train = &Series{start: s.start, values: s.values[:n:n]}
	test = &Series{start: s.TimeAt(n), values: s.values[n:]}
	return train, test, nil
}

// monthsBetween returns the number of whole months from a to b, assuming both
// are month starts.
func monthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}
