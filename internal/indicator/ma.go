package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-features/internal/types"
	"github.com/rxtech-lab/argo-features/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// WeightedMovingAverage computes the trailing mean and sample standard deviation
// of a column. Despite its name, every row in the window has the same weight.
type WeightedMovingAverage struct {
	window int
}

// NewWeightedMovingAverage creates a moving average with the default window of 20.
func NewWeightedMovingAverage() Indicator {
	return &WeightedMovingAverage{
		window: 20,
	}
}

// Name returns the name of the indicator.
func (m *WeightedMovingAverage) Name() types.IndicatorType {
	return types.IndicatorTypeMA
}

// Config expects an optional window (int).
func (m *WeightedMovingAverage) Config(params ...any) error {
	if len(params) == 0 {
		return nil
	}

	window, err := windowParam(params[0])
	if err != nil {
		return err
	}

	m.window = window

	return nil
}

func (m *WeightedMovingAverage) Outputs() []types.Metric {
	return []types.Metric{types.MetricMovingAverage, types.MetricMovingStdDev}
}

func (m *WeightedMovingAverage) DependsOn() []types.Metric {
	return nil
}

// Compute returns the trailing mean and std. The first window-1 rows are NaN, as
// is any row whose window contains a missing value.
func (m *WeightedMovingAverage) Compute(frame types.Frame, target string) (map[types.Metric][]float64, error) {
	values, err := targetValues(frame, target)
	if err != nil {
		return nil, err
	}

	means, stds := rollingMeanStdDev(values, m.window)

	return map[types.Metric][]float64{
		types.MetricMovingAverage: means,
		types.MetricMovingStdDev:  stds,
	}, nil
}

func rollingMeanStdDev(values []float64, window int) (means, stds []float64) {
	means = types.NaNs(len(values))
	stds = types.NaNs(len(values))

	for end := window; end <= len(values); end++ {
		slice := values[end-window : end]
		if hasNaN(slice) {
			continue
		}

		if window == 1 {
			// sample std of a single observation is undefined
			means[end-1] = slice[0]

			continue
		}

		means[end-1], stds[end-1] = stat.MeanStdDev(slice, nil)
	}

	return means, stds
}

func hasNaN(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) {
			return true
		}
	}

	return false
}

func windowParam(param any) (int, error) {
	var window int

	switch p := param.(type) {
	case int:
		window = p
	case float64:
		window = int(p)
	default:
		return 0, errors.New(errors.ErrCodeInvalidType, "invalid type for window parameter, expected int")
	}

	if window <= 0 {
		return 0, errors.Newf(errors.ErrCodeInvalidPeriod, "window must be a positive integer, got %d", window)
	}

	return window, nil
}

func targetValues(frame types.Frame, target string) ([]float64, error) {
	values, ok := frame.Lookup(target)
	if !ok {
		return nil, errors.Newf(errors.ErrCodeColumnNotFound, "target column %s not found", target)
	}

	return values, nil
}
