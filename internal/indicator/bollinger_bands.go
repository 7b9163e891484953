package indicator

import (
	"github.com/rxtech-lab/argo-features/internal/types"
	"github.com/rxtech-lab/argo-features/pkg/errors"
)

// BollingerBands derives bands k standard deviations around the moving average.
// It reads the moving average outputs already attached to the frame.
type BollingerBands struct {
	stdDev float64 // Number of standard deviations
}

// NewBollingerBands creates Bollinger Bands with the default width of 2 standard deviations.
func NewBollingerBands() Indicator {
	return &BollingerBands{
		stdDev: 2.0,
	}
}

// Name returns the name of the indicator.
func (bb *BollingerBands) Name() types.IndicatorType {
	return types.IndicatorTypeBollingerBands
}

// Config configures the band width. Expected parameters: stdDev (float64), optional.
func (bb *BollingerBands) Config(params ...any) error {
	if len(params) == 0 {
		return nil
	}

	var stdDev float64

	switch p := params[0].(type) {
	case float64:
		stdDev = p
	case int:
		stdDev = float64(p)
	default:
		return errors.New(errors.ErrCodeInvalidType, "invalid type for stdDev parameter, expected float64")
	}

	if stdDev <= 0 {
		return errors.Newf(errors.ErrCodeInvalidMultiplier, "stdDev must be a positive number, got %f", stdDev)
	}

	bb.stdDev = stdDev

	return nil
}

func (bb *BollingerBands) Outputs() []types.Metric {
	return []types.Metric{types.MetricUpperBand, types.MetricLowerBand}
}

func (bb *BollingerBands) DependsOn() []types.Metric {
	return []types.Metric{types.MetricMovingAverage, types.MetricMovingStdDev}
}

// Compute returns mean ± k·std row by row. Rows without a moving average stay NaN.
func (bb *BollingerBands) Compute(frame types.Frame, target string) (map[types.Metric][]float64, error) {
	if _, err := targetValues(frame, target); err != nil {
		return nil, err
	}

	means, ok := frame.Indicator(types.IndicatorKey{Target: target, Metric: types.MetricMovingAverage})
	if !ok {
		return nil, errors.Newf(errors.ErrCodeIndicatorDependencyMissing,
			"bollinger bands on %s require %s", target, types.MetricMovingAverage)
	}

	stds, ok := frame.Indicator(types.IndicatorKey{Target: target, Metric: types.MetricMovingStdDev})
	if !ok {
		return nil, errors.Newf(errors.ErrCodeIndicatorDependencyMissing,
			"bollinger bands on %s require %s", target, types.MetricMovingStdDev)
	}

	upper := make([]float64, len(means))
	lower := make([]float64, len(means))

	for i := range means {
		upper[i] = means[i] + bb.stdDev*stds[i]
		lower[i] = means[i] - bb.stdDev*stds[i]
	}

	return map[types.Metric][]float64{
		types.MetricUpperBand: upper,
		types.MetricLowerBand: lower,
	}, nil
}
