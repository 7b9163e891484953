package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-features/internal/types"
	"gonum.org/v1/gonum/stat"
)

// RSI represents the Relative Strength Index indicator.
type RSI struct {
	window int
}

// NewRSI creates a new RSI indicator with the default window of 14.
func NewRSI() Indicator {
	return &RSI{
		window: 14,
	}
}

// Name returns the name of the indicator.
func (r *RSI) Name() types.IndicatorType {
	return types.IndicatorTypeRSI
}

// Config configures the RSI indicator. Expected parameters: window (int), optional.
func (r *RSI) Config(params ...any) error {
	if len(params) == 0 {
		return nil
	}

	window, err := windowParam(params[0])
	if err != nil {
		return err
	}

	r.window = window

	return nil
}

func (r *RSI) Outputs() []types.Metric {
	return []types.Metric{types.MetricRSI}
}

func (r *RSI) DependsOn() []types.Metric {
	return nil
}

// Compute averages gains and losses of the first differences over a trailing
// window that is allowed to be shorter at the start of the series. A difference
// with a missing operand counts as neither gain nor loss, so every row is defined.
func (r *RSI) Compute(frame types.Frame, target string) (map[types.Metric][]float64, error) {
	values, err := targetValues(frame, target)
	if err != nil {
		return nil, err
	}

	gains := make([]float64, len(values))
	losses := make([]float64, len(values))

	for i := 1; i < len(values); i++ {
		diff := values[i] - values[i-1]
		if math.IsNaN(diff) {
			continue
		}

		if diff > 0 {
			gains[i] = diff
		} else {
			losses[i] = -diff
		}
	}

	rsi := make([]float64, len(values))

	for i := range values {
		start := max(0, i-r.window+1)
		rsi[i] = relativeStrength(stat.Mean(gains[start:i+1], nil), stat.Mean(losses[start:i+1], nil))
	}

	return map[types.Metric][]float64{
		types.MetricRSI: rsi,
	}, nil
}

func relativeStrength(avgGain, avgLoss float64) float64 {
	switch {
	case avgLoss == 0 && avgGain == 0:
		return 50
	case avgLoss == 0:
		return 100
	}

	return 100 - 100/(1+avgGain/avgLoss)
}
