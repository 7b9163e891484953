package preprocess

import (
	"math"

	"github.com/rxtech-lab/argo-features/internal/types"
	"github.com/rxtech-lab/argo-features/pkg/errors"
)

// ShiftLabel replaces target with its value periods rows ahead, so that row t
// holds what is observed at t+periods. The last periods rows become NaN.
// The frame is expected to be in ascending date order.
func ShiftLabel(frame *types.Frame, target string, periods int) error {
	if periods <= 0 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "label periods must be positive, got %d", periods)
	}

	values, ok := frame.Lookup(target)
	if !ok {
		return errors.Newf(errors.ErrCodeColumnNotFound, "label target column %s not found", target)
	}

	shifted := make([]float64, len(values))
	for i := range shifted {
		if i+periods < len(values) {
			shifted[i] = values[i+periods]
		} else {
			shifted[i] = math.NaN()
		}
	}

	return frame.SetColumn(target, shifted)
}
