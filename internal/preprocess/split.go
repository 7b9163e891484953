package preprocess

import (
	"math"
	"time"

	"github.com/rxtech-lab/argo-features/internal/types"
	"github.com/rxtech-lab/argo-features/pkg/errors"
)

const (
	DefaultTrainSize = 0.8
	DefaultValSize   = 0.19

	sizeTolerance = 1e-9
)

// SplitByDate partitions frame at two cutoffs: train holds dates before
// valCutoff, validation dates in [valCutoff, testCutoff), test the rest.
// Row order inside each partition is preserved.
func SplitByDate(frame types.Frame, valCutoff, testCutoff time.Time) (types.Split, error) {
	if !valCutoff.Before(testCutoff) {
		return types.Split{}, errors.Newf(errors.ErrCodeInvalidSplitConfiguration,
			"validation cutoff %s must be before test cutoff %s",
			valCutoff.Format(types.DateLayout), testCutoff.Format(types.DateLayout))
	}

	return types.Split{
		Train: frame.Filter(func(d time.Time) bool {
			return d.Before(valCutoff)
		}),
		Validation: frame.Filter(func(d time.Time) bool {
			return !d.Before(valCutoff) && d.Before(testCutoff)
		}),
		Test: frame.Filter(func(d time.Time) bool {
			return !d.Before(testCutoff)
		}),
	}, nil
}

// SplitByRatio partitions an ascending frame into its first ⌊N·trainSize⌋ rows,
// the next ⌊N·valSize⌋ rows, and the remainder.
func SplitByRatio(frame types.Frame, trainSize, valSize float64) (types.Split, error) {
	if err := validateSizes(trainSize, valSize); err != nil {
		return types.Split{}, err
	}

	if !frame.IsSortedAscending() {
		return types.Split{}, errors.New(errors.ErrCodeUnsortedIndex,
			"ratio split requires a strictly ascending date index")
	}

	n := frame.Len()
	trainEnd := int(math.Floor(float64(n) * trainSize))
	valEnd := min(n, trainEnd+int(math.Floor(float64(n)*valSize)))

	return types.Split{
		Train:      frame.Slice(0, trainEnd),
		Validation: frame.Slice(trainEnd, valEnd),
		Test:       frame.Slice(valEnd, n),
	}, nil
}

func validateSizes(trainSize, valSize float64) error {
	sizes := []struct {
		name  string
		value float64
	}{
		{"train", trainSize},
		{"validation", valSize},
	}

	for _, size := range sizes {
		if math.IsNaN(size.value) || size.value < 0 || size.value > 1 {
			return errors.Newf(errors.ErrCodeInvalidSplitConfiguration, "%s size must be within [0, 1], got %v", size.name, size.value)
		}
	}

	if trainSize+valSize > 1+sizeTolerance {
		return errors.Newf(errors.ErrCodeInvalidSplitConfiguration,
			"train and validation sizes sum to %v, more than 1", trainSize+valSize)
	}

	return nil
}
