package preprocess

import (
	"math"
	"slices"

	"github.com/rxtech-lab/argo-features/internal/types"
	"github.com/rxtech-lab/argo-features/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// ColumnStats are the fitted statistics of one column.
type ColumnStats struct {
	Column string
	Mean   float64
	// StdDev is the population standard deviation.
	StdDev float64
}

// StandardScaler standardizes columns to zero mean and unit variance using
// statistics fitted on one frame, typically the training split. Missing values
// are ignored when fitting and stay missing when transforming.
type StandardScaler struct {
	stats []ColumnStats
}

// NewStandardScaler creates an unfitted scaler.
func NewStandardScaler() *StandardScaler {
	return &StandardScaler{}
}

// Fit computes the mean and standard deviation of every column of frame except
// the excluded ones. Columns without a single observed value are not scaled.
func (s *StandardScaler) Fit(frame types.Frame, exclude ...string) error {
	if frame.Len() == 0 {
		return errors.New(errors.ErrCodeEmptySource, "cannot fit scaler on an empty frame")
	}

	s.stats = s.stats[:0]

	for _, column := range frame.ColumnNames() {
		if slices.Contains(exclude, column) {
			continue
		}

		values, _ := frame.Lookup(column)

		observed := make([]float64, 0, len(values))
		for _, v := range values {
			if !math.IsNaN(v) {
				observed = append(observed, v)
			}
		}

		if len(observed) == 0 {
			continue
		}

		mean, variance := stat.PopMeanVariance(observed, nil)
		s.stats = append(s.stats, ColumnStats{Column: column, Mean: mean, StdDev: math.Sqrt(variance)})
	}

	return nil
}

// Stats returns the fitted statistics in column order.
func (s *StandardScaler) Stats() []ColumnStats {
	return slices.Clone(s.stats)
}

// Transform returns a copy of frame with every fitted column standardized.
// Zero-variance columns are only centred.
func (s *StandardScaler) Transform(frame types.Frame) (types.Frame, error) {
	out := frame.Clone()

	for _, cs := range s.stats {
		values, ok := out.Lookup(cs.Column)
		if !ok {
			return types.Frame{}, errors.Newf(errors.ErrCodeColumnNotFound, "scaler was fitted on column %s, which the frame lacks", cs.Column)
		}

		scaled := make([]float64, len(values))
		for i, v := range values {
			scaled[i] = v - cs.Mean
			if cs.StdDev > 0 {
				scaled[i] /= cs.StdDev
			}
		}

		if err := out.SetColumn(cs.Column, scaled); err != nil {
			return types.Frame{}, err
		}
	}

	return out, nil
}

// ScaleSplit fits a scaler on the training partition and applies it to all three.
func ScaleSplit(split types.Split, exclude ...string) (types.Split, *StandardScaler, error) {
	scaler := NewStandardScaler()
	if err := scaler.Fit(split.Train, exclude...); err != nil {
		return types.Split{}, nil, err
	}

	var (
		scaled types.Split
		err    error
	)

	if scaled.Train, err = scaler.Transform(split.Train); err != nil {
		return types.Split{}, nil, err
	}

	if scaled.Validation, err = scaler.Transform(split.Validation); err != nil {
		return types.Split{}, nil, err
	}

	if scaled.Test, err = scaler.Transform(split.Test); err != nil {
		return types.Split{}, nil, err
	}

	return scaled, scaler, nil
}
