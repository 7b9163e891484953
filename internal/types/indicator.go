package types

import "fmt"

type IndicatorType string

const (
	IndicatorTypeRSI            IndicatorType = "rsi"
	IndicatorTypeBollingerBands IndicatorType = "bollinger_bands"
	IndicatorTypeMA             IndicatorType = "ma"
)

// Metric names a single derived series produced by an indicator.
type Metric string

const (
	// MetricMovingAverage is the trailing arithmetic mean. The name is kept for
	// compatibility with existing feature matrices even though no weighting is applied.
	MetricMovingAverage Metric = "weighted_moving_average"
	MetricMovingStdDev  Metric = "weighted_moving_std_dev"
	MetricUpperBand     Metric = "upper_band"
	MetricLowerBand     Metric = "lower_band"
	MetricRSI           Metric = "RSI"
)

// IndicatorKey addresses a derived column by the column it was computed on and the metric.
type IndicatorKey struct {
	Target string
	Metric Metric
}

// ColumnName renders the key as "{target}_{metric}".
func (k IndicatorKey) ColumnName() string {
	return fmt.Sprintf("%s_%s", k.Target, k.Metric)
}

func (k IndicatorKey) String() string {
	return k.ColumnName()
}
