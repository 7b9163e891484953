package types

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type IndicatorTestSuite struct {
	suite.Suite
}

func TestIndicatorSuite(t *testing.T) {
	suite.Run(t, new(IndicatorTestSuite))
}

func (suite *IndicatorTestSuite) TestIndicatorTypeConstants() {
	suite.Equal(IndicatorType("rsi"), IndicatorTypeRSI)
	suite.Equal(IndicatorType("bollinger_bands"), IndicatorTypeBollingerBands)
	suite.Equal(IndicatorType("ma"), IndicatorTypeMA)
}

func (suite *IndicatorTestSuite) TestColumnName() {
	tests := []struct {
		key      IndicatorKey
		expected string
	}{
		{IndicatorKey{Target: "Close", Metric: MetricMovingAverage}, "Close_weighted_moving_average"},
		{IndicatorKey{Target: "Close", Metric: MetricMovingStdDev}, "Close_weighted_moving_std_dev"},
		{IndicatorKey{Target: "Close", Metric: MetricUpperBand}, "Close_upper_band"},
		{IndicatorKey{Target: "Close", Metric: MetricLowerBand}, "Close_lower_band"},
		{IndicatorKey{Target: "sony_Close", Metric: MetricRSI}, "sony_Close_RSI"},
	}

	for _, tt := range tests {
		suite.Equal(tt.expected, tt.key.ColumnName())
		suite.Equal(tt.expected, tt.key.String())
	}
}

func (suite *IndicatorTestSuite) TestKeyIsComparable() {
	seen := map[IndicatorKey]bool{}
	seen[IndicatorKey{Target: "Close", Metric: MetricRSI}] = true

	suite.True(seen[IndicatorKey{Target: "Close", Metric: MetricRSI}])
	suite.False(seen[IndicatorKey{Target: "Open", Metric: MetricRSI}])
}
