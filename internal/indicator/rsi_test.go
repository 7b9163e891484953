package indicator

import (
	"math"
	"testing"

	"github.com/rxtech-lab/argo-features/internal/types"
	"github.com/rxtech-lab/argo-features/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type RSITestSuite struct {
	suite.Suite
}

func TestRSISuite(t *testing.T) {
	suite.Run(t, new(RSITestSuite))
}

func (suite *RSITestSuite) compute(window int, values ...float64) []float64 {
	rsi := NewRSI()
	suite.Require().NoError(rsi.Config(window))

	outputs, err := rsi.Compute(frameOf(values...), "Close")
	suite.Require().NoError(err)
	suite.Require().Len(outputs[types.MetricRSI], len(values))

	return outputs[types.MetricRSI]
}

func (suite *RSITestSuite) TestConfig() {
	rsi := NewRSI().(*RSI)
	suite.Equal(14, rsi.window)

	suite.NoError(rsi.Config(10))
	suite.Equal(10, rsi.window)

	suite.True(errors.HasCode(rsi.Config(0), errors.ErrCodeInvalidPeriod))
}

func (suite *RSITestSuite) TestConstantSeriesIsNeutral() {
	for i, v := range suite.compute(14, constant(30, 42)...) {
		suite.Equal(50.0, v, "row %d", i)
	}
}

func (suite *RSITestSuite) TestIncreasingSeriesSaturates() {
	values := make([]float64, 30)
	for i := range values {
		values[i] = float64(i) + 1
	}

	rsi := suite.compute(14, values...)

	suite.Equal(50.0, rsi[0])

	for i := 1; i < len(rsi); i++ {
		suite.Equal(100.0, rsi[i], "row %d", i)
	}
}

func (suite *RSITestSuite) TestDecreasingSeriesBottomsOut() {
	rsi := suite.compute(3, 5, 4, 3, 2, 1)

	suite.Equal(50.0, rsi[0])

	for i := 1; i < len(rsi); i++ {
		suite.Equal(0.0, rsi[i], "row %d", i)
	}
}

func (suite *RSITestSuite) TestKnownValues() {
	// gains:  0 2 0 1
	// losses: 0 0 1 0
	rsi := suite.compute(2, 1, 3, 2, 3)

	suite.Equal(50.0, rsi[0])
	suite.Equal(100.0, rsi[1])
	// avg gain 1, avg loss 0.5
	suite.InDelta(100-100/(1+2.0), rsi[2], 1e-12)
	// avg gain 0.5, avg loss 0.5
	suite.InDelta(50.0, rsi[3], 1e-12)
}

func (suite *RSITestSuite) TestBounded() {
	values := []float64{44.34, 44.09, 44.15, 43.61, 44.33, 44.83, 45.10, 45.42, 45.84, 46.08, 45.89, 46.03, 45.61, 46.28, 46.28, 46.00, 46.03, 46.41, 46.22, 45.64}

	for i, v := range suite.compute(14, values...) {
		suite.GreaterOrEqual(v, 0.0, "row %d", i)
		suite.LessOrEqual(v, 100.0, "row %d", i)
	}
}

func (suite *RSITestSuite) TestMissingValuesAreNeutralDifferences() {
	rsi := suite.compute(14, 1, math.NaN(), 3, 4)

	suite.Equal(50.0, rsi[0])
	// both differences touching the gap are ignored
	suite.Equal(50.0, rsi[1])
	suite.Equal(50.0, rsi[2])
	suite.Equal(100.0, rsi[3])

	for _, v := range rsi {
		suite.False(math.IsNaN(v))
	}
}

func (suite *RSITestSuite) TestUnknownTarget() {
	_, err := NewRSI().Compute(frameOf(1, 2), "Volume")
	suite.True(errors.HasCode(err, errors.ErrCodeColumnNotFound))
}
