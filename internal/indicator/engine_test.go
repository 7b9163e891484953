package indicator

import (
	"math"
	"testing"

	"github.com/rxtech-lab/argo-features/internal/config"
	"github.com/rxtech-lab/argo-features/internal/logger"
	"github.com/rxtech-lab/argo-features/internal/types"
	"github.com/rxtech-lab/argo-features/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type EngineTestSuite struct {
	suite.Suite
	engine *Engine
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

func (suite *EngineTestSuite) SetupTest() {
	suite.engine = NewEngine(DefaultRegistry(), logger.NewNopLogger())
}

func ramp(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + float64(i%7) - float64(i%3)
	}

	return out
}

func (suite *EngineTestSuite) TestDefaultConfigIndicators() {
	frame := frameOf(ramp(40)...)

	cfg := config.DefaultConfig()
	cfg.ApplyDefaults()

	suite.Require().NoError(suite.engine.Apply(&frame, SpecsFromConfig(cfg.Indicators)))

	suite.Equal([]string{
		"Close",
		"Close_weighted_moving_average",
		"Close_weighted_moving_std_dev",
		"Close_upper_band",
		"Close_lower_band",
		"Close_RSI",
	}, frame.ColumnNames())

	upper, _ := frame.Lookup("Close_upper_band")
	lower, _ := frame.Lookup("Close_lower_band")
	stds, _ := frame.Lookup("Close_weighted_moving_std_dev")

	for i := 0; i < 19; i++ {
		suite.True(math.IsNaN(upper[i]))
	}

	for i := 19; i < 40; i++ {
		suite.InDelta(4*stds[i], upper[i]-lower[i], 1e-9)
	}
}

func (suite *EngineTestSuite) TestDependencyOrderingIsResolved() {
	frame := frameOf(ramp(25)...)

	specs := []Spec{
		{Type: types.IndicatorTypeBollingerBands, Target: "Close"},
		{Type: types.IndicatorTypeRSI, Target: "Close"},
		{Type: types.IndicatorTypeMA, Target: "Close", Params: []any{5}},
	}

	suite.Require().NoError(suite.engine.Apply(&frame, specs))

	suite.Equal([]types.IndicatorKey{
		{Target: "Close", Metric: types.MetricRSI},
		{Target: "Close", Metric: types.MetricMovingAverage},
		{Target: "Close", Metric: types.MetricMovingStdDev},
		{Target: "Close", Metric: types.MetricUpperBand},
		{Target: "Close", Metric: types.MetricLowerBand},
	}, frame.Indicators())
}

func (suite *EngineTestSuite) TestMissingDependency() {
	frame := frameOf(ramp(25)...)

	err := suite.engine.Apply(&frame, []Spec{{Type: types.IndicatorTypeBollingerBands, Target: "Close"}})
	suite.True(errors.HasCode(err, errors.ErrCodeIndicatorDependencyMissing))
	suite.Empty(frame.Indicators())
}

func (suite *EngineTestSuite) TestMissingDependencyOnAnotherTargetLeavesFrameUntouched() {
	frame := frameOf(ramp(25)...)
	suite.Require().NoError(frame.AddColumn("Open", ramp(25)))

	err := suite.engine.Apply(&frame, []Spec{
		{Type: types.IndicatorTypeMA, Target: "Close", Params: []any{2}},
		{Type: types.IndicatorTypeBollingerBands, Target: "Open"},
	})
	suite.True(errors.HasCode(err, errors.ErrCodeIndicatorDependencyMissing))
	suite.Empty(frame.Indicators())
	suite.Equal([]string{"Close", "Open"}, frame.ColumnNames())
}

func (suite *EngineTestSuite) TestFailedSecondApplyKeepsEarlierOutputs() {
	frame := frameOf(ramp(25)...)
	suite.Require().NoError(suite.engine.Apply(&frame, []Spec{{Type: types.IndicatorTypeMA, Target: "Close", Params: []any{3}}}))

	err := suite.engine.Apply(&frame, []Spec{
		{Type: types.IndicatorTypeBollingerBands, Target: "Close"},
		{Type: types.IndicatorTypeRSI, Target: "Close"},
		{Type: types.IndicatorTypeRSI, Target: "Close"},
	})
	suite.True(errors.HasCode(err, errors.ErrCodeIndicatorAlreadyExists))
	suite.Equal([]types.IndicatorKey{
		{Target: "Close", Metric: types.MetricMovingAverage},
		{Target: "Close", Metric: types.MetricMovingStdDev},
	}, frame.Indicators())
}

func (suite *EngineTestSuite) TestInvalidWindowLeavesFrameUntouched() {
	frame := frameOf(ramp(25)...)

	err := suite.engine.Apply(&frame, []Spec{
		{Type: types.IndicatorTypeRSI, Target: "Close"},
		{Type: types.IndicatorTypeMA, Target: "Close", Params: []any{0}},
	})
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidPeriod))
	suite.Empty(frame.Indicators())
}

func (suite *EngineTestSuite) TestUnknownTargetAndType() {
	frame := frameOf(ramp(5)...)

	err := suite.engine.Apply(&frame, []Spec{{Type: types.IndicatorTypeRSI, Target: "Open"}})
	suite.True(errors.HasCode(err, errors.ErrCodeColumnNotFound))

	err = suite.engine.Apply(&frame, []Spec{{Type: "macd", Target: "Close"}})
	suite.True(errors.HasCode(err, errors.ErrCodeIndicatorNotFound))
}

func (suite *EngineTestSuite) TestSameIndicatorTwiceIsRejected() {
	frame := frameOf(ramp(5)...)

	err := suite.engine.Apply(&frame, []Spec{
		{Type: types.IndicatorTypeRSI, Target: "Close"},
		{Type: types.IndicatorTypeRSI, Target: "Close", Params: []any{3}},
	})
	suite.True(errors.HasCode(err, errors.ErrCodeIndicatorAlreadyExists))
}

func (suite *EngineTestSuite) TestIndicatorOnDerivedColumn() {
	frame := frameOf(ramp(30)...)

	suite.Require().NoError(suite.engine.Apply(&frame, []Spec{
		{Type: types.IndicatorTypeRSI, Target: "Close"},
		{Type: types.IndicatorTypeMA, Target: "Close_RSI", Params: []any{3}},
	}))

	_, ok := frame.Lookup("Close_RSI_weighted_moving_average")
	suite.True(ok)
}

func (suite *EngineTestSuite) TestSpecsFromConfig() {
	specs := SpecsFromConfig([]config.IndicatorConfig{
		{Type: types.IndicatorTypeMA, Target: "Close", Window: 10},
		{Type: types.IndicatorTypeBollingerBands, Target: "Close", StdDev: 1.5},
		{Type: types.IndicatorTypeRSI, Target: "sony_Close"},
	})

	suite.Equal([]Spec{
		{Type: types.IndicatorTypeMA, Target: "Close", Params: []any{10}},
		{Type: types.IndicatorTypeBollingerBands, Target: "Close", Params: []any{1.5}},
		{Type: types.IndicatorTypeRSI, Target: "sony_Close"},
	}, specs)
}

func (suite *EngineTestSuite) TestNilRegistryUsesDefaults() {
	engine := NewEngine(nil, nil)
	frame := frameOf(ramp(5)...)

	suite.NoError(engine.Apply(&frame, []Spec{{Type: types.IndicatorTypeRSI, Target: "Close"}}))
}
