package indicator

import (
	"github.com/rxtech-lab/argo-features/internal/types"
)

// Indicator defines methods that any feature indicator must implement.
// Indicators are trailing: the value at row t only depends on rows <= t.
type Indicator interface {
	// Name returns the name of the indicator
	Name() types.IndicatorType
	// Config sets the indicator parameters. Calling it without parameters keeps the defaults.
	Config(params ...any) error
	// Outputs lists the metrics Compute produces.
	Outputs() []types.Metric
	// DependsOn lists metrics on the same target that must already be attached to the frame.
	DependsOn() []types.Metric
	// Compute derives the output series for target. It never mutates frame.
	Compute(frame types.Frame, target string) (map[types.Metric][]float64, error)
}
