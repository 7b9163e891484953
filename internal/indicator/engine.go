package indicator

import (
	"slices"

	"github.com/rxtech-lab/argo-features/internal/config"
	"github.com/rxtech-lab/argo-features/internal/logger"
	"github.com/rxtech-lab/argo-features/internal/types"
	"github.com/rxtech-lab/argo-features/pkg/errors"
	"go.uber.org/zap"
)

// Spec is one indicator to compute: which indicator, on which column, with which parameters.
type Spec struct {
	Type   types.IndicatorType
	Target string
	Params []any
}

// SpecsFromConfig converts configured indicators. Zero parameters keep the indicator defaults.
func SpecsFromConfig(indicators []config.IndicatorConfig) []Spec {
	specs := make([]Spec, 0, len(indicators))

	for _, ic := range indicators {
		spec := Spec{Type: ic.Type, Target: ic.Target}

		switch ic.Type {
		case types.IndicatorTypeBollingerBands:
			if ic.StdDev > 0 {
				spec.Params = []any{ic.StdDev}
			}
		default:
			if ic.Window > 0 {
				spec.Params = []any{ic.Window}
			}
		}

		specs = append(specs, spec)
	}

	return specs
}

// Engine attaches indicator outputs to a frame.
type Engine struct {
	registry IndicatorRegistry
	logger   *logger.Logger
}

// NewEngine creates an engine backed by registry. A nil registry uses DefaultRegistry.
func NewEngine(registry IndicatorRegistry, log *logger.Logger) *Engine {
	if registry == nil {
		registry = DefaultRegistry()
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Engine{registry: registry, logger: log}
}

type pendingSpec struct {
	spec      Spec
	indicator Indicator
}

// Apply computes every spec and attaches the outputs to frame. Specs run in the
// given order except that a spec waits until the metrics it depends on are
// attached. Apply is all-or-nothing: the run order is resolved before anything
// is computed and outputs are collected on a copy, so on error frame is untouched.
func (e *Engine) Apply(frame *types.Frame, specs []Spec) error {
	pending := make([]pendingSpec, 0, len(specs))

	for _, spec := range specs {
		if _, ok := frame.Lookup(spec.Target); !ok {
			return errors.Newf(errors.ErrCodeColumnNotFound, "indicator %s: target column %s not found", spec.Type, spec.Target)
		}

		indicator, err := e.registry.GetIndicator(spec.Type)
		if err != nil {
			return err
		}

		if err := indicator.Config(spec.Params...); err != nil {
			return errors.Wrapf(errors.GetCode(err), err, "indicator %s on %s", spec.Type, spec.Target)
		}

		pending = append(pending, pendingSpec{spec: spec, indicator: indicator})
	}

	ordered, err := resolveOrder(*frame, pending)
	if err != nil {
		return err
	}

	work := frame.Clone()

	for _, p := range ordered {
		if err := e.apply(&work, p); err != nil {
			return err
		}
	}

	*frame = work

	return nil
}

// resolveOrder returns pending in run order, tracking which metrics each step
// makes available without computing anything.
func resolveOrder(frame types.Frame, pending []pendingSpec) ([]pendingSpec, error) {
	available := make(map[types.IndicatorKey]bool)
	for _, key := range frame.Indicators() {
		available[key] = true
	}

	pending = slices.Clone(pending)
	ordered := make([]pendingSpec, 0, len(pending))

	for len(pending) > 0 {
		next := slices.IndexFunc(pending, func(p pendingSpec) bool {
			return dependenciesMet(available, p)
		})
		if next < 0 {
			p := pending[0]

			return nil, errors.Newf(errors.ErrCodeIndicatorDependencyMissing,
				"indicator %s on %s depends on %v, which no configured indicator provides",
				p.spec.Type, p.spec.Target, p.indicator.DependsOn())
		}

		p := pending[next]
		for _, metric := range p.indicator.Outputs() {
			available[types.IndicatorKey{Target: p.spec.Target, Metric: metric}] = true
		}

		ordered = append(ordered, p)
		pending = slices.Delete(pending, next, next+1)
	}

	return ordered, nil
}

func (e *Engine) apply(frame *types.Frame, p pendingSpec) error {
	outputs, err := p.indicator.Compute(*frame, p.spec.Target)
	if err != nil {
		return err
	}

	for _, metric := range p.indicator.Outputs() {
		values, ok := outputs[metric]
		if !ok {
			return errors.Newf(errors.ErrCodeIndicatorCalculation, "indicator %s did not produce %s", p.spec.Type, metric)
		}

		if err := frame.AddIndicator(types.IndicatorKey{Target: p.spec.Target, Metric: metric}, values); err != nil {
			return err
		}
	}

	e.logger.Debug("Computed indicator",
		zap.String("indicator", string(p.spec.Type)),
		zap.String("target", p.spec.Target),
		zap.Int("rows", frame.Len()),
	)

	return nil
}

func dependenciesMet(available map[types.IndicatorKey]bool, p pendingSpec) bool {
	for _, metric := range p.indicator.DependsOn() {
		if !available[types.IndicatorKey{Target: p.spec.Target, Metric: metric}] {
			return false
		}
	}

	return true
}
