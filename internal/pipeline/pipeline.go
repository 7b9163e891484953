package pipeline

import (
	"context"

	"github.com/rxtech-lab/argo-features/internal/config"
	"github.com/rxtech-lab/argo-features/internal/indicator"
	"github.com/rxtech-lab/argo-features/internal/ingestion"
	"github.com/rxtech-lab/argo-features/internal/logger"
	"github.com/rxtech-lab/argo-features/internal/merge"
	"github.com/rxtech-lab/argo-features/internal/preprocess"
	"github.com/rxtech-lab/argo-features/internal/types"
	"github.com/rxtech-lab/argo-features/pkg/errors"
	"github.com/rxtech-lab/argo-features/pkg/featurestore/writer"
	"go.uber.org/zap"
)

// Lifecycle callback types for pipeline phases.
// All callbacks with error return can abort execution if they return an error.

// OnPipelineStartCallback is called once before any source is loaded.
type OnPipelineStartCallback func(totalSources int) error

// OnPipelineEndCallback is called when the run completes (always called via defer).
type OnPipelineEndCallback func(err error)

// OnSourceLoadedCallback is called after each source has been loaded and normalized.
type OnSourceLoadedCallback func(index int, total int, report ingestion.NormalizeReport) error

// OnOutputWrittenCallback is called after each output file is exported.
type OnOutputWrittenCallback func(partition string, path string)

// LifecycleCallbacks holds all lifecycle callback functions for a pipeline run.
// All fields are pointers - nil means no callback will be invoked.
type LifecycleCallbacks struct {
	OnPipelineStart *OnPipelineStartCallback
	OnPipelineEnd   *OnPipelineEndCallback
	OnSourceLoaded  *OnSourceLoadedCallback
	OnOutputWritten *OnOutputWrittenCallback
}

// Partition names used for split outputs.
const (
	PartitionAll        = "all"
	PartitionTrain      = "train"
	PartitionValidation = "validation"
	PartitionTest       = "test"
)

// Result is everything a run produced.
type Result struct {
	// Features is the merged, labelled and indicator-enriched matrix, scaled when scaling is enabled.
	Features types.Frame
	Split    types.Split
	Reports  []ingestion.NormalizeReport
	// Scaler is nil unless scaling is enabled.
	Scaler *preprocess.StandardScaler
	// Outputs maps partition name to the exported file.
	Outputs map[string]string
}

// Pipeline turns configured sources into a split feature matrix.
type Pipeline struct {
	config        config.PipelineConfig
	loader        ingestion.Loader
	writerFactory writer.Factory
	registry      indicator.IndicatorRegistry
	engine        *indicator.Engine
	merger        *merge.Merger
	logger        *logger.Logger
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithLoader replaces the default DuckDB loader.
func WithLoader(loader ingestion.Loader) Option {
	return func(p *Pipeline) {
		p.loader = loader
	}
}

// WithWriterFactory replaces the default DuckDB writer factory.
func WithWriterFactory(factory writer.Factory) Option {
	return func(p *Pipeline) {
		p.writerFactory = factory
	}
}

// WithRegistry computes indicators from registry instead of the default one.
func WithRegistry(registry indicator.IndicatorRegistry) Option {
	return func(p *Pipeline) {
		p.registry = registry
	}
}

// WithLogger sets the logger used by the pipeline and its components.
func WithLogger(log *logger.Logger) Option {
	return func(p *Pipeline) {
		p.logger = log
	}
}

// NewPipeline validates cfg and wires the pipeline components.
func NewPipeline(cfg config.PipelineConfig, opts ...Option) (*Pipeline, error) {
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{
		config: cfg,
		logger: logger.NewNopLogger(),
	}

	for _, opt := range opts {
		opt(p)
	}

	p.engine = indicator.NewEngine(p.registry, p.logger)
	p.merger = merge.NewMerger(p.logger)

	if p.loader == nil {
		loader, err := ingestion.NewDuckDBLoader(p.logger)
		if err != nil {
			return nil, err
		}

		p.loader = loader
	}

	if p.writerFactory == nil {
		p.writerFactory = writer.NewDuckDBWriterFactory(writer.Options{
			Format:           cfg.Output.Format,
			DecimalPrecision: cfg.Output.DecimalPrecision,
			Logger:           p.logger,
		})
	}

	return p, nil
}

// Config returns the validated configuration the pipeline runs with.
func (p *Pipeline) Config() config.PipelineConfig {
	return p.config
}

// Run loads, normalizes and merges the sources, builds the label and the
// indicators, splits the matrix, optionally scales it and exports it.
func (p *Pipeline) Run(ctx context.Context, callbacks LifecycleCallbacks) (result Result, err error) {
	if callbacks.OnPipelineEnd != nil {
		defer func() {
			(*callbacks.OnPipelineEnd)(err)
		}()
	}

	if callbacks.OnPipelineStart != nil {
		if err := (*callbacks.OnPipelineStart)(len(p.config.Sources)); err != nil {
			return Result{}, err
		}
	}

	sources, reports, err := p.load(ctx, callbacks)
	if err != nil {
		return Result{}, err
	}

	result.Reports = reports

	features, err := p.merger.Merge(sources)
	if err != nil {
		return Result{}, err
	}

	if err := p.Transform(&features); err != nil {
		return Result{}, err
	}

	split, err := p.split(features)
	if err != nil {
		return Result{}, err
	}

	p.logger.Info("Split feature matrix",
		zap.String("strategy", string(p.config.Split.Strategy)),
		zap.Int("train", split.Train.Len()),
		zap.Int("validation", split.Validation.Len()),
		zap.Int("test", split.Test.Len()),
	)

	if p.config.Scale {
		split, result.Scaler, err = preprocess.ScaleSplit(split, p.scaleExclusions()...)
		if err != nil {
			return Result{}, err
		}

		if features, err = result.Scaler.Transform(features); err != nil {
			return Result{}, err
		}
	}

	result.Features = features
	result.Split = split

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	if result.Outputs, err = p.write(result, callbacks); err != nil {
		return Result{}, err
	}

	return result, nil
}

// Transform builds the label and attaches the configured indicators, in the configured order.
func (p *Pipeline) Transform(features *types.Frame) error {
	label := p.config.Label

	if label.Enabled && label.Order == config.LabelBeforeIndicators {
		if err := preprocess.ShiftLabel(features, p.config.Target, label.Periods); err != nil {
			return err
		}
	}

	if err := p.engine.Apply(features, indicator.SpecsFromConfig(p.config.Indicators)); err != nil {
		return err
	}

	if label.Enabled && label.Order == config.LabelAfterIndicators {
		if err := preprocess.ShiftLabel(features, p.config.Target, label.Periods); err != nil {
			return err
		}
	}

	return nil
}

// Close releases the loader.
func (p *Pipeline) Close() error {
	return p.loader.Close()
}

func (p *Pipeline) load(ctx context.Context, callbacks LifecycleCallbacks) ([]types.Source, []ingestion.NormalizeReport, error) {
	sources := make([]types.Source, 0, len(p.config.Sources))
	reports := make([]ingestion.NormalizeReport, 0, len(p.config.Sources))

	for i, sourceConfig := range p.config.Sources {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		raw, err := p.loader.Load(ctx, sourceConfig)
		if err != nil {
			return nil, nil, err
		}

		frame, report, err := ingestion.NormalizeDateIndex(raw, ingestion.NormalizeOptions{Columns: sourceConfig.Columns})
		if err != nil {
			return nil, nil, err
		}

		if report.Dropped > 0 || report.Duplicates > 0 || report.InvalidCells > 0 {
			p.logger.Warn("Source had irregular rows",
				zap.String("source", report.Source),
				zap.Int("dropped", report.Dropped),
				zap.Strings("dropped_values", report.DroppedValues),
				zap.Int("duplicates", report.Duplicates),
				zap.Int("invalid_cells", report.InvalidCells),
			)
		}

		p.logger.Debug("Loaded source",
			zap.String("source", report.Source),
			zap.Int("rows", frame.Len()),
			zap.Strings("columns", frame.Columns()),
		)

		sources = append(sources, types.Source{Prefix: sourceConfig.Prefix, Frame: frame})
		reports = append(reports, report)

		if callbacks.OnSourceLoaded != nil {
			if err := (*callbacks.OnSourceLoaded)(i, len(p.config.Sources), report); err != nil {
				return nil, nil, err
			}
		}
	}

	return sources, reports, nil
}

func (p *Pipeline) split(features types.Frame) (types.Split, error) {
	cfg := p.config.Split

	switch cfg.Strategy {
	case config.SplitStrategyDate:
		return preprocess.SplitByDate(features, cfg.ValCutoff.Unwrap(), cfg.TestCutoff.Unwrap())
	case config.SplitStrategyRatio:
		return preprocess.SplitByRatio(features, cfg.TrainSize, cfg.ValSize)
	}

	return types.Split{}, errors.Newf(errors.ErrCodeInvalidSplitConfiguration, "unknown split strategy %q", cfg.Strategy)
}

func (p *Pipeline) scaleExclusions() []string {
	if p.config.Label.Enabled {
		return []string{p.config.Target}
	}

	return nil
}

type outputTarget struct {
	partition string
	path      string
	frame     types.Frame
}

func (p *Pipeline) write(result Result, callbacks LifecycleCallbacks) (map[string]string, error) {
	out := p.config.Output
	if out.Path == "" {
		return nil, nil
	}

	targets := []outputTarget{
		{PartitionAll, out.Path, result.Features},
	}

	if out.SplitFiles {
		targets = []outputTarget{
			{PartitionTrain, writer.SplitPath(out.Path, PartitionTrain, out.Format), result.Split.Train},
			{PartitionValidation, writer.SplitPath(out.Path, PartitionValidation, out.Format), result.Split.Validation},
			{PartitionTest, writer.SplitPath(out.Path, PartitionTest, out.Format), result.Split.Test},
		}
	}

	outputs := make(map[string]string, len(targets))

	for _, target := range targets {
		path, err := p.writeFrame(target.path, target.frame)
		if err != nil {
			return nil, err
		}

		outputs[target.partition] = path

		if callbacks.OnOutputWritten != nil {
			(*callbacks.OnOutputWritten)(target.partition, path)
		}
	}

	return outputs, nil
}

func (p *Pipeline) writeFrame(path string, frame types.Frame) (string, error) {
	w := p.writerFactory(path)
	defer func() {
		if err := w.Close(); err != nil {
			p.logger.Warn("Failed to close writer", zap.String("path", path), zap.Error(err))
		}
	}()

	return writer.WriteFrame(w, frame)
}
