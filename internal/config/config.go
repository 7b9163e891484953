package config

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-features/internal/types"
	"github.com/rxtech-lab/argo-features/internal/version"
	"github.com/rxtech-lab/argo-features/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultIndexColumn is the timestamp column of Dukascopy candle exports.
const DefaultIndexColumn = "Gmt time"

type SourceFormat string

const (
	SourceFormatCSV     SourceFormat = "csv"
	SourceFormatParquet SourceFormat = "parquet"
)

type LabelOrder string

const (
	// LabelBeforeIndicators shifts the target first, so indicators describe the shifted series.
	LabelBeforeIndicators LabelOrder = "before_indicators"
	// LabelAfterIndicators computes indicators on the observed series, then shifts the target.
	LabelAfterIndicators LabelOrder = "after_indicators"
)

type SplitStrategy string

const (
	SplitStrategyDate  SplitStrategy = "date"
	SplitStrategyRatio SplitStrategy = "ratio"
)

type OutputFormat string

const (
	OutputFormatParquet OutputFormat = "parquet"
	OutputFormatCSV     OutputFormat = "csv"
)

// SourceConfig describes one input table and the prefix its columns get in the merged matrix.
// The primary source usually has an empty prefix.
type SourceConfig struct {
	Prefix      string       `yaml:"prefix" json:"prefix" jsonschema:"title=Prefix,description=Namespace prepended to every column of this source (may be empty)"`
	Path        string       `yaml:"path" json:"path" jsonschema:"title=Path,description=Location of the source file,required" validate:"required"`
	Format      SourceFormat `yaml:"format,omitempty" json:"format,omitempty" jsonschema:"title=Format,description=File format; inferred from the extension when empty,enum=csv,enum=parquet" validate:"omitempty,oneof=csv parquet"`
	IndexColumn string       `yaml:"index_column,omitempty" json:"index_column,omitempty" jsonschema:"title=Index Column,description=Column holding the timestamps; defaults to the pipeline index column"`
	Columns     []string     `yaml:"columns,omitempty" json:"columns,omitempty" jsonschema:"title=Columns,description=Allow-list of value columns to keep"`
}

// LabelConfig controls the supervised label built from the target column.
type LabelConfig struct {
	Enabled bool       `yaml:"enabled" json:"enabled" jsonschema:"title=Enabled,description=Shift the target column to build the label"`
	Periods int        `yaml:"periods" json:"periods" jsonschema:"title=Periods,description=How many rows into the future the label looks,minimum=1" validate:"gte=0"`
	Order   LabelOrder `yaml:"order" json:"order" jsonschema:"title=Order,description=Whether the label is shifted before or after indicators are computed,enum=before_indicators,enum=after_indicators" validate:"omitempty,oneof=before_indicators after_indicators"`
}

// IndicatorConfig selects one indicator and its parameters.
type IndicatorConfig struct {
	Type   types.IndicatorType `yaml:"type" json:"type" jsonschema:"title=Type,description=Indicator type,enum=ma,enum=bollinger_bands,enum=rsi,required" validate:"required,oneof=ma bollinger_bands rsi"`
	Target string              `yaml:"target,omitempty" json:"target,omitempty" jsonschema:"title=Target,description=Column the indicator is computed on; defaults to the pipeline target"`
	Window int                 `yaml:"window,omitempty" json:"window,omitempty" jsonschema:"title=Window,description=Trailing window size (ma and rsi)" validate:"gte=0"`
	StdDev float64             `yaml:"std_dev,omitempty" json:"std_dev,omitempty" jsonschema:"title=Standard Deviations,description=Band width in standard deviations (bollinger_bands)" validate:"gte=0"`
}

// SplitConfig selects the train/validation/test partitioning strategy.
type SplitConfig struct {
	Strategy   SplitStrategy              `yaml:"strategy" json:"strategy" jsonschema:"title=Strategy,description=Partitioning strategy,enum=date,enum=ratio" validate:"required,oneof=date ratio"`
	ValCutoff  optional.Option[time.Time] `yaml:"val_cutoff" json:"val_cutoff" jsonschema:"title=Validation Cutoff,description=First date of the validation set (date strategy)"`
	TestCutoff optional.Option[time.Time] `yaml:"test_cutoff" json:"test_cutoff" jsonschema:"title=Test Cutoff,description=First date of the test set (date strategy)"`
	TrainSize  float64                    `yaml:"train_size" json:"train_size" jsonschema:"title=Train Size,description=Fraction of rows in the training set (ratio strategy),minimum=0,maximum=1" validate:"gte=0,lte=1"`
	ValSize    float64                    `yaml:"val_size" json:"val_size" jsonschema:"title=Validation Size,description=Fraction of rows in the validation set (ratio strategy),minimum=0,maximum=1" validate:"gte=0,lte=1"`
}

// UnmarshalYAML implements custom unmarshaling for SplitConfig so that absent
// cutoffs stay None.
func (c *SplitConfig) UnmarshalYAML(value *yaml.Node) error {
	type splitConfig struct {
		Strategy   SplitStrategy `yaml:"strategy"`
		ValCutoff  *time.Time    `yaml:"val_cutoff"`
		TestCutoff *time.Time    `yaml:"test_cutoff"`
		TrainSize  *float64      `yaml:"train_size"`
		ValSize    *float64      `yaml:"val_size"`
	}

	var raw splitConfig
	if err := value.Decode(&raw); err != nil {
		return err
	}

	if raw.Strategy != "" {
		c.Strategy = raw.Strategy
	}

	c.ValCutoff = optional.None[time.Time]()
	c.TestCutoff = optional.None[time.Time]()

	if raw.ValCutoff != nil {
		c.ValCutoff = optional.Some(types.TruncateToDate(*raw.ValCutoff))
	}

	if raw.TestCutoff != nil {
		c.TestCutoff = optional.Some(types.TruncateToDate(*raw.TestCutoff))
	}

	if raw.TrainSize != nil {
		c.TrainSize = *raw.TrainSize
	}

	if raw.ValSize != nil {
		c.ValSize = *raw.ValSize
	}

	return nil
}

// MarshalYAML writes cutoffs only when they are set.
func (c SplitConfig) MarshalYAML() (any, error) {
	type splitConfig struct {
		Strategy   SplitStrategy `yaml:"strategy"`
		ValCutoff  *time.Time    `yaml:"val_cutoff,omitempty"`
		TestCutoff *time.Time    `yaml:"test_cutoff,omitempty"`
		TrainSize  float64       `yaml:"train_size"`
		ValSize    float64       `yaml:"val_size"`
	}

	out := splitConfig{
		Strategy:  c.Strategy,
		TrainSize: c.TrainSize,
		ValSize:   c.ValSize,
	}

	if c.ValCutoff.IsSome() {
		cutoff := c.ValCutoff.Unwrap()
		out.ValCutoff = &cutoff
	}

	if c.TestCutoff.IsSome() {
		cutoff := c.TestCutoff.Unwrap()
		out.TestCutoff = &cutoff
	}

	return out, nil
}

// OutputConfig controls where the feature matrix is persisted. An empty path disables output.
type OutputConfig struct {
	Path             string       `yaml:"path" json:"path" jsonschema:"title=Path,description=Output file or directory; empty disables persistence"`
	Format           OutputFormat `yaml:"format" json:"format" jsonschema:"title=Format,description=Output file format,enum=parquet,enum=csv" validate:"omitempty,oneof=parquet csv"`
	DecimalPrecision int          `yaml:"decimal_precision" json:"decimal_precision" jsonschema:"title=Decimal Precision,description=Number of decimal places kept in the output,minimum=0" validate:"gte=0,lte=15"`
	SplitFiles       bool         `yaml:"split_files" json:"split_files" jsonschema:"title=Split Files,description=Write train/validation/test to separate files"`
}

// PipelineConfig is the full configuration of a feature build.
type PipelineConfig struct {
	Version     string            `yaml:"version" json:"version" jsonschema:"title=Version,description=Library version the config was written for,required" validate:"required"`
	IndexColumn string            `yaml:"index_column" json:"index_column" jsonschema:"title=Index Column,description=Default timestamp column of every source"`
	Target      string            `yaml:"target" json:"target" jsonschema:"title=Target,description=Column used for the label and as the default indicator target"`
	Sources     []SourceConfig    `yaml:"sources" json:"sources" jsonschema:"title=Sources,description=Input tables to align and merge,required" validate:"required,min=1,dive"`
	Label       LabelConfig       `yaml:"label" json:"label" jsonschema:"title=Label"`
	Indicators  []IndicatorConfig `yaml:"indicators" json:"indicators" jsonschema:"title=Indicators" validate:"dive"`
	Split       SplitConfig       `yaml:"split" json:"split" jsonschema:"title=Split"`
	Scale       bool              `yaml:"scale" json:"scale" jsonschema:"title=Scale,description=Standardize features using statistics of the training set"`
	Output      OutputConfig      `yaml:"output" json:"output" jsonschema:"title=Output"`
}

// DefaultConfig returns the configuration of the reference feature build:
// Close shifted one day ahead before a 20-day moving average, Bollinger bands
// and a 14-day RSI, split 80/19/1.
func DefaultConfig() PipelineConfig {
	return PipelineConfig{
		Version:     version.Version,
		IndexColumn: DefaultIndexColumn,
		Target:      "Close",
		Label: LabelConfig{
			Enabled: true,
			Periods: 1,
			Order:   LabelBeforeIndicators,
		},
		Indicators: []IndicatorConfig{
			{Type: types.IndicatorTypeMA, Window: 20},
			{Type: types.IndicatorTypeBollingerBands, StdDev: 2},
			{Type: types.IndicatorTypeRSI, Window: 14},
		},
		Split: SplitConfig{
			Strategy:   SplitStrategyRatio,
			ValCutoff:  optional.None[time.Time](),
			TestCutoff: optional.None[time.Time](),
			TrainSize:  0.8,
			ValSize:    0.19,
		},
		Output: OutputConfig{
			Format:           OutputFormatParquet,
			DecimalPrecision: 6,
		},
	}
}

// Load reads and parses a YAML pipeline configuration file.
func Load(path string) (*PipelineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config %s", path)
	}

	return Parse(data)
}

// Parse decodes YAML on top of DefaultConfig, fills defaults and validates the result.
func Parse(data []byte) (*PipelineConfig, error) {
	cfg := DefaultConfig()

	// yaml.v3 replaces sequences, so an explicit indicator list overrides the defaults.
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ApplyDefaults fills empty fields that have a natural default.
func (c *PipelineConfig) ApplyDefaults() {
	if c.IndexColumn == "" {
		c.IndexColumn = DefaultIndexColumn
	}

	if c.Target == "" {
		c.Target = "Close"
	}

	if c.Label.Enabled && c.Label.Periods == 0 {
		c.Label.Periods = 1
	}

	if c.Label.Order == "" {
		c.Label.Order = LabelBeforeIndicators
	}

	for i := range c.Sources {
		if c.Sources[i].IndexColumn == "" {
			c.Sources[i].IndexColumn = c.IndexColumn
		}
	}

	for i := range c.Indicators {
		if c.Indicators[i].Target == "" {
			c.Indicators[i].Target = c.Target
		}
	}

	if c.Output.Format == "" {
		c.Output.Format = OutputFormatParquet
	}
}

// Validate checks field constraints, then the rules that span several fields.
func (c *PipelineConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid config", err)
	}

	if err := version.CheckVersionCompatibility(version.Version, c.Version); err != nil {
		return err
	}

	seen := make(map[string]bool, len(c.Sources))
	for _, source := range c.Sources {
		if seen[source.Prefix] {
			return errors.Newf(errors.ErrCodeInvalidConfiguration, "prefix %q is used by more than one source", source.Prefix)
		}

		seen[source.Prefix] = true
	}

	return c.Split.Validate()
}

// Validate checks the strategy-specific split parameters.
func (c SplitConfig) Validate() error {
	switch c.Strategy {
	case SplitStrategyDate:
		if c.ValCutoff.IsNone() || c.TestCutoff.IsNone() {
			return errors.New(errors.ErrCodeInvalidSplitConfiguration, "date split requires val_cutoff and test_cutoff")
		}

		if !c.ValCutoff.Unwrap().Before(c.TestCutoff.Unwrap()) {
			return errors.Newf(errors.ErrCodeInvalidSplitConfiguration, "val_cutoff %s must be before test_cutoff %s",
				c.ValCutoff.Unwrap().Format(types.DateLayout), c.TestCutoff.Unwrap().Format(types.DateLayout))
		}
	case SplitStrategyRatio:
		if c.TrainSize+c.ValSize > 1+1e-9 {
			return errors.Newf(errors.ErrCodeInvalidSplitConfiguration, "train_size + val_size must not exceed 1, got %g", c.TrainSize+c.ValSize)
		}
	default:
		return errors.Newf(errors.ErrCodeInvalidSplitConfiguration, "unknown split strategy %q", c.Strategy)
	}

	return nil
}

// GenerateSchema generates a JSON schema for the PipelineConfig
func (c *PipelineConfig) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t == reflect.TypeOf(optional.Option[time.Time]{}) {
				return &jsonschema.Schema{
					Type:   "string",
					Format: "date",
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)

	schema.Title = "pipeline-config"
	schema.Description = "Configuration schema for the feature pipeline"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates a JSON schema string for the PipelineConfig
func (c *PipelineConfig) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal schema: %w", err)
	}

	return string(schemaBytes), nil
}
