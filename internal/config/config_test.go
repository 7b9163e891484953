package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-features/internal/types"
	"github.com/rxtech-lab/argo-features/pkg/errors"
	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) TestDefaultConfig() {
	config := DefaultConfig()

	suite.Equal(DefaultIndexColumn, config.IndexColumn)
	suite.Equal("Close", config.Target)
	suite.True(config.Label.Enabled)
	suite.Equal(1, config.Label.Periods)
	suite.Equal(LabelBeforeIndicators, config.Label.Order)
	suite.Equal(SplitStrategyRatio, config.Split.Strategy)
	suite.Equal(0.8, config.Split.TrainSize)
	suite.Equal(0.19, config.Split.ValSize)
	suite.True(config.Split.ValCutoff.IsNone())
	suite.Len(config.Indicators, 3)
	suite.Equal(types.IndicatorTypeMA, config.Indicators[0].Type)
	suite.Equal(20, config.Indicators[0].Window)
	suite.Equal(types.IndicatorTypeRSI, config.Indicators[2].Type)
	suite.Equal(14, config.Indicators[2].Window)
}

func (suite *ConfigTestSuite) TestParseComplete() {
	yamlData := `
version: 1.0.0
index_column: Gmt time
target: Close
sources:
  - prefix: ""
    path: data/GBPJPY.csv
  - prefix: barclays_
    path: data/barclays_stock.csv
  - prefix: sonia_tona_diff_
    path: data/tona_sonia.parquet
    format: parquet
    index_column: Date
    columns: [tona_sonia_difference]
label:
  enabled: true
  order: after_indicators
indicators:
  - type: rsi
    window: 10
split:
  strategy: date
  val_cutoff: 2023-01-01
  test_cutoff: 2024-01-01
output:
  path: out/features.parquet
  decimal_precision: 4
`

	config, err := Parse([]byte(yamlData))
	suite.Require().NoError(err)

	suite.Len(config.Sources, 3)
	suite.Equal("", config.Sources[0].Prefix)
	suite.Equal("Gmt time", config.Sources[0].IndexColumn)
	suite.Equal("Date", config.Sources[2].IndexColumn)
	suite.Equal([]string{"tona_sonia_difference"}, config.Sources[2].Columns)
	suite.Equal(SourceFormatParquet, config.Sources[2].Format)

	suite.Equal(1, config.Label.Periods)
	suite.Equal(LabelAfterIndicators, config.Label.Order)

	suite.Len(config.Indicators, 1)
	suite.Equal("Close", config.Indicators[0].Target)
	suite.Equal(10, config.Indicators[0].Window)

	suite.Equal(SplitStrategyDate, config.Split.Strategy)
	suite.Equal(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), config.Split.ValCutoff.Unwrap())
	suite.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), config.Split.TestCutoff.Unwrap())

	suite.Equal(OutputFormatParquet, config.Output.Format)
	suite.Equal(4, config.Output.DecimalPrecision)
}

func (suite *ConfigTestSuite) TestParseKeepsDefaultIndicators() {
	yamlData := `
version: 1.0.0
sources:
  - path: data/GBPJPY.csv
split:
  strategy: ratio
`

	config, err := Parse([]byte(yamlData))
	suite.Require().NoError(err)
	suite.Len(config.Indicators, 3)
	suite.Equal(0.8, config.Split.TrainSize)
	suite.Equal(0.19, config.Split.ValSize)
	suite.True(config.Split.ValCutoff.IsNone())
	suite.True(config.Split.TestCutoff.IsNone())
}

func (suite *ConfigTestSuite) TestParseInvalidYAML() {
	_, err := Parse([]byte("version: [unclosed"))
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *ConfigTestSuite) TestParseRequiresSources() {
	_, err := Parse([]byte("version: 1.0.0\n"))
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *ConfigTestSuite) TestParseRejectsUnknownIndicator() {
	yamlData := `
version: 1.0.0
sources:
  - path: a.csv
indicators:
  - type: macd
`

	_, err := Parse([]byte(yamlData))
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *ConfigTestSuite) TestParseRejectsDuplicatePrefix() {
	yamlData := `
version: 1.0.0
sources:
  - prefix: sony_
    path: a.csv
  - prefix: sony_
    path: b.csv
`

	_, err := Parse([]byte(yamlData))
	suite.Error(err)
	suite.Contains(err.Error(), "sony_")
}

func (suite *ConfigTestSuite) TestParseRejectsIncompatibleVersion() {
	yamlData := `
version: 9.0.0
sources:
  - path: a.csv
`

	_, err := Parse([]byte(yamlData))
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidVersion))
}

func (suite *ConfigTestSuite) TestSplitValidation() {
	tests := []struct {
		name  string
		yaml  string
		valid bool
	}{
		{
			name:  "cutoffs out of order",
			yaml:  "strategy: date\nval_cutoff: 2024-01-01\ntest_cutoff: 2023-01-01",
			valid: false,
		},
		{
			name:  "equal cutoffs",
			yaml:  "strategy: date\nval_cutoff: 2024-01-01\ntest_cutoff: 2024-01-01",
			valid: false,
		},
		{
			name:  "missing test cutoff",
			yaml:  "strategy: date\nval_cutoff: 2024-01-01",
			valid: false,
		},
		{
			name:  "fractions above one",
			yaml:  "strategy: ratio\ntrain_size: 0.9\nval_size: 0.2",
			valid: false,
		},
		{
			name:  "fractions summing to one",
			yaml:  "strategy: ratio\ntrain_size: 0.8\nval_size: 0.2",
			valid: true,
		},
		{
			name:  "ordered cutoffs",
			yaml:  "strategy: date\nval_cutoff: 2023-01-01\ntest_cutoff: 2024-01-01",
			valid: true,
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			yamlData := "version: 1.0.0\nsources:\n  - path: a.csv\nsplit:\n"
			for _, line := range strings.Split(tt.yaml, "\n") {
				yamlData += "  " + line + "\n"
			}

			_, err := Parse([]byte(yamlData))
			if tt.valid {
				suite.NoError(err)

				return
			}

			suite.Error(err)
			suite.True(errors.IsInvalidSplitConfiguration(err), err.Error())
		})
	}
}

func (suite *ConfigTestSuite) TestMarshalRoundTrip() {
	config := DefaultConfig()
	config.Sources = []SourceConfig{{Path: "a.csv"}, {Prefix: "b_", Path: "b.parquet"}}
	config.Split = SplitConfig{
		Strategy:   SplitStrategyDate,
		ValCutoff:  optional.Some(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)),
		TestCutoff: optional.Some(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
	}

	data, err := yaml.Marshal(config)
	suite.Require().NoError(err)

	parsed, err := Parse(data)
	suite.Require().NoError(err)
	suite.Equal(config.Sources[1].Prefix, parsed.Sources[1].Prefix)
	suite.Equal(config.Split.ValCutoff.Unwrap(), parsed.Split.ValCutoff.Unwrap())
	suite.Equal(config.Split.TestCutoff.Unwrap(), parsed.Split.TestCutoff.Unwrap())

	// Absent cutoffs are omitted rather than written as empty values
	data, err = yaml.Marshal(DefaultConfig().Split)
	suite.Require().NoError(err)
	suite.NotContains(string(data), "val_cutoff")
}

func (suite *ConfigTestSuite) TestLoad() {
	path := filepath.Join(suite.T().TempDir(), "pipeline.yaml")
	suite.Require().NoError(os.WriteFile(path, []byte("version: 1.0.0\nsources:\n  - path: a.csv\n"), 0o600))

	config, err := Load(path)
	suite.NoError(err)
	suite.Equal("a.csv", config.Sources[0].Path)

	_, err = Load(filepath.Join(suite.T().TempDir(), "missing.yaml"))
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *ConfigTestSuite) TestGenerateSchema() {
	config := &PipelineConfig{}
	schema, err := config.GenerateSchema()

	suite.NoError(err)
	suite.NotNil(schema)
	suite.Equal("pipeline-config", schema.Title)
	suite.Equal("http://json-schema.org/draft-07/schema#", schema.Version)
}

func (suite *ConfigTestSuite) TestGenerateSchemaJSON() {
	config := &PipelineConfig{}
	schemaJSON, err := config.GenerateSchemaJSON()

	suite.NoError(err)
	suite.NotEmpty(schemaJSON)

	var result map[string]interface{}
	err = json.Unmarshal([]byte(schemaJSON), &result)
	suite.NoError(err)
	suite.Equal("pipeline-config", result["title"])
	suite.Contains(result, "properties")
}
