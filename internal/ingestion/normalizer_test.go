package ingestion

import (
	"math"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-features/internal/types"
	"github.com/rxtech-lab/argo-features/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type NormalizerTestSuite struct {
	suite.Suite
}

func TestNormalizerSuite(t *testing.T) {
	suite.Run(t, new(NormalizerTestSuite))
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func (suite *NormalizerTestSuite) TestParseDateLayouts() {
	tests := []struct {
		value    string
		expected time.Time
	}{
		{"2024-07-01", date(2024, 7, 1)},
		{"2024-07-01 13:45:00", date(2024, 7, 1)},
		{"2024-07-01T23:59:59Z", date(2024, 7, 1)},
		{"2024-07-01 00:00:00+09:00", date(2024, 7, 1)},
		{"01.07.2024 00:00:00.000", date(2024, 7, 1)},
		{"01.07.2024 00:00:00.000 GMT+0100", date(2024, 7, 1)},
		{"2024/07/01", date(2024, 7, 1)},
		{"07/01/2024", date(2024, 7, 1)},
		{"  2024-07-01  ", date(2024, 7, 1)},
	}

	for _, tt := range tests {
		parsed, ok := ParseDate(tt.value, DefaultLayouts)
		suite.True(ok, tt.value)
		suite.Equal(tt.expected, parsed, tt.value)
	}

	for _, value := range []string{"", "not a date", "2024-13-45"} {
		_, ok := ParseDate(value, DefaultLayouts)
		suite.False(ok, value)
	}
}

func (suite *NormalizerTestSuite) TestNormalizeSortsAndTruncates() {
	raw := types.RawTable{
		Name:    "sony_",
		Index:   []string{"2024-01-03 10:00:00", "2024-01-01 09:30:00", "2024-01-02 16:00:00"},
		Columns: []string{"Close"},
		Values:  map[string][]string{"Close": {"3", "1", "2"}},
	}

	frame, report, err := NormalizeDateIndex(raw, NormalizeOptions{})
	suite.Require().NoError(err)

	suite.Equal([]time.Time{date(2024, 1, 1), date(2024, 1, 2), date(2024, 1, 3)}, frame.Dates())
	suite.True(frame.IsSortedAscending())

	values, _ := frame.Column("Close")
	suite.Equal([]float64{1, 2, 3}, values)
	suite.Equal(3, report.Rows)
	suite.Zero(report.Dropped)
}

func (suite *NormalizerTestSuite) TestNormalizeDropsUnparsableRows() {
	raw := types.RawTable{
		Name:    "barclays_",
		Index:   []string{"2024-01-01", "garbage", "", "2024-01-02"},
		Columns: []string{"Close"},
		Values:  map[string][]string{"Close": {"1", "99", "98", "2"}},
	}

	frame, report, err := NormalizeDateIndex(raw, NormalizeOptions{})
	suite.Require().NoError(err)

	suite.Equal(2, frame.Len())
	suite.Equal(2, report.Dropped)
	suite.Equal([]string{"garbage", ""}, report.DroppedValues)

	values, _ := frame.Column("Close")
	suite.Equal([]float64{1, 2}, values)
}

func (suite *NormalizerTestSuite) TestNormalizeFailsWhenEveryRowIsDropped() {
	raw := types.RawTable{
		Name:    "honda_",
		Index:   []string{"x", "y"},
		Columns: []string{"Close"},
		Values:  map[string][]string{"Close": {"1", "2"}},
	}

	_, report, err := NormalizeDateIndex(raw, NormalizeOptions{})
	suite.Error(err)
	suite.True(errors.IsParseError(err))
	suite.Equal(2, report.Dropped)
}

func (suite *NormalizerTestSuite) TestNormalizeEmptyTableFails() {
	_, _, err := NormalizeDateIndex(types.RawTable{Name: "empty"}, NormalizeOptions{})
	suite.True(errors.IsParseError(err))
}

func (suite *NormalizerTestSuite) TestNormalizeKeepsLastDuplicate() {
	raw := types.RawTable{
		Index:   []string{"2024-01-01 00:00:00", "2024-01-01 12:00:00", "2024-01-02"},
		Columns: []string{"Close"},
		Values:  map[string][]string{"Close": {"1", "1.5", "2"}},
	}

	frame, report, err := NormalizeDateIndex(raw, NormalizeOptions{})
	suite.Require().NoError(err)

	suite.Equal(2, frame.Len())
	suite.Equal(1, report.Duplicates)

	values, _ := frame.Column("Close")
	suite.Equal([]float64{1.5, 2}, values)
}

func (suite *NormalizerTestSuite) TestNormalizeColumnAllowList() {
	raw := types.RawTable{
		Name:    "sonia_tona_diff_",
		Index:   []string{"2024-01-01"},
		Columns: []string{"tona", "sonia", "tona_sonia_difference"},
		Values: map[string][]string{
			"tona":                  {"0.1"},
			"sonia":                 {"5.2"},
			"tona_sonia_difference": {"-5.1"},
		},
	}

	frame, _, err := NormalizeDateIndex(raw, NormalizeOptions{Columns: []string{"tona_sonia_difference"}})
	suite.Require().NoError(err)
	suite.Equal([]string{"tona_sonia_difference"}, frame.Columns())

	_, _, err = NormalizeDateIndex(raw, NormalizeOptions{Columns: []string{"missing"}})
	suite.True(errors.HasCode(err, errors.ErrCodeColumnNotFound))
}

func (suite *NormalizerTestSuite) TestNormalizeMissingAndInvalidCells() {
	raw := types.RawTable{
		Index:   []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04"},
		Columns: []string{"Volume"},
		Values:  map[string][]string{"Volume": {"", "NaN", "abc", "1,234.5"}},
	}

	frame, report, err := NormalizeDateIndex(raw, NormalizeOptions{})
	suite.Require().NoError(err)

	values, _ := frame.Column("Volume")
	suite.True(math.IsNaN(values[0]))
	suite.True(math.IsNaN(values[1]))
	suite.True(math.IsNaN(values[2]))
	suite.Equal(1234.5, values[3])
	suite.Equal(1, report.InvalidCells)
}

func (suite *NormalizerTestSuite) TestNormalizeCustomLayouts() {
	raw := types.RawTable{
		Index:   []string{"01-07-2024"},
		Columns: []string{"Close"},
		Values:  map[string][]string{"Close": {"1"}},
	}

	_, _, err := NormalizeDateIndex(raw, NormalizeOptions{})
	suite.True(errors.IsParseError(err))

	frame, _, err := NormalizeDateIndex(raw, NormalizeOptions{Layouts: []string{"02-01-2006"}})
	suite.Require().NoError(err)
	suite.Equal(date(2024, 7, 1), frame.Date(0))
}
