package ingestion

import (
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rxtech-lab/argo-features/internal/types"
	"github.com/rxtech-lab/argo-features/pkg/errors"
)

// DefaultLayouts are tried in order when parsing index values.
var DefaultLayouts = []string{
	types.DateLayout,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.000",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05 -0700",
	"02.01.2006 15:04:05.000",
	"02.01.2006 15:04:05.000 GMT-0700",
	"02.01.2006 15:04:05",
	"02.01.2006",
	"2006/01/02",
	"01/02/2006",
	"20060102",
}

// NormalizeOptions controls how a raw table is turned into a date-indexed frame.
type NormalizeOptions struct {
	// Layouts overrides DefaultLayouts when non-empty.
	Layouts []string
	// Columns is an optional allow-list of value columns, kept in the given order.
	Columns []string
}

// NormalizeReport summarizes what happened to the rows of one source.
type NormalizeReport struct {
	Source string
	// Rows is the number of rows in the raw table.
	Rows int
	// Dropped counts rows whose index could not be parsed.
	Dropped int
	// Duplicates counts rows replaced by a later row with the same date.
	Duplicates int
	// InvalidCells counts value cells that were not numeric and became missing.
	InvalidCells int
	// DroppedValues holds up to a handful of unparsable index values for diagnostics.
	DroppedValues []string
}

const maxReportedValues = 5

// NormalizeDateIndex parses the index of raw, truncates it to dates and returns an
// ascending frame with unique dates. Rows with unparsable dates are dropped; when
// every row is dropped the source is rejected with ErrCodeParseFailed.
func NormalizeDateIndex(raw types.RawTable, opts NormalizeOptions) (types.Frame, NormalizeReport, error) {
	report := NormalizeReport{Source: raw.Name, Rows: raw.Len()}

	columns, err := selectColumns(raw, opts.Columns)
	if err != nil {
		return types.Frame{}, report, err
	}

	layouts := opts.Layouts
	if len(layouts) == 0 {
		layouts = DefaultLayouts
	}

	// date -> last row index carrying it
	latest := make(map[time.Time]int, raw.Len())
	dates := make([]time.Time, 0, raw.Len())

	for row, value := range raw.Index {
		parsed, ok := ParseDate(value, layouts)
		if !ok {
			report.Dropped++
			if len(report.DroppedValues) < maxReportedValues {
				report.DroppedValues = append(report.DroppedValues, value)
			}

			continue
		}

		if _, seen := latest[parsed]; seen {
			report.Duplicates++
		} else {
			dates = append(dates, parsed)
		}

		latest[parsed] = row
	}

	if len(dates) == 0 {
		return types.Frame{}, report, errors.Newf(errors.ErrCodeParseFailed,
			"source %q: none of %d index values could be parsed as dates", raw.Name, raw.Len())
	}

	slices.SortFunc(dates, func(a, b time.Time) int { return a.Compare(b) })

	frame := types.NewFrame(dates)

	for _, column := range columns {
		cells := raw.Values[column]
		values := make([]float64, len(dates))

		for i, date := range dates {
			row := latest[date]
			if row >= len(cells) {
				values[i] = math.NaN()

				continue
			}

			value, ok := parseNumber(cells[row])
			if !ok {
				report.InvalidCells++
			}

			values[i] = value
		}

		if err := frame.AddColumn(column, values); err != nil {
			return types.Frame{}, report, err
		}
	}

	return frame, report, nil
}

// ParseDate parses value with the first matching layout and truncates it to a date.
func ParseDate(value string, layouts []string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	for _, layout := range layouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return types.TruncateToDate(t), true
		}
	}

	return time.Time{}, false
}

func selectColumns(raw types.RawTable, allow []string) ([]string, error) {
	if len(allow) == 0 {
		return slices.Clone(raw.Columns), nil
	}

	for _, column := range allow {
		if !slices.Contains(raw.Columns, column) {
			return nil, errors.Newf(errors.ErrCodeColumnNotFound, "source %q has no column %q", raw.Name, column)
		}
	}

	return slices.Clone(allow), nil
}

// parseNumber returns NaN for empty or missing markers; ok is false only for
// cells that were present but not numeric.
func parseNumber(cell string) (float64, bool) {
	cell = strings.TrimSpace(cell)

	switch strings.ToLower(cell) {
	case "", "nan", "null", "na", "n/a", "-":
		return math.NaN(), true
	}

	value, err := strconv.ParseFloat(strings.ReplaceAll(cell, ",", ""), 64)
	if err != nil {
		return math.NaN(), false
	}

	return value, true
}
