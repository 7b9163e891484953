package types

import (
	"math"
	"slices"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/rxtech-lab/argo-features/pkg/errors"
)

// IndexColumn names the date column of the backing dataframe and of exported files.
// It cannot be used as a value column.
const IndexColumn = "date"

// Frame is a date-indexed table of float64 columns. Missing values are NaN.
//
// Raw columns live in a gota dataframe next to the date index column. Derived
// indicator columns are gota series addressed by IndicatorKey, and only turned
// into "{target}_{metric}" names by ColumnNames and Render.
type Frame struct {
	dates      []time.Time
	data       dataframe.DataFrame
	derived    []IndicatorKey
	indicators map[IndicatorKey]series.Series
}

// RenderedFrame is the output-boundary view of a Frame: dates formatted with
// DateLayout and every column, raw or derived, under its rendered name.
type RenderedFrame struct {
	Dates   []string
	Columns []string
	// Values is column-major and aligned with Columns.
	Values [][]float64
}

// NewFrame creates an empty frame over the given dates.
func NewFrame(dates []time.Time) Frame {
	return Frame{
		dates:      slices.Clone(dates),
		data:       dataframe.New(indexSeries(dates)),
		indicators: make(map[IndicatorKey]series.Series),
	}
}

// FrameFromDataFrame builds a frame from a dataframe holding an IndexColumn of
// DateLayout strings followed by numeric columns.
func FrameFromDataFrame(df dataframe.DataFrame) (Frame, error) {
	if df.Err != nil {
		return Frame{}, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid dataframe", df.Err)
	}

	names := df.Names()
	if !slices.Contains(names, IndexColumn) {
		return Frame{}, errors.Newf(errors.ErrCodeColumnNotFound, "dataframe has no %s column", IndexColumn)
	}

	rendered := df.Col(IndexColumn).Records()
	dates := make([]time.Time, len(rendered))

	for i, value := range rendered {
		date, err := time.Parse(DateLayout, value)
		if err != nil {
			return Frame{}, errors.Wrapf(errors.ErrCodeParseFailed, err, "invalid %s value %q", IndexColumn, value)
		}

		dates[i] = date
	}

	frame := NewFrame(dates)

	for _, name := range names {
		if name == IndexColumn {
			continue
		}

		if err := frame.AddColumn(name, df.Col(name).Float()); err != nil {
			return Frame{}, err
		}
	}

	return frame, nil
}

// DataFrame returns a copy of the index column and the raw columns.
func (f Frame) DataFrame() dataframe.DataFrame {
	f.ensureInit()

	return f.data.Copy()
}

// Len returns the number of rows.
func (f Frame) Len() int {
	return len(f.dates)
}

// Dates returns a copy of the index.
func (f Frame) Dates() []time.Time {
	return slices.Clone(f.dates)
}

// Date returns the index value at row i.
func (f Frame) Date(i int) time.Time {
	return f.dates[i]
}

// Range returns the first and last date of the index. ok is false for an empty frame.
func (f Frame) Range() (r DateRange, ok bool) {
	if len(f.dates) == 0 {
		return DateRange{}, false
	}

	r = DateRange{Start: f.dates[0], End: f.dates[0]}
	for _, d := range f.dates[1:] {
		if d.Before(r.Start) {
			r.Start = d
		}

		if d.After(r.End) {
			r.End = d
		}
	}

	return r, true
}

// IsSortedAscending reports whether the index is strictly increasing.
func (f Frame) IsSortedAscending() bool {
	for i := 1; i < len(f.dates); i++ {
		if !f.dates[i].After(f.dates[i-1]) {
			return false
		}
	}

	return true
}

// Columns returns the raw column names in insertion order.
func (f Frame) Columns() []string {
	var columns []string

	for _, name := range f.data.Names() {
		if name != IndexColumn {
			columns = append(columns, name)
		}
	}

	return columns
}

// HasColumn reports whether a raw column exists.
func (f Frame) HasColumn(name string) bool {
	return name != IndexColumn && slices.Contains(f.data.Names(), name)
}

// Column returns a copy of the values of a raw column.
func (f Frame) Column(name string) ([]float64, bool) {
	if !f.HasColumn(name) {
		return nil, false
	}

	return f.data.Col(name).Float(), true
}

// AddColumn appends a raw column.
func (f *Frame) AddColumn(name string, values []float64) error {
	if len(values) != len(f.dates) {
		return errors.Newf(errors.ErrCodeLengthMismatch, "column %s has %d values, frame has %d rows", name, len(values), len(f.dates))
	}

	if name == IndexColumn {
		return errors.Newf(errors.ErrCodeDuplicateColumn, "column name %s is reserved for the date index", name)
	}

	if f.hasName(name) {
		return errors.Newf(errors.ErrCodeDuplicateColumn, "column %s already exists", name)
	}

	f.ensureInit()

	return f.mutate(name, values)
}

// SetColumn replaces the values of an existing column, raw or derived, by its rendered name.
func (f *Frame) SetColumn(name string, values []float64) error {
	if len(values) != len(f.dates) {
		return errors.Newf(errors.ErrCodeLengthMismatch, "column %s has %d values, frame has %d rows", name, len(values), len(f.dates))
	}

	if f.HasColumn(name) {
		return f.mutate(name, values)
	}

	for _, key := range f.derived {
		if key.ColumnName() == name {
			f.indicators[key] = series.New(values, series.Float, name)

			return nil
		}
	}

	return errors.Newf(errors.ErrCodeColumnNotFound, "column %s not found", name)
}

// Indicators returns the derived keys in the order they were attached.
func (f Frame) Indicators() []IndicatorKey {
	return slices.Clone(f.derived)
}

// Indicator returns a copy of the values of a derived column.
func (f Frame) Indicator(key IndicatorKey) ([]float64, bool) {
	s, ok := f.indicators[key]
	if !ok {
		return nil, false
	}

	return s.Float(), true
}

// AddIndicator attaches a derived column. Each key can be attached once.
func (f *Frame) AddIndicator(key IndicatorKey, values []float64) error {
	if len(values) != len(f.dates) {
		return errors.Newf(errors.ErrCodeLengthMismatch, "indicator %s has %d values, frame has %d rows", key, len(values), len(f.dates))
	}

	if _, ok := f.indicators[key]; ok {
		return errors.Newf(errors.ErrCodeIndicatorAlreadyExists, "indicator %s already computed", key)
	}

	if f.hasName(key.ColumnName()) {
		return errors.Newf(errors.ErrCodeDuplicateColumn, "indicator %s collides with an existing column", key)
	}

	f.ensureInit()
	f.derived = append(f.derived, key)
	f.indicators[key] = series.New(values, series.Float, key.ColumnName())

	return nil
}

// ColumnNames returns raw column names followed by rendered indicator names.
func (f Frame) ColumnNames() []string {
	names := f.Columns()

	for _, key := range f.derived {
		names = append(names, key.ColumnName())
	}

	return names
}

// Lookup returns a copy of a column, raw or derived, found by its rendered name.
func (f Frame) Lookup(name string) ([]float64, bool) {
	if values, ok := f.Column(name); ok {
		return values, true
	}

	for _, key := range f.derived {
		if key.ColumnName() == name {
			return f.indicators[key].Float(), true
		}
	}

	return nil, false
}

// Render produces the output-boundary view of the frame.
func (f Frame) Render() RenderedFrame {
	out := RenderedFrame{
		Dates:   make([]string, len(f.dates)),
		Columns: f.ColumnNames(),
	}

	for i, d := range f.dates {
		out.Dates[i] = d.Format(DateLayout)
	}

	out.Values = make([][]float64, 0, len(out.Columns))
	for _, name := range f.Columns() {
		out.Values = append(out.Values, f.data.Col(name).Float())
	}

	for _, key := range f.derived {
		out.Values = append(out.Values, f.indicators[key].Float())
	}

	return out
}

// Clone returns a deep copy of the frame.
func (f Frame) Clone() Frame {
	return f.selectRows(func(int) bool { return true })
}

// Slice returns rows [start, end) as a new frame.
func (f Frame) Slice(start, end int) Frame {
	return f.selectRows(func(i int) bool { return i >= start && i < end })
}

// Filter returns the rows whose date satisfies keep, in their original order.
func (f Frame) Filter(keep func(time.Time) bool) Frame {
	return f.selectRows(func(i int) bool { return keep(f.dates[i]) })
}

// RenameColumns returns a copy with every raw column renamed by fn.
func (f Frame) RenameColumns(fn func(string) string) Frame {
	out := f.Clone()

	for _, name := range f.Columns() {
		out.data = out.data.Rename(fn(name), name)
	}

	return out
}

func (f Frame) selectRows(keep func(i int) bool) Frame {
	f.ensureInit()

	rows := make([]int, 0, len(f.dates))
	for i := range f.dates {
		if keep(i) {
			rows = append(rows, i)
		}
	}

	out := Frame{
		dates:      make([]time.Time, len(rows)),
		data:       f.data.Subset(rows),
		derived:    slices.Clone(f.derived),
		indicators: make(map[IndicatorKey]series.Series, len(f.derived)),
	}

	for j, i := range rows {
		out.dates[j] = f.dates[i]
	}

	for _, key := range f.derived {
		out.indicators[key] = f.indicators[key].Subset(rows)
	}

	return out
}

func (f Frame) hasName(name string) bool {
	if f.HasColumn(name) {
		return true
	}

	return slices.ContainsFunc(f.derived, func(key IndicatorKey) bool { return key.ColumnName() == name })
}

func (f *Frame) mutate(name string, values []float64) error {
	data := f.data.Mutate(series.New(values, series.Float, name))
	if data.Err != nil {
		return errors.Wrapf(errors.ErrCodeLengthMismatch, data.Err, "failed to store column %s", name)
	}

	f.data = data

	return nil
}

func (f *Frame) ensureInit() {
	if f.data.Ncol() == 0 {
		f.data = dataframe.New(indexSeries(f.dates))
	}

	if f.indicators == nil {
		f.indicators = make(map[IndicatorKey]series.Series)
	}
}

func indexSeries(dates []time.Time) series.Series {
	rendered := make([]string, len(dates))
	for i, d := range dates {
		rendered[i] = d.Format(DateLayout)
	}

	return series.New(rendered, series.String, IndexColumn)
}

// NaNs returns a slice of n missing values.
func NaNs(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}

	return out
}
