package types

// RawTable is a source table as delivered by a loader, before any parsing.
// Values holds one string slice per column, aligned with Index.
type RawTable struct {
	Name    string
	Index   []string
	Columns []string
	Values  map[string][]string
}

// Len returns the number of rows.
func (t RawTable) Len() int {
	return len(t.Index)
}

// Source is a normalized, date-indexed table together with the prefix that
// namespaces its columns in the merged feature matrix.
type Source struct {
	Prefix string
	Frame  Frame
}

// Split holds the train, validation and test partitions of a feature matrix.
type Split struct {
	Train      Frame
	Validation Frame
	Test       Frame
}

// Len returns the total number of rows across the three partitions.
func (s Split) Len() int {
	return s.Train.Len() + s.Validation.Len() + s.Test.Len()
}
