package ingestion

import (
	"context"
	"slices"

	"github.com/rxtech-lab/argo-features/internal/config"
	"github.com/rxtech-lab/argo-features/internal/types"
	"github.com/rxtech-lab/argo-features/pkg/errors"
)

// MemoryLoader serves tables that are already in memory, keyed by source path.
type MemoryLoader struct {
	tables map[string]types.RawTable
}

// NewMemoryLoader creates a loader over the given tables.
func NewMemoryLoader(tables map[string]types.RawTable) Loader {
	return &MemoryLoader{tables: tables}
}

// Load implements Loader.
func (m *MemoryLoader) Load(ctx context.Context, source config.SourceConfig) (types.RawTable, error) {
	if err := ctx.Err(); err != nil {
		return types.RawTable{}, err
	}

	table, ok := m.tables[source.Path]
	if !ok {
		return types.RawTable{}, errors.Newf(errors.ErrCodeSourceUnavailable, "no table registered for %s", source.Path)
	}

	if table.Name == "" {
		table.Name = sourceName(source)
	}

	if table.Index == nil {
		return splitIndexColumn(table, indexColumn(source))
	}

	return table, nil
}

// Close implements Loader.
func (m *MemoryLoader) Close() error {
	return nil
}

// splitIndexColumn moves indexColumn out of the value columns into Index.
func splitIndexColumn(table types.RawTable, indexColumn string) (types.RawTable, error) {
	if !slices.Contains(table.Columns, indexColumn) {
		return types.RawTable{}, errors.Newf(errors.ErrCodeColumnNotFound, "source %q has no index column %q", table.Name, indexColumn)
	}

	out := types.RawTable{
		Name:   table.Name,
		Index:  slices.Clone(table.Values[indexColumn]),
		Values: make(map[string][]string, len(table.Values)-1),
	}

	for _, column := range table.Columns {
		if column == indexColumn {
			continue
		}

		out.Columns = append(out.Columns, column)
		out.Values[column] = slices.Clone(table.Values[column])
	}

	return out, nil
}
