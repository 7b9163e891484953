package merge

import (
	"github.com/go-gota/gota/dataframe"
	"github.com/rxtech-lab/argo-features/internal/logger"
	"github.com/rxtech-lab/argo-features/internal/types"
	"github.com/rxtech-lab/argo-features/pkg/errors"
	"go.uber.org/zap"
)

// Prefix returns the source frame with every column renamed to "{prefix}{name}".
// The primary series conventionally carries an empty prefix.
func Prefix(source types.Source) types.Frame {
	if source.Prefix == "" {
		return source.Frame.Clone()
	}

	return source.Frame.RenameColumns(func(name string) string {
		return source.Prefix + name
	})
}

// Merger aligns several date-indexed sources into one feature matrix.
type Merger struct {
	logger *logger.Logger
}

// NewMerger creates a merger. A nil logger disables logging.
func NewMerger(log *logger.Logger) *Merger {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Merger{logger: log}
}

// Merge trims every source to their mutual range, prefixes their columns and
// outer-joins them on the union of their dates. Cells a source has no row for
// are NaN. Columns appear in source order, then in each source's column order.
func (m *Merger) Merge(sources []types.Source) (types.Frame, error) {
	mutual, err := MutualRange(sources)
	if err != nil {
		return types.Frame{}, err
	}

	m.logger.Debug("Merging sources",
		zap.Int("sources", len(sources)),
		zap.String("range", mutual.String()),
	)

	var joined dataframe.DataFrame

	owner := make(map[string]string)

	for i, source := range sources {
		if !source.Frame.IsSortedAscending() {
			return types.Frame{}, errors.Newf(errors.ErrCodeUnsortedIndex,
				"source %q index must be strictly ascending", source.Prefix)
		}

		trimmed := Prefix(types.Source{
			Prefix: source.Prefix,
			Frame:  FilterToRange(source.Frame, mutual),
		})

		m.logger.Debug("Trimmed source",
			zap.String("prefix", source.Prefix),
			zap.Int("rows", source.Frame.Len()),
			zap.Int("kept", trimmed.Len()),
		)

		// The join renames clashing columns instead of failing, so clashes are caught here.
		for _, column := range trimmed.Columns() {
			if prev, ok := owner[column]; ok {
				return types.Frame{}, errors.Newf(errors.ErrCodeDuplicateColumn,
					"column %q of source %q collides with source %q", column, source.Prefix, prev)
			}

			owner[column] = source.Prefix
		}

		if i == 0 {
			joined = trimmed.DataFrame()

			continue
		}

		joined = joined.OuterJoin(trimmed.DataFrame(), types.IndexColumn)
		if joined.Err != nil {
			return types.Frame{}, errors.Wrapf(errors.ErrCodeInvalidParameter, joined.Err,
				"failed to join source %q", source.Prefix)
		}
	}

	// DateLayout sorts lexically in date order.
	joined = joined.Arrange(dataframe.Sort(types.IndexColumn))
	if joined.Err != nil {
		return types.Frame{}, errors.Wrap(errors.ErrCodeInvalidParameter, "failed to sort merged sources", joined.Err)
	}

	merged, err := types.FrameFromDataFrame(joined)
	if err != nil {
		return types.Frame{}, err
	}

	m.logger.Info("Merged sources",
		zap.Int("rows", merged.Len()),
		zap.Int("columns", len(merged.Columns())),
	)

	return merged, nil
}
