package merge

import (
	"time"

	"github.com/rxtech-lab/argo-features/internal/types"
	"github.com/rxtech-lab/argo-features/pkg/errors"
)

// MutualRange returns the date range covered by every source: the latest first
// date and the earliest last date.
func MutualRange(sources []types.Source) (types.DateRange, error) {
	if len(sources) == 0 {
		return types.DateRange{}, errors.New(errors.ErrCodeNoSources, "no sources to intersect")
	}

	var mutual types.DateRange

	for i, source := range sources {
		r, ok := source.Frame.Range()
		if !ok {
			return types.DateRange{}, errors.Newf(errors.ErrCodeEmptySource, "source %q has no rows", source.Prefix)
		}

		if i == 0 {
			mutual = r

			continue
		}

		mutual.Start = latest(mutual.Start, r.Start)
		mutual.End = earliest(mutual.End, r.End)
	}

	if mutual.Start.After(mutual.End) {
		return types.DateRange{}, errors.Newf(errors.ErrCodeEmptyIntersection,
			"sources do not overlap: latest start %s is after earliest end %s",
			mutual.Start.Format(types.DateLayout), mutual.End.Format(types.DateLayout))
	}

	return mutual, nil
}

// FilterToRange keeps the rows of frame whose date lies inside r, bounds included.
func FilterToRange(frame types.Frame, r types.DateRange) types.Frame {
	return frame.Filter(r.Contains)
}

func latest(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}

	return a
}

func earliest(a, b time.Time) time.Time {
	if b.Before(a) {
		return b
	}

	return a
}
