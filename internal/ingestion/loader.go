package ingestion

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rxtech-lab/argo-features/internal/config"
	"github.com/rxtech-lab/argo-features/internal/types"
	"github.com/rxtech-lab/argo-features/pkg/errors"
)

// Loader reads a configured source into a raw, unparsed table.
type Loader interface {
	// Load returns the source with its index column split out from the value columns.
	Load(ctx context.Context, source config.SourceConfig) (types.RawTable, error)
	// Close releases any resources held by the loader.
	Close() error
}

// ResolveFormat returns the configured format, or infers it from the file extension.
func ResolveFormat(source config.SourceConfig) (config.SourceFormat, error) {
	if source.Format != "" {
		return source.Format, nil
	}

	switch strings.ToLower(filepath.Ext(source.Path)) {
	case ".csv", ".txt":
		return config.SourceFormatCSV, nil
	case ".parquet", ".pq":
		return config.SourceFormatParquet, nil
	}

	return "", errors.Newf(errors.ErrCodeUnsupportedFormat, "cannot infer format of %s", source.Path)
}

// sourceName identifies a source in logs and errors; the primary source has an empty prefix.
func sourceName(source config.SourceConfig) string {
	if source.Prefix == "" {
		return filepath.Base(source.Path)
	}

	return source.Prefix
}

func indexColumn(source config.SourceConfig) string {
	if source.IndexColumn == "" {
		return config.DefaultIndexColumn
	}

	return source.IndexColumn
}
