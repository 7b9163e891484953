package ingestion

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-features/internal/config"
	"github.com/rxtech-lab/argo-features/internal/logger"
	"github.com/rxtech-lab/argo-features/internal/types"
	"github.com/rxtech-lab/argo-features/pkg/errors"
	"go.uber.org/zap"
)

// DuckDBLoader reads CSV and Parquet files through an in-memory DuckDB instance.
// CSV files are read with every column as text so that index parsing stays in
// NormalizeDateIndex rather than DuckDB's type sniffer.
type DuckDBLoader struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewDuckDBLoader opens an in-memory DuckDB database for reading source files.
func NewDuckDBLoader(log *logger.Logger) (Loader, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSourceUnavailable, "failed to open DuckDB", err)
	}

	return &DuckDBLoader{
		db:     db,
		logger: log,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

// Load implements Loader.
func (d *DuckDBLoader) Load(ctx context.Context, source config.SourceConfig) (types.RawTable, error) {
	format, err := ResolveFormat(source)
	if err != nil {
		return types.RawTable{}, err
	}

	var from string

	switch format {
	case config.SourceFormatCSV:
		from = fmt.Sprintf("read_csv(%s, header = true, all_varchar = true)", quoteLiteral(source.Path))
	case config.SourceFormatParquet:
		from = fmt.Sprintf("read_parquet(%s)", quoteLiteral(source.Path))
	default:
		return types.RawTable{}, errors.Newf(errors.ErrCodeUnsupportedFormat, "unsupported source format %q", format)
	}

	query, args, err := d.sq.Select("*").From(from).ToSql()
	if err != nil {
		return types.RawTable{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	d.logger.Debug("Loading source",
		zap.String("prefix", source.Prefix),
		zap.String("path", source.Path),
		zap.String("format", string(format)),
	)

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return types.RawTable{}, errors.Wrapf(errors.ErrCodeSourceUnavailable, err, "failed to read %s", source.Path)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return types.RawTable{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to read column names", err)
	}

	table := types.RawTable{
		Name:    sourceName(source),
		Columns: columns,
		Values:  make(map[string][]string, len(columns)),
	}

	cells := make([]any, len(columns))
	pointers := make([]any, len(columns))

	for i := range cells {
		pointers[i] = &cells[i]
	}

	count := 0

	for rows.Next() {
		count++

		if err := rows.Scan(pointers...); err != nil {
			return types.RawTable{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan row", err)
		}

		for i, column := range columns {
			table.Values[column] = append(table.Values[column], cellString(cells[i]))
		}
	}

	if err := rows.Err(); err != nil {
		return types.RawTable{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to iterate rows", err)
	}

	d.logger.Debug("Loaded source",
		zap.String("prefix", source.Prefix),
		zap.Int("columns", len(columns)),
		zap.Int("rows", count),
	)

	return splitIndexColumn(table, indexColumn(source))
}

// Close implements Loader.
func (d *DuckDBLoader) Close() error {
	return d.db.Close()
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// cellString renders a scanned DuckDB value as the text a CSV cell would hold.
func cellString(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case []byte:
		return string(value)
	case time.Time:
		return value.Format(time.RFC3339Nano)
	case float64:
		return strconv.FormatFloat(value, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(value), 'g', -1, 32)
	case interface{ Float64() float64 }:
		return strconv.FormatFloat(value.Float64(), 'g', -1, 64)
	default:
		return fmt.Sprint(value)
	}
}
