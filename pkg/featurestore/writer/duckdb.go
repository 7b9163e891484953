package writer

import (
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-features/internal/config"
	"github.com/rxtech-lab/argo-features/internal/logger"
	"github.com/rxtech-lab/argo-features/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const tableName = "features"

// Options configures a DuckDBWriter.
type Options struct {
	Format config.OutputFormat
	// DecimalPrecision is the number of decimal places kept; negative disables rounding.
	DecimalPrecision int
	Logger           *logger.Logger
}

// DuckDBWriter implements the FeatureWriter interface for DuckDB.
// Rows are staged in an in-memory table and exported with COPY on Finalize.
type DuckDBWriter struct {
	db         *sql.DB
	tx         *sql.Tx
	stmt       *sql.Stmt
	columns    int
	rows       int
	outputPath string
	options    Options
}

// NewDuckDBWriter creates a new DuckDBWriter.
// outputPath specifies where the final Parquet or CSV file will be saved.
func NewDuckDBWriter(outputPath string, options Options) FeatureWriter {
	if options.Format == "" {
		options.Format = config.OutputFormatParquet
	}

	if options.Logger == nil {
		options.Logger = logger.NewNopLogger()
	}

	return &DuckDBWriter{
		outputPath: outputPath,
		options:    options,
	}
}

// NewDuckDBWriterFactory returns a Factory producing writers with the given options.
func NewDuckDBWriterFactory(options Options) Factory {
	return func(outputPath string) FeatureWriter {
		return NewDuckDBWriter(outputPath, options)
	}
}

// Initialize opens an in-memory database, creates the staging table, begins a
// transaction, and prepares the insert statement.
func (w *DuckDBWriter) Initialize(columns []string) (err error) {
	w.db, err = sql.Open("duckdb", "")
	if err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to open DuckDB connection", err)
	}

	definitions := make([]string, 0, len(columns)+1)
	definitions = append(definitions, quoteIdentifier("date")+" DATE")

	quoted := make([]string, 0, len(columns)+1)
	quoted = append(quoted, quoteIdentifier("date"))

	for _, column := range columns {
		definitions = append(definitions, quoteIdentifier(column)+" DOUBLE")
		quoted = append(quoted, quoteIdentifier(column))
	}

	_, err = w.db.Exec(fmt.Sprintf("CREATE TABLE %s (%s)", tableName, strings.Join(definitions, ", ")))
	if err != nil {
		w.db.Close()

		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to create table", err)
	}

	insert, _, err := squirrel.Insert(tableName).
		Columns(quoted...).
		Values(make([]any, len(quoted))...).
		ToSql()
	if err != nil {
		w.db.Close()

		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to build insert statement", err)
	}

	w.tx, err = w.db.Begin()
	if err != nil {
		w.db.Close()

		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to begin transaction", err)
	}

	w.stmt, err = w.tx.Prepare(insert)
	if err != nil {
		w.tx.Rollback()
		w.db.Close()

		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to prepare statement", err)
	}

	w.columns = len(columns)
	w.rows = 0

	return nil
}

// Write persists a single row using the prepared statement within the transaction.
// Missing values are stored as NULL.
func (w *DuckDBWriter) Write(date time.Time, values []float64) error {
	if w.stmt == nil {
		return errors.New(errors.ErrCodeWriteFailed, "writer not initialized or statement is nil")
	}

	if len(values) != w.columns {
		return errors.Newf(errors.ErrCodeLengthMismatch, "row has %d values, writer expects %d", len(values), w.columns)
	}

	args := make([]any, 0, len(values)+1)
	args = append(args, date)

	for _, v := range values {
		args = append(args, w.cell(v))
	}

	if _, err := w.stmt.Exec(args...); err != nil {
		return errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to insert row for %s", date.Format("2006-01-02"))
	}

	w.rows++

	return nil
}

// Finalize commits the transaction and exports the data to the output file.
func (w *DuckDBWriter) Finalize() (outputPath string, err error) {
	if w.tx == nil {
		return "", errors.New(errors.ErrCodeWriteFailed, "writer not initialized or transaction is nil")
	}

	if err = w.tx.Commit(); err != nil {
		w.tx.Rollback()

		return "", errors.Wrap(errors.ErrCodeWriteFailed, "failed to commit transaction", err)
	}

	w.tx = nil

	if err := os.MkdirAll(filepath.Dir(w.outputPath), 0o755); err != nil {
		return "", errors.Wrap(errors.ErrCodeWriteFailed, "failed to create output directory", err)
	}

	var format string

	switch w.options.Format {
	case config.OutputFormatCSV:
		format = "FORMAT CSV, HEADER"
	case config.OutputFormatParquet:
		format = "FORMAT PARQUET"
	default:
		return "", errors.Newf(errors.ErrCodeUnsupportedFormat, "unsupported output format %q", w.options.Format)
	}

	_, err = w.db.Exec(fmt.Sprintf("COPY (SELECT * FROM %s ORDER BY %s) TO %s (%s)",
		tableName, quoteIdentifier("date"), quoteLiteral(w.outputPath), format))
	if err != nil {
		return "", errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to export %s", w.outputPath)
	}

	w.options.Logger.Info("Exported features",
		zap.String("path", w.outputPath),
		zap.String("format", string(w.options.Format)),
		zap.Int("rows", w.rows),
		zap.Int("columns", w.columns),
	)

	return w.outputPath, nil
}

// Close cleans up resources used by the writer.
func (w *DuckDBWriter) Close() error {
	var closeErrors []string

	if w.stmt != nil {
		if err := w.stmt.Close(); err != nil {
			closeErrors = append(closeErrors, fmt.Sprintf("failed to close statement: %v", err))
		}

		w.stmt = nil
	}

	// Finalize was not called or failed
	if w.tx != nil {
		if err := w.tx.Rollback(); err != nil {
			w.options.Logger.Warn("Failed to rollback transaction during close", zap.Error(err))
		}

		w.tx = nil
	}

	if w.db != nil {
		if err := w.db.Close(); err != nil {
			closeErrors = append(closeErrors, fmt.Sprintf("failed to close db connection: %v", err))
		}

		w.db = nil
	}

	if len(closeErrors) > 0 {
		return errors.New(errors.ErrCodeWriteFailed, "errors occurred during close: "+strings.Join(closeErrors, "; "))
	}

	return nil
}

// GetOutputPath returns the configured output file path.
func (w *DuckDBWriter) GetOutputPath() string {
	return w.outputPath
}

func (w *DuckDBWriter) cell(v float64) any {
	switch {
	case math.IsNaN(v):
		return nil
	case math.IsInf(v, 0), w.options.DecimalPrecision < 0:
		return v
	}

	rounded, _ := decimal.NewFromFloat(v).Round(int32(w.options.DecimalPrecision)).Float64()

	return rounded
}

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
