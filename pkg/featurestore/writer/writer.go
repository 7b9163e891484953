package writer

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/rxtech-lab/argo-features/internal/config"
	"github.com/rxtech-lab/argo-features/internal/types"
)

// FeatureWriter defines the interface for persisting a feature matrix.
type FeatureWriter interface {
	// Initialize sets up the writer for the given value columns; the date column is implicit.
	Initialize(columns []string) error
	// Write persists a single row. values are aligned with the initialized columns.
	Write(date time.Time, values []float64) error
	// Finalize completes the writing process and exports the output file.
	Finalize() (outputPath string, err error)
	// Close releases any resources held by the writer.
	Close() error
	// GetOutputPath returns the configured output file path.
	GetOutputPath() string
}

// Factory creates a writer for one output file.
type Factory func(outputPath string) FeatureWriter

// WriteFrame streams every row of frame through w and finalizes it.
// Columns are written under their rendered names.
func WriteFrame(w FeatureWriter, frame types.Frame) (string, error) {
	rendered := frame.Render()

	if err := w.Initialize(rendered.Columns); err != nil {
		return "", err
	}

	row := make([]float64, len(rendered.Columns))

	for i := 0; i < frame.Len(); i++ {
		for j := range rendered.Columns {
			row[j] = rendered.Values[j][i]
		}

		if err := w.Write(frame.Date(i), row); err != nil {
			return "", err
		}
	}

	return w.Finalize()
}

// SplitPath derives the file of one partition from the configured output path:
// "out/features.parquet" becomes "out/features_train.parquet". A path without an
// extension is treated as a directory.
func SplitPath(path, partition string, format config.OutputFormat) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return filepath.Join(path, partition+"."+string(format))
	}

	return strings.TrimSuffix(path, ext) + "_" + partition + ext
}
