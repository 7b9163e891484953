package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/rxtech-lab/argo-features/internal/config"
	"github.com/rxtech-lab/argo-features/internal/ingestion"
	"github.com/rxtech-lab/argo-features/internal/logger"
	"github.com/rxtech-lab/argo-features/internal/pipeline"
	"github.com/rxtech-lab/argo-features/internal/version"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// buildAction loads the config, applies flag overrides and runs the pipeline.
func buildAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}

	if output := cmd.String("output"); output != "" {
		cfg.Output.Path = output
	}

	if format := cmd.String("format"); format != "" {
		cfg.Output.Format = config.OutputFormat(format)
	}

	if cmd.Bool("split-files") {
		cfg.Output.SplitFiles = true
	}

	level := zapcore.InfoLevel
	if cmd.Bool("verbose") {
		level = zapcore.DebugLevel
	}

	log, err := logger.NewLoggerWithLevel(level)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	defer log.Sync()

	p, err := pipeline.NewPipeline(*cfg, pipeline.WithLogger(log))
	if err != nil {
		return err
	}

	defer p.Close()

	bar := progressbar.NewOptions(len(cfg.Sources),
		progressbar.OptionSetDescription("Loading sources"),
		progressbar.OptionShowCount(),
	)

	onSourceLoaded := pipeline.OnSourceLoadedCallback(func(index, total int, report ingestion.NormalizeReport) error {
		return bar.Set(index + 1)
	})
	onPipelineEnd := pipeline.OnPipelineEndCallback(func(err error) {
		bar.Finish()
	})

	result, err := p.Run(ctx, pipeline.LifecycleCallbacks{
		OnSourceLoaded: &onSourceLoaded,
		OnPipelineEnd:  &onPipelineEnd,
	})
	if err != nil {
		return err
	}

	log.Info("Built feature matrix",
		zap.Int("rows", result.Features.Len()),
		zap.Int("columns", len(result.Features.ColumnNames())),
		zap.Int("train", result.Split.Train.Len()),
		zap.Int("validation", result.Split.Validation.Len()),
		zap.Int("test", result.Split.Test.Len()),
	)

	partitions := make([]string, 0, len(result.Outputs))
	for partition := range result.Outputs {
		partitions = append(partitions, partition)
	}

	sort.Strings(partitions)

	for _, partition := range partitions {
		fmt.Printf("%s\t%s\n", partition, result.Outputs[partition])
	}

	return nil
}

// schemaAction prints the JSON schema of the pipeline configuration.
func schemaAction(_ context.Context, _ *cli.Command) error {
	cfg := config.DefaultConfig()

	schema, err := cfg.GenerateSchemaJSON()
	if err != nil {
		return err
	}

	fmt.Println(schema)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:    "features",
		Usage:   "Build date-aligned feature matrices from market data tables",
		Version: version.Version,
		Commands: []*cli.Command{
			{
				Name:  "build",
				Usage: "Load, merge and enrich the configured sources and export the feature matrix",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "config",
						Aliases:  []string{"c"},
						Usage:    "Path to the pipeline `YAML` config",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Override the output path from the config",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   fmt.Sprintf("Override the output format (%s or %s)", config.OutputFormatParquet, config.OutputFormatCSV),
					},
					&cli.BoolFlag{
						Name:  "split-files",
						Usage: "Write train, validation and test to separate files",
					},
					&cli.BoolFlag{
						Name:  "verbose",
						Usage: "Enable debug logging",
					},
				},
				Action: buildAction,
			},
			{
				Name:   "schema",
				Usage:  "Print the JSON schema of the pipeline config",
				Action: schemaAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
