package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/rxtech-lab/argo-features/internal/config"
	"gopkg.in/yaml.v3"
)

const (
	schemaName       = "pipeline-config.json"
	sampleConfigName = "pipeline-config.yaml"
)

// sampleConfig is the default pipeline over a primary FX series and one prefixed stock.
func sampleConfig() config.PipelineConfig {
	cfg := config.DefaultConfig()
	cfg.Sources = []config.SourceConfig{
		{Path: "data/GBPJPY.csv"},
		{Prefix: "barclays_", Path: "data/barclays_stock.csv"},
	}
	cfg.Output.Path = "out/features.parquet"

	return cfg
}

// generate writes the config schema into dir, and a sample config unless one already exists.
func generate(dir string) error {
	cfg := sampleConfig()

	schemaJSON, err := cfg.GenerateSchemaJSON()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	schemaPath := filepath.Join(dir, schemaName)
	if err := os.WriteFile(schemaPath, []byte(schemaJSON), 0o644); err != nil {
		return err
	}

	log.Printf("Schema successfully generated at %s", schemaPath)

	sampleConfigPath := filepath.Join(dir, sampleConfigName)
	if _, err := os.Stat(sampleConfigPath); !os.IsNotExist(err) {
		return nil
	}

	yamlBytes, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	yamlBytes = append([]byte("# yaml-language-server: $schema="+schemaName+"\n"), yamlBytes...)

	if err := os.WriteFile(sampleConfigPath, yamlBytes, 0o644); err != nil {
		return err
	}

	log.Printf("Sample config successfully generated at %s", sampleConfigPath)

	return nil
}

func main() {
	if err := generate("./config"); err != nil {
		log.Fatalf("Failed to generate config files: %v", err)
	}
}
