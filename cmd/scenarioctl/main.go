package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/rpattn/scenariogen/internal/catalog"
	"github.com/rpattn/scenariogen/internal/domain"
	"github.com/rpattn/scenariogen/internal/export"
	"github.com/rpattn/scenariogen/internal/interpret"
	"github.com/rpattn/scenariogen/internal/loader"
	"github.com/rpattn/scenariogen/internal/scenario"
)

// scenarioctl creates scenarios from a dataset archive on the command
// line: changes come from a JSON file or a natural language prompt, the
// result is a zip bundle of scenario CSVs.
func main() {
	archivePath := flag.String("archive", "", "path to a zip archive holding the table (csv) and product master (json)")
	changesPath := flag.String("changes", "", "path to a JSON file with change requests")
	prompt := flag.String("prompt", "", "natural language change description (alternative to -changes)")
	outPath := flag.String("out", "", "output bundle path (default scenarios_<date>.zip)")
	flag.Parse()

	_ = godotenv.Load()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if *archivePath == "" {
		logger.Fatal("-archive is required")
	}
	if (*changesPath == "") == (*prompt == "") {
		logger.Fatal("exactly one of -changes or -prompt is required")
	}

	payload, err := os.ReadFile(*archivePath)
	if err != nil {
		logger.Fatal("failed to read archive", zap.Error(err))
	}
	ds, err := loader.ParseArchive(payload)
	if err != nil {
		logger.Fatal("failed to load dataset", zap.Error(err))
	}
	logger.Info("dataset loaded",
		zap.Int("rows", len(ds.Rows)),
		zap.Int("products", len(ds.Products)),
	)

	specs, err := resolveSpecs(*changesPath, *prompt, ds, logger)
	if err != nil {
		logger.Fatal("failed to resolve changes", zap.Error(err))
	}

	index := catalog.BuildIndex(ds.Products)
	session := scenario.NewSession(scenario.NewTransformer(index))

	created, err := session.CreateScenarios(ds.Rows, specs)
	if err != nil {
		logger.Fatal("failed to create scenarios", zap.Error(err))
	}

	exporter := export.NewService()
	bar := progressbar.Default(int64(len(created)))
	for _, sc := range created {
		if _, err := exporter.CSV(sc); err != nil {
			logger.Fatal("failed to serialize scenario", zap.String("scenario", sc.Name), zap.Error(err))
		}
		_ = bar.Add(1)
	}

	bundle, name, err := exporter.Bundle(created)
	if err != nil {
		logger.Fatal("failed to build bundle", zap.Error(err))
	}
	target := *outPath
	if target == "" {
		target = name
	}
	if err := os.WriteFile(target, bundle, 0o644); err != nil {
		logger.Fatal("failed to write bundle", zap.Error(err))
	}

	for _, sc := range created {
		logger.Info("scenario created",
			zap.String("name", sc.Name),
			zap.Int("modifiedRows", sc.Metadata.ModifiedRows),
			zap.Int("totalRows", sc.Metadata.TotalRows),
		)
	}
	logger.Info("bundle written", zap.String("path", target), zap.Int("scenarios", len(created)))
}

func resolveSpecs(changesPath, prompt string, ds loader.Dataset, logger *zap.Logger) ([]domain.ChangeSpec, error) {
	if changesPath != "" {
		raw, err := os.ReadFile(changesPath)
		if err != nil {
			return nil, fmt.Errorf("read changes file: %w", err)
		}
		var requests []interpret.ChangeRequest
		if err := json.Unmarshal(raw, &requests); err != nil {
			return nil, fmt.Errorf("parse changes file: %w", err)
		}
		return interpret.Specs(requests), nil
	}

	interpreter := buildInterpreter(logger)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	return interpreter.Interpret(ctx, prompt, interpret.DatasetContext{
		Drivers:      catalog.ExtractValueDrivers(ds.Products),
		Columns:      ds.Columns,
		ColumnValues: loader.DistinctColumnValues(ds.Rows, ds.Columns, 50),
	})
}

func buildInterpreter(logger *zap.Logger) interpret.Interpreter {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return &interpret.Heuristic{}
	}
	gemini, err := interpret.NewGemini(apiKey, logger, interpret.WithFallback(&interpret.Heuristic{}))
	if err != nil {
		return &interpret.Heuristic{}
	}
	return gemini
}
