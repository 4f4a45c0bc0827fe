package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/avdeenko/cryptoflow/backend/internal/config"
	"github.com/avdeenko/cryptoflow/backend/internal/domain"
	"github.com/avdeenko/cryptoflow/backend/internal/logging"
	"github.com/avdeenko/cryptoflow/backend/internal/service"
)

type workbookInput struct {
	Sheets []service.Sheet `json:"sheets"`
}

func main() {
	var (
		inputPath  = flag.String("input", "", "Path to a workbook JSON file ({\"sheets\": [...]})")
		caseName   = flag.String("case", "", "Sheet name to analyze (default: first sheet)")
		exchange   = flag.String("exchange", "", "Exchange section to graph (default: first in sheet)")
		stagesCSV  = flag.String("stages", "", "Comma-separated stage filter (default: all stages)")
		currency   = flag.String("currency", "", "Exact currency filter (default: all currencies)")
		outputPath = flag.String("output", "", "Write the graph JSON here instead of stdout")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging).With("component", "analyze")

	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "usage: analyze -input workbook.json [-case NAME] [-exchange NAME] [-stages CSV] [-currency CODE] [-output FILE]")
		os.Exit(2)
	}

	stages, err := domain.ParseStages(*stagesCSV)
	if err != nil {
		logger.Error("invalid stage filter", "error", err)
		os.Exit(2)
	}

	input, err := loadWorkbook(*inputPath)
	if err != nil {
		logger.Error("failed to load workbook", "error", err, "path", *inputPath)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	analyzer := service.NewAnalyzer(logger, cfg.Analyzer.BridgeWindow(), cfg.Analyzer.ParseWorkers)

	workbook, err := analyzer.Parse(ctx, input.Sheets)
	if err != nil {
		logger.Error("failed to parse workbook", "error", err)
		os.Exit(1)
	}

	result, err := analyzer.BuildGraph(workbook, service.BuildParams{
		Case:           *caseName,
		Exchange:       *exchange,
		Stages:         stages,
		CurrencyFilter: *currency,
	})
	if err != nil {
		logger.Error("failed to build graph", "error", err)
		os.Exit(1)
	}

	if result.NoData {
		logger.Info("no transactions match the requested filters",
			"availableCurrencies", result.AvailableCurrencies)
	}

	if err := writeResult(result, *outputPath); err != nil {
		logger.Error("failed to write result", "error", err)
		os.Exit(1)
	}
}

func loadWorkbook(path string) (*workbookInput, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	var input workbookInput
	if err := json.NewDecoder(file).Decode(&input); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &input, nil
}

func writeResult(result *service.GraphResult, path string) error {
	out := os.Stdout
	if path != "" {
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		defer file.Close()
		out = file
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}
