package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/avdeenko/cryptoflow/backend/internal/generator"
)

func main() {
	cfg := generator.DefaultConfig()
	var (
		cases       = flag.Int("cases", cfg.NumCases, "number of case sheets to generate")
		transfers   = flag.Int("transfers-per-stage", cfg.TransfersPerStage, "baseline transfers per laundering stage")
		seed        = flag.Int64("seed", cfg.Seed, "random seed for deterministic generation")
		outputDir   = flag.String("output-dir", "data", "directory to write workbook.json")
		writeStdout = flag.Bool("stdout", false, "write the workbook to stdout instead of a file")
	)
	flag.Parse()

	genCfg := generator.Config{
		NumCases:          *cases,
		TransfersPerStage: *transfers,
		Seed:              *seed,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	gen := generator.New(genCfg)
	workbook, err := gen.Generate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generation failed: %v\n", err)
		os.Exit(1)
	}

	if *writeStdout {
		if err := json.NewEncoder(os.Stdout).Encode(workbook); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write workbook to stdout: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := generator.WriteWorkbook(workbook, *outputDir); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write workbook: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "Generated %d case sheets into %s\n", len(workbook.Sheets), *outputDir)
}
