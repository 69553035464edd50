package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"perifuse/adapters/excel"
	"perifuse/app"
	"perifuse/internal"
	"perifuse/internal/config"
)

// Batch entry point: extract traits from one input file and one parameter
// file and write the output table as CSV.
func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	inputPath := flag.String("input", cfg.Paths.InputFile, "input table (.xlsx or .csv)")
	paramPath := flag.String("params", cfg.Paths.ParameterFile, "parameter table (.csv)")
	outputPath := flag.String("output", cfg.Paths.OutputFile, "output CSV path (- for stdout)")
	prefix := flag.String("prefix", cfg.Extraction.Prefix, "trait name prefix, e.g. GCG-IEQ")
	sheet := flag.String("sheet", cfg.Extraction.Sheet, "worksheet name for .xlsx input")
	skipRows := flag.Int("skip-rows", cfg.Extraction.SkipRows, "preamble rows above the header")
	unitRow := flag.Bool("unit-row", cfg.Extraction.UnitRow, "input has a second header row of unit labels")
	flag.Parse()

	if *inputPath == "" || *paramPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	service := app.NewExtractService(nil, internal.NewDefaultLogger())
	result, err := service.Run(context.Background(), app.ExtractRequest{
		Input: excel.ReaderConfig{
			FilePath: *inputPath,
			Sheet:    *sheet,
			SkipRows: *skipRows,
			UnitRow:  *unitRow,
		},
		ParameterFile: *paramPath,
		Prefix:        *prefix,
	})
	if err != nil {
		log.Fatalf("Extraction failed: %v", err)
	}

	if *outputPath == "-" {
		if err := excel.WriteTraitTable(os.Stdout, result.Table); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
		return
	}
	if err := excel.WriteTraitFile(*outputPath, result.Table); err != nil {
		log.Fatalf("Failed to write output: %v", err)
	}
	fmt.Printf("run %s: %d donors, %d trait columns -> %s\n",
		result.RunID, result.Donors, len(result.Columns), *outputPath)
}
