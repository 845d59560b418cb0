//go:build ignore

// generate_testdata.go creates standard sheets for benchmarking the viewer.
// Usage: go run scripts/generate_testdata.go
//
// Creates:
//
//	testdata/benchmark/small.csv     (100 x 10)
//	testdata/benchmark/medium.csv    (10000 x 26)
//	testdata/benchmark/large.jsonl   (100000 x 40)
//	testdata/benchmark/wide.csv      (1000 x 500)
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vanderheijden86/sheetview/pkg/testutil"
)

type datasetSpec struct {
	name  string
	rows  int
	cols  int
	jsonl bool
}

var datasets = []datasetSpec{
	{"small", 100, 10, false},
	{"medium", 10000, 26, false},
	{"large", 100000, 40, true},
	{"wide", 1000, 500, false},
}

func main() {
	outputDir := "testdata/benchmark"
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	for _, ds := range datasets {
		fmt.Printf("Generating %s dataset (%d x %d)...\n", ds.name, ds.rows, ds.cols)

		gen := testutil.New(testutil.GeneratorConfig{
			Seed:         int64(ds.rows*1000 + ds.cols), // Reproducible per-size
			HeaderPrefix: "col",
			NumericRatio: 0.6,
		})
		sheet := gen.Sheet(ds.rows, ds.cols)

		ext, body := ".csv", testutil.ToCSV(sheet)
		if ds.jsonl {
			ext, body = ".jsonl", testutil.ToJSONL(sheet)
		}

		outputPath := filepath.Join(outputDir, ds.name+ext)
		if err := os.WriteFile(outputPath, []byte(body), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", outputPath, err)
			os.Exit(1)
		}

		fmt.Printf("  Written %s (%d bytes, %s)\n", outputPath, len(body), sheet.Description)
	}

	fmt.Println("\nDone! Test datasets created in", outputDir)
}
