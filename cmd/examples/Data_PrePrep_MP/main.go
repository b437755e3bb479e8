package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/RajatSharma-ops/Biased-AI/pkg/data"
	"github.com/RajatSharma-ops/Biased-AI/pkg/dataprep"
	"github.com/RajatSharma-ops/Biased-AI/pkg/stats"
)

//
// ---------------------- CLI FLAGS ----------------------
//
// --input          : Path to input CSV/TSV file. Default = Employee.csv
// --target         : Label column name
// --sensitive      : Sensitive attribute column name
// --mode           : "cli" (preview in console) or "csv" (save encoded file)
// --output         : Path to save encoded CSV (mode=csv). Default = ./encoded_<input>
// --preview        : Number of rows to preview in console
// --missing-thresh : Drop feature columns with more than this fraction missing
// --encode         : "onehot" or "label"
//
// Example:
//   go run ./cmd/examples/Data_PrePrep_MP --input adult.csv --target income --sensitive sex --mode csv
//
// -------------------------------------------------------
//

func previewData(headers []string, X [][]float64, y []int, classes []string, n int) {
	n = min(n, len(X))
	for _, h := range headers {
		fmt.Printf("%-18s", h)
	}
	fmt.Printf("%-18s\n", "label")
	for i := 0; i < n; i++ {
		for _, v := range X[i] {
			fmt.Printf("%-18.4f", v)
		}
		fmt.Printf("%-18s\n", classes[y[i]])
	}
}

func main() {
	inputPath := flag.String("input", "Employee.csv", "Path to input CSV or TSV file")
	target := flag.String("target", "", "Label column name")
	sensitive := flag.String("sensitive", "", "Sensitive attribute column name")
	mode := flag.String("mode", "cli", "Output mode: cli or csv")
	outputPath := flag.String("output", "", "Path to save encoded CSV (if mode=csv)")
	previewRows := flag.Int("preview", 5, "Number of rows to preview in console")
	missingThresh := flag.Float64("missing-thresh", dataprep.DefaultMaxMissing, "Drop feature columns above this missing fraction")
	encodeMethod := flag.String("encode", dataprep.EncodingOneHot, "Encoding: onehot or label")
	flag.Parse()

	t, err := data.ReadTable(*inputPath)
	if err != nil {
		log.Fatalf("Error reading %s: %v", *inputPath, err)
	}
	fmt.Printf("Loaded raw data: %d rows, %d columns\n", len(t.Rows), len(t.Header))

	for j, h := range t.Header {
		if r := dataprep.MissingRatio(t.Column(j)); r > 0 {
			fmt.Printf("  %-20s %.1f%% missing\n", h, r*100)
		}
	}

	f, err := dataprep.Encode(t, *target, *sensitive,
		dataprep.WithEncoding(*encodeMethod),
		dataprep.WithMaxMissing(*missingThresh),
		dataprep.WithMinRows(2))
	if err != nil {
		log.Fatalf("Encoding failed: %v", err)
	}
	fmt.Printf("\nEncoded %d rows into %d features (%d rows dropped)\n", len(f.X), len(f.FeatureNames), f.Dropped)
	if len(f.DroppedCols) > 0 {
		fmt.Printf("Dropped columns: %v\n", f.DroppedCols)
	}
	fmt.Printf("Classes: %v, positive: %q\n", f.Classes, f.Classes[f.Positive])

	fmt.Println("\nFeature summary:")
	for j, name := range f.FeatureNames {
		col := stats.Column(f.X, j)
		lo, hi := stats.MinMax(col)
		fmt.Printf("  %-24s mean=%-10.4f median=%-10.4f std=%-10.4f min=%-10.4f max=%.4f\n",
			name, stats.Mean(col), stats.Median(col), stats.Std(col), lo, hi)
	}

	switch *mode {
	case "cli":
		fmt.Println()
		previewData(f.FeatureNames, f.X, f.Y, f.Classes, *previewRows)
	case "csv":
		out := *outputPath
		if out == "" {
			out = "encoded_" + filepath.Base(*inputPath)
		}
		if err := writeCSV(out, f); err != nil {
			log.Fatalf("Error writing %s: %v", out, err)
		}
		fmt.Printf("\nSaved encoded data to %s\n", out)
	default:
		log.Fatalf("Unknown mode %q", *mode)
	}
}

func writeCSV(path string, f *dataprep.Frame) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	header := append(append([]string{}, f.FeatureNames...), "label", "group")
	if err := w.Write(header); err != nil {
		return err
	}
	for i, row := range f.X {
		rec := make([]string, 0, len(header))
		for _, v := range row {
			rec = append(rec, strconv.FormatFloat(v, 'g', -1, 64))
		}
		rec = append(rec, f.Classes[f.Y[i]], f.A[i])
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
