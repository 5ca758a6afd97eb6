package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"pdfcombine/internal"
	"pdfcombine/types"

	"github.com/joho/godotenv"
)

// go run main.go -source ./source-pdfs
// go run main.go -source ./source-pdfs -output my_combined.pdf
// go run main.go -source ./scans -remove-watermarks
// go run main.go -source ./scans -remove-watermarks -method pixel_domain

func main() {
	source := flag.String("source", "", "Source folder containing PDF files")
	output := flag.String("output", "", "Output filename (defaults to a timestamped name)")
	outDir := flag.String("outdir", "", "Directory for the combined PDF")
	removeWatermarks := flag.Bool("remove-watermarks", false, "Attempt to remove scanner watermarks from page bottoms")
	method := flag.String("method", "", "Watermark removal method: fixed_fraction or pixel_domain")
	fraction := flag.Float64("fraction", 0, "Fraction of page height to crop from the bottom, in (0, 1)")
	verbose := flag.Bool("v", false, "Enable verbose output")
	flag.Parse()

	// A .env next to the binary provides defaults; flags win.
	godotenv.Load()
	cfg := types.LoadConfig()

	if *verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	opts := internal.OptionsFromConfig(cfg)
	if *source != "" {
		opts.SourceDir = *source
	}
	if *outDir != "" {
		opts.OutputDir = *outDir
	}
	opts.OutputName = *output
	if *removeWatermarks {
		opts.RemoveWatermarks = true
	}
	if *method != "" {
		strategy, err := types.ParseStrategy(*method)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		opts.Strategy = strategy
	}
	if *fraction != 0 {
		if *fraction <= 0 || *fraction >= 1 {
			fmt.Fprintf(os.Stderr, "Error: fraction %g outside (0, 1)\n", *fraction)
			os.Exit(1)
		}
		opts.CropFraction = *fraction
	}

	info, err := os.Stat(opts.SourceDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: source folder '%s' does not exist.\n", opts.SourceDir)
		os.Exit(1)
	}
	if !info.IsDir() {
		fmt.Fprintf(os.Stderr, "Error: '%s' is not a directory.\n", opts.SourceDir)
		os.Exit(1)
	}

	if opts.RemoveWatermarks {
		fmt.Printf("Watermark removal enabled using method: %s\n", opts.Strategy)
	}

	asm := internal.NewAssembler(internal.NewEngine())
	res, err := asm.Run(context.Background(), opts)
	if err != nil {
		if errors.Is(err, types.ErrNoInput) {
			fmt.Fprintf(os.Stderr, "Error: no PDF files found in %s\n", opts.SourceDir)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}

	if len(res.Warnings) > 0 {
		fmt.Printf("Finished with %d warnings (%d of %d files skipped).\n",
			len(res.Warnings), res.FilesFailed, res.FilesTotal)
	}
	fmt.Printf("\nSuccess! Combined PDF created: %s\n", res.OutputPath)
	fmt.Printf("Total pages in combined PDF: %d\n", res.Pages)
}
