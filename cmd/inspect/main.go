// Package main provides the inspect command that checks raw CSV sources
// against their expected layouts without producing any output.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"moviedata/internal/extractor"
	"moviedata/internal/logger"
)

func main() {
	sourceRoot := flag.String("source-root", "", "Directory containing the raw CSV sources")
	flag.Parse()

	if *sourceRoot == "" {
		fmt.Println("Usage: inspect -source-root <dir>")
		flag.PrintDefaults()
		os.Exit(1)
	}

	log := logger.NewLogger("error", "text")
	ext := extractor.New(*sourceRoot, log)

	fmt.Printf("🔍 Inspecting sources under %s\n\n", *sourceRoot)

	failed := 0

	for _, source := range extractor.SourceNames {
		layout := extractor.Layouts[source]

		err := ext.CheckSchema(source)
		switch {
		case err == nil:
			fmt.Printf("✅ %-14s %s (%d columns)\n", source, layout.File, len(layout.Columns))
		case errors.Is(err, extractor.ErrSourceNotFound):
			fmt.Printf("❌ %-14s %s missing\n", source, layout.File)

			failed++
		case errors.Is(err, extractor.ErrSchemaMismatch):
			fmt.Printf("❌ %-14s %s header mismatch: %v\n", source, layout.File, err)

			failed++
		default:
			fmt.Printf("❌ %-14s %v\n", source, err)

			failed++
		}
	}

	if failed > 0 {
		fmt.Printf("\n⚠️  %d source(s) failed inspection\n", failed)
		os.Exit(1)
	}

	fmt.Println("\n✨ All sources match their expected layouts")
}
