// Package extractor reads the raw catalog sources as lazy record streams.
// It performs source presence and header checks only; data-quality issues
// inside rows are deferred to the normalizer.
package extractor

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"moviedata/internal/logger"
	"moviedata/internal/models"
)

// Extraction errors. Both abort the run before any output is produced.
var (
	ErrSourceNotFound = errors.New("source not found")
	ErrSchemaMismatch = errors.New("source schema mismatch")
)

// Layout fixes a logical source name to its expected file and header.
type Layout struct {
	File    string
	Columns []string
}

// Layouts is the fixed mapping of logical source name to file layout.
var Layouts = map[string]Layout{
	"movies": {
		File: "movies_metadata.csv",
		Columns: []string{
			"adult", "belongs_to_collection", "budget", "genres", "homepage",
			"id", "imdb_id", "original_language", "original_title", "overview",
			"popularity", "poster_path", "production_companies",
			"production_countries", "release_date", "revenue", "runtime",
			"spoken_languages", "status", "tagline", "title", "video",
			"vote_average", "vote_count",
		},
	},
	"credits": {
		File:    "credits.csv",
		Columns: []string{"cast", "crew", "id"},
	},
	"keywords": {
		File:    "keywords.csv",
		Columns: []string{"id", "keywords"},
	},
	"links": {
		File:    "links.csv",
		Columns: []string{"movieId", "imdbId", "tmdbId"},
	},
	"links_small": {
		File:    "links_small.csv",
		Columns: []string{"movieId", "imdbId", "tmdbId"},
	},
	"ratings": {
		File:    "ratings.csv",
		Columns: []string{"userId", "movieId", "rating", "timestamp"},
	},
	"ratings_small": {
		File:    "ratings_small.csv",
		Columns: []string{"userId", "movieId", "rating", "timestamp"},
	},
}

// SourceNames lists every logical source in processing order. The movies
// source comes first: its accepted identifiers gate junction emission for
// credits and keywords.
var SourceNames = []string{
	"movies", "credits", "keywords",
	"links", "links_small", "ratings", "ratings_small",
}

// Extractor reads raw sources beneath a root location.
type Extractor struct {
	log  *logger.Logger
	root string
}

// New creates an extractor for the given source root.
func New(root string, log *logger.Logger) *Extractor {
	return &Extractor{root: root, log: log}
}

// Extract streams one source's rows to fn and returns the number of rows
// skipped as structurally malformed (bad CSV quoting or wrong field count).
// The stream stops early if fn returns an error.
func (e *Extractor) Extract(source string, fn func(models.RawRecord) error) (int, error) {
	layout, ok := Layouts[source]
	if !ok {
		return 0, fmt.Errorf("%w: unknown source %q", ErrSourceNotFound, source)
	}

	path := filepath.Join(e.root, layout.File)

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, fmt.Errorf("%w: %s (%s)", ErrSourceNotFound, source, path)
		}

		return 0, fmt.Errorf("opening source %s: %w", source, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := e.readHeader(r, source, layout)
	if err != nil {
		return 0, err
	}

	malformed := 0
	line := 1

	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			return malformed, nil
		}

		line++

		if err != nil {
			malformed++

			e.log.Warn("skipping unreadable row",
				"source", source, "line", line, "error", err)

			continue
		}

		if len(row) != len(header) {
			malformed++

			e.log.Warn("skipping row with wrong field count",
				"source", source, "line", line,
				"fields", len(row), "expected", len(header))

			continue
		}

		fields := make(map[string]string, len(header))
		for i, col := range header {
			fields[col] = row[i]
		}

		rec := models.RawRecord{Source: source, Line: line, Fields: fields}
		if err := fn(rec); err != nil {
			return malformed, err
		}
	}
}

// CheckSchema verifies that a source exists and that its header matches the
// expected layout, without reading any data rows.
func (e *Extractor) CheckSchema(source string) error {
	layout, ok := Layouts[source]
	if !ok {
		return fmt.Errorf("%w: unknown source %q", ErrSourceNotFound, source)
	}

	path := filepath.Join(e.root, layout.File)

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s (%s)", ErrSourceNotFound, source, path)
		}

		return fmt.Errorf("opening source %s: %w", source, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	_, err = e.readHeader(r, source, layout)

	return err
}

func (e *Extractor) readHeader(r *csv.Reader, source string, layout Layout) ([]string, error) {
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %s has no readable header", ErrSchemaMismatch, source)
	}

	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	if !sameColumnSet(header, layout.Columns) {
		return nil, fmt.Errorf("%w: %s header %v, expected %v",
			ErrSchemaMismatch, source, sorted(header), sorted(layout.Columns))
	}

	return header, nil
}

// sameColumnSet compares headers as sets: column order in the file is
// incidental, the column names are not.
func sameColumnSet(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}

	g, w := sorted(got), sorted(want)
	for i := range g {
		if g[i] != w[i] {
			return false
		}
	}

	return true
}

func sorted(cols []string) []string {
	out := make([]string, len(cols))
	copy(out, cols)
	sort.Strings(out)

	return out
}
