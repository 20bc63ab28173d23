// Package sink writes normalized relations beneath a destination root, one
// prefix per relation, as gzip-compressed newline-delimited JSON. Each
// relation is staged to a hidden directory and renamed into place only once
// fully written, so a relation is never partially visible.
package sink

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"moviedata/internal/logger"
)

// ErrWrite marks a relation whose staged output could not be committed. It
// is fatal for that relation only; other relations may still complete.
var ErrWrite = errors.New("sink write failure")

// PartFile is the data file name within a relation prefix.
const PartFile = "part-00000.json.gz"

// SuccessFile marks a fully committed relation prefix.
const SuccessFile = "_SUCCESS"

// Sink commits relations beneath a destination root.
type Sink struct {
	log  *logger.Logger
	root string
}

// New creates a sink for the given destination root.
func New(root string, log *logger.Logger) *Sink {
	return &Sink{root: root, log: log}
}

// Root returns the destination root.
func (s *Sink) Root() string {
	return s.root
}

// WriteRelation serializes rows as one JSON object per line into a staged
// prefix and atomically replaces destination_root/<name> with it. A rerun
// over identical input therefore replaces, never appends.
func WriteRelation[T any](s *Sink, name string, rows []T) (err error) {
	staging := filepath.Join(s.root, fmt.Sprintf(".staging-%s-%s", name, uuid.NewString()))

	defer func() {
		if err != nil {
			// Discard partially staged data; it must never become visible.
			os.RemoveAll(staging)
		}
	}()

	if mkErr := os.MkdirAll(staging, 0755); mkErr != nil {
		return fmt.Errorf("%w: relation %s: %v", ErrWrite, name, mkErr)
	}

	if partErr := writePart(filepath.Join(staging, PartFile), rows); partErr != nil {
		return fmt.Errorf("%w: relation %s: %v", ErrWrite, name, partErr)
	}

	if okErr := os.WriteFile(filepath.Join(staging, SuccessFile), nil, 0644); okErr != nil {
		return fmt.Errorf("%w: relation %s: %v", ErrWrite, name, okErr)
	}

	final := filepath.Join(s.root, name)

	if rmErr := os.RemoveAll(final); rmErr != nil {
		return fmt.Errorf("%w: relation %s: %v", ErrWrite, name, rmErr)
	}

	if mvErr := os.Rename(staging, final); mvErr != nil {
		return fmt.Errorf("%w: relation %s: %v", ErrWrite, name, mvErr)
	}

	s.log.Info("committed relation", "relation", name, "rows", len(rows))

	return nil
}

func writePart[T any](path string, rows []T) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	gz := gzip.NewWriter(f)
	enc := json.NewEncoder(gz)

	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			gz.Close()
			f.Close()

			return err
		}
	}

	if err := gz.Close(); err != nil {
		f.Close()

		return err
	}

	return f.Close()
}

// ReadRelation reads a committed relation back into rows.
func ReadRelation[T any](s *Sink, name string) ([]T, error) {
	f, err := os.Open(filepath.Join(s.root, name, PartFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer gz.Close()

	var out []T

	dec := json.NewDecoder(gz)

	for dec.More() {
		var row T
		if err := dec.Decode(&row); err != nil {
			return nil, err
		}

		out = append(out, row)
	}

	return out, nil
}
