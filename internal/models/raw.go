// Package models defines the raw record shape and the normalized entity and
// junction relation rows produced by the processor.
package models

import "strings"

// RawRecord is one row from a raw source file in its native, denormalized
// shape, keyed by the source's column headers.
type RawRecord struct {
	Fields map[string]string
	Source string
	Line   int
}

// Get returns a column value with surrounding whitespace removed.
func (r RawRecord) Get(column string) string {
	return strings.TrimSpace(r.Fields[column])
}
