package normalizer

import (
	"sort"

	"moviedata/internal/config"
)

// OrderKey fixes the reproducible candidate ordering the tie-break policy is
// defined over: movie id ascending, then position within that movie's
// embedded sequence. Dedup results depend only on this ordering, never on
// how the input was partitioned.
type OrderKey struct {
	MovieID int64
	Pos     int
}

// Less reports whether k orders before o.
func (k OrderKey) Less(o OrderKey) bool {
	if k.MovieID != o.MovieID {
		return k.MovieID < o.MovieID
	}

	return k.Pos < o.Pos
}

// entry tracks one identifier's winning snapshot plus enough to count
// conflicts: how many candidates were observed and whether they disagreed.
// When mixed is false the winner equals every candidate seen, so comparing
// winners at a merge boundary detects disagreement exactly.
type entry[T comparable] struct {
	row   T
	key   OrderKey
	count int
	mixed bool
}

// Table accumulates entity candidates keyed by identifier and resolves
// attribute conflicts with the configured tie-break policy. The winning
// snapshot is a keyed min/max over OrderKey, so merging tables is
// associative and commutative.
type Table[T comparable] struct {
	rows   map[int64]entry[T]
	policy string
}

// NewTable creates an empty candidate table.
func NewTable[T comparable](policy string) *Table[T] {
	return &Table[T]{
		rows:   make(map[int64]entry[T]),
		policy: policy,
	}
}

// Add records one candidate snapshot for an identifier.
func (t *Table[T]) Add(id int64, key OrderKey, row T) {
	cur, ok := t.rows[id]
	if !ok {
		t.rows[id] = entry[T]{row: row, key: key, count: 1}

		return
	}

	cur.count++

	if cur.row != row {
		cur.mixed = true
	}

	if t.wins(key, cur.key) {
		cur.row = row
		cur.key = key
	}

	t.rows[id] = cur
}

// wins reports whether a candidate at key replaces the current one at cur.
func (t *Table[T]) wins(key, cur OrderKey) bool {
	if t.policy == config.TieBreakFirstWins {
		return key.Less(cur)
	}

	return cur.Less(key)
}

// Merge folds another table into this one. Used at the reduce boundary after
// all partitions have contributed their candidates.
func (t *Table[T]) Merge(o *Table[T]) {
	for id, e := range o.rows {
		cur, ok := t.rows[id]
		if !ok {
			t.rows[id] = e

			continue
		}

		cur.count += e.count
		cur.mixed = cur.mixed || e.mixed || cur.row != e.row

		if t.wins(e.key, cur.key) {
			cur.row = e.row
			cur.key = e.key
		}

		t.rows[id] = cur
	}
}

// Rows returns the canonical rows ordered by identifier.
func (t *Table[T]) Rows() []T {
	ids := make([]int64, 0, len(t.rows))
	for id := range t.rows {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.rows[id].row)
	}

	return out
}

// Len returns the number of distinct identifiers.
func (t *Table[T]) Len() int {
	return len(t.rows)
}

// Conflicts counts the redundant candidates for identifiers whose snapshots
// disagreed: one per extra candidate beyond the first. It depends only on
// the candidate multiset, never on how the input was partitioned.
func (t *Table[T]) Conflicts() int {
	n := 0

	for _, e := range t.rows {
		if e.mixed {
			n += e.count - 1
		}
	}

	return n
}
