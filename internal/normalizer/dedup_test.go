package normalizer

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"moviedata/internal/config"
	"moviedata/internal/models"
)

func TestTable_LastWins(t *testing.T) {
	tbl := NewTable[models.PersonRow](config.TieBreakLastWins)

	tbl.Add(500, OrderKey{MovieID: 1, Pos: 0}, models.PersonRow{ID: 500, Name: "Jon Doe"})
	tbl.Add(500, OrderKey{MovieID: 7, Pos: 2}, models.PersonRow{ID: 500, Name: "John Doe"})

	rows := tbl.Rows()
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}

	if rows[0].Name != "John Doe" {
		t.Errorf("canonical name = %q, want %q (last wins)", rows[0].Name, "John Doe")
	}

	if tbl.Conflicts() != 1 {
		t.Errorf("conflicts = %d, want 1", tbl.Conflicts())
	}
}

func TestTable_FirstWins(t *testing.T) {
	tbl := NewTable[models.PersonRow](config.TieBreakFirstWins)

	tbl.Add(500, OrderKey{MovieID: 7, Pos: 2}, models.PersonRow{ID: 500, Name: "John Doe"})
	tbl.Add(500, OrderKey{MovieID: 1, Pos: 0}, models.PersonRow{ID: 500, Name: "Jon Doe"})

	rows := tbl.Rows()
	if rows[0].Name != "Jon Doe" {
		t.Errorf("canonical name = %q, want %q (first wins)", rows[0].Name, "Jon Doe")
	}
}

// Insertion order must not matter, only the order keys.
func TestTable_InsertionOrderIndependent(t *testing.T) {
	forward := NewTable[models.NamedRow](config.TieBreakLastWins)
	backward := NewTable[models.NamedRow](config.TieBreakLastWins)

	candidates := []struct {
		key OrderKey
		row models.NamedRow
	}{
		{OrderKey{MovieID: 1, Pos: 0}, models.NamedRow{ID: 9, Name: "a"}},
		{OrderKey{MovieID: 1, Pos: 3}, models.NamedRow{ID: 9, Name: "b"}},
		{OrderKey{MovieID: 4, Pos: 1}, models.NamedRow{ID: 9, Name: "c"}},
		{OrderKey{MovieID: 2, Pos: 8}, models.NamedRow{ID: 9, Name: "d"}},
	}

	for _, c := range candidates {
		forward.Add(c.row.ID, c.key, c.row)
	}

	for i := len(candidates) - 1; i >= 0; i-- {
		backward.Add(candidates[i].row.ID, candidates[i].key, candidates[i].row)
	}

	if diff := cmp.Diff(forward.Rows(), backward.Rows()); diff != "" {
		t.Errorf("insertion order changed the result:\n%s", diff)
	}

	if forward.Rows()[0].Name != "c" {
		t.Errorf("canonical name = %q, want %q", forward.Rows()[0].Name, "c")
	}
}

// Merging partition-local tables must give the same result as one global
// table, whatever the partitioning.
func TestTable_MergeMatchesGlobal(t *testing.T) {
	rows := []struct {
		key OrderKey
		row models.NamedRow
	}{
		{OrderKey{MovieID: 1, Pos: 0}, models.NamedRow{ID: 35, Name: "Comedy"}},
		{OrderKey{MovieID: 2, Pos: 1}, models.NamedRow{ID: 35, Name: "comedy"}},
		{OrderKey{MovieID: 3, Pos: 0}, models.NamedRow{ID: 18, Name: "Drama"}},
		{OrderKey{MovieID: 5, Pos: 2}, models.NamedRow{ID: 35, Name: "COMEDY"}},
		{OrderKey{MovieID: 4, Pos: 0}, models.NamedRow{ID: 18, Name: "Drama"}},
	}

	global := NewTable[models.NamedRow](config.TieBreakLastWins)
	for _, r := range rows {
		global.Add(r.row.ID, r.key, r.row)
	}

	for split := 1; split < len(rows); split++ {
		left := NewTable[models.NamedRow](config.TieBreakLastWins)
		right := NewTable[models.NamedRow](config.TieBreakLastWins)

		for _, r := range rows[:split] {
			left.Add(r.row.ID, r.key, r.row)
		}

		for _, r := range rows[split:] {
			right.Add(r.row.ID, r.key, r.row)
		}

		left.Merge(right)

		if diff := cmp.Diff(global.Rows(), left.Rows()); diff != "" {
			t.Errorf("split at %d differs from global reduce:\n%s", split, diff)
		}
	}
}

// The conflict tally is defined over the candidate multiset alone: the same
// candidates must count the same however they were partitioned.
func TestTable_ConflictsPartitionIndependent(t *testing.T) {
	rows := []struct {
		key OrderKey
		row models.NamedRow
	}{
		{OrderKey{MovieID: 1, Pos: 0}, models.NamedRow{ID: 35, Name: "Comedy"}},
		{OrderKey{MovieID: 2, Pos: 1}, models.NamedRow{ID: 35, Name: "comedy"}},
		{OrderKey{MovieID: 5, Pos: 2}, models.NamedRow{ID: 35, Name: "COMEDY"}},
		{OrderKey{MovieID: 3, Pos: 0}, models.NamedRow{ID: 18, Name: "Drama"}},
		{OrderKey{MovieID: 4, Pos: 0}, models.NamedRow{ID: 18, Name: "Drama"}},
	}

	global := NewTable[models.NamedRow](config.TieBreakLastWins)
	for _, r := range rows {
		global.Add(r.row.ID, r.key, r.row)
	}

	// Genre 35 has three disagreeing candidates, so two are redundant; genre
	// 18's candidates agree and contribute nothing.
	if global.Conflicts() != 2 {
		t.Fatalf("global conflicts = %d, want 2", global.Conflicts())
	}

	for split := 1; split < len(rows); split++ {
		left := NewTable[models.NamedRow](config.TieBreakLastWins)
		right := NewTable[models.NamedRow](config.TieBreakLastWins)

		for _, r := range rows[:split] {
			left.Add(r.row.ID, r.key, r.row)
		}

		for _, r := range rows[split:] {
			right.Add(r.row.ID, r.key, r.row)
		}

		left.Merge(right)

		if left.Conflicts() != global.Conflicts() {
			t.Errorf("split at %d: conflicts = %d, want %d",
				split, left.Conflicts(), global.Conflicts())
		}
	}
}

func TestTable_RowsSortedByID(t *testing.T) {
	tbl := NewTable[models.NamedRow](config.TieBreakLastWins)

	tbl.Add(35, OrderKey{MovieID: 1, Pos: 0}, models.NamedRow{ID: 35, Name: "Comedy"})
	tbl.Add(18, OrderKey{MovieID: 1, Pos: 1}, models.NamedRow{ID: 18, Name: "Drama"})
	tbl.Add(16, OrderKey{MovieID: 2, Pos: 0}, models.NamedRow{ID: 16, Name: "Animation"})

	want := []models.NamedRow{
		{ID: 16, Name: "Animation"},
		{ID: 18, Name: "Drama"},
		{ID: 35, Name: "Comedy"},
	}

	if diff := cmp.Diff(want, tbl.Rows()); diff != "" {
		t.Errorf("Rows not ordered by id:\n%s", diff)
	}
}

func TestTable_IdenticalSnapshotsAreNotConflicts(t *testing.T) {
	tbl := NewTable[models.NamedRow](config.TieBreakLastWins)

	tbl.Add(18, OrderKey{MovieID: 1, Pos: 0}, models.NamedRow{ID: 18, Name: "Drama"})
	tbl.Add(18, OrderKey{MovieID: 2, Pos: 0}, models.NamedRow{ID: 18, Name: "Drama"})

	if tbl.Conflicts() != 0 {
		t.Errorf("conflicts = %d, want 0 for identical snapshots", tbl.Conflicts())
	}
}
