package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"moviedata/pkg/metadata"
)

func sampleSummary() *Summary {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	return &Summary{
		StartedAt:  start,
		FinishedAt: start.Add(42 * time.Second),
		Sources: []SourceStats{
			{Source: "movies", Rows: 100, Accepted: 97, Rejected: 3, MalformedFields: 2, Conflicts: 1},
			{Source: "credits", Rows: 100, Accepted: 95, Rejected: 2, Excluded: 3},
		},
		Relations: []RelationCount{
			{Relation: "movies", Rows: 97},
			{Relation: "genres", Rows: 20},
		},
	}
}

func TestSummary_Render(t *testing.T) {
	out := sampleSummary().Render()

	for _, want := range []string{
		"# Movie Data Processor Run Report",
		"| movies ",
		"| credits",
		"| genres ",
		"Malformed Fields",
		metadata.TagStart,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}

	if err := metadata.Verify(out); err != nil {
		t.Errorf("rendered report does not verify: %v", err)
	}
}

func TestSummary_Render_Failures(t *testing.T) {
	s := sampleSummary()
	s.Failures = []string{"sink write failure: relation ratings"}

	out := s.Render()
	if !strings.Contains(out, "## Failures") {
		t.Error("report missing failures section")
	}

	if !strings.Contains(out, "relation ratings") {
		t.Error("report missing failure detail")
	}
}

func TestSummary_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run_report.md")

	if err := sampleSummary().Write(path); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	if err := metadata.Verify(string(data)); err != nil {
		t.Errorf("written report does not verify: %v", err)
	}
}

func TestRenderTable_Alignment(t *testing.T) {
	table := renderTable([][]string{
		{"Source", "Rows"},
		{"movies", "5"},
		{"ratings_small", "123456"},
	})

	lines := strings.Split(strings.TrimRight(table, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4", len(lines))
	}

	width := len(lines[0])
	for i, line := range lines {
		if len(line) != width {
			t.Errorf("line %d width %d, want %d: %q", i, len(line), width, line)
		}
	}
}
