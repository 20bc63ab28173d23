// Package report renders a run summary as a signed markdown document.
package report

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"moviedata/pkg/metadata"
)

// SourceStats is the per-source outcome line of a run.
type SourceStats struct {
	Source          string
	Rows            int
	Accepted        int
	Rejected        int
	Excluded        int
	MalformedRows   int
	MalformedFields int
	Conflicts       int
}

// RelationCount is the per-relation row count of a run.
type RelationCount struct {
	Relation string
	Rows     int
}

// Summary describes one processor run.
type Summary struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Sources    []SourceStats
	Relations  []RelationCount
	Failures   []string
}

// Render produces the signed markdown report.
func (s *Summary) Render() string {
	var b strings.Builder

	b.WriteString("# Movie Data Processor Run Report\n\n")
	fmt.Fprintf(&b, "- Started: %s\n", s.StartedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "- Finished: %s\n", s.FinishedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "- Duration: %s\n\n", s.FinishedAt.Sub(s.StartedAt).Round(time.Millisecond))

	b.WriteString("## Sources\n\n")

	sourceRows := [][]string{
		{"Source", "Rows", "Accepted", "Rejected", "Excluded", "Malformed Rows", "Malformed Fields", "Conflicts"},
	}
	for _, src := range s.Sources {
		sourceRows = append(sourceRows, []string{
			src.Source,
			strconv.Itoa(src.Rows),
			strconv.Itoa(src.Accepted),
			strconv.Itoa(src.Rejected),
			strconv.Itoa(src.Excluded),
			strconv.Itoa(src.MalformedRows),
			strconv.Itoa(src.MalformedFields),
			strconv.Itoa(src.Conflicts),
		})
	}

	b.WriteString(renderTable(sourceRows))

	b.WriteString("\n## Relations\n\n")

	relationRows := [][]string{{"Relation", "Rows"}}
	for _, rel := range s.Relations {
		relationRows = append(relationRows, []string{rel.Relation, strconv.Itoa(rel.Rows)})
	}

	b.WriteString(renderTable(relationRows))

	if len(s.Failures) > 0 {
		b.WriteString("\n## Failures\n\n")

		for _, f := range s.Failures {
			fmt.Fprintf(&b, "- %s\n", f)
		}
	}

	return metadata.Sign(b.String(), "processor")
}

// Write renders the report and writes it to path.
func (s *Summary) Write(path string) error {
	if err := os.WriteFile(path, []byte(s.Render()), 0644); err != nil {
		return fmt.Errorf("failed to write run report: %w", err)
	}

	return nil
}

// renderTable builds a markdown table with runewidth-padded cells. The first
// row is the header.
func renderTable(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	widths := make([]int, len(rows[0]))

	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder

	writeRow := func(row []string) {
		b.WriteByte('|')

		for i, cell := range row {
			pad := widths[i] - runewidth.StringWidth(cell)
			b.WriteByte(' ')
			b.WriteString(cell)
			b.WriteString(strings.Repeat(" ", pad))
			b.WriteString(" |")
		}

		b.WriteByte('\n')
	}

	writeRow(rows[0])

	b.WriteByte('|')

	for _, w := range widths {
		b.WriteString(strings.Repeat("-", w+2))
		b.WriteByte('|')
	}

	b.WriteByte('\n')

	for _, row := range rows[1:] {
		writeRow(row)
	}

	return b.String()
}
