package normalizer

import (
	"testing"

	"moviedata/internal/models"
)

func movieRecord(fields map[string]string) models.RawRecord {
	return models.RawRecord{Source: "movies", Line: 2, Fields: fields}
}

func TestValidateMovie_Valid(t *testing.T) {
	row, rej := ValidateMovie(movieRecord(map[string]string{
		"id":           "862",
		"title":        "Toy Story",
		"budget":       "30000000",
		"revenue":      "373554033.0",
		"runtime":      "81.0",
		"vote_average": "7.7",
		"vote_count":   "5415",
		"popularity":   "21.946943",
	}))
	if rej != nil {
		t.Fatalf("unexpected rejection: %+v", rej)
	}

	if row.ID != 862 || row.Title != "Toy Story" {
		t.Errorf("row = %+v", row)
	}

	if row.Budget == nil || *row.Budget != 30000000 {
		t.Errorf("Budget = %v, want 30000000", row.Budget)
	}

	if row.Runtime == nil || *row.Runtime != 81 {
		t.Errorf("Runtime = %v, want 81 (coerced from float notation)", row.Runtime)
	}

	if row.VoteAverage == nil || *row.VoteAverage != 7.7 {
		t.Errorf("VoteAverage = %v, want 7.7", row.VoteAverage)
	}
}

func TestValidateMovie_InvalidIdentifier(t *testing.T) {
	tests := []struct {
		name string
		id   string
	}{
		{"Empty", ""},
		{"Non-numeric", "1997-08-20"},
		{"Zero", "0"},
		{"Negative", "-5"},
		{"Thousands comma", "1,234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, rej := ValidateMovie(movieRecord(map[string]string{"id": tt.id, "title": "x"}))
			if rej == nil {
				t.Fatalf("expected rejection for id %q", tt.id)
			}

			if rej.Reason != ReasonInvalidIdentifier {
				t.Errorf("reason = %q, want %q", rej.Reason, ReasonInvalidIdentifier)
			}
		})
	}
}

// A numeric column that fails coercion becomes null; it never rejects the
// record.
func TestValidateMovie_NumericCoercionFailure(t *testing.T) {
	row, rej := ValidateMovie(movieRecord(map[string]string{
		"id":         "862",
		"budget":     "/ff9qCepilowshEtG2GYWwzt2bs4.jpg",
		"runtime":    "not a number",
		"popularity": "",
	}))
	if rej != nil {
		t.Fatalf("unexpected rejection: %+v", rej)
	}

	if row.Budget != nil {
		t.Errorf("Budget = %v, want nil", row.Budget)
	}

	if row.Runtime != nil {
		t.Errorf("Runtime = %v, want nil", row.Runtime)
	}

	if row.Popularity != nil {
		t.Errorf("Popularity = %v, want nil", row.Popularity)
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		input  string
		want   int64
		wantOK bool
	}{
		{"862", 862, true},
		{"1", 1, true},
		{"0", 0, false},
		{"-1", 0, false},
		{"", 0, false},
		{"abc", 0, false},
		{"12.5", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseID(tt.input)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseID(%q) = (%d, %v), want (%d, %v)", tt.input, got, ok, tt.want, tt.wantOK)
		}
	}
}
