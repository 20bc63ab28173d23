package normalizer

import (
	"strconv"

	"moviedata/internal/models"
)

// RejectReason classifies why a record was excluded from all outputs.
type RejectReason string

// Record rejection reasons.
const (
	ReasonInvalidIdentifier RejectReason = "invalid_identifier"
)

// Rejection tags a raw record that failed validation.
type Rejection struct {
	Reason RejectReason
	Value  string
	Line   int
}

// ValidateMovie checks and cleanses one raw movies record. A missing or
// non-positive-integer identifier rejects the record. Declared numeric
// columns that fail coercion become null instead of rejecting the row.
func ValidateMovie(rec models.RawRecord) (models.MovieRow, *Rejection) {
	id, ok := ParseID(rec.Get("id"))
	if !ok {
		return models.MovieRow{}, &Rejection{
			Reason: ReasonInvalidIdentifier,
			Value:  rec.Get("id"),
			Line:   rec.Line,
		}
	}

	return models.MovieRow{
		ID:                  id,
		Adult:               rec.Get("adult"),
		Budget:              coerceInt(rec.Get("budget")),
		Homepage:            rec.Get("homepage"),
		IMDBID:              rec.Get("imdb_id"),
		OriginalLanguage:    rec.Get("original_language"),
		OriginalTitle:       rec.Get("original_title"),
		Overview:            rec.Get("overview"),
		Popularity:          coerceFloat(rec.Get("popularity")),
		PosterPath:          rec.Get("poster_path"),
		ProductionCountries: rec.Get("production_countries"),
		ReleaseDate:         rec.Get("release_date"),
		Revenue:             coerceFloat(rec.Get("revenue")),
		Runtime:             coerceInt(rec.Get("runtime")),
		SpokenLanguages:     rec.Get("spoken_languages"),
		Status:              rec.Get("status"),
		Tagline:             rec.Get("tagline"),
		Title:               rec.Get("title"),
		Video:               rec.Get("video"),
		VoteAverage:         coerceFloat(rec.Get("vote_average")),
		VoteCount:           coerceInt(rec.Get("vote_count")),
	}, nil
}

// ParseID parses an identifier column. Identifiers must be positive
// integers.
func ParseID(s string) (int64, bool) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v <= 0 {
		return 0, false
	}

	return v, true
}

// coerceInt parses an integer column, tolerating float notation the way the
// raw data writes budgets ("4000000.0"). Unparseable values become null.
func coerceInt(s string) *int64 {
	if s == "" {
		return nil
	}

	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return &v
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}

	v := int64(f)

	return &v
}

// coerceFloat parses a float column. Unparseable values become null.
func coerceFloat(s string) *float64 {
	if s == "" {
		return nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}

	return &f
}
