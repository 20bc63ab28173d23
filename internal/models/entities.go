package models

// MovieRow is the movies relation row. Each movie id originates from exactly
// one row of movies_metadata.csv, so the relation is never merged across
// rows. Numeric columns are nullable: a value that fails coercion is dropped,
// not the row.
type MovieRow struct {
	Budget              *int64   `json:"budget,omitempty"`
	Revenue             *float64 `json:"revenue,omitempty"`
	Runtime             *int64   `json:"runtime,omitempty"`
	Popularity          *float64 `json:"popularity,omitempty"`
	VoteAverage         *float64 `json:"vote_average,omitempty"`
	VoteCount           *int64   `json:"vote_count,omitempty"`
	Adult               string   `json:"adult,omitempty"`
	Homepage            string   `json:"homepage,omitempty"`
	IMDBID              string   `json:"imdb_id,omitempty"`
	OriginalLanguage    string   `json:"original_language,omitempty"`
	OriginalTitle       string   `json:"original_title,omitempty"`
	Overview            string   `json:"overview,omitempty"`
	PosterPath          string   `json:"poster_path,omitempty"`
	ProductionCountries string   `json:"production_countries,omitempty"`
	ReleaseDate         string   `json:"release_date,omitempty"`
	SpokenLanguages     string   `json:"spoken_languages,omitempty"`
	Status              string   `json:"status,omitempty"`
	Tagline             string   `json:"tagline,omitempty"`
	Title               string   `json:"title,omitempty"`
	Video               string   `json:"video,omitempty"`
	ID                  int64    `json:"id"`
}

// PersonRow is a deduplicated actors or crews relation row.
type PersonRow struct {
	Name        string `json:"name,omitempty"`
	ProfilePath string `json:"profile_path,omitempty"`
	ID          int64  `json:"id"`
}

// NamedRow is a deduplicated id/name entity row, shared by the genres,
// keywords and production_companies relations.
type NamedRow struct {
	Name string `json:"name,omitempty"`
	ID   int64  `json:"id"`
}

// CollectionRow is the collections relation row.
type CollectionRow struct {
	Name         string `json:"name,omitempty"`
	PosterPath   string `json:"poster_path,omitempty"`
	BackdropPath string `json:"backdrop_path,omitempty"`
	ID           int64  `json:"id"`
}

// LinkRow maps a MovieLens movie id to its IMDB and TMDB identifiers. The
// movie id here is in the MovieLens namespace and is not referentially bound
// to the movies relation.
type LinkRow struct {
	IMDBID  string `json:"imdb_id,omitempty"`
	TMDBID  *int64 `json:"tmdb_id,omitempty"`
	MovieID int64  `json:"movie_id"`
}

// RatingRow is one user/movie/rating triple. The timestamp is the raw epoch
// value rendered as RFC3339 UTC.
type RatingRow struct {
	Rating    *float64 `json:"rating,omitempty"`
	Timestamp string   `json:"timestamp,omitempty"`
	UserID    int64    `json:"user_id"`
	MovieID   int64    `json:"movie_id"`
}
