package models

// Junction rows carry the association-specific attributes (cast order,
// department, job, credit id) so that the entity rows stay singular per id.

// MovieCharacterRow links a movie to an actor through a cast entry.
type MovieCharacterRow struct {
	CastID    *int64 `json:"cast_id,omitempty"`
	CastOrder *int64 `json:"cast_order,omitempty"`
	Gender    *int64 `json:"gender,omitempty"`
	Character string `json:"character,omitempty"`
	MovieID   int64  `json:"movie_id"`
	ActorID   int64  `json:"actor_id"`
}

// MovieCrewRow links a movie to a crew member through a crew credit.
type MovieCrewRow struct {
	Department string `json:"department,omitempty"`
	Job        string `json:"job,omitempty"`
	CreditID   string `json:"credit_id,omitempty"`
	MovieID    int64  `json:"movie_id"`
	CrewID     int64  `json:"crew_id"`
}

// MovieGenreRow links a movie to a genre.
type MovieGenreRow struct {
	MovieID int64 `json:"movie_id"`
	GenreID int64 `json:"genre_id"`
}

// MovieCollectionRow links a movie to the collection it belongs to.
type MovieCollectionRow struct {
	MovieID      int64 `json:"movie_id"`
	CollectionID int64 `json:"collection_id"`
}

// MovieKeywordRow links a movie to a keyword.
type MovieKeywordRow struct {
	MovieID   int64 `json:"movie_id"`
	KeywordID int64 `json:"keyword_id"`
}

// MovieProductionCompanyRow links a movie to a production company.
type MovieProductionCompanyRow struct {
	MovieID             int64 `json:"movie_id"`
	ProductionCompanyID int64 `json:"production_company_id"`
}
