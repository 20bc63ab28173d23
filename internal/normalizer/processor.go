// Package normalizer turns validated raw records into normalized entity and
// junction relations. Candidate emission is partition-local and parallel;
// entity deduplication happens at the Merge step, a global reduce keyed by
// identifier whose tie-break is independent of partitioning.
package normalizer

import (
	"strconv"
	"time"

	"moviedata/internal/logger"
	"moviedata/internal/models"
)

// Normalizer explodes raw records into relation rows.
type Normalizer struct {
	log    *logger.Logger
	policy string
}

// New creates a normalizer with the given tie-break policy.
func New(policy string, log *logger.Logger) *Normalizer {
	return &Normalizer{policy: policy, log: log}
}

// Stats counts per-source processing outcomes.
type Stats struct {
	Rows            int
	Accepted        int
	Rejected        int
	Excluded        int
	MalformedFields int
}

func (s *Stats) add(o Stats) {
	s.Rows += o.Rows
	s.Accepted += o.Accepted
	s.Rejected += o.Rejected
	s.Excluded += o.Excluded
	s.MalformedFields += o.MalformedFields
}

// MoviesPartial is one partition's contribution from the movies source.
type MoviesPartial struct {
	Movies           []models.MovieRow
	MovieGenres      []models.MovieGenreRow
	MovieCollections []models.MovieCollectionRow
	MovieCompanies   []models.MovieProductionCompanyRow
	Genres           *Table[models.NamedRow]
	Collections      *Table[models.CollectionRow]
	Companies        *Table[models.NamedRow]
	Stats            Stats
}

// NewMoviesPartial creates an empty movies partial.
func NewMoviesPartial(policy string) *MoviesPartial {
	return &MoviesPartial{
		Genres:      NewTable[models.NamedRow](policy),
		Collections: NewTable[models.CollectionRow](policy),
		Companies:   NewTable[models.NamedRow](policy),
	}
}

// Merge folds another partition's contribution into this one.
func (p *MoviesPartial) Merge(o *MoviesPartial) {
	p.Movies = append(p.Movies, o.Movies...)
	p.MovieGenres = append(p.MovieGenres, o.MovieGenres...)
	p.MovieCollections = append(p.MovieCollections, o.MovieCollections...)
	p.MovieCompanies = append(p.MovieCompanies, o.MovieCompanies...)
	p.Genres.Merge(o.Genres)
	p.Collections.Merge(o.Collections)
	p.Companies.Merge(o.Companies)
	p.Stats.add(o.Stats)
}

// ProcessMovies validates and explodes one partition of movies records.
func (n *Normalizer) ProcessMovies(recs []models.RawRecord) *MoviesPartial {
	p := NewMoviesPartial(n.policy)

	for _, rec := range recs {
		p.Stats.Rows++

		row, rej := ValidateMovie(rec)
		if rej != nil {
			p.Stats.Rejected++

			n.log.Warn("rejecting movie record",
				"source", rec.Source, "line", rec.Line,
				"reason", string(rej.Reason), "id", rej.Value)

			continue
		}

		p.Stats.Accepted++
		p.Movies = append(p.Movies, row)

		for i, m := range n.parseSeq(rec, "genres", &p.Stats) {
			id, ok := mapID(m)
			if !ok {
				continue
			}

			p.MovieGenres = append(p.MovieGenres, models.MovieGenreRow{
				MovieID: row.ID,
				GenreID: id,
			})
			p.Genres.Add(id, OrderKey{MovieID: row.ID, Pos: i}, models.NamedRow{
				ID:   id,
				Name: mapStr(m, "name"),
			})
		}

		for i, m := range n.parseSeq(rec, "belongs_to_collection", &p.Stats) {
			id, ok := mapID(m)
			if !ok {
				continue
			}

			p.MovieCollections = append(p.MovieCollections, models.MovieCollectionRow{
				MovieID:      row.ID,
				CollectionID: id,
			})
			p.Collections.Add(id, OrderKey{MovieID: row.ID, Pos: i}, models.CollectionRow{
				ID:           id,
				Name:         mapStr(m, "name"),
				PosterPath:   mapStr(m, "poster_path"),
				BackdropPath: mapStr(m, "backdrop_path"),
			})
		}

		for i, m := range n.parseSeq(rec, "production_companies", &p.Stats) {
			id, ok := mapID(m)
			if !ok {
				continue
			}

			p.MovieCompanies = append(p.MovieCompanies, models.MovieProductionCompanyRow{
				MovieID:             row.ID,
				ProductionCompanyID: id,
			})
			p.Companies.Add(id, OrderKey{MovieID: row.ID, Pos: i}, models.NamedRow{
				ID:   id,
				Name: mapStr(m, "name"),
			})
		}
	}

	return p
}

// CreditsPartial is one partition's contribution from the credits source.
type CreditsPartial struct {
	MovieCharacters []models.MovieCharacterRow
	MovieCrews      []models.MovieCrewRow
	Actors          *Table[models.PersonRow]
	Crews           *Table[models.PersonRow]
	Stats           Stats
}

// NewCreditsPartial creates an empty credits partial.
func NewCreditsPartial(policy string) *CreditsPartial {
	return &CreditsPartial{
		Actors: NewTable[models.PersonRow](policy),
		Crews:  NewTable[models.PersonRow](policy),
	}
}

// Merge folds another partition's contribution into this one.
func (p *CreditsPartial) Merge(o *CreditsPartial) {
	p.MovieCharacters = append(p.MovieCharacters, o.MovieCharacters...)
	p.MovieCrews = append(p.MovieCrews, o.MovieCrews...)
	p.Actors.Merge(o.Actors)
	p.Crews.Merge(o.Crews)
	p.Stats.add(o.Stats)
}

// ProcessCredits explodes one partition of credits records. Records whose
// movie id is absent from the accepted set contribute nothing: a rejected
// movie takes its junction rows, and any entity only it introduced, with it.
func (n *Normalizer) ProcessCredits(recs []models.RawRecord, accepted func(int64) bool) *CreditsPartial {
	p := NewCreditsPartial(n.policy)

	for _, rec := range recs {
		p.Stats.Rows++

		movieID, ok := ParseID(rec.Get("id"))
		if !ok {
			p.Stats.Rejected++

			n.log.Warn("rejecting credits record",
				"source", rec.Source, "line", rec.Line,
				"reason", string(ReasonInvalidIdentifier), "id", rec.Get("id"))

			continue
		}

		if !accepted(movieID) {
			p.Stats.Excluded++

			continue
		}

		p.Stats.Accepted++

		for i, m := range n.parseSeq(rec, "cast", &p.Stats) {
			actorID, ok := mapID(m)
			if !ok {
				continue
			}

			p.MovieCharacters = append(p.MovieCharacters, models.MovieCharacterRow{
				MovieID:   movieID,
				CastID:    mapIntPtr(m, "cast_id"),
				CastOrder: mapIntPtr(m, "order"),
				Character: mapStr(m, "character"),
				Gender:    mapIntPtr(m, "gender"),
				ActorID:   actorID,
			})
			p.Actors.Add(actorID, OrderKey{MovieID: movieID, Pos: i}, models.PersonRow{
				ID:          actorID,
				Name:        mapStr(m, "name"),
				ProfilePath: mapStr(m, "profile_path"),
			})
		}

		for i, m := range n.parseSeq(rec, "crew", &p.Stats) {
			crewID, ok := mapID(m)
			if !ok {
				continue
			}

			p.MovieCrews = append(p.MovieCrews, models.MovieCrewRow{
				MovieID:    movieID,
				Department: mapStr(m, "department"),
				Job:        mapStr(m, "job"),
				CreditID:   mapStr(m, "credit_id"),
				CrewID:     crewID,
			})
			p.Crews.Add(crewID, OrderKey{MovieID: movieID, Pos: i}, models.PersonRow{
				ID:          crewID,
				Name:        mapStr(m, "name"),
				ProfilePath: mapStr(m, "profile_path"),
			})
		}
	}

	return p
}

// KeywordsPartial is one partition's contribution from the keywords source.
type KeywordsPartial struct {
	MovieKeywords []models.MovieKeywordRow
	Keywords      *Table[models.NamedRow]
	Stats         Stats
}

// NewKeywordsPartial creates an empty keywords partial.
func NewKeywordsPartial(policy string) *KeywordsPartial {
	return &KeywordsPartial{
		Keywords: NewTable[models.NamedRow](policy),
	}
}

// Merge folds another partition's contribution into this one.
func (p *KeywordsPartial) Merge(o *KeywordsPartial) {
	p.MovieKeywords = append(p.MovieKeywords, o.MovieKeywords...)
	p.Keywords.Merge(o.Keywords)
	p.Stats.add(o.Stats)
}

// ProcessKeywords explodes one partition of keywords records, gated on the
// accepted movie id set like credits.
func (n *Normalizer) ProcessKeywords(recs []models.RawRecord, accepted func(int64) bool) *KeywordsPartial {
	p := NewKeywordsPartial(n.policy)

	for _, rec := range recs {
		p.Stats.Rows++

		movieID, ok := ParseID(rec.Get("id"))
		if !ok {
			p.Stats.Rejected++

			n.log.Warn("rejecting keywords record",
				"source", rec.Source, "line", rec.Line,
				"reason", string(ReasonInvalidIdentifier), "id", rec.Get("id"))

			continue
		}

		if !accepted(movieID) {
			p.Stats.Excluded++

			continue
		}

		p.Stats.Accepted++

		for i, m := range n.parseSeq(rec, "keywords", &p.Stats) {
			id, ok := mapID(m)
			if !ok {
				continue
			}

			p.MovieKeywords = append(p.MovieKeywords, models.MovieKeywordRow{
				MovieID:   movieID,
				KeywordID: id,
			})
			p.Keywords.Add(id, OrderKey{MovieID: movieID, Pos: i}, models.NamedRow{
				ID:   id,
				Name: mapStr(m, "name"),
			})
		}
	}

	return p
}

// LinksPartial is one partition's contribution from a links source.
type LinksPartial struct {
	Links []models.LinkRow
	Stats Stats
}

// Merge folds another partition's contribution into this one.
func (p *LinksPartial) Merge(o *LinksPartial) {
	p.Links = append(p.Links, o.Links...)
	p.Stats.add(o.Stats)
}

// ProcessLinks maps one partition of links records.
func (n *Normalizer) ProcessLinks(recs []models.RawRecord) *LinksPartial {
	p := &LinksPartial{}

	for _, rec := range recs {
		p.Stats.Rows++

		movieID, ok := ParseID(rec.Get("movieId"))
		if !ok {
			p.Stats.Rejected++

			n.log.Warn("rejecting links record",
				"source", rec.Source, "line", rec.Line,
				"reason", string(ReasonInvalidIdentifier), "id", rec.Get("movieId"))

			continue
		}

		p.Stats.Accepted++
		p.Links = append(p.Links, models.LinkRow{
			MovieID: movieID,
			IMDBID:  rec.Get("imdbId"),
			TMDBID:  coerceInt(rec.Get("tmdbId")),
		})
	}

	return p
}

// RatingsPartial is one partition's contribution from a ratings source.
type RatingsPartial struct {
	Ratings []models.RatingRow
	Stats   Stats
}

// Merge folds another partition's contribution into this one.
func (p *RatingsPartial) Merge(o *RatingsPartial) {
	p.Ratings = append(p.Ratings, o.Ratings...)
	p.Stats.add(o.Stats)
}

// ProcessRatings maps one partition of ratings records. The epoch timestamp
// is rendered as RFC3339 UTC; an unparseable one is dropped, not the row.
func (n *Normalizer) ProcessRatings(recs []models.RawRecord) *RatingsPartial {
	p := &RatingsPartial{}

	for _, rec := range recs {
		p.Stats.Rows++

		userID, okUser := ParseID(rec.Get("userId"))
		movieID, okMovie := ParseID(rec.Get("movieId"))

		if !okUser || !okMovie {
			p.Stats.Rejected++

			n.log.Warn("rejecting ratings record",
				"source", rec.Source, "line", rec.Line,
				"reason", string(ReasonInvalidIdentifier))

			continue
		}

		p.Stats.Accepted++
		p.Ratings = append(p.Ratings, models.RatingRow{
			UserID:    userID,
			MovieID:   movieID,
			Rating:    coerceFloat(rec.Get("rating")),
			Timestamp: formatEpoch(rec.Get("timestamp")),
		})
	}

	return p
}

func formatEpoch(s string) string {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return ""
	}

	return time.Unix(v, 0).UTC().Format(time.RFC3339)
}
