// Package pipeline orchestrates a full processor run: schema preflight,
// partitioned parallel normalization, the global dedup reduce, staged sink
// commits and the run report.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"moviedata/internal/config"
	"moviedata/internal/extractor"
	"moviedata/internal/logger"
	"moviedata/internal/models"
	"moviedata/internal/normalizer"
	"moviedata/internal/report"
	"moviedata/internal/sink"
)

// Run-failure kinds reported in the structured cause.
const (
	KindSourceNotFound  = "source_not_found"
	KindSchemaMismatch  = "schema_mismatch"
	KindPartitionFailed = "partition_failed"
	KindSinkWrite       = "sink_write_failure"
)

// RunError is the structured cause of a run-level failure: a kind from the
// error taxonomy plus the offending source or relation.
type RunError struct {
	Err     error
	Kind    string
	Subject string
}

func (e *RunError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Kind, e.Subject, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// ReportFile is the run report name beneath the destination root.
const ReportFile = "run_report.md"

// Runner executes processor runs.
type Runner struct {
	cfg  *config.Config
	log  *logger.Logger
	ext  *extractor.Extractor
	norm *normalizer.Normalizer
	out  *sink.Sink
}

// New creates a runner from validated configuration.
func New(cfg *config.Config, log *logger.Logger) *Runner {
	p := cfg.Processor

	return &Runner{
		cfg:  cfg,
		log:  log,
		ext:  extractor.New(p.SourceRoot, log),
		norm: normalizer.New(p.TieBreak, log),
		out:  sink.New(p.DestinationRoot, log),
	}
}

// Sources returns the logical sources this run consumes, in processing
// order.
func (r *Runner) Sources() []string {
	if r.cfg.Processor.IncludeSmall {
		return extractor.SourceNames
	}

	out := make([]string, 0, len(extractor.SourceNames))

	for _, s := range extractor.SourceNames {
		if s != "links_small" && s != "ratings_small" {
			out = append(out, s)
		}
	}

	return out
}

// Run executes the full transform. The summary is returned even on partial
// failure so callers can report what did happen; the error carries the
// structured causes.
func (r *Runner) Run(ctx context.Context) (*report.Summary, error) {
	summary := &report.Summary{StartedAt: time.Now()}

	// Preflight before any output: a missing source or schema drift aborts
	// the whole run.
	for _, source := range r.Sources() {
		if err := r.ext.CheckSchema(source); err != nil {
			return nil, preflightError(source, err)
		}
	}

	stats := make(map[string]*report.SourceStats)
	for _, source := range r.Sources() {
		stats[source] = &report.SourceStats{Source: source}
	}

	// Movies first: its accepted identifiers gate everything derived from
	// the other embedded-structure sources.
	movies, err := runSource(ctx, r, "movies", stats["movies"], r.norm.ProcessMovies)
	if err != nil {
		return nil, err
	}

	acceptedIDs := make(map[int64]struct{}, len(movies.Movies))
	for _, m := range movies.Movies {
		acceptedIDs[m.ID] = struct{}{}
	}

	accepted := func(id int64) bool {
		_, ok := acceptedIDs[id]

		return ok
	}

	credits, err := runSource(ctx, r, "credits", stats["credits"], func(recs []models.RawRecord) *normalizer.CreditsPartial {
		return r.norm.ProcessCredits(recs, accepted)
	})
	if err != nil {
		return nil, err
	}

	keywords, err := runSource(ctx, r, "keywords", stats["keywords"], func(recs []models.RawRecord) *normalizer.KeywordsPartial {
		return r.norm.ProcessKeywords(recs, accepted)
	})
	if err != nil {
		return nil, err
	}

	linkSets := make(map[string]*normalizer.LinksPartial)
	ratingSets := make(map[string]*normalizer.RatingsPartial)

	for _, source := range r.Sources() {
		switch source {
		case "links", "links_small":
			part, err := runSource(ctx, r, source, stats[source], r.norm.ProcessLinks)
			if err != nil {
				return nil, err
			}

			linkSets[source] = part
		case "ratings", "ratings_small":
			part, err := runSource(ctx, r, source, stats[source], r.norm.ProcessRatings)
			if err != nil {
				return nil, err
			}

			ratingSets[source] = part
		}
	}

	fillStats(stats["movies"], movies.Stats)
	fillStats(stats["credits"], credits.Stats)
	fillStats(stats["keywords"], keywords.Stats)

	for name, part := range linkSets {
		fillStats(stats[name], part.Stats)
	}

	for name, part := range ratingSets {
		fillStats(stats[name], part.Stats)
	}

	stats["movies"].Conflicts = movies.Genres.Conflicts() +
		movies.Collections.Conflicts() + movies.Companies.Conflicts()
	stats["credits"].Conflicts = credits.Actors.Conflicts() + credits.Crews.Conflicts()
	stats["keywords"].Conflicts = keywords.Keywords.Conflicts()

	sortRelations(movies, credits, keywords)

	if err := os.MkdirAll(r.cfg.Processor.DestinationRoot, 0755); err != nil {
		return nil, &RunError{Kind: KindSinkWrite, Subject: "destination root", Err: err}
	}

	var sinkErrs []error

	commit := func(err error) {
		if err != nil {
			summary.Failures = append(summary.Failures, err.Error())
			sinkErrs = append(sinkErrs, err)
		}
	}

	record := func(name string, rows int) {
		summary.Relations = append(summary.Relations, report.RelationCount{Relation: name, Rows: rows})
	}

	commit(sink.WriteRelation(r.out, "movies", movies.Movies))
	record("movies", len(movies.Movies))

	actors := credits.Actors.Rows()
	commit(sink.WriteRelation(r.out, "actors", actors))
	record("actors", len(actors))

	crews := credits.Crews.Rows()
	commit(sink.WriteRelation(r.out, "crews", crews))
	record("crews", len(crews))

	genres := movies.Genres.Rows()
	commit(sink.WriteRelation(r.out, "genres", genres))
	record("genres", len(genres))

	collections := movies.Collections.Rows()
	commit(sink.WriteRelation(r.out, "collections", collections))
	record("collections", len(collections))

	companies := movies.Companies.Rows()
	commit(sink.WriteRelation(r.out, "production_companies", companies))
	record("production_companies", len(companies))

	keywordRows := keywords.Keywords.Rows()
	commit(sink.WriteRelation(r.out, "keywords", keywordRows))
	record("keywords", len(keywordRows))

	for name, part := range linkSets {
		commit(sink.WriteRelation(r.out, name, part.Links))
		record(name, len(part.Links))
	}

	for name, part := range ratingSets {
		commit(sink.WriteRelation(r.out, name, part.Ratings))
		record(name, len(part.Ratings))
	}

	commit(sink.WriteRelation(r.out, "movie_characters", credits.MovieCharacters))
	record("movie_characters", len(credits.MovieCharacters))

	commit(sink.WriteRelation(r.out, "movie_crews", credits.MovieCrews))
	record("movie_crews", len(credits.MovieCrews))

	commit(sink.WriteRelation(r.out, "movie_genres", movies.MovieGenres))
	record("movie_genres", len(movies.MovieGenres))

	commit(sink.WriteRelation(r.out, "movie_collections", movies.MovieCollections))
	record("movie_collections", len(movies.MovieCollections))

	commit(sink.WriteRelation(r.out, "movie_keywords", keywords.MovieKeywords))
	record("movie_keywords", len(keywords.MovieKeywords))

	commit(sink.WriteRelation(r.out, "movie_production_companies", movies.MovieCompanies))
	record("movie_production_companies", len(movies.MovieCompanies))

	sort.Slice(summary.Relations, func(i, j int) bool {
		return summary.Relations[i].Relation < summary.Relations[j].Relation
	})

	for _, source := range r.Sources() {
		summary.Sources = append(summary.Sources, *stats[source])
	}

	summary.FinishedAt = time.Now()

	if err := summary.Write(filepath.Join(r.cfg.Processor.DestinationRoot, ReportFile)); err != nil {
		r.log.Error("failed to write run report", "error", err)
	}

	if len(sinkErrs) > 0 {
		return summary, &RunError{
			Kind:    KindSinkWrite,
			Subject: fmt.Sprintf("%d relation(s)", len(sinkErrs)),
			Err:     errors.Join(sinkErrs...),
		}
	}

	return summary, nil
}

func fillStats(dst *report.SourceStats, s normalizer.Stats) {
	dst.Rows = s.Rows
	dst.Accepted = s.Accepted
	dst.Rejected = s.Rejected
	dst.Excluded = s.Excluded
	dst.MalformedFields = s.MalformedFields
}

func preflightError(source string, err error) *RunError {
	kind := KindSourceNotFound
	if errors.Is(err, extractor.ErrSchemaMismatch) {
		kind = KindSchemaMismatch
	}

	return &RunError{Kind: kind, Subject: source, Err: err}
}

// runSource extracts one source, fans its rows out over partitions, and
// reduces the partials in partition order.
func runSource[P interface{ Merge(P) }](
	ctx context.Context,
	r *Runner,
	source string,
	stats *report.SourceStats,
	fn func([]models.RawRecord) P,
) (P, error) {
	var zero P

	var recs []models.RawRecord

	malformed, err := r.ext.Extract(source, func(rec models.RawRecord) error {
		recs = append(recs, rec)

		return ctx.Err()
	})
	if err != nil {
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}

		return zero, preflightError(source, err)
	}

	stats.MalformedRows = malformed

	parts, err := runPartitions(ctx, r.cfg.Processor.Partitions, &r.cfg.Processor.Retry, recs, fn)
	if err != nil {
		return zero, &RunError{Kind: KindPartitionFailed, Subject: source, Err: err}
	}

	merged := parts[0]
	for _, p := range parts[1:] {
		merged.Merge(p)
	}

	r.log.Info("processed source", "source", source, "rows", len(recs), "partitions", len(parts))

	return merged, nil
}

// runPartitions processes contiguous chunks concurrently. Each chunk is
// retried independently under the retry policy; exhausting retries for any
// chunk fails the whole source, since the reduce needs complete input.
func runPartitions[P any](
	ctx context.Context,
	workers int,
	retry *config.RetryPolicy,
	recs []models.RawRecord,
	fn func([]models.RawRecord) P,
) ([]P, error) {
	chunks := partition(recs, workers)
	results := make([]P, len(chunks))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			return withRetry(ctx, retry, func() error {
				if err := ctx.Err(); err != nil {
					return err
				}

				results[i] = fn(chunk)

				return nil
			})
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// partition splits records into up to n contiguous chunks, preserving input
// order. Always returns at least one chunk so the reduce has a seed.
func partition(recs []models.RawRecord, n int) [][]models.RawRecord {
	if n < 1 {
		n = 1
	}

	if len(recs) == 0 {
		return [][]models.RawRecord{nil}
	}

	size := (len(recs) + n - 1) / n

	var chunks [][]models.RawRecord
	for start := 0; start < len(recs); start += size {
		end := min(start+size, len(recs))
		chunks = append(chunks, recs[start:end])
	}

	return chunks
}

func withRetry(ctx context.Context, retry *config.RetryPolicy, fn func() error) error {
	var lastErr error

	for attempt := 1; attempt <= retry.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if delay := retry.GetRetryDelay(attempt); delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		lastErr = fn()
		if lastErr == nil || errors.Is(lastErr, context.Canceled) {
			return lastErr
		}
	}

	return fmt.Errorf("retries exhausted after %d attempts: %w", retry.MaxAttempts, lastErr)
}

// sortRelations fixes the output ordering: movies and entities by id,
// junction rows by movie id keeping each movie's embedded-sequence order.
func sortRelations(movies *normalizer.MoviesPartial, credits *normalizer.CreditsPartial, keywords *normalizer.KeywordsPartial) {
	sort.Slice(movies.Movies, func(i, j int) bool {
		return movies.Movies[i].ID < movies.Movies[j].ID
	})
	sort.SliceStable(movies.MovieGenres, func(i, j int) bool {
		return movies.MovieGenres[i].MovieID < movies.MovieGenres[j].MovieID
	})
	sort.SliceStable(movies.MovieCollections, func(i, j int) bool {
		return movies.MovieCollections[i].MovieID < movies.MovieCollections[j].MovieID
	})
	sort.SliceStable(movies.MovieCompanies, func(i, j int) bool {
		return movies.MovieCompanies[i].MovieID < movies.MovieCompanies[j].MovieID
	})
	sort.SliceStable(credits.MovieCharacters, func(i, j int) bool {
		return credits.MovieCharacters[i].MovieID < credits.MovieCharacters[j].MovieID
	})
	sort.SliceStable(credits.MovieCrews, func(i, j int) bool {
		return credits.MovieCrews[i].MovieID < credits.MovieCrews[j].MovieID
	})
	sort.SliceStable(keywords.MovieKeywords, func(i, j int) bool {
		return keywords.MovieKeywords[i].MovieID < keywords.MovieKeywords[j].MovieID
	})
}
