// Package pipeline runs one analysis period end to end: query the mentions,
// build the mention sentences, resolve the people and write both tables.
package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/ppiankov/mentions/internal/cache"
	"github.com/ppiankov/mentions/internal/extract"
	"github.com/ppiankov/mentions/internal/lemma"
	"github.com/ppiankov/mentions/internal/model"
	"github.com/ppiankov/mentions/internal/people"
	"github.com/ppiankov/mentions/internal/sparql"
	"github.com/ppiankov/mentions/internal/worker"
	"github.com/rs/zerolog"
)

// Querier runs SELECT queries
type Querier interface {
	Select(ctx context.Context, query string) (*sparql.Results, error)
}

// Pipeline orchestrates a complete run
type Pipeline struct {
	querier  Querier
	builder  *extract.Builder
	renderer *Renderer
	config   *model.Config
	logger   zerolog.Logger
}

// NewPipeline loads the stopwords and the analyzer and connects to the endpoint
func NewPipeline(cfg *model.Config, logger zerolog.Logger) (*Pipeline, error) {
	stopwords, err := lemma.LoadStopwords(cfg.Stopwords.Path)
	if err != nil {
		return nil, err
	}
	logger.Debug().Int("stopwords", len(stopwords)).Str("path", cfg.Stopwords.Path).Msg("stopwords loaded")

	limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)

	analyzer, err := lemma.New(cfg.Lemmatizer, limiter, logger)
	if err != nil {
		return nil, fmt.Errorf("lemmatizer: %w", err)
	}

	opts := []sparql.Option{
		sparql.WithLimiter(limiter),
		sparql.WithLogger(logger),
	}
	if cfg.Cache.Enabled {
		opts = append(opts, sparql.WithCache(cache.NewLayeredCache(cfg.Cache)))
	}
	client := sparql.NewClient(cfg.Endpoint, cfg.Breaker, opts...)

	return New(client, analyzer, stopwords, cfg, logger), nil
}

// New assembles a pipeline from its collaborators
func New(q Querier, analyzer lemma.Analyzer, stopwords lemma.Stopwords, cfg *model.Config, logger zerolog.Logger) *Pipeline {
	normalizer := extract.NewNormalizer(analyzer, stopwords)
	return &Pipeline{
		querier:  q,
		builder:  extract.NewBuilder(normalizer, cfg.Concurrency.Workers, logger),
		renderer: NewRenderer(cfg.Output.Dir),
		config:   cfg,
		logger:   logger,
	}
}

// Run processes one period and writes its two output files
func (p *Pipeline) Run(ctx context.Context, period model.Period) (*model.RunSummary, error) {
	summary := &model.RunSummary{
		RunID:  uuid.New().String(),
		Period: period,
	}
	logger := p.logger.With().Str("run", summary.RunID).Str("period", period.String()).Logger()

	// 1. Mentions
	groups, err := p.fetchGroups(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("mention query: %w", err)
	}
	summary.Speeches = CountSpeeches(groups)
	logger.Info().Int("speeches", summary.Speeches).Int("groups", len(groups)).Msg("speeches with mentions fetched")

	// 2. Mention sentences
	built, err := p.builder.Build(ctx, groups)
	if err != nil {
		return nil, fmt.Errorf("build mention sentences: %w", err)
	}
	summary.Mentions = built.Stats.Mentions
	summary.Rows = built.Stats.Rows()
	summary.Missing = built.Stats.Missing
	summary.EmptySentences = built.Stats.EmptySentences
	summary.People = len(built.People)

	logger.Info().
		Int("mentions", summary.Mentions).
		Int("sentences_found", summary.Rows).
		Int("missing", summary.Missing).
		Int("empty_sentences", summary.EmptySentences).
		Msg("mention sentences built")

	summary.MentionsFile, err = p.renderer.RenderMentions(period, built.Records)
	if err != nil {
		return nil, err
	}

	// 3. People
	records, err := p.fetchPeople(ctx, built.People)
	if err != nil {
		return nil, fmt.Errorf("people query: %w", err)
	}
	persons, unresolved := people.NewResolver(period.End, logger).Resolve(built.People, records)
	summary.Resolved = len(persons)
	summary.Unresolved = unresolved

	summary.PeopleFile, err = p.renderer.RenderPeople(period, persons)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Int("people", summary.People).
		Int("resolved", summary.Resolved).
		Int("unresolved", len(summary.Unresolved)).
		Msg("people resolved")

	if p.config.Output.Verbose {
		fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", summary.MentionsFile)
		fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", summary.PeopleFile)
	}
	return summary, nil
}

func (p *Pipeline) fetchGroups(ctx context.Context, period model.Period) ([]model.MentionGroup, error) {
	res, err := p.querier.Select(ctx, sparql.MentionQuery(period))
	if err != nil {
		return nil, err
	}
	rows, err := sparql.ConvertBindings(res)
	if err != nil {
		return nil, err
	}
	return GroupsFromRows(rows)
}

func (p *Pipeline) fetchPeople(ctx context.Context, ids []string) ([]people.Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	res, err := p.querier.Select(ctx, sparql.PeopleQuery(ids))
	if err != nil {
		return nil, err
	}
	rows, err := sparql.ConvertBindings(res)
	if err != nil {
		return nil, err
	}
	return people.RecordsFromRows(rows)
}

// GroupsFromRows reads sp, content, source, target, date and mention
func GroupsFromRows(rows []sparql.Row) ([]model.MentionGroup, error) {
	groups := make([]model.MentionGroup, 0, len(rows))
	for i, row := range rows {
		var (
			g   model.MentionGroup
			err error
		)
		for _, f := range []struct {
			key string
			dst *string
		}{
			{"sp", &g.Speech},
			{"content", &g.Content},
			{"source", &g.Source},
			{"target", &g.Target},
			{"mention", &g.Mentions},
		} {
			if *f.dst, err = row.String(f.key); err != nil {
				return nil, fmt.Errorf("mention row %d: %w", i, err)
			}
		}
		if g.Date, err = row.Date("date"); err != nil {
			return nil, fmt.Errorf("mention row %d: %w", i, err)
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// CountSpeeches returns the number of distinct speeches
func CountSpeeches(groups []model.MentionGroup) int {
	seen := make(map[string]struct{}, len(groups))
	for _, g := range groups {
		seen[g.Speech] = struct{}{}
	}
	return len(seen)
}
