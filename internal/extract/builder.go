package extract

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/mentions/internal/model"
	"github.com/ppiankov/mentions/internal/worker"
	"github.com/rs/zerolog"
)

// Stats counts the outcome of every surface form
type Stats struct {
	Mentions       int // surface forms seen
	Found          int // rows with a lemmatized sentence
	Missing        int // rows for forms no sentence contains
	EmptySentences int // matched sentences that reduced to nothing
}

// Add accumulates o into s
func (s *Stats) Add(o Stats) {
	s.Mentions += o.Mentions
	s.Found += o.Found
	s.Missing += o.Missing
	s.EmptySentences += o.EmptySentences
}

// Rows returns the number of output rows
func (s Stats) Rows() int {
	return s.Found + s.Missing
}

// GroupResult holds the rows built from one mention group
type GroupResult struct {
	Records []model.MentionRecord
	Stats   Stats
	Err     error
}

// GetError implements worker.Result
func (r *GroupResult) GetError() error {
	return r.Err
}

// Result is the output of Build
type Result struct {
	Records []model.MentionRecord
	People  []string // sources and targets in first-seen order
	Stats   Stats
}

// SortMentions splits the ';'-joined surface forms of a group and orders them
// longest first, equal lengths alphabetically, so that a full name is tried
// before a shorter form it contains.
func SortMentions(raw string) []string {
	forms := strings.Split(strings.ToLower(raw), ";")
	sort.Strings(forms)
	sort.SliceStable(forms, func(i, j int) bool {
		return utf8.RuneCountInString(forms[i]) > utf8.RuneCountInString(forms[j])
	})
	return forms
}

// Builder turns mention groups into mention records
type Builder struct {
	normalizer *Normalizer
	workers    int
	logger     zerolog.Logger
}

// NewBuilder creates a builder; workers > 1 processes groups in parallel
// while keeping the output in input order
func NewBuilder(normalizer *Normalizer, workers int, logger zerolog.Logger) *Builder {
	if workers <= 0 {
		workers = 1
	}
	return &Builder{normalizer: normalizer, workers: workers, logger: logger}
}

// BuildGroup segments the speech once and emits one row per surface form,
// except for forms whose sentence reduced to nothing
func (b *Builder) BuildGroup(ctx context.Context, g model.MentionGroup) (*GroupResult, error) {
	mentions := SortMentions(g.Mentions)
	sentences := SplitSentences(g.Content)
	res := &GroupResult{Stats: Stats{Mentions: len(mentions)}}

	for _, m := range mentions {
		rec := model.MentionRecord{
			Speech:  g.Speech,
			Source:  g.Source,
			Target:  g.Target,
			Date:    g.Date,
			Mention: m,
		}

		match, ok := Locate(sentences, m, mentions)
		if !ok {
			rec.OGSentence = model.MissingSentence
			res.Records = append(res.Records, rec)
			res.Stats.Missing++
			continue
		}

		norm, err := b.normalizer.Normalize(ctx, match, m)
		if err != nil {
			return nil, fmt.Errorf("speech %s: %w", g.Speech, err)
		}
		if norm.Empty() {
			res.Stats.EmptySentences++
			b.logger.Debug().Str("speech", g.Speech).Str("mention", m).Msg("sentence reduced to nothing")
			continue
		}

		rec.OGSentence = match.Sentence
		rec.LemSentence = &norm.Text
		rec.Misses = norm.Misses
		res.Records = append(res.Records, rec)
		res.Stats.Found++
	}
	return res, nil
}

type groupJob struct {
	builder *Builder
	group   model.MentionGroup
}

func (j *groupJob) Execute(ctx context.Context) worker.Result {
	res, err := j.builder.BuildGroup(ctx, j.group)
	if err != nil {
		return &GroupResult{Err: err}
	}
	return res
}

// Build processes all groups and concatenates their rows in input order
func (b *Builder) Build(ctx context.Context, groups []model.MentionGroup) (*Result, error) {
	results, err := b.buildAll(ctx, groups)
	if err != nil {
		return nil, err
	}

	out := &Result{}
	seen := make(map[string]bool)
	for i, r := range results {
		g := groups[i]
		for _, id := range []string{g.Source, g.Target} {
			if !seen[id] {
				seen[id] = true
				out.People = append(out.People, id)
			}
		}
		out.Records = append(out.Records, r.Records...)
		out.Stats.Add(r.Stats)
	}

	b.logger.Debug().
		Int("groups", len(groups)).
		Int("mentions", out.Stats.Mentions).
		Int("rows", out.Stats.Rows()).
		Msg("mention groups processed")
	return out, nil
}

func (b *Builder) buildAll(ctx context.Context, groups []model.MentionGroup) ([]*GroupResult, error) {
	results := make([]*GroupResult, 0, len(groups))

	if b.workers == 1 || len(groups) < 2 {
		for _, g := range groups {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			r, err := b.BuildGroup(ctx, g)
			if err != nil {
				return nil, err
			}
			results = append(results, r)
		}
		return results, nil
	}

	pool := worker.NewPool(ctx, b.workers)
	pool.Start()
	for _, g := range groups {
		if !pool.Submit(&groupJob{builder: b, group: g}) {
			break
		}
	}

	for _, r := range pool.Wait() {
		gr := r.(*GroupResult)
		if gr.Err != nil {
			return nil, gr.Err
		}
		results = append(results, gr)
	}
	if len(results) != len(groups) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("processed %d of %d mention groups", len(results), len(groups))
	}
	return results, nil
}
