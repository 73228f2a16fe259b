// Package lemma provides morphological analysis and stopword filtering.
package lemma

import (
	"context"
	"fmt"
	"time"

	"github.com/ppiankov/mentions/internal/model"
	"github.com/ppiankov/mentions/internal/worker"
	"github.com/rs/zerolog"
)

// Analysis is one morphological reading of a word
type Analysis struct {
	BaseForm string `json:"BASEFORM"`
	Class    string `json:"CLASS,omitempty"`
}

// Analyzer returns the readings of a word, best first.
// An empty slice means the word is unknown; errors are reserved for
// failures of the analyzer itself.
type Analyzer interface {
	Analyze(ctx context.Context, word string) ([]Analysis, error)
}

// AnalyzerFunc adapts a function to Analyzer
type AnalyzerFunc func(ctx context.Context, word string) ([]Analysis, error)

// Analyze calls f
func (f AnalyzerFunc) Analyze(ctx context.Context, word string) ([]Analysis, error) {
	return f(ctx, word)
}

// NoneAnalyzer knows no words; every token is kept as is and counted as a miss
type NoneAnalyzer struct{}

// Analyze always returns no analysis
func (NoneAnalyzer) Analyze(ctx context.Context, word string) ([]Analysis, error) {
	return nil, nil
}

// New creates the analyzer selected by cfg, wrapped in a memo cache when
// cfg.CacheTTL is positive
func New(cfg model.LemmatizerConfig, limiter *worker.Limiter, logger zerolog.Logger) (Analyzer, error) {
	var a Analyzer

	switch cfg.Kind {
	case "lexicon", "":
		lex, err := LoadLexicon(cfg.LexiconPath)
		if err != nil {
			return nil, err
		}
		logger.Info().Int("forms", lex.Len()).Str("path", cfg.LexiconPath).Msg("lexicon loaded")
		a = lex
	case "remote":
		if cfg.RemoteURL == "" {
			return nil, fmt.Errorf("remote lemmatizer requires lemmatizer.remote_url")
		}
		a = NewRemoteAnalyzer(cfg.RemoteURL, 30*time.Second, limiter)
	case "none":
		logger.Warn().Msg("lemmatizer disabled, every token counts as a miss")
		return NoneAnalyzer{}, nil
	default:
		return nil, fmt.Errorf("unknown lemmatizer kind: %s", cfg.Kind)
	}

	if cfg.CacheTTL > 0 {
		a = NewCachedAnalyzer(a, cfg.CacheTTL)
	}
	return a, nil
}
