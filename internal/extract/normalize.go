package extract

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/ppiankov/mentions/internal/lemma"
)

// Normalized is the lemmatized text of a matched sentence
type Normalized struct {
	Text   string
	Misses int // tokens the analyzer did not know
}

// Empty reports whether nothing survived filtering
func (n Normalized) Empty() bool {
	return strings.TrimSpace(n.Text) == ""
}

// Normalizer filters tokens and replaces them with their base forms
type Normalizer struct {
	analyzer  lemma.Analyzer
	stopwords lemma.Stopwords
}

// NewNormalizer creates a normalizer
func NewNormalizer(analyzer lemma.Analyzer, stopwords lemma.Stopwords) *Normalizer {
	if stopwords == nil {
		stopwords = lemma.Stopwords{}
	}
	return &Normalizer{analyzer: analyzer, stopwords: stopwords}
}

// Normalize reduces the words of m to lemmas
func (n *Normalizer) Normalize(ctx context.Context, m Match, mention string) (Normalized, error) {
	var out Normalized
	lemmas := make([]string, 0, len(m.Words))

	for _, w := range m.Words {
		if !n.keep(w, mention, m.MultiToken) {
			continue
		}

		analyses, err := n.analyzer.Analyze(ctx, w)
		if err != nil {
			return Normalized{}, fmt.Errorf("analyze %q: %w", w, err)
		}
		if len(analyses) == 0 {
			lemmas = append(lemmas, w)
			out.Misses++
			continue
		}

		base := strings.ToLower(analyses[0].BaseForm)
		if !n.stopwords.Contains(base) {
			lemmas = append(lemmas, base)
		}
	}

	out.Text = strings.Join(lemmas, " ")
	return out, nil
}

func (n *Normalizer) keep(w, mention string, multiToken bool) bool {
	if n.stopwords.Contains(w) {
		return false
	}
	if !multiToken && (w == mention || strings.Contains(mention, w)) {
		return false
	}
	if strings.Contains(w, "minister") && !strings.Contains(w, "ministeriö") {
		return false
	}
	return isAlpha(w)
}

func isAlpha(w string) bool {
	if w == "" {
		return false
	}
	for _, r := range w {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
