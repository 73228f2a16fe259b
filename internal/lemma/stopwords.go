package lemma

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
)

// Stopwords is a set of lowercase words dropped before and after lemmatization
type Stopwords map[string]struct{}

// NewStopwords builds a set from words
func NewStopwords(words ...string) Stopwords {
	s := make(Stopwords, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

// LoadStopwords reads one word per line
func LoadStopwords(path string) (Stopwords, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open stopwords: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ReadStopwords(f)
}

// ReadStopwords reads one word per line. Trailing whitespace is trimmed and
// lines are otherwise kept as they are, so a blank line adds the empty word.
func ReadStopwords(r io.Reader) (Stopwords, error) {
	s := make(Stopwords)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		s[strings.TrimRightFunc(scanner.Text(), unicode.IsSpace)] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read stopwords: %w", err)
	}
	return s, nil
}

// Contains reports whether w is a stopword
func (s Stopwords) Contains(w string) bool {
	_, ok := s[w]
	return ok
}
