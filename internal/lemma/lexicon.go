package lemma

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// LexiconAnalyzer looks words up in a form -> base form table loaded from disk
type LexiconAnalyzer struct {
	entries map[string][]Analysis
}

// LoadLexicon reads a lexicon file, see ParseLexicon
func LoadLexicon(path string) (*LexiconAnalyzer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open lexicon: %w", err)
	}
	defer func() { _ = f.Close() }()

	lex, err := ParseLexicon(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lex, nil
}

// ParseLexicon reads "form<TAB>baseform[<TAB>class]" lines. A comma is accepted
// instead of the tab. Lines starting with # and blank lines are skipped.
// Repeated forms add further analyses in file order.
func ParseLexicon(r io.Reader) (*LexiconAnalyzer, error) {
	lex := &LexiconAnalyzer{entries: make(map[string][]Analysis)}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		sep := "\t"
		if !strings.Contains(line, sep) {
			sep = ","
		}
		fields := strings.Split(line, sep)
		if len(fields) < 2 || fields[0] == "" || fields[1] == "" {
			return nil, fmt.Errorf("lexicon line %d: expected form and base form", lineNo)
		}

		a := Analysis{BaseForm: strings.TrimSpace(fields[1])}
		if len(fields) > 2 {
			a.Class = strings.TrimSpace(fields[2])
		}
		form := strings.TrimSpace(fields[0])
		lex.entries[form] = append(lex.entries[form], a)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read lexicon: %w", err)
	}
	return lex, nil
}

// Analyze returns the analyses recorded for word
func (l *LexiconAnalyzer) Analyze(ctx context.Context, word string) ([]Analysis, error) {
	return l.entries[word], nil
}

// Len returns the number of distinct forms
func (l *LexiconAnalyzer) Len() int {
	return len(l.entries)
}
