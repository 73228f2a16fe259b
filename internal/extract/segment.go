// Package extract finds the sentences in which a speaker mentions another
// member and reduces them to lemmatized bags of words.
package extract

import (
	"regexp"
	"strings"

	"github.com/dlclark/regexp2"
)

var (
	// interjections and audience reactions
	bracketed = regexp.MustCompile(`[\(\[].*?[\)\]]`)

	noise = strings.NewReplacer("\u00a0", "", `"`, "", "\u201d", "", ";", "")

	// a sentence starts with a capital or digit and ends at the first .?! that
	// is followed by whitespace and another capital or digit
	sentencePattern = regexp2.MustCompile(`[A-ZÅÄÖ0-9].+?(?=[.?!]\s+[A-ZÅÄÖ0-9])[.?!]`, regexp2.None)
)

// StripNoise removes non-breaking spaces, double quotes and semicolons
func StripNoise(s string) string {
	return noise.Replace(s)
}

// PrepareText cleans a speech for segmentation and appends the sentinel
// sentence that lets the last real sentence end at a boundary.
func PrepareText(raw string) string {
	s := bracketed.ReplaceAllString(raw, "")
	s = strings.ReplaceAll(s, "\n", " ")
	s = StripNoise(s)
	s = strings.ReplaceAll(s, "…", ".")

	if s == "" || !strings.ContainsAny(s[len(s)-1:], ".?!") {
		return s + ". S"
	}
	return s + " S"
}

// SplitSentences returns the sentences of a speech in document order
func SplitSentences(raw string) []string {
	return matchSentences(PrepareText(raw))
}

func matchSentences(text string) []string {
	var sentences []string
	m, err := sentencePattern.FindStringMatch(text)
	for err == nil && m != nil {
		sentences = append(sentences, m.String())
		m, err = sentencePattern.FindNextMatch(m)
	}
	return sentences
}
